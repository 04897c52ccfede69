// Package hostname reduces host strings to the canonical form used as the
// resolver cache and uniqueness key.
package hostname

import "strings"

// Normalize converts an arbitrary host string (Host header, X-Forwarded-Host
// chain, or a user-typed domain) into its canonical comparison form:
// lower-case, without scheme, port, path, or surrounding whitespace. The first
// entry wins when a comma-separated forwarded list is given. Normalization is
// best-effort, not validation: input without separators is returned trimmed
// and lower-cased.
func Normalize(raw string) string {
	host := strings.TrimSpace(raw)
	if host == "" {
		return ""
	}

	// First entry of a forwarded-host chain is the client-facing host.
	if idx := strings.IndexByte(host, ','); idx >= 0 {
		host = strings.TrimSpace(host[:idx])
	}

	if idx := strings.Index(host, "://"); idx >= 0 {
		host = host[idx+3:]
	}

	if idx := strings.IndexByte(host, '/'); idx >= 0 {
		host = host[:idx]
	}

	host = stripPort(host)

	return strings.ToLower(host)
}

func stripPort(host string) string {
	// Bracketed IPv6 literal, e.g. [::1]:8080.
	if strings.HasPrefix(host, "[") {
		if end := strings.IndexByte(host, ']'); end >= 0 {
			return host[:end+1]
		}
		return host
	}
	idx := strings.LastIndexByte(host, ':')
	if idx < 0 {
		return host
	}
	// An unbracketed IPv6 literal has more than one colon; leave it alone.
	if strings.IndexByte(host, ':') != idx {
		return host
	}
	return host[:idx]
}
