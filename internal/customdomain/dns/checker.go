// Package dns wraps the external DNS-propagation check.
package dns

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Checker reports whether a domain's CNAME points at the expected target.
type Checker interface {
	// CheckCNAME returns (false, nil) when the record is absent or points
	// elsewhere, and a non-nil error only when the lookup itself failed.
	CheckCNAME(ctx context.Context, domain, expectedTarget string) (bool, error)
}

type resolverChecker struct {
	resolver *net.Resolver
}

// NewChecker returns a Checker backed by the system resolver. The lookup
// honors the caller's context deadline.
func NewChecker() Checker {
	return &resolverChecker{resolver: net.DefaultResolver}
}

func (c *resolverChecker) CheckCNAME(ctx context.Context, domain, expectedTarget string) (bool, error) {
	cname, err := c.resolver.LookupCNAME(ctx, domain)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return false, nil
		}
		return false, err
	}
	return equalFQDN(cname, expectedTarget), nil
}

func equalFQDN(a, b string) bool {
	return canonicalFQDN(a) == canonicalFQDN(b)
}

func canonicalFQDN(name string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), ".")
}
