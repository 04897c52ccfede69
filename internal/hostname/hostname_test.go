package hostname

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "shop.example.com", "shop.example.com"},
		{"mixed case", "Shop.Example.COM", "shop.example.com"},
		{"whitespace", "  shop.example.com  ", "shop.example.com"},
		{"scheme", "https://shop.example.com", "shop.example.com"},
		{"scheme port path", "HTTPS://Foo.Example.com:443/x", "foo.example.com"},
		{"port", "shop.example.com:8443", "shop.example.com"},
		{"path", "shop.example.com/checkout", "shop.example.com"},
		{"forwarded chain", "shop.example.com, proxy.internal, lb.internal", "shop.example.com"},
		{"forwarded chain with port", "Shop.Example.com:443, proxy.internal", "shop.example.com"},
		{"empty", "", ""},
		{"only whitespace", "   ", ""},
		{"bracketed ipv6 with port", "[::1]:8080", "[::1]"},
		{"bare ipv6", "::1", "::1"},
		{"no separator passthrough", "localhost", "localhost"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"HTTPS://Foo.Example.com:443/x",
		"shop.example.com, proxy.internal",
		"Shop.Example.COM:8080",
		"plain.example.com",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalize must be idempotent for %q", in)
	}
}

func TestNormalizeCaseInsensitiveEquivalence(t *testing.T) {
	assert.Equal(t, Normalize("foo.example.com"), Normalize("HTTPS://Foo.Example.com:443/x"))
}
