package dns

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqualFQDN(t *testing.T) {
	assert.True(t, equalFQDN("t1.branding-proxy.example.", "t1.branding-proxy.example"))
	assert.True(t, equalFQDN("T1.Branding-Proxy.Example", "t1.branding-proxy.example"))
	assert.True(t, equalFQDN(" t1.branding-proxy.example. ", "t1.branding-proxy.example"))
	assert.False(t, equalFQDN("t2.branding-proxy.example", "t1.branding-proxy.example"))
	assert.False(t, equalFQDN("", "t1.branding-proxy.example"))
}
