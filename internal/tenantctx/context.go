// Package tenantctx carries the tenant identity and resolved branding through
// a request's context as typed values.
package tenantctx

import (
	"context"

	"github.com/bwmarrin/snowflake"
	brandingdomain "github.com/smallbiznis/vanity/internal/branding/domain"
)

type tenantIDKey struct{}
type resolvedKey struct{}

// Resolved is the outcome of branding resolution for one request.
type Resolved struct {
	TenantID snowflake.ID
	Config   *brandingdomain.BrandingConfig
}

// WithTenantID stores the authenticated tenant ID in the context.
func WithTenantID(ctx context.Context, tenantID snowflake.ID) context.Context {
	return context.WithValue(ctx, tenantIDKey{}, tenantID)
}

// TenantIDFromContext returns the authenticated tenant ID, if set.
func TenantIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(tenantIDKey{}).(snowflake.ID)
	return id, ok
}

// WithResolved attaches the host-resolved branding to the context.
func WithResolved(ctx context.Context, resolved Resolved) context.Context {
	return context.WithValue(ctx, resolvedKey{}, resolved)
}

// ResolvedFromContext returns the host-resolved branding, if any. Anonymous
// traffic on an unbranded host carries none; that is not an error.
func ResolvedFromContext(ctx context.Context) (Resolved, bool) {
	if ctx == nil {
		return Resolved{}, false
	}
	resolved, ok := ctx.Value(resolvedKey{}).(Resolved)
	return resolved, ok
}
