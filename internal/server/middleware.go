package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/vanity/internal/hostname"
	tenantdomain "github.com/smallbiznis/vanity/internal/tenant/domain"
	"github.com/smallbiznis/vanity/internal/tenantctx"
	"go.uber.org/zap"
)

// BrandingResolution resolves the request host to a tenant's branding and
// stashes the result in the request context. Fail-open: a store outage or an
// unknown host never blocks the request, downstream handlers fall back to the
// default theme.
func (s *Server) BrandingResolution() gin.HandlerFunc {
	return func(c *gin.Context) {
		host := c.GetHeader("X-Forwarded-Host")
		if host == "" {
			host = c.Request.Host
		}
		host = hostname.Normalize(host)
		if host == "" {
			c.Next()
			return
		}

		cfg, err := s.resolver.ResolveByDomain(c.Request.Context(), host)
		if err != nil {
			s.log.Warn("branding resolution failed, serving default",
				zap.String("host", host),
				zap.Error(err),
			)
			c.Next()
			return
		}
		if cfg != nil {
			ctx := tenantctx.WithResolved(c.Request.Context(), tenantctx.Resolved{
				TenantID: cfg.TenantID,
				Config:   cfg,
			})
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()
	}
}

// AuthRequired authenticates the caller by API key and binds the tenant
// identity to the request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		tenant, err := s.tenants.FindTenantByKeyHash(
			c.Request.Context(),
			tenantdomain.HashAPIKey(raw),
			s.clock.Now(),
		)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		ctx := tenantctx.WithTenantID(c.Request.Context(), tenant.ID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
