package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	brandingdomain "github.com/smallbiznis/vanity/internal/branding/domain"
)

// Service moves a tenant's custom domain through its lifecycle:
// NONE -> PENDING -> ACTIVE or FAILED. ACTIVE and FAILED only re-enter
// PENDING via a fresh SetDomain call.
type Service interface {
	// SetDomain binds a domain to the tenant, transitions the binding to
	// PENDING, and returns the CNAME record the tenant must publish.
	SetDomain(ctx context.Context, tenantID snowflake.ID, rawDomain string) (*DomainVerification, error)
	// VerifyDomain checks DNS propagation for a PENDING binding. Calling it
	// in any other state is a no-op that reports the current state.
	VerifyDomain(ctx context.Context, tenantID snowflake.ID) (*VerifyResult, error)
	// ClearDomain unbinds the domain and discards the verification record.
	// Idempotent: clearing an unbound tenant succeeds.
	ClearDomain(ctx context.Context, tenantID snowflake.ID) error
}

// VerifyResult reports the binding state after a verification attempt.
type VerifyResult struct {
	Status     brandingdomain.DomainStatus `json:"domain_status"`
	Domain     string                      `json:"domain,omitempty"`
	VerifiedAt *time.Time                  `json:"verified_at,omitempty"`
	ExpiresAt  *time.Time                  `json:"expires_at,omitempty"`
}

var (
	ErrInvalidDomain = errors.New("invalid_domain")
	// ErrVerificationUnavailable means the DNS check could not run; the
	// caller should retry, the binding stays PENDING.
	ErrVerificationUnavailable = errors.New("verification_unavailable")
)
