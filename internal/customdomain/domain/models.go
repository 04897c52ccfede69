// Package domain contains the custom-domain verification models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// RecordTypeCNAME is the only record type we ask tenants to publish.
const RecordTypeCNAME = "CNAME"

// DomainVerification is the proof-of-control challenge for a tenant's custom
// domain: the CNAME tuple the tenant must publish, and the window within
// which verification may be retried. One row per tenant; replaced wholesale
// on every fresh domain-set operation.
type DomainVerification struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID snowflake.ID `gorm:"not null;uniqueIndex:ux_domain_verifications_tenant" json:"tenant_id"`
	Domain   string       `gorm:"type:text;not null" json:"domain"`
	Token    string       `gorm:"type:text;not null" json:"token"`

	RecordType    string `gorm:"type:text;not null" json:"record_type"`
	ExpectedHost  string `gorm:"type:text;not null" json:"expected_host"`
	ExpectedValue string `gorm:"type:text;not null" json:"expected_value"`

	RequestedAt time.Time  `gorm:"not null" json:"requested_at"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
	ExpiresAt   time.Time  `gorm:"not null" json:"expires_at"`
}

// TableName sets the database table name.
func (DomainVerification) TableName() string { return "domain_verifications" }
