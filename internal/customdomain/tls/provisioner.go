// Package tls wraps the external certificate-provisioning capability.
package tls

import (
	"context"

	"go.uber.org/zap"
)

// Provisioner requests a certificate for a freshly verified domain. The call
// is fire-and-forget: issuance happens out of band and failures are retried
// by the provisioning side, not by us.
type Provisioner interface {
	Request(ctx context.Context, domain string) error
}

type logProvisioner struct {
	log *zap.Logger
}

// NewLogProvisioner returns a Provisioner that only records the request.
// Stands in for the managed certificate pipeline in OSS deployments.
func NewLogProvisioner(log *zap.Logger) Provisioner {
	return &logProvisioner{log: log.Named("tls.provisioner")}
}

func (p *logProvisioner) Request(ctx context.Context, domain string) error {
	_ = ctx
	p.log.Info("tls provisioning requested", zap.String("domain", domain))
	return nil
}
