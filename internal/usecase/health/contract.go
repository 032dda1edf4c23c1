package health

import "context"

// StorePinger checks store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// RegistryChecker checks trademark registry availability.
type RegistryChecker interface {
	HealthCheck(ctx context.Context) error
}
