package server

import (
	"context"

	"github.com/vanshika/claimstream/internal/transport"
)

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// TransportHealthService probes the publish transport when it supports it.
type TransportHealthService struct {
	Transport transport.Transport
}

// Probe implements the HealthService interface.
func (s TransportHealthService) Probe(ctx context.Context) error {
	prober, ok := s.Transport.(transport.Prober)
	if !ok {
		return nil
	}
	return prober.Probe(ctx)
}
