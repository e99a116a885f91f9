package ports

import "context"

type (
	DependencyStatus struct {
		Healthy bool   `json:"healthy"`
		Message string `json:"message,omitempty"`
		Latency string `json:"latency,omitempty"`
	}

	// Pinger is anything whose liveness can be probed: the pool, Redis, MinIO.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)
