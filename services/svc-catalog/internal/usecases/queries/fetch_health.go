package queries

import (
	"context"
	"fmt"
	"sync"
	"time"

	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/architeacher/storefront/pkg/decorator"
	"github.com/architeacher/storefront/pkg/logger"
	"github.com/architeacher/storefront/pkg/metrics"
	"github.com/architeacher/storefront/services/svc-catalog/internal/ports"
)

const (
	HealthStatusHealthy   = "healthy"
	HealthStatusDegraded  = "degraded"
	HealthStatusUnhealthy = "unhealthy"

	DependencyPostgres      = "postgres"
	DependencyKeyDB         = "keydb"
	DependencyObjectStorage = "object_storage"
)

type (
	FetchHealthReportQuery struct{}

	HealthResult struct {
		Status       string                            `json:"status"`
		Version      string                            `json:"version"`
		Uptime       string                            `json:"uptime"`
		Dependencies map[string]ports.DependencyStatus `json:"dependencies"`
	}

	FetchHealthReportQueryHandler = decorator.QueryHandler[FetchHealthReportQuery, *HealthResult]

	fetchHealthReportQueryHandler struct {
		dependencies map[string]ports.Pinger
		version      string
		startTime    time.Time
	}
)

// NewFetchHealthReportQueryHandler probes every dependency in parallel. A
// failing postgres makes the service unhealthy; anything else degrades it.
func NewFetchHealthReportQueryHandler(
	dependencies map[string]ports.Pinger,
	version string,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) FetchHealthReportQueryHandler {
	return decorator.ApplyQueryDecorators[FetchHealthReportQuery, *HealthResult](
		fetchHealthReportQueryHandler{
			dependencies: dependencies,
			version:      version,
			startTime:    time.Now(),
		},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h fetchHealthReportQueryHandler) Execute(ctx context.Context, _ FetchHealthReportQuery) (*HealthResult, error) {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		statuses = make(map[string]ports.DependencyStatus, len(h.dependencies))
	)

	for name, pinger := range h.dependencies {
		wg.Add(1)

		go func() {
			defer wg.Done()

			status := probe(ctx, pinger)

			mu.Lock()
			statuses[name] = status
			mu.Unlock()
		}()
	}

	wg.Wait()

	overall := HealthStatusHealthy

	for name, status := range statuses {
		if status.Healthy {
			continue
		}

		if name == DependencyPostgres {
			overall = HealthStatusUnhealthy

			break
		}

		overall = HealthStatusDegraded
	}

	return &HealthResult{
		Status:       overall,
		Version:      h.version,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		Dependencies: statuses,
	}, nil
}

func probe(ctx context.Context, pinger ports.Pinger) ports.DependencyStatus {
	start := time.Now()
	err := pinger.Ping(ctx)

	status := ports.DependencyStatus{
		Healthy: err == nil,
		Latency: fmt.Sprintf("%dms", time.Since(start).Milliseconds()),
	}

	if err != nil {
		status.Message = err.Error()
	}

	return status
}
