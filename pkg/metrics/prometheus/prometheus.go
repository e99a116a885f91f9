// Package prometheus implements metrics.Client on top of a dedicated
// Prometheus registry.
package prometheus

import (
	"context"
	"net/http"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/architeacher/storefront/pkg/metrics"
)

var invalidNameChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

type (
	MetricsClient struct {
		namespace   string
		registry    *prom.Registry
		descriptors map[string]metrics.Descriptor

		mu         sync.Mutex
		counters   map[string]*vec[*prom.CounterVec]
		histograms map[string]*vec[*prom.HistogramVec]
	}

	vec[T any] struct {
		labels    []string
		collector T
	}
)

func NewMetricsClient(namespace string, descriptors map[string]metrics.Descriptor) *MetricsClient {
	registry := prom.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &MetricsClient{
		namespace:   sanitize(namespace),
		registry:    registry,
		descriptors: descriptors,
		counters:    make(map[string]*vec[*prom.CounterVec]),
		histograms:  make(map[string]*vec[*prom.HistogramVec]),
	}
}

func (c *MetricsClient) Inc(_ context.Context, key string, value any, attributes ...attribute.KeyValue) {
	labels, values := splitAttributes(attributes)

	if d, ok := value.(time.Duration); ok {
		if h := c.histogram(key, labels); h != nil {
			h.WithLabelValues(values...).Observe(d.Seconds())
		}

		return
	}

	amount, ok := toFloat(value)
	if !ok || amount < 0 {
		return
	}

	if counter := c.counter(key, labels); counter != nil {
		counter.WithLabelValues(values...).Add(amount)
	}
}

func (c *MetricsClient) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *MetricsClient) Shutdown(context.Context) error {
	return nil
}

// counter returns nil when key was first registered with a different label set.
func (c *MetricsClient) counter(key string, labels []string) *prom.CounterVec {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.counters[key]; ok {
		if !slices.Equal(existing.labels, labels) {
			return nil
		}

		return existing.collector
	}

	counter := prom.NewCounterVec(prom.CounterOpts{
		Namespace: c.namespace,
		Name:      sanitize(key) + "_total",
		Help:      c.help(key),
	}, labels)

	if err := c.registry.Register(counter); err != nil {
		return nil
	}

	c.counters[key] = &vec[*prom.CounterVec]{labels: labels, collector: counter}

	return counter
}

func (c *MetricsClient) histogram(key string, labels []string) *prom.HistogramVec {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.histograms[key]; ok {
		if !slices.Equal(existing.labels, labels) {
			return nil
		}

		return existing.collector
	}

	histogram := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: c.namespace,
		Name:      strings.TrimSuffix(sanitize(key), "_duration") + "_duration_seconds",
		Help:      c.help(key),
		Buckets:   prom.DefBuckets,
	}, labels)

	if err := c.registry.Register(histogram); err != nil {
		return nil
	}

	c.histograms[key] = &vec[*prom.HistogramVec]{labels: labels, collector: histogram}

	return histogram
}

func (c *MetricsClient) help(key string) string {
	if d, ok := c.descriptors[key]; ok && d.Description != "" {
		return d.Description
	}

	return key
}

func splitAttributes(attributes []attribute.KeyValue) ([]string, []string) {
	sorted := slices.Clone(attributes)
	slices.SortFunc(sorted, func(a, b attribute.KeyValue) int {
		return strings.Compare(string(a.Key), string(b.Key))
	})

	labels := make([]string, 0, len(sorted))
	values := make([]string, 0, len(sorted))

	for _, kv := range sorted {
		labels = append(labels, sanitize(string(kv.Key)))
		values = append(values, kv.Value.Emit())
	}

	return labels, values
}

func sanitize(name string) string {
	return strings.ToLower(invalidNameChars.ReplaceAllString(name, "_"))
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
