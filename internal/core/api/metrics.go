package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/site-bender/sitebender-sub007/internal/core/api"

// evaluationMetrics records served evaluations on the global meter provider.
// Without a provider installed by the process the instruments are no-ops.
type evaluationMetrics struct {
	evaluations metric.Int64Counter
	failures    metric.Int64Counter
	latency     metric.Float64Histogram
}

var (
	defaultMetrics     *evaluationMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*evaluationMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newEvaluationMetrics(otel.Meter(meterName))
	})
	return defaultMetrics, defaultMetricsErr
}

func newEvaluationMetrics(meter metric.Meter) (*evaluationMetrics, error) {
	evaluations, err := meter.Int64Counter("adaptive.evaluations",
		metric.WithDescription("Number of operand evaluations served"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter("adaptive.evaluation.failures",
		metric.WithDescription("Number of adaptive errors returned in left results"),
	)
	if err != nil {
		return nil, err
	}

	latency, err := meter.Float64Histogram("adaptive.evaluation.latency_ms",
		metric.WithDescription("Evaluation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &evaluationMetrics{evaluations: evaluations, failures: failures, latency: latency}, nil
}

// newMetrics returns the shared instruments, or nil if they cannot be created.
func newMetrics(logger *slog.Logger) *evaluationMetrics {
	m, err := getDefaultMetrics()
	if err != nil {
		logger.Warn("metrics initialization failed, evaluations will not be counted", "error", err)
		return nil
	}
	return m
}

func (m *evaluationMetrics) record(ctx context.Context, source string, ok bool, errCount int, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("source", source),
		attribute.Bool("ok", ok),
	)
	m.evaluations.Add(ctx, 1, attrs)
	m.latency.Record(ctx, float64(d.Microseconds())/1000, attrs)
	if errCount > 0 {
		m.failures.Add(ctx, int64(errCount), attrs)
	}
}
