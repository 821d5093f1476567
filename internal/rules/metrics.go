package rules

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const rulesInstrumentationName = "github.com/verdanthealth/medguard/internal/rules"

// Metrics holds rule-engine metrics.
type Metrics struct {
	meter    metric.Meter
	logger   *zap.Logger
	duration metric.Float64Histogram
	alerts   metric.Int64Counter
	degraded metric.Int64Counter
}

// NewMetrics creates a new Metrics instance for the rule engine.
func NewMetrics(logger *zap.Logger) *Metrics {
	m := &Metrics{
		meter:  otel.Meter(rulesInstrumentationName),
		logger: logger,
	}
	m.init()
	return m
}

func (m *Metrics) init() {
	var err error

	m.duration, err = m.meter.Float64Histogram(
		"medguard.rules.run_duration_seconds",
		metric.WithDescription("Duration of a full RunAllChecks invocation in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1),
	)
	if err != nil {
		m.logger.Warn("failed to create duration histogram", zap.Error(err))
	}

	m.alerts, err = m.meter.Int64Counter(
		"medguard.rules.alerts_total",
		metric.WithDescription("Total alerts emitted, labeled by kind and severity"),
		metric.WithUnit("{alert}"),
	)
	if err != nil {
		m.logger.Warn("failed to create alerts counter", zap.Error(err))
	}

	m.degraded, err = m.meter.Int64Counter(
		"medguard.rules.degraded_runs_total",
		metric.WithDescription("Check runs served while the safety catalog was degraded"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		m.logger.Warn("failed to create degraded counter", zap.Error(err))
	}
}

// RecordRun records metrics for one RunAllChecks invocation.
func (m *Metrics) RecordRun(ctx context.Context, duration time.Duration, alerts []Alert, degraded bool) {
	if m.duration != nil {
		m.duration.Record(ctx, duration.Seconds())
	}
	if m.alerts != nil {
		for _, a := range alerts {
			m.alerts.Add(ctx, 1, metric.WithAttributes(
				attribute.String("kind", string(a.Kind)),
				attribute.String("severity", string(a.Severity)),
			))
		}
	}
	if degraded && m.degraded != nil {
		m.degraded.Add(ctx, 1)
	}
}
