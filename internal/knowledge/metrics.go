package knowledge

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const knowledgeInstrumentationName = "github.com/verdanthealth/medguard/internal/knowledge"

// Metrics holds knowledge base metrics for both indexing and retrieval.
type Metrics struct {
	meter            metric.Meter
	logger           *zap.Logger
	retrieveDuration metric.Float64Histogram
	retrievals       metric.Int64Counter
	buildDuration    metric.Float64Histogram
	buildChunks      metric.Int64Histogram
}

// NewMetrics creates a new Metrics instance for the knowledge base.
func NewMetrics(logger *zap.Logger) *Metrics {
	m := &Metrics{
		meter:  otel.Meter(knowledgeInstrumentationName),
		logger: logger,
	}
	m.init()
	return m
}

func (m *Metrics) init() {
	var err error

	m.retrieveDuration, err = m.meter.Float64Histogram(
		"medguard.knowledge.retrieve_duration_seconds",
		metric.WithDescription("Duration of a retrieve call including query embedding"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		m.logger.Warn("failed to create retrieve duration histogram", zap.Error(err))
	}

	m.retrievals, err = m.meter.Int64Counter(
		"medguard.knowledge.retrievals_total",
		metric.WithDescription("Total retrievals by outcome (ok, empty, degraded, embed_error)"),
		metric.WithUnit("{retrieval}"),
	)
	if err != nil {
		m.logger.Warn("failed to create retrievals counter", zap.Error(err))
	}

	m.buildDuration, err = m.meter.Float64Histogram(
		"medguard.knowledge.build_duration_seconds",
		metric.WithDescription("Duration of a full store build including embedding"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 5, 10, 30, 60, 300, 600),
	)
	if err != nil {
		m.logger.Warn("failed to create build duration histogram", zap.Error(err))
	}

	m.buildChunks, err = m.meter.Int64Histogram(
		"medguard.knowledge.build_chunks",
		metric.WithDescription("Chunks per store build"),
		metric.WithUnit("{chunk}"),
		metric.WithExplicitBucketBoundaries(1, 10, 50, 100, 500, 1000, 5000, 10000),
	)
	if err != nil {
		m.logger.Warn("failed to create build chunks histogram", zap.Error(err))
	}
}

// RecordRetrieve records one retrieval.
func (m *Metrics) RecordRetrieve(ctx context.Context, duration time.Duration, outcome string) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	if m.retrieveDuration != nil {
		m.retrieveDuration.Record(ctx, duration.Seconds(), attrs)
	}
	if m.retrievals != nil {
		m.retrievals.Add(ctx, 1, attrs)
	}
}

// RecordBuild records one store build.
func (m *Metrics) RecordBuild(ctx context.Context, duration time.Duration, docs, chunks int, err error) {
	attrs := metric.WithAttributes(
		attribute.Int("documents", docs),
		attribute.Bool("error", err != nil),
	)
	if m.buildDuration != nil {
		m.buildDuration.Record(ctx, duration.Seconds(), attrs)
	}
	if m.buildChunks != nil {
		m.buildChunks.Record(ctx, int64(chunks))
	}
}
