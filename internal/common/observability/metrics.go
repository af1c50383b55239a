package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	pollCounter   otelmetric.Int64Counter
	claimCounter  otelmetric.Int64Counter
	claimDuration otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	pollCounter, _ := meter.Int64Counter(
		"documents.polls",
		otelmetric.WithDescription("Number of document status polls issued"),
	)

	claimCounter, _ := meter.Int64Counter(
		"claims.submitted",
		otelmetric.WithDescription("Number of claim submissions"),
	)

	claimDuration, _ := meter.Float64Histogram(
		"claims.submit.duration",
		otelmetric.WithDescription("Claim submission duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		pollCounter:   pollCounter,
		claimCounter:  claimCounter,
		claimDuration: claimDuration,
	}
}

func (o *Observability) RecordPoll(ctx context.Context, status string) {
	if o.pollCounter != nil {
		o.pollCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordClaimSubmitted(ctx context.Context, outcome string) {
	if o.claimCounter != nil {
		o.claimCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("outcome", outcome),
		))
	}
}

func (o *Observability) RecordClaimDuration(ctx context.Context, duration time.Duration, outcome string) {
	if o.claimDuration != nil {
		o.claimDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("outcome", outcome),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
