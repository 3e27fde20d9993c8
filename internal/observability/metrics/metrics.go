package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	providerSelections metric.Int64Counter
	quotes             metric.Int64Counter
	ledgerAppends      metric.Int64Counter
	creditMutations    metric.Int64Counter
	approvalDecisions  metric.Int64Counter
	snapshotRefreshes  metric.Int64Counter
	rateLimitDenied    metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "fareway"
	}
	meter := provider.Meter(name)

	providerSelections, err := meter.Int64Counter("fareway_provider_selections_total")
	if err != nil {
		return nil, err
	}
	quotes, err := meter.Int64Counter("fareway_quotes_total")
	if err != nil {
		return nil, err
	}
	ledgerAppends, err := meter.Int64Counter("fareway_ledger_appends_total")
	if err != nil {
		return nil, err
	}
	creditMutations, err := meter.Int64Counter("fareway_credit_mutations_total")
	if err != nil {
		return nil, err
	}
	approvalDecisions, err := meter.Int64Counter("fareway_approval_decisions_total")
	if err != nil {
		return nil, err
	}
	snapshotRefreshes, err := meter.Int64Counter("fareway_catalog_snapshot_refreshes_total")
	if err != nil {
		return nil, err
	}
	rateLimitDenied, err := meter.Int64Counter("fareway_rate_limit_denied_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		providerSelections: providerSelections,
		quotes:             quotes,
		ledgerAppends:      ledgerAppends,
		creditMutations:    creditMutations,
		approvalDecisions:  approvalDecisions,
		snapshotRefreshes:  snapshotRefreshes,
		rateLimitDenied:    rateLimitDenied,
	}, nil
}

// RecordProviderSelection increments provider selection counts.
func (m *Metrics) RecordProviderSelection(ctx context.Context, serviceType, provider string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("service_type", strings.TrimSpace(serviceType)),
		attribute.String("provider", strings.TrimSpace(provider)),
	)
	m.providerSelections.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordQuote increments price resolution counts by path.
func (m *Metrics) RecordQuote(ctx context.Context, path string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("path", strings.TrimSpace(path)))
	m.quotes.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordLedgerAppend increments cost transaction append counts.
func (m *Metrics) RecordLedgerAppend(ctx context.Context, serviceType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("service_type", strings.TrimSpace(serviceType)))
	m.ledgerAppends.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCreditMutation increments credit ledger mutation counts.
func (m *Metrics) RecordCreditMutation(ctx context.Context, creditType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("credit_type", strings.TrimSpace(creditType)))
	m.creditMutations.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordApprovalDecision increments price-change decision counts.
func (m *Metrics) RecordApprovalDecision(ctx context.Context, decision string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("decision", strings.TrimSpace(decision)))
	m.approvalDecisions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordSnapshotRefresh increments catalog snapshot refresh counts.
func (m *Metrics) RecordSnapshotRefresh(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("outcome", strings.TrimSpace(outcome)))
	m.snapshotRefreshes.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitDenied increments denied request counts.
func (m *Metrics) RecordRateLimitDenied(ctx context.Context, route string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("route", strings.TrimSpace(route)))
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// FilterAttributes drops attributes with empty string values.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if attr.Value.Type() == attribute.STRING && strings.TrimSpace(attr.Value.AsString()) == "" {
			continue
		}
		out = append(out, attr)
	}
	return out
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("metrics exporter endpoint is empty")
	}
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		return otlpmetrichttp.New(context.Background(),
			otlpmetrichttp.WithEndpoint(endpoint),
			otlpmetrichttp.WithInsecure(),
		)
	default:
		return otlpmetricgrpc.New(context.Background(),
			otlpmetricgrpc.WithEndpoint(endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	}
}
