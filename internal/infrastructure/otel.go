package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/ohappykust/busgov-extractor/internal/config"
)

const (
	ServiceName = config.AppName
	MeterName   = "busgov-extractor"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	EnableTracing  bool
	TraceWriter    io.Writer // stdout when nil
	SampleRatio    float64
}

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Registry       *prometheus.Registry
	Logger         *slog.Logger
}

// DefaultOTelConfig returns a default OpenTelemetry configuration
func DefaultOTelConfig() *OTelConfig {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "production"
	}

	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: config.AppVersion,
		Environment:    env,
		EnableTracing:  false,
		SampleRatio:    1.0,
	}
}

// InitializeOTel sets up tracing (optional) and metrics (always, into a private
// Prometheus registry that can be snapshotted to a textfile after the run).
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}
	if logger == nil {
		logger = GetLogger()
	}

	ctx := context.Background()

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	providers := &OTelProviders{
		Logger: logger,
	}

	if cfg.EnableTracing {
		if err := initializeTracing(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	} else {
		providers.Tracer = otel.Tracer(MeterName)
	}

	if err := initializeMetrics(ctx, cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger.DebugContext(ctx, "OpenTelemetry initialization complete",
		slog.Bool("tracing_enabled", cfg.EnableTracing))

	return providers, nil
}

// createResource creates the OpenTelemetry resource
func createResource(cfg *OTelConfig) (*resource.Resource, error) {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	), nil
}

func initializeTracing(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	writer := cfg.TraceWriter
	if writer == nil {
		writer = os.Stdout
	}

	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(writer),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	// Synchronous export: a run is short and must not lose spans on exit.
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
	otel.SetTracerProvider(tp)

	providers.Logger.DebugContext(ctx, "Tracing initialized",
		slog.Float64("sample_ratio", cfg.SampleRatio))

	return nil
}

func initializeMetrics(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	registry := prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	providers.Registry = registry
	providers.MeterProvider = mp
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))

	providers.Logger.DebugContext(ctx, "Metrics initialized")
	return nil
}

// WriteMetricsFile snapshots every collected metric in Prometheus text format,
// suitable for a node_exporter textfile collector.
func (p *OTelProviders) WriteMetricsFile(path string) error {
	if p.Registry == nil {
		return fmt.Errorf("metrics registry not initialized")
	}
	return prometheus.WriteToTextfile(path, p.Registry)
}

// Shutdown gracefully shuts down OpenTelemetry providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}

	return nil
}

// ExportMetrics holds the instruments recorded during an export run
type ExportMetrics struct {
	RegistryRequests        metric.Int64Counter
	RegistryRequestDuration metric.Float64Histogram
	UnavailableOrgs         metric.Int64Counter
	DataIssues              metric.Int64Counter
	RowsExported            metric.Int64Counter
	RunDuration             metric.Float64Histogram
}

// CreateExportMetrics creates the export run instruments
func CreateExportMetrics(meter metric.Meter) (*ExportMetrics, error) {
	requests, err := meter.Int64Counter(
		"registry_requests_total",
		metric.WithDescription("Total number of registry API requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"registry_request_duration_seconds",
		metric.WithDescription("Registry API request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	unavailable, err := meter.Int64Counter(
		"unavailable_organizations_total",
		metric.WithDescription("Organizations whose detail lookup failed"),
	)
	if err != nil {
		return nil, err
	}

	issues, err := meter.Int64Counter(
		"data_issues_total",
		metric.WithDescription("Malformed structures skipped while flattening"),
	)
	if err != nil {
		return nil, err
	}

	rows, err := meter.Int64Counter(
		"exported_rows_total",
		metric.WithDescription("Rows written per worksheet"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"export_run_duration_seconds",
		metric.WithDescription("Whole export run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &ExportMetrics{
		RegistryRequests:        requests,
		RegistryRequestDuration: requestDuration,
		UnavailableOrgs:         unavailable,
		DataIssues:              issues,
		RowsExported:            rows,
		RunDuration:             runDuration,
	}, nil
}

// RecordRequest records one registry call. Safe on a nil receiver.
func (m *ExportMetrics) RecordRequest(ctx context.Context, endpoint string, success bool, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("status", statusLabel(success)),
	)
	m.RegistryRequests.Add(ctx, 1, attrs)
	m.RegistryRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordUnavailable counts organizations moved to the unavailable sheet
func (m *ExportMetrics) RecordUnavailable(ctx context.Context, n int) {
	if m == nil || n == 0 {
		return
	}
	m.UnavailableOrgs.Add(ctx, int64(n))
}

// RecordIssues counts malformed structures by kind
func (m *ExportMetrics) RecordIssues(ctx context.Context, kind string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.DataIssues.Add(ctx, int64(n), metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordRows counts rows written to a sheet
func (m *ExportMetrics) RecordRows(ctx context.Context, sheet string, n int) {
	if m == nil {
		return
	}
	m.RowsExported.Add(ctx, int64(n), metric.WithAttributes(attribute.String("sheet", sheet)))
}

// RecordRun records the outcome of a whole run
func (m *ExportMetrics) RecordRun(ctx context.Context, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.RunDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String("status", statusLabel(err == nil))))
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}
