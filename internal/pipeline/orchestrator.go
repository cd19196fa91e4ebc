package pipeline

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/ohappykust/busgov-extractor/internal/errors"
	"github.com/ohappykust/busgov-extractor/internal/infrastructure"
	"github.com/ohappykust/busgov-extractor/internal/registry"
)

// Fetcher is the registry boundary of the pipeline
type Fetcher interface {
	FetchOrgIndex(ctx context.Context, f registry.Filter) ([]registry.OrgStub, error)
	FetchOrgDetail(ctx context.Context, id registry.AgencyID) (*registry.OrgDetail, error)
	FetchQualityScores(ctx context.Context, ids []registry.AgencyID) (registry.QualityResponse, error)
}

// Sink receives the finished worksheets
type Sink interface {
	Write(ctx context.Context, sheets []Sheet) error
}

// OrgResult is a successfully fetched detail bundle
type OrgResult struct {
	AgencyID registry.AgencyID
	Detail   *registry.OrgDetail
}

// Bundle is the raw aggregate of one run, before flattening. Details and
// Unavailable both follow the index order and together cover Orgs exactly.
type Bundle struct {
	Orgs        []registry.OrgStub
	Details     []OrgResult
	Unavailable []registry.OrgStub
	Quality     registry.QualityResponse
}

// IDs returns the agency ids of the index result, in order
func (b *Bundle) IDs() []registry.AgencyID {
	return agencyIDs(b.Orgs)
}

// Orchestrator drives the three registry calls and the export of one run
type Orchestrator struct {
	fetcher  Fetcher
	workers  int
	linkBase string
	logger   *slog.Logger
	metrics  *infrastructure.ExportMetrics
	tracer   trace.Tracer
	progress ProgressFunc
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithWorkers bounds concurrent detail requests; values below 1 mean 1
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n < 1 {
			n = 1
		}
		o.workers = n
	}
}

// WithLinkBase sets the URL prefix of the id hyperlinks
func WithLinkBase(base string) Option {
	return func(o *Orchestrator) { o.linkBase = base }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithMetrics records run, row and issue counters
func WithMetrics(m *infrastructure.ExportMetrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithTracer replaces the global tracer
func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) { o.tracer = t }
}

// WithProgress receives stage and detail progress
func WithProgress(fn ProgressFunc) Option {
	return func(o *Orchestrator) { o.progress = fn }
}

// NewOrchestrator creates an orchestrator that runs detail requests one at a
// time unless WithWorkers says otherwise.
func NewOrchestrator(fetcher Fetcher, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		fetcher: fetcher,
		workers: 1,
		logger:  infrastructure.GetLogger(),
		tracer:  defaultTracer(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = infrastructure.WithComponent(o.logger, "pipeline")
	return o
}

// FetchOrgIndex runs the index search. Zero organizations is an
// EmptyResultError; a repeated agency id keeps its first entry.
func (o *Orchestrator) FetchOrgIndex(ctx context.Context, f registry.Filter) (_ []registry.OrgStub, err error) {
	ctx, span := o.startSpan(ctx, "fetch_index")
	defer func() { endSpan(span, err) }()

	orgs, err := o.fetcher.FetchOrgIndex(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(orgs) == 0 {
		return nil, apperrors.NewEmptyResultError("no organizations match the filter")
	}

	seen := make(map[registry.AgencyID]struct{}, len(orgs))
	unique := orgs[:0:0]
	for _, org := range orgs {
		if _, dup := seen[org.AgencyID]; dup {
			o.logger.WarnContext(ctx, "Duplicate agency in index result",
				slog.Int64("agency_id", int64(org.AgencyID)))
			continue
		}
		seen[org.AgencyID] = struct{}{}
		unique = append(unique, org)
	}

	span.SetAttributes(attribute.Int("orgs", len(unique)))
	o.logger.InfoContext(ctx, "Organization index loaded", slog.Int("orgs", len(unique)))
	return unique, nil
}

// FetchOrgDetails requests every organization's detail bundle. A failed
// request moves the organization to the unavailable list and never stops the
// loop. Both outputs follow the order of orgs whatever the completion order.
// The only error returned is the context's.
func (o *Orchestrator) FetchOrgDetails(ctx context.Context, orgs []registry.OrgStub) (_ []OrgResult, _ []registry.OrgStub, err error) {
	ctx, span := o.startSpan(ctx, "fetch_details",
		attribute.Int("orgs", len(orgs)),
		attribute.Int("workers", o.workers))
	defer func() { endSpan(span, err) }()

	details := make([]*registry.OrgDetail, len(orgs))
	failures := make([]error, len(orgs))
	tracker := newProgressTracker(StageDetails, len(orgs), o.progress)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, org := range orgs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			detail, err := o.fetcher.FetchOrgDetail(gctx, org.AgencyID)
			if err == nil && detail == nil {
				err = apperrors.NewPartialFetchError(int64(org.AgencyID), nil)
			}
			if err != nil {
				failures[i] = err
			} else {
				details[i] = detail
			}
			tracker.Increment()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var (
		results     = make([]OrgResult, 0, len(orgs))
		unavailable []registry.OrgStub
	)
	for i, org := range orgs {
		if failures[i] != nil {
			infrastructure.WithError(o.logger, failures[i]).WarnContext(ctx, "Organization detail unavailable",
				slog.Int64("agency_id", int64(org.AgencyID)))
			unavailable = append(unavailable, org)
			continue
		}
		results = append(results, OrgResult{AgencyID: org.AgencyID, Detail: details[i]})
	}

	o.metrics.RecordUnavailable(ctx, len(unavailable))
	span.SetAttributes(
		attribute.Int("details", len(results)),
		attribute.Int("unavailable", len(unavailable)))
	o.logger.InfoContext(ctx, "Organization details loaded",
		slog.Int("details", len(results)),
		slog.Int("unavailable", len(unavailable)))
	return results, unavailable, nil
}

// FetchQualityScores loads all ratings in one request; any failure is fatal
func (o *Orchestrator) FetchQualityScores(ctx context.Context, ids []registry.AgencyID) (_ registry.QualityResponse, err error) {
	ctx, span := o.startSpan(ctx, "fetch_quality", attribute.Int("ids", len(ids)))
	defer func() { endSpan(span, err) }()

	quality, err := o.fetcher.FetchQualityScores(ctx, ids)
	if err != nil {
		return nil, err
	}
	if quality == nil {
		quality = registry.QualityResponse{}
	}

	o.logger.InfoContext(ctx, "Quality ratings loaded", slog.Int("quality_entries", len(quality)))
	return quality, nil
}

// Fetch runs the three fetch stages in order. Nothing past the index is
// requested when the index fails or comes back empty.
func (o *Orchestrator) Fetch(ctx context.Context, f registry.Filter) (*Bundle, error) {
	o.stage(StageIndex)
	orgs, err := o.FetchOrgIndex(ctx, f)
	if err != nil {
		return nil, err
	}

	o.stage(StageDetails)
	details, unavailable, err := o.FetchOrgDetails(ctx, orgs)
	if err != nil {
		return nil, err
	}

	o.stage(StageQuality)
	quality, err := o.FetchQualityScores(ctx, agencyIDs(orgs))
	if err != nil {
		return nil, err
	}

	return &Bundle{
		Orgs:        orgs,
		Details:     details,
		Unavailable: unavailable,
		Quality:     quality,
	}, nil
}

// Run fetches, flattens and hands the six worksheets to sink
func (o *Orchestrator) Run(ctx context.Context, f registry.Filter, sink Sink) (_ *Result, err error) {
	start := time.Now()
	ctx = infrastructure.EnsureRunID(ctx)
	ctx, span := o.startSpan(ctx, "run",
		attribute.String("run_id", infrastructure.GetRunID(ctx)),
		attribute.Int("workers", o.workers))
	defer func() {
		o.metrics.RecordRun(ctx, time.Since(start), err)
		endSpan(span, err)
	}()

	o.logger.InfoContext(ctx, "Export started",
		slog.Any("regions", f.Regions),
		slog.Any("vgu_name", f.VGUName),
		slog.Int("workers", o.workers))

	bundle, err := o.Fetch(ctx, f)
	if err != nil {
		infrastructure.WithError(o.logger, err).ErrorContext(ctx, "Export aborted",
			slog.String("error_type", string(apperrors.TypeOf(err))))
		return nil, err
	}

	o.stage(StageExport)
	result := o.flatten(ctx, bundle)

	if err := o.export(ctx, sink, result); err != nil {
		infrastructure.WithError(o.logger, err).ErrorContext(ctx, "Export aborted",
			slog.String("error_type", string(apperrors.TypeOf(err))))
		return nil, err
	}

	o.logger.InfoContext(ctx, "Export finished", slog.Duration("duration", time.Since(start)))
	return result, nil
}

func (o *Orchestrator) flatten(ctx context.Context, bundle *Bundle) *Result {
	_, span := o.startSpan(ctx, "flatten")
	defer span.End()

	result := Flatten(bundle)

	byKind := make(map[IssueKind]int)
	for _, issue := range result.Issues {
		byKind[issue.Kind]++
		o.logger.WarnContext(ctx, "Malformed registry data",
			slog.Int64("agency_id", int64(issue.AgencyID)),
			slog.String("kind", string(issue.Kind)),
			slog.String("detail", issue.Detail))
	}
	for kind, n := range byKind {
		o.metrics.RecordIssues(ctx, string(kind), n)
	}

	span.SetAttributes(attribute.Int("issues", len(result.Issues)))
	return result
}

func (o *Orchestrator) export(ctx context.Context, sink Sink, result *Result) (err error) {
	ctx, span := o.startSpan(ctx, "export")
	defer func() { endSpan(span, err) }()

	sheets := result.Sheets(o.linkBase)
	if err := sink.Write(ctx, sheets); err != nil {
		return err
	}

	for _, s := range sheets {
		o.metrics.RecordRows(ctx, s.Name, len(s.Rows))
		o.logger.InfoContext(ctx, "Sheet exported",
			slog.String("sheet", s.Name),
			slog.Int("rows", len(s.Rows)))
	}
	return nil
}

func (o *Orchestrator) stage(s Stage) {
	if o.progress != nil {
		o.progress(Progress{Stage: s})
	}
}

func agencyIDs(orgs []registry.OrgStub) []registry.AgencyID {
	ids := make([]registry.AgencyID, len(orgs))
	for i, org := range orgs {
		ids[i] = org.AgencyID
	}
	return ids
}
