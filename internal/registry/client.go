package registry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ohappykust/busgov-extractor/internal/config"
	apperrors "github.com/ohappykust/busgov-extractor/internal/errors"
	"github.com/ohappykust/busgov-extractor/internal/infrastructure"
)

// Filter narrows the index search. Lists are sent as repeated parameters;
// Areas and City are optional single values.
type Filter struct {
	Regions []string
	VGUName []string
	VGUIDs  []string
	Areas   string
	City    string
}

// Client talks to the three bus.gov.ru endpoints
type Client struct {
	httpClient    *http.Client
	baseURL       string
	ratingBaseURL string
	selectedYear  int
	pageSize      int
	userAgent     string
	metrics       *infrastructure.ExportMetrics
	logger        *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the transport, mostly for tests
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics records request counts and latencies
func WithMetrics(m *infrastructure.ExportMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger used for request tracing
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient builds a client from the registry section of the configuration
func NewClient(cfg config.RegistryConfig, opts ...Option) *Client {
	c := &Client{
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		ratingBaseURL: strings.TrimRight(cfg.RatingBaseURL, "/"),
		selectedYear:  cfg.SelectedYear,
		pageSize:      cfg.PageSize,
		userAgent:     cfg.UserAgent,
		logger:        infrastructure.GetLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IndexURL builds the search URL. Parameter order is fixed: paging and
// ordering first, then areas and city, then the repeated filter lists.
func (c *Client) IndexURL(f Filter) string {
	var b strings.Builder
	b.WriteString(c.baseURL + "/" + config.IndexSearchPath)
	b.WriteString("?orderAttributeName=conformity&orderDirectionASC=false&searchTermCondition=or&pageNumber=1")
	b.WriteString("&pageSize=" + strconv.Itoa(c.pageSize))

	if f.Areas != "" {
		b.WriteString("&areas=" + url.QueryEscape(f.Areas))
	}
	if f.City != "" {
		b.WriteString("&city=" + url.QueryEscape(f.City))
	}
	writeRepeated(&b, "regions", f.Regions)
	writeRepeated(&b, "vguName", f.VGUName)
	writeRepeated(&b, "vguIds", f.VGUIDs)

	return b.String()
}

// DetailURL builds the agency/compare URL for one organization
func (c *Client) DetailURL(id AgencyID) string {
	return fmt.Sprintf("%s/%s?selectedYear=%d&compareAgencyIds=%s",
		c.baseURL, config.DetailLookupPath, c.selectedYear, id)
}

// QualityURL builds the bulk rating URL with one compareAgencyIds per id
func (c *Client) QualityURL(ids []AgencyID) string {
	params := make([]string, len(ids))
	for i, id := range ids {
		params[i] = "compareAgencyIds=" + id.String()
	}
	return c.ratingBaseURL + "/" + config.QualityPath + "?" + strings.Join(params, "&")
}

func writeRepeated(b *strings.Builder, key string, values []string) {
	for _, v := range values {
		b.WriteString("&" + key + "=" + url.QueryEscape(v))
	}
}

// FetchOrgIndex runs the index search. A non-success status is a network
// error and a body without organizations is an empty-result error.
func (c *Client) FetchOrgIndex(ctx context.Context, f Filter) ([]OrgStub, error) {
	body, err := c.get(ctx, "index", c.IndexURL(f))
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to load organizations", err)
	}

	var resp IndexResponse
	if err := decodeJSON(body, &resp); err != nil {
		return nil, apperrors.NewParsingError("malformed organization index", err)
	}
	if len(resp.Orgs) == 0 {
		return nil, apperrors.NewEmptyResultError("no organizations match the filter")
	}
	return resp.Orgs, nil
}

// FetchOrgDetail loads the full data bundle of one organization. Any failure
// is returned as a partial fetch error for the caller to absorb.
func (c *Client) FetchOrgDetail(ctx context.Context, id AgencyID) (*OrgDetail, error) {
	body, err := c.get(ctx, "detail", c.DetailURL(id))
	if err != nil {
		return nil, apperrors.NewPartialFetchError(int64(id), err)
	}

	var detail OrgDetail
	if err := decodeJSON(body, &detail); err != nil {
		return nil, apperrors.NewPartialFetchError(int64(id), fmt.Errorf("malformed detail: %w", err))
	}
	return &detail, nil
}

// FetchQualityScores loads ratings for all ids in one request; the payload is
// atomic, so any failure aborts.
func (c *Client) FetchQualityScores(ctx context.Context, ids []AgencyID) (QualityResponse, error) {
	body, err := c.get(ctx, "quality", c.QualityURL(ids))
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to load quality ratings", err)
	}

	var resp QualityResponse
	if err := decodeJSON(body, &resp); err != nil {
		return nil, apperrors.NewParsingError("malformed quality ratings", err)
	}
	if resp == nil {
		resp = QualityResponse{}
	}
	return resp, nil
}

func (c *Client) get(ctx context.Context, endpoint, rawURL string) ([]byte, error) {
	start := time.Now()
	body, err := c.do(ctx, rawURL)
	c.metrics.RecordRequest(ctx, endpoint, err == nil, time.Since(start))

	c.logger.DebugContext(ctx, "Registry request",
		slog.String("endpoint", endpoint),
		slog.String("url", rawURL),
		slog.Duration("duration", time.Since(start)),
		slog.Bool("ok", err == nil))

	return body, err
}

func (c *Client) do(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", config.DefaultAccept)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
