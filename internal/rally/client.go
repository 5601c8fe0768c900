// Package rally is the Item Repository Adapter for the Rally (CA Agile
// Central) Web Services API v2.0.
package rally

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/alexanderramin/reqreport/internal/domain"
	"github.com/alexanderramin/reqreport/internal/repository"
	"github.com/alexanderramin/reqreport/internal/telemetry"
)

const (
	endpointStories  = "hierarchicalrequirement"
	endpointReleases = "release"
	endpointProjects = "project"
)

// Client talks to WSAPI. It implements repository.Backend.
type Client struct {
	cfg      Config
	http     *http.Client
	limiter  *rate.Limiter
	observer Observer
	metrics  *telemetry.Metrics
	logger   *slog.Logger
	decode   *decoder

	mu          sync.Mutex
	projectRefs map[string]string
}

var _ repository.Backend = (*Client)(nil)

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a WSAPI client. Requests are paced by a token bucket
// sized from cfg.RateLimit.
func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		limiter:     rate.NewLimiter(rate.Inf, 1),
		observer:    NoopObserver{},
		logger:      slog.New(slog.DiscardHandler),
		decode:      newDecoder(cfg),
		projectRefs: make(map[string]string),
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type requestIDKey struct{}

// ContextWithRequestID tags every call made with ctx with id, so all pages
// of one report pass share an X-Request-ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// FetchItems loads every item matching the broad filter for q, all pages
// aggregated, ObjectID descending.
func (c *Client) FetchItems(ctx context.Context, q repository.ItemQuery) ([]domain.WorkItem, error) {
	const op = "fetch items"
	ctx = ContextWithRequestID(ctx, requestID(ctx))

	params, err := c.scopeParams(ctx, q.Scope)
	if err != nil {
		return nil, err
	}
	if filter := ItemFilter(q); !filter.IsZero() {
		params.Set("query", filter.String())
	}
	params.Set("order", "ObjectID desc")
	params.Set("fetch", itemFields(c.cfg))

	var items []domain.WorkItem
	err = c.paginate(ctx, op, endpointStories, params, func(raw json.RawMessage) error {
		item, err := c.decode.workItem(raw)
		if err != nil {
			return err
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.metrics.ObserveItemsLoaded(len(items))
	return items, nil
}

// FetchRelease returns the release called name, the latest-ending one if
// several projects in scope carry a copy.
func (c *Client) FetchRelease(ctx context.Context, scope repository.ProjectScope, name string) (*domain.Release, error) {
	const op = "fetch release"
	ctx = ContextWithRequestID(ctx, requestID(ctx))

	params, err := c.scopeParams(ctx, scope)
	if err != nil {
		return nil, err
	}
	params.Set("query", Cond("Name", "=", name).String())
	params.Set("order", "ReleaseDate desc")
	params.Set("fetch", releaseFields)
	params.Set("pagesize", "1")
	params.Set("start", "1")

	resp, err := c.get(ctx, op, endpointReleases, params, 0)
	if err != nil {
		return nil, err
	}
	if len(resp.QueryResult.Results) == 0 {
		return nil, &FetchError{Op: op, Err: fmt.Errorf("%w: %q", ErrReleaseNotFound, name)}
	}
	rel, err := c.decode.release(resp.QueryResult.Results[0])
	if err != nil {
		return nil, &FetchError{Op: op, Err: err}
	}
	return &rel, nil
}

// ListReleases returns one release per name visible from scope, most recent
// release date first.
func (c *Client) ListReleases(ctx context.Context, scope repository.ProjectScope) ([]domain.Release, error) {
	const op = "list releases"
	ctx = ContextWithRequestID(ctx, requestID(ctx))

	params, err := c.scopeParams(ctx, scope)
	if err != nil {
		return nil, err
	}
	params.Set("order", "ReleaseDate desc")
	params.Set("fetch", releaseFields)

	var releases []domain.Release
	err = c.paginate(ctx, op, endpointReleases, params, func(raw json.RawMessage) error {
		rel, err := c.decode.release(raw)
		if err != nil {
			return err
		}
		releases = append(releases, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return repository.DistinctReleases(releases), nil
}

// paginate walks a collection with 1-based start indexes until start passes
// TotalResultCount, handing each record to visit.
func (c *Client) paginate(ctx context.Context, op, endpoint string, params url.Values, visit func(json.RawMessage) error) error {
	pageSize := c.cfg.PageSize
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}
	params.Set("pagesize", strconv.Itoa(pageSize))

	for start := 1; ; start += pageSize {
		params.Set("start", strconv.Itoa(start))
		resp, err := c.get(ctx, op, endpoint, params, start)
		if err != nil {
			return err
		}
		c.metrics.ObservePage()
		for _, raw := range resp.QueryResult.Results {
			if err := visit(raw); err != nil {
				return &FetchError{Op: op, Err: err}
			}
		}
		if len(resp.QueryResult.Results) == 0 || start+pageSize > resp.QueryResult.TotalResultCount {
			return nil
		}
	}
}

// get performs one paced GET and decodes the WSAPI envelope.
func (c *Client) get(ctx context.Context, op, endpoint string, params url.Values, start int) (*queryResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Op: op, Err: classifyTransport(ctx, err)}
	}

	began := time.Now()
	event := CallEvent{Endpoint: endpoint, Op: op, RequestID: requestID(ctx), Start: start}

	resp, status, err := c.do(ctx, endpoint, params)
	event.Status = status
	event.LatencyMs = time.Since(began).Milliseconds()
	c.metrics.ObserveRequest(endpoint, status, time.Since(began))

	if err == nil {
		event.Results = len(resp.QueryResult.Results)
		for _, w := range resp.QueryResult.Warnings {
			c.logger.Warn("rally warning", "op", op, "warning", w)
		}
	}
	event.Success = err == nil
	event.ErrorCode = errorCode(err)
	c.observer.OnCallComplete(event)

	if err != nil {
		return nil, &FetchError{Op: op, Status: status, Err: err}
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, endpoint string, params url.Values) (*queryResponse, int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeout())
	defer cancel()

	u := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("ZSESSIONID", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-RallyIntegrationName", c.cfg.IntegrationName)
	req.Header.Set("X-RallyIntegrationVersion", c.cfg.IntegrationVersion)
	req.Header.Set("X-Request-ID", requestID(ctx))

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, classifyTransport(ctx, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, httpResp.StatusCode, classifyTransport(ctx, err)
	}

	switch {
	case httpResp.StatusCode == http.StatusUnauthorized, httpResp.StatusCode == http.StatusForbidden:
		return nil, httpResp.StatusCode, ErrUnauthorized
	case httpResp.StatusCode == http.StatusTooManyRequests, httpResp.StatusCode >= 500:
		return nil, httpResp.StatusCode, fmt.Errorf("%w: %s", ErrUnavailable, snippet(body))
	case httpResp.StatusCode != http.StatusOK:
		return nil, httpResp.StatusCode, fmt.Errorf("%w: %s", ErrQuery, snippet(body))
	}

	var resp queryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, httpResp.StatusCode, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	// WSAPI reports query errors with HTTP 200.
	if len(resp.QueryResult.Errors) > 0 {
		return nil, httpResp.StatusCode, fmt.Errorf("%w: %s", ErrQuery, strings.Join(resp.QueryResult.Errors, "; "))
	}
	return &resp, httpResp.StatusCode, nil
}

// scopeParams renders workspace and project scoping parameters.
func (c *Client) scopeParams(ctx context.Context, scope repository.ProjectScope) (url.Values, error) {
	params := url.Values{}
	if c.cfg.Workspace != "" {
		params.Set("workspace", objectPath(endpointWorkspace, c.cfg.Workspace))
	}
	if scope.Project == "" {
		return params, nil
	}
	ref, err := c.projectRef(ctx, scope.Project)
	if err != nil {
		return nil, err
	}
	params.Set("project", ref)
	params.Set("projectScopeUp", strconv.FormatBool(scope.Up))
	params.Set("projectScopeDown", strconv.FormatBool(scope.Down))
	return params, nil
}

const endpointWorkspace = "workspace"

// projectRef resolves a project name to its ref, caching the answer.
// ObjectIDs and refs pass through unchanged.
func (c *Client) projectRef(ctx context.Context, project string) (string, error) {
	if isObjectRef(project) {
		return objectPath(endpointProjects, project), nil
	}

	c.mu.Lock()
	ref, ok := c.projectRefs[project]
	c.mu.Unlock()
	if ok {
		return ref, nil
	}

	const op = "resolve project"
	params := url.Values{}
	if c.cfg.Workspace != "" {
		params.Set("workspace", objectPath(endpointWorkspace, c.cfg.Workspace))
	}
	params.Set("query", Cond("Name", "=", project).String())
	params.Set("fetch", "ObjectID,Name")
	params.Set("pagesize", "1")

	resp, err := c.get(ctx, op, endpointProjects, params, 0)
	if err != nil {
		return "", err
	}
	if len(resp.QueryResult.Results) == 0 {
		return "", &FetchError{Op: op, Err: fmt.Errorf("%w: %q", ErrProjectNotFound, project)}
	}
	var rec objectRef
	if err := json.Unmarshal(resp.QueryResult.Results[0], &rec); err != nil {
		return "", &FetchError{Op: op, Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	id, err := rec.id()
	if err != nil {
		return "", &FetchError{Op: op, Err: fmt.Errorf("%w: %v", ErrInvalidRecord, err)}
	}
	ref = objectPath(endpointProjects, strconv.FormatInt(id, 10))

	c.mu.Lock()
	c.projectRefs[project] = ref
	c.mu.Unlock()
	return ref, nil
}

func isObjectRef(s string) bool {
	if strings.HasPrefix(s, "/") || strings.HasPrefix(s, "http") {
		return true
	}
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

// objectPath turns an ObjectID into "/kind/<id>" and keeps refs as given.
func objectPath(kind, s string) string {
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return "/" + kind + "/" + s
	}
	return s
}

func classifyTransport(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return context.Canceled
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return ErrTimeout
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) <= limit {
		return s
	}
	n := limit
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
