// Package transport is the single HTTP path to the ConnectU service. It
// attaches the stored bearer token, normalizes every failure into an
// *apierr.Error carrying a fixed user-facing message, and wipes the stored
// credentials when the server answers 401.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/observability"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/apierr"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/ctxutil"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/logger"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/notify"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/securestore"
)

const (
	DefaultBaseURL = "http://localhost:3000/api"
	DefaultTimeout = 15 * time.Second

	maxResponseBytes = 10 << 20
)

type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string

	// Store holds the bearer token. Required.
	Store   securestore.Store
	Logger  *logger.Logger
	Metrics *observability.Metrics

	HTTPClient *http.Client
}

type Client struct {
	baseURL   string
	timeout   time.Duration
	userAgent string

	store   securestore.Store
	log     *logger.Logger
	metrics *observability.Metrics
	tracer  trace.Tracer

	httpClient *http.Client

	cleared notify.Registry[struct{}]
}

func New(opts Options) (*Client, error) {
	if opts.Store == nil {
		return nil, errors.New("transport: store required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		baseURL:    baseURL,
		timeout:    timeout,
		userAgent:  strings.TrimSpace(opts.UserAgent),
		store:      opts.Store,
		log:        log.With("component", "transport"),
		metrics:    opts.Metrics,
		tracer:     otel.Tracer("connectu/transport"),
		httpClient: hc,
	}, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

// OnCredentialsCleared registers fn to run after a 401 wiped the stored
// credentials. The returned func unregisters it.
func (c *Client) OnCredentialsCleared(fn func()) func() {
	return c.cleared.Add(func(struct{}) { fn() })
}

// Request describes one call. Path is relative to the base URL and already
// has its ids substituted; Route is the templated form used for span names
// and metric labels.
type Request struct {
	Method string
	Path   string
	Route  string
	Query  url.Values

	// Body is JSON-encoded unless RawBody is set.
	Body        any
	RawBody     io.Reader
	ContentType string

	Header http.Header
}

// Do sends req and decodes a 2xx JSON body into out (nil discards it).
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	raw, err := c.DoRaw(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &apierr.Error{Kind: apierr.KindServer, Message: MsgUnknown, Body: string(raw), Err: err}
	}
	return nil
}

// DoRaw sends req and returns the 2xx body unparsed.
func (c *Client) DoRaw(ctx context.Context, req Request) ([]byte, error) {
	route := req.Route
	if route == "" {
		route = req.Path
	}
	ctx, span := c.tracer.Start(ctx, req.Method+" "+route, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", req.Method),
		attribute.String("http.route", route),
	)

	start := time.Now()
	status, raw, err := c.do(ctx, req)
	kind := ""
	if e, ok := apierr.As(err); ok {
		kind = string(e.Kind)
	}
	c.metrics.ObserveRequest(req.Method, route, status, kind, time.Since(start))
	if status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return raw, nil
}

func (c *Client) do(ctx context.Context, req Request) (int, []byte, error) {
	httpReq, cancel, err := c.build(ctx, req)
	if err != nil {
		c.log.Warn("request build failed", "method", req.Method, "path", req.Path, "error", err)
		return 0, nil, requestError(err)
	}
	defer cancel()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Debug("request failed without response", "method", req.Method, "path", req.Path, "error", err)
		return 0, nil, networkError(err)
	}
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
	if readErr != nil {
		return resp.StatusCode, nil, networkError(readErr)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp.StatusCode, raw, nil
	}

	apiErr := normalize(resp.StatusCode, raw)
	if resp.StatusCode == http.StatusUnauthorized {
		c.clearCredentials(ctx)
	}
	c.log.Debug("request rejected", "method", req.Method, "path", req.Path, "status", resp.StatusCode)
	return resp.StatusCode, nil, apiErr
}

func (c *Client) build(ctx context.Context, req Request) (*http.Request, context.CancelFunc, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	contentType := req.ContentType
	switch {
	case req.RawBody != nil:
		body = req.RawBody
	case req.Body != nil:
		buf, err := json.Marshal(req.Body)
		if err != nil {
			return nil, nil, err
		}
		body = bytes.NewReader(buf)
	}
	if contentType == "" {
		contentType = "application/json"
	}

	u := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		u += "?" + encodeQuery(req.Query)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	httpReq, err := http.NewRequestWithContext(reqCtx, method, u, body)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	for k, vals := range req.Header {
		for _, v := range vals {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	rid := ctxutil.RequestID(ctx)
	if rid == "" {
		rid = uuid.NewString()
	}
	httpReq.Header.Set("X-Request-ID", rid)

	if httpReq.Header.Get("Authorization") == "" {
		token, ok, err := securestore.Lookup(ctx, c.store, securestore.KeyAuthToken)
		switch {
		case err != nil:
			c.log.Warn("token read failed; sending without credentials", "error", err)
		case ok && strings.TrimSpace(token) != "":
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	otel.GetTextMapPropagator().Inject(reqCtx, propagation.HeaderCarrier(httpReq.Header))
	return httpReq, cancel, nil
}

// clearCredentials removes both credential keys in one Delete and tells
// listeners. It runs even if ctx was cancelled by the caller.
func (c *Client) clearCredentials(ctx context.Context) {
	wipeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := c.store.Delete(wipeCtx, securestore.CredentialKeys...); err != nil {
		c.log.Error("credential wipe failed", "error", err)
	} else {
		c.log.Info("stored credentials cleared after 401")
	}
	c.metrics.IncCredentialWipe()
	c.cleared.Notify(struct{}{})
}

// encodeQuery is url.Values.Encode without empty values.
func encodeQuery(q url.Values) string {
	clean := url.Values{}
	for k, vals := range q {
		for _, v := range vals {
			if v != "" {
				clean.Add(k, v)
			}
		}
	}
	return clean.Encode()
}
