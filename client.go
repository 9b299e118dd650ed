package codelearn

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultBaseURL is the API root of a locally running backend.
const DefaultBaseURL = "http://localhost:8000/api"

// DefaultTimeout bounds every request unless overridden.
const DefaultTimeout = 10 * time.Second

const maxResponseSize = 10 * 1024 * 1024

var supportedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// Client is the transport shared by every request: base URL, default
// headers, timeout and bearer-token injection, wrapped around a standard
// net/http Client. It is safe for concurrent use.
type Client struct {
	httpClient      *http.Client
	baseURL         *url.URL
	baseURLErr      error
	headers         http.Header
	timeout         time.Duration
	credentials     CredentialProvider
	middleware      []Middleware
	metrics         *MetricsCollector
	logger          zerolog.Logger
	requestIDGen    func() string
	tracing         bool
	tracingOptions  []otelhttp.Option
	validationError error
}

// New constructs a Client using the provided functional options. A best effort
// validation is performed; call IsValid / ValidationError for errors.
func New(options ...Option) *Client {
	base, _ := url.Parse(DefaultBaseURL)

	client := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		baseURL: base,
		headers: http.Header{
			"Content-Type": []string{"application/json"},
			"Accept":       []string{"application/json"},
			"User-Agent":   []string{UserAgent()},
		},
		timeout:      DefaultTimeout,
		credentials:  NoCredentials,
		middleware:   []Middleware{},
		logger:       zerolog.Nop(),
		requestIDGen: uuid.NewString,
	}

	for _, option := range options {
		option(client)
	}

	if client.tracing && client.httpClient != nil {
		instrumented := *client.httpClient
		transport := instrumented.Transport
		if transport == nil {
			transport = http.DefaultTransport
		}
		instrumented.Transport = otelhttp.NewTransport(transport, client.tracingOptions...)
		client.httpClient = &instrumented
	}

	if err := client.ValidateConfiguration(); err != nil {
		client.validationError = err
	}

	return client
}

// Get performs an HTTP GET against path.
func (c *Client) Get(ctx context.Context, path string, cfg *RequestConfig) (*Response, error) {
	return c.Do(ctx, newRequest(http.MethodGet, path, nil, cfg))
}

// Post performs an HTTP POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, cfg *RequestConfig) (*Response, error) {
	return c.Do(ctx, newRequest(http.MethodPost, path, body, cfg))
}

// Put performs an HTTP PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any, cfg *RequestConfig) (*Response, error) {
	return c.Do(ctx, newRequest(http.MethodPut, path, body, cfg))
}

// Patch performs an HTTP PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any, cfg *RequestConfig) (*Response, error) {
	return c.Do(ctx, newRequest(http.MethodPatch, path, body, cfg))
}

// Delete performs an HTTP DELETE.
func (c *Client) Delete(ctx context.Context, path string, cfg *RequestConfig) (*Response, error) {
	return c.Do(ctx, newRequest(http.MethodDelete, path, nil, cfg))
}

// DoJSON executes req and decodes a successful body into out.
func (c *Client) DoJSON(ctx context.Context, req Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if err := resp.Decode(out); err != nil {
		return &ClientError{
			Type:       ErrorTypeServer,
			Message:    "response body is not valid JSON",
			Cause:      err,
			Method:     req.Method,
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
			Timestamp:  time.Now(),
		}
	}
	return nil
}

func newRequest(method, path string, body any, cfg *RequestConfig) Request {
	req := Request{Method: method, Path: path, Body: body}
	if cfg != nil {
		req.Header = cfg.Header
		req.Query = cfg.Query
		req.Timeout = cfg.Timeout
	}
	return req
}

// Do executes a request descriptor. It returns the read response on 2xx and a
// *ClientError classified as ConfigError, NetworkError or ServerError
// otherwise.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	start := time.Now()
	var requestID string
	if c.requestIDGen != nil {
		requestID = c.requestIDGen()
	}
	method := strings.ToUpper(strings.TrimSpace(r.Method))

	if c.validationError != nil {
		return nil, &ClientError{
			Type:      ErrorTypeConfig,
			Message:   "client is misconfigured",
			Cause:     c.validationError,
			RequestID: requestID,
			Method:    method,
			Timestamp: time.Now(),
		}
	}

	if !supportedMethods[method] {
		return nil, &ClientError{
			Type:      ErrorTypeConfig,
			Message:   fmt.Sprintf("unsupported HTTP method %q", r.Method),
			Cause:     ErrUnsupportedMethod,
			RequestID: requestID,
			Method:    r.Method,
			Timestamp: time.Now(),
		}
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	req, err := c.buildRequest(ctx, method, r)
	if err != nil {
		return nil, &ClientError{
			Type:      ErrorTypeConfig,
			Message:   "request could not be constructed",
			Cause:     err,
			RequestID: requestID,
			Method:    method,
			URL:       r.Path,
			Timestamp: time.Now(),
		}
	}

	endpoint := getEndpointFromRequest(req)
	logger := c.logger.With().
		Str("requestID", requestID).
		Str("method", method).
		Str("endpoint", endpoint).
		Logger()

	logger.Debug().Str("url", req.URL.String()).Msg("starting request")

	c.metrics.RecordRequestStart(method, endpoint)
	resp, err := c.executeMiddleware(req)
	c.metrics.RecordRequestEnd(method, endpoint)

	if err != nil {
		c.metrics.RecordRequest(method, endpoint, 0, time.Since(start))
		c.metrics.RecordError(ErrorTypeNetwork, method, endpoint)
		logger.Warn().Err(err).Msg("request failed without response")
		return nil, c.createClientError(ErrorTypeNetwork, "network request failed", err, requestID, req, start)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		c.metrics.RecordRequest(method, endpoint, resp.StatusCode, time.Since(start))
		c.metrics.RecordError(ErrorTypeNetwork, method, endpoint)
		logger.Warn().Err(err).Int("statusCode", resp.StatusCode).Msg("response body could not be read")
		return nil, c.createClientError(ErrorTypeNetwork, "response body could not be read", err, requestID, req, start)
	}

	duration := time.Since(start)
	c.metrics.RecordRequest(method, endpoint, resp.StatusCode, duration)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.RecordError(ErrorTypeServer, method, endpoint)
		clientErr := c.createClientError(ErrorTypeServer, fmt.Sprintf("server responded with status %d", resp.StatusCode), nil, requestID, req, start)
		clientErr.StatusCode = resp.StatusCode
		clientErr.Body = body
		clientErr.ServerMessage = serverMessage(body)
		logger.Warn().Int("statusCode", resp.StatusCode).Str("serverMessage", clientErr.ServerMessage).Msg("request rejected")
		return nil, clientErr
	}

	logger.Debug().Int("statusCode", resp.StatusCode).Dur("duration", duration).Msg("request completed")

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
	}, nil
}

func (c *Client) buildRequest(ctx context.Context, method string, r Request) (*http.Request, error) {
	target, err := c.resolveURL(r.Path, r.Query)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if r.Body != nil {
		payload, err := encodeBody(r.Body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, err
	}

	for key, values := range c.headers {
		req.Header[key] = append([]string(nil), values...)
	}
	for key, values := range r.Header {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	token, err := c.credentials.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, nil
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	case string:
		return []byte(b), nil
	default:
		return json.Marshal(body)
	}
}

func (c *Client) resolveURL(path string, query url.Values) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", path, err)
	}

	var target url.URL
	if ref.IsAbs() {
		target = *ref
	} else {
		if c.baseURL == nil {
			return nil, ErrNoBaseURL
		}
		target = *c.baseURL
		target.Path = joinPath(c.baseURL.Path, ref.Path)
		target.RawPath = ""
		target.RawQuery = ref.RawQuery
	}

	if len(query) > 0 {
		values := target.Query()
		for key, vs := range query {
			for _, v := range vs {
				values.Add(key, v)
			}
		}
		target.RawQuery = values.Encode()
	}

	return &target, nil
}

func joinPath(base, path string) string {
	if path == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) executeMiddleware(req *http.Request) (*http.Response, error) {
	if len(c.middleware) == 0 {
		return c.httpClient.Do(req)
	}

	current := RoundTripperFunc(c.httpClient.Do)

	for i := len(c.middleware) - 1; i >= 0; i-- {
		middleware := c.middleware[i]
		next := current
		current = RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			return middleware(r, next)
		})
	}

	return current.RoundTrip(req)
}

func (c *Client) createClientError(errorType, message string, cause error, requestID string, req *http.Request, start time.Time) *ClientError {
	return &ClientError{
		Type:      errorType,
		Message:   message,
		Cause:     cause,
		RequestID: requestID,
		Method:    req.Method,
		URL:       req.URL.String(),
		Endpoint:  getEndpointFromRequest(req),
		Timeout:   isTimeout(cause),
		Timestamp: time.Now(),
		Duration:  time.Since(start),
	}
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	if c.baseURL == nil {
		return ""
	}
	return c.baseURL.String()
}

// Logger returns the client's logger so collaborators log consistently.
func (c *Client) Logger() zerolog.Logger {
	return c.logger
}

// Metrics returns the collector, or nil when metrics are disabled.
func (c *Client) Metrics() *MetricsCollector {
	return c.metrics
}

// IsValid reports whether configuration validation passed at construction.
func (c *Client) IsValid() bool {
	return c.validationError == nil
}

// ValidationError returns the configuration validation error, if any.
func (c *Client) ValidationError() error {
	return c.validationError
}

func getEndpointFromRequest(req *http.Request) string {
	if req.URL == nil {
		return "unknown"
	}

	host := req.URL.Host
	path := req.URL.Path

	var builder strings.Builder
	builder.WriteString(host)

	if path != "" && path != "/" {
		builder.WriteString(path)
	} else {
		builder.WriteByte('/')
	}

	return builder.String()
}
