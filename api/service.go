// Package api is the typed service layer over the CodeLearn REST backend.
// Reads are cache-bound queries, writes are mutations that invalidate the
// query keys they affect.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	codelearn "github.com/Niavlys042/codelearn-journey-forge.github.io"
)

// Service exposes every backend operation used by the application.
type Service struct {
	client    *codelearn.Client
	queries   *codelearn.QueryClient
	notifier  codelearn.Notifier
	messages  codelearn.Messages
	validator *Validator
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier sets where mutation outcomes are reported.
func WithNotifier(n codelearn.Notifier) Option {
	return func(s *Service) {
		if n == nil {
			n = codelearn.NopNotifier{}
		}
		s.notifier = n
	}
}

// WithMessages overrides the fallback failure texts.
func WithMessages(m codelearn.Messages) Option {
	return func(s *Service) { s.messages = m }
}

// WithValidator replaces the payload validator.
func WithValidator(v *Validator) Option {
	return func(s *Service) { s.validator = v }
}

// NewService binds the services to a transport and a query cache.
func NewService(client *codelearn.Client, qc *codelearn.QueryClient, opts ...Option) *Service {
	s := &Service{
		client:    client,
		queries:   qc,
		notifier:  codelearn.NewLogNotifier(client.Logger()),
		messages:  codelearn.DefaultMessages(),
		validator: NewValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Client returns the underlying transport.
func (s *Service) Client() *codelearn.Client {
	return s.client
}

// Queries returns the query cache.
func (s *Service) Queries() *codelearn.QueryClient {
	return s.queries
}

// get decodes a GET response. Query fetches do not notify; the caller
// renders the query's error state.
func get[T any](ctx context.Context, s *Service, path string, cfg *codelearn.RequestConfig) (T, error) {
	var out T
	resp, err := s.client.Get(ctx, path, cfg)
	if err != nil {
		return out, err
	}
	if err := resp.Decode(&out); err != nil {
		return out, &codelearn.ClientError{
			Type:       codelearn.ErrorTypeServer,
			Message:    "response body is not valid JSON",
			Cause:      err,
			Method:     http.MethodGet,
			URL:        path,
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
			Timestamp:  time.Now(),
		}
	}
	return out, nil
}

func query[T any](s *Service, key codelearn.QueryKey, path string, cfg *codelearn.RequestConfig) *codelearn.Query[T] {
	return codelearn.NewQuery(s.queries, key, func(ctx context.Context) (T, error) {
		return get[T](ctx, s, path, cfg)
	})
}

// call describes one mutation request.
type call[In any] struct {
	method  string
	path    func(In) string
	body    func(In) any
	success string

	// invalidates derives keys from the input, beyond the fixed ones.
	invalidates func(In) []codelearn.QueryKey
}

// mutation builds a Mutation whose Fn validates the payload and sends it
// through a Requester, so failures are classified and notified uniformly.
func mutation[In, Out any](s *Service, c call[In], invalidates ...codelearn.QueryKey) *codelearn.Mutation[In, Out] {
	var invalidatesFor func(In, Out) []codelearn.QueryKey
	if c.invalidates != nil {
		invalidatesFor = func(in In, _ Out) []codelearn.QueryKey { return c.invalidates(in) }
	}

	return codelearn.NewMutation(s.queries, codelearn.MutationConfig[In, Out]{
		Fn: func(ctx context.Context, in In) (Out, error) {
			var zero Out

			var body any
			if c.body != nil {
				body = c.body(in)
			}
			checked := body
			if checked == nil {
				checked = in
			}
			if err := s.validate(ctx, checked); err != nil {
				return zero, err
			}

			requester := codelearn.NewRequester[Out](s.client,
				codelearn.WithNotifier(s.notifier),
				codelearn.WithMessages(s.messages),
			)
			out, apiErr := requester.Call(ctx, c.method, c.path(in), body, nil, &codelearn.CallOptions{
				ShowSuccessToast: c.success != "",
				SuccessMessage:   c.success,
			})
			if apiErr != nil {
				return zero, apiErr
			}
			return *out, nil
		},
		Invalidates:    invalidates,
		InvalidatesFor: invalidatesFor,
	})
}

// validate checks the payload and reports a failure the way a rejected
// request is reported.
func (s *Service) validate(ctx context.Context, payload any) error {
	err := s.validator.Struct(payload)
	if err == nil {
		return nil
	}

	apiErr := &codelearn.APIError{
		Type:    codelearn.ErrorTypeConfig,
		Message: s.messages.Validation,
		Cause:   err,
	}
	if fields := s.validator.Fields(err); len(fields) > 0 {
		apiErr.Body, _ = json.Marshal(fields)
	}
	s.notifier.Error(ctx, apiErr.Message)
	return apiErr
}

func fixed[In any](path string) func(In) string {
	return func(In) string { return path }
}

func payload[In any](in In) any {
	return in
}
