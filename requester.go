package codelearn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// APIError is the classified failure stored in a Requester's state.
type APIError struct {
	Type    string
	Status  int
	Message string
	Body    json.RawMessage
	Cause   error
}

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Status > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Type, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// CallOptions controls the notifications of a single call. The zero value
// notifies failures only.
type CallOptions struct {
	ShowSuccessToast   bool
	SuccessMessage     string
	SuppressErrorToast bool
}

// State is a snapshot of a Requester.
type State[T any] struct {
	Loading bool
	Err     *APIError
	Data    *T
}

// RequesterOption configures a Requester.
type RequesterOption func(*requesterConfig)

type requesterConfig struct {
	notifier Notifier
	messages Messages
}

// WithNotifier sets where success and failure notifications go.
func WithNotifier(n Notifier) RequesterOption {
	return func(c *requesterConfig) {
		if n == nil {
			n = NopNotifier{}
		}
		c.notifier = n
	}
}

// WithMessages overrides the fallback failure texts.
func WithMessages(m Messages) RequesterOption {
	return func(c *requesterConfig) {
		c.messages = m
	}
}

// Requester gives callers a uniform way to invoke any HTTP verb against a
// path and observe {loading, error, data}. One Requester models one hook
// instance: a new call supersedes the previous one, cancelling it, and only
// the most recent call may write state.
type Requester[T any] struct {
	client   *Client
	notifier Notifier
	messages Messages

	mu        sync.Mutex
	state     State[T]
	seq       uint64
	cancel    context.CancelFunc
	listeners map[int]func(State[T])
	nextID    int
}

// NewRequester returns a Requester over client. Notifications default to the
// client's logger.
func NewRequester[T any](client *Client, opts ...RequesterOption) *Requester[T] {
	cfg := requesterConfig{
		notifier: NewLogNotifier(client.Logger()),
		messages: DefaultMessages(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Requester[T]{
		client:    client,
		notifier:  cfg.notifier,
		messages:  cfg.messages,
		listeners: make(map[int]func(State[T])),
	}
}

// Get performs a GET through Request.
func (r *Requester[T]) Get(ctx context.Context, path string, cfg *RequestConfig, opts *CallOptions) *T {
	return r.Request(ctx, "get", path, nil, cfg, opts)
}

// Post performs a POST through Request.
func (r *Requester[T]) Post(ctx context.Context, path string, body any, cfg *RequestConfig, opts *CallOptions) *T {
	return r.Request(ctx, "post", path, body, cfg, opts)
}

// Put performs a PUT through Request.
func (r *Requester[T]) Put(ctx context.Context, path string, body any, cfg *RequestConfig, opts *CallOptions) *T {
	return r.Request(ctx, "put", path, body, cfg, opts)
}

// Patch performs a PATCH through Request.
func (r *Requester[T]) Patch(ctx context.Context, path string, body any, cfg *RequestConfig, opts *CallOptions) *T {
	return r.Request(ctx, "patch", path, body, cfg, opts)
}

// Delete performs a DELETE through Request.
func (r *Requester[T]) Delete(ctx context.Context, path string, cfg *RequestConfig, opts *CallOptions) *T {
	return r.Request(ctx, "delete", path, nil, cfg, opts)
}

// Request is the single primitive behind the verb helpers. It returns the
// decoded body, or nil when the call did not succeed; Err holds the detail.
func (r *Requester[T]) Request(ctx context.Context, method, path string, body any, cfg *RequestConfig, opts *CallOptions) *T {
	data, _ := r.Call(ctx, method, path, body, cfg, opts)
	return data
}

// Call is Request returning the classified failure alongside the data, for
// callers that need the outcome of this specific call.
func (r *Requester[T]) Call(ctx context.Context, method, path string, body any, cfg *RequestConfig, opts *CallOptions) (*T, *APIError) {
	if opts == nil {
		opts = &CallOptions{}
	}

	callCtx, seq, cancel := r.begin(ctx)
	defer r.finish(seq, cancel)

	resp, err := r.dispatch(callCtx, method, path, body, cfg)
	if err == nil {
		var out T
		if decodeErr := resp.Decode(&out); decodeErr != nil {
			err = &ClientError{
				Type:       ErrorTypeServer,
				Message:    "response body is not valid JSON",
				Cause:      decodeErr,
				Method:     strings.ToUpper(method),
				StatusCode: resp.StatusCode,
				Body:       resp.Body,
				Timestamp:  time.Now(),
			}
		} else {
			latest := r.settle(seq, func(s *State[T]) { s.Data = &out })
			if latest && opts.ShowSuccessToast && opts.SuccessMessage != "" {
				r.notifier.Success(ctx, opts.SuccessMessage)
			}
			return &out, nil
		}
	}

	apiErr := r.classify(err)
	latest := r.settle(seq, func(s *State[T]) { s.Err = apiErr })
	if latest && !opts.SuppressErrorToast {
		r.notifier.Error(ctx, apiErr.Message)
	}
	return nil, apiErr
}

func (r *Requester[T]) dispatch(ctx context.Context, method, path string, body any, cfg *RequestConfig) (*Response, error) {
	switch strings.ToLower(method) {
	case "get":
		return r.client.Get(ctx, path, cfg)
	case "post":
		return r.client.Post(ctx, path, body, cfg)
	case "put":
		return r.client.Put(ctx, path, body, cfg)
	case "patch":
		return r.client.Patch(ctx, path, body, cfg)
	case "delete":
		return r.client.Delete(ctx, path, cfg)
	default:
		return nil, &ClientError{
			Type:      ErrorTypeConfig,
			Message:   fmt.Sprintf("unsupported HTTP method %q", method),
			Cause:     ErrUnsupportedMethod,
			Method:    method,
			URL:       path,
			Timestamp: time.Now(),
		}
	}
}

// classify picks the message in priority order: server supplied, network
// fallback, generic server fallback.
func (r *Requester[T]) classify(err error) *APIError {
	apiErr := &APIError{
		Type:    ErrorTypeServer,
		Message: r.messages.Server,
		Cause:   err,
	}

	var clientErr *ClientError
	if !errors.As(err, &clientErr) {
		return apiErr
	}

	apiErr.Type = clientErr.Type
	apiErr.Status = clientErr.StatusCode
	if len(clientErr.Body) > 0 && json.Valid(clientErr.Body) {
		apiErr.Body = json.RawMessage(clientErr.Body)
	}

	switch {
	case clientErr.ServerMessage != "":
		apiErr.Message = clientErr.ServerMessage
	case clientErr.Type == ErrorTypeNetwork:
		apiErr.Message = r.messages.Network
	case clientErr.StatusCode == http.StatusUnauthorized || clientErr.StatusCode == http.StatusForbidden:
		apiErr.Message = r.messages.Authentication
	}

	return apiErr
}

func (r *Requester[T]) begin(ctx context.Context) (context.Context, uint64, context.CancelFunc) {
	callCtx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.seq++
	seq := r.seq
	r.cancel = cancel
	r.state.Loading = true
	r.state.Err = nil
	snapshot := r.state
	r.mu.Unlock()

	r.publish(snapshot)
	return callCtx, seq, cancel
}

// settle applies fn and clears loading when seq is still the latest call.
func (r *Requester[T]) settle(seq uint64, fn func(*State[T])) bool {
	r.mu.Lock()
	if seq != r.seq {
		r.mu.Unlock()
		return false
	}
	fn(&r.state)
	r.state.Loading = false
	snapshot := r.state
	r.mu.Unlock()

	r.publish(snapshot)
	return true
}

func (r *Requester[T]) finish(seq uint64, cancel context.CancelFunc) {
	cancel()

	r.mu.Lock()
	if seq != r.seq {
		r.mu.Unlock()
		return
	}
	r.cancel = nil
	if !r.state.Loading {
		r.mu.Unlock()
		return
	}
	r.state.Loading = false
	snapshot := r.state
	r.mu.Unlock()

	r.publish(snapshot)
}

// Close cancels the in-flight call and stops it from writing state, the
// equivalent of a component unmounting.
func (r *Requester[T]) Close() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.seq++
	r.state.Loading = false
	r.listeners = make(map[int]func(State[T]))
	r.mu.Unlock()
}

// Subscribe registers fn for every state transition and returns a function
// that removes it.
func (r *Requester[T]) Subscribe(fn func(State[T])) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

func (r *Requester[T]) publish(s State[T]) {
	r.mu.Lock()
	listeners := make([]func(State[T]), 0, len(r.listeners))
	for _, fn := range r.listeners {
		listeners = append(listeners, fn)
	}
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(s)
	}
}

// State returns a snapshot of the requester.
func (r *Requester[T]) State() State[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Loading reports whether the latest call is in flight.
func (r *Requester[T]) Loading() bool {
	return r.State().Loading
}

// Err returns the failure of the latest call, if any.
func (r *Requester[T]) Err() *APIError {
	return r.State().Err
}

// Data returns the last successful result.
func (r *Requester[T]) Data() *T {
	return r.State().Data
}
