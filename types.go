package codelearn

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"
)

// Request describes a single outbound call. It is treated as immutable once
// handed to the Client.
type Request struct {
	Method  string
	Path    string
	Body    any
	Header  http.Header
	Query   url.Values
	Timeout time.Duration
}

// RequestConfig carries per-call overrides for the verb helpers.
type RequestConfig struct {
	Header  http.Header
	Query   url.Values
	Timeout time.Duration
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if r == nil || len(r.Body) == 0 || v == nil {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

// Middleware represents a middleware function
type Middleware func(req *http.Request, next RoundTripper) (*http.Response, error)

// RoundTripper represents the HTTP transport interface
type RoundTripper interface {
	RoundTrip(*http.Request) (*http.Response, error)
}

// RoundTripperFunc is a helper type for middleware
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Option represents a configuration option
type Option func(*Client)

// ClientError represents an error from the client
type ClientError struct {
	Type          string
	Message       string
	Cause         error
	RequestID     string
	Method        string
	URL           string
	Endpoint      string
	StatusCode    int
	Body          []byte
	ServerMessage string
	Timeout       bool
	Timestamp     time.Time
	Duration      time.Duration
}
