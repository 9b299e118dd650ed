package codelearn

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Error type names. They double as metric labels.
const (
	ErrorTypeConfig  = "ConfigError"
	ErrorTypeNetwork = "NetworkError"
	ErrorTypeServer  = "ServerError"
)

// Sentinel errors for common failure scenarios
var (
	// ErrUnsupportedMethod is the cause of a ConfigError raised for an unknown HTTP verb.
	ErrUnsupportedMethod = errors.New("codelearn: unsupported HTTP method")

	// ErrNoBaseURL is returned when a relative path is requested without a base URL.
	ErrNoBaseURL = errors.New("codelearn: no base URL configured")
)

// Error implements error interface.
func (e *ClientError) Error() string {
	if e == nil {
		return "<nil>"
	}

	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (%v)", msg, e.Cause)
	}
	if e.RequestID != "" {
		msg = fmt.Sprintf("[%s] %s", e.RequestID, msg)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ClientError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is compares error types for errors.Is.
func (e *ClientError) Is(target error) bool {
	if e == nil {
		return false
	}
	if targetErr, ok := target.(*ClientError); ok {
		return e.Type == targetErr.Type
	}
	return false
}

// DebugInfo renders a multi-line string with diagnostic context.
func (e *ClientError) DebugInfo() string {
	if e == nil {
		return "Error: <nil>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Error Type: %s\n", e.Type)
	fmt.Fprintf(&b, "Message: %s\n", e.Message)
	if e.RequestID != "" {
		fmt.Fprintf(&b, "Request ID: %s\n", e.RequestID)
	}
	if e.Method != "" {
		fmt.Fprintf(&b, "Method: %s\n", e.Method)
	}
	if e.URL != "" {
		fmt.Fprintf(&b, "URL: %s\n", e.URL)
	}
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, "Status Code: %d\n", e.StatusCode)
	}
	if e.ServerMessage != "" {
		fmt.Fprintf(&b, "Server Message: %s\n", e.ServerMessage)
	}
	if e.Timeout {
		b.WriteString("Timeout: true\n")
	}
	if !e.Timestamp.IsZero() {
		fmt.Fprintf(&b, "Timestamp: %s\n", e.Timestamp.Format(time.RFC3339))
	}
	if e.Duration > 0 {
		fmt.Fprintf(&b, "Duration: %v\n", e.Duration)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, "Cause: %v\n", e.Cause)
	}
	return b.String()
}

func errorOfType(err error, errorType string) bool {
	var clientErr *ClientError
	return errors.As(err, &clientErr) && clientErr.Type == errorType
}

// IsConfigError reports whether err is a request that could not be built.
func IsConfigError(err error) bool { return errorOfType(err, ErrorTypeConfig) }

// IsNetworkError reports whether err means no response was received.
func IsNetworkError(err error) bool { return errorOfType(err, ErrorTypeNetwork) }

// IsServerError reports whether err carries a non-2xx response.
func IsServerError(err error) bool { return errorOfType(err, ErrorTypeServer) }

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.StatusCode
	}
	return 0
}

// serverMessage extracts a human readable message from an error body. The
// backend answers with {"message": ...}, DRF with {"detail": ...} and a few
// actions with {"error": ...}.
func serverMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, field := range []string{"message", "detail", "error"} {
		if s, ok := payload[field].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
