package codelearn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(_ context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, message)
}

func (n *recordingNotifier) Error(_ context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, message)
}

func (n *recordingNotifier) Successes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.successes...)
}

func (n *recordingNotifier) Errors() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.errors...)
}

type profile struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

func TestRequesterSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":1,"username":"ada"}`))
	})
	notifier := &recordingNotifier{}
	req := NewRequester[profile](client, WithNotifier(notifier))

	var states []State[profile]
	unsubscribe := req.Subscribe(func(s State[profile]) { states = append(states, s) })
	defer unsubscribe()

	data := req.Get(context.Background(), "/users/profile/", nil, nil)

	require.NotNil(t, data)
	assert.Equal(t, "ada", data.Username)
	assert.False(t, req.Loading())
	assert.Nil(t, req.Err())
	assert.Equal(t, data, req.Data())

	require.Len(t, states, 2)
	assert.True(t, states[0].Loading)
	assert.False(t, states[1].Loading)
	assert.Equal(t, "ada", states[1].Data.Username)

	assert.Empty(t, notifier.Successes())
	assert.Empty(t, notifier.Errors())
}

func TestRequesterSuccessToast(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":1,"username":"ada"}`))
	})
	notifier := &recordingNotifier{}
	req := NewRequester[profile](client, WithNotifier(notifier))

	req.Put(context.Background(), "/users/profile/", profile{Username: "ada"}, nil, &CallOptions{
		ShowSuccessToast: true,
		SuccessMessage:   "Profile updated",
	})
	req.Put(context.Background(), "/users/profile/", profile{Username: "ada"}, nil, &CallOptions{
		ShowSuccessToast: true,
	})

	assert.Equal(t, []string{"Profile updated"}, notifier.Successes())
}

func TestRequesterErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected string
	}{
		{"server message", http.StatusBadRequest, `{"message":"Invalid credentials"}`, "Invalid credentials"},
		{"drf detail", http.StatusUnauthorized, `{"detail":"Invalid token."}`, "Invalid token."},
		{"server fallback", http.StatusInternalServerError, `oops`, DefaultMessages().Server},
		{"authentication fallback", http.StatusUnauthorized, ``, DefaultMessages().Authentication},
		{"forbidden fallback", http.StatusForbidden, `{}`, DefaultMessages().Authentication},
		{"field errors", http.StatusBadRequest, `{"email":["Enter a valid email address."]}`, DefaultMessages().Server},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			notifier := &recordingNotifier{}
			req := NewRequester[profile](client, WithNotifier(notifier))

			data := req.Post(context.Background(), "/users/login/", map[string]string{}, nil, nil)

			assert.Nil(t, data)
			apiErr := req.Err()
			require.NotNil(t, apiErr)
			assert.Equal(t, ErrorTypeServer, apiErr.Type)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.expected, apiErr.Message)
			assert.Equal(t, []string{tt.expected}, notifier.Errors())
			assert.False(t, req.Loading())
		})
	}
}

func TestRequesterFieldErrorsBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"email":["Enter a valid email address."]}`))
	})
	req := NewRequester[profile](client, WithNotifier(NopNotifier{}))

	_, apiErr := req.Call(context.Background(), "post", "/users/register/", map[string]string{}, nil, nil)

	require.NotNil(t, apiErr)
	assert.JSONEq(t, `{"email":["Enter a valid email address."]}`, string(apiErr.Body))
	assert.True(t, IsServerError(apiErr))
}

func TestRequesterNetworkFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	notifier := &recordingNotifier{}
	messages := DefaultMessages()
	messages.Network = "Pas de connexion"
	req := NewRequester[profile](New(WithBaseURL(url)), WithNotifier(notifier), WithMessages(messages))

	data := req.Get(context.Background(), "/users/profile/", nil, nil)

	assert.Nil(t, data)
	require.NotNil(t, req.Err())
	assert.Equal(t, ErrorTypeNetwork, req.Err().Type)
	assert.Equal(t, "Pas de connexion", req.Err().Message)
	assert.Equal(t, []string{"Pas de connexion"}, notifier.Errors())
}

func TestRequesterSuppressErrorToast(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	notifier := &recordingNotifier{}
	req := NewRequester[profile](client, WithNotifier(notifier))

	req.Delete(context.Background(), "/users/9/", nil, &CallOptions{SuppressErrorToast: true})

	require.NotNil(t, req.Err())
	assert.Empty(t, notifier.Errors())
}

func TestRequesterUnsupportedMethod(t *testing.T) {
	var calls int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})
	notifier := &recordingNotifier{}
	req := NewRequester[profile](client, WithNotifier(notifier))

	data := req.Request(context.Background(), "options", "/users/", nil, nil, nil)

	assert.Nil(t, data)
	require.NotNil(t, req.Err())
	assert.Equal(t, ErrorTypeConfig, req.Err().Type)
	assert.ErrorIs(t, req.Err(), ErrUnsupportedMethod)
	assert.Zero(t, calls)
	assert.Len(t, notifier.Errors(), 1)
}

func TestRequesterInvalidJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})
	req := NewRequester[profile](client, WithNotifier(NopNotifier{}))

	data := req.Get(context.Background(), "/users/profile/", nil, nil)

	assert.Nil(t, data)
	require.NotNil(t, req.Err())
	assert.Equal(t, ErrorTypeServer, req.Err().Type)
	assert.Equal(t, http.StatusOK, req.Err().Status)
}

func TestRequesterErrorClearedOnNextCall(t *testing.T) {
	fail := true
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"id":2}`))
	})
	req := NewRequester[profile](client, WithNotifier(NopNotifier{}))

	req.Get(context.Background(), "/users/profile/", nil, nil)
	require.NotNil(t, req.Err())

	fail = false
	req.Get(context.Background(), "/users/profile/", nil, nil)
	assert.Nil(t, req.Err())
	require.NotNil(t, req.Data())
	assert.Equal(t, 2, req.Data().ID)
}

func TestRequesterSupersededCall(t *testing.T) {
	started := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/slow/" {
			close(started)
			<-r.Context().Done()
			return
		}
		_, _ = w.Write([]byte(`{"id":2,"username":"fast"}`))
	})
	notifier := &recordingNotifier{}
	req := NewRequester[profile](client, WithNotifier(notifier))

	var wg sync.WaitGroup
	var slowData *profile
	var slowErr *APIError
	wg.Add(1)
	go func() {
		defer wg.Done()
		slowData, slowErr = req.Call(context.Background(), "get", "/slow/", nil, nil, nil)
	}()

	<-started
	fast := req.Get(context.Background(), "/fast/", nil, nil)
	wg.Wait()

	require.NotNil(t, fast)
	assert.Nil(t, slowData)
	require.NotNil(t, slowErr)
	assert.Equal(t, ErrorTypeNetwork, slowErr.Type)

	state := req.State()
	assert.False(t, state.Loading)
	assert.Nil(t, state.Err)
	require.NotNil(t, state.Data)
	assert.Equal(t, "fast", state.Data.Username)
	assert.Empty(t, notifier.Errors())
}

func TestRequesterClose(t *testing.T) {
	started := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	})
	notifier := &recordingNotifier{}
	req := NewRequester[profile](client, WithNotifier(notifier))

	var published int
	req.Subscribe(func(State[profile]) { published++ })

	done := make(chan struct{})
	go func() {
		defer close(done)
		req.Get(context.Background(), "/users/profile/", nil, nil)
	}()

	<-started
	req.Close()
	<-done

	state := req.State()
	assert.False(t, state.Loading)
	assert.Nil(t, state.Err)
	assert.Nil(t, state.Data)
	assert.Empty(t, notifier.Errors())
	assert.Equal(t, 1, published)
}

func TestAPIErrorFormat(t *testing.T) {
	assert.Equal(t, "ServerError (500): boom", (&APIError{Type: ErrorTypeServer, Status: 500, Message: "boom"}).Error())
	assert.Equal(t, "NetworkError: offline", (&APIError{Type: ErrorTypeNetwork, Message: "offline"}).Error())

	var nilErr *APIError
	assert.Equal(t, "<nil>", nilErr.Error())
	assert.NoError(t, nilErr.Unwrap())
}
