package codelearn

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutationInvalidatesOnSuccess(t *testing.T) {
	var posts atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/users/7/toggle_premium/", r.URL.Path)
		posts.Add(1)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	qc := NewQueryClient()
	usersFn, usersCalls := counted("users")
	coursesFn, coursesCalls := counted("courses")
	users := NewQuery(qc, adminUsersKey, usersFn)
	courses := NewQuery(qc, adminCoursesKey, coursesFn)
	users.Mount(context.Background())
	defer users.Unmount()
	courses.Mount(context.Background())
	defer courses.Unmount()
	qc.Wait()

	toggle := NewMutation(qc, MutationConfig[int, map[string]string]{
		Fn: func(ctx context.Context, id int) (map[string]string, error) {
			var out map[string]string
			err := client.DoJSON(ctx, Request{Method: http.MethodPost, Path: fmt.Sprintf("/users/%d/toggle_premium/", id)}, &out)
			return out, err
		},
		Invalidates: []QueryKey{adminUsersKey},
	})

	out, err := toggle.Mutate(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "ok", out["status"])
	qc.Wait()

	assert.Equal(t, int32(1), posts.Load())
	assert.Equal(t, int32(2), usersCalls.Load())
	assert.Equal(t, int32(1), coursesCalls.Load())

	state := toggle.State()
	assert.False(t, state.Pending)
	assert.NoError(t, state.Err)
	assert.Equal(t, "ok", state.Data["status"])
}

func TestMutationFailureDoesNotInvalidate(t *testing.T) {
	var posts atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		posts.Add(1)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail":"You do not have permission to perform this action."}`))
	})

	qc := NewQueryClient()
	usersFn, usersCalls := counted("users")
	users := NewQuery(qc, adminUsersKey, usersFn)
	users.Mount(context.Background())
	defer users.Unmount()
	qc.Wait()

	var failed error
	toggle := NewMutation(qc, MutationConfig[int, struct{}]{
		Fn: func(ctx context.Context, id int) (struct{}, error) {
			_, err := client.Post(ctx, "/users/7/toggle_premium/", nil, nil)
			return struct{}{}, err
		},
		Invalidates: []QueryKey{adminUsersKey},
		OnSuccess: func(context.Context, int, struct{}) {
			t.Error("OnSuccess called for a failed mutation")
		},
		OnError: func(_ context.Context, _ int, err error) { failed = err },
	})

	_, err := toggle.Mutate(context.Background(), 7)
	qc.Wait()

	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, StatusCode(err))
	assert.Equal(t, err, failed)
	assert.Equal(t, int32(1), posts.Load(), "mutations are never retried")
	assert.Equal(t, int32(1), usersCalls.Load())
	assert.False(t, qc.IsStale(adminUsersKey))
	assert.Equal(t, err, toggle.State().Err)
}

func TestMutationInvalidatesFor(t *testing.T) {
	qc := NewQueryClient()
	qc.SetQueryData(QueryKey{"courses", "3", "progress"}, 10)
	qc.SetQueryData(QueryKey{"courses", "4", "progress"}, 20)

	var succeeded int
	update := NewMutation(qc, MutationConfig[int, int]{
		Fn: func(_ context.Context, id int) (int, error) { return id * 10, nil },
		InvalidatesFor: func(id int, _ int) []QueryKey {
			return []QueryKey{Key("courses", id, "progress")}
		},
		OnSuccess: func(_ context.Context, _ int, out int) { succeeded = out },
	})

	_, err := update.Mutate(context.Background(), 3)
	require.NoError(t, err)

	assert.True(t, qc.IsStale(QueryKey{"courses", "3", "progress"}))
	assert.False(t, qc.IsStale(QueryKey{"courses", "4", "progress"}))
	assert.Equal(t, 30, succeeded)
}

func TestMutationReset(t *testing.T) {
	qc := NewQueryClient()
	m := NewMutation(qc, MutationConfig[string, string]{
		Fn: func(context.Context, string) (string, error) { return "", errors.New("nope") },
	})

	_, err := m.Mutate(context.Background(), "x")
	require.Error(t, err)
	require.Error(t, m.State().Err)

	m.Reset()
	assert.Equal(t, MutationState[string]{}, m.State())
}

func TestMutationPendingWhileRunning(t *testing.T) {
	qc := NewQueryClient()
	var m *Mutation[int, int]
	m = NewMutation(qc, MutationConfig[int, int]{
		Fn: func(context.Context, int) (int, error) {
			assert.True(t, m.State().Pending)
			return 1, nil
		},
	})

	_, err := m.Mutate(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, m.State().Pending)
}
