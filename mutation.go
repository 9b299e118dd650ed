package codelearn

import (
	"context"
	"sync"
)

// MutationConfig describes a state-changing call and the query keys it makes
// stale.
type MutationConfig[In, Out any] struct {
	// Fn performs the call. It is invoked exactly once per Mutate.
	Fn func(ctx context.Context, in In) (Out, error)

	// Invalidates lists keys invalidated after every successful call.
	Invalidates []QueryKey

	// InvalidatesFor derives further keys from the input and result.
	InvalidatesFor func(in In, out Out) []QueryKey

	OnSuccess func(ctx context.Context, in In, out Out)
	OnError   func(ctx context.Context, in In, err error)
}

// MutationState is a snapshot of the last Mutate call.
type MutationState[Out any] struct {
	Pending bool
	Data    Out
	Err     error
}

// Mutation runs a state-changing call and invalidates its declared keys on
// success. It never retries.
type Mutation[In, Out any] struct {
	client *QueryClient
	cfg    MutationConfig[In, Out]

	mu    sync.Mutex
	state MutationState[Out]
}

// NewMutation binds cfg to qc.
func NewMutation[In, Out any](qc *QueryClient, cfg MutationConfig[In, Out]) *Mutation[In, Out] {
	return &Mutation[In, Out]{client: qc, cfg: cfg}
}

// Mutate runs the call. On success the declared keys are invalidated and
// their refetches start in the background; Mutate does not wait for them.
func (m *Mutation[In, Out]) Mutate(ctx context.Context, in In) (Out, error) {
	m.mu.Lock()
	m.state = MutationState[Out]{Pending: true}
	m.mu.Unlock()

	out, err := m.cfg.Fn(ctx, in)

	m.mu.Lock()
	m.state = MutationState[Out]{Data: out, Err: err}
	m.mu.Unlock()

	if err != nil {
		m.client.metrics.RecordMutation("error")
		m.client.logger.Debug().Err(err).Msg("mutation failed")
		if m.cfg.OnError != nil {
			m.cfg.OnError(ctx, in, err)
		}
		return out, err
	}

	m.client.metrics.RecordMutation("success")

	keys := append([]QueryKey(nil), m.cfg.Invalidates...)
	if m.cfg.InvalidatesFor != nil {
		keys = append(keys, m.cfg.InvalidatesFor(in, out)...)
	}
	m.client.Invalidate(keys...)

	if m.cfg.OnSuccess != nil {
		m.cfg.OnSuccess(ctx, in, out)
	}
	return out, nil
}

// State returns the outcome of the last call.
func (m *Mutation[In, Out]) State() MutationState[Out] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Reset clears the recorded outcome.
func (m *Mutation[In, Out]) Reset() {
	m.mu.Lock()
	m.state = MutationState[Out]{}
	m.mu.Unlock()
}
