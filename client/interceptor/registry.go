// Package interceptor provides ordered, ejectable handler chains used by
// the client to transform requests and observe responses.
//
// A [Registry] is an append-only arena of slots. [Registry.Eject] writes a
// tombstone into a slot instead of removing it, so every handle returned by
// [Registry.Use] keeps pointing at the same slot for the registry's lifetime.
package interceptor

import (
	"context"
	"fmt"
	"sync"
)

// Fulfilled transforms the value flowing through a phase. Returning an
// error short-circuits the remaining handlers.
type Fulfilled[T any] func(ctx context.Context, v T) (T, error)

// Rejected observes a failed call. It cannot recover the call.
type Rejected func(ctx context.Context, err error)

// MergeFunc folds a handler's output into the running value.
// A nil MergeFunc replaces the running value with the output.
type MergeFunc[T any] func(current, next T) T

type handler[T any] struct {
	fulfilled Fulfilled[T]
	rejected  Rejected
}

// Registry holds the handlers for one phase. The zero value is ready to use.
type Registry[T any] struct {
	mu    sync.RWMutex
	slots []*handler[T]
}

// New returns an empty Registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{}
}

// Use appends a slot and returns its handle. Either func may be nil.
func (r *Registry[T]) Use(fulfilled Fulfilled[T], rejected Rejected) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.slots = append(r.slots, &handler[T]{fulfilled: fulfilled, rejected: rejected})

	return len(r.slots) - 1
}

// Eject tombstones the slot behind id. Ejecting an ejected or unknown
// handle is a no-op.
func (r *Registry[T]) Eject(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id < 0 || id >= len(r.slots) {
		return
	}

	r.slots[id] = nil
}

// Len reports the number of live slots.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int
	for _, h := range r.slots {
		if h != nil {
			n++
		}
	}

	return n
}

// Run passes v through every live fulfilled handler in registration order.
// Slots are read one at a time, so a slot ejected by another goroutine
// while Run is in progress is skipped once reached.
func (r *Registry[T]) Run(ctx context.Context, v T, merge MergeFunc[T]) (T, error) {
	for i := 0; ; i++ {
		h, ok := r.slot(i)
		if !ok {
			return v, nil
		}
		if h == nil || h.fulfilled == nil {
			continue
		}

		next, err := h.fulfilled(ctx, v)
		if err != nil {
			return v, fmt.Errorf("interceptor[%d]: %w", i, err)
		}

		if merge != nil {
			v = merge(v, next)
		} else {
			v = next
		}
	}
}

// Reject hands err to every live rejected handler in registration order.
func (r *Registry[T]) Reject(ctx context.Context, err error) {
	for i := 0; ; i++ {
		h, ok := r.slot(i)
		if !ok {
			return
		}
		if h == nil || h.rejected == nil {
			continue
		}

		h.rejected(ctx, err)
	}
}

// slot returns the handler at i. ok is false once i runs past the end.
func (r *Registry[T]) slot(i int) (*handler[T], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i >= len(r.slots) {
		return nil, false
	}

	return r.slots[i], true
}
