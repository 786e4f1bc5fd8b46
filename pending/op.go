/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package pending

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Op is an asynchronous result that settles exactly once, with a value or
// an error.
type Op[T any] struct {
	id   string
	done chan struct{}
	once sync.Once

	mu        sync.Mutex
	value     T
	err       error
	observers []func(T, error)
}

// New creates an unsettled operation with a fresh id.
func New[T any]() *Op[T] {
	return &Op[T]{
		id:   uuid.NewString(),
		done: make(chan struct{}),
	}
}

// Resolved returns an operation already settled with value.
func Resolved[T any](value T) *Op[T] {
	op := New[T]()
	op.Resolve(value)
	return op
}

// Rejected returns an operation already settled with err.
func Rejected[T any](err error) *Op[T] {
	op := New[T]()
	op.Reject(err)
	return op
}

// ID returns the unique id of the operation.
func (o *Op[T]) ID() string {
	return o.id
}

// Resolve settles the operation with value. It reports false when the
// operation had already settled.
func (o *Op[T]) Resolve(value T) bool {
	return o.settle(value, nil)
}

// Reject settles the operation with err.
func (o *Op[T]) Reject(err error) bool {
	var zero T
	return o.settle(zero, err)
}

// Settle resolves or rejects depending on err.
func (o *Op[T]) Settle(value T, err error) bool {
	return o.settle(value, err)
}

func (o *Op[T]) settle(value T, err error) bool {
	settled := false
	o.once.Do(func() {
		o.mu.Lock()
		o.value = value
		o.err = err
		observers := o.observers
		o.observers = nil
		close(o.done)
		o.mu.Unlock()

		for _, fn := range observers {
			fn(value, err)
		}
		settled = true
	})
	return settled
}

// Done is closed once the operation settles.
func (o *Op[T]) Done() <-chan struct{} {
	return o.done
}

// Result returns the settled value and error. It must only be called after Done is closed.
func (o *Op[T]) Result() (T, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.value, o.err
}

// Wait blocks until the operation settles or ctx is done.
func (o *Op[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-o.done:
		return o.Result()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// OnSettle registers fn to be called exactly once with the outcome. If the
// operation has already settled fn runs immediately on the calling goroutine,
// otherwise on the goroutine that settles it.
func (o *Op[T]) OnSettle(fn func(T, error)) {
	o.mu.Lock()
	select {
	case <-o.done:
		value, err := o.value, o.err
		o.mu.Unlock()
		fn(value, err)
		return
	default:
	}
	o.observers = append(o.observers, fn)
	o.mu.Unlock()
}
