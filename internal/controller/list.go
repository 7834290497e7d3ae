package controller

import (
	"context"
	"sync"
)

// State is the lifecycle of a list-bearing view: idle until the first fetch,
// then loading -> loaded/failed on every refresh.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateFailed
)

// FetchFunc loads the current list from the server.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// ListController owns one list-bearing view's data. Mutating operations call
// Refresh instead of merging results locally, and subscribers are notified
// after every successful refresh; this replaces the implicit trigger-counter
// convention with an explicit object.
//
// Each refresh carries a sequence number. A response that arrives after a
// newer refresh started, or after Close, is discarded: a superseded fetch
// must never overwrite the state of a view that moved on.
type ListController[T any] struct {
	mu          sync.Mutex
	fetch       FetchFunc[T]
	state       State
	items       []T
	err         error
	seq         uint64
	closed      bool
	subscribers []func([]T)
}

func NewListController[T any](fetch FetchFunc[T]) *ListController[T] {
	return &ListController[T]{fetch: fetch}
}

// Subscribe registers a callback invoked with the fresh items after each
// successful refresh.
func (l *ListController[T]) Subscribe(fn func([]T)) {
	l.mu.Lock()
	l.subscribers = append(l.subscribers, fn)
	l.mu.Unlock()
}

// Refresh fetches the list. Safe to call concurrently; only the most recent
// call may commit its result.
func (l *ListController[T]) Refresh(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.seq++
	seq := l.seq
	l.state = StateLoading
	l.mu.Unlock()

	items, err := l.fetch(ctx)

	l.mu.Lock()
	if l.closed || l.seq != seq {
		// A newer refresh superseded this one, or the view unmounted.
		l.mu.Unlock()
		return nil
	}
	if err != nil {
		l.state = StateFailed
		l.err = err
		l.mu.Unlock()
		return err
	}
	l.state = StateLoaded
	l.items = items
	l.err = nil
	subscribers := append([]func([]T){}, l.subscribers...)
	l.mu.Unlock()

	for _, fn := range subscribers {
		fn(items)
	}
	return nil
}

// Close marks the view unmounted. In-flight fetch results are dropped.
func (l *ListController[T]) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
}

func (l *ListController[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.items
}

func (l *ListController[T]) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *ListController[T]) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}
