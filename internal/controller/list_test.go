package controller

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListControllerRefreshNotifiesSubscribers(t *testing.T) {
	items := []string{"a", "b"}
	l := NewListController(func(ctx context.Context) ([]string, error) {
		return items, nil
	})

	var notified [][]string
	l.Subscribe(func(got []string) {
		notified = append(notified, got)
	})

	assert.Equal(t, StateIdle, l.State())
	require.NoError(t, l.Refresh(context.Background()))

	assert.Equal(t, StateLoaded, l.State())
	assert.Equal(t, items, l.Items())
	require.Len(t, notified, 1)
	assert.Equal(t, items, notified[0])
}

func TestListControllerFailureKeepsPreviousItems(t *testing.T) {
	fetchErr := errors.New("boom")
	fail := false
	l := NewListController(func(ctx context.Context) ([]string, error) {
		if fail {
			return nil, fetchErr
		}
		return []string{"a"}, nil
	})

	require.NoError(t, l.Refresh(context.Background()))
	fail = true
	assert.ErrorIs(t, l.Refresh(context.Background()), fetchErr)

	assert.Equal(t, StateFailed, l.State())
	assert.ErrorIs(t, l.Err(), fetchErr)
	assert.Equal(t, []string{"a"}, l.Items())
}

func TestListControllerDiscardsSupersededFetch(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	calls := 0
	l := NewListController(func(ctx context.Context) ([]string, error) {
		calls++
		if calls == 1 {
			close(started)
			<-release
			return []string{"stale"}, nil
		}
		return []string{"fresh"}, nil
	})

	done := make(chan error, 1)
	go func() {
		done <- l.Refresh(context.Background())
	}()
	<-started

	// The second refresh starts while the first is still in flight.
	require.NoError(t, l.Refresh(context.Background()))
	assert.Equal(t, []string{"fresh"}, l.Items())

	close(release)
	require.NoError(t, <-done)

	// The stale result must not have overwritten the newer one.
	assert.Equal(t, []string{"fresh"}, l.Items())
	assert.Equal(t, StateLoaded, l.State())
}

func TestListControllerDropsResultsAfterClose(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	l := NewListController(func(ctx context.Context) ([]string, error) {
		close(started)
		<-release
		return []string{"late"}, nil
	})

	var notified int
	l.Subscribe(func([]string) { notified++ })

	done := make(chan error, 1)
	go func() {
		done <- l.Refresh(context.Background())
	}()
	<-started

	l.Close()
	close(release)
	require.NoError(t, <-done)

	assert.Empty(t, l.Items())
	assert.Zero(t, notified)

	// Refresh after Close is a no-op.
	require.NoError(t, l.Refresh(context.Background()))
	assert.Empty(t, l.Items())
}
