package uiloop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startLoop(t *testing.T) *Loop {
	t.Helper()
	l := New(16)
	go l.Run(context.Background())
	t.Cleanup(l.Stop)
	return l
}

func TestLoop_RunsInPostOrder(t *testing.T) {
	l := startLoop(t)

	var got []int
	for i := 0; i < 10; i++ {
		i := i
		require.True(t, l.Post(func() { got = append(got, i) }))
	}
	require.NoError(t, l.Do(context.Background(), func() {}))

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestLoop_SerializesConcurrentPosters(t *testing.T) {
	l := startLoop(t)

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Do(context.Background(), func() { counter++ })
		}()
	}
	wg.Wait()

	var final int
	require.NoError(t, l.Do(context.Background(), func() { final = counter }))
	assert.Equal(t, 100, final)
}

func TestLoop_RecoversPanics(t *testing.T) {
	l := startLoop(t)

	l.Post(func() { panic("boom") })
	ran := false
	require.NoError(t, l.Do(context.Background(), func() { ran = true }))
	assert.True(t, ran)
}

func TestLoop_StopDrainsAndRefuses(t *testing.T) {
	l := New(16)
	block := make(chan struct{})
	go func() {
		<-block
		l.Run(context.Background())
	}()

	ran := 0
	for i := 0; i < 3; i++ {
		require.True(t, l.Post(func() { ran++ }))
	}
	close(block)
	l.Stop()

	assert.Equal(t, 3, ran)
	assert.False(t, l.Post(func() {}))
	assert.ErrorIs(t, l.Do(context.Background(), func() {}), ErrLoopStopped)
}

func TestLoop_ContextCancelStops(t *testing.T) {
	l := New(4)
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	cancel()

	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not stop after context cancellation")
	}
	assert.False(t, l.Post(func() {}))
}

func TestLoop_DoHonoursCallerContext(t *testing.T) {
	l := startLoop(t)
	release := make(chan struct{})
	l.Post(func() { <-release })
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := l.Do(ctx, func() {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLoop_AcceptedPostsRunWhenStopRaces(t *testing.T) {
	for round := 0; round < 200; round++ {
		l := New(4)
		go l.Run(context.Background())

		var (
			mu       sync.Mutex
			accepted int
			ran      int
			wg       sync.WaitGroup
		)
		for p := 0; p < 8; p++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					ok := l.Post(func() {
						mu.Lock()
						ran++
						mu.Unlock()
					})
					if !ok {
						return
					}
					mu.Lock()
					accepted++
					mu.Unlock()
				}
			}()
		}
		time.Sleep(time.Duration(round%5) * 100 * time.Microsecond)
		l.Stop()
		wg.Wait()

		mu.Lock()
		require.Equal(t, accepted, ran, "round %d: every accepted closure must run", round)
		mu.Unlock()
	}
}
