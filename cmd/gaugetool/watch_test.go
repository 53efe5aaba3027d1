package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gauge-tracker/internal/config"
	"gauge-tracker/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer lets the test poll output written by the watch loop.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func startWatch(t *testing.T, dir string, p *config.Profile) (*syncBuffer, func()) {
	t.Helper()
	st, err := newWatchState(p)
	require.NoError(t, err)
	var state atomic.Pointer[watchState]
	state.Store(st)

	out := &syncBuffer{}
	ctx, cancel := context.WithCancel(logging.NewContext(context.Background(), quiet))
	done := make(chan error, 1)
	go func() { done <- watchDir(ctx, dir, &state, out) }()

	// Let the watcher register before files appear.
	time.Sleep(100 * time.Millisecond)
	return out, func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watch loop did not stop")
		}
	}
}

func TestWatchDirReadsNewScreenshots(t *testing.T) {
	useDefaults(t)
	profile.Watch.Settle = 50 * time.Millisecond
	dir := t.TempDir()

	out, stop := startWatch(t, dir, profile)
	defer stop()

	// Written elsewhere and moved in so the watcher sees a complete file.
	staging := t.TempDir()
	src := writeGauge(t, staging, "g.png", 50)
	require.NoError(t, os.Rename(src, filepath.Join(dir, "g.png")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	require.Eventually(t, func() bool {
		return strings.Count(out.String(), "\n") >= 1
	}, 5*time.Second, 20*time.Millisecond)

	var line readLine
	require.NoError(t, json.Unmarshal([]byte(strings.Split(out.String(), "\n")[0]), &line))
	assert.Equal(t, filepath.Join(dir, "g.png"), line.File)
	p, ok := line.Health.Percent()
	require.True(t, ok)
	assert.InDelta(t, 50, p, 2)
	assert.NotContains(t, out.String(), "notes.txt")
}

func TestWatchDirMissingDirectory(t *testing.T) {
	useDefaults(t)
	st, err := newWatchState(profile)
	require.NoError(t, err)
	var state atomic.Pointer[watchState]
	state.Store(st)

	err = watchDir(context.Background(), filepath.Join(t.TempDir(), "nope"), &state, &syncBuffer{})
	assert.Error(t, err)
}

func TestNewWatchStateRejectsInvalidProfile(t *testing.T) {
	p := config.Default()
	p.Gauge.Steps = 0
	_, err := newWatchState(p)
	assert.Error(t, err)
}

func receive(t *testing.T, s *settler) settled {
	t.Helper()
	select {
	case msg := <-s.ready:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("settle timer never fired")
		return settled{}
	}
}

func TestSettlerDropsFiredTimerAfterNewEvent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := newSettler(4)

	// The first timer fires but is not drained before the next write.
	s.touch(ctx, "shot.png", 0)
	first := receive(t, s)
	s.touch(ctx, "shot.png", 0)
	second := receive(t, s)

	assert.False(t, s.done(first))
	assert.True(t, s.done(second))
	assert.False(t, s.done(second), "path already delivered")
}

func TestSettlerCoalescesBursts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := newSettler(4)

	for i := 0; i < 5; i++ {
		s.touch(ctx, "shot.png", 50*time.Millisecond)
	}
	s.touch(ctx, "other.png", 50*time.Millisecond)

	delivered := map[string]int{}
	deadline := time.After(300 * time.Millisecond)
	for done := false; !done; {
		select {
		case msg := <-s.ready:
			if s.done(msg) {
				delivered[msg.path]++
			}
		case <-deadline:
			done = true
		}
	}
	assert.Equal(t, map[string]int{"shot.png": 1, "other.png": 1}, delivered)
}
