package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"gauge-tracker/internal/config"
	"gauge-tracker/internal/gauge"
	"gauge-tracker/internal/logging"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Read every screenshot saved into a directory",
	Long: "watch follows a screenshot directory and prints one JSON reading per new " +
		"image. With --config the profile is reloaded whenever the file changes.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := newWatchState(profile)
		if err != nil {
			return err
		}
		var state atomic.Pointer[watchState]
		state.Store(st)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		log := logging.FromContext(ctx)

		if configPath != "" {
			go func() {
				err := config.Watch(ctx, configPath, log, func(p *config.Profile) {
					next, err := newWatchState(p)
					if err != nil {
						log.Error("reloaded profile rejected", "err", err)
						return
					}
					state.Store(next)
				})
				if err != nil {
					log.Error("profile watch stopped", "err", err)
				}
			}()
		}

		return watchDir(ctx, args[0], &state, cmd.OutOrStdout())
	},
}

// watchState is swapped atomically when the profile reloads.
type watchState struct {
	profile *config.Profile
	reader  *gauge.Reader
}

func newWatchState(p *config.Profile) (*watchState, error) {
	r, err := gauge.NewReader(p.ReaderConfig())
	if err != nil {
		return nil, err
	}
	return &watchState{profile: p, reader: r}, nil
}

// watchDir reads screenshots as they settle in dir and writes JSON lines to
// out until ctx is done. Analysis runs on a worker goroutine; out is only
// written from the calling goroutine. The logger comes from ctx.
func watchDir(ctx context.Context, dir string, state *atomic.Pointer[watchState], out io.Writer) error {
	log := logging.FromContext(ctx)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return err
	}
	log.Info("watching for screenshots", "dir", dir)

	ctx, cancel := context.WithCancel(ctx)
	settle := newSettler(16)
	jobs := make(chan string, 64)
	results := make(chan readResult, 16)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for path := range jobs {
			st := state.Load()
			line, err := readOne(log, st.reader, path, st.profile.Gauge.CropSize, time.Time{})
			select {
			case results <- readResult{path: path, line: line, err: err}:
			case <-ctx.Done():
				return
			}
		}
	}()
	defer func() {
		cancel()
		close(jobs)
		wg.Wait()
	}()

	enc := json.NewEncoder(out)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			st := state.Load()
			if !st.profile.WantsFile(event.Name) {
				continue
			}
			// Screenshots are often written in several chunks; wait until
			// the file has been quiet for the settle period.
			settle.touch(ctx, event.Name, st.profile.Watch.Settle)

		case msg := <-settle.ready:
			if !settle.done(msg) {
				continue
			}
			select {
			case jobs <- msg.path:
			default:
				log.Warn("analysis queue full, dropping screenshot", "file", msg.path)
			}

		case res := <-results:
			if res.err != nil {
				log.Error("read failed", "file", res.path, "err", res.err)
				continue
			}
			if err := enc.Encode(res.line); err != nil {
				return err
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("watcher error", "err", err)
		}
	}
}

type readResult struct {
	path string
	line readLine
	err  error
}

// settler debounces file events per path. A path is delivered on ready once
// its latest event is older than the settle period. It is not safe for
// concurrent use; only the timers send on ready.
type settler struct {
	ready   chan settled
	pending map[string]pendingPath
	gen     uint64
}

type settled struct {
	path string
	gen  uint64
}

type pendingPath struct {
	timer *time.Timer
	gen   uint64
}

func newSettler(buffer int) *settler {
	return &settler{
		ready:   make(chan settled, buffer),
		pending: make(map[string]pendingPath),
	}
}

// touch restarts the settle period for path. A timer that already fired
// keeps its old generation and is discarded by done.
func (s *settler) touch(ctx context.Context, path string, d time.Duration) {
	if p, ok := s.pending[path]; ok {
		p.timer.Stop()
	}
	s.gen++
	msg := settled{path: path, gen: s.gen}
	timer := time.AfterFunc(d, func() {
		select {
		case s.ready <- msg:
		case <-ctx.Done():
		}
	})
	s.pending[path] = pendingPath{timer: timer, gen: msg.gen}
}

// done reports whether msg is the latest for its path and, if so, forgets
// the path.
func (s *settler) done(msg settled) bool {
	p, ok := s.pending[msg.path]
	if !ok || p.gen != msg.gen {
		return false
	}
	delete(s.pending, msg.path)
	return true
}
