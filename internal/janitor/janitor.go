package janitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Task is one periodic cleanup. Fn reports how many items it removed.
type Task struct {
	Name string
	Fn   func(context.Context) int
}

// Janitor runs its tasks once on Start and then every interval until Stop.
type Janitor struct {
	interval time.Duration
	tasks    []Task

	running atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(interval time.Duration, tasks ...Task) (*Janitor, error) {
	if interval <= 0 {
		return nil, errors.New("interval must be > 0")
	}
	if len(tasks) == 0 {
		return nil, errors.New("at least one task is required")
	}
	for _, t := range tasks {
		if t.Fn == nil {
			return nil, errors.New("task " + t.Name + " has no function")
		}
	}
	return &Janitor{
		interval: interval,
		tasks:    tasks,
		done:     make(chan struct{}),
	}, nil
}

func (j *Janitor) Start() bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.running.Load() {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	j.cancel = cancel
	j.done = make(chan struct{})
	j.running.Store(true)

	go func() {
		defer close(j.done)

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		slog.Info("janitor started", "interval", j.interval.String(), "tasks", len(j.tasks))

		j.sweep(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				j.sweep(ctx)
			}
		}
	}()

	return true
}

func (j *Janitor) Stop() bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.running.Load() {
		return false
	}

	j.cancel()
	<-j.done
	j.running.Store(false)

	slog.Info("janitor stopped")
	return true
}

func (j *Janitor) IsRunning() bool {
	return j.running.Load()
}

func (j *Janitor) sweep(ctx context.Context) {
	for _, t := range j.tasks {
		if ctx.Err() != nil {
			return
		}
		j.runTask(ctx, t)
	}
}

func (j *Janitor) runTask(ctx context.Context, t Task) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("janitor task panic recovered", "task", t.Name, "panic", r)
		}
	}()

	start := time.Now()
	removed := t.Fn(ctx)
	slog.Debug("janitor task completed", "task", t.Name, "removed", removed, "duration_ms", time.Since(start).Milliseconds())
}
