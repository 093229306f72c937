// Package scheduler runs background invoicing jobs on a daily schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrInvalidConfig = errors.New("invalid trigger configuration")
	ErrNoTask        = errors.New("trigger has no task")
)

// Task is the work a trigger runs once per day
type Task func(ctx context.Context) error

// RunGuard lets several instances agree on which one runs a day's task
type RunGuard interface {
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// DailyTriggerConfig holds configuration for the daily trigger
type DailyTriggerConfig struct {
	// Name prefixes guard keys and log lines, e.g. "send-due"
	Name string
	// Hour and Minute are the local time of day to run (24h format)
	Hour   int
	Minute int
	// CheckInterval is how often to check if it's time to run
	CheckInterval time.Duration
	// JobTimeout bounds a single run
	JobTimeout time.Duration
}

// DefaultDailyTriggerConfig returns default trigger configuration
func DefaultDailyTriggerConfig() DailyTriggerConfig {
	return DailyTriggerConfig{
		Name:          "send-due",
		Hour:          6,
		Minute:        0,
		CheckInterval: time.Minute,
		JobTimeout:    30 * time.Minute,
	}
}

func (c DailyTriggerConfig) validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	if c.Hour < 0 || c.Hour > 23 || c.Minute < 0 || c.Minute > 59 {
		return fmt.Errorf("%w: time of day %02d:%02d", ErrInvalidConfig, c.Hour, c.Minute)
	}
	if c.CheckInterval <= 0 {
		return fmt.Errorf("%w: check interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// DailyTrigger runs a task once per day at or after the configured time
type DailyTrigger struct {
	config DailyTriggerConfig
	task   Task
	guard  RunGuard
	logger *zap.Logger
	now    func() time.Time

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string
}

// DailyTriggerOption configures a DailyTrigger
type DailyTriggerOption func(*DailyTrigger)

// WithRunGuard shares run state between instances
func WithRunGuard(guard RunGuard) DailyTriggerOption {
	return func(t *DailyTrigger) {
		t.guard = guard
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) DailyTriggerOption {
	return func(t *DailyTrigger) {
		t.now = now
	}
}

// NewDailyTrigger creates a new daily trigger
func NewDailyTrigger(config DailyTriggerConfig, task Task, logger *zap.Logger, opts ...DailyTriggerOption) (*DailyTrigger, error) {
	if task == nil {
		return nil, ErrNoTask
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &DailyTrigger{
		config: config,
		task:   task,
		logger: logger.With(zap.String("trigger", config.Name)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Start starts the trigger loop
func (t *DailyTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Daily trigger started",
		zap.Int("hour", t.config.Hour),
		zap.Int("minute", t.config.Minute),
		zap.Duration("check_interval", t.config.CheckInterval),
	)
	return nil
}

// Stop stops the trigger and waits for a running task to return
func (t *DailyTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Daily trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *DailyTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.checkAndTrigger(ctx)
		}
	}
}

// checkAndTrigger runs the task when today's scheduled time has passed and
// no run happened today. It reports whether the task was started.
func (t *DailyTrigger) checkAndTrigger(ctx context.Context) bool {
	now := t.now()
	currentDate := now.Format(time.DateOnly)

	t.mu.Lock()
	if t.lastRunDate == currentDate {
		t.mu.Unlock()
		return false
	}
	scheduled := time.Date(now.Year(), now.Month(), now.Day(), t.config.Hour, t.config.Minute, 0, 0, now.Location())
	if now.Before(scheduled) {
		t.mu.Unlock()
		return false
	}
	t.lastRunDate = currentDate
	t.mu.Unlock()

	key := t.config.Name + ":" + currentDate
	if t.guard != nil {
		acquired, err := t.guard.MarkProcessed(ctx, key, 36*time.Hour)
		if err != nil {
			t.logger.Warn("Run guard unavailable, running anyway", zap.Error(err))
		} else if !acquired {
			t.logger.Info("Task already ran today on another instance", zap.String("date", currentDate))
			return false
		}
	}

	if err := t.RunNow(ctx); err != nil {
		// a failed run is retried on the next tick, here or elsewhere
		t.mu.Lock()
		if t.lastRunDate == currentDate {
			t.lastRunDate = ""
		}
		t.mu.Unlock()
		if t.guard != nil {
			if err := t.guard.Release(ctx, key); err != nil {
				t.logger.Warn("Failed to release run guard", zap.Error(err))
			}
		}
	}
	return true
}

// RunNow runs the task immediately with the configured timeout
func (t *DailyTrigger) RunNow(ctx context.Context) error {
	if t.config.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.config.JobTimeout)
		defer cancel()
	}

	start := t.now()
	t.logger.Info("Running scheduled task")
	if err := t.task(ctx); err != nil {
		t.logger.Error("Scheduled task failed", zap.Error(err))
		return err
	}
	t.logger.Info("Scheduled task finished", zap.Duration("duration", t.now().Sub(start)))
	return nil
}
