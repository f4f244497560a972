package scheduler

import (
	"context"
	"sync"
	"time"

	"todo_webapp/internal/logger"
	"todo_webapp/internal/service"

	"github.com/robfig/cron/v3"
)

// Sweeper is one run of the due-task sweep
type Sweeper interface {
	Run(ctx context.Context) (service.SweepResult, error)
}

// Scheduler runs the sweep on a fixed interval. A tick that fires while the
// previous run is still going is skipped.
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	lastRun time.Time
	lastRes service.SweepResult
	lastErr error
}

func New(sweeper Sweeper, interval time.Duration) *Scheduler {
	l := cronLogger{}
	ctx, cancel := context.WithCancel(context.Background())

	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(l),
			cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
		),
		sweeper: sweeper,
		ctx:     ctx,
		cancel:  cancel,
	}
	s.cron.Schedule(cron.Every(interval), cron.FuncJob(func() {
		s.RunOnce(s.ctx)
	}))
	return s
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info("due task scheduler started")
}

// Stop prevents new runs and waits for a running sweep to finish. If ctx
// expires first the running sweep is cancelled.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.cancel()
		logger.Info("due task scheduler stopped")
		return nil
	case <-ctx.Done():
		s.cancel()
		return ctx.Err()
	}
}

// RunOnce performs a single sweep and records its metrics
func (s *Scheduler) RunOnce(ctx context.Context) service.SweepResult {
	start := time.Now()
	res, err := s.sweeper.Run(ctx)
	elapsed := time.Since(start)
	SweepDuration.Observe(elapsed.Seconds())

	s.mu.Lock()
	s.lastRun, s.lastRes, s.lastErr = start, res, err
	s.mu.Unlock()

	SweepNotifications.WithLabelValues("sent").Add(float64(res.Sent))
	SweepNotifications.WithLabelValues("failed").Add(float64(res.Failed))

	if err != nil {
		SweepRuns.WithLabelValues("error").Inc()
		logger.Error("due task sweep failed", "error", err, "duration", elapsed)
		return res
	}

	SweepRuns.WithLabelValues("ok").Inc()
	SweepDueTasks.Set(float64(res.Due))
	if res.Due > 0 || res.Failed > 0 {
		logger.Info("due task sweep",
			"scanned", res.Scanned, "due", res.Due, "sent", res.Sent, "failed", res.Failed, "duration", elapsed)
	} else {
		logger.Debug("due task sweep", "scanned", res.Scanned, "duration", elapsed)
	}
	return res
}

// LastRun reports when the most recent sweep started and how it went.
// The time is zero before the first run.
func (s *Scheduler) LastRun() (time.Time, service.SweepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastRes, s.lastErr
}

// cronLogger routes cron's own logging through slog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
