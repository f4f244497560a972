package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"todo_webapp/internal/service"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeSweeper struct {
	runs  atomic.Int32
	delay time.Duration
	res   service.SweepResult
	err   error
}

func (f *fakeSweeper) Run(ctx context.Context) (service.SweepResult, error) {
	f.runs.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return f.res, ctx.Err()
		}
	}
	return f.res, f.err
}

func TestRunOnceRecordsMetrics(t *testing.T) {
	sweeper := &fakeSweeper{res: service.SweepResult{Scanned: 4, Due: 2, Sent: 3, Failed: 1}}
	s := New(sweeper, time.Minute)

	sentBefore := testutil.ToFloat64(SweepNotifications.WithLabelValues("sent"))
	okBefore := testutil.ToFloat64(SweepRuns.WithLabelValues("ok"))

	res := s.RunOnce(context.Background())
	if res.Sent != 3 {
		t.Fatalf("res = %+v", res)
	}
	if got := testutil.ToFloat64(SweepNotifications.WithLabelValues("sent")) - sentBefore; got != 3 {
		t.Fatalf("sent counter delta = %v, want 3", got)
	}
	if got := testutil.ToFloat64(SweepRuns.WithLabelValues("ok")) - okBefore; got != 1 {
		t.Fatalf("ok runs delta = %v", got)
	}
	if got := testutil.ToFloat64(SweepDueTasks); got != 2 {
		t.Fatalf("due gauge = %v", got)
	}
}

func TestRunOnceError(t *testing.T) {
	s := New(&fakeSweeper{err: errors.New("db down")}, time.Minute)

	before := testutil.ToFloat64(SweepRuns.WithLabelValues("error"))
	s.RunOnce(context.Background())
	if got := testutil.ToFloat64(SweepRuns.WithLabelValues("error")) - before; got != 1 {
		t.Fatalf("error runs delta = %v", got)
	}
}

func TestSchedulerRunsOnInterval(t *testing.T) {
	sweeper := &fakeSweeper{}
	s := New(sweeper, time.Second)
	s.Start()

	deadline := time.Now().Add(5 * time.Second)
	for sweeper.runs.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if sweeper.runs.Load() == 0 {
		t.Fatal("sweep never ran")
	}
}

func TestStopCancelsLongRun(t *testing.T) {
	sweeper := &fakeSweeper{delay: time.Hour}
	s := New(sweeper, time.Second)
	s.Start()

	deadline := time.Now().Add(5 * time.Second)
	for sweeper.runs.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := s.Stop(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Stop err = %v, want deadline exceeded", err)
	}
}

func TestLastRunTracksOutcome(t *testing.T) {
	sweeper := &fakeSweeper{res: service.SweepResult{Due: 1, Sent: 1}}
	s := New(sweeper, time.Minute)

	if at, _, _ := s.LastRun(); !at.IsZero() {
		t.Fatalf("LastRun before any sweep = %v", at)
	}

	s.RunOnce(context.Background())
	at, res, err := s.LastRun()
	if at.IsZero() || res.Sent != 1 || err != nil {
		t.Fatalf("LastRun = %v %+v %v", at, res, err)
	}

	sweeper.err = errors.New("scan failed")
	s.RunOnce(context.Background())
	if _, _, err := s.LastRun(); err == nil {
		t.Fatal("LastRun did not record the failure")
	}
}
