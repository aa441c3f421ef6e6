package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type countingTask struct {
	name string
	runs atomic.Int32
	err  error
}

func (c *countingTask) Name() string            { return c.name }
func (c *countingTask) Interval() time.Duration { return 10 * time.Millisecond }

func (c *countingTask) Run(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("run context has no deadline")
	}
	c.runs.Add(1)
	return c.err
}

func TestCron_RunsTasks(t *testing.T) {
	c, err := NewCron(zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	ok := &countingTask{name: "ok"}
	failing := &countingTask{name: "failing", err: errors.New("boom")}
	c.RegisterTasks(ok, failing)

	if err := c.ScheduleJobs(context.Background()); err != nil {
		t.Fatalf("ScheduleJobs() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for (ok.runs.Load() < 2 || failing.runs.Load() < 2) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if err := c.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	if ok.runs.Load() < 2 || failing.runs.Load() < 2 {
		t.Errorf("runs = %d, %d, want at least 2 each", ok.runs.Load(), failing.runs.Load())
	}
}
