package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Task is a unit of periodic background work.
type Task interface {
	Name() string
	Interval() time.Duration
	Run(ctx context.Context) error
}

type Cron struct {
	scheduler gocron.Scheduler
	tasks     []Task
	logger    *zap.Logger
}

func NewCron(logger *zap.Logger) (*Cron, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Cron{scheduler: scheduler, logger: logger}, nil
}

func (c *Cron) RegisterTasks(tasks ...Task) {
	c.tasks = append(c.tasks, tasks...)
}

// ScheduleJobs creates a job per registered task and starts the scheduler.
// Runs of one task never overlap. Each run gets a child of ctx bounded by the
// task interval.
func (c *Cron) ScheduleJobs(ctx context.Context) error {
	for _, task := range c.tasks {
		task := task
		logger := c.logger.With(zap.String("task", task.Name()))

		_, err := c.scheduler.NewJob(
			gocron.DurationJob(task.Interval()),
			gocron.NewTask(func() {
				runCtx, cancel := context.WithTimeout(ctx, task.Interval())
				defer cancel()

				if err := task.Run(runCtx); err != nil {
					logger.Warn("task failed", zap.Error(err))
				}
			}),
			gocron.WithName(task.Name()),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("failed to schedule %s: %w", task.Name(), err)
		}

		logger.Info("task scheduled", zap.Duration("interval", task.Interval()))
	}

	c.scheduler.Start()

	return nil
}

func (c *Cron) Shutdown() error {
	return c.scheduler.Shutdown()
}
