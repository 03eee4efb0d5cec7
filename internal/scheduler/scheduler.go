package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
)

// Task is a scheduled unit of work. It receives a context that is cancelled on Stop.
type Task func(ctx context.Context)

// Scheduler runs the weekly digest.
type Scheduler struct {
	s      gocron.Scheduler
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Scheduler whose times are interpreted in loc.
func New(loc *time.Location) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{s: s, ctx: ctx, cancel: cancel}, nil
}

// AddWeekly runs task every Monday at hour:minute.
func (s *Scheduler) AddWeekly(name string, hour, minute uint, task Task) error {
	_, err := s.s.NewJob(
		gocron.WeeklyJob(1, gocron.NewWeekdays(time.Monday), gocron.NewAtTimes(gocron.NewAtTime(hour, minute, 0))),
		gocron.NewTask(func() {
			log.Info("Running scheduled job", "job", name)
			task(s.ctx)
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create %s job: %w", name, err)
	}
	log.Info("Scheduled weekly job", "job", name, "weekday", time.Monday, "hour", hour, "minute", minute)
	return nil
}

// NextRun returns when the named job runs next.
func (s *Scheduler) NextRun(name string) (time.Time, error) {
	for _, j := range s.s.Jobs() {
		if j.Name() == name {
			return j.NextRun()
		}
	}
	return time.Time{}, fmt.Errorf("no job named %s", name)
}

func (s *Scheduler) Start() {
	s.s.Start()
}

func (s *Scheduler) Stop() error {
	s.cancel()
	return s.s.Shutdown()
}
