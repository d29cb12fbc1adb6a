package scope

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

const defaultSweepSchedule = "@every 5m"

// Sweeper runs Manager.Cleanup on a schedule. It is an explicit task
// owned by the hosting process, with a cancellable handle, rather than
// an ambient timer.
type Sweeper struct {
	manager  *Manager
	cron     *cron.Cron
	schedule string
	logger   *slog.Logger
}

// NewSweeper creates a sweeper for the manager. An empty schedule
// falls back to every five minutes.
func NewSweeper(manager *Manager, schedule string, logger *slog.Logger) *Sweeper {
	if schedule == "" {
		schedule = defaultSweepSchedule
	}

	return &Sweeper{
		manager:  manager,
		cron:     cron.New(),
		schedule: schedule,
		logger:   logger.With("module", "scope_sweeper"),
	}
}

// Start schedules the cleanup job and begins running it.
func (s *Sweeper) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.manager.Cleanup)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Debug("Started scope sweeper", "schedule", s.schedule)

	return nil
}

// Stop cancels the schedule; a sweep already in flight finishes first.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Debug("Stopped scope sweeper")
}
