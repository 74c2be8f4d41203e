package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/locale"
	"github.com/fastygo/taskboard/repository"
)

// Warning thresholds in whole minutes before a deadline.
const (
	warnFirst   = 60
	warnSecond  = 30
	warnUrgency = 15
)

// SweeperConfig controls the deadline sweep.
type SweeperConfig struct {
	Interval        time.Duration
	NotificationTTL time.Duration
	Location        *time.Location
}

// SweepResult counts what one sweep changed.
type SweepResult struct {
	Expired  int `json:"expired"`
	Restored int `json:"restored"`
	Notified int `json:"notified"`
}

// DeadlineSweeper expires overdue tasks, returns deferred tasks to the board on their date
// and queues deadline warnings.
type DeadlineSweeper struct {
	tasks         repository.TaskRepository
	users         repository.UserRepository
	notifications repository.NotificationRepository
	locales       *locale.Bundle
	logger        *zap.Logger
	cron          *cron.Cron
	cfg           SweeperConfig
	now           func() time.Time
}

func NewDeadlineSweeper(
	tasks repository.TaskRepository,
	users repository.UserRepository,
	notifications repository.NotificationRepository,
	locales *locale.Bundle,
	logger *zap.Logger,
	cfg SweeperConfig,
) *DeadlineSweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.NotificationTTL <= 0 {
		cfg.NotificationTTL = 2 * time.Hour
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &DeadlineSweeper{
		tasks:         tasks,
		users:         users,
		notifications: notifications,
		locales:       locales,
		logger:        logger.Named("sweeper"),
		cfg:           cfg,
		cron:          cron.New(cron.WithLocation(cfg.Location), cron.WithSeconds()),
		now:           time.Now,
	}

	schedule := fmt.Sprintf("@every %ds", max(1, int(cfg.Interval.Seconds())))
	_, _ = s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if _, err := s.Sweep(ctx, s.now()); err != nil {
			s.logger.Error("deadline sweep failed", zap.Error(err))
		}
	})
	return s
}

func (s *DeadlineSweeper) Start() {
	s.cron.Start()
	s.logger.Info("deadline sweeper started", zap.Duration("interval", s.cfg.Interval))
}

func (s *DeadlineSweeper) Stop(ctx context.Context) error {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Sweep runs one pass at now. Failures on single tasks are logged and skipped.
func (s *DeadlineSweeper) Sweep(ctx context.Context, now time.Time) (SweepResult, error) {
	var result SweepResult

	tasks, err := s.tasks.ListForSweep(ctx, now.Add((warnFirst+1)*time.Minute))
	if err != nil {
		return result, fmt.Errorf("list tasks for sweep: %w", err)
	}

	printers := make(map[string]*locale.Printer)
	today := domain.DateOnly(now.In(s.cfg.Location))

	for i := range tasks {
		task := &tasks[i]
		log := s.logger.With(zap.String("task_id", task.ID), zap.String("user_id", task.UserID))

		switch {
		case overdue(task, now):
			if err := s.tasks.UpdateStatus(ctx, task.UserID, task.ID, domain.StatusExpired); err != nil {
				log.Warn("failed to expire task", zap.Error(err))
				continue
			}
			result.Expired++
			continue

		case dueToday(task, today, s.cfg.Location):
			if err := s.tasks.UpdateStatus(ctx, task.UserID, task.ID, domain.StatusTodo); err != nil {
				log.Warn("failed to restore deferred task", zap.Error(err))
				continue
			}
			result.Restored++
		}

		minutes, ok := warningMinutes(task, now)
		if !ok {
			continue
		}
		fresh, err := s.notifications.MarkNotified(ctx, task.ID, minutes, s.cfg.NotificationTTL)
		if err != nil {
			log.Warn("failed to record notification", zap.Error(err))
			continue
		}
		if !fresh {
			continue
		}

		printer := s.printerFor(ctx, printers, task.UserID)
		n := &domain.Notification{
			UserID:      task.UserID,
			TaskID:      task.ID,
			MinutesLeft: minutes,
			Message:     printer.DeadlineNotification(task.Title, minutes),
			CreatedAt:   now,
		}
		if err := s.notifications.Push(ctx, n); err != nil {
			log.Warn("failed to queue notification", zap.Error(err))
			continue
		}
		result.Notified++
	}

	if result != (SweepResult{}) {
		s.logger.Info("deadline sweep finished",
			zap.Int("expired", result.Expired),
			zap.Int("restored", result.Restored),
			zap.Int("notified", result.Notified))
	}
	return result, nil
}

func (s *DeadlineSweeper) printerFor(ctx context.Context, cache map[string]*locale.Printer, userID string) *locale.Printer {
	if p, ok := cache[userID]; ok {
		return p
	}
	lang := ""
	if s.users != nil {
		if user, err := s.users.GetByID(ctx, userID); err == nil {
			lang = user.Language
		}
	}
	p := s.locales.Printer(s.locales.Resolve(lang, ""))
	cache[userID] = p
	return p
}

func overdue(task *domain.Task, now time.Time) bool {
	if task.Deadline == nil || !task.Deadline.Before(now) {
		return false
	}
	return task.Status != domain.StatusExpired && task.Status != domain.StatusDone
}

func dueToday(task *domain.Task, today time.Time, loc *time.Location) bool {
	if task.Status != domain.StatusDeferred || task.DeferredDate == nil {
		return false
	}
	return !domain.DateOnly(task.DeferredDate.In(loc)).After(today)
}

// warningMinutes returns the whole minutes left when a warning is due.
func warningMinutes(task *domain.Task, now time.Time) (int, bool) {
	if task.Deadline == nil || !task.Deadline.After(now) {
		return 0, false
	}
	if task.Status == domain.StatusDone || task.Status == domain.StatusExpired {
		return 0, false
	}
	minutes := int(task.Deadline.Sub(now) / time.Minute)
	if minutes == warnFirst || minutes == warnSecond || minutes < warnUrgency {
		return minutes, true
	}
	return 0, false
}
