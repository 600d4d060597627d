package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gaston-app/budget-service/internal/config"
	"github.com/gaston-app/budget-service/internal/models"
	"github.com/gaston-app/budget-service/internal/repository"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ReminderSender delivers debt payment reminders
type ReminderSender interface {
	SendPaymentReminder(to string, debt models.Debt, dueDate time.Time) error
}

// Scheduler runs the periodic debt reminder job
type Scheduler struct {
	repo   repository.Store
	sender ReminderSender
	log    *logrus.Logger
	cfg    *config.Config
	cron   *cron.Cron
}

// New creates the reminder scheduler
func New(repo repository.Store, sender ReminderSender, log *logrus.Logger, cfg *config.Config) *Scheduler {
	return &Scheduler{
		repo:   repo,
		sender: sender,
		log:    log,
		cfg:    cfg,
		cron:   cron.New(),
	}
}

// Start registers the reminder job and starts the cron loop
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.cfg.ReminderCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		s.runDebtReminders(ctx, time.Now().UTC())
	})
	if err != nil {
		return fmt.Errorf("schedule reminder job: %w", err)
	}
	s.cron.Start()
	s.log.Infof("Reminder scheduler started (%s)", s.cfg.ReminderCron)
	return nil
}

// Stop halts the cron loop, waiting for a running job to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// runDebtReminders walks every entity and emails the owner about debts in
// arrears or due within the reminder window
func (s *Scheduler) runDebtReminders(ctx context.Context, now time.Time) {
	entities, err := s.repo.ListAllEntities(ctx)
	if err != nil {
		s.log.Errorf("Reminder job: list entities: %v", err)
		return
	}

	for _, entity := range entities {
		cfg, _, err := s.repo.GetConfig(ctx, entity.ID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			s.log.Errorf("Reminder job: config for entity %d: %v", entity.ID, err)
			continue
		}

		var owner models.User
		ownerLoaded := false
		for _, debt := range cfg.Debts {
			due, remind := s.nextDueDate(debt, now)
			if !remind {
				continue
			}
			if !ownerLoaded {
				owner, err = s.repo.GetUserByID(ctx, entity.OwnerID)
				if err != nil {
					s.log.Errorf("Reminder job: owner of entity %d: %v", entity.ID, err)
					break
				}
				ownerLoaded = true
			}
			if err := s.sender.SendPaymentReminder(owner.Email, debt, due); err != nil {
				s.log.Errorf("Reminder job: email for debt %s: %v", debt.ID, err)
			}
		}
	}
}

// nextDueDate decides whether a debt warrants a reminder now and what due
// date to mention. Arrears always remind; otherwise the due day must fall
// within the configured window.
func (s *Scheduler) nextDueDate(debt models.Debt, now time.Time) (time.Time, bool) {
	if !debt.Remaining().IsPositive() {
		return time.Time{}, false
	}
	if debt.MonthsInArrears > 0 {
		return now, true
	}
	if debt.DueDay <= 0 {
		return time.Time{}, false
	}

	due := dateWithDay(now, debt.DueDay)
	if due.Before(now.Truncate(24 * time.Hour)) {
		due = dateWithDay(now.AddDate(0, 1, 0), debt.DueDay)
	}
	window := time.Duration(s.cfg.ReminderDays) * 24 * time.Hour
	if due.Sub(now) > window {
		return time.Time{}, false
	}
	return due, true
}

// dateWithDay clamps day to the month containing ref
func dateWithDay(ref time.Time, day int) time.Time {
	lastDay := time.Date(ref.Year(), ref.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(ref.Year(), ref.Month(), day, 0, 0, 0, 0, time.UTC)
}
