package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stackitdev/stackit/internal/models"
	"github.com/stackitdev/stackit/pkg/logger"
)

const (
	defaultRetentionDays = 90
	defaultSchedule      = "@daily"
)

// Cleaner coordinates background maintenance: purging read notifications
// past their retention window and removing votes whose target has vanished.
type Cleaner struct {
	db        *gorm.DB
	cron      *cron.Cron
	now       func() time.Time
	log       *zap.Logger
	retention int
	schedule  string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for retention comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithRetentionDays adjusts how long read notifications are retained.
func WithRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.retention = days
		}
	}
}

// WithSchedule overrides the cron specification for the cleanup job.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.schedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults.
func NewCleaner(db *gorm.DB, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		db:        db,
		now:       time.Now,
		retention: defaultRetentionDays,
		schedule:  defaultSchedule,
		log:       logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers the cleanup job with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.db == nil {
		return nil
	}

	if _, err := c.cron.AddFunc(c.schedule, func() {
		if err := c.RunOnce(context.Background()); err != nil {
			c.log.Warn("maintenance run failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all cleanup routines sequentially. Primarily used in
// tests and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.db == nil {
		return nil
	}

	var errs error

	removed, err := CleanupNotifications(ctx, c.db, c.now(), c.retention)
	if err != nil {
		errs = multierr.Append(errs, err)
	} else if removed > 0 {
		c.log.Info("purged read notifications", zap.Int64("count", removed))
	}

	orphaned, err := CleanupOrphanedVotes(ctx, c.db)
	if err != nil {
		errs = multierr.Append(errs, err)
	} else if orphaned > 0 {
		c.log.Info("removed orphaned votes", zap.Int64("count", orphaned))
	}

	return errs
}

// CleanupNotifications removes read notifications older than the retention
// window. Unread notifications are kept regardless of age.
func CleanupNotifications(ctx context.Context, db *gorm.DB, now time.Time, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := now.AddDate(0, 0, -retentionDays)
	result := db.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}

// CleanupOrphanedVotes removes votes whose question or answer no longer
// exists. Targets deleted through the services take their votes with them;
// this sweeps up anything removed out of band.
func CleanupOrphanedVotes(ctx context.Context, db *gorm.DB) (int64, error) {
	questionVotes := db.WithContext(ctx).
		Where("question_id IS NOT NULL AND question_id NOT IN (?)",
			db.Model(&models.Question{}).Select("id")).
		Delete(&models.Vote{})
	if questionVotes.Error != nil {
		return 0, questionVotes.Error
	}

	answerVotes := db.WithContext(ctx).
		Where("answer_id IS NOT NULL AND answer_id NOT IN (?)",
			db.Model(&models.Answer{}).Select("id")).
		Delete(&models.Vote{})
	if answerVotes.Error != nil {
		return questionVotes.RowsAffected, answerVotes.Error
	}

	return questionVotes.RowsAffected + answerVotes.RowsAffected, nil
}
