// Package maintenance runs periodic housekeeping: it sweeps invite codes
// whose expiry timer was lost to a restart and trims old audit entries.
package maintenance

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/famboard/famboard/internal/models"
	"github.com/famboard/famboard/internal/services"
	"github.com/famboard/famboard/pkg/logger"
)

const (
	// DefaultSchedule runs the sweep every minute: invite TTLs are
	// measured in seconds, so a lost timer is corrected quickly.
	DefaultSchedule = "* * * * *"
	// DefaultAuditRetention keeps audit entries for 90 days.
	DefaultAuditRetention = 90 * 24 * time.Hour
)

// Config controls the cleaner's schedule and retention windows.
type Config struct {
	Schedule       string
	AuditRetention time.Duration
}

// Cleaner owns the cron loop that performs the sweeps.
type Cleaner struct {
	db    *gorm.DB
	audit *services.AuditService
	cfg   Config
	cron  *cron.Cron
	now   func() time.Time
	log   *zap.Logger
}

// NewCleaner builds a Cleaner. The audit service may be nil, in which
// case only invite codes are swept.
func NewCleaner(db *gorm.DB, audit *services.AuditService, cfg Config) (*Cleaner, error) {
	if db == nil {
		return nil, errors.New("maintenance: nil database handle")
	}
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	if cfg.AuditRetention <= 0 {
		cfg.AuditRetention = DefaultAuditRetention
	}

	return &Cleaner{
		db:    db,
		audit: audit,
		cfg:   cfg,
		cron:  cron.New(),
		now:   time.Now,
		log:   logger.WithModule("maintenance"),
	}, nil
}

// Start registers the sweep on the configured schedule and starts the
// cron loop.
func (c *Cleaner) Start() error {
	_, err := c.cron.AddFunc(c.cfg.Schedule, func() {
		if err := c.RunOnce(context.Background()); err != nil {
			c.log.Warn("maintenance sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	c.cron.Start()
	c.log.Info("maintenance sweeps scheduled", zap.String("schedule", c.cfg.Schedule))
	return nil
}

// Stop halts the cron loop and waits for a running sweep to finish.
func (c *Cleaner) Stop() {
	ctx := c.cron.Stop()
	<-ctx.Done()
}

// RunOnce performs one full sweep. Each job runs even when an earlier
// one fails; the combined error is returned.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	var errs error

	if err := c.sweepExpiredInvites(ctx); err != nil {
		errs = multierr.Append(errs, err)
	}
	if c.audit != nil {
		if _, err := c.audit.CleanupOlderThan(ctx, c.cfg.AuditRetention); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}

func (c *Cleaner) sweepExpiredInvites(ctx context.Context) error {
	result := c.db.WithContext(ctx).
		Where("expires_at <= ?", c.now().UTC()).
		Delete(&models.InviteCode{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		c.log.Info("swept expired invite codes", zap.Int64("count", result.RowsAffected))
	}
	return nil
}
