package app

import (
	"context"
	"fmt"
	"time"

	"github.com/klokku/dailybudget/internal/config"
	"github.com/klokku/dailybudget/pkg/budget_calculation"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

const cleanupTimeout = 5 * time.Minute

// NewHistoryCleanup schedules the removal of calculations older than the retention period.
// The returned scheduler is not started.
func NewHistoryCleanup(cfg config.History, service budget_calculation.Service) (*cron.Cron, error) {
	if cfg.RetentionDays <= 0 {
		return nil, fmt.Errorf("history.retentiondays must be positive, got %d", cfg.RetentionDays)
	}
	retention := time.Duration(cfg.RetentionDays) * 24 * time.Hour

	scheduler := cron.New(cron.WithLogger(cronLogger{}), cron.WithChain(cron.Recover(cronLogger{})))
	_, err := scheduler.AddFunc(cfg.CleanupSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()
		if _, err := service.PurgeHistory(ctx, retention); err != nil {
			log.Errorf("history cleanup failed: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid history.cleanupschedule %q: %w", cfg.CleanupSchedule, err)
	}
	return scheduler, nil
}

// cronLogger routes cron's own messages to logrus.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.WithFields(fields(keysAndValues)).Debug(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.WithFields(fields(keysAndValues)).WithError(err).Error(msg)
}

func fields(keysAndValues []interface{}) log.Fields {
	f := log.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return f
}
