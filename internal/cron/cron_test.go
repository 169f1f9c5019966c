package cron

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cron_config "github.com/DanishNadar/ttp-tracker/internal/cron/config"
	ttp_errors "github.com/DanishNadar/ttp-tracker/internal/errors"
	"github.com/DanishNadar/ttp-tracker/internal/logger"
)

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{
		DevMode: true,
	})
	appLogger.InitLogger()
	return appLogger
}

func TestNewCronManager(t *testing.T) {
	cm := NewCronManager(nil, getLogger(), nil)

	assert.NotNil(t, cm)
	assert.NotNil(t, cm.cfg)
	assert.NotNil(t, cm.jobIDs)
}

func TestStart_RegistersConfiguredJobs(t *testing.T) {
	cfg := &cron_config.Config{
		CronScheduleHeartbeat: "0 * * * * *",
		CronScheduleSyncOpens: "0 */5 * * * *",
	}
	cm := NewCronManager(cfg, getLogger(), func(context.Context) error { return nil })

	require.NoError(t, cm.Start())
	defer cm.Stop()

	assert.Contains(t, cm.jobIDs, JobHeartbeat)
	assert.Contains(t, cm.jobIDs, JobSyncOpens)
	assert.Len(t, cm.cron.Entries(), 2)
}

func TestStart_SyncOpensDisabled(t *testing.T) {
	cfg := &cron_config.Config{CronScheduleHeartbeat: "0 * * * * *"}
	cm := NewCronManager(cfg, getLogger(), func(context.Context) error { return nil })

	require.NoError(t, cm.Start())
	defer cm.Stop()

	assert.NotContains(t, cm.jobIDs, JobSyncOpens)
}

func TestStart_InvalidSchedule(t *testing.T) {
	cm := NewCronManager(&cron_config.Config{CronScheduleHeartbeat: "not a schedule"}, getLogger(), nil)
	assert.Error(t, cm.Start())
}

func TestRunSyncOpens(t *testing.T) {
	calls := 0
	cm := NewCronManager(nil, getLogger(), func(context.Context) error {
		calls++
		return errors.New("store unavailable")
	})

	assert.NotPanics(t, cm.runSyncOpens)
	assert.Equal(t, 1, calls)
}

func TestRunSyncOpens_BoundsLockWait(t *testing.T) {
	var deadline time.Time
	var hasDeadline bool
	cm := NewCronManager(nil, getLogger(), func(ctx context.Context) error {
		deadline, hasDeadline = ctx.Deadline()
		return fmt.Errorf("results.xlsx: %w", ttp_errors.ErrWorkbookLocked)
	})

	assert.NotPanics(t, cm.runSyncOpens)
	require.True(t, hasDeadline)
	assert.WithinDuration(t, time.Now().Add(syncOpensLockWait), deadline, 5*time.Second)
}

func TestStop_WithoutStart(t *testing.T) {
	cm := NewCronManager(nil, getLogger(), nil)
	assert.NotPanics(t, cm.Stop)
}
