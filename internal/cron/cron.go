package cron

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	cronv3 "github.com/robfig/cron/v3"

	cron_config "github.com/DanishNadar/ttp-tracker/internal/cron/config"
	ttp_errors "github.com/DanishNadar/ttp-tracker/internal/errors"
	"github.com/DanishNadar/ttp-tracker/internal/logger"
	"github.com/DanishNadar/ttp-tracker/internal/tracing"
)

const (
	// GroupTracking serializes this process's workbook jobs. Other processes are kept out by the workbook file lock.
	GroupTracking = "tracking"

	JobHeartbeat = "heartbeat"
	JobSyncOpens = "sync_opens"
)

// syncOpensLockWait bounds how long an open sync waits for a running send to release the workbook
const syncOpensLockWait = 30 * time.Second

var jobLocks = struct {
	sync.Mutex
	locks map[string]*sync.Mutex
}{
	locks: map[string]*sync.Mutex{
		GroupTracking: new(sync.Mutex),
	},
}

// SyncOpensFunc runs one reconciliation pass
type SyncOpensFunc func(ctx context.Context) error

type CronManager struct {
	cfg       *cron_config.Config
	log       logger.Logger
	cron      *cronv3.Cron
	jobIDs    map[string]cronv3.EntryID
	syncOpens SyncOpensFunc
}

func NewCronManager(cfg *cron_config.Config, log logger.Logger, syncOpens SyncOpensFunc) *CronManager {
	if cfg == nil {
		cfg = &cron_config.Config{}
	}
	return &CronManager{
		cfg:       cfg,
		log:       log,
		jobIDs:    make(map[string]cronv3.EntryID),
		syncOpens: syncOpens,
	}
}

// Start registers the configured jobs and starts the scheduler
func (cm *CronManager) Start() error {
	cm.log.Info("Starting cron manager")
	c := cronv3.New(
		cronv3.WithSeconds(),
		cronv3.WithChain(
			cronv3.SkipIfStillRunning(cronv3.DefaultLogger),
			cronv3.Recover(cronv3.DefaultLogger),
		),
	)
	if err := cm.registerJobs(c); err != nil {
		return err
	}
	c.Start()
	cm.cron = c
	return nil
}

// Stop waits for running jobs to finish
func (cm *CronManager) Stop() {
	if cm.cron == nil {
		return
	}
	cm.log.Info("Stopping cron manager")
	<-cm.cron.Stop().Done()
	cm.cron = nil
}

func (cm *CronManager) registerJobs(c *cronv3.Cron) error {
	if cm.cfg.CronScheduleHeartbeat != "" {
		host, err := os.Hostname()
		if err != nil || host == "" {
			host = "local"
		}
		id, err := c.AddFunc(cm.cfg.CronScheduleHeartbeat, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			cm.log.Infof("Cron heartbeat from %s", host)
		})
		if err != nil {
			return err
		}
		cm.jobIDs[JobHeartbeat] = id
		cm.log.Infof("Registered heartbeat job with schedule: %s", cm.cfg.CronScheduleHeartbeat)
	}

	if cm.cfg.CronScheduleSyncOpens != "" && cm.syncOpens != nil {
		id, err := c.AddFunc(cm.cfg.CronScheduleSyncOpens, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			jobLocks.locks[GroupTracking].Lock()
			defer jobLocks.locks[GroupTracking].Unlock()
			cm.runSyncOpens()
		})
		if err != nil {
			return err
		}
		cm.jobIDs[JobSyncOpens] = id
		cm.log.Infof("Registered open sync job with schedule: %s", cm.cfg.CronScheduleSyncOpens)
	}
	return nil
}

func (cm *CronManager) runSyncOpens() {
	span, ctx := tracing.StartTracerSpan(context.Background(), "CronManager.runSyncOpens")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	ctx, cancel := context.WithTimeout(ctx, syncOpensLockWait)
	defer cancel()

	err := cm.syncOpens(ctx)
	if errors.Is(err, ttp_errors.ErrWorkbookLocked) {
		span.LogKV("skipped", "workbook locked")
		cm.log.Infof("Open sync skipped, workbook busy: %v", err)
		return
	}
	if err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("Open sync failed: %v", err)
		return
	}
	cm.log.Debug("Open sync completed")
}
