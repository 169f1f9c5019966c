package cron_config

type Config struct {
	// Heartbeat, every minute
	CronScheduleHeartbeat string `env:"CRON_SCHEDULE_HEARTBEAT" envDefault:"0 * * * * *"`
	// Open reconciliation into the results workbook, empty disables it
	CronScheduleSyncOpens string `env:"CRON_SCHEDULE_SYNC_OPENS"`
}
