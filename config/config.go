package config

type AppConfig struct {
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`
	TrackerSecret string `env:"TRACKER_SECRET"`
}

type DatabaseConfig struct {
	Host            string `env:"TRACKING_POSTGRES_HOST" envDefault:"localhost"`
	Port            string `env:"TRACKING_POSTGRES_PORT" envDefault:"5432"`
	User            string `env:"TRACKING_POSTGRES_USER" envDefault:"postgres"`
	DBName          string `env:"TRACKING_POSTGRES_DB_NAME" envDefault:"email_tracking"`
	Password        string `env:"TRACKING_POSTGRES_PASSWORD"`
	MaxConn         int    `env:"TRACKING_POSTGRES_DB_MAX_CONN"`
	MaxIdleConn     int    `env:"TRACKING_POSTGRES_DB_MAX_IDLE_CONN"`
	ConnMaxLifetime int    `env:"TRACKING_POSTGRES_DB_CONN_MAX_LIFETIME"`
	LogLevel        string `env:"TRACKING_POSTGRES_LOG_LEVEL" envDefault:"WARN"`
	SSLMode         string `env:"TRACKING_POSTGRES_SSL_MODE" envDefault:"disable"`
}

type SmtpConfig struct {
	Host           string `env:"SMTP_HOST"`
	Port           int    `env:"SMTP_PORT" envDefault:"587"`
	User           string `env:"SMTP_USER"`
	Password       string `env:"SMTP_PASS"`
	TimeoutSeconds int    `env:"SMTP_TIMEOUT_SECONDS" envDefault:"30"`
}

type SenderConfig struct {
	Name             string `env:"SENDER_NAME" envDefault:"Technology Transition Paradigm"`
	Email            string `env:"SENDER_EMAIL"`
	ReplyTo          string `env:"REPLY_TO_EMAIL"`
	UnsubscribeEmail string `env:"UNSUBSCRIBE_EMAIL"`
}

type OutreachConfig struct {
	ResultsXlsx        string `env:"RESULTS_XLSX" envDefault:"ttpResults.xlsx"`
	ContactsCsv        string `env:"APOLLO_CSV" envDefault:"apollo.csv"`
	MaxEmailsPerRun    int    `env:"MAX_EMAILS_PER_RUN" envDefault:"50"`
	DryRun             bool   `env:"DRY_RUN" envDefault:"false"`
	CallToActionPhone  string `env:"CALL_TO_ACTION_PHONE" envDefault:"800-889-8072"`
	CallToActionURL    string `env:"CALL_TO_ACTION_URL"`
	MaxContactFallback int    `env:"CONTACT_FALLBACK_DEPTH" envDefault:"2"`
}

type TrackerConfig struct {
	Port string `env:"TRACKER_PORT" envDefault:"8080"`
}

type StorageConfig struct {
	Enabled         bool   `env:"SNAPSHOT_ENABLED" envDefault:"false"`
	AccountID       string `env:"CLOUDFLARE_R2_ACCOUNT_ID"`
	AccessKeyID     string `env:"CLOUDFLARE_R2_ACCESS_KEY_ID"`
	AccessKeySecret string `env:"CLOUDFLARE_R2_ACCESS_KEY_SECRET"`
	Bucket          string `env:"SNAPSHOT_BUCKET" envDefault:"ttp-results"`
}

type RabbitMQConfig struct {
	URL      string `env:"RABBITMQ_URL"`
	Exchange string `env:"RABBITMQ_EXCHANGE" envDefault:"ttp-tracker"`
}
