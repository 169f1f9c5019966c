package config

import (
	"log"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/customeros/mailsherpa/mailvalidate"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/DanishNadar/ttp-tracker/internal/database"
	cron_config "github.com/DanishNadar/ttp-tracker/internal/cron/config"
	ttp_errors "github.com/DanishNadar/ttp-tracker/internal/errors"
	"github.com/DanishNadar/ttp-tracker/internal/logger"
	"github.com/DanishNadar/ttp-tracker/internal/tracing"
)

type Config struct {
	AppConfig      *AppConfig
	Logger         *logger.Config
	Tracing        *tracing.JaegerConfig
	DatabaseConfig *DatabaseConfig
	SmtpConfig     *SmtpConfig
	SenderConfig   *SenderConfig
	OutreachConfig *OutreachConfig
	TrackerConfig  *TrackerConfig
	StorageConfig  *StorageConfig
	RabbitMQConfig *RabbitMQConfig
	Cron           *cron_config.Config
}

func newConfig() *Config {
	return &Config{
		AppConfig:      &AppConfig{},
		Logger:         &logger.Config{},
		Tracing:        &tracing.JaegerConfig{},
		DatabaseConfig: &DatabaseConfig{},
		SmtpConfig:     &SmtpConfig{},
		SenderConfig:   &SenderConfig{},
		OutreachConfig: &OutreachConfig{},
		TrackerConfig:  &TrackerConfig{},
		StorageConfig:  &StorageConfig{},
		RabbitMQConfig: &RabbitMQConfig{},
		Cron:           &cron_config.Config{},
	}
}

func InitConfig() (*Config, error) {
	config := newConfig()

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	if err = env.Parse(config); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}

	config.normalize()
	return config, nil
}

// normalize fills values that default to other values
func (c *Config) normalize() {
	c.AppConfig.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.AppConfig.PublicBaseURL), "/")
	if c.SenderConfig.Email == "" {
		c.SenderConfig.Email = c.SmtpConfig.User
	}
	if c.SenderConfig.ReplyTo == "" {
		c.SenderConfig.ReplyTo = c.SenderConfig.Email
	}
}

// ValidateForSend checks everything the outreach run needs before it touches a row
func (c *Config) ValidateForSend() error {
	var missing []string
	if c.SmtpConfig.Host == "" {
		missing = append(missing, "SMTP_HOST")
	}
	if c.SmtpConfig.User == "" {
		missing = append(missing, "SMTP_USER")
	}
	if c.SmtpConfig.Password == "" {
		missing = append(missing, "SMTP_PASS")
	}
	if c.SenderConfig.Email == "" {
		missing = append(missing, "SENDER_EMAIL")
	}
	if c.AppConfig.PublicBaseURL == "" {
		missing = append(missing, "PUBLIC_BASE_URL")
	}
	if len(missing) > 0 {
		return errors.Wrapf(ttp_errors.ErrMissingConfig, "%s", strings.Join(missing, ", "))
	}

	if validation := mailvalidate.ValidateEmailSyntax(c.SenderConfig.Email); !validation.IsValid {
		return errors.Wrapf(ttp_errors.ErrInvalidConfig, "sender email %q", c.SenderConfig.Email)
	}
	if c.OutreachConfig.MaxEmailsPerRun < 1 {
		return errors.Wrap(ttp_errors.ErrInvalidConfig, "MAX_EMAILS_PER_RUN must be at least 1")
	}
	return nil
}

func (c *Config) ValidateForTracker() error {
	if c.TrackerConfig.Port == "" {
		return errors.Wrap(ttp_errors.ErrMissingConfig, "TRACKER_PORT")
	}
	return nil
}

func (c *Config) ValidateForSnapshots() error {
	s := c.StorageConfig
	var missing []string
	if s.AccountID == "" {
		missing = append(missing, "CLOUDFLARE_R2_ACCOUNT_ID")
	}
	if s.AccessKeyID == "" {
		missing = append(missing, "CLOUDFLARE_R2_ACCESS_KEY_ID")
	}
	if s.AccessKeySecret == "" {
		missing = append(missing, "CLOUDFLARE_R2_ACCESS_KEY_SECRET")
	}
	if s.Bucket == "" {
		missing = append(missing, "SNAPSHOT_BUCKET")
	}
	if len(missing) > 0 {
		return errors.Wrapf(ttp_errors.ErrMissingConfig, "%s", strings.Join(missing, ", "))
	}
	return nil
}

// SenderDomain is the domain used for RFC 5322 Message-IDs
func (c *Config) SenderDomain() string {
	validation := mailvalidate.ValidateEmailSyntax(c.SenderConfig.Email)
	if validation.IsValid && validation.Domain != "" {
		return validation.Domain
	}
	return "local"
}

func (c *Config) Database() *database.DatabaseConfig {
	return &database.DatabaseConfig{
		DBName:          c.DatabaseConfig.DBName,
		Host:            c.DatabaseConfig.Host,
		Port:            c.DatabaseConfig.Port,
		User:            c.DatabaseConfig.User,
		Password:        c.DatabaseConfig.Password,
		MaxConn:         c.DatabaseConfig.MaxConn,
		MaxIdleConn:     c.DatabaseConfig.MaxIdleConn,
		ConnMaxLifetime: c.DatabaseConfig.ConnMaxLifetime,
		LogLevel:        c.DatabaseConfig.LogLevel,
		SSLMode:         c.DatabaseConfig.SSLMode,
	}
}
