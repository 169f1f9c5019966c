package config

import (
	"testing"

	"github.com/caarlos0/env/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ttp_errors "github.com/DanishNadar/ttp-tracker/internal/errors"
)

func parseTestConfig(t *testing.T, vars map[string]string) *Config {
	t.Helper()
	cfg := newConfig()
	require.NoError(t, env.Parse(cfg, env.Options{Environment: vars}))
	cfg.normalize()
	return cfg
}

func TestConfig_Defaults(t *testing.T) {
	cfg := parseTestConfig(t, map[string]string{})

	assert.Equal(t, 50, cfg.OutreachConfig.MaxEmailsPerRun)
	assert.Equal(t, "800-889-8072", cfg.OutreachConfig.CallToActionPhone)
	assert.Equal(t, "ttpResults.xlsx", cfg.OutreachConfig.ResultsXlsx)
	assert.Equal(t, "apollo.csv", cfg.OutreachConfig.ContactsCsv)
	assert.False(t, cfg.OutreachConfig.DryRun)
	assert.Equal(t, 587, cfg.SmtpConfig.Port)
	assert.Equal(t, "8080", cfg.TrackerConfig.Port)
	assert.Equal(t, "Technology Transition Paradigm", cfg.SenderConfig.Name)
}

func TestConfig_SenderFallsBackToSmtpUser(t *testing.T) {
	cfg := parseTestConfig(t, map[string]string{
		"SMTP_USER":       "outreach@ttp.com",
		"PUBLIC_BASE_URL": "https://track.ttp.com/",
	})

	assert.Equal(t, "outreach@ttp.com", cfg.SenderConfig.Email)
	assert.Equal(t, "outreach@ttp.com", cfg.SenderConfig.ReplyTo)
	assert.Equal(t, "https://track.ttp.com", cfg.AppConfig.PublicBaseURL)
}

func TestConfig_ValidateForSend(t *testing.T) {
	cfg := parseTestConfig(t, map[string]string{
		"SMTP_HOST":       "smtp.ttp.com",
		"SMTP_USER":       "outreach@ttp.com",
		"SMTP_PASS":       "secret",
		"PUBLIC_BASE_URL": "https://track.ttp.com",
	})
	assert.NoError(t, cfg.ValidateForSend())
	assert.Equal(t, "ttp.com", cfg.SenderDomain())
}

func TestConfig_ValidateForSend_Missing(t *testing.T) {
	cfg := parseTestConfig(t, map[string]string{
		"SMTP_HOST": "smtp.ttp.com",
	})
	err := cfg.ValidateForSend()
	require.Error(t, err)
	assert.ErrorIs(t, err, ttp_errors.ErrMissingConfig)
	assert.Contains(t, err.Error(), "SMTP_PASS")
	assert.Contains(t, err.Error(), "PUBLIC_BASE_URL")
}

func TestConfig_ValidateForSend_ZeroCap(t *testing.T) {
	cfg := parseTestConfig(t, map[string]string{
		"SMTP_HOST":          "smtp.ttp.com",
		"SMTP_USER":          "outreach@ttp.com",
		"SMTP_PASS":          "secret",
		"PUBLIC_BASE_URL":    "https://track.ttp.com",
		"MAX_EMAILS_PER_RUN": "0",
	})
	assert.ErrorIs(t, cfg.ValidateForSend(), ttp_errors.ErrInvalidConfig)
}

func TestConfig_SenderDomainFallback(t *testing.T) {
	cfg := parseTestConfig(t, map[string]string{})
	assert.Equal(t, "local", cfg.SenderDomain())
}

func TestConfig_ValidateForSnapshots(t *testing.T) {
	cfg := parseTestConfig(t, map[string]string{"CLOUDFLARE_R2_ACCOUNT_ID": "acct"})
	err := cfg.ValidateForSnapshots()
	assert.ErrorIs(t, err, ttp_errors.ErrMissingConfig)
	assert.Contains(t, err.Error(), "CLOUDFLARE_R2_ACCESS_KEY_ID")
	assert.NotContains(t, err.Error(), "SNAPSHOT_BUCKET")

	cfg = parseTestConfig(t, map[string]string{
		"CLOUDFLARE_R2_ACCOUNT_ID":        "acct",
		"CLOUDFLARE_R2_ACCESS_KEY_ID":     "id",
		"CLOUDFLARE_R2_ACCESS_KEY_SECRET": "secret",
	})
	assert.NoError(t, cfg.ValidateForSnapshots())
}
