package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  host: "0.0.0.0"

app:
  base_url: "https://mail.example.com"
  store_name: "Acme Outfitters"
  sender_email: "hello@acme.example"

webhook:
  shared_secret: "whsec"

scheduler:
  signing_key: "k1"
  signing_key_next: "k2"

platform:
  store_domain: "acme.myplatform.com"
  timeout_seconds: 45

metastore:
  table: "storemailer-meta"
  install_id: "install-1"

dispatch:
  batch_size: 50
  inter_batch_delay_ms: 500
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "Acme Outfitters", cfg.App.StoreName)
	assert.Equal(t, "whsec", cfg.Webhook.SharedSecret)
	assert.Equal(t, "k1", cfg.Scheduler.SigningKey)
	assert.Equal(t, "k2", cfg.Scheduler.SigningKeyNext)
	assert.Equal(t, 45, cfg.Platform.TimeoutSeconds)
	assert.Equal(t, 50, cfg.Dispatch.BatchSize)
	assert.Equal(t, 500, cfg.Dispatch.InterBatchDelayMs)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  store_name: "Acme"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 30, cfg.Platform.TimeoutSeconds)
	assert.Equal(t, 250, cfg.Platform.PageSize)
	assert.Equal(t, "us-west-2", cfg.SES.Region)
	assert.Equal(t, 100, cfg.Dispatch.BatchSize)
	assert.Equal(t, 1000, cfg.Dispatch.InterBatchDelayMs)
	assert.Equal(t, 30, cfg.Dispatch.PerItemTimeoutSecs)
}

func TestLoadFromEnv(t *testing.T) {
	path := writeConfig(t, `
webhook:
  shared_secret: "file-secret"
`)

	os.Setenv("WEBHOOK_SHARED_SECRET", "env-secret")
	os.Setenv("SCHEDULER_SIGNING_KEY", "env-key")
	defer func() {
		os.Unsetenv("WEBHOOK_SHARED_SECRET")
		os.Unsetenv("SCHEDULER_SIGNING_KEY")
	}()

	cfg, err := LoadFromEnv(path)
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.Webhook.SharedSecret)
	assert.Equal(t, "env-key", cfg.Scheduler.SigningKey)
}

func TestValidate(t *testing.T) {
	full := Config{
		App:       AppConfig{BaseURL: "https://x", StoreName: "S", SenderEmail: "s@x.com"},
		Webhook:   WebhookConfig{SharedSecret: "w"},
		Scheduler: SchedulerConfig{SigningKey: "k"},
		Platform:  PlatformConfig{StoreDomain: "d"},
		Metastore: MetastoreConfig{Table: "t", InstallID: "i"},
	}
	assert.NoError(t, full.Validate())

	missing := full
	missing.Webhook.SharedSecret = ""
	assert.Error(t, missing.Validate())

	missing = full
	missing.Scheduler.SigningKey = ""
	assert.Error(t, missing.Validate())

	missing = full
	missing.App.SenderEmail = ""
	assert.Error(t, missing.Validate())
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}
