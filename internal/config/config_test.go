package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.NotEmpty(t, cfg.DBPath)
	assert.Equal(t, "ollama", cfg.VisionBackend)
	assert.Equal(t, "none", cfg.STTBackend)
	assert.Equal(t, time.Hour, cfg.TokenTTL())
}

func TestLoadCustomValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("DB_PATH", "/custom/db.sqlite")
	t.Setenv("VISION_BACKEND", "claude")
	t.Setenv("CLAUDE_API_KEY", "sk-test123")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("SCHEDULER_ENABLED", "false")
	t.Setenv("TOKEN_TTL_MINUTES", "15")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "/custom/db.sqlite", cfg.DBPath)
	assert.Equal(t, "claude", cfg.VisionBackend)
	assert.Equal(t, "sk-test123", cfg.ClaudeAPIKey)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.False(t, cfg.SchedulerEnabled)
	assert.Equal(t, 15*time.Minute, cfg.TokenTTL())
}

func TestLoadTOMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "everything.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen_addr = ":7000"
stt_backend = "openai"
gtfs_feed_url = "http://feeds.example/trips"
kafka_brokers = ["a:9092"]
`), 0o600))
	t.Setenv("LISTEN_ADDR", ":7100")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7100", cfg.ListenAddr, "env wins over file")
	assert.Equal(t, "openai", cfg.STTBackend)
	assert.Equal(t, "http://feeds.example/trips", cfg.GTFSFeedURL)
	assert.Equal(t, []string{"a:9092"}, cfg.KafkaBrokers)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("COMMUTE_STOP_ID=stop-42\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("COMMUTE_STOP_ID") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "stop-42", cfg.CommuteStopID)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STT_BACKEND", "carrier-pigeon")

	_, err := Load("")
	assert.ErrorContains(t, err, "stt_backend")
}

func TestLoadMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
