package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	ListenAddr string `toml:"listen_addr"`
	DBPath     string `toml:"db_path"`
	DataDir    string `toml:"data_dir"`

	LogLevel  string `toml:"log_level"`
	LogFile   string `toml:"log_file"`
	LogFormat string `toml:"log_format"`

	VisionBackend string `toml:"vision_backend"`
	OllamaHost    string `toml:"ollama_host"`
	OllamaModel   string `toml:"ollama_model"`
	ClaudeAPIKey  string `toml:"claude_api_key"`
	ClaudeModel   string `toml:"claude_model"`

	STTBackend       string `toml:"stt_backend"`
	OpenAIAPIKey     string `toml:"openai_api_key"`
	OpenAIBaseURL    string `toml:"openai_base_url"`
	WhisperModelPath string `toml:"whisper_model_path"`
	TTSBackend       string `toml:"tts_backend"`
	EspeakPath       string `toml:"espeak_path"`
	EspeakVoice      string `toml:"espeak_voice"`

	GTFSFeedURL   string `toml:"gtfs_feed_url"`
	CommuteStopID string `toml:"commute_stop_id"`

	NtfyTopic   string `toml:"ntfy_topic"`
	ExpoPushURL string `toml:"expo_push_url"`

	SchedulerEnabled  bool   `toml:"scheduler_enabled"`
	SchedulerLockPath string `toml:"scheduler_lock_path"`

	KafkaBrokers []string `toml:"kafka_brokers"`
	KafkaTopic   string   `toml:"kafka_topic"`

	AuthSecret      string `toml:"auth_secret"`
	AdminPassword   string `toml:"admin_password"`
	TokenTTLMinutes int    `toml:"token_ttl_minutes"`

	TestMode bool `toml:"-"`
}

// Default returns the built-in configuration before any file or env overrides.
func Default() Config {
	return Config{
		ListenAddr:        ":8080",
		DBPath:            "/data/everything.db",
		DataDir:           "/data/receipts",
		LogLevel:          "info",
		LogFormat:         "auto",
		VisionBackend:     "ollama",
		OllamaHost:        "http://localhost:11434",
		OllamaModel:       "moondream",
		ClaudeModel:       "claude-sonnet-4-5",
		STTBackend:        "none",
		TTSBackend:        "none",
		EspeakPath:        "espeak-ng",
		EspeakVoice:       "en",
		ExpoPushURL:       "https://exp.host/--/api/v2/push/send",
		SchedulerEnabled:  true,
		SchedulerLockPath: "/tmp/everything-scheduler.lock",
		KafkaTopic:        "home-events",
		TokenTTLMinutes:   60,
	}
}

// Load builds the configuration from defaults, an optional TOML file at path,
// a .env file in the working directory, and finally the process environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	c.ListenAddr = getEnv("LISTEN_ADDR", c.ListenAddr)
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.DataDir = getEnv("DATA_DIR", c.DataDir)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("LOG_FILE", c.LogFile)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.VisionBackend = getEnv("VISION_BACKEND", c.VisionBackend)
	c.OllamaHost = getEnv("OLLAMA_HOST", c.OllamaHost)
	c.OllamaModel = getEnv("OLLAMA_MODEL", c.OllamaModel)
	c.ClaudeAPIKey = getEnv("CLAUDE_API_KEY", c.ClaudeAPIKey)
	c.ClaudeModel = getEnv("CLAUDE_MODEL", c.ClaudeModel)
	c.STTBackend = getEnv("STT_BACKEND", c.STTBackend)
	c.OpenAIAPIKey = getEnv("OPENAI_API_KEY", c.OpenAIAPIKey)
	c.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", c.OpenAIBaseURL)
	c.WhisperModelPath = getEnv("WHISPER_MODEL_PATH", c.WhisperModelPath)
	c.TTSBackend = getEnv("TTS_BACKEND", c.TTSBackend)
	c.EspeakPath = getEnv("ESPEAK_PATH", c.EspeakPath)
	c.EspeakVoice = getEnv("ESPEAK_VOICE", c.EspeakVoice)
	c.GTFSFeedURL = getEnv("GTFS_FEED_URL", c.GTFSFeedURL)
	c.CommuteStopID = getEnv("COMMUTE_STOP_ID", c.CommuteStopID)
	c.NtfyTopic = getEnv("NTFY_TOPIC", c.NtfyTopic)
	c.ExpoPushURL = getEnv("EXPO_PUSH_URL", c.ExpoPushURL)
	c.SchedulerEnabled = getEnvBool("SCHEDULER_ENABLED", c.SchedulerEnabled)
	c.SchedulerLockPath = getEnv("SCHEDULER_LOCK_PATH", c.SchedulerLockPath)
	c.KafkaTopic = getEnv("KAFKA_TOPIC", c.KafkaTopic)
	c.AuthSecret = getEnv("AUTH_SECRET", c.AuthSecret)
	c.AdminPassword = getEnv("ADMIN_PASSWORD", c.AdminPassword)
	c.TokenTTLMinutes = getEnvInt("TOKEN_TTL_MINUTES", c.TokenTTLMinutes)
	c.TestMode = os.Getenv("EVERYTHING_TEST_MODE") == "1"

	if v, ok := os.LookupEnv("KAFKA_BROKERS"); ok {
		c.KafkaBrokers = splitList(v)
	}
}

func (c *Config) validate() error {
	switch c.LogFormat {
	case "auto", "json", "console":
	default:
		return fmt.Errorf("log_format: unknown format %q", c.LogFormat)
	}
	switch c.VisionBackend {
	case "ollama", "claude":
	default:
		return fmt.Errorf("vision_backend: unknown backend %q", c.VisionBackend)
	}
	switch c.STTBackend {
	case "none", "openai", "whisper":
	default:
		return fmt.Errorf("stt_backend: unknown backend %q", c.STTBackend)
	}
	switch c.TTSBackend {
	case "none", "espeak":
	default:
		return fmt.Errorf("tts_backend: unknown backend %q", c.TTSBackend)
	}
	if c.TokenTTLMinutes <= 0 {
		return fmt.Errorf("token_ttl_minutes: must be positive")
	}
	return nil
}

// TokenTTL is the lifetime of issued admin tokens.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	b, err := strconv.ParseBool(strings.TrimSpace(val))
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvInt(key string, defaultVal int) int {
	val, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return defaultVal
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
