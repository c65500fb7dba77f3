package config

import (
	"log/slog"
	"os"
)

type AppConfig struct {
	ProxyURL      string // optional SOCKS5 proxy for Reddit requests
	UserAgent     string
	OpenAIBaseURL string
	OpenAIModel   string
	LogLevel      slog.Level
}

var Config AppConfig

func LoadConfig() {
	cfg := AppConfig{}

	cfg.ProxyURL = loadOptional("PROXY_URL", "")
	cfg.UserAgent = loadOptional("RILF_USER_AGENT", "")
	cfg.OpenAIBaseURL = loadOptional("OPENAI_BASE_URL", "")
	cfg.OpenAIModel = loadOptional("OPENAI_MODEL", "")

	lvlString := loadOptional("LOG_LEVEL", "INFO")
	var err error
	cfg.LogLevel, err = parseLogLevel(lvlString)
	if err != nil {
		slog.Error("Invalid LOG_LEVEL", "error", err)
		cfg.LogLevel = slog.LevelInfo
	}

	Config = cfg
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	var err = level.UnmarshalText([]byte(s))
	return level, err
}

func loadOptional(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
