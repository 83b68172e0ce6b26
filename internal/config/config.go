package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

type Config struct {
	DataDir              string `json:"data_dir"`
	LogLevel             string `json:"log_level"`
	MaxConcurrentFetches int    `json:"max_concurrent_fetches"`
	Provider             struct {
		BaseURL        string `json:"base_url"`
		APIKey         string `json:"api_key"`
		TimeoutSeconds int    `json:"timeout_seconds"`
	} `json:"provider"`
	Poll struct {
		InitialIntervalMS int `json:"initial_interval_ms"`
		MaxIntervalMS     int `json:"max_interval_ms"`
		MaxDurationMS     int `json:"max_duration_ms"`
	} `json:"poll"`
	Transcript struct {
		TokenizerModel string `json:"tokenizer_model"`
	} `json:"transcript"`
	Telegram struct {
		Token  string `json:"token"`
		ChatID int64  `json:"chat_id"`
	} `json:"telegram"`
	Server struct {
		Addr string `json:"addr"`
	} `json:"server"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		DataDir:              filepath.Join(os.Getenv("HOME"), ".barka"),
		LogLevel:             "info",
		MaxConcurrentFetches: 4,
	}
	cfg.Provider.BaseURL = "http://localhost:5566"
	cfg.Provider.TimeoutSeconds = 15
	cfg.Poll.InitialIntervalMS = 1000
	cfg.Poll.MaxIntervalMS = 3000
	cfg.Poll.MaxDurationMS = 100000
	cfg.Transcript.TokenizerModel = "gpt-4"
	cfg.Server.Addr = ":8335"

	// Load from file if exists, otherwise write defaults
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if os.IsNotExist(err) {
		if err := writeDefaults(path, cfg); err != nil {
			return nil, err
		}
	}

	// Override from env (highest precedence)
	if baseURL := os.Getenv("BARKA_PROVIDER_URL"); baseURL != "" {
		cfg.Provider.BaseURL = baseURL
	}
	if apiKey := os.Getenv("BARKA_PROVIDER_API_KEY"); apiKey != "" {
		cfg.Provider.APIKey = apiKey
	}
	if tgToken := os.Getenv("TELEGRAM_BOT_TOKEN"); tgToken != "" {
		cfg.Telegram.Token = tgToken
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		if id, err := strconv.ParseInt(chatID, 10, 64); err == nil {
			cfg.Telegram.ChatID = id
		}
	}

	return cfg, nil
}

func writeDefaults(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	data = append(data, '\n')
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename default config: %w", err)
	}
	return nil
}
