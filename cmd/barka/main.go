package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/user/barka/internal/config"
	"github.com/user/barka/internal/poll"
	"github.com/user/barka/pkg/provider"
	"github.com/user/barka/pkg/provider/adk"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "barka",
	Short: "Poll agent conversations and consolidate their event streams",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config",
		filepath.Join(os.Getenv("HOME"), ".barka", "config.json"), "config file path")
}

// loadConfig loads the config file, writing defaults on first run. Config
// errors are fatal for every subcommand, so exit here instead of threading
// the error through each RunE.
func loadConfig() *config.Config {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func setupLogging(cfg *config.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// intervalPolicy builds the polling interval policy from config, keeping
// the documented defaults for any unset field.
func intervalPolicy(cfg *config.Config) *poll.IntervalPolicy {
	policy := poll.DefaultIntervalPolicy()
	if cfg.Poll.InitialIntervalMS > 0 {
		policy.Initial = time.Duration(cfg.Poll.InitialIntervalMS) * time.Millisecond
	}
	if cfg.Poll.MaxIntervalMS > 0 {
		policy.Max = time.Duration(cfg.Poll.MaxIntervalMS) * time.Millisecond
	}
	return policy
}

func maxPollDuration(cfg *config.Config) time.Duration {
	if cfg.Poll.MaxDurationMS > 0 {
		return time.Duration(cfg.Poll.MaxDurationMS) * time.Millisecond
	}
	return poll.DefaultMaxDuration
}

// newProviderClient builds the ADK client from config.
func newProviderClient(cfg *config.Config) *adk.Client {
	return adk.New(&provider.Config{
		BaseURL: cfg.Provider.BaseURL,
		APIKey:  cfg.Provider.APIKey,
		Timeout: time.Duration(cfg.Provider.TimeoutSeconds) * time.Second,
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
