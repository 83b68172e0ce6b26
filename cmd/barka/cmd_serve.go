package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/user/barka/internal/delivery"
	"github.com/user/barka/internal/format"
	"github.com/user/barka/internal/httpapi"
	"github.com/user/barka/internal/poll"
	"github.com/user/barka/internal/scheduler"
	"github.com/user/barka/internal/state"
	"github.com/user/barka/internal/telegram"
	"github.com/user/barka/internal/transcript"
	"github.com/user/barka/internal/types"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the barka daemon",
	RunE:  runServe,
}

func writePIDFile(dataDir string) (string, error) {
	pidPath := filepath.Join(dataDir, "barka.pid")
	pid := os.Getpid()
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(pid)+"\n"), 0644); err != nil {
		return "", fmt.Errorf("write PID file: %w", err)
	}
	return pidPath, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	pidPath, err := writePIDFile(cfg.DataDir)
	if err != nil {
		return err
	}
	defer os.Remove(pidPath)

	client := newProviderClient(cfg)
	store := transcript.NewStore(cfg.DataDir)

	service := poll.NewService(client, int64(cfg.MaxConcurrentFetches))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	service.Start(ctx)
	defer service.Stop()

	slog.Info("barka started",
		"data_dir", cfg.DataDir,
		"log_level", cfg.LogLevel,
		"max_concurrent_fetches", cfg.MaxConcurrentFetches,
		"provider_url", cfg.Provider.BaseURL,
		"pid_file", pidPath,
	)

	// Delivery registry
	deliveryReg := delivery.NewRegistry()
	deliveryReg.Register("console:", func(conversationKey, message string) error {
		fmt.Fprintf(os.Stdout, "[%s] %s\n", conversationKey, message)
		return nil
	})

	if cfg.Telegram.Token != "" {
		notifier, err := telegram.New(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			return fmt.Errorf("create telegram notifier: %w", err)
		}
		deliveryReg.Register("telegram:", notifier.Handler())
		slog.Info("telegram delivery registered")
	} else {
		slog.Warn("telegram delivery disabled (no token)")
	}

	// Helper: fetch a conversation, archive it, and return its latest
	// visible message.
	checkConversation := func(id types.ConversationID) (string, error) {
		syncCtx, cancelSync := context.WithTimeout(ctx, 30*time.Second)
		defer cancelSync()
		opts := format.DefaultOptions()
		opts.IncludeSystemMessages = true
		messages, err := transcript.Sync(syncCtx, client, store, id, opts)
		if err != nil {
			return "", err
		}
		for i := len(messages) - 1; i >= 0; i-- {
			if messages[i].IsVisible && messages[i].AuthorType != types.AuthorUser {
				return messages[i].Content, nil
			}
		}
		return "", nil
	}

	// Watch-task scheduler
	watches := state.NewWatchStore(filepath.Join(cfg.DataDir, "watches.json"))
	sched := scheduler.New(watches, func(task *state.WatchTask) {
		latest, err := checkConversation(task.ConversationID)
		if err != nil {
			slog.Error("watch task failed", "task", task.Name, "error", err)
			return
		}
		if latest == "" {
			return // nothing to report yet
		}
		if err := deliveryReg.Deliver(string(task.DeliverKey), latest); err != nil {
			slog.Error("watch delivery failed", "task", task.Name, "error", err)
		}
	})
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()
	slog.Info("scheduler started")

	// HTTP API
	apiSrv := httpapi.NewServer(service, client, store, func(id types.ConversationID, result *types.Consolidation) {
		if result.FinalMessage == nil {
			return
		}
		key := "console:" + string(id)
		if err := deliveryReg.Deliver(key, result.FinalMessage.Content); err != nil {
			slog.Error("completion delivery failed", "conversation_id", id, "error", err)
		}
	})
	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: apiSrv,
	}
	go func() {
		slog.Info("http api started", "listen", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("http api error", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		httpServer.Close()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for {
		sig := <-sigChan
		if sig == syscall.SIGHUP {
			slog.Info("received SIGHUP, restarting")
			execPath, err := os.Executable()
			if err != nil {
				slog.Error("failed to get executable path", "error", err)
				continue
			}
			os.Remove(pidPath)
			if err := syscall.Exec(execPath, os.Args, os.Environ()); err != nil {
				slog.Error("failed to re-exec", "error", err)
				if _, writeErr := writePIDFile(cfg.DataDir); writeErr != nil {
					slog.Error("failed to re-write PID file", "error", writeErr)
				}
				continue
			}
		}
		slog.Info("shutting down", "signal", sig)
		return nil
	}
}
