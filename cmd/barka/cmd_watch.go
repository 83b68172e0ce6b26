package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/user/barka/internal/config"
	"github.com/user/barka/internal/consolidate"
	"github.com/user/barka/internal/format"
	"github.com/user/barka/internal/poll"
	"github.com/user/barka/internal/telegram"
	"github.com/user/barka/internal/transcript"
	"github.com/user/barka/internal/types"
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Bool("debug", false, "include function call/response debug events")
	watchCmd.Flags().Bool("admin", false, "use admin-facing transfer phrasing")
	watchCmd.Flags().Duration("timeout", 0, "polling budget (default from config)")
	watchCmd.Flags().Bool("save", false, "archive the transcript when polling ends")
	watchCmd.Flags().Bool("notify", false, "send the final message via telegram")
}

var watchCmd = &cobra.Command{
	Use:   "watch <conversation-id>",
	Short: "Poll a conversation and print status updates until it completes",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	debug, _ := cmd.Flags().GetBool("debug")
	admin, _ := cmd.Flags().GetBool("admin")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	save, _ := cmd.Flags().GetBool("save")
	notify, _ := cmd.Flags().GetBool("notify")

	if timeout <= 0 {
		timeout = maxPollDuration(cfg)
	}

	client := newProviderClient(cfg)
	service := poll.NewService(client, int64(cfg.MaxConcurrentFetches))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	service.Start(ctx)
	defer service.Stop()

	conversationID := types.ConversationID(args[0])
	done := make(chan *types.Consolidation, 1)
	failed := make(chan error, 1)

	// Status updates arrive as whole consolidations. Print only the tail
	// that was not printed on a previous cycle.
	printed := 0
	printStatuses := func(c *types.Consolidation) {
		for _, status := range c.StatusUpdates[min(printed, len(c.StatusUpdates)):] {
			fmt.Fprintf(os.Stdout, "  [%s] %s\n", status.Type, status.Message)
		}
		if len(c.StatusUpdates) > printed {
			printed = len(c.StatusUpdates)
		}
		if debug {
			for _, ev := range c.DebugEvents {
				fmt.Fprintf(os.Stdout, "  debug %s %s: %s\n", ev.Kind, ev.Author, ev.Detail)
			}
		}
	}

	_, err := service.StartPolling(poll.SessionOptions{
		ConversationID: conversationID,
		MaxDuration:    timeout,
		Interval:       intervalPolicy(cfg),
		Consolidate: consolidate.Options{
			IncludeDebugInfo: debug,
			AdminMode:        admin,
		},
		Callbacks: poll.Callbacks{
			OnStatusUpdate: printStatuses,
			OnComplete: func(c *types.Consolidation) {
				done <- c
			},
			OnError: func(err error) {
				fmt.Fprintf(os.Stderr, "  fetch error: %v\n", err)
			},
			OnTimeout: func() {
				failed <- fmt.Errorf("polling timed out after %s", timeout)
			},
		},
	})
	if err != nil {
		return fmt.Errorf("start polling: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Watching conversation %s (budget %s, Ctrl-C to stop)...\n",
		conversationID, timeout)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case c := <-done:
		printStatuses(c)
		if c.FinalMessage != nil {
			fmt.Fprintf(os.Stdout, "\n%s (%s):\n%s\n",
				c.FinalMessage.Author, c.FinalMessage.TimestampISO, c.FinalMessage.Content)
		}
		if save {
			if err := archiveTranscript(ctx, cfg, conversationID, debug); err != nil {
				return err
			}
		}
		if notify && c.FinalMessage != nil {
			if err := notifyFinal(cfg, conversationID, c.FinalMessage.Content); err != nil {
				return err
			}
		}
		return nil
	case err := <-failed:
		return err
	case sig := <-sigChan:
		fmt.Fprintf(os.Stdout, "\nStopping (%s).\n", sig)
		service.StopAll()
		return nil
	}
}

func archiveTranscript(ctx context.Context, cfg *config.Config, id types.ConversationID, debug bool) error {
	store := transcript.NewStore(cfg.DataDir)
	opts := format.DefaultOptions()
	opts.IncludeDebugInfo = debug
	opts.IncludeSystemMessages = true

	syncCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	messages, err := transcript.Sync(syncCtx, newProviderClient(cfg), store, id, opts)
	if err != nil {
		return fmt.Errorf("archive transcript: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Saved %d messages to %s.\n",
		len(messages), filepath.Join(cfg.DataDir, "transcripts", string(id)))
	return nil
}

func notifyFinal(cfg *config.Config, id types.ConversationID, content string) error {
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token not configured")
	}
	notifier, err := telegram.New(cfg.Telegram.Token, cfg.Telegram.ChatID)
	if err != nil {
		return fmt.Errorf("create telegram notifier: %w", err)
	}
	if err := notifier.Send(fmt.Sprintf("Conversation %s finished:\n\n%s", id, content)); err != nil {
		return fmt.Errorf("send telegram notification: %w", err)
	}
	return nil
}
