package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/user/barka/internal/format"
	"github.com/user/barka/internal/transcript"
	"github.com/user/barka/internal/types"
)

func init() {
	rootCmd.AddCommand(transcriptCmd)

	transcriptCmd.Flags().String("filter", "all", "message filter: all, text_only, function_calls, transfers, errors")
	transcriptCmd.Flags().Bool("debug", false, "include debug-only messages")
	transcriptCmd.Flags().Bool("system", false, "include system messages")
	transcriptCmd.Flags().String("order", "asc", "sort order: asc or desc")
	transcriptCmd.Flags().Bool("stats", false, "print token statistics")
	transcriptCmd.Flags().Bool("markdown", false, "render the transcript as markdown")
	transcriptCmd.Flags().Bool("save", false, "archive the transcript to the data dir")
}

var transcriptCmd = &cobra.Command{
	Use:   "transcript <conversation-id>",
	Short: "Fetch a conversation and print its formatted messages",
	Args:  cobra.ExactArgs(1),
	RunE:  runTranscript,
}

func runTranscript(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	filterStr, _ := cmd.Flags().GetString("filter")
	debug, _ := cmd.Flags().GetBool("debug")
	system, _ := cmd.Flags().GetBool("system")
	order, _ := cmd.Flags().GetString("order")
	stats, _ := cmd.Flags().GetBool("stats")
	markdown, _ := cmd.Flags().GetBool("markdown")
	save, _ := cmd.Flags().GetBool("save")

	filter, err := format.ParseFilter(filterStr)
	if err != nil {
		return err
	}
	if order != string(format.SortAsc) && order != string(format.SortDesc) {
		return fmt.Errorf("unknown sort order: %s", order)
	}
	opts := format.Options{
		Filter:                filter,
		IncludeDebugInfo:      debug,
		IncludeSystemMessages: system,
		SortOrder:             format.SortOrder(order),
	}

	conversationID := types.ConversationID(args[0])
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := newProviderClient(cfg)
	snapshot, err := client.FetchSession(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("fetch session: %w", err)
	}
	messages := format.Format(snapshot, opts)

	if save {
		store := transcript.NewStore(cfg.DataDir)
		if err := store.Save(ctx, conversationID, messages); err != nil {
			return fmt.Errorf("save transcript: %w", err)
		}
	}

	if markdown {
		rendered, err := transcript.ExportMarkdown(conversationID, messages)
		if err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		fmt.Fprint(os.Stdout, rendered)
	} else {
		if len(messages) == 0 {
			fmt.Println("No messages.")
		} else {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tAUTHOR\tTYPE\tCONTENT")
			for _, m := range messages {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					m.TimestampISO,
					m.Author,
					m.Type,
					truncate(m.Content, 80),
				)
			}
			if err := w.Flush(); err != nil {
				return err
			}
		}
	}

	if stats {
		counter, err := transcript.NewCounter(cfg.Transcript.TokenizerModel)
		if err != nil {
			return fmt.Errorf("load tokenizer: %w", err)
		}
		measured := counter.Measure(messages, nil)
		fmt.Fprintf(os.Stdout, "\nMessages: %d (%d visible), tokens: %d\n",
			measured.Messages, measured.VisibleMessages, measured.TotalTokens)
	}
	return nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
