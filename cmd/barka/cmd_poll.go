package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(pollCmd)
	pollCmd.AddCommand(pollListCmd, pollStartCmd, pollStopCmd)

	pollStartCmd.Flags().Bool("debug", false, "include function call/response debug events")
	pollStartCmd.Flags().Bool("admin", false, "use admin-facing transfer phrasing")
}

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Manage polls on a running daemon",
}

// apiURL joins a path onto the daemon's listen address.
func apiURL(addr, path string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	return addr + path
}

func apiClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

var pollListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active polls",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		resp, err := apiClient().Get(apiURL(cfg.Server.Addr, "/api/polls"))
		if err != nil {
			return fmt.Errorf("is the daemon running? %w", err)
		}
		defer resp.Body.Close()

		var body struct {
			Active int `json:"active"`
			Polls  []struct {
				PollID         string `json:"poll_id"`
				ConversationID string `json:"conversation_id"`
				IntervalMS     int64  `json:"interval_ms"`
			} `json:"polls"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}

		if body.Active == 0 {
			fmt.Println("No active polls.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "POLL ID\tCONVERSATION\tINTERVAL")
		for _, p := range body.Polls {
			fmt.Fprintf(w, "%s\t%s\t%dms\n", p.PollID, p.ConversationID, p.IntervalMS)
		}
		return w.Flush()
	},
}

var pollStartCmd = &cobra.Command{
	Use:   "start <conversation-id>",
	Short: "Start polling a conversation on the daemon",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		debug, _ := cmd.Flags().GetBool("debug")
		admin, _ := cmd.Flags().GetBool("admin")

		payload, err := json.Marshal(map[string]any{
			"conversation_id": args[0],
			"include_debug":   debug,
			"admin_mode":      admin,
		})
		if err != nil {
			return err
		}
		resp, err := apiClient().Post(apiURL(cfg.Server.Addr, "/api/polls"),
			"application/json", bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("is the daemon running? %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return fmt.Errorf("start poll: status %d: %s", resp.StatusCode, string(body))
		}
		var created map[string]string
		if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Poll %s started for conversation %s.\n",
			created["poll_id"], args[0])
		return nil
	},
}

var pollStopCmd = &cobra.Command{
	Use:   "stop <poll-id>",
	Short: "Stop a poll on the daemon",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		req, err := http.NewRequest(http.MethodDelete,
			apiURL(cfg.Server.Addr, "/api/polls/"+args[0]), nil)
		if err != nil {
			return err
		}
		resp, err := apiClient().Do(req)
		if err != nil {
			return fmt.Errorf("is the daemon running? %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return fmt.Errorf("stop poll: status %d: %s", resp.StatusCode, string(body))
		}
		fmt.Fprintf(os.Stdout, "Poll %s stopped.\n", args[0])
		return nil
	},
}
