// Package adk implements provider.Provider against the ADK session HTTP API.
package adk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/user/barka/internal/types"
	"github.com/user/barka/pkg/provider"
)

const defaultTimeout = 15 * time.Second

// Client fetches session snapshots from the ADK session resource.
type Client struct {
	config     *provider.Config
	httpClient *http.Client
}

// New creates a new ADK session client with the given configuration.
func New(config *provider.Config) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchSession performs one GET against the conversation's session resource
// and decodes the {conversation, session, messages} envelope.
func (c *Client) FetchSession(ctx context.Context, id types.ConversationID) (*types.SessionSnapshot, error) {
	if id == "" {
		return nil, fmt.Errorf("conversation id is required")
	}

	endpoint := fmt.Sprintf("%s/api/agent/conversations/%s/session",
		c.config.BaseURL, url.PathEscape(string(id)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch session: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("conversation %s: %w", id, provider.ErrNoSession)
	case resp.StatusCode == http.StatusServiceUnavailable:
		return nil, fmt.Errorf("conversation %s: %w", id, provider.ErrUnavailable)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch session: status %d: %s", resp.StatusCode, string(body))
	}

	var snapshot types.SessionSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("decode session response: %w", err)
	}

	return &snapshot, nil
}
