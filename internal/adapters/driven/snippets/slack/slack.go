// Package slack provides a chat snippet provider backed by the Slack
// search API. It surfaces what the team has said about a prospect in
// the configured sales channels.
package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
	"github.com/cadence-hq/cadence-cli/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.SnippetProvider = (*Provider)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://slack.com/api"
	DefaultTimeout    = 15 * time.Second
	DefaultMaxResults = 20
)

// Config holds configuration for the Slack snippet provider.
type Config struct {
	// Token is a user token with search:read scope (required).
	// Bot tokens cannot call search.messages.
	Token string

	// BaseURL is the Slack API base URL (default: https://slack.com/api).
	BaseURL string

	// Timeout is the request timeout (default: 15s).
	Timeout time.Duration

	// MaxResults caps messages returned per search (default: 20).
	MaxResults int
}

// Provider searches Slack messages mentioning a prospect.
type Provider struct {
	client     *http.Client
	baseURL    string
	token      string
	maxResults int
}

// NewProvider creates a new Slack snippet provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("slack: token is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxResults == 0 {
		cfg.MaxResults = DefaultMaxResults
	}

	return &Provider{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		token:      cfg.Token,
		maxResults: cfg.MaxResults,
	}, nil
}

// searchResponse is the search.messages payload shape.
type searchResponse struct {
	OK       bool   `json:"ok"`
	Error    string `json:"error"`
	Messages struct {
		Matches []struct {
			Text     string `json:"text"`
			TS       string `json:"ts"`
			Username string `json:"username"`
			Channel  struct {
				Name string `json:"name"`
			} `json:"channel"`
		} `json:"matches"`
	} `json:"messages"`
}

// Source returns the chat source tag.
func (p *Provider) Source() domain.SnippetSource {
	return domain.SourceChat
}

// Search returns recent team messages mentioning the prospect's company
// in the scoped channels, newest first.
func (p *Provider) Search(ctx context.Context, scope driven.SnippetScope) ([]domain.SnippetRecord, error) {
	query := buildQuery(scope)
	if query == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("count", strconv.Itoa(p.maxResults))
	params.Set("sort", "timestamp")
	params.Set("sort_dir", "desc")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/search.messages?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: slack: %w", domain.ErrTransient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: slack error (status %d)", domain.ErrTransient, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("slack error (status %d)", resp.StatusCode)
	}

	var searchResp searchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !searchResp.OK {
		if searchResp.Error == "ratelimited" {
			return nil, fmt.Errorf("%w: slack: rate limited", domain.ErrTransient)
		}
		return nil, fmt.Errorf("slack error: %s", searchResp.Error)
	}

	snippets := make([]domain.SnippetRecord, 0, len(searchResp.Messages.Matches))
	for _, m := range searchResp.Messages.Matches {
		text := strings.TrimSpace(m.Text)
		if text == "" {
			continue
		}
		if m.Channel.Name != "" && m.Username != "" {
			text = fmt.Sprintf("#%s @%s: %s", m.Channel.Name, m.Username, text)
		}
		snippets = append(snippets, domain.SnippetRecord{
			Text:       text,
			Source:     domain.SourceChat,
			CapturedAt: parseSlackTS(m.TS),
		})
	}
	return snippets, nil
}

// buildQuery assembles a Slack search query: a quoted company term OR'd
// with the prospect's email, restricted to the scoped channels. Slack
// treats multiple in: operators as a union.
func buildQuery(scope driven.SnippetScope) string {
	var terms []string
	if scope.Company != "" {
		terms = append(terms, strconv.Quote(scope.Company))
	} else if scope.ProspectName != "" {
		terms = append(terms, strconv.Quote(scope.ProspectName))
	}
	if len(terms) == 0 {
		return ""
	}

	parts := terms
	for _, ch := range scope.Channels {
		parts = append(parts, "in:#"+strings.TrimPrefix(ch, "#"))
	}
	return strings.Join(parts, " ")
}

// parseSlackTS converts a Slack "seconds.sequence" timestamp. Returns
// the zero time when the field is malformed.
func parseSlackTS(ts string) time.Time {
	secStr, _, _ := strings.Cut(ts, ".")
	sec, err := strconv.ParseInt(secStr, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

// Close releases resources.
func (p *Provider) Close() error {
	return nil
}
