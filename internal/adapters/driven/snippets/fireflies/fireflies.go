// Package fireflies provides a transcript snippet provider backed by
// the Fireflies.ai GraphQL API. It surfaces meeting summaries for
// calls the prospect attended.
package fireflies

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
	"github.com/cadence-hq/cadence-cli/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.SnippetProvider = (*Provider)(nil)

// Default configuration values.
const (
	DefaultBaseURL        = "https://api.fireflies.ai/graphql"
	DefaultTimeout        = 20 * time.Second
	DefaultMaxTranscripts = 5
)

// transcriptsQuery fetches summaries for meetings the prospect
// attended, newest first.
const transcriptsQuery = `query Transcripts($email: String!, $limit: Int!) {
  transcripts(participant_email: $email, limit: $limit) {
    title
    dateString
    summary {
      overview
      action_items
    }
  }
}`

// Config holds configuration for the Fireflies provider.
type Config struct {
	// APIKey is the Fireflies API key (required).
	APIKey string

	// BaseURL is the GraphQL endpoint (default: https://api.fireflies.ai/graphql).
	BaseURL string

	// Timeout is the request timeout (default: 20s).
	Timeout time.Duration

	// MaxTranscripts caps meetings fetched per prospect (default: 5).
	MaxTranscripts int
}

// Provider fetches meeting summaries from Fireflies.
type Provider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	limit   int
}

// NewProvider creates a new Fireflies snippet provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("fireflies: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxTranscripts == 0 {
		cfg.MaxTranscripts = DefaultMaxTranscripts
	}

	return &Provider{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		limit:   cfg.MaxTranscripts,
	}, nil
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlResponse struct {
	Data struct {
		Transcripts []struct {
			Title      string `json:"title"`
			DateString string `json:"dateString"`
			Summary    struct {
				Overview    string   `json:"overview"`
				ActionItems []string `json:"action_items"`
			} `json:"summary"`
		} `json:"transcripts"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Source returns the transcript source tag.
func (p *Provider) Source() domain.SnippetSource {
	return domain.SourceTranscript
}

// Search returns meeting summaries for calls the prospect attended.
// Prospects without an email address cannot be matched to meetings.
func (p *Provider) Search(ctx context.Context, scope driven.SnippetScope) ([]domain.SnippetRecord, error) {
	if scope.Email == "" {
		return nil, nil
	}

	reqBody, err := json.Marshal(graphqlRequest{
		Query: transcriptsQuery,
		Variables: map[string]any{
			"email": scope.Email,
			"limit": p.limit,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fireflies: %w", domain.ErrTransient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: fireflies error (status %d)", domain.ErrTransient, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fireflies error (status %d)", resp.StatusCode)
	}

	var gqlResp graphqlResponse
	if err := json.Unmarshal(body, &gqlResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(gqlResp.Errors) > 0 {
		return nil, fmt.Errorf("fireflies error: %s", gqlResp.Errors[0].Message)
	}

	snippets := make([]domain.SnippetRecord, 0, len(gqlResp.Data.Transcripts))
	for _, t := range gqlResp.Data.Transcripts {
		text := buildSummaryText(t.Title, t.Summary.Overview, t.Summary.ActionItems)
		if text == "" {
			continue
		}
		snippet := domain.SnippetRecord{
			Text:   text,
			Source: domain.SourceTranscript,
		}
		if parsed, err := time.Parse(time.RFC3339, t.DateString); err == nil {
			snippet.CapturedAt = parsed
		}
		snippets = append(snippets, snippet)
	}
	return snippets, nil
}

// buildSummaryText folds a transcript's title, overview and action
// items into one snippet. Empty summaries (e.g., a meeting still being
// processed) yield an empty string.
func buildSummaryText(title, overview string, actionItems []string) string {
	var b strings.Builder
	if overview = strings.TrimSpace(overview); overview != "" {
		if title != "" {
			b.WriteString(title + ": ")
		}
		b.WriteString(overview)
	}
	items := make([]string, 0, len(actionItems))
	for _, item := range actionItems {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) > 0 {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString("Action items: " + strings.Join(items, "; "))
	}
	return b.String()
}

// Close releases resources.
func (p *Provider) Close() error {
	return nil
}
