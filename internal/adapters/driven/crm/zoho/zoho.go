// Package zoho provides a CRM client adapter backed by the Zoho CRM v8 API.
//
// Zoho payloads are loosely typed (numbers arrive as strings, absent
// timestamps as null), so this package converts them into strict domain
// records at the boundary and never lets the raw shapes leak inward.
package zoho

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

	"golang.org/x/oauth2"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
	"github.com/cadence-hq/cadence-cli/internal/core/ports/driven"
)

// Ensure CRMClient implements the interface.
var _ driven.CRMClient = (*CRMClient)(nil)

// Default configuration values.
const (
	DefaultAccountsURL = "https://accounts.zoho.com"
	DefaultAPIBaseURL  = "https://www.zohoapis.com"
	DefaultTimeout     = 30 * time.Second

	// pageSize is the Zoho maximum records per page.
	pageSize = 200
)

// Config holds configuration for the Zoho CRM client.
type Config struct {
	// ClientID is the OAuth client ID (required).
	ClientID string

	// ClientSecret is the OAuth client secret (required).
	ClientSecret string

	// RefreshToken is the long-lived grant used to mint access
	// tokens (required). Zoho access tokens expire hourly; the
	// oauth2 token source refreshes transparently.
	RefreshToken string

	// AccountsURL is the Zoho accounts server for the data centre
	// (default: https://accounts.zoho.com).
	AccountsURL string

	// APIBaseURL is the Zoho API server for the data centre
	// (default: https://www.zohoapis.com).
	APIBaseURL string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration
}

// CRMClient reads prospects, signals and notes from Zoho CRM and
// records generated drafts back as notes.
type CRMClient struct {
	client  *http.Client
	baseURL string
}

// NewCRMClient creates a new Zoho CRM client.
func NewCRMClient(cfg Config) (*CRMClient, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		return nil, fmt.Errorf("zoho: client ID, client secret and refresh token are required")
	}
	if cfg.AccountsURL == "" {
		cfg.AccountsURL = DefaultAccountsURL
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL: strings.TrimSuffix(cfg.AccountsURL, "/") + "/oauth/v2/token",
		},
	}

	// The refresh token never expires in Zoho; seed the token source
	// with it and let oauth2 handle access-token renewal.
	ts := oauthCfg.TokenSource(context.Background(), &oauth2.Token{
		RefreshToken: cfg.RefreshToken,
	})

	client := oauth2.NewClient(context.Background(), ts)
	client.Timeout = cfg.Timeout

	return &CRMClient{
		client:  client,
		baseURL: strings.TrimSuffix(cfg.APIBaseURL, "/") + "/crm/v8",
	}, nil
}

// newClientWithHTTP builds a client around an existing http.Client.
// Used by tests to point at a stub server without real credentials.
func newClientWithHTTP(client *http.Client, baseURL string) *CRMClient {
	return &CRMClient{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/") + "/crm/v8",
	}
}

// get performs an authenticated GET and decodes the response into out.
// A nil out with a 204 (Zoho's empty result set) is not an error.
func (c *CRMClient) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: zoho: %w", domain.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if err := checkStatus(resp.StatusCode, body); err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// post performs an authenticated POST with a JSON body.
func (c *CRMClient) post(ctx context.Context, path string, payload any, out any) error {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(string(jsonBody)))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: zoho: %w", domain.ErrTransient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if err := checkStatus(resp.StatusCode, body); err != nil {
		return err
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// checkStatus classifies an API status code. Rate limiting and server
// errors are transient; everything else non-2xx is permanent.
func checkStatus(status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
		return fmt.Errorf("%w: zoho error (status %d): %s", domain.ErrTransient, status, truncate(body, 200))
	default:
		return fmt.Errorf("zoho error (status %d): %s", status, truncate(body, 200))
	}
}

func truncate(b []byte, n int) string {
	s := string(b)
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}

// Close releases resources.
func (c *CRMClient) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// flexInt decodes a Zoho numeric field that may arrive as a JSON
// number, a quoted string, or null.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// Zoho employee ranges look like "51-200"; take the lower bound.
		if lower, _, found := strings.Cut(s, "-"); found {
			if n, err = strconv.Atoi(strings.TrimSpace(lower)); err == nil {
				*f = flexInt(n)
				return nil
			}
		}
		return fmt.Errorf("zoho: invalid numeric field %q", s)
	}
	*f = flexInt(n)
	return nil
}

// flexTime decodes a Zoho timestamp, which is RFC 3339 with a zone
// offset, or null when unset.
type flexTime struct {
	t *time.Time
}

func (f *flexTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		f.t = nil
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("zoho: invalid timestamp %q", s)
	}
	f.t = &t
	return nil
}
