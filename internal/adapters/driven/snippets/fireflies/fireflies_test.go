package fireflies

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
	"github.com/cadence-hq/cadence-cli/internal/core/ports/driven"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider, err := NewProvider(Config{APIKey: "ff-test", BaseURL: server.URL})
	require.NoError(t, err)
	return provider
}

func TestSearch(t *testing.T) {
	t.Run("Returns meeting summaries for the prospect's email", func(t *testing.T) {
		var gotVars map[string]any
		provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			gotVars, _ = req["variables"].(map[string]any)
			_, _ = w.Write([]byte(`{
				"data": {
					"transcripts": [
						{
							"title": "Acme discovery call",
							"dateString": "2026-08-18T15:00:00Z",
							"summary": {
								"overview": "Walked through the onboarding pain points.",
								"action_items": ["Send SSO pricing", " "]
							}
						},
						{
							"title": "Processing",
							"dateString": "2026-08-19T15:00:00Z",
							"summary": {"overview": "", "action_items": []}
						}
					]
				}
			}`))
		})

		scope := driven.SnippetScope{Email: "ada@acme.test"}
		snippets, err := provider.Search(context.Background(), scope)
		require.NoError(t, err)

		assert.Equal(t, "ada@acme.test", gotVars["email"])
		require.Len(t, snippets, 1, "empty summaries are dropped")
		assert.Equal(t, "Acme discovery call: Walked through the onboarding pain points. Action items: Send SSO pricing", snippets[0].Text)
		assert.Equal(t, domain.SourceTranscript, snippets[0].Source)
		assert.Equal(t, time.Date(2026, 8, 18, 15, 0, 0, 0, time.UTC), snippets[0].CapturedAt)
	})

	t.Run("No email means no lookup", func(t *testing.T) {
		provider := newTestProvider(t, func(_ http.ResponseWriter, _ *http.Request) {
			t.Fatal("no request expected")
		})

		snippets, err := provider.Search(context.Background(), driven.SnippetScope{Company: "Acme"})
		require.NoError(t, err)
		assert.Empty(t, snippets)
	})

	t.Run("Server errors are transient", func(t *testing.T) {
		provider := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := provider.Search(context.Background(), driven.SnippetScope{Email: "ada@acme.test"})
		require.Error(t, err)
		assert.True(t, domain.IsTransient(err))
	})

	t.Run("GraphQL errors are not transient", func(t *testing.T) {
		provider := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"errors": [{"message": "invalid api key"}]}`))
		})

		_, err := provider.Search(context.Background(), driven.SnippetScope{Email: "ada@acme.test"})
		require.Error(t, err)
		assert.False(t, domain.IsTransient(err))
	})
}
