package slack

import (
	"context"
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

	provider, err := NewProvider(Config{Token: "xoxp-test", BaseURL: server.URL})
	require.NoError(t, err)
	return provider
}

func TestNewProvider(t *testing.T) {
	t.Run("Requires a token", func(t *testing.T) {
		_, err := NewProvider(Config{})
		assert.Error(t, err)
	})
}

func TestSearch(t *testing.T) {
	t.Run("Returns channel-tagged snippets", func(t *testing.T) {
		var gotQuery string
		provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query().Get("query")
			_, _ = w.Write([]byte(`{
				"ok": true,
				"messages": {
					"matches": [
						{"text": "Acme asked for a pilot next month", "ts": "1756000000.000100", "username": "niko", "channel": {"name": "sales"}},
						{"text": "   ", "ts": "1756000001.000100", "username": "niko", "channel": {"name": "sales"}}
					]
				}
			}`))
		})

		scope := driven.SnippetScope{Company: "Acme", Channels: []string{"sales", "#marketing"}}
		snippets, err := provider.Search(context.Background(), scope)
		require.NoError(t, err)

		assert.Equal(t, `"Acme" in:#sales in:#marketing`, gotQuery)
		require.Len(t, snippets, 1, "blank messages are dropped")
		assert.Equal(t, "#sales @niko: Acme asked for a pilot next month", snippets[0].Text)
		assert.Equal(t, domain.SourceChat, snippets[0].Source)
		assert.Equal(t, time.Unix(1756000000, 0).UTC(), snippets[0].CapturedAt)
	})

	t.Run("Empty scope searches nothing", func(t *testing.T) {
		provider := newTestProvider(t, func(_ http.ResponseWriter, _ *http.Request) {
			t.Fatal("no request expected")
		})

		snippets, err := provider.Search(context.Background(), driven.SnippetScope{})
		require.NoError(t, err)
		assert.Empty(t, snippets)
	})

	t.Run("Rate limiting is transient", func(t *testing.T) {
		provider := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"ok": false, "error": "ratelimited"}`))
		})

		_, err := provider.Search(context.Background(), driven.SnippetScope{Company: "Acme"})
		require.Error(t, err)
		assert.True(t, domain.IsTransient(err))
	})

	t.Run("API errors are not transient", func(t *testing.T) {
		provider := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"ok": false, "error": "missing_scope"}`))
		})

		_, err := provider.Search(context.Background(), driven.SnippetScope{Company: "Acme"})
		require.Error(t, err)
		assert.False(t, domain.IsTransient(err))
	})
}
