// Command cadence is the outreach decision and context engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"github.com/cadence-hq/cadence-cli/internal/adapters/driven/config/file"
	"github.com/cadence-hq/cadence-cli/internal/adapters/driven/crm/zoho"
	ollamaembed "github.com/cadence-hq/cadence-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/cadence-hq/cadence-cli/internal/adapters/driven/embedding/openai"
	"github.com/cadence-hq/cadence-cli/internal/adapters/driven/generation/anthropic"
	"github.com/cadence-hq/cadence-cli/internal/adapters/driven/snippets/fireflies"
	"github.com/cadence-hq/cadence-cli/internal/adapters/driven/snippets/slack"
	"github.com/cadence-hq/cadence-cli/internal/adapters/driven/storage/sqlite"
	"github.com/cadence-hq/cadence-cli/internal/adapters/driving/cli"
	"github.com/cadence-hq/cadence-cli/internal/connectors/corpus"
	"github.com/cadence-hq/cadence-cli/internal/core/ports/driven"
	"github.com/cadence-hq/cadence-cli/internal/core/services"
	"github.com/cadence-hq/cadence-cli/internal/logger"
	"github.com/cadence-hq/cadence-cli/internal/normalisers"
	"github.com/cadence-hq/cadence-cli/internal/normalisers/markdown"
	"github.com/cadence-hq/cadence-cli/internal/normalisers/plaintext"
	"github.com/cadence-hq/cadence-cli/internal/postprocessors"
	"github.com/cadence-hq/cadence-cli/internal/postprocessors/chunker"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Local overrides for API keys during development.
	_ = godotenv.Load()

	cadenceDir, err := dataDir()
	if err != nil {
		return err
	}

	configStore, err := file.NewConfigStore(cadenceDir)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}

	settings := file.LoadSettings(configStore)
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid configuration (%s): %w", configStore.Path(), err)
	}

	store, err := sqlite.NewStore(filepath.Join(cadenceDir, "data"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	embeddingSvc, err := buildEmbedding(configStore)
	if err != nil {
		return err
	}

	corpusRoot := configStore.GetString("corpus.root")
	if corpusRoot == "" {
		corpusRoot = filepath.Join(cadenceDir, "corpus")
	}
	corpusConn := corpus.New(corpusRoot, configStore.GetStringSlice("corpus.ignore"))

	registry := normalisers.NewRegistry()
	registry.Register(markdown.New())
	registry.Register(plaintext.New())

	var chunkOpts []chunker.Option
	if size := configStore.GetInt("corpus.chunk_size"); size > 0 {
		chunkOpts = append(chunkOpts, chunker.WithChunkSize(size))
	}
	if overlap := configStore.GetInt("corpus.chunk_overlap"); overlap > 0 {
		chunkOpts = append(chunkOpts, chunker.WithOverlap(overlap))
	}
	pipeline := postprocessors.NewPipeline(chunker.New(chunkOpts...))

	indexer := services.NewIndexer(
		corpusConn,
		registry,
		pipeline,
		store.DocumentStore(),
		store.IndexStateStore(),
		embeddingSvc,
	)
	retriever := services.NewRetriever(embeddingSvc, store.VectorSearcher(), store.DocumentStore())

	crmClient, err := buildCRM()
	if err != nil {
		return err
	}
	generation, err := buildGeneration()
	if err != nil {
		return err
	}
	providers, err := buildProviders()
	if err != nil {
		return err
	}

	svcs := cli.Services{
		Indexer:   indexer,
		Retriever: retriever,
		Drafts:    store.DraftStore(),
		Corpus:    corpusConn,
	}
	if crmClient != nil {
		defer crmClient.Close()
		limiter := rate.NewLimiter(callRate(configStore), 1)
		svcs.Outreach = services.NewOrchestrator(
			crmClient,
			retriever,
			generation,
			store.DraftStore(),
			providers,
			settings,
			limiter,
		)
	} else {
		logger.Debug("CRM not configured; run and prospects commands are unavailable")
	}

	cli.SetVersion(version)
	cli.SetServices(svcs)
	return cli.Execute()
}

// dataDir resolves ~/.cadence, honouring the CADENCE_HOME override.
func dataDir() (string, error) {
	if dir := os.Getenv("CADENCE_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".cadence"), nil
}

// buildEmbedding prefers OpenAI when a key is present, falling back to
// a local Ollama instance.
func buildEmbedding(cfg driven.ConfigStore) (driven.EmbeddingService, error) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey: key,
			Model:  cfg.GetString("embedding.model"),
		})
	}
	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL: os.Getenv("OLLAMA_BASE_URL"),
		Model:   cfg.GetString("embedding.model"),
	}), nil
}

func buildCRM() (driven.CRMClient, error) {
	clientID := os.Getenv("ZOHO_CLIENT_ID")
	if clientID == "" {
		return nil, nil //nolint:nilnil // optional collaborator
	}
	client, err := zoho.NewCRMClient(zoho.Config{
		ClientID:     clientID,
		ClientSecret: os.Getenv("ZOHO_CLIENT_SECRET"),
		RefreshToken: os.Getenv("ZOHO_REFRESH_TOKEN"),
		AccountsURL:  os.Getenv("ZOHO_ACCOUNTS_URL"),
		APIBaseURL:   os.Getenv("ZOHO_API_URL"),
	})
	if err != nil {
		return nil, fmt.Errorf("configure Zoho: %w", err)
	}
	return client, nil
}

func buildGeneration() (driven.GenerationService, error) {
	key := os.Getenv("ANTHROPIC_API_KEY")
	if key == "" {
		return nil, nil //nolint:nilnil // optional collaborator
	}
	svc, err := anthropic.NewGenerationService(anthropic.Config{
		APIKey: key,
		Model:  os.Getenv("ANTHROPIC_MODEL"),
	})
	if err != nil {
		return nil, fmt.Errorf("configure generation: %w", err)
	}
	return svc, nil
}

func buildProviders() ([]driven.SnippetProvider, error) {
	var providers []driven.SnippetProvider

	if token := os.Getenv("SLACK_TOKEN"); token != "" {
		p, err := slack.NewProvider(slack.Config{Token: token})
		if err != nil {
			return nil, fmt.Errorf("configure Slack: %w", err)
		}
		providers = append(providers, p)
	}
	if key := os.Getenv("FIREFLIES_API_KEY"); key != "" {
		p, err := fireflies.NewProvider(fireflies.Config{APIKey: key})
		if err != nil {
			return nil, fmt.Errorf("configure Fireflies: %w", err)
		}
		providers = append(providers, p)
	}
	return providers, nil
}

// callRate reads the external call rate limit, defaulting to two calls
// per second across the run's workers.
func callRate(cfg driven.ConfigStore) rate.Limit {
	if perSec := cfg.GetInt("engine.rate_limit_per_second"); perSec > 0 {
		return rate.Limit(perSec)
	}
	return rate.Limit(2)
}
