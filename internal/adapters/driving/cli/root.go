// Package cli implements the cadence command-line interface.
//
// Commands hold no business logic: they parse flags, call the driving
// services injected via SetServices, and render the results.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/cadence-hq/cadence-cli/internal/core/ports/driven"
	"github.com/cadence-hq/cadence-cli/internal/core/ports/driving"
	"github.com/cadence-hq/cadence-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Injected services. Nil services make their commands report a
// configuration error instead of panicking.
var (
	indexerService   driving.IndexerService
	retrieverService driving.RetrieverService
	outreachService  driving.OutreachService
	draftStore       driven.DraftStore
	corpusSource     driven.CorpusSource
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "cadence",
	Short: "Outreach decision and context engine",
	Long: `Cadence decides which prospects are due for outreach, assembles the
context to write to them, and drafts emails for human review.

It never sends email: every draft lands in a local review queue and a
CRM note.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Services bundles everything the commands need.
type Services struct {
	Indexer   driving.IndexerService
	Retriever driving.RetrieverService
	Outreach  driving.OutreachService
	Drafts    driven.DraftStore
	Corpus    driven.CorpusSource
}

// SetServices injects the service implementations. Called once from
// main before Execute.
func SetServices(s Services) {
	indexerService = s.Indexer
	retrieverService = s.Retriever
	outreachService = s.Outreach
	draftStore = s.Drafts
	corpusSource = s.Corpus
}

// SetVersion sets the version string shown by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
