package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
)

var (
	searchLimit    int
	searchCategory string
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the knowledge-base index",
	Long: `Runs a semantic query against the indexed corpus and prints the most
relevant chunks. Useful for checking what context a run would retrieve
for a prospect.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 8, "maximum number of results")
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "restrict results to a corpus category")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrieverService == nil {
		return errors.New("retriever service not configured")
	}

	query := domain.RetrievalQuery{FreeText: args[0]}
	if searchCategory != "" {
		query.Tags = map[string]string{"category": searchCategory}
	}

	results, err := retrieverService.Retrieve(cmd.Context(), query, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printJSON(cmd, results)
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	for i, r := range results {
		cmd.Printf("[%d] %s (%.2f)\n", i+1, r.DocumentPath, r.Score)
		cmd.Printf("    %s\n\n", clip(strings.ReplaceAll(r.Chunk.Content, "\n", " "), 160))
	}
	return nil
}
