package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var prospectsJSON bool

var prospectsCmd = &cobra.Command{
	Use:   "prospects",
	Short: "Preview the ranked prospect list",
	Long: `Shows the prospects a run would act on: filtered by the configured
hard filters, scored by engagement, and ordered by rank. Nothing is
generated or recorded.`,
	RunE: runProspects,
}

var draftsCmd = &cobra.Command{
	Use:   "drafts [prospect-id]",
	Short: "List drafts awaiting review",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDrafts,
}

func init() {
	prospectsCmd.Flags().BoolVar(&prospectsJSON, "json", false, "output as JSON")
	prospectsCmd.AddCommand(draftsCmd)
	rootCmd.AddCommand(prospectsCmd)
}

func runProspects(cmd *cobra.Command, _ []string) error {
	if outreachService == nil {
		return errors.New("outreach service not configured")
	}

	ranked, err := outreachService.Rank(cmd.Context())
	if err != nil {
		return fmt.Errorf("rank prospects: %w", err)
	}

	if prospectsJSON {
		return printJSON(cmd, ranked)
	}

	if len(ranked) == 0 {
		cmd.Println("No prospects pass the configured filters.")
		return nil
	}

	cmd.Printf("%-4s %-24s %-20s %-6s %-14s %s\n", "#", "NAME", "COMPANY", "SCORE", "STATE", "DUE")
	for i, r := range ranked {
		due := "no"
		if r.Stale {
			due = "yes"
		}
		cmd.Printf("%-4d %-24s %-20s %-6d %-14s %s\n",
			i+1,
			clip(r.Prospect.Name, 24),
			clip(r.Prospect.Company, 20),
			r.Score,
			r.Classification.State,
			due,
		)
	}
	return nil
}

func runDrafts(cmd *cobra.Command, args []string) error {
	if draftStore == nil {
		return errors.New("draft store not configured")
	}

	ctx := cmd.Context()
	drafts, err := listDrafts(ctx, args)
	if err != nil {
		return fmt.Errorf("list drafts: %w", err)
	}

	if len(drafts) == 0 {
		cmd.Println("No drafts awaiting review.")
		return nil
	}

	for _, d := range drafts {
		cmd.Printf("%s  [%s]  %s\n", d.ID, d.Status, d.Subject)
		cmd.Printf("    prospect %s, %s, day %d, created %s\n",
			d.ProspectID, d.EmailType, d.DayInSequence, d.CreatedAt.Format("2006-01-02 15:04"))
		if len(d.Flags) > 0 {
			cmd.Printf("    flags: %s\n", strings.Join(d.Flags, "; "))
		}
	}
	return nil
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
