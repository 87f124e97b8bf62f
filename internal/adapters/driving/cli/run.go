package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cadence-hq/cadence-cli/internal/core/ports/driving"
)

// timePrecision rounds durations for display.
const timePrecision = time.Millisecond

var runOut string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one outreach decision pass",
	Long: `Pulls prospects from the CRM, filters and ranks them by engagement,
classifies each one's sequence state, and drafts emails for the
prospects that are due. Drafts land in the local review queue and as
CRM notes; nothing is sent.`,
	RunE: runOutreach,
}

func init() {
	runCmd.Flags().StringVarP(&runOut, "out", "o", "", "write the full run report to a JSON file")
	rootCmd.AddCommand(runCmd)
}

func runOutreach(cmd *cobra.Command, _ []string) error {
	if outreachService == nil {
		return errors.New("outreach service not configured")
	}

	report, err := outreachService.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	printRunReport(cmd, report)

	if runOut != "" {
		if err := writeRunReport(runOut, report); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		cmd.Printf("\nFull report written to %s\n", runOut)
	}
	return nil
}

func printRunReport(cmd *cobra.Command, report *driving.RunReport) {
	bold := color.New(color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	cmd.Printf("%s completed in %s\n\n", bold("Outreach run"), report.Duration.Round(timePrecision))
	cmd.Printf("  Considered: %d\n", report.ProspectsConsidered)
	cmd.Printf("  Eligible:   %d\n", report.ProspectsEligible)
	cmd.Printf("  Acted on:   %d\n", report.ProspectsActed)
	cmd.Printf("  Drafts:     %s\n", green(report.DraftsCreated))
	if report.DraftsSwept > 0 {
		cmd.Printf("  Swept:      %d stale drafts\n", report.DraftsSwept)
	}

	if len(report.Outcomes) == 0 {
		return
	}
	cmd.Println()
	for _, o := range report.Outcomes {
		label := fmt.Sprintf("%s (%s)", o.Name, o.Company)
		switch {
		case o.Err != "":
			cmd.Printf("  %s %s: %s\n", red("✗"), label, o.Err)
		case o.DraftID != "":
			cmd.Printf("  %s %s: %s draft %s\n", green("✓"), label, o.EmailType, o.DraftID)
		default:
			cmd.Printf("  %s %s: skipped (%s)\n", yellow("-"), label, o.Skipped)
		}
		for _, w := range o.Warnings {
			cmd.Printf("      %s %s\n", yellow("!"), w)
		}
	}
}

func writeRunReport(path string, report *driving.RunReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
