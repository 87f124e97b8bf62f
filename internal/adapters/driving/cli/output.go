package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
)

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func listDrafts(ctx context.Context, args []string) ([]domain.Draft, error) {
	if len(args) == 1 {
		return draftStore.ListByProspect(ctx, args[0])
	}
	return draftStore.List(ctx)
}
