package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kdougan/js-notebook/internal/ports/primary"
	"github.com/kdougan/js-notebook/internal/wire"
)

// defaultLogLimit caps history output unless --limit is given.
const defaultLogLimit = 50

// LogCmd returns the log command
func LogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent block runs",
		Long:  "Show recorded block attempts, newest first (default 50)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sheetID, _ := cmd.Flags().GetString("sheet")
			blockID, _ := cmd.Flags().GetString("block")
			limit, _ := cmd.Flags().GetInt("limit")

			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}
			if limit == 0 {
				limit = defaultLogLimit
			}

			return wire.RunAdapter().History(NewContext(), primary.HistoryRequest{
				SheetID: sheetID,
				BlockID: blockID,
				Limit:   limit,
			})
		},
	}
	cmd.Flags().String("sheet", "", "Filter by sheet ID")
	cmd.Flags().String("block", "", "Filter by block ID")
	cmd.Flags().IntP("limit", "n", defaultLogLimit, "Maximum entries to show")
	return cmd
}
