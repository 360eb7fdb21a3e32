package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kdougan/js-notebook/internal/ports/primary"
	"github.com/kdougan/js-notebook/internal/wire"
)

// RunCmd returns the run command
func RunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a sheet's code blocks",
		Long: `Run code blocks from --from to the end of the sheet.

The first code block always runs. Later blocks run when --force is given or when
they read a name an earlier block produced. Failed blocks are reported and the
run continues.

Examples:
  jsnb run --all
  jsnb run --from 2 --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sheet, _ := cmd.Flags().GetInt("sheet")
			from, _ := cmd.Flags().GetInt("from")
			force, _ := cmd.Flags().GetBool("force")
			all, _ := cmd.Flags().GetBool("all")
			watch, _ := cmd.Flags().GetBool("watch")

			if all {
				if cmd.Flags().Changed("from") && from != 0 {
					return fmt.Errorf("--all runs from the first block; drop --from")
				}
				from, force = 0, true
			}

			ctx, cancel := newInterruptibleContext()
			defer cancel()

			return wire.RunAdapter().Run(ctx, primary.RunRequest{
				SheetIndex: sheet,
				StartIndex: from,
				Force:      force,
			}, watch)
		},
	}
	cmd.Flags().Int("sheet", -1, "Sheet index (default: selected sheet)")
	cmd.Flags().Int("from", 0, "Index of the first block to consider")
	cmd.Flags().Bool("force", false, "Run every code block from --from, not only dependents")
	cmd.Flags().Bool("all", false, "Run every code block (same as --from 0 --force)")
	cmd.Flags().BoolP("watch", "w", false, "Print block transitions as they happen")
	return cmd
}
