package cli

import (
	"github.com/spf13/cobra"

	"github.com/kdougan/js-notebook/internal/wire"
)

// ShowCmd returns the show command
func ShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a sheet's blocks with their status and output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sheet, _ := cmd.Flags().GetInt("sheet")
			return wire.NotebookAdapter().Show(NewContext(), sheet)
		},
	}
	cmd.Flags().Int("sheet", -1, "Sheet index (default: selected sheet)")
	return cmd
}
