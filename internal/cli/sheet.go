package cli

import (
	"github.com/spf13/cobra"

	"github.com/kdougan/js-notebook/internal/wire"
)

// SheetCmd returns the sheet command
func SheetCmd() *cobra.Command {
	sheetCmd := &cobra.Command{
		Use:   "sheet",
		Short: "Manage sheets",
		Long:  "List, add, remove, select and rename the notebook's sheets",
	}

	sheetCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List sheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.NotebookAdapter().ListSheets(NewContext())
		},
	})

	sheetCmd.AddCommand(&cobra.Command{
		Use:   "add [name]",
		Short: "Add a sheet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 1 {
				name = args[0]
			}
			return wire.NotebookAdapter().AddSheet(NewContext(), name)
		},
	})

	sheetCmd.AddCommand(&cobra.Command{
		Use:     "rm [index]",
		Aliases: []string{"remove"},
		Short:   "Remove a sheet",
		Long:    "Remove a sheet and its blocks. The last remaining sheet cannot be removed.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0], "sheet")
			if err != nil {
				return err
			}
			return wire.NotebookAdapter().RemoveSheet(NewContext(), index)
		},
	})

	sheetCmd.AddCommand(&cobra.Command{
		Use:   "select [index]",
		Short: "Select the sheet other commands act on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0], "sheet")
			if err != nil {
				return err
			}
			return wire.NotebookAdapter().SelectSheet(NewContext(), index)
		},
	})

	sheetCmd.AddCommand(&cobra.Command{
		Use:   "rename [index] [name]",
		Short: "Rename a sheet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0], "sheet")
			if err != nil {
				return err
			}
			return wire.NotebookAdapter().RenameSheet(NewContext(), index, args[1])
		},
	})

	return sheetCmd
}
