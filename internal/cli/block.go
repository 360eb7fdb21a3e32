package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kdougan/js-notebook/internal/ports/primary"
	"github.com/kdougan/js-notebook/internal/wire"
)

// BlockCmd returns the block command
func BlockCmd() *cobra.Command {
	blockCmd := &cobra.Command{
		Use:   "block",
		Short: "Manage blocks",
		Long:  "Add, edit and remove code and text blocks on a sheet",
	}

	blockAddCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a block",
		Long: `Add a code or text block. Blocks are appended unless --at is given.

Examples:
  jsnb block add --source 'let x = 5;'
  jsnb block add --kind text --source 'Totals for March'
  jsnb block add --at 0 --file setup.js`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sheet, _ := cmd.Flags().GetInt("sheet")
			kind, _ := cmd.Flags().GetString("kind")
			at, _ := cmd.Flags().GetInt("at")
			source, _ := cmd.Flags().GetString("source")
			file, _ := cmd.Flags().GetString("file")

			content, err := readContent(source, file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if at < -1 {
				return fmt.Errorf("invalid --at %d", at)
			}

			return wire.NotebookAdapter().AddBlock(NewContext(), primary.AddBlockRequest{
				SheetIndex: sheet,
				Kind:       kind,
				At:         at,
				Content:    content,
			})
		},
	}

	blockEditCmd := &cobra.Command{
		Use:   "edit [index]",
		Short: "Replace a block's content",
		Long:  "Replace a block's text or source. The last output is kept and marked stale until the block runs again.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0], "block")
			if err != nil {
				return err
			}
			sheet, _ := cmd.Flags().GetInt("sheet")
			source, _ := cmd.Flags().GetString("source")
			file, _ := cmd.Flags().GetString("file")

			content, err := readContent(source, file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			return wire.NotebookAdapter().EditBlock(NewContext(), primary.EditBlockRequest{
				SheetIndex: sheet,
				BlockIndex: index,
				Content:    content,
			})
		},
	}

	blockRemoveCmd := &cobra.Command{
		Use:     "rm [index]",
		Aliases: []string{"remove"},
		Short:   "Remove a block",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0], "block")
			if err != nil {
				return err
			}
			sheet, _ := cmd.Flags().GetInt("sheet")
			return wire.NotebookAdapter().RemoveBlock(NewContext(), sheet, index)
		},
	}

	blockCmd.PersistentFlags().Int("sheet", -1, "Sheet index (default: selected sheet)")

	blockAddCmd.Flags().StringP("kind", "k", "code", "Block kind (code, text)")
	blockAddCmd.Flags().Int("at", -1, "Insert position (default: append)")
	blockAddCmd.Flags().StringP("source", "s", "", "Block content")
	blockAddCmd.Flags().StringP("file", "f", "", "Read block content from a file (- for stdin)")
	blockEditCmd.Flags().StringP("source", "s", "", "New block content")
	blockEditCmd.Flags().StringP("file", "f", "", "Read new content from a file (- for stdin)")

	blockCmd.AddCommand(blockAddCmd)
	blockCmd.AddCommand(blockEditCmd)
	blockCmd.AddCommand(blockRemoveCmd)

	return blockCmd
}
