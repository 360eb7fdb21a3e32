package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kdougan/js-notebook/internal/cli"
	"github.com/kdougan/js-notebook/internal/version"
	"github.com/kdougan/js-notebook/internal/wire"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "jsnb",
		Short:   "jsnb - computational notebook for JavaScript blocks",
		Version: version.String(),
		Long: `jsnb keeps a notebook of sheets made of code and text blocks.
Each code block's result object feeds the names it defines into the blocks below it,
and re-running a block only re-executes the blocks that read what it produced.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cli.Bootstrap(cmd)
		},
	}
	cli.AddGlobalFlags(rootCmd)

	// Notebook editing
	rootCmd.AddCommand(cli.SheetCmd())
	rootCmd.AddCommand(cli.BlockCmd())
	rootCmd.AddCommand(cli.ShowCmd())

	// Execution
	rootCmd.AddCommand(cli.RunCmd())
	rootCmd.AddCommand(cli.LogCmd())
	rootCmd.AddCommand(cli.ServeCmd())

	rootCmd.AddCommand(cli.ConfigCmd())

	err := rootCmd.Execute()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	wire.Shutdown(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
