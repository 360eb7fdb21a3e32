// Package cli provides CLI commands for the jsnb application.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/kdougan/js-notebook/internal/config"
	"github.com/kdougan/js-notebook/internal/ctxutil"
	"github.com/kdougan/js-notebook/internal/wire"
)

// defaultActor names runs started without a USER in the environment.
const defaultActor = "cli"

// globalActorID stores the detected actor ID for the current CLI invocation.
// Set once at startup by Bootstrap().
var globalActorID string

// AddGlobalFlags registers the flags every command inherits.
func AddGlobalFlags(root *cobra.Command) {
	root.PersistentFlags().String("config", "", "Config file (default: $JSNB_CONFIG or ~/.jsnb/config.yaml)")
	root.PersistentFlags().String("db", "", "Notebook database path (default: ~/.jsnb/jsnb.db)")
	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "", "Log format (text, json)")
}

// Bootstrap loads the configuration, applies flag overrides and hands the result to
// the wire package. It runs once per invocation from the root PersistentPreRunE.
func Bootstrap(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	wire.Configure(cfg)
	globalActorID = detectActor()
	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	explicit, _ := cmd.Flags().GetString("config")
	path, err := config.ResolvePath(explicit)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	// Flags override file values only when given.
	if f := cmd.Flags().Lookup("db"); f != nil && f.Changed {
		cfg.DBPath = f.Value.String()
	}
	if f := cmd.Flags().Lookup("log-level"); f != nil && f.Changed {
		cfg.Log.Level = f.Value.String()
	}
	if f := cmd.Flags().Lookup("log-format"); f != nil && f.Changed {
		cfg.Log.Format = f.Value.String()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func detectActor() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return defaultActor
}

// GetActorID returns the stored actor ID from CLI startup.
func GetActorID() string {
	return globalActorID
}

// NewContext creates a context carrying the current actor ID and the configured logger.
// CLI commands should use this instead of context.Background() directly.
func NewContext() context.Context {
	ctx := ctxutil.WithLogger(context.Background(), wire.Logger())
	if globalActorID != "" {
		ctx = ctxutil.WithActorID(ctx, globalActorID)
	}
	return ctx
}

// newInterruptibleContext is NewContext cancelled on Ctrl-C, for commands that
// evaluate scripts or serve requests.
func newInterruptibleContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(NewContext(), os.Interrupt)
}
