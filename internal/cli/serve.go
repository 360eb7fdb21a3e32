package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/kdougan/js-notebook/internal/adapters/remote"
	"github.com/kdougan/js-notebook/internal/wire"
)

// DefaultServeAddr is where the evaluation service listens unless --addr is given.
const DefaultServeAddr = ":8089"

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the script evaluation endpoint",
		Long: fmt.Sprintf(`Serve the evaluation contract over HTTP (POST %s).

Each request runs in a fresh sandbox runtime. Point another jsnb at this server
with evaluator.mode: remote and evaluator.url in its config.`, remote.ValidatePath),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")

			ctx, cancel := newInterruptibleContext()
			defer cancel()

			// Starts exporters and installs the trace propagator when configured.
			wire.Telemetry()

			logger := wire.Logger()
			handler := remote.NewHandler(wire.LocalEvaluator(), logger,
				remote.WithEvaluationTimeout(wire.Config().Evaluator.Timeout))
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("evaluation server starting", "address", addr, "path", remote.ValidatePath)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Serving %s on %s (Ctrl-C to stop)\n", remote.ValidatePath, addr)

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("evaluation server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()
			logger.Info("shutting down evaluation server")
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("evaluation server shutdown failed: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().String("addr", DefaultServeAddr, "Listen address")
	return cmd
}
