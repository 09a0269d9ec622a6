// Command fulfillaudit audits marketing-fulfillment spreadsheets.
//
// Usage:
//
//	fulfillaudit [flags]            audit every configured category
//	fulfillaudit policies [flags]   print the effective policy of each category
//	fulfillaudit serve [flags]      serve audit reports over HTTP
//
// Settings come from the environment (optionally a .env file) and are
// overridden by flags. See internal/config for the variable names.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/fulfillaudit/internal/config"
	"github.com/JonMunkholm/fulfillaudit/internal/core"
	_ "github.com/JonMunkholm/fulfillaudit/internal/core/rules" // Register all rules
	"github.com/JonMunkholm/fulfillaudit/internal/logging"
	"github.com/JonMunkholm/fulfillaudit/internal/metrics"
	"github.com/JonMunkholm/fulfillaudit/internal/report"
	"github.com/JonMunkholm/fulfillaudit/internal/web"
)

func main() {
	// Load .env file if it exists; real environment variables win
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = newRootCmd(cfg).ExecuteContext(ctx)
	stop()

	if err != nil {
		msg := core.MapError(err)
		slog.Error("fulfillaudit failed", "error", err, "code", msg.Code, "action", msg.Action)
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "fulfillaudit",
		Short:         "Audit marketing-fulfillment spreadsheets",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
			slog.Debug("configuration loaded", "config", cfg.String())
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAudit(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
	cfg.BindFlags(root.PersistentFlags())

	root.AddCommand(newPoliciesCmd(cfg), newServeCmd(cfg))
	return root
}

// runAudit audits every configured category and writes the report.
// Configuration problems fail before any file is read.
func runAudit(ctx context.Context, cfg *config.Config, w io.Writer) error {
	specs, err := cfg.RunSpecs()
	if err != nil {
		return err
	}

	runner := core.NewRunner(
		core.WithRecorder(metrics.Recorder{}),
		core.WithLogger(slog.Default()),
	)

	rep, err := runner.RunAll(ctx, specs)
	if rep != nil {
		if werr := report.Write(w, report.Format(cfg.Output.Format), rep); werr != nil {
			return errors.Join(err, fmt.Errorf("writing report: %w", werr))
		}
	}
	return err
}

func newPoliciesCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "policies",
		Short: "Print the effective policy of each category and the available rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			specs, err := cfg.RunSpecs()
			if err != nil {
				return err
			}
			return writePolicies(cmd.OutOrStdout(), report.Format(cfg.Output.Format), specs)
		},
	}
}

func writePolicies(w io.Writer, format report.Format, specs []core.RunSpec) error {
	policies := make([]core.Policy, len(specs))
	for i, spec := range specs {
		policies[i] = spec.Policy
	}
	if format == report.FormatJSON {
		return report.WriteJSON(w, policies)
	}

	var b strings.Builder
	for _, p := range policies {
		fmt.Fprintf(&b, "%s: goal %d, rules %s\n", p.Category, p.Goal, strings.Join(p.Rules, ", "))
		fmt.Fprintf(&b, "  required columns: %s\n", strings.Join(p.RequiredColumns, ", "))
	}

	b.WriteString("\navailable rules:\n")
	for _, def := range core.All() {
		kind := "check"
		if def.Reporting {
			kind = "report"
		}
		fmt.Fprintf(&b, "  %-17s %s  %-6s %s\n", def.Name, def.Code, kind, def.Description)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func newServeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve audit reports over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			specs, err := cfg.RunSpecs()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg.Server, specs)
		},
	}
	cfg.BindServerFlags(cmd.Flags())
	return cmd
}

// serve runs the report server until ctx is cancelled, then shuts it down
// gracefully.
func serve(ctx context.Context, cfg config.ServerConfig, specs []core.RunSpec) error {
	server := web.NewServer(cfg, specs)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	slog.Info("server stopped")
	return nil
}
