// Package cli implements eggctl, the maintenance command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/eggtracker/internal/app"
	"github.com/mamadbah2/eggtracker/internal/config"
	"github.com/mamadbah2/eggtracker/pkg/logger"
)

// confirmKeyword must be typed to wipe all data.
const confirmKeyword = "DELETE"

// Opener builds the application for one command run.
type Opener func(ctx context.Context, envFile string) (*app.App, error)

// DefaultOpener loads configuration and opens the configured store.
func DefaultOpener(ctx context.Context, envFile string) (*app.App, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.New(cfg.Server.LogMode)
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, log.WithOptions(zap.IncreaseLevel(zap.WarnLevel)))
}

// NewRootCommand assembles eggctl.
func NewRootCommand(open Opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "eggctl",
		Short:         "Maintenance tool for the egg tracker",
		Long:          "eggctl backs up, restores, wipes and exports the egg tracker's data directly from its store.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("env", "", "path to a .env file")

	run := func(fn func(ctx context.Context, a *app.App, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			envFile, _ := cmd.Flags().GetString("env")
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			a, err := open(ctx, envFile)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close(ctx) }()
			return fn(ctx, a, cmd, args)
		}
	}

	root.AddCommand(
		newBackupCmd(run),
		newRestoreCmd(run),
		newWipeCmd(run),
		newExportCmd(run),
		newSyncCmd(run),
	)
	return root
}

// Execute runs eggctl against the configured store.
func Execute() {
	if err := NewRootCommand(DefaultOpener).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type runner func(fn func(ctx context.Context, a *app.App, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error

// output returns the writer for --out, defaulting to the command's stdout.
func output(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, f.Close, nil
}
