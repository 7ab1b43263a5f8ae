package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/eggtracker/internal/app"
)

func newBackupCmd(run runner) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write every blob to a JSON backup document",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, a *app.App, cmd *cobra.Command, _ []string) error {
			w, closeFn, err := output(cmd, out)
			if err != nil {
				return err
			}
			if err := a.Backup.Export(ctx, w); err != nil {
				_ = closeFn()
				return err
			}
			if err := closeFn(); err != nil {
				return err
			}
			if out != "" && out != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "backup written to %s\n", out)
			}
			return nil
		}),
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", "destination file, - for stdout")
	return cmd
}

func newRestoreCmd(run runner) *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Replace all data with a backup document",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, a *app.App, cmd *cobra.Command, _ []string) error {
			var r io.Reader = cmd.InOrStdin()
			if in != "-" {
				f, err := os.Open(in)
				if err != nil {
					return fmt.Errorf("open %s: %w", in, err)
				}
				defer f.Close()
				r = f
			}
			doc, err := a.Backup.Import(ctx, r)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored %d cartons and %d collections exported at %s\n",
				len(doc.Data.Cartons), len(doc.Data.Collections), doc.ExportedAt.Format("2006-01-02 15:04"))
			return nil
		}),
	}
	cmd.Flags().StringVarP(&in, "in", "i", "", "backup file, - for stdin")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func newWipeCmd(run runner) *cobra.Command {
	var confirm string
	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Delete all inventory, cartons, collections and settings",
		Args:  cobra.NoArgs,
		PreRunE: func(*cobra.Command, []string) error {
			if confirm != confirmKeyword {
				return fmt.Errorf("refusing to wipe: pass --confirm %s", confirmKeyword)
			}
			return nil
		},
		RunE: run(func(ctx context.Context, a *app.App, cmd *cobra.Command, _ []string) error {
			if err := a.Backup.ClearAll(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "all data cleared")
			return nil
		}),
	}
	cmd.Flags().StringVar(&confirm, "confirm", "", "type "+confirmKeyword+" to confirm")
	return cmd
}

func newExportCmd(run runner) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:       "export sales|inventory",
		Short:     "Write sales or inventory as CSV",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"sales", "inventory"},
		RunE: run(func(ctx context.Context, a *app.App, cmd *cobra.Command, args []string) error {
			w, closeFn, err := output(cmd, out)
			if err != nil {
				return err
			}
			switch args[0] {
			case "sales":
				err = a.Export.SalesCSV(ctx, w)
			default:
				err = a.Export.InventoryCSV(ctx, w)
			}
			if err != nil {
				_ = closeFn()
				return err
			}
			return closeFn()
		}),
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", "destination file, - for stdout")
	return cmd
}

func newSyncCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "sync-sheet",
		Short: "Push current inventory to the configured Google Sheet",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, a *app.App, cmd *cobra.Command, _ []string) error {
			if err := a.Export.PublishInventory(ctx); err != nil {
				return err
			}
			sales, err := a.Export.PublishedSales(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "inventory sheet updated, %d sales on the sales sheet\n", sales)
			return nil
		}),
	}
}
