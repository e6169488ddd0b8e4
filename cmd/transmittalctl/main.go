package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vijay-1103/transmittal-craft/internal/app"
	"github.com/vijay-1103/transmittal-craft/internal/config"
	"github.com/vijay-1103/transmittal-craft/internal/logging"
	"github.com/vijay-1103/transmittal-craft/internal/models"
	"github.com/vijay-1103/transmittal-craft/internal/transmittal"
)

var (
	inMemory bool
	verbose  bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "transmittalctl: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transmittalctl",
		Short: "Transmittal maintenance CLI",
		Long: `transmittalctl runs the transmittal lifecycle against the configured database:
seed demo data, list records, generate drafts and export printable PDFs.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().BoolVar(&inMemory, "memory", false, "Use a throwaway in-memory store instead of PostgreSQL")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")
	cmd.AddCommand(
		newSeedCmd(),
		newListCmd(),
		newGenerateCmd(),
		newPDFCmd(),
	)
	return cmd
}

// withApp opens storage for the duration of fn
func withApp(ctx context.Context, fn func(a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(level, "console")
	if err != nil {
		return err
	}
	defer logger.Sync()

	a, err := app.Open(ctx, cfg, logger.Sugar(), app.Options{InMemory: inMemory})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			logger.Warn("close failed", zap.Error(cerr))
		}
	}()
	return fn(a)
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create demo transmittals in every lifecycle state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				created, err := seed(cmd.Context(), a.Manager, time.Now().UTC())
				if err != nil {
					return err
				}
				return printTable(cmd, created)
			})
		},
	}
}

func newListCmd() *cobra.Command {
	var status string
	var limit int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transmittals newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				items, err := a.Manager.List(cmd.Context(), transmittal.ListQuery{Status: status, Limit: limit})
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(items)
				}
				rows := make([]*models.Transmittal, len(items))
				for i := range items {
					rows[i] = &items[i]
				}
				return printTable(cmd, rows)
			})
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", transmittal.StatusAll, "Filter by status (draft, generated, sent, received, all)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 100, "Maximum number of records")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate <id>",
		Short: "Number and freeze a draft transmittal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				t, err := a.Manager.Generate(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s generated as %s\n", t.ID, *t.TransmittalNumber)
				return nil
			})
		},
	}
}

func newPDFCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "pdf <id>",
		Short: "Write the printable transmittal to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				pdf, t, err := a.Manager.Render(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if output == "" {
					output = t.ID + ".pdf"
					if t.TransmittalNumber != nil {
						output = *t.TransmittalNumber + ".pdf"
					}
				}
				if err := os.WriteFile(output, pdf, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", output, len(pdf))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default <number>.pdf)")
	return cmd
}

func printTable(cmd *cobra.Command, items []*models.Transmittal) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNUMBER\tSTATUS\tMODE\tDOCS\tTITLE")
	for _, t := range items {
		number := "-"
		if t.TransmittalNumber != nil {
			number = *t.TransmittalNumber
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n", t.ID, number, t.Status, t.SendMode, t.DocumentCount, t.Title)
	}
	return tw.Flush()
}
