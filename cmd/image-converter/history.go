// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cwp/image-converter/internal/history"
	"github.com/cwp/image-converter/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show, export or clear past conversions",
	Long: `History lists recorded conversion attempts, newest first. Use --status
to keep only converted, failed or invalid attempts, --export to dump the
journal as yaml or json, and --clear to erase it.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of entries to list")
	historyCmd.Flags().String("status", "", "filter by status: converted, failed, invalid")
	historyCmd.Flags().String("export", "", "write all matching entries as yaml or json")
	historyCmd.Flags().Bool("clear", false, "delete every recorded entry")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	w := cmd.OutOrStdout()

	if wipe, _ := cmd.Flags().GetBool("clear"); wipe {
		n, err := store.Clear(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "cleared %d entries\n", n)
		return nil
	}

	status, _ := cmd.Flags().GetString("status")
	opts := history.ListOptions{Status: types.ConversionStatus(status)}
	switch opts.Status {
	case "", types.ConversionDone, types.ConversionFailed, types.ConversionInvalid:
	default:
		return fmt.Errorf("unknown status %q: use converted, failed or invalid", status)
	}

	switch export, _ := cmd.Flags().GetString("export"); export {
	case "":
	case "yaml":
		return store.ExportYAML(ctx, w, opts)
	case "json":
		return store.ExportJSON(ctx, w, opts)
	default:
		return fmt.Errorf("unknown export format %q: use yaml or json", export)
	}

	opts.Limit, _ = cmd.Flags().GetInt("limit")
	entries, err := store.List(ctx, opts)
	if err != nil {
		return err
	}
	formatHistory(w, entries)
	return nil
}

func formatHistory(w io.Writer, entries []types.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No conversions recorded.")
		return
	}

	fmt.Fprintf(w, "%-20s  %-9s  %-9s  %s\n", "When", "Status", "Formats", "Files")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, e := range entries {
		files := e.InputPath
		if e.OutputPath != "" {
			files += " -> " + e.OutputPath
		}
		if e.Reason != "" {
			files += " (" + e.Reason + ")"
		}
		fmt.Fprintf(w, "%-20s  %-9s  %-9s  %s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Status,
			string(e.InputFormat)+">"+string(e.OutputFormat), files)
	}
}
