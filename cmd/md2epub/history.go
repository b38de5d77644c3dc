// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/md2epub/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent conversions",
	Long: `History lists recent conversion attempts from the local history database.
Recording is enabled with history.enabled in md2epub.yaml.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if _, err := os.Stat(cfg.History.Path); err != nil {
		fmt.Fprintln(out, "No history recorded.")
		return nil
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	records, err := store.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatHistory(out, records, jsonOutput)
}

func formatHistory(w io.Writer, records []history.Record, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(w, "No history recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-4s  %-16s  %-7s  %-6s  %-7s  %s\n", "ID", "When", "Op", "Status", "Sources", "Output")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, r := range records {
		status := "ok"
		if !r.Succeeded {
			status = "failed"
		}
		fmt.Fprintf(w, "%-4d  %-16s  %-7s  %-6s  %-7d  %s\n",
			r.ID, humanize.Time(r.At), r.Operation, status, len(r.Sources), r.Destination)
		if r.Diagnostic != "" {
			first, _, _ := strings.Cut(r.Diagnostic, "\n")
			fmt.Fprintf(w, "      %s\n", first)
		}
	}
	return nil
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "maximum number of records to list")
	historyCmd.Flags().Bool("json", false, "output records as JSON")

	rootCmd.AddCommand(historyCmd)
}
