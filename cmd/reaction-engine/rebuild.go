// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/reaction-engine/internal/reconcile"
	"github.com/pdiddy/reaction-engine/pkg/types"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the database offline and swap it into place",
	Long: `Rebuild assembles a fresh database next to the live one from the
validation ledgers and row files, recomputes the search index, and atomically
swaps it over the live file. The live database stays readable until the swap.`,
	RunE: runRebuild,
}

func runRebuild(cmd *cobra.Command, args []string) error {
	tables, _ := cmd.Flags().GetIntSlice("tables")

	sum, err := reconcile.RebuildOffline(cmd.Context(), storeConfig(cmd),
		types.SyncConfig{Tables: tables}, os.Stdout)
	if err != nil {
		return err
	}
	printSyncSummary(sum, false)
	return nil
}

func init() {
	rebuildCmd.Flags().IntSlice("tables", nil, "table numbers to rebuild from (default: 5-9)")
	rootCmd.AddCommand(rebuildCmd)
}
