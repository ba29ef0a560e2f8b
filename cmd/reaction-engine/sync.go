// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/reaction-engine/internal/reconcile"
	"github.com/pdiddy/reaction-engine/pkg/types"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the database with the validation ledgers",
	Long: `Sync walks each table's validation ledger. Validated images have their
row files reimported and stamped; unvalidated ones have their validation
flags cleared. Validated entries whose row file is missing are reported.

With --dry-run nothing is written; the planned imports and any problems
are printed instead.`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	tables, _ := cmd.Flags().GetIntSlice("tables")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	cfg := storeConfig(cmd)
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	sum, err := reconcile.Sync(cmd.Context(), st, cfg.DataDir,
		types.SyncConfig{Tables: tables, DryRun: dryRun}, os.Stdout)
	if err != nil {
		return err
	}
	printSyncSummary(sum, dryRun)
	return nil
}

func printSyncSummary(sum types.SyncSummary, dryRun bool) {
	if dryRun {
		fmt.Printf("Would import %d source(s)\n", sum.Imported)
	} else {
		fmt.Printf("Sources imported: %d\n", sum.Imported)
		fmt.Printf("Reactions validated: %d, cleared: %d\n", sum.RowsValidated, sum.Cleared)
		printImportSummary(sum.Import.ReactionsCreated, sum.Import.ReactionsUpdated,
			sum.Import.Measurements, sum.Import.RowsSkipped, sum.Import.RowsFailed)
	}
	for _, issue := range sum.Issues {
		fmt.Fprintln(os.Stderr, issue)
	}
}

func init() {
	syncCmd.Flags().IntSlice("tables", nil, "table numbers to reconcile (default: 5-9)")
	syncCmd.Flags().Bool("dry-run", false, "report planned work without writing")
	rootCmd.AddCommand(syncCmd)
}
