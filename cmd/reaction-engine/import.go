// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/reaction-engine/internal/reconcile"
	"github.com/pdiddy/reaction-engine/internal/tsv"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Bulk-import row files into the reaction database",
	Long: `Import reads every tab-delimited row file under each table's csv/
directory and loads it into the database, ignoring ledger state. Reimporting
a file replaces only the measurements that file contributed earlier.

With --file a single row file is imported into --table instead. Use sync
when the validation ledgers should drive what is imported.`,
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	tables, _ := cmd.Flags().GetIntSlice("tables")
	file, _ := cmd.Flags().GetString("file")
	tableNo, _ := cmd.Flags().GetInt("table")

	cfg := storeConfig(cmd)
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	if file != "" {
		if tableNo == 0 {
			return fmt.Errorf("--file requires --table")
		}
		rows, err := tsv.ReadFile(file)
		if err != nil {
			return err
		}
		sum, err := st.ReimportSource(cmd.Context(), tableNo, file, "", rows)
		if err != nil {
			return err
		}
		printImportSummary(sum.ReactionsCreated, sum.ReactionsUpdated, sum.Measurements, sum.RowsSkipped, sum.RowsFailed)
		for _, issue := range sum.Issues {
			fmt.Fprintln(os.Stderr, issue)
		}
		if sum.RowsFailed > 0 {
			return fmt.Errorf("%d row(s) failed to import", sum.RowsFailed)
		}
		return nil
	}

	sum, err := reconcile.ImportAll(cmd.Context(), st, cfg.DataDir, tables, os.Stdout)
	if err != nil {
		return err
	}
	printImportSummary(sum.ReactionsCreated, sum.ReactionsUpdated, sum.Measurements, sum.RowsSkipped, sum.RowsFailed)
	for _, issue := range sum.Issues {
		fmt.Fprintln(os.Stderr, issue)
	}
	if sum.RowsFailed > 0 {
		return fmt.Errorf("%d row(s) failed to import", sum.RowsFailed)
	}
	return nil
}

func printImportSummary(created, updated, measurements, skipped, failed int) {
	fmt.Printf("Reactions: %d created, %d updated\n", created, updated)
	fmt.Printf("Measurements: %d\n", measurements)
	if skipped > 0 {
		fmt.Printf("Rows skipped (no formula): %d\n", skipped)
	}
	if failed > 0 {
		fmt.Printf("Rows failed: %d\n", failed)
	}
}

func init() {
	importCmd.Flags().IntSlice("tables", nil, "table numbers to import (default: 5-9)")
	importCmd.Flags().String("file", "", "import a single row file instead of whole tables")
	importCmd.Flags().Int("table", 0, "table number for --file")
	rootCmd.AddCommand(importCmd)
}
