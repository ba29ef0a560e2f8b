// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print database statistics",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.Stats(cmd.Context())
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(stats)
	}

	t := stats.Totals
	fmt.Printf("Reactions:    %d (%d validated, %d unvalidated)\n",
		t.Reactions, t.ReactionsValidated, t.ReactionsUnvalidated)
	fmt.Printf("Measurements: %d\n", t.Measurements)
	fmt.Printf("References:   %d (%d with DOI)\n", t.References, t.ReferencesWithDOI)
	if t.OrphanMeasurements > 0 {
		fmt.Printf("Orphan measurements: %d\n", t.OrphanMeasurements)
	}
	if t.LastReactionUpdate != "" {
		fmt.Printf("Last update:  %s\n", t.LastReactionUpdate)
	}

	fmt.Println("\nPer table:")
	for _, ts := range stats.PerTable {
		fmt.Printf("  %d: %d reactions (%d validated), %d measurements  %s\n",
			ts.TableNo, ts.Reactions, ts.ReactionsValidated, ts.Measurements, ts.TableCategory)
	}
	return nil
}

func init() {
	statsCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(statsCmd)
}
