// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one reaction with all its measurements",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid reaction id %q", args[0])
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	detail, err := st.GetReactionWithMeasurements(cmd.Context(), id)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(detail)
	}

	r := detail.Reaction
	fmt.Printf("Reaction %d (table %d: %s)\n", r.ID, r.TableNo, r.TableCategory)
	if r.SequenceNo != "" {
		fmt.Printf("  Sequence:  %s\n", r.SequenceNo)
	}
	if r.Name != "" {
		fmt.Printf("  Name:      %s\n", r.Name)
	}
	fmt.Printf("  Formula:   %s\n", r.FormulaCanonical)
	if len(r.ReactantSpecies) > 0 {
		fmt.Printf("  Reactants: %s\n", strings.Join(r.ReactantSpecies, ", "))
	}
	if len(r.ProductSpecies) > 0 {
		fmt.Printf("  Products:  %s\n", strings.Join(r.ProductSpecies, ", "))
	}
	if r.SourcePath != "" {
		fmt.Printf("  Source:    %s\n", r.SourcePath)
	}
	if r.Validated {
		fmt.Printf("  Validated: yes (%s %s)\n", r.ValidatedBy, r.ValidatedAt)
	} else {
		fmt.Printf("  Validated: no\n")
	}

	fmt.Printf("\nMeasurements (%d):\n", len(detail.Measurements))
	for _, m := range detail.Measurements {
		line := fmt.Sprintf("  [%d] rate %s", m.ID, m.RateValue)
		if m.RateUnits != "" {
			line += " " + m.RateUnits
		}
		if m.PH != "" {
			line += ", pH " + m.PH
		}
		if m.Conditions != "" {
			line += ", " + m.Conditions
		}
		if m.ReferenceCode != "" {
			line += ", ref " + m.ReferenceCode
		} else if m.ReferencesRaw != "" {
			line += ", ref " + m.ReferencesRaw
		}
		fmt.Println(line)
	}
	return nil
}

func init() {
	showCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(showCmd)
}
