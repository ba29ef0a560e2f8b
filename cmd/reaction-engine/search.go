// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/reaction-engine/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over reactions",
	Long: `Search runs an FTS5 query over reaction names, canonical formulas, and
notes. Results are ordered by table and id; --table scopes the search to one
source table.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	tableNo, _ := cmd.Flags().GetInt("table")
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	hits, err := st.SearchReactions(cmd.Context(), strings.Join(args, " "), tableNo, limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(hits)
	}
	printReactionTable(hits)
	return nil
}

func printReactionTable(reactions []types.Reaction) {
	if len(reactions) == 0 {
		fmt.Println("No results found.")
		return
	}

	fmt.Fprintf(os.Stdout, "%-6s  %-5s  %-8s  %-40s  %-40s  %s\n",
		"ID", "Table", "Seq", "Name", "Formula", "Valid")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for _, r := range reactions {
		name := r.Name
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		formula := r.FormulaCanonical
		if len(formula) > 40 {
			formula = formula[:37] + "..."
		}
		valid := ""
		if r.Validated {
			valid = "yes"
		}
		fmt.Fprintf(os.Stdout, "%-6d  %-5d  %-8s  %-40s  %-40s  %s\n",
			r.ID, r.TableNo, r.SequenceNo, name, formula, valid)
	}

	fmt.Fprintf(os.Stdout, "\n%d reaction(s)\n", len(reactions))
}

func init() {
	searchCmd.Flags().Int("table", 0, "restrict to one table number (0 = all)")
	searchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}
