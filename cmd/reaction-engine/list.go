// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/reaction-engine/internal/store"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List reactions alphabetically",
	Long: `List prints reactions ordered A-Z by name, falling back to the canonical
formula for unnamed ones. --name filters by substring; --validated and
--unvalidated filter by validation state.`,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	nameFilter, _ := cmd.Flags().GetString("name")
	validatedOnly, _ := cmd.Flags().GetBool("validated")
	unvalidatedOnly, _ := cmd.Flags().GetBool("unvalidated")
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	opts := store.ListOptions{NameFilter: nameFilter, Limit: limit}
	if validatedOnly {
		v := true
		opts.ValidatedOnly = &v
	} else if unvalidatedOnly {
		v := false
		opts.ValidatedOnly = &v
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	reactions, err := st.ListReactions(cmd.Context(), opts)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(reactions)
	}
	printReactionTable(reactions)
	return nil
}

func init() {
	listCmd.Flags().String("name", "", "case-insensitive substring filter on the name")
	listCmd.Flags().Bool("validated", false, "only validated reactions")
	listCmd.Flags().Bool("unvalidated", false, "only unvalidated reactions")
	listCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	listCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(listCmd)
}
