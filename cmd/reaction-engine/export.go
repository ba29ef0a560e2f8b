// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/reaction-engine/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export reactions with measurements to YAML or JSON",
	Long: `Export writes the full reaction database (or a filtered subset) to a
file. The default output is <data-dir>/export.yaml; --out overrides it.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")
	nameFilter, _ := cmd.Flags().GetString("name")

	cfg := storeConfig(cmd)
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	opts := store.ListOptions{NameFilter: nameFilter}

	switch format {
	case "yaml", "":
		if out == "" {
			out = filepath.Join(cfg.DataDir, "export.yaml")
		}
		if err := st.ExportYAML(cmd.Context(), out, opts); err != nil {
			return err
		}
	case "json":
		if out == "" {
			out = filepath.Join(cfg.DataDir, "export.json")
		}
		if err := st.ExportJSON(cmd.Context(), out, opts); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	fmt.Println("Exported to", out)
	return nil
}

func init() {
	exportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	exportCmd.Flags().String("out", "", "output file path")
	exportCmd.Flags().String("name", "", "filter exported reactions by name substring")
	rootCmd.AddCommand(exportCmd)
}
