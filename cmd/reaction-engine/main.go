// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the reaction-engine CLI.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/reaction-engine/internal/store"
	"github.com/pdiddy/reaction-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the reaction-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "reaction-engine",
	Short: "Digitized radiation-chemistry reaction tables with search",
	Long: `reaction-engine manages a local SQLite database of chemical reactions and
rate constants digitized from the Buxton compilation tables. Tab-delimited row
files produced by the OCR correction workflow are imported, deduplicated by
canonical formula, indexed for full-text search, and reconciled against the
per-table validation ledgers.

Each operation is a subcommand: import, sync, rebuild, search, list, show,
stats, export, and refs.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./reaction-engine.yaml or ~/.config/reaction-engine/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "base data directory (default: ./data)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("reaction-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "reaction-engine"))
		}
	}

	viper.SetDefault("data_dir", "data")
	viper.SetDefault("max_results", 50)

	viper.SetEnvPrefix("REACTION_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// storeConfig resolves the store settings from the flag, the environment,
// and the config file, in that order.
func storeConfig(cmd *cobra.Command) types.StoreConfig {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	if dataDir == "" {
		dataDir = viper.GetString("data_dir")
	}
	return types.StoreConfig{
		DataDir:    dataDir,
		MaxResults: viper.GetInt("max_results"),
	}
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	return store.NewStore(storeConfig(cmd))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
