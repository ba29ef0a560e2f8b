// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for tooling that makes network
// requests (DOI resolution).
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "reaction-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// StoreConfig holds settings for the reaction store.
type StoreConfig struct {
	// DataDir is the base data directory. The live database lives at
	// DataDir/reactions.db; each table's images and row files live under
	// DataDir/tableN/.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxResults is the default maximum number of search results (default 50).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// SyncConfig holds settings for ledger reconciliation.
type SyncConfig struct {
	// Tables lists the table numbers to reconcile. Empty means DefaultTables.
	Tables []int `json:"tables" yaml:"tables"`

	// DryRun scans and reports issues without writing to the database.
	DryRun bool `json:"dry_run" yaml:"dry_run"`
}
