// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// Issue is a structured problem report from a batch operation. Batches
// collect issues and keep going; nothing row-level is silently swallowed.
type Issue struct {
	// Kind classifies the issue: "missing_source", "ledger_load_failed",
	// "import_failed", "update_failed", "bad_row".
	Kind string `json:"kind" yaml:"kind"`

	TableNo    int    `json:"table_no,omitempty" yaml:"table_no,omitempty"`
	Image      string `json:"image,omitempty" yaml:"image,omitempty"`
	SourcePath string `json:"source_path,omitempty" yaml:"source_path,omitempty"`
	Line       int    `json:"line,omitempty" yaml:"line,omitempty"`

	// Message is the human-readable detail.
	Message string `json:"message" yaml:"message"`
}

func (i Issue) String() string {
	if i.SourcePath != "" {
		return fmt.Sprintf("%s %s: %s", i.Kind, i.SourcePath, i.Message)
	}
	return fmt.Sprintf("%s: %s", i.Kind, i.Message)
}

// ImportSummary holds counts from an import or reimport batch.
type ImportSummary struct {
	// ReactionsCreated and ReactionsUpdated count get-or-create outcomes.
	ReactionsCreated int `json:"reactions_created" yaml:"reactions_created"`
	ReactionsUpdated int `json:"reactions_updated" yaml:"reactions_updated"`

	// Measurements counts measurement rows written.
	Measurements int `json:"measurements" yaml:"measurements"`

	// RowsSkipped counts rows with no usable formula.
	RowsSkipped int `json:"rows_skipped" yaml:"rows_skipped"`

	// RowsFailed counts rows that errored during storage.
	RowsFailed int `json:"rows_failed" yaml:"rows_failed"`

	Issues []Issue `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// Merge folds another summary into this one.
func (s *ImportSummary) Merge(o ImportSummary) {
	s.ReactionsCreated += o.ReactionsCreated
	s.ReactionsUpdated += o.ReactionsUpdated
	s.Measurements += o.Measurements
	s.RowsSkipped += o.RowsSkipped
	s.RowsFailed += o.RowsFailed
	s.Issues = append(s.Issues, o.Issues...)
}

// SyncSummary holds counts from a ledger reconciliation pass.
type SyncSummary struct {
	// Imported counts sources reimported because their ledger entry was
	// validated.
	Imported int `json:"imported" yaml:"imported"`

	// RowsValidated counts reaction rows stamped validated.
	RowsValidated int `json:"rows_validated" yaml:"rows_validated"`

	// Cleared counts reaction rows whose validation flag was cleared.
	Cleared int `json:"cleared" yaml:"cleared"`

	Import ImportSummary `json:"import" yaml:"import"`

	Issues []Issue `json:"issues,omitempty" yaml:"issues,omitempty"`
}
