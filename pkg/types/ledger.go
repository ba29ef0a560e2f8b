// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// LedgerEntry is the normalized per-image validation state. On disk an
// entry may be a bare boolean (legacy format) or a structured record; the
// ledger loader coerces both shapes to this one before anything else sees
// them.
type LedgerEntry struct {
	// Validated reports whether the image's rows have been human-verified.
	Validated bool `json:"validated" yaml:"validated"`

	// By is the validator identity, when recorded.
	By string `json:"by,omitempty" yaml:"by,omitempty"`

	// At is the validation timestamp (ISO 8601), when recorded.
	At string `json:"at,omitempty" yaml:"at,omitempty"`
}

// Ledger maps image file names (e.g. "img_003.png") to validation state
// for one table.
type Ledger map[string]LedgerEntry
