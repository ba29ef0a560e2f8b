// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger reads the per-table validation ledger files. An entry
// on disk is either a bare boolean (the legacy format) or a structured
// {validated, by, at} record; both shapes are normalized at this
// boundary so the rest of the system only ever sees one.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pdiddy/reaction-engine/pkg/types"
)

// FileName is the ledger file name inside each table's image directory.
const FileName = "validation_db.json"

// Load reads and normalizes a ledger file.
func Load(path string) (types.Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", path, err)
	}
	return Parse(data)
}

// Parse normalizes raw ledger JSON. Entries of an unrecognized shape are
// coerced to not-validated rather than rejected; the ledger is
// hand-adjacent data and a single odd entry must not sink the file.
func Parse(data []byte) (types.Ledger, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing ledger: %w", err)
	}

	out := make(types.Ledger, len(raw))
	for img, msg := range raw {
		var b bool
		if err := json.Unmarshal(msg, &b); err == nil {
			out[img] = types.LedgerEntry{Validated: b}
			continue
		}
		var e struct {
			Validated bool    `json:"validated"`
			By        *string `json:"by"`
			At        *string `json:"at"`
		}
		if err := json.Unmarshal(msg, &e); err == nil {
			entry := types.LedgerEntry{Validated: e.Validated}
			if e.By != nil {
				entry.By = *e.By
			}
			if e.At != nil {
				entry.At = *e.At
			}
			out[img] = entry
			continue
		}
		out[img] = types.LedgerEntry{}
	}
	return out, nil
}

// Stats returns the entry count and how many are validated.
func Stats(l types.Ledger) (total, validated int) {
	for _, e := range l {
		total++
		if e.Validated {
			validated++
		}
	}
	return total, validated
}
