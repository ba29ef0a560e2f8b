// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/pdiddy/reaction-engine/pkg/types"
)

// Totals holds database-wide counts.
type Totals struct {
	Reactions             int    `json:"reactions" yaml:"reactions"`
	ReactionsValidated    int    `json:"reactions_validated" yaml:"reactions_validated"`
	ReactionsUnvalidated  int    `json:"reactions_unvalidated" yaml:"reactions_unvalidated"`
	Measurements          int    `json:"measurements" yaml:"measurements"`
	References            int    `json:"references" yaml:"references"`
	ReferencesWithDOI     int    `json:"references_with_doi" yaml:"references_with_doi"`
	ReferencesWithoutDOI  int    `json:"references_without_doi" yaml:"references_without_doi"`
	OrphanMeasurements    int    `json:"orphan_measurements" yaml:"orphan_measurements"`
	LastReactionUpdate    string `json:"last_reaction_update,omitempty" yaml:"last_reaction_update,omitempty"`
	LastMeasurementUpdate string `json:"last_measurement_update,omitempty" yaml:"last_measurement_update,omitempty"`
}

// TableStats holds per-table counts.
type TableStats struct {
	TableNo              int    `json:"table_no" yaml:"table_no"`
	TableCategory        string `json:"table_category" yaml:"table_category"`
	Reactions            int    `json:"reactions" yaml:"reactions"`
	ReactionsValidated   int    `json:"reactions_validated" yaml:"reactions_validated"`
	ReactionsUnvalidated int    `json:"reactions_unvalidated" yaml:"reactions_unvalidated"`
	Measurements         int    `json:"measurements" yaml:"measurements"`
}

// Stats summarizes the database contents.
type Stats struct {
	Totals   Totals       `json:"totals" yaml:"totals"`
	PerTable []TableStats `json:"per_table" yaml:"per_table"`
}

// Stats returns overall and per-table statistics.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	var out Stats

	count := func(query string, args ...any) (int, error) {
		var n int
		err := s.db.QueryRowContext(ctx, query, args...).Scan(&n)
		return n, err
	}

	var err error
	if out.Totals.Reactions, err = count(`SELECT COUNT(*) FROM reactions`); err != nil {
		return nil, fmt.Errorf("counting reactions: %w", err)
	}
	if out.Totals.ReactionsValidated, err = count(`SELECT COUNT(*) FROM reactions WHERE validated = 1`); err != nil {
		return nil, fmt.Errorf("counting validated reactions: %w", err)
	}
	out.Totals.ReactionsUnvalidated = out.Totals.Reactions - out.Totals.ReactionsValidated

	if out.Totals.Measurements, err = count(`SELECT COUNT(*) FROM measurements`); err != nil {
		return nil, fmt.Errorf("counting measurements: %w", err)
	}
	if out.Totals.References, err = count(`SELECT COUNT(*) FROM references_map`); err != nil {
		return nil, fmt.Errorf("counting references: %w", err)
	}
	if out.Totals.ReferencesWithDOI, err = count(
		`SELECT COUNT(*) FROM references_map WHERE doi IS NOT NULL AND TRIM(doi) <> ''`,
	); err != nil {
		return nil, fmt.Errorf("counting references with DOI: %w", err)
	}
	out.Totals.ReferencesWithoutDOI = out.Totals.References - out.Totals.ReferencesWithDOI

	// Should be zero given the FK cascade; reported so a broken bulk load
	// is visible.
	if out.Totals.OrphanMeasurements, err = count(
		`SELECT COUNT(*) FROM measurements m
		 LEFT JOIN reactions r ON r.id = m.reaction_id WHERE r.id IS NULL`,
	); err != nil {
		return nil, fmt.Errorf("counting orphan measurements: %w", err)
	}

	var lastR, lastM sql.NullString
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(updated_at) FROM reactions`).Scan(&lastR); err != nil {
		return nil, fmt.Errorf("reading last reaction update: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(updated_at) FROM measurements`).Scan(&lastM); err != nil {
		return nil, fmt.Errorf("reading last measurement update: %w", err)
	}
	out.Totals.LastReactionUpdate = lastR.String
	out.Totals.LastMeasurementUpdate = lastM.String

	tableNos := make([]int, 0, len(types.TableCategory))
	for tno := range types.TableCategory {
		tableNos = append(tableNos, tno)
	}
	sort.Ints(tableNos)

	for _, tno := range tableNos {
		ts := TableStats{TableNo: tno, TableCategory: types.TableCategory[tno]}
		if ts.Reactions, err = count(`SELECT COUNT(*) FROM reactions WHERE table_no = ?`, tno); err != nil {
			return nil, fmt.Errorf("counting table %d reactions: %w", tno, err)
		}
		if ts.ReactionsValidated, err = count(
			`SELECT COUNT(*) FROM reactions WHERE table_no = ? AND validated = 1`, tno,
		); err != nil {
			return nil, fmt.Errorf("counting table %d validated: %w", tno, err)
		}
		ts.ReactionsUnvalidated = ts.Reactions - ts.ReactionsValidated
		if ts.Measurements, err = count(
			`SELECT COUNT(*) FROM measurements m
			 JOIN reactions r ON r.id = m.reaction_id WHERE r.table_no = ?`, tno,
		); err != nil {
			return nil, fmt.Errorf("counting table %d measurements: %w", tno, err)
		}
		out.PerTable = append(out.PerTable, ts)
	}

	return &out, nil
}
