// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/reaction-engine/internal/cite"
	"github.com/pdiddy/reaction-engine/internal/formula"
	"github.com/pdiddy/reaction-engine/internal/tsv"
	"github.com/pdiddy/reaction-engine/pkg/types"
)

// ErrEmptyFormula is returned when a reaction is submitted without any
// usable formula text. Rows like this carry no chemistry and are skipped
// by the importers before they reach the store.
var ErrEmptyFormula = errors.New("empty formula")

// ReactionInput holds the fields of one incoming primary row. Empty
// strings mean "not supplied" and never overwrite stored values.
type ReactionInput struct {
	TableNo      int
	SequenceNo   string
	Name         string
	FormulaLaTeX string
	Notes        string
	SourcePath   string
	ImagePath    string
}

// MeasurementInput holds one quantitative observation to attach.
type MeasurementInput struct {
	PH            string
	TemperatureC  *float64
	RateValue     string
	RateValueNum  *float64
	RateUnits     string
	Method        string
	Conditions    string
	ReferenceID   int64
	ReferencesRaw string
	SourcePath    string
	PageInfo      string
}

// GetOrCreateReaction canonicalizes the formula and looks up an existing
// reaction by (table_no, formula_canonical). On a hit only the non-empty
// incoming fields overwrite stored ones; a later import with missing data
// never blanks what an earlier one filled in. Returns the reaction id and
// whether a new row was created.
func (s *Store) GetOrCreateReaction(ctx context.Context, in ReactionInput) (int64, bool, error) {
	return s.getOrCreateReaction(ctx, s.db, in)
}

func (s *Store) getOrCreateReaction(ctx context.Context, q dbtx, in ReactionInput) (int64, bool, error) {
	if strings.TrimSpace(in.FormulaLaTeX) == "" {
		return 0, false, ErrEmptyFormula
	}
	c := formula.Canonicalize(in.FormulaLaTeX)
	if c.Canonical == "" {
		return 0, false, ErrEmptyFormula
	}

	category, ok := types.TableCategory[in.TableNo]
	if !ok {
		category = fmt.Sprintf("%d", in.TableNo)
	}
	srcCanon := s.canonicalSourcePath(in.SourcePath)
	imgCanon := s.canonicalSourcePath(in.ImagePath)

	var id int64
	err := q.QueryRowContext(ctx,
		`SELECT id FROM reactions WHERE table_no = ? AND formula_canonical = ?`,
		in.TableNo, c.Canonical,
	).Scan(&id)

	switch {
	case err == nil:
		_, err = q.ExecContext(ctx,
			`UPDATE reactions
			 SET sequence_no = COALESCE(?, sequence_no),
			     reaction_name = COALESCE(?, reaction_name),
			     formula_latex = COALESCE(?, formula_latex),
			     notes = COALESCE(?, notes),
			     image_path = COALESCE(?, image_path),
			     source_path = COALESCE(?, source_path),
			     updated_at = datetime('now')
			 WHERE id = ?`,
			nullable(in.SequenceNo), nullable(in.Name), nullable(in.FormulaLaTeX),
			nullable(in.Notes), nullable(imgCanon), nullable(srcCanon), id,
		)
		if err != nil {
			return 0, false, fmt.Errorf("updating reaction %d: %w", id, err)
		}
		return id, false, nil

	case errors.Is(err, sql.ErrNoRows):
		res, err := q.ExecContext(ctx,
			`INSERT INTO reactions (
				table_no, table_category, sequence_no, reaction_name,
				formula_latex, formula_canonical, reactants, products,
				reactant_species, product_species, notes, image_path, source_path
			) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			in.TableNo, category, nullable(in.SequenceNo), nullable(in.Name),
			in.FormulaLaTeX, c.Canonical, c.Reactants, c.Products,
			speciesJSON(c.ReactantSpecies), speciesJSON(c.ProductSpecies),
			nullable(in.Notes), nullable(imgCanon), nullable(srcCanon),
		)
		if err != nil {
			return 0, false, fmt.Errorf("inserting reaction: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, false, fmt.Errorf("reading reaction id: %w", err)
		}
		return id, true, nil

	default:
		return 0, false, fmt.Errorf("looking up reaction: %w", err)
	}
}

// AddMeasurement appends one measurement to a reaction.
func (s *Store) AddMeasurement(ctx context.Context, reactionID int64, in MeasurementInput) (int64, error) {
	return s.addMeasurement(ctx, s.db, reactionID, in)
}

func (s *Store) addMeasurement(ctx context.Context, q dbtx, reactionID int64, in MeasurementInput) (int64, error) {
	var refID any
	if in.ReferenceID > 0 {
		refID = in.ReferenceID
	}
	res, err := q.ExecContext(ctx,
		`INSERT INTO measurements (
			reaction_id, pH, temperature_C, rate_value, rate_value_num,
			rate_units, method, conditions, reference_id, references_raw,
			source_path, page_info
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		reactionID, nullable(in.PH), nullableFloat(in.TemperatureC),
		in.RateValue, nullableFloat(in.RateValueNum),
		nullable(in.RateUnits), nullable(in.Method), nullable(in.Conditions),
		refID, nullable(in.ReferencesRaw),
		nullable(s.canonicalSourcePath(in.SourcePath)), nullable(in.PageInfo),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting measurement: %w", err)
	}
	return res.LastInsertId()
}

// UpsertReference finds or creates a literature reference. A reference is
// matched by code, DOI, or raw text, whichever hits first; on a hit the
// previously-null fields are filled in without overwriting populated
// ones. Returns 0 when every input is empty.
func (s *Store) UpsertReference(ctx context.Context, code, citationText, doi, rawText string) (int64, error) {
	return s.upsertReference(ctx, s.db, code, citationText, doi, rawText)
}

func (s *Store) upsertReference(ctx context.Context, q dbtx, code, citationText, doi, rawText string) (int64, error) {
	if code == "" && citationText == "" && doi == "" && rawText == "" {
		return 0, nil
	}

	var id int64
	err := q.QueryRowContext(ctx,
		`SELECT id FROM references_map
		 WHERE (code IS NOT NULL AND code = ?)
		    OR (doi IS NOT NULL AND doi = ?)
		    OR (raw_text IS NOT NULL AND raw_text = ?)
		 LIMIT 1`,
		code, doi, rawText,
	).Scan(&id)

	switch {
	case err == nil:
		_, err = q.ExecContext(ctx,
			`UPDATE references_map
			 SET citation_text = COALESCE(citation_text, ?),
			     doi = COALESCE(doi, ?),
			     doi_status = CASE WHEN doi IS NULL AND ? IS NOT NULL THEN ? ELSE doi_status END,
			     raw_text = COALESCE(raw_text, ?),
			     updated_at = datetime('now')
			 WHERE id = ?`,
			nullable(citationText), nullable(doi),
			nullable(doi), string(cite.FormatStatus(doi)),
			nullable(rawText), id,
		)
		if err != nil {
			return 0, fmt.Errorf("updating reference %d: %w", id, err)
		}
		return id, nil

	case errors.Is(err, sql.ErrNoRows):
		res, err := q.ExecContext(ctx,
			`INSERT INTO references_map (code, citation_text, doi, doi_status, raw_text)
			 VALUES (?,?,?,?,?)`,
			nullable(code), nullable(citationText), nullable(doi),
			string(cite.FormatStatus(doi)), nullable(rawText),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting reference: %w", err)
		}
		return res.LastInsertId()

	default:
		return 0, fmt.Errorf("looking up reference: %w", err)
	}
}

// SetValidatedBySource sets or clears the validated flag for every
// reaction imported from a source path. Clearing nulls the attribution
// columns too, so stale validator identity can never leak into reports.
// Falls back to a file-name suffix match for legacy absolute paths.
func (s *Store) SetValidatedBySource(ctx context.Context, sourcePath string, validated bool, by, at string) (int64, error) {
	srcCanon := s.canonicalSourcePath(sourcePath)

	run := func(where string, args ...any) (int64, error) {
		var res sql.Result
		var err error
		if validated {
			res, err = s.db.ExecContext(ctx,
				`UPDATE reactions SET validated = 1, validated_by = ?, validated_at = ?,
				 updated_at = datetime('now') WHERE `+where,
				append([]any{nullable(by), nullable(at)}, args...)...)
		} else {
			res, err = s.db.ExecContext(ctx,
				`UPDATE reactions SET validated = 0, validated_by = NULL, validated_at = NULL,
				 updated_at = datetime('now') WHERE `+where,
				args...)
		}
		if err != nil {
			return 0, fmt.Errorf("updating validation flags: %w", err)
		}
		return res.RowsAffected()
	}

	n, err := run(`source_path = ?`, srcCanon)
	if err != nil || n > 0 {
		return n, err
	}

	// The file-name match must be anchored at a path separator, or
	// "img_1.csv" would also claim "other_img_1.csv". substr avoids LIKE
	// wildcard semantics for the underscores in real file names.
	base := baseName(sourcePath)
	return run(`source_path = ? OR substr(source_path, -(length(?) + 1)) = '/' || ?`,
		base, base, base)
}

// ReimportSource replaces the measurements a source file contributed and
// refreshes its reactions, inside one transaction. Only measurements
// whose source_path matches the file being reimported are deleted, so a
// reaction fed by several files keeps the others' data. Continuation rows
// attach to the most recent primary reaction; per-row failures are
// counted and reported, never fatal for the batch.
func (s *Store) ReimportSource(ctx context.Context, tableNo int, sourcePath, imagePath string, rows []tsv.Row) (types.ImportSummary, error) {
	var sum types.ImportSummary

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return sum, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	srcCanon := s.canonicalSourcePath(sourcePath)
	cleared := make(map[int64]bool)
	var current int64

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		if row.IsContinuation() {
			if current == 0 {
				sum.RowsFailed++
				sum.Issues = append(sum.Issues, types.Issue{
					Kind:       "bad_row",
					TableNo:    tableNo,
					SourcePath: srcCanon,
					Line:       row.Line,
					Message:    "continuation row with no preceding primary row",
				})
				continue
			}
		} else {
			// A skipped or failed primary must not leave current pointing
			// at the previous reaction, or its continuation rows would
			// attach their measurements there.
			if row.Formula == "" {
				sum.RowsSkipped++
				current = 0
				continue
			}
			id, created, err := s.getOrCreateReaction(ctx, tx, ReactionInput{
				TableNo:      tableNo,
				SequenceNo:   row.SequenceNo,
				Name:         row.Name,
				FormulaLaTeX: row.Formula,
				SourcePath:   sourcePath,
				ImagePath:    imagePath,
			})
			if err != nil {
				sum.RowsFailed++
				sum.Issues = append(sum.Issues, types.Issue{
					Kind:       "bad_row",
					TableNo:    tableNo,
					SourcePath: srcCanon,
					Line:       row.Line,
					Message:    err.Error(),
				})
				current = 0
				continue
			}
			if created {
				sum.ReactionsCreated++
			} else {
				sum.ReactionsUpdated++
			}
			current = id

			if !cleared[id] {
				if _, err := tx.ExecContext(ctx,
					`DELETE FROM measurements WHERE reaction_id = ? AND source_path = ?`,
					id, srcCanon,
				); err != nil {
					return sum, fmt.Errorf("clearing measurements for reaction %d: %w", id, err)
				}
				cleared[id] = true
			}
		}

		if err := s.insertRowMeasurement(ctx, tx, current, sourcePath, row); err != nil {
			sum.RowsFailed++
			sum.Issues = append(sum.Issues, types.Issue{
				Kind:       "bad_row",
				TableNo:    tableNo,
				SourcePath: srcCanon,
				Line:       row.Line,
				Message:    err.Error(),
			})
			continue
		}
		sum.Measurements++
	}

	if err := tx.Commit(); err != nil {
		return sum, fmt.Errorf("committing reimport: %w", err)
	}
	return sum, nil
}

// insertRowMeasurement turns one parsed row into a measurement, upserting
// the reference its code names.
func (s *Store) insertRowMeasurement(ctx context.Context, q dbtx, reactionID int64, sourcePath string, row tsv.Row) error {
	code := ""
	if tsv.IsReferenceCode(row.RefCode) {
		code = row.RefCode
	}
	refID, err := s.upsertReference(ctx, q, code, "", "", row.RefCode)
	if err != nil {
		return err
	}

	m := MeasurementInput{
		PH:            row.PH,
		RateValue:     row.Rate,
		Conditions:    row.Comments,
		ReferenceID:   refID,
		ReferencesRaw: row.RefCode,
		SourcePath:    sourcePath,
	}
	if num, ok := tsv.ParseRate(row.Rate); ok {
		m.RateValueNum = &num
	}
	_, err = s.addMeasurement(ctx, q, reactionID, m)
	return err
}

func speciesJSON(species []string) any {
	if len(species) == 0 {
		return nil
	}
	data, err := json.Marshal(species)
	if err != nil {
		return nil
	}
	return string(data)
}

func baseName(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}
