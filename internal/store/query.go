// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/reaction-engine/pkg/types"
)

// ListOptions holds parameters for reaction listings.
type ListOptions struct {
	// NameFilter is a case-insensitive substring match on the name, or on
	// the canonical formula for unnamed reactions.
	NameFilter string

	// ValidatedOnly filters by validation state when set.
	ValidatedOnly *bool

	// Limit caps the result count. Zero uses the store default.
	Limit int
}

const reactionColumns = `id, table_no, table_category, sequence_no, reaction_name,
	formula_latex, formula_canonical, reactants, products,
	reactant_species, product_species, notes, image_path, source_path,
	validated, validated_by, validated_at, created_at, updated_at`

// ListReactions returns reactions ordered A-Z by name, falling back to
// the canonical formula for unnamed ones.
func (s *Store) ListReactions(ctx context.Context, opts ListOptions) ([]types.Reaction, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT ` + reactionColumns + ` FROM reactions WHERE 1=1`)

	if opts.NameFilter != "" {
		qb.WriteString(` AND lower(COALESCE(reaction_name, formula_canonical)) LIKE ?`)
		args = append(args, "%"+strings.ToLower(opts.NameFilter)+"%")
	}
	if opts.ValidatedOnly != nil {
		if *opts.ValidatedOnly {
			qb.WriteString(` AND validated = 1`)
		} else {
			qb.WriteString(` AND validated = 0`)
		}
	}

	qb.WriteString(` ORDER BY lower(COALESCE(reaction_name, formula_canonical)) ASC LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("listing reactions: %w", err)
	}
	defer rows.Close()
	return scanReactions(rows)
}

// SearchReactions runs an FTS5 MATCH over name, canonical formula, and
// notes, optionally scoped to one table. tableNo 0 means all tables.
func (s *Store) SearchReactions(ctx context.Context, query string, tableNo, limit int) ([]types.Reaction, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT ` + prefixColumns("r.") + `
		 FROM reactions r JOIN reactions_fts f ON r.id = f.rowid
		 WHERE f.reactions_fts MATCH ?`)
	args = append(args, query)

	if tableNo != 0 {
		qb.WriteString(` AND r.table_no = ?`)
		args = append(args, tableNo)
	}
	qb.WriteString(` ORDER BY r.table_no, r.id LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("searching reactions: %w", err)
	}
	defer rows.Close()
	return scanReactions(rows)
}

// ReactionDetail is a reaction with its measurements, each joined with
// its primary reference when one exists.
type ReactionDetail struct {
	Reaction     types.Reaction      `json:"reaction" yaml:"reaction"`
	Measurements []MeasurementDetail `json:"measurements" yaml:"measurements"`
}

// MeasurementDetail is a measurement with reference fields denormalized.
type MeasurementDetail struct {
	types.Measurement `yaml:",inline"`
	ReferenceCode     string `json:"reference_code,omitempty" yaml:"reference_code,omitempty"`
	ReferenceDOI      string `json:"reference_doi,omitempty" yaml:"reference_doi,omitempty"`
	ReferenceCitation string `json:"reference_citation,omitempty" yaml:"reference_citation,omitempty"`
}

// GetReactionWithMeasurements fetches one reaction and all its
// measurements in id order.
func (s *Store) GetReactionWithMeasurements(ctx context.Context, id int64) (*ReactionDetail, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reactionColumns+` FROM reactions WHERE id = ?`, id)
	r, err := scanReaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("reaction %d not found", id)
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT m.id, m.reaction_id, m.pH, m.temperature_C, m.rate_value,
			m.rate_value_num, m.rate_units, m.method, m.conditions,
			m.reference_id, m.references_raw, m.source_path, m.page_info,
			re.code, re.doi, re.citation_text
		 FROM measurements m
		 LEFT JOIN references_map re ON m.reference_id = re.id
		 WHERE m.reaction_id = ?
		 ORDER BY m.id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("querying measurements: %w", err)
	}
	defer rows.Close()

	detail := &ReactionDetail{Reaction: *r}
	for rows.Next() {
		var (
			m                  MeasurementDetail
			ph, units, method  sql.NullString
			cond, rawRefs      sql.NullString
			src, page          sql.NullString
			tempC, rateNum     sql.NullFloat64
			refID              sql.NullInt64
			code, doi, citText sql.NullString
		)
		if err := rows.Scan(
			&m.ID, &m.ReactionID, &ph, &tempC, &m.RateValue,
			&rateNum, &units, &method, &cond,
			&refID, &rawRefs, &src, &page,
			&code, &doi, &citText,
		); err != nil {
			return nil, fmt.Errorf("scanning measurement: %w", err)
		}
		m.PH = ph.String
		m.RateUnits = units.String
		m.Method = method.String
		m.Conditions = cond.String
		m.ReferencesRaw = rawRefs.String
		m.SourcePath = src.String
		m.PageInfo = page.String
		if tempC.Valid {
			v := tempC.Float64
			m.TemperatureC = &v
		}
		if rateNum.Valid {
			v := rateNum.Float64
			m.RateValueNum = &v
		}
		if refID.Valid {
			m.ReferenceID = refID.Int64
		}
		m.ReferenceCode = code.String
		m.ReferenceDOI = doi.String
		m.ReferenceCitation = citText.String
		detail.Measurements = append(detail.Measurements, m)
	}
	return detail, rows.Err()
}

// ReferencesNeedingResolution lists references whose DOI is well-formed
// but has not been checked against the resolver yet.
func (s *Store) ReferencesNeedingResolution(ctx context.Context) ([]types.Reference, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, COALESCE(code, ''), COALESCE(doi, ''), doi_status
		 FROM references_map
		 WHERE doi IS NOT NULL AND doi_status IN (?, ?)
		 ORDER BY id`,
		string(types.DOIValid), string(types.DOIUnknown),
	)
	if err != nil {
		return nil, fmt.Errorf("listing references: %w", err)
	}
	defer rows.Close()

	var refs []types.Reference
	for rows.Next() {
		var r types.Reference
		var status string
		if err := rows.Scan(&r.ID, &r.Code, &r.DOI, &status); err != nil {
			return nil, fmt.Errorf("scanning reference: %w", err)
		}
		r.DOIStatus = types.DOIStatus(status)
		refs = append(refs, r)
	}
	return refs, rows.Err()
}

// SetReferenceDOIStatus records the outcome of a resolver check.
func (s *Store) SetReferenceDOIStatus(ctx context.Context, id int64, status types.DOIStatus) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE references_map SET doi_status = ?, updated_at = datetime('now') WHERE id = ?`,
		string(status), id)
	if err != nil {
		return fmt.Errorf("updating doi status: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReaction(row rowScanner) (*types.Reaction, error) {
	var (
		r                        types.Reaction
		seqNo, name, latex       sql.NullString
		canonical, reacts, prods sql.NullString
		rSpecies, pSpecies       sql.NullString
		notes, imgPath, srcPath  sql.NullString
		validatedBy, validatedAt sql.NullString
		validated                int
	)
	err := row.Scan(
		&r.ID, &r.TableNo, &r.TableCategory, &seqNo, &name,
		&latex, &canonical, &reacts, &prods,
		&rSpecies, &pSpecies, &notes, &imgPath, &srcPath,
		&validated, &validatedBy, &validatedAt, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.SequenceNo = seqNo.String
	r.Name = name.String
	r.FormulaLaTeX = latex.String
	r.FormulaCanonical = canonical.String
	r.Reactants = reacts.String
	r.Products = prods.String
	r.Notes = notes.String
	r.ImagePath = imgPath.String
	r.SourcePath = srcPath.String
	r.Validated = validated != 0
	r.ValidatedBy = validatedBy.String
	r.ValidatedAt = validatedAt.String
	if rSpecies.Valid {
		json.Unmarshal([]byte(rSpecies.String), &r.ReactantSpecies)
	}
	if pSpecies.Valid {
		json.Unmarshal([]byte(pSpecies.String), &r.ProductSpecies)
	}
	return &r, nil
}

func scanReactions(rows *sql.Rows) ([]types.Reaction, error) {
	var out []types.Reaction
	for rows.Next() {
		r, err := scanReaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning reaction: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func prefixColumns(prefix string) string {
	cols := strings.Split(reactionColumns, ",")
	for i, c := range cols {
		cols[i] = prefix + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}
