// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// TableCategory maps a Buxton table number to its human-readable category label.
var TableCategory = map[int]string{
	5: "Rate constants for radical-radical reactions",
	6: "Rate constants for reactions of hydrated electrons in aqueous solution",
	7: "Rate constants for reactions of hydrogen atoms in aqueous solution",
	8: "Rate constants for reactions of hydroxyl radicals in aqueous solution",
	9: "Rate constants for reactions of the oxide radical ion in aqueous solution",
}

// DefaultTables lists the table numbers processed when none are specified.
var DefaultTables = []int{5, 6, 7, 8, 9}

// Reaction is one distinct chemical transformation as it appears in one
// source table. Two rows that canonicalize to the same formula within the
// same table are the same Reaction.
type Reaction struct {
	// ID is the database row identifier.
	ID int64 `json:"id" yaml:"id"`

	// TableNo identifies the source table (5-9).
	TableNo int `json:"table_no" yaml:"table_no"`

	// TableCategory is the human label for the table.
	TableCategory string `json:"table_category" yaml:"table_category"`

	// SequenceNo is the original reaction number from the printed table
	// (e.g. "6-001"), when present.
	SequenceNo string `json:"sequence_no,omitempty" yaml:"sequence_no,omitempty"`

	// Name is the display name (e.g. "Hydrated electron with oxygen").
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// FormulaLaTeX is the formula exactly as received, math delimiters and all.
	FormulaLaTeX string `json:"formula_latex,omitempty" yaml:"formula_latex,omitempty"`

	// FormulaCanonical is the normalized equation string used as the dedup key.
	FormulaCanonical string `json:"formula_canonical,omitempty" yaml:"formula_canonical,omitempty"`

	// Reactants and Products are the canonical side strings.
	Reactants string `json:"reactants,omitempty" yaml:"reactants,omitempty"`
	Products  string `json:"products,omitempty" yaml:"products,omitempty"`

	// ReactantSpecies and ProductSpecies are the ordered species tokens.
	ReactantSpecies []string `json:"reactant_species,omitempty" yaml:"reactant_species,omitempty"`
	ProductSpecies  []string `json:"product_species,omitempty" yaml:"product_species,omitempty"`

	// Notes is free text carried alongside the reaction.
	Notes string `json:"notes,omitempty" yaml:"notes,omitempty"`

	// ImagePath is the source table image for this reaction, when known.
	ImagePath string `json:"image_path,omitempty" yaml:"image_path,omitempty"`

	// SourcePath is the row file (TSV/CSV) this reaction was imported from.
	SourcePath string `json:"source_path,omitempty" yaml:"source_path,omitempty"`

	// Validated reports whether the source rows have been human-verified.
	// ValidatedBy/ValidatedAt carry the attribution and are cleared together
	// with the flag.
	Validated   bool   `json:"validated" yaml:"validated"`
	ValidatedBy string `json:"validated_by,omitempty" yaml:"validated_by,omitempty"`
	ValidatedAt string `json:"validated_at,omitempty" yaml:"validated_at,omitempty"`

	CreatedAt string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Measurement is one quantitative observation attached to a Reaction.
// A reaction accumulates measurements across source rows and files.
type Measurement struct {
	ID         int64 `json:"id" yaml:"id"`
	ReactionID int64 `json:"reaction_id" yaml:"reaction_id"`

	// PH is kept as free text; ranges and symbols like "~7" are common.
	PH string `json:"ph,omitempty" yaml:"ph,omitempty"`

	// TemperatureC is the temperature in Celsius, when stated.
	TemperatureC *float64 `json:"temperature_c,omitempty" yaml:"temperature_c,omitempty"`

	// RateValue is the rate constant exactly as given in the source.
	RateValue string `json:"rate_value" yaml:"rate_value"`

	// RateValueNum is the best-effort numeric parse of RateValue, when one
	// succeeded. The raw text is authoritative either way.
	RateValueNum *float64 `json:"rate_value_num,omitempty" yaml:"rate_value_num,omitempty"`

	RateUnits  string `json:"rate_units,omitempty" yaml:"rate_units,omitempty"`
	Method     string `json:"method,omitempty" yaml:"method,omitempty"`
	Conditions string `json:"conditions,omitempty" yaml:"conditions,omitempty"`

	// ReferenceID links the primary literature reference, when one was
	// recognized. ReferencesRaw keeps the full raw reference field.
	ReferenceID   int64  `json:"reference_id,omitempty" yaml:"reference_id,omitempty"`
	ReferencesRaw string `json:"references_raw,omitempty" yaml:"references_raw,omitempty"`

	SourcePath string `json:"source_path,omitempty" yaml:"source_path,omitempty"`
	PageInfo   string `json:"page_info,omitempty" yaml:"page_info,omitempty"`

	CreatedAt string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// DOIStatus tracks what is known about a reference's DOI.
type DOIStatus string

const (
	DOIUnknown    DOIStatus = "unknown"
	DOIValid      DOIStatus = "valid"
	DOIResolved   DOIStatus = "resolved"
	DOIUnresolved DOIStatus = "unresolved"
)

// Reference is a literature citation, identified preferentially by its
// short Buxton code (e.g. "83R031"), secondarily by DOI or citation text.
type Reference struct {
	ID           int64     `json:"id" yaml:"id"`
	Code         string    `json:"code,omitempty" yaml:"code,omitempty"`
	CitationText string    `json:"citation_text,omitempty" yaml:"citation_text,omitempty"`
	DOI          string    `json:"doi,omitempty" yaml:"doi,omitempty"`
	DOIStatus    DOIStatus `json:"doi_status" yaml:"doi_status"`
	RawText      string    `json:"raw_text,omitempty" yaml:"raw_text,omitempty"`
	Notes        string    `json:"notes,omitempty" yaml:"notes,omitempty"`

	CreatedAt string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}
