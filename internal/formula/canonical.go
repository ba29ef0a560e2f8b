// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package formula normalizes LaTeX/mhchem reaction formulas into a
// canonical string form used for display, search, and deduplication.
//
// The input is hand-corrected OCR output and is imperfect by nature, so
// canonicalization never fails: every step degrades to a best-effort
// result. The pipeline is an ordered sequence of named steps; the order
// matters (radical/charge idioms must be rewritten before the generic
// superscript pass) and is pinned by tests.
package formula

import (
	"regexp"
	"strings"
)

// Canonical is the result of canonicalizing one formula string.
type Canonical struct {
	// Canonical is "<reactants> -> <products>", or just the reactant side
	// when the formula has no arrow.
	Canonical string

	// Reactants and Products are the canonical side strings.
	Reactants string
	Products  string

	// ReactantSpecies and ProductSpecies are the ordered species tokens of
	// each side, split on top-level "+".
	ReactantSpecies []string
	ProductSpecies  []string
}

var (
	arrowRe  = regexp.MustCompile(`\\rightarrow|\\to|->`)
	spacesRe = regexp.MustCompile(`\s+`)

	// Malformed radical dots from OCR: "^{." with no closing brace, and a
	// braced dot nested inside an already braced superscript.
	dotNoCloseRe  = regexp.MustCompile(`\^\{\.($|[^}])`)
	dotInBracesRe = regexp.MustCompile(`(\^\{[^}]*?)\^\.?`)
	dotNestedRe   = regexp.MustCompile(`\^\{([^}]*)\^\{?\.([^}]*)\}`)

	supRe = regexp.MustCompile(`\^\{([^}]+)\}|\^([A-Za-z0-9+\-.•]+)`)
	subRe = regexp.MustCompile(`_\{([^}]+)\}|_([A-Za-z0-9+\-.]+)`)

	ceFallbackRe = regexp.MustCompile(`\\ce\{([^}]*)\}`)
)

// Canonicalize normalizes a LaTeX-ish formula. It never fails; malformed
// input yields a possibly low-quality canonical string, not an error.
func Canonicalize(formula string) Canonical {
	core := stripMath(formula)
	if payload, ok := extractCEPayload(core); ok {
		core = payload
	}
	core = arrowRe.ReplaceAllString(core, "->")
	core = normalizeRadicals(core)
	core = flattenScripts(core)
	core = strings.TrimSpace(spacesRe.ReplaceAllString(core, " "))

	reactants, products := splitSides(core)

	c := Canonical{
		Reactants:       reactants,
		Products:        products,
		ReactantSpecies: splitSpecies(reactants),
		ProductSpecies:  splitSpecies(products),
	}
	if products != "" {
		c.Canonical = reactants + " -> " + products
	} else {
		c.Canonical = reactants
	}
	return c
}

// stripMath removes one enclosing pair of math delimiters, if the whole
// string is wrapped in one.
func stripMath(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case len(s) >= 2 && strings.HasPrefix(s, "$") && strings.HasSuffix(s, "$"):
		return s[1 : len(s)-1]
	case len(s) >= 4 && strings.HasPrefix(s, `\(`) && strings.HasSuffix(s, `\)`):
		return s[2 : len(s)-2]
	case len(s) >= 4 && strings.HasPrefix(s, `\[`) && strings.HasSuffix(s, `\]`):
		return s[2 : len(s)-2]
	}
	return s
}

// extractCEPayload returns the inner text of the first \ce{...} block. The
// payload frequently contains nested braces (e_{aq}^{-}), so a naive
// first-"}" match truncates species; this scans for the matching close,
// tracking brace depth and skipping escaped characters. When the braces
// are unbalanced it falls back to the naive capture as a last resort.
func extractCEPayload(s string) (string, bool) {
	start := strings.Index(s, `\ce{`)
	if start == -1 {
		return "", false
	}
	i := start + len(`\ce{`)
	depth := 1
	j := i
	for j < len(s) && depth > 0 {
		switch s[j] {
		case '\\':
			j += 2
			continue
		case '{':
			depth++
		case '}':
			depth--
		}
		j++
	}
	if depth == 0 {
		return s[i : j-1], true
	}
	if m := ceFallbackRe.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	return "", false
}

// normalizeRadicals maps radical and charge-radical notation to bullet
// glyphs. The compact idioms ^{.-} and ^{.+} must be rewritten before the
// brace repairs and before flattenScripts, or they come out mangled.
func normalizeRadicals(s string) string {
	s = strings.ReplaceAll(s, "^{.-}", "•-")
	s = strings.ReplaceAll(s, "^{.+}", "•+")
	s = dotNoCloseRe.ReplaceAllString(s, "^{.}$1")
	s = dotInBracesRe.ReplaceAllString(s, "$1.")
	s = dotNestedRe.ReplaceAllString(s, "^{$1.$2}")
	s = strings.ReplaceAll(s, `\cdot`, "•")
	s = strings.ReplaceAll(s, `\bullet`, "•")
	return s
}

// flattenScripts collapses braced and bare super/subscripts to the braced
// form, so O_2 and O_{2} canonicalize identically.
func flattenScripts(s string) string {
	s = supRe.ReplaceAllStringFunc(s, func(m string) string {
		g := supRe.FindStringSubmatch(m)
		inner := g[1]
		if inner == "" {
			inner = g[2]
		}
		return "^{" + inner + "}"
	})
	s = subRe.ReplaceAllStringFunc(s, func(m string) string {
		g := subRe.FindStringSubmatch(m)
		inner := g[1]
		if inner == "" {
			inner = g[2]
		}
		return "_{" + inner + "}"
	})
	return s
}

// splitSides splits on the first arrow. A formula with no arrow is a bare
// species reference: everything is reactants, products empty.
func splitSides(s string) (reactants, products string) {
	parts := strings.SplitN(s, "->", 2)
	reactants = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		products = strings.TrimSpace(parts[1])
	}
	return reactants, products
}

// splitSpecies tokenizes one side on top-level "+". Charges are inside
// script braces by this point (H^{+}), so a "+" at brace depth zero
// separates species, except when it trails a radical bullet (MV•+).
func splitSpecies(side string) []string {
	if side == "" {
		return nil
	}
	var species []string
	depth, last := 0, 0
	clean := func(t string) string {
		return spacesRe.ReplaceAllString(strings.TrimSpace(t), " ")
	}
	for i := 0; i < len(side); i++ {
		switch side[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case '+':
			if depth == 0 && !strings.HasSuffix(side[:i], "•") {
				species = append(species, clean(side[last:i]))
				last = i + 1
			}
		}
	}
	return append(species, clean(side[last:]))
}
