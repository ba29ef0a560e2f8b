// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cite classifies literature reference identifiers (short table
// codes and DOIs) and checks DOI resolvability against doi.org.
package cite

import (
	"regexp"
	"strings"

	"github.com/pdiddy/reaction-engine/pkg/types"
)

// doiPattern matches DOIs: "10.1021/ja00364a005".
var doiPattern = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)

// codePattern matches short table codes: "83R031", "84A1234".
var codePattern = regexp.MustCompile(`^\d{2}[A-Za-z]\d{3,4}$`)

// IsDOI reports whether s is a well-formed DOI.
func IsDOI(s string) bool {
	return doiPattern.MatchString(s)
}

// IsCode reports whether s is a short literature code.
func IsCode(s string) bool {
	return codePattern.MatchString(s)
}

// NormalizeDOI strips common prefixes ("doi:", the doi.org URL forms)
// and surrounding whitespace from a DOI-ish string.
func NormalizeDOI(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{
		"https://doi.org/", "http://doi.org/", "https://dx.doi.org/",
		"http://dx.doi.org/", "doi:", "DOI:",
	} {
		s = strings.TrimPrefix(s, prefix)
	}
	return strings.TrimSpace(s)
}

// FormatStatus returns the DOI status derivable from the string alone:
// unknown for empty or malformed input, valid for a well-formed DOI that
// has not been resolved yet.
func FormatStatus(doi string) types.DOIStatus {
	if doi == "" || !IsDOI(doi) {
		return types.DOIUnknown
	}
	return types.DOIValid
}
