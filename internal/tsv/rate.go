// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tsv

import (
	"math"
	"strconv"
	"strings"
)

var rateCleaner = strings.NewReplacer(`\times`, "x", "×", "x", "*", "x", " ", "")

// ParseRate extracts a numeric rate constant from heterogeneous textual
// forms like "5.5 x 10^9", "6.2 × 10^4", or a plain "1.23". The second
// return is false when nothing numeric could be extracted; callers keep
// the raw text either way, so a failed parse loses no information.
func ParseRate(raw string) (float64, bool) {
	s := rateCleaner.Replace(strings.TrimSpace(raw))
	if s == "" {
		return 0, false
	}
	if i := strings.Index(s, "x10^"); i >= 0 {
		mantissa, errM := strconv.ParseFloat(s[:i], 64)
		exponent, errE := strconv.Atoi(s[i+len("x10^"):])
		if errM != nil || errE != nil {
			return 0, false
		}
		return mantissa * math.Pow10(exponent), true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
