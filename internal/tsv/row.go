// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tsv parses the tab-delimited row files produced by the OCR
// correction workflow. Each primary row carries seven fixed columns:
// sequence number, name, formula, pH, rate, comments, reference code.
package tsv

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"
)

// NumFields is the fixed column count of a row file.
const NumFields = 7

// refCodeRe matches short literature codes like "83R031": two digits,
// a letter, then the running number.
var refCodeRe = regexp.MustCompile(`^\d{2}[A-Za-z]\d{3,4}$`)

// IsReferenceCode reports whether a token looks like a literature code.
func IsReferenceCode(s string) bool {
	return refCodeRe.MatchString(strings.TrimSpace(s))
}

// Row is one parsed line of a row file. All fields are whitespace-trimmed.
type Row struct {
	// Line is the 1-based physical line number in the source file.
	Line int

	SequenceNo string
	Name       string
	Formula    string
	PH         string
	Rate       string
	Comments   string
	RefCode    string
}

// IsContinuation reports whether the row supplies only measurement data
// for the preceding primary row: its sequence number, name, and formula
// are all empty. A primary row with a genuinely empty sequence number and
// name is indistinguishable from a continuation; that ambiguity is
// inherited from the source format.
func (r Row) IsContinuation() bool {
	return r.SequenceNo == "" && r.Name == "" && r.Formula == ""
}

// ParseLine splits one physical line on literal tab characters into a
// seven-field Row. Short lines are padded with empty fields. Lines with
// extra fields (malformed upstream corrections) fold the extras into the
// comments field in order, except that a final token matching the
// reference-code pattern is peeled off into the reference field.
func ParseLine(line string) Row {
	fields := strings.Split(line, "\t")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	for len(fields) < NumFields {
		fields = append(fields, "")
	}

	comments := fields[5]
	refCode := fields[6]
	if len(fields) > NumFields {
		extras := fields[6:]
		refCode = ""
		if last := extras[len(extras)-1]; IsReferenceCode(last) {
			refCode = last
			extras = extras[:len(extras)-1]
		}
		parts := make([]string, 0, 1+len(extras))
		if comments != "" {
			parts = append(parts, comments)
		}
		for _, e := range extras {
			if e != "" {
				parts = append(parts, e)
			}
		}
		comments = strings.Join(parts, " ")
	}

	return Row{
		SequenceNo: fields[0],
		Name:       fields[1],
		Formula:    fields[2],
		PH:         fields[3],
		Rate:       fields[4],
		Comments:   comments,
		RefCode:    refCode,
	}
}

// ReadRows parses every non-blank line from r in order.
func ReadRows(r io.Reader) ([]Row, error) {
	var rows []Row
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		row := ParseLine(text)
		row.Line = line
		rows = append(rows, row)
	}
	return rows, sc.Err()
}

// ReadFile parses a row file from disk.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRows(f)
}
