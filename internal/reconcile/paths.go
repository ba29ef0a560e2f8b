// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reconcile aligns the reaction store with the per-table
// validation ledgers and the row files on disk: validated sources are
// (re)imported idempotently and stamped, unvalidated ones have their
// flags cleared, and whole-database offline rebuilds are assembled
// beside the live database and swapped in atomically.
package reconcile

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// TablePaths locates one table's files under the data directory. The
// layout mirrors the scanning workflow's output: a directory of table
// images with the row files and the validation ledger beside them.
type TablePaths struct {
	TableNo    int
	ImageDir   string
	RowDir     string
	LedgerPath string
}

// PathsFor derives the standard paths for a table.
func PathsFor(dataDir string, tableNo int) TablePaths {
	imageDir := filepath.Join(dataDir, "table"+strconv.Itoa(tableNo), "sub_tables_images")
	return TablePaths{
		TableNo:    tableNo,
		ImageDir:   imageDir,
		RowDir:     filepath.Join(imageDir, "csv"),
		LedgerPath: filepath.Join(imageDir, "validation_db.json"),
	}
}

// SourceForStem returns the row file for an image stem, preferring .csv
// over .tsv when both exist (both hold tab-delimited text).
func (p TablePaths) SourceForStem(stem string) (string, bool) {
	for _, ext := range []string{".csv", ".tsv"} {
		candidate := filepath.Join(p.RowDir, stem+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}

// ImageForStem returns the image path for a stem if the file exists.
func (p TablePaths) ImageForStem(stem string) string {
	candidate := filepath.Join(p.ImageDir, stem+".png")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}

// ListSources returns every row file in the table, .csv preferred over
// .tsv for the same stem, sorted by file name.
func (p TablePaths) ListSources() ([]string, error) {
	entries, err := os.ReadDir(p.RowDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	seen := make(map[string]bool)
	var sources []string
	for _, pass := range []string{".csv", ".tsv"} {
		for _, e := range entries {
			if e.IsDir() || filepath.Ext(e.Name()) != pass {
				continue
			}
			stem := strings.TrimSuffix(e.Name(), pass)
			if seen[stem] {
				continue
			}
			seen[stem] = true
			sources = append(sources, filepath.Join(p.RowDir, e.Name()))
		}
	}
	sort.Strings(sources)
	return sources, nil
}
