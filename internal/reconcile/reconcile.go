// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reconcile

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/reaction-engine/internal/ledger"
	"github.com/pdiddy/reaction-engine/internal/store"
	"github.com/pdiddy/reaction-engine/internal/tsv"
	"github.com/pdiddy/reaction-engine/pkg/types"
)

// Sync reconciles the store with every table's validation ledger. For a
// validated entry with a resolvable row file the source is reimported
// and its reactions stamped validated; for an unvalidated entry only the
// flags are cleared. A validated entry with no row file on disk is
// reported as an issue, not an error. Progress lines go to w; pass
// io.Discard to silence them.
func Sync(ctx context.Context, st *store.Store, dataDir string, cfg types.SyncConfig, w io.Writer) (types.SyncSummary, error) {
	var sum types.SyncSummary

	tables := cfg.Tables
	if len(tables) == 0 {
		tables = types.DefaultTables
	}

	for _, tableNo := range tables {
		paths := PathsFor(dataDir, tableNo)
		if _, err := os.Stat(paths.LedgerPath); os.IsNotExist(err) {
			continue
		}

		led, err := ledger.Load(paths.LedgerPath)
		if err != nil {
			sum.Issues = append(sum.Issues, types.Issue{
				Kind:       "ledger_load_failed",
				TableNo:    tableNo,
				SourcePath: paths.LedgerPath,
				Message:    err.Error(),
			})
			continue
		}

		images := make([]string, 0, len(led))
		for img := range led {
			images = append(images, img)
		}
		sort.Strings(images)

		for _, img := range images {
			if err := ctx.Err(); err != nil {
				return sum, err
			}
			entry := led[img]
			stem := strings.TrimSuffix(img, filepath.Ext(img))
			source, ok := paths.SourceForStem(stem)

			if entry.Validated && !ok {
				sum.Issues = append(sum.Issues, types.Issue{
					Kind:    "missing_source",
					TableNo: tableNo,
					Image:   img,
					Message: "validated entry has no row file",
				})
				continue
			}

			if cfg.DryRun {
				if entry.Validated {
					fmt.Fprintf(w, "would import %s\n", source)
					sum.Imported++
				}
				continue
			}

			if !entry.Validated {
				if !ok {
					continue
				}
				n, err := st.SetValidatedBySource(ctx, source, false, "", "")
				if err != nil {
					return sum, fmt.Errorf("clearing validation for %s: %w", source, err)
				}
				sum.Cleared += int(n)
				continue
			}

			rows, err := tsv.ReadFile(source)
			if err != nil {
				sum.Issues = append(sum.Issues, types.Issue{
					Kind:       "import_failed",
					TableNo:    tableNo,
					Image:      img,
					SourcePath: source,
					Message:    err.Error(),
				})
				continue
			}

			imp, err := st.ReimportSource(ctx, tableNo, source, paths.ImageForStem(stem), rows)
			if err != nil {
				sum.Issues = append(sum.Issues, types.Issue{
					Kind:       "import_failed",
					TableNo:    tableNo,
					Image:      img,
					SourcePath: source,
					Message:    err.Error(),
				})
				continue
			}
			sum.Import.Merge(imp)
			sum.Imported++

			n, err := st.SetValidatedBySource(ctx, source, true, entry.By, entry.At)
			if err != nil {
				return sum, fmt.Errorf("stamping validation for %s: %w", source, err)
			}
			if n == 0 {
				sum.Issues = append(sum.Issues, types.Issue{
					Kind:       "update_failed",
					TableNo:    tableNo,
					Image:      img,
					SourcePath: source,
					Message:    "no reactions matched source after import",
				})
			}
			sum.RowsValidated += int(n)
			fmt.Fprintf(w, "validated %s (%d reactions)\n", source, n)
		}
	}

	sum.Issues = append(sum.Issues, sum.Import.Issues...)
	sum.Import.Issues = nil
	return sum, nil
}

// ImportAll bulk-imports every row file found for the given tables,
// ignoring ledger state. Validation flags are left as they are.
func ImportAll(ctx context.Context, st *store.Store, dataDir string, tables []int, w io.Writer) (types.ImportSummary, error) {
	var sum types.ImportSummary

	if len(tables) == 0 {
		tables = types.DefaultTables
	}

	for _, tableNo := range tables {
		paths := PathsFor(dataDir, tableNo)
		sources, err := paths.ListSources()
		if err != nil {
			return sum, fmt.Errorf("listing sources for table %d: %w", tableNo, err)
		}
		for _, source := range sources {
			if err := ctx.Err(); err != nil {
				return sum, err
			}
			rows, err := tsv.ReadFile(source)
			if err != nil {
				sum.Issues = append(sum.Issues, types.Issue{
					Kind:       "import_failed",
					TableNo:    tableNo,
					SourcePath: source,
					Message:    err.Error(),
				})
				continue
			}
			stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
			imp, err := st.ReimportSource(ctx, tableNo, source, paths.ImageForStem(stem), rows)
			if err != nil {
				sum.Issues = append(sum.Issues, types.Issue{
					Kind:       "import_failed",
					TableNo:    tableNo,
					SourcePath: source,
					Message:    err.Error(),
				})
				continue
			}
			sum.Merge(imp)
			fmt.Fprintf(w, "imported %s (%d measurements)\n", source, imp.Measurements)
		}
	}

	return sum, nil
}

// RebuildOffline assembles a fresh database beside the live one, runs a
// full ledger reconciliation into it, and swaps it into place. The live
// database stays readable until the swap.
func RebuildOffline(ctx context.Context, cfg types.StoreConfig, sync types.SyncConfig, w io.Writer) (types.SyncSummary, error) {
	livePath := filepath.Join(cfg.DataDir, store.DBFileName)
	buildPath := livePath + ".rebuild"

	// A crashed previous rebuild may have left a stale build file.
	for _, stale := range []string{buildPath, buildPath + "-wal", buildPath + "-shm"} {
		if err := os.Remove(stale); err != nil && !os.IsNotExist(err) {
			return types.SyncSummary{}, fmt.Errorf("removing stale build file %s: %w", stale, err)
		}
	}

	build, err := store.NewStoreAt(buildPath, cfg)
	if err != nil {
		return types.SyncSummary{}, fmt.Errorf("opening build database: %w", err)
	}

	sum, err := Sync(ctx, build, cfg.DataDir, sync, w)
	if err != nil {
		build.Close()
		os.Remove(buildPath)
		return sum, err
	}

	if err := build.RebuildIndex(ctx); err != nil {
		build.Close()
		return sum, fmt.Errorf("rebuilding search index: %w", err)
	}
	if err := build.Close(); err != nil {
		return sum, fmt.Errorf("closing build database: %w", err)
	}

	if err := store.SwapDatabase(buildPath, livePath); err != nil {
		return sum, err
	}
	fmt.Fprintf(w, "swapped rebuilt database into %s\n", livePath)
	return sum, nil
}
