// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/reaction-engine/internal/tsv"
	"github.com/pdiddy/reaction-engine/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.StoreConfig{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetOrCreateReactionDedup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Same chemistry written three different ways.
	variants := []string{
		`$\ce{e_{aq}^{-} + O_2 -> O_2^{.-}}$`,
		`\ce{e_{aq}^- + O_2 \rightarrow O_2^{.-}}`,
		`e_{aq}^{-} + O_2 -> O_2^{.-}`,
	}

	firstID, created, err := s.GetOrCreateReaction(ctx, ReactionInput{
		TableNo: 6, FormulaLaTeX: variants[0],
	})
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Error("first insert reported created=false")
	}

	for _, v := range variants[1:] {
		id, created, err := s.GetOrCreateReaction(ctx, ReactionInput{
			TableNo: 6, FormulaLaTeX: v,
		})
		if err != nil {
			t.Fatalf("variant %q: %v", v, err)
		}
		if created {
			t.Errorf("variant %q created a new reaction", v)
		}
		if id != firstID {
			t.Errorf("variant %q id = %d, want %d", v, id, firstID)
		}
	}

	// Same formula in a different table is a different reaction.
	otherID, created, err := s.GetOrCreateReaction(ctx, ReactionInput{
		TableNo: 7, FormulaLaTeX: variants[0],
	})
	if err != nil {
		t.Fatal(err)
	}
	if !created || otherID == firstID {
		t.Errorf("cross-table insert: id=%d created=%v", otherID, created)
	}
}

func TestGetOrCreateReactionKeepsEarlierFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, _, err := s.GetOrCreateReaction(ctx, ReactionInput{
		TableNo:      6,
		FormulaLaTeX: `\ce{OH + OH -> H_2O_2}`,
		Name:         "Hydroxyl recombination",
		SequenceNo:   "6-010",
	})
	if err != nil {
		t.Fatal(err)
	}

	// A later import without name or sequence must not blank them.
	if _, _, err := s.GetOrCreateReaction(ctx, ReactionInput{
		TableNo:      6,
		FormulaLaTeX: `\ce{OH + OH -> H_2O_2}`,
		Notes:        "second pass",
	}); err != nil {
		t.Fatal(err)
	}

	detail, err := s.GetReactionWithMeasurements(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	r := detail.Reaction
	if r.Name != "Hydroxyl recombination" {
		t.Errorf("name = %q, want preserved", r.Name)
	}
	if r.SequenceNo != "6-010" {
		t.Errorf("sequence_no = %q, want preserved", r.SequenceNo)
	}
	if r.Notes != "second pass" {
		t.Errorf("notes = %q, want filled in", r.Notes)
	}
}

func TestGetOrCreateReactionEmptyFormula(t *testing.T) {
	s := newTestStore(t)
	for _, f := range []string{"", "   ", "$$"} {
		if _, _, err := s.GetOrCreateReaction(context.Background(), ReactionInput{
			TableNo: 6, FormulaLaTeX: f,
		}); err != ErrEmptyFormula {
			t.Errorf("formula %q: err = %v, want ErrEmptyFormula", f, err)
		}
	}
}

func TestReimportReplacesOnlyOwnMeasurements(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rowA := tsv.Row{Line: 1, SequenceNo: "6-001", Name: "R", Formula: `\ce{H + O_2 -> HO_2}`, Rate: "1.0 x 10^10", RefCode: "88B102"}
	rowB := rowA
	rowB.Rate = "1.2 x 10^10"
	rowB.RefCode = "90C044"

	if _, err := s.ReimportSource(ctx, 6, "a.csv", "", []tsv.Row{rowA}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ReimportSource(ctx, 6, "b.csv", "", []tsv.Row{rowB}); err != nil {
		t.Fatal(err)
	}

	reactions, err := s.ListReactions(ctx, ListOptions{Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(reactions) != 1 {
		t.Fatalf("reactions = %d, want 1", len(reactions))
	}
	id := reactions[0].ID

	detail, err := s.GetReactionWithMeasurements(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(detail.Measurements) != 2 {
		t.Fatalf("measurements = %d, want 2 (one per source)", len(detail.Measurements))
	}

	// Reimporting a.csv replaces only a.csv's contribution.
	rowA.Rate = "1.1 x 10^10"
	if _, err := s.ReimportSource(ctx, 6, "a.csv", "", []tsv.Row{rowA}); err != nil {
		t.Fatal(err)
	}
	detail, err = s.GetReactionWithMeasurements(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(detail.Measurements) != 2 {
		t.Fatalf("measurements after reimport = %d, want 2", len(detail.Measurements))
	}
	rates := map[string]bool{}
	for _, m := range detail.Measurements {
		rates[m.RateValue] = true
	}
	if !rates["1.1 x 10^10"] || !rates["1.2 x 10^10"] {
		t.Errorf("rates = %v", rates)
	}
}

func TestReimportContinuationRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rows := []tsv.Row{
		{Line: 1, SequenceNo: "6-001", Name: "R", Formula: `\ce{H + O_2 -> HO_2}`, PH: "7", Rate: "1.0 x 10^10"},
		{Line: 2, PH: "2", Rate: "2.1 x 10^10"},
	}
	sum, err := s.ReimportSource(ctx, 6, "a.csv", "", rows)
	if err != nil {
		t.Fatal(err)
	}
	if sum.ReactionsCreated != 1 || sum.Measurements != 2 {
		t.Errorf("summary = %+v, want 1 reaction, 2 measurements", sum)
	}

	reactions, err := s.ListReactions(ctx, ListOptions{Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	detail, err := s.GetReactionWithMeasurements(ctx, reactions[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(detail.Measurements) != 2 {
		t.Fatalf("measurements = %d, want 2", len(detail.Measurements))
	}
	if detail.Measurements[1].PH != "2" {
		t.Errorf("continuation pH = %q, want 2", detail.Measurements[1].PH)
	}
}

func TestReimportContinuationOfSkippedPrimaryIsReported(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// The continuation on line 3 belongs to the formula-less primary on
	// line 2, not to the reaction from line 1.
	rows := []tsv.Row{
		{Line: 1, SequenceNo: "6-001", Name: "First", Formula: `\ce{H + O_2 -> HO_2}`, PH: "7", Rate: "1.0 x 10^10"},
		{Line: 2, SequenceNo: "6-002", Name: "no formula here"},
		{Line: 3, PH: "3", Rate: "2.0 x 10^9"},
	}
	sum, err := s.ReimportSource(ctx, 6, "a.csv", "", rows)
	if err != nil {
		t.Fatal(err)
	}
	if sum.ReactionsCreated != 1 || sum.Measurements != 1 {
		t.Errorf("summary = %+v, want 1 reaction, 1 measurement", sum)
	}
	if sum.RowsSkipped != 1 || sum.RowsFailed != 1 {
		t.Errorf("summary = %+v, want 1 skipped, 1 failed", sum)
	}
	if len(sum.Issues) != 1 || sum.Issues[0].Line != 3 {
		t.Fatalf("issues = %v, want the orphaned continuation on line 3", sum.Issues)
	}

	reactions, err := s.ListReactions(ctx, ListOptions{Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	detail, err := s.GetReactionWithMeasurements(ctx, reactions[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(detail.Measurements) != 1 || detail.Measurements[0].PH != "7" {
		t.Errorf("measurements = %+v, want only the first primary's own", detail.Measurements)
	}
}

func TestReimportLeadingContinuationIsReported(t *testing.T) {
	s := newTestStore(t)

	sum, err := s.ReimportSource(context.Background(), 6, "a.csv", "", []tsv.Row{
		{Line: 1, Rate: "1.0 x 10^10"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if sum.RowsFailed != 1 || len(sum.Issues) != 1 {
		t.Fatalf("summary = %+v, want one failed row", sum)
	}
	if sum.Issues[0].Kind != "bad_row" || sum.Issues[0].Line != 1 {
		t.Errorf("issue = %+v", sum.Issues[0])
	}
}

func TestReimportSkipsEmptyFormulaRows(t *testing.T) {
	s := newTestStore(t)

	sum, err := s.ReimportSource(context.Background(), 6, "a.csv", "", []tsv.Row{
		{Line: 1, SequenceNo: "6-001", Name: "no formula here"},
		{Line: 2, SequenceNo: "6-002", Name: "R", Formula: `\ce{H + H -> H_2}`, Rate: "7.8 x 10^9"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if sum.RowsSkipped != 1 || sum.ReactionsCreated != 1 {
		t.Errorf("summary = %+v, want 1 skipped, 1 created", sum)
	}
}

func TestSetValidatedBySource(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rows := []tsv.Row{
		{Line: 1, SequenceNo: "6-001", Name: "R", Formula: `\ce{H + O_2 -> HO_2}`, Rate: "1.0 x 10^10"},
	}
	if _, err := s.ReimportSource(ctx, 6, "table6/sub_tables_images/csv/img_001.csv", "", rows); err != nil {
		t.Fatal(err)
	}

	n, err := s.SetValidatedBySource(ctx, "table6/sub_tables_images/csv/img_001.csv", true, "reviewer", "2026-01-15T10:00:00Z")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("stamped %d reactions, want 1", n)
	}

	reactions, err := s.ListReactions(ctx, ListOptions{Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	r := reactions[0]
	if !r.Validated || r.ValidatedBy != "reviewer" || r.ValidatedAt == "" {
		t.Errorf("reaction = %+v, want validated with attribution", r)
	}

	// Clearing must null the attribution, not just the flag.
	if _, err := s.SetValidatedBySource(ctx, "table6/sub_tables_images/csv/img_001.csv", false, "", ""); err != nil {
		t.Fatal(err)
	}
	reactions, err = s.ListReactions(ctx, ListOptions{Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	r = reactions[0]
	if r.Validated || r.ValidatedBy != "" || r.ValidatedAt != "" {
		t.Errorf("reaction after clear = %+v, want flag and attribution gone", r)
	}
}

func TestSetValidatedBySourceFileNameFallback(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sources := []struct {
		path    string
		formula string
	}{
		{"csv/img_001.csv", `\ce{H + O_2 -> HO_2}`},
		// Same file-name suffix and an underscore one position off; neither
		// may be claimed by the fallback match for img_001.csv.
		{"csv/other_img_001.csv", `\ce{H + H -> H_2}`},
		{"csv/imgX001.csv", `\ce{OH + OH -> H_2O_2}`},
	}
	for i, src := range sources {
		rows := []tsv.Row{
			{Line: 1, SequenceNo: fmt.Sprintf("6-%03d", i+1), Name: "R", Formula: src.formula, Rate: "1.0 x 10^10"},
		}
		if _, err := s.ReimportSource(ctx, 6, src.path, "", rows); err != nil {
			t.Fatal(err)
		}
	}

	// A legacy absolute path from another machine still matches by file name.
	n, err := s.SetValidatedBySource(ctx, `/home/elsewhere/data/csv/img_001.csv`, true, "reviewer", "")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("stamped %d reactions via fallback, want 1", n)
	}

	validated := true
	reactions, err := s.ListReactions(ctx, ListOptions{ValidatedOnly: &validated, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(reactions) != 1 || reactions[0].SourcePath != "csv/img_001.csv" {
		t.Errorf("validated reactions = %v, want only csv/img_001.csv", reactions)
	}
}

func TestUpsertReference(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.UpsertReference(ctx, "88B102", "", "", "88B102")
	if err != nil {
		t.Fatal(err)
	}
	if id == 0 {
		t.Fatal("upsert returned id 0")
	}

	// Same code again is the same reference, now with the DOI filled in.
	again, err := s.UpsertReference(ctx, "88B102", "Buxton et al. 1988", "10.1063/1.555805", "")
	if err != nil {
		t.Fatal(err)
	}
	if again != id {
		t.Errorf("second upsert id = %d, want %d", again, id)
	}

	refs, err := s.ReferencesNeedingResolution(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 1 {
		t.Fatalf("references needing resolution = %d, want 1", len(refs))
	}
	if refs[0].DOI != "10.1063/1.555805" || refs[0].DOIStatus != types.DOIValid {
		t.Errorf("reference = %+v", refs[0])
	}

	// A later upsert must not overwrite the stored DOI.
	if _, err := s.UpsertReference(ctx, "88B102", "", "10.9999/other", ""); err != nil {
		t.Fatal(err)
	}
	refs, err = s.ReferencesNeedingResolution(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if refs[0].DOI != "10.1063/1.555805" {
		t.Errorf("doi = %q, want original preserved", refs[0].DOI)
	}

	if err := s.SetReferenceDOIStatus(ctx, id, types.DOIResolved); err != nil {
		t.Fatal(err)
	}
	refs, err = s.ReferencesNeedingResolution(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 0 {
		t.Errorf("resolved reference still listed: %v", refs)
	}
}

func TestUpsertReferenceAllEmpty(t *testing.T) {
	s := newTestStore(t)
	id, err := s.UpsertReference(context.Background(), "", "", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if id != 0 {
		t.Errorf("id = %d, want 0 for empty reference", id)
	}
}

func TestSearchReactions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	inputs := []ReactionInput{
		{TableNo: 6, Name: "Hydrated electron with oxygen", FormulaLaTeX: `\ce{e_{aq}^{-} + O_2 -> O_2^{.-}}`},
		{TableNo: 6, Name: "Hydrated electron with nitrate", FormulaLaTeX: `\ce{e_{aq}^{-} + NO_3^{-} -> NO_3^{2-}}`},
		{TableNo: 8, Name: "Hydroxyl with benzene", FormulaLaTeX: `\ce{OH + C_6H_6 -> products}`},
	}
	for _, in := range inputs {
		if _, _, err := s.GetOrCreateReaction(ctx, in); err != nil {
			t.Fatal(err)
		}
	}

	hits, err := s.SearchReactions(ctx, "electron", 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits for electron = %d, want 2", len(hits))
	}

	hits, err = s.SearchReactions(ctx, "benzene", 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].TableNo != 8 {
		t.Errorf("hits for benzene = %v", hits)
	}

	// Table scope excludes other tables' matches.
	hits, err = s.SearchReactions(ctx, "electron", 8, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("table-scoped hits = %d, want 0", len(hits))
	}

	hits, err = s.SearchReactions(ctx, "   ", 0, 10)
	if err != nil || hits != nil {
		t.Errorf("blank query: hits=%v err=%v", hits, err)
	}
}

func TestSearchIndexFollowsUpdates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, _, err := s.GetOrCreateReaction(ctx, ReactionInput{
		TableNo: 6, FormulaLaTeX: `\ce{H + H -> H_2}`,
	})
	if err != nil {
		t.Fatal(err)
	}

	hits, err := s.SearchReactions(ctx, "recombination", 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Fatalf("premature hits: %v", hits)
	}

	// Naming the reaction must be visible to search without a manual
	// index rebuild.
	if _, _, err := s.GetOrCreateReaction(ctx, ReactionInput{
		TableNo: 6, FormulaLaTeX: `\ce{H + H -> H_2}`, Name: "Hydrogen atom recombination",
	}); err != nil {
		t.Fatal(err)
	}
	hits, err = s.SearchReactions(ctx, "recombination", 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != id {
		t.Errorf("hits after rename = %v", hits)
	}

	if err := s.RebuildIndex(ctx); err != nil {
		t.Fatal(err)
	}
	hits, err = s.SearchReactions(ctx, "recombination", 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Errorf("hits after rebuild = %d, want 1", len(hits))
	}
}

func TestListReactionsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.ReimportSource(ctx, 6, "a.csv", "", []tsv.Row{
		{Line: 1, SequenceNo: "6-001", Name: "Zeta reaction", Formula: `\ce{H + O_2 -> HO_2}`, Rate: "1"},
		{Line: 2, SequenceNo: "6-002", Name: "Alpha reaction", Formula: `\ce{H + H -> H_2}`, Rate: "2"},
	}); err != nil {
		t.Fatal(err)
	}

	all, err := s.ListReactions(ctx, ListOptions{Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].Name != "Alpha reaction" {
		t.Errorf("list order = %v, want alphabetical", all)
	}

	filtered, err := s.ListReactions(ctx, ListOptions{NameFilter: "zeta", Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(filtered) != 1 || filtered[0].Name != "Zeta reaction" {
		t.Errorf("filtered = %v", filtered)
	}
}

func TestStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.ReimportSource(ctx, 6, "a.csv", "", []tsv.Row{
		{Line: 1, SequenceNo: "6-001", Name: "R1", Formula: `\ce{H + O_2 -> HO_2}`, Rate: "1.0 x 10^10", RefCode: "88B102"},
		{Line: 2, PH: "2", Rate: "1.3 x 10^10"},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ReimportSource(ctx, 8, "b.csv", "", []tsv.Row{
		{Line: 1, SequenceNo: "8-001", Name: "R2", Formula: `\ce{OH + OH -> H_2O_2}`, Rate: "5.5 x 10^9"},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetValidatedBySource(ctx, "a.csv", true, "reviewer", ""); err != nil {
		t.Fatal(err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Totals.Reactions != 2 || stats.Totals.Measurements != 3 {
		t.Errorf("totals = %+v", stats.Totals)
	}
	if stats.Totals.ReactionsValidated != 1 || stats.Totals.ReactionsUnvalidated != 1 {
		t.Errorf("validation split = %+v", stats.Totals)
	}
	if stats.Totals.References != 1 {
		t.Errorf("references = %d, want 1", stats.Totals.References)
	}
	if stats.Totals.OrphanMeasurements != 0 {
		t.Errorf("orphans = %d", stats.Totals.OrphanMeasurements)
	}

	byTable := map[int]TableStats{}
	for _, ts := range stats.PerTable {
		byTable[ts.TableNo] = ts
	}
	if byTable[6].Reactions != 1 || byTable[6].Measurements != 2 {
		t.Errorf("table 6 = %+v", byTable[6])
	}
	if byTable[8].Reactions != 1 || byTable[8].Measurements != 1 {
		t.Errorf("table 8 = %+v", byTable[8])
	}
}

func TestExport(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	dir := t.TempDir()

	if _, err := s.ReimportSource(ctx, 6, "a.csv", "", []tsv.Row{
		{Line: 1, SequenceNo: "6-001", Name: "R1", Formula: `\ce{H + O_2 -> HO_2}`, Rate: "1.0 x 10^10", RefCode: "88B102"},
	}); err != nil {
		t.Fatal(err)
	}

	yamlPath := filepath.Join(dir, "out.yaml")
	if err := s.ExportYAML(ctx, yamlPath, ListOptions{}); err != nil {
		t.Fatal(err)
	}
	jsonPath := filepath.Join(dir, "out.json")
	if err := s.ExportJSON(ctx, jsonPath, ListOptions{}); err != nil {
		t.Fatal(err)
	}

	for _, p := range []string{yamlPath, jsonPath} {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatal(err)
		}
		if len(data) == 0 {
			t.Errorf("%s is empty", p)
		}
	}
}

func TestSwapDatabase(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	livePath := filepath.Join(dir, DBFileName)
	live, err := NewStoreAt(livePath, types.StoreConfig{DataDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := live.GetOrCreateReaction(ctx, ReactionInput{
		TableNo: 6, FormulaLaTeX: `\ce{old + old -> old}`,
	}); err != nil {
		t.Fatal(err)
	}
	if err := live.Close(); err != nil {
		t.Fatal(err)
	}

	buildPath := livePath + ".rebuild"
	build, err := NewStoreAt(buildPath, types.StoreConfig{DataDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := build.GetOrCreateReaction(ctx, ReactionInput{
		TableNo: 6, FormulaLaTeX: `\ce{new + new -> new}`, Name: "fresh",
	}); err != nil {
		t.Fatal(err)
	}
	if err := build.Close(); err != nil {
		t.Fatal(err)
	}

	old := SwapRetryDelay
	SwapRetryDelay = time.Millisecond
	defer func() { SwapRetryDelay = old }()

	if err := SwapDatabase(buildPath, livePath); err != nil {
		t.Fatalf("swap: %v", err)
	}
	if _, err := os.Stat(buildPath); !os.IsNotExist(err) {
		t.Error("build file still present after swap")
	}

	swapped, err := NewStoreAt(livePath, types.StoreConfig{DataDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer swapped.Close()
	reactions, err := swapped.ListReactions(ctx, ListOptions{Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(reactions) != 1 || reactions[0].Name != "fresh" {
		t.Errorf("reactions after swap = %v", reactions)
	}
}

func TestSwapRetriesTransientFailures(t *testing.T) {
	old := SwapRetryDelay
	SwapRetryDelay = time.Millisecond
	defer func() { SwapRetryDelay = old }()

	attempts := 0
	err := withRetry("renaming test file", func() error {
		attempts++
		if attempts < 3 {
			return os.ErrPermission
		}
		return nil
	})
	if err != nil {
		t.Fatalf("withRetry: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}

	// Permanent failure surfaces as an in-use error after exhaustion.
	err = withRetry("renaming test file", func() error { return os.ErrPermission })
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if !strings.Contains(err.Error(), "in use") {
		t.Errorf("error = %v, want in-use wording", err)
	}
}

func TestCanonicalSourcePath(t *testing.T) {
	dataDir := t.TempDir()
	s, err := NewStore(types.StoreConfig{DataDir: dataDir})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	inside := filepath.Join(dataDir, "table6", "csv", "img_001.csv")
	if got := s.canonicalSourcePath(inside); got != "table6/csv/img_001.csv" {
		t.Errorf("inside path = %q", got)
	}
	if got := s.canonicalSourcePath("/somewhere/else/img_002.csv"); got != "img_002.csv" {
		t.Errorf("outside absolute path = %q", got)
	}
	if got := s.canonicalSourcePath(""); got != "" {
		t.Errorf("empty path = %q", got)
	}
}
