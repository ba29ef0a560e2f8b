// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

const exportLimit = 100000

// ExportYAML writes every reaction (filtered by opts) with its
// measurements to path as YAML.
func (s *Store) ExportYAML(ctx context.Context, path string, opts ListOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes every reaction (filtered by opts) with its
// measurements to path as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, path string, opts ListOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context, opts ListOptions) ([]ReactionDetail, error) {
	opts.Limit = exportLimit
	reactions, err := s.ListReactions(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ReactionDetail, 0, len(reactions))
	for _, r := range reactions {
		detail, err := s.GetReactionWithMeasurements(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *detail)
	}
	return entries, nil
}
