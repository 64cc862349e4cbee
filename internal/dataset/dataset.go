// Package dataset provides the bundled fallback reviews used whenever the
// upstream cannot supply data.
package dataset

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"review-insights-go/internal/hostaway"
	"review-insights-go/internal/types"
)

//go:embed fallback_reviews.json
var fallbackJSON []byte

// Embedded returns the bundled fallback reviews.
func Embedded() ([]types.RawReview, error) {
	var out []types.RawReview
	if err := json.Unmarshal(fallbackJSON, &out); err != nil {
		return nil, fmt.Errorf("decode embedded dataset: %w", err)
	}
	return out, nil
}

// Load reads a fallback dataset from path. JSON files hold an array of review
// documents; XLSX files hold one review per row under a header row. Both go
// through the upstream mapper so aliased field names are tolerated.
func Load(path string, m *hostaway.Mapper) ([]types.RawReview, types.IngestionStats, error) {
	var docs []any
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		docs, err = loadJSON(path)
	case ".xlsx":
		docs, err = loadXLSX(path)
	default:
		return nil, types.IngestionStats{}, fmt.Errorf("unsupported dataset format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, types.IngestionStats{}, err
	}
	reviews, stats := m.MapAll(docs)
	return reviews, stats, nil
}

func loadJSON(path string) ([]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	var docs []any
	if err := json.Unmarshal(b, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return docs, nil
}
