package dataset

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// CategoryColumnPrefix marks a header whose column holds one category rating,
// e.g. "category:cleanliness".
const CategoryColumnPrefix = "category:"

// loadXLSX turns the first sheet into review documents keyed by header name.
// Blank cells are left out so the mapper's aliases and defaults apply.
func loadXLSX(path string) ([]any, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows")
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	var out []any
	for _, r := range rows[1:] {
		doc := map[string]any{}
		var categories []any
		for i, cell := range r {
			if i >= len(header) || header[i] == "" {
				continue
			}
			v := strings.TrimSpace(cell)
			if v == "" {
				continue
			}
			h := header[i]
			if strings.HasPrefix(strings.ToLower(h), CategoryColumnPrefix) {
				categories = append(categories, map[string]any{
					"category": strings.TrimSpace(h[len(CategoryColumnPrefix):]),
					"rating":   v,
				})
				continue
			}
			doc[h] = v
		}
		if len(doc) == 0 {
			// skip blank rows quietly
			continue
		}
		if categories != nil {
			doc["reviewCategory"] = categories
		}
		out = append(out, doc)
	}
	return out, nil
}
