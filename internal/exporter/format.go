package exporter

import (
	"strconv"
	"unicode/utf8"
)

const (
	minColumnWidth = 8
	maxColumnWidth = 80
	// padding covers the table's filter button
	columnPadding = 3
)

// formatCell renders a cell value the way it is displayed, for width estimation
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	default:
		return ""
	}
}

// columnWidths estimates an auto-fit width per column from the header and
// every row, clamped to a readable range.
func columnWidths(headers []string, rows [][]any) []float64 {
	widths := make([]float64, len(headers))
	for i, h := range headers {
		widths[i] = float64(utf8.RuneCountInString(h))
	}
	for _, row := range rows {
		for i, v := range row {
			if i >= len(widths) {
				break
			}
			if n := float64(utf8.RuneCountInString(formatCell(v))); n > widths[i] {
				widths[i] = n
			}
		}
	}
	for i, w := range widths {
		w += columnPadding
		if w < minColumnWidth {
			w = minColumnWidth
		}
		if w > maxColumnWidth {
			w = maxColumnWidth
		}
		widths[i] = w
	}
	return widths
}
