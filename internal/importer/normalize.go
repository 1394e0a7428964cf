package importer

import (
	"math"
	"strconv"
	"strings"
)

// NormalizeText trims a cell. Empty, blank and "none" (any case) cells
// become "", which stands for null.
func NormalizeText(cell string) string {
	v := strings.TrimSpace(cell)
	if strings.EqualFold(v, "none") {
		return ""
	}
	return v
}

// NormalizeCount reads a count cell. Non-numeric cells are 0; numbers are
// rounded half away from zero and clamped at 0.
func NormalizeCount(cell string) int {
	n, ok := parseNumber(cell)
	if !ok {
		return 0
	}
	return int(math.Max(0, math.Round(n)))
}

// parseNumber parses a numeric cell. Blank, NaN and infinite values are
// rejected.
func parseNumber(cell string) (float64, bool) {
	v := strings.TrimSpace(cell)
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// cell returns row[idx], or "" when the column is unresolved or the row is
// shorter than idx.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// text is NormalizeText of row[idx].
func text(row []string, idx int) string {
	return NormalizeText(cell(row, idx))
}
