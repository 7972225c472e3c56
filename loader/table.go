package loader

import (
	"path/filepath"
	"strings"
)

// ============================================================================
// RAW TABLE: Header + rows exactly as read from a source
// ============================================================================
// Labels are untouched (no trimming); the schema package normalizes them.
// Every row holds one cell per header column. Missing cells are "".
// ============================================================================

// RawTable is an ordered row/column structure read from one named source.
type RawTable struct {
	Name    string     `json:"name"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Len returns the number of data rows.
func (t *RawTable) Len() int { return len(t.Rows) }

// Cell returns the cell at (row, col), or "" when out of range.
func (t *RawTable) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Format identifies the container a source is read from.
type Format int

const (
	FormatUnknown Format = iota
	FormatCSV
	FormatTSV
	FormatText // delimiter sniffed from the header line
	FormatXLSX
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatTSV:
		return "tsv"
	case FormatText:
		return "text"
	case FormatXLSX:
		return "xlsx"
	default:
		return "unknown"
	}
}

// FormatFromPath picks a Format from the file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".tsv", ".tab":
		return FormatTSV
	case ".txt":
		return FormatText
	case ".xlsx":
		return FormatXLSX
	default:
		return FormatUnknown
	}
}
