package model

import "strings"

// ExtractedTable is a table recovered from glyph geometry on a single page.
// Every row has exactly len(Headers) cells, and ColumnPositions has one
// entry per header column. A table may later gain a ConsensusResult from
// the analyzer pipeline; the geometric fields never change after detection.
type ExtractedTable struct {
	ID                   string
	Page                 int
	Headers              []string
	Rows                 [][]string
	ColumnPositions      []float64
	BBox                 BBox
	StructuralConfidence float64 // 0-1

	// Consensus is nil until (and unless) analyzer enhancement succeeds.
	Consensus *ConsensusResult
}

// ColumnCount returns the number of columns.
func (t *ExtractedTable) ColumnCount() int {
	return len(t.Headers)
}

// RowCount returns the number of body rows (excluding the header row).
func (t *ExtractedTable) RowCount() int {
	return len(t.Rows)
}

// CellText returns the concatenation of headers and all cells, used for
// content classification and analyzer prompts.
func (t *ExtractedTable) CellText() string {
	var sb strings.Builder
	sb.WriteString(strings.Join(t.Headers, " "))
	for _, row := range t.Rows {
		sb.WriteString(" ")
		sb.WriteString(strings.Join(row, " "))
	}
	return sb.String()
}

// ToMarkdown converts the table to markdown format.
func (t *ExtractedTable) ToMarkdown() string {
	if len(t.Headers) == 0 {
		return ""
	}

	var sb strings.Builder

	for _, h := range t.Headers {
		sb.WriteString("| ")
		sb.WriteString(strings.ReplaceAll(h, "\n", " "))
		sb.WriteString(" ")
	}
	sb.WriteString("|\n")

	for range t.Headers {
		sb.WriteString("|---")
	}
	sb.WriteString("|\n")

	for _, row := range t.Rows {
		for _, cell := range row {
			sb.WriteString("| ")
			sb.WriteString(strings.ReplaceAll(cell, "\n", " "))
			sb.WriteString(" ")
		}
		sb.WriteString("|\n")
	}

	return sb.String()
}

// ToCSV converts the table to CSV format, header row first.
func (t *ExtractedTable) ToCSV() string {
	var sb strings.Builder
	writeRow := func(cells []string) {
		for j, cell := range cells {
			if strings.ContainsAny(cell, ",\"\n") {
				cell = "\"" + strings.ReplaceAll(cell, "\"", "\"\"") + "\""
			}
			sb.WriteString(cell)
			if j < len(cells)-1 {
				sb.WriteString(",")
			}
		}
		sb.WriteString("\n")
	}

	writeRow(t.Headers)
	for _, row := range t.Rows {
		writeRow(row)
	}
	return sb.String()
}
