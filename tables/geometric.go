package tables

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/docsieve/docsieve/model"
)

// GeometricDetector implements table detection using geometric heuristics.
// It analyzes spatial relationships between text runs to identify tabular
// structures based on row grouping and column alignment patterns.
type GeometricDetector struct {
	config Config
}

// NewGeometricDetector creates a new geometric table detector with default
// configuration.
func NewGeometricDetector() *GeometricDetector {
	return &GeometricDetector{
		config: DefaultConfig(),
	}
}

// Name returns the detector's identifier ("geometric").
func (d *GeometricDetector) Name() string {
	return "geometric"
}

// Configure sets the detector configuration.
func (d *GeometricDetector) Configure(config Config) error {
	d.config = config
	return nil
}

// tableRow is one horizontal band of runs on the page, with its detected
// column cluster centers.
type tableRow struct {
	runs    []model.TextRun // sorted left to right
	y       float64         // reference vertical position (average run top)
	columns []float64       // sorted column cluster centers
}

// candidate is a table region before confidence filtering.
type candidate struct {
	table     *model.ExtractedTable
	rows      []tableRow
	colCount  int
	baseScore float64 // confidence excluding the overlap factor
}

// Detect finds tables on a page. A page with no runs, or with text arranged
// in a single column, yields zero tables; neither case is an error.
func (d *GeometricDetector) Detect(page *model.PageContent) ([]*model.ExtractedTable, error) {
	if page == nil || len(page.Runs) == 0 {
		return nil, nil
	}

	rows := d.groupRows(page.Runs)
	for i := range rows {
		rows[i].columns = d.clusterColumns(rows[i].runs)
	}

	candidates := d.findRegions(rows, page.Number)
	if len(candidates) == 0 {
		return nil, nil
	}

	// The overlap factor needs the full candidate set, so it is applied in
	// a second pass.
	var tables []*model.ExtractedTable
	for i, c := range candidates {
		overlap := 1.0
		for j, other := range candidates {
			if i != j && c.table.BBox.Intersects(other.table.BBox) {
				overlap = 0
				break
			}
		}

		c.table.StructuralConfidence = c.baseScore + overlap*overlapWeight
		if c.table.StructuralConfidence >= d.config.MinConfidence {
			tables = append(tables, c.table)
		}
	}

	return tables, nil
}

// Confidence factor weights. They sum to 1 so the score stays in [0, 1].
const (
	stabilityWeight = 0.30
	fillWeight      = 0.25
	fontWeight      = 0.15
	numericWeight   = 0.15
	overlapWeight   = 0.15
)

// groupRows sorts runs by vertical position and partitions them into rows.
// A run joins the current row while its top edge is within RowTolerance of
// the row's average top edge; otherwise it starts a new row. Runs within
// each row are sorted left to right.
func (d *GeometricDetector) groupRows(runs []model.TextRun) []tableRow {
	sorted := make([]model.TextRun, len(runs))
	copy(sorted, runs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].BBox.Y != sorted[j].BBox.Y {
			return sorted[i].BBox.Y < sorted[j].BBox.Y
		}
		return sorted[i].BBox.X < sorted[j].BBox.X
	})

	var rows []tableRow
	var current []model.TextRun
	var ySum float64

	flush := func() {
		if len(current) == 0 {
			return
		}
		row := tableRow{runs: current, y: ySum / float64(len(current))}
		sort.SliceStable(row.runs, func(i, j int) bool {
			return row.runs[i].BBox.X < row.runs[j].BBox.X
		})
		rows = append(rows, row)
		current = nil
		ySum = 0
	}

	for _, run := range sorted {
		if len(current) > 0 {
			avgY := ySum / float64(len(current))
			if math.Abs(run.BBox.Y-avgY) > d.config.RowTolerance {
				flush()
			}
		}
		current = append(current, run)
		ySum += run.BBox.Y
	}
	flush()

	return rows
}

// clusterColumns clusters a row's run x-positions into column centers. Two
// positions merge into the same cluster when they are within
// ColumnTolerance; the cluster center is the running average of its members.
func (d *GeometricDetector) clusterColumns(runs []model.TextRun) []float64 {
	if len(runs) == 0 {
		return nil
	}

	xs := make([]float64, len(runs))
	for i, run := range runs {
		xs[i] = run.BBox.X
	}
	sort.Float64s(xs)

	centers := []float64{xs[0]}
	counts := []int{1}

	for _, x := range xs[1:] {
		last := len(centers) - 1
		if x-centers[last] <= d.config.ColumnTolerance {
			counts[last]++
			centers[last] += (x - centers[last]) / float64(counts[last])
		} else {
			centers = append(centers, x)
			counts = append(counts, 1)
		}
	}

	return centers
}

// findRegions scans consecutive rows for runs of at least MinTableRows rows
// sharing a consistent column count (within one) and overlapping column
// positions. Each qualifying region becomes one table candidate; rows
// belonging to one region are not revisited for the next.
func (d *GeometricDetector) findRegions(rows []tableRow, pageNum int) []candidate {
	var candidates []candidate

	for i := 0; i < len(rows); {
		base := rows[i]
		if len(base.columns) < d.config.MinColumns {
			i++
			continue
		}

		j := i + 1
		for j < len(rows) {
			next := rows[j]
			if absInt(len(next.columns)-len(base.columns)) > 1 {
				break
			}
			if !d.columnsOverlap(base.columns, next.columns) {
				break
			}
			j++
		}

		if j-i >= d.config.MinTableRows {
			region := rows[i:j]
			candidates = append(candidates, d.buildCandidate(region, pageNum))
			i = j
		} else {
			i++
		}
	}

	return candidates
}

// columnsOverlap reports whether at least half of a row's column centers lie
// within twice the column tolerance of the reference columns.
func (d *GeometricDetector) columnsOverlap(ref, cols []float64) bool {
	if len(cols) == 0 {
		return false
	}

	matched := 0
	for _, c := range cols {
		for _, r := range ref {
			if math.Abs(c-r) <= d.config.ColumnTolerance*2 {
				matched++
				break
			}
		}
	}

	return float64(matched)/float64(len(cols)) >= 0.5
}

// buildCandidate assembles an ExtractedTable from a region of rows. The
// first row becomes the header row; canonical column positions are the
// clustered centers of every region row's columns.
func (d *GeometricDetector) buildCandidate(region []tableRow, pageNum int) candidate {
	columns := d.canonicalColumns(region)

	headers := d.rowCells(region[0], columns)
	body := make([][]string, 0, len(region)-1)
	for _, row := range region[1:] {
		body = append(body, d.rowCells(row, columns))
	}

	bbox := region[0].runs[0].BBox
	for _, row := range region {
		for _, run := range row.runs {
			bbox = bbox.Union(run.BBox)
		}
	}

	table := &model.ExtractedTable{
		ID:              uuid.NewString(),
		Page:            pageNum,
		Headers:         headers,
		Rows:            body,
		ColumnPositions: columns,
		BBox:            bbox,
	}

	base := d.stabilityScore(region, len(columns))*stabilityWeight +
		d.fillScore(table)*fillWeight +
		d.fontContrastScore(region)*fontWeight +
		d.numericColumnScore(table)*numericWeight

	return candidate{table: table, rows: region, colCount: len(columns), baseScore: base}
}

// canonicalColumns merges all region rows' column centers into one sorted
// cluster set, so that every row's cells map onto the same column axis.
func (d *GeometricDetector) canonicalColumns(region []tableRow) []float64 {
	var all []float64
	for _, row := range region {
		all = append(all, row.columns...)
	}
	sort.Float64s(all)

	centers := []float64{all[0]}
	counts := []int{1}
	for _, x := range all[1:] {
		last := len(centers) - 1
		if x-centers[last] <= d.config.ColumnTolerance {
			counts[last]++
			centers[last] += (x - centers[last]) / float64(counts[last])
		} else {
			centers = append(centers, x)
			counts = append(counts, 1)
		}
	}

	return centers
}

// rowCells assigns each run in a row to its nearest column position and
// returns one cell per column. Columns with no nearby run get an empty
// string; multiple runs landing in one column are space-joined.
func (d *GeometricDetector) rowCells(row tableRow, columns []float64) []string {
	cells := make([]string, len(columns))

	for _, run := range row.runs {
		best := 0
		bestDist := math.Abs(run.BBox.X - columns[0])
		for c := 1; c < len(columns); c++ {
			if dist := math.Abs(run.BBox.X - columns[c]); dist < bestDist {
				best = c
				bestDist = dist
			}
		}

		if cells[best] != "" {
			cells[best] += " "
		}
		cells[best] += run.Text
	}

	return cells
}

// stabilityScore measures the fraction of region rows whose own column
// count matches the canonical column count exactly.
func (d *GeometricDetector) stabilityScore(region []tableRow, colCount int) float64 {
	if len(region) == 0 {
		return 0
	}

	exact := 0
	for _, row := range region {
		if len(row.columns) == colCount {
			exact++
		}
	}

	return float64(exact) / float64(len(region))
}

// fillScore measures the fraction of cells (header and body) that are
// non-empty.
func (d *GeometricDetector) fillScore(t *model.ExtractedTable) float64 {
	total := len(t.Headers) * (len(t.Rows) + 1)
	if total == 0 {
		return 0
	}

	filled := 0
	for _, h := range t.Headers {
		if h != "" {
			filled++
		}
	}
	for _, row := range t.Rows {
		for _, cell := range row {
			if cell != "" {
				filled++
			}
		}
	}

	return float64(filled) / float64(total)
}

// fontContrastScore compares the header row's dominant font against the
// body rows'. A bold header over a non-bold body, or a clearly larger
// header font, scores 1; a marginally larger header font scores 0.5.
func (d *GeometricDetector) fontContrastScore(region []tableRow) float64 {
	if len(region) < 2 {
		return 0
	}

	headerSize, headerBold := dominantFont(region[0].runs)

	var bodyRuns []model.TextRun
	for _, row := range region[1:] {
		bodyRuns = append(bodyRuns, row.runs...)
	}
	bodySize, bodyBold := dominantFont(bodyRuns)

	switch {
	case headerBold && !bodyBold:
		return 1
	case headerSize > bodySize*1.05:
		return 1
	case headerSize > bodySize:
		return 0.5
	default:
		return 0
	}
}

// dominantFont returns the average font size of the runs and whether the
// majority of them are bold.
func dominantFont(runs []model.TextRun) (size float64, bold bool) {
	if len(runs) == 0 {
		return 0, false
	}

	boldCount := 0
	for _, run := range runs {
		size += run.FontSize
		if run.Bold {
			boldCount++
		}
	}

	return size / float64(len(runs)), boldCount*2 > len(runs)
}

// numericColumnScore returns 1 if the table has at least one plausible
// numeric column: a column where the configured fraction of non-empty body
// cells parse as numbers.
func (d *GeometricDetector) numericColumnScore(t *model.ExtractedTable) float64 {
	if len(t.Rows) == 0 {
		return 0
	}

	for col := 0; col < len(t.Headers); col++ {
		numeric, nonEmpty := 0, 0
		for _, row := range t.Rows {
			cell := strings.TrimSpace(row[col])
			if cell == "" {
				continue
			}
			nonEmpty++
			if isNumericCell(cell) {
				numeric++
			}
		}
		if nonEmpty > 0 && float64(numeric)/float64(nonEmpty) >= d.config.NumericColumnRatio {
			return 1
		}
	}

	return 0
}

// isNumericCell reports whether a cell holds a number, tolerating common
// table decorations such as thousands separators, percent signs, and
// parenthesized values.
func isNumericCell(s string) bool {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "()")
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return false
	}

	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
