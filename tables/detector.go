package tables

import (
	"github.com/docsieve/docsieve/model"
)

// Detector is the interface for table detection algorithms.
type Detector interface {
	// Detect finds tables on a single page.
	Detect(page *model.PageContent) ([]*model.ExtractedTable, error)

	// Name returns the detector name.
	Name() string

	// Configure sets detector parameters.
	Configure(config Config) error
}

// Config holds detector configuration.
type Config struct {
	// RowTolerance is the maximum vertical distance (page units) between a
	// run and its row's reference position for the run to join that row.
	RowTolerance float64

	// ColumnTolerance is the maximum horizontal distance between two run
	// x-positions for them to merge into the same column cluster.
	ColumnTolerance float64

	// MinTableRows is the minimum number of consecutive structurally
	// consistent rows required to form a table candidate (header included).
	MinTableRows int

	// MinColumns is the minimum number of columns for a valid table row.
	MinColumns int

	// MinConfidence is the structural confidence threshold below which a
	// candidate is rejected.
	MinConfidence float64

	// NumericColumnRatio is the fraction of body cells in a column that
	// must parse as numeric for the column to count as a numeric column.
	NumericColumnRatio float64
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		RowTolerance:       5.0,
		ColumnTolerance:    10.0,
		MinTableRows:       3,
		MinColumns:         2,
		MinConfidence:      0.5,
		NumericColumnRatio: 0.6,
	}
}
