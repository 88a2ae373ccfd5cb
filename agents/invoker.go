package agents

import (
	"context"
	"fmt"
	"net/http"

	"github.com/docsieve/docsieve/model"
)

// Item is the unit of analyzer work. Exactly one of Table or Figure is set.
type Item struct {
	Table  *model.ExtractedTable
	Figure *model.ExtractedFigure
}

// TableItem wraps a detected table for analyzer invocation.
func TableItem(table *model.ExtractedTable) Item {
	return Item{Table: table}
}

// FigureItem wraps an extracted figure for analyzer invocation.
func FigureItem(figure *model.ExtractedFigure) Item {
	return Item{Figure: figure}
}

// ID returns the underlying item's identifier.
func (it Item) ID() string {
	if it.Table != nil {
		return it.Table.ID
	}
	if it.Figure != nil {
		return it.Figure.ID
	}
	return ""
}

// Page returns the page the item was detected on.
func (it Item) Page() int {
	if it.Table != nil {
		return it.Table.Page
	}
	if it.Figure != nil {
		return it.Figure.Page
	}
	return 0
}

// Text returns the item's textual rendering: Markdown for a table, the
// caption for a figure.
func (it Item) Text() string {
	if it.Table != nil {
		return it.Table.ToMarkdown()
	}
	if it.Figure != nil {
		return it.Figure.Caption
	}
	return ""
}

// Invoker invokes a single analyzer against a detected item. Implementations
// are expected to be service-backed and individually fallible; the context
// carries the per-call timeout.
type Invoker interface {
	Invoke(ctx context.Context, analyzerID string, item Item, contentType model.ContentType) (model.AgentResult, error)
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(ctx context.Context, analyzerID string, item Item, contentType model.ContentType) (model.AgentResult, error)

func (f InvokerFunc) Invoke(ctx context.Context, analyzerID string, item Item, contentType model.ContentType) (model.AgentResult, error) {
	return f(ctx, analyzerID, item, contentType)
}

// AnalyzerError describes a failed analyzer call. Status is the HTTP status
// when the analyzer replied, or zero for transport-level failures.
type AnalyzerError struct {
	AnalyzerID string
	Status     int
	Err        error
}

func (e *AnalyzerError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("analyzer %s: status %d: %v", e.AnalyzerID, e.Status, e.Err)
	}
	return fmt.Sprintf("analyzer %s: %v", e.AnalyzerID, e.Err)
}

func (e *AnalyzerError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is transient. Transport errors and
// throttling or server statuses are retryable; client errors are not.
func (e *AnalyzerError) Retryable() bool {
	if e.Status == 0 {
		return true
	}
	switch e.Status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
