package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsieve/docsieve/agents"
	"github.com/docsieve/docsieve/model"
)

func run(text string, page int, x, y, w float64, size float64) model.TextRun {
	return model.TextRun{
		Text:     text,
		Page:     page,
		BBox:     model.BBox{X: x, Y: y, Width: w, Height: size * 1.2},
		FontName: "Helvetica",
		FontSize: size,
	}
}

// prosePage has a heading and two body sentences.
func prosePage(number int) model.PageContent {
	return model.PageContent{
		Number: number,
		Width:  612,
		Height: 792,
		Runs: []model.TextRun{
			{Text: "Results", Page: number, BBox: model.BBox{X: 50, Y: 60, Width: 80, Height: 16}, FontSize: 14, Bold: true},
			run("Outcomes improved in most patients.", number, 50, 100, 300, 10),
			run("No adverse events were recorded.", number, 50, 115, 280, 10),
		},
	}
}

// tablePage carries a 3x4 numeric grid.
func tablePage(number int) model.PageContent {
	headers := []string{"Outcome", "Group A", "Group B", "P value"}
	body := [][]string{
		{"Mortality", "12", "18", "0.04"},
		{"Morbidity", "22", "25", "0.31"},
	}

	var runs []model.TextRun
	xs := []float64{10, 110, 210, 310}
	for col, h := range headers {
		r := run(h, number, xs[col], 100, 80, 10)
		r.Bold = true
		runs = append(runs, r)
	}
	for rowIdx, row := range body {
		y := 120 + float64(rowIdx)*20
		for col, cell := range row {
			runs = append(runs, run(cell, number, xs[col], y, 80, 10))
		}
	}

	return model.PageContent{Number: number, Width: 612, Height: 792, Runs: runs}
}

// figurePage carries one 80x80 grayscale raster with a caption.
func figurePage(number int) model.PageContent {
	raster := make([]byte, 80*80)
	for i := range raster {
		raster[i] = 90
	}
	return model.PageContent{
		Number: number,
		Width:  612,
		Height: 792,
		Runs: []model.TextRun{
			run("Figure 1. Baseline MRI scan of the lesion.", number, 100, 290, 240, 9),
		},
		Paints: []model.PaintEvent{{
			Raster:           raster,
			Width:            80,
			Height:           80,
			ColorSpace:       model.ColorSpaceGray,
			BitsPerComponent: 8,
			Transform:        model.Scale(80, 80).Multiply(model.Translate(100, 200)),
		}},
	}
}

func okInvoker() agents.Invoker {
	return agents.InvokerFunc(func(ctx context.Context, analyzerID string, item agents.Item, contentType model.ContentType) (model.AgentResult, error) {
		return model.AgentResult{
			AnalyzerID: analyzerID,
			Fields: map[string]model.FieldValue{
				"is_supported": {Value: "true", Confidence: 0.8},
			},
			OverallConfidence: 0.8,
		}, nil
	})
}

func TestRunEndToEnd(t *testing.T) {
	pages := []model.PageContent{prosePage(1), tablePage(2), figurePage(3)}

	orch := New(okInvoker())
	result, err := orch.Run(context.Background(), Pages(pages))
	require.NoError(t, err)

	assert.Equal(t, 3, result.Stats.Pages)
	assert.Equal(t, 0, result.Stats.PagesFailed)

	// Global chunk indices are contiguous and ascend across pages.
	require.NotEmpty(t, result.Chunks)
	lastPage := 0
	for i, chunk := range result.Chunks {
		assert.Equal(t, i, chunk.Index)
		assert.GreaterOrEqual(t, chunk.Page, lastPage)
		lastPage = chunk.Page
	}
	assert.Equal(t, len(result.Chunks), result.Citations.Len())

	require.Len(t, result.Tables, 1)
	table := result.Tables[0]
	assert.Equal(t, 2, table.Page)
	assert.Equal(t, []string{"Outcome", "Group A", "Group B", "P value"}, table.Headers)
	require.NotNil(t, table.Consensus)
	assert.Equal(t, "true", table.Consensus.Fields["is_supported"].Value)

	require.Len(t, result.Figures, 1)
	figure := result.Figures[0]
	assert.Equal(t, 3, figure.Page)
	assert.Contains(t, figure.Caption, "Baseline MRI")
	require.NotNil(t, figure.Consensus)

	assert.Equal(t, 1, result.Stats.TablesDetected)
	assert.Equal(t, 1, result.Stats.FiguresDetected)
	assert.Greater(t, result.Stats.AnalyzersInvoked, 0)
	assert.Equal(t, 0, result.Stats.AnalyzersFailed)
	assert.Greater(t, result.Stats.Duration, time.Duration(0))
}

func TestRunWithoutInvoker(t *testing.T) {
	orch := New(nil)
	result, err := orch.Run(context.Background(), Pages([]model.PageContent{tablePage(1)}))
	require.NoError(t, err)

	require.Len(t, result.Tables, 1)
	assert.Nil(t, result.Tables[0].Consensus)
	assert.Equal(t, 0, result.Stats.AnalyzersInvoked)
}

func TestRunAnalyzerFailuresKeepGeometry(t *testing.T) {
	invoker := agents.InvokerFunc(func(ctx context.Context, analyzerID string, item agents.Item, contentType model.ContentType) (model.AgentResult, error) {
		return model.AgentResult{}, errors.New("service down")
	})

	orch := New(invoker)
	result, err := orch.Run(context.Background(), Pages([]model.PageContent{tablePage(1)}))
	require.NoError(t, err)

	require.Len(t, result.Tables, 1)
	assert.Nil(t, result.Tables[0].Consensus)
	assert.Equal(t, result.Stats.AnalyzersInvoked, result.Stats.AnalyzersFailed)
	assert.Greater(t, result.Stats.AnalyzersFailed, 0)
}

type brokenIterator struct {
	pages []model.PageContent
	pos   int
}

func (it *brokenIterator) Next() (*model.PageContent, error) {
	if it.pos >= len(it.pages) {
		return nil, errors.New("torn stream")
	}
	p := &it.pages[it.pos]
	it.pos++
	return p, nil
}

func TestRunIteratorFailureAborts(t *testing.T) {
	orch := New(nil)
	_, err := orch.Run(context.Background(), &brokenIterator{pages: []model.PageContent{prosePage(1)}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "torn stream")
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	orch := New(nil)
	_, err := orch.Run(ctx, Pages([]model.PageContent{prosePage(1)}))
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunEmptyDocument(t *testing.T) {
	orch := New(nil)
	result, err := orch.Run(context.Background(), Pages(nil))
	require.NoError(t, err)
	assert.Empty(t, result.Chunks)
	assert.Equal(t, 0, result.Stats.Pages)
}

func TestPagesIteratorExhaustsOnce(t *testing.T) {
	it := Pages([]model.PageContent{prosePage(1)})

	p, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, p.Number)

	_, err = it.Next()
	assert.ErrorIs(t, err, io.EOF)
	_, err = it.Next()
	assert.ErrorIs(t, err, io.EOF)
}

type fakeCaptionReader struct {
	text string
	err  error
}

func (f *fakeCaptionReader) CaptionText(img *model.RGBAImage) (string, error) {
	return f.text, f.err
}

func TestRunCaptionReaderFallback(t *testing.T) {
	page := figurePage(1)
	page.Runs = nil // no caption-adjacent text on the page

	orch := New(nil)
	orch.SetCaptionReader(&fakeCaptionReader{text: "Figure 1. Recovered caption."})

	result, err := orch.Run(context.Background(), Pages([]model.PageContent{page}))
	require.NoError(t, err)
	require.Len(t, result.Figures, 1)
	assert.Equal(t, "Figure 1. Recovered caption.", result.Figures[0].Caption)
}

// serialCaptionReader fails the moment two CaptionText calls overlap, the
// way a single stateful OCR client would.
type serialCaptionReader struct {
	inFlight atomic.Int32
	max      atomic.Int32
	calls    atomic.Int32
}

func (s *serialCaptionReader) CaptionText(img *model.RGBAImage) (string, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		cur := s.max.Load()
		if n <= cur || s.max.CompareAndSwap(cur, n) {
			break
		}
	}
	time.Sleep(time.Millisecond)
	s.calls.Add(1)
	return "recovered", nil
}

func TestRunCaptionReaderCallsNeverOverlap(t *testing.T) {
	var pages []model.PageContent
	for i := 1; i <= 4; i++ {
		page := figurePage(i)
		page.Runs = nil
		pages = append(pages, page)
	}

	reader := &serialCaptionReader{}
	orch := New(nil)
	orch.SetCaptionReader(reader)

	result, err := orch.Run(context.Background(), Pages(pages))
	require.NoError(t, err)
	require.Len(t, result.Figures, 4)
	for _, fig := range result.Figures {
		assert.Equal(t, "recovered", fig.Caption)
	}

	assert.Equal(t, int32(4), reader.calls.Load())
	assert.Equal(t, int32(1), reader.max.Load(), "caption recovery must be sequential")
}

func TestRunCaptionReaderDoesNotOverride(t *testing.T) {
	orch := New(nil)
	orch.SetCaptionReader(&fakeCaptionReader{text: "should not be used"})

	result, err := orch.Run(context.Background(), Pages([]model.PageContent{figurePage(1)}))
	require.NoError(t, err)
	require.Len(t, result.Figures, 1)
	assert.Contains(t, result.Figures[0].Caption, "Baseline MRI")
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 2\n"), 0o600))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
	// Unset sections fall back to defaults.
	assert.Equal(t, 5.0, cfg.Tables.RowTolerance)
	assert.InDelta(t, 1.15, cfg.Index.HeadingRatio, 1e-9)

	_, err = LoadConfigFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
