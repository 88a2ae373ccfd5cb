package index

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/docsieve/docsieve/model"
)

// Config holds indexer configuration.
type Config struct {
	// RowTolerance is the vertical tolerance band (page units) for grouping
	// runs into the same reading-order line.
	RowTolerance float64

	// HeadingRatio is the factor by which a chunk's dominant font size must
	// exceed the page's modal body font size to be flagged as a heading.
	HeadingRatio float64
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		RowTolerance: 5.0,
		HeadingRatio: 1.15,
	}
}

// Indexer segments document text runs into globally indexed chunks.
type Indexer struct {
	config Config
}

// New creates an indexer with default configuration.
func New() *Indexer {
	return &Indexer{config: DefaultConfig()}
}

// NewWithConfig creates an indexer with custom configuration.
func NewWithConfig(config Config) *Indexer {
	return &Indexer{config: config}
}

// Index processes all pages in order and returns the globally indexed chunk
// sequence and its citation map. A page with no extractable runs contributes
// zero chunks and does not abort the document.
func (ix *Indexer) Index(pages []model.PageContent) ([]model.TextChunk, *model.CitationMap, error) {
	perPage := make([][]model.TextChunk, len(pages))
	for i := range pages {
		perPage[i] = ix.IndexPage(&pages[i])
	}
	return ix.Reindex(perPage)
}

// IndexPage segments a single page into chunks in reading order. Index
// fields are left at zero; Reindex assigns global indices once all pages are
// segmented. Safe to call concurrently for different pages.
func (ix *Indexer) IndexPage(page *model.PageContent) []model.TextChunk {
	lines := ix.readingOrder(page.Runs)
	if len(lines) == 0 {
		return nil
	}

	bodySize := modalFontSize(lines)

	text, spans := assemble(lines)
	if len(spans) == 0 {
		return nil
	}

	boundaries := ix.chunkBoundaries(text, lines, spans, bodySize)

	var chunks []model.TextChunk
	start := 0      // byte offset of the current chunk start
	firstSpan := 0  // index of the current chunk's first span
	for si, sp := range spans {
		if !boundaries[sp.end] {
			continue
		}

		chunk := ix.buildChunk(text[start:sp.end], spans[firstSpan:si+1], page.Number, bodySize)
		if chunk.Text != "" {
			chunks = append(chunks, chunk)
		}
		start = sp.end
		firstSpan = si + 1
	}

	return chunks
}

// Reindex concatenates per-page chunk sequences in page order, assigns
// contiguous global indices starting at zero, and builds the citation map.
// This is the single sequential pass that follows any page-parallel
// segmentation.
func (ix *Indexer) Reindex(perPage [][]model.TextChunk) ([]model.TextChunk, *model.CitationMap, error) {
	var chunks []model.TextChunk
	for _, pc := range perPage {
		chunks = append(chunks, pc...)
	}
	for i := range chunks {
		chunks[i].Index = i
	}

	cm, err := model.NewCitationMap(chunks)
	if err != nil {
		return nil, nil, err
	}
	return chunks, cm, nil
}

// line is one reading-order row of runs, sorted left to right.
type line struct {
	runs []model.TextRun
	y    float64 // average top edge
	size float64 // dominant font size, weighted by text length
}

// span maps one run to its byte range within the assembled page text.
type span struct {
	run        model.TextRun
	start, end int
	lineIndex  int
	lastInLine bool
}

// readingOrder groups runs into lines by vertical proximity and sorts each
// line left to right. Whitespace-only runs are dropped; run text is
// NFC-normalized so boundary scanning sees composed characters.
func (ix *Indexer) readingOrder(runs []model.TextRun) []line {
	var usable []model.TextRun
	for _, run := range runs {
		run.Text = norm.NFC.String(run.Text)
		if strings.TrimSpace(run.Text) == "" {
			continue
		}
		usable = append(usable, run)
	}
	if len(usable) == 0 {
		return nil
	}

	sort.SliceStable(usable, func(i, j int) bool {
		if usable[i].BBox.Y != usable[j].BBox.Y {
			return usable[i].BBox.Y < usable[j].BBox.Y
		}
		return usable[i].BBox.X < usable[j].BBox.X
	})

	var lines []line
	var current []model.TextRun
	var ySum float64

	flush := func() {
		if len(current) == 0 {
			return
		}
		ln := line{runs: current, y: ySum / float64(len(current))}
		sort.SliceStable(ln.runs, func(i, j int) bool {
			return ln.runs[i].BBox.X < ln.runs[j].BBox.X
		})
		ln.size = dominantSize(ln.runs)
		lines = append(lines, ln)
		current = nil
		ySum = 0
	}

	for _, run := range usable {
		if len(current) > 0 {
			avgY := ySum / float64(len(current))
			if math.Abs(run.BBox.Y-avgY) > ix.config.RowTolerance {
				flush()
			}
		}
		current = append(current, run)
		ySum += run.BBox.Y
	}
	flush()

	return lines
}

// assemble concatenates lines into one page text, joining runs with single
// spaces, and records each run's byte range.
func assemble(lines []line) (string, []span) {
	var sb strings.Builder
	var spans []span

	for li, ln := range lines {
		for ri, run := range ln.runs {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			start := sb.Len()
			sb.WriteString(run.Text)
			spans = append(spans, span{
				run:        run,
				start:      start,
				end:        sb.Len(),
				lineIndex:  li,
				lastInLine: ri == len(ln.runs)-1,
			})
		}
	}

	return sb.String(), spans
}

// chunkBoundaries collects the set of run-end offsets at which chunks close:
// sentence endings snapped forward to the end of the run containing them,
// line ends where the font size steps across the heading threshold, and the
// end of the page. Snapping guarantees a chunk boundary never splits a run.
func (ix *Indexer) chunkBoundaries(text string, lines []line, spans []span, bodySize float64) map[int]bool {
	boundaries := make(map[int]bool)

	si := 0
	for _, p := range sentenceEnds(text) {
		for si < len(spans) && spans[si].end < p {
			si++
		}
		if si < len(spans) {
			boundaries[spans[si].end] = true
		}
	}

	// Heading-sized lines end a chunk on either side of the transition, so
	// headings never merge into adjacent body text.
	for _, sp := range spans {
		if !sp.lastInLine || sp.lineIndex+1 >= len(lines) {
			continue
		}
		cur := ix.isHeadingSize(lines[sp.lineIndex].size, bodySize)
		next := ix.isHeadingSize(lines[sp.lineIndex+1].size, bodySize)
		if cur != next {
			boundaries[sp.end] = true
		}
	}

	boundaries[spans[len(spans)-1].end] = true
	return boundaries
}

// buildChunk assembles a TextChunk from the spans it covers. The bounding
// box is the minimal union of the contributing runs' boxes.
func (ix *Indexer) buildChunk(text string, spans []span, pageNum int, bodySize float64) model.TextChunk {
	bbox := spans[0].run.BBox
	var runs []model.TextRun
	for _, sp := range spans {
		bbox = bbox.Union(sp.run.BBox)
		runs = append(runs, sp.run)
	}

	size := dominantSize(runs)
	heading := ix.isHeadingSize(size, bodySize)

	trimmed := strings.TrimSpace(text)
	return model.TextChunk{
		Text:       trimmed,
		Page:       pageNum,
		BBox:       bbox,
		IsHeading:  heading,
		IsBold:     dominantBold(runs),
		Confidence: chunkConfidence(trimmed, heading),
	}
}

// isHeadingSize reports whether a font size clears the heading threshold
// relative to the page's modal body size.
func (ix *Indexer) isHeadingSize(size, bodySize float64) bool {
	return bodySize > 0 && size >= bodySize*ix.config.HeadingRatio
}

// chunkConfidence estimates boundary certainty for a chunk. Sentences closed
// by terminal punctuation are near-certain; headings carry no punctuation
// but are delimited by font transitions; anything else is a trailing
// fragment cut by a page or font boundary.
func chunkConfidence(text string, heading bool) float64 {
	if heading {
		return 0.9
	}
	t := strings.TrimRight(text, "\"')]")
	if strings.HasSuffix(t, ".") || strings.HasSuffix(t, "!") || strings.HasSuffix(t, "?") {
		return 0.95
	}
	return 0.7
}

// dominantSize returns the length-weighted average font size of the runs.
func dominantSize(runs []model.TextRun) float64 {
	var weighted, total float64
	for _, run := range runs {
		w := float64(len(run.Text))
		weighted += run.FontSize * w
		total += w
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// dominantBold reports whether the majority of the runs' text is bold,
// weighted by text length.
func dominantBold(runs []model.TextRun) bool {
	var bold, total float64
	for _, run := range runs {
		w := float64(len(run.Text))
		if run.Bold {
			bold += w
		}
		total += w
	}
	return total > 0 && bold*2 > total
}

// modalFontSize returns the most common font size across all lines, weighted
// by text length and bucketed to half-point granularity. This approximates
// the page's body text size.
func modalFontSize(lines []line) float64 {
	weights := make(map[float64]float64)
	for _, ln := range lines {
		for _, run := range ln.runs {
			bucket := math.Round(run.FontSize*2) / 2
			weights[bucket] += float64(len(run.Text))
		}
	}

	var mode, best float64
	for size, w := range weights {
		if w > best || (w == best && size < mode) {
			mode = size
			best = w
		}
	}
	return mode
}
