package model

import (
	"math"
	"strings"
	"testing"
)

func TestBBoxEdges(t *testing.T) {
	b := NewBBox(10, 20, 100, 50)

	if b.Left() != 10 {
		t.Errorf("Left() = %f, want 10", b.Left())
	}
	if b.Right() != 110 {
		t.Errorf("Right() = %f, want 110", b.Right())
	}
	if b.Top() != 20 {
		t.Errorf("Top() = %f, want 20", b.Top())
	}
	if b.Bottom() != 70 {
		t.Errorf("Bottom() = %f, want 70", b.Bottom())
	}

	c := b.Center()
	if c.X != 60 || c.Y != 45 {
		t.Errorf("Center() = (%f, %f), want (60, 45)", c.X, c.Y)
	}
}

func TestBBoxUnion(t *testing.T) {
	a := NewBBox(0, 0, 10, 10)
	b := NewBBox(20, 30, 10, 10)

	u := a.Union(b)
	if u.X != 0 || u.Y != 0 || u.Width != 30 || u.Height != 40 {
		t.Errorf("Union() = %+v, want {0 0 30 40}", u)
	}
}

func TestBBoxIntersects(t *testing.T) {
	tests := []struct {
		name string
		a, b BBox
		want bool
	}{
		{"overlapping", NewBBox(0, 0, 10, 10), NewBBox(5, 5, 10, 10), true},
		{"touching edge", NewBBox(0, 0, 10, 10), NewBBox(10, 0, 10, 10), true},
		{"disjoint horizontal", NewBBox(0, 0, 10, 10), NewBBox(20, 0, 10, 10), false},
		{"disjoint vertical", NewBBox(0, 0, 10, 10), NewBBox(0, 20, 10, 10), false},
		{"contained", NewBBox(0, 0, 100, 100), NewBBox(10, 10, 5, 5), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Intersects(tt.b); got != tt.want {
				t.Errorf("Intersects() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBBoxOverlapRatio(t *testing.T) {
	a := NewBBox(0, 0, 10, 10)
	b := NewBBox(5, 0, 10, 10)

	ratio := a.OverlapRatio(b)
	if math.Abs(ratio-0.5) > 1e-9 {
		t.Errorf("OverlapRatio() = %f, want 0.5", ratio)
	}

	far := NewBBox(100, 100, 10, 10)
	if a.OverlapRatio(far) != 0 {
		t.Errorf("OverlapRatio() of disjoint boxes should be 0")
	}
}

func TestMatrixTransform(t *testing.T) {
	m := Translate(10, 20).Multiply(Scale(2, 2))

	p := m.Transform(Point{X: 1, Y: 1})
	if p.X != 22 || p.Y != 42 {
		t.Errorf("Transform() = (%f, %f), want (22, 42)", p.X, p.Y)
	}
}

func TestMatrixTransformBBox(t *testing.T) {
	// 80x80 raster placed at (100, 200).
	m := Scale(80, 80).Multiply(Translate(100, 200))

	box := m.TransformBBox()
	if box.X != 100 || box.Y != 200 || box.Width != 80 || box.Height != 80 {
		t.Errorf("TransformBBox() = %+v, want {100 200 80 80}", box)
	}
}

func TestNewCitationMap(t *testing.T) {
	chunks := []TextChunk{
		{Index: 0, Text: "First."},
		{Index: 1, Text: "Second."},
		{Index: 2, Text: "Third."},
	}

	m, err := NewCitationMap(chunks)
	if err != nil {
		t.Fatalf("NewCitationMap() failed: %v", err)
	}
	if m.Len() != 3 {
		t.Errorf("Len() = %d, want 3", m.Len())
	}

	for i := 0; i < 3; i++ {
		c, ok := m.Get(i)
		if !ok {
			t.Fatalf("Get(%d) not found", i)
		}
		if c.Index != i {
			t.Errorf("Get(%d).Index = %d", i, c.Index)
		}
	}

	if _, ok := m.Get(3); ok {
		t.Error("Get(3) should not be found")
	}
	if _, ok := m.Get(-1); ok {
		t.Error("Get(-1) should not be found")
	}
}

func TestNewCitationMapRejectsGaps(t *testing.T) {
	chunks := []TextChunk{
		{Index: 0, Text: "First."},
		{Index: 2, Text: "Third."},
	}

	if _, err := NewCitationMap(chunks); err == nil {
		t.Error("NewCitationMap() should reject non-contiguous indices")
	}
}

func TestExtractedTableToMarkdown(t *testing.T) {
	table := &ExtractedTable{
		Headers: []string{"Group", "N"},
		Rows: [][]string{
			{"Control", "52"},
			{"Treatment", "48"},
		},
	}

	md := table.ToMarkdown()
	if !strings.Contains(md, "| Group | N |") {
		t.Errorf("markdown missing header row:\n%s", md)
	}
	if !strings.Contains(md, "|---|---|") {
		t.Errorf("markdown missing separator row:\n%s", md)
	}
	if !strings.Contains(md, "| Treatment | 48 |") {
		t.Errorf("markdown missing data row:\n%s", md)
	}
}

func TestExtractedTableToCSV(t *testing.T) {
	table := &ExtractedTable{
		Headers: []string{"Name", "Value"},
		Rows: [][]string{
			{"plain", "1"},
			{"with, comma", "2"},
			{"with \"quote\"", "3"},
		},
	}

	csv := table.ToCSV()
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if len(lines) != 4 {
		t.Fatalf("CSV has %d lines, want 4", len(lines))
	}
	if lines[0] != "Name,Value" {
		t.Errorf("header line = %q", lines[0])
	}
	if lines[2] != "\"with, comma\",2" {
		t.Errorf("comma line = %q", lines[2])
	}
	if lines[3] != "\"with \"\"quote\"\"\",3" {
		t.Errorf("quote line = %q", lines[3])
	}
}

func TestRGBAImage(t *testing.T) {
	img := NewRGBAImage(4, 3)
	if len(img.Pix) != 4*3*4 {
		t.Fatalf("Pix length = %d, want %d", len(img.Pix), 4*3*4)
	}

	img.Set(2, 1, 10, 20, 30, 255)
	r, g, b, a := img.At(2, 1)
	if r != 10 || g != 20 || b != 30 || a != 255 {
		t.Errorf("At(2,1) = (%d %d %d %d), want (10 20 30 255)", r, g, b, a)
	}

	std := img.ToImage()
	if std.Bounds().Dx() != 4 || std.Bounds().Dy() != 3 {
		t.Errorf("ToImage() bounds = %v", std.Bounds())
	}
}

func TestContentTypeValid(t *testing.T) {
	for _, ct := range ContentTypes() {
		if !ct.Valid() {
			t.Errorf("%s should be valid", ct)
		}
	}
	if !ContentUnknown.Valid() {
		t.Error("unknown should be valid")
	}
	if ContentType("bogus").Valid() {
		t.Error("bogus should not be valid")
	}
}
