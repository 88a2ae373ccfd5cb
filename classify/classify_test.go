package classify

import (
	"reflect"
	"testing"

	"github.com/docsieve/docsieve/model"
)

func demographicsTable() *model.ExtractedTable {
	return &model.ExtractedTable{
		Headers: []string{"Characteristic", "Value"},
		Rows: [][]string{
			{"Age, mean (SD)", "54.2 (11.3)"},
			{"Sex, male", "82 (55%)"},
			{"BMI", "27.1"},
		},
	}
}

func TestClassifyTable(t *testing.T) {
	tests := []struct {
		name  string
		table *model.ExtractedTable
		want  model.ContentType
	}{
		{
			name:  "demographics",
			table: demographicsTable(),
			want:  model.ContentPatientDemographics,
		},
		{
			name: "outcomes",
			table: &model.ExtractedTable{
				Headers: []string{"Outcome", "Hazard ratio", "95% CI", "P value"},
				Rows: [][]string{
					{"Mortality", "0.82", "0.61-1.10", "0.19"},
				},
			},
			want: model.ContentOutcomesStatistics,
		},
		{
			name: "imaging",
			table: &model.ExtractedTable{
				Headers: []string{"Scan", "Lesion volume (mL)"},
				Rows: [][]string{
					{"Baseline MRI", "12.4"},
					{"Follow-up MRI", "8.1"},
				},
			},
			want: model.ContentNeuroimagingData,
		},
		{
			name: "no vocabulary overlap",
			table: &model.ExtractedTable{
				Headers: []string{"Quarter", "Revenue"},
				Rows:    [][]string{{"Q1", "10"}, {"Q2", "12"}},
			},
			want: model.ContentUnknown,
		},
		{
			name:  "nil table",
			table: nil,
			want:  model.ContentUnknown,
		},
	}

	c := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.ClassifyTable(tt.table); got != tt.want {
				t.Errorf("ClassifyTable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyFigure(t *testing.T) {
	c := New()

	fig := &model.ExtractedFigure{
		Caption: "Figure 3. Axial T2 MRI showing lesion regression after treatment.",
	}
	if got := c.ClassifyFigure(fig); got != model.ContentNeuroimagingData {
		t.Errorf("ClassifyFigure = %v, want %v", got, model.ContentNeuroimagingData)
	}

	if got := c.ClassifyFigure(&model.ExtractedFigure{}); got != model.ContentUnknown {
		t.Errorf("ClassifyFigure without caption = %v, want unknown", got)
	}
	if got := c.ClassifyFigure(nil); got != model.ContentUnknown {
		t.Errorf("ClassifyFigure(nil) = %v, want unknown", got)
	}
}

func TestClassifyShortTermsNeedWholeTokens(t *testing.T) {
	// "image" and "percentage" must not fire the "age" keyword, and
	// "characteristics" must not fire "ct".
	c := New()
	table := &model.ExtractedTable{
		Headers: []string{"Image characteristics", "Percentage"},
		Rows:    [][]string{{"Item", "10%"}},
	}
	if got := c.ClassifyTable(table); got != model.ContentUnknown {
		t.Errorf("ClassifyTable = %v, want unknown", got)
	}
}

func TestClassifyMinScore(t *testing.T) {
	c := NewWithConfig(Config{MinScore: 100, MaxSampleRows: 3})
	if got := c.ClassifyTable(demographicsTable()); got != model.ContentUnknown {
		t.Errorf("ClassifyTable with unreachable threshold = %v, want unknown", got)
	}
}

func TestClassifyIdempotent(t *testing.T) {
	c := New()
	table := demographicsTable()

	first := c.ClassifyTable(table)
	firstRoute := Route(first)
	second := c.ClassifyTable(table)
	secondRoute := Route(second)

	if first != second {
		t.Errorf("classification not stable: %v then %v", first, second)
	}
	if !reflect.DeepEqual(firstRoute, secondRoute) {
		t.Errorf("routing not stable: %v then %v", firstRoute, secondRoute)
	}
}

func TestRouteAlwaysIncludesStructuralValidator(t *testing.T) {
	types := append(model.ContentTypes(), model.ContentUnknown)
	for _, ct := range types {
		route := Route(ct)
		if len(route) == 0 {
			t.Errorf("Route(%v) is empty", ct)
			continue
		}
		if route[len(route)-1] != StructuralValidatorID {
			t.Errorf("Route(%v) = %v, want %s last", ct, route, StructuralValidatorID)
		}
	}
}

func TestRouteReturnsCopy(t *testing.T) {
	a := Route(model.ContentStudyMethodology)
	a[0] = "mutated"
	b := Route(model.ContentStudyMethodology)
	if b[0] == "mutated" {
		t.Error("Route shares backing storage between calls")
	}
}

func TestKnownAnalyzers(t *testing.T) {
	ids := KnownAnalyzers()
	seen := make(map[string]bool)
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate analyzer id %q", id)
		}
		seen[id] = true
	}
	if !seen[StructuralValidatorID] {
		t.Errorf("KnownAnalyzers missing %s", StructuralValidatorID)
	}
}
