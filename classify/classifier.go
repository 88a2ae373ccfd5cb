package classify

import (
	"strings"

	"github.com/docsieve/docsieve/model"
)

// Config holds classification settings.
type Config struct {
	// MinScore is the minimum accumulated keyword weight a content type
	// must reach; below it the item is labeled unknown.
	MinScore float64

	// MaxSampleRows limits how many leading body rows contribute to the
	// table text sample alongside the headers.
	MaxSampleRows int
}

// DefaultConfig returns the default classification settings.
func DefaultConfig() Config {
	return Config{
		MinScore:      2.0,
		MaxSampleRows: 3,
	}
}

// keyword is a weighted phrase match. Phrases are matched as substrings of
// the lowercased sample text.
type keyword struct {
	phrase string
	weight float64
}

// vocabulary maps each content type to its scoring phrases. Header-grade
// terms carry weight 2, supporting terms weight 1.
var vocabulary = map[model.ContentType][]keyword{
	model.ContentPatientDemographics: {
		{"age", 2}, {"sex", 2}, {"gender", 2}, {"demographic", 2},
		{"baseline characteristics", 2}, {"patients", 1}, {"male", 1},
		{"female", 1}, {"bmi", 1}, {"comorbid", 1}, {"enrolled", 1},
	},
	model.ContentSurgicalProcedures: {
		{"surgery", 2}, {"surgical", 2}, {"procedure", 2}, {"resection", 2},
		{"craniotomy", 2}, {"operative", 2}, {"approach", 1}, {"incision", 1},
		{"anesthesia", 1}, {"laminectomy", 1}, {"intraoperative", 1},
	},
	model.ContentOutcomesStatistics: {
		{"p value", 2}, {"p-value", 2}, {"confidence interval", 2},
		{"odds ratio", 2}, {"hazard ratio", 2}, {"outcome", 2},
		{"95% ci", 2}, {"survival", 1}, {"mortality", 1}, {"morbidity", 1},
		{"follow-up", 1}, {"mean", 1}, {"median", 1}, {"significance", 1},
	},
	model.ContentNeuroimagingData: {
		{"mri", 2}, {"ct", 2}, {"imaging", 2}, {"lesion", 2},
		{"scan", 2}, {"t1", 1}, {"t2", 1}, {"flair", 1}, {"contrast", 1},
		{"volumetric", 1}, {"radiograph", 1}, {"signal", 1},
	},
	model.ContentStudyMethodology: {
		{"method", 2}, {"randomized", 2}, {"cohort", 2}, {"inclusion criteria", 2},
		{"exclusion criteria", 2}, {"protocol", 2}, {"retrospective", 1},
		{"prospective", 1}, {"blinded", 1}, {"population", 1},
		{"intervention", 1}, {"comparator", 1},
	},
}

// Classifier labels tables and figures by keyword scoring.
type Classifier struct {
	config Config
}

// New creates a Classifier with default settings.
func New() *Classifier {
	return &Classifier{config: DefaultConfig()}
}

// NewWithConfig creates a Classifier with the given settings.
func NewWithConfig(config Config) *Classifier {
	return &Classifier{config: config}
}

// ClassifyTable scores the table's headers and leading rows and returns the
// best-matching content type, or unknown when no type clears the minimum
// score.
func (c *Classifier) ClassifyTable(table *model.ExtractedTable) model.ContentType {
	if table == nil {
		return model.ContentUnknown
	}

	var sample strings.Builder
	for _, h := range table.Headers {
		sample.WriteString(h)
		sample.WriteByte(' ')
	}
	rows := table.Rows
	if len(rows) > c.config.MaxSampleRows {
		rows = rows[:c.config.MaxSampleRows]
	}
	for _, row := range rows {
		for _, cell := range row {
			sample.WriteString(cell)
			sample.WriteByte(' ')
		}
	}

	return c.classifyText(sample.String())
}

// ClassifyFigure scores the figure's caption text.
func (c *Classifier) ClassifyFigure(figure *model.ExtractedFigure) model.ContentType {
	if figure == nil || figure.Caption == "" {
		return model.ContentUnknown
	}
	return c.classifyText(figure.Caption)
}

// classifyText scores every content type against the lowercased sample and
// selects the highest scorer. Ties resolve in ContentTypes order so repeated
// classification of the same input is stable.
func (c *Classifier) classifyText(text string) model.ContentType {
	sample := strings.ToLower(text)
	tokens := tokenSet(sample)

	best := model.ContentUnknown
	bestScore := 0.0
	for _, ct := range model.ContentTypes() {
		score := 0.0
		for _, kw := range vocabulary[ct] {
			if matches(kw.phrase, sample, tokens) {
				score += kw.weight
			}
		}
		if score > bestScore {
			best = ct
			bestScore = score
		}
	}

	if bestScore < c.config.MinScore {
		return model.ContentUnknown
	}
	return best
}

// matches reports whether the phrase occurs in the sample. Single words must
// match a whole token so short terms like "ct" or "age" never fire inside
// longer words; multi-word phrases match as substrings.
func matches(phrase, sample string, tokens map[string]bool) bool {
	if strings.ContainsRune(phrase, ' ') {
		return strings.Contains(sample, phrase)
	}
	return tokens[phrase]
}

// tokenSet splits the lowercased sample on non-alphanumeric boundaries,
// keeping hyphenated terms intact.
func tokenSet(sample string) map[string]bool {
	tokens := make(map[string]bool)
	for _, tok := range strings.FieldsFunc(sample, func(r rune) bool {
		if r == '-' {
			return false
		}
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	}) {
		tokens[tok] = true
	}
	return tokens
}
