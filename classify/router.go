package classify

import "github.com/docsieve/docsieve/model"

// StructuralValidatorID identifies the analyzer appended to every route. It
// checks extraction fidelity rather than domain content, so even unknown
// items receive at least one analyzer pass.
const StructuralValidatorID = "structural-validator"

// routes is the static content-type to analyzer mapping. Order matters: it
// is the tie-break order used during consensus merging.
var routes = map[model.ContentType][]string{
	model.ContentPatientDemographics: {"demographics-analyzer", "pico-extractor"},
	model.ContentSurgicalProcedures:  {"procedure-analyzer"},
	model.ContentOutcomesStatistics:  {"statistics-analyzer", "pico-extractor"},
	model.ContentNeuroimagingData:    {"imaging-analyzer"},
	model.ContentStudyMethodology:    {"methodology-analyzer", "pico-extractor"},
	model.ContentUnknown:             nil,
}

// Route returns the ordered analyzer identifiers for a content type. The
// structural validation analyzer is always last, and the result always has
// at least one entry. The returned slice is a fresh copy each call.
func Route(contentType model.ContentType) []string {
	base := routes[contentType]
	out := make([]string, 0, len(base)+1)
	out = append(out, base...)
	return append(out, StructuralValidatorID)
}

// KnownAnalyzers returns every analyzer identifier reachable through Route,
// in a stable order, for registry validation at startup.
func KnownAnalyzers() []string {
	seen := make(map[string]bool)
	var out []string
	for _, ct := range model.ContentTypes() {
		for _, id := range routes[ct] {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return append(out, StructuralValidatorID)
}
