package model

// ContentType is a coarse semantic label assigned to a detected table or
// figure, used to route the item to domain-specific analyzers.
type ContentType string

const (
	ContentPatientDemographics ContentType = "patient_demographics"
	ContentSurgicalProcedures  ContentType = "surgical_procedures"
	ContentOutcomesStatistics  ContentType = "outcomes_statistics"
	ContentNeuroimagingData    ContentType = "neuroimaging_data"
	ContentStudyMethodology    ContentType = "study_methodology"
	ContentUnknown             ContentType = "unknown"
)

// ContentTypes lists all known content types excluding unknown, in a stable
// order.
func ContentTypes() []ContentType {
	return []ContentType{
		ContentPatientDemographics,
		ContentSurgicalProcedures,
		ContentOutcomesStatistics,
		ContentNeuroimagingData,
		ContentStudyMethodology,
	}
}

// Valid reports whether ct is one of the defined content types.
func (ct ContentType) Valid() bool {
	switch ct {
	case ContentPatientDemographics, ContentSurgicalProcedures,
		ContentOutcomesStatistics, ContentNeuroimagingData,
		ContentStudyMethodology, ContentUnknown:
		return true
	}
	return false
}

func (ct ContentType) String() string {
	return string(ct)
}
