package model

// FieldValue is a single extracted field reported by one analyzer.
type FieldValue struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"` // 0-1
}

// AgentResult is the outcome of a single analyzer invocation for one
// detected item. Results are ephemeral: they are consumed by the consensus
// aggregator and not retained.
type AgentResult struct {
	AnalyzerID        string                `json:"analyzer_id"`
	Fields            map[string]FieldValue `json:"fields"`
	OverallConfidence float64               `json:"overall_confidence"`
	SourceQuote       string                `json:"source_quote,omitempty"`
	Insights          []string              `json:"insights,omitempty"`
}

// ConsensusField is the merged value for one field name across all
// contributing analyzers.
type ConsensusField struct {
	Value                 string
	Confidence            float64
	ContributingAnalyzers []string
}

// ConsensusResult is the confidence-weighted merge of multiple analyzers'
// extractions for one detected item. It is immutable once computed; a re-run
// produces a new ConsensusResult rather than mutating the old one.
type ConsensusResult struct {
	Fields            map[string]ConsensusField
	OverallConfidence float64
	ContentType       ContentType
}
