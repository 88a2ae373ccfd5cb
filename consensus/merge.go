package consensus

import "github.com/docsieve/docsieve/model"

// vote is one analyzer's report for one field.
type vote struct {
	order      int
	analyzerID string
	value      string
	confidence float64
	overall    float64
}

// Merge combines analyzer results into a consensus record. For each field
// the confidence-weighted majority value wins; ties break on the highest
// single-analyzer confidence, then on analyzer list order. The results slice
// must be in analyzer list order and non-empty.
func Merge(results []model.AgentResult, contentType model.ContentType) *model.ConsensusResult {
	votes := make(map[string][]vote)
	var fieldOrder []string

	for i, res := range results {
		for name, fv := range res.Fields {
			if _, seen := votes[name]; !seen {
				fieldOrder = append(fieldOrder, name)
			}
			votes[name] = append(votes[name], vote{
				order:      i,
				analyzerID: res.AnalyzerID,
				value:      fv.Value,
				confidence: fv.Confidence,
				overall:    res.OverallConfidence,
			})
		}
	}

	fields := make(map[string]model.ConsensusField, len(fieldOrder))
	for _, name := range fieldOrder {
		fields[name] = mergeField(votes[name])
	}

	return &model.ConsensusResult{
		Fields:            fields,
		OverallConfidence: overallConfidence(fields),
		ContentType:       contentType,
	}
}

// mergeField elects a value for one field and scores it.
func mergeField(votes []vote) model.ConsensusField {
	weights := make(map[string]float64)
	for _, v := range votes {
		weights[v.value] += v.confidence
	}

	winner := electValue(votes, weights)

	// The winning value's confidence is the mean of its supporters'
	// per-field confidences, weighted by each supporter's overall
	// confidence.
	var weightedSum, weightTotal, plainSum float64
	var supporters int
	for _, v := range votes {
		if v.value != winner {
			continue
		}
		weightedSum += v.confidence * v.overall
		weightTotal += v.overall
		plainSum += v.confidence
		supporters++
	}
	confidence := plainSum / float64(supporters)
	if weightTotal > 0 {
		confidence = weightedSum / weightTotal
	}

	contributing := make([]string, 0, len(votes))
	for _, v := range votes {
		contributing = append(contributing, v.analyzerID)
	}

	return model.ConsensusField{
		Value:                 winner,
		Confidence:            confidence,
		ContributingAnalyzers: contributing,
	}
}

// electValue picks the field value with the highest accumulated confidence.
// Ties break on the highest single vote confidence, then on the earliest
// analyzer in list order.
func electValue(votes []vote, weights map[string]float64) string {
	best := votes[0]
	bestWeight := weights[best.value]

	for _, v := range votes[1:] {
		w := weights[v.value]
		switch {
		case w > bestWeight:
			best, bestWeight = v, w
		case w == bestWeight && v.value != best.value:
			if v.confidence > best.confidence {
				best = v
			}
		}
	}
	return best.value
}

// overallConfidence is the confidence-weighted mean of the per-field
// confidences, so strong fields dominate weak ones.
func overallConfidence(fields map[string]model.ConsensusField) float64 {
	var num, den float64
	for _, f := range fields {
		num += f.Confidence * f.Confidence
		den += f.Confidence
	}
	if den == 0 {
		return 0
	}
	return num / den
}
