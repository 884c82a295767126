package models

// AnalysisResult is the normalized model output. Every field is always
// populated: missing values become 0, empty lists, empty strings or an
// empty object.
type AnalysisResult struct {
	MatchPercentage      float64        `json:"match_percentage"`
	MatchingSkills       []string       `json:"matching_skills"`
	MatchingEducation    string         `json:"matching_education"`
	MatchingExperience   string         `json:"matching_experience"`
	HighlightedStrengths []string       `json:"highlighted_strengths"`
	IdentifiedGaps       []string       `json:"identified_gaps"`
	DetailedAnalysis     map[string]any `json:"detailed_analysis"`
	RawResponse          map[string]any `json:"raw_response"`

	// Degraded is set when no JSON object could be recovered from the
	// model text; RawResponse then carries {"raw_response": text}.
	Degraded bool `json:"-"`
}
