package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/hareesh182003/Interview-Agent/internal/models"
)

// jsonCandidate pulls one possible JSON document out of the model text.
type jsonCandidate func(text string) (string, bool)

var jsonCandidates = []jsonCandidate{
	fencedJSONBlock,
	fencedBlock,
	wholeText,
}

// NormalizeResponse turns free-form model text into a result with every
// field present. Text that holds no JSON object yields a degraded result
// rather than an error; only a present but non-numeric match_percentage
// fails.
func NormalizeResponse(text string) (*models.AnalysisResult, error) {
	obj, ok := parseResponseObject(text)
	if !ok {
		return &models.AnalysisResult{
			MatchingSkills:       []string{},
			HighlightedStrengths: []string{},
			IdentifiedGaps:       []string{},
			DetailedAnalysis:     map[string]interface{}{},
			RawResponse:          map[string]interface{}{"raw_response": text},
			Degraded:             true,
		}, nil
	}

	percentage, err := matchPercentage(obj.Get("match_percentage"))
	if err != nil {
		return nil, err
	}

	detailed := map[string]interface{}{}
	if d := obj.Get("detailed_analysis"); d.IsObject() {
		if m, ok := d.Value().(map[string]interface{}); ok {
			detailed = m
		}
	}

	raw, _ := obj.Value().(map[string]interface{})

	return &models.AnalysisResult{
		MatchPercentage:      percentage,
		MatchingSkills:       stringList(obj.Get("matching_skills")),
		MatchingEducation:    stringValue(obj.Get("matching_education")),
		MatchingExperience:   stringValue(obj.Get("matching_experience")),
		HighlightedStrengths: stringList(obj.Get("highlighted_strengths")),
		IdentifiedGaps:       stringList(obj.Get("identified_gaps")),
		DetailedAnalysis:     detailed,
		RawResponse:          raw,
	}, nil
}

func parseResponseObject(text string) (gjson.Result, bool) {
	for _, candidate := range jsonCandidates {
		doc, ok := candidate(text)
		if !ok {
			continue
		}
		doc = strings.TrimSpace(doc)
		if !gjson.Valid(doc) {
			continue
		}
		if result := gjson.Parse(doc); result.IsObject() {
			return result, true
		}
	}
	return gjson.Result{}, false
}

func fencedJSONBlock(text string) (string, bool) {
	_, after, found := strings.Cut(text, "```json")
	if !found {
		return "", false
	}
	block, _, _ := strings.Cut(after, "```")
	return block, true
}

func fencedBlock(text string) (string, bool) {
	_, after, found := strings.Cut(text, "```")
	if !found {
		return "", false
	}
	block, _, _ := strings.Cut(after, "```")

	// drop a language tag such as ```JSON or ```javascript
	if first, rest, ok := strings.Cut(block, "\n"); ok && !strings.Contains(first, "{") {
		block = rest
	}
	return block, true
}

func wholeText(text string) (string, bool) {
	return text, true
}

func matchPercentage(value gjson.Result) (float64, error) {
	if !value.Exists() {
		return 0, nil
	}

	var percentage float64
	switch value.Type {
	case gjson.Number:
		percentage = value.Float()
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value.Str), "%")), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrNonNumericScore, value.Str)
		}
		percentage = parsed
	default:
		return 0, fmt.Errorf("%w: %s", ErrNonNumericScore, value.Raw)
	}

	if math.IsNaN(percentage) || math.IsInf(percentage, 0) {
		return 0, fmt.Errorf("%w: %s", ErrNonNumericScore, value.Raw)
	}

	return clampPercentage(percentage), nil
}

// clampPercentage rounds to two decimals and keeps the value within [0,100].
func clampPercentage(v float64) float64 {
	v = math.Round(v*100) / 100
	return math.Max(0, math.Min(100, v))
}

func stringList(value gjson.Result) []string {
	out := []string{}
	if !value.IsArray() {
		return out
	}
	for _, item := range value.Array() {
		switch item.Type {
		case gjson.Null:
			continue
		case gjson.String:
			out = append(out, item.Str)
		default:
			out = append(out, item.Raw)
		}
	}
	return out
}

func stringValue(value gjson.Result) string {
	switch value.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return value.Str
	default:
		return value.Raw
	}
}
