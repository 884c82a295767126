package services

import (
	"sort"
	"strings"

	"github.com/hareesh182003/Interview-Agent/internal/models"
)

// NormalizeSkills trims, drops blanks and case-insensitive duplicates, and
// sorts case-insensitively. The first spelling seen is kept.
func NormalizeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))

	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		key := strings.ToLower(skill)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, skill)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}

// SkillOverlap is the Jaccard index of two skill lists, rounded to two
// decimals. Two empty lists overlap by 0.
func SkillOverlap(a, b []string) float64 {
	setA := skillSet(a)
	setB := skillSet(b)

	intersection := 0
	for skill := range setA {
		if _, ok := setB[skill]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return round2(float64(intersection) / float64(union))
}

func skillSet(skills []string) map[string]struct{} {
	set := make(map[string]struct{}, len(skills))
	for _, skill := range skills {
		if skill = strings.ToLower(strings.TrimSpace(skill)); skill != "" {
			set[skill] = struct{}{}
		}
	}
	return set
}

// CompareSessions keeps the order of sessions; SkillOverlap[i][j] compares
// session i with session j.
func CompareSessions(sessions []models.AnalysisSession) *models.ComparisonResponse {
	resp := &models.ComparisonResponse{
		Sessions:     make([]models.ComparisonEntry, 0, len(sessions)),
		SkillOverlap: make([][]float64, len(sessions)),
	}

	skills := make([][]string, len(sessions))
	for i, session := range sessions {
		skills[i] = NormalizeSkills(session.MatchingSkills)
		resp.Sessions = append(resp.Sessions, models.ComparisonEntry{
			SessionID: session.ID.String(),
			Match:     session.MatchPercentage,
			Skills:    skills[i],
			Strengths: NormalizeSkills(session.HighlightedStrengths),
			Gaps:      NormalizeSkills(session.IdentifiedGaps),
		})
	}

	for i := range skills {
		resp.SkillOverlap[i] = make([]float64, len(skills))
		for j := range skills {
			resp.SkillOverlap[i][j] = SkillOverlap(skills[i], skills[j])
		}
	}

	return resp
}
