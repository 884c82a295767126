package models

import (
	"time"

	"gorm.io/datatypes"
)

type AnalyzeResponse struct {
	SessionID            string    `json:"session_id"`
	MatchPercentage      float64   `json:"match_percentage"`
	MatchingSkills       []string  `json:"matching_skills"`
	MatchingEducation    string    `json:"matching_education"`
	MatchingExperience   string    `json:"matching_experience"`
	HighlightedStrengths []string  `json:"highlighted_strengths"`
	IdentifiedGaps       []string  `json:"identified_gaps"`
	ProcessingTime       float64   `json:"processing_time"`
	IsQualified          bool      `json:"is_qualified"`
	QualifiedCandidateID *string   `json:"qualified_candidate_id,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

type SessionSummary struct {
	SessionID       string    `json:"session_id"`
	MatchPercentage float64   `json:"match_percentage"`
	ResumeFileName  string    `json:"resume_file_name"`
	ProcessingTime  float64   `json:"processing_time"`
	CreatedAt       time.Time `json:"created_at"`
}

type CandidateResponse struct {
	ID                   string          `json:"id"`
	AnalysisSessionID    string          `json:"analysis_session_id"`
	ResumeFile           string          `json:"resume_file"`
	JobDescription       string          `json:"job_description"`
	ResumeText           string          `json:"resume_text"`
	MatchPercentage      float64         `json:"match_percentage"`
	MatchingSkills       []string        `json:"matching_skills"`
	MatchingEducation    string          `json:"matching_education"`
	MatchingExperience   string          `json:"matching_experience"`
	HighlightedStrengths []string        `json:"highlighted_strengths"`
	IdentifiedGaps       []string        `json:"identified_gaps"`
	Status               CandidateStatus `json:"status"`
	IsContacted          bool            `json:"is_contacted"`
	Notes                string          `json:"notes"`
	QualificationDate    time.Time       `json:"qualification_date"`
	UpdatedAt            time.Time       `json:"updated_at"`
	IsHighlyQualified    bool            `json:"is_highly_qualified"`
	Tier                 string          `json:"tier"`
}

type UpdateCandidateRequest struct {
	Status      *CandidateStatus `json:"status" validate:"omitempty,oneof=NEW REVIEWED CONTACTED INTERVIEWING HIRED REJECTED"`
	IsContacted *bool            `json:"is_contacted"`
	Notes       *string          `json:"notes" validate:"omitempty,max=10000"`
}

type BulkActionRequest struct {
	IDs    []string `json:"ids" validate:"required,min=1,max=500,dive,uuid"`
	Action string   `json:"action" validate:"required,oneof=mark_contacted mark_reviewed mark_interviewing"`
}

type CandidateStatsResponse struct {
	TotalQualifiedCandidates int64                     `json:"total_qualified_candidates"`
	HighlyQualifiedCount     int64                     `json:"highly_qualified_count"`
	StatusBreakdown          map[CandidateStatus]int64 `json:"status_breakdown"`
	ContactedCount           int64                     `json:"contacted_count"`
	NotContactedCount        int64                     `json:"not_contacted_count"`
	AverageMatchPercentage   float64                   `json:"average_match_percentage"`
	MedianMatchPercentage    float64                   `json:"median_match_percentage"`
}

type SimilarSession struct {
	SessionID       string  `json:"session_id"`
	Score           float32 `json:"score"`
	MatchPercentage float64 `json:"match_percentage"`
}

type ComparisonEntry struct {
	SessionID string   `json:"session_id"`
	Match     float64  `json:"match"`
	Skills    []string `json:"skills"`
	Strengths []string `json:"strengths"`
	Gaps      []string `json:"gaps"`
}

type ComparisonResponse struct {
	Sessions     []ComparisonEntry `json:"sessions"`
	SkillOverlap [][]float64       `json:"skill_overlap"`
}

func NewCandidateResponse(c *QualifiedCandidate) CandidateResponse {
	return CandidateResponse{
		ID:                   c.ID.String(),
		AnalysisSessionID:    c.AnalysisSessionID.String(),
		ResumeFile:           c.ResumeFile,
		JobDescription:       c.JobDescription,
		ResumeText:           c.ResumeText,
		MatchPercentage:      c.MatchPercentage,
		MatchingSkills:       nonNil(c.MatchingSkills),
		MatchingEducation:    c.MatchingEducation,
		MatchingExperience:   c.MatchingExperience,
		HighlightedStrengths: nonNil(c.HighlightedStrengths),
		IdentifiedGaps:       nonNil(c.IdentifiedGaps),
		Status:               c.Status,
		IsContacted:          c.IsContacted,
		Notes:                c.Notes,
		QualificationDate:    c.QualificationDate,
		UpdatedAt:            c.UpdatedAt,
		IsHighlyQualified:    c.IsHighlyQualified(),
		Tier:                 c.Tier(),
	}
}

func NewSessionSummary(s *AnalysisSession) SessionSummary {
	return SessionSummary{
		SessionID:       s.ID.String(),
		MatchPercentage: s.MatchPercentage,
		ResumeFileName:  s.ResumeFileName,
		ProcessingTime:  s.ProcessingTime,
		CreatedAt:       s.CreatedAt,
	}
}

func nonNil(values datatypes.JSONSlice[string]) []string {
	if values == nil {
		return []string{}
	}
	return []string(values)
}
