package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AnalysisSession struct {
	ID                   uuid.UUID                   `gorm:"type:char(36);primaryKey" json:"id"`
	ResumeFile           string                      `gorm:"type:text" json:"resume_file"`
	ResumeFileName       string                      `gorm:"type:text" json:"resume_file_name"`
	JobDescription       string                      `gorm:"type:text;not null" json:"job_description"`
	ResumeText           string                      `gorm:"type:text" json:"resume_text"`
	ModelID              string                      `gorm:"type:varchar(255)" json:"model_id"`
	MatchPercentage      float64                     `gorm:"type:decimal(5,2);not null;index" json:"match_percentage"`
	MatchingSkills       datatypes.JSONSlice[string] `json:"matching_skills"`
	MatchingEducation    string                      `gorm:"type:text" json:"matching_education"`
	MatchingExperience   string                      `gorm:"type:text" json:"matching_experience"`
	HighlightedStrengths datatypes.JSONSlice[string] `json:"highlighted_strengths"`
	IdentifiedGaps       datatypes.JSONSlice[string] `json:"identified_gaps"`
	DetailedAnalysis     datatypes.JSON              `json:"detailed_analysis"`
	AIResponse           datatypes.JSON              `json:"ai_response"`
	ProcessingTime       float64                     `json:"processing_time"`
	IndexedAt            *time.Time                  `gorm:"index" json:"indexed_at,omitempty"`
	CreatedAt            time.Time                   `gorm:"index" json:"created_at"`
	UpdatedAt            time.Time                   `json:"updated_at"`
}

func (AnalysisSession) TableName() string {
	return "analysis_sessions"
}

func (s *AnalysisSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if len(s.DetailedAnalysis) == 0 {
		s.DetailedAnalysis = datatypes.JSON("{}")
	}
	if len(s.AIResponse) == 0 {
		s.AIResponse = datatypes.JSON("{}")
	}
	return nil
}

// IsQualified reports whether the session clears the promotion threshold.
func (s *AnalysisSession) IsQualified() bool {
	return IsQualifyingScore(s.MatchPercentage)
}
