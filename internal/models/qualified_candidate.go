package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	// QualificationThreshold is exclusive: 80.00 does not qualify.
	QualificationThreshold = 80.0
	// HighlyQualifiedThreshold is inclusive.
	HighlyQualifiedThreshold = 90.0

	MaxCandidateResults = 50
)

type CandidateStatus string

const (
	CandidateStatusNew          CandidateStatus = "NEW"
	CandidateStatusReviewed     CandidateStatus = "REVIEWED"
	CandidateStatusContacted    CandidateStatus = "CONTACTED"
	CandidateStatusInterviewing CandidateStatus = "INTERVIEWING"
	CandidateStatusHired        CandidateStatus = "HIRED"
	CandidateStatusRejected     CandidateStatus = "REJECTED"
)

// CandidateStatuses lists every status in workflow order.
var CandidateStatuses = []CandidateStatus{
	CandidateStatusNew,
	CandidateStatusReviewed,
	CandidateStatusContacted,
	CandidateStatusInterviewing,
	CandidateStatusHired,
	CandidateStatusRejected,
}

func (s CandidateStatus) Valid() bool {
	for _, status := range CandidateStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type QualifiedCandidate struct {
	ID                   uuid.UUID                   `gorm:"type:char(36);primaryKey" json:"id"`
	AnalysisSessionID    uuid.UUID                   `gorm:"type:char(36);not null;uniqueIndex" json:"analysis_session_id"`
	ResumeFile           string                      `gorm:"type:text" json:"resume_file"`
	JobDescription       string                      `gorm:"type:text" json:"job_description"`
	ResumeText           string                      `gorm:"type:text" json:"resume_text"`
	MatchPercentage      float64                     `gorm:"type:decimal(5,2);not null;index" json:"match_percentage"`
	MatchingSkills       datatypes.JSONSlice[string] `json:"matching_skills"`
	MatchingEducation    string                      `gorm:"type:text" json:"matching_education"`
	MatchingExperience   string                      `gorm:"type:text" json:"matching_experience"`
	HighlightedStrengths datatypes.JSONSlice[string] `json:"highlighted_strengths"`
	IdentifiedGaps       datatypes.JSONSlice[string] `json:"identified_gaps"`
	Status               CandidateStatus             `gorm:"type:varchar(20);not null;index" json:"status"`
	IsContacted          bool                        `gorm:"not null" json:"is_contacted"`
	Notes                string                      `gorm:"type:text" json:"notes"`
	QualificationDate    time.Time                   `gorm:"autoCreateTime;index" json:"qualification_date"`
	UpdatedAt            time.Time                   `json:"updated_at"`

	AnalysisSession *AnalysisSession `gorm:"foreignKey:AnalysisSessionID" json:"-"`
}

func (QualifiedCandidate) TableName() string {
	return "qualified_candidates"
}

func (c *QualifiedCandidate) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = CandidateStatusNew
	}
	return nil
}

// IsHighlyQualified is derived on every read and never stored.
func (c *QualifiedCandidate) IsHighlyQualified() bool {
	return IsHighlyQualifiedScore(c.MatchPercentage)
}

func (c *QualifiedCandidate) Tier() string {
	return QualificationTier(c.MatchPercentage)
}

func IsQualifyingScore(percentage float64) bool {
	return percentage > QualificationThreshold
}

func IsHighlyQualifiedScore(percentage float64) bool {
	return percentage >= HighlyQualifiedThreshold
}

func QualificationTier(percentage float64) string {
	switch {
	case percentage >= 95:
		return "EXCEPTIONAL"
	case percentage >= HighlyQualifiedThreshold:
		return "HIGHLY QUALIFIED"
	case percentage >= 85:
		return "STRONG MATCH"
	case percentage > QualificationThreshold:
		return "QUALIFIED"
	default:
		return "NOT QUALIFIED"
	}
}
