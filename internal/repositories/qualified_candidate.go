package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hareesh182003/Interview-Agent/internal/models"
)

type QualifiedCandidateRepository interface {
	Create(candidate *models.QualifiedCandidate) error
	FindByID(id uuid.UUID) (*models.QualifiedCandidate, error)
	FindBySessionID(sessionID uuid.UUID) (*models.QualifiedCandidate, error)
	List(filter CandidateFilter) ([]models.QualifiedCandidate, error)
	Update(id uuid.UUID, data *CandidateUpdateData) (*models.QualifiedCandidate, error)
	BulkUpdate(ids []uuid.UUID, data *CandidateUpdateData) (int64, error)
	Stats() (*CandidateStats, error)
}

type CandidateFilter struct {
	Status          *models.CandidateStatus
	MinPercentage   *float64
	HighlyQualified *bool
	Limit           int
}

// CandidateUpdateData is a partial update; nil fields are left untouched.
type CandidateUpdateData struct {
	Status      *models.CandidateStatus
	IsContacted *bool
	Notes       *string
}

type CandidateStats struct {
	Total            int64
	HighlyQualified  int64
	Contacted        int64
	StatusBreakdown  map[models.CandidateStatus]int64
	MatchPercentages []float64
}

type qualifiedCandidateRepository struct {
	db *gorm.DB
}

func NewQualifiedCandidateRepository(db *gorm.DB) QualifiedCandidateRepository {
	return &qualifiedCandidateRepository{db: db}
}

func (r *qualifiedCandidateRepository) Create(candidate *models.QualifiedCandidate) error {
	if err := r.db.Create(candidate).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("qualified candidate for session %s: %w", candidate.AnalysisSessionID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create qualified candidate: %w", err)
	}
	return nil
}

func (r *qualifiedCandidateRepository) FindByID(id uuid.UUID) (*models.QualifiedCandidate, error) {
	var candidate models.QualifiedCandidate
	if err := r.db.Where("id = ?", id).First(&candidate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("qualified candidate %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find qualified candidate: %w", err)
	}
	return &candidate, nil
}

func (r *qualifiedCandidateRepository) FindBySessionID(sessionID uuid.UUID) (*models.QualifiedCandidate, error) {
	var candidate models.QualifiedCandidate
	if err := r.db.Where("analysis_session_id = ?", sessionID).First(&candidate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("qualified candidate for session %s: %w", sessionID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find qualified candidate: %w", err)
	}
	return &candidate, nil
}

func (r *qualifiedCandidateRepository) List(filter CandidateFilter) ([]models.QualifiedCandidate, error) {
	limit := filter.Limit
	if limit <= 0 || limit > models.MaxCandidateResults {
		limit = models.MaxCandidateResults
	}

	query := r.db.Model(&models.QualifiedCandidate{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.MinPercentage != nil {
		query = query.Where("match_percentage >= ?", *filter.MinPercentage)
	}
	if filter.HighlyQualified != nil {
		if *filter.HighlyQualified {
			query = query.Where("match_percentage >= ?", models.HighlyQualifiedThreshold)
		} else {
			query = query.Where("match_percentage < ?", models.HighlyQualifiedThreshold)
		}
	}

	var candidates []models.QualifiedCandidate
	err := query.
		Order("match_percentage DESC").
		Order("qualification_date DESC").
		Limit(limit).
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list qualified candidates: %w", err)
	}
	return candidates, nil
}

func (r *qualifiedCandidateRepository) Update(id uuid.UUID, data *CandidateUpdateData) (*models.QualifiedCandidate, error) {
	updates := data.toMap()

	result := r.db.Model(&models.QualifiedCandidate{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update qualified candidate: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("qualified candidate %s: %w", id, ErrNotFound)
	}

	return r.FindByID(id)
}

func (r *qualifiedCandidateRepository) BulkUpdate(ids []uuid.UUID, data *CandidateUpdateData) (int64, error) {
	result := r.db.Model(&models.QualifiedCandidate{}).
		Where("id IN ?", ids).
		Updates(data.toMap())
	if result.Error != nil {
		return 0, fmt.Errorf("failed to bulk update qualified candidates: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *qualifiedCandidateRepository) Stats() (*CandidateStats, error) {
	stats := &CandidateStats{
		StatusBreakdown: make(map[models.CandidateStatus]int64, len(models.CandidateStatuses)),
	}
	for _, status := range models.CandidateStatuses {
		stats.StatusBreakdown[status] = 0
	}

	base := func() *gorm.DB { return r.db.Model(&models.QualifiedCandidate{}) }

	if err := base().Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to count candidates: %w", err)
	}
	if err := base().Where("match_percentage >= ?", models.HighlyQualifiedThreshold).Count(&stats.HighlyQualified).Error; err != nil {
		return nil, fmt.Errorf("failed to count highly qualified candidates: %w", err)
	}
	if err := base().Where("is_contacted = ?", true).Count(&stats.Contacted).Error; err != nil {
		return nil, fmt.Errorf("failed to count contacted candidates: %w", err)
	}

	var rows []struct {
		Status models.CandidateStatus
		Count  int64
	}
	if err := base().Select("status, count(*) as count").Group("status").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to group candidates by status: %w", err)
	}
	for _, row := range rows {
		stats.StatusBreakdown[row.Status] = row.Count
	}

	if err := base().Pluck("match_percentage", &stats.MatchPercentages).Error; err != nil {
		return nil, fmt.Errorf("failed to load match percentages: %w", err)
	}

	return stats, nil
}

func (d *CandidateUpdateData) toMap() map[string]interface{} {
	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if d == nil {
		return updates
	}
	if d.Status != nil {
		updates["status"] = *d.Status
	}
	if d.IsContacted != nil {
		updates["is_contacted"] = *d.IsContacted
	}
	if d.Notes != nil {
		updates["notes"] = *d.Notes
	}
	return updates
}
