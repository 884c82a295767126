package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hareesh182003/Interview-Agent/internal/models"
)

type AnalysisSessionRepository interface {
	Create(session *models.AnalysisSession) error
	FindByID(id uuid.UUID) (*models.AnalysisSession, error)
	FindByIDs(ids []uuid.UUID) ([]models.AnalysisSession, error)
	FindRecent(limit int) ([]models.AnalysisSession, error)
	FindUnindexed(limit int) ([]models.AnalysisSession, error)
	FindQualifyingWithoutCandidate(limit int) ([]models.AnalysisSession, error)
	MarkIndexed(id uuid.UUID, at time.Time) error
	ClearIndexed() (int64, error)
}

type analysisSessionRepository struct {
	db *gorm.DB
}

func NewAnalysisSessionRepository(db *gorm.DB) AnalysisSessionRepository {
	return &analysisSessionRepository{db: db}
}

func (r *analysisSessionRepository) Create(session *models.AnalysisSession) error {
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("failed to create analysis session: %w", err)
	}
	return nil
}

func (r *analysisSessionRepository) FindByID(id uuid.UUID) (*models.AnalysisSession, error) {
	var session models.AnalysisSession
	if err := r.db.Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("analysis session %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find analysis session: %w", err)
	}
	return &session, nil
}

// FindByIDs keeps the order of ids; unknown ids are skipped.
func (r *analysisSessionRepository) FindByIDs(ids []uuid.UUID) ([]models.AnalysisSession, error) {
	var sessions []models.AnalysisSession
	if err := r.db.Where("id IN ?", ids).Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("failed to find analysis sessions: %w", err)
	}

	byID := make(map[uuid.UUID]models.AnalysisSession, len(sessions))
	for _, s := range sessions {
		byID[s.ID] = s
	}

	ordered := make([]models.AnalysisSession, 0, len(sessions))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			ordered = append(ordered, s)
			delete(byID, id)
		}
	}
	return ordered, nil
}

func (r *analysisSessionRepository) FindRecent(limit int) ([]models.AnalysisSession, error) {
	var sessions []models.AnalysisSession
	err := r.db.
		Order("created_at DESC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list analysis sessions: %w", err)
	}
	return sessions, nil
}

func (r *analysisSessionRepository) FindUnindexed(limit int) ([]models.AnalysisSession, error) {
	var sessions []models.AnalysisSession
	err := r.db.
		Where("indexed_at IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find unindexed sessions: %w", err)
	}
	return sessions, nil
}

// FindQualifyingWithoutCandidate returns sessions above the qualification
// threshold that were never promoted, e.g. after a crash between the
// session write and the promotion write.
func (r *analysisSessionRepository) FindQualifyingWithoutCandidate(limit int) ([]models.AnalysisSession, error) {
	var sessions []models.AnalysisSession
	err := r.db.
		Where("match_percentage > ?", models.QualificationThreshold).
		Where("NOT EXISTS (SELECT 1 FROM qualified_candidates qc WHERE qc.analysis_session_id = analysis_sessions.id)").
		Order("created_at ASC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find unpromoted sessions: %w", err)
	}
	return sessions, nil
}

func (r *analysisSessionRepository) MarkIndexed(id uuid.UUID, at time.Time) error {
	result := r.db.Model(&models.AnalysisSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"indexed_at": at,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark session indexed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("analysis session %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *analysisSessionRepository) ClearIndexed() (int64, error) {
	result := r.db.Model(&models.AnalysisSession{}).
		Where("indexed_at IS NOT NULL").
		Update("indexed_at", nil)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to reset index markers: %w", result.Error)
	}
	return result.RowsAffected, nil
}
