package services

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"

	"github.com/hareesh182003/Interview-Agent/internal/models"
	"github.com/hareesh182003/Interview-Agent/internal/repositories"
)

// Bulk actions available on the candidate list.
const (
	ActionMarkContacted    = "mark_contacted"
	ActionMarkReviewed     = "mark_reviewed"
	ActionMarkInterviewing = "mark_interviewing"
)

type CandidateService interface {
	List(filter repositories.CandidateFilter) ([]models.QualifiedCandidate, error)
	Get(id uuid.UUID) (*models.QualifiedCandidate, error)
	Update(ctx context.Context, id uuid.UUID, req *models.UpdateCandidateRequest) (*models.QualifiedCandidate, error)
	BulkAction(ctx context.Context, ids []uuid.UUID, action string) (int64, error)
	Stats() (*models.CandidateStatsResponse, error)
}

type candidateService struct {
	candidateRepo repositories.QualifiedCandidateRepository
	events        EventPublisher
}

func NewCandidateService(candidateRepo repositories.QualifiedCandidateRepository, events EventPublisher) CandidateService {
	return &candidateService{
		candidateRepo: candidateRepo,
		events:        events,
	}
}

func (s *candidateService) List(filter repositories.CandidateFilter) ([]models.QualifiedCandidate, error) {
	return s.candidateRepo.List(filter)
}

func (s *candidateService) Get(id uuid.UUID) (*models.QualifiedCandidate, error) {
	return s.candidateRepo.FindByID(id)
}

// Update merges only the fields present in req. Any status may move to any
// other status.
func (s *candidateService) Update(ctx context.Context, id uuid.UUID, req *models.UpdateCandidateRequest) (*models.QualifiedCandidate, error) {
	if req.Status != nil && !req.Status.Valid() {
		return nil, NewValidationError("status", fmt.Errorf("invalid status %q", *req.Status))
	}

	candidate, err := s.candidateRepo.Update(id, &repositories.CandidateUpdateData{
		Status:      req.Status,
		IsContacted: req.IsContacted,
		Notes:       req.Notes,
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, EventCandidateUpdated, models.NewCandidateResponse(candidate))
	return candidate, nil
}

func (s *candidateService) BulkAction(ctx context.Context, ids []uuid.UUID, action string) (int64, error) {
	data, err := bulkActionUpdate(action)
	if err != nil {
		return 0, err
	}

	updated, err := s.candidateRepo.BulkUpdate(ids, data)
	if err != nil {
		return 0, err
	}

	s.events.Publish(ctx, EventCandidateUpdated, map[string]interface{}{
		"ids":     ids,
		"action":  action,
		"updated": updated,
	})
	return updated, nil
}

func bulkActionUpdate(action string) (*repositories.CandidateUpdateData, error) {
	status := func(s models.CandidateStatus) *models.CandidateStatus { return &s }
	contacted := true

	switch action {
	case ActionMarkContacted:
		return &repositories.CandidateUpdateData{
			Status:      status(models.CandidateStatusContacted),
			IsContacted: &contacted,
		}, nil
	case ActionMarkReviewed:
		return &repositories.CandidateUpdateData{Status: status(models.CandidateStatusReviewed)}, nil
	case ActionMarkInterviewing:
		return &repositories.CandidateUpdateData{Status: status(models.CandidateStatusInterviewing)}, nil
	default:
		return nil, NewValidationError("action", fmt.Errorf("unknown action %q", action))
	}
}

func (s *candidateService) Stats() (*models.CandidateStatsResponse, error) {
	counts, err := s.candidateRepo.Stats()
	if err != nil {
		return nil, err
	}

	resp := &models.CandidateStatsResponse{
		TotalQualifiedCandidates: counts.Total,
		HighlyQualifiedCount:     counts.HighlyQualified,
		StatusBreakdown:          counts.StatusBreakdown,
		ContactedCount:           counts.Contacted,
		NotContactedCount:        counts.Total - counts.Contacted,
	}

	if len(counts.MatchPercentages) > 0 {
		data := stats.Float64Data(counts.MatchPercentages)
		if mean, err := data.Mean(); err == nil {
			resp.AverageMatchPercentage = round2(mean)
		}
		if median, err := data.Median(); err == nil {
			resp.MedianMatchPercentage = round2(median)
		}
	}

	return resp, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
