package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/hareesh182003/Interview-Agent/internal/models"
	"github.com/hareesh182003/Interview-Agent/internal/repositories"
)

const replayBatchSize = 100

type QualificationService interface {
	// Promote creates the qualified candidate for a session scoring above
	// the threshold. The bool reports whether a candidate was created.
	Promote(ctx context.Context, session *models.AnalysisSession) (*models.QualifiedCandidate, bool, error)
	// ReplayPromotions promotes qualifying sessions that have no candidate.
	ReplayPromotions(ctx context.Context) (int, error)
}

type qualificationService struct {
	sessionRepo   repositories.AnalysisSessionRepository
	candidateRepo repositories.QualifiedCandidateRepository
	storage       StorageService
	events        EventPublisher
	now           func() time.Time
}

func NewQualificationService(
	sessionRepo repositories.AnalysisSessionRepository,
	candidateRepo repositories.QualifiedCandidateRepository,
	storage StorageService,
	events EventPublisher,
) QualificationService {
	return &qualificationService{
		sessionRepo:   sessionRepo,
		candidateRepo: candidateRepo,
		storage:       storage,
		events:        events,
		now:           time.Now,
	}
}

func (s *qualificationService) Promote(ctx context.Context, session *models.AnalysisSession) (*models.QualifiedCandidate, bool, error) {
	if !session.IsQualified() {
		return nil, false, nil
	}

	_, err := s.candidateRepo.FindBySessionID(session.ID)
	switch {
	case err == nil:
		return nil, false, fmt.Errorf("session %s already promoted: %w", session.ID, repositories.ErrDuplicate)
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, false, err
	}

	candidate := &models.QualifiedCandidate{
		AnalysisSessionID:    session.ID,
		ResumeFile:           s.copyResume(ctx, session),
		JobDescription:       session.JobDescription,
		ResumeText:           session.ResumeText,
		MatchPercentage:      session.MatchPercentage,
		MatchingSkills:       session.MatchingSkills,
		MatchingEducation:    session.MatchingEducation,
		MatchingExperience:   session.MatchingExperience,
		HighlightedStrengths: session.HighlightedStrengths,
		IdentifiedGaps:       session.IdentifiedGaps,
		Status:               models.CandidateStatusNew,
		IsContacted:          false,
	}

	if err := s.candidateRepo.Create(candidate); err != nil {
		if candidate.ResumeFile != session.ResumeFile {
			s.discardResumeCopy(ctx, candidate.ResumeFile)
		}
		return nil, false, err
	}

	log.Printf("✅ Session %s qualified at %.2f%%, candidate %s created\n", session.ID, session.MatchPercentage, candidate.ID)
	s.events.Publish(ctx, EventCandidateQualified, models.NewCandidateResponse(candidate))

	return candidate, true, nil
}

// copyResume falls back to the session's own key when the copy fails so a
// storage hiccup never blocks the promotion.
func (s *qualificationService) copyResume(ctx context.Context, session *models.AnalysisSession) string {
	if session.ResumeFile == "" {
		return ""
	}

	key := QualifiedResumeKey(s.now(), session.ResumeFile)
	if err := s.storage.CopyFile(ctx, session.ResumeFile, key); err != nil {
		log.Printf("⚠️  Failed to copy resume for session %s: %v\n", session.ID, err)
		return session.ResumeFile
	}
	return key
}

func (s *qualificationService) discardResumeCopy(ctx context.Context, key string) {
	if err := s.storage.DeleteFile(ctx, key); err != nil {
		log.Printf("⚠️  Failed to remove orphaned resume copy %s: %v\n", key, err)
	}
}

func (s *qualificationService) ReplayPromotions(ctx context.Context) (int, error) {
	promoted := 0
	for {
		sessions, err := s.sessionRepo.FindQualifyingWithoutCandidate(replayBatchSize)
		if err != nil {
			return promoted, err
		}
		if len(sessions) == 0 {
			return promoted, nil
		}

		for i := range sessions {
			if err := ctx.Err(); err != nil {
				return promoted, err
			}
			if _, ok, err := s.Promote(ctx, &sessions[i]); err != nil {
				return promoted, fmt.Errorf("failed to promote session %s: %w", sessions[i].ID, err)
			} else if ok {
				promoted++
			}
		}

		if len(sessions) < replayBatchSize {
			return promoted, nil
		}
	}
}
