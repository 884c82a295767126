package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/hareesh182003/Interview-Agent/internal/models"
	"github.com/hareesh182003/Interview-Agent/internal/repositories"
)

const (
	resumeChunkSize    = 1000
	resumeChunkOverlap = 150

	// each session contributes several chunks, so search wider than asked
	similarSearchFanout = 5
	maxSimilarResults   = 20
)

// Embedder turns text into a vector.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type IndexService interface {
	IndexSession(ctx context.Context, sessionID uuid.UUID) error
	SimilarSessions(ctx context.Context, sessionID uuid.UUID, limit int) ([]models.SimilarSession, error)
}

type indexService struct {
	sessionRepo repositories.AnalysisSessionRepository
	qdrant      QdrantService
	embedder    Embedder
	chunker     TextChuncker
}

func NewIndexService(
	sessionRepo repositories.AnalysisSessionRepository,
	qdrant QdrantService,
	embedder Embedder,
	chunker TextChuncker,
) IndexService {
	return &indexService{
		sessionRepo: sessionRepo,
		qdrant:      qdrant,
		embedder:    embedder,
		chunker:     chunker,
	}
}

func (s *indexService) IndexSession(ctx context.Context, sessionID uuid.UUID) error {
	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		return err
	}

	chunks := s.chunker.ChunkText(session.ResumeText, resumeChunkSize, resumeChunkOverlap)
	embeddings := make([][]float32, 0, len(chunks))
	for i, chunk := range chunks {
		embedding, err := s.embedder.GenerateEmbedding(ctx, chunk)
		if err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
		embeddings = append(embeddings, embedding)
	}

	if err := s.qdrant.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	if err := s.qdrant.UpsertSessionChunks(ctx, sessionID, chunks, embeddings); err != nil {
		return err
	}

	log.Printf("💾 Indexed session %s (%d chunks)\n", sessionID, len(chunks))
	return s.sessionRepo.MarkIndexed(sessionID, time.Now())
}

// SimilarSessions ranks other sessions by their best matching chunk.
func (s *indexService) SimilarSessions(ctx context.Context, sessionID uuid.UUID, limit int) ([]models.SimilarSession, error) {
	if limit <= 0 || limit > maxSimilarResults {
		limit = maxSimilarResults
	}

	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		return nil, err
	}

	query, err := s.embedder.GenerateEmbedding(ctx, session.ResumeText)
	if err != nil {
		return nil, err
	}

	hits, err := s.qdrant.SearchSimilar(ctx, query, sessionID, limit*similarSearchFanout)
	if err != nil {
		return nil, err
	}

	best := make(map[uuid.UUID]float32)
	for _, hit := range hits {
		id, err := uuid.Parse(hit.SessionID)
		if err != nil || id == sessionID {
			continue
		}
		if score, ok := best[id]; !ok || hit.Score > score {
			best[id] = hit.Score
		}
	}

	ids := make([]uuid.UUID, 0, len(best))
	for id := range best {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if best[ids[i]] == best[ids[j]] {
			return ids[i].String() < ids[j].String()
		}
		return best[ids[i]] > best[ids[j]]
	})
	if len(ids) > limit {
		ids = ids[:limit]
	}

	sessions, err := s.sessionRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}

	similar := make([]models.SimilarSession, 0, len(sessions))
	for _, other := range sessions {
		similar = append(similar, models.SimilarSession{
			SessionID:       other.ID.String(),
			Score:           best[other.ID],
			MatchPercentage: other.MatchPercentage,
		})
	}
	return similar, nil
}
