package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// text-embedding-004 produces 768 dimensions.
const embeddingVectorSize = 768

var resumePointNamespace = uuid.MustParse("6f1c7a52-4d0e-4f57-9d59-2c7b1f0e8a11")

type QdrantService interface {
	InitCollection(ctx context.Context) error
	UpsertSessionChunks(ctx context.Context, sessionID uuid.UUID, chunks []string, embeddings [][]float32) error
	SearchSimilar(ctx context.Context, queryEmbedding []float32, excludeSessionID uuid.UUID, limit int) ([]SearchResult, error)
	DeleteSession(ctx context.Context, sessionID uuid.UUID) error
}

type SearchResult struct {
	SessionID string
	Chunk     int64
	Score     float32
	Text      string
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewQdrantService(urlStr, apiKey, collectionName string) (QdrantService, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// the go client speaks gRPC, 6334 by default
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     embeddingVectorSize,
	}, nil
}

func (q *qdrantService) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		log.Printf("✅ Qdrant collection '%s' already exists\n", q.collectionName)
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	_, err = q.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: q.collectionName,
		FieldName:      "session_id",
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
	})
	if err != nil {
		return fmt.Errorf("failed to index session_id: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", q.collectionName)
	return nil
}

// ResumePointID is stable per session and chunk so re-indexing overwrites
// earlier points.
func ResumePointID(sessionID uuid.UUID, chunk int) uuid.UUID {
	return uuid.NewSHA1(resumePointNamespace, []byte(fmt.Sprintf("%s/%d", sessionID, chunk)))
}

func (q *qdrantService) UpsertSessionChunks(ctx context.Context, sessionID uuid.UUID, chunks []string, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("got %d chunks but %d embeddings", len(chunks), len(embeddings))
	}
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for i, text := range chunks {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(ResumePointID(sessionID, i).String()),
			Vectors: qdrant.NewVectors(embeddings[i]...),
			Payload: qdrant.NewValueMap(map[string]interface{}{
				"session_id": sessionID.String(),
				"chunk":      int64(i),
				"text":       text,
			}),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	return nil
}

func (q *qdrantService) SearchSimilar(ctx context.Context, queryEmbedding []float32, excludeSessionID uuid.UUID, limit int) ([]SearchResult, error) {
	var filter *qdrant.Filter
	if excludeSessionID != uuid.Nil {
		filter = &qdrant.Filter{
			MustNot: []*qdrant.Condition{
				qdrant.NewMatch("session_id", excludeSessionID.String()),
			},
		}
	}

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]SearchResult, 0, len(points))
	for _, point := range points {
		payload := point.Payload
		results = append(results, SearchResult{
			SessionID: payload["session_id"].GetStringValue(),
			Chunk:     payload["chunk"].GetIntegerValue(),
			Text:      payload["text"].GetStringValue(),
			Score:     point.Score,
		})
	}

	return results, nil
}

func (q *qdrantService) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: &qdrant.Filter{
					Must: []*qdrant.Condition{
						qdrant.NewMatch("session_id", sessionID.String()),
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete session points: %w", err)
	}

	return nil
}
