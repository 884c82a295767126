package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/hareesh182003/Interview-Agent/internal/models"
	"github.com/hareesh182003/Interview-Agent/internal/repositories"
)

type AnalyzeInput struct {
	FileName       string
	Size           int64
	Content        io.Reader
	JobDescription string
	ModelID        string
	StartedAt      time.Time
}

type AnalyzeOutcome struct {
	Session   *models.AnalysisSession
	Candidate *models.QualifiedCandidate
	Result    *models.AnalysisResult
}

type AnalyzerService interface {
	Analyze(ctx context.Context, input AnalyzeInput) (*AnalyzeOutcome, error)
}

type analyzerService struct {
	sessionRepo    repositories.AnalysisSessionRepository
	extractor      TextExtractor
	modelClient    ModelClient
	storage        StorageService
	qualification  QualificationService
	events         EventPublisher
	worker         Worker
	promptBuilder  *PromptBuilder
	defaultModelID string
	maxFileSize    int64
}

// NewAnalyzerService wires the analysis pipeline. worker may be nil when the
// resume index is disabled.
func NewAnalyzerService(
	sessionRepo repositories.AnalysisSessionRepository,
	extractor TextExtractor,
	modelClient ModelClient,
	storage StorageService,
	qualification QualificationService,
	events EventPublisher,
	worker Worker,
	defaultModelID string,
	maxFileSize int64,
) AnalyzerService {
	return &analyzerService{
		sessionRepo:    sessionRepo,
		extractor:      extractor,
		modelClient:    modelClient,
		storage:        storage,
		qualification:  qualification,
		events:         events,
		worker:         worker,
		promptBuilder:  NewPromptBuilder(),
		defaultModelID: defaultModelID,
		maxFileSize:    maxFileSize,
	}
}

func (a *analyzerService) validate(input *AnalyzeInput) error {
	if strings.TrimSpace(input.JobDescription) == "" {
		return NewValidationError("job_description", ErrMissingField)
	}
	if input.Content == nil || input.FileName == "" {
		return NewValidationError("resume_file", ErrMissingField)
	}
	if strings.ToLower(filepath.Ext(input.FileName)) != ".pdf" {
		return NewValidationError("resume_file", ErrInvalidFileType)
	}
	if input.Size > a.maxFileSize {
		return NewValidationError("resume_file", fmt.Errorf("%w: max %d bytes", ErrFileTooLarge, a.maxFileSize))
	}
	return nil
}

func (a *analyzerService) Analyze(ctx context.Context, input AnalyzeInput) (*AnalyzeOutcome, error) {
	if err := a.validate(&input); err != nil {
		return nil, err
	}
	if input.StartedAt.IsZero() {
		input.StartedAt = time.Now()
	}
	modelID := input.ModelID
	if modelID == "" {
		modelID = a.defaultModelID
	}

	// Limit the copy so a misreported size cannot fill the disk.
	tempPath, written, err := a.storage.CreateTemp(io.LimitReader(input.Content, a.maxFileSize+1))
	if err != nil {
		return nil, newAnalysisError(StageStorage, err)
	}
	defer func() {
		if err := os.Remove(tempPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("⚠️  Failed to remove temp file %s: %v\n", tempPath, err)
		}
	}()

	if written == 0 {
		return nil, NewValidationError("resume_file", errors.New("file is empty"))
	}
	if written > a.maxFileSize {
		return nil, NewValidationError("resume_file", fmt.Errorf("%w: max %d bytes", ErrFileTooLarge, a.maxFileSize))
	}

	log.Printf("📄 Extracting text from %s\n", input.FileName)
	content, err := a.extractor.ExtractText(tempPath)
	if err != nil {
		return nil, newAnalysisError(StageExtraction, err)
	}

	prompt := a.promptBuilder.BuildAnalysisPrompt(content.Text, input.JobDescription)

	responseText, err := a.modelClient.Generate(ctx, modelID, prompt)
	if err != nil {
		return nil, newAnalysisError(StageModel, err)
	}

	result, err := NormalizeResponse(responseText)
	if err != nil {
		return nil, newAnalysisError(StageNormalization, err)
	}
	if result.Degraded {
		log.Printf("⚠️  Model %s returned no parseable JSON, storing raw response\n", modelID)
	}

	resumeKey := ResumeKey(time.Now(), input.FileName)
	if err := a.saveResume(ctx, tempPath, resumeKey, written); err != nil {
		return nil, newAnalysisError(StageStorage, err)
	}

	session, err := newSession(input, modelID, resumeKey, content.Text, result)
	if err != nil {
		a.discardResume(ctx, resumeKey)
		return nil, newAnalysisError(StagePersistence, err)
	}
	if err := a.sessionRepo.Create(session); err != nil {
		a.discardResume(ctx, resumeKey)
		return nil, newAnalysisError(StagePersistence, err)
	}
	log.Printf("💾 Session %s stored (%.2f%%)\n", session.ID, session.MatchPercentage)

	// Not transactional with the session write; atsctl replay-promotions
	// repairs sessions left without a candidate.
	candidate, _, err := a.qualification.Promote(ctx, session)
	if err != nil {
		return nil, newAnalysisError(StageQualification, err)
	}

	a.events.Publish(ctx, EventAnalysisCompleted, models.NewSessionSummary(session))
	if a.worker != nil {
		a.worker.EnqueueJob(session.ID)
	}

	return &AnalyzeOutcome{
		Session:   session,
		Candidate: candidate,
		Result:    result,
	}, nil
}

func (a *analyzerService) saveResume(ctx context.Context, tempPath, key string, size int64) error {
	f, err := os.Open(tempPath)
	if err != nil {
		return fmt.Errorf("failed to reopen temp file: %w", err)
	}
	defer f.Close()

	return a.storage.SaveFile(ctx, key, f, size)
}

func (a *analyzerService) discardResume(ctx context.Context, key string) {
	if err := a.storage.DeleteFile(ctx, key); err != nil {
		log.Printf("⚠️  Failed to remove stored resume %s: %v\n", key, err)
	}
}

func newSession(input AnalyzeInput, modelID, resumeKey, resumeText string, result *models.AnalysisResult) (*models.AnalysisSession, error) {
	detailed, err := json.Marshal(result.DetailedAnalysis)
	if err != nil {
		return nil, fmt.Errorf("failed to encode detailed analysis: %w", err)
	}
	raw, err := json.Marshal(result.RawResponse)
	if err != nil {
		return nil, fmt.Errorf("failed to encode model response: %w", err)
	}

	return &models.AnalysisSession{
		ResumeFile:           resumeKey,
		ResumeFileName:       filepath.Base(input.FileName),
		JobDescription:       input.JobDescription,
		ResumeText:           resumeText,
		ModelID:              modelID,
		MatchPercentage:      result.MatchPercentage,
		MatchingSkills:       datatypes.JSONSlice[string](result.MatchingSkills),
		MatchingEducation:    result.MatchingEducation,
		MatchingExperience:   result.MatchingExperience,
		HighlightedStrengths: datatypes.JSONSlice[string](result.HighlightedStrengths),
		IdentifiedGaps:       datatypes.JSONSlice[string](result.IdentifiedGaps),
		DetailedAnalysis:     datatypes.JSON(detailed),
		AIResponse:           datatypes.JSON(raw),
		ProcessingTime:       round2(time.Since(input.StartedAt).Seconds()),
	}, nil
}
