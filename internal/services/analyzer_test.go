package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/hareesh182003/Interview-Agent/internal/repositories"
	"github.com/hareesh182003/Interview-Agent/internal/testutil"
)

const testMaxFileSize = 1024

type recordingWorker struct {
	enqueued []uuid.UUID
}

func (w *recordingWorker) Start(ctx context.Context) {}
func (w *recordingWorker) Stop()                    {}
func (w *recordingWorker) EnqueueJob(id uuid.UUID)  { w.enqueued = append(w.enqueued, id) }

type analyzerFixture struct {
	sessions   repositories.AnalysisSessionRepository
	candidates repositories.QualifiedCandidateRepository
	extractor  *fakeExtractor
	model      *fakeModelClient
	events     *MockEventPublisher
	worker     *recordingWorker
	uploadDir  string
	tempDir    string
	analyzer   AnalyzerService
}

func newAnalyzerFixture(t *testing.T, response string) *analyzerFixture {
	t.Helper()

	db := testutil.NewTestDB(t)
	f := &analyzerFixture{
		sessions:   repositories.NewAnalysisSessionRepository(db),
		candidates: repositories.NewQualifiedCandidateRepository(db),
		extractor:  &fakeExtractor{text: "Jane Doe. Senior Go engineer with Kubernetes and PostgreSQL."},
		model:      &fakeModelClient{response: response},
		events:     &MockEventPublisher{},
		worker:     &recordingWorker{},
		uploadDir:  t.TempDir(),
		tempDir:    t.TempDir(),
	}
	f.events.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return()

	storage := NewStorageService(f.uploadDir, f.tempDir)
	qualification := NewQualificationService(f.sessions, f.candidates, storage, f.events)
	f.analyzer = NewAnalyzerService(
		f.sessions,
		f.extractor,
		f.model,
		storage,
		qualification,
		f.events,
		f.worker,
		"anthropic.claude-3-5-sonnet-20240620-v1:0",
		testMaxFileSize,
	)
	return f
}

func validInput() AnalyzeInput {
	body := "%PDF-1.4 fake resume body"
	return AnalyzeInput{
		FileName:       "jane_doe.pdf",
		Size:           int64(len(body)),
		Content:        strings.NewReader(body),
		JobDescription: "Senior Go engineer",
	}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestAnalyzeQualifyingResume(t *testing.T) {
	f := newAnalyzerFixture(t, "```json\n{\"match_percentage\": 86.5, \"matching_skills\": [\"Go\", \"Kubernetes\"], \"detailed_analysis\": {\"skills_breakdown\": {\"matched_count\": 2}}}\n```")

	outcome, err := f.analyzer.Analyze(context.Background(), validInput())
	require.NoError(t, err)

	require.NotNil(t, outcome.Session)
	require.NotNil(t, outcome.Candidate)
	assert.Equal(t, 86.5, outcome.Result.MatchPercentage)

	stored, err := f.sessions.FindByID(outcome.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane_doe.pdf", stored.ResumeFileName)
	assert.Equal(t, "anthropic.claude-3-5-sonnet-20240620-v1:0", stored.ModelID)
	assert.Equal(t, f.extractor.text, stored.ResumeText)
	assert.Equal(t, []string{"Go", "Kubernetes"}, []string(stored.MatchingSkills))
	assert.Equal(t, int64(2), gjson.GetBytes(stored.DetailedAnalysis, "skills_breakdown.matched_count").Int())
	assert.Equal(t, 86.5, gjson.GetBytes(stored.AIResponse, "match_percentage").Float())
	assert.GreaterOrEqual(t, stored.ProcessingTime, 0.0)
	assert.True(t, strings.HasPrefix(stored.ResumeFile, "resumes/"))

	saved, err := os.ReadFile(filepath.Join(f.uploadDir, filepath.FromSlash(stored.ResumeFile)))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake resume body", string(saved))

	candidate, err := f.candidates.FindBySessionID(stored.ID)
	require.NoError(t, err)
	assert.Equal(t, outcome.Candidate.ID, candidate.ID)

	require.Len(t, f.model.prompts, 1)
	assert.Contains(t, f.model.prompts[0], "Senior Go engineer")
	assert.Contains(t, f.model.prompts[0], f.extractor.text)

	f.events.AssertCalled(t, "Publish", mock.Anything, EventAnalysisCompleted, mock.Anything)
	f.events.AssertCalled(t, "Publish", mock.Anything, EventCandidateQualified, mock.Anything)
	assert.Equal(t, []uuid.UUID{stored.ID}, f.worker.enqueued)
	assert.Empty(t, listDir(t, f.tempDir))
}

func TestAnalyzeBelowThreshold(t *testing.T) {
	f := newAnalyzerFixture(t, `{"match_percentage": 80}`)

	outcome, err := f.analyzer.Analyze(context.Background(), validInput())
	require.NoError(t, err)
	assert.Nil(t, outcome.Candidate)

	candidates, err := f.candidates.List(repositories.CandidateFilter{})
	require.NoError(t, err)
	assert.Empty(t, candidates)
	f.events.AssertNotCalled(t, "Publish", mock.Anything, EventCandidateQualified, mock.Anything)
}

func TestAnalyzeUsesRequestedModel(t *testing.T) {
	f := newAnalyzerFixture(t, `{"match_percentage": 10}`)
	input := validInput()
	input.ModelID = "meta.llama3-70b-instruct-v1:0"

	_, err := f.analyzer.Analyze(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, []string{"meta.llama3-70b-instruct-v1:0"}, f.model.modelIDs)
}

func TestAnalyzeDegradedResponseIsStored(t *testing.T) {
	f := newAnalyzerFixture(t, "Sorry, I cannot help with that.")

	outcome, err := f.analyzer.Analyze(context.Background(), validInput())
	require.NoError(t, err)

	stored, err := f.sessions.FindByID(outcome.Session.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.MatchPercentage)
	assert.Equal(t, "Sorry, I cannot help with that.", gjson.GetBytes(stored.AIResponse, "raw_response").String())
}

func TestAnalyzeValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AnalyzeInput)
		field  string
		target error
	}{
		{"blank job description", func(in *AnalyzeInput) { in.JobDescription = "  \n" }, "job_description", ErrMissingField},
		{"missing file", func(in *AnalyzeInput) { in.Content = nil }, "resume_file", ErrMissingField},
		{"not a pdf", func(in *AnalyzeInput) { in.FileName = "resume.docx" }, "resume_file", ErrInvalidFileType},
		{"declared too large", func(in *AnalyzeInput) { in.Size = testMaxFileSize + 1 }, "resume_file", ErrFileTooLarge},
		{"actually too large", func(in *AnalyzeInput) {
			in.Size = 10
			in.Content = strings.NewReader(strings.Repeat("x", testMaxFileSize+10))
		}, "resume_file", ErrFileTooLarge},
		{"empty file", func(in *AnalyzeInput) {
			in.Size = 0
			in.Content = strings.NewReader("")
		}, "resume_file", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAnalyzerFixture(t, `{"match_percentage": 99}`)
			input := validInput()
			tt.mutate(&input)

			_, err := f.analyzer.Analyze(context.Background(), input)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}

			assert.Empty(t, f.model.prompts)
			sessions, err := f.sessions.FindRecent(10)
			require.NoError(t, err)
			assert.Empty(t, sessions)
		})
	}
}

func TestAnalyzeUppercaseExtensionAllowed(t *testing.T) {
	f := newAnalyzerFixture(t, `{"match_percentage": 40}`)
	input := validInput()
	input.FileName = "RESUME.PDF"

	_, err := f.analyzer.Analyze(context.Background(), input)
	assert.NoError(t, err)
}

func TestAnalyzeStageFailures(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(*analyzerFixture)
		stage  string
		target error
	}{
		{
			name:   "unreadable document",
			setup:  func(f *analyzerFixture) { f.extractor.err = ErrUnreadableDocument },
			stage:  StageExtraction,
			target: ErrUnreadableDocument,
		},
		{
			name:   "model failure",
			setup:  func(f *analyzerFixture) { f.model.err = errors.New("throttled") },
			stage:  StageModel,
		},
		{
			name:   "non numeric score",
			setup:  func(f *analyzerFixture) { f.model.response = `{"match_percentage": "excellent"}` },
			stage:  StageNormalization,
			target: ErrNonNumericScore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAnalyzerFixture(t, `{"match_percentage": 90}`)
			tt.setup(f)

			_, err := f.analyzer.Analyze(context.Background(), validInput())

			var analysisErr *AnalysisError
			require.ErrorAs(t, err, &analysisErr)
			assert.Equal(t, tt.stage, analysisErr.Stage)
			assert.True(t, strings.HasPrefix(err.Error(), "analysis failed: "), err.Error())
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}

			sessions, err := f.sessions.FindRecent(10)
			require.NoError(t, err)
			assert.Empty(t, sessions)
			assert.Empty(t, listDir(t, f.tempDir))
			f.events.AssertNotCalled(t, "Publish", mock.Anything, EventAnalysisCompleted, mock.Anything)
			assert.Empty(t, f.worker.enqueued)
		})
	}
}

func TestAnalyzeWithoutWorker(t *testing.T) {
	f := newAnalyzerFixture(t, `{"match_percentage": 50}`)
	storage := NewStorageService(f.uploadDir, f.tempDir)
	analyzer := NewAnalyzerService(
		f.sessions,
		f.extractor,
		f.model,
		storage,
		NewQualificationService(f.sessions, f.candidates, storage, f.events),
		f.events,
		nil,
		"anthropic.claude-3",
		testMaxFileSize,
	)

	outcome, err := analyzer.Analyze(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, 50.0, outcome.Session.MatchPercentage)
	assert.Empty(t, f.worker.enqueued)

}
