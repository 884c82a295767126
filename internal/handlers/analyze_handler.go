package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hareesh182003/Interview-Agent/internal/models"
	"github.com/hareesh182003/Interview-Agent/internal/services"
)

type AnalyzeHandler struct {
	analyzer services.AnalyzerService
}

func NewAnalyzeHandler(analyzer services.AnalyzerService) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer: analyzer,
	}
}

// HandleAnalyze handles POST /analyze
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	startedAt := time.Now()

	fileHeader, err := c.FormFile("resume_file")
	if err != nil {
		return badRequest(c, "resume_file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return badRequest(c, "failed to read resume_file")
	}
	defer file.Close()

	outcome, err := h.analyzer.Analyze(c.UserContext(), services.AnalyzeInput{
		FileName:       fileHeader.Filename,
		Size:           fileHeader.Size,
		Content:        file,
		JobDescription: c.FormValue("job_description"),
		ModelID:        c.FormValue("model_id"),
		StartedAt:      startedAt,
	})
	if err != nil {
		return respondError(c, err)
	}

	session := outcome.Session
	response := models.AnalyzeResponse{
		SessionID:            session.ID.String(),
		MatchPercentage:      session.MatchPercentage,
		MatchingSkills:       outcome.Result.MatchingSkills,
		MatchingEducation:    session.MatchingEducation,
		MatchingExperience:   session.MatchingExperience,
		HighlightedStrengths: outcome.Result.HighlightedStrengths,
		IdentifiedGaps:       outcome.Result.IdentifiedGaps,
		ProcessingTime:       session.ProcessingTime,
		IsQualified:          session.IsQualified(),
		CreatedAt:            session.CreatedAt,
	}
	if outcome.Candidate != nil {
		id := outcome.Candidate.ID.String()
		response.QualifiedCandidateID = &id
	}

	return c.Status(fiber.StatusCreated).JSON(response)
}
