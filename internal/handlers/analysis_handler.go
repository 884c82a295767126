package handlers

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/hareesh182003/Interview-Agent/internal/models"
	"github.com/hareesh182003/Interview-Agent/internal/repositories"
	"github.com/hareesh182003/Interview-Agent/internal/services"
)

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 100
	maxCompareSessions = 10
	defaultSimilar     = 5
)

type AnalysisHandler struct {
	sessionRepo  repositories.AnalysisSessionRepository
	report       services.ReportService
	indexService services.IndexService
}

// NewAnalysisHandler serves stored sessions. indexService may be nil when the
// resume index is disabled.
func NewAnalysisHandler(
	sessionRepo repositories.AnalysisSessionRepository,
	report services.ReportService,
	indexService services.IndexService,
) *AnalysisHandler {
	return &AnalysisHandler{
		sessionRepo:  sessionRepo,
		report:       report,
		indexService: indexService,
	}
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, services.NewValidationError("id", fmt.Errorf("invalid id format"))
	}
	return id, nil
}

// HandleGetAnalysis handles GET /analysis/:id
func (h *AnalysisHandler) HandleGetAnalysis(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}

	session, err := h.sessionRepo.FindByID(id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(session)
}

// HandleListAnalyses handles GET /analyses
func (h *AnalysisHandler) HandleListAnalyses(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultRecentLimit)
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	sessions, err := h.sessionRepo.FindRecent(limit)
	if err != nil {
		return respondError(c, err)
	}

	summaries := make([]models.SessionSummary, 0, len(sessions))
	for i := range sessions {
		summaries = append(summaries, models.NewSessionSummary(&sessions[i]))
	}

	return c.JSON(summaries)
}

// HandleCompare handles GET /analyses/compare?ids=a,b
func (h *AnalysisHandler) HandleCompare(c *fiber.Ctx) error {
	var ids []uuid.UUID
	seen := make(map[uuid.UUID]bool)
	for _, raw := range strings.Split(c.Query("ids"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(c, fmt.Sprintf("invalid session id %q", raw))
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	if len(ids) < 2 || len(ids) > maxCompareSessions {
		return badRequest(c, fmt.Sprintf("ids must list between 2 and %d sessions", maxCompareSessions))
	}

	sessions, err := h.sessionRepo.FindByIDs(ids)
	if err != nil {
		return respondError(c, err)
	}
	if len(sessions) != len(ids) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "one or more sessions not found",
		})
	}

	return c.JSON(services.CompareSessions(sessions))
}

// HandleReport handles GET /analysis/:id/report
func (h *AnalysisHandler) HandleReport(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}

	session, err := h.sessionRepo.FindByID(id)
	if err != nil {
		return respondError(c, err)
	}

	var buf bytes.Buffer
	if err := h.report.WriteSessionReport(&buf, session); err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="ats_report_%s.pdf"`, session.ID))
	return c.Send(buf.Bytes())
}

// HandleSimilar handles GET /analysis/:id/similar
func (h *AnalysisHandler) HandleSimilar(c *fiber.Ctx) error {
	if h.indexService == nil {
		return respondError(c, services.ErrIndexDisabled)
	}

	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}

	similar, err := h.indexService.SimilarSessions(c.UserContext(), id, c.QueryInt("limit", defaultSimilar))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(similar)
}
