package handlers

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/hareesh182003/Interview-Agent/internal/models"
	"github.com/hareesh182003/Interview-Agent/internal/repositories"
	"github.com/hareesh182003/Interview-Agent/internal/services"
)

type CandidateHandler struct {
	candidates services.CandidateService
	export     services.ExportService
}

func NewCandidateHandler(candidates services.CandidateService, export services.ExportService) *CandidateHandler {
	return &CandidateHandler{
		candidates: candidates,
		export:     export,
	}
}

// candidateFilter reads status, min_percentage and highly_qualified.
func candidateFilter(c *fiber.Ctx) (repositories.CandidateFilter, error) {
	filter := repositories.CandidateFilter{Limit: models.MaxCandidateResults}

	if raw := c.Query("status"); raw != "" {
		status := models.CandidateStatus(raw)
		if !status.Valid() {
			return filter, services.NewValidationError("status", fmt.Errorf("invalid status %q", raw))
		}
		filter.Status = &status
	}

	if raw := c.Query("min_percentage"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filter, services.NewValidationError("min_percentage", fmt.Errorf("not a number: %q", raw))
		}
		filter.MinPercentage = &v
	}

	if raw := c.Query("highly_qualified"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, services.NewValidationError("highly_qualified", fmt.Errorf("not a boolean: %q", raw))
		}
		filter.HighlyQualified = &v
	}

	return filter, nil
}

// HandleList handles GET /qualified-candidates
func (h *CandidateHandler) HandleList(c *fiber.Ctx) error {
	filter, err := candidateFilter(c)
	if err != nil {
		return respondError(c, err)
	}

	candidates, err := h.candidates.List(filter)
	if err != nil {
		return respondError(c, err)
	}

	response := make([]models.CandidateResponse, 0, len(candidates))
	for i := range candidates {
		response = append(response, models.NewCandidateResponse(&candidates[i]))
	}

	return c.JSON(response)
}

// HandleGet handles GET /qualified-candidates/:id
func (h *CandidateHandler) HandleGet(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}

	candidate, err := h.candidates.Get(id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.NewCandidateResponse(candidate))
}

// HandleUpdate handles PATCH /qualified-candidates/:id
func (h *CandidateHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req models.UpdateCandidateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}
	if err := validateRequest(&req); err != nil {
		return respondError(c, err)
	}

	candidate, err := h.candidates.Update(c.UserContext(), id, &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.NewCandidateResponse(candidate))
}

// HandleBulkAction handles POST /qualified-candidates/bulk
func (h *CandidateHandler) HandleBulkAction(c *fiber.Ctx) error {
	var req models.BulkActionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}
	if err := validateRequest(&req); err != nil {
		return respondError(c, err)
	}

	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(c, fmt.Sprintf("invalid candidate id %q", raw))
		}
		ids = append(ids, id)
	}

	updated, err := h.candidates.BulkAction(c.UserContext(), ids, req.Action)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"action":  req.Action,
		"updated": updated,
	})
}

// HandleStats handles GET /qualified-candidates/stats
func (h *CandidateHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.candidates.Stats()
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(stats)
}

// HandleExport handles GET /qualified-candidates/export
func (h *CandidateHandler) HandleExport(c *fiber.Ctx) error {
	format := c.Query("format", services.ExportFormatCSV)
	contentType, err := h.export.ContentType(format)
	if err != nil {
		return respondError(c, err)
	}

	filter, err := candidateFilter(c)
	if err != nil {
		return respondError(c, err)
	}

	candidates, err := h.candidates.List(filter)
	if err != nil {
		return respondError(c, err)
	}

	var buf bytes.Buffer
	if err := h.export.Export(&buf, format, candidates); err != nil {
		return respondError(c, err)
	}

	filename := fmt.Sprintf("qualified_candidates_%s.%s", time.Now().Format("20060102_150405"), format)
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(buf.Bytes())
}
