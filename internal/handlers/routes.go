package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts every endpoint under api. Static segments are
// registered before the :id routes they would otherwise shadow.
func RegisterRoutes(
	api fiber.Router,
	analyze *AnalyzeHandler,
	analysis *AnalysisHandler,
	candidates *CandidateHandler,
) {
	api.Post("/analyze", analyze.HandleAnalyze)

	api.Get("/analyses", analysis.HandleListAnalyses)
	api.Get("/analyses/compare", analysis.HandleCompare)
	api.Get("/analysis/:id", analysis.HandleGetAnalysis)
	api.Get("/analysis/:id/report", analysis.HandleReport)
	api.Get("/analysis/:id/similar", analysis.HandleSimilar)

	api.Get("/qualified-candidates", candidates.HandleList)
	api.Get("/qualified-candidates/stats", candidates.HandleStats)
	api.Get("/qualified-candidates/export", candidates.HandleExport)
	api.Post("/qualified-candidates/bulk", candidates.HandleBulkAction)
	api.Get("/qualified-candidates/:id", candidates.HandleGet)
	api.Patch("/qualified-candidates/:id", candidates.HandleUpdate)
}
