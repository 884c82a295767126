package handlers

import (
	"errors"
	"log"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/hareesh182003/Interview-Agent/internal/repositories"
	"github.com/hareesh182003/Interview-Agent/internal/services"
)

var validate = newValidator()

// newValidator reports fields by their json names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest reports the first failing field as a ValidationError.
func validateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return services.NewValidationError(fe.Field(), errors.New("failed on '"+fe.Tag()+"' rule"))
	}
	return services.NewValidationError("", err)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
	})
}

// respondError maps service and repository errors onto HTTP statuses.
func respondError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	var analysisErr *services.AnalysisError

	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": validationErr.Error(),
			"field": validationErr.Field,
		})
	case errors.As(err, &analysisErr):
		log.Printf("❌ %v (stage: %s)\n", err, analysisErr.Stage)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": analysisErr.Error(),
			"stage": analysisErr.Stage,
		})
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, repositories.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, services.ErrIndexDisabled):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": err.Error(),
		})
	default:
		log.Printf("❌ Request failed: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}
