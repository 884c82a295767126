package services

import (
	"errors"
	"fmt"
)

var (
	ErrUnreadableDocument = errors.New("could not extract text from document")
	ErrUnsupportedModel   = errors.New("unsupported model")
	ErrNonNumericScore    = errors.New("match_percentage is not numeric")
	ErrInvalidFileType    = errors.New("only PDF files are allowed")
	ErrFileTooLarge       = errors.New("file size exceeds the allowed limit")
	ErrMissingField       = errors.New("missing required field")
	ErrIndexDisabled      = errors.New("resume index is not configured")
)

// Analysis stages reported on AnalysisError.
const (
	StageStorage       = "storage"
	StageExtraction    = "extraction"
	StageModel         = "model"
	StageNormalization = "normalization"
	StagePersistence   = "persistence"
	StageQualification = "qualification"
)

// ValidationError reports a problem with the caller's input.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Err.Error())
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func NewValidationError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

// AnalysisError wraps any failure after input validation. Its message is
// always "analysis failed: <detail>".
type AnalysisError struct {
	Stage string
	Err   error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis failed: %s", e.Err.Error())
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

func newAnalysisError(stage string, err error) *AnalysisError {
	return &AnalysisError{Stage: stage, Err: err}
}
