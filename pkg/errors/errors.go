package errors

import "fmt"

// Error codes
const (
	CodeCardError  = "CARD_ERROR"
	CodeValidation = "VALIDATION_ERROR"
	CodeCache      = "CACHE_ERROR"
	CodeGeneration = "GENERATION_ERROR"
	CodeStore      = "STORE_ERROR"
)

type CardError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *CardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *CardError) Unwrap() error {
	return e.Cause
}

func NewCardError(message, code string, statusCode int, context map[string]any) *CardError {
	return &CardError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *CardError) WithCause(cause error) *CardError {
	e.Cause = cause
	return e
}

type ValidationError struct {
	*CardError
	Field string
	Value interface{}
}

func NewValidationError(message, field string, value interface{}) *ValidationError {
	return &ValidationError{
		CardError: &CardError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: 400,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

type CacheError struct {
	*CardError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		CardError: &CardError{
			Message:    message,
			Code:       CodeCache,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

// GenerationError marks a fatal synthesis failure: the request aborts with no
// cache write and no share record.
type GenerationError struct {
	*CardError
	Stage string
}

func NewGenerationError(message, stage string, cause error) *GenerationError {
	return &GenerationError{
		CardError: &CardError{
			Message:    message,
			Code:       CodeGeneration,
			StatusCode: 500,
			Context: map[string]any{
				"stage": stage,
			},
			Cause: cause,
		},
		Stage: stage,
	}
}

type StoreError struct {
	*CardError
	Operation string
}

func NewStoreError(message, operation string, cause error) *StoreError {
	return &StoreError{
		CardError: &CardError{
			Message:    message,
			Code:       CodeStore,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
			},
			Cause: cause,
		},
		Operation: operation,
	}
}
