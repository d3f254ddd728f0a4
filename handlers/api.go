package handlers

import (
	"errors"
	"log"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase/core"

	"renovestimate/services"
)

// APIResponse is the JSON envelope of every /api route.
type APIResponse struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// RespondSuccess writes a success envelope.
func RespondSuccess(e *core.RequestEvent, code int, data any, message string) error {
	return e.JSON(code, APIResponse{
		Status:  "success",
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// RespondError writes an error envelope. data carries field errors, if any.
func RespondError(e *core.RequestEvent, code int, message string, data any) error {
	return e.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// errorStatus maps a service error to an HTTP status and a user message.
// Validation errors come back as their field map.
func errorStatus(err error) (int, string, any) {
	var fieldErrs validation.Errors
	var ruleErr validation.Error
	switch {
	case errors.As(err, &fieldErrs):
		return http.StatusUnprocessableEntity, "Validation failed", fieldErrs
	case errors.As(err, &ruleErr):
		return http.StatusUnprocessableEntity, ruleErr.Error(), nil
	case errors.Is(err, services.ErrEstimateNotFound):
		return http.StatusNotFound, "Estimate not found", nil
	case errors.Is(err, services.ErrUnknownStep):
		return http.StatusNotFound, "Unknown wizard step", nil
	case errors.Is(err, services.ErrUnknownPricingVersion):
		return http.StatusBadRequest, "Unknown pricing version", nil
	case errors.Is(err, services.ErrEstimateLocked):
		return http.StatusConflict, "Estimate already submitted", nil
	case errors.Is(err, services.ErrProjectStepMissing):
		return http.StatusConflict, "Submit the project step first", nil
	}
	return http.StatusInternalServerError, "Internal server error", nil
}

// HandleServiceError writes the envelope for an error returned by services.
// HTMX requests get an error toast instead.
func HandleServiceError(e *core.RequestEvent, err error) error {
	code, message, data := errorStatus(err)
	if code == http.StatusInternalServerError {
		log.Printf("api: %s %s: %v", e.Request.Method, e.Request.URL.Path, err)
	}
	if isHTMX(e) {
		return ErrorToast(e, code, message)
	}
	return RespondError(e, code, message, data)
}

func isHTMX(e *core.RequestEvent) bool {
	return e.Request.Header.Get("HX-Request") == "true"
}
