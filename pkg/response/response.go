// Package response centralizes HTTP response shapes and helpers.
// Handlers rely on it to keep controllers thin and uniform.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/gps-performance-service/internal/catalog"
	"github.com/maxviazov/gps-performance-service/internal/repository"
	"github.com/maxviazov/gps-performance-service/internal/service"
	"github.com/maxviazov/gps-performance-service/internal/units"
)

// ErrorPayload is the canonical error envelope returned by the API.
type ErrorPayload struct {
	Error             string               `json:"error"`
	Message           string               `json:"message,omitempty"`
	FieldErrors       []service.FieldError `json:"field_errors,omitempty"`
	IncompleteColumns []string             `json:"incomplete_columns,omitempty"`
}

// MapError converts a domain / infrastructure error into an HTTP status and payload.
// Extend here as new domain error categories emerge.
func MapError(err error) (int, ErrorPayload) {
	if err == nil {
		return http.StatusOK, ErrorPayload{Error: "ok"}
	}

	if errors.Is(err, service.ErrInvalidInput) {
		return http.StatusBadRequest, ErrorPayload{
			Error:       "invalid_input",
			Message:     "one or more fields are invalid",
			FieldErrors: service.FieldErrors(err),
		}
	}
	if cols := service.IncompleteColumns(err); cols != nil {
		return http.StatusUnprocessableEntity, ErrorPayload{
			Error:             "incomplete_visible_columns",
			Message:           "every visible column needs a name, metric and unit",
			IncompleteColumns: cols,
		}
	}

	switch {
	case errors.Is(err, service.ErrStructureFrozen):
		return http.StatusConflict, ErrorPayload{
			Error:   "structure_frozen",
			Message: "profile has used reports; only display attributes are editable",
		}
	case errors.Is(err, service.ErrDuplicateMetric):
		return http.StatusConflict, ErrorPayload{Error: "duplicate_metric", Message: err.Error()}
	case errors.Is(err, service.ErrDuplicateName):
		return http.StatusConflict, ErrorPayload{Error: "duplicate_name", Message: err.Error()}
	case errors.Is(err, service.ErrDuplicateMapping):
		return http.StatusConflict, ErrorPayload{Error: "duplicate_mapping", Message: err.Error()}
	case errors.Is(err, service.ErrProfileInactive):
		return http.StatusConflict, ErrorPayload{Error: "profile_inactive", Message: err.Error()}
	case errors.Is(err, catalog.ErrIncompatibleCatalog):
		return http.StatusConflict, ErrorPayload{Error: "incompatible_catalog", Message: err.Error()}
	case errors.Is(err, catalog.ErrUnknownMetric),
		errors.Is(err, units.ErrUnknownDimension),
		errors.Is(err, units.ErrUnknownUnit):
		// Configuration errors: the catalog or a stored mapping is broken.
		return http.StatusInternalServerError, ErrorPayload{Error: "configuration_error", Message: err.Error()}
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, ErrorPayload{Error: "not_found"}
	case errors.Is(err, repository.ErrAlreadyExists):
		return http.StatusConflict, ErrorPayload{Error: "already_exists"}
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, ErrorPayload{Error: "conflict"}
	default:
		return http.StatusInternalServerError, ErrorPayload{Error: "internal_error"}
	}
}

// WriteError writes an error response and aborts the context.
func WriteError(c *gin.Context, err error) {
	status, payload := MapError(err)
	c.AbortWithStatusJSON(status, payload)
}

// WriteData writes a successful JSON response.
func WriteData(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}
