package response_test

import (
	"errors"
	"testing"

	"github.com/maxviazov/gps-performance-service/internal/catalog"
	"github.com/maxviazov/gps-performance-service/internal/repository"
	"github.com/maxviazov/gps-performance-service/internal/service"
	"github.com/maxviazov/gps-performance-service/internal/units"
	"github.com/maxviazov/gps-performance-service/pkg/response"
)

// fakeInvalid mimics the service's aggregated validation error without
// reaching into internals.
type fakeInvalid struct{ fe []service.FieldError }

func (f *fakeInvalid) Error() string                { return service.ErrInvalidInput.Error() }
func (f *fakeInvalid) Unwrap() error                { return service.ErrInvalidInput }
func (f *fakeInvalid) Fields() []service.FieldError { return f.fe }

func TestMapError(t *testing.T) {
	cases := []struct {
		name     string
		in       error
		wantCode int
		wantErr  string
	}{
		{"invalid_input", &fakeInvalid{fe: []service.FieldError{{Field: "name", Message: "bad"}}}, 400, "invalid_input"},
		{"incomplete_columns", &service.IncompleteColumnsError{Columns: []string{"Dist", "HSR"}}, 422, "incomplete_visible_columns"},
		{"structure_frozen", service.ErrStructureFrozen, 409, "structure_frozen"},
		{"duplicate_metric", service.ErrDuplicateMetric, 409, "duplicate_metric"},
		{"duplicate_name", service.ErrDuplicateName, 409, "duplicate_name"},
		{"duplicate_mapping", service.ErrDuplicateMapping, 409, "duplicate_mapping"},
		{"profile_inactive", service.ErrProfileInactive, 409, "profile_inactive"},
		{"incompatible_catalog", catalog.ErrIncompatibleCatalog, 409, "incompatible_catalog"},
		{"broken_catalog_entry", catalog.ErrUnknownMetric, 500, "configuration_error"},
		{"broken_unit_binding", units.ErrUnknownUnit, 500, "configuration_error"},
		{"broken_dimension", units.ErrUnknownDimension, 500, "configuration_error"},
		{"not_found", repository.ErrNotFound, 404, "not_found"},
		{"already_exists", repository.ErrAlreadyExists, 409, "already_exists"},
		{"conflict", repository.ErrConflict, 409, "conflict"},
		{"internal", errors.New("boom"), 500, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, payload := response.MapError(tc.in)
			if code != tc.wantCode || payload.Error != tc.wantErr {
				t.Fatalf("unexpected mapping: got (%d,%s) want (%d,%s)", code, payload.Error, tc.wantCode, tc.wantErr)
			}
			if tc.wantErr == "invalid_input" && len(payload.FieldErrors) == 0 {
				t.Fatalf("expected field errors in payload")
			}
			if tc.wantErr == "incomplete_visible_columns" && len(payload.IncompleteColumns) != 2 {
				t.Fatalf("expected offending columns in payload, got %v", payload.IncompleteColumns)
			}
		})
	}
}
