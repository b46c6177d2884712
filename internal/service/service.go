// Package service holds business logic orchestration across repositories and handlers.
// Kept intentionally lean: only use-case coordination, validation and domain error shaping.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/maxviazov/gps-performance-service/internal/model"
	"github.com/maxviazov/gps-performance-service/internal/repository"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// Domain rejections specific to the mapping/analysis engine. All of them are
// recoverable by the caller choosing a different edit; none is ever
// auto-resolved silently.
var (
	// ErrStructureFrozen rejects structural edits on a profile that has
	// been used by at least one report.
	ErrStructureFrozen = errors.New("profile structure is frozen")
	// ErrDuplicateMetric rejects a second mapping of the same canonical
	// metric within one profile.
	ErrDuplicateMetric = errors.New("canonical metric already mapped in profile")
	// ErrDuplicateName rejects a colliding custom column name within one profile.
	ErrDuplicateName = errors.New("custom name already used in profile")
	// ErrDuplicateMapping rejects assigning one roster player to more than
	// one file row of the same report.
	ErrDuplicateMapping = errors.New("player assigned to more than one row")
	// ErrProfileInactive rejects attaching reports to a deactivated profile.
	ErrProfileInactive = errors.New("profile is not active")
)

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// NewInvalidInputError builds an aggregated validation error if any field errors are present.
func NewInvalidInputError(fe []FieldError) error {
	if len(fe) == 0 { // protective case
		return nil
	}
	return &invalidInputError{fields: fe}
}

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	type feIface interface{ Fields() []FieldError }
	if v, ok := err.(feIface); ok && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

// IncompleteColumnsError blocks profile activation and lists every visible
// mapping still missing a custom name, canonical metric or display unit.
type IncompleteColumnsError struct {
	Columns []string
}

func (e *IncompleteColumnsError) Error() string {
	return fmt.Sprintf("incomplete visible columns: %s", strings.Join(e.Columns, ", "))
}

// IncompleteColumns extracts the offender list, nil if err is something else.
func IncompleteColumns(err error) []string {
	var ie *IncompleteColumnsError
	if errors.As(err, &ie) {
		return ie.Columns
	}
	return nil
}

// ProfileService manages GPS ingestion profiles and their column mappings.
type ProfileService interface {
	CreateProfile(ctx context.Context, clubID int64, name, vendorSystem string) (model.GpsProfile, error)
	GetProfile(ctx context.Context, id int64) (model.GpsProfile, error)
	ListProfiles(ctx context.Context, clubID int64, page repository.Page) (repository.PageResult[model.GpsProfile], error)
	AddMapping(ctx context.Context, m model.ColumnMapping) (model.ColumnMapping, error)
	UpdateMapping(ctx context.Context, id int64, patch model.MappingPatch) (model.ColumnMapping, error)
	RemoveMapping(ctx context.Context, id int64) error
	ListMappings(ctx context.Context, profileID int64) ([]model.ColumnMapping, error)
	ActivateProfile(ctx context.Context, id int64) error
	DeactivateProfile(ctx context.Context, id int64) error
	MetricChoices(locale string) []model.MetricChoice
}

// ReportService ingests decoded GPS exports and reads them back.
type ReportService interface {
	Ingest(ctx context.Context, report model.GpsReport) (model.GpsReport, error)
	GetReport(ctx context.Context, id int64) (model.GpsReport, error)
}

// MatchingService produces row→player suggestions and persists confirmed
// assignments.
type MatchingService interface {
	Suggest(ctx context.Context, reportID int64, nameColumn string) ([]model.MatchResult, error)
	SaveMappings(ctx context.Context, reportID int64, mappings []model.PlayerMapping) error
	GetMappings(ctx context.Context, reportID int64) ([]model.PlayerMapping, error)
}

// AnalysisService computes team averages, baseline comparisons and
// per-player game models over ingested reports.
type AnalysisService interface {
	ComputeAverages(ctx context.Context, reportID int64) ([]model.MetricAverage, error)
	CompareReport(ctx context.Context, reportID int64) ([]model.MetricComparison, model.BaselineStatus, error)
	PlayerGameModel(ctx context.Context, playerID, reportID int64) ([]model.GameModelEntry, error)
}
