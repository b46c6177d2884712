package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/gps-performance-service/internal/catalog"
	"github.com/maxviazov/gps-performance-service/internal/model"
	"github.com/maxviazov/gps-performance-service/internal/repository"
)

// reportService attaches decoded exports to profiles. A successful Ingest
// is what makes a profile's used-reports count go ≥1 and freezes its
// structure; everything after that point relies on rawData being immutable.
type reportService struct {
	reports  repository.ReportRepository
	profiles repository.ProfileRepository
	cat      *catalog.Catalog
	log      zerolog.Logger
}

func NewReportService(reports repository.ReportRepository, profiles repository.ProfileRepository, cat *catalog.Catalog, logger zerolog.Logger) ReportService {
	l := logger.With().Str("module", "service").Str("component", "report").Logger()
	return &reportService{reports: reports, profiles: profiles, cat: cat, log: l}
}

func (s *reportService) Ingest(ctx context.Context, report model.GpsReport) (model.GpsReport, error) {
	start := time.Now()

	var ferrs []FieldError
	if report.ProfileID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "profile_id", Message: "must be > 0"})
	}
	if report.TeamID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "team_id", Message: "must be > 0"})
	}
	if !IsValidEventType(report.EventType) {
		ferrs = append(ferrs, FieldError{Field: "event_type", Message: "must be training or match"})
	}
	if report.EventDate.IsZero() {
		ferrs = append(ferrs, FieldError{Field: "event_date", Message: "must be set"})
	}
	if len(report.RawData) == 0 {
		ferrs = append(ferrs, FieldError{Field: "raw_data", Message: "must not be empty"})
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Msg("report validation failed")
		return model.GpsReport{}, err
	}

	profile, err := s.profiles.GetByID(ctx, report.ProfileID)
	if err != nil {
		return model.GpsReport{}, err
	}
	if !profile.IsActive {
		return model.GpsReport{}, ErrProfileInactive
	}
	// A profile stamped against an incompatible catalog must not be
	// silently reinterpreted: its stored metric keys may mean other things.
	if !s.cat.CompatibleWith(profile.CatalogVersion) {
		return model.GpsReport{}, fmt.Errorf("%w: profile has %q, engine has %q",
			catalog.ErrIncompatibleCatalog, profile.CatalogVersion, s.cat.Version())
	}

	out, err := s.reports.Create(ctx, report)
	if err != nil {
		s.log.Error().Err(err).Int64("profile_id", report.ProfileID).Msg("ingest failed")
		return model.GpsReport{}, err
	}
	s.log.Info().
		Dur("took", time.Since(start)).
		Int64("report_id", out.ID).
		Int64("profile_id", out.ProfileID).
		Int("rows", len(out.RawData)).
		Msg("report ingested")
	return out, nil
}

func (s *reportService) GetReport(ctx context.Context, id int64) (model.GpsReport, error) {
	if id <= 0 {
		return model.GpsReport{}, NewInvalidInputError([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	return s.reports.GetByID(ctx, id)
}
