package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/gps-performance-service/internal/catalog"
	"github.com/maxviazov/gps-performance-service/internal/model"
	"github.com/maxviazov/gps-performance-service/internal/repository"
)

// profileService enforces the column-mapping contract: uniqueness of
// canonical metrics and custom names within a profile, display-unit
// validity against the catalog, and the structure freeze.
type profileService struct {
	profiles repository.ProfileRepository
	cat      *catalog.Catalog
	log      zerolog.Logger
}

func NewProfileService(profiles repository.ProfileRepository, cat *catalog.Catalog, logger zerolog.Logger) ProfileService {
	l := logger.With().Str("module", "service").Str("component", "profile").Logger()
	return &profileService{profiles: profiles, cat: cat, log: l}
}

func (s *profileService) CreateProfile(ctx context.Context, clubID int64, name, vendorSystem string) (model.GpsProfile, error) {
	start := time.Now()
	name = strings.TrimSpace(name)
	vendorSystem = strings.TrimSpace(vendorSystem)

	var ferrs []FieldError
	if clubID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "club_id", Message: "must be > 0"})
	}
	if name == "" {
		ferrs = append(ferrs, FieldError{Field: "name", Message: "must not be empty"})
	} else if ln := len([]rune(name)); ln < 2 || ln > 100 {
		ferrs = append(ferrs, FieldError{Field: "name", Message: "length must be between 2 and 100"})
	}
	if vendorSystem == "" {
		ferrs = append(ferrs, FieldError{Field: "vendor_system", Message: "must not be empty"})
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Msg("profile validation failed")
		return model.GpsProfile{}, err
	}

	out, err := s.profiles.Create(ctx, model.GpsProfile{
		ClubID:         clubID,
		Name:           name,
		VendorSystem:   vendorSystem,
		CatalogVersion: s.cat.Version(),
	})
	if err != nil {
		s.log.Error().Err(err).Str("name", name).Msg("create profile failed")
		return model.GpsProfile{}, err
	}
	s.log.Info().Dur("took", time.Since(start)).Int64("profile_id", out.ID).Msg("profile created")
	return out, nil
}

func (s *profileService) GetProfile(ctx context.Context, id int64) (model.GpsProfile, error) {
	if id <= 0 {
		return model.GpsProfile{}, NewInvalidInputError([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	return s.profiles.GetByID(ctx, id)
}

func (s *profileService) ListProfiles(ctx context.Context, clubID int64, page repository.Page) (repository.PageResult[model.GpsProfile], error) {
	if clubID <= 0 {
		return repository.PageResult[model.GpsProfile]{}, NewInvalidInputError([]FieldError{{Field: "club_id", Message: "must be > 0"}})
	}
	return s.profiles.ListByClub(ctx, clubID, normalizePage(page))
}

// AddMapping binds a source column to a canonical metric. Fails with
// ErrStructureFrozen once the profile has used reports, and with the
// duplicate errors on metric/name collisions within the profile.
func (s *profileService) AddMapping(ctx context.Context, m model.ColumnMapping) (model.ColumnMapping, error) {
	m.SourceColumn = strings.TrimSpace(m.SourceColumn)
	m.CustomName = strings.TrimSpace(m.CustomName)

	var ferrs []FieldError
	if m.ProfileID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "profile_id", Message: "must be > 0"})
	}
	if m.SourceColumn == "" {
		ferrs = append(ferrs, FieldError{Field: "source_column", Message: "must not be empty"})
	}
	if m.CanonicalMetric == "" {
		ferrs = append(ferrs, FieldError{Field: "canonical_metric", Message: "must not be empty"})
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		return model.ColumnMapping{}, err
	}

	met, err := s.cat.Metric(m.CanonicalMetric)
	if err != nil {
		return model.ColumnMapping{}, NewInvalidInputError([]FieldError{{Field: "canonical_metric", Message: err.Error()}})
	}
	if m.DisplayUnit == "" {
		m.DisplayUnit = met.CanonicalUnit
	} else if !met.Allows(m.DisplayUnit) {
		return model.ColumnMapping{}, NewInvalidInputError([]FieldError{{Field: "display_unit", Message: "not allowed for metric " + m.CanonicalMetric}})
	}

	// Freeze guard, read fresh at call time.
	if err := s.ensureUnfrozen(ctx, m.ProfileID); err != nil {
		return model.ColumnMapping{}, err
	}
	existing, err := s.profiles.ListMappings(ctx, m.ProfileID)
	if err != nil {
		return model.ColumnMapping{}, err
	}
	if err := checkMappingUniqueness(existing, m, 0); err != nil {
		return model.ColumnMapping{}, err
	}

	out, err := s.profiles.AddMapping(ctx, m)
	if err != nil {
		s.log.Error().Err(err).Int64("profile_id", m.ProfileID).Str("source_column", m.SourceColumn).Msg("add mapping failed")
		return model.ColumnMapping{}, err
	}
	s.log.Info().Int64("mapping_id", out.ID).Str("metric", out.CanonicalMetric).Msg("mapping added")
	return out, nil
}

// UpdateMapping applies a patch. Display attributes are always editable;
// structural fields are rejected with ErrStructureFrozen once the profile
// has used reports.
func (s *profileService) UpdateMapping(ctx context.Context, id int64, patch model.MappingPatch) (model.ColumnMapping, error) {
	if id <= 0 {
		return model.ColumnMapping{}, NewInvalidInputError([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	current, err := s.profiles.GetMapping(ctx, id)
	if err != nil {
		return model.ColumnMapping{}, err
	}

	if patch.HasStructuralChange() {
		if err := s.ensureUnfrozen(ctx, current.ProfileID); err != nil {
			return model.ColumnMapping{}, err
		}
	}

	next := current
	if patch.SourceColumn != nil {
		next.SourceColumn = strings.TrimSpace(*patch.SourceColumn)
	}
	if patch.CanonicalMetric != nil {
		next.CanonicalMetric = *patch.CanonicalMetric
	}
	if patch.CustomName != nil {
		next.CustomName = strings.TrimSpace(*patch.CustomName)
	}
	if patch.DisplayUnit != nil {
		next.DisplayUnit = *patch.DisplayUnit
	}
	if patch.DisplayOrder != nil {
		next.DisplayOrder = *patch.DisplayOrder
	}
	if patch.IsVisible != nil {
		next.IsVisible = *patch.IsVisible
	}
	if patch.Description != nil {
		next.Description = *patch.Description
	}

	met, err := s.cat.Metric(next.CanonicalMetric)
	if err != nil {
		return model.ColumnMapping{}, NewInvalidInputError([]FieldError{{Field: "canonical_metric", Message: err.Error()}})
	}
	if next.DisplayUnit != "" && !met.Allows(next.DisplayUnit) {
		return model.ColumnMapping{}, NewInvalidInputError([]FieldError{{Field: "display_unit", Message: "not allowed for metric " + next.CanonicalMetric}})
	}

	existing, err := s.profiles.ListMappings(ctx, current.ProfileID)
	if err != nil {
		return model.ColumnMapping{}, err
	}
	if err := checkMappingUniqueness(existing, next, id); err != nil {
		return model.ColumnMapping{}, err
	}

	out, err := s.profiles.UpdateMapping(ctx, next)
	if err != nil {
		s.log.Error().Err(err).Int64("mapping_id", id).Msg("update mapping failed")
		return model.ColumnMapping{}, err
	}
	return out, nil
}

// RemoveMapping deletes a mapping while the profile is still mutable. On a
// frozen profile the mapping is soft-invalidated (hidden) instead, so
// historical reports keep rendering consistently.
func (s *profileService) RemoveMapping(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewInvalidInputError([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	current, err := s.profiles.GetMapping(ctx, id)
	if err != nil {
		return err
	}
	used, err := s.profiles.CountUsedReports(ctx, current.ProfileID)
	if err != nil {
		return err
	}
	if used > 0 {
		hidden := current
		hidden.IsVisible = false
		if _, err := s.profiles.UpdateMapping(ctx, hidden); err != nil {
			return err
		}
		s.log.Info().Int64("mapping_id", id).Msg("mapping hidden on frozen profile")
		return nil
	}
	return s.profiles.DeleteMapping(ctx, id)
}

func (s *profileService) ListMappings(ctx context.Context, profileID int64) ([]model.ColumnMapping, error) {
	if profileID <= 0 {
		return nil, NewInvalidInputError([]FieldError{{Field: "profile_id", Message: "must be > 0"}})
	}
	return s.profiles.ListMappings(ctx, profileID)
}

// ActivateProfile validates completeness at commit time: every visible
// mapping needs a custom name, canonical metric and display unit. The error
// lists every offending column, not just the first.
func (s *profileService) ActivateProfile(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewInvalidInputError([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	if _, err := s.profiles.GetByID(ctx, id); err != nil {
		return err
	}
	mappings, err := s.profiles.ListMappings(ctx, id)
	if err != nil {
		return err
	}
	var incomplete []string
	for _, m := range mappings {
		if !m.IsVisible {
			continue
		}
		if strings.TrimSpace(m.CustomName) == "" || m.CanonicalMetric == "" || m.DisplayUnit == "" {
			incomplete = append(incomplete, m.SourceColumn)
		}
	}
	if len(incomplete) > 0 {
		return &IncompleteColumnsError{Columns: incomplete}
	}
	return s.profiles.SetActive(ctx, id, true)
}

func (s *profileService) DeactivateProfile(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewInvalidInputError([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	return s.profiles.SetActive(ctx, id, false)
}

func (s *profileService) MetricChoices(locale string) []model.MetricChoice {
	return s.cat.Choices(locale)
}

// ensureUnfrozen re-reads the used-reports counter and rejects structural
// edits on frozen profiles. Guard clause, never a cached boolean.
func (s *profileService) ensureUnfrozen(ctx context.Context, profileID int64) error {
	used, err := s.profiles.CountUsedReports(ctx, profileID)
	if err != nil {
		return err
	}
	if used > 0 {
		return ErrStructureFrozen
	}
	return nil
}

// checkMappingUniqueness enforces profile-wide uniqueness of canonical
// metric and custom name. skipID excludes the mapping being updated.
func checkMappingUniqueness(existing []model.ColumnMapping, candidate model.ColumnMapping, skipID int64) error {
	for _, e := range existing {
		if e.ID == skipID {
			continue
		}
		if e.CanonicalMetric == candidate.CanonicalMetric {
			return ErrDuplicateMetric
		}
		if candidate.CustomName != "" && e.CustomName == candidate.CustomName {
			return ErrDuplicateName
		}
	}
	return nil
}
