package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/gps-performance-service/internal/matcher"
	"github.com/maxviazov/gps-performance-service/internal/model"
	"github.com/maxviazov/gps-performance-service/internal/repository"
)

// matchingService wraps the pure matcher with persistence: suggestions are
// computed from the report's raw rows and the roster snapshot; confirmed
// assignments replace the report's player mappings atomically.
type matchingService struct {
	reports  repository.ReportRepository
	mappings repository.PlayerMappingRepository
	roster   repository.RosterRepository
	tx       repository.TxManager
	opts     matcher.Options
	log      zerolog.Logger
}

func NewMatchingService(
	reports repository.ReportRepository,
	mappings repository.PlayerMappingRepository,
	roster repository.RosterRepository,
	tx repository.TxManager,
	opts matcher.Options,
	logger zerolog.Logger,
) MatchingService {
	l := logger.With().Str("module", "service").Str("component", "matching").Logger()
	if opts.MinAcceptScore <= 0 {
		opts = matcher.DefaultOptions()
	}
	return &matchingService{reports: reports, mappings: mappings, roster: roster, tx: tx, opts: opts, log: l}
}

// Suggest extracts the raw name column from every row and runs the fuzzy
// matcher against the report's team roster. Results come back sorted for
// review: high-confidence bands first, unmatched rows last.
func (s *matchingService) Suggest(ctx context.Context, reportID int64, nameColumn string) ([]model.MatchResult, error) {
	var ferrs []FieldError
	if reportID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "report_id", Message: "must be > 0"})
	}
	if strings.TrimSpace(nameColumn) == "" {
		ferrs = append(ferrs, FieldError{Field: "name_column", Message: "must not be empty"})
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		return nil, err
	}

	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	roster, err := s.roster.ListByTeam(ctx, report.TeamID)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(report.RawData))
	for i, row := range report.RawData {
		names[i] = row[nameColumn]
	}

	start := time.Now()
	results := matcher.Match(names, roster, s.opts)
	matched := 0
	for _, r := range results {
		if r.MatchedPlayer != nil {
			matched++
		}
	}
	s.log.Info().
		Dur("took", time.Since(start)).
		Int64("report_id", reportID).
		Int("rows", len(names)).
		Int("matched", matched).
		Msg("match suggestions computed")
	return matcher.SortForReview(results), nil
}

// SaveMappings validates and persists a full batch of row assignments.
// Validation happens before any write; the replace itself is all-or-nothing
// inside one transaction.
func (s *matchingService) SaveMappings(ctx context.Context, reportID int64, mappings []model.PlayerMapping) error {
	if reportID <= 0 {
		return NewInvalidInputError([]FieldError{{Field: "report_id", Message: "must be > 0"}})
	}
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return err
	}

	var ferrs []FieldError
	for _, m := range mappings {
		if m.RowIndex < 0 || m.RowIndex >= len(report.RawData) {
			ferrs = append(ferrs, FieldError{Field: "row_index", Message: "out of range"})
			break
		}
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		return err
	}
	if err := ValidateAssignments(mappings); err != nil {
		return err
	}
	// Verify referenced players exist on the report's team.
	for _, m := range mappings {
		if m.PlayerID == nil {
			continue
		}
		p, err := s.roster.GetByID(ctx, *m.PlayerID)
		if err != nil {
			return err
		}
		if p.TeamID != report.TeamID {
			return NewInvalidInputError([]FieldError{{Field: "player_id", Message: "player not on report team"}})
		}
	}

	for i := range mappings {
		mappings[i].ReportID = reportID
	}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.mappings.ReplaceForReport(ctx, reportID, mappings)
	})
	if err != nil {
		s.log.Error().Err(err).Int64("report_id", reportID).Msg("save player mappings failed")
		return err
	}
	s.log.Info().Int64("report_id", reportID).Int("rows", len(mappings)).Msg("player mappings replaced")
	return nil
}

func (s *matchingService) GetMappings(ctx context.Context, reportID int64) ([]model.PlayerMapping, error) {
	if reportID <= 0 {
		return nil, NewInvalidInputError([]FieldError{{Field: "report_id", Message: "must be > 0"}})
	}
	return s.mappings.ListByReport(ctx, reportID)
}
