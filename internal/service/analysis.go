package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/maxviazov/gps-performance-service/internal/catalog"
	"github.com/maxviazov/gps-performance-service/internal/config"
	"github.com/maxviazov/gps-performance-service/internal/model"
	"github.com/maxviazov/gps-performance-service/internal/repository"
	"github.com/maxviazov/gps-performance-service/internal/units"
)

// analysisService computes team averages, rolling-window baselines and
// per-player game models. Baselines are cached per (team, event type)
// with a short TTL: a stale-by-minutes baseline is tolerable, a wrong one
// is not, so the cache only ever holds values computed by the same code
// path as the uncached read.
type analysisService struct {
	reports    repository.ReportRepository
	profiles   repository.ProfileRepository
	playerMaps repository.PlayerMappingRepository
	cat        *catalog.Catalog
	cfg        config.BaselineConfig
	clock      clockwork.Clock
	baselines  *gocache.Cache
	log        zerolog.Logger
}

func NewAnalysisService(
	reports repository.ReportRepository,
	profiles repository.ProfileRepository,
	playerMaps repository.PlayerMappingRepository,
	cat *catalog.Catalog,
	cfg config.BaselineConfig,
	clock clockwork.Clock,
	logger zerolog.Logger,
) AnalysisService {
	l := logger.With().Str("module", "service").Str("component", "analysis").Logger()
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &analysisService{
		reports:    reports,
		profiles:   profiles,
		playerMaps: playerMaps,
		cat:        cat,
		cfg:        cfg,
		clock:      clock,
		baselines:  gocache.New(ttl, 2*ttl),
		log:        l,
	}
}

// ComputeAverages returns per-metric team means for one report, rendered in
// each mapping's display unit. Only rows confirmed to a player participate;
// nil-mapped rows are exclusions, not zeros.
func (s *analysisService) ComputeAverages(ctx context.Context, reportID int64) ([]model.MetricAverage, error) {
	report, mappings, playerMaps, err := s.loadReportContext(ctx, reportID)
	if err != nil {
		return nil, err
	}

	rows := includedRows(playerMaps)
	means, stats := sessionMeans(s.cat, report, mappings, rows)

	out := make([]model.MetricAverage, 0, len(means))
	for _, cm := range mappings {
		mean, ok := means[cm.CanonicalMetric]
		if !ok {
			continue
		}
		avg, err := renderAverage(s.cat, cm, mean)
		if err != nil {
			// A broken unit binding is a configuration error; surface it
			// rather than rendering a wrong number.
			return nil, err
		}
		st := stats[cm.CanonicalMetric]
		avg.RowsUsed = st.used
		avg.RowsSkipped = st.skipped
		out = append(out, avg)
	}
	s.log.Debug().Int64("report_id", reportID).Int("metrics", len(out)).Msg("averages computed")
	return out, nil
}

// CompareReport compares a report's team means against the rolling
// historical baseline for the same team and event type. With no prior
// sessions in the window the status is first_session and no comparisons
// are produced; that is a reportable state, not an error.
func (s *analysisService) CompareReport(ctx context.Context, reportID int64) ([]model.MetricComparison, model.BaselineStatus, error) {
	report, mappings, playerMaps, err := s.loadReportContext(ctx, reportID)
	if err != nil {
		return nil, "", err
	}

	rows := includedRows(playerMaps)
	current, _ := sessionMeans(s.cat, report, mappings, rows)

	baseline, sessions, err := s.teamBaseline(ctx, report)
	if err != nil {
		return nil, "", err
	}
	if sessions == 0 {
		return nil, model.BaselineFirstSession, nil
	}

	out := make([]model.MetricComparison, 0, len(current))
	for _, cm := range mappings {
		cur, ok := current[cm.CanonicalMetric]
		if !ok {
			continue
		}
		hist := baseline[cm.CanonicalMetric] // zero when absent → no comparison
		cmp := CompareToBaseline(cur, hist)
		mc, err := s.renderComparison(cm, cmp)
		if err != nil {
			return nil, "", err
		}
		out = append(out, mc)
	}
	return out, model.BaselineOK, nil
}

// PlayerGameModel compares one player's session values against their own
// long-run per-metric averages across all prior sessions of the same event
// type. The current report never contributes to its own model.
func (s *analysisService) PlayerGameModel(ctx context.Context, playerID, reportID int64) ([]model.GameModelEntry, error) {
	var ferrs []FieldError
	if playerID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "player_id", Message: "must be > 0"})
	}
	if reportID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "report_id", Message: "must be > 0"})
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		return nil, err
	}

	report, mappings, playerMaps, err := s.loadReportContext(ctx, reportID)
	if err != nil {
		return nil, err
	}
	current, _ := sessionMeans(s.cat, report, mappings, playerRows(playerMaps, playerID))

	// All prior sessions of the same type, no trailing cutoff: the game
	// model is the long-run profile.
	window := repository.BaselineWindow{
		TeamID:          report.TeamID,
		EventType:       report.EventType,
		ExcludeReportID: report.ID,
	}
	history, err := s.reports.ListWindow(ctx, window)
	if err != nil {
		return nil, err
	}
	series, sessions, err := s.playerSeries(ctx, history, playerID)
	if err != nil {
		return nil, err
	}

	out := make([]model.GameModelEntry, 0, len(current))
	for _, cm := range mappings {
		cur, ok := current[cm.CanonicalMetric]
		if !ok {
			continue
		}
		entry := model.GameModelEntry{
			CanonicalMetric: cm.CanonicalMetric,
			CustomName:      cm.CustomName,
			DisplayUnit:     cm.DisplayUnit,
			SessionValue:    cur,
			SessionsInModel: sessions,
		}
		if modelValue, ok := meanOf(series[cm.CanonicalMetric]); ok {
			entry.ModelValue = modelValue
			entry.Comparison = CompareToBaseline(cur, modelValue)
		} else {
			entry.Comparison = model.Comparison{Status: model.BaselineFirstSession, CurrentValue: cur}
		}
		out = append(out, entry)
	}
	return out, nil
}

// loadReportContext fetches the report, its profile's visible mappings and
// its player assignments in one place; every analysis path starts here.
func (s *analysisService) loadReportContext(ctx context.Context, reportID int64) (model.GpsReport, []model.ColumnMapping, []model.PlayerMapping, error) {
	if reportID <= 0 {
		return model.GpsReport{}, nil, nil, NewInvalidInputError([]FieldError{{Field: "report_id", Message: "must be > 0"}})
	}
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return model.GpsReport{}, nil, nil, err
	}
	profile, err := s.profiles.GetByID(ctx, report.ProfileID)
	if err != nil {
		return model.GpsReport{}, nil, nil, err
	}
	if !s.cat.CompatibleWith(profile.CatalogVersion) {
		return model.GpsReport{}, nil, nil, fmt.Errorf("%w: profile has %q, engine has %q",
			catalog.ErrIncompatibleCatalog, profile.CatalogVersion, s.cat.Version())
	}
	mappings, err := s.profiles.ListMappings(ctx, report.ProfileID)
	if err != nil {
		return model.GpsReport{}, nil, nil, err
	}
	playerMaps, err := s.playerMaps.ListByReport(ctx, reportID)
	if err != nil {
		return model.GpsReport{}, nil, nil, err
	}
	return report, mappings, playerMaps, nil
}

type cachedBaseline struct {
	means    map[string]float64
	sessions int
}

// teamBaseline computes the per-metric historical mean over the rolling
// window: trailing days for trainings, trailing count for matches. The
// current report is always excluded from its own baseline.
func (s *analysisService) teamBaseline(ctx context.Context, report model.GpsReport) (map[string]float64, int, error) {
	key := fmt.Sprintf("baseline:%d:%s:%d", report.TeamID, report.EventType, report.ID)
	if v, ok := s.baselines.Get(key); ok {
		cb := v.(cachedBaseline)
		return cb.means, cb.sessions, nil
	}

	window := repository.BaselineWindow{
		TeamID:          report.TeamID,
		EventType:       report.EventType,
		ExcludeReportID: report.ID,
	}
	switch report.EventType {
	case model.EventTraining:
		since := s.clock.Now().AddDate(0, 0, -s.cfg.TrainingWindowDays)
		window.Since = &since
	case model.EventMatch:
		window.LastN = s.cfg.MatchWindowCount
	}

	history, err := s.reports.ListWindow(ctx, window)
	if err != nil {
		return nil, 0, err
	}
	if len(history) == 0 {
		s.baselines.SetDefault(key, cachedBaseline{})
		return nil, 0, nil
	}

	ids := make([]int64, len(history))
	for i, h := range history {
		ids[i] = h.ID
	}
	mapsByReport, err := s.playerMaps.ListByReports(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	// Per-session means first, then the mean of session means: one
	// unusually large squad session must not outweigh the others.
	series := make(map[string][]float64)
	mappingCache := make(map[int64][]model.ColumnMapping)
	for _, h := range history {
		mappings, ok := mappingCache[h.ProfileID]
		if !ok {
			mappings, err = s.profiles.ListMappings(ctx, h.ProfileID)
			if err != nil {
				return nil, 0, err
			}
			mappingCache[h.ProfileID] = mappings
		}
		means, _ := sessionMeans(s.cat, h, mappings, includedRows(mapsByReport[h.ID]))
		for metric, v := range means {
			series[metric] = append(series[metric], v)
		}
	}

	baseline := make(map[string]float64, len(series))
	for metric, vals := range series {
		if m, ok := meanOf(vals); ok {
			baseline[metric] = m
		}
	}
	s.baselines.SetDefault(key, cachedBaseline{means: baseline, sessions: len(history)})
	s.log.Debug().
		Int64("team_id", report.TeamID).
		Str("event_type", string(report.EventType)).
		Int("sessions", len(history)).
		Msg("baseline computed")
	return baseline, len(history), nil
}

// playerSeries collects one player's per-metric session values across
// historical reports. Sessions where the player has no confirmed row are
// skipped entirely.
func (s *analysisService) playerSeries(ctx context.Context, history []model.GpsReport, playerID int64) (map[string][]float64, int, error) {
	if len(history) == 0 {
		return map[string][]float64{}, 0, nil
	}
	ids := make([]int64, len(history))
	for i, h := range history {
		ids[i] = h.ID
	}
	mapsByReport, err := s.playerMaps.ListByReports(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	series := make(map[string][]float64)
	sessions := 0
	mappingCache := make(map[int64][]model.ColumnMapping)
	for _, h := range history {
		rows := playerRows(mapsByReport[h.ID], playerID)
		if len(rows) == 0 {
			continue
		}
		mappings, ok := mappingCache[h.ProfileID]
		if !ok {
			mappings, err = s.profiles.ListMappings(ctx, h.ProfileID)
			if err != nil {
				return nil, 0, err
			}
			mappingCache[h.ProfileID] = mappings
		}
		means, _ := sessionMeans(s.cat, h, mappings, rows)
		if len(means) == 0 {
			continue
		}
		sessions++
		for metric, v := range means {
			series[metric] = append(series[metric], v)
		}
	}
	return series, sessions, nil
}

// renderComparison converts a canonical-unit comparison into the mapping's
// display unit for presentation. The percentage deviation is unit-free and
// carries over unchanged.
func (s *analysisService) renderComparison(cm model.ColumnMapping, cmp model.Comparison) (model.MetricComparison, error) {
	met, err := s.cat.Metric(cm.CanonicalMetric)
	if err != nil {
		return model.MetricComparison{}, err
	}
	from := met.CanonicalUnit
	if met.Dimension == units.Time {
		from = "min" // session means for time metrics are in minutes
	}
	to := displayUnitOr(cm.DisplayUnit, from)
	cur, err := units.Convert(cmp.CurrentValue, from, to, met.Dimension)
	if err != nil {
		return model.MetricComparison{}, err
	}
	hist, err := units.Convert(cmp.BaselineValue, from, to, met.Dimension)
	if err != nil {
		return model.MetricComparison{}, err
	}
	cmp.CurrentValue = cur
	cmp.BaselineValue = hist
	cmp.AbsoluteDiff = cur - hist
	return model.MetricComparison{
		CanonicalMetric: cm.CanonicalMetric,
		CustomName:      cm.CustomName,
		DisplayUnit:     to,
		Comparison:      cmp,
	}, nil
}
