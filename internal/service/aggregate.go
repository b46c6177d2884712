package service

import (
	"math"
	"strconv"
	"strings"

	"github.com/maxviazov/gps-performance-service/internal/catalog"
	"github.com/maxviazov/gps-performance-service/internal/model"
	"github.com/maxviazov/gps-performance-service/internal/units"
)

// Pure aggregation math. Everything here is deterministic over its inputs:
// recomputing from the same rawData + player-mapping snapshot always yields
// identical results, which is what makes report recomputation idempotent.

const (
	severityNeutralBelow = 5.0
	severityStrongFrom   = 15.0
)

// CompareToBaseline computes the percentage deviation of current against a
// historical mean. A zero or missing baseline yields the no-comparison
// state; it never divides.
func CompareToBaseline(current, historical float64) model.Comparison {
	if historical == 0 {
		return model.Comparison{
			Status:       model.BaselineNoComparison,
			CurrentValue: current,
		}
	}
	diff := units.Round1(((current - historical) / historical) * 100)
	return model.Comparison{
		Status:         model.BaselineOK,
		CurrentValue:   current,
		BaselineValue:  historical,
		AbsoluteDiff:   current - historical,
		PercentageDiff: diff,
		IsHigher:       current > historical,
		Severity:       severityOf(diff),
	}
}

func severityOf(percentageDiff float64) model.Severity {
	abs := math.Abs(percentageDiff)
	switch {
	case abs < severityNeutralBelow:
		return model.SeverityNeutral
	case abs < severityStrongFrom:
		return model.SeverityModerate
	default:
		return model.SeverityStrong
	}
}

// columnStat accumulates one metric's values across included rows.
type columnStat struct {
	sum     float64
	used    int
	skipped int
}

func (c *columnStat) mean() (float64, bool) {
	if c.used == 0 {
		return 0, false
	}
	return c.sum / float64(c.used), true
}

// parseCell interprets one raw cell for a metric. Time-dimension cells may
// be colon-formatted (H:MM:SS) or numeric in the metric's canonical unit;
// the result is always minutes. Other dimensions parse as plain numbers in
// the metric's canonical unit.
func parseCell(met catalog.Metric, raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if met.Dimension == units.Time {
		return units.ParseClock(raw, met.CanonicalUnit)
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return 0, err
	}
	return v, nil
}

// includedRows builds the set of row indexes that participate in
// aggregation: rows explicitly mapped to a player. Rows with a nil player
// id are deliberate exclusions and rows without any mapping are not yet
// confirmed; neither contributes.
func includedRows(mappings []model.PlayerMapping) map[int]bool {
	out := make(map[int]bool, len(mappings))
	for _, m := range mappings {
		if m.PlayerID != nil {
			out[m.RowIndex] = true
		}
	}
	return out
}

// playerRows picks the row indexes assigned to one player.
func playerRows(mappings []model.PlayerMapping, playerID int64) map[int]bool {
	out := make(map[int]bool, 1)
	for _, m := range mappings {
		if m.PlayerID != nil && *m.PlayerID == playerID {
			out[m.RowIndex] = true
		}
	}
	return out
}

// sessionMeans computes per-metric means for one report over the given row
// set, in canonical units (minutes for time). Metrics flagged as excluded
// from averages never appear. Malformed or empty cells are skipped per
// metric, not fatal; the skip counts are visible to the caller.
func sessionMeans(cat *catalog.Catalog, report model.GpsReport, mappings []model.ColumnMapping, rows map[int]bool) (map[string]float64, map[string]*columnStat) {
	stats := make(map[string]*columnStat, len(mappings))
	for _, cm := range mappings {
		if !cm.IsVisible || cm.CanonicalMetric == "" {
			continue
		}
		met, err := cat.Metric(cm.CanonicalMetric)
		if err != nil || met.ExcludeFromAverages {
			continue
		}
		st := &columnStat{}
		for idx, row := range report.RawData {
			if !rows[idx] {
				continue
			}
			raw, ok := row[cm.SourceColumn]
			if !ok || strings.TrimSpace(raw) == "" {
				st.skipped++
				continue
			}
			v, err := parseCell(met, raw)
			if err != nil {
				st.skipped++
				continue
			}
			st.sum += v
			st.used++
		}
		stats[cm.CanonicalMetric] = st
	}

	means := make(map[string]float64, len(stats))
	for key, st := range stats {
		if m, ok := st.mean(); ok {
			means[key] = m
		}
	}
	return means, stats
}

// renderAverage converts a canonical-unit mean into the mapping's display
// unit and formats it. Time metrics re-render as H:MM:SS.
func renderAverage(cat *catalog.Catalog, cm model.ColumnMapping, mean float64) (model.MetricAverage, error) {
	met, err := cat.Metric(cm.CanonicalMetric)
	if err != nil {
		return model.MetricAverage{}, err
	}
	out := model.MetricAverage{
		CanonicalMetric: cm.CanonicalMetric,
		CustomName:      cm.CustomName,
		DisplayUnit:     cm.DisplayUnit,
	}
	if met.Dimension == units.Time {
		// mean is minutes; display follows the clock format.
		v, err := units.Convert(mean, "min", displayUnitOr(cm.DisplayUnit, "min"), units.Time)
		if err != nil {
			return model.MetricAverage{}, err
		}
		out.Value = v
		out.Display = units.FormatClock(mean)
		return out, nil
	}
	v, err := units.Convert(mean, met.CanonicalUnit, displayUnitOr(cm.DisplayUnit, met.CanonicalUnit), met.Dimension)
	if err != nil {
		return model.MetricAverage{}, err
	}
	out.Value = v
	out.Display = units.FormatValue(v, met.Dimension, met.Precision)
	return out, nil
}

func displayUnitOr(unit, fallback string) string {
	if unit == "" {
		return fallback
	}
	return unit
}

// meanOf averages a series; ok is false for an empty series.
func meanOf(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}
