// Package model contains domain entities and DTOs used across layers.
// I keep it lean and focused on data shapes without behavior.
package model

import "time"

// GpsProfile is a saved column-mapping configuration for one GPS vendor's
// export layout. UsedReportsCount is recomputed from the reports table on
// read; it is never cached across requests because the structure freeze
// depends on it.
type GpsProfile struct {
	ID               int64     `json:"id"`
	ClubID           int64     `json:"club_id"`
	Name             string    `json:"name"`
	VendorSystem     string    `json:"vendor_system"`
	CatalogVersion   string    `json:"catalog_version"`
	IsActive         bool      `json:"is_active"`
	UsedReportsCount int       `json:"used_reports_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ColumnMapping binds one source file column to a canonical metric plus
// display attributes. CanonicalMetric and SourceColumn are structural and
// freeze once the profile has been used by a report; the rest stays editable.
type ColumnMapping struct {
	ID              int64     `json:"id"`
	ProfileID       int64     `json:"profile_id"`
	SourceColumn    string    `json:"source_column"`
	CanonicalMetric string    `json:"canonical_metric"`
	CustomName      string    `json:"custom_name"`
	DisplayUnit     string    `json:"display_unit"`
	DisplayOrder    int       `json:"display_order"`
	IsVisible       bool      `json:"is_visible"`
	Description     string    `json:"description"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// MappingPatch carries a partial update for a column mapping. Nil means
// "leave as is". Structural fields are present so the service layer can
// reject them explicitly on frozen profiles instead of silently ignoring them.
type MappingPatch struct {
	SourceColumn    *string `json:"source_column,omitempty"`
	CanonicalMetric *string `json:"canonical_metric,omitempty"`
	CustomName      *string `json:"custom_name,omitempty"`
	DisplayUnit     *string `json:"display_unit,omitempty"`
	DisplayOrder    *int    `json:"display_order,omitempty"`
	IsVisible       *bool   `json:"is_visible,omitempty"`
	Description     *string `json:"description,omitempty"`
}

// HasStructuralChange reports whether the patch touches frozen-able fields.
func (p MappingPatch) HasStructuralChange() bool {
	return p.SourceColumn != nil || p.CanonicalMetric != nil
}

// EventType classifies the session a report was recorded at.
type EventType string

const (
	EventTraining EventType = "training"
	EventMatch    EventType = "match"
)

// RawRow is one decoded file row: source column name → raw cell value.
// Values arrive as strings from the decoding collaborator; the engine is
// responsible for numeric/time interpretation.
type RawRow map[string]string

// GpsReport is one uploaded vendor export attached to a profile and event.
// RawData is immutable after creation.
type GpsReport struct {
	ID        int64     `json:"id"`
	ProfileID int64     `json:"profile_id"`
	TeamID    int64     `json:"team_id"`
	EventID   int64     `json:"event_id"`
	EventType EventType `json:"event_type"`
	EventDate time.Time `json:"event_date"`
	RawData   []RawRow  `json:"raw_data"`
	CreatedAt time.Time `json:"created_at"`
}

// PlayerMapping resolves one raw row to a roster player. A nil PlayerID is a
// deliberate exclusion: the row never participates in any aggregation.
type PlayerMapping struct {
	ReportID int64  `json:"report_id"`
	RowIndex int    `json:"row_index"`
	PlayerID *int64 `json:"player_id"`
}

// Player is the roster entity. Read-only to this engine; it is owned by the
// roster collaborator.
type Player struct {
	ID        int64  `json:"id"`
	TeamID    int64  `json:"team_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Number    int    `json:"number"`
}

// MatchBand groups matcher results by confidence for reviewer attention.
type MatchBand string

const (
	BandHigh   MatchBand = "high"   // 80–100
	BandMedium MatchBand = "medium" // 60–79
	BandLow    MatchBand = "low"    // 50–59
	BandNone   MatchBand = "none"   // unmatched or below threshold
)

// MatchResult is one row's best-effort roster assignment.
type MatchResult struct {
	RowIndex        int       `json:"row_index"`
	FilePlayerName  string    `json:"file_player_name"`
	MatchedPlayer   *Player   `json:"matched_player,omitempty"`
	SimilarityScore int       `json:"similarity_score"`
	Band            MatchBand `json:"band"`
}

// MetricAverage is one metric's team mean for a report, rendered in the
// mapping's display unit. Display carries the formatted value (H:MM:SS for
// time-dimension metrics, rounded numerics otherwise).
type MetricAverage struct {
	CanonicalMetric string  `json:"canonical_metric"`
	CustomName      string  `json:"custom_name"`
	DisplayUnit     string  `json:"display_unit"`
	Value           float64 `json:"value"`
	Display         string  `json:"display"`
	RowsUsed        int     `json:"rows_used"`
	RowsSkipped     int     `json:"rows_skipped"`
}

// BaselineStatus reports whether a historical baseline existed at all.
// "first_session" is an ordinary state, not an error.
type BaselineStatus string

const (
	BaselineOK           BaselineStatus = "ok"
	BaselineFirstSession BaselineStatus = "first_session"
	BaselineNoComparison BaselineStatus = "no_comparison" // historical mean is zero
)

// Severity buckets percentage deviations for color coding.
type Severity string

const (
	SeverityNeutral  Severity = "neutral"  // |diff| < 5
	SeverityModerate Severity = "moderate" // |diff| < 15
	SeverityStrong   Severity = "strong"
)

// Comparison is the outcome of comparing a current value against a
// historical mean. PercentageDiff is rounded to one decimal.
type Comparison struct {
	Status         BaselineStatus `json:"status"`
	CurrentValue   float64        `json:"current_value"`
	BaselineValue  float64        `json:"baseline_value"`
	AbsoluteDiff   float64        `json:"absolute_diff"`
	PercentageDiff float64        `json:"percentage_diff"`
	IsHigher       bool           `json:"is_higher"`
	Severity       Severity       `json:"severity"`
}

// MetricComparison pairs a metric with its baseline comparison for a report.
type MetricComparison struct {
	CanonicalMetric string     `json:"canonical_metric"`
	CustomName      string     `json:"custom_name"`
	DisplayUnit     string     `json:"display_unit"`
	Comparison      Comparison `json:"comparison"`
}

// GameModelEntry is one metric of a player's long-run model compared
// against a specific session.
type GameModelEntry struct {
	CanonicalMetric string     `json:"canonical_metric"`
	CustomName      string     `json:"custom_name"`
	DisplayUnit     string     `json:"display_unit"`
	SessionValue    float64    `json:"session_value"`
	ModelValue      float64    `json:"model_value"`
	SessionsInModel int        `json:"sessions_in_model"`
	Comparison      Comparison `json:"comparison"`
}

// MetricChoice is a concept-deduplicated catalog entry offered to a user
// when configuring a column mapping.
type MetricChoice struct {
	Key          string   `json:"key"`
	Label        string   `json:"label"`
	Dimension    string   `json:"dimension"`
	Category     string   `json:"category"`
	AllowedUnits []string `json:"allowed_units"`
}
