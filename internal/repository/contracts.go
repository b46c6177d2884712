package repository

import (
	"context"
	"time"

	"github.com/maxviazov/gps-performance-service/internal/model"
)

// Pinger represents a minimal readiness probe capability.
// I use it to decouple health checks from storage implementation details.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
// I pass context through so nested calls can honor cancellations and deadlines.
type TxFunc func(ctx context.Context) error

// TxManager abstracts transactional execution for repositories that support it.
// Player-mapping replacement is the one write that must be all-or-nothing,
// so the boundary stays explicit here rather than hidden in a repo method.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// ProfileRepository persists GPS ingestion profiles and their column
// mappings. UsedReportsCount on returned profiles is always recomputed from
// the reports table; callers re-check it at every structural-edit entry point.
type ProfileRepository interface {
	Create(ctx context.Context, p model.GpsProfile) (model.GpsProfile, error)
	GetByID(ctx context.Context, id int64) (model.GpsProfile, error)
	ListByClub(ctx context.Context, clubID int64, page Page) (PageResult[model.GpsProfile], error)
	SetActive(ctx context.Context, id int64, active bool) error
	// CountUsedReports is the freeze guard: number of reports referencing
	// the profile, read fresh from storage.
	CountUsedReports(ctx context.Context, profileID int64) (int, error)

	AddMapping(ctx context.Context, m model.ColumnMapping) (model.ColumnMapping, error)
	GetMapping(ctx context.Context, id int64) (model.ColumnMapping, error)
	ListMappings(ctx context.Context, profileID int64) ([]model.ColumnMapping, error)
	UpdateMapping(ctx context.Context, m model.ColumnMapping) (model.ColumnMapping, error)
	DeleteMapping(ctx context.Context, id int64) error
}

// BaselineWindow scopes the historical report set for baseline computation.
// Exactly one of Since / LastN is used depending on event type: trainings
// use a trailing time span, matches a trailing count.
type BaselineWindow struct {
	TeamID          int64
	EventType       model.EventType
	Since           *time.Time
	LastN           int
	ExcludeReportID int64
}

// ReportRepository persists uploaded GPS reports. RawData is immutable
// after Create.
type ReportRepository interface {
	Create(ctx context.Context, r model.GpsReport) (model.GpsReport, error)
	GetByID(ctx context.Context, id int64) (model.GpsReport, error)
	// ListWindow returns historical reports for baseline construction,
	// newest first, never including the excluded (current) report.
	ListWindow(ctx context.Context, w BaselineWindow) ([]model.GpsReport, error)
}

// PlayerMappingRepository persists row→player assignments per report.
// ReplaceForReport implements the delete-then-insert batch pattern and is
// expected to run inside TxManager.WithinTx.
type PlayerMappingRepository interface {
	ReplaceForReport(ctx context.Context, reportID int64, mappings []model.PlayerMapping) error
	ListByReport(ctx context.Context, reportID int64) ([]model.PlayerMapping, error)
	// ListByReports fetches assignments for several reports in one round
	// trip; baseline math touches many reports at once.
	ListByReports(ctx context.Context, reportIDs []int64) (map[int64][]model.PlayerMapping, error)
}

// RosterRepository reads the roster owned by the surrounding application.
// Strictly read-only from this engine's point of view.
type RosterRepository interface {
	ListByTeam(ctx context.Context, teamID int64) ([]model.Player, error)
	GetByID(ctx context.Context, id int64) (model.Player, error)
}
