package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/gps-performance-service/internal/model"
	"github.com/maxviazov/gps-performance-service/internal/repository"
)

type reportRepository struct{ pool *pgxpool.Pool }

func NewReportRepository(pool *pgxpool.Pool) repository.ReportRepository {
	return &reportRepository{pool: pool}
}

const reportColumns = `id, profile_id, team_id, event_id, event_type, event_date, raw_data, created_at`

func (r *reportRepository) Create(ctx context.Context, rep model.GpsReport) (model.GpsReport, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.GpsReport{}, err
	}
	raw, err := json.Marshal(rep.RawData)
	if err != nil {
		return model.GpsReport{}, fmt.Errorf("marshal raw data: %w", err)
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`INSERT INTO gps_reports (profile_id, team_id, event_id, event_type, event_date, raw_data)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 RETURNING `+reportColumns,
		rep.ProfileID, rep.TeamID, rep.EventID, rep.EventType, rep.EventDate, raw,
	)
	return scanReport(row)
}

func (r *reportRepository) GetByID(ctx context.Context, id int64) (model.GpsReport, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.GpsReport{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`SELECT `+reportColumns+` FROM gps_reports WHERE id = $1`, id,
	)
	out, err := scanReport(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.GpsReport{}, repository.ErrNotFound
		}
		return model.GpsReport{}, err
	}
	return out, nil
}

// ListWindow fetches the historical report set for a baseline, newest first.
// Trainings filter by a trailing time span, matches by a trailing count;
// the current report is always excluded from its own baseline.
func (r *reportRepository) ListWindow(ctx context.Context, w repository.BaselineWindow) ([]model.GpsReport, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)

	query := `SELECT ` + reportColumns + `
		 FROM gps_reports
		 WHERE team_id = $1 AND event_type = $2 AND id <> $3`
	args := []any{w.TeamID, w.EventType, w.ExcludeReportID}
	if w.Since != nil {
		args = append(args, *w.Since)
		query += fmt.Sprintf(" AND event_date >= $%d", len(args))
	}
	query += " ORDER BY event_date DESC, id DESC"
	if w.LastN > 0 {
		args = append(args, w.LastN)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	res := make([]model.GpsReport, 0, 8)
	for rows.Next() {
		rep, err := scanReportRows(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rep)
	}
	return res, nil
}

func scanReport(row pgx.Row) (model.GpsReport, error) {
	var out model.GpsReport
	var raw []byte
	if err := row.Scan(&out.ID, &out.ProfileID, &out.TeamID, &out.EventID, &out.EventType,
		&out.EventDate, &raw, &out.CreatedAt); err != nil {
		return model.GpsReport{}, repository.MapPgError(err)
	}
	if err := json.Unmarshal(raw, &out.RawData); err != nil {
		return model.GpsReport{}, fmt.Errorf("unmarshal raw data: %w", err)
	}
	return out, nil
}

func scanReportRows(rows pgx.Rows) (model.GpsReport, error) {
	var out model.GpsReport
	var raw []byte
	if err := rows.Scan(&out.ID, &out.ProfileID, &out.TeamID, &out.EventID, &out.EventType,
		&out.EventDate, &raw, &out.CreatedAt); err != nil {
		return model.GpsReport{}, repository.MapPgError(err)
	}
	if err := json.Unmarshal(raw, &out.RawData); err != nil {
		return model.GpsReport{}, fmt.Errorf("unmarshal raw data: %w", err)
	}
	return out, nil
}

var _ repository.ReportRepository = (*reportRepository)(nil)
