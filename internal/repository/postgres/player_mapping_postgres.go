package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/gps-performance-service/internal/model"
	"github.com/maxviazov/gps-performance-service/internal/repository"
)

type playerMappingRepository struct{ pool *pgxpool.Pool }

func NewPlayerMappingRepository(pool *pgxpool.Pool) repository.PlayerMappingRepository {
	return &playerMappingRepository{pool: pool}
}

// ReplaceForReport implements the batch delete-then-insert replacement.
// It must run inside TxManager.WithinTx; a partial failure would otherwise
// leave a mix of old and new row assignments.
func (r *playerMappingRepository) ReplaceForReport(ctx context.Context, reportID int64, mappings []model.PlayerMapping) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	exec := getQ(ctx, r.pool)
	if _, err := exec.Exec(ctx, `DELETE FROM player_mappings WHERE report_id = $1`, reportID); err != nil {
		return repository.MapPgError(err)
	}
	for _, m := range mappings {
		if _, err := exec.Exec(ctx,
			`INSERT INTO player_mappings (report_id, row_index, player_id) VALUES ($1,$2,$3)`,
			reportID, m.RowIndex, m.PlayerID,
		); err != nil {
			return repository.MapPgError(err)
		}
	}
	return nil
}

func (r *playerMappingRepository) ListByReport(ctx context.Context, reportID int64) ([]model.PlayerMapping, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT report_id, row_index, player_id FROM player_mappings
		 WHERE report_id = $1 ORDER BY row_index`, reportID,
	)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	res := make([]model.PlayerMapping, 0, 16)
	for rows.Next() {
		var it model.PlayerMapping
		if err := rows.Scan(&it.ReportID, &it.RowIndex, &it.PlayerID); err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, it)
	}
	return res, nil
}

func (r *playerMappingRepository) ListByReports(ctx context.Context, reportIDs []int64) (map[int64][]model.PlayerMapping, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	res := make(map[int64][]model.PlayerMapping, len(reportIDs))
	if len(reportIDs) == 0 {
		return res, nil
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT report_id, row_index, player_id FROM player_mappings
		 WHERE report_id = ANY($1) ORDER BY report_id, row_index`, reportIDs,
	)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	for rows.Next() {
		var it model.PlayerMapping
		if err := rows.Scan(&it.ReportID, &it.RowIndex, &it.PlayerID); err != nil {
			return nil, repository.MapPgError(err)
		}
		res[it.ReportID] = append(res[it.ReportID], it)
	}
	return res, nil
}

var _ repository.PlayerMappingRepository = (*playerMappingRepository)(nil)
