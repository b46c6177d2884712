package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/gps-performance-service/internal/model"
	"github.com/maxviazov/gps-performance-service/internal/repository"
)

type profileRepository struct{ pool *pgxpool.Pool }

func NewProfileRepository(pool *pgxpool.Pool) repository.ProfileRepository {
	return &profileRepository{pool: pool}
}

// usedReports is inlined into every profile read so the freeze guard never
// sees a stale cached counter.
const profileColumns = `
	p.id, p.club_id, p.name, p.vendor_system, p.catalog_version, p.is_active,
	(SELECT COUNT(*) FROM gps_reports r WHERE r.profile_id = p.id) AS used_reports,
	p.created_at, p.updated_at`

func (r *profileRepository) Create(ctx context.Context, p model.GpsProfile) (model.GpsProfile, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.GpsProfile{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`INSERT INTO gps_profiles (club_id, name, vendor_system, catalog_version, is_active)
		 VALUES ($1,$2,$3,$4,$5)
		 RETURNING id, club_id, name, vendor_system, catalog_version, is_active, 0, created_at, updated_at`,
		p.ClubID, p.Name, p.VendorSystem, p.CatalogVersion, p.IsActive,
	)
	return scanProfile(row)
}

func (r *profileRepository) GetByID(ctx context.Context, id int64) (model.GpsProfile, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.GpsProfile{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM gps_profiles p WHERE p.id = $1`, id,
	)
	out, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.GpsProfile{}, repository.ErrNotFound
		}
		return model.GpsProfile{}, err
	}
	return out, nil
}

func (r *profileRepository) ListByClub(ctx context.Context, clubID int64, p repository.Page) (repository.PageResult[model.GpsProfile], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[model.GpsProfile]{}, err
	}
	limit, offset := sanitizeLimitOffset(p.Limit, p.Offset)
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+profileColumns+`, COUNT(*) OVER() AS total
		 FROM gps_profiles p
		 WHERE p.club_id = $1
		 ORDER BY p.id
		 LIMIT $2 OFFSET $3`,
		clubID, limit, offset,
	)
	if err != nil {
		return repository.PageResult[model.GpsProfile]{}, repository.MapPgError(err)
	}
	defer rows.Close()
	res := repository.PageResult[model.GpsProfile]{Items: make([]model.GpsProfile, 0, limit)}
	for rows.Next() {
		var it model.GpsProfile
		var total int
		if err := rows.Scan(&it.ID, &it.ClubID, &it.Name, &it.VendorSystem, &it.CatalogVersion,
			&it.IsActive, &it.UsedReportsCount, &it.CreatedAt, &it.UpdatedAt, &total); err != nil {
			return repository.PageResult[model.GpsProfile]{}, repository.MapPgError(err)
		}
		res.Items = append(res.Items, it)
		res.Total = total
	}
	return res, nil
}

func (r *profileRepository) SetActive(ctx context.Context, id int64, active bool) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	exec := getQ(ctx, r.pool)
	tag, err := exec.Exec(ctx,
		`UPDATE gps_profiles SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active,
	)
	if err != nil {
		return repository.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *profileRepository) CountUsedReports(ctx context.Context, profileID int64) (int, error) {
	if err := ensurePool(r.pool); err != nil {
		return 0, err
	}
	exec := getQ(ctx, r.pool)
	var n int
	if err := exec.QueryRow(ctx,
		`SELECT COUNT(*) FROM gps_reports WHERE profile_id = $1`, profileID,
	).Scan(&n); err != nil {
		return 0, repository.MapPgError(err)
	}
	return n, nil
}

const mappingColumns = `
	id, profile_id, source_column, canonical_metric, custom_name, display_unit,
	display_order, is_visible, description, created_at, updated_at`

func (r *profileRepository) AddMapping(ctx context.Context, m model.ColumnMapping) (model.ColumnMapping, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.ColumnMapping{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`INSERT INTO column_mappings
		 (profile_id, source_column, canonical_metric, custom_name, display_unit, display_order, is_visible, description)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 RETURNING `+mappingColumns,
		m.ProfileID, m.SourceColumn, m.CanonicalMetric, m.CustomName, m.DisplayUnit, m.DisplayOrder, m.IsVisible, m.Description,
	)
	return scanMapping(row)
}

func (r *profileRepository) GetMapping(ctx context.Context, id int64) (model.ColumnMapping, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.ColumnMapping{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`SELECT `+mappingColumns+` FROM column_mappings WHERE id = $1`, id,
	)
	out, err := scanMapping(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ColumnMapping{}, repository.ErrNotFound
		}
		return model.ColumnMapping{}, err
	}
	return out, nil
}

func (r *profileRepository) ListMappings(ctx context.Context, profileID int64) ([]model.ColumnMapping, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+mappingColumns+` FROM column_mappings
		 WHERE profile_id = $1 ORDER BY display_order, id`, profileID,
	)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	res := make([]model.ColumnMapping, 0, 16)
	for rows.Next() {
		var it model.ColumnMapping
		if err := rows.Scan(&it.ID, &it.ProfileID, &it.SourceColumn, &it.CanonicalMetric, &it.CustomName,
			&it.DisplayUnit, &it.DisplayOrder, &it.IsVisible, &it.Description, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, it)
	}
	return res, nil
}

func (r *profileRepository) UpdateMapping(ctx context.Context, m model.ColumnMapping) (model.ColumnMapping, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.ColumnMapping{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`UPDATE column_mappings SET
			source_column = $2, canonical_metric = $3, custom_name = $4, display_unit = $5,
			display_order = $6, is_visible = $7, description = $8, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+mappingColumns,
		m.ID, m.SourceColumn, m.CanonicalMetric, m.CustomName, m.DisplayUnit, m.DisplayOrder, m.IsVisible, m.Description,
	)
	out, err := scanMapping(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ColumnMapping{}, repository.ErrNotFound
		}
		return model.ColumnMapping{}, err
	}
	return out, nil
}

func (r *profileRepository) DeleteMapping(ctx context.Context, id int64) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	exec := getQ(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM column_mappings WHERE id = $1`, id)
	if err != nil {
		return repository.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanProfile(row pgx.Row) (model.GpsProfile, error) {
	var out model.GpsProfile
	if err := row.Scan(&out.ID, &out.ClubID, &out.Name, &out.VendorSystem, &out.CatalogVersion,
		&out.IsActive, &out.UsedReportsCount, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return model.GpsProfile{}, repository.MapPgError(err)
	}
	return out, nil
}

func scanMapping(row pgx.Row) (model.ColumnMapping, error) {
	var out model.ColumnMapping
	if err := row.Scan(&out.ID, &out.ProfileID, &out.SourceColumn, &out.CanonicalMetric, &out.CustomName,
		&out.DisplayUnit, &out.DisplayOrder, &out.IsVisible, &out.Description, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return model.ColumnMapping{}, repository.MapPgError(err)
	}
	return out, nil
}

var _ repository.ProfileRepository = (*profileRepository)(nil)
