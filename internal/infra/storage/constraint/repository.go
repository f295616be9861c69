package constraint

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	"github.com/m04kA/SMC-ReservationEngine/pkg/dbtx"
	"github.com/m04kA/SMC-ReservationEngine/pkg/psqlbuilder"
)

// Repository репозиторий каталога ограничений и бизнес-переопределений
type Repository struct {
	db dbtx.DBExecutor
}

// NewRepository создает новый экземпляр репозитория каталога ограничений
func NewRepository(db dbtx.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetCatalogByIndustry получает активные ограничения каталога для индустрии
// Сортировка по возрастанию priority: критичные (1) раньше рекомендательных (10)
func (r *Repository) GetCatalogByIndustry(ctx context.Context, industry string) ([]*domain.ConstraintDefinition, error) {
	executor := dbtx.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"name",
		"industry",
		"constraint_type",
		"rules",
		"priority",
		"mandatory",
		"active",
		"customizable",
		"created_at",
		"updated_at",
	).
		From("constraint_definitions").
		Where(squirrel.Eq{"industry": industry, "active": true}).
		OrderBy("priority ASC, name ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetCatalogByIndustry - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetCatalogByIndustry - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	definitions := make([]*domain.ConstraintDefinition, 0)
	for rows.Next() {
		var def domain.ConstraintDefinition
		var rulesRaw []byte
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&def.ID,
			&def.Name,
			&def.Industry,
			&def.Type,
			&rulesRaw,
			&def.Priority,
			&def.Mandatory,
			&def.Active,
			&def.Customizable,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: GetCatalogByIndustry - scan row: %v", ErrScanRow, err)
		}

		if len(rulesRaw) > 0 {
			if err := json.Unmarshal(rulesRaw, &def.Rules); err != nil {
				return nil, fmt.Errorf("%w: GetCatalogByIndustry - decode rules: %v", ErrScanRow, err)
			}
		}

		def.CreatedAt = createdAt.Time
		def.UpdatedAt = updatedAt.Time
		definitions = append(definitions, &def)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetCatalogByIndustry - rows error: %v", ErrScanRow, err)
	}

	return definitions, nil
}

// GetOverridesByBusiness получает переопределения ограничений бизнеса
// Ключ результата - ID ограничения каталога
func (r *Repository) GetOverridesByBusiness(ctx context.Context, businessID int64) (map[int64]*domain.BusinessConstraintOverride, error) {
	executor := dbtx.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"business_id",
		"constraint_id",
		"enabled",
		"rules",
		"approved_by",
		"approved_at",
		"created_at",
		"updated_at",
	).
		From("business_constraint_overrides").
		Where(squirrel.Eq{"business_id": businessID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetOverridesByBusiness - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetOverridesByBusiness - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	overrides := make(map[int64]*domain.BusinessConstraintOverride)
	for rows.Next() {
		var override domain.BusinessConstraintOverride
		var rulesRaw []byte
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&override.ID,
			&override.BusinessID,
			&override.ConstraintID,
			&override.Enabled,
			&rulesRaw,
			&override.ApprovedBy,
			&override.ApprovedAt,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: GetOverridesByBusiness - scan row: %v", ErrScanRow, err)
		}

		if len(rulesRaw) > 0 {
			var rules domain.ConstraintRules
			if err := json.Unmarshal(rulesRaw, &rules); err != nil {
				return nil, fmt.Errorf("%w: GetOverridesByBusiness - decode rules: %v", ErrScanRow, err)
			}
			override.Rules = &rules
		}

		override.CreatedAt = createdAt.Time
		override.UpdatedAt = updatedAt.Time
		overrides[override.ConstraintID] = &override
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetOverridesByBusiness - rows error: %v", ErrScanRow, err)
	}

	return overrides, nil
}

// UpsertOverride создает или заменяет переопределение ограничения бизнесом
func (r *Repository) UpsertOverride(ctx context.Context, override *domain.BusinessConstraintOverride) (*domain.BusinessConstraintOverride, error) {
	executor := dbtx.GetExecutor(ctx, r.db)

	var rulesRaw interface{}
	if override.Rules != nil {
		encoded, err := json.Marshal(override.Rules)
		if err != nil {
			return nil, fmt.Errorf("%w: UpsertOverride: %v", ErrEncodeRules, err)
		}
		rulesRaw = encoded
	}

	query, args, err := psqlbuilder.Insert("business_constraint_overrides").
		Columns(
			"business_id",
			"constraint_id",
			"enabled",
			"rules",
			"approved_by",
			"approved_at",
		).
		Values(
			override.BusinessID,
			override.ConstraintID,
			override.Enabled,
			rulesRaw,
			override.ApprovedBy,
			override.ApprovedAt,
		).
		Suffix(`ON CONFLICT (business_id, constraint_id) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			rules = EXCLUDED.rules,
			approved_by = EXCLUDED.approved_by,
			approved_at = EXCLUDED.approved_at,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: UpsertOverride - build upsert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&override.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: UpsertOverride - execute upsert: %v", ErrExecQuery, err)
	}

	override.CreatedAt = createdAt.Time
	override.UpdatedAt = updatedAt.Time

	return override, nil
}
