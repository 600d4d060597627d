package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gaston-app/budget-service/internal/models"
)

// Document modules stored in budget.documents. Each document is one JSON
// blob keyed by (entity_id, module, year_month) and stamped with a
// revision counter.
const (
	moduleConfig        = "config"
	moduleConfigHistory = "config_history"
	moduleLedger        = "ledger"
)

// configKey is the year_month value of the singleton config document
const configKey = ""

const getDocumentQuery = `
	SELECT data, revision
	FROM budget.documents
	WHERE entity_id = $1 AND module = $2 AND year_month = $3`

func (r *Repository) getDocument(ctx context.Context, entityID int64, module string, ym string, into any) (int64, error) {
	var raw []byte
	var revision int64
	err := r.db.QueryRowContext(ctx, getDocumentQuery, entityID, module, ym).Scan(&raw, &revision)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get %s document: %w", module, err)
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return 0, fmt.Errorf("decode %s document: %w", module, err)
	}
	return revision, nil
}

const insertDocumentQuery = `
	INSERT INTO budget.documents (entity_id, module, year_month, revision, data)
	VALUES ($1, $2, $3, 1, $4)
	ON CONFLICT (entity_id, module, year_month) DO NOTHING
	RETURNING revision`

const updateDocumentQuery = `
	UPDATE budget.documents
	SET data = $4, revision = revision + 1, updated_at = now()
	WHERE entity_id = $1 AND module = $2 AND year_month = $3 AND revision = $5
	RETURNING revision`

// saveDocument writes a document guarded by its revision: revision 0
// expects to insert a fresh row, any other revision expects to replace
// exactly that revision. A mismatch means someone else wrote in between.
func (r *Repository) saveDocument(ctx context.Context, entityID int64, module string, ym string, doc any, revision int64) (int64, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("encode %s document: %w", module, err)
	}

	var newRevision int64
	if revision == 0 {
		err = r.db.QueryRowContext(ctx, insertDocumentQuery, entityID, module, ym, raw).Scan(&newRevision)
	} else {
		err = r.db.QueryRowContext(ctx, updateDocumentQuery, entityID, module, ym, raw, revision).Scan(&newRevision)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrRevisionConflict
	}
	if err != nil {
		return 0, fmt.Errorf("save %s document: %w", module, err)
	}
	return newRevision, nil
}

// GetConfig loads the entity configuration and its revision
func (r *Repository) GetConfig(ctx context.Context, entityID int64) (models.EntityConfig, int64, error) {
	var cfg models.EntityConfig
	revision, err := r.getDocument(ctx, entityID, moduleConfig, configKey, &cfg)
	if err != nil {
		return models.EntityConfig{}, 0, err
	}
	return cfg, revision, nil
}

// SaveConfig writes the entity configuration, failing with
// ErrRevisionConflict if revision is stale
func (r *Repository) SaveConfig(ctx context.Context, entityID int64, cfg models.EntityConfig, revision int64) (int64, error) {
	return r.saveDocument(ctx, entityID, moduleConfig, configKey, cfg, revision)
}

// GetConfigSnapshot loads the config as it stood for a given month
func (r *Repository) GetConfigSnapshot(ctx context.Context, entityID int64, ym models.YearMonth) (models.EntityConfig, error) {
	var cfg models.EntityConfig
	if _, err := r.getDocument(ctx, entityID, moduleConfigHistory, string(ym), &cfg); err != nil {
		return models.EntityConfig{}, err
	}
	return cfg, nil
}

const upsertSnapshotQuery = `
	INSERT INTO budget.documents (entity_id, module, year_month, revision, data)
	VALUES ($1, $2, $3, 1, $4)
	ON CONFLICT (entity_id, module, year_month)
	DO UPDATE SET data = EXCLUDED.data, revision = budget.documents.revision + 1, updated_at = now()`

// SaveConfigSnapshot records the month's config snapshot. Snapshots are
// last-writer-wins within a month, so no revision guard applies.
func (r *Repository) SaveConfigSnapshot(ctx context.Context, entityID int64, ym models.YearMonth, cfg models.EntityConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config snapshot: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, upsertSnapshotQuery, entityID, moduleConfigHistory, string(ym), raw); err != nil {
		return fmt.Errorf("save config snapshot: %w", err)
	}
	return nil
}

// GetLedger loads one month's ledger and its revision
func (r *Repository) GetLedger(ctx context.Context, entityID int64, ym models.YearMonth) (models.MonthlyLedger, int64, error) {
	var l models.MonthlyLedger
	revision, err := r.getDocument(ctx, entityID, moduleLedger, string(ym), &l)
	if err != nil {
		return models.MonthlyLedger{}, 0, err
	}
	return l, revision, nil
}

// SaveLedger writes one month's ledger, failing with ErrRevisionConflict
// if revision is stale
func (r *Repository) SaveLedger(ctx context.Context, entityID int64, ym models.YearMonth, ledger models.MonthlyLedger, revision int64) (int64, error) {
	return r.saveDocument(ctx, entityID, moduleLedger, string(ym), ledger, revision)
}

const listLedgerMonthsQuery = `
	SELECT year_month
	FROM budget.documents
	WHERE entity_id = $1 AND module = $2
	ORDER BY year_month`

// ListLedgerMonths returns every month key the entity has a ledger for
func (r *Repository) ListLedgerMonths(ctx context.Context, entityID int64) ([]models.YearMonth, error) {
	rows, err := r.db.QueryContext(ctx, listLedgerMonthsQuery, entityID, moduleLedger)
	if err != nil {
		return nil, fmt.Errorf("list ledger months: %w", err)
	}
	defer rows.Close()

	months := []models.YearMonth{}
	for rows.Next() {
		var ym string
		if err := rows.Scan(&ym); err != nil {
			return nil, fmt.Errorf("scan ledger month: %w", err)
		}
		months = append(months, models.YearMonth(ym))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger months: %w", err)
	}
	return months, nil
}
