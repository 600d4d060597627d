package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gaston-app/budget-service/internal/models"
	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when the requested row does not exist
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when registering an email that is
	// already taken
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrRevisionConflict is returned by document saves when the stored
	// revision no longer matches the one the caller read. The caller
	// should re-read and retry.
	ErrRevisionConflict = errors.New("document revision conflict")
)

// Store is the persistence surface the service layer depends on
type Store interface {
	CreateUser(ctx context.Context, email, name, passwordHash string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByID(ctx context.Context, id int64) (models.User, error)

	CreateEntity(ctx context.Context, ownerID int64, name string, kind models.EntityKind) (models.Entity, error)
	GetEntity(ctx context.Context, id int64) (models.Entity, error)
	ListEntities(ctx context.Context, ownerID int64) ([]models.Entity, error)
	ListAllEntities(ctx context.Context) ([]models.Entity, error)

	GetConfig(ctx context.Context, entityID int64) (models.EntityConfig, int64, error)
	SaveConfig(ctx context.Context, entityID int64, cfg models.EntityConfig, revision int64) (int64, error)
	GetConfigSnapshot(ctx context.Context, entityID int64, ym models.YearMonth) (models.EntityConfig, error)
	SaveConfigSnapshot(ctx context.Context, entityID int64, ym models.YearMonth, cfg models.EntityConfig) error

	GetLedger(ctx context.Context, entityID int64, ym models.YearMonth) (models.MonthlyLedger, int64, error)
	SaveLedger(ctx context.Context, entityID int64, ym models.YearMonth, ledger models.MonthlyLedger, revision int64) (int64, error)
	ListLedgerMonths(ctx context.Context, entityID int64) ([]models.YearMonth, error)
}

// Repository implements Store on PostgreSQL
type Repository struct {
	db *sql.DB
}

// NewRepository creates the Postgres-backed store
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const createUserQuery = `
	INSERT INTO budget.users (email, name, password_hash)
	VALUES ($1, $2, $3)
	RETURNING id, email, name, password_hash, created_at`

// CreateUser registers a new user
func (r *Repository) CreateUser(ctx context.Context, email, name, passwordHash string) (models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, createUserQuery, email, name, passwordHash).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

const getUserByEmailQuery = `
	SELECT id, email, name, password_hash, created_at
	FROM budget.users
	WHERE email = $1`

// GetUserByEmail looks a user up by email for login
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, getUserByEmailQuery, email).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

const getUserByIDQuery = `
	SELECT id, email, name, password_hash, created_at
	FROM budget.users
	WHERE id = $1`

// GetUserByID fetches a user by primary key
func (r *Repository) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, getUserByIDQuery, id).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

const createEntityQuery = `
	INSERT INTO budget.entities (owner_id, name, kind)
	VALUES ($1, $2, $3)
	RETURNING id, owner_id, name, kind, created_at`

// CreateEntity creates a budget entity owned by a user
func (r *Repository) CreateEntity(ctx context.Context, ownerID int64, name string, kind models.EntityKind) (models.Entity, error) {
	var e models.Entity
	err := r.db.QueryRowContext(ctx, createEntityQuery, ownerID, name, string(kind)).
		Scan(&e.ID, &e.OwnerID, &e.Name, &e.Kind, &e.CreatedAt)
	if err != nil {
		return models.Entity{}, fmt.Errorf("create entity: %w", err)
	}
	return e, nil
}

const getEntityQuery = `
	SELECT id, owner_id, name, kind, created_at
	FROM budget.entities
	WHERE id = $1`

// GetEntity fetches an entity by id
func (r *Repository) GetEntity(ctx context.Context, id int64) (models.Entity, error) {
	var e models.Entity
	err := r.db.QueryRowContext(ctx, getEntityQuery, id).
		Scan(&e.ID, &e.OwnerID, &e.Name, &e.Kind, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Entity{}, ErrNotFound
	}
	if err != nil {
		return models.Entity{}, fmt.Errorf("get entity: %w", err)
	}
	return e, nil
}

const listEntitiesQuery = `
	SELECT id, owner_id, name, kind, created_at
	FROM budget.entities
	WHERE owner_id = $1
	ORDER BY id`

// ListEntities returns all entities owned by a user
func (r *Repository) ListEntities(ctx context.Context, ownerID int64) ([]models.Entity, error) {
	rows, err := r.db.QueryContext(ctx, listEntitiesQuery, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	defer rows.Close()
	return scanEntities(rows)
}

const listAllEntitiesQuery = `
	SELECT id, owner_id, name, kind, created_at
	FROM budget.entities
	ORDER BY id`

// ListAllEntities returns every entity. Used by the reminder scheduler.
func (r *Repository) ListAllEntities(ctx context.Context) ([]models.Entity, error) {
	rows, err := r.db.QueryContext(ctx, listAllEntitiesQuery)
	if err != nil {
		return nil, fmt.Errorf("list all entities: %w", err)
	}
	defer rows.Close()
	return scanEntities(rows)
}

func scanEntities(rows *sql.Rows) ([]models.Entity, error) {
	entities := []models.Entity{}
	for rows.Next() {
		var e models.Entity
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Name, &e.Kind, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entities: %w", err)
	}
	return entities, nil
}
