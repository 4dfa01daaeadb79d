package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/program-catalog/backend/internal/models"
)

// Postgres unique_violation error code.
const uniqueViolation = "23505"

// Repository handles user and role-membership persistence. It implements
// both UserStore and RoleStore.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByUsername returns a user with their roles, or models.ErrNotFound.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	const q = `SELECT id, username, created_at, updated_at FROM users WHERE username = $1`
	var u models.User
	err := r.pool.QueryRow(ctx, q, username).Scan(&u.ID, &u.Username, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	roles, err := r.rolesFor(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	u.Roles = roles
	return &u, nil
}

// Create inserts a new user. A concurrent insert of the same username maps
// to models.ErrConflict so the resolver can retry.
func (r *Repository) Create(ctx context.Context, username string) (*models.User, error) {
	const q = `INSERT INTO users (id, username)
		VALUES (gen_random_uuid(), $1)
		RETURNING id, username, created_at, updated_at`
	var u models.User
	err := r.pool.QueryRow(ctx, q, username).Scan(&u.ID, &u.Username, &u.CreatedAt, &u.UpdatedAt)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: username %q", models.ErrConflict, username)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Grant adds a role to a user, idempotently.
func (r *Repository) Grant(ctx context.Context, userID uuid.UUID, role models.Role) error {
	const q = `INSERT INTO user_roles (user_id, role)
		VALUES ($1, $2)
		ON CONFLICT (user_id, role) DO NOTHING`
	_, err := r.pool.Exec(ctx, q, userID, string(role))
	return err
}

// Revoke removes a role from a user, idempotently.
func (r *Repository) Revoke(ctx context.Context, userID uuid.UUID, role models.Role) error {
	const q = `DELETE FROM user_roles WHERE user_id = $1 AND role = $2`
	_, err := r.pool.Exec(ctx, q, userID, string(role))
	return err
}

func (r *Repository) rolesFor(ctx context.Context, userID uuid.UUID) ([]models.Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []models.Role
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, models.Role(role))
	}
	return roles, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
