package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"dashboard-api/internal/model"
)

// querier is the subset of pgxpool.Pool the lookups need.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UserRepository struct {
	db querier
}

func NewUserRepository(db querier) *UserRepository {
	return &UserRepository{db: db}
}

// FindUserByID selects only the public-safe columns; OAuth tokens stay in
// the database. Returns nil, nil when no such user exists.
func (r *UserRepository) FindUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := r.db.QueryRow(ctx,
		`SELECT id, discord_id, username, COALESCE(email, ''), COALESCE(avatar, ''),
		        is_active, role, created_at, updated_at
		 FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.DiscordID, &u.Username, &u.Email, &u.Avatar,
			&u.IsActive, &u.Role, &u.CreatedAt, &u.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &u, nil
}
