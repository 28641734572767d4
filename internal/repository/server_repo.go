package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"dashboard-api/internal/model"
)

type ServerRepository struct {
	db querier
}

func NewServerRepository(db querier) *ServerRepository {
	return &ServerRepository{db: db}
}

// FindServerRelation returns the membership row only when it is elevated
// (owner or administrator). Plain members yield nil, nil.
func (r *ServerRepository) FindServerRelation(ctx context.Context, userID string, serverID string) (*model.ServerRelation, error) {
	var rel model.ServerRelation
	err := r.db.QueryRow(ctx,
		`SELECT user_id, server_id, is_owner, has_admin_permissions
		 FROM server_users
		 WHERE user_id = $1 AND server_id = $2
		   AND (is_owner OR has_admin_permissions)
		 LIMIT 1`, userID, serverID).
		Scan(&rel.UserID, &rel.ServerID, &rel.IsOwner, &rel.HasAdminPermissions)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find server relation: %w", err)
	}
	return &rel, nil
}
