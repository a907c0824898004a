package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const queryCreateUser string = `INSERT INTO users (id, username, display_name, created_at) VALUES ($1, $2, $3, $4);`

// CreateUser inserts a new member and invalidates the "users" tag.
func (q *Queries) CreateUser(ctx context.Context, username string, displayName sql.NullString) (UserRow, error) {
	item := UserRow{
		ID:          uuid.New(),
		Username:    username,
		DisplayName: displayName,
		CreatedAt:   time.Now().Unix(),
	}
	if _, err := q.db.ExecContext(ctx, queryCreateUser, item.ID.String(), item.Username, item.DisplayName, item.CreatedAt); err != nil {
		return UserRow{}, err
	}
	removed := q.cache.InvalidateTag(TagUsers)
	q.logger.Debug("user created", "id", item.ID, "invalidated", removed)
	return item, nil
}
