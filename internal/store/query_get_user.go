package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/citiescollective/citycache/internal/cache"
)

const queryGetUser string = `SELECT id, username, display_name, created_at FROM users WHERE id = $1;`

// GetUser retrieves a member by ID. Results are cached for 10 minutes by
// default under the "users" tag.
func (q *Queries) GetUser(ctx context.Context, id uuid.UUID) (UserRow, error) {
	return cache.Cached(ctx, q.cache, cache.Query{
		Text:   queryGetUser,
		Params: []any{id.String()},
		TTL:    q.ttlFor("GetUser", 10*time.Minute),
		Tags:   []string{TagUsers},
	}, func(ctx context.Context) (UserRow, error) {
		rows, err := q.db.QueryContext(ctx, queryGetUser, id.String())
		if err != nil {
			return UserRow{}, err
		}
		defer rows.Close()
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return UserRow{}, err
			}
			return UserRow{}, sql.ErrNoRows
		}
		item, err := scanUserRow(rows)
		if err != nil {
			return item, err
		}
		if err := rows.Err(); err != nil {
			return item, err
		}
		return item, nil
	})
}
