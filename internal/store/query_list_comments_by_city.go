package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/citiescollective/citycache/internal/cache"
)

const queryListCommentsByCity string = `SELECT id, city_id, author_id, body, created_at FROM comments WHERE city_id = $1 ORDER BY created_at DESC LIMIT $2;`

// ListCommentsByCity returns the newest comments on a city. Results are
// cached for 30 seconds by default under the "comments" tag.
func (q *Queries) ListCommentsByCity(ctx context.Context, cityID uuid.UUID, limit int64) ([]CommentRow, error) {
	return cache.Cached(ctx, q.cache, cache.Query{
		Text:   queryListCommentsByCity,
		Params: []any{cityID.String(), limit},
		TTL:    q.ttlFor("ListCommentsByCity", 30*time.Second),
		Tags:   []string{TagComments},
	}, func(ctx context.Context) ([]CommentRow, error) {
		rows, err := q.db.QueryContext(ctx, queryListCommentsByCity, cityID.String(), limit)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		var items []CommentRow
		for rows.Next() {
			item, err := scanCommentRow(rows)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return items, nil
	})
}
