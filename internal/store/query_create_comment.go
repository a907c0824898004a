package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const queryCreateComment string = `INSERT INTO comments (id, city_id, author_id, body, created_at) VALUES ($1, $2, $3, $4, $5);`

// CreateComment inserts a comment on a city and invalidates the
// "comments" tag.
func (q *Queries) CreateComment(ctx context.Context, cityID, authorID uuid.UUID, body string) (CommentRow, error) {
	item := CommentRow{
		ID:        uuid.New(),
		CityID:    cityID,
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: time.Now().Unix(),
	}
	if _, err := q.db.ExecContext(ctx, queryCreateComment,
		item.ID.String(), cityID.String(), authorID.String(), body, item.CreatedAt); err != nil {
		return CommentRow{}, err
	}
	removed := q.cache.InvalidateTag(TagComments)
	q.logger.Debug("comment created", "city", cityID, "invalidated", removed)
	return item, nil
}
