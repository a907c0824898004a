package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const queryLikeCity string = `INSERT INTO likes (city_id, user_id, created_at) VALUES ($1, $2, $3) ON CONFLICT (city_id, user_id) DO NOTHING;`

// LikeCity records a like and invalidates the "likes" tag. Liking the
// same city twice is a no-op.
func (q *Queries) LikeCity(ctx context.Context, cityID, userID uuid.UUID) error {
	if _, err := q.db.ExecContext(ctx, queryLikeCity, cityID.String(), userID.String(), time.Now().Unix()); err != nil {
		return err
	}
	removed := q.cache.InvalidateTag(TagLikes)
	q.logger.Debug("city liked", "city", cityID, "invalidated", removed)
	return nil
}
