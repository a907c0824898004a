package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/citiescollective/citycache/internal/cache"
)

const queryCountCityLikes string = `SELECT count(*) FROM likes WHERE city_id = $1;`

// CountCityLikes returns the number of likes on a city. Results are
// cached for 30 seconds by default under the "likes" tag.
func (q *Queries) CountCityLikes(ctx context.Context, cityID uuid.UUID) (int64, error) {
	return cache.Cached(ctx, q.cache, cache.Query{
		Text:   queryCountCityLikes,
		Params: []any{cityID.String()},
		TTL:    q.ttlFor("CountCityLikes", 30*time.Second),
		Tags:   []string{TagLikes},
	}, func(ctx context.Context) (int64, error) {
		var count int64
		if err := q.db.QueryRowContext(ctx, queryCountCityLikes, cityID.String()).Scan(&count); err != nil {
			return 0, err
		}
		return count, nil
	})
}
