package store

import (
	"context"
	"time"

	"github.com/citiescollective/citycache/internal/cache"
)

const queryListPopularCities string = `SELECT id, owner_id, name, theme, population, rating, downloads, created_at FROM cities ORDER BY downloads DESC, created_at DESC LIMIT $1;`

// ListPopularCities returns the most downloaded cities. Results are
// cached for 1 minute by default under the "cities" tag.
func (q *Queries) ListPopularCities(ctx context.Context, limit int64) ([]CityRow, error) {
	return cache.Cached(ctx, q.cache, cache.Query{
		Text:   queryListPopularCities,
		Params: []any{limit},
		TTL:    q.ttlFor("ListPopularCities", time.Minute),
		Tags:   []string{TagCities},
	}, func(ctx context.Context) ([]CityRow, error) {
		rows, err := q.db.QueryContext(ctx, queryListPopularCities, limit)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		var items []CityRow
		for rows.Next() {
			item, err := scanCityRow(rows)
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
