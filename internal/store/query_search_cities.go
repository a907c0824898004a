package store

import (
	"context"
	"time"

	"github.com/citiescollective/citycache/internal/cache"
)

const querySearchCities string = `SELECT id, owner_id, name, theme, population, rating, downloads, created_at FROM cities WHERE name LIKE '%' || $1 || '%' ORDER BY downloads DESC LIMIT $2;`

// SearchCities returns cities whose name contains term. Results are
// cached for 30 seconds by default under the "cities" tag.
func (q *Queries) SearchCities(ctx context.Context, term string, limit int64) ([]CityRow, error) {
	return cache.Cached(ctx, q.cache, cache.Query{
		Text:   querySearchCities,
		Params: []any{term, limit},
		TTL:    q.ttlFor("SearchCities", 30*time.Second),
		Tags:   []string{TagCities},
	}, func(ctx context.Context) ([]CityRow, error) {
		rows, err := q.db.QueryContext(ctx, querySearchCities, term, limit)
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
