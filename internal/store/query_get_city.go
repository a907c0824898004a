package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/citiescollective/citycache/internal/cache"
)

const queryGetCity string = `SELECT id, owner_id, name, theme, population, rating, downloads, created_at FROM cities WHERE id = $1;`

// GetCity retrieves a city by ID. Results are cached for 5 minutes by
// default under the "cities" tag.
func (q *Queries) GetCity(ctx context.Context, id uuid.UUID) (CityRow, error) {
	return cache.Cached(ctx, q.cache, cache.Query{
		Text:   queryGetCity,
		Params: []any{id.String()},
		TTL:    q.ttlFor("GetCity", 5*time.Minute),
		Tags:   []string{TagCities},
	}, func(ctx context.Context) (CityRow, error) {
		rows, err := q.db.QueryContext(ctx, queryGetCity, id.String())
		if err != nil {
			return CityRow{}, err
		}
		defer rows.Close()
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return CityRow{}, err
			}
			return CityRow{}, sql.ErrNoRows
		}
		item, err := scanCityRow(rows)
		if err != nil {
			return item, err
		}
		if err := rows.Err(); err != nil {
			return item, err
		}
		return item, nil
	})
}
