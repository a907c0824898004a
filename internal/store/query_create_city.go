package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const queryCreateCity string = `INSERT INTO cities (id, owner_id, name, theme, population, rating, downloads, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`

// CreateCity inserts a newly shared city and invalidates the "cities"
// tag.
func (q *Queries) CreateCity(ctx context.Context, ownerID uuid.UUID, name, theme string, population int64) (CityRow, error) {
	item := CityRow{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		Name:       name,
		Theme:      theme,
		Population: population,
		Rating:     decimal.Zero,
		CreatedAt:  time.Now().Unix(),
	}
	if _, err := q.db.ExecContext(ctx, queryCreateCity,
		item.ID.String(), ownerID.String(), name, theme, population,
		item.Rating.String(), item.Downloads, item.CreatedAt); err != nil {
		return CityRow{}, err
	}
	removed := q.cache.InvalidateTag(TagCities)
	q.logger.Debug("city created", "id", item.ID, "invalidated", removed)
	return item, nil
}
