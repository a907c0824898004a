package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const queryRateCity string = `UPDATE cities SET rating = $1 WHERE id = $2;`

// RateCity replaces a city's aggregate rating and invalidates the
// "cities" tag. Returns sql.ErrNoRows when the city does not exist.
func (q *Queries) RateCity(ctx context.Context, cityID uuid.UUID, rating decimal.Decimal) error {
	result, err := q.db.ExecContext(ctx, queryRateCity, rating.String(), cityID.String())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	removed := q.cache.InvalidateTag(TagCities)
	q.logger.Debug("city rated", "city", cityID, "rating", rating, "invalidated", removed)
	return nil
}
