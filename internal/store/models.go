package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CityRow is one shared city save.
type CityRow struct {
	ID         uuid.UUID
	OwnerID    uuid.UUID
	Name       string
	Theme      string
	Population int64
	Rating     decimal.Decimal
	Downloads  int64
	CreatedAt  int64
}

func scanCityRow(rows *sql.Rows) (CityRow, error) {
	var item CityRow
	var id, ownerID, rating string
	if err := rows.Scan(&id, &ownerID, &item.Name, &item.Theme, &item.Population, &rating, &item.Downloads, &item.CreatedAt); err != nil {
		return item, err
	}
	var err error
	if item.ID, err = uuid.Parse(id); err != nil {
		return item, fmt.Errorf("parse city id: %w", err)
	}
	if item.OwnerID, err = uuid.Parse(ownerID); err != nil {
		return item, fmt.Errorf("parse city owner id: %w", err)
	}
	if item.Rating, err = decimal.NewFromString(rating); err != nil {
		return item, fmt.Errorf("parse city rating: %w", err)
	}
	return item, nil
}

// UserRow is a gallery member.
type UserRow struct {
	ID          uuid.UUID
	Username    string
	DisplayName sql.NullString
	CreatedAt   int64
}

func scanUserRow(rows *sql.Rows) (UserRow, error) {
	var item UserRow
	var id string
	if err := rows.Scan(&id, &item.Username, &item.DisplayName, &item.CreatedAt); err != nil {
		return item, err
	}
	var err error
	if item.ID, err = uuid.Parse(id); err != nil {
		return item, fmt.Errorf("parse user id: %w", err)
	}
	return item, nil
}

// CommentRow is one comment on a city.
type CommentRow struct {
	ID        uuid.UUID
	CityID    uuid.UUID
	AuthorID  uuid.UUID
	Body      string
	CreatedAt int64
}

func scanCommentRow(rows *sql.Rows) (CommentRow, error) {
	var item CommentRow
	var id, cityID, authorID string
	if err := rows.Scan(&id, &cityID, &authorID, &item.Body, &item.CreatedAt); err != nil {
		return item, err
	}
	var err error
	if item.ID, err = uuid.Parse(id); err != nil {
		return item, fmt.Errorf("parse comment id: %w", err)
	}
	if item.CityID, err = uuid.Parse(cityID); err != nil {
		return item, fmt.Errorf("parse comment city id: %w", err)
	}
	if item.AuthorID, err = uuid.Parse(authorID); err != nil {
		return item, fmt.Errorf("parse comment author id: %w", err)
	}
	return item, nil
}
