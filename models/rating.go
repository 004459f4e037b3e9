package models

import (
	"database/sql/driver"
	"encoding/json"
)

// Rating is a single user's 1-5 score on a post. A post holds at most one
// rating per user; a second attempt is rejected, never merged.
type Rating struct {
	UserID uint `json:"user_id"`
	Value  int  `json:"value"`
}

// RatingList stores the ratings of a post as a JSON text column.
type RatingList []Rating

// Value implements driver.Valuer.
func (l RatingList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *RatingList) Scan(src interface{}) error {
	return scanJSONList(src, l)
}
