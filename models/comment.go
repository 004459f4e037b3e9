package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Comment is a value entity embedded in a Post. Its id is unique within the
// owning post only; comments never exist as independent rows.
type Comment struct {
	ID        string    `json:"id"`
	AuthorID  uint      `json:"author_id"`
	Text      string    `json:"text"`
	Replies   []Reply   `json:"replies"`
	CreatedAt time.Time `json:"created_at"`

	Author *AuthorSummary `json:"author,omitempty"`
}

// Reply is a value entity embedded in a Comment. Replies are append and
// delete only; there is no edit operation.
type Reply struct {
	ID        string    `json:"id"`
	AuthorID  uint      `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`

	Author *AuthorSummary `json:"author,omitempty"`
}

// Reply returns the embedded reply with the given id, or nil.
func (c *Comment) Reply(id string) *Reply {
	for i := range c.Replies {
		if c.Replies[i].ID == id {
			return &c.Replies[i]
		}
	}
	return nil
}

// CommentList stores the ordered comments of a post as a JSON text column.
type CommentList []Comment

// Value implements driver.Valuer.
func (l CommentList) Value() (driver.Value, error) {
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
func (l *CommentList) Scan(src interface{}) error {
	return scanJSONList(src, l)
}

func scanJSONList(src, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported column type %T", src)
	}
}
