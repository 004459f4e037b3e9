package models

import "time"

// Post is the owning aggregate for a blog entry. Comments (with their
// replies) and ratings live inside the post row as JSON columns, so a post
// and everything embedded in it is written and deleted as one unit.
type Post struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	AuthorID  uint        `gorm:"index;not null" json:"author_id"`
	Title     string      `gorm:"size:255;not null" json:"title"`
	Content   string      `gorm:"type:text;not null" json:"content"`
	Category  string      `gorm:"size:64;index" json:"category"`
	ImageURL  string      `gorm:"size:512" json:"image_url"`
	MusicURL  string      `gorm:"size:512" json:"music_url"`
	IsPremium bool        `gorm:"index;default:false" json:"is_premium"`
	Views     int64       `gorm:"not null;default:0" json:"views"`
	Comments  CommentList `gorm:"type:text" json:"comments"`
	Ratings   RatingList  `gorm:"type:text" json:"ratings"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`

	// Author is resolved on read; it is never trusted from a client.
	Author *AuthorSummary `gorm:"-" json:"author,omitempty"`
}

// Comment returns the embedded comment with the given id, or nil.
func (p *Post) Comment(id string) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			return &p.Comments[i]
		}
	}
	return nil
}

// RatingBy returns the rating value left by the given user.
func (p *Post) RatingBy(userID uint) (int, bool) {
	for _, r := range p.Ratings {
		if r.UserID == userID {
			return r.Value, true
		}
	}
	return 0, false
}
