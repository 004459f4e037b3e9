package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered account. Credential and code fields carry
// json:"-" so no read path, including the admin endpoints, can serialize them.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`

	Bio        string `gorm:"size:512" json:"bio"`
	Location   string `gorm:"size:128" json:"location"`
	Website    string `gorm:"size:255" json:"website"`
	PictureURL string `gorm:"size:512" json:"picture_url"`

	IsVerified          bool       `gorm:"default:false" json:"is_verified"`
	ConfirmationCode    string     `gorm:"size:64" json:"-"`
	ConfirmationExpires *time.Time `json:"-"`
	ResetToken          string     `gorm:"size:128;index" json:"-"`
	ResetExpires        *time.Time `json:"-"`

	// Subscription fields are written only by a successful payment
	// verification, never directly by the user.
	IsSubscriber             bool       `gorm:"index;default:false" json:"is_subscriber"`
	SubscribedAt             *time.Time `json:"subscribed_at"`
	PaystackCustomerCode     string     `gorm:"size:128" json:"-"`
	PaystackSubscriptionCode string     `gorm:"size:128" json:"-"`
	RenewalReminderSent      bool       `gorm:"default:false" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

// AuthorSummary is the display-safe projection of a user embedded in post,
// comment, and reply responses.
type AuthorSummary struct {
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	IsSubscriber bool   `json:"is_subscriber"`
}

// DeletedAuthorName is shown when an author reference no longer resolves.
const DeletedAuthorName = "deleted user"

// DeletedAuthor is the placeholder summary for dangling author references.
func DeletedAuthor() *AuthorSummary {
	return &AuthorSummary{ID: 0, Username: DeletedAuthorName}
}

// Summary projects the user into its display-safe form.
func (u *User) Summary() *AuthorSummary {
	return &AuthorSummary{ID: u.ID, Username: u.Username, IsSubscriber: u.IsSubscriber}
}
