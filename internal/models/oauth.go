package models

import "time"

// OAuthToken holds the provider token pair for a user. At most one row per
// user; the row is written only by the token sync handler, never by clients.
type OAuthToken struct {
	ID             int       `json:"-" gorm:"primaryKey;autoIncrement"`
	UserID         int       `json:"-" gorm:"uniqueIndex;not null"`
	AccessToken    string    `json:"access_token" gorm:"type:text;not null"`
	RefreshToken   string    `json:"refresh_token" gorm:"type:text"`
	TokenExpiresAt time.Time `json:"token_expires_at" gorm:"not null"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`
}

// TableName specifies the table name for OAuthToken
func (OAuthToken) TableName() string {
	return "oauth_tokens"
}
