package oauth

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"itemtrack/internal/models"
)

// ProviderGoogle is the single recognized identity provider.
const ProviderGoogle = "google"

// TokenSavedEvent is the payload emitted by the external OAuth client after it
// persists or refreshes a provider token for a user.
type TokenSavedEvent struct {
	UserID       int
	Provider     string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// TokenSink is the interface the external OAuth client calls into. Syncer is
// the production implementation.
type TokenSink interface {
	HandleTokenSaved(ctx context.Context, evt TokenSavedEvent) error
}

// Syncer projects token-saved events into oauth_tokens rows.
type Syncer struct {
	db *gorm.DB
}

// NewSyncer creates a Syncer backed by the given database
func NewSyncer(db *gorm.DB) *Syncer {
	return &Syncer{db: db}
}

// HandleTokenSaved upserts the token record for the event's user. Events for
// unrecognized providers are ignored. The write is a single conditional
// insert so two concurrent events for the same user cannot produce two rows.
func (s *Syncer) HandleTokenSaved(ctx context.Context, evt TokenSavedEvent) error {
	if evt.Provider != ProviderGoogle {
		return nil
	}

	token := models.OAuthToken{
		UserID:         evt.UserID,
		AccessToken:    evt.AccessToken,
		RefreshToken:   evt.RefreshToken,
		TokenExpiresAt: evt.ExpiresAt,
		UpdatedAt:      time.Now().UTC(),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"access_token",
			"refresh_token",
			"token_expires_at",
			"updated_at",
		}),
	}).Create(&token).Error

	if err != nil {
		log.Printf("Token sync: upsert failed for user %d: %v", evt.UserID, err)
		return fmt.Errorf("failed to store provider token: %w", err)
	}

	return nil
}
