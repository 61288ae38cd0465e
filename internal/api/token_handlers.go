package api

import (
	"encoding/json"
	"log"
	"net/http"

	"gorm.io/gorm"

	"itemtrack/internal/models"
)

// HandleGetOAuthToken returns the caller's provider token record. The model's
// JSON tags expose only access_token, refresh_token and token_expires_at.
func HandleGetOAuthToken(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := r.Context().Value(userContextKey).(*models.User)

		var token models.OAuthToken
		err := db.Where("user_id = ?", user.ID).First(&token).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				http.Error(w, "OAuth token not found", http.StatusNotFound)
			} else {
				log.Println("GetOAuthToken: query failed:", err.Error())
				http.Error(w, "Failed to fetch OAuth token", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(token)
	}
}
