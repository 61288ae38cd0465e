package api

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"itemtrack/internal/config"
	"itemtrack/internal/models"
)

// buildItemListQuery scopes the query to the owner and folds each recognized
// filter into it. Filters are conjunctive; an unrecognized order_by falls
// back to created_at.
func buildItemListQuery(db *gorm.DB, ownerID int, params url.Values) (*gorm.DB, error) {
	query := db.Where("owner_id = ?", ownerID)

	if title := params.Get("title"); title != "" {
		// LOWER/LIKE instead of ILIKE so the same query runs on every dialect
		query = query.Where("LOWER(title) LIKE ? ESCAPE '\\'", likePattern(title))
	}

	if v := params.Get("created_after"); v != "" {
		t, _, err := parseDateBound(v)
		if err != nil {
			return nil, err
		}
		query = query.Where("created_at >= ?", t)
	}

	if v := params.Get("created_before"); v != "" {
		t, dateOnly, err := parseDateBound(v)
		if err != nil {
			return nil, err
		}
		if dateOnly {
			// A bare date is an inclusive upper bound covering that whole day
			query = query.Where("created_at < ?", t.Add(24*time.Hour))
		} else {
			query = query.Where("created_at <= ?", t)
		}
	}

	orderBy := params.Get("order_by")
	if orderBy != "title" && orderBy != "created_at" {
		orderBy = "created_at"
	}

	return query.Order(orderBy), nil
}

// parseDateBound accepts YYYY-MM-DD or RFC3339 and reports which form it was
func parseDateBound(value string) (time.Time, bool, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	return t, false, err
}

func likePattern(s string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(s))
	return "%" + escaped + "%"
}

// HandleListItems returns the caller's items matching the supplied filters
func HandleListItems(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := r.Context().Value(userContextKey).(*models.User)

		query, err := buildItemListQuery(db, user.ID, r.URL.Query())
		if err != nil {
			// Bad filter values surface as a generic retrieval failure, same
			// as any other queryset construction error
			log.Println("ListItems: query construction failed:", err.Error())
			http.Error(w, "Failed to retrieve items", http.StatusInternalServerError)
			return
		}

		items := make([]models.Item, 0)
		if err := query.Find(&items).Error; err != nil {
			log.Println("ListItems: query failed:", err.Error())
			http.Error(w, "Failed to retrieve items", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(items)
	}
}

// CreateItemRequest represents the create payload. There is deliberately no
// owner field: the owner is always the authenticated caller.
type CreateItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// HandleCreateItem creates a new item owned by the caller
func HandleCreateItem(db *gorm.DB, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := r.Context().Value(userContextKey).(*models.User)

		var req CreateItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if msg, ok := validateTitle(req.Title, cfg.MaxTitleLength); !ok {
			http.Error(w, msg, http.StatusBadRequest)
			return
		}

		item := models.Item{
			Title:       req.Title,
			Description: req.Description,
			OwnerID:     user.ID,
			CreatedAt:   time.Now().UTC(),
		}

		if err := db.Create(&item).Error; err != nil {
			log.Println("CreateItem: insert failed:", err.Error())
			http.Error(w, "Failed to create item", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(item)
	}
}

// HandleGetItem returns a single item by ID, scoped to the caller
func HandleGetItem(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := r.Context().Value(userContextKey).(*models.User)

		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "Invalid item ID", http.StatusBadRequest)
			return
		}

		var item models.Item
		err = db.Where("id = ? AND owner_id = ?", id, user.ID).First(&item).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				http.Error(w, "Item not found", http.StatusNotFound)
			} else {
				log.Println("GetItem: query failed:", err.Error())
				http.Error(w, "Failed to fetch item", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(item)
	}
}

// UpdateItemRequest represents the update payload. Only title and
// description are mutable; id and owner fields in the body are ignored.
type UpdateItemRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// HandleUpdateItem updates an item's title and/or description, scoped to the
// caller. PUT requires a title; PATCH applies only the supplied fields.
func HandleUpdateItem(db *gorm.DB, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := r.Context().Value(userContextKey).(*models.User)

		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "Invalid item ID", http.StatusBadRequest)
			return
		}

		var req UpdateItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if r.Method == http.MethodPut && req.Title == nil {
			http.Error(w, "Title is required", http.StatusBadRequest)
			return
		}

		if req.Title != nil {
			if msg, ok := validateTitle(*req.Title, cfg.MaxTitleLength); !ok {
				http.Error(w, msg, http.StatusBadRequest)
				return
			}
		}

		var item models.Item
		err = db.Where("id = ? AND owner_id = ?", id, user.ID).First(&item).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				http.Error(w, "Item not found", http.StatusNotFound)
			} else {
				log.Println("UpdateItem: lookup failed:", err.Error())
				http.Error(w, "Failed to fetch item", http.StatusInternalServerError)
			}
			return
		}

		updates := map[string]interface{}{}
		if req.Title != nil {
			item.Title = *req.Title
			updates["title"] = *req.Title
		}
		if req.Description != nil {
			item.Description = *req.Description
			updates["description"] = *req.Description
		}

		if len(updates) > 0 {
			err = db.Model(&models.Item{}).
				Where("id = ? AND owner_id = ?", item.ID, user.ID).
				Updates(updates).Error
			if err != nil {
				log.Println("UpdateItem: update failed:", err.Error())
				http.Error(w, "Failed to update item", http.StatusInternalServerError)
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(item)
	}
}

// HandleDeleteItem deletes an item, scoped to the caller
func HandleDeleteItem(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := r.Context().Value(userContextKey).(*models.User)

		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "Invalid item ID", http.StatusBadRequest)
			return
		}

		var item models.Item
		err = db.Where("id = ? AND owner_id = ?", id, user.ID).First(&item).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				http.Error(w, "Item not found", http.StatusNotFound)
			} else {
				log.Println("DeleteItem: lookup failed:", err.Error())
				http.Error(w, "Failed to fetch item", http.StatusInternalServerError)
			}
			return
		}

		// Second ownership check on the loaded row. The scoped lookup above
		// already guarantees this; a mismatch here is an invariant violation.
		if item.OwnerID != user.ID {
			log.Printf("DeleteItem: ownership mismatch for item %d (owner %d, caller %d)", item.ID, item.OwnerID, user.ID)
			http.Error(w, "You cannot delete items that don't belong to you", http.StatusForbidden)
			return
		}

		result := db.Where("id = ? AND owner_id = ?", id, user.ID).Delete(&models.Item{})
		if result.Error != nil {
			log.Println("DeleteItem: delete failed:", result.Error.Error())
			http.Error(w, "Failed to delete item", http.StatusInternalServerError)
			return
		}

		if result.RowsAffected == 0 {
			http.Error(w, "Item not found", http.StatusNotFound)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func validateTitle(title string, maxLen int) (string, bool) {
	if title == "" {
		return "Title is required", false
	}
	if utf8.RuneCountInString(title) > maxLen {
		return "Title must be at most " + strconv.Itoa(maxLen) + " characters", false
	}
	return "", true
}
