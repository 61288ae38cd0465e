package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"itemtrack/internal/config"
	"itemtrack/internal/models"
)

const testJWTSecret = "test-secret-key-for-testing-purposes-only"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// One connection so every query sees the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Item{}, &models.OAuthToken{}))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Port:           8080,
		JWTSecret:      testJWTSecret,
		Environment:    "development",
		CORSOrigins:    []string{"http://localhost:3000"},
		MaxTitleLength: 255,
	}
}

func newTestServer(t *testing.T) (http.Handler, *gorm.DB, *config.Config) {
	t.Helper()
	db := newTestDB(t)
	cfg := testConfig()
	return NewRouter(cfg, db), db, cfg
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := models.User{Username: username, Active: true, CreatedAt: time.Now().UTC()}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createItem(t *testing.T, db *gorm.DB, owner *models.User, title, description string, createdAt time.Time) *models.Item {
	t.Helper()
	item := models.Item{
		Title:       title,
		Description: description,
		OwnerID:     owner.ID,
		CreatedAt:   createdAt,
	}
	require.NoError(t, db.Create(&item).Error)
	return &item
}

func bearerToken(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := generateJWT(user.ID, testJWTSecret)
	require.NoError(t, err)
	return "Bearer " + token
}

func doRequest(t *testing.T, handler http.Handler, user *models.User, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var bodyReader *bytes.Reader
	switch v := body.(type) {
	case nil:
		bodyReader = bytes.NewReader([]byte{})
	case string:
		bodyReader = bytes.NewReader([]byte(v))
	default:
		jsonBody, err := json.Marshal(v)
		require.NoError(t, err)
		bodyReader = bytes.NewReader(jsonBody)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req.Header.Set("Authorization", bearerToken(t, user))
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func decodeItems(t *testing.T, w *httptest.ResponseRecorder) []models.Item {
	t.Helper()
	var items []models.Item
	require.NoError(t, json.NewDecoder(w.Body).Decode(&items))
	return items
}

func decodeItem(t *testing.T, w *httptest.ResponseRecorder) models.Item {
	t.Helper()
	var item models.Item
	require.NoError(t, json.NewDecoder(w.Body).Decode(&item))
	return item
}
