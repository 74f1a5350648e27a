package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/turbonotes/backend/internal/config"
	"github.com/turbonotes/backend/internal/database"
	"github.com/turbonotes/backend/internal/handlers"
	"github.com/turbonotes/backend/internal/middleware"
	"github.com/turbonotes/backend/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestApp builds the API surface against an in-memory SQLite database,
// mirroring the route wiring in cmd/server.
func setupTestApp(t *testing.T) (*fiber.App, *gorm.DB, *config.Config) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	cfg := &config.Config{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  24 * time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	}

	app := fiber.New(fiber.Config{ErrorHandler: utils.GlobalErrorHandler})

	authHandler := &handlers.AuthHandler{DB: db, Cfg: cfg}
	notesHandler := &handlers.NotesHandler{DB: db}

	api := app.Group("/api")
	auth := api.Group("/auth")
	auth.Post("/register/", authHandler.Register)
	auth.Post("/token/", authHandler.Login)
	auth.Post("/token/refresh/", authHandler.Refresh)
	auth.Get("/me/", middleware.RequireAuth(cfg), authHandler.Me)

	api.Get("/categories/", middleware.RequireAuth(cfg), notesHandler.ListCategories)
	api.Get("/categories/:id/", middleware.RequireAuth(cfg), notesHandler.GetCategory)

	api.Get("/notes/", middleware.RequireAuth(cfg), notesHandler.ListNotes)
	api.Post("/notes/", middleware.RequireAuth(cfg), notesHandler.CreateNote)
	api.Get("/notes/:id/", middleware.RequireAuth(cfg), notesHandler.GetNote)
	api.Patch("/notes/:id/", middleware.RequireAuth(cfg), notesHandler.UpdateNote)
	api.Delete("/notes/:id/", middleware.RequireAuth(cfg), notesHandler.DeleteNote)

	return app, db, cfg
}

// doJSON performs a request with an optional bearer token and JSON body
func doJSON(t *testing.T, app *fiber.App, method, url, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, url, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	return resp
}

// parseJSON decodes the response body into the target
func parseJSON(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	defer resp.Body.Close()

	if err := json.Unmarshal(body, target); err != nil {
		t.Fatalf("Failed to decode JSON: %v. Body: %s", err, string(body))
	}
}

// registerAccount registers a fresh account and returns its token pair
func registerAccount(t *testing.T, app *fiber.App, email, password string) (access, refresh string) {
	t.Helper()

	resp := doJSON(t, app, "POST", "/api/auth/register/", "", fiber.Map{
		"email":    email,
		"password": password,
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("Registration of %s: expected 201, got %d", email, resp.StatusCode)
	}

	var pair struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	parseJSON(t, resp, &pair)
	if pair.Access == "" || pair.Refresh == "" {
		t.Fatal("Expected a non-empty access/refresh pair")
	}
	return pair.Access, pair.Refresh
}
