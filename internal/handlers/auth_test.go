package handlers_test

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/turbonotes/backend/internal/models"
)

func TestRegisterLoginFlow(t *testing.T) {
	app, db, _ := setupTestApp(t)

	registerAccount(t, app, "a@example.com", "longpassword1")

	var categoryCount int64
	db.Model(&models.Category{}).Count(&categoryCount)
	if categoryCount != 3 {
		t.Errorf("Expected 3 seeded categories, got %d", categoryCount)
	}

	// Login with the same credentials
	resp := doJSON(t, app, "POST", "/api/auth/token/", "", fiber.Map{
		"email":    "a@example.com",
		"password": "longpassword1",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200 on login, got %d", resp.StatusCode)
	}

	var pair struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	parseJSON(t, resp, &pair)
	if pair.Access == "" || pair.Refresh == "" {
		t.Fatal("Expected access and refresh tokens on login")
	}

	// The fresh access token lists the 3 seeded categories, all empty
	resp = doJSON(t, app, "GET", "/api/categories/", pair.Access, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200 listing categories, got %d", resp.StatusCode)
	}
	var categories []struct {
		ID        uint64 `json:"id"`
		Name      string `json:"name"`
		Color     string `json:"color"`
		NoteCount int64  `json:"note_count"`
	}
	parseJSON(t, resp, &categories)
	if len(categories) != 3 {
		t.Fatalf("Expected 3 categories, got %d", len(categories))
	}
	for _, cat := range categories {
		if cat.NoteCount != 0 {
			t.Errorf("Category %q: expected note_count=0, got %d", cat.Name, cat.NoteCount)
		}
	}
}

func TestRegisterShortPassword(t *testing.T) {
	app, db, _ := setupTestApp(t)

	resp := doJSON(t, app, "POST", "/api/auth/register/", "", fiber.Map{
		"email":    "a@example.com",
		"password": "short1",
	})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("Expected 400 for short password, got %d", resp.StatusCode)
	}

	var body struct {
		Errors map[string][]string `json:"errors"`
	}
	parseJSON(t, resp, &body)
	if _, ok := body.Errors["password"]; !ok {
		t.Errorf("Expected password field error, got %v", body.Errors)
	}

	var userCount int64
	db.Model(&models.User{}).Count(&userCount)
	if userCount != 0 {
		t.Errorf("Expected no persisted user, got %d", userCount)
	}
}

func TestRegisterInvalidEmail(t *testing.T) {
	app, _, _ := setupTestApp(t)

	resp := doJSON(t, app, "POST", "/api/auth/register/", "", fiber.Map{
		"email":    "not-an-email",
		"password": "longpassword1",
	})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("Expected 400 for invalid email, got %d", resp.StatusCode)
	}

	var body struct {
		Errors map[string][]string `json:"errors"`
	}
	parseJSON(t, resp, &body)
	if _, ok := body.Errors["email"]; !ok {
		t.Errorf("Expected email field error, got %v", body.Errors)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app, _, _ := setupTestApp(t)

	registerAccount(t, app, "a@example.com", "longpassword1")

	resp := doJSON(t, app, "POST", "/api/auth/register/", "", fiber.Map{
		"email":    "a@example.com",
		"password": "longpassword1",
	})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("Expected 400 for duplicate email, got %d", resp.StatusCode)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	app, _, _ := setupTestApp(t)

	registerAccount(t, app, "a@example.com", "longpassword1")

	resp := doJSON(t, app, "POST", "/api/auth/token/", "", fiber.Map{
		"email":    "a@example.com",
		"password": "wrongpassword",
	})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("Expected 401 for bad password, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, "POST", "/api/auth/token/", "", fiber.Map{
		"email":    "nobody@example.com",
		"password": "longpassword1",
	})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("Expected 401 for unknown email, got %d", resp.StatusCode)
	}
}

func TestRefreshToken(t *testing.T) {
	app, _, _ := setupTestApp(t)

	_, refresh := registerAccount(t, app, "a@example.com", "longpassword1")

	// The refresh token can be used more than once (no rotation)
	for i := 0; i < 2; i++ {
		resp := doJSON(t, app, "POST", "/api/auth/token/refresh/", "", fiber.Map{
			"refresh": refresh,
		})
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("Refresh use %d: expected 200, got %d", i+1, resp.StatusCode)
		}
		var body struct {
			Access string `json:"access"`
		}
		parseJSON(t, resp, &body)
		if body.Access == "" {
			t.Fatal("Expected a new access token")
		}

		// The new access token works against a protected endpoint
		meResp := doJSON(t, app, "GET", "/api/auth/me/", body.Access, nil)
		if meResp.StatusCode != fiber.StatusOK {
			t.Errorf("Expected 200 from /me with refreshed token, got %d", meResp.StatusCode)
		}
	}
}

func TestRefreshTokenInvalid(t *testing.T) {
	app, _, _ := setupTestApp(t)

	resp := doJSON(t, app, "POST", "/api/auth/token/refresh/", "", fiber.Map{
		"refresh": "not-a-token",
	})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("Expected 401 for malformed refresh token, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, "POST", "/api/auth/token/refresh/", "", fiber.Map{})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("Expected 401 for empty refresh body, got %d", resp.StatusCode)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	app, _, _ := setupTestApp(t)

	access, _ := registerAccount(t, app, "a@example.com", "longpassword1")

	resp := doJSON(t, app, "POST", "/api/auth/token/refresh/", "", fiber.Map{
		"refresh": access,
	})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("Expected 401 refreshing with an access token, got %d", resp.StatusCode)
	}
}

func TestMe(t *testing.T) {
	app, _, _ := setupTestApp(t)

	access, _ := registerAccount(t, app, "a@example.com", "longpassword1")

	resp := doJSON(t, app, "GET", "/api/auth/me/", access, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Email string `json:"email"`
	}
	parseJSON(t, resp, &body)
	if body.Email != "a@example.com" {
		t.Errorf("Expected caller email, got %q", body.Email)
	}
}

func TestMeUnauthenticated(t *testing.T) {
	app, _, _ := setupTestApp(t)

	resp := doJSON(t, app, "GET", "/api/auth/me/", "", nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("Expected 401 without a token, got %d", resp.StatusCode)
	}
}

func TestMeDeactivatedUser(t *testing.T) {
	app, db, _ := setupTestApp(t)

	access, _ := registerAccount(t, app, "a@example.com", "longpassword1")

	if err := db.Model(&models.User{}).Where("email = ?", "a@example.com").
		Update("is_active", false).Error; err != nil {
		t.Fatalf("Failed to deactivate user: %v", err)
	}

	resp := doJSON(t, app, "GET", "/api/auth/me/", access, nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("Expected 401 for a deactivated user's token, got %d", resp.StatusCode)
	}
}
