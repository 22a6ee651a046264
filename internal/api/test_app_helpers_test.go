package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/quiethollow/tandem/internal/db"
	"github.com/quiethollow/tandem/internal/llm"
	"github.com/quiethollow/tandem/internal/services"
	"gorm.io/gorm"
)

type testApp struct {
	app      *fiber.App
	database *gorm.DB
	model    *llm.ScriptedClient
	tasks    *services.TaskRunner
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "tandem-test.db")
	database, err := db.OpenSQLite(databasePath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	model := llm.NewScriptedClient()
	tasks := services.NewTaskRunner(context.Background())
	handler := NewHandler(database, "test-secret-key", model, tasks, false)

	app := fiber.New()
	RegisterRoutes(app, handler)

	return &testApp{app: app, database: database, model: model, tasks: tasks}
}

func jsonRequest(t *testing.T, method string, path string, payload any, authCookie string) *http.Request {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("encode request payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, body)
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if authCookie != "" {
		request.Header.Set("Cookie", authCookie)
	}
	return request
}

func decodeJSON(t *testing.T, response *http.Response, target any) {
	t.Helper()
	defer response.Body.Close()
	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

// registerTestCouple creates an account through the real registration route
// and returns the auth cookie plus the created user's id.
func registerTestCouple(t *testing.T, app *fiber.App, email string) (string, string) {
	t.Helper()

	request := jsonRequest(t, http.MethodPost, "/api/auth/register", fiber.Map{
		"email":          email,
		"password":       "sunlit-harbor",
		"partnerAName":   "Alex",
		"partnerBName":   "Sam",
		"partnerAGender": "MALE",
		"partnerBGender": "FEMALE",
	}, "")

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("register request failed: %v", err)
	}
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("expected register status 201, got %d", response.StatusCode)
	}

	var payload struct {
		User userView `json:"user"`
	}
	decodeJSON(t, response, &payload)

	for _, cookie := range response.Cookies() {
		if cookie.Name == "tandem_auth" && cookie.Value != "" {
			return cookie.Name + "=" + cookie.Value, payload.User.ID
		}
	}
	t.Fatal("auth cookie is missing in register response")
	return "", ""
}

func fetchSessions(t *testing.T, app *fiber.App, authCookie string) []sessionView {
	t.Helper()

	response, err := app.Test(jsonRequest(t, http.MethodGet, "/api/sessions", nil, authCookie), -1)
	if err != nil {
		t.Fatalf("sessions request failed: %v", err)
	}
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected sessions status 200, got %d", response.StatusCode)
	}

	var payload struct {
		Sessions []sessionView `json:"sessions"`
	}
	decodeJSON(t, response, &payload)
	return payload.Sessions
}

func patchSessionStatus(t *testing.T, app *fiber.App, authCookie string, sessionID string, status string) *http.Response {
	t.Helper()

	response, err := app.Test(jsonRequest(t, http.MethodPatch, "/api/sessions/"+sessionID, fiber.Map{
		"status": status,
	}, authCookie), -1)
	if err != nil {
		t.Fatalf("patch session request failed: %v", err)
	}
	return response
}

func completeRound(t *testing.T, harness *testApp, authCookie string, round string) {
	t.Helper()

	for _, session := range fetchSessions(t, harness.app, authCookie) {
		if session.Round != round {
			continue
		}
		response := patchSessionStatus(t, harness.app, authCookie, session.ID, "COMPLETED")
		if response.StatusCode != http.StatusOK {
			t.Fatalf("expected patch status 200 for %s/%s, got %d", session.Round, session.PartnerRole, response.StatusCode)
		}
		response.Body.Close()
	}
}

func fetchDocuments(t *testing.T, app *fiber.App, authCookie string) []documentView {
	t.Helper()

	response, err := app.Test(jsonRequest(t, http.MethodGet, "/api/documents", nil, authCookie), -1)
	if err != nil {
		t.Fatalf("documents request failed: %v", err)
	}
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected documents status 200, got %d", response.StatusCode)
	}

	var payload struct {
		Documents []documentView `json:"documents"`
	}
	decodeJSON(t, response, &payload)
	return payload.Documents
}
