package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/quiethollow/tandem/internal/models"
)

type chatResponse struct {
	Response          string `json:"response"`
	QuestionCount     int    `json:"questionCount"`
	SessionComplete   bool   `json:"sessionComplete"`
	RevisionRequested bool   `json:"revisionRequested"`
}

func round1SessionFor(t *testing.T, harness *testApp, authCookie string, role string) sessionView {
	t.Helper()
	for _, session := range fetchSessions(t, harness.app, authCookie) {
		if session.Round == models.Round1 && session.PartnerRole == role {
			return session
		}
	}
	t.Fatalf("round 1 session for role %s not found", role)
	return sessionView{}
}

func TestChatNullMessageReturnsOpeningLine(t *testing.T) {
	t.Parallel()

	harness := newTestApp(t)
	authCookie, _ := registerTestCouple(t, harness.app, "opening@example.com")
	session := round1SessionFor(t, harness, authCookie, models.RoleA)

	response, err := harness.app.Test(jsonRequest(t, http.MethodPost, "/api/chat", fiber.Map{
		"sessionId": session.ID,
		"message":   nil,
	}, authCookie), -1)
	if err != nil {
		t.Fatalf("chat request failed: %v", err)
	}
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected chat status 200, got %d", response.StatusCode)
	}

	var payload chatResponse
	decodeJSON(t, response, &payload)

	if !strings.Contains(payload.Response, "Welcome, Alex.") {
		t.Fatalf("opening line should greet partner A, got %q", payload.Response)
	}
	if payload.QuestionCount != 1 {
		t.Fatalf("opening questionCount = %d, want 1", payload.QuestionCount)
	}
	if payload.SessionComplete {
		t.Fatal("opening line must not complete the session")
	}
	if harness.model.CallCount() != 0 {
		t.Fatalf("opening line must not call the model, got %d calls", harness.model.CallCount())
	}
}

func TestChatStripsCompletionSentinel(t *testing.T) {
	t.Parallel()

	harness := newTestApp(t)
	authCookie, _ := registerTestCouple(t, harness.app, "sentinel@example.com")
	session := round1SessionFor(t, harness, authCookie, models.RoleA)

	harness.model.Fallback = "Thank you for sharing so openly, Alex.\n\n[SESSION_COMPLETE]"

	response, err := harness.app.Test(jsonRequest(t, http.MethodPost, "/api/chat", fiber.Map{
		"sessionId": session.ID,
		"message":   "That covers everything for me.",
	}, authCookie), -1)
	if err != nil {
		t.Fatalf("chat request failed: %v", err)
	}
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected chat status 200, got %d", response.StatusCode)
	}

	var payload chatResponse
	decodeJSON(t, response, &payload)

	if !payload.SessionComplete {
		t.Fatal("completion sentinel should set sessionComplete")
	}
	if strings.Contains(payload.Response, "[SESSION_COMPLETE]") {
		t.Fatalf("sentinel must be stripped from the reply, got %q", payload.Response)
	}
}

func TestChatRevisionSentinelPersistsInsightsFlag(t *testing.T) {
	t.Parallel()

	harness := newTestApp(t)
	authCookie, _ := registerTestCouple(t, harness.app, "revision@example.com")
	completeRound(t, harness, authCookie, models.Round1)
	harness.tasks.Wait()

	var session sessionView
	for _, candidate := range fetchSessions(t, harness.app, authCookie) {
		if candidate.Round == models.Round2 && candidate.PartnerRole == models.RoleA {
			session = candidate
		}
	}
	if session.ID == "" {
		t.Fatal("round 2 session for partner A not found")
	}

	harness.model.Fallback = "I hear that the document missed something important.\n\n[REVISION_REQUESTED]"

	response, err := harness.app.Test(jsonRequest(t, http.MethodPost, "/api/chat", fiber.Map{
		"sessionId": session.ID,
		"message":   "The document doesn't reflect what I actually said.",
	}, authCookie), -1)
	if err != nil {
		t.Fatalf("chat request failed: %v", err)
	}
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected chat status 200, got %d", response.StatusCode)
	}

	var payload chatResponse
	decodeJSON(t, response, &payload)

	if !payload.RevisionRequested {
		t.Fatal("revision sentinel should set revisionRequested")
	}
	if strings.Contains(payload.Response, "[REVISION_REQUESTED]") {
		t.Fatalf("sentinel must be stripped from the reply, got %q", payload.Response)
	}

	for _, candidate := range fetchSessions(t, harness.app, authCookie) {
		if candidate.ID == session.ID && !candidate.Insights.RevisionRequested {
			t.Fatal("revision flag should be persisted on the session insights")
		}
	}
}

func TestChatCountsQuestions(t *testing.T) {
	t.Parallel()

	harness := newTestApp(t)
	authCookie, _ := registerTestCouple(t, harness.app, "questions@example.com")
	session := round1SessionFor(t, harness, authCookie, models.RoleA)
	harness.model.Fallback = "That makes sense. What did that dream mean to you?"

	response, err := harness.app.Test(jsonRequest(t, http.MethodPost, "/api/chat", fiber.Map{
		"sessionId": session.ID,
		"message":   "We wanted to travel the world together.",
	}, authCookie), -1)
	if err != nil {
		t.Fatalf("chat request failed: %v", err)
	}

	var payload chatResponse
	decodeJSON(t, response, &payload)

	if payload.QuestionCount != session.QuestionCount+1 {
		t.Fatalf("questionCount = %d, want %d", payload.QuestionCount, session.QuestionCount+1)
	}
}

func TestChatRound2LockedBeforeRound1Done(t *testing.T) {
	t.Parallel()

	harness := newTestApp(t)
	authCookie, _ := registerTestCouple(t, harness.app, "chatlocked@example.com")

	var round2 sessionView
	for _, session := range fetchSessions(t, harness.app, authCookie) {
		if session.Round == models.Round2 && session.PartnerRole == models.RoleA {
			round2 = session
		}
	}

	response, err := harness.app.Test(jsonRequest(t, http.MethodPost, "/api/chat", fiber.Map{
		"sessionId": round2.ID,
		"message":   nil,
	}, authCookie), -1)
	if err != nil {
		t.Fatalf("chat request failed: %v", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusBadRequest {
		t.Fatalf("round 2 chat before round 1 completion should 400, got %d", response.StatusCode)
	}

	var payload struct {
		Error string `json:"error"`
	}
	decodeJSON(t, response, &payload)
	if payload.Error != "both partners must complete round 1 first" {
		t.Fatalf("unexpected error message %q", payload.Error)
	}
}

func TestChatForeignSessionIs404(t *testing.T) {
	t.Parallel()

	harness := newTestApp(t)
	ownerCookie, _ := registerTestCouple(t, harness.app, "chatowner@example.com")
	intruderCookie, _ := registerTestCouple(t, harness.app, "chatintruder@example.com")
	session := round1SessionFor(t, harness, ownerCookie, models.RoleA)

	response, err := harness.app.Test(jsonRequest(t, http.MethodPost, "/api/chat", fiber.Map{
		"sessionId": session.ID,
		"message":   nil,
	}, intruderCookie), -1)
	if err != nil {
		t.Fatalf("chat request failed: %v", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusNotFound {
		t.Fatalf("foreign session chat should 404, got %d", response.StatusCode)
	}
}

func TestChatRateLimited(t *testing.T) {
	t.Parallel()

	harness := newTestApp(t)
	authCookie, _ := registerTestCouple(t, harness.app, "ratelimit@example.com")
	session := round1SessionFor(t, harness, authCookie, models.RoleA)

	for call := 0; call < chatRateLimit; call++ {
		response, err := harness.app.Test(jsonRequest(t, http.MethodPost, "/api/chat", fiber.Map{
			"sessionId": session.ID,
			"message":   nil,
		}, authCookie), -1)
		if err != nil {
			t.Fatalf("chat request %d failed: %v", call+1, err)
		}
		if response.StatusCode != http.StatusOK {
			t.Fatalf("chat request %d should pass the limiter, got %d", call+1, response.StatusCode)
		}
		response.Body.Close()
	}

	response, err := harness.app.Test(jsonRequest(t, http.MethodPost, "/api/chat", fiber.Map{
		"sessionId": session.ID,
		"message":   nil,
	}, authCookie), -1)
	if err != nil {
		t.Fatalf("chat request failed: %v", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("11th chat call in the window should 429, got %d", response.StatusCode)
	}
	if response.Header.Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("X-RateLimit-Remaining = %q, want 0", response.Header.Get("X-RateLimit-Remaining"))
	}
	if response.Header.Get("X-RateLimit-Limit") != "10" {
		t.Fatalf("X-RateLimit-Limit = %q, want 10", response.Header.Get("X-RateLimit-Limit"))
	}
}
