//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stemsi/typequiz-backend/internal/model"
)

const defaultBaseURL = "http://localhost:8080/api/v1"

var (
	baseURL    string
	adminPass  string
	resultID   string
	testsTaken int64
)

func TestMain(m *testing.M) {
	// Load .env if present (ignore error)
	_ = godotenv.Load("../../.env")

	baseURL = os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	// E2E_ADMIN_PASSWORD must match the server's ADMIN_PASSWORD_HASH.
	adminPass = os.Getenv("E2E_ADMIN_PASSWORD")

	os.Exit(m.Run())
}

type envelope[T any] struct {
	Data  T `json:"data"`
	Error struct {
		Code string `json:"code"`
	} `json:"error"`
}

func TestE2EFlow(t *testing.T) {
	var paper model.QuizPaper

	// Step 1: Public counter before submitting
	t.Run("PublicStatsBefore", func(t *testing.T) {
		var body envelope[model.PublicStats]
		mustGet(t, "/public/stats", "", http.StatusOK, &body)
		testsTaken = body.Data.TestsTaken
	})

	// Step 2: Fetch the current fast quiz
	t.Run("GetQuestions", func(t *testing.T) {
		var body envelope[model.QuizPaper]
		mustGet(t, "/quiz/questions?mode=fast", "", http.StatusOK, &body)
		paper = body.Data

		if paper.Total != 44 || len(paper.Questions) != 44 {
			t.Fatalf("expected 44 questions, got total=%d len=%d", paper.Total, len(paper.Questions))
		}
		seen := make(map[int]bool)
		for _, q := range paper.Questions {
			if seen[q.ID] {
				t.Fatalf("question %d served twice", q.ID)
			}
			seen[q.ID] = true
		}
	})

	// Step 3: Unknown mode is rejected
	t.Run("GetQuestionsInvalidMode", func(t *testing.T) {
		var body envelope[any]
		mustGet(t, "/quiz/questions?mode=slow", "", http.StatusBadRequest, &body)
		if body.Error.Code != "INVALID_MODE" {
			t.Errorf("expected INVALID_MODE, got %s", body.Error.Code)
		}
	})

	// Step 4: Submit answers leaning right on every question
	t.Run("Submit", func(t *testing.T) {
		if len(paper.Questions) == 0 {
			t.Skip("no questions fetched")
		}
		req := model.SubmitAnswersRequest{Mode: "fast"}
		for _, q := range paper.Questions {
			req.Answers = append(req.Answers, model.AnswerItem{QuestionID: q.ID, Value: json.RawMessage("2")})
		}

		var body envelope[model.SubmitResponse]
		mustPost(t, "/quiz/submit", req, "", http.StatusCreated, &body)

		if len(body.Data.Result.Type) != 4 {
			t.Fatalf("unexpected type %q", body.Data.Result.Type)
		}
		if body.Data.Result.Warning != "" {
			t.Errorf("complete quiz should carry no warning, got %q", body.Data.Result.Warning)
		}
		resultID = body.Data.ID
		if resultID == "" {
			t.Fatal("result id missing")
		}
	})

	// Step 5: Nothing valid is rejected
	t.Run("SubmitNoValidAnswers", func(t *testing.T) {
		req := model.SubmitAnswersRequest{Answers: []model.AnswerItem{{QuestionID: 99999, Value: json.RawMessage("1")}}}
		var body envelope[any]
		mustPost(t, "/quiz/submit", req, "", http.StatusBadRequest, &body)
		if body.Error.Code != "NO_VALID_ANSWERS" {
			t.Errorf("expected NO_VALID_ANSWERS, got %s", body.Error.Code)
		}
	})

	// Step 6: Shared result link
	t.Run("GetResult", func(t *testing.T) {
		if resultID == "" {
			t.Skip("no result stored")
		}
		var body envelope[model.StoredResult]
		mustGet(t, "/results/"+resultID, "", http.StatusOK, &body)
		if body.Data.ID != resultID {
			t.Errorf("expected id %s, got %s", resultID, body.Data.ID)
		}

		var missing envelope[any]
		mustGet(t, "/results/00000000-0000-4000-8000-000000000000", "", http.StatusNotFound, &missing)
		mustGet(t, "/results/not-a-uuid", "", http.StatusBadRequest, &missing)
	})

	// Step 7: Counter moved
	t.Run("PublicStatsAfter", func(t *testing.T) {
		var body envelope[model.PublicStats]
		mustGet(t, "/public/stats", "", http.StatusOK, &body)
		if body.Data.TestsTaken <= testsTaken {
			t.Errorf("expected tests_taken > %d, got %d", testsTaken, body.Data.TestsTaken)
		}
	})

	// Step 8: Admin stats
	t.Run("AdminStats", func(t *testing.T) {
		var denied envelope[any]
		mustGet(t, "/admin/stats", "", http.StatusUnauthorized, &denied)

		if adminPass == "" {
			t.Skip("E2E_ADMIN_PASSWORD not set")
		}

		var login envelope[struct {
			Token string `json:"token"`
		}]
		mustPost(t, "/auth/admin/login", model.AdminLoginRequest{Password: adminPass}, "", http.StatusOK, &login)
		if login.Data.Token == "" {
			t.Fatal("token missing")
		}

		var body envelope[model.AdminStats]
		mustGet(t, "/admin/stats", login.Data.Token, http.StatusOK, &body)
		if body.Data.TestsTaken < 1 {
			t.Errorf("expected at least one test taken, got %d", body.Data.TestsTaken)
		}
	})
}

// Helpers

func mustGet(t *testing.T, path, token string, wantStatus int, v interface{}) {
	t.Helper()
	resp, err := get(path, token)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	expect(t, resp, wantStatus, v)
}

func mustPost(t *testing.T, path string, body interface{}, token string, wantStatus int, v interface{}) {
	t.Helper()
	resp, err := post(path, body, token)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	expect(t, resp, wantStatus, v)
}

func expect(t *testing.T, resp *http.Response, wantStatus int, v interface{}) {
	t.Helper()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: status %d, want %d: %s", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, wantStatus, raw)
	}
	if v == nil {
		return
	}
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("json decode: %v: %s", err, raw)
	}
}

func post(path string, body interface{}, token string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

func get(path string, token string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}
