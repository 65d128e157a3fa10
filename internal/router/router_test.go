package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stemsi/typequiz-backend/internal/config"
	"github.com/stemsi/typequiz-backend/internal/handler"
	"github.com/stemsi/typequiz-backend/internal/metrics"
	"github.com/stemsi/typequiz-backend/internal/personality"
	"github.com/stemsi/typequiz-backend/internal/service"
	"github.com/stemsi/typequiz-backend/internal/store"
	"github.com/stemsi/typequiz-backend/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const adminPassword = "let-me-in-please"

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	} `json:"error"`
}

type paper struct {
	Mode      string                   `json:"mode"`
	Window    int64                    `json:"window"`
	Total     int                      `json:"total"`
	Questions []personality.Descriptor `json:"questions"`
}

type submitted struct {
	ID     string             `json:"id"`
	Result personality.Result `json:"result"`
}

func newTestRouter(t *testing.T, submitRate int) *gin.Engine {
	t.Helper()
	validator.Setup()

	hash, err := service.HashPassword(adminPassword, bcrypt.MinCost)
	require.NoError(t, err)
	cfg := &config.Config{
		GinMode:           gin.TestMode,
		SubmitRatePerMin:  submitRate,
		JWTSecret:         "router-secret",
		JWTExpiry:         time.Hour,
		AdminPasswordHash: hash,
	}

	corpus, err := personality.DefaultCorpus()
	require.NoError(t, err)
	st, err := store.NewFSStore(t.TempDir())
	require.NoError(t, err)

	log := zerolog.Nop()
	reg := prometheus.NewRegistry()
	m := metrics.MustNewMetrics(reg)

	quizService, err := service.NewQuizService(corpus, service.QuizOptions{
		Rotation:  personality.GranularityDay,
		ResultTTL: time.Hour,
	}, st, st, nil, m, log)
	require.NoError(t, err)
	statsService := service.NewStatsService(st, nil, log)
	authService := service.NewAuthService(cfg)

	return SetupRouter(t.Context(), authService, &Handlers{
		Auth:    handler.NewAuthHandler(authService, log),
		Quiz:    handler.NewQuizHandler(quizService, log),
		Result:  handler.NewResultHandler(quizService, log),
		Stats:   handler.NewStatsHandler(statsService, log),
		StatsWS: handler.NewStatsWSHandler(statsService, log, nil),
		Metrics: metrics.Handler(reg),
	}, cfg)
}

func call(t *testing.T, r http.Handler, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func fetchPaper(t *testing.T, r http.Handler, mode string) paper {
	t.Helper()
	rec, env := call(t, r, http.MethodGet, "/api/v1/quiz/questions?mode="+mode, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "max-age=")

	var p paper
	require.NoError(t, json.Unmarshal(env.Data, &p))
	return p
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, 100)
	rec, env := call(t, r, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestQuestionsByMode(t *testing.T) {
	r := newTestRouter(t, 100)

	fast := fetchPaper(t, r, "")
	assert.Equal(t, "fast", fast.Mode)
	assert.Len(t, fast.Questions, 44)

	full := fetchPaper(t, r, "comprehensive")
	assert.Equal(t, 88, full.Total)
	assert.Len(t, full.Questions, 88)

	rec, env := call(t, r, http.MethodGet, "/api/v1/quiz/questions?mode=turbo", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_MODE", env.Error.Code)
}

func TestSubmitAndShareFlow(t *testing.T) {
	r := newTestRouter(t, 100)
	p := fetchPaper(t, r, "fast")

	answers := make([]map[string]int, 0, len(p.Questions))
	for _, q := range p.Questions {
		answers = append(answers, map[string]int{"question_id": q.ID, "value": -2})
	}

	rec, env := call(t, r, http.MethodPost, "/api/v1/quiz/submit", map[string]interface{}{"answers": answers}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out submitted
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(t, out.ID)
	assert.Len(t, out.Result.Type, 4)
	assert.Empty(t, out.Result.Warning)

	rec, env = call(t, r, http.MethodGet, "/api/v1/results/"+out.ID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	var shared submitted
	require.NoError(t, json.Unmarshal(env.Data, &shared))
	assert.Equal(t, out.Result.Type, shared.Result.Type)

	rec, env = call(t, r, http.MethodGet, "/api/v1/public/stats", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tests_taken":1}`, string(env.Data))

	rec, _ = call(t, r, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `typequiz_submissions_total{outcome="scored"} 1`)
}

func TestSubmitRejections(t *testing.T) {
	r := newTestRouter(t, 100)

	rec, env := call(t, r, http.MethodPost, "/api/v1/quiz/submit", map[string]interface{}{
		"answers": []map[string]int{{"question_id": 5000, "value": 1}},
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NO_VALID_ANSWERS", env.Error.Code)

	rec, env = call(t, r, http.MethodPost, "/api/v1/quiz/submit", map[string]interface{}{"answers": []int{}}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Fields, "answers")

	rec, env = call(t, r, http.MethodPost, "/api/v1/quiz/submit", map[string]interface{}{
		"answers": []map[string]int{{"question_id": 1, "value": 1}},
		"mode":    "marathon",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Fields, "mode")
}

func TestSubmitSkipsUnreadableValues(t *testing.T) {
	r := newTestRouter(t, 100)

	rec, env := call(t, r, http.MethodPost, "/api/v1/quiz/submit",
		json.RawMessage(`{"answers":[{"question_id":1},{"question_id":2,"value":null}]}`), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	require.NotNil(t, env.Error)
	assert.Equal(t, "NO_VALID_ANSWERS", env.Error.Code)

	rec, env = call(t, r, http.MethodPost, "/api/v1/quiz/submit",
		json.RawMessage(`{"answers":[{"question_id":1,"value":2},{"question_id":2,"value":1.5},{"question_id":3,"value":"2"}]}`), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out submitted
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, 1, out.Result.Answered)
	assert.Equal(t, 2, out.Result.Skipped)
	assert.Zero(t, out.Result.Neutral)

	// Only the scored submission reaches the counter.
	rec, env = call(t, r, http.MethodGet, "/api/v1/public/stats", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tests_taken":1}`, string(env.Data))
}

func TestResultLookupErrors(t *testing.T) {
	r := newTestRouter(t, 100)

	rec, env := call(t, r, http.MethodGet, "/api/v1/results/not-a-uuid", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ID", env.Error.Code)

	rec, env = call(t, r, http.MethodGet, "/api/v1/results/6a0d1c6e-3d0f-4f61-9c3b-1d2e3f4a5b6c", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "RESULT_NOT_FOUND", env.Error.Code)
}

func TestSubmitIsRateLimited(t *testing.T) {
	r := newTestRouter(t, 2)
	body := map[string]interface{}{"answers": []map[string]int{{"question_id": 1, "value": 1}}}

	for i := 0; i < 2; i++ {
		rec, _ := call(t, r, http.MethodPost, "/api/v1/quiz/submit", body, "")
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec, env := call(t, r, http.MethodPost, "/api/v1/quiz/submit", body, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", env.Error.Code)
}

func TestAdminLoginAndStats(t *testing.T) {
	r := newTestRouter(t, 100)

	rec, env := call(t, r, http.MethodGet, "/api/v1/admin/stats", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_REQUIRED", env.Error.Code)

	rec, env = call(t, r, http.MethodPost, "/api/v1/auth/admin/login", map[string]string{"password": "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)

	rec, env = call(t, r, http.MethodPost, "/api/v1/auth/admin/login", map[string]string{"password": adminPassword}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	require.NotEmpty(t, login.Token)

	rec, env = call(t, r, http.MethodGet, "/api/v1/admin/stats", nil, login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tests_taken":0,"type_counts":{}}`, string(env.Data))
}
