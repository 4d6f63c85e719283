package api_test

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vytor/cisspprep/internal/api"
	"github.com/vytor/cisspprep/internal/models"
	"github.com/vytor/cisspprep/internal/progress"
	"github.com/vytor/cisspprep/internal/selector"
	"github.com/vytor/cisspprep/internal/storage"
	"github.com/vytor/cisspprep/internal/testutil"
	"github.com/vytor/cisspprep/internal/tracker"
)

func newTestServer(t *testing.T, corpusSize int) http.Handler {
	t.Helper()
	questions := testutil.NewQuestionStore(t, testutil.Corpus(corpusSize))
	kv := storage.NewMemoryStore()
	seen := tracker.New(kv)
	server := &api.Server{
		Questions: questions,
		Selector:  selector.New(questions, seen, selector.WithRand(rand.New(rand.NewSource(1)))),
		Tracker:   seen,
		Progress:  progress.New(kv),
	}
	return server.Routes()
}

func doRequest(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func TestRandomQuestions(t *testing.T) {
	handler := newTestServer(t, 100)

	rec := doRequest(t, handler, http.MethodGet, "/api/questions/random?count=10", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Questions []models.Question `json:"questions"`
	}
	decodeBody(t, rec, &body)
	assert.Len(t, body.Questions, 10)
}

func TestRandomQuestions_DefaultCount(t *testing.T) {
	handler := newTestServer(t, 100)

	rec := doRequest(t, handler, http.MethodGet, "/api/questions/random", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Questions []models.Question `json:"questions"`
	}
	decodeBody(t, rec, &body)
	assert.Len(t, body.Questions, 30)
}

func TestRandomQuestions_InvalidCount(t *testing.T) {
	handler := newTestServer(t, 100)

	for _, target := range []string{
		"/api/questions/random?count=0",
		"/api/questions/random?count=-5",
		"/api/questions/random?count=abc",
	} {
		rec := doRequest(t, handler, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestFilteredQuestions_ByDomain(t *testing.T) {
	handler := newTestServer(t, 80)

	rec := doRequest(t, handler, http.MethodGet, "/api/questions/filtered?domain=3&count=5&shuffle_answers=false", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Questions []models.Question `json:"questions"`
	}
	decodeBody(t, rec, &body)
	require.Len(t, body.Questions, 5)
	for _, q := range body.Questions {
		assert.Equal(t, 3, q.DomainID)
	}
}

func TestFilteredQuestions_NoMatch(t *testing.T) {
	handler := newTestServer(t, 80)

	rec := doRequest(t, handler, http.MethodGet, "/api/questions/filtered?domain=3&difficulty=9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, "NO_QUESTIONS_FOUND", body.Error.Code)
}

func TestDomains(t *testing.T) {
	handler := newTestServer(t, 8)

	rec := doRequest(t, handler, http.MethodGet, "/api/domains", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Domains []models.Domain `json:"domains"`
	}
	decodeBody(t, rec, &body)
	assert.Len(t, body.Domains, models.NumDomains)
}

func TestSaveAttemptAndProgress(t *testing.T) {
	handler := newTestServer(t, 8)

	rec := doRequest(t, handler, http.MethodPost, "/api/attempts",
		`{"domain_id":2,"questions_attempted":10,"correct_answers":7,"score":70,"time_spent":300}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, handler, http.MethodGet, "/api/progress", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var prog models.StudyProgress
	decodeBody(t, rec, &prog)
	assert.Equal(t, 10, prog.TotalQuestions)
	assert.Equal(t, 7, prog.CorrectAnswers)
	require.Len(t, prog.Attempts, 1)
	assert.Equal(t, 70, prog.Attempts[0].Score)
	assert.Equal(t, 70, prog.DomainStats[2].AverageScore)
}

func TestSaveAttempt_Validation(t *testing.T) {
	handler := newTestServer(t, 8)

	tests := []struct {
		name string
		body string
	}{
		{"correct exceeds attempted", `{"questions_attempted":5,"correct_answers":9}`},
		{"zero attempted", `{"questions_attempted":0,"correct_answers":0}`},
		{"malformed json", `{"questions_attempted":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, handler, http.MethodPost, "/api/attempts", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSaveAttempt_MixedRecords(t *testing.T) {
	handler := newTestServer(t, 8)

	rec := doRequest(t, handler, http.MethodPost, "/api/attempts", `{
		"time_spent": 400,
		"records": [
			{"question": {"id": 1, "domain_id": 1, "correct_answer": "a"}, "user_answer": "a"},
			{"question": {"id": 2, "domain_id": 1, "correct_answer": "b"}, "user_answer": "c"},
			{"question": {"id": 3, "domain_id": 4, "correct_answer": "d"}, "user_answer": "d"}
		]
	}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, handler, http.MethodGet, "/api/progress", "")
	var prog models.StudyProgress
	decodeBody(t, rec, &prog)
	assert.Len(t, prog.Attempts, 2)
	assert.Equal(t, 2, prog.DomainStats[1].QuestionsAttempted)
	assert.Equal(t, 1, prog.DomainStats[1].CorrectAnswers)
	assert.Equal(t, 1, prog.DomainStats[4].QuestionsAttempted)
	assert.Equal(t, 1, prog.DomainStats[4].CorrectAnswers)
}

func TestClearProgress_RequiresConfirmation(t *testing.T) {
	handler := newTestServer(t, 8)

	doRequest(t, handler, http.MethodPost, "/api/attempts",
		`{"domain_id":1,"questions_attempted":4,"correct_answers":4,"score":100}`)

	rec := doRequest(t, handler, http.MethodDelete, "/api/progress", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, handler, http.MethodGet, "/api/progress", "")
	var prog models.StudyProgress
	decodeBody(t, rec, &prog)
	assert.Len(t, prog.Attempts, 1, "unconfirmed delete must not clear anything")

	rec = doRequest(t, handler, http.MethodDelete, "/api/progress?confirm=true", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, handler, http.MethodGet, "/api/progress", "")
	decodeBody(t, rec, &prog)
	assert.Empty(t, prog.Attempts)
	assert.Zero(t, prog.TotalQuestions)
}

func TestExportImportRoundTrip(t *testing.T) {
	handler := newTestServer(t, 8)

	doRequest(t, handler, http.MethodPost, "/api/attempts",
		`{"domain_id":5,"questions_attempted":8,"correct_answers":6,"score":75,"time_spent":200}`)
	doRequest(t, handler, http.MethodPost, "/api/bookmarks", `{"question_id":17}`)

	rec := doRequest(t, handler, http.MethodGet, "/api/progress/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	exported := rec.Body.String()

	rec = doRequest(t, handler, http.MethodDelete, "/api/progress?confirm=true", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, handler, http.MethodPost, "/api/progress/import", exported)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, handler, http.MethodGet, "/api/progress", "")
	var prog models.StudyProgress
	decodeBody(t, rec, &prog)
	assert.Equal(t, 8, prog.TotalQuestions)

	rec = doRequest(t, handler, http.MethodGet, "/api/bookmarks", "")
	var body struct {
		Bookmarks []int `json:"bookmarks"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, []int{17}, body.Bookmarks)
}

func TestImport_Malformed(t *testing.T) {
	handler := newTestServer(t, 8)

	rec := doRequest(t, handler, http.MethodPost, "/api/progress/import", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSettings(t *testing.T) {
	handler := newTestServer(t, 8)

	rec := doRequest(t, handler, http.MethodPut, "/api/settings", `{"theme":"dark"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, handler, http.MethodPut, "/api/settings", `{"shuffle":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, handler, http.MethodGet, "/api/settings", "")
	var settings map[string]any
	decodeBody(t, rec, &settings)
	assert.Equal(t, "dark", settings["theme"])
	assert.Equal(t, true, settings["shuffle"])
}

func TestBookmarks(t *testing.T) {
	handler := newTestServer(t, 8)

	rec := doRequest(t, handler, http.MethodPost, "/api/bookmarks", `{"question_id":3}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doRequest(t, handler, http.MethodPost, "/api/bookmarks", `{"question_id":7}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, handler, http.MethodPost, "/api/bookmarks", `{"question_id":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, handler, http.MethodDelete, "/api/bookmarks/3", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Bookmarks []int `json:"bookmarks"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, []int{7}, body.Bookmarks)
}

func TestSeenStatsAndClear(t *testing.T) {
	handler := newTestServer(t, 40)

	rec := doRequest(t, handler, http.MethodGet, "/api/questions/random?count=10", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, handler, http.MethodGet, "/api/seen/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats models.SeenStats
	decodeBody(t, rec, &stats)
	assert.Equal(t, 10, stats.SeenCount)
	assert.Equal(t, 25, stats.PercentageSeen)

	rec = doRequest(t, handler, http.MethodDelete, "/api/seen", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, handler, http.MethodGet, "/api/seen/stats", "")
	decodeBody(t, rec, &stats)
	assert.Zero(t, stats.SeenCount)
}
