package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/exercisetracker/internal/domain"
	"example.com/exercisetracker/internal/persistence/memory"
)

func newTestMux(t *testing.T) (*http.ServeMux, *memory.Repository) {
	t.Helper()
	repo := memory.NewRepository()
	service := domain.NewService(repo, repo, nil)
	landing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("landing"))
	})

	mux := http.NewServeMux()
	NewHandler(service, landing).RegisterRoutes(mux)
	return mux, repo
}

func postForm(t *testing.T, mux http.Handler, path string, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func get(t *testing.T, mux http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestNewUserFormSuccess(t *testing.T) {
	mux, _ := newTestMux(t)

	rr := postForm(t, mux, "/api/exercise/new-user", url.Values{"username": {"alice"}})
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "Added alice to collection.", rr.Body.String())
	require.Contains(t, rr.Header().Get("Content-Type"), "text/plain")
}

func TestNewUserJSONSuccess(t *testing.T) {
	mux, _ := newTestMux(t)

	req := httptest.NewRequest(http.MethodPost, "/api/exercise/new-user", strings.NewReader(`{"username":"bob_2"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "Added bob_2 to collection.", rr.Body.String())
}

func TestNewUserRejectsInvalidUsername(t *testing.T) {
	mux, _ := newTestMux(t)

	for _, values := range []url.Values{{"username": {"!!!"}}, {}} {
		rr := postForm(t, mux, "/api/exercise/new-user", values)
		require.Equal(t, http.StatusBadRequest, rr.Code)
		require.Equal(t, "Please enter a valid username.", rr.Body.String())
	}
}

func TestNewUserMalformedJSON(t *testing.T) {
	mux, _ := newTestMux(t)

	req := httptest.NewRequest(http.MethodPost, "/api/exercise/new-user", strings.NewReader(`{"username":`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "unable to parse body", rr.Body.String())
}

func TestAddActivityFlow(t *testing.T) {
	mux, repo := newTestMux(t)
	require.NoError(t, repo.SaveUser(context.Background(), domain.User{ID: "abcde", Username: "runner"}))

	values := url.Values{
		"userid":      {"abcde"},
		"description": {"run"},
		"duration":    {"30"},
		"date":        {"2020-01-15"},
	}

	rr := postForm(t, mux, "/api/exercise/add", values)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "Created new activity for abcde", rr.Body.String())

	rr = postForm(t, mux, "/api/exercise/add", values)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "Updated abcde", rr.Body.String())

	record, err := repo.FindLog(context.Background(), "abcde")
	require.NoError(t, err)
	require.Len(t, record.Activities, 1)
}

func TestAddActivityJSONKeepsNumericDuration(t *testing.T) {
	mux, repo := newTestMux(t)
	require.NoError(t, repo.SaveUser(context.Background(), domain.User{ID: "abcde", Username: "runner"}))

	body, err := json.Marshal(map[string]any{
		"userid":      "abcde",
		"description": "swim",
		"duration":    45.5,
		"date":        "2020-02-01",
	})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/exercise/add", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	record, err := repo.FindLog(context.Background(), "abcde")
	require.NoError(t, err)
	require.Equal(t, "45.5", record.Activities[0].Duration)
}

func TestAddActivityUnknownUser(t *testing.T) {
	mux, repo := newTestMux(t)

	rr := postForm(t, mux, "/api/exercise/add", url.Values{"userid": {"ghost"}, "description": {"run"}, "duration": {"5"}, "date": {"2020-01-01"}})
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "User does not Exist...", rr.Body.String())

	record, err := repo.FindLog(context.Background(), "ghost")
	require.NoError(t, err)
	require.Nil(t, record)
}

func TestActivityLogModes(t *testing.T) {
	mux, repo := newTestMux(t)
	seedLog(t, repo, "abcde", []string{"2019-04-05", "2019-05-01", "2019-06-15", "2019-07-20", "2019-12-30"})

	t.Run("range and limit", func(t *testing.T) {
		rr := get(t, mux, "/api/exercise/log?userId=abcde&from=2019-04-01&to=2019-09-01&limit=2")
		require.Equal(t, http.StatusOK, rr.Code)

		var body []ActivityLogView
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		require.Len(t, body, 1)
		require.Equal(t, "abcde", body[0].ID)
		require.Equal(t, []string{"a0", "a1"}, descriptions(body[0].Activities))
	})

	t.Run("range", func(t *testing.T) {
		rr := get(t, mux, "/api/exercise/log?userId=abcde&from=2019-04-01&to=2019-09-01")
		require.Equal(t, http.StatusOK, rr.Code)

		var body []ActivityLogView
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		require.Equal(t, []string{"a0", "a1", "a2", "a3"}, descriptions(body[0].Activities))
	})

	t.Run("limit", func(t *testing.T) {
		rr := get(t, mux, "/api/exercise/log?userId=abcde&limit=3")
		require.Equal(t, http.StatusOK, rr.Code)

		var body ActivityLogView
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		require.Equal(t, "abcde", body.UserID)
		require.Equal(t, []string{"a0", "a1", "a2"}, descriptions(body.Activities))
	})

	t.Run("full log", func(t *testing.T) {
		rr := get(t, mux, "/api/exercise/log?userId=abcde")
		require.Equal(t, http.StatusOK, rr.Code)

		var body ActivityLogView
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		require.Len(t, body.Activities, 5)
	})

	t.Run("date normalized", func(t *testing.T) {
		rr := get(t, mux, "/api/exercise/log?userId=abcde&limit=1")
		require.Contains(t, rr.Body.String(), `"date":"2019-04-05T00:00:00.000Z"`)
	})
}

func TestActivityLogUnknownUserShapes(t *testing.T) {
	mux, _ := newTestMux(t)

	rr := get(t, mux, "/api/exercise/log?userId=ghost&from=2019-01-01&to=2019-12-31")
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `[]`, rr.Body.String())

	rr = get(t, mux, "/api/exercise/log?userId=ghost&limit=2")
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `null`, rr.Body.String())
}

func TestActivityLogValidation(t *testing.T) {
	mux, _ := newTestMux(t)

	cases := map[string]string{
		"/api/exercise/log": "userId is required",
		"/api/exercise/log?userId=abcde&from=2019-01-01":   "to is required when from is given",
		"/api/exercise/log?userId=abcde&to=2019-01-01":     "from is required when to is given",
		"/api/exercise/log?userId=abcde&limit=lots":        "limit must be a positive integer",
		"/api/exercise/log?userId=abcde&limit=0&to=2019-1": "limit must be a positive integer",
	}
	for target, message := range cases {
		rr := get(t, mux, target)
		require.Equal(t, http.StatusBadRequest, rr.Code, target)
		require.Equal(t, message, rr.Body.String(), target)
	}
}

func TestUnmatchedRoutes(t *testing.T) {
	mux, _ := newTestMux(t)

	for _, target := range []string{"/api/exercise/unknown", "/favicon.ico"} {
		rr := get(t, mux, target)
		require.Equal(t, http.StatusNotFound, rr.Code)
		require.Equal(t, "Page Not Found", rr.Body.String())
	}

	rr := get(t, mux, "/api/exercise/add")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestLandingAndHealth(t *testing.T) {
	mux, _ := newTestMux(t)

	rr := get(t, mux, "/")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "landing", rr.Body.String())

	rr = get(t, mux, "/healthz")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "ok", rr.Body.String())
}

func TestStoreFailureIsInternalError(t *testing.T) {
	repo := memory.NewRepository()
	service := domain.NewService(failingUsers{}, repo, nil)
	mux := http.NewServeMux()
	NewHandler(service, nil).RegisterRoutes(mux)

	rr := postForm(t, mux, "/api/exercise/new-user", url.Values{"username": {"alice"}})
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Equal(t, "connection refused", rr.Body.String())
}

func TestWriteErrorFallsBackToStatusText(t *testing.T) {
	rr := httptest.NewRecorder()
	writeError(rr, httptest.NewRequest(http.MethodGet, "/", nil), &HTTPError{Status: http.StatusConflict})
	require.Equal(t, http.StatusConflict, rr.Code)
	require.Equal(t, "Conflict", rr.Body.String())

	rr = httptest.NewRecorder()
	writeError(rr, httptest.NewRequest(http.MethodGet, "/", nil), &HTTPError{Message: "odd"})
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Equal(t, "odd", rr.Body.String())
}

func seedLog(t *testing.T, repo *memory.Repository, userID string, dates []string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repo.SaveUser(ctx, domain.User{ID: userID, Username: "seeded"}))
	for i, date := range dates {
		activity := domain.Activity{Description: "a" + string(rune('0'+i)), Duration: "10", Date: domain.NormalizeDate(date)}
		require.NoError(t, repo.CreateLog(ctx, userID, activity))
	}
}

func descriptions(views []ActivityView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.Description)
	}
	return out
}

type failingUsers struct{}

func (failingUsers) SaveUser(context.Context, domain.User) error {
	return errors.New("connection refused")
}

func (failingUsers) FindUser(context.Context, string) (*domain.User, error) {
	return nil, errors.New("connection refused")
}
