package api

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"

	"example.com/exercisetracker/internal/auth"
)

func TestPublicRoute(t *testing.T) {
	cases := []struct {
		method string
		target string
		public bool
	}{
		{http.MethodPost, "/api/exercise/new-user", false},
		{http.MethodPost, "/api/exercise/add", false},
		{http.MethodGet, "/api/exercise/log?userId=abcde", false},
		{http.MethodOptions, "/api/exercise/add", true},
		{http.MethodGet, "/", true},
		{http.MethodGet, "/healthz", true},
		{http.MethodGet, "/metrics", true},
		{http.MethodGet, "/favicon.ico", true},
		{http.MethodGet, "/api/exercise/unknown", true},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.target, nil)
		require.Equal(t, tc.public, PublicRoute(req), "%s %s", tc.method, tc.target)
	}
}

func TestGuardedMuxKeepsNotFoundForUnknownPaths(t *testing.T) {
	mux, _ := newTestMux(t)
	guarded := auth.NewMiddleware(auth.Config{Secret: "test-secret", Issuer: "exercise-tracker"}, PublicRoute).Wrap(mux)

	rr := get(t, guarded, "/favicon.ico")
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "Page Not Found", rr.Body.String())

	rr = get(t, guarded, "/")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = get(t, guarded, "/api/exercise/log?userId=abcde")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestInternalErrorLogsSubject(t *testing.T) {
	var buf bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = previous })

	req := httptest.NewRequest(http.MethodPost, "/api/exercise/add", nil)
	req = req.WithContext(auth.WithClaims(req.Context(), &auth.Claims{Subject: "coach-7"}))
	rr := httptest.NewRecorder()
	writeError(rr, req, errors.New("connection refused"))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Contains(t, buf.String(), `"subject":"coach-7"`)
	require.Contains(t, buf.String(), `"path":"/api/exercise/add"`)
}
