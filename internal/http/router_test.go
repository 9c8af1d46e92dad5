package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/trip-expense-api/internal/auth"
	"github.com/redmonkez12/trip-expense-api/internal/config"
	"github.com/redmonkez12/trip-expense-api/internal/database"
	"github.com/redmonkez12/trip-expense-api/internal/logging"
	"github.com/redmonkez12/trip-expense-api/internal/trip"
)

type allUsersExist struct{}

func (allUsersExist) Exists(ctx context.Context, usermail string) (bool, error) { return true, nil }

func newTestRouter(t *testing.T) (http.Handler, auth.TokenService, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db := database.NewBunDB(sqlDB)
	logger := logging.NewLogger(true)

	tokenService, err := auth.NewJWTService([]byte("router-test-secret"), "HS256")
	require.NoError(t, err)

	tripHandler := trip.NewHandler(trip.NewService(trip.NewRepository(db), allUsersExist{}), logger)
	authMiddleware := auth.NewMiddleware(tokenService)

	cfg := &config.Config{
		Server: config.ServerConfig{Env: "prod"},
	}

	router := NewRouter(cfg, auth.NewHandler(nil, nil, logger), tripHandler, authMiddleware, logger)
	return router, tokenService, mock
}

func TestRouter_TestEndpoint(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/test/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "A request was successfully sent", body["message"])
}

func TestRouter_SecurityHeaders(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/test/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "default-src 'none'", rec.Header().Get("Content-Security-Policy"))
}

func TestRouter_ProtectedWithoutToken(t *testing.T) {
	router, _, _ := newTestRouter(t)

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/my-trips/"},
		{http.MethodPost, "/add-trip/"},
		{http.MethodPost, "/add-expense/"},
	} {
		req := httptest.NewRequest(route.method, route.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
		assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	}
}

func TestRouter_ProtectedWithToken(t *testing.T) {
	router, tokenService, mock := newTestRouter(t)

	token, err := tokenService.Issue("user@example.com", time.Hour)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT (.+) FROM "trips"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "destination", "start_date", "end_date", "budget", "user_id"}))

	req := httptest.NewRequest(http.MethodGet, "/my-trips/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp trip.TripsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Empty(t, resp.Trips)
}

func TestRouter_SwaggerDisabledOutsideDev(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
