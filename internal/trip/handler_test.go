package trip

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/trip-expense-api/internal/auth"
	"github.com/redmonkez12/trip-expense-api/internal/httputil"
	"github.com/redmonkez12/trip-expense-api/internal/logging"
)

const testOwner = "user@example.com"

// newTestServer mounts the trip handlers behind a middleware that injects
// the caller identity, standing in for the auth gate.
func newTestServer(t *testing.T) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()

	repo, mock := newMockRepo(t)
	svc := NewService(repo, stubUsers{exists: true})
	h := NewHandler(svc, logging.NewLogger(true))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), auth.UsermailContextKey, testOwner)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Get("/my-trips/", h.MyTrips)
	r.Get("/my-trips/{trip_id}/details/", h.TripDetails)
	r.Post("/add-trip/", h.AddTrip)
	r.Put("/update-trip/{trip_id}", h.UpdateTrip)
	r.Delete("/delete-trip/{trip_id}", h.DeleteTrip)
	r.Post("/add-expense/", h.AddExpense)
	r.Delete("/delete-expense/{expense_id}", h.DeleteExpense)

	return r, mock
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorResponse {
	t.Helper()
	var resp httputil.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHandler_MyTrips(t *testing.T) {
	srv, mock := newTestServer(t)

	tripID := uuid.New()
	start := time.Date(2024, time.July, 14, 0, 0, 0, 0, time.UTC)
	budget := 1500.0

	mock.ExpectQuery(`SELECT (.+) FROM "trips"`).
		WillReturnRows(sqlmock.NewRows(tripColumns).
			AddRow(tripID.String(), "Lisbon", start, nil, budget, testOwner))
	mock.ExpectQuery(`FROM "expenses"`).
		WillReturnRows(sqlmock.NewRows([]string{"trip_id", "total"}).
			AddRow(tripID.String(), 250.5))

	req := httptest.NewRequest(http.MethodGet, "/my-trips/", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp TripsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Trips, 1)
	assert.Equal(t, tripID, resp.Trips[0].ID)
	assert.Equal(t, "Lisbon", resp.Trips[0].Destination)
	assert.Equal(t, 250.5, resp.Trips[0].TotalExpense)
	require.NotNil(t, resp.Trips[0].Budget)
	assert.Equal(t, 1500.0, *resp.Trips[0].Budget)
}

func TestHandler_MyTrips_StoreUnavailable(t *testing.T) {
	srv, mock := newTestServer(t)

	mock.ExpectQuery(`SELECT (.+) FROM "trips"`).
		WillReturnError(errNetUnreachable())

	req := httptest.NewRequest(http.MethodGet, "/my-trips/", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "Database operational error. Please try again later.", resp.Error)
	assert.Equal(t, httputil.CodeStoreUnavailable, resp.Code)
}

func TestHandler_MyTrips_NoIdentity(t *testing.T) {
	repo, _ := newMockRepo(t)
	h := NewHandler(NewService(repo, stubUsers{exists: true}), logging.NewLogger(true))

	req := httptest.NewRequest(http.MethodGet, "/my-trips/", nil)
	rec := httptest.NewRecorder()
	h.MyTrips(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_TripDetails_NotFound(t *testing.T) {
	srv, mock := newTestServer(t)

	mock.ExpectQuery(`SELECT (.+) FROM "trips"`).
		WillReturnRows(sqlmock.NewRows(tripColumns))

	req := httptest.NewRequest(http.MethodGet, "/my-trips/"+uuid.NewString()+"/details/", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "Trip not found or not owned by the current user", resp.Error)
}

func TestHandler_TripDetails(t *testing.T) {
	srv, mock := newTestServer(t)

	tripID, expenseID := uuid.New(), uuid.New()
	start := time.Date(2024, time.July, 14, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, time.July, 15, 10, 30, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM "trips"`).
		WillReturnRows(sqlmock.NewRows(tripColumns).
			AddRow(tripID.String(), "Lisbon", start, nil, nil, testOwner))
	mock.ExpectQuery(`SELECT (.+) FROM "expenses"`).
		WillReturnRows(sqlmock.NewRows(expenseColumns).
			AddRow(expenseID.String(), "Museum ticket", 15.0, 2, "culture", created, tripID.String()))

	req := httptest.NewRequest(http.MethodGet, "/my-trips/"+tripID.String()+"/details/", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp TripDetailsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, tripID, resp.TripID)
	require.Len(t, resp.Expenses, 1)
	assert.Equal(t, expenseID, resp.Expenses[0].ExpenseID)
	assert.Equal(t, "Museum ticket", resp.Expenses[0].Item)
	assert.Equal(t, 2, resp.Expenses[0].Day)
}

func TestHandler_AddTrip(t *testing.T) {
	srv, mock := newTestServer(t)

	mock.ExpectExec(`INSERT INTO "trips"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	body := `{"destination":"Lisbon","startDate":"2024-07-14","endDate":"2024-07-20","budget":1500}`
	req := httptest.NewRequest(http.MethodPost, "/add-trip/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "success", resp.Status)
	require.NotNil(t, resp.TripID)
	assert.NotEqual(t, uuid.Nil, *resp.TripID)
	assert.Nil(t, resp.ExpenseID)
}

func TestHandler_AddTrip_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, body := range []string{
		`{"startDate":"2024-07-14"}`,
		`{"destination":"Lisbon"}`,
		`{not json`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/add-trip/", strings.NewReader(body))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "body=%s", body)
	}
}

func TestHandler_UpdateTrip_NotFound(t *testing.T) {
	srv, mock := newTestServer(t)

	mock.ExpectExec(`UPDATE "trips"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	body := `{"destination":"Porto"}`
	req := httptest.NewRequest(http.MethodPut, "/update-trip/"+uuid.NewString(), strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	// Mutations report a missing trip as a bad request, unlike the
	// details endpoint.
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "Trip not found or not owned by the current user", resp.Error)
}

func TestHandler_UpdateTrip_InvalidID(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPut, "/update-trip/not-a-uuid", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_DeleteTrip(t *testing.T) {
	srv, mock := newTestServer(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec(`DELETE FROM "expenses"`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "trips"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	req := httptest.NewRequest(http.MethodDelete, "/delete-trip/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Trip and its related expenses deleted successfully", resp.Message)
}

func TestHandler_AddExpense_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, body := range []string{
		`{"cost":10,"trip_id":"` + uuid.NewString() + `","day":1}`,
		`{"item":"ticket","cost":10,"day":1}`,
		`{"item":"ticket","cost":10,"trip_id":"` + uuid.NewString() + `","day":0}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/add-expense/", strings.NewReader(body))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "body=%s", body)
	}
}

func TestHandler_AddExpense(t *testing.T) {
	srv, mock := newTestServer(t)

	tripID := uuid.New()
	start := time.Date(2024, time.July, 14, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM "trips"`).
		WillReturnRows(sqlmock.NewRows(tripColumns).
			AddRow(tripID.String(), "Lisbon", start, nil, nil, testOwner))
	mock.ExpectExec(`INSERT INTO "expenses"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	body := `{"item":"Museum ticket","cost":15,"trip_id":"` + tripID.String() + `","day":2,"category":"culture"}`
	req := httptest.NewRequest(http.MethodPost, "/add-expense/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Expense added successfully", resp.Message)
	require.NotNil(t, resp.ExpenseID)
	assert.Nil(t, resp.TripID)
}

// Deleting a missing expense and deleting another user's expense answer
// with the same status but different messages.
func TestHandler_DeleteExpense_NotFoundVsForeign(t *testing.T) {
	t.Run("missing expense", func(t *testing.T) {
		srv, mock := newTestServer(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM "expenses"`).
			WillReturnRows(sqlmock.NewRows(expenseColumns))
		mock.ExpectRollback()

		req := httptest.NewRequest(http.MethodDelete, "/delete-expense/"+uuid.NewString(), nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, "Expense not found", resp.Error)
	})

	t.Run("foreign expense", func(t *testing.T) {
		srv, mock := newTestServer(t)

		expenseID, tripID := uuid.New(), uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM "expenses"`).
			WillReturnRows(sqlmock.NewRows(expenseColumns).
				AddRow(expenseID.String(), "Museum ticket", 15.0, 2, "culture", time.Now(), tripID.String()))
		mock.ExpectQuery(`SELECT EXISTS`).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectRollback()

		req := httptest.NewRequest(http.MethodDelete, "/delete-expense/"+expenseID.String(), nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, "Unauthorized action", resp.Error)
	})
}

func TestHandler_DeleteExpense(t *testing.T) {
	srv, mock := newTestServer(t)

	expenseID, tripID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "expenses"`).
		WillReturnRows(sqlmock.NewRows(expenseColumns).
			AddRow(expenseID.String(), "Museum ticket", 15.0, 2, "culture", time.Now(), tripID.String()))
	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec(`DELETE FROM "expenses"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	req := httptest.NewRequest(http.MethodDelete, "/delete-expense/"+expenseID.String(), nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Expense deleted successfully", resp.Message)
}

func errNetUnreachable() error {
	return &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
}
