package trip

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/redmonkez12/trip-expense-api/internal/auth"
	"github.com/redmonkez12/trip-expense-api/internal/httputil"
	"github.com/redmonkez12/trip-expense-api/internal/logging"
)

// Handler contains the HTTP handlers for the protected trip and expense
// endpoints. Every handler takes its caller identity from the auth gate.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// CreateTripRequest is the /add-trip/ body.
type CreateTripRequest struct {
	Destination string   `json:"destination"`
	StartDate   Date     `json:"startDate"`
	EndDate     *Date    `json:"endDate"`
	Budget      *float64 `json:"budget"`
}

// UpdateTripRequest is the /update-trip/ body. Absent or null fields
// leave the stored values unchanged.
type UpdateTripRequest struct {
	Destination *string  `json:"destination"`
	StartDate   *Date    `json:"startDate"`
	EndDate     *Date    `json:"endDate"`
	Budget      *float64 `json:"budget"`
}

// CreateExpenseRequest is the /add-expense/ body.
type CreateExpenseRequest struct {
	Item     string    `json:"item"`
	Cost     float64   `json:"cost"`
	TripID   uuid.UUID `json:"trip_id"`
	Day      int       `json:"day"`
	Category string    `json:"category"`
}

// TripSummaryResponse is one entry of the /my-trips/ listing.
type TripSummaryResponse struct {
	ID           uuid.UUID `json:"id"`
	Destination  string    `json:"destination"`
	StartDate    Date      `json:"startDate"`
	EndDate      *Date     `json:"endDate"`
	Budget       *float64  `json:"budget"`
	TotalExpense float64   `json:"total_expense"`
}

// TripsResponse wraps the /my-trips/ listing.
type TripsResponse struct {
	Trips []TripSummaryResponse `json:"trips"`
}

// ExpenseResponse is one expense with full detail.
type ExpenseResponse struct {
	ExpenseID   uuid.UUID `json:"expense_id"`
	Item        string    `json:"item"`
	Cost        float64   `json:"cost"`
	Day         int       `json:"day"`
	Category    string    `json:"category"`
	DateCreated time.Time `json:"date_created"`
}

// TripDetailsResponse wraps the /my-trips/{trip_id}/details/ listing.
type TripDetailsResponse struct {
	TripID   uuid.UUID         `json:"trip_id"`
	Expenses []ExpenseResponse `json:"expenses"`
}

// StatusResponse is the success envelope for mutations.
type StatusResponse struct {
	Status    string     `json:"status"`
	Message   string     `json:"message"`
	TripID    *uuid.UUID `json:"id_trip,omitempty"`
	ExpenseID *uuid.UUID `json:"expense_id,omitempty"`
}

// MyTrips lists the caller's trips with totals
// @Summary      List owned trips
// @Description  All trips of the authenticated user with per-trip expense totals
// @Tags         trips
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} TripsResponse
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      502 {object} httputil.ErrorResponse "Store unavailable"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /my-trips/ [get]
func (h *Handler) MyTrips(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	owner, ok := auth.GetUsermailFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "could not validate credentials", httputil.CodeInvalidToken, http.StatusUnauthorized)
		return
	}

	summaries, err := h.service.Summaries(r.Context(), owner)
	if err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			logger.Error("trip summary failed: store unavailable", "user", owner, "error", err.Error())
			httputil.RespondErrorWithCode(w, "Database operational error. Please try again later.", httputil.CodeStoreUnavailable, http.StatusBadGateway)
			return
		}
		logger.Error("trip summary failed", "user", owner, "error", err.Error())
		httputil.RespondErrorWithCode(w, "Unexpected error. Please contact support or try again later.", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	resp := TripsResponse{Trips: make([]TripSummaryResponse, 0, len(summaries))}
	for _, s := range summaries {
		resp.Trips = append(resp.Trips, mapSummary(s))
	}

	httputil.RespondJSON(w, resp, http.StatusOK)
}

// TripDetails lists a trip's expenses
// @Summary      Trip expense details
// @Description  All expenses of one owned trip, including creation timestamps
// @Tags         trips
// @Produce      json
// @Security     BearerAuth
// @Param        trip_id path string true "Trip id"
// @Success      200 {object} TripDetailsResponse
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      404 {object} httputil.ErrorResponse "Trip not found or not owned"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /my-trips/{trip_id}/details/ [get]
func (h *Handler) TripDetails(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	owner, ok := auth.GetUsermailFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "could not validate credentials", httputil.CodeInvalidToken, http.StatusUnauthorized)
		return
	}

	tripID, err := uuid.Parse(chi.URLParam(r, "trip_id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid trip id", httputil.CodeValidation, http.StatusBadRequest)
		return
	}

	expenses, err := h.service.Details(r.Context(), owner, tripID)
	if err != nil {
		if errors.Is(err, ErrTripNotFound) {
			logger.Warn("trip details: not found", "trip_id", tripID, "user", owner)
			httputil.RespondErrorWithCode(w, "Trip not found or not owned by the current user", httputil.CodeTripNotFound, http.StatusNotFound)
			return
		}
		logger.Error("trip details failed", "trip_id", tripID, "user", owner, "error", err.Error())
		httputil.RespondErrorWithCode(w, "Database connection issue", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	resp := TripDetailsResponse{
		TripID:   tripID,
		Expenses: make([]ExpenseResponse, 0, len(expenses)),
	}
	for _, e := range expenses {
		resp.Expenses = append(resp.Expenses, ExpenseResponse{
			ExpenseID:   e.ID,
			Item:        e.Item,
			Cost:        e.Cost,
			Day:         e.Day,
			Category:    e.Category,
			DateCreated: e.DateCreated,
		})
	}

	httputil.RespondJSON(w, resp, http.StatusOK)
}

// AddTrip creates a trip
// @Summary      Create trip
// @Tags         trips
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateTripRequest true "Trip payload"
// @Success      200 {object} StatusResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /add-trip/ [post]
func (h *Handler) AddTrip(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	owner, ok := auth.GetUsermailFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "could not validate credentials", httputil.CodeInvalidToken, http.StatusUnauthorized)
		return
	}

	var req CreateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid add-trip request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if req.Destination == "" || req.StartDate.IsZero() {
		httputil.RespondErrorWithCode(w, "destination and startDate are required", httputil.CodeValidation, http.StatusBadRequest)
		return
	}

	in := NewTrip{
		Destination: req.Destination,
		StartDate:   req.StartDate.Time,
	}
	if req.EndDate != nil {
		in.EndDate = &req.EndDate.Time
	}
	in.Budget = req.Budget

	id, err := h.service.Create(r.Context(), owner, in)
	if err != nil {
		if errors.Is(err, ErrOwnerMissing) {
			logger.Warn("add trip failed: user not found", "user", owner)
			httputil.RespondErrorWithCode(w, "User not found", httputil.CodeUserNotFound, http.StatusBadRequest)
			return
		}
		logger.Error("add trip failed", "user", owner, "error", err.Error())
		httputil.RespondErrorWithCode(w, "Database connection issue", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("trip added", "trip_id", id, "user", owner)

	httputil.RespondJSON(w, StatusResponse{
		Status:  "success",
		Message: "Trip added successfully",
		TripID:  &id,
	}, http.StatusOK)
}

// UpdateTrip partially updates a trip
// @Summary      Update trip
// @Description  Applies only the fields present in the payload; absent fields keep their stored values
// @Tags         trips
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        trip_id path string true "Trip id"
// @Param        request body UpdateTripRequest true "Fields to change"
// @Success      200 {object} StatusResponse
// @Failure      400 {object} httputil.ErrorResponse "Trip not found or validation error"
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /update-trip/{trip_id} [put]
func (h *Handler) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	owner, ok := auth.GetUsermailFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "could not validate credentials", httputil.CodeInvalidToken, http.StatusUnauthorized)
		return
	}

	tripID, err := uuid.Parse(chi.URLParam(r, "trip_id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid trip id", httputil.CodeValidation, http.StatusBadRequest)
		return
	}

	var req UpdateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid update-trip request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	patch := Patch{
		Destination: req.Destination,
		Budget:      req.Budget,
	}
	if req.StartDate != nil {
		patch.StartDate = &req.StartDate.Time
	}
	if req.EndDate != nil {
		patch.EndDate = &req.EndDate.Time
	}

	if err := h.service.Update(r.Context(), owner, tripID, patch); err != nil {
		if errors.Is(err, ErrTripNotFound) {
			logger.Warn("update trip: not found", "trip_id", tripID, "user", owner)
			httputil.RespondErrorWithCode(w, "Trip not found or not owned by the current user", httputil.CodeTripNotFound, http.StatusBadRequest)
			return
		}
		logger.Error("update trip failed", "trip_id", tripID, "user", owner, "error", err.Error())
		httputil.RespondErrorWithCode(w, "Database connection issue", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("trip updated", "trip_id", tripID, "user", owner)

	httputil.RespondJSON(w, StatusResponse{
		Status:  "success",
		Message: "Trip updated successfully",
	}, http.StatusOK)
}

// DeleteTrip deletes a trip and its expenses
// @Summary      Delete trip
// @Description  Removes the trip and, in the same transaction, all of its expenses
// @Tags         trips
// @Produce      json
// @Security     BearerAuth
// @Param        trip_id path string true "Trip id"
// @Success      200 {object} StatusResponse
// @Failure      400 {object} httputil.ErrorResponse "Trip not found"
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /delete-trip/{trip_id} [delete]
func (h *Handler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	owner, ok := auth.GetUsermailFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "could not validate credentials", httputil.CodeInvalidToken, http.StatusUnauthorized)
		return
	}

	tripID, err := uuid.Parse(chi.URLParam(r, "trip_id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid trip id", httputil.CodeValidation, http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), owner, tripID); err != nil {
		if errors.Is(err, ErrTripNotFound) {
			logger.Warn("delete trip: not found", "trip_id", tripID, "user", owner)
			httputil.RespondErrorWithCode(w, "Trip not found or not owned by the current user", httputil.CodeTripNotFound, http.StatusBadRequest)
			return
		}
		logger.Error("delete trip failed", "trip_id", tripID, "user", owner, "error", err.Error())
		httputil.RespondErrorWithCode(w, "Internal Server Error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("trip deleted", "trip_id", tripID, "user", owner)

	httputil.RespondJSON(w, StatusResponse{
		Status:  "success",
		Message: "Trip and its related expenses deleted successfully",
	}, http.StatusOK)
}

// AddExpense creates an expense on an owned trip
// @Summary      Create expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateExpenseRequest true "Expense payload"
// @Success      200 {object} StatusResponse
// @Failure      400 {object} httputil.ErrorResponse "Trip not found or validation error"
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /add-expense/ [post]
func (h *Handler) AddExpense(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	owner, ok := auth.GetUsermailFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "could not validate credentials", httputil.CodeInvalidToken, http.StatusUnauthorized)
		return
	}

	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid add-expense request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if req.Item == "" || req.TripID == uuid.Nil {
		httputil.RespondErrorWithCode(w, "item and trip_id are required", httputil.CodeValidation, http.StatusBadRequest)
		return
	}
	if req.Day < 1 {
		httputil.RespondErrorWithCode(w, "day must be a positive day-of-trip number", httputil.CodeValidation, http.StatusBadRequest)
		return
	}

	id, err := h.service.AddExpense(r.Context(), owner, NewExpense{
		TripID:   req.TripID,
		Item:     req.Item,
		Cost:     req.Cost,
		Day:      req.Day,
		Category: req.Category,
	})
	if err != nil {
		if errors.Is(err, ErrTripNotFound) {
			logger.Warn("add expense: trip not found", "trip_id", req.TripID, "user", owner)
			httputil.RespondErrorWithCode(w, "Trip not found or not owned by the current user", httputil.CodeTripNotFound, http.StatusBadRequest)
			return
		}
		logger.Error("add expense failed", "trip_id", req.TripID, "user", owner, "error", err.Error())
		httputil.RespondErrorWithCode(w, "Database connection issue", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("expense added", "expense_id", id, "trip_id", req.TripID, "user", owner)

	httputil.RespondJSON(w, StatusResponse{
		Status:    "success",
		Message:   "Expense added successfully",
		ExpenseID: &id,
	}, http.StatusOK)
}

// DeleteExpense deletes a single expense
// @Summary      Delete expense
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Param        expense_id path string true "Expense id"
// @Success      200 {object} StatusResponse
// @Failure      400 {object} httputil.ErrorResponse "Expense not found or unauthorized"
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /delete-expense/{expense_id} [delete]
func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	owner, ok := auth.GetUsermailFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "could not validate credentials", httputil.CodeInvalidToken, http.StatusUnauthorized)
		return
	}

	expenseID, err := uuid.Parse(chi.URLParam(r, "expense_id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid expense id", httputil.CodeValidation, http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteExpense(r.Context(), owner, expenseID); err != nil {
		switch {
		case errors.Is(err, ErrExpenseNotFound):
			logger.Warn("delete expense: not found", "expense_id", expenseID, "user", owner)
			httputil.RespondErrorWithCode(w, "Expense not found", httputil.CodeExpenseNotFound, http.StatusBadRequest)
		case errors.Is(err, ErrNotOwner):
			logger.Warn("delete expense: unauthorized", "expense_id", expenseID, "user", owner)
			httputil.RespondErrorWithCode(w, "Unauthorized action", httputil.CodeUnauthorizedAction, http.StatusBadRequest)
		default:
			logger.Error("delete expense failed", "expense_id", expenseID, "user", owner, "error", err.Error())
			httputil.RespondErrorWithCode(w, "Internal Server Error", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("expense deleted", "expense_id", expenseID, "user", owner)

	httputil.RespondJSON(w, StatusResponse{
		Status:  "success",
		Message: "Expense deleted successfully",
	}, http.StatusOK)
}

func mapSummary(s Summary) TripSummaryResponse {
	resp := TripSummaryResponse{
		ID:           s.ID,
		Destination:  s.Destination,
		StartDate:    NewDate(s.StartDate),
		Budget:       s.Budget,
		TotalExpense: s.TotalExpense,
	}
	if s.EndDate != nil {
		end := NewDate(*s.EndDate)
		resp.EndDate = &end
	}
	return resp
}
