// Package api exposes the service layer as a JSON REST API.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mmynk/kharcha/internal/auth"
	"github.com/mmynk/kharcha/internal/middleware"
	"github.com/mmynk/kharcha/internal/service"
	"github.com/mmynk/kharcha/internal/storage"
)

// Handler holds the API route handlers and their dependencies.
type Handler struct {
	store         storage.Store
	authenticator *auth.PasswordAuthenticator
	jwtManager    *auth.JWTManager
	people        *service.PersonService
	expenses      *service.ExpenseService
	incomes       *service.IncomeService
}

// NewHandler creates a Handler over the given store and auth components.
func NewHandler(store storage.Store, authenticator *auth.PasswordAuthenticator, jwtManager *auth.JWTManager) *Handler {
	return &Handler{
		store:         store,
		authenticator: authenticator,
		jwtManager:    jwtManager,
		people:        service.NewPersonService(store),
		expenses:      service.NewExpenseService(store),
		incomes:       service.NewIncomeService(store),
	}
}

// pagination reads limit/offset query params; zero values mean "no limit".
func pagination(r *http.Request) (limit, offset int) {
	q := r.URL.Query()
	limit, _ = strconv.Atoi(q.Get("limit"))
	offset, _ = strconv.Atoi(q.Get("offset"))
	return limit, offset
}

// writeStoreError maps storage errors onto status codes.
func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	slog.Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
}

// Register handles POST /auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	user, err := h.authenticator.Register(r.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			writeJSON(w, http.StatusConflict, errorBody(err.Error()))
		case errors.Is(err, auth.ErrWeakPassword):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		default:
			slog.Error("registration failed", "email", req.Email, "error", err)
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}

	token, err := h.jwtManager.Generate(user)
	if err != nil {
		slog.Error("token generation failed", "user_id", user.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	writeJSON(w, http.StatusCreated, authResponse{User: toUserResponse(user), Token: token})
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	user, err := h.authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		slog.Warn("login failed", "email", req.Email)
		writeJSON(w, http.StatusUnauthorized, errorBody(auth.ErrInvalidCredentials.Error()))
		return
	}

	token, err := h.jwtManager.Generate(user)
	if err != nil {
		slog.Error("token generation failed", "user_id", user.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	writeJSON(w, http.StatusOK, authResponse{User: toUserResponse(user), Token: token})
}

// CurrentUser handles GET /auth/me.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.GetUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}
