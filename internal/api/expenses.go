package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/kharcha/internal/middleware"
)

// ListExpenses handles GET /expenses.
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	limit, offset := pagination(r)

	expenses, err := h.expenses.List(r.Context(), userID, limit, offset)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	out := make([]expenseResponse, 0, len(expenses))
	for i := range expenses {
		out = append(out, toExpenseResponse(&expenses[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": out})
}

// CreateExpense handles POST /expenses. The response reports whether the
// ledger applied and whether a consent decision is pending.
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	userID := middleware.GetUserID(r.Context())
	result, err := h.expenses.Create(r.Context(), userID, req.toModel())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saveExpenseResponse{
		Expense: toExpenseResponse(result.Expense),
		Applied: result.Applied,
		Pending: toPendingResponse(result.Pending),
	})
}

// GetExpense handles GET /expenses/{id}.
func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	expense, err := h.expenses.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(expense))
}

// UpdateExpense handles PUT /expenses/{id}: full replacement of the record,
// followed by a ledger rebuild.
func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "id")
	existing, err := h.expenses.Get(r.Context(), userID, id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	expense := req.toModel()
	expense.ID = id
	expense.CreatedAt = existing.CreatedAt
	result, err := h.expenses.Update(r.Context(), userID, expense)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saveExpenseResponse{
		Expense: toExpenseResponse(result.Expense),
		Applied: result.Applied,
		Pending: toPendingResponse(result.Pending),
	})
}

// DeleteExpense handles DELETE /expenses/{id}.
func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if err := h.expenses.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApplyExpense handles POST /expenses/{id}/apply: the consent buttons behind
// a pending decision. Body: {"person_name": "...", "track": true|false}.
func (h *Handler) ApplyExpense(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "id")

	var applied bool
	var err error
	if req.Track {
		applied, err = h.people.ApplyExpenseAndTrack(r.Context(), userID, req.PersonName, id)
	} else {
		applied, err = h.people.ApplyExpenseOnce(r.Context(), userID, req.PersonName, id)
	}
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"applied": applied})
}
