package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/kharcha/internal/middleware"
)

// ListIncomes handles GET /incomes.
func (h *Handler) ListIncomes(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	limit, offset := pagination(r)

	incomes, err := h.incomes.List(r.Context(), userID, limit, offset)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	out := make([]incomeResponse, 0, len(incomes))
	for i := range incomes {
		out = append(out, toIncomeResponse(&incomes[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"incomes": out})
}

// CreateIncome handles POST /incomes.
func (h *Handler) CreateIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	userID := middleware.GetUserID(r.Context())
	result, err := h.incomes.Create(r.Context(), userID, req.toModel())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saveIncomeResponse{
		Income:  toIncomeResponse(result.Income),
		Applied: result.Applied,
		Pending: toPendingResponse(result.Pending),
	})
}

// GetIncome handles GET /incomes/{id}.
func (h *Handler) GetIncome(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	income, err := h.incomes.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toIncomeResponse(income))
}

// UpdateIncome handles PUT /incomes/{id}.
func (h *Handler) UpdateIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "id")
	existing, err := h.incomes.Get(r.Context(), userID, id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	income := req.toModel()
	income.ID = id
	income.CreatedAt = existing.CreatedAt
	income.AppliedToPeople = existing.AppliedToPeople
	result, err := h.incomes.Update(r.Context(), userID, income)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saveIncomeResponse{
		Income:  toIncomeResponse(result.Income),
		Applied: result.Applied,
		Pending: toPendingResponse(result.Pending),
	})
}

// DeleteIncome handles DELETE /incomes/{id}.
func (h *Handler) DeleteIncome(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if err := h.incomes.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApplyIncome handles POST /incomes/{id}/apply, the consent buttons for a
// pending loan or repayment decision.
func (h *Handler) ApplyIncome(w http.ResponseWriter, r *http.Request) {
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
		applied, err = h.people.ApplyIncomeAndTrack(r.Context(), userID, req.PersonName, id)
	} else {
		applied, err = h.people.ApplyIncomeOnce(r.Context(), userID, req.PersonName, id)
	}
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"applied": applied})
}
