package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/kharcha/internal/ledger"
	"github.com/mmynk/kharcha/internal/middleware"
	"github.com/mmynk/kharcha/internal/models"
	"github.com/mmynk/kharcha/internal/service"
)

// ListPeople handles GET /people. The default view shows only tracked people
// with active ledger entries; ?all=1 widens to everyone, ?q= filters by name.
func (h *Handler) ListPeople(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	showAll := r.URL.Query().Get("all") == "1"
	search := r.URL.Query().Get("q")

	summaries, err := h.people.List(r.Context(), userID, showAll, search)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	out := make([]personSummaryResponse, 0, len(summaries))
	for i := range summaries {
		out = append(out, personSummaryResponse{
			personResponse: toPersonResponse(&summaries[i].Person),
			Balance:        summaries[i].Balance,
			LastActivity:   summaries[i].LastActivity,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"people": out})
}

// CreatePerson handles POST /people.
func (h *Handler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req createPersonRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	userID := middleware.GetUserID(r.Context())
	person, err := h.people.Create(r.Context(), userID, req.Name, models.TrackingPreference(req.TrackingPreference))
	if err != nil {
		if errors.Is(err, service.ErrNameRequired) || errors.Is(err, service.ErrInvalidPreference) {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPersonResponse(person))
}

// GetPerson handles GET /people/{id}: the person, their balance with label,
// and a page of ledger history.
func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	limit, offset := pagination(r)

	detail, err := h.people.Detail(r.Context(), userID, chi.URLParam(r, "id"), limit, offset)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, personDetailResponse{
		personResponse: toPersonResponse(detail.Person),
		Balance:        detail.Balance,
		BalanceLabel:   detail.BalanceLabel,
		Entries:        toEntryResponses(detail.Entries),
	})
}

// DeletePerson handles DELETE /people/{id}. Removes the person and their
// entire ledger history.
func (h *Handler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if err := h.people.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetPreference handles POST /people/{id}/preference with body
// {"tracking_preference": "TRACK"|"ASK"|"NO_TRACK"}.
func (h *Handler) SetPreference(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TrackingPreference string `json:"tracking_preference"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := middleware.GetUserID(r.Context())
	personID := chi.URLParam(r, "id")

	var err error
	switch models.TrackingPreference(req.TrackingPreference) {
	case models.Track:
		err = h.people.SetTrack(r.Context(), userID, personID)
	case models.Ask:
		err = h.people.SetAsk(r.Context(), userID, personID)
	case models.NoTrack:
		err = h.people.SetNoTrack(r.Context(), userID, personID)
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("unknown tracking preference"))
		return
	}
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RestorePerson handles POST /people/{id}/restore with body
// {"mode": "reapply"|"start_fresh"}.
func (h *Handler) RestorePerson(w http.ResponseWriter, r *http.Request) {
	var req restoreRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.people.Restore(r.Context(), userID, chi.URLParam(r, "id"), ledger.RestoreMode(req.Mode)); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SettlePerson handles POST /people/{id}/settle: writes a manual adjustment
// bringing the balance to zero.
func (h *Handler) SettlePerson(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	settled, err := h.people.MarkSettled(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"settled": settled})
}
