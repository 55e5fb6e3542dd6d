package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"marketplace-admin-backend/internal/domain"
)

type suspendRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

const filterAny = "any"

func (h *handler) listUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.UserFilter{Query: q.Get("q")}
	if raw := q.Get("status"); raw != "" && raw != filterAny {
		status, err := domain.ParseUserStatus(raw)
		if err != nil {
			writeError(w, r, err)
			return
		}
		filter.Status = domain.Some(status)
	}
	if raw := q.Get("role"); raw != "" && raw != filterAny {
		role, err := domain.ParseUserRole(raw)
		if err != nil {
			writeError(w, r, err)
			return
		}
		filter.Role = domain.Some(role)
	}

	users, err := h.svc.Users.ListUsers(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *handler) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Users.GetUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *handler) suspendUser(w http.ResponseWriter, r *http.Request) {
	var req suspendRequest
	if !h.validator.decode(w, r, &req) {
		return
	}
	u, err := h.svc.Users.SuspendUser(r.Context(), actor(r), mux.Vars(r)["id"], req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *handler) reactivateUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Users.ReactivateUser(r.Context(), actor(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
