package http

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"marketplace-admin-backend/internal/domain"
)

type reportRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

func (h *handler) listListings(w http.ResponseWriter, r *http.Request) {
	status := domain.None[domain.ListingStatus]()
	if raw := r.URL.Query().Get("status"); raw != "" && raw != filterAny {
		s, err := domain.ParseListingStatus(raw)
		if err != nil {
			writeError(w, r, err)
			return
		}
		status = domain.Some(s)
	}
	listings, err := h.svc.Listings.ListListings(r.Context(), status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

func (h *handler) getListing(w http.ResponseWriter, r *http.Request) {
	l, err := h.svc.Listings.GetListing(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

type listingAction func(ctx context.Context, actorID, listingID string) (*domain.ServiceListing, error)

func (h *handler) moderateListing(action listingAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l, err := action(r.Context(), actor(r), mux.Vars(r)["id"])
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, l)
	}
}

func (h *handler) approveListing(w http.ResponseWriter, r *http.Request) {
	h.moderateListing(h.svc.Listings.ApproveListing)(w, r)
}

func (h *handler) unlistListing(w http.ResponseWriter, r *http.Request) {
	h.moderateListing(h.svc.Listings.UnlistListing)(w, r)
}

func (h *handler) reportListing(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if !h.validator.decode(w, r, &req) {
		return
	}
	h.moderateListing(func(ctx context.Context, actorID, listingID string) (*domain.ServiceListing, error) {
		return h.svc.Listings.ReportListing(ctx, actorID, listingID, req.Reason)
	})(w, r)
}
