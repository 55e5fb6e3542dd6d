package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"marketplace-admin-backend/internal/domain"
	"marketplace-admin-backend/internal/service"
)

type openDisputeRequest struct {
	OrderID      string                 `json:"order_id" validate:"required,max=64"`
	BuyerID      string                 `json:"buyer_id" validate:"required,max=64"`
	SellerID     string                 `json:"seller_id" validate:"required,max=64,nefield=BuyerID"`
	ServiceTitle string                 `json:"service_title" validate:"max=200"`
	Amount       decimal.Decimal        `json:"amount"`
	Currency     domain.Currency        `json:"currency" validate:"required"`
	Category     domain.DisputeCategory `json:"category" validate:"required"`
	Description  string                 `json:"description" validate:"max=5000"`
}

type assignRequest struct {
	ModeratorID string `json:"moderator_id" validate:"required,max=64"`
}

type resolveRequest struct {
	Outcome      domain.Outcome   `json:"outcome" validate:"required"`
	Note         string           `json:"note" validate:"max=2000"`
	RefundAmount *decimal.Decimal `json:"refund_amount"`
}

type messageRequest struct {
	Author domain.PartyRole `json:"author" validate:"required"`
	Body   string           `json:"body" validate:"required,max=5000"`
}

type evidenceRequest struct {
	SubmittedBy domain.PartyRole `json:"submitted_by" validate:"required"`
	Note        string           `json:"note" validate:"required,max=2000"`
	URL         string           `json:"url" validate:"omitempty,url"`
}

type resolveResponse struct {
	Dispute     *domain.Dispute     `json:"dispute"`
	LedgerEntry *domain.LedgerEntry `json:"ledger_entry"`
}

// pageParams reads page and page_size; absent values fall back to defaults.
func pageParams(r *http.Request) (int, int, error) {
	q := r.URL.Query()
	parse := func(name string) (int, error) {
		raw := q.Get(name)
		if raw == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidArgument, name)
		}
		return n, nil
	}
	page, err := parse("page")
	if err != nil {
		return 0, 0, err
	}
	size, err := parse("page_size")
	if err != nil {
		return 0, 0, err
	}
	return page, size, nil
}

func (h *handler) listDisputes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := domain.ParseDisputeFilter(q.Get("status"), q.Get("category"), q.Get("age"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, size, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.svc.Disputes.ListDisputes(r.Context(), filter, page, size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) openDispute(w http.ResponseWriter, r *http.Request) {
	var req openDisputeRequest
	if !h.validator.decode(w, r, &req) {
		return
	}
	d, err := h.svc.Disputes.OpenDispute(r.Context(), service.OpenDisputeInput{
		OrderID:      req.OrderID,
		BuyerID:      req.BuyerID,
		SellerID:     req.SellerID,
		ServiceTitle: req.ServiceTitle,
		Amount:       req.Amount,
		Currency:     req.Currency,
		Category:     req.Category,
		Description:  req.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *handler) getDispute(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Disputes.GetDispute(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *handler) assignDispute(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if !h.validator.decode(w, r, &req) {
		return
	}
	d, err := h.svc.Disputes.Assign(r.Context(), mux.Vars(r)["id"], req.ModeratorID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *handler) resolveDispute(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if !h.validator.decode(w, r, &req) {
		return
	}
	in := domain.ResolveInput{
		Outcome:    req.Outcome,
		Note:       req.Note,
		ResolvedBy: domain.OptionalString(actor(r)),
	}
	if req.RefundAmount != nil {
		in.RefundAmount = domain.Some(*req.RefundAmount)
	}
	d, entry, err := h.svc.Disputes.Resolve(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resolveResponse{Dispute: d, LedgerEntry: entry})
}

func (h *handler) addMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if !h.validator.decode(w, r, &req) {
		return
	}
	d, err := h.svc.Disputes.AddMessage(r.Context(), mux.Vars(r)["id"], req.Author, req.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *handler) addEvidence(w http.ResponseWriter, r *http.Request) {
	var req evidenceRequest
	if !h.validator.decode(w, r, &req) {
		return
	}
	d, err := h.svc.Disputes.AddEvidence(r.Context(), mux.Vars(r)["id"], req.SubmittedBy, req.Note, domain.OptionalString(req.URL))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
