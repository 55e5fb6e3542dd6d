package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"marketplace-admin-backend/internal/domain"
)

// ledgerRequest records a manual entry. Refunds only come from dispute resolution.
type ledgerRequest struct {
	Type     domain.LedgerEntryType `json:"type" validate:"required,oneof=payment payout fee adjustment"`
	Amount   decimal.Decimal        `json:"amount"`
	Currency domain.Currency        `json:"currency" validate:"required"`
	OrderID  string                 `json:"order_id" validate:"max=64"`
	UserID   string                 `json:"user_id" validate:"max=64"`
	Note     string                 `json:"note" validate:"max=2000"`
}

func (h *handler) listLedger(w http.ResponseWriter, r *http.Request) {
	page, size, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.svc.Ledger.ListEntries(r.Context(), page, size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) listLedgerByOrder(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.Ledger.ListByOrder(r.Context(), mux.Vars(r)["orderId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *handler) recordLedgerEntry(w http.ResponseWriter, r *http.Request) {
	var req ledgerRequest
	if !h.validator.decode(w, r, &req) {
		return
	}
	entry, err := h.svc.Ledger.Record(r.Context(), domain.LedgerEntry{
		Type:     req.Type,
		Amount:   req.Amount,
		Currency: req.Currency,
		OrderID:  domain.OptionalString(req.OrderID),
		UserID:   domain.OptionalString(req.UserID),
		Note:     domain.OptionalString(req.Note),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}
