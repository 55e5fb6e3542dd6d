package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type LedgerEntryType string

const (
	LedgerEntryPayment    LedgerEntryType = "payment"
	LedgerEntryPayout     LedgerEntryType = "payout"
	LedgerEntryRefund     LedgerEntryType = "refund"
	LedgerEntryFee        LedgerEntryType = "fee"
	LedgerEntryAdjustment LedgerEntryType = "adjustment"
)

var ledgerEntryTypes = []LedgerEntryType{
	LedgerEntryPayment,
	LedgerEntryPayout,
	LedgerEntryRefund,
	LedgerEntryFee,
	LedgerEntryAdjustment,
}

func ParseLedgerEntryType(raw string) (LedgerEntryType, error) {
	return parseEnum("ledger entry type", strings.TrimSpace(raw), ledgerEntryTypes)
}

func (t *LedgerEntryType) UnmarshalText(text []byte) error {
	v, err := ParseLedgerEntryType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// LedgerEntry is an immutable financial event. Amount is signed: money
// leaving the platform towards a user (refunds, payouts) is negative.
type LedgerEntry struct {
	ID        string           `json:"id"`
	Type      LedgerEntryType  `json:"type"`
	Amount    decimal.Decimal  `json:"amount"`
	Currency  Currency         `json:"currency"`
	CreatedAt time.Time        `json:"created_at"`
	OrderID   Optional[string] `json:"order_id"`
	UserID    Optional[string] `json:"user_id"`
	Note      Optional[string] `json:"note"`
}

// LedgerTotal aggregates entries of one type in one currency.
type LedgerTotal struct {
	Type     LedgerEntryType `json:"type"`
	Currency Currency        `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
	Count    int             `json:"count"`
}

// SumLedger totals entries per type and currency, ordered by type then currency.
func SumLedger(entries []LedgerEntry) []LedgerTotal {
	type key struct {
		t LedgerEntryType
		c Currency
	}
	byKey := make(map[key]*LedgerTotal)
	for _, e := range entries {
		k := key{e.Type, e.Currency}
		total, ok := byKey[k]
		if !ok {
			total = &LedgerTotal{Type: e.Type, Currency: e.Currency, Amount: decimal.Zero}
			byKey[k] = total
		}
		total.Amount = total.Amount.Add(e.Amount)
		total.Count++
	}

	out := make([]LedgerTotal, 0, len(byKey))
	for _, total := range byKey {
		out = append(out, *total)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Currency < out[j].Currency
	})
	return out
}
