package domain

import "time"

// Transaction entry types for the reporting view.
const (
	TransactionTypeBill   = "Bill"
	TransactionTypeOrder  = "Order"
	TransactionTypeRefund = "Refund"
)

// Refund classification labels. "Full Refund" applies only when both the
// partialCancelled and cancelledRest buckets are non-empty, "Partial Refund"
// when only partialCancelled is; otherwise plain "Refund". The reconciliation
// core preserves the bucket data this classification reads.
const (
	RefundLabelFull    = "Full Refund"
	RefundLabelPartial = "Partial Refund"
	RefundLabelPlain   = "Refund"
)

// TransactionEntry is one row of the day-grouped transaction history.
type TransactionEntry struct {
	Type   string    `json:"type"`
	Label  string    `json:"label"`
	Name   string    `json:"name"`
	Amount float64   `json:"amount"`
	Time   time.Time `json:"time"`
}

// TransactionDay groups entries by calendar day, newest day first.
type TransactionDay struct {
	Date    string             `json:"date"` // e.g. "12 March 2026"
	Entries []TransactionEntry `json:"entries"`
}
