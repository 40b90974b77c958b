package domain

import (
	"context"
	"time"
)

// Order statuses. The wire strings match the labels the storefront renders.
type OrderStatus string

const (
	StatusPending            OrderStatus = "Pending"
	StatusPartiallyAccepted  OrderStatus = "Partially Accepted"
	StatusAccepted           OrderStatus = "Accepted"
	StatusCancelled          OrderStatus = "Cancelled"
	StatusPartiallyCancelled OrderStatus = "Partially Cancelled"
	StatusCompleted          OrderStatus = "Completed"
)

// Terminal reports whether the status freezes the order's buckets. Refund
// flags may still change on a terminal order.
func (s OrderStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusCancelled || s == StatusCompleted
}

// BucketKind tags a classified slice of ordered quantity.
type BucketKind string

const (
	BucketPartialAccepted  BucketKind = "partialAccepted"
	BucketAcceptedRest     BucketKind = "acceptedRest"
	BucketPartialCancelled BucketKind = "partialCancelled"
	BucketCancelledRest    BucketKind = "cancelledRest"
)

// acceptBuckets and cancelBuckets are the subsets that feed the per-medicine
// invariant accepted(m) + cancelled(m) <= ordered(m).
var (
	acceptBuckets = []BucketKind{BucketPartialAccepted, BucketAcceptedRest}
	cancelBuckets = []BucketKind{BucketPartialCancelled, BucketCancelledRest}
)

// OrderLine is one medicine within an order. Name and Price are snapshots
// taken at order time; a later price change on the medicine does not alter
// past lines.
type OrderLine struct {
	MedicineID string  `json:"medicineId"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
}

// ClassifiedLine is an append-only ledger entry: a slice of previously-ordered
// quantity that has been classified into one of the four buckets.
type ClassifiedLine struct {
	Bucket BucketKind `json:"bucket"`
	OrderLine
}

// StatusPolicy selects which buckets the status derivation looks at.
//
// The partial accept/cancel operations historically picked between the two
// "Partially ..." labels from the partial buckets alone, never reaching a
// terminal status; the rest operations consider all four buckets and derive
// the final status. The two-bucket view is kept on purpose as a named policy
// rather than silently unified: the storefront drives orders to completion
// through the rest operations, and only those are allowed to finalize.
type StatusPolicy int

const (
	PartialBucketsView StatusPolicy = iota
	AllBucketsView
)

// Order is the supplier-order aggregate. Lines is the original request and is
// immutable after creation; Ledger is strictly append-only. Version backs the
// optimistic concurrency check at the storage boundary.
type Order struct {
	ID           string `json:"id"` // UUID
	OrderID      string `json:"orderId"`
	Username     string `json:"username"`
	SupplierName string `json:"supplierName"`

	Lines  []OrderLine      `json:"medicines"`
	Ledger []ClassifiedLine `json:"-"`

	Status OrderStatus `json:"status"`

	// Supplier-refund bookkeeping, independent of the acceptance state machine.
	RefundReceived        bool `json:"refundReceived"`
	PartialRefundReceived bool `json:"partialRefundReceived"`
	FullRefundReceived    bool `json:"fullRefundReceived"`

	Notes string `json:"notes,omitempty"`

	// AppliedRequests holds the client request ids already applied, so that a
	// replayed reconciliation request is rejected instead of double counted.
	AppliedRequests []string `json:"-"`

	Version   int       `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id, username string) (*Order, error)
	ListByUsername(ctx context.Context, username string) ([]Order, error)

	// ListActionable returns orders still open for reconciliation plus
	// finalized orders with outstanding refund flags (the accept-order view).
	ListActionable(ctx context.Context, username string) ([]Order, error)

	// Update persists the mutable part of the aggregate guarded by the version
	// the order was read at; ErrConcurrencyConflict when the check fails.
	Update(ctx context.Context, order *Order) error
}

// Bucket returns the ledger entries of one bucket in append order.
func (o *Order) Bucket(kind BucketKind) []OrderLine {
	var lines []OrderLine
	for _, e := range o.Ledger {
		if e.Bucket == kind {
			lines = append(lines, e.OrderLine)
		}
	}
	return lines
}

// OrderedQty is the originally ordered quantity for a medicine.
func (o *Order) OrderedQty(medicineID string) int {
	sum := 0
	for _, l := range o.Lines {
		if l.MedicineID == medicineID {
			sum += l.Quantity
		}
	}
	return sum
}

// ClassifiedQty sums the ledger quantities for a medicine across the given
// buckets.
func (o *Order) ClassifiedQty(medicineID string, kinds ...BucketKind) int {
	sum := 0
	for _, e := range o.Ledger {
		if e.MedicineID != medicineID {
			continue
		}
		for _, k := range kinds {
			if e.Bucket == k {
				sum += e.Quantity
				break
			}
		}
	}
	return sum
}

// Remaining is the quantity of a medicine still eligible for classification,
// counting only the given buckets as already classified.
func (o *Order) Remaining(medicineID string, counted ...BucketKind) int {
	return o.OrderedQty(medicineID) - o.ClassifiedQty(medicineID, counted...)
}

func (o *Order) bucketTotal(kinds ...BucketKind) int {
	sum := 0
	for _, e := range o.Ledger {
		for _, k := range kinds {
			if e.Bucket == k {
				sum += e.Quantity
				break
			}
		}
	}
	return sum
}

// TotalOrdered is the sum of all original line quantities.
func (o *Order) TotalOrdered() int {
	sum := 0
	for _, l := range o.Lines {
		sum += l.Quantity
	}
	return sum
}

// DeriveStatus recomputes the status from the current buckets. It is the only
// way a status is derived; CancelAll is the single shortcut that writes the
// status directly.
func (o *Order) DeriveStatus(policy StatusPolicy) OrderStatus {
	if policy == PartialBucketsView {
		if o.bucketTotal(BucketPartialAccepted) > 0 {
			return StatusPartiallyAccepted
		}
		if o.bucketTotal(BucketPartialCancelled) > 0 {
			return StatusPartiallyCancelled
		}
		return StatusPending
	}

	accepted := o.bucketTotal(acceptBuckets...)
	cancelled := o.bucketTotal(cancelBuckets...)
	ordered := o.TotalOrdered()

	if ordered > 0 && accepted+cancelled == ordered {
		switch {
		case accepted > 0 && cancelled > 0:
			return StatusCompleted
		case accepted == ordered:
			return StatusAccepted
		default:
			return StatusCancelled
		}
	}
	if accepted > 0 {
		return StatusPartiallyAccepted
	}
	if cancelled > 0 {
		return StatusPartiallyCancelled
	}
	return StatusPending
}

// classifiable filters requested quantities against a per-medicine allowance.
// Lines with no requested quantity, a non-positive quantity, or a quantity
// above the allowance are dropped silently; this is the "drop invalid, succeed
// on partial" policy that matches a UI where the operator ticks several lines
// at once. The caller fails the whole request when nothing survives.
func classifiable(lines []OrderLine, requested map[string]int, remaining func(medicineID string) int) []OrderLine {
	var out []OrderLine
	for _, line := range lines {
		qty, ok := requested[line.MedicineID]
		if !ok || qty <= 0 {
			continue
		}
		if qty > remaining(line.MedicineID) {
			continue
		}
		out = append(out, OrderLine{
			MedicineID: line.MedicineID,
			Name:       line.Name,
			Quantity:   qty,
			Price:      line.Price,
		})
	}
	return out
}

func (o *Order) checkMutable() error {
	if o.Status.Terminal() {
		return ErrOrderFinalized
	}
	return nil
}

func (o *Order) appendLedger(kind BucketKind, lines []OrderLine) {
	for _, l := range lines {
		o.Ledger = append(o.Ledger, ClassifiedLine{Bucket: kind, OrderLine: l})
	}
}

func (o *Order) markUpdated() {
	o.UpdatedAt = time.Now().UTC()
}

// RecordRequest registers a client request id against the order, rejecting
// replays. Empty ids are accepted and not recorded.
func (o *Order) RecordRequest(requestID string) error {
	if requestID == "" {
		return nil
	}
	for _, id := range o.AppliedRequests {
		if id == requestID {
			return ErrDuplicateRequest
		}
	}
	o.AppliedRequests = append(o.AppliedRequests, requestID)
	return nil
}

// ApplyPartialAccept classifies the requested quantities into partialAccepted
// and returns the lines whose stock the caller must increment. The remaining
// allowance here deliberately counts the partial buckets only, mirroring the
// status policy of the same operation.
func (o *Order) ApplyPartialAccept(requested map[string]int) ([]OrderLine, error) {
	if err := o.checkMutable(); err != nil {
		return nil, err
	}
	accepted := classifiable(o.Lines, requested, func(id string) int {
		return o.Remaining(id, BucketPartialAccepted, BucketPartialCancelled)
	})
	if len(accepted) == 0 {
		return nil, ErrNoValidSelection
	}
	o.appendLedger(BucketPartialAccepted, accepted)
	o.Status = o.DeriveStatus(PartialBucketsView)
	o.markUpdated()
	return accepted, nil
}

// ApplyPartialCancel mirrors ApplyPartialAccept into partialCancelled.
// Cancelled stock was never received, so there is nothing to increment.
func (o *Order) ApplyPartialCancel(requested map[string]int) ([]OrderLine, error) {
	if err := o.checkMutable(); err != nil {
		return nil, err
	}
	cancelled := classifiable(o.Lines, requested, func(id string) int {
		return o.Remaining(id, BucketPartialAccepted, BucketPartialCancelled)
	})
	if len(cancelled) == 0 {
		return nil, ErrNoValidSelection
	}
	o.appendLedger(BucketPartialCancelled, cancelled)
	o.Status = o.DeriveStatus(PartialBucketsView)
	o.markUpdated()
	return cancelled, nil
}

// ApplyAcceptRest classifies everything not yet covered into acceptedRest and
// derives the final status over all four buckets. Returns the lines to
// increment; an order with nothing left yields no entries.
func (o *Order) ApplyAcceptRest() ([]OrderLine, error) {
	if err := o.checkMutable(); err != nil {
		return nil, err
	}
	var rest []OrderLine
	for _, line := range o.Lines {
		remaining := o.Remaining(line.MedicineID,
			BucketPartialAccepted, BucketPartialCancelled, BucketAcceptedRest)
		if remaining > 0 {
			rest = append(rest, OrderLine{
				MedicineID: line.MedicineID,
				Name:       line.Name,
				Quantity:   remaining,
				Price:      line.Price,
			})
		}
	}
	o.appendLedger(BucketAcceptedRest, rest)
	o.Status = o.DeriveStatus(AllBucketsView)
	o.markUpdated()
	return rest, nil
}

// ApplyCancelRest classifies everything not yet covered into cancelledRest.
// No inventory effect.
func (o *Order) ApplyCancelRest() ([]OrderLine, error) {
	if err := o.checkMutable(); err != nil {
		return nil, err
	}
	var rest []OrderLine
	for _, line := range o.Lines {
		remaining := o.Remaining(line.MedicineID,
			BucketPartialAccepted, BucketPartialCancelled, BucketCancelledRest)
		if remaining > 0 {
			rest = append(rest, OrderLine{
				MedicineID: line.MedicineID,
				Name:       line.Name,
				Quantity:   remaining,
				Price:      line.Price,
			})
		}
	}
	o.appendLedger(BucketCancelledRest, rest)
	o.Status = o.DeriveStatus(AllBucketsView)
	o.markUpdated()
	return rest, nil
}

// ApplyAcceptAll accepts every line's remaining allowance at once, counting
// all four buckets, and appends the result to acceptedRest.
func (o *Order) ApplyAcceptAll() ([]OrderLine, error) {
	if err := o.checkMutable(); err != nil {
		return nil, err
	}
	var accepted []OrderLine
	for _, line := range o.Lines {
		remaining := o.OrderedQty(line.MedicineID) -
			o.ClassifiedQty(line.MedicineID, acceptBuckets...) -
			o.ClassifiedQty(line.MedicineID, cancelBuckets...)
		if remaining > 0 {
			accepted = append(accepted, OrderLine{
				MedicineID: line.MedicineID,
				Name:       line.Name,
				Quantity:   remaining,
				Price:      line.Price,
			})
		}
	}
	o.appendLedger(BucketAcceptedRest, accepted)
	o.Status = o.DeriveStatus(AllBucketsView)
	o.markUpdated()
	return accepted, nil
}

// ApplyCancelAll is the full-cancel shortcut: it writes the status directly
// and does not reconcile per-line buckets or touch inventory.
func (o *Order) ApplyCancelAll() {
	o.Status = StatusCancelled
	o.markUpdated()
}
