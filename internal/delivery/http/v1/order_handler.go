package v1

import (
	"net/http"
	"time"

	"pharmacare-backend/internal/domain"
	"pharmacare-backend/internal/usecase"
	"pharmacare-backend/pkg/utils"

	"github.com/goccy/go-json"
)

type OrderHandler struct {
	orderUC        *usecase.OrderUsecase
	transactionsUC *usecase.TransactionsUsecase
}

func NewOrderHandler(orderUC *usecase.OrderUsecase, transactionsUC *usecase.TransactionsUsecase) *OrderHandler {
	return &OrderHandler{orderUC: orderUC, transactionsUC: transactionsUC}
}

// orderResponse is the wire shape of an order: the four classification
// buckets are projected out of the ledger as separate arrays, which is what
// the storefront renders.
type orderResponse struct {
	ID           string             `json:"id"`
	OrderID      string             `json:"orderId"`
	Username     string             `json:"username"`
	SupplierName string             `json:"supplierName"`
	Medicines    []domain.OrderLine `json:"medicines"`
	Status       domain.OrderStatus `json:"status"`

	PartialAccepted  []domain.OrderLine `json:"partialAccepted"`
	AcceptedRest     []domain.OrderLine `json:"acceptedRest"`
	PartialCancelled []domain.OrderLine `json:"partialCancelled"`
	CancelledRest    []domain.OrderLine `json:"cancelledRest"`

	RefundReceived        bool `json:"refundReceived"`
	PartialRefundReceived bool `json:"partialRefundReceived"`
	FullRefundReceived    bool `json:"fullRefundReceived"`

	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toOrderResponse(o *domain.Order) orderResponse {
	bucket := func(kind domain.BucketKind) []domain.OrderLine {
		lines := o.Bucket(kind)
		if lines == nil {
			lines = []domain.OrderLine{}
		}
		return lines
	}
	return orderResponse{
		ID:           o.ID,
		OrderID:      o.OrderID,
		Username:     o.Username,
		SupplierName: o.SupplierName,
		Medicines:    o.Lines,
		Status:       o.Status,

		PartialAccepted:  bucket(domain.BucketPartialAccepted),
		AcceptedRest:     bucket(domain.BucketAcceptedRest),
		PartialCancelled: bucket(domain.BucketPartialCancelled),
		CancelledRest:    bucket(domain.BucketCancelledRest),

		RefundReceived:        o.RefundReceived,
		PartialRefundReceived: o.PartialRefundReceived,
		FullRefundReceived:    o.FullRefundReceived,

		Notes:     o.Notes,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func toOrderResponses(orders []domain.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderResponse(&orders[i]))
	}
	return out
}

type placeOrderReq struct {
	SupplierName string                     `json:"supplierName"`
	Medicines    []usecase.OrderLineRequest `json:"medicines"`
}

func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req placeOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.orderUC.PlaceOrder(r.Context(), user.Username, req.SupplierName, req.Medicines)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	orders, err := h.orderUC.ListOrders(r.Context(), user.Username)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, toOrderResponses(orders))
}

// ListActionable serves the accept-order view: orders still open for
// reconciliation plus finalized ones with outstanding refunds.
func (h *OrderHandler) ListActionable(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	orders, err := h.orderUC.ListActionable(r.Context(), user.Username)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, toOrderResponses(orders))
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	order, err := h.orderUC.GetOrder(r.Context(), user.Username, r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, toOrderResponse(order))
}

// reconcileReq covers all six reconciliation actions. Medicines is only read
// by the partial operations; RequestID is the optional idempotency key.
type reconcileReq struct {
	RequestID string                     `json:"requestId"`
	Medicines []usecase.OrderLineRequest `json:"medicines"`
}

func (req *reconcileReq) quantities() map[string]int {
	m := make(map[string]int, len(req.Medicines))
	for _, line := range req.Medicines {
		m[line.MedicineID] = line.Quantity
	}
	return m
}

// reconcileAction handles the shared plumbing of the reconciliation
// endpoints: decode, delegate, invalidate the transactions view, respond.
func (h *OrderHandler) reconcileAction(w http.ResponseWriter, r *http.Request,
	run func(username, id string, req *reconcileReq) (*domain.Order, error)) {

	user, ok := userFrom(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		utils.WriteError(w, http.StatusBadRequest, "Order ID required")
		return
	}

	var req reconcileReq
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	order, err := run(user.Username, id, &req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	h.transactionsUC.Invalidate(user.Username)
	utils.WriteJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) AcceptAll(w http.ResponseWriter, r *http.Request) {
	h.reconcileAction(w, r, func(username, id string, req *reconcileReq) (*domain.Order, error) {
		return h.orderUC.AcceptAll(r.Context(), username, id, req.RequestID)
	})
}

func (h *OrderHandler) CancelAll(w http.ResponseWriter, r *http.Request) {
	h.reconcileAction(w, r, func(username, id string, req *reconcileReq) (*domain.Order, error) {
		return h.orderUC.CancelAll(r.Context(), username, id, req.RequestID)
	})
}

func (h *OrderHandler) PartialAccept(w http.ResponseWriter, r *http.Request) {
	h.reconcileAction(w, r, func(username, id string, req *reconcileReq) (*domain.Order, error) {
		return h.orderUC.PartialAccept(r.Context(), username, id, req.RequestID, req.quantities())
	})
}

func (h *OrderHandler) PartialCancel(w http.ResponseWriter, r *http.Request) {
	h.reconcileAction(w, r, func(username, id string, req *reconcileReq) (*domain.Order, error) {
		return h.orderUC.PartialCancel(r.Context(), username, id, req.RequestID, req.quantities())
	})
}

func (h *OrderHandler) AcceptRest(w http.ResponseWriter, r *http.Request) {
	h.reconcileAction(w, r, func(username, id string, req *reconcileReq) (*domain.Order, error) {
		return h.orderUC.AcceptRest(r.Context(), username, id, req.RequestID)
	})
}

func (h *OrderHandler) CancelRest(w http.ResponseWriter, r *http.Request) {
	h.reconcileAction(w, r, func(username, id string, req *reconcileReq) (*domain.Order, error) {
		return h.orderUC.CancelRest(r.Context(), username, id, req.RequestID)
	})
}

func (h *OrderHandler) MarkRefund(w http.ResponseWriter, r *http.Request) {
	h.reconcileAction(w, r, func(username, id string, req *reconcileReq) (*domain.Order, error) {
		return h.orderUC.MarkRefundReceived(r.Context(), username, id)
	})
}

func (h *OrderHandler) MarkPartialRefund(w http.ResponseWriter, r *http.Request) {
	h.reconcileAction(w, r, func(username, id string, req *reconcileReq) (*domain.Order, error) {
		return h.orderUC.MarkPartialRefundReceived(r.Context(), username, id)
	})
}

func (h *OrderHandler) MarkFullRefund(w http.ResponseWriter, r *http.Request) {
	h.reconcileAction(w, r, func(username, id string, req *reconcileReq) (*domain.Order, error) {
		return h.orderUC.MarkFullRefundReceived(r.Context(), username, id)
	})
}
