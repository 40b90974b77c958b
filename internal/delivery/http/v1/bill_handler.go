package v1

import (
	"net/http"

	"pharmacare-backend/internal/domain"
	"pharmacare-backend/internal/usecase"
	"pharmacare-backend/pkg/utils"

	"github.com/goccy/go-json"
)

type BillHandler struct {
	billUC         *usecase.BillUsecase
	transactionsUC *usecase.TransactionsUsecase
}

func NewBillHandler(billUC *usecase.BillUsecase, transactionsUC *usecase.TransactionsUsecase) *BillHandler {
	return &BillHandler{billUC: billUC, transactionsUC: transactionsUC}
}

func (h *BillHandler) Make(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		CustomerName string                     `json:"customerName"`
		MobileNumber string                     `json:"mobileNumber"`
		Medicines    []usecase.OrderLineRequest `json:"medicines"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	bill, err := h.billUC.MakeBill(r.Context(), user.Username, req.CustomerName, req.MobileNumber, req.Medicines)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	h.transactionsUC.Invalidate(user.Username)
	utils.WriteJSON(w, http.StatusCreated, bill)
}

func (h *BillHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	bills, err := h.billUC.ListBills(r.Context(), user.Username)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if bills == nil {
		bills = []domain.Bill{}
	}
	utils.WriteJSON(w, http.StatusOK, bills)
}

func (h *BillHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	bill, err := h.billUC.GetBill(r.Context(), user.Username, r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, bill)
}
