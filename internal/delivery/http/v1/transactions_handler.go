package v1

import (
	"net/http"

	"pharmacare-backend/internal/domain"
	"pharmacare-backend/internal/usecase"
	"pharmacare-backend/pkg/utils"
)

type TransactionsHandler struct {
	transactionsUC *usecase.TransactionsUsecase
}

func NewTransactionsHandler(transactionsUC *usecase.TransactionsUsecase) *TransactionsHandler {
	return &TransactionsHandler{transactionsUC: transactionsUC}
}

func (h *TransactionsHandler) History(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	days, err := h.transactionsUC.History(r.Context(), user.Username)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if days == nil {
		days = []domain.TransactionDay{}
	}
	utils.WriteJSON(w, http.StatusOK, days)
}
