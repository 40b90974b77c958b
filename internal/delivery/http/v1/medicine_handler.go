package v1

import (
	"net/http"

	"pharmacare-backend/internal/domain"
	"pharmacare-backend/internal/usecase"
	"pharmacare-backend/pkg/utils"

	"github.com/goccy/go-json"
)

type MedicineHandler struct {
	medicineUC *usecase.MedicineUsecase
}

func NewMedicineHandler(medicineUC *usecase.MedicineUsecase) *MedicineHandler {
	return &MedicineHandler{medicineUC: medicineUC}
}

type medicineReq struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

func (h *MedicineHandler) Add(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req medicineReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	med, err := h.medicineUC.AddMedicine(r.Context(), user.Username, req.Name, req.Quantity, req.Price)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, med)
}

func (h *MedicineHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	meds, err := h.medicineUC.ListMedicines(r.Context(), user.Username)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if meds == nil {
		meds = []domain.Medicine{}
	}
	utils.WriteJSON(w, http.StatusOK, meds)
}

func (h *MedicineHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		utils.WriteError(w, http.StatusBadRequest, "Medicine ID required")
		return
	}

	var req medicineReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	med, err := h.medicineUC.UpdateMedicine(r.Context(), user.Username, id, req.Name, req.Quantity, req.Price)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, med)
}
