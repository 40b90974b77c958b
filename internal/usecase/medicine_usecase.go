package usecase

import (
	"context"
	"fmt"
	"strings"

	"pharmacare-backend/internal/domain"
	"pharmacare-backend/pkg/utils"
)

type MedicineUsecase struct {
	medicineRepo domain.MedicineRepository
}

func NewMedicineUsecase(medicineRepo domain.MedicineRepository) *MedicineUsecase {
	return &MedicineUsecase{medicineRepo: medicineRepo}
}

func (u *MedicineUsecase) AddMedicine(ctx context.Context, username, name string, quantity int, price float64) (*domain.Medicine, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: medicine name is required", domain.ErrInvalidRequest)
	}
	if quantity < 0 || price < 0 {
		return nil, fmt.Errorf("%w: quantity and price must be non-negative", domain.ErrInvalidRequest)
	}

	med := &domain.Medicine{
		ID:       utils.GenerateUUID(),
		Username: username,
		Name:     name,
		Quantity: quantity,
		Price:    price,
	}
	if err := u.medicineRepo.Create(ctx, med); err != nil {
		return nil, err
	}
	return med, nil
}

func (u *MedicineUsecase) ListMedicines(ctx context.Context, username string) ([]domain.Medicine, error) {
	return u.medicineRepo.ListByUsername(ctx, username)
}

func (u *MedicineUsecase) UpdateMedicine(ctx context.Context, username, id, name string, quantity int, price float64) (*domain.Medicine, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: medicine name is required", domain.ErrInvalidRequest)
	}
	if quantity < 0 || price < 0 {
		return nil, fmt.Errorf("%w: quantity and price must be non-negative", domain.ErrInvalidRequest)
	}

	med := &domain.Medicine{
		ID:       id,
		Username: username,
		Name:     name,
		Quantity: quantity,
		Price:    price,
	}
	if err := u.medicineRepo.Update(ctx, med); err != nil {
		return nil, err
	}
	return u.medicineRepo.GetByID(ctx, id)
}
