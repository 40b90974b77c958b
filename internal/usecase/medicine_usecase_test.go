package usecase

import (
	"context"
	"testing"

	"pharmacare-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMedicine(t *testing.T) {
	repo := newFakeMedicineRepo()
	uc := NewMedicineUsecase(repo)
	ctx := context.Background()

	m, err := uc.AddMedicine(ctx, testUser, "  Paracetamol 500mg ", 30, 1.25)
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol 500mg", m.Name)
	assert.Equal(t, 30, m.Quantity)
	assert.NotEmpty(t, m.ID)

	_, err = uc.AddMedicine(ctx, testUser, "", 1, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	_, err = uc.AddMedicine(ctx, testUser, "Ibuprofen", -1, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	_, err = uc.AddMedicine(ctx, testUser, "Ibuprofen", 1, -0.5)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestUpdateMedicine(t *testing.T) {
	repo := newFakeMedicineRepo(med("X", testUser, 10, 2.5))
	uc := NewMedicineUsecase(repo)
	ctx := context.Background()

	m, err := uc.UpdateMedicine(ctx, testUser, "X", "med-X renamed", 15, 3)
	require.NoError(t, err)
	assert.Equal(t, "med-X renamed", m.Name)
	assert.Equal(t, 15, m.Quantity)
	assert.Equal(t, 3.0, m.Price)

	_, err = uc.UpdateMedicine(ctx, "other-shop", "X", "hijack", 1, 1)
	assert.ErrorIs(t, err, domain.ErrMedicineNotFound)

	_, err = uc.UpdateMedicine(ctx, testUser, "missing", "name", 1, 1)
	assert.ErrorIs(t, err, domain.ErrMedicineNotFound)
}

func TestListMedicines(t *testing.T) {
	repo := newFakeMedicineRepo(
		med("X", testUser, 10, 2.5),
		med("Z", "other", 5, 1),
	)
	uc := NewMedicineUsecase(repo)

	meds, err := uc.ListMedicines(context.Background(), testUser)
	require.NoError(t, err)
	require.Len(t, meds, 1)
	assert.Equal(t, "X", meds[0].ID)
}
