package usecase

import (
	"context"
	"testing"

	"pharmacare-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBillFixture() (*BillUsecase, *fakeBillRepo, *fakeMedicineRepo) {
	medRepo := newFakeMedicineRepo(
		med("X", testUser, 20, 2.5),
		med("Y", testUser, 3, 10),
	)
	billRepo := newFakeBillRepo()
	return NewBillUsecase(billRepo, medRepo, fakeTxManager{}), billRepo, medRepo
}

func TestMakeBill(t *testing.T) {
	t.Run("decrements stock and totals the lines", func(t *testing.T) {
		uc, _, medRepo := newBillFixture()

		bill, err := uc.MakeBill(context.Background(), testUser, "Alice", "9876543210",
			[]OrderLineRequest{
				{MedicineID: "X", Quantity: 4},
				{MedicineID: "Y", Quantity: 2},
			})
		require.NoError(t, err)

		assert.Equal(t, 4*2.5+2*10.0, bill.TotalAmount)
		assert.NotZero(t, bill.BillNumber)
		require.Len(t, bill.Items, 2)
		assert.Equal(t, "med-X", bill.Items[0].Name)

		assert.Equal(t, 16, medRepo.stock("X"))
		assert.Equal(t, 1, medRepo.stock("Y"))
	})

	t.Run("insufficient stock fails the whole bill", func(t *testing.T) {
		uc, billRepo, _ := newBillFixture()

		_, err := uc.MakeBill(context.Background(), testUser, "Alice", "9876543210",
			[]OrderLineRequest{{MedicineID: "Y", Quantity: 4}})
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)

		bills, err := billRepo.ListByUsername(context.Background(), testUser)
		require.NoError(t, err)
		assert.Empty(t, bills)
	})

	t.Run("validates customer fields", func(t *testing.T) {
		uc, _, _ := newBillFixture()
		ctx := context.Background()
		items := []OrderLineRequest{{MedicineID: "X", Quantity: 1}}

		_, err := uc.MakeBill(ctx, testUser, "", "9876543210", items)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)

		_, err = uc.MakeBill(ctx, testUser, "Alice", "12345", items)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)

		_, err = uc.MakeBill(ctx, testUser, "Alice", "1876543210", items)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)

		_, err = uc.MakeBill(ctx, testUser, "Alice", "9876543210", nil)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)

		_, err = uc.MakeBill(ctx, testUser, "Alice", "9876543210",
			[]OrderLineRequest{{MedicineID: "X", Quantity: 0}})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("another shop's medicine is invisible", func(t *testing.T) {
		uc, _, medRepo := newBillFixture()
		require.NoError(t, medRepo.Create(context.Background(), med("Z", "other", 50, 1)))

		_, err := uc.MakeBill(context.Background(), testUser, "Alice", "9876543210",
			[]OrderLineRequest{{MedicineID: "Z", Quantity: 1}})
		assert.ErrorIs(t, err, domain.ErrMedicineNotFound)
		assert.Equal(t, 50, medRepo.stock("Z"))
	})
}

func TestGetAndListBills(t *testing.T) {
	uc, _, _ := newBillFixture()
	ctx := context.Background()

	bill, err := uc.MakeBill(ctx, testUser, "Alice", "9876543210",
		[]OrderLineRequest{{MedicineID: "X", Quantity: 1}})
	require.NoError(t, err)

	got, err := uc.GetBill(ctx, testUser, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, bill.BillNumber, got.BillNumber)

	_, err = uc.GetBill(ctx, "other-shop", bill.ID)
	assert.ErrorIs(t, err, domain.ErrBillNotFound)

	bills, err := uc.ListBills(ctx, testUser)
	require.NoError(t, err)
	assert.Len(t, bills, 1)
}
