package usecase

import (
	"context"
	"os"
	"testing"

	"pharmacare-backend/internal/domain"
	"pharmacare-backend/pkg/logger"
	"pharmacare-backend/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init("test", "error")
	utils.SetSecret("test-secret")
	os.Exit(m.Run())
}

const testUser = "shop1"

func newOrderFixture(t *testing.T) (*OrderUsecase, *fakeOrderRepo, *fakeMedicineRepo, *domain.Order) {
	t.Helper()

	medRepo := newFakeMedicineRepo(
		med("X", testUser, 0, 2.5),
		med("Y", testUser, 0, 1.0),
	)
	orderRepo := newFakeOrderRepo()
	uc := NewOrderUsecase(orderRepo, medRepo, fakeTxManager{}, 10000)

	order, err := uc.PlaceOrder(context.Background(), testUser, "ACME Pharma", []OrderLineRequest{
		{MedicineID: "X", Quantity: 10},
		{MedicineID: "Y", Quantity: 5},
	})
	require.NoError(t, err)
	return uc, orderRepo, medRepo, order
}

func TestPlaceOrder(t *testing.T) {
	t.Run("snapshots name and price and starts pending", func(t *testing.T) {
		_, _, _, order := newOrderFixture(t)

		assert.Equal(t, domain.StatusPending, order.Status)
		assert.NotEmpty(t, order.OrderID)
		require.Len(t, order.Lines, 2)
		assert.Equal(t, "med-X", order.Lines[0].Name)
		assert.Equal(t, 2.5, order.Lines[0].Price)
		assert.Empty(t, order.Ledger)
	})

	t.Run("placement never touches stock", func(t *testing.T) {
		_, _, medRepo, _ := newOrderFixture(t)
		assert.Equal(t, 0, medRepo.stock("X"))
		assert.Equal(t, 0, medRepo.stock("Y"))
	})

	t.Run("rejects empty, duplicate and foreign lines", func(t *testing.T) {
		medRepo := newFakeMedicineRepo(med("X", testUser, 0, 2.5), med("Z", "other", 0, 1))
		uc := NewOrderUsecase(newFakeOrderRepo(), medRepo, fakeTxManager{}, 10000)
		ctx := context.Background()

		_, err := uc.PlaceOrder(ctx, testUser, "ACME", nil)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)

		_, err = uc.PlaceOrder(ctx, testUser, "", []OrderLineRequest{{MedicineID: "X", Quantity: 1}})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)

		_, err = uc.PlaceOrder(ctx, testUser, "ACME", []OrderLineRequest{
			{MedicineID: "X", Quantity: 1},
			{MedicineID: "X", Quantity: 2},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)

		_, err = uc.PlaceOrder(ctx, testUser, "ACME", []OrderLineRequest{{MedicineID: "X", Quantity: 0}})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)

		// Another shop's medicine is invisible here.
		_, err = uc.PlaceOrder(ctx, testUser, "ACME", []OrderLineRequest{{MedicineID: "Z", Quantity: 1}})
		assert.ErrorIs(t, err, domain.ErrMedicineNotFound)
	})

	t.Run("enforces the per-line quantity limit", func(t *testing.T) {
		medRepo := newFakeMedicineRepo(med("X", testUser, 0, 2.5))
		uc := NewOrderUsecase(newFakeOrderRepo(), medRepo, fakeTxManager{}, 100)

		_, err := uc.PlaceOrder(context.Background(), testUser, "ACME",
			[]OrderLineRequest{{MedicineID: "X", Quantity: 101}})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})
}

// The canonical lifecycle: partial accept, partial cancel, then accept the
// rest. Stock only moves for accepted goods and the order completes.
func TestReconciliationLifecycle(t *testing.T) {
	uc, _, medRepo, order := newOrderFixture(t)
	ctx := context.Background()

	order, err := uc.PartialAccept(ctx, testUser, order.ID, "", map[string]int{"X": 7})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPartiallyAccepted, order.Status)
	assert.Equal(t, 7, medRepo.stock("X"))

	order, err = uc.PartialCancel(ctx, testUser, order.ID, "", map[string]int{"Y": 5})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPartiallyAccepted, order.Status)
	assert.Equal(t, 0, medRepo.stock("Y"))

	order, err = uc.AcceptRest(ctx, testUser, order.ID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, order.Status)

	rest := order.Bucket(domain.BucketAcceptedRest)
	require.Len(t, rest, 1)
	assert.Equal(t, "X", rest[0].MedicineID)
	assert.Equal(t, 3, rest[0].Quantity)

	assert.Equal(t, 10, medRepo.stock("X"))
	assert.Equal(t, 0, medRepo.stock("Y"))
}

func TestPartialAcceptOverRequest(t *testing.T) {
	uc, orderRepo, medRepo, order := newOrderFixture(t)

	_, err := uc.PartialAccept(context.Background(), testUser, order.ID, "", map[string]int{"X": 20})
	assert.ErrorIs(t, err, domain.ErrNoValidSelection)

	// Nothing changed anywhere.
	stored, err := orderRepo.GetByID(context.Background(), order.ID, testUser)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.Empty(t, stored.Ledger)
	assert.Equal(t, 0, medRepo.stock("X"))
}

func TestPartialOpsRejectEmptySelection(t *testing.T) {
	uc, _, _, order := newOrderFixture(t)

	_, err := uc.PartialAccept(context.Background(), testUser, order.ID, "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	_, err = uc.PartialCancel(context.Background(), testUser, order.ID, "", map[string]int{})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestAcceptAll(t *testing.T) {
	uc, _, medRepo, order := newOrderFixture(t)
	ctx := context.Background()

	order, err := uc.PartialCancel(ctx, testUser, order.ID, "", map[string]int{"Y": 2})
	require.NoError(t, err)

	order, err = uc.AcceptAll(ctx, testUser, order.ID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, order.Status)

	// X in full, plus Y's uncancelled remainder.
	assert.Equal(t, 10, medRepo.stock("X"))
	assert.Equal(t, 3, medRepo.stock("Y"))
}

func TestCancelAll(t *testing.T) {
	uc, _, medRepo, order := newOrderFixture(t)
	ctx := context.Background()

	order, err := uc.CancelAll(ctx, testUser, order.ID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, order.Status)
	assert.Empty(t, order.Ledger)
	assert.Equal(t, 0, medRepo.stock("X"))

	// A finalized order rejects further reconciliation.
	_, err = uc.AcceptRest(ctx, testUser, order.ID, "")
	assert.ErrorIs(t, err, domain.ErrOrderFinalized)
}

func TestAcceptRestReplayIsRejected(t *testing.T) {
	uc, _, medRepo, order := newOrderFixture(t)
	ctx := context.Background()

	order, err := uc.AcceptRest(ctx, testUser, order.ID, "")
	require.NoError(t, err)
	require.Equal(t, domain.StatusAccepted, order.Status)
	require.Equal(t, 10, medRepo.stock("X"))

	_, err = uc.AcceptRest(ctx, testUser, order.ID, "")
	assert.ErrorIs(t, err, domain.ErrOrderFinalized)
	// No double receipt.
	assert.Equal(t, 10, medRepo.stock("X"))
}

func TestDuplicateRequestID(t *testing.T) {
	uc, _, medRepo, order := newOrderFixture(t)
	ctx := context.Background()

	_, err := uc.PartialAccept(ctx, testUser, order.ID, "req-1", map[string]int{"X": 2})
	require.NoError(t, err)

	_, err = uc.PartialAccept(ctx, testUser, order.ID, "req-1", map[string]int{"X": 2})
	assert.ErrorIs(t, err, domain.ErrDuplicateRequest)
	assert.Equal(t, 2, medRepo.stock("X"))
}

func TestStockFailureAbortsReconciliation(t *testing.T) {
	uc, orderRepo, medRepo, order := newOrderFixture(t)
	medRepo.incrementErr = domain.ErrMedicineNotFound

	_, err := uc.PartialAccept(context.Background(), testUser, order.ID, "", map[string]int{"X": 7})
	assert.ErrorIs(t, err, domain.ErrMedicineNotFound)

	// The order write never happened, so the ledger stays empty.
	stored, err := orderRepo.GetByID(context.Background(), order.ID, testUser)
	require.NoError(t, err)
	assert.Empty(t, stored.Ledger)
	assert.Equal(t, domain.StatusPending, stored.Status)
}

func TestConcurrencyConflictSurfaces(t *testing.T) {
	uc, orderRepo, _, order := newOrderFixture(t)
	orderRepo.updateErr = domain.ErrConcurrencyConflict

	_, err := uc.AcceptRest(context.Background(), testUser, order.ID, "")
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
}

func TestRefundFlags(t *testing.T) {
	uc, orderRepo, _, order := newOrderFixture(t)
	ctx := context.Background()

	order, err := uc.CancelAll(ctx, testUser, order.ID, "")
	require.NoError(t, err)

	order, err = uc.MarkPartialRefundReceived(ctx, testUser, order.ID)
	require.NoError(t, err)
	assert.True(t, order.PartialRefundReceived)
	assert.False(t, order.FullRefundReceived)
	versionAfterFirst := order.Version

	// Refund flags may change on a terminal order, and re-marking is a no-op.
	order, err = uc.MarkPartialRefundReceived(ctx, testUser, order.ID)
	require.NoError(t, err)
	assert.True(t, order.PartialRefundReceived)
	assert.Equal(t, versionAfterFirst, order.Version)

	order, err = uc.MarkFullRefundReceived(ctx, testUser, order.ID)
	require.NoError(t, err)
	assert.True(t, order.FullRefundReceived)

	order, err = uc.MarkRefundReceived(ctx, testUser, order.ID)
	require.NoError(t, err)
	assert.True(t, order.RefundReceived)

	stored, err := orderRepo.GetByID(ctx, order.ID, testUser)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
}

func TestTenancyScoping(t *testing.T) {
	uc, _, _, order := newOrderFixture(t)

	_, err := uc.GetOrder(context.Background(), "other-shop", order.ID)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	_, err = uc.AcceptRest(context.Background(), "other-shop", order.ID, "")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
