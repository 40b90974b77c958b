package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"pharmacare-backend/internal/domain"
	"pharmacare-backend/pkg/logger"
	"pharmacare-backend/pkg/utils"
)

var mobileNumberPattern = regexp.MustCompile(`^[6-9]\d{9}$`)

// BillUsecase creates point-of-sale bills. Billing is the only consumer of the
// inventory ledger's decrement path: each line's stock is taken atomically and
// an insufficient-stock failure aborts the whole bill.
type BillUsecase struct {
	billRepo     domain.BillRepository
	medicineRepo domain.MedicineRepository
	txManager    domain.TransactionManager
}

func NewBillUsecase(billRepo domain.BillRepository, medicineRepo domain.MedicineRepository, txManager domain.TransactionManager) *BillUsecase {
	return &BillUsecase{
		billRepo:     billRepo,
		medicineRepo: medicineRepo,
		txManager:    txManager,
	}
}

func (u *BillUsecase) MakeBill(ctx context.Context, username, customerName, mobileNumber string, items []OrderLineRequest) (*domain.Bill, error) {
	customerName = strings.TrimSpace(customerName)
	mobileNumber = strings.TrimSpace(mobileNumber)

	if customerName == "" || len(items) == 0 {
		return nil, fmt.Errorf("%w: customer name and at least one medicine are required", domain.ErrInvalidRequest)
	}
	if !mobileNumberPattern.MatchString(mobileNumber) {
		return nil, fmt.Errorf("%w: invalid mobile number", domain.ErrInvalidRequest)
	}

	var bill *domain.Bill
	err := u.txManager.Do(ctx, func(txCtx context.Context) error {
		var (
			billItems []domain.OrderLine
			total     float64
		)
		for _, item := range items {
			if item.Quantity < 1 {
				return fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidRequest)
			}

			med, err := u.medicineRepo.GetByID(txCtx, item.MedicineID)
			if err != nil {
				return err
			}
			if med.Username != username {
				return domain.ErrMedicineNotFound
			}

			if err := u.medicineRepo.DecrementStock(txCtx, med.ID, item.Quantity); err != nil {
				return fmt.Errorf("%w for %s", err, med.Name)
			}

			billItems = append(billItems, domain.OrderLine{
				MedicineID: med.ID,
				Name:       med.Name,
				Quantity:   item.Quantity,
				Price:      med.Price,
			})
			total += med.Price * float64(item.Quantity)
		}

		number, err := u.uniqueBillNumber(txCtx)
		if err != nil {
			return err
		}

		bill = &domain.Bill{
			ID:           utils.GenerateUUID(),
			BillNumber:   number,
			Username:     username,
			CustomerName: customerName,
			MobileNumber: mobileNumber,
			Items:        billItems,
			TotalAmount:  total,
		}
		return u.billRepo.Create(txCtx, bill)
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Info().
		Int64("bill_number", bill.BillNumber).
		Str("username", username).
		Float64("total", bill.TotalAmount).
		Msg("bill created")

	return bill, nil
}

func (u *BillUsecase) uniqueBillNumber(ctx context.Context) (int64, error) {
	for {
		number := utils.GenerateBillNumber()
		exists, err := u.billRepo.BillNumberExists(ctx, number)
		if err != nil {
			return 0, err
		}
		if !exists {
			return number, nil
		}
	}
}

func (u *BillUsecase) GetBill(ctx context.Context, username, id string) (*domain.Bill, error) {
	return u.billRepo.GetByID(ctx, id, username)
}

func (u *BillUsecase) ListBills(ctx context.Context, username string) ([]domain.Bill, error) {
	return u.billRepo.ListByUsername(ctx, username)
}
