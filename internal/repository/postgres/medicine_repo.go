package postgres

import (
	"context"
	"errors"

	"pharmacare-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type medicineRepository struct {
	db *pgxpool.Pool
}

func NewMedicineRepository(db *pgxpool.Pool) domain.MedicineRepository {
	return &medicineRepository{db: db}
}

const medicineColumns = `id, username, name, quantity, price, created_at, updated_at`

func scanMedicine(row pgx.Row) (*domain.Medicine, error) {
	var m domain.Medicine
	err := row.Scan(&m.ID, &m.Username, &m.Name, &m.Quantity, &m.Price, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrMedicineNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *medicineRepository) Create(ctx context.Context, med *domain.Medicine) error {
	q := queryerFrom(ctx, r.db)
	return q.QueryRow(ctx, `
		INSERT INTO medicines (id, username, name, quantity, price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		med.ID, med.Username, med.Name, med.Quantity, med.Price,
	).Scan(&med.CreatedAt, &med.UpdatedAt)
}

func (r *medicineRepository) GetByID(ctx context.Context, id string) (*domain.Medicine, error) {
	q := queryerFrom(ctx, r.db)
	return scanMedicine(q.QueryRow(ctx,
		`SELECT `+medicineColumns+` FROM medicines WHERE id = $1`, id))
}

func (r *medicineRepository) ListByUsername(ctx context.Context, username string) ([]domain.Medicine, error) {
	q := queryerFrom(ctx, r.db)
	rows, err := q.Query(ctx,
		`SELECT `+medicineColumns+` FROM medicines WHERE username = $1 ORDER BY name`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meds []domain.Medicine
	for rows.Next() {
		var m domain.Medicine
		if err := rows.Scan(&m.ID, &m.Username, &m.Name, &m.Quantity, &m.Price, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		meds = append(meds, m)
	}
	return meds, rows.Err()
}

func (r *medicineRepository) Update(ctx context.Context, med *domain.Medicine) error {
	q := queryerFrom(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE medicines
		SET name = $2, quantity = $3, price = $4, updated_at = now()
		WHERE id = $1 AND username = $5`,
		med.ID, med.Name, med.Quantity, med.Price, med.Username)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMedicineNotFound
	}
	return nil
}

// IncrementStock is a single atomic read-modify-write; concurrent increments
// against the same medicine serialize on the row without lost updates.
func (r *medicineRepository) IncrementStock(ctx context.Context, id string, qty int) error {
	q := queryerFrom(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE medicines
		SET quantity = quantity + $2, updated_at = now()
		WHERE id = $1`,
		id, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMedicineNotFound
	}
	return nil
}

// DecrementStock refuses to take stock below zero: the guard lives in the
// WHERE clause so the check and the write are one statement.
func (r *medicineRepository) DecrementStock(ctx context.Context, id string, qty int) error {
	q := queryerFrom(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE medicines
		SET quantity = quantity - $2, updated_at = now()
		WHERE id = $1 AND quantity >= $2`,
		id, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Either the row is missing or the stock was too low.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domain.ErrInsufficientStock
	}
	return nil
}
