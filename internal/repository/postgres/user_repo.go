package postgres

import (
	"context"
	"errors"

	"pharmacare-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type userRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) domain.UserRepository {
	return &userRepository{db: db}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	q := queryerFrom(ctx, r.db)
	err := q.QueryRow(ctx, `
		INSERT INTO users (id, username, password_hash, shop_name, mobile, email, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		user.ID, user.Username, user.Password, user.ShopName, user.Mobile, user.Email, user.Address,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrUsernameTaken
	}
	return err
}

func (r *userRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.Password, &u.ShopName, &u.Mobile,
		&u.Email, &u.Address, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const userColumns = `id, username, password_hash, shop_name, mobile, email, address, created_at, updated_at`

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	q := queryerFrom(ctx, r.db)
	return r.scanUser(q.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	q := queryerFrom(ctx, r.db)
	return r.scanUser(q.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *userRepository) UpdateProfile(ctx context.Context, id, shopName, mobile, email, address string) (*domain.User, error) {
	q := queryerFrom(ctx, r.db)
	return r.scanUser(q.QueryRow(ctx, `
		UPDATE users
		SET shop_name = $2, mobile = $3, email = $4, address = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, shopName, mobile, email, address))
}
