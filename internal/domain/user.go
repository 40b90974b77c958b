package domain

import (
	"context"
	"time"
)

type ContextKey string

const UserContextKey ContextKey = "user"

// User is a pharmacy shop account. Username is the tenancy boundary: every
// medicine, order and bill belongs to exactly one username and queries are
// always scoped by it.
type User struct {
	ID        string    `json:"id"` // UUID
	Username  string    `json:"username"`
	Password  string    `json:"-"` // bcrypt hash
	ShopName  string    `json:"shopName"`
	Mobile    string    `json:"mobile"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	UpdateProfile(ctx context.Context, id, shopName, mobile, email, address string) (*User, error)
}

// TransactionManager runs fn inside a single database transaction. Every
// reconciliation request executes as one such unit of work so that stock
// increments and the order write commit or roll back together.
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
