// Package user defines accounts, saved addresses, and login sessions.
package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when a requested user does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned on a failed login. It deliberately
	// does not distinguish a missing account from a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAddressNotFound is returned for a missing saved address.
	ErrAddressNotFound = errors.New("address not found")
)

// Role separates customers from store administrators.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Address is a saved delivery address used to prefill checkout.
type Address struct {
	ID            string `json:"id"`
	Label         string `json:"label"` // e.g. "Home", "Work"
	RecipientName string `json:"recipient_name"`
	Phone         string `json:"phone"`
	City          string `json:"city"`
	Street        string `json:"street"`
	IsDefault     bool   `json:"is_default"`
}

// User is a store account. PasswordHash is an HMAC-SHA256 of the password
// with a server-side pepper; this is demo-grade authentication, not a
// hardened credential store.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	JoinedAt     time.Time
	Addresses    []Address
}

// Repository defines account persistence. Addresses ride along on the user
// row and are replaced wholesale by Update.
type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
}
