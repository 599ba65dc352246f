package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/susu25/dailyfresh/internal/domain"
)

var (
	ErrVariantNotFound  = errors.New("variant not found")
	ErrAddressNotFound  = errors.New("address not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrDuplicateOrderID = errors.New("order with this id already exists")
)

// InsufficientStockError identifies the variant whose stock could not cover
// the requested quantity. The whole commit attempt rolls back when it occurs.
type InsufficientStockError struct {
	VariantID int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for variant %d", e.VariantID)
}

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// Store is the relational side of the storefront: catalog variants, the
// address book and orders with their line items. CommitOrder couples the
// inventory decrements and the order insert into one transaction.
type Store interface {
	GetVariant(ctx context.Context, id int64) (*domain.ProductVariant, error)
	UpsertVariant(ctx context.Context, variant *domain.ProductVariant) error
	DeleteVariant(ctx context.Context, id int64) error

	GetAddress(ctx context.Context, userID, addressID int64) (*domain.Address, error)
	ListAddresses(ctx context.Context, userID int64) ([]domain.Address, error)

	CommitOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, userID int64, orderID string) (*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID int64) ([]*domain.Order, error)

	RunMigrations(*Credentials) error
	Close() error
}
