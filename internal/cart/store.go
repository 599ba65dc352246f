package cart

import (
	"context"
	"errors"
)

// Store holds each user's cart as a mapping from variant id to desired
// quantity. The commit engine reads quantities during checkout and deletes
// the consumed entries afterwards.
type Store interface {
	GetQuantity(ctx context.Context, userID, variantID int64) (int, error)
	SetQuantity(ctx context.Context, userID, variantID int64, quantity int) error
	DeleteEntries(ctx context.Context, userID int64, variantIDs ...int64) error
}

var ErrEntryNotFound = errors.New("cart entry not found")
