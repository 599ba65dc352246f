package order

import "errors"

var (
	ErrIncompleteRequest        = errors.New("order request is missing required fields")
	ErrUnsupportedPaymentMethod = errors.New("unsupported payment method")
	ErrInvalidCartReference     = errors.New("requested variant is not in the cart")
	ErrOrderCreationFailed      = errors.New("failed to create order")
)
