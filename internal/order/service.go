package order

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/susu25/dailyfresh/internal/cart"
	"github.com/susu25/dailyfresh/internal/dispatch"
	"github.com/susu25/dailyfresh/internal/domain"
	"github.com/susu25/dailyfresh/internal/repository"
)

const (
	// DefaultTransitPrice is the flat shipping fee charged per order.
	DefaultTransitPrice = 10.0

	// maxOrderIDAttempts bounds how often a commit is retried with a fresh
	// order id after an insert-time collision.
	maxOrderIDAttempts = 3
)

type Config struct {
	TransitPrice float64
}

// Service is the sole authority that turns a cart selection into a durable
// order. It validates the request, prices the selection from live catalog
// data, and hands the repository one atomic unit of order header, line items
// and stock decrements.
type Service struct {
	repo         repository.Store
	cart         cart.Store
	dispatcher   dispatch.Dispatcher
	transitPrice float64
}

func NewService(repo repository.Store, cartStore cart.Store, dispatcher dispatch.Dispatcher, cfg Config) *Service {
	transitPrice := cfg.TransitPrice
	if transitPrice <= 0 {
		transitPrice = DefaultTransitPrice
	}
	return &Service{
		repo:         repo,
		cart:         cartStore,
		dispatcher:   dispatcher,
		transitPrice: transitPrice,
	}
}

type PreviewRequest struct {
	UserID     int64
	VariantIDs []int64
}

// Preview is the priced breakdown of a selection before commit, plus the
// user's candidate shipping addresses.
type Preview struct {
	Items        []domain.PricedItem
	TotalCount   int
	TotalPrice   float64
	TransitPrice float64
	TotalPay     float64
	Addresses    []domain.Address
}

// Preview prices a cart selection without mutating anything.
func (s *Service) Preview(ctx context.Context, request *PreviewRequest) (*Preview, error) {
	if request.UserID == 0 || len(request.VariantIDs) == 0 {
		return nil, ErrIncompleteRequest
	}

	ids := dedupeIDs(request.VariantIDs)

	preview := &Preview{
		Items:        make([]domain.PricedItem, 0, len(ids)),
		TransitPrice: s.transitPrice,
	}

	for _, id := range ids {
		quantity, err := s.cart.GetQuantity(ctx, request.UserID, id)
		if errors.Is(err, cart.ErrEntryNotFound) {
			return nil, ErrInvalidCartReference
		}
		if err != nil {
			return nil, err
		}

		variant, err := s.repo.GetVariant(ctx, id)
		if err != nil {
			return nil, err
		}

		subtotal := variant.Price * float64(quantity)
		preview.Items = append(preview.Items, domain.PricedItem{
			Variant:  *variant,
			Quantity: quantity,
			Subtotal: subtotal,
		})
		preview.TotalCount += quantity
		preview.TotalPrice += subtotal
	}

	preview.TotalPay = preview.TotalPrice + preview.TransitPrice

	addresses, err := s.repo.ListAddresses(ctx, request.UserID)
	if err != nil {
		return nil, err
	}
	preview.Addresses = addresses

	return preview, nil
}

type CommitRequest struct {
	UserID     int64
	AddressID  int64
	PayMethod  domain.PaymentMethod
	VariantIDs []int64
}

type confirmationPayload struct {
	OrderID    string  `json:"order_id"`
	UserID     int64   `json:"user_id"`
	TotalCount int     `json:"total_count"`
	TotalPay   float64 `json:"total_pay"`
}

// Commit validates the request, snapshots prices and quantities, and
// persists the order atomically with the inventory decrements. On success it
// cleans the consumed cart entries and enqueues the confirmation task; both
// are best-effort and never fail an already-committed order.
func (s *Service) Commit(ctx context.Context, request *CommitRequest) (string, error) {
	if request.UserID == 0 || request.AddressID == 0 || request.PayMethod == "" || len(request.VariantIDs) == 0 {
		return "", ErrIncompleteRequest
	}

	if !request.PayMethod.Supported() {
		return "", ErrUnsupportedPaymentMethod
	}

	if _, err := s.repo.GetAddress(ctx, request.UserID, request.AddressID); err != nil {
		return "", err
	}

	ids := dedupeIDs(request.VariantIDs)

	order := &domain.Order{
		UserID:       request.UserID,
		AddressID:    request.AddressID,
		PayMethod:    request.PayMethod,
		TransitPrice: s.transitPrice,
		Status:       domain.OrderStatusPendingPayment,
		Items:        make([]domain.OrderLineItem, 0, len(ids)),
	}

	for _, id := range ids {
		quantity, err := s.cart.GetQuantity(ctx, request.UserID, id)
		if errors.Is(err, cart.ErrEntryNotFound) {
			// Also covers a concurrent double-submit of the same cart: the
			// first commit consumed the entries, so the duplicate fails here
			// instead of charging inventory twice.
			return "", repository.ErrVariantNotFound
		}
		if err != nil {
			return "", err
		}

		variant, err := s.repo.GetVariant(ctx, id)
		if err != nil {
			return "", err
		}

		order.Items = append(order.Items, domain.OrderLineItem{
			VariantID:   variant.ID,
			VariantName: variant.Name,
			Quantity:    quantity,
			UnitPrice:   variant.Price,
		})
		order.TotalCount += quantity
		order.TotalPrice += variant.Price * float64(quantity)
	}

	committed := false
	for attempt := 1; attempt <= maxOrderIDAttempts; attempt++ {
		order.ID = NewOrderID(time.Now(), request.UserID)

		err := s.repo.CommitOrder(ctx, order)
		if errors.Is(err, repository.ErrDuplicateOrderID) {
			log.Printf("order id collision on attempt %d for user %d, retrying", attempt, request.UserID)
			continue
		}
		if err != nil {
			return "", err
		}
		committed = true
		break
	}
	if !committed {
		return "", ErrOrderCreationFailed
	}

	if err := s.cart.DeleteEntries(ctx, request.UserID, ids...); err != nil {
		// A stale cart entry is self-correcting: the next commit revalidates
		// against live stock.
		log.Printf("cart cleanup failed for user %d after order %s: %v", request.UserID, order.ID, err)
	}

	payload := confirmationPayload{
		OrderID:    order.ID,
		UserID:     order.UserID,
		TotalCount: order.TotalCount,
		TotalPay:   order.TotalPrice + order.TransitPrice,
	}
	if err := s.dispatcher.Enqueue(ctx, dispatch.TaskOrderConfirmation, payload); err != nil {
		log.Printf("failed to enqueue confirmation for order %s: %v", order.ID, err)
	}

	return order.ID, nil
}

// GetOrder returns one of the user's orders with its line items.
func (s *Service) GetOrder(ctx context.Context, userID int64, orderID string) (*domain.Order, error) {
	return s.repo.GetOrderByID(ctx, userID, orderID)
}

// ListOrders returns the user's orders, newest first.
func (s *Service) ListOrders(ctx context.Context, userID int64) ([]*domain.Order, error) {
	return s.repo.ListOrdersByUserID(ctx, userID)
}

// dedupeIDs keeps the first occurrence of each variant id; the quantity for
// an id always comes from the cart, so repeating an id must not double it.
func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	result := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
