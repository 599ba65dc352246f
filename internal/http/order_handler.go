package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/susu25/dailyfresh/internal/domain"
	"github.com/susu25/dailyfresh/internal/order"
	"github.com/susu25/dailyfresh/internal/repository"
)

// OrderService is what the handlers need from the commit engine.
type OrderService interface {
	Preview(ctx context.Context, request *order.PreviewRequest) (*order.Preview, error)
	Commit(ctx context.Context, request *order.CommitRequest) (string, error)
	GetOrder(ctx context.Context, userID int64, orderID string) (*domain.Order, error)
	ListOrders(ctx context.Context, userID int64) ([]*domain.Order, error)
}

type OrderHandler struct {
	service OrderService
	timeout time.Duration
}

func NewOrderHandler(service OrderService, timeout time.Duration) *OrderHandler {
	return &OrderHandler{
		service: service,
		timeout: timeout,
	}
}

type PreviewRequestDTO struct {
	VariantIDs []int64 `json:"variant_ids"`
}

type PricedItemDTO struct {
	VariantID   int64   `json:"variant_id"`
	VariantName string  `json:"variant_name"`
	UnitPrice   float64 `json:"unit_price"`
	Stock       int     `json:"stock"`
	Quantity    int     `json:"quantity"`
	Subtotal    float64 `json:"subtotal"`
}

type PreviewResponseDTO struct {
	Items        []PricedItemDTO  `json:"items"`
	TotalCount   int              `json:"total_count"`
	TotalPrice   float64          `json:"total_price"`
	TransitPrice float64          `json:"transit_price"`
	TotalPay     float64          `json:"total_pay"`
	Addresses    []domain.Address `json:"addresses"`
}

type CommitRequestDTO struct {
	AddressID  int64   `json:"address_id"`
	PayMethod  string  `json:"pay_method"`
	VariantIDs []int64 `json:"variant_ids"`
}

type CommitResponseDTO struct {
	OrderID string `json:"order_id"`
}

type OrderLineItemDTO struct {
	VariantID   int64   `json:"variant_id"`
	VariantName string  `json:"variant_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type OrderResponseDTO struct {
	ID           string             `json:"id"`
	AddressID    int64              `json:"address_id"`
	PayMethod    string             `json:"pay_method"`
	TotalCount   int                `json:"total_count"`
	TotalPrice   float64            `json:"total_price"`
	TransitPrice float64            `json:"transit_price"`
	Status       string             `json:"status"`
	Items        []OrderLineItemDTO `json:"items"`
	CreatedAt    string             `json:"created_at"`
}

// POST /api/v1/orders/preview
func (h *OrderHandler) Preview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req PreviewRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	preview, err := h.service.Preview(ctx, &order.PreviewRequest{
		UserID:     userID,
		VariantIDs: req.VariantIDs,
	})
	if err != nil {
		handleOrderError(w, err)
		return
	}

	items := make([]PricedItemDTO, 0, len(preview.Items))
	for _, item := range preview.Items {
		items = append(items, PricedItemDTO{
			VariantID:   item.Variant.ID,
			VariantName: item.Variant.Name,
			UnitPrice:   item.Variant.Price,
			Stock:       item.Variant.Stock,
			Quantity:    item.Quantity,
			Subtotal:    item.Subtotal,
		})
	}

	addresses := preview.Addresses
	if addresses == nil {
		addresses = make([]domain.Address, 0)
	}

	respondJSON(w, http.StatusOK, PreviewResponseDTO{
		Items:        items,
		TotalCount:   preview.TotalCount,
		TotalPrice:   preview.TotalPrice,
		TransitPrice: preview.TransitPrice,
		TotalPay:     preview.TotalPay,
		Addresses:    addresses,
	})
}

// POST /api/v1/orders
func (h *OrderHandler) Commit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req CommitRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	orderID, err := h.service.Commit(ctx, &order.CommitRequest{
		UserID:     userID,
		AddressID:  req.AddressID,
		PayMethod:  domain.PaymentMethod(req.PayMethod),
		VariantIDs: req.VariantIDs,
	})
	if err != nil {
		handleOrderError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, CommitResponseDTO{OrderID: orderID})
}

// GET /api/v1/orders/{order_id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orderID := chi.URLParam(r, "order_id")
	if orderID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "order_id is required")
		return
	}

	o, err := h.service.GetOrder(ctx, userID, orderID)
	if err != nil {
		handleOrderError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertOrder(o))
}

// GET /api/v1/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orders, err := h.service.ListOrders(ctx, userID)
	if err != nil {
		handleOrderError(w, err)
		return
	}

	dtos := make([]OrderResponseDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, convertOrder(o))
	}

	respondJSON(w, http.StatusOK, dtos)
}

func convertOrder(o *domain.Order) OrderResponseDTO {
	items := make([]OrderLineItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderLineItemDTO{
			VariantID:   item.VariantID,
			VariantName: item.VariantName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	return OrderResponseDTO{
		ID:           o.ID,
		AddressID:    o.AddressID,
		PayMethod:    string(o.PayMethod),
		TotalCount:   o.TotalCount,
		TotalPrice:   o.TotalPrice,
		TransitPrice: o.TransitPrice,
		Status:       string(o.Status),
		Items:        items,
		CreatedAt:    o.CreatedAt.Format(time.RFC3339),
	}
}

func getUserIDFromContext(ctx context.Context) int64 {
	if userID, ok := ctx.Value("user_id").(int64); ok {
		return userID
	}
	return 0
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleOrderError maps engine errors to discriminated response codes.
func handleOrderError(w http.ResponseWriter, err error) {
	var stockErr *repository.InsufficientStockError
	if errors.As(err, &stockErr) {
		respondJSON(w, http.StatusConflict, struct {
			ErrorResponse
			VariantID int64 `json:"variant_id"`
		}{
			ErrorResponse: ErrorResponse{Error: stockErr.Error(), Code: "insufficient_stock"},
			VariantID:     stockErr.VariantID,
		})
		return
	}

	switch {
	case errors.Is(err, order.ErrIncompleteRequest):
		respondError(w, http.StatusBadRequest, "incomplete_request", err.Error())
	case errors.Is(err, order.ErrUnsupportedPaymentMethod):
		respondError(w, http.StatusBadRequest, "unsupported_payment_method", err.Error())
	case errors.Is(err, order.ErrInvalidCartReference):
		respondError(w, http.StatusBadRequest, "invalid_cart_reference", err.Error())
	case errors.Is(err, repository.ErrAddressNotFound):
		respondError(w, http.StatusNotFound, "address_not_found", err.Error())
	case errors.Is(err, repository.ErrVariantNotFound):
		respondError(w, http.StatusNotFound, "variant_not_found", err.Error())
	case errors.Is(err, repository.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, order.ErrOrderCreationFailed):
		respondError(w, http.StatusInternalServerError, "order_creation_failed", err.Error())
	default:
		log.Printf("unexpected order error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
