package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/susu25/dailyfresh/internal/domain"
	"github.com/susu25/dailyfresh/internal/repository"
)

// CatalogService is what the admin handlers need from the catalog.
type CatalogService interface {
	SaveVariant(ctx context.Context, variant *domain.ProductVariant) error
	DeleteVariant(ctx context.Context, id int64) error
	GetVariant(ctx context.Context, id int64) (*domain.ProductVariant, error)
}

type CatalogHandler struct {
	service CatalogService
	timeout time.Duration
}

func NewCatalogHandler(service CatalogService, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		timeout: timeout,
	}
}

type VariantDTO struct {
	ID    int64   `json:"id,omitempty"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
	Sales int     `json:"sales,omitempty"`
}

// POST /api/v1/admin/variants
func (h *CatalogHandler) CreateVariant(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req VariantDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Name == "" || req.Price < 0 || req.Stock < 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "name, non-negative price and stock are required")
		return
	}

	variant := &domain.ProductVariant{
		Name:  req.Name,
		Price: req.Price,
		Stock: req.Stock,
	}
	if err := h.service.SaveVariant(ctx, variant); err != nil {
		handleOrderError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, VariantDTO{
		ID:    variant.ID,
		Name:  variant.Name,
		Price: variant.Price,
		Stock: variant.Stock,
	})
}

// PUT /api/v1/admin/variants/{variant_id}
func (h *CatalogHandler) UpdateVariant(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := strconv.ParseInt(chi.URLParam(r, "variant_id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid variant id")
		return
	}

	var req VariantDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Name == "" || req.Price < 0 || req.Stock < 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "name, non-negative price and stock are required")
		return
	}

	variant := &domain.ProductVariant{
		ID:    id,
		Name:  req.Name,
		Price: req.Price,
		Stock: req.Stock,
	}
	if err := h.service.SaveVariant(ctx, variant); err != nil {
		handleOrderError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, VariantDTO{
		ID:    variant.ID,
		Name:  variant.Name,
		Price: variant.Price,
		Stock: variant.Stock,
	})
}

// DELETE /api/v1/admin/variants/{variant_id}
func (h *CatalogHandler) DeleteVariant(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := strconv.ParseInt(chi.URLParam(r, "variant_id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid variant id")
		return
	}

	if err := h.service.DeleteVariant(ctx, id); err != nil {
		if errors.Is(err, repository.ErrVariantNotFound) {
			respondError(w, http.StatusNotFound, "variant_not_found", err.Error())
			return
		}
		handleOrderError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/admin/variants/{variant_id}
func (h *CatalogHandler) GetVariant(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := strconv.ParseInt(chi.URLParam(r, "variant_id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid variant id")
		return
	}

	variant, err := h.service.GetVariant(ctx, id)
	if err != nil {
		handleOrderError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, VariantDTO{
		ID:    variant.ID,
		Name:  variant.Name,
		Price: variant.Price,
		Stock: variant.Stock,
		Sales: variant.Sales,
	})
}
