package catalog

import (
	"context"
	"log"

	"github.com/susu25/dailyfresh/internal/dispatch"
	"github.com/susu25/dailyfresh/internal/domain"
	"github.com/susu25/dailyfresh/internal/pagecache"
	"github.com/susu25/dailyfresh/internal/repository"
)

// Service applies catalog mutations outside the commit path. Every mutation
// drops the cached landing page and enqueues its regeneration; regeneration
// is idempotent, so running it redundantly is harmless.
type Service struct {
	repo       repository.Store
	pages      pagecache.Cache
	dispatcher dispatch.Dispatcher
}

func NewService(repo repository.Store, pages pagecache.Cache, dispatcher dispatch.Dispatcher) *Service {
	return &Service{
		repo:       repo,
		pages:      pages,
		dispatcher: dispatcher,
	}
}

func (s *Service) SaveVariant(ctx context.Context, variant *domain.ProductVariant) error {
	if err := s.repo.UpsertVariant(ctx, variant); err != nil {
		return err
	}

	s.invalidateIndexPage(ctx)
	return nil
}

func (s *Service) DeleteVariant(ctx context.Context, id int64) error {
	if err := s.repo.DeleteVariant(ctx, id); err != nil {
		return err
	}

	s.invalidateIndexPage(ctx)
	return nil
}

func (s *Service) GetVariant(ctx context.Context, id int64) (*domain.ProductVariant, error) {
	return s.repo.GetVariant(ctx, id)
}

func (s *Service) invalidateIndexPage(ctx context.Context) {
	if err := s.pages.InvalidateIndex(ctx); err != nil {
		log.Printf("failed to invalidate index page cache: %v", err)
	}
	if err := s.dispatcher.Enqueue(ctx, dispatch.TaskRegenerateIndexPage, struct{}{}); err != nil {
		log.Printf("failed to enqueue index page regeneration: %v", err)
	}
}
