package item

import (
	"context"

	"ledgerpost/internal/core/apperror"
	"ledgerpost/internal/core/id"
	"ledgerpost/internal/core/tx"
	"ledgerpost/pkg/logger"
)

// Service provides item master operations.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates an item service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// Create validates and persists a new item.
func (s *Service) Create(ctx context.Context, it *Item) error {
	if err := it.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if existing, err := s.repo.GetByCode(ctx, it.Code); err == nil && existing != nil {
			return apperror.NewDuplicate("item", "code", it.Code)
		} else if err != nil && !apperror.IsNotFound(err) {
			return err
		}

		if err := s.repo.Create(ctx, it); err != nil {
			return err
		}

		logger.Info(ctx, "item created", "item_id", it.ID, "code", it.Code)
		return nil
	})
}

// Update validates and persists item changes. Costing fields are
// ignored here; only the posting pipeline maintains them.
func (s *Service) Update(ctx context.Context, it *Item) error {
	if err := it.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByID(ctx, it.ID)
		if err != nil {
			return err
		}

		// Preserve posting-owned fields regardless of request payload.
		it.CurrentStock = current.CurrentStock
		it.LastCost = current.LastCost
		it.AvgCost = current.AvgCost

		it.Touch()
		return s.repo.Update(ctx, it)
	})
}

// GetByID loads one item.
func (s *Service) GetByID(ctx context.Context, itemID id.ID) (*Item, error) {
	return s.repo.GetByID(ctx, itemID)
}

// List returns items matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Item, error) {
	return s.repo.List(ctx, filter)
}

// SetDeletionMark toggles the soft-delete flag.
func (s *Service) SetDeletionMark(ctx context.Context, itemID id.ID, mark bool) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.SetDeletionMark(ctx, itemID, mark)
	})
}
