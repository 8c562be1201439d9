package party

import (
	"context"

	"ledgerpost/internal/core/apperror"
	"ledgerpost/internal/core/id"
	"ledgerpost/internal/core/tx"
	"ledgerpost/pkg/logger"
)

// Service provides party master operations.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a party service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// Create validates and persists a new party.
func (s *Service) Create(ctx context.Context, p *Party) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if existing, err := s.repo.GetByCode(ctx, p.Code); err == nil && existing != nil {
			return apperror.NewDuplicate("party", "code", p.Code)
		} else if err != nil && !apperror.IsNotFound(err) {
			return err
		}

		if err := s.repo.Create(ctx, p); err != nil {
			return err
		}

		logger.Info(ctx, "party created", "party_id", p.ID, "code", p.Code, "kind", p.Kind)
		return nil
	})
}

// Update validates and persists party changes.
func (s *Service) Update(ctx context.Context, p *Party) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByID(ctx, p.ID); err != nil {
			return err
		}
		p.Touch()
		return s.repo.Update(ctx, p)
	})
}

// GetByID loads one party.
func (s *Service) GetByID(ctx context.Context, partyID id.ID) (*Party, error) {
	return s.repo.GetByID(ctx, partyID)
}

// List returns parties matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Party, error) {
	return s.repo.List(ctx, filter)
}

// SetDeletionMark toggles the soft-delete flag.
func (s *Service) SetDeletionMark(ctx context.Context, partyID id.ID, mark bool) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.SetDeletionMark(ctx, partyID, mark)
	})
}
