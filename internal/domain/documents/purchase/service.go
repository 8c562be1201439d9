package purchase

import (
	"context"

	"ledgerpost/internal/core/apperror"
	"ledgerpost/internal/core/id"
	"ledgerpost/internal/core/sequence"
	"ledgerpost/internal/core/tx"
	"ledgerpost/internal/domain/costing"
	"ledgerpost/internal/domain/masters/party"
	"ledgerpost/internal/domain/posting"
	"ledgerpost/internal/domain/registers/stock"
	"ledgerpost/pkg/logger"
)

// ConfirmCostingRequest carries the cost-sheet input for confirmation.
type ConfirmCostingRequest struct {
	Overheads   []OverheadCharge `json:"overheads"`
	Allocations []LineAllocation `json:"allocations"`
}

// Service orchestrates the purchase invoice lifecycle.
type Service struct {
	repo      Repository
	parties   party.Repository
	txManager tx.Manager
	engine    *posting.Engine
	costing   *costing.Engine
	stock     *stock.Service
}

// NewService creates a purchase service.
func NewService(
	repo Repository,
	parties party.Repository,
	txManager tx.Manager,
	engine *posting.Engine,
	costingEngine *costing.Engine,
	stockService *stock.Service,
) *Service {
	return &Service{
		repo:      repo,
		parties:   parties,
		txManager: txManager,
		engine:    engine,
		costing:   costingEngine,
		stock:     stockService,
	}
}

// Create validates and persists a new draft purchase.
func (s *Service) Create(ctx context.Context, p *Purchase) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkSupplier(ctx, p.SupplierID); err != nil {
			return err
		}
		p.RecalculateTotals()
		return s.repo.Create(ctx, p)
	})
}

// Update replaces the document content. Lines follow replace-all
// semantics: the previous set is deleted and the new one inserted in
// the same transaction.
func (s *Service) Update(ctx context.Context, p *Purchase) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, p.ID)
		if err != nil {
			return err
		}
		if err := current.CanModify(); err != nil {
			return err
		}
		if current.Cancelled {
			return apperror.NewDocumentCancelled(p.ID.String())
		}
		if current.Version != p.Version {
			return apperror.NewConcurrentModification("purchase", p.ID.String())
		}
		if err := s.checkSupplier(ctx, p.SupplierID); err != nil {
			return err
		}

		// Number and state flags are owned by the posting flow.
		p.Number = current.Number
		p.CostSheetPrepared = current.CostSheetPrepared
		p.CostConfirmed = current.CostConfirmed
		p.Posted = current.Posted
		p.Cancelled = current.Cancelled

		p.RecalculateTotals()
		p.Touch()

		if err := s.repo.UpdateHeader(ctx, p); err != nil {
			return err
		}
		return s.repo.ReplaceLines(ctx, p.ID, p.Lines)
	})
}

// SaveWithNumber allocates the business number on first numbered save.
// A document that already carries a number keeps it.
func (s *Service) SaveWithNumber(ctx context.Context, documentID id.ID) (*Purchase, error) {
	var result *Purchase
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetForUpdate(ctx, documentID)
		if err != nil {
			return err
		}
		if p.IsNumbered() {
			result = p
			return nil
		}
		if err := posting.GuardTransition(p, p.ID.String(), posting.StateNumbered); err != nil {
			return err
		}

		if err := s.engine.EnsureNumber(ctx, p, sequence.ScopePurchase); err != nil {
			return err
		}
		p.Touch()
		if err := s.repo.UpdateHeader(ctx, p); err != nil {
			return err
		}
		result = p
		return nil
	})
	return result, err
}

// ConfirmCosting finalizes the cost sheet: overheads onto the header,
// weighted-average costs onto items, receipt movements into the stock
// ledger, and the confirmation flag last. One transaction; a second
// call fails before any write.
func (s *Service) ConfirmCosting(ctx context.Context, documentID id.ID, req ConfirmCostingRequest) (*Purchase, error) {
	var result *Purchase
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetForUpdate(ctx, documentID)
		if err != nil {
			return err
		}
		if err := posting.GuardTransition(p, p.ID.String(), posting.StateCostConfirmed); err != nil {
			return err
		}

		if err := p.ApplyOverheads(req.Overheads); err != nil {
			return err
		}
		if err := p.ApplyAllocations(req.Allocations); err != nil {
			return err
		}
		if err := s.repo.ReplaceLines(ctx, p.ID, p.Lines); err != nil {
			return err
		}

		if _, err := s.costing.Apply(ctx, p.CostLines()); err != nil {
			return err
		}
		if err := s.stock.RecordMovements(ctx, p.ReceiptMovements()); err != nil {
			return err
		}

		p.MarkCostConfirmed()
		if err := s.repo.UpdateHeader(ctx, p); err != nil {
			return err
		}

		logger.Info(ctx, "purchase cost confirmed",
			"document_id", p.ID, "number", p.Number, "lines", len(p.Lines))
		result = p
		return nil
	})
	return result, err
}

// Cancel withdraws the document. Legal only before cost confirmation;
// the allocated number is retained.
func (s *Service) Cancel(ctx context.Context, documentID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetForUpdate(ctx, documentID)
		if err != nil {
			return err
		}
		if err := posting.GuardTransition(p, p.ID.String(), posting.StateCancelled); err != nil {
			return err
		}
		p.MarkCancelled()
		return s.repo.UpdateHeader(ctx, p)
	})
}

// SetToDraft clears cancellation and re-enables editing. The number is
// kept, never reallocated.
func (s *Service) SetToDraft(ctx context.Context, documentID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetForUpdate(ctx, documentID)
		if err != nil {
			return err
		}
		if !p.Cancelled {
			return apperror.NewInvalidTransition(
				string(posting.StateOf(p.Flags())), string(posting.StateNumbered))
		}
		p.ClearCancelled()
		return s.repo.UpdateHeader(ctx, p)
	})
}

// GetByID loads one purchase with lines.
func (s *Service) GetByID(ctx context.Context, documentID id.ID) (*Purchase, error) {
	return s.repo.GetByID(ctx, documentID)
}

// List returns purchase headers matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Purchase, error) {
	return s.repo.List(ctx, filter)
}

// Delete soft-deletes an unconfirmed document.
func (s *Service) Delete(ctx context.Context, documentID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetForUpdate(ctx, documentID)
		if err != nil {
			return err
		}
		if err := p.CanModify(); err != nil {
			return err
		}
		return s.repo.SetDeletionMark(ctx, documentID, true)
	})
}

func (s *Service) checkSupplier(ctx context.Context, supplierID id.ID) error {
	sup, err := s.parties.GetByID(ctx, supplierID)
	if err != nil {
		return err
	}
	if sup.Kind != party.KindSupplier {
		return apperror.NewValidation("party is not a supplier").
			WithDetail("party_id", supplierID.String())
	}
	return nil
}
