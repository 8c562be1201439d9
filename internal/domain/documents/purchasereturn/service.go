package purchasereturn

import (
	"context"

	"ledgerpost/internal/core/apperror"
	"ledgerpost/internal/core/id"
	"ledgerpost/internal/core/sequence"
	"ledgerpost/internal/core/tx"
	"ledgerpost/internal/domain/journal"
	"ledgerpost/internal/domain/masters/party"
	"ledgerpost/internal/domain/posting"
	"ledgerpost/internal/domain/registers/stock"
	"ledgerpost/pkg/logger"
)

// Service orchestrates the purchase return lifecycle.
type Service struct {
	repo      Repository
	parties   party.Repository
	txManager tx.Manager
	engine    *posting.Engine
	journals  *journal.Generator
	stock     *stock.Service
}

// NewService creates a purchase return service.
func NewService(
	repo Repository,
	parties party.Repository,
	txManager tx.Manager,
	engine *posting.Engine,
	journals *journal.Generator,
	stockService *stock.Service,
) *Service {
	return &Service{
		repo:      repo,
		parties:   parties,
		txManager: txManager,
		engine:    engine,
		journals:  journals,
		stock:     stockService,
	}
}

// Create validates and persists a new draft return.
func (s *Service) Create(ctx context.Context, pr *PurchaseReturn) error {
	if err := pr.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.supplier(ctx, pr.SupplierID); err != nil {
			return err
		}
		pr.RecalculateTotals()
		return s.repo.Create(ctx, pr)
	})
}

// Update replaces the document content with replace-all line semantics.
func (s *Service) Update(ctx context.Context, pr *PurchaseReturn) error {
	if err := pr.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, pr.ID)
		if err != nil {
			return err
		}
		if err := current.CanModify(); err != nil {
			return err
		}
		if current.Cancelled {
			return apperror.NewDocumentCancelled(pr.ID.String())
		}
		if current.Version != pr.Version {
			return apperror.NewConcurrentModification("purchase return", pr.ID.String())
		}
		if _, err := s.supplier(ctx, pr.SupplierID); err != nil {
			return err
		}

		pr.Number = current.Number
		pr.CostSheetPrepared = current.CostSheetPrepared
		pr.CostConfirmed = current.CostConfirmed
		pr.Posted = current.Posted
		pr.Cancelled = current.Cancelled

		pr.RecalculateTotals()
		pr.Touch()

		if err := s.repo.UpdateHeader(ctx, pr); err != nil {
			return err
		}
		return s.repo.ReplaceLines(ctx, pr.ID, pr.Lines)
	})
}

// SaveWithNumber allocates the business number on first numbered save.
func (s *Service) SaveWithNumber(ctx context.Context, documentID id.ID) (*PurchaseReturn, error) {
	var result *PurchaseReturn
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		pr, err := s.repo.GetForUpdate(ctx, documentID)
		if err != nil {
			return err
		}
		if pr.IsNumbered() {
			result = pr
			return nil
		}
		if err := posting.GuardTransition(pr, pr.ID.String(), posting.StateNumbered); err != nil {
			return err
		}

		if err := s.engine.EnsureNumber(ctx, pr, sequence.ScopePurchaseReturn); err != nil {
			return err
		}
		pr.Touch()
		if err := s.repo.UpdateHeader(ctx, pr); err != nil {
			return err
		}
		result = pr
		return nil
	})
	return result, err
}

// Post makes the return's effects permanent: the balanced journal with
// its ledger mirror, the outward stock movements, and the posted flag
// last. One transaction; a duplicate call fails before any write.
func (s *Service) Post(ctx context.Context, documentID id.ID) (*PurchaseReturn, error) {
	var result *PurchaseReturn
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		pr, err := s.repo.GetForUpdate(ctx, documentID)
		if err != nil {
			return err
		}
		if err := posting.GuardTransition(pr, pr.ID.String(), posting.StatePosted); err != nil {
			return err
		}

		sup, err := s.supplier(ctx, pr.SupplierID)
		if err != nil {
			return err
		}

		if _, err := s.journals.Generate(ctx, journal.PostingInput{
			DocumentID:     pr.ID,
			DocumentType:   journal.DocTypePurchaseReturn,
			DocumentNumber: pr.Number,
			FiscalYearID:   pr.FiscalYearID,
			Date:           pr.Date,
			PartyID:        pr.SupplierID,
			PartyAccountID: sup.AccountID,
			Totals:         pr.Totals(),
		}); err != nil {
			return err
		}

		if err := s.stock.RecordMovements(ctx, pr.ExpenseMovements()); err != nil {
			return err
		}

		pr.MarkPosted()
		if err := s.repo.UpdateHeader(ctx, pr); err != nil {
			return err
		}

		logger.Info(ctx, "purchase return posted",
			"document_id", pr.ID, "number", pr.Number, "grand_total", pr.GrandTotal)
		result = pr
		return nil
	})
	return result, err
}

// Cancel withdraws the return. Legal only before posting.
func (s *Service) Cancel(ctx context.Context, documentID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		pr, err := s.repo.GetForUpdate(ctx, documentID)
		if err != nil {
			return err
		}
		if err := posting.GuardTransition(pr, pr.ID.String(), posting.StateCancelled); err != nil {
			return err
		}
		pr.MarkCancelled()
		return s.repo.UpdateHeader(ctx, pr)
	})
}

// SetToDraft clears cancellation and re-enables editing.
func (s *Service) SetToDraft(ctx context.Context, documentID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		pr, err := s.repo.GetForUpdate(ctx, documentID)
		if err != nil {
			return err
		}
		if !pr.Cancelled {
			return apperror.NewInvalidTransition(
				string(posting.StateOf(pr.Flags())), string(posting.StateNumbered))
		}
		pr.ClearCancelled()
		return s.repo.UpdateHeader(ctx, pr)
	})
}

// GetByID loads one return with lines.
func (s *Service) GetByID(ctx context.Context, documentID id.ID) (*PurchaseReturn, error) {
	return s.repo.GetByID(ctx, documentID)
}

// List returns document headers matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]PurchaseReturn, error) {
	return s.repo.List(ctx, filter)
}

// Delete soft-deletes an unposted return.
func (s *Service) Delete(ctx context.Context, documentID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		pr, err := s.repo.GetForUpdate(ctx, documentID)
		if err != nil {
			return err
		}
		if err := pr.CanModify(); err != nil {
			return err
		}
		return s.repo.SetDeletionMark(ctx, documentID, true)
	})
}

func (s *Service) supplier(ctx context.Context, supplierID id.ID) (*party.Party, error) {
	sup, err := s.parties.GetByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if sup.Kind != party.KindSupplier {
		return nil, apperror.NewValidation("party is not a supplier").
			WithDetail("party_id", supplierID.String())
	}
	return sup, nil
}
