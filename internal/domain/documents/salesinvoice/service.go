package salesinvoice

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

// Service orchestrates the sales invoice lifecycle.
type Service struct {
	repo      Repository
	parties   party.Repository
	txManager tx.Manager
	engine    *posting.Engine
	journals  *journal.Generator
	stock     *stock.Service
}

// NewService creates a sales invoice service.
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

// Create validates and persists a new draft invoice.
func (s *Service) Create(ctx context.Context, si *SalesInvoice) error {
	if err := si.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.customer(ctx, si.CustomerID); err != nil {
			return err
		}
		si.RecalculateTotals()
		return s.repo.Create(ctx, si)
	})
}

// Update replaces the document content with replace-all line semantics.
func (s *Service) Update(ctx context.Context, si *SalesInvoice) error {
	if err := si.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, si.ID)
		if err != nil {
			return err
		}
		if err := current.CanModify(); err != nil {
			return err
		}
		if current.Cancelled {
			return apperror.NewDocumentCancelled(si.ID.String())
		}
		if current.Version != si.Version {
			return apperror.NewConcurrentModification("sales invoice", si.ID.String())
		}
		if _, err := s.customer(ctx, si.CustomerID); err != nil {
			return err
		}

		si.Number = current.Number
		si.CostSheetPrepared = current.CostSheetPrepared
		si.CostConfirmed = current.CostConfirmed
		si.Posted = current.Posted
		si.Cancelled = current.Cancelled

		si.RecalculateTotals()
		si.Touch()

		if err := s.repo.UpdateHeader(ctx, si); err != nil {
			return err
		}
		return s.repo.ReplaceLines(ctx, si.ID, si.Lines)
	})
}

// SaveWithNumber allocates the business number on first numbered save.
func (s *Service) SaveWithNumber(ctx context.Context, documentID id.ID) (*SalesInvoice, error) {
	var result *SalesInvoice
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		si, err := s.repo.GetForUpdate(ctx, documentID)
		if err != nil {
			return err
		}
		if si.IsNumbered() {
			result = si
			return nil
		}
		if err := posting.GuardTransition(si, si.ID.String(), posting.StateNumbered); err != nil {
			return err
		}

		if err := s.engine.EnsureNumber(ctx, si, sequence.ScopeSalesInvoice); err != nil {
			return err
		}
		si.Touch()
		if err := s.repo.UpdateHeader(ctx, si); err != nil {
			return err
		}
		result = si
		return nil
	})
	return result, err
}

// Post makes the invoice's effects permanent: the balanced journal with
// its ledger mirror, the outward stock movements, and the posted flag
// last. One transaction; a duplicate call fails before any write.
func (s *Service) Post(ctx context.Context, documentID id.ID) (*SalesInvoice, error) {
	var result *SalesInvoice
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		si, err := s.repo.GetForUpdate(ctx, documentID)
		if err != nil {
			return err
		}
		if err := posting.GuardTransition(si, si.ID.String(), posting.StatePosted); err != nil {
			return err
		}

		cust, err := s.customer(ctx, si.CustomerID)
		if err != nil {
			return err
		}

		if _, err := s.journals.Generate(ctx, journal.PostingInput{
			DocumentID:     si.ID,
			DocumentType:   journal.DocTypeSalesInvoice,
			DocumentNumber: si.Number,
			FiscalYearID:   si.FiscalYearID,
			Date:           si.Date,
			PartyID:        si.CustomerID,
			PartyAccountID: cust.AccountID,
			Totals:         si.Totals(),
		}); err != nil {
			return err
		}

		if err := s.stock.RecordMovements(ctx, si.ExpenseMovements()); err != nil {
			return err
		}

		si.MarkPosted()
		if err := s.repo.UpdateHeader(ctx, si); err != nil {
			return err
		}

		logger.Info(ctx, "sales invoice posted",
			"document_id", si.ID, "number", si.Number, "grand_total", si.GrandTotal)
		result = si
		return nil
	})
	return result, err
}

// Cancel withdraws the invoice. Legal only before posting.
func (s *Service) Cancel(ctx context.Context, documentID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		si, err := s.repo.GetForUpdate(ctx, documentID)
		if err != nil {
			return err
		}
		if err := posting.GuardTransition(si, si.ID.String(), posting.StateCancelled); err != nil {
			return err
		}
		si.MarkCancelled()
		return s.repo.UpdateHeader(ctx, si)
	})
}

// SetToDraft clears cancellation and re-enables editing.
func (s *Service) SetToDraft(ctx context.Context, documentID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		si, err := s.repo.GetForUpdate(ctx, documentID)
		if err != nil {
			return err
		}
		if !si.Cancelled {
			return apperror.NewInvalidTransition(
				string(posting.StateOf(si.Flags())), string(posting.StateNumbered))
		}
		si.ClearCancelled()
		return s.repo.UpdateHeader(ctx, si)
	})
}

// GetByID loads one invoice with lines.
func (s *Service) GetByID(ctx context.Context, documentID id.ID) (*SalesInvoice, error) {
	return s.repo.GetByID(ctx, documentID)
}

// List returns invoice headers matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]SalesInvoice, error) {
	return s.repo.List(ctx, filter)
}

// Delete soft-deletes an unposted invoice.
func (s *Service) Delete(ctx context.Context, documentID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		si, err := s.repo.GetForUpdate(ctx, documentID)
		if err != nil {
			return err
		}
		if err := si.CanModify(); err != nil {
			return err
		}
		return s.repo.SetDeletionMark(ctx, documentID, true)
	})
}

func (s *Service) customer(ctx context.Context, customerID id.ID) (*party.Party, error) {
	cust, err := s.parties.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if cust.Kind != party.KindCustomer {
		return nil, apperror.NewValidation("party is not a customer").
			WithDetail("party_id", customerID.String())
	}
	return cust, nil
}
