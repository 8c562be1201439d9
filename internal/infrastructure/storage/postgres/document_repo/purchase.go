package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"ledgerpost/internal/core/id"
	"ledgerpost/internal/domain/documents/purchase"
	"ledgerpost/internal/infrastructure/storage/postgres"
)

const (
	purchaseTable     = "purchases"
	purchaseLineTable = "purchase_lines"
)

// PurchaseRepo persists purchase invoices.
type PurchaseRepo struct {
	base
}

// NewPurchaseRepo creates a purchase repository.
func NewPurchaseRepo(txManager *postgres.TxManager) *PurchaseRepo {
	return &PurchaseRepo{base: newBase(txManager)}
}

var _ purchase.Repository = (*PurchaseRepo)(nil)

// Create persists the header and its lines.
func (r *PurchaseRepo) Create(ctx context.Context, p *purchase.Purchase) error {
	for i := range p.Lines {
		if id.IsNil(p.Lines[i].LineID) {
			p.Lines[i].LineID = id.New()
		}
		p.Lines[i].DocumentID = p.ID
	}

	if err := r.insert(ctx, purchaseTable, p); err != nil {
		return err
	}
	return replaceLines(ctx, &r.base, purchaseLineTable, p.ID, p.Lines)
}

// UpdateHeader persists header changes with an optimistic version check.
func (r *PurchaseRepo) UpdateHeader(ctx context.Context, p *purchase.Purchase) error {
	return r.updateOptimistic(ctx, purchaseTable, "purchase", p)
}

// ReplaceLines swaps the full line set.
func (r *PurchaseRepo) ReplaceLines(ctx context.Context, documentID id.ID, lines []purchase.Line) error {
	for i := range lines {
		if id.IsNil(lines[i].LineID) {
			lines[i].LineID = id.New()
		}
		lines[i].DocumentID = documentID
	}
	return replaceLines(ctx, &r.base, purchaseLineTable, documentID, lines)
}

// GetByID loads the header with its lines.
func (r *PurchaseRepo) GetByID(ctx context.Context, documentID id.ID) (*purchase.Purchase, error) {
	return r.get(ctx, documentID, false)
}

// GetForUpdate loads the header with a FOR UPDATE row lock.
func (r *PurchaseRepo) GetForUpdate(ctx context.Context, documentID id.ID) (*purchase.Purchase, error) {
	return r.get(ctx, documentID, true)
}

func (r *PurchaseRepo) get(ctx context.Context, documentID id.ID, forUpdate bool) (*purchase.Purchase, error) {
	sb := qb.Select("*").From(purchaseTable).Where(squirrel.Eq{"id": documentID})
	if forUpdate {
		sb = sb.Suffix("FOR UPDATE")
	}
	query, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}

	var p purchase.Purchase
	if err := r.getOne(ctx, &p, "purchase", documentID.String(), query, args...); err != nil {
		return nil, err
	}

	lineQuery, lineArgs, err := qb.Select("*").
		From(purchaseLineTable).
		Where(squirrel.Eq{"document_id": documentID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return nil, err
	}
	if err := r.selectMany(ctx, &p.Lines, lineQuery, lineArgs...); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns headers (without lines) matching the filter.
func (r *PurchaseRepo) List(ctx context.Context, filter purchase.ListFilter) ([]purchase.Purchase, error) {
	sb := qb.Select("*").From(purchaseTable).OrderBy("date DESC", "number DESC")

	if !id.IsNil(filter.SupplierID) {
		sb = sb.Where(squirrel.Eq{"supplier_id": filter.SupplierID})
	}
	if !id.IsNil(filter.FiscalYearID) {
		sb = sb.Where(squirrel.Eq{"fiscal_year_id": filter.FiscalYearID})
	}
	if !filter.DateFrom.IsZero() {
		sb = sb.Where(squirrel.GtOrEq{"date": filter.DateFrom})
	}
	if !filter.DateTo.IsZero() {
		sb = sb.Where(squirrel.LtOrEq{"date": filter.DateTo})
	}
	if filter.CostConfirmed != nil {
		sb = sb.Where(squirrel.Eq{"cost_confirmed": *filter.CostConfirmed})
	}
	if filter.Cancelled != nil {
		sb = sb.Where(squirrel.Eq{"cancelled": *filter.Cancelled})
	}
	if !filter.IncludeDeleted {
		sb = sb.Where(squirrel.Eq{"deletion_mark": false})
	}
	if filter.Limit > 0 {
		sb = sb.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		sb = sb.Offset(uint64(filter.Offset))
	}

	query, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}

	var out []purchase.Purchase
	if err := r.selectMany(ctx, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// SetDeletionMark toggles the soft-delete flag.
func (r *PurchaseRepo) SetDeletionMark(ctx context.Context, documentID id.ID, mark bool) error {
	return r.setDeletionMark(ctx, purchaseTable, documentID, mark)
}
