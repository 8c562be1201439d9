package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"ledgerpost/internal/core/id"
	"ledgerpost/internal/domain/documents/purchasereturn"
	"ledgerpost/internal/infrastructure/storage/postgres"
)

const (
	purchaseReturnTable     = "purchase_returns"
	purchaseReturnLineTable = "purchase_return_lines"
)

// PurchaseReturnRepo persists purchase returns.
type PurchaseReturnRepo struct {
	base
}

// NewPurchaseReturnRepo creates a purchase return repository.
func NewPurchaseReturnRepo(txManager *postgres.TxManager) *PurchaseReturnRepo {
	return &PurchaseReturnRepo{base: newBase(txManager)}
}

var _ purchasereturn.Repository = (*PurchaseReturnRepo)(nil)

// Create persists the header and its lines.
func (r *PurchaseReturnRepo) Create(ctx context.Context, pr *purchasereturn.PurchaseReturn) error {
	for i := range pr.Lines {
		if id.IsNil(pr.Lines[i].LineID) {
			pr.Lines[i].LineID = id.New()
		}
		pr.Lines[i].DocumentID = pr.ID
	}

	if err := r.insert(ctx, purchaseReturnTable, pr); err != nil {
		return err
	}
	return replaceLines(ctx, &r.base, purchaseReturnLineTable, pr.ID, pr.Lines)
}

// UpdateHeader persists header changes with an optimistic version check.
func (r *PurchaseReturnRepo) UpdateHeader(ctx context.Context, pr *purchasereturn.PurchaseReturn) error {
	return r.updateOptimistic(ctx, purchaseReturnTable, "purchase return", pr)
}

// ReplaceLines swaps the full line set.
func (r *PurchaseReturnRepo) ReplaceLines(ctx context.Context, documentID id.ID, lines []purchasereturn.Line) error {
	for i := range lines {
		if id.IsNil(lines[i].LineID) {
			lines[i].LineID = id.New()
		}
		lines[i].DocumentID = documentID
	}
	return replaceLines(ctx, &r.base, purchaseReturnLineTable, documentID, lines)
}

// GetByID loads the header with its lines.
func (r *PurchaseReturnRepo) GetByID(ctx context.Context, documentID id.ID) (*purchasereturn.PurchaseReturn, error) {
	return r.get(ctx, documentID, false)
}

// GetForUpdate loads the header with a FOR UPDATE row lock.
func (r *PurchaseReturnRepo) GetForUpdate(ctx context.Context, documentID id.ID) (*purchasereturn.PurchaseReturn, error) {
	return r.get(ctx, documentID, true)
}

func (r *PurchaseReturnRepo) get(ctx context.Context, documentID id.ID, forUpdate bool) (*purchasereturn.PurchaseReturn, error) {
	sb := qb.Select("*").From(purchaseReturnTable).Where(squirrel.Eq{"id": documentID})
	if forUpdate {
		sb = sb.Suffix("FOR UPDATE")
	}
	query, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}

	var pr purchasereturn.PurchaseReturn
	if err := r.getOne(ctx, &pr, "purchase return", documentID.String(), query, args...); err != nil {
		return nil, err
	}

	lineQuery, lineArgs, err := qb.Select("*").
		From(purchaseReturnLineTable).
		Where(squirrel.Eq{"document_id": documentID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return nil, err
	}
	if err := r.selectMany(ctx, &pr.Lines, lineQuery, lineArgs...); err != nil {
		return nil, err
	}
	return &pr, nil
}

// List returns headers (without lines) matching the filter.
func (r *PurchaseReturnRepo) List(ctx context.Context, filter purchasereturn.ListFilter) ([]purchasereturn.PurchaseReturn, error) {
	sb := qb.Select("*").From(purchaseReturnTable).OrderBy("date DESC", "number DESC")

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
	if filter.Posted != nil {
		sb = sb.Where(squirrel.Eq{"posted": *filter.Posted})
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

	var out []purchasereturn.PurchaseReturn
	if err := r.selectMany(ctx, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// SetDeletionMark toggles the soft-delete flag.
func (r *PurchaseReturnRepo) SetDeletionMark(ctx context.Context, documentID id.ID, mark bool) error {
	return r.setDeletionMark(ctx, purchaseReturnTable, documentID, mark)
}
