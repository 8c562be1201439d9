package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"ledgerpost/internal/core/id"
	"ledgerpost/internal/domain/documents/salesinvoice"
	"ledgerpost/internal/infrastructure/storage/postgres"
)

const (
	salesInvoiceTable     = "sales_invoices"
	salesInvoiceLineTable = "sales_invoice_lines"
)

// SalesInvoiceRepo persists sales invoices.
type SalesInvoiceRepo struct {
	base
}

// NewSalesInvoiceRepo creates a sales invoice repository.
func NewSalesInvoiceRepo(txManager *postgres.TxManager) *SalesInvoiceRepo {
	return &SalesInvoiceRepo{base: newBase(txManager)}
}

var _ salesinvoice.Repository = (*SalesInvoiceRepo)(nil)

// Create persists the header and its lines.
func (r *SalesInvoiceRepo) Create(ctx context.Context, si *salesinvoice.SalesInvoice) error {
	for i := range si.Lines {
		if id.IsNil(si.Lines[i].LineID) {
			si.Lines[i].LineID = id.New()
		}
		si.Lines[i].DocumentID = si.ID
	}

	if err := r.insert(ctx, salesInvoiceTable, si); err != nil {
		return err
	}
	return replaceLines(ctx, &r.base, salesInvoiceLineTable, si.ID, si.Lines)
}

// UpdateHeader persists header changes with an optimistic version check.
func (r *SalesInvoiceRepo) UpdateHeader(ctx context.Context, si *salesinvoice.SalesInvoice) error {
	return r.updateOptimistic(ctx, salesInvoiceTable, "sales invoice", si)
}

// ReplaceLines swaps the full line set.
func (r *SalesInvoiceRepo) ReplaceLines(ctx context.Context, documentID id.ID, lines []salesinvoice.Line) error {
	for i := range lines {
		if id.IsNil(lines[i].LineID) {
			lines[i].LineID = id.New()
		}
		lines[i].DocumentID = documentID
	}
	return replaceLines(ctx, &r.base, salesInvoiceLineTable, documentID, lines)
}

// GetByID loads the header with its lines.
func (r *SalesInvoiceRepo) GetByID(ctx context.Context, documentID id.ID) (*salesinvoice.SalesInvoice, error) {
	return r.get(ctx, documentID, false)
}

// GetForUpdate loads the header with a FOR UPDATE row lock.
func (r *SalesInvoiceRepo) GetForUpdate(ctx context.Context, documentID id.ID) (*salesinvoice.SalesInvoice, error) {
	return r.get(ctx, documentID, true)
}

func (r *SalesInvoiceRepo) get(ctx context.Context, documentID id.ID, forUpdate bool) (*salesinvoice.SalesInvoice, error) {
	sb := qb.Select("*").From(salesInvoiceTable).Where(squirrel.Eq{"id": documentID})
	if forUpdate {
		sb = sb.Suffix("FOR UPDATE")
	}
	query, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}

	var si salesinvoice.SalesInvoice
	if err := r.getOne(ctx, &si, "sales invoice", documentID.String(), query, args...); err != nil {
		return nil, err
	}

	lineQuery, lineArgs, err := qb.Select("*").
		From(salesInvoiceLineTable).
		Where(squirrel.Eq{"document_id": documentID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return nil, err
	}
	if err := r.selectMany(ctx, &si.Lines, lineQuery, lineArgs...); err != nil {
		return nil, err
	}
	return &si, nil
}

// List returns headers (without lines) matching the filter.
func (r *SalesInvoiceRepo) List(ctx context.Context, filter salesinvoice.ListFilter) ([]salesinvoice.SalesInvoice, error) {
	sb := qb.Select("*").From(salesInvoiceTable).OrderBy("date DESC", "number DESC")

	if !id.IsNil(filter.CustomerID) {
		sb = sb.Where(squirrel.Eq{"customer_id": filter.CustomerID})
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

	var out []salesinvoice.SalesInvoice
	if err := r.selectMany(ctx, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// SetDeletionMark toggles the soft-delete flag.
func (r *SalesInvoiceRepo) SetDeletionMark(ctx context.Context, documentID id.ID, mark bool) error {
	return r.setDeletionMark(ctx, salesInvoiceTable, documentID, mark)
}
