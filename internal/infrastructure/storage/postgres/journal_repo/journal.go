// Package journal_repo persists journals and the flattened ledger mirror.
package journal_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ledgerpost/internal/core/apperror"
	"ledgerpost/internal/core/id"
	"ledgerpost/internal/domain/journal"
	"ledgerpost/internal/infrastructure/storage/postgres"
)

const (
	journalTable     = "journals"
	journalLineTable = "journal_lines"
	ledgerEntryTable = "ledger_entries"
)

var qb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// JournalRepo persists journal vouchers.
type JournalRepo struct {
	txManager *postgres.TxManager
	batch     *postgres.BatchInserter
}

// NewJournalRepo creates a journal repository.
func NewJournalRepo(txManager *postgres.TxManager) *JournalRepo {
	return &JournalRepo{
		txManager: txManager,
		batch:     postgres.NewBatchInserter(txManager),
	}
}

var _ journal.Repository = (*JournalRepo)(nil)

// CreateVoucher persists the header, lines and ledger entries in the
// ambient transaction. The unique index on document_id closes the
// duplicate-posting race at commit.
func (r *JournalRepo) CreateVoucher(ctx context.Context, v *journal.Voucher) error {
	m, err := postgres.StructToMap(&v.Header)
	if err != nil {
		return err
	}
	query, args, err := qb.Insert(journalTable).SetMap(m).ToSql()
	if err != nil {
		return fmt.Errorf("build journal insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert journal: %w", err)
	}

	if _, err := postgres.CopyStructs(ctx, r.batch, journalLineTable, v.Lines); err != nil {
		return err
	}
	if _, err := postgres.CopyStructs(ctx, r.batch, ledgerEntryTable, v.Entries); err != nil {
		return err
	}
	return nil
}

// ExistsForDocument reports whether a journal already references the document.
func (r *JournalRepo) ExistsForDocument(ctx context.Context, documentID id.ID) (bool, error) {
	var exists bool
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM journals WHERE document_id = $1)`,
		documentID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check journal existence: %w", err)
	}
	return exists, nil
}

// GetByDocument loads the voucher generated for a document.
func (r *JournalRepo) GetByDocument(ctx context.Context, documentID id.ID) (*journal.Voucher, error) {
	return r.getVoucher(ctx, squirrel.Eq{"document_id": documentID}, documentID.String())
}

// GetByID loads a voucher by journal id.
func (r *JournalRepo) GetByID(ctx context.Context, journalID id.ID) (*journal.Voucher, error) {
	return r.getVoucher(ctx, squirrel.Eq{"id": journalID}, journalID.String())
}

func (r *JournalRepo) getVoucher(ctx context.Context, where squirrel.Eq, ref string) (*journal.Voucher, error) {
	query, args, err := qb.Select("*").From(journalTable).Where(where).ToSql()
	if err != nil {
		return nil, err
	}

	var header journal.Header
	q := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, q, &header, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("journal", ref)
		}
		return nil, fmt.Errorf("get journal: %w", err)
	}

	lineQuery, lineArgs, err := qb.Select("*").
		From(journalLineTable).
		Where(squirrel.Eq{"journal_id": header.ID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return nil, err
	}
	var lines []journal.Line
	if err := pgxscan.Select(ctx, q, &lines, lineQuery, lineArgs...); err != nil {
		return nil, fmt.Errorf("select journal lines: %w", err)
	}

	entryQuery, entryArgs, err := qb.Select("*").
		From(ledgerEntryTable).
		Where(squirrel.Eq{"journal_id": header.ID}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, err
	}
	var entries []journal.LedgerEntry
	if err := pgxscan.Select(ctx, q, &entries, entryQuery, entryArgs...); err != nil {
		return nil, fmt.Errorf("select ledger entries: %w", err)
	}

	return &journal.Voucher{Header: header, Lines: lines, Entries: entries}, nil
}

// GetAccountLedger returns ledger entries for an account in a date range.
func (r *JournalRepo) GetAccountLedger(ctx context.Context, accountID id.ID, from, to time.Time) ([]journal.LedgerEntry, error) {
	sb := qb.Select("*").
		From(ledgerEntryTable).
		Where(squirrel.Eq{"account_id": accountID}).
		OrderBy("date", "created_at")

	if !from.IsZero() {
		sb = sb.Where(squirrel.GtOrEq{"date": from})
	}
	if !to.IsZero() {
		sb = sb.Where(squirrel.LtOrEq{"date": to})
	}

	query, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}

	var out []journal.LedgerEntry
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &out, query, args...); err != nil {
		return nil, fmt.Errorf("select account ledger: %w", err)
	}
	return out, nil
}
