package journal

import (
	"context"
	"fmt"
	"time"

	"ledgerpost/internal/core/apperror"
	"ledgerpost/internal/core/entity"
	"ledgerpost/internal/core/id"
	"ledgerpost/internal/core/sequence"
	"ledgerpost/internal/core/types"
	"ledgerpost/internal/domain/masters/account"
	"ledgerpost/pkg/logger"
)

// Totals are the monetary components of a posted document.
// GrandTotal = Taxable + CGST + SGST + IGST + Rounding.
type Totals struct {
	Taxable    types.Money
	CGST       types.Money
	SGST       types.Money
	IGST       types.Money
	Rounding   types.Money
	GrandTotal types.Money
}

// PostingInput describes the document a journal is generated for.
type PostingInput struct {
	DocumentID     id.ID
	DocumentType   string
	DocumentNumber int64
	FiscalYearID   id.ID
	Date           time.Time
	PartyID        id.ID
	PartyAccountID id.ID
	Totals         Totals
}

// Generator builds balanced journal vouchers for posted documents.
type Generator struct {
	repo      Repository
	allocator sequence.Allocator
	accounts  account.Resolver
}

// NewGenerator creates a journal generator.
func NewGenerator(repo Repository, allocator sequence.Allocator, accounts account.Resolver) *Generator {
	return &Generator{repo: repo, allocator: allocator, accounts: accounts}
}

// Generate creates and persists the journal voucher for a document.
// Must run inside the posting transaction: the voucher number is
// allocated on the ambient transaction and the duplicate guard relies
// on the unique document back-reference.
func (g *Generator) Generate(ctx context.Context, in PostingInput) (*Voucher, error) {
	exists, err := g.repo.ExistsForDocument(ctx, in.DocumentID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.NewAlreadyPosted(in.DocumentID.String())
	}

	revenueControl, component, err := controlForDocType(in.DocumentType)
	if err != nil {
		return nil, err
	}

	number, err := g.allocator.Next(ctx, sequence.Scope{
		DocType:      sequence.ScopeJournal,
		FiscalYearID: in.FiscalYearID,
	})
	if err != nil {
		return nil, err
	}

	voucher, err := g.build(ctx, in, number, revenueControl, component)
	if err != nil {
		return nil, err
	}

	if err := validateBalanced(voucher); err != nil {
		return nil, err
	}

	if err := g.repo.CreateVoucher(ctx, voucher); err != nil {
		return nil, err
	}

	logger.Info(ctx, "journal generated",
		"journal_id", voucher.Header.ID,
		"journal_number", number,
		"document_id", in.DocumentID,
		"document_type", in.DocumentType,
		"total", voucher.Header.Total,
	)
	return voucher, nil
}

// controlForDocType maps a document type to the control account its
// value is credited to and the narration component.
func controlForDocType(docType string) (controlCode, component string, err error) {
	switch docType {
	case DocTypeSalesInvoice:
		return account.ControlSales, "Sales", nil
	case DocTypePurchaseReturn:
		return account.ControlPurchase, "Purchase Return", nil
	default:
		return "", "", apperror.NewValidation(fmt.Sprintf("document type %q does not generate journals", docType))
	}
}

func (g *Generator) build(ctx context.Context, in PostingInput, number int64, revenueControl, component string) (*Voucher, error) {
	if id.IsNil(in.PartyAccountID) {
		return nil, apperror.NewInvalidAccountMapping("PARTY").
			WithDetail("party_id", in.PartyID.String())
	}

	header := Header{
		BaseDocument:   entity.NewBaseDocument(),
		Number:         number,
		DocumentID:     in.DocumentID,
		DocumentType:   in.DocumentType,
		DocumentNumber: in.DocumentNumber,
		FiscalYearID:   in.FiscalYearID,
		Date:           in.Date,
		PartyID:        in.PartyID,
	}

	b := &voucherBuilder{
		journalID:      header.ID,
		date:           in.Date,
		documentNumber: in.DocumentNumber,
	}

	// Debit the party for the full amount receivable/recoverable.
	partyID := in.PartyID
	b.debit(in.PartyAccountID, &partyID, in.Totals.GrandTotal, component)

	// Credit value and taxes by component.
	revenueAccount, err := g.accounts.ResolveControl(ctx, revenueControl)
	if err != nil {
		return nil, err
	}
	b.credit(revenueAccount, nil, in.Totals.Taxable, component)

	taxCredits := []struct {
		control string
		amount  types.Money
	}{
		{account.ControlCGST, in.Totals.CGST},
		{account.ControlSGST, in.Totals.SGST},
		{account.ControlIGST, in.Totals.IGST},
	}
	for _, tax := range taxCredits {
		if tax.amount.IsZero() {
			continue
		}
		accID, err := g.accounts.ResolveControl(ctx, tax.control)
		if err != nil {
			return nil, err
		}
		b.credit(accID, nil, tax.amount, tax.control)
	}

	// Rounding keeps the voucher balanced against the rounded grand
	// total: a positive adjustment is income (credit), a negative one
	// is expense (debit).
	if !in.Totals.Rounding.IsZero() {
		roundingAccount, err := g.accounts.ResolveControl(ctx, account.ControlRounding)
		if err != nil {
			return nil, err
		}
		if in.Totals.Rounding.IsPositive() {
			b.credit(roundingAccount, nil, in.Totals.Rounding, "Rounding Off")
		} else {
			b.debit(roundingAccount, nil, in.Totals.Rounding.Neg(), "Rounding Off")
		}
	}

	header.Total = b.totalDebit
	return &Voucher{Header: header, Lines: b.lines, Entries: b.entries}, nil
}

// validateBalanced rejects any voucher whose debits and credits differ.
func validateBalanced(v *Voucher) error {
	totalDebit := types.Zero()
	totalCredit := types.Zero()
	for i := range v.Lines {
		totalDebit = totalDebit.Add(v.Lines[i].Debit)
		totalCredit = totalCredit.Add(v.Lines[i].Credit)
	}
	if !totalDebit.Equal(totalCredit) {
		return apperror.NewInternal(fmt.Errorf(
			"unbalanced journal for document %s: debit %s, credit %s",
			v.Header.DocumentID, totalDebit, totalCredit,
		))
	}
	return nil
}

// voucherBuilder accumulates lines and their ledger mirror.
type voucherBuilder struct {
	journalID      id.ID
	date           time.Time
	documentNumber int64

	lines      []Line
	entries    []LedgerEntry
	totalDebit types.Money
}

func (b *voucherBuilder) debit(accountID id.ID, partyID *id.ID, amount types.Money, component string) {
	b.totalDebit = b.totalDebit.Add(amount)
	b.add(accountID, partyID, amount, types.Zero(), component)
}

func (b *voucherBuilder) credit(accountID id.ID, partyID *id.ID, amount types.Money, component string) {
	b.add(accountID, partyID, types.Zero(), amount, component)
}

func (b *voucherBuilder) add(accountID id.ID, partyID *id.ID, debit, credit types.Money, component string) {
	line := Line{
		LineID:    id.New(),
		JournalID: b.journalID,
		LineNo:    len(b.lines) + 1,
		AccountID: accountID,
		PartyID:   partyID,
		Debit:     debit,
		Credit:    credit,
	}
	b.lines = append(b.lines, line)

	b.entries = append(b.entries, LedgerEntry{
		EntryID:   id.New(),
		JournalID: b.journalID,
		AccountID: accountID,
		PartyID:   partyID,
		Date:      b.date,
		Debit:     debit,
		Credit:    credit,
		Narration: fmt.Sprintf("Being %s amount for invoice #%d", component, b.documentNumber),
		CreatedAt: time.Now().UTC(),
	})
}
