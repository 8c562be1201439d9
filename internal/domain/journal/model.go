// Package journal generates balanced accounting entries for posted
// documents and mirrors them into the flattened ledger.
package journal

import (
	"time"

	"ledgerpost/internal/core/entity"
	"ledgerpost/internal/core/id"
	"ledgerpost/internal/core/types"
)

// Document types that generate journals.
const (
	DocTypeSalesInvoice   = "SalesInvoice"
	DocTypePurchaseReturn = "PurchaseReturn"
)

// Header is one journal voucher. Exactly one journal exists per posted
// document; the unique DocumentID back-reference enforces it.
type Header struct {
	entity.BaseDocument

	// Number is the journal voucher number, sequential within the fiscal year
	Number int64 `db:"number" json:"number"`

	// DocumentID is the source document (unique)
	DocumentID id.ID `db:"document_id" json:"documentId"`

	// DocumentType is the source document type
	DocumentType string `db:"document_type" json:"documentType"`

	// DocumentNumber is the source document's business number
	DocumentNumber int64 `db:"document_number" json:"documentNumber"`

	// FiscalYearID scopes the journal to an accounting period
	FiscalYearID id.ID `db:"fiscal_year_id" json:"fiscalYearId"`

	// Date is the posting date (the document's business date)
	Date time.Time `db:"date" json:"date"`

	// PartyID is the counterparty of the source document
	PartyID id.ID `db:"party_id" json:"partyId"`

	// Total is the voucher total (sum of debits = sum of credits)
	Total types.Money `db:"total" json:"total"`
}

// Line is one debit or credit leg of a journal. Exactly one of
// Debit/Credit is non-zero.
type Line struct {
	// LineID is the unique identifier for this line
	LineID id.ID `db:"line_id" json:"lineId"`

	// JournalID references the journal header
	JournalID id.ID `db:"journal_id" json:"journalId"`

	// LineNo is the 1-based position within the journal
	LineNo int `db:"line_no" json:"lineNo"`

	// AccountID is the ledger account
	AccountID id.ID `db:"account_id" json:"accountId"`

	// PartyID is set on party-facing lines (receivable/payable), nil otherwise
	PartyID *id.ID `db:"party_id" json:"partyId,omitempty"`

	// Debit amount (zero when the line is a credit)
	Debit types.Money `db:"debit" json:"debit"`

	// Credit amount (zero when the line is a debit)
	Credit types.Money `db:"credit" json:"credit"`
}

// LedgerEntry is the flattened account-ledger mirror of one journal
// line, carrying the human-readable narration shown on statements.
type LedgerEntry struct {
	// EntryID is the unique identifier for this entry
	EntryID id.ID `db:"entry_id" json:"entryId"`

	// JournalID references the journal that produced the entry
	JournalID id.ID `db:"journal_id" json:"journalId"`

	// AccountID is the ledger account
	AccountID id.ID `db:"account_id" json:"accountId"`

	// PartyID is set on party-facing entries
	PartyID *id.ID `db:"party_id" json:"partyId,omitempty"`

	// Date is the posting date
	Date time.Time `db:"date" json:"date"`

	// Debit amount (zero when the entry is a credit)
	Debit types.Money `db:"debit" json:"debit"`

	// Credit amount (zero when the entry is a debit)
	Credit types.Money `db:"credit" json:"credit"`

	// Narration describes the entry, e.g.
	// "Being Sales amount for invoice #42"
	Narration string `db:"narration" json:"narration"`

	// CreatedAt is when the entry was written
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Voucher bundles a journal with its lines and ledger mirror for
// atomic persistence and for API reads.
type Voucher struct {
	Header  Header        `json:"header"`
	Lines   []Line        `json:"lines"`
	Entries []LedgerEntry `json:"entries"`
}
