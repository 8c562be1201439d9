package journal

import (
	"context"
	"time"

	"ledgerpost/internal/core/id"
)

// Repository is the persistence contract for journals and the ledger mirror.
type Repository interface {
	// CreateVoucher persists the header, lines and ledger entries.
	CreateVoucher(ctx context.Context, v *Voucher) error

	// ExistsForDocument reports whether a journal already references
	// the document. Guards against duplicate posting.
	ExistsForDocument(ctx context.Context, documentID id.ID) (bool, error)

	// GetByDocument loads the voucher generated for a document.
	GetByDocument(ctx context.Context, documentID id.ID) (*Voucher, error)

	// GetByID loads a voucher by journal id.
	GetByID(ctx context.Context, journalID id.ID) (*Voucher, error)

	// GetAccountLedger returns ledger entries for an account in a
	// date range, oldest first.
	GetAccountLedger(ctx context.Context, accountID id.ID, from, to time.Time) ([]LedgerEntry, error)
}
