// Package party provides the counterparty master (customers and suppliers).
package party

import (
	"context"
	"strings"

	"ledgerpost/internal/core/apperror"
	"ledgerpost/internal/core/entity"
	"ledgerpost/internal/core/id"
)

// Kind distinguishes counterparty roles.
type Kind string

const (
	KindCustomer Kind = "customer"
	KindSupplier Kind = "supplier"
)

// Party is a counterparty master record. AccountID binds the party to
// its receivable/payable ledger account; journal generation fails hard
// when the binding is missing.
type Party struct {
	entity.BaseMaster

	// Code is the unique party code
	Code string `db:"code" json:"code"`

	// Name is the legal name
	Name string `db:"name" json:"name"`

	// Kind: customer or supplier
	Kind Kind `db:"kind" json:"kind"`

	// AccountID is the party's control ledger account
	AccountID id.ID `db:"account_id" json:"accountId"`

	// GSTIN is the tax registration number
	GSTIN string `db:"gstin" json:"gstin,omitempty"`
}

// NewParty creates a new party master record.
func NewParty(code, name string, kind Kind, accountID id.ID) *Party {
	return &Party{
		BaseMaster: entity.NewBaseMaster(),
		Code:       code,
		Name:       name,
		Kind:       kind,
		AccountID:  accountID,
	}
}

// Validate implements entity.Validatable.
func (p *Party) Validate(_ context.Context) error {
	if strings.TrimSpace(p.Code) == "" {
		return apperror.NewValidation("party code is required").WithDetail("field", "code")
	}
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("party name is required").WithDetail("field", "name")
	}
	if p.Kind != KindCustomer && p.Kind != KindSupplier {
		return apperror.NewValidation("party kind must be customer or supplier").
			WithDetail("field", "kind")
	}
	return nil
}

// Repository is the persistence contract for parties.
type Repository interface {
	Create(ctx context.Context, p *Party) error
	Update(ctx context.Context, p *Party) error
	GetByID(ctx context.Context, partyID id.ID) (*Party, error)
	GetByCode(ctx context.Context, code string) (*Party, error)
	List(ctx context.Context, filter ListFilter) ([]Party, error)
	SetDeletionMark(ctx context.Context, partyID id.ID, mark bool) error
}

// ListFilter narrows List results.
type ListFilter struct {
	Kind           Kind
	Search         string
	IncludeDeleted bool
	Limit          int
	Offset         int
}
