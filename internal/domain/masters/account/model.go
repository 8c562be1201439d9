// Package account provides the ledger account master and the fixed
// control-account bindings used by journal generation.
package account

import (
	"context"
	"strings"

	"ledgerpost/internal/core/apperror"
	"ledgerpost/internal/core/entity"
	"ledgerpost/internal/core/id"
)

// Control account codes. Journal generation resolves these by stable
// code; a missing binding aborts posting, it is never defaulted.
const (
	ControlSales    = "SALES"
	ControlPurchase = "PURCHASE"
	ControlCGST     = "CGST"
	ControlSGST     = "SGST"
	ControlIGST     = "IGST"
	ControlRounding = "ROUNDING"
)

// Account is a ledger account master record.
type Account struct {
	entity.BaseMaster

	// Code is the unique account code
	Code string `db:"code" json:"code"`

	// Name is the display name
	Name string `db:"name" json:"name"`

	// ControlCode binds the account to a fixed posting role
	// (SALES, CGST, ...). Empty for ordinary accounts.
	ControlCode string `db:"control_code" json:"controlCode,omitempty"`
}

// NewAccount creates a new account master record.
func NewAccount(code, name string) *Account {
	return &Account{
		BaseMaster: entity.NewBaseMaster(),
		Code:       code,
		Name:       name,
	}
}

// Validate implements entity.Validatable.
func (a *Account) Validate(_ context.Context) error {
	if strings.TrimSpace(a.Code) == "" {
		return apperror.NewValidation("account code is required").WithDetail("field", "code")
	}
	if strings.TrimSpace(a.Name) == "" {
		return apperror.NewValidation("account name is required").WithDetail("field", "name")
	}
	return nil
}

// Repository is the persistence contract for accounts.
type Repository interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, accountID id.ID) (*Account, error)
	GetByControlCode(ctx context.Context, controlCode string) (*Account, error)
	List(ctx context.Context) ([]Account, error)
}

// Resolver resolves control accounts for journal generation.
type Resolver interface {
	// ResolveControl returns the account bound to the control code.
	// Returns an invalid-account-mapping error when no binding exists.
	ResolveControl(ctx context.Context, controlCode string) (id.ID, error)
}

// RepoResolver implements Resolver on top of the account repository.
type RepoResolver struct {
	repo Repository
}

// NewResolver creates a repository-backed control account resolver.
func NewResolver(repo Repository) *RepoResolver {
	return &RepoResolver{repo: repo}
}

// ResolveControl implements Resolver.
func (r *RepoResolver) ResolveControl(ctx context.Context, controlCode string) (id.ID, error) {
	acc, err := r.repo.GetByControlCode(ctx, controlCode)
	if err != nil {
		if apperror.IsNotFound(err) {
			return id.Nil(), apperror.NewInvalidAccountMapping(controlCode)
		}
		return id.Nil(), err
	}
	if acc == nil || id.IsNil(acc.ID) {
		return id.Nil(), apperror.NewInvalidAccountMapping(controlCode)
	}
	return acc.ID, nil
}
