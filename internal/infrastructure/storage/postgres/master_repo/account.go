package master_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"ledgerpost/internal/core/id"
	"ledgerpost/internal/domain/masters/account"
	"ledgerpost/internal/infrastructure/storage/postgres"
)

const accountTable = "accounts"

// AccountRepo persists ledger account master records.
type AccountRepo struct {
	base
}

// NewAccountRepo creates an account repository.
func NewAccountRepo(txManager *postgres.TxManager) *AccountRepo {
	return &AccountRepo{base: base{txManager: txManager}}
}

var _ account.Repository = (*AccountRepo)(nil)

// Create persists a new account.
func (r *AccountRepo) Create(ctx context.Context, a *account.Account) error {
	return r.insert(ctx, accountTable, a)
}

// GetByID loads one account.
func (r *AccountRepo) GetByID(ctx context.Context, accountID id.ID) (*account.Account, error) {
	query, args, err := qb.Select("*").From(accountTable).Where(squirrel.Eq{"id": accountID}).ToSql()
	if err != nil {
		return nil, err
	}
	var a account.Account
	if err := r.getOne(ctx, &a, "account", accountID.String(), query, args...); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByControlCode loads the account bound to a posting control role.
func (r *AccountRepo) GetByControlCode(ctx context.Context, controlCode string) (*account.Account, error) {
	query, args, err := qb.Select("*").
		From(accountTable).
		Where(squirrel.Eq{"control_code": controlCode, "deletion_mark": false}).
		ToSql()
	if err != nil {
		return nil, err
	}
	var a account.Account
	if err := r.getOne(ctx, &a, "account", controlCode, query, args...); err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns all accounts.
func (r *AccountRepo) List(ctx context.Context) ([]account.Account, error) {
	query, args, err := qb.Select("*").
		From(accountTable).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("code").
		ToSql()
	if err != nil {
		return nil, err
	}

	var out []account.Account
	if err := r.selectMany(ctx, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}
