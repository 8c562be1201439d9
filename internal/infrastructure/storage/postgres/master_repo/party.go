package master_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"ledgerpost/internal/core/id"
	"ledgerpost/internal/domain/masters/party"
	"ledgerpost/internal/infrastructure/storage/postgres"
)

const partyTable = "parties"

// PartyRepo persists party master records.
type PartyRepo struct {
	base
}

// NewPartyRepo creates a party repository.
func NewPartyRepo(txManager *postgres.TxManager) *PartyRepo {
	return &PartyRepo{base: base{txManager: txManager}}
}

var _ party.Repository = (*PartyRepo)(nil)

// Create persists a new party.
func (r *PartyRepo) Create(ctx context.Context, p *party.Party) error {
	return r.insert(ctx, partyTable, p)
}

// Update persists party changes with an optimistic version check.
func (r *PartyRepo) Update(ctx context.Context, p *party.Party) error {
	return r.updateOptimistic(ctx, partyTable, "party", p)
}

// GetByID loads one party.
func (r *PartyRepo) GetByID(ctx context.Context, partyID id.ID) (*party.Party, error) {
	query, args, err := qb.Select("*").From(partyTable).Where(squirrel.Eq{"id": partyID}).ToSql()
	if err != nil {
		return nil, err
	}
	var p party.Party
	if err := r.getOne(ctx, &p, "party", partyID.String(), query, args...); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByCode loads one party by its unique code.
func (r *PartyRepo) GetByCode(ctx context.Context, code string) (*party.Party, error) {
	query, args, err := qb.Select("*").From(partyTable).Where(squirrel.Eq{"code": code}).ToSql()
	if err != nil {
		return nil, err
	}
	var p party.Party
	if err := r.getOne(ctx, &p, "party", code, query, args...); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns parties matching the filter.
func (r *PartyRepo) List(ctx context.Context, filter party.ListFilter) ([]party.Party, error) {
	sb := qb.Select("*").From(partyTable).OrderBy("name")

	if filter.Kind != "" {
		sb = sb.Where(squirrel.Eq{"kind": filter.Kind})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		sb = sb.Where(squirrel.Or{
			squirrel.ILike{"code": pattern},
			squirrel.ILike{"name": pattern},
		})
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

	var out []party.Party
	if err := r.selectMany(ctx, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// SetDeletionMark toggles the soft-delete flag.
func (r *PartyRepo) SetDeletionMark(ctx context.Context, partyID id.ID, mark bool) error {
	return r.setDeletionMark(ctx, partyTable, partyID, mark)
}
