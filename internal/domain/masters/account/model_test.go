package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerpost/internal/core/apperror"
	"ledgerpost/internal/core/id"
)

type mockAccountRepo struct {
	byControl map[string]*Account
}

func (m *mockAccountRepo) Create(_ context.Context, a *Account) error {
	if a.ControlCode != "" {
		m.byControl[a.ControlCode] = a
	}
	return nil
}

func (m *mockAccountRepo) GetByID(_ context.Context, _ id.ID) (*Account, error) {
	return nil, nil
}

func (m *mockAccountRepo) GetByControlCode(_ context.Context, controlCode string) (*Account, error) {
	acc, ok := m.byControl[controlCode]
	if !ok {
		return nil, apperror.NewNotFound("account", controlCode)
	}
	return acc, nil
}

func (m *mockAccountRepo) List(_ context.Context) ([]Account, error) {
	return nil, nil
}

func TestResolveControl(t *testing.T) {
	ctx := context.Background()

	sales := NewAccount("4000", "Sales")
	sales.ControlCode = ControlSales

	repo := &mockAccountRepo{byControl: map[string]*Account{ControlSales: sales}}
	resolver := NewResolver(repo)

	t.Run("bound control resolves to its account", func(t *testing.T) {
		got, err := resolver.ResolveControl(ctx, ControlSales)
		require.NoError(t, err)
		assert.Equal(t, sales.ID, got)
	})

	t.Run("missing binding aborts with a mapping error", func(t *testing.T) {
		_, err := resolver.ResolveControl(ctx, ControlCGST)
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidAccountMapping))
	})
}

func TestAccountValidate(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, NewAccount("4000", "Sales").Validate(ctx))
	assert.Error(t, NewAccount("", "Sales").Validate(ctx))
	assert.Error(t, NewAccount("4000", "  ").Validate(ctx))
}
