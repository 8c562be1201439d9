package journal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerpost/internal/core/apperror"
	"ledgerpost/internal/core/id"
	"ledgerpost/internal/core/sequence"
	"ledgerpost/internal/core/types"
	"ledgerpost/internal/domain/masters/account"
)

type mockJournalRepo struct {
	existing map[id.ID]bool
	created  []*Voucher
}

func newMockJournalRepo() *mockJournalRepo {
	return &mockJournalRepo{existing: make(map[id.ID]bool)}
}

func (m *mockJournalRepo) CreateVoucher(_ context.Context, v *Voucher) error {
	m.created = append(m.created, v)
	m.existing[v.Header.DocumentID] = true
	return nil
}

func (m *mockJournalRepo) ExistsForDocument(_ context.Context, documentID id.ID) (bool, error) {
	return m.existing[documentID], nil
}

func (m *mockJournalRepo) GetByDocument(_ context.Context, _ id.ID) (*Voucher, error) {
	return nil, nil
}

func (m *mockJournalRepo) GetByID(_ context.Context, _ id.ID) (*Voucher, error) {
	return nil, nil
}

func (m *mockJournalRepo) GetAccountLedger(_ context.Context, _ id.ID, _, _ time.Time) ([]LedgerEntry, error) {
	return nil, nil
}

// mockResolver maps control codes to fixed account ids.
type mockResolver struct {
	accounts map[string]id.ID
}

func newMockResolver(codes ...string) *mockResolver {
	m := &mockResolver{accounts: make(map[string]id.ID)}
	for _, code := range codes {
		m.accounts[code] = id.New()
	}
	return m
}

func (m *mockResolver) ResolveControl(_ context.Context, code string) (id.ID, error) {
	accID, ok := m.accounts[code]
	if !ok {
		return id.Nil(), apperror.NewInvalidAccountMapping(code)
	}
	return accID, nil
}

func allControls() *mockResolver {
	return newMockResolver(
		account.ControlSales,
		account.ControlPurchase,
		account.ControlCGST,
		account.ControlSGST,
		account.ControlIGST,
		account.ControlRounding,
	)
}

func salesInput(totals Totals) PostingInput {
	return PostingInput{
		DocumentID:     id.New(),
		DocumentType:   DocTypeSalesInvoice,
		DocumentNumber: 42,
		FiscalYearID:   id.New(),
		Date:           time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		PartyID:        id.New(),
		PartyAccountID: id.New(),
		Totals:         totals,
	}
}

func sumDebitsCredits(v *Voucher) (types.Money, types.Money) {
	debit := types.Zero()
	credit := types.Zero()
	for i := range v.Lines {
		debit = debit.Add(v.Lines[i].Debit)
		credit = credit.Add(v.Lines[i].Credit)
	}
	return debit, credit
}

func TestGeneratorBalance(t *testing.T) {
	tests := []struct {
		name   string
		totals Totals
	}{
		{
			name: "taxable only",
			totals: Totals{
				Taxable:    types.MustMoney("1000"),
				GrandTotal: types.MustMoney("1000"),
			},
		},
		{
			name: "intra-state taxes with negative rounding",
			totals: Totals{
				Taxable:    types.MustMoney("1000"),
				CGST:       types.MustMoney("90"),
				SGST:       types.MustMoney("90"),
				Rounding:   types.MustMoney("-1"),
				GrandTotal: types.MustMoney("1179"),
			},
		},
		{
			name: "inter-state tax with positive rounding",
			totals: Totals{
				Taxable:    types.MustMoney("999.60"),
				IGST:       types.MustMoney("179.93"),
				Rounding:   types.MustMoney("0.47"),
				GrandTotal: types.MustMoney("1180"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockJournalRepo()
			gen := NewGenerator(repo, sequence.NewMockAllocator(), allControls())

			voucher, err := gen.Generate(context.Background(), salesInput(tt.totals))
			require.NoError(t, err)

			debit, credit := sumDebitsCredits(voucher)
			assert.True(t, debit.Equal(credit), "debit %s != credit %s", debit, credit)
			assert.True(t, voucher.Header.Total.Equal(debit))
			require.Len(t, repo.created, 1)
		})
	}
}

func TestGeneratorSalesInvoiceScenario(t *testing.T) {
	repo := newMockJournalRepo()
	resolver := allControls()
	gen := NewGenerator(repo, sequence.NewMockAllocator(), resolver)

	in := salesInput(Totals{
		Taxable:    types.MustMoney("1000"),
		CGST:       types.MustMoney("90"),
		SGST:       types.MustMoney("90"),
		Rounding:   types.MustMoney("-1"),
		GrandTotal: types.MustMoney("1179"),
	})

	voucher, err := gen.Generate(context.Background(), in)
	require.NoError(t, err)

	// Party debit, sales + CGST + SGST credits, rounding debit.
	require.Len(t, voucher.Lines, 5)

	party := voucher.Lines[0]
	assert.Equal(t, in.PartyAccountID, party.AccountID)
	require.NotNil(t, party.PartyID)
	assert.Equal(t, in.PartyID, *party.PartyID)
	assert.True(t, types.MustMoney("1179").Equal(party.Debit))
	assert.True(t, party.Credit.IsZero())

	sales := voucher.Lines[1]
	assert.Equal(t, resolver.accounts[account.ControlSales], sales.AccountID)
	assert.True(t, types.MustMoney("1000").Equal(sales.Credit))

	assert.True(t, types.MustMoney("90").Equal(voucher.Lines[2].Credit))
	assert.True(t, types.MustMoney("90").Equal(voucher.Lines[3].Credit))

	// Negative rounding lands on the debit side at absolute value.
	rounding := voucher.Lines[4]
	assert.Equal(t, resolver.accounts[account.ControlRounding], rounding.AccountID)
	assert.True(t, types.MustMoney("1").Equal(rounding.Debit))
	assert.True(t, rounding.Credit.IsZero())

	// Debits 1179 + 1 = credits 1000 + 90 + 90 = 1180.
	debit, credit := sumDebitsCredits(voucher)
	assert.True(t, types.MustMoney("1180").Equal(debit))
	assert.True(t, types.MustMoney("1180").Equal(credit))

	// The ledger mirror carries one entry per line with a narration.
	require.Len(t, voucher.Entries, 5)
	assert.Equal(t, "Being Sales amount for invoice #42", voucher.Entries[0].Narration)
	assert.Equal(t, "Being Sales amount for invoice #42", voucher.Entries[1].Narration)
	assert.Equal(t, "Being CGST amount for invoice #42", voucher.Entries[2].Narration)
	assert.Equal(t, "Being SGST amount for invoice #42", voucher.Entries[3].Narration)
	assert.Equal(t, "Being Rounding Off amount for invoice #42", voucher.Entries[4].Narration)

	// Line numbers are sequential.
	for i, line := range voucher.Lines {
		assert.Equal(t, i+1, line.LineNo)
	}
}

func TestGeneratorPurchaseReturn(t *testing.T) {
	repo := newMockJournalRepo()
	resolver := allControls()
	gen := NewGenerator(repo, sequence.NewMockAllocator(), resolver)

	in := salesInput(Totals{
		Taxable:    types.MustMoney("500"),
		IGST:       types.MustMoney("90"),
		GrandTotal: types.MustMoney("590"),
	})
	in.DocumentType = DocTypePurchaseReturn

	voucher, err := gen.Generate(context.Background(), in)
	require.NoError(t, err)

	// Value is credited to the purchase control, not sales.
	assert.Equal(t, resolver.accounts[account.ControlPurchase], voucher.Lines[1].AccountID)
	assert.Equal(t, "Being Purchase Return amount for invoice #42", voucher.Entries[0].Narration)
	assert.Equal(t, "Being IGST amount for invoice #42", voucher.Entries[2].Narration)
}

func TestGeneratorRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("journal already exists for the document", func(t *testing.T) {
		repo := newMockJournalRepo()
		gen := NewGenerator(repo, sequence.NewMockAllocator(), allControls())

		in := salesInput(Totals{
			Taxable:    types.MustMoney("100"),
			GrandTotal: types.MustMoney("100"),
		})
		_, err := gen.Generate(ctx, in)
		require.NoError(t, err)

		_, err = gen.Generate(ctx, in)
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeAlreadyPosted))
		assert.Len(t, repo.created, 1)
	})

	t.Run("missing tax control account", func(t *testing.T) {
		resolver := newMockResolver(account.ControlSales)
		gen := NewGenerator(newMockJournalRepo(), sequence.NewMockAllocator(), resolver)

		in := salesInput(Totals{
			Taxable:    types.MustMoney("100"),
			CGST:       types.MustMoney("9"),
			SGST:       types.MustMoney("9"),
			GrandTotal: types.MustMoney("118"),
		})
		_, err := gen.Generate(ctx, in)
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidAccountMapping))
	})

	t.Run("missing party account", func(t *testing.T) {
		gen := NewGenerator(newMockJournalRepo(), sequence.NewMockAllocator(), allControls())

		in := salesInput(Totals{
			Taxable:    types.MustMoney("100"),
			GrandTotal: types.MustMoney("100"),
		})
		in.PartyAccountID = id.Nil()

		_, err := gen.Generate(ctx, in)
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidAccountMapping))
	})

	t.Run("document type without journal", func(t *testing.T) {
		gen := NewGenerator(newMockJournalRepo(), sequence.NewMockAllocator(), allControls())

		in := salesInput(Totals{GrandTotal: types.MustMoney("100")})
		in.DocumentType = "Purchase"

		_, err := gen.Generate(ctx, in)
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	})

	t.Run("inconsistent totals rejected", func(t *testing.T) {
		gen := NewGenerator(newMockJournalRepo(), sequence.NewMockAllocator(), allControls())

		in := salesInput(Totals{
			Taxable:    types.MustMoney("1000"),
			GrandTotal: types.MustMoney("999"),
		})
		_, err := gen.Generate(ctx, in)
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeInternal))
	})
}

func TestGeneratorNumberAllocation(t *testing.T) {
	repo := newMockJournalRepo()
	gen := NewGenerator(repo, sequence.NewMockAllocator(), allControls())

	fiscalYear := id.New()
	inFirst := salesInput(Totals{
		Taxable:    types.MustMoney("10"),
		GrandTotal: types.MustMoney("10"),
	})
	inFirst.FiscalYearID = fiscalYear
	first, err := gen.Generate(context.Background(), inFirst)
	require.NoError(t, err)

	inSecond := salesInput(Totals{
		Taxable:    types.MustMoney("20"),
		GrandTotal: types.MustMoney("20"),
	})
	inSecond.FiscalYearID = fiscalYear
	second, err := gen.Generate(context.Background(), inSecond)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.Header.Number)
	assert.Equal(t, int64(2), second.Header.Number)
}
