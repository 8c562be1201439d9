package sequence

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"ledgerpost/internal/core/id"
)

func TestScopeKey(t *testing.T) {
	fy := id.MustParse("018f6f44-7000-7000-8000-000000000001")
	scope := Scope{DocType: ScopePurchase, FiscalYearID: fy}
	assert.Equal(t, "PUR_018f6f44-7000-7000-8000-000000000001", scope.Key())

	other := Scope{DocType: ScopeSalesInvoice, FiscalYearID: fy}
	assert.NotEqual(t, scope.Key(), other.Key())
}

func TestMockAllocatorConcurrency(t *testing.T) {
	alloc := NewMockAllocator()
	scope := Scope{DocType: ScopeJournal, FiscalYearID: id.New()}

	const n = 100
	results := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := alloc.Next(context.Background(), scope)
			assert.NoError(t, err)
			results <- v
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int64]bool)
	for v := range results {
		assert.False(t, seen[v], "number %d allocated twice", v)
		seen[v] = true
	}
	assert.Len(t, seen, n)
}
