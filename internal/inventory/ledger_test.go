package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memLedger mirrors the Ledger contract in memory: a per-call lock stands in
// for the conditional single-document update the mongo implementation relies
// on. The concurrency tests below pin down the behavior both implementations
// must share.
type memLedger struct {
	mu    sync.Mutex
	stock map[string]int
}

func newMemLedger(stock map[string]int) *memLedger {
	return &memLedger{stock: stock}
}

func (l *memLedger) Reserve(_ context.Context, sku string, qty int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	available, ok := l.stock[sku]
	if !ok {
		return UnknownSKUError{SKU: sku}
	}
	if available < qty {
		return OutOfStockError{SKU: sku, Available: available, Requested: qty}
	}
	l.stock[sku] = available - qty
	return nil
}

func (l *memLedger) Release(_ context.Context, sku string, qty int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stock[sku] += qty
	return nil
}

func (l *memLedger) quantity(sku string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stock[sku]
}

var _ Ledger = (*memLedger)(nil)

func TestReserveDecrementsStock(t *testing.T) {
	ledger := newMemLedger(map[string]int{"sku-a": 5})

	require.NoError(t, ledger.Reserve(context.Background(), "sku-a", 2))
	assert.Equal(t, 3, ledger.quantity("sku-a"))
}

func TestReserveReportsAvailableQuantity(t *testing.T) {
	ledger := newMemLedger(map[string]int{"sku-a": 1})

	err := ledger.Reserve(context.Background(), "sku-a", 3)
	var oos OutOfStockError
	require.ErrorAs(t, err, &oos)
	assert.Equal(t, "sku-a", oos.SKU)
	assert.Equal(t, 1, oos.Available)
	assert.Equal(t, 3, oos.Requested)
	assert.Equal(t, 1, ledger.quantity("sku-a"), "failed reservation must not change stock")
}

func TestReserveUnknownSKU(t *testing.T) {
	ledger := newMemLedger(map[string]int{})

	err := ledger.Reserve(context.Background(), "ghost", 1)
	var unknown UnknownSKUError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "ghost", unknown.SKU)
}

func TestReleaseRestoresStock(t *testing.T) {
	ledger := newMemLedger(map[string]int{"sku-a": 5})

	require.NoError(t, ledger.Reserve(context.Background(), "sku-a", 5))
	require.NoError(t, ledger.Release(context.Background(), "sku-a", 5))
	assert.Equal(t, 5, ledger.quantity("sku-a"))
}

// With stock S and N > S concurrent single-unit reservations, exactly S must
// succeed and the rest must fail, leaving stock at zero. An implementation
// with a read-then-write window oversells here.
func TestConcurrentReservationsNeverOversell(t *testing.T) {
	const stock = 7
	const callers = 50

	ledger := newMemLedger(map[string]int{"sku-b": stock})

	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- ledger.Reserve(context.Background(), "sku-b", 1)
		}()
	}
	wg.Wait()
	close(results)

	succeeded, failed := 0, 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		var oos OutOfStockError
		require.ErrorAs(t, err, &oos)
		failed++
	}

	assert.Equal(t, stock, succeeded)
	assert.Equal(t, callers-stock, failed)
	assert.Equal(t, 0, ledger.quantity("sku-b"))
}

func TestConcurrentLastUnit(t *testing.T) {
	ledger := newMemLedger(map[string]int{"sku-c": 1})

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- ledger.Reserve(context.Background(), "sku-c", 1)
		}()
	}
	wg.Wait()
	close(results)

	var errs []error
	for err := range results {
		errs = append(errs, err)
	}
	if errs[0] == nil {
		assert.Error(t, errs[1], "both callers must not win the last unit")
	} else {
		assert.NoError(t, errs[1])
	}
	assert.Equal(t, 0, ledger.quantity("sku-c"))
}
