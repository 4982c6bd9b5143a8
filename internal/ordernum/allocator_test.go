package ordernum

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatZeroPadsToFourDigits(t *testing.T) {
	assert.Equal(t, "ORD-20250115-0001", Format("20250115", 1))
	assert.Equal(t, "ORD-20250115-0042", Format("20250115", 42))
	assert.Equal(t, "ORD-20250115-9999", Format("20250115", 9999))
}

func TestFormatGrowsPastFourDigits(t *testing.T) {
	assert.Equal(t, "ORD-20250115-10000", Format("20250115", 10000))
	assert.Equal(t, "ORD-20250115-123456", Format("20250115", 123456))
}

func TestDateKeyUsesUTCCalendarDate(t *testing.T) {
	loc := time.FixedZone("UTC+6", 6*60*60)
	// 01:30 local on Jan 16 is still Jan 15 in UTC.
	local := time.Date(2025, 1, 16, 1, 30, 0, 0, loc)
	assert.Equal(t, "20250115", DateKey(local))
}

// memAllocator mirrors the counter semantics: one atomically incremented
// sequence per date key. The uniqueness property below is the contract the
// mongo implementation delegates to FindOneAndUpdate with $inc.
type memAllocator struct {
	mu   sync.Mutex
	seqs map[string]int64
}

func (a *memAllocator) Next(_ context.Context, t time.Time) (string, error) {
	key := DateKey(t)
	a.mu.Lock()
	a.seqs[key]++
	seq := a.seqs[key]
	a.mu.Unlock()
	return Format(key, seq), nil
}

var _ Allocator = (*memAllocator)(nil)

func TestConcurrentNextReturnsDistinctNumbers(t *testing.T) {
	const callers = 100

	alloc := &memAllocator{seqs: make(map[string]int64)}
	day := time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	numbers := make(chan string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := alloc.Next(context.Background(), day)
			require.NoError(t, err)
			numbers <- n
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool, callers)
	for n := range numbers {
		assert.False(t, seen[n], "duplicate order number %s", n)
		seen[n] = true
	}
	assert.Len(t, seen, callers)

	// Gapless: every sequence from 1..callers was issued.
	for seq := int64(1); seq <= callers; seq++ {
		assert.True(t, seen[Format("20250302", seq)])
	}
}

func TestSequencesAreIndependentPerDate(t *testing.T) {
	alloc := &memAllocator{seqs: make(map[string]int64)}

	n1, err := alloc.Next(context.Background(), time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	n2, err := alloc.Next(context.Background(), time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "ORD-20250302-0001", n1)
	assert.Equal(t, "ORD-20250303-0001", n2)
}
