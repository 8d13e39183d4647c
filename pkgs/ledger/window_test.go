package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReserveWithinLimit(t *testing.T) {
	l := New(60*time.Second, 100)
	now := time.Now()

	ok, _ := l.Reserve("0xabc", "job-1", 40, now)
	assert.True(t, ok)
	assert.EqualValues(t, 40, l.Sum("0xabc", now))

	ok, _ = l.Reserve("0xabc", "job-2", 50, now)
	assert.True(t, ok)
	assert.EqualValues(t, 90, l.Sum("0xabc", now))
}

func TestReserveDeniedOverLimit(t *testing.T) {
	l := New(60*time.Second, 100)
	now := time.Now()

	ok, _ := l.Reserve("0xabc", "job-1", 90, now)
	assert.True(t, ok)

	ok, denial := l.Reserve("0xabc", "job-2", 20, now)
	assert.False(t, ok)
	assert.EqualValues(t, 90, denial.Used)
	assert.EqualValues(t, 20, denial.Incoming)
	assert.EqualValues(t, 100, denial.Limit)
	assert.EqualValues(t, 90, l.Sum("0xabc", now))
}

func TestRollbackRemovesOnlyMatchingJobID(t *testing.T) {
	l := New(60*time.Second, 1000)
	now := time.Now()

	l.Reserve("0xabc", "job-1", 30, now)
	l.Reserve("0xabc", "job-2", 30, now)

	l.Rollback("0xabc", "job-1")
	assert.EqualValues(t, 30, l.Sum("0xabc", now))

	l.Rollback("0xabc", "job-1")
	assert.EqualValues(t, 30, l.Sum("0xabc", now))
}

func TestPurgeExpiresOldEntriesAndDeletesEmptyWallet(t *testing.T) {
	l := New(1*time.Second, 1000)
	start := time.Now()

	l.Reserve("0xabc", "job-1", 50, start)
	assert.EqualValues(t, 50, l.Sum("0xabc", start))

	later := start.Add(2 * time.Second)
	l.Purge(later)

	assert.EqualValues(t, 0, l.Sum("0xabc", later))
	_, exists := l.wallets["0xabc"]
	assert.False(t, exists)
}

func TestEntryExactlyAtWindowEdgeIsRetained(t *testing.T) {
	l := New(60*time.Second, 100)
	start := time.Now()

	l.Reserve("0xabc", "job-1", 50, start)

	edge := start.Add(60 * time.Second)
	assert.EqualValues(t, 50, l.Sum("0xabc", edge))
	assert.EqualValues(t, 0, l.Sum("0xabc", edge.Add(time.Nanosecond)))
}

func TestReserveAfterWindowExpiryAllowsFreshSum(t *testing.T) {
	l := New(1*time.Second, 100)
	start := time.Now()

	ok, _ := l.Reserve("0xabc", "job-1", 90, start)
	assert.True(t, ok)

	later := start.Add(2 * time.Second)
	ok, _ = l.Reserve("0xabc", "job-2", 90, later)
	assert.True(t, ok)
	assert.EqualValues(t, 90, l.Sum("0xabc", later))
}
