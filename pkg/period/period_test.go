package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCurrentKey(t *testing.T) {
	now := time.Date(2024, 3, 17, 15, 42, 9, 0, time.UTC)
	key := CurrentKey(now)

	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), key)
}

func TestCurrentKey_NonUTCInput(t *testing.T) {
	loc := time.FixedZone("WAT", 3600)
	// 00:30 on March 1 in WAT is still February 28 in UTC
	now := time.Date(2024, 3, 1, 0, 30, 0, 0, loc)

	key := CurrentKey(now)

	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), key)
}

func TestLookbackBoundary(t *testing.T) {
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)

	boundary := LookbackBoundary(now)

	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), boundary)
}

func TestDaysUntilBlock(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		blockDate time.Time
		expected  int
	}{
		{"already past", now.AddDate(0, 0, -1), 0},
		{"exactly now", now, 0},
		{"two full days", now.AddDate(0, 0, 2), 2},
		{"partial day rounds up", now.Add(36 * time.Hour), 2},
		{"one hour left", now.Add(time.Hour), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysUntilBlock(tt.blockDate, now))
		})
	}
}

func TestBlockDate(t *testing.T) {
	paidAt := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 3, 31, 8, 0, 0, 0, time.UTC), BlockDate(paidAt))
}

func TestSameKey(t *testing.T) {
	march := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	april := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameKey(march, march))
	assert.False(t, SameKey(march, april))
}
