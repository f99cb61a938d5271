//go:build unit

package queries

import (
	"testing"
	"time"

	"commerce-server/internal/pkg/keygen"

	"github.com/stretchr/testify/assert"
)

func TestBucketBounds(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name      string
		period    keygen.Period
		at        time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"daily", keygen.Daily, time.Date(2026, 1, 14, 15, 4, 5, 0, time.UTC), day(2026, 1, 14), day(2026, 1, 15)},
		{"weekly from wednesday", keygen.Weekly, time.Date(2026, 1, 14, 15, 0, 0, 0, time.UTC), day(2026, 1, 12), day(2026, 1, 19)},
		{"weekly from sunday belongs to the previous monday", keygen.Weekly, day(2026, 1, 18), day(2026, 1, 12), day(2026, 1, 19)},
		{"weekly across a year boundary", keygen.Weekly, day(2026, 1, 1), day(2025, 12, 29), day(2026, 1, 5)},
		{"monthly", keygen.Monthly, time.Date(2026, 2, 28, 23, 0, 0, 0, time.UTC), day(2026, 2, 1), day(2026, 3, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := bucketBounds(tt.period, tt.at)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}
