package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSameUTCDay(t *testing.T) {
	tests := []struct {
		name string
		a    time.Time
		b    time.Time
		want bool
	}{
		{
			name: "same day",
			a:    time.Date(2025, 3, 10, 0, 0, 1, 0, time.UTC),
			b:    time.Date(2025, 3, 10, 23, 59, 59, 0, time.UTC),
			want: true,
		},
		{
			name: "midnight boundary",
			a:    time.Date(2025, 3, 10, 23, 59, 59, 0, time.UTC),
			b:    time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
			want: false,
		},
		{
			name: "local zones compared in UTC",
			// 23:00-05:00 is 04:00 UTC the next day
			a:    time.Date(2025, 3, 10, 23, 0, 0, 0, time.FixedZone("EST", -5*3600)),
			b:    time.Date(2025, 3, 11, 2, 0, 0, 0, time.UTC),
			want: true,
		},
		{
			name: "same local day, different UTC days",
			// 01:00+09:00 is 16:00 UTC the previous day
			a:    time.Date(2025, 3, 11, 1, 0, 0, 0, time.FixedZone("JST", 9*3600)),
			b:    time.Date(2025, 3, 11, 1, 0, 0, 0, time.UTC),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SameUTCDay(tt.a, tt.b))
		})
	}
}

func TestUTCDay(t *testing.T) {
	in := time.Date(2025, 3, 10, 17, 42, 9, 123, time.FixedZone("EST", -5*3600))
	got := UTCDay(in)

	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), got)
}
