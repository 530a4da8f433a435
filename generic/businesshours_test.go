package generic_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/warp/refund-engine/generic"
)

func utc(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func TestBusinessHours_Normalize(t *testing.T) {
	bh := generic.StandardBusinessHours()

	// 2021-01-04 is a Monday.
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"saturday morning to monday", utc(2021, 1, 9, 10, 0), utc(2021, 1, 11, 9, 0)},
		{"saturday late to monday", utc(2021, 1, 2, 17, 0), utc(2021, 1, 4, 9, 0)},
		{"sunday night to monday", utc(2021, 1, 10, 23, 0), utc(2021, 1, 11, 9, 0)},
		{"sunday before open to monday", utc(2021, 1, 10, 3, 0), utc(2021, 1, 11, 9, 0)},
		{"friday evening to monday", utc(2021, 1, 8, 18, 0), utc(2021, 1, 11, 9, 0)},
		{"friday at close to monday", utc(2021, 1, 8, 17, 0), utc(2021, 1, 11, 9, 0)},
		{"tuesday early same day", utc(2021, 1, 5, 3, 0), utc(2021, 1, 5, 9, 0)},
		{"wednesday evening to thursday", utc(2021, 1, 6, 20, 30), utc(2021, 1, 7, 9, 0)},
		{"thursday 23:59 to friday", utc(2021, 1, 7, 23, 59), utc(2021, 1, 8, 9, 0)},
		{"month rollover", utc(2021, 1, 29, 18, 0), utc(2021, 2, 1, 9, 0)},
		{"monday open unchanged", utc(2021, 1, 4, 9, 0), utc(2021, 1, 4, 9, 0)},
		{"friday 16:59 unchanged", utc(2021, 1, 8, 16, 59), utc(2021, 1, 8, 16, 59)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bh.Normalize(tt.in)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestBusinessHours_NormalizeDropsSeconds(t *testing.T) {
	in := time.Date(2021, 1, 5, 3, 15, 42, 999, time.UTC)
	assert.Equal(t, utc(2021, 1, 5, 9, 0), generic.StandardBusinessHours().Normalize(in))
}

func TestBusinessHours_NormalizeWorksInUTC(t *testing.T) {
	// GIVEN: Friday 10:00 PST, which is Friday 18:00 UTC
	pst := time.FixedZone("PST", -8*3600)
	in := time.Date(2021, 1, 8, 10, 0, 0, 0, pst)

	// THEN: the UTC clock decides, so the request moves to Monday
	assert.Equal(t, utc(2021, 1, 11, 9, 0), generic.StandardBusinessHours().Normalize(in))
}

func TestBusinessHours_NormalizeIsIdempotent(t *testing.T) {
	bh := generic.StandardBusinessHours()

	// Every 13 minutes across two full weeks hits each rule many times.
	start := utc(2021, 1, 1, 0, 0)
	for i := 0; i < 14*24*60; i += 13 {
		x := start.Add(time.Duration(i) * time.Minute)
		once := bh.Normalize(x)

		assert.True(t, once.Equal(bh.Normalize(once)), "not idempotent at %s", x)
		assert.True(t, bh.Contains(once), "%s normalized outside hours: %s", x, once)
		assert.False(t, once.Before(x), "%s moved backwards to %s", x, once)
	}
}

func TestBusinessHours_Validate(t *testing.T) {
	assert.NoError(t, generic.StandardBusinessHours().Validate())
	assert.NoError(t, generic.BusinessHours{Open: 0, Close: 24}.Validate())
	assert.Error(t, generic.BusinessHours{Open: 17, Close: 9}.Validate())
	assert.Error(t, generic.BusinessHours{Open: 9, Close: 9}.Validate())
	assert.Error(t, generic.BusinessHours{Open: -1, Close: 9}.Validate())
	assert.Error(t, generic.BusinessHours{Open: 9, Close: 25}.Validate())
}
