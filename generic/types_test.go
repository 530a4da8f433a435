package generic_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/refund-engine/generic"
)

func TestHoursBetween(t *testing.T) {
	from := utc(2021, 1, 2, 14, 0)

	tests := []struct {
		name string
		to   time.Time
		want string
	}{
		{"whole hours", utc(2021, 1, 4, 9, 0), "43"},
		{"half hour", from.Add(33*time.Hour + 30*time.Minute), "33.5"},
		{"minutes", from.Add(13*time.Hour + 36*time.Minute), "13.6"},
		{"negative", from.Add(-30 * time.Minute), "-0.5"},
		{"zero", from, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := generic.HoursBetween(from, tt.to)
			want, err := generic.ParseAmount(tt.want, generic.UnitHours)
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "want %s, got %s", want, got)
		})
	}
}

func TestHoursBetween_Precision(t *testing.T) {
	from := utc(2021, 1, 2, 14, 0)
	limit := generic.NewAmountFromInt(4, generic.UnitHours)

	// 13h37m is a repeating decimal in hours
	got := generic.HoursBetween(from, from.Add(13*time.Hour+37*time.Minute))
	assert.Equal(t, "13.6166666666666667", got.Value.String())

	assert.True(t, generic.HoursBetween(from, from.Add(4*time.Hour)).LessThanOrEqual(limit))
	assert.True(t, generic.HoursBetween(from, from.Add(4*time.Hour+time.Nanosecond)).GreaterThan(limit))
	assert.True(t, generic.HoursBetween(from, from.Add(4*time.Hour-time.Nanosecond)).LessThan(limit))
}

func TestAmount_Comparisons(t *testing.T) {
	limit := generic.NewAmountFromInt(4, generic.UnitHours)

	assert.True(t, generic.NewAmountFromInt(4, generic.UnitHours).LessThanOrEqual(limit))
	assert.True(t, generic.NewAmount(-12.5, generic.UnitHours).LessThanOrEqual(limit))
	assert.False(t, generic.NewAmount(4.01, generic.UnitHours).LessThanOrEqual(limit))
	assert.True(t, generic.NewAmount(-1, generic.UnitHours).IsNegative())
	assert.Equal(t, "4 hours", limit.String())
	assert.InDelta(t, 4.0, limit.Float64(), 1e-9)
}

func TestReasonCode(t *testing.T) {
	assert.Equal(t, "", generic.ReasonCode(nil))
	assert.Equal(t, "unknown_zone_label", generic.ReasonCode(&generic.UnknownZoneError{Label: "x"}))
	assert.Equal(t, "date_parse_failure", generic.ReasonCode(&generic.ParseError{Input: "x"}))
	assert.Equal(t, "unrecognized_source_channel", generic.ReasonCode(&generic.SourceError{Source: "fax"}))
	assert.Equal(t, "internal", generic.ReasonCode(generic.ErrPolicyNotFound))
}
