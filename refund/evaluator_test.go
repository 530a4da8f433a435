package refund_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/refund-engine/generic"
	"github.com/warp/refund-engine/refund"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func hours(t *testing.T, s string) generic.Amount {
	t.Helper()
	a, err := generic.ParseAmount(s, generic.UnitHours)
	require.NoError(t, err)
	return a
}

func utc(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func emma() refund.TradeRecord {
	return refund.TradeRecord{
		Name:              "Emma Smith",
		TimeZone:          "US (PST)",
		SignUpDate:        "1/2/2020",
		Source:            refund.SourcePhone,
		InvestmentDate:    "1/2/2021",
		InvestmentTime:    "06:00",
		RefundRequestDate: "1/2/2021",
		RefundRequestTime: "09:00",
	}
}

// =============================================================================
// WORKED SCENARIOS
// =============================================================================

func TestAssess_PhoneRequestOnSaturdayIsDenied(t *testing.T) {
	// GIVEN: PST phone request on the TOS cutoff day, placed Saturday 17:00 UTC
	// WHEN: Assessing it under the standard policy
	// THEN: The request is snapped to Monday 09:00 UTC, 43h > 4h, denied

	a := refund.DefaultEvaluator().Assess(emma())

	require.NoError(t, a.Reason)
	assert.Equal(t, generic.ZonePST, a.Zone.Code)
	assert.Equal(t, generic.MonthFirst, a.Convention)
	assert.Equal(t, refund.TOSOld, a.TOS, "sign-up equal to the cutoff is old TOS")
	assert.Equal(t, utc(2021, time.January, 2, 14, 0), a.InvestedAt)
	assert.Equal(t, utc(2021, time.January, 2, 17, 0), a.RefundRequestedAt)
	assert.Equal(t, utc(2021, time.January, 4, 9, 0), a.RefundRegisteredAt)
	assert.True(t, a.NormalizedToDesk)
	assert.True(t, hours(t, "43").Equal(a.ElapsedHours), "elapsed %s", a.ElapsedHours)
	assert.True(t, hours(t, "4").Equal(a.LimitHours))
	assert.Equal(t, refund.Denied, a.Decision)
	assert.Equal(t, refund.StandardPolicyID, a.PolicyID)
}

func TestAssess_SameRequestViaWebIsApproved(t *testing.T) {
	// GIVEN: The same record submitted through the web app
	// THEN: No normalization, 3h <= 8h, approved

	rec := emma()
	rec.Source = refund.SourceWebApp

	a := refund.DefaultEvaluator().Assess(rec)

	require.NoError(t, a.Reason)
	assert.Equal(t, a.RefundRequestedAt, a.RefundRegisteredAt)
	assert.False(t, a.NormalizedToDesk)
	assert.True(t, hours(t, "3").Equal(a.ElapsedHours))
	assert.True(t, hours(t, "8").Equal(a.LimitHours))
	assert.Equal(t, refund.Approved, a.Decision)
}

func TestEvaluate_SampleDataset(t *testing.T) {
	want := map[string]struct {
		decision refund.Decision
		tos      refund.TOSVersion
		elapsed  string
	}{
		"Emma Smith":       {refund.Denied, refund.TOSOld, "43"},
		"Benjamin Johnson": {refund.Denied, refund.TOSNew, "736.5"},
		"Olivia Davis":     {refund.Approved, refund.TOSNew, "7"},
		"Ethan Anderson":   {refund.Denied, refund.TOSOld, "27"},
		"Sophia Wilson":    {refund.Approved, refund.TOSNew, "7"},
		"Liam Martinez":    {refund.Denied, refund.TOSOld, "241"},
		"Jonathan Giles":   {refund.Denied, refund.TOSOld, "265"},
		"Priya Sharp":      {refund.Denied, refund.TOSNew, "33.5"},
		"Raja Ortiz":       {refund.Denied, refund.TOSNew, "30.5"},
		"Livia Burns":      {refund.Denied, refund.TOSNew, "27.5"},
		"Lacey Gates":      {refund.Approved, refund.TOSNew, "13.6"},
	}

	ev := refund.DefaultEvaluator()
	trades := refund.SampleTrades()
	require.Len(t, trades, len(want))

	for _, rec := range trades {
		t.Run(rec.Name, func(t *testing.T) {
			w, ok := want[rec.Name]
			require.True(t, ok)

			a := ev.Assess(rec)
			require.NoError(t, a.Reason)
			assert.Equal(t, w.decision, a.Decision)
			assert.Equal(t, w.tos, a.TOS)
			assert.True(t, hours(t, w.elapsed).Equal(a.ElapsedHours), "elapsed %s", a.ElapsedHours)
			assert.Equal(t, w.decision, ev.Evaluate(rec))
		})
	}
}

func TestAssess_PhoneNormalizationCases(t *testing.T) {
	ev := refund.DefaultEvaluator()

	// Priya: Wednesday 20:00 UTC, moved to Thursday 09:00 UTC.
	priya := ev.Assess(refund.SampleTrades()[7])
	assert.Equal(t, utc(2021, time.May, 6, 9, 0), priya.RefundRegisteredAt)

	// Raja: Sunday 12:00 UTC, moved to Monday 09:00 UTC.
	raja := ev.Assess(refund.SampleTrades()[8])
	assert.Equal(t, utc(2022, time.January, 17, 9, 0), raja.RefundRegisteredAt)

	// Livia: Monday 03:00 UTC, moved to 09:00 the same day.
	livia := ev.Assess(refund.SampleTrades()[9])
	assert.Equal(t, utc(2022, time.January, 17, 3, 0), livia.RefundRequestedAt)
	assert.Equal(t, utc(2022, time.January, 17, 9, 0), livia.RefundRegisteredAt)

	// Sophia: Tuesday 13:00 UTC is staffed, left alone.
	sophia := ev.Assess(refund.SampleTrades()[4])
	assert.False(t, sophia.NormalizedToDesk)
	assert.Equal(t, sophia.RefundRequestedAt, sophia.RefundRegisteredAt)
}

func TestAssess_WebRequestsAreNeverNormalized(t *testing.T) {
	ev := refund.DefaultEvaluator()

	// Saturday, Sunday, Friday night and early weekday, all in GMT.
	for _, date := range []string{"2/1/2021", "3/1/2021", "8/1/2021", "5/1/2021"} {
		for _, clock := range []string{"03:00", "12:00", "18:00", "23:59"} {
			rec := refund.TradeRecord{
				TimeZone: "Europe (GMT)", SignUpDate: "1/1/2019", Source: refund.SourceWebApp,
				InvestmentDate: "1/1/2021", InvestmentTime: "00:00",
				RefundRequestDate: date, RefundRequestTime: clock,
			}
			a := ev.Assess(rec)
			require.NoError(t, a.Reason)
			assert.Equal(t, a.RefundRequestedAt, a.RefundRegisteredAt, "%s %s", date, clock)
			assert.False(t, a.NormalizedToDesk)
		}
	}
}

// =============================================================================
// NEGATIVE ELAPSED TIME
// =============================================================================

func TestAssess_RefundBeforeInvestmentIsApproved(t *testing.T) {
	// Negative elapsed time is always within the window.
	ev := refund.DefaultEvaluator()

	t.Run("web", func(t *testing.T) {
		a := ev.Assess(refund.TradeRecord{
			TimeZone: "Europe (GMT)", SignUpDate: "1/1/2019", Source: refund.SourceWebApp,
			InvestmentDate: "1/3/2021", InvestmentTime: "12:00",
			RefundRequestDate: "1/3/2021", RefundRequestTime: "10:00",
		})
		require.NoError(t, a.Reason)
		assert.True(t, hours(t, "-2").Equal(a.ElapsedHours))
		assert.Equal(t, refund.Approved, a.Decision)
	})

	t.Run("phone inside staffed hours", func(t *testing.T) {
		// Tuesday 2 February 2021
		a := ev.Assess(refund.TradeRecord{
			TimeZone: "Europe (GMT)", SignUpDate: "1/1/2019", Source: refund.SourcePhone,
			InvestmentDate: "2/2/2021", InvestmentTime: "10:00",
			RefundRequestDate: "2/2/2021", RefundRequestTime: "09:30",
		})
		require.NoError(t, a.Reason)
		assert.True(t, hours(t, "-0.5").Equal(a.ElapsedHours))
		assert.Equal(t, refund.Approved, a.Decision)
	})
}

func TestAssess_LimitBoundaryIsInclusive(t *testing.T) {
	// Exactly 8h on web/old is approved, one minute more is denied.
	ev := refund.DefaultEvaluator()
	rec := refund.TradeRecord{
		TimeZone: "Europe (GMT)", SignUpDate: "1/1/2019", Source: refund.SourceWebApp,
		InvestmentDate: "4/1/2021", InvestmentTime: "08:00",
		RefundRequestDate: "4/1/2021", RefundRequestTime: "16:00",
	}
	assert.Equal(t, refund.Approved, ev.Evaluate(rec))

	rec.RefundRequestTime = "16:01"
	assert.Equal(t, refund.Denied, ev.Evaluate(rec))
}

// =============================================================================
// INDETERMINATE RESULTS
// =============================================================================

func TestAssess_Indeterminate(t *testing.T) {
	ev := refund.DefaultEvaluator()

	tests := []struct {
		name   string
		mutate func(r *refund.TradeRecord)
		reason error
	}{
		{"unknown zone label", func(r *refund.TradeRecord) { r.TimeZone = "Asia (JST)" }, generic.ErrUnknownZoneLabel},
		{"bare zone code", func(r *refund.TradeRecord) { r.TimeZone = "PST" }, generic.ErrUnknownZoneLabel},
		{"empty zone", func(r *refund.TradeRecord) { r.TimeZone = "" }, generic.ErrUnknownZoneLabel},
		{"bad sign-up date", func(r *refund.TradeRecord) { r.SignUpDate = "13/1/2020" }, generic.ErrDateParse},
		{"bad investment date", func(r *refund.TradeRecord) { r.InvestmentDate = "2021-01-02" }, generic.ErrDateParse},
		{"bad investment time", func(r *refund.TradeRecord) { r.InvestmentTime = "6am" }, generic.ErrDateParse},
		{"single digit investment hour", func(r *refund.TradeRecord) { r.InvestmentTime = "6:00" }, generic.ErrDateParse},
		{"day-first date under US zone", func(r *refund.TradeRecord) { r.RefundRequestDate = "15/01/2022" }, generic.ErrDateParse},
		{"impossible refund date", func(r *refund.TradeRecord) { r.RefundRequestDate = "2/30/2021" }, generic.ErrDateParse},
		{"unknown source", func(r *refund.TradeRecord) { r.Source = "fax" }, generic.ErrUnrecognizedSource},
		{"empty source", func(r *refund.TradeRecord) { r.Source = "" }, generic.ErrUnrecognizedSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := emma()
			tt.mutate(&rec)

			a := ev.Assess(rec)
			assert.Equal(t, refund.Indeterminate, a.Decision)
			assert.NotEqual(t, refund.Denied, a.Decision)
			assert.ErrorIs(t, a.Reason, tt.reason)
			assert.Equal(t, refund.Indeterminate, ev.Evaluate(rec))
		})
	}
}

func TestAssess_UnknownZoneShortCircuits(t *testing.T) {
	// Even with garbage dates, an unknown zone is reported first.
	a := refund.DefaultEvaluator().Assess(refund.TradeRecord{TimeZone: "Mars (MST)", SignUpDate: "x"})
	assert.ErrorIs(t, a.Reason, generic.ErrUnknownZoneLabel)
	assert.Equal(t, refund.TOSUnknown, a.TOS)
	assert.True(t, a.InvestedAt.IsZero())
}

// =============================================================================
// DECISION
// =============================================================================

func TestDecision_Labels(t *testing.T) {
	assert.Equal(t, "approved", refund.Approved.Label())
	assert.Equal(t, "denied", refund.Denied.Label())
	assert.Equal(t, "indeterminate", refund.Indeterminate.Label())

	// The legacy table shows indeterminate as denied.
	assert.Equal(t, "approved", refund.Approved.Collapsed())
	assert.Equal(t, "denied", refund.Denied.Collapsed())
	assert.Equal(t, "denied", refund.Indeterminate.Collapsed())

	var zero refund.Decision
	assert.Equal(t, refund.Indeterminate, zero)

	for _, d := range []refund.Decision{refund.Approved, refund.Denied, refund.Indeterminate} {
		text, err := d.MarshalText()
		require.NoError(t, err)

		var back refund.Decision
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, d, back)
	}

	_, err := refund.ParseDecision("maybe")
	assert.Error(t, err)
}
