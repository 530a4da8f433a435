package refund

import (
	"time"

	"github.com/warp/refund-engine/generic"
)

// =============================================================================
// EVALUATOR - Record in, tri-state decision out
// =============================================================================

// Evaluator applies a policy to trade records. It holds only read-only
// tables, so one Evaluator may be shared across goroutines.
type Evaluator struct {
	zones  *generic.ZoneResolver
	policy *Policy
}

// NewEvaluator returns an evaluator over a zone table and a validated policy.
func NewEvaluator(zones *generic.ZoneResolver, policy *Policy) *Evaluator {
	return &Evaluator{zones: zones, policy: policy}
}

// DefaultEvaluator uses the default zone table and the standard policy.
func DefaultEvaluator() *Evaluator {
	return NewEvaluator(generic.DefaultZoneResolver(), StandardPolicy())
}

func (e *Evaluator) Policy() *Policy              { return e.policy }
func (e *Evaluator) Zones() *generic.ZoneResolver { return e.zones }

// Assessment is a decision together with the values that produced it.
// Fields past the point of failure are zero.
type Assessment struct {
	Record     TradeRecord
	PolicyID   string
	Decision   Decision
	Reason     error // nil unless Decision is Indeterminate
	Zone       generic.Zone
	Convention generic.Convention
	TOS        TOSVersion

	InvestedAt         time.Time // UTC
	RefundRequestedAt  time.Time // UTC, as submitted
	RefundRegisteredAt time.Time // UTC, after business-hours normalization
	NormalizedToDesk   bool
	ElapsedHours       generic.Amount
	LimitHours         generic.Amount
}

// Evaluate returns only the decision for r.
func (e *Evaluator) Evaluate(r TradeRecord) Decision {
	return e.Assess(r).Decision
}

// Assess evaluates r. Unknown zones, unparsable dates and unknown channels
// yield Indeterminate with the cause in Reason; nothing is returned as an error.
func (e *Evaluator) Assess(r TradeRecord) Assessment {
	a := Assessment{Record: r, PolicyID: e.policy.ID}

	zone, err := e.zones.Resolve(r.TimeZone)
	if err != nil {
		return a.indeterminate(err)
	}
	a.Zone = zone
	a.Convention = zone.Region.Convention()

	tos, err := e.policy.TOSClassifier().Classify(r.SignUpDate, zone)
	if err != nil {
		return a.indeterminate(err)
	}
	a.TOS = tos

	invested, err := generic.ParseDateTime(r.InvestmentDate, r.InvestmentTime, a.Convention, zone)
	if err != nil {
		return a.indeterminate(err)
	}
	a.InvestedAt = invested.UTC()

	requested, err := generic.ParseDateTime(r.RefundRequestDate, r.RefundRequestTime, a.Convention, zone)
	if err != nil {
		return a.indeterminate(err)
	}
	a.RefundRequestedAt = requested.UTC()
	a.RefundRegisteredAt = a.RefundRequestedAt
	if r.Source == SourcePhone {
		a.RefundRegisteredAt = e.policy.BusinessHours.Normalize(requested)
		a.NormalizedToDesk = !a.RefundRegisteredAt.Equal(a.RefundRequestedAt)
	}

	a.ElapsedHours = generic.HoursBetween(a.InvestedAt, a.RefundRegisteredAt)

	limit, err := e.policy.Limit(r.Source, tos)
	if err != nil {
		return a.indeterminate(err)
	}
	a.LimitHours = limit

	// A refund registered before the investment has negative elapsed time
	// and is inside every window.
	if a.ElapsedHours.LessThanOrEqual(limit) {
		a.Decision = Approved
	} else {
		a.Decision = Denied
	}
	return a
}

func (a Assessment) indeterminate(err error) Assessment {
	a.Decision = Indeterminate
	a.Reason = err
	return a
}
