/*
policies.go - Refund policy configuration

PURPOSE:
  A Policy bundles everything that can vary between refund rulesets:
  the TOS cutoff date, the staffed hours phone requests are snapped into,
  and the approval limit in hours for each source channel and TOS version.

STANDARD POLICY:
  | source | TOS | limit (h) |
  |--------|-----|-----------|
  | phone  | new | 24        |
  | phone  | old | 4         |
  | webApp | new | 16        |
  | webApp | old | 8         |

  TOS cutoff 2020-01-02, staffed hours Mon-Fri 09:00-17:00 UTC.

CUSTOMIZATION:
  factory/policy.go builds policies from JSON or YAML definitions.
  Any policy must define all four limits to pass Validate.

SEE ALSO:
  - evaluator.go: Applies a policy to trade records
  - factory/policy.go: Declarative policy definitions
*/
package refund

import (
	"fmt"

	"github.com/warp/refund-engine/generic"
)

// LimitKey selects one cell of the limits table.
type LimitKey struct {
	Source Source
	TOS    TOSVersion
}

// Policy is a complete refund ruleset.
type Policy struct {
	ID            string
	Name          string
	TOSCutoff     generic.CivilDate
	BusinessHours generic.BusinessHours
	Limits        map[LimitKey]generic.Amount
}

// StandardPolicyID identifies the built-in policy.
const StandardPolicyID = "refund-standard"

// StandardPolicy returns the built-in refund policy.
func StandardPolicy() *Policy {
	return &Policy{
		ID:            StandardPolicyID,
		Name:          "Standard Refund Window",
		TOSCutoff:     StandardTOSCutoff(),
		BusinessHours: generic.StandardBusinessHours(),
		Limits: map[LimitKey]generic.Amount{
			{SourcePhone, TOSNew}:  hours(24),
			{SourcePhone, TOSOld}:  hours(4),
			{SourceWebApp, TOSNew}: hours(16),
			{SourceWebApp, TOSOld}: hours(8),
		},
	}
}

func hours(n int) generic.Amount { return generic.NewAmountFromInt(n, generic.UnitHours) }

// Limit returns the approval window for a source and TOS version.
func (p *Policy) Limit(source Source, tos TOSVersion) (generic.Amount, error) {
	if !source.Valid() {
		return generic.Amount{}, &generic.SourceError{Source: string(source)}
	}
	limit, ok := p.Limits[LimitKey{Source: source, TOS: tos}]
	if !ok {
		return generic.Amount{}, fmt.Errorf("%w: no limit for %s/%s", generic.ErrInvalidPolicy, source, tos)
	}
	return limit, nil
}

// TOSClassifier returns a classifier for the policy's cutoff.
func (p *Policy) TOSClassifier() TOSClassifier {
	return TOSClassifier{Cutoff: p.TOSCutoff}
}

// Validate checks that the policy can decide every well-formed record.
func (p *Policy) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: id is required", generic.ErrInvalidPolicy)
	}
	if p.TOSCutoff.IsZero() {
		return fmt.Errorf("%w: tos cutoff is required", generic.ErrInvalidPolicy)
	}
	if err := p.BusinessHours.Validate(); err != nil {
		return fmt.Errorf("%w: %v", generic.ErrInvalidPolicy, err)
	}
	for _, s := range Sources() {
		for _, v := range []TOSVersion{TOSNew, TOSOld} {
			limit, ok := p.Limits[LimitKey{Source: s, TOS: v}]
			if !ok {
				return fmt.Errorf("%w: missing limit for %s/%s", generic.ErrInvalidPolicy, s, v)
			}
			if limit.IsNegative() {
				return fmt.Errorf("%w: negative limit for %s/%s", generic.ErrInvalidPolicy, s, v)
			}
			if limit.Unit != generic.UnitHours {
				return fmt.Errorf("%w: limit for %s/%s must be in hours", generic.ErrInvalidPolicy, s, v)
			}
		}
	}
	return nil
}
