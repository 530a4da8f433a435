/*
Package generic provides the domain-agnostic time machinery of the refund engine.

PURPOSE:
  Everything in this package is independent of refunds: resolving zone
  labels to fixed-offset zones, parsing locale-ambiguous date strings,
  snapping instants into staffed business hours and measuring elapsed
  time exactly. The refund package composes these pieces into a policy.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A quantity with a unit (e.g., 43 hours, 1.5 days)
  - HoursBetween: Signed elapsed time between two instants, as an Amount

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal so threshold comparisons are exact
  2. Immutability: Amounts are values; every operation returns a new one
  3. No clocks: Nothing here reads time.Now, so results are deterministic

USAGE:
  elapsed := generic.HoursBetween(investedAt, refundAt)
  limit := generic.NewAmountFromInt(24, generic.UnitHours)
  if elapsed.LessThanOrEqual(limit) { ... }

SEE ALSO:
  - zone.go: Zone label resolution
  - datetime.go: Convention-driven date parsing
  - businesshours.go: Staffed-hours normalization
*/
package generic

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitDays    Unit = "days"
	UnitHours   Unit = "hours"
	UnitMinutes Unit = "minutes"
)

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

func NewAmountFromInt(value int, unit Unit) Amount {
	return Amount{Value: decimal.NewFromInt(int64(value)), Unit: unit}
}

// ParseAmount parses a decimal string such as "33.5" into an Amount.
func ParseAmount(s string, unit Unit) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Value: d, Unit: unit}, nil
}

func (a Amount) Zero() Amount                  { return Amount{Value: decimal.Zero, Unit: a.Unit} }
func (a Amount) Add(b Amount) Amount           { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount           { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) Neg() Amount                   { return Amount{Value: a.Value.Neg(), Unit: a.Unit} }
func (a Amount) IsNegative() bool              { return a.Value.IsNegative() }
func (a Amount) IsZero() bool                  { return a.Value.IsZero() }
func (a Amount) GreaterThan(b Amount) bool     { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool        { return a.Value.LessThan(b.Value) }
func (a Amount) LessThanOrEqual(b Amount) bool { return a.Value.LessThanOrEqual(b.Value) }
func (a Amount) Equal(b Amount) bool           { return a.Unit == b.Unit && a.Value.Equal(b.Value) }
func (a Amount) String() string                { return a.Value.String() + " " + string(a.Unit) }

// Float64 returns the value as a float for display. Never compare with it.
func (a Amount) Float64() float64 {
	f, _ := a.Value.Float64()
	return f
}

// =============================================================================
// ELAPSED TIME
// =============================================================================

var nanosPerHour = decimal.NewFromInt(int64(time.Hour))

// HoursBetween returns to - from in hours. The result is negative when to
// precedes from. Spans like 43h or 13h36m are exact; repeating fractions
// (13h37m) are rounded to decimal.DivisionPrecision (16) places, far below
// the 1ns resolution of the inputs, so comparisons against a limit never flip.
func HoursBetween(from, to time.Time) Amount {
	nanos := decimal.NewFromInt(to.Sub(from).Nanoseconds())
	return Amount{Value: nanos.Div(nanosPerHour), Unit: UnitHours}
}
