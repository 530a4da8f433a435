// Package refund decides whether a refund request on a trade falls inside the
// policy window. It composes the generic zone, date and business-hours
// machinery with a refund policy: TOS cutoff, staffed hours and the hour
// limits per source channel and TOS version.
package refund

import (
	"fmt"
)

// =============================================================================
// SOURCE CHANNEL
// =============================================================================

// Source is the channel a refund was requested through.
type Source string

const (
	SourcePhone  Source = "phone"
	SourceWebApp Source = "webApp"
)

// Sources lists the recognized channels.
func Sources() []Source { return []Source{SourcePhone, SourceWebApp} }

func (s Source) Valid() bool { return s == SourcePhone || s == SourceWebApp }

// =============================================================================
// TRADE RECORD - Immutable input, never mutated by the engine
// =============================================================================

// TradeRecord is one trade as it arrives from the dataset. Date fields are
// slash-separated and their field order depends on the record's zone.
type TradeRecord struct {
	Name              string `json:"name"`
	TimeZone          string `json:"timeZone"`
	SignUpDate        string `json:"signUpDate"`
	Source            Source `json:"source"`
	InvestmentDate    string `json:"investmentDate"`
	InvestmentTime    string `json:"investmentTime"`
	RefundRequestDate string `json:"refundRequestDate"`
	RefundRequestTime string `json:"refundRequestTime"`
}

// =============================================================================
// TOS VERSION
// =============================================================================

type TOSVersion string

const (
	TOSUnknown TOSVersion = ""
	TOSOld     TOSVersion = "old"
	TOSNew     TOSVersion = "new"
)

func (v TOSVersion) Valid() bool { return v == TOSOld || v == TOSNew }

// =============================================================================
// DECISION - Approved, denied, or could not be determined
// =============================================================================

// Decision is tri-state. Indeterminate is the zero value and is never the
// same thing as Denied.
type Decision int

const (
	Indeterminate Decision = iota
	Approved
	Denied
)

// Label returns "approved", "denied" or "indeterminate".
func (d Decision) Label() string {
	switch d {
	case Approved:
		return "approved"
	case Denied:
		return "denied"
	default:
		return "indeterminate"
	}
}

// Collapsed returns the two-valued label of the legacy trades table, where
// anything not approved was shown as denied.
func (d Decision) Collapsed() string {
	if d == Approved {
		return "approved"
	}
	return "denied"
}

func (d Decision) String() string { return d.Label() }

func (d Decision) MarshalText() ([]byte, error) { return []byte(d.Label()), nil }

func (d *Decision) UnmarshalText(b []byte) error {
	parsed, err := ParseDecision(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDecision is the inverse of Label.
func ParseDecision(s string) (Decision, error) {
	switch s {
	case "approved":
		return Approved, nil
	case "denied":
		return Denied, nil
	case "indeterminate":
		return Indeterminate, nil
	}
	return Indeterminate, fmt.Errorf("unknown decision %q", s)
}
