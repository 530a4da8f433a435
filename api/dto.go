/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's assessments and the audit store's records from the external
  API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Zones:
    ZoneDTO

  Evaluation:
    AssessmentDTO (single record, full detail)
    EvaluateBatchRequest, RunDTO, EvaluationDTO (persisted runs)

  Policy:
    PolicyDTO (wraps factory.PolicyJSON), CreatePolicyRequest

DECISIONS:
  "decision" is always one of approved, denied, indeterminate.
  "legacy_decision" collapses indeterminate into denied for callers that
  render the two-valued trades table.

INSTANTS:
  Every instant is RFC3339 in UTC.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/policy.go: PolicyJSON type
*/
package api

import (
	"time"

	"github.com/warp/refund-engine/factory"
	"github.com/warp/refund-engine/generic"
	"github.com/warp/refund-engine/refund"
	"github.com/warp/refund-engine/store/sqlite"
)

// =============================================================================
// ZONES
// =============================================================================

// ZoneDTO is one row of the zone table.
type ZoneDTO struct {
	Label      string `json:"label"`
	Code       string `json:"code"`
	Offset     string `json:"offset"` // e.g. "-08:00"
	Region     string `json:"region"`
	Convention string `json:"convention"` // M/D/YYYY or D/M/YYYY
}

func toZoneDTO(e generic.ZoneEntry) ZoneDTO {
	return ZoneDTO{
		Label:      e.Label,
		Code:       string(e.Zone.Code),
		Offset:     time.Unix(0, 0).In(e.Zone.Location()).Format("-07:00"),
		Region:     string(e.Zone.Region),
		Convention: e.Zone.Region.Convention().String(),
	}
}

// =============================================================================
// EVALUATION
// =============================================================================

// AssessmentDTO explains the decision for one trade record.
type AssessmentDTO struct {
	Name               string `json:"name"`
	TimeZone           string `json:"time_zone"`
	Source             string `json:"source"`
	PolicyID           string `json:"policy_id"`
	Decision           string `json:"decision"`
	LegacyDecision     string `json:"legacy_decision"`
	ReasonCode         string `json:"reason_code,omitempty"`
	Reason             string `json:"reason,omitempty"`
	Zone               string `json:"zone,omitempty"`
	Convention         string `json:"convention,omitempty"`
	TOS                string `json:"tos,omitempty"`
	InvestedAt         string `json:"invested_at,omitempty"`
	RefundRequestedAt  string `json:"refund_requested_at,omitempty"`
	RefundRegisteredAt string `json:"refund_registered_at,omitempty"`
	NormalizedToDesk   bool   `json:"normalized_to_desk"`
	ElapsedHours       string `json:"elapsed_hours,omitempty"`
	LimitHours         string `json:"limit_hours,omitempty"`
}

func toAssessmentDTO(a refund.Assessment) AssessmentDTO {
	dto := AssessmentDTO{
		Name:             a.Record.Name,
		TimeZone:         a.Record.TimeZone,
		Source:           string(a.Record.Source),
		PolicyID:         a.PolicyID,
		Decision:         a.Decision.Label(),
		LegacyDecision:   a.Decision.Collapsed(),
		ReasonCode:       generic.ReasonCode(a.Reason),
		Zone:             string(a.Zone.Code),
		TOS:              string(a.TOS),
		NormalizedToDesk: a.NormalizedToDesk,
	}
	if a.Zone.Code != "" {
		dto.Convention = a.Convention.String()
	}
	if a.Reason != nil {
		dto.Reason = a.Reason.Error()
		return dto
	}
	dto.InvestedAt = formatInstant(a.InvestedAt)
	dto.RefundRequestedAt = formatInstant(a.RefundRequestedAt)
	dto.RefundRegisteredAt = formatInstant(a.RefundRegisteredAt)
	dto.ElapsedHours = a.ElapsedHours.Value.String()
	dto.LimitHours = a.LimitHours.Value.String()
	return dto
}

// EvaluateBatchRequest is the body of POST /api/evaluations.
type EvaluateBatchRequest struct {
	PolicyID string               `json:"policy_id,omitempty"` // default policy when empty
	Trades   []refund.TradeRecord `json:"trades"`
}

// RunDTO is a persisted batch evaluation.
type RunDTO struct {
	ID          string          `json:"id"`
	PolicyID    string          `json:"policy_id"`
	CreatedAt   string          `json:"created_at"`
	Summary     refund.Summary  `json:"summary"`
	Evaluations []EvaluationDTO `json:"evaluations,omitempty"`
}

// EvaluationDTO is one stored decision.
type EvaluationDTO struct {
	Position           int    `json:"position"`
	Name               string `json:"name"`
	TimeZone           string `json:"time_zone"`
	Source             string `json:"source"`
	Decision           string `json:"decision"`
	LegacyDecision     string `json:"legacy_decision"`
	ReasonCode         string `json:"reason_code,omitempty"`
	Reason             string `json:"reason,omitempty"`
	TOS                string `json:"tos,omitempty"`
	ElapsedHours       string `json:"elapsed_hours,omitempty"`
	LimitHours         string `json:"limit_hours,omitempty"`
	InvestedAt         string `json:"invested_at,omitempty"`
	RefundRegisteredAt string `json:"refund_registered_at,omitempty"`
}

func toRunDTO(run sqlite.Run) RunDTO {
	dto := RunDTO{
		ID:        run.ID,
		PolicyID:  run.PolicyID,
		CreatedAt: formatInstant(run.CreatedAt),
		Summary:   run.Summary,
	}
	for _, e := range run.Evaluations {
		ev := EvaluationDTO{
			Position:       e.Position,
			Name:           e.Subject,
			TimeZone:       e.ZoneLabel,
			Source:         e.Source,
			Decision:       e.Decision.Label(),
			LegacyDecision: e.Decision.Collapsed(),
			ReasonCode:     e.ReasonCode,
			Reason:         e.Reason,
			TOS:            e.TOS,
		}
		if e.ElapsedHours != nil {
			ev.ElapsedHours = e.ElapsedHours.Value.String()
		}
		if e.LimitHours != nil {
			ev.LimitHours = e.LimitHours.Value.String()
		}
		if e.InvestedAt != nil {
			ev.InvestedAt = formatInstant(*e.InvestedAt)
		}
		if e.RefundRegisteredAt != nil {
			ev.RefundRegisteredAt = formatInstant(*e.RefundRegisteredAt)
		}
		dto.Evaluations = append(dto.Evaluations, ev)
	}
	return dto
}

// =============================================================================
// POLICIES
// =============================================================================

// PolicyDTO represents a stored policy.
type PolicyDTO struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Config    factory.PolicyJSON `json:"config"`
	Version   int                `json:"version"`
	Default   bool               `json:"default"`
	CreatedAt string             `json:"created_at,omitempty"`
	UpdatedAt string             `json:"updated_at,omitempty"`
}

// CreatePolicyRequest is the body of POST /api/policies.
type CreatePolicyRequest struct {
	Config factory.PolicyJSON `json:"config"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func formatInstant(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
