/*
Package factory provides declarative refund policy definitions.

PURPOSE:
  Converts JSON or YAML policy definitions into validated refund.Policy
  values. This enables new refund windows without code changes - support
  operations can define a policy in a file or through the API, and the
  factory creates the proper Go structs.

JSON SCHEMA:
  {
    "id": "refund-standard",
    "name": "Standard Refund Window",
    "tos_cutoff": "2020-01-02",
    "business_hours": {"open": 9, "close": 17},
    "limits": [
      {"source": "phone",  "tos": "new", "hours": 24},
      {"source": "phone",  "tos": "old", "hours": 4},
      {"source": "webApp", "tos": "new", "hours": 16},
      {"source": "webApp", "tos": "old", "hours": 8}
    ]
  }

  The YAML form uses the same keys.

KEY FEATURES:
  - Defaults business_hours to Mon-Fri 09:00-17:00 UTC
  - Rejects unknown sources, unknown TOS versions and duplicate limits
  - Runs refund.Policy.Validate, so every parsed policy is usable

USAGE:
  factory := NewPolicyFactory()
  policy, err := factory.ParsePolicy(jsonString)
  evaluator := refund.NewEvaluator(generic.DefaultZoneResolver(), policy)

SEE ALSO:
  - refund/policies.go: Policy type and the standard policy
  - api/handlers.go: CreatePolicy endpoint
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/warp/refund-engine/generic"
	"github.com/warp/refund-engine/refund"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PolicyJSON is the declarative representation of a policy.
type PolicyJSON struct {
	ID            string             `json:"id" yaml:"id"`
	Name          string             `json:"name" yaml:"name"`
	TOSCutoff     string             `json:"tos_cutoff" yaml:"tos_cutoff"` // YYYY-MM-DD
	BusinessHours *BusinessHoursJSON `json:"business_hours,omitempty" yaml:"business_hours,omitempty"`
	Limits        []LimitJSON        `json:"limits" yaml:"limits"`
}

// BusinessHoursJSON is the staffed window in whole UTC hours.
type BusinessHoursJSON struct {
	Open  int `json:"open" yaml:"open"`
	Close int `json:"close" yaml:"close"`
}

// LimitJSON is one cell of the limits table.
type LimitJSON struct {
	Source string  `json:"source" yaml:"source"` // phone, webApp
	TOS    string  `json:"tos" yaml:"tos"`       // new, old
	Hours  float64 `json:"hours" yaml:"hours"`
}

// =============================================================================
// POLICY FACTORY
// =============================================================================

// PolicyFactory converts policy definitions to Go structs.
type PolicyFactory struct{}

// NewPolicyFactory creates a new policy factory.
func NewPolicyFactory() *PolicyFactory {
	return &PolicyFactory{}
}

// ParsePolicy parses a JSON string into a validated Policy.
func (f *PolicyFactory) ParsePolicy(jsonStr string) (*refund.Policy, error) {
	var pj PolicyJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return nil, fmt.Errorf("%w: failed to parse policy JSON: %v", generic.ErrInvalidPolicy, err)
	}
	return f.FromJSON(pj)
}

// ParsePolicyYAML parses a YAML document into a validated Policy.
func (f *PolicyFactory) ParsePolicyYAML(data []byte) (*refund.Policy, error) {
	var pj PolicyJSON
	if err := yaml.Unmarshal(data, &pj); err != nil {
		return nil, fmt.Errorf("%w: failed to parse policy YAML: %v", generic.ErrInvalidPolicy, err)
	}
	return f.FromJSON(pj)
}

// LoadPolicyFile reads a policy from disk. Files ending in .yaml or .yml are
// parsed as YAML, anything else as JSON.
func (f *PolicyFactory) LoadPolicyFile(path string) (*refund.Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return f.ParsePolicyYAML(data)
	default:
		return f.ParsePolicy(string(data))
	}
}

// FromJSON converts PolicyJSON to a validated refund.Policy.
func (f *PolicyFactory) FromJSON(pj PolicyJSON) (*refund.Policy, error) {
	policy := &refund.Policy{
		ID:            pj.ID,
		Name:          pj.Name,
		BusinessHours: generic.StandardBusinessHours(),
		Limits:        make(map[refund.LimitKey]generic.Amount, len(pj.Limits)),
	}

	if pj.TOSCutoff != "" {
		cutoff, err := generic.ParseCivilDate(pj.TOSCutoff)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", generic.ErrInvalidPolicy, err)
		}
		policy.TOSCutoff = cutoff
	}

	if pj.BusinessHours != nil {
		policy.BusinessHours = generic.BusinessHours{Open: pj.BusinessHours.Open, Close: pj.BusinessHours.Close}
	}

	for _, lj := range pj.Limits {
		key, err := parseLimitKey(lj)
		if err != nil {
			return nil, err
		}
		if _, dup := policy.Limits[key]; dup {
			return nil, fmt.Errorf("%w: duplicate limit for %s/%s", generic.ErrInvalidPolicy, key.Source, key.TOS)
		}
		policy.Limits[key] = generic.NewAmount(lj.Hours, generic.UnitHours)
	}

	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return policy, nil
}

// ToJSON converts a Policy to PolicyJSON with limits in a stable order.
func (f *PolicyFactory) ToJSON(policy *refund.Policy) PolicyJSON {
	pj := PolicyJSON{
		ID:        policy.ID,
		Name:      policy.Name,
		TOSCutoff: policy.TOSCutoff.String(),
		BusinessHours: &BusinessHoursJSON{
			Open:  policy.BusinessHours.Open,
			Close: policy.BusinessHours.Close,
		},
	}

	for key, limit := range policy.Limits {
		pj.Limits = append(pj.Limits, LimitJSON{
			Source: string(key.Source),
			TOS:    string(key.TOS),
			Hours:  limit.Float64(),
		})
	}
	sort.Slice(pj.Limits, func(i, j int) bool {
		if pj.Limits[i].Source != pj.Limits[j].Source {
			return pj.Limits[i].Source < pj.Limits[j].Source
		}
		return pj.Limits[i].TOS < pj.Limits[j].TOS
	})

	return pj
}

// Marshal renders a policy as indented JSON.
func (f *PolicyFactory) Marshal(policy *refund.Policy) (string, error) {
	b, err := json.MarshalIndent(f.ToJSON(policy), "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// StandardPolicyJSON returns the JSON definition of refund.StandardPolicy.
func StandardPolicyJSON() string {
	s, _ := NewPolicyFactory().Marshal(refund.StandardPolicy())
	return s
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseLimitKey(lj LimitJSON) (refund.LimitKey, error) {
	source := refund.Source(lj.Source)
	if !source.Valid() {
		return refund.LimitKey{}, fmt.Errorf("%w: limit for unknown source %q", generic.ErrInvalidPolicy, lj.Source)
	}
	tos := refund.TOSVersion(lj.TOS)
	if !tos.Valid() {
		return refund.LimitKey{}, fmt.Errorf("%w: limit for unknown tos %q", generic.ErrInvalidPolicy, lj.TOS)
	}
	return refund.LimitKey{Source: source, TOS: tos}, nil
}
