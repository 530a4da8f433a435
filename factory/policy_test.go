package factory_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/refund-engine/factory"
	"github.com/warp/refund-engine/generic"
	"github.com/warp/refund-engine/refund"
)

func TestParsePolicy_StandardRoundTrip(t *testing.T) {
	// GIVEN: The JSON rendering of the built-in policy
	jsonStr := factory.StandardPolicyJSON()

	// WHEN: Parsing it back
	policy, err := factory.NewPolicyFactory().ParsePolicy(jsonStr)
	require.NoError(t, err)

	// THEN: It is equivalent to refund.StandardPolicy
	std := refund.StandardPolicy()
	assert.Equal(t, std.ID, policy.ID)
	assert.Equal(t, std.Name, policy.Name)
	assert.Equal(t, std.TOSCutoff, policy.TOSCutoff)
	assert.Equal(t, std.BusinessHours, policy.BusinessHours)
	require.Len(t, policy.Limits, len(std.Limits))
	for key, want := range std.Limits {
		assert.True(t, want.Equal(policy.Limits[key]), "%v", key)
	}
}

func TestParsePolicy_DefaultsBusinessHours(t *testing.T) {
	policy, err := factory.NewPolicyFactory().ParsePolicy(`{
		"id": "holiday-promo",
		"name": "Holiday Promo",
		"tos_cutoff": "2021-06-30",
		"limits": [
			{"source": "phone", "tos": "new", "hours": 48},
			{"source": "phone", "tos": "old", "hours": 12},
			{"source": "webApp", "tos": "new", "hours": 36.5},
			{"source": "webApp", "tos": "old", "hours": 24}
		]
	}`)
	require.NoError(t, err)

	assert.Equal(t, generic.StandardBusinessHours(), policy.BusinessHours)
	assert.Equal(t, generic.NewCivilDate(2021, time.June, 30), policy.TOSCutoff)

	limit, err := policy.Limit(refund.SourceWebApp, refund.TOSNew)
	require.NoError(t, err)
	assert.Equal(t, "36.5", limit.Value.String())
}

func TestParsePolicy_Rejects(t *testing.T) {
	full := `{"source":"phone","tos":"new","hours":1},{"source":"phone","tos":"old","hours":1},{"source":"webApp","tos":"new","hours":1},{"source":"webApp","tos":"old","hours":1}`

	tests := []struct {
		name string
		json string
	}{
		{"not json", `{`},
		{"missing id", `{"tos_cutoff":"2020-01-02","limits":[` + full + `]}`},
		{"missing cutoff", `{"id":"p","limits":[` + full + `]}`},
		{"bad cutoff", `{"id":"p","tos_cutoff":"1/2/2020","limits":[` + full + `]}`},
		{"unknown source", `{"id":"p","tos_cutoff":"2020-01-02","limits":[` + full + `,{"source":"fax","tos":"new","hours":1}]}`},
		{"unknown tos", `{"id":"p","tos_cutoff":"2020-01-02","limits":[` + full + `,{"source":"phone","tos":"beta","hours":1}]}`},
		{"duplicate limit", `{"id":"p","tos_cutoff":"2020-01-02","limits":[` + full + `,{"source":"phone","tos":"new","hours":2}]}`},
		{"missing limit", `{"id":"p","tos_cutoff":"2020-01-02","limits":[{"source":"phone","tos":"new","hours":1}]}`},
		{"negative hours", `{"id":"p","tos_cutoff":"2020-01-02","limits":[{"source":"phone","tos":"new","hours":-1},{"source":"phone","tos":"old","hours":1},{"source":"webApp","tos":"new","hours":1},{"source":"webApp","tos":"old","hours":1}]}`},
		{"bad hours", `{"id":"p","tos_cutoff":"2020-01-02","business_hours":{"open":17,"close":9},"limits":[` + full + `]}`},
	}

	f := factory.NewPolicyFactory()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ParsePolicy(tt.json)
			assert.ErrorIs(t, err, generic.ErrInvalidPolicy)
		})
	}
}

func TestParsePolicyYAML(t *testing.T) {
	policy, err := factory.NewPolicyFactory().ParsePolicyYAML([]byte(`
id: night-desk
name: Night Desk
tos_cutoff: "2020-01-02"
business_hours:
  open: 0
  close: 24
limits:
  - {source: phone, tos: new, hours: 24}
  - {source: phone, tos: old, hours: 4}
  - {source: webApp, tos: new, hours: 16}
  - {source: webApp, tos: old, hours: 8}
`))
	require.NoError(t, err)
	assert.Equal(t, "night-desk", policy.ID)
	assert.Equal(t, generic.BusinessHours{Open: 0, Close: 24}, policy.BusinessHours)
}

func TestLoadPolicyFile(t *testing.T) {
	dir := t.TempDir()
	f := factory.NewPolicyFactory()

	jsonPath := filepath.Join(dir, "policy.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(factory.StandardPolicyJSON()), 0o600))
	p, err := f.LoadPolicyFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, refund.StandardPolicyID, p.ID)

	yamlPath := filepath.Join(dir, "policy.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("id: y\ntos_cutoff: \"2020-01-02\"\nlimits: []\n"), 0o600))
	_, err = f.LoadPolicyFile(yamlPath)
	assert.ErrorIs(t, err, generic.ErrInvalidPolicy)

	_, err = f.LoadPolicyFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestToJSON_StableOrder(t *testing.T) {
	pj := factory.NewPolicyFactory().ToJSON(refund.StandardPolicy())

	require.Len(t, pj.Limits, 4)
	assert.Equal(t, factory.LimitJSON{Source: "phone", TOS: "new", Hours: 24}, pj.Limits[0])
	assert.Equal(t, factory.LimitJSON{Source: "phone", TOS: "old", Hours: 4}, pj.Limits[1])
	assert.Equal(t, factory.LimitJSON{Source: "webApp", TOS: "new", Hours: 16}, pj.Limits[2])
	assert.Equal(t, factory.LimitJSON{Source: "webApp", TOS: "old", Hours: 8}, pj.Limits[3])
	assert.Equal(t, "2020-01-02", pj.TOSCutoff)
}
