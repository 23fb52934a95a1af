package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRules_ParsesAndValidates(t *testing.T) {
	rules := DefaultRules()
	registry, err := NewRuleRegistry(rules)
	require.NoError(t, err)

	majors := registry.Majors()
	assert.Equal(t, []string{"BIO", "CS", "DSA", "EE", "IE", "MAT", "ME"}, majors)

	cs, err := registry.Rule("CS")
	require.NoError(t, err)
	assert.True(t, cs.HumRestriction)
	require.NotNil(t, cs.MathGate)
	assert.Equal(t, GateOneOfDiscard, cs.MathGate.Type)
	assert.NotEmpty(t, cs.Pools.Required)
	assert.NotEmpty(t, cs.Pools.Core)

	ee, err := registry.Rule("EE")
	require.NoError(t, err)
	require.NotNil(t, ee.MathGate)
	assert.Equal(t, GateBundleOrDiscard, ee.MathGate.Type)
	require.NotNil(t, ee.CoreSubRule)
	assert.Equal(t, SubRuleMinCredits, ee.CoreSubRule.Type)

	dsa, err := registry.Rule("DSA")
	require.NoError(t, err)
	require.NotNil(t, dsa.CoreSubRule)
	assert.Equal(t, SubRuleFacultyDistribution, dsa.CoreSubRule.Type)
	require.NotNil(t, dsa.FacultyRule)
	assert.NotEmpty(t, dsa.FacultyRule.Pools)
}

func TestRuleRegistry_UnknownMajor(t *testing.T) {
	registry, err := NewRuleRegistry(DefaultRules())
	require.NoError(t, err)

	_, err = registry.Rule("ARCH")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownMajor)
	assert.Contains(t, err.Error(), "ARCH")
}

func TestRuleValidation_Failures(t *testing.T) {
	tests := []struct {
		name string
		rule *MajorRule
	}{
		{"missing major code", &MajorRule{}},
		{"gate without options", &MajorRule{
			Major:    "XX",
			MathGate: &MathGate{Type: GateOneOfDiscard},
		}},
		{"gate without bundles", &MajorRule{
			Major:    "XX",
			MathGate: &MathGate{Type: GateBundleOrDiscard},
		}},
		{"unknown gate type", &MajorRule{
			Major:    "XX",
			MathGate: &MathGate{Type: "PICK_ANY", Options: []string{"MATH 201"}},
		}},
		{"unknown sub-rule type", &MajorRule{
			Major:       "XX",
			CoreSubRule: &SubRule{Type: "AT_LEAST"},
		}},
		{"bad sub-rule pattern", &MajorRule{
			Major:       "XX",
			CoreSubRule: &SubRule{Type: SubRuleMinCredits, Pattern: "^EE 4["},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRuleRegistry([]*MajorRule{tt.rule})
			assert.Error(t, err)
		})
	}
}

func TestRuleValidation_DefaultsOverflowChain(t *testing.T) {
	rule := &MajorRule{Major: "XX"}
	_, err := NewRuleRegistry([]*MajorRule{rule})
	require.NoError(t, err)
	assert.Equal(t, []Category{CategoryCore, CategoryArea, CategoryFree}, rule.OverflowChain)
}

func TestParseRules_Errors(t *testing.T) {
	_, err := ParseRules([]byte("majors: ["))
	assert.Error(t, err)

	_, err = ParseRules([]byte("majors: []"))
	assert.Error(t, err)
}

func TestMathGateAllCodes(t *testing.T) {
	var nilGate *MathGate
	assert.Nil(t, nilGate.AllCodes())

	oneOf := &MathGate{Type: GateOneOfDiscard, Options: []string{"MATH 201", "MATH 212"}}
	assert.Equal(t, []string{"MATH 201", "MATH 212"}, oneOf.AllCodes())

	bundle := &MathGate{Type: GateBundleOrDiscard, Bundles: []Bundle{
		{Courses: []string{"MATH 212"}, Credits: 4},
		{Courses: []string{"MATH 201", "MATH 202"}, Credits: 6},
	}}
	assert.Equal(t, []string{"MATH 212", "MATH 201", "MATH 202"}, bundle.AllCodes())
}
