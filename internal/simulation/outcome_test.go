package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_NSAIDTable(t *testing.T) {
	tests := []struct {
		name          string
		anticoagulant bool
		procedure     bool
		askedMeds     bool
		askedHistory  bool
		delta         int
		severity      Severity
	}{
		{"unknown bleed, procedure pending", true, true, false, false, -110, SeverityFatal},
		{"unknown bleed, history asked", true, true, false, true, -110, SeverityFatal},
		{"unknown bleed, no procedure", true, false, false, true, -110, SeverityFatal},
		{"known anticoagulant, missed procedure", true, true, true, false, -130, SeverityFatal},
		{"both known", true, true, true, true, -120, SeverityFatal},
		{"known anticoagulant only", true, false, true, false, -100, SeverityFatal},
		{"known anticoagulant, history asked", true, false, true, true, -100, SeverityFatal},
		{"unknown procedure", false, true, false, false, -50, SeveritySevere},
		{"unknown procedure, meds asked", false, true, true, false, -50, SeveritySevere},
		{"known procedure", false, true, true, true, -40, SeverityModerate},
		{"known procedure, meds not asked", false, true, false, true, -40, SeverityModerate},
		{"no risk, nothing asked", false, false, false, false, -10, SeverityMinor},
		{"no risk, history only", false, false, false, true, -5, SeverityMinor},
		{"no risk, meds only", false, false, true, false, -5, SeverityMinor},
		{"no risk, full workup", false, false, true, true, 10, SeveritySafe},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(DrugNSAID, HiddenConditions{Anticoagulant: tt.anticoagulant, Procedure: tt.procedure}, tt.askedMeds, tt.askedHistory)
			require.NoError(t, err)
			assert.Equal(t, tt.delta, got.Delta)
			assert.Equal(t, tt.severity, got.Severity)
			assert.False(t, got.Advisory)
			assert.NotEmpty(t, got.Message)
			assert.Equal(t, DrugNSAID, got.Drug)
		})
	}
}

func TestEvaluate_AcetaminophenTable(t *testing.T) {
	tests := []struct {
		name          string
		anticoagulant bool
		procedure     bool
		askedMeds     bool
		askedHistory  bool
		delta         int
		severity      Severity
		advisory      bool
	}{
		{"lucky guess", true, false, false, false, 5, SeveritySafe, false},
		{"lucky guess despite history asked", true, true, false, true, 5, SeveritySafe, false},
		{"optimal", true, true, true, true, 25, SeverityOptimal, true},
		{"partial credit", true, true, true, false, 15, SeveritySafe, false},
		{"known anticoagulant", true, false, true, true, 10, SeveritySafe, false},
		{"known procedure", false, true, false, true, 15, SeveritySafe, true},
		{"missed procedure", false, true, true, false, 7, SeveritySafe, false},
		{"no risk", false, false, false, false, 10, SeveritySafe, false},
		{"no risk, full workup", false, false, true, true, 10, SeveritySafe, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(DrugAcetaminophen, HiddenConditions{Anticoagulant: tt.anticoagulant, Procedure: tt.procedure}, tt.askedMeds, tt.askedHistory)
			require.NoError(t, err)
			assert.Equal(t, tt.delta, got.Delta)
			assert.Equal(t, tt.severity, got.Severity)
			assert.Equal(t, tt.advisory, got.Advisory)
		})
	}
}

func TestEvaluate_UnknownDrug(t *testing.T) {
	_, err := Evaluate("aspirin", DefaultHidden(), true, true)
	assert.ErrorIs(t, err, ErrUnknownDrug)
}

func TestRules_TotalAndExclusive(t *testing.T) {
	require.NoError(t, ValidateRules(Rules()))
	assert.Len(t, Matrix(), 32)

	seen := map[string]bool{}
	for _, r := range Rules() {
		assert.False(t, seen[r.Code], "duplicate rule code %s", r.Code)
		seen[r.Code] = true
	}
}

func TestValidateRules_DetectsGapsAndOverlaps(t *testing.T) {
	rules := Rules()

	gap := rules[1:]
	assert.ErrorIs(t, ValidateRules(gap), ErrInvalidRules)

	overlap := append(Rules(), Rule{Code: "catch_all", Drug: DrugNSAID, Delta: 0, Severity: SeveritySafe})
	assert.ErrorIs(t, ValidateRules(overlap), ErrInvalidRules)
}

func TestRules_FatalRowsNeverMixWithMinorOnes(t *testing.T) {
	for _, ev := range Matrix() {
		if ev.Outcome.Severity == SeverityFatal {
			assert.LessOrEqual(t, ev.Outcome.Delta, -100, "%+v", ev)
		}
		if ev.Outcome.Severity == SeverityMinor {
			assert.GreaterOrEqual(t, ev.Outcome.Delta, -10, "%+v", ev)
		}
	}
}
