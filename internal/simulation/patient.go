package simulation

// HiddenConditions is the ground truth about the patient. It is fixed when
// the session starts.
type HiddenConditions struct {
	Anticoagulant bool `json:"anticoagulant"`
	Procedure     bool `json:"procedure"`
}

// DefaultHidden puts both risks in play so every session has something to
// discover.
func DefaultHidden() HiddenConditions {
	return HiddenConditions{Anticoagulant: true, Procedure: true}
}

func (h HiddenConditions) has(d Disclosure) bool {
	switch d {
	case DisclosureAnticoagulant:
		return h.Anticoagulant
	case DisclosureProcedure:
		return h.Procedure
	}
	return false
}

// DiscoveredInfo is what the trainee has learned so far. Fields only ever
// move from unset to set.
type DiscoveredInfo struct {
	AnticoagulantRevealed bool   `json:"anticoagulant_revealed"`
	ProcedureRevealed     bool   `json:"procedure_revealed"`
	SymptomOnset          string `json:"symptom_onset,omitempty"`
	HeadacheHistory       string `json:"headache_history,omitempty"`
}

// RevealAnticoagulant marks the anticoagulant as disclosed and reports
// whether this call changed anything.
func (d *DiscoveredInfo) RevealAnticoagulant() bool {
	if d.AnticoagulantRevealed {
		return false
	}
	d.AnticoagulantRevealed = true
	return true
}

// RevealProcedure marks the upcoming procedure as disclosed.
func (d *DiscoveredInfo) RevealProcedure() bool {
	if d.ProcedureRevealed {
		return false
	}
	d.ProcedureRevealed = true
	return true
}

// RecordSymptomOnset keeps the first onset description it is given.
func (d *DiscoveredInfo) RecordSymptomOnset(text string) bool {
	if d.SymptomOnset != "" || text == "" {
		return false
	}
	d.SymptomOnset = text
	return true
}

// RecordHeadacheHistory keeps the first history description it is given.
func (d *DiscoveredInfo) RecordHeadacheHistory(text string) bool {
	if d.HeadacheHistory != "" || text == "" {
		return false
	}
	d.HeadacheHistory = text
	return true
}

func (d *DiscoveredInfo) disclose(kind Disclosure, fact string) bool {
	switch kind {
	case DisclosureAnticoagulant:
		return d.RevealAnticoagulant()
	case DisclosureProcedure:
		return d.RevealProcedure()
	case DisclosureSymptomOnset:
		return d.RecordSymptomOnset(fact)
	case DisclosureHeadacheHistory:
		return d.RecordHeadacheHistory(fact)
	}
	return false
}
