package simulation

import (
	"fmt"
	"slices"
)

// Severity is the reporting tier of a recommendation outcome.
type Severity string

const (
	SeverityFatal    Severity = "fatal"
	SeveritySevere   Severity = "severe"
	SeverityModerate Severity = "moderate"
	SeverityMinor    Severity = "minor"
	SeveritySafe     Severity = "safe"
	SeverityOptimal  Severity = "optimal"
)

// Match is a tri-state condition on one boolean input of the table.
type Match int8

const (
	Any Match = iota
	Yes
	No
)

func (m Match) matches(v bool) bool {
	switch m {
	case Yes:
		return v
	case No:
		return !v
	}
	return true
}

func (m Match) String() string {
	switch m {
	case Yes:
		return "yes"
	case No:
		return "no"
	}
	return "-"
}

// Rule is one row of the outcome table.
type Rule struct {
	Code          string
	Drug          Drug
	Anticoagulant Match
	Procedure     Match
	AskedMeds     Match
	AskedHistory  Match
	Delta         int
	Severity      Severity
	Advisory      bool
	Message       string
}

func (r Rule) matches(drug Drug, h HiddenConditions, askedMeds, askedHistory bool) bool {
	return r.Drug == drug &&
		r.Anticoagulant.matches(h.Anticoagulant) &&
		r.Procedure.matches(h.Procedure) &&
		r.AskedMeds.matches(askedMeds) &&
		r.AskedHistory.matches(askedHistory)
}

// Outcome is the consequence of a drug recommendation.
type Outcome struct {
	Rule     string   `json:"rule"`
	Drug     Drug     `json:"drug"`
	Delta    int      `json:"delta"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Advisory bool     `json:"advisory"`
}

// Rows are mutually exclusive, so order only matters for reading: bleeding
// rows come first within each drug.
var outcomeRules = []Rule{
	{
		Code: "nsaid_unknown_bleed", Drug: DrugNSAID,
		Anticoagulant: Yes, AskedMeds: No,
		Delta: -110, Severity: SeverityFatal,
		Message: "The patient suffered a severe gastrointestinal bleed for no apparent reason. Was there something you did not ask?",
	},
	{
		Code: "nsaid_known_anticoagulant_missed_procedure", Drug: DrugNSAID,
		Anticoagulant: Yes, Procedure: Yes, AskedMeds: Yes, AskedHistory: No,
		Delta: -130, Severity: SeverityFatal,
		Message: "An NSAID was chosen despite the known warfarin use, and the unasked upcoming procedure compounded the bleeding.",
	},
	{
		Code: "nsaid_known_both", Drug: DrugNSAID,
		Anticoagulant: Yes, Procedure: Yes, AskedMeds: Yes, AskedHistory: Yes,
		Delta: -120, Severity: SeverityFatal,
		Message: "An NSAID was recommended while knowing about both the warfarin and the implant procedure.",
	},
	{
		Code: "nsaid_known_anticoagulant", Drug: DrugNSAID,
		Anticoagulant: Yes, Procedure: No, AskedMeds: Yes,
		Delta: -100, Severity: SeverityFatal,
		Message: "An NSAID was recommended despite the known warfarin use, sharply raising the bleeding risk.",
	},
	{
		Code: "nsaid_unknown_procedure", Drug: DrugNSAID,
		Anticoagulant: No, Procedure: Yes, AskedHistory: No,
		Delta: -50, Severity: SeveritySevere,
		Message: "The patient had unexpected bleeding after the procedure. Upcoming treatment should have been checked.",
	},
	{
		Code: "nsaid_known_procedure", Drug: DrugNSAID,
		Anticoagulant: No, Procedure: Yes, AskedHistory: Yes,
		Delta: -40, Severity: SeverityModerate,
		Message: "An NSAID was recommended despite the known upcoming procedure, which can increase bleeding.",
	},
	{
		Code: "nsaid_no_risk_no_checks", Drug: DrugNSAID,
		Anticoagulant: No, Procedure: No, AskedMeds: No, AskedHistory: No,
		Delta: -10, Severity: SeverityMinor,
		Message: "No harm this time, but neither current medicines nor medical history were checked.",
	},
	{
		Code: "nsaid_no_risk_missed_meds", Drug: DrugNSAID,
		Anticoagulant: No, Procedure: No, AskedMeds: No, AskedHistory: Yes,
		Delta: -5, Severity: SeverityMinor,
		Message: "No harm this time, but current medicines were not checked.",
	},
	{
		Code: "nsaid_no_risk_missed_history", Drug: DrugNSAID,
		Anticoagulant: No, Procedure: No, AskedMeds: Yes, AskedHistory: No,
		Delta: -5, Severity: SeverityMinor,
		Message: "No harm this time, but medical history and planned treatment were not checked.",
	},
	{
		Code: "nsaid_no_risk_checked", Drug: DrugNSAID,
		Anticoagulant: No, Procedure: No, AskedMeds: Yes, AskedHistory: Yes,
		Delta: 10, Severity: SeveritySafe,
		Message: "A reasonable choice. The patient's symptoms improve.",
	},

	{
		Code: "acetaminophen_lucky_guess", Drug: DrugAcetaminophen,
		Anticoagulant: Yes, AskedMeds: No,
		Delta: 5, Severity: SeveritySafe,
		Message: "A safe choice, but the patient's warfarin use was never found. The safe drug was picked by luck.",
	},
	{
		Code: "acetaminophen_optimal", Drug: DrugAcetaminophen,
		Anticoagulant: Yes, Procedure: Yes, AskedMeds: Yes, AskedHistory: Yes,
		Delta: 25, Severity: SeverityOptimal, Advisory: true,
		Message: "The best choice. Acetaminophen for a patient on warfarin with an implant scheduled, with follow-up counselling to their doctor and dentist.",
	},
	{
		Code: "acetaminophen_partial_credit", Drug: DrugAcetaminophen,
		Anticoagulant: Yes, Procedure: Yes, AskedMeds: Yes, AskedHistory: No,
		Delta: 15, Severity: SeveritySafe,
		Message: "A safe choice given the warfarin, though the upcoming implant was never checked.",
	},
	{
		Code: "acetaminophen_known_anticoagulant", Drug: DrugAcetaminophen,
		Anticoagulant: Yes, Procedure: No, AskedMeds: Yes,
		Delta: 10, Severity: SeveritySafe,
		Message: "A safe choice for a patient on warfarin. The patient recovers.",
	},
	{
		Code: "acetaminophen_known_procedure", Drug: DrugAcetaminophen,
		Anticoagulant: No, Procedure: Yes, AskedHistory: Yes,
		Delta: 15, Severity: SeveritySafe, Advisory: true,
		Message: "A safe choice. Suggest the patient talks to their dentist about the procedure.",
	},
	{
		Code: "acetaminophen_missed_procedure", Drug: DrugAcetaminophen,
		Anticoagulant: No, Procedure: Yes, AskedHistory: No,
		Delta: 7, Severity: SeveritySafe,
		Message: "A safe choice, though the upcoming procedure was never checked.",
	},
	{
		Code: "acetaminophen_no_risk", Drug: DrugAcetaminophen,
		Anticoagulant: No, Procedure: No,
		Delta: 10, Severity: SeveritySafe,
		Message: "A safe choice. The patient's symptoms improve.",
	},
}

// Rules returns a copy of the outcome table.
func Rules() []Rule { return slices.Clone(outcomeRules) }

// Evaluate scores a drug recommendation. Exactly one rule applies to any
// combination of inputs.
func Evaluate(drug Drug, hidden HiddenConditions, askedMeds, askedHistory bool) (Outcome, error) {
	for _, r := range outcomeRules {
		if r.matches(drug, hidden, askedMeds, askedHistory) {
			return Outcome{
				Rule:     r.Code,
				Drug:     drug,
				Delta:    r.Delta,
				Severity: r.Severity,
				Message:  r.Message,
				Advisory: r.Advisory,
			}, nil
		}
	}
	return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownDrug, drug)
}

// ValidateRules checks that every drug and input combination is matched by
// exactly one rule.
func ValidateRules(rules []Rule) error {
	for _, drug := range Drugs() {
		for _, in := range combinations() {
			var hits []string
			for _, r := range rules {
				if r.matches(drug, in.hidden, in.askedMeds, in.askedHistory) {
					hits = append(hits, r.Code)
				}
			}
			if len(hits) != 1 {
				return fmt.Errorf("%w: %s with %+v asked_meds=%t asked_history=%t matches %v",
					ErrInvalidRules, drug, in.hidden, in.askedMeds, in.askedHistory, hits)
			}
		}
	}
	return nil
}

type evaluationInput struct {
	hidden       HiddenConditions
	askedMeds    bool
	askedHistory bool
}

func combinations() []evaluationInput {
	bools := []bool{true, false}
	var out []evaluationInput
	for _, a := range bools {
		for _, p := range bools {
			for _, m := range bools {
				for _, h := range bools {
					out = append(out, evaluationInput{
						hidden:       HiddenConditions{Anticoagulant: a, Procedure: p},
						askedMeds:    m,
						askedHistory: h,
					})
				}
			}
		}
	}
	return out
}

// Evaluation is one row of the full decision matrix.
type Evaluation struct {
	Drug         Drug             `json:"drug"`
	Hidden       HiddenConditions `json:"hidden"`
	AskedMeds    bool             `json:"asked_meds"`
	AskedHistory bool             `json:"asked_history"`
	Outcome      Outcome          `json:"outcome"`
}

// Matrix evaluates every drug against every input combination.
func Matrix() []Evaluation {
	var out []Evaluation
	for _, drug := range Drugs() {
		for _, in := range combinations() {
			o, err := Evaluate(drug, in.hidden, in.askedMeds, in.askedHistory)
			if err != nil {
				continue
			}
			out = append(out, Evaluation{
				Drug:         drug,
				Hidden:       in.hidden,
				AskedMeds:    in.askedMeds,
				AskedHistory: in.askedHistory,
				Outcome:      o,
			})
		}
	}
	return out
}
