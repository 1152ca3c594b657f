// Package simulation is the consultation decision engine: the patient's
// hidden and discovered facts, the question catalog, the outcome table and
// the state machine tying them together.
package simulation

import "slices"

// Phase is the position of a session in the consultation flow.
type Phase string

const (
	PhaseStart              Phase = "start"
	PhasePresentation       Phase = "presentation"
	PhaseFollowUp           Phase = "follow_up"
	PhaseActionDecision     Phase = "action_decision"
	PhaseDrugRecommendation Phase = "drug_recommendation"
	PhaseResult             Phase = "result"
	PhaseSummary            Phase = "summary"
)

// ActionID identifies a user choice independently of its display text.
type ActionID string

const (
	ActionBegin         ActionID = "begin"
	ActionGatherMore    ActionID = "gather_more"
	ActionRecommendDrug ActionID = "recommend_drug"
	ActionConsultSenior ActionID = "consult_senior"
	ActionNSAID         ActionID = ActionID(DrugNSAID)
	ActionAcetaminophen ActionID = ActionID(DrugAcetaminophen)
	ActionRestart       ActionID = "restart"
)

const repeatPrefix = "repeat:"

// QuestionTag names a catalog question.
type QuestionTag string

const (
	QuestionSymptomDetails  QuestionTag = "symptom_details"
	QuestionCurrentMeds     QuestionTag = "current_meds"
	QuestionHeadacheHistory QuestionTag = "headache_history"
	QuestionMedicalHistory  QuestionTag = "medical_history"
)

// QuestionTags lists every question in catalog order.
func QuestionTags() []QuestionTag {
	return []QuestionTag{
		QuestionSymptomDetails,
		QuestionCurrentMeds,
		QuestionHeadacheHistory,
		QuestionMedicalHistory,
	}
}

// AskAction is the action that asks q for the first time.
func AskAction(q QuestionTag) ActionID { return ActionID(q) }

// RepeatAction is the action that asks q again after it was answered.
func RepeatAction(q QuestionTag) ActionID { return ActionID(repeatPrefix + string(q)) }

// Drug is a painkiller class the trainee may recommend.
type Drug string

const (
	DrugNSAID         Drug = "nsaid"
	DrugAcetaminophen Drug = "acetaminophen"
)

// Drugs lists the recommendable drugs.
func Drugs() []Drug { return []Drug{DrugNSAID, DrugAcetaminophen} }

// StartingScore is the safety score every session begins with.
const StartingScore = 50

// QuestionSet records asked questions in the order they were first asked.
type QuestionSet []QuestionTag

func (q QuestionSet) Has(tag QuestionTag) bool { return slices.Contains(q, tag) }

func (q QuestionSet) with(tag QuestionTag) QuestionSet {
	if q.Has(tag) {
		return slices.Clone(q)
	}
	out := make(QuestionSet, len(q), len(q)+1)
	copy(out, q)
	return append(out, tag)
}

// Session is the aggregate root of one playthrough. A Session handed out
// by the Engine is never modified afterwards; every transition produces a
// new value. Hidden is carried for persistence only and must not be
// rendered; use View for anything user facing.
type Session struct {
	Phase          Phase            `json:"phase"`
	Hidden         HiddenConditions `json:"hidden"`
	Discovered     DiscoveredInfo   `json:"discovered"`
	Asked          QuestionSet      `json:"asked"`
	Score          int              `json:"score"`
	History        History          `json:"history"`
	Terminated     bool             `json:"terminated"`
	LastDisclosure string           `json:"last_disclosure,omitempty"`
	Outcome        *Outcome         `json:"outcome,omitempty"`
}

func (s *Session) clone() *Session {
	next := *s
	next.Asked = slices.Clone(s.Asked)
	next.History = slices.Clone(s.History)
	if s.Outcome != nil {
		o := *s.Outcome
		next.Outcome = &o
	}
	return &next
}

// View is the render-facing snapshot of a session. It never carries the
// hidden conditions.
type View struct {
	Phase          Phase          `json:"phase"`
	Eligible       []ActionID     `json:"eligible_actions"`
	LastDisclosure string         `json:"last_disclosure,omitempty"`
	Score          int            `json:"score"`
	Terminated     bool           `json:"terminated"`
	Discovered     DiscoveredInfo `json:"discovered"`
	Asked          []QuestionTag  `json:"asked"`
	History        History        `json:"history"`
	Outcome        *Outcome       `json:"outcome,omitempty"`
	Grade          Grade          `json:"grade,omitempty"`
}
