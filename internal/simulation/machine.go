package simulation

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

// SessionConfig customises a new session.
type SessionConfig struct {
	// ForcedHidden overrides the engine's default hidden conditions.
	ForcedHidden *HiddenConditions
}

// Engine runs consultations. It holds only read-only configuration, so one
// Engine can serve any number of sessions concurrently; a single Session
// must still be advanced one action at a time.
type Engine struct {
	catalog       *Catalog
	defaultHidden HiddenConditions
	randomHidden  bool
	allowRepeat   bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithDefaultHidden sets the hidden conditions used when a session does
// not force its own.
func WithDefaultHidden(h HiddenConditions) Option {
	return func(e *Engine) { e.defaultHidden = h }
}

// WithRandomHidden draws each hidden condition with equal odds for sessions
// that do not force their own.
func WithRandomHidden(enabled bool) Option {
	return func(e *Engine) { e.randomHidden = enabled }
}

// WithRepeatQuestions allows already answered questions to be asked again
// while gathering information. Repeats never score.
func WithRepeatQuestions(enabled bool) Option {
	return func(e *Engine) { e.allowRepeat = enabled }
}

// NewEngine validates the catalog and the outcome table and returns an
// engine ready to use.
func NewEngine(catalog *Catalog, opts ...Option) (*Engine, error) {
	if catalog == nil {
		return nil, fmt.Errorf("%w: nil catalog", ErrInvalidCatalog)
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateRules(outcomeRules); err != nil {
		return nil, err
	}
	e := &Engine{
		catalog:       catalog,
		defaultHidden: DefaultHidden(),
		allowRepeat:   true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// NewDefaultEngine builds an engine over the embedded catalog.
func NewDefaultEngine(opts ...Option) (*Engine, error) {
	catalog, err := LoadCatalog()
	if err != nil {
		return nil, err
	}
	return NewEngine(catalog, opts...)
}

// Catalog exposes the engine's catalog for read-only use.
func (e *Engine) Catalog() *Catalog { return e.catalog }

// StartSession creates a session in the start phase.
func (e *Engine) StartSession(cfg SessionConfig) *Session {
	hidden := e.defaultHidden
	switch {
	case cfg.ForcedHidden != nil:
		hidden = *cfg.ForcedHidden
	case e.randomHidden:
		hidden = HiddenConditions{
			Anticoagulant: rand.IntN(2) == 1,
			Procedure:     rand.IntN(2) == 1,
		}
	}
	return &Session{
		Phase:  PhaseStart,
		Hidden: hidden,
		Score:  StartingScore,
	}
}

// ResetSession discards everything and starts over from the start phase.
func (e *Engine) ResetSession() *Session {
	return e.StartSession(SessionConfig{})
}

// EligibleActions lists the actions the session accepts right now.
func (e *Engine) EligibleActions(s *Session) []ActionID {
	switch s.Phase {
	case PhaseStart:
		return []ActionID{ActionBegin}
	case PhasePresentation:
		out := make([]ActionID, 0, len(QuestionTags()))
		for _, q := range QuestionTags() {
			out = append(out, AskAction(q))
		}
		return out
	case PhaseFollowUp:
		return []ActionID{ActionRecommendDrug, ActionGatherMore, ActionConsultSenior}
	case PhaseActionDecision:
		var out []ActionID
		for _, q := range QuestionTags() {
			if !s.Asked.Has(q) {
				out = append(out, AskAction(q))
			}
		}
		if e.allowRepeat {
			for _, q := range s.Asked {
				out = append(out, RepeatAction(q))
			}
		}
		return append(out, ActionRecommendDrug, ActionConsultSenior)
	case PhaseDrugRecommendation:
		return []ActionID{ActionNSAID, ActionAcetaminophen}
	case PhaseResult, PhaseSummary:
		return []ActionID{ActionRestart}
	}
	return nil
}

func (e *Engine) eligible(s *Session, action ActionID) bool {
	for _, a := range e.EligibleActions(s) {
		if a == action {
			return true
		}
	}
	return false
}

// Apply advances the session by one action and returns the new session.
// The input is never modified. When the action is not eligible the input
// session is returned as is together with an *InvalidActionError.
//
// payload is optional free text in the trainee's own words; when set it is
// recorded instead of the catalog label.
func (e *Engine) Apply(s *Session, action ActionID, payload string) (*Session, error) {
	if s == nil {
		return nil, errors.New("simulation: nil session")
	}
	if !e.eligible(s, action) {
		return s, &InvalidActionError{Phase: s.Phase, Action: action}
	}
	if action == ActionRestart {
		next := e.ResetSession()
		next.Phase = PhasePresentation
		return next, nil
	}

	next := s.clone()
	next.LastDisclosure = ""

	switch action {
	case ActionBegin:
		next.Phase = PhasePresentation
		return next, nil
	case ActionGatherMore:
		next.History = next.History.Append(e.actionEntry(action, payload))
		next.Phase = PhaseActionDecision
		return next, nil
	case ActionRecommendDrug:
		next.History = next.History.Append(e.actionEntry(action, payload))
		next.Phase = PhaseDrugRecommendation
		return next, nil
	case ActionConsultSenior:
		return e.consultSenior(next, s.Phase == PhaseFollowUp), nil
	case ActionNSAID, ActionAcetaminophen:
		if err := e.recommend(next, Drug(action), payload); err != nil {
			return s, err
		}
		return next, nil
	}

	tag, repeat := questionFor(action)
	if err := e.ask(next, tag, payload, repeat); err != nil {
		return s, err
	}
	if s.Phase == PhasePresentation {
		next.Phase = PhaseFollowUp
	}
	return next, nil
}

// Conclude moves a finished session to the summary phase. Score, history
// and discoveries are untouched.
func (e *Engine) Conclude(s *Session) (*Session, error) {
	if s == nil {
		return nil, errors.New("simulation: nil session")
	}
	if s.Phase != PhaseResult {
		return s, &InvalidActionError{Phase: s.Phase, Action: "conclude"}
	}
	next := s.clone()
	next.Phase = PhaseSummary
	return next, nil
}

// View renders the public snapshot of s.
func (e *Engine) View(s *Session) View {
	v := View{
		Phase:          s.Phase,
		Eligible:       e.EligibleActions(s),
		LastDisclosure: s.LastDisclosure,
		Score:          s.Score,
		Terminated:     s.Terminated,
		Discovered:     s.Discovered,
		Asked:          append([]QuestionTag(nil), s.Asked...),
		History:        s.History.Append(),
	}
	if s.Outcome != nil {
		o := *s.Outcome
		v.Outcome = &o
	}
	if s.Terminated {
		v.Grade = GradeFor(s.Score)
	}
	return v
}

func questionFor(action ActionID) (QuestionTag, bool) {
	if rest, ok := strings.CutPrefix(string(action), repeatPrefix); ok {
		return QuestionTag(rest), true
	}
	return QuestionTag(action), false
}

func (e *Engine) ask(next *Session, tag QuestionTag, payload string, repeat bool) error {
	entry, err := e.catalog.Entry(tag)
	if err != nil {
		return err
	}
	// Asked questions never pay again, whichever action reached them.
	repeat = repeat || next.Asked.Has(tag)

	ans := entry.resolve(next.Hidden, &next.Discovered, repeat)
	prompt := entry.Prompt
	if payload != "" {
		prompt = payload
	}
	answerEntry := HistoryEntry{Kind: EntryAnswer, Text: ans.text}
	if ans.reward > 0 {
		answerEntry = scored(EntryAnswer, ans.text, ans.reward)
	}
	next.History = next.History.Append(HistoryEntry{Kind: EntryQuestion, Text: prompt}, answerEntry)
	next.Asked = next.Asked.with(tag)
	next.Score += ans.reward
	next.LastDisclosure = ans.text
	return nil
}

func (e *Engine) consultSenior(next *Session, early bool) *Session {
	const reward = 15
	advice := e.catalog.advise(next.Discovered, early)
	next.History = next.History.Append(scored(EntryOutcome, advice, reward))
	next.Score += reward
	next.LastDisclosure = advice
	next.Terminated = true
	next.Phase = PhaseResult
	return next
}

func (e *Engine) recommend(next *Session, drug Drug, payload string) error {
	outcome, err := Evaluate(drug, next.Hidden,
		next.Asked.Has(QuestionCurrentMeds), next.Asked.Has(QuestionMedicalHistory))
	if err != nil {
		return err
	}
	next.History = next.History.Append(
		HistoryEntry{Kind: EntryRecommendation, Text: e.label(ActionID(drug), payload)},
		scored(EntryOutcome, outcome.Message, outcome.Delta),
	)
	next.Score += outcome.Delta
	next.Outcome = &outcome
	next.Terminated = true
	next.Phase = PhaseResult
	return nil
}

func (e *Engine) actionEntry(action ActionID, payload string) HistoryEntry {
	return HistoryEntry{Kind: EntryAction, Text: e.label(action, payload)}
}

func (e *Engine) label(action ActionID, payload string) string {
	if payload != "" {
		return payload
	}
	return e.catalog.Label(action)
}
