package simulation

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Disclosure names the piece of patient information a question uncovers.
type Disclosure string

const (
	DisclosureAnticoagulant   Disclosure = "anticoagulant"
	DisclosureProcedure       Disclosure = "procedure"
	DisclosureSymptomOnset    Disclosure = "symptom_onset"
	DisclosureHeadacheHistory Disclosure = "headache_history"
)

func (d Disclosure) hidden() bool {
	return d == DisclosureAnticoagulant || d == DisclosureProcedure
}

// RewardRule decides when a question's reward is paid.
type RewardRule string

const (
	// RewardFixed pays the reward on the first ask.
	RewardFixed RewardRule = "fixed"
	// RewardIfHidden pays only when the tied hidden condition is true.
	RewardIfHidden RewardRule = "if_hidden"
)

// Answers holds the patient's scripted replies for one question.
type Answers struct {
	Positive       string `yaml:"positive"`
	Negative       string `yaml:"negative"`
	RepeatPositive string `yaml:"repeat_positive"`
	RepeatNegative string `yaml:"repeat_negative"`
}

// Entry is one askable question.
type Entry struct {
	Tag        QuestionTag `yaml:"id"`
	PromptKey  string      `yaml:"prompt_key"`
	Prompt     string      `yaml:"prompt"`
	Reveals    Disclosure  `yaml:"reveals"`
	RewardRule RewardRule  `yaml:"reward_rule"`
	Reward     int         `yaml:"reward"`
	Fact       string      `yaml:"fact"`
	Answers    Answers     `yaml:"answers"`
}

// Advice is the senior pharmacist's script.
type Advice struct {
	Opening           string `yaml:"opening"`
	EarlyCaveat       string `yaml:"early_caveat"`
	Both              string `yaml:"both"`
	AnticoagulantOnly string `yaml:"anticoagulant_only"`
	ProcedureOnly     string `yaml:"procedure_only"`
	General           string `yaml:"general"`
}

// Catalog is the question list plus every piece of scripted text the
// engine emits. It is read-only once loaded.
type Catalog struct {
	Version   string              `yaml:"version"`
	Questions []Entry             `yaml:"questions"`
	Actions   map[ActionID]string `yaml:"actions"`
	Advice    Advice              `yaml:"advice"`

	byTag map[QuestionTag]*Entry
}

// LoadCatalog parses and validates the embedded catalog.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// ParseCatalog parses and validates a YAML catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: parse: %v", ErrInvalidCatalog, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that every question is present exactly once with a
// consistent disclosure binding and that all scripted text exists. It also
// builds the lookup index, so a hand-built Catalog must be validated
// before use.
func (c *Catalog) Validate() error {
	known := make(map[QuestionTag]bool)
	for _, q := range QuestionTags() {
		known[q] = true
	}

	byTag := make(map[QuestionTag]*Entry, len(c.Questions))
	for i := range c.Questions {
		e := &c.Questions[i]
		if !known[e.Tag] {
			return fmt.Errorf("%w: question %q", ErrUnknownCatalogEntry, e.Tag)
		}
		if _, dup := byTag[e.Tag]; dup {
			return fmt.Errorf("%w: question %q listed twice", ErrInvalidCatalog, e.Tag)
		}
		if err := e.validate(); err != nil {
			return err
		}
		byTag[e.Tag] = e
	}
	for _, q := range QuestionTags() {
		if _, ok := byTag[q]; !ok {
			return fmt.Errorf("%w: question %q missing", ErrInvalidCatalog, q)
		}
	}

	for _, a := range []ActionID{ActionGatherMore, ActionRecommendDrug, ActionConsultSenior, ActionNSAID, ActionAcetaminophen} {
		if strings.TrimSpace(c.Actions[a]) == "" {
			return fmt.Errorf("%w: no label for action %q", ErrInvalidCatalog, a)
		}
	}

	adv := c.Advice
	for name, text := range map[string]string{
		"opening":            adv.Opening,
		"early_caveat":       adv.EarlyCaveat,
		"both":               adv.Both,
		"anticoagulant_only": adv.AnticoagulantOnly,
		"procedure_only":     adv.ProcedureOnly,
		"general":            adv.General,
	} {
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("%w: advice %q is empty", ErrInvalidCatalog, name)
		}
	}

	c.byTag = byTag
	return nil
}

func (e *Entry) validate() error {
	if strings.TrimSpace(e.Prompt) == "" {
		return fmt.Errorf("%w: question %q has no prompt", ErrInvalidCatalog, e.Tag)
	}
	if e.Answers.Positive == "" {
		return fmt.Errorf("%w: question %q has no answer", ErrInvalidCatalog, e.Tag)
	}
	if e.Reward < 0 {
		return fmt.Errorf("%w: question %q has a negative reward", ErrInvalidCatalog, e.Tag)
	}
	switch e.Reveals {
	case DisclosureAnticoagulant, DisclosureProcedure:
		if e.Answers.Negative == "" {
			return fmt.Errorf("%w: question %q has no negative answer", ErrInvalidCatalog, e.Tag)
		}
	case DisclosureSymptomOnset, DisclosureHeadacheHistory:
		if e.Fact == "" {
			return fmt.Errorf("%w: question %q records no fact", ErrInvalidCatalog, e.Tag)
		}
	default:
		return fmt.Errorf("%w: question %q reveals %q", ErrInvalidCatalog, e.Tag, e.Reveals)
	}
	switch e.RewardRule {
	case RewardFixed:
	case RewardIfHidden:
		if !e.Reveals.hidden() {
			return fmt.Errorf("%w: question %q pays on a hidden condition it does not reveal", ErrInvalidCatalog, e.Tag)
		}
	default:
		return fmt.Errorf("%w: question %q has reward rule %q", ErrInvalidCatalog, e.Tag, e.RewardRule)
	}
	return nil
}

// Entry looks up a question.
func (c *Catalog) Entry(tag QuestionTag) (*Entry, error) {
	e, ok := c.byTag[tag]
	if !ok {
		return nil, fmt.Errorf("%w: question %q", ErrUnknownCatalogEntry, tag)
	}
	return e, nil
}

// Label returns the display label for a navigation or drug action.
func (c *Catalog) Label(a ActionID) string {
	if l, ok := c.Actions[a]; ok {
		return l
	}
	return string(a)
}

// answer is what asking a question yields.
type answer struct {
	text    string
	reward  int
	changed bool
}

// resolve answers e against the hidden truth, updating discovered. The
// reward is only paid on the first ask; repeats replay the script.
func (e *Entry) resolve(hidden HiddenConditions, discovered *DiscoveredInfo, repeat bool) answer {
	truthful := !e.Reveals.hidden() || hidden.has(e.Reveals)

	var out answer
	switch {
	case truthful && repeat && e.Answers.RepeatPositive != "":
		out.text = e.Answers.RepeatPositive
	case truthful:
		out.text = e.Answers.Positive
	case repeat && e.Answers.RepeatNegative != "":
		out.text = e.Answers.RepeatNegative
	default:
		out.text = e.Answers.Negative
	}
	if repeat {
		return out
	}

	if truthful {
		out.changed = discovered.disclose(e.Reveals, e.Fact)
	}
	switch e.RewardRule {
	case RewardFixed:
		out.reward = e.Reward
	case RewardIfHidden:
		if hidden.has(e.Reveals) {
			out.reward = e.Reward
		}
	}
	return out
}

// advise builds the senior pharmacist's advice from what the trainee has
// uncovered. The hidden conditions are never consulted.
func (c *Catalog) advise(d DiscoveredInfo, early bool) string {
	parts := []string{c.Advice.Opening}
	if early {
		parts = append(parts, c.Advice.EarlyCaveat)
	}
	switch {
	case d.AnticoagulantRevealed && d.ProcedureRevealed:
		parts = append(parts, c.Advice.Both)
	case d.AnticoagulantRevealed:
		parts = append(parts, c.Advice.AnticoagulantOnly)
	case d.ProcedureRevealed:
		parts = append(parts, c.Advice.ProcedureOnly)
	default:
		parts = append(parts, c.Advice.General)
	}
	return strings.Join(parts, " ")
}
