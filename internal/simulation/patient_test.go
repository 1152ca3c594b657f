package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiscoveredInfo_RevealIsIdempotent(t *testing.T) {
	var d DiscoveredInfo

	assert.True(t, d.RevealAnticoagulant())
	assert.False(t, d.RevealAnticoagulant())
	assert.True(t, d.RevealProcedure())
	assert.False(t, d.RevealProcedure())

	assert.True(t, d.RecordSymptomOnset("since last night"))
	assert.False(t, d.RecordSymptomOnset("since this morning"))
	assert.Equal(t, "since last night", d.SymptomOnset)

	assert.False(t, d.RecordHeadacheHistory(""))
	assert.True(t, d.RecordHeadacheHistory("when stressed"))
	assert.False(t, d.RecordHeadacheHistory("when stressed"))

	assert.Equal(t, DiscoveredInfo{
		AnticoagulantRevealed: true,
		ProcedureRevealed:     true,
		SymptomOnset:          "since last night",
		HeadacheHistory:       "when stressed",
	}, d)
}

func TestHistory_AppendDoesNotAlias(t *testing.T) {
	base := History{}.Append(HistoryEntry{Kind: EntryQuestion, Text: "q"})
	a := base.Append(HistoryEntry{Kind: EntryAnswer, Text: "a"})
	b := base.Append(HistoryEntry{Kind: EntryAnswer, Text: "b"})

	assert.Len(t, base, 1)
	assert.Equal(t, "a", a[1].Text)
	assert.Equal(t, "b", b[1].Text)
}

func TestHistory_AllIsRestartable(t *testing.T) {
	h := History{}.Append(
		HistoryEntry{Kind: EntryQuestion, Text: "q"},
		scored(EntryAnswer, "a", 5),
		HistoryEntry{Kind: EntryAction, Text: "act"},
	)

	for pass := 0; pass < 2; pass++ {
		var texts []string
		for _, e := range h.All() {
			texts = append(texts, e.Text)
		}
		assert.Equal(t, []string{"q", "a", "act"}, texts)
	}

	var first []int
	for i := range h.All() {
		first = append(first, i)
		break
	}
	assert.Equal(t, []int{0}, first)

	var answers []HistoryEntry
	for e := range h.OfKind(EntryAnswer) {
		answers = append(answers, e)
	}
	assert.Len(t, answers, 1)
	d, ok := answers[0].Delta()
	assert.True(t, ok)
	assert.Equal(t, 5, d)
}

func TestPlaythrough(t *testing.T) {
	p := FirstPlaythrough()
	assert.Empty(t, p.Hints())

	missed := &Session{Hidden: DefaultHidden(), Score: -60, Terminated: true}
	p = p.Advance(missed)
	assert.Equal(t, 2, p.Count)
	assert.Equal(t, []Hint{HintAskCurrentMeds, HintAskMedicalHistory}, p.Hints())

	careful := &Session{Hidden: DefaultHidden(), Score: 125, Asked: QuestionSet{QuestionCurrentMeds, QuestionMedicalHistory}}
	p = p.Advance(careful)
	assert.Equal(t, 3, p.Count)
	assert.Empty(t, p.Hints())

	lucky := &Session{Hidden: HiddenConditions{}, Score: 40}
	assert.Empty(t, FirstPlaythrough().Advance(lucky).Hints())
}

func TestGradeFor(t *testing.T) {
	assert.Equal(t, GradeExcellent, GradeFor(125))
	assert.Equal(t, GradeExcellent, GradeFor(80))
	assert.Equal(t, GradeGood, GradeFor(79))
	assert.Equal(t, GradeGood, GradeFor(50))
	assert.Equal(t, GradeNeedsReview, GradeFor(49))
	assert.Equal(t, GradeNeedsReview, GradeFor(-60))
}
