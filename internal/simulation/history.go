package simulation

import "iter"

// EntryKind classifies a history entry.
type EntryKind string

const (
	EntryQuestion       EntryKind = "question"
	EntryAnswer         EntryKind = "answer"
	EntryAction         EntryKind = "action"
	EntryRecommendation EntryKind = "recommendation"
	EntryOutcome        EntryKind = "outcome"
)

// HistoryEntry is one line of the consultation record.
type HistoryEntry struct {
	Kind       EntryKind `json:"kind"`
	Text       string    `json:"text"`
	ScoreDelta *int      `json:"score_delta,omitempty"`
}

// Delta returns the score change carried by the entry, if any.
func (e HistoryEntry) Delta() (int, bool) {
	if e.ScoreDelta == nil {
		return 0, false
	}
	return *e.ScoreDelta, true
}

// History is the append-only consultation record. Append never writes into
// the receiver's backing array, so older sessions keep their own view.
type History []HistoryEntry

// Append returns a new History with entries added at the end.
func (h History) Append(entries ...HistoryEntry) History {
	out := make(History, len(h), len(h)+len(entries))
	copy(out, h)
	return append(out, entries...)
}

// All walks the entries in order. The sequence can be ranged over any
// number of times.
func (h History) All() iter.Seq2[int, HistoryEntry] {
	return func(yield func(int, HistoryEntry) bool) {
		for i, e := range h {
			if !yield(i, e) {
				return
			}
		}
	}
}

// OfKind walks only the entries of the given kind.
func (h History) OfKind(kind EntryKind) iter.Seq[HistoryEntry] {
	return func(yield func(HistoryEntry) bool) {
		for _, e := range h {
			if e.Kind == kind && !yield(e) {
				return
			}
		}
	}
}

// Last returns the most recent entry.
func (h History) Last() (HistoryEntry, bool) {
	if len(h) == 0 {
		return HistoryEntry{}, false
	}
	return h[len(h)-1], true
}

func scored(kind EntryKind, text string, delta int) HistoryEntry {
	return HistoryEntry{Kind: kind, Text: text, ScoreDelta: &delta}
}
