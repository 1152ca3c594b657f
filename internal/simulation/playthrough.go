package simulation

// Grade is the coarse verdict on a final score.
type Grade string

const (
	GradeExcellent   Grade = "excellent"
	GradeGood        Grade = "good"
	GradeNeedsReview Grade = "needs_review"
)

// GradeFor buckets a final score.
func GradeFor(score int) Grade {
	switch {
	case score >= 80:
		return GradeExcellent
	case score >= StartingScore:
		return GradeGood
	default:
		return GradeNeedsReview
	}
}

// Hint is a reminder shown at the start of a replay.
type Hint string

const (
	HintAskCurrentMeds    Hint = "ask_current_meds"
	HintAskMedicalHistory Hint = "ask_medical_history"
)

// Playthrough is bookkeeping kept across sessions by the host. It is not
// part of Session and never influences scoring.
type Playthrough struct {
	Count                 int  `json:"count"`
	MissedMedsLastTime    bool `json:"missed_meds_last_time"`
	MissedHistoryLastTime bool `json:"missed_history_last_time"`
}

// FirstPlaythrough is the bookkeeping for a brand new trainee.
func FirstPlaythrough() Playthrough { return Playthrough{Count: 1} }

// Advance records how the finished session went and counts the next
// attempt. A question counts as missed only when the fact it would have
// uncovered was real, it was never asked and the score ended below the
// starting score.
func (p Playthrough) Advance(finished *Session) Playthrough {
	next := Playthrough{Count: p.Count + 1}
	if finished == nil {
		return next
	}
	poor := finished.Score < StartingScore
	next.MissedMedsLastTime = poor && finished.Hidden.Anticoagulant && !finished.Asked.Has(QuestionCurrentMeds)
	next.MissedHistoryLastTime = poor && finished.Hidden.Procedure && !finished.Asked.Has(QuestionMedicalHistory)
	return next
}

// Hints returns the reminders for the current attempt. The first attempt
// never gets hints.
func (p Playthrough) Hints() []Hint {
	if p.Count <= 1 {
		return nil
	}
	var out []Hint
	if p.MissedMedsLastTime {
		out = append(out, HintAskCurrentMeds)
	}
	if p.MissedHistoryLastTime {
		out = append(out, HintAskMedicalHistory)
	}
	return out
}
