package app

import (
	"math/rand"

	"curare-challenge/internal/domain"
)

// placeholder ranges for slots that have not been answered yet, per match.
var (
	placeholderEffort = [][2]int{{1, 2}, {0, 1}}
	placeholderTime   = [][2]int{{0, 300}, {0, 180}}
)

// NewSession builds a session at the welcome step. Unanswered slots hold
// placeholders: the default submission in the first match and the answer
// key afterwards, with random efforts and times. Scores are derived from the
// placeholder answers.
func NewSession(ch *domain.Challenge, id string, rnd *rand.Rand) domain.Session {
	slots := ch.Slots()
	s := domain.Session{
		ID:          id,
		ChallengeID: ch.ID,
		Answers:     make([]domain.Answer, slots),
		Efforts:     make([]int, slots),
		Times:       make([]float64, slots),
		Scores:      make([]float64, slots),
	}
	n := len(ch.Questions)
	for slot := 0; slot < slots; slot++ {
		q := ch.QuestionForSlot(slot)
		match := slot / n
		if match == 0 {
			s.Answers[slot] = placeholderSubmission(ch, q)
		} else {
			s.Answers[slot] = q.Expected.Clone()
		}
		r := match
		if r >= len(placeholderEffort) {
			r = len(placeholderEffort) - 1
		}
		s.Efforts[slot] = randRange(rnd, placeholderEffort[r])
		s.Times[slot] = float64(randRange(rnd, placeholderTime[r]))
		s.Scores[slot] = Score(q.Expected, s.Answers[slot])
	}
	return s
}

// Advance computes the session that follows act. A nil prev starts a new
// session first. Scores of prev are recomputed from its answers, and a
// negative step is moved back to the welcome step. Steps past the results
// step are left alone apart from the End jump.
func Advance(ch *domain.Challenge, prev *domain.Session, id string, act domain.Action, rnd *rand.Rand) domain.Session {
	var s domain.Session
	if prev == nil || !fitsChallenge(ch, *prev) {
		s = NewSession(ch, id, rnd)
	} else {
		s = prev.Clone()
		s.Scores = Rescore(ch, s)
		if s.Step < 0 {
			s.Step = 0
		}
	}

	if act.Advance && s.Step >= 0 && s.Step < ch.LastStep() {
		step, _ := ch.StepAt(s.Step)
		if step.Phase == domain.PhaseQuestion {
			capture(ch, &s, step, act)
		}
		s.LastActionTimestamp = act.Timestamp
		s.Step++
	}

	if act.End {
		s.Step = ch.LastStep()
	}
	return s
}

func capture(ch *domain.Challenge, s *domain.Session, step domain.Step, act domain.Action) {
	q := ch.Questions[step.Question]
	answer := submission(ch, q, act)

	s.Answers[step.Slot] = answer
	s.Efforts[step.Slot] = effortOrDefault(ch, act.Effort)
	s.Times[step.Slot] = elapsedSeconds(s.LastActionTimestamp, act.Timestamp)
	s.Scores[step.Slot] = Score(q.Expected, answer)

	s.QuestionIndex = step.Slot + 1
	if last := ch.Slots() - 1; s.QuestionIndex > last {
		s.QuestionIndex = last
	}
}

// submission shapes the raw inputs into the answer kind the question expects.
// Missing values fall back to the challenge defaults.
func submission(ch *domain.Challenge, q domain.QuestionSpec, act domain.Action) domain.Answer {
	switch q.Expected.Kind {
	case domain.KindSet:
		return domain.SetAnswer(act.Attributes[q.Source]...)
	case domain.KindSubsets:
		subsets := make([][]string, len(ch.Files))
		for i, file := range ch.Files {
			subsets[i] = act.Attributes[file]
		}
		return domain.SubsetAnswer(subsets...)
	default:
		release := act.Release
		if release == "" {
			release = ch.DefaultRelease
		}
		return domain.SingleAnswer(release)
	}
}

func placeholderSubmission(ch *domain.Challenge, q domain.QuestionSpec) domain.Answer {
	switch q.Expected.Kind {
	case domain.KindSingle:
		first := ch.DefaultRelease
		if len(ch.Releases) > 0 {
			first = ch.Releases[0].Value
		}
		return domain.SingleAnswer(first)
	default:
		return submission(ch, q, domain.Action{})
	}
}

func effortOrDefault(ch *domain.Challenge, effort *int) int {
	if effort == nil || *effort < 0 || *effort > domain.MaxEffort {
		return ch.DefaultEffort
	}
	return *effort
}

// Rescore recomputes every score from the stored answers.
func Rescore(ch *domain.Challenge, s domain.Session) []float64 {
	scores := make([]float64, len(s.Answers))
	for slot, answer := range s.Answers {
		scores[slot] = Score(ch.QuestionForSlot(slot).Expected, answer)
	}
	return scores
}

// fitsChallenge reports whether a decoded session can be driven by ch.
func fitsChallenge(ch *domain.Challenge, s domain.Session) bool {
	slots := ch.Slots()
	return len(s.Answers) == slots && len(s.Efforts) == slots &&
		len(s.Times) == slots && len(s.Scores) == slots
}

func randRange(rnd *rand.Rand, r [2]int) int {
	return r[0] + rnd.Intn(r[1]-r[0]+1)
}
