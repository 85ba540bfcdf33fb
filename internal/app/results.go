package app

import "curare-challenge/internal/domain"

// View describes what the UI should render for the session's current step.
func View(ch *domain.Challenge, s domain.Session) domain.StepView {
	step, ok := ch.StepAt(s.Step)
	if !ok {
		if s.Step < 0 {
			return domain.StepView{Step: s.Step, Phase: domain.PhaseWelcome}
		}
		return domain.StepView{Step: s.Step, Phase: domain.PhaseResults}
	}
	view := domain.StepView{Step: s.Step, Phase: step.Phase, Match: step.Match}
	if step.Phase != domain.PhaseQuestion {
		return view
	}

	q := ch.Questions[step.Question]
	qv := &domain.QuestionView{ID: q.ID, Prompt: q.Prompt}
	switch q.Expected.Kind {
	case domain.KindSingle:
		qv.Input = domain.InputRelease
		qv.Releases = ch.Releases
	default:
		qv.Input = domain.InputAttributes
		qv.Files = q.Visible
		if len(qv.Files) == 0 {
			qv.Files = ch.Files
		}
		qv.Options = make(map[string][]string, len(qv.Files))
		for _, file := range qv.Files {
			qv.Options[file] = ch.Attributes[file]
		}
	}
	view.Question = qv
	return view
}

// BuildResults splits the session per match and derives the comparison
// series: penalized scores, the cumulative score curve and effort counts.
func BuildResults(ch *domain.Challenge, s domain.Session) domain.Results {
	res := domain.Results{
		SessionID:   s.ID,
		ChallengeID: ch.ID,
		Times:       append([]float64(nil), s.Times...),
		Scores:      append([]float64(nil), s.Scores...),
		Efforts:     append([]int(nil), s.Efforts...),
	}

	n := len(ch.Questions)
	labels := make([]string, n)
	for i, q := range ch.Questions {
		labels[i] = q.ID
	}

	weighted := WeightedScores(ch.Penalty, s.Scores, s.Times)
	for m := 0; m < ch.Matches; m++ {
		lo, hi := m*n, (m+1)*n
		if hi > len(s.Scores) {
			break
		}
		efforts := make([]int, domain.MaxEffort+1)
		for _, e := range s.Efforts[lo:hi] {
			if e >= 0 && e <= domain.MaxEffort {
				efforts[e]++
			}
		}
		res.Matches = append(res.Matches, domain.MatchResult{
			Match:      m + 1,
			Labels:     labels,
			Scores:     append([]float64(nil), s.Scores[lo:hi]...),
			Weighted:   weighted[lo:hi],
			Cumulative: Cumulative(weighted[lo:hi]),
			Times:      append([]float64(nil), s.Times[lo:hi]...),
			Efforts:    efforts,
		})
	}
	return res
}

// Cumulative starts from a perfect match and drops every lost point,
// expressed as a percentage after each question.
func Cumulative(scores []float64) []float64 {
	n := float64(len(scores))
	out := make([]float64, len(scores))
	running := n
	for i, v := range scores {
		running -= 1 - v
		out[i] = round2(running / n * 100)
	}
	return out
}
