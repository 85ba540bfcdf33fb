package domain

import (
	"fmt"
	"time"
)

// Phase is what the UI shows at a given step.
type Phase string

const (
	PhaseWelcome  Phase = "welcome"
	PhaseQuestion Phase = "question"
	PhasePause    Phase = "pause"
	PhaseResults  Phase = "results"
)

// Step is one entry of the step lookup table.
type Step struct {
	Phase    Phase `json:"phase"`
	Match    int   `json:"match"`    // 1-based; 0 outside a match
	Slot     int   `json:"slot"`     // answer slot, -1 when not a question
	Question int   `json:"question"` // index into Definition.Questions, -1 when not a question
}

// QuestionSpec is one of the fixed challenge questions.
type QuestionSpec struct {
	ID       string `json:"id"`
	Prompt   string `json:"prompt"`
	Expected Answer `json:"expected"`
	// Source names the file whose attribute selection answers a set question.
	Source string `json:"source,omitempty"`
	// Visible lists the files offered for attribute questions; empty means all.
	Visible []string `json:"visible,omitempty"`
}

// PenaltyWindow bounds the linear time-penalty ramp.
type PenaltyWindow struct {
	Lower time.Duration `json:"lower"`
	Upper time.Duration `json:"upper"`
}

// Option is a selectable value with a display label.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Definition is the storable form of a challenge.
type Definition struct {
	ID             string              `json:"id"`
	Questions      []QuestionSpec      `json:"questions"`
	Files          []string            `json:"files"`
	Releases       []Option            `json:"releases"`
	Attributes     map[string][]string `json:"attributes,omitempty"`
	Matches        int                 `json:"matches"`
	Penalty        PenaltyWindow       `json:"penalty"`
	DefaultRelease string              `json:"defaultRelease"`
	DefaultEffort  int                 `json:"defaultEffort"`
}

// Challenge is the immutable configuration a session is driven against.
// Build it with NewChallenge and share it by pointer.
type Challenge struct {
	Definition
	steps []Step
}

// MaxEffort is the highest self-reported effort rating.
const MaxEffort = 2

// NewChallenge validates def and builds the step table:
// welcome, questions, pause, questions, ..., results.
func NewChallenge(def Definition) (*Challenge, error) {
	if len(def.Questions) == 0 {
		return nil, fmt.Errorf("%w: no questions", ErrInvalidChallenge)
	}
	if def.Matches <= 0 {
		def.Matches = 2
	}
	if def.Penalty.Upper <= def.Penalty.Lower {
		return nil, fmt.Errorf("%w: penalty window %s..%s", ErrInvalidChallenge, def.Penalty.Lower, def.Penalty.Upper)
	}
	if def.DefaultEffort < 0 || def.DefaultEffort > MaxEffort {
		return nil, fmt.Errorf("%w: default effort %d", ErrInvalidChallenge, def.DefaultEffort)
	}
	for _, q := range def.Questions {
		switch q.Expected.Kind {
		case KindSingle:
		case KindSet:
			if q.Source == "" {
				return nil, fmt.Errorf("%w: question %s has no source file", ErrInvalidChallenge, q.ID)
			}
		case KindSubsets:
			if len(q.Expected.Subsets) != len(def.Files) {
				return nil, fmt.Errorf("%w: question %s expects %d subsets, have %d files",
					ErrInvalidChallenge, q.ID, len(q.Expected.Subsets), len(def.Files))
			}
		default:
			return nil, fmt.Errorf("%w: question %s has unknown answer kind %q", ErrInvalidChallenge, q.ID, q.Expected.Kind)
		}
	}

	n := len(def.Questions)
	steps := []Step{{Phase: PhaseWelcome, Slot: -1, Question: -1}}
	for m := 0; m < def.Matches; m++ {
		if m > 0 {
			steps = append(steps, Step{Phase: PhasePause, Match: m + 1, Slot: -1, Question: -1})
		}
		for q := 0; q < n; q++ {
			steps = append(steps, Step{Phase: PhaseQuestion, Match: m + 1, Slot: m*n + q, Question: q})
		}
	}
	steps = append(steps, Step{Phase: PhaseResults, Slot: -1, Question: -1})

	return &Challenge{Definition: def, steps: steps}, nil
}

// Steps returns a copy of the step table.
func (c *Challenge) Steps() []Step {
	return append([]Step(nil), c.steps...)
}

// StepCount is the number of steps in a full playthrough.
func (c *Challenge) StepCount() int {
	return len(c.steps)
}

// LastStep is the results step.
func (c *Challenge) LastStep() int {
	return len(c.steps) - 1
}

// StepAt returns the step entry, or false when i is out of range.
func (c *Challenge) StepAt(i int) (Step, bool) {
	if i < 0 || i >= len(c.steps) {
		return Step{}, false
	}
	return c.steps[i], true
}

// Slots is the number of answer slots across all matches.
func (c *Challenge) Slots() int {
	return len(c.Questions) * c.Matches
}

// QuestionForSlot returns the question asked in a slot.
func (c *Challenge) QuestionForSlot(slot int) QuestionSpec {
	return c.Questions[slot%len(c.Questions)]
}
