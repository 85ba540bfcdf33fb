package domain

// Session is the state of one playthrough. It is serialized between
// actions and must round-trip unchanged.
type Session struct {
	ID                  string    `json:"id"`
	ChallengeID         string    `json:"challengeId"`
	Step                int       `json:"step"`
	QuestionIndex       int       `json:"questionIndex"`
	Answers             []Answer  `json:"answers"`
	Efforts             []int     `json:"efforts"`
	Times               []float64 `json:"times"`
	Scores              []float64 `json:"scores"`
	LastActionTimestamp int64     `json:"lastActionTimestamp"` // milliseconds
}

// Clone deep-copies the session.
func (s Session) Clone() Session {
	out := s
	out.Answers = make([]Answer, len(s.Answers))
	for i, a := range s.Answers {
		out.Answers[i] = a.Clone()
	}
	out.Efforts = append([]int(nil), s.Efforts...)
	out.Times = append([]float64(nil), s.Times...)
	out.Scores = append([]float64(nil), s.Scores...)
	return out
}

// Action is a single user interaction.
type Action struct {
	Advance   bool
	End       bool
	Timestamp int64 // milliseconds
	// Effort is nil when the slider was left untouched.
	Effort     *int
	Release    string
	Attributes map[string][]string
}

// InputKind tells the UI which widgets a question needs.
type InputKind string

const (
	InputNone       InputKind = ""
	InputRelease    InputKind = "release"
	InputAttributes InputKind = "attributes"
)

// QuestionView is the renderable part of a question.
type QuestionView struct {
	ID       string              `json:"id"`
	Prompt   string              `json:"prompt"`
	Input    InputKind           `json:"input"`
	Releases []Option            `json:"releases,omitempty"`
	Files    []string            `json:"files,omitempty"`
	Options  map[string][]string `json:"options,omitempty"`
}

// StepView is everything the UI needs to render the current step.
type StepView struct {
	Step     int           `json:"step"`
	Phase    Phase         `json:"phase"`
	Match    int           `json:"match,omitempty"`
	Question *QuestionView `json:"question,omitempty"`
}

// MatchResult summarizes one match for the comparison charts.
type MatchResult struct {
	Match      int       `json:"match"`
	Labels     []string  `json:"labels"`
	Scores     []float64 `json:"scores"`
	Weighted   []float64 `json:"weighted"`
	Cumulative []float64 `json:"cumulative"`
	Times      []float64 `json:"times"`
	// Efforts counts ratings 0..MaxEffort.
	Efforts []int `json:"efforts"`
}

// Results is the comparison handed to the presentation layer.
type Results struct {
	SessionID   string        `json:"sessionId"`
	ChallengeID string        `json:"challengeId"`
	Times       []float64     `json:"times"`
	Scores      []float64     `json:"scores"`
	Efforts     []int         `json:"efforts"`
	Matches     []MatchResult `json:"matches"`
}
