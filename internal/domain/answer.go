package domain

// AnswerKind tags the shape of an Answer.
type AnswerKind string

const (
	// KindSingle is a single label, e.g. a release identifier.
	KindSingle AnswerKind = "single"
	// KindSet is a flat set of labels.
	KindSet AnswerKind = "set"
	// KindSubsets is an ordered list of label sets, one per release file.
	KindSubsets AnswerKind = "subsets"
)

// Answer is either an expected answer or a submission. Only the field
// matching Kind is meaningful.
type Answer struct {
	Kind    AnswerKind `json:"kind"`
	Value   string     `json:"value,omitempty"`
	Values  []string   `json:"values,omitempty"`
	Subsets [][]string `json:"subsets,omitempty"`
}

func SingleAnswer(label string) Answer {
	return Answer{Kind: KindSingle, Value: label}
}

func SetAnswer(labels ...string) Answer {
	values := make([]string, len(labels))
	copy(values, labels)
	return Answer{Kind: KindSet, Values: values}
}

func SubsetAnswer(subsets ...[]string) Answer {
	out := make([][]string, len(subsets))
	for i, s := range subsets {
		out[i] = append([]string{}, s...)
	}
	return Answer{Kind: KindSubsets, Subsets: out}
}

// Clone returns a deep copy so sessions never share slices.
func (a Answer) Clone() Answer {
	switch a.Kind {
	case KindSet:
		return SetAnswer(a.Values...)
	case KindSubsets:
		return SubsetAnswer(a.Subsets...)
	default:
		return a
	}
}
