package app

import (
	"math"

	"curare-challenge/internal/domain"
)

// Score grades a submission against the expected answer, in [0, 1].
// A submission of a different kind than expected scores 0.
func Score(expected, submitted domain.Answer) float64 {
	if submitted.Kind != expected.Kind {
		return 0
	}
	var score float64
	switch expected.Kind {
	case domain.KindSingle:
		if submitted.Value == expected.Value {
			score = 1
		}
	case domain.KindSet:
		score = setScore(expected.Values, submitted.Values)
	case domain.KindSubsets:
		score = subsetScore(expected.Subsets, submitted.Subsets)
	}
	return round2(score)
}

// setScore gives +1 per expected label picked and -1 per wrong one, relative
// to the expected size. A non-positive tally scores nothing.
func setScore(expected, submitted []string) float64 {
	if len(expected) == 0 {
		return 0
	}
	s := tally(expected, submitted)
	if s <= 0 {
		return 0
	}
	return float64(s) / float64(len(expected))
}

// subsetScore splits the credit evenly across files. A file with no expected
// attributes only earns its share when nothing was picked for it.
func subsetScore(expected, submitted [][]string) float64 {
	if len(expected) == 0 {
		return 0
	}
	weight := 1 / float64(len(expected))
	var p float64
	for i, want := range expected {
		var got []string
		if i < len(submitted) {
			got = submitted[i]
		}
		s := tally(want, got)
		switch {
		case len(want) == 0:
			if s == 0 {
				p += weight
			}
		case s > 0:
			p += float64(s) / float64(len(want)) * weight
		}
	}
	return p
}

func tally(expected, submitted []string) int {
	want := make(map[string]struct{}, len(expected))
	for _, e := range expected {
		want[e] = struct{}{}
	}
	seen := make(map[string]struct{}, len(submitted))
	s := 0
	for _, label := range submitted {
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		if _, ok := want[label]; ok {
			s++
		} else {
			s--
		}
	}
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
