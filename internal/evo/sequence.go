package evo

import (
	"iter"
	"strings"
)

// Goal is an optional score threshold for a Sequence.
type Goal struct {
	score int
	set   bool
}

// NoGoal never ends a Sequence.
func NoGoal() Goal {
	return Goal{}
}

// ScoreGoal ends a Sequence after the first generation scoring at least score.
func ScoreGoal(score int) Goal {
	return Goal{score: score, set: true}
}

func (g Goal) Score() (int, bool) {
	return g.score, g.set
}

// Sequence pulls generations from a Breeder, feeding each champion back in as
// the next parent. It is forward only; once exhausted it stays exhausted.
type Sequence struct {
	breeder *Breeder
	goal    Goal
	current string
	ended   bool
}

// Start seeds a random individual with as many graphemes as the target and
// returns it as generation 0 together with a Sequence bred from it.
//
// The Sequence owns b until it is exhausted or closed. Calling Breed or Start
// on b in the meantime panics.
func (b *Breeder) Start(goal Goal) (*Sequence, string) {
	b.mustBeFree()

	n := GraphemeCount(b.target)
	var seed strings.Builder
	seed.Grow(len(b.target))
	for i := 0; i < n; i++ {
		seed.WriteString(b.source.Pick(b.alphabet))
	}

	b.leased = true
	return &Sequence{
		breeder: b,
		goal:    goal,
		current: seed.String(),
	}, seed.String()
}

// Next breeds one generation. The generation that reaches the goal is still
// returned; the following call reports false.
func (s *Sequence) Next() (Offspring, bool) {
	if s.ended {
		return Offspring{}, false
	}

	text, score := s.breeder.breed(s.current)
	s.current = text
	if target, ok := s.goal.Score(); ok && score >= target {
		s.finish()
	}
	return Offspring{Text: text, Score: score}, true
}

// All yields (text, score) pairs until the Sequence is exhausted or the loop
// body breaks.
func (s *Sequence) All() iter.Seq2[string, int] {
	return func(yield func(string, int) bool) {
		for {
			off, ok := s.Next()
			if !ok || !yield(off.Text, off.Score) {
				return
			}
		}
	}
}

// Current returns the parent the next call to Next will breed from.
func (s *Sequence) Current() string {
	return s.current
}

func (s *Sequence) Done() bool {
	return s.ended
}

// Close exhausts the Sequence and hands the Breeder back. It is safe to call
// more than once.
func (s *Sequence) Close() {
	s.finish()
}

func (s *Sequence) finish() {
	if s.ended {
		return
	}
	s.ended = true
	s.breeder.leased = false
}
