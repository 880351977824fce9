package evo

import "github.com/rivo/uniseg"

// Fitness scores a candidate against the target. Higher is better and the
// result is never negative.
type Fitness interface {
	Name() string
	Score(target, candidate string) int
}

// FitnessFunc adapts a plain function to Fitness.
type FitnessFunc func(target, candidate string) int

func (FitnessFunc) Name() string {
	return "func"
}

func (f FitnessFunc) Score(target, candidate string) int {
	return f(target, candidate)
}

// ConstantFitness rates every candidate as equally fit.
type ConstantFitness struct{}

func (ConstantFitness) Name() string {
	return "constant"
}

func (ConstantFitness) Score(_, _ string) int {
	return 1
}

// PositionalMatchFitness awards one point per grapheme that equals the target
// grapheme at the same position. Comparison stops at the shorter input and
// neither side is normalized.
type PositionalMatchFitness struct{}

func (PositionalMatchFitness) Name() string {
	return "match"
}

func (PositionalMatchFitness) Score(target, candidate string) int {
	score := 0
	tg := uniseg.NewGraphemes(target)
	cg := uniseg.NewGraphemes(candidate)
	for tg.Next() && cg.Next() {
		if tg.Str() == cg.Str() {
			score++
		}
	}
	return score
}
