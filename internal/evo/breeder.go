package evo

import "errors"

// BreederConfig carries everything a Breeder needs. Alphabet is raw text and
// goes through BuildAlphabet.
type BreederConfig struct {
	Source         Source
	Target         string
	Alphabet       string
	PopulationSize int
	MutationRate   Fraction
	Fitness        Fitness
}

// Offspring is one scored candidate.
type Offspring struct {
	Text  string
	Score int
}

type offspringBuffer struct {
	text  []byte
	score int
}

// Breeder runs breeding rounds: copy a parent PopulationSize times with
// per-grapheme mutation and keep the best scoring copy.
//
// A Breeder owns its Source and is not safe for concurrent use. While a
// Sequence started from it is open, the Breeder belongs to that Sequence.
type Breeder struct {
	source         Source
	alphabet       []string
	target         string
	populationSize int
	mutationRate   Fraction
	fitness        Fitness

	genes      []string
	champion   offspringBuffer
	challenger offspringBuffer
	leased     bool
}

func NewBreeder(cfg BreederConfig) (*Breeder, error) {
	if cfg.Source == nil {
		return nil, &ConfigurationError{Field: "source", Err: errors.New("random source is required")}
	}
	if cfg.Fitness == nil {
		return nil, &ConfigurationError{Field: "fitness", Err: errors.New("fitness is required")}
	}
	if cfg.PopulationSize < 1 {
		return nil, &ConfigurationError{Field: "population size", Err: errors.New("must be at least 1")}
	}
	alphabet, err := BuildAlphabet(cfg.Alphabet)
	if err != nil {
		return nil, err
	}

	return &Breeder{
		source:         cfg.Source,
		alphabet:       alphabet,
		target:         cfg.Target,
		populationSize: cfg.PopulationSize,
		mutationRate:   cfg.MutationRate,
		fitness:        cfg.Fitness,
		champion:       offspringBuffer{text: make([]byte, 0, len(cfg.Target))},
		challenger:     offspringBuffer{text: make([]byte, 0, len(cfg.Target))},
	}, nil
}

// Alphabet returns the deduplicated symbols. Callers must not modify it.
func (b *Breeder) Alphabet() []string {
	return b.alphabet
}

func (b *Breeder) Target() string {
	return b.target
}

func (b *Breeder) PopulationSize() int {
	return b.populationSize
}

func (b *Breeder) MutationRate() Fraction {
	return b.mutationRate
}

func (b *Breeder) Fitness() Fitness {
	return b.fitness
}

// Breed runs one round over the graphemes of individual and returns the
// champion. individual is not normalized. Ties keep the earliest offspring.
//
// Breed panics if a Sequence currently owns the Breeder.
func (b *Breeder) Breed(individual string) (string, int) {
	b.mustBeFree()
	return b.breed(individual)
}

func (b *Breeder) breed(individual string) (string, int) {
	b.genes = appendGraphemes(b.genes[:0], individual)

	b.spawn(&b.champion)
	for i := 1; i < b.populationSize; i++ {
		b.spawn(&b.challenger)
		if b.challenger.score > b.champion.score {
			b.champion, b.challenger = b.challenger, b.champion
		}
	}
	return string(b.champion.text), b.champion.score
}

// spawn copies the current genes into out. Each gene gets one Unit draw and,
// when mutated, one Pick from the whole alphabet, which may return the same
// symbol.
func (b *Breeder) spawn(out *offspringBuffer) {
	rate := b.mutationRate.Value()
	out.text = out.text[:0]
	for _, g := range b.genes {
		if b.source.Unit() <= rate {
			g = b.source.Pick(b.alphabet)
		}
		out.text = append(out.text, g...)
	}
	out.score = b.fitness.Score(b.target, string(out.text))
}

func (b *Breeder) mustBeFree() {
	if b.leased {
		panic("evo: breeder is owned by an open sequence")
	}
}
