package evo

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

const DefaultFitnessName = "match"

var fitnessRegistry = struct {
	mu sync.RWMutex
	m  map[string]Fitness
}{
	m: map[string]Fitness{
		ConstantFitness{}.Name():        ConstantFitness{},
		PositionalMatchFitness{}.Name(): PositionalMatchFitness{},
	},
}

// RegisterFitness makes a fitness strategy resolvable by name.
func RegisterFitness(name string, fitness Fitness) error {
	if name == "" {
		return errors.New("fitness name is required")
	}
	if fitness == nil {
		return errors.New("fitness is required")
	}

	fitnessRegistry.mu.Lock()
	defer fitnessRegistry.mu.Unlock()

	if _, exists := fitnessRegistry.m[name]; exists {
		return fmt.Errorf("%w: %s", ErrFitnessExists, name)
	}
	fitnessRegistry.m[name] = fitness
	return nil
}

// ResolveFitness looks up a registered strategy. An empty name resolves to
// the positional match strategy.
func ResolveFitness(name string) (Fitness, error) {
	if name == "" {
		name = DefaultFitnessName
	}

	fitnessRegistry.mu.RLock()
	fitness, ok := fitnessRegistry.m[name]
	fitnessRegistry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFitnessNotFound, name)
	}
	return fitness, nil
}

func ListFitness() []string {
	fitnessRegistry.mu.RLock()
	defer fitnessRegistry.mu.RUnlock()

	names := make([]string, 0, len(fitnessRegistry.m))
	for name := range fitnessRegistry.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func unregisterFitness(name string) {
	fitnessRegistry.mu.Lock()
	defer fitnessRegistry.mu.Unlock()

	delete(fitnessRegistry.m, name)
}
