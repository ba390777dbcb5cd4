package integrator

import (
	"errors"
	"fmt"

	"github.com/df07/go-mis-pathtracer/pkg/core"
)

// MaxPathLength is the default hard cap on surface interactions per path
const MaxPathLength = 100

// ErrUnknownOption is wrapped when a heuristic or strategy name is not recognized
var ErrUnknownOption = errors.New("unknown integrator option")

// Strategy selects which estimators contribute direct light
type Strategy int

const (
	// StrategyMIS combines light and BRDF sampling with a MIS heuristic
	StrategyMIS Strategy = iota
	// StrategyLight only counts light reached by next-event estimation
	StrategyLight
	// StrategyBRDF only counts light reached by BRDF sampled rays
	StrategyBRDF
)

func (s Strategy) String() string {
	switch s {
	case StrategyMIS:
		return "mis"
	case StrategyLight:
		return "light"
	case StrategyBRDF:
		return "brdf"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy maps "mis", "light" or "brdf" to a Strategy
func ParseStrategy(name string) (Strategy, error) {
	for _, s := range []Strategy{StrategyMIS, StrategyLight, StrategyBRDF} {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: strategy %q", ErrUnknownOption, name)
}

// ParseHeuristic maps "power", "balance" or "max" to a MIS heuristic
func ParseHeuristic(name string) (core.Heuristic, error) {
	switch name {
	case "power":
		return core.PowerHeuristic, nil
	case "balance":
		return core.BalanceHeuristic, nil
	case "max":
		return core.MaxHeuristic, nil
	}
	return nil, fmt.Errorf("%w: heuristic %q", ErrUnknownOption, name)
}

// Config controls the path tracer
type Config struct {
	MaxPathLength   int            // paths stop after this many surface interactions
	Heuristic       core.Heuristic // MIS weighting, used by StrategyMIS
	Strategy        Strategy
	RussianRoulette bool // terminate paths with the material's continuation probability
}

// DefaultConfig returns the reference settings: power heuristic MIS,
// Russian roulette and a path cap of 100
func DefaultConfig() Config {
	return Config{
		MaxPathLength:   MaxPathLength,
		Heuristic:       core.PowerHeuristic,
		Strategy:        StrategyMIS,
		RussianRoulette: true,
	}
}
