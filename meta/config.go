package meta

import "fmt"

// Config controls compilation and engine selection.
type Config struct {
	// MaxStates bounds the compiled program size. Compilation fails with
	// nfa.ErrTooComplex when a pattern exceeds it.
	MaxStates int

	// MaxRecursionDepth bounds parser and compiler nesting.
	MaxRecursionDepth int

	// DisablePrefilter turns off literal scanning; every search then
	// runs the automaton from each position. Mainly for testing.
	DisablePrefilter bool

	// DisableBacktracker forces the PikeVM on every search. Mainly for
	// testing.
	DisableBacktracker bool
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		MaxStates:         100000,
		MaxRecursionDepth: 1000,
	}
}

// Validate checks configuration bounds.
func (c Config) Validate() error {
	if c.MaxStates <= 0 {
		return fmt.Errorf("meta: MaxStates must be positive, got %d", c.MaxStates)
	}
	if c.MaxRecursionDepth <= 0 {
		return fmt.Errorf("meta: MaxRecursionDepth must be positive, got %d", c.MaxRecursionDepth)
	}
	return nil
}
