package simulation

import "context"

// Simulation is implemented by every runnable simulation
type Simulation interface {
	// Name returns the registry name of the simulation
	Name() string

	// Description returns a brief description of what the simulation does
	Description() string

	// Configure applies the flat parameter map collected by the CLI
	Configure(params map[string]interface{}) error

	// Run blocks until the simulation completes, is stopped, or ctx is cancelled
	Run(ctx context.Context) error

	// Stop asks a running simulation to finish early
	Stop() error
}

// Resulter is implemented by simulations that produce result lines once finished
type Resulter interface {
	Results() []string
}
