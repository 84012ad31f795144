package evolution

import "fmt"

// EmptyPopulationError indicates a generation produced zero evaluated
// genomes. This is a configuration error and is surfaced to the caller
// rather than silently recovered.
type EmptyPopulationError struct {
	Generation int
}

func (e *EmptyPopulationError) Error() string {
	return fmt.Sprintf("evolution error: no evaluated genomes at generation %d", e.Generation)
}

// ConfigError indicates invalid engine configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("evolution config error: %s: %s", e.Field, e.Message)
}
