package simulation

// SimulationConfig describes a simulation as declared in its simulation.yaml
type SimulationConfig struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Version     string      `yaml:"version"`
	Category    string      `yaml:"category"`
	Parameters  []Parameter `yaml:"parameters"`
}

// Parameter is one user-settable value prompted for by the CLI
type Parameter struct {
	Name        string      `yaml:"name"`
	Type        string      `yaml:"type"` // integer, float, string, duration, boolean
	Description string      `yaml:"description"`
	Default     interface{} `yaml:"default"`
	Required    bool        `yaml:"required"`
	Min         interface{} `yaml:"min,omitempty"`
	Max         interface{} `yaml:"max,omitempty"`
	Options     []string    `yaml:"options,omitempty"`
}

// Parameter looks up a parameter by name
func (c *SimulationConfig) Parameter(name string) (Parameter, bool) {
	for _, p := range c.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// Defaults returns the default value of every parameter that declares one
func (c *SimulationConfig) Defaults() map[string]interface{} {
	out := make(map[string]interface{}, len(c.Parameters))
	for _, p := range c.Parameters {
		if p.Default != nil {
			out[p.Name] = p.Default
		}
	}
	return out
}
