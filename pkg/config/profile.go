package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Profile is a named set of parameter overrides applied on top of a simulation config
type Profile struct {
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description,omitempty"`
	ConfigFile  string                 `yaml:"config_file,omitempty"`
	Parameters  map[string]interface{} `yaml:"parameters,omitempty"`
}

// Profiles holds every saved profile and the one currently selected
type Profiles struct {
	Profiles []Profile `yaml:"profiles"`
	Selected string    `yaml:"selected,omitempty"`
}

// Dir is the per-user settings directory
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".drone-search"), nil
}

// ProfilesPath is where profiles are stored by default
func ProfilesPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "profiles.yaml"), nil
}

// LoadProfiles loads profiles from the default location
func LoadProfiles() (*Profiles, error) {
	path, err := ProfilesPath()
	if err != nil {
		return nil, err
	}
	return LoadProfilesFromFile(path)
}

// LoadProfilesFromFile loads profiles, falling back to the built-in set when path does not exist
func LoadProfilesFromFile(path string) (*Profiles, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return defaultProfiles(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles file: %w", err)
	}

	var p Profiles
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profiles file: %w", err)
	}
	return &p, nil
}

// SaveProfiles writes profiles to the default location
func SaveProfiles(p *Profiles) error {
	path, err := ProfilesPath()
	if err != nil {
		return err
	}
	return SaveProfilesToFile(p, path)
}

func SaveProfilesToFile(p *Profiles, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write profiles file: %w", err)
	}
	return nil
}

// Get returns the named profile
func (p *Profiles) Get(name string) (Profile, bool) {
	for _, pr := range p.Profiles {
		if pr.Name == name {
			return pr, true
		}
	}
	return Profile{}, false
}

// Current returns the selected profile, if any
func (p *Profiles) Current() (Profile, bool) {
	if p.Selected == "" {
		return Profile{}, false
	}
	return p.Get(p.Selected)
}

// Names lists profile names alphabetically
func (p *Profiles) Names() []string {
	names := make([]string, len(p.Profiles))
	for i, pr := range p.Profiles {
		names[i] = pr.Name
	}
	sort.Strings(names)
	return names
}

// Upsert adds a profile or replaces the one with the same name
func (p *Profiles) Upsert(profile Profile) error {
	if profile.Name == "" {
		return fmt.Errorf("profile name is required")
	}
	for i, pr := range p.Profiles {
		if pr.Name == profile.Name {
			p.Profiles[i] = profile
			return nil
		}
	}
	p.Profiles = append(p.Profiles, profile)
	return nil
}

// Remove deletes the named profile, clearing the selection if it pointed at it
func (p *Profiles) Remove(name string) error {
	for i, pr := range p.Profiles {
		if pr.Name == name {
			p.Profiles = append(p.Profiles[:i], p.Profiles[i+1:]...)
			if p.Selected == name {
				p.Selected = ""
			}
			return nil
		}
	}
	return fmt.Errorf("profile %s not found", name)
}

// Select marks the named profile as current
func (p *Profiles) Select(name string) error {
	if _, ok := p.Get(name); !ok {
		return fmt.Errorf("profile %s not found", name)
	}
	p.Selected = name
	return nil
}

func defaultProfiles() *Profiles {
	return &Profiles{
		Profiles: []Profile{
			{
				Name:        "quick",
				Description: "Small batch search for smoke testing",
				Parameters: map[string]interface{}{
					"mode":           "batch",
					"max_drones":     3,
					"sim_group_size": 1,
				},
			},
			{
				Name:        "full",
				Description: "Full search with five trials per group",
				Parameters: map[string]interface{}{
					"mode":           "batch",
					"sim_group_size": 5,
				},
			},
		},
	}
}
