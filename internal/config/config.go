package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/willkamu/crm-shekinah-sub001/internal/model"
)

// Config represents the top-level shekinah.yaml configuration.
type Config struct {
	Church   ChurchConfig   `yaml:"church"`
	Operator OperatorConfig `yaml:"operator"`
	Git      GitConfig      `yaml:"git"`
}

// ChurchConfig identifies the congregation.
type ChurchConfig struct {
	Name string `yaml:"name"`
	City string `yaml:"city,omitempty"`
}

// OperatorConfig is the current user and branch scope. Commands turn it into
// an explicit actor parameter; nothing reads it as ambient global state.
type OperatorConfig struct {
	Name   string `yaml:"name"`
	Role   string `yaml:"role"` // treasurer | pastor | supervisor
	Branch string `yaml:"branch"`
}

// GitConfig controls git versioning of the ledger repository.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Actor builds the explicit actor context from the operator section.
func (c *Config) Actor() model.Actor {
	return model.Actor{
		Name:     c.Operator.Name,
		Role:     model.Role(c.Operator.Role),
		BranchID: c.Operator.Branch,
	}
}

// Load reads a shekinah.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new repository.
func Default(churchName, operatorName string) *Config {
	return &Config{
		Church: ChurchConfig{
			Name: churchName,
		},
		Operator: OperatorConfig{
			Name: operatorName,
			Role: string(model.RoleTreasurer),
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  operatorName,
			AuthorEmail: "tesoreria@shekinah.local",
		},
	}
}
