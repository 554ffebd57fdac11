package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"qctrl/internal/control"
	"qctrl/internal/unroll"
)

const (
	DefaultGate            = "x"
	DefaultNumCtrlQubits   = 2
	DefaultOutput          = OutputBoth
	DefaultLogLevel        = "info"
	DefaultTolerance       = 1e-9
	DefaultMaxPlotControls = 6

	// MaxPlotControls caps the cost sweep; the unrolled size grows
	// exponentially with the number of controls.
	MaxPlotControls = 10
)

const (
	OutputQASM    = "qasm"
	OutputDiagram = "diagram"
	OutputBoth    = "both"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Gate            string            `yaml:"gate"`
	Params          []string          `yaml:"params,omitempty"`
	NumCtrlQubits   int               `yaml:"num_ctrl_qubits"`
	// CtrlState is an integer bitmask or a bitstring, last control leftmost.
	// Write bitstrings quoted ("010") or with a 0b prefix; a plain 010 is
	// rejected.
	CtrlState       control.CtrlState `yaml:"ctrl_state,omitempty"`
	Label           string            `yaml:"label,omitempty"`
	Output          string            `yaml:"output"`
	LogLevel        string            `yaml:"log_level"`
	MaxUnrollDepth  int               `yaml:"max_unroll_depth"`
	Tolerance       float64           `yaml:"tolerance"`
	MaxPlotControls int               `yaml:"max_plot_controls"`
}

func DefaultConfig() *Config {
	return &Config{
		Gate:            DefaultGate,
		NumCtrlQubits:   DefaultNumCtrlQubits,
		Output:          DefaultOutput,
		LogLevel:        DefaultLogLevel,
		MaxUnrollDepth:  unroll.DefaultMaxDepth,
		Tolerance:       DefaultTolerance,
		MaxPlotControls: DefaultMaxPlotControls,
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks ranges and that the control state fits the control count.
func (c *Config) Validate() error {
	if c.Gate == "" {
		return fmt.Errorf("gate is empty: %w", ErrInvalidConfig)
	}
	if _, err := c.CtrlState.Resolve(c.NumCtrlQubits); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if !slices.Contains([]string{OutputQASM, OutputDiagram, OutputBoth}, c.Output) {
		return fmt.Errorf("output %q: %w", c.Output, ErrInvalidConfig)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level %q: %w", c.LogLevel, ErrInvalidConfig)
	}
	if c.MaxUnrollDepth < 1 {
		return fmt.Errorf("max_unroll_depth %d: %w", c.MaxUnrollDepth, ErrInvalidConfig)
	}
	if c.Tolerance <= 0 || c.Tolerance >= 1 {
		return fmt.Errorf("tolerance %g: %w", c.Tolerance, ErrInvalidConfig)
	}
	if c.MaxPlotControls < 1 || c.MaxPlotControls > MaxPlotControls {
		return fmt.Errorf("max_plot_controls %d: %w", c.MaxPlotControls, ErrInvalidConfig)
	}
	return nil
}

// Level returns the parsed log level, falling back to info.
func (c *Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
