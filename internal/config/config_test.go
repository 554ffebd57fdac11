package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qctrl/internal/control"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Gate != "x" {
		t.Errorf("expected gate x, got %s", cfg.Gate)
	}
	if cfg.NumCtrlQubits != 2 {
		t.Errorf("expected 2 controls, got %d", cfg.NumCtrlQubits)
	}
	if cfg.CtrlState.IsSet() {
		t.Error("default control state should be all ones")
	}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, log.InfoLevel, cfg.Level())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qctrl.yaml")
	src := "gate: rz\nparams: [pi/2]\nnum_ctrl_qubits: 3\nctrl_state: \"011\"\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "rz", cfg.Gate)
	assert.Equal(t, []string{"pi/2"}, cfg.Params)
	assert.Equal(t, 3, cfg.NumCtrlQubits)
	assert.Equal(t, control.StateBits("011"), cfg.CtrlState)
	assert.Equal(t, log.DebugLevel, cfg.Level())
	assert.Equal(t, DefaultOutput, cfg.Output, "unset fields keep defaults")
	assert.Equal(t, DefaultTolerance, cfg.Tolerance)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qctrl.yaml")
	cfg := DefaultConfig()
	cfg.Gate = "u"
	cfg.Params = []string{"pi", "0", "pi"}
	cfg.CtrlState = control.StateInt(2)
	cfg.Label = "flip"
	cfg.Output = OutputQASM

	require.NoError(t, Save(path, cfg))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty gate", func(c *Config) { c.Gate = "" }},
		{"zero controls", func(c *Config) { c.NumCtrlQubits = 0 }},
		{"state out of range", func(c *Config) { c.CtrlState = control.StateInt(4) }},
		{"state length", func(c *Config) { c.CtrlState = control.StateBits("1") }},
		{"output", func(c *Config) { c.Output = "svg" }},
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
		{"depth", func(c *Config) { c.MaxUnrollDepth = 0 }},
		{"tolerance", func(c *Config) { c.Tolerance = 0 }},
		{"plot controls", func(c *Config) { c.MaxPlotControls = MaxPlotControls + 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("num_ctrl_qubits: 2\nctrl_state: \"101\"\n"), 0644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, control.ErrLengthMismatch)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadPlainBitstring(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, os.WriteFile(path, []byte("num_ctrl_qubits: 3\nctrl_state: 0b010\n"), 0644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, control.StateBits("010"), cfg.CtrlState)

	require.NoError(t, os.WriteFile(path, []byte("num_ctrl_qubits: 3\nctrl_state: 010\n"), 0644))
	_, err = Load(path)
	assert.ErrorIs(t, err, control.ErrInvalidControlState)
}

func TestPresets(t *testing.T) {
	names := ListPresets()
	require.NotEmpty(t, names)
	for _, name := range names {
		cfg := GetPreset(name)
		if cfg == nil {
			t.Fatalf("preset %s: got nil", name)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}

	cfg := GetPreset("toffoli")
	cfg.Params = append(cfg.Params, "mutated")
	assert.Empty(t, Presets["toffoli"].Params, "presets are copied")

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}
