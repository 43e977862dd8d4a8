// Package config carries the debug toggles and GC tuning knobs of the
// interpreter. It has no dependency on the vm/lexer/compiler packages
// it configures — those packages depend on config, never the reverse.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Debug holds the classic debug switches of a clox-style VM. All
// default false; a release build never pays for tracing.
type Debug struct {
	// PrintCode disassembles every chunk right after compiling it.
	PrintCode bool `yaml:"printCode"`
	// TraceExecution disassembles each instruction immediately before
	// the VM executes it, alongside a snapshot of the value stack.
	TraceExecution bool `yaml:"traceExecution"`
	// StressGC forces a collection at every instruction boundary of the
	// VM's dispatch loop, used to flush out GC-soundness bugs (§4.7, §8
	// "GC soundness"). An allocation by itself never starts a collection.
	StressGC bool `yaml:"stressGC"`
	// LogGC prints a line for every allocation, every object marked or
	// freed, and the start and end of each collection.
	LogGC bool `yaml:"logGC"`
}

// GC holds the mark-sweep collector's tuning knobs.
type GC struct {
	// InitialThresholdBytes is bytes-allocated's starting next-GC
	// threshold, before the first collection establishes a live-set
	// baseline.
	InitialThresholdBytes int `yaml:"initialThresholdBytes"`
	// GrowthFactor multiplies bytes-allocated to compute the next
	// threshold after each collection (§4.7 phase 5).
	GrowthFactor float64 `yaml:"growthFactor"`
}

// Config is the optional on-disk configuration for the CLI, loaded
// from a YAML file via -config (see cmd/lox). Its absence is not an
// error: DefaultConfig covers every field.
type Config struct {
	Debug Debug `yaml:"debug"`
	GC    GC    `yaml:"gc"`
}

// DefaultConfig matches the reference interpreter's untuned behavior:
// no tracing, and a doubling threshold starting at 1MiB.
func DefaultConfig() Config {
	return Config{
		GC: GC{InitialThresholdBytes: 1 << 20, GrowthFactor: 2.0},
	}
}

// Load reads and parses a YAML config file at path, overlaying it on
// DefaultConfig. A missing file is not an error (returns the default
// unchanged); a malformed one is.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
