package shell

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"src.kesh.sh/pkg/alias"
	"src.kesh.sh/pkg/env"
	"src.kesh.sh/pkg/shell/shdefs"
	"src.kesh.sh/pkg/state"
)

// Config is the content of the rc file.
type Config struct {
	Pipefail bool              `yaml:"pipefail"`
	History  HistoryConfig     `yaml:"history"`
	Editor   EditorConfig      `yaml:"editor"`
	Aliases  map[string]string `yaml:"aliases"`
	Env      map[string]string `yaml:"env"`
}

// HistoryConfig configures command history.
type HistoryConfig struct {
	// One of "none" (the default), "consecutive" and "all".
	Dedup string `yaml:"dedup"`
	// Path of the history file.
	File string `yaml:"file"`
	// Path of the history database. It takes precedence over File.
	DB string `yaml:"db"`
	// Maximum number of entries kept in memory.
	Size int `yaml:"size"`
}

// EditorConfig configures the line editor.
type EditorConfig struct {
	// Mode at the start of each line, "insert" or "normal".
	Mode string `yaml:"mode"`
}

// DefaultHistorySize is the default value of HistoryConfig.Size.
const DefaultHistorySize = 10000

// LoadConfig reads the rc file at path. A missing file yields an empty
// Config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	} else if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

// ParseConfig parses the content of an rc file. Unknown keys are errors.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("rc file: %w", err)
	}
	switch cfg.Editor.Mode {
	case "", "insert", "normal":
	default:
		return nil, fmt.Errorf("rc file: bad editor mode %q", cfg.Editor.Mode)
	}
	if cfg.History.Size < 0 {
		return nil, fmt.Errorf("rc file: bad history size %d", cfg.History.Size)
	}
	return &cfg, nil
}

// Apply applies the options, aliases and environment of the config to st.
func (cfg *Config) Apply(st *state.Store) {
	opts := state.GetOr(st, func() *shdefs.Options { return &shdefs.Options{} })
	opts.Pipefail = cfg.Pipefail
	opts.ViNormal = cfg.Editor.Mode == "normal"

	aliases := state.GetOr(st, alias.NewTable)
	for _, name := range sortedKeys(cfg.Aliases) {
		aliases.Set(name, cfg.Aliases[name])
	}
	e := state.GetOr(st, env.FromOS)
	for _, name := range sortedKeys(cfg.Env) {
		e.Export(name, cfg.Env[name])
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
