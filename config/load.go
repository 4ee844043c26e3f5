package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed default.kdl
var defaultKDL []byte

// DefaultKDL returns the text of the built-in configuration.
func DefaultKDL() []byte {
	return append([]byte(nil), defaultKDL...)
}

// Default returns a fresh copy of the built-in configuration, validated.
func Default() *Configuration {
	cfg, err := ParseKDL(defaultKDL)
	if err != nil {
		panic(fmt.Sprintf("config: built-in configuration: %v", err))
	}
	if err := Validate(cfg); err != nil {
		panic(fmt.Sprintf("config: built-in configuration: %v", err))
	}
	return cfg
}

func DefaultFormatting() Formatting {
	return Formatting{
		Tabs:            Tabs{Style: TabSpaces, SpacesPerTab: 4},
		Regions:         Regions{Style: RegionDirective, EndRegionNameEnabled: true},
		ClosingComments: ClosingComments{Format: "End $(ElementType) $(Name)"},
		LineSpacing:     LineSpacing{RemoveConsecutiveBlankLines: true},
		Usings:          Usings{MoveTo: MoveNone},
	}
}

func DefaultHandlers() []Handler {
	return []Handler{{
		Language:   "CSharp",
		Extensions: []Extension{{Name: "cs"}},
	}}
}

// Load reads and validates a configuration file. The format is chosen by
// extension: .kdl or .toml.
func Load(path string) (*Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg *Configuration
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".kdl":
		cfg, err = ParseKDL(data)
	case ".toml":
		cfg, err = ParseTOML(data)
	default:
		return nil, fmt.Errorf("unsupported config format %q (want .kdl or .toml)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Configuration) String() string {
	var sb strings.Builder
	if err := WriteKDL(&sb, c); err != nil {
		return err.Error()
	}
	return sb.String()
}
