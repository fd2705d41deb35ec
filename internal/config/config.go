// Package config handles tool configuration loading and management.
package config

// Config holds all meshtool settings.
type Config struct {
	Decode   DecodeConfig   `yaml:"decode"`
	Export   ExportConfig   `yaml:"export"`
	Textures TexturesConfig `yaml:"textures"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DecodeConfig holds decoder tuning.
type DecodeConfig struct {
	// MaxPaddingScan caps the TRM zero-padding scans, in bytes.
	MaxPaddingScan int `yaml:"max_padding_scan"`
}

// ExportConfig holds encoder defaults.
type ExportConfig struct {
	// Version is the default export version: V1, V2 or V3.
	Version string `yaml:"version"`
}

// TexturesConfig holds texture collaborator settings.
type TexturesConfig struct {
	// Dir overrides the conventional ../TEX directory when set.
	Dir string `yaml:"dir"`
	// PatchFlags controls whether resolved DDS files get their header
	// flags patched.
	PatchFlags bool `yaml:"patch_flags"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Decode: DecodeConfig{
			MaxPaddingScan: 65536,
		},
		Export: ExportConfig{
			Version: "V1",
		},
		Textures: TexturesConfig{
			Dir:        "",
			PatchFlags: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
