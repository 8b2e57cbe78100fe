// Package settings loads and stores the user settings record: the default
// export format, the rendering switches, the picker highlight colour and the
// history limits.
//
// Settings are read with viper from a YAML file and MARKUP_EXTRACTOR_*
// environment variables (MARKUP_EXTRACTOR_DEFAULTEXPORTFORMAT=jsx), on top of
// the defaults. Files live under the XDG config home unless a path is given.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/adrg/xdg"
	"github.com/kataras/markup-extractor/pkg/generator"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// AppName names the XDG directories.
	AppName = "markup-extractor"
	// EnvPrefix prefixes environment overrides.
	EnvPrefix = "MARKUP_EXTRACTOR"
	// FileName is the settings file inside the config directory.
	FileName = "config.yaml"
	// DatabaseName is the history database inside the data directory.
	DatabaseName = "history.db"
)

// Settings is the user settings record.
type Settings struct {
	DefaultExportFormat string `mapstructure:"defaultExportFormat" yaml:"defaultExportFormat" json:"defaultExportFormat"`
	PreserveTailwind    bool   `mapstructure:"preserveTailwind" yaml:"preserveTailwind" json:"preserveTailwind"`
	IncludeInlineStyles bool   `mapstructure:"includeInlineStyles" yaml:"includeInlineStyles" json:"includeInlineStyles"`
	HighlightColor      string `mapstructure:"highlightColor" yaml:"highlightColor" json:"highlightColor"`
	AutoCleanup         bool   `mapstructure:"autoCleanup" yaml:"autoCleanup" json:"autoCleanup"`
	MaxStoredComponents int    `mapstructure:"maxStoredComponents" yaml:"maxStoredComponents" json:"maxStoredComponents"`
}

// Default returns the settings used when nothing is configured.
func Default() Settings {
	return Settings{
		DefaultExportFormat: string(generator.HTMLCSS),
		PreserveTailwind:    true,
		IncludeInlineStyles: true,
		HighlightColor:      "#3b82f6",
		AutoCleanup:         true,
		MaxStoredComponents: 50,
	}
}

// ExportFormats are the values DefaultExportFormat accepts.
var ExportFormats = []generator.Format{generator.HTMLCSS, generator.Component, generator.UtilityComponent}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate returns the first invalid field.
func (s Settings) Validate() error {
	valid := false
	for _, f := range ExportFormats {
		if string(f) == s.DefaultExportFormat {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: %q", ErrInvalidExportFormat, s.DefaultExportFormat)
	}
	if !hexColor.MatchString(s.HighlightColor) {
		return fmt.Errorf("%w: %q", ErrInvalidHighlightColor, s.HighlightColor)
	}
	if s.MaxStoredComponents <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxStored, s.MaxStoredComponents)
	}
	return nil
}

// Format returns DefaultExportFormat as a generator.Format.
func (s Settings) Format() generator.Format { return generator.Format(s.DefaultExportFormat) }

// ConfigDir is the XDG config directory of the application.
// On Linux: ~/.config/markup-extractor
func ConfigDir() string { return filepath.Join(xdg.ConfigHome, AppName) }

// DataDir is the XDG data directory of the application.
// On Linux: ~/.local/share/markup-extractor
func DataDir() string { return filepath.Join(xdg.DataHome, AppName) }

// DefaultPath is the settings file used when no path is given.
func DefaultPath() string { return filepath.Join(ConfigDir(), FileName) }

// DefaultDatabasePath is the default history database.
func DefaultDatabasePath() string { return filepath.Join(DataDir(), DatabaseName) }

// Load reads the settings at path (DefaultPath when empty) over the
// defaults and applies environment overrides. A missing file is not an
// error. It returns the file actually read, empty when none was.
func Load(path string) (Settings, string, error) {
	if path == "" {
		path = DefaultPath()
	}

	v := viper.New()
	def := Default()
	v.SetDefault("defaultExportFormat", def.DefaultExportFormat)
	v.SetDefault("preserveTailwind", def.PreserveTailwind)
	v.SetDefault("includeInlineStyles", def.IncludeInlineStyles)
	v.SetDefault("highlightColor", def.HighlightColor)
	v.SetDefault("autoCleanup", def.AutoCleanup)
	v.SetDefault("maxStoredComponents", def.MaxStoredComponents)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	used := ""
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, "", fmt.Errorf("settings: read %s: %w", path, err)
		}
		used = v.ConfigFileUsed()
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Settings{}, "", fmt.Errorf("settings: stat %s: %w", path, err)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, "", fmt.Errorf("settings: decode: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, "", err
	}
	return s, used, nil
}

// Save validates s and writes it as YAML to path (DefaultPath when empty).
func Save(path string, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("settings: mkdir: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("settings: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("settings: write %s: %w", path, err)
	}
	return nil
}
