package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// Config holds the editor configuration
type Config struct {
	Editor      EditorConfig `toml:"editor"`
	Styles      StylesConfig `toml:"styles"`
	Paste       PasteConfig  `toml:"paste"`
	Theme       ThemeConfig  `toml:"theme"`
	RecentFiles []string     `toml:"recent_files,omitempty" validate:"max=10"` // Recently opened files (max 10)
}

// MaxRecentFiles is the maximum number of recent files to track
const MaxRecentFiles = 10

// AddRecentFile adds a file to the recent files list
func (c *Config) AddRecentFile(path string) {
	// Make path absolute
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	// Remove if already in list (will re-add at top)
	newList := make([]string, 0, MaxRecentFiles)
	for _, f := range c.RecentFiles {
		if f != absPath {
			newList = append(newList, f)
		}
	}

	c.RecentFiles = append([]string{absPath}, newList...)
	if len(c.RecentFiles) > MaxRecentFiles {
		c.RecentFiles = c.RecentFiles[:MaxRecentFiles]
	}
}

// EditorConfig holds editor-specific settings
type EditorConfig struct {
	MaxUndo  int  `toml:"max_undo" validate:"gte=1,lte=10000"` // Undo units kept per document
	WordWrap bool `toml:"word_wrap"`
}

// StylesConfig selects the stylesheet
type StylesConfig struct {
	DefaultParagraphStyle string `toml:"default_paragraph_style" validate:"required"`
	Stylesheet            string `toml:"stylesheet"` // .toml or .yaml file; empty = built-in styles
}

// PasteConfig controls pasting formatted text
type PasteConfig struct {
	WritingSystem     string `toml:"writing_system" validate:"oneof=preserve dest cancel"`
	DestWritingSystem int    `toml:"dest_writing_system" validate:"gte=0"` // Used by "dest" when the selection has none
	Hook              string `toml:"hook"`                                 // Lua script that may rewrite pasted text
}

// ThemeConfig holds the interface colors
type ThemeConfig struct {
	StatusBg    string `toml:"status_bg" validate:"omitempty,hexcolor"`
	StatusFg    string `toml:"status_fg" validate:"omitempty,hexcolor"`
	SelectionBg string `toml:"selection_bg" validate:"omitempty,hexcolor"`
	SelectionFg string `toml:"selection_fg" validate:"omitempty,hexcolor"`
	WarningFg   string `toml:"warning_fg" validate:"omitempty,hexcolor"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Editor: EditorConfig{
			MaxUndo:  100,
			WordWrap: true,
		},
		Styles: StylesConfig{
			DefaultParagraphStyle: "Normal",
		},
		Paste: PasteConfig{
			WritingSystem: "preserve",
		},
		Theme: ThemeConfig{
			StatusBg:    "#3a3a5a",
			StatusFg:    "#e0e0e0",
			SelectionBg: "#5f87af",
			SelectionFg: "#ffffff",
			WarningFg:   "#ff8700",
		},
	}
}

// ConfigPath returns the path to the config file
func ConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "inkwell", "config.toml"), nil
}

// ConfigLoadError holds details about a config loading error
type ConfigLoadError struct {
	FilePath string
	Err      error
}

func (e *ConfigLoadError) Error() string {
	return e.Err.Error()
}

func (e *ConfigLoadError) Unwrap() error {
	return e.Err
}

var validate = validator.New()

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid %s: %w", verrs[0].Namespace(), err)
		}
		return err
	}
	return nil
}

// Load reads the configuration from disk
// Returns default config if file doesn't exist
// Returns ConfigLoadError if file exists but has parse or validation errors
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil // Return defaults on error
	}
	return LoadFile(path)
}

// LoadFile reads the configuration from path. Errors come back together with
// the default configuration.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // Return defaults if no config file
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return DefaultConfig(), &ConfigLoadError{FilePath: path, Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), &ConfigLoadError{FilePath: path, Err: err}
	}
	return cfg, nil
}

// Save writes the configuration to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the configuration to path.
func (c *Config) SaveFile(path string) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteString("# Inkwell configuration\n\n"); err != nil {
		return err
	}
	return toml.NewEncoder(f).Encode(c)
}
