package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Editor.MaxUndo != 100 {
		t.Errorf("DefaultConfig().Editor.MaxUndo = %d, want 100", cfg.Editor.MaxUndo)
	}
	if cfg.Styles.DefaultParagraphStyle != "Normal" {
		t.Errorf("DefaultConfig().Styles.DefaultParagraphStyle = %q, want 'Normal'", cfg.Styles.DefaultParagraphStyle)
	}
	if cfg.Styles.Stylesheet != "" {
		t.Errorf("DefaultConfig().Styles.Stylesheet = %q, want built-in", cfg.Styles.Stylesheet)
	}
	if cfg.Paste.WritingSystem != "preserve" {
		t.Errorf("DefaultConfig().Paste.WritingSystem = %q, want 'preserve'", cfg.Paste.WritingSystem)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

func TestAddRecentFile(t *testing.T) {
	cfg := DefaultConfig()

	// Add a file
	cfg.AddRecentFile("/path/to/file1.txt")
	if len(cfg.RecentFiles) != 1 {
		t.Fatalf("RecentFiles length = %d, want 1", len(cfg.RecentFiles))
	}

	// Add another file
	cfg.AddRecentFile("/path/to/file2.txt")
	if len(cfg.RecentFiles) != 2 {
		t.Fatalf("RecentFiles length = %d, want 2", len(cfg.RecentFiles))
	}

	// Most recent should be first
	if !filepath.IsAbs(cfg.RecentFiles[0]) || filepath.Base(cfg.RecentFiles[0]) != "file2.txt" {
		t.Errorf("RecentFiles[0] = %q, want file2.txt to be first", cfg.RecentFiles[0])
	}

	// Re-add file1 - should move to front
	cfg.AddRecentFile("/path/to/file1.txt")
	if len(cfg.RecentFiles) != 2 {
		t.Fatalf("RecentFiles length after re-add = %d, want 2", len(cfg.RecentFiles))
	}
	if filepath.Base(cfg.RecentFiles[0]) != "file1.txt" {
		t.Errorf("RecentFiles[0] after re-add = %q, want file1.txt first", cfg.RecentFiles[0])
	}
}

func TestAddRecentFileMaxLimit(t *testing.T) {
	cfg := DefaultConfig()

	for i := 0; i < MaxRecentFiles+5; i++ {
		cfg.AddRecentFile("/path/to/file" + string(rune('a'+i)) + ".txt")
	}

	if len(cfg.RecentFiles) != MaxRecentFiles {
		t.Errorf("RecentFiles length = %d, want %d (max)", len(cfg.RecentFiles), MaxRecentFiles)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() after trimming = %v, want nil", err)
	}
}

func TestConfigLoadError(t *testing.T) {
	err := &ConfigLoadError{
		FilePath: "/path/to/config.toml",
		Err:      os.ErrNotExist,
	}

	if err.Error() != os.ErrNotExist.Error() {
		t.Errorf("ConfigLoadError.Error() = %q, want %q", err.Error(), os.ErrNotExist.Error())
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("ConfigLoadError should unwrap to its cause")
	}
}

func TestConfigPath(t *testing.T) {
	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath() error: %v", err)
	}

	if !filepath.IsAbs(path) {
		t.Errorf("ConfigPath() = %q, want absolute path", path)
	}
	if filepath.Base(path) != "config.toml" {
		t.Errorf("ConfigPath() base = %q, want 'config.toml'", filepath.Base(path))
	}
	if !strings.Contains(path, "inkwell") {
		t.Errorf("ConfigPath() = %q, should contain 'inkwell'", path)
	}
}

func TestLoadFileMissing(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if cfg.Editor.MaxUndo != 100 {
		t.Errorf("LoadFile() of missing file MaxUndo = %d, want default", cfg.Editor.MaxUndo)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[editor]
max_undo = 25

[styles]
default_paragraph_style = "Body"
stylesheet = "/tmp/house.yaml"

[paste]
writing_system = "dest"
dest_writing_system = 3
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if cfg.Editor.MaxUndo != 25 {
		t.Errorf("Editor.MaxUndo = %d, want 25", cfg.Editor.MaxUndo)
	}
	if cfg.Styles.DefaultParagraphStyle != "Body" {
		t.Errorf("Styles.DefaultParagraphStyle = %q, want 'Body'", cfg.Styles.DefaultParagraphStyle)
	}
	if cfg.Paste.WritingSystem != "dest" || cfg.Paste.DestWritingSystem != 3 {
		t.Errorf("Paste = %+v, want dest/3", cfg.Paste)
	}
	if cfg.Theme.StatusBg != "#3a3a5a" {
		t.Errorf("Theme.StatusBg = %q, want the default kept", cfg.Theme.StatusBg)
	}
}

func TestLoadFileInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", "[editor\n"},
		{"undo out of range", "[editor]\nmax_undo = 0\n"},
		{"empty default style", "[styles]\ndefault_paragraph_style = \"\"\n"},
		{"unknown paste policy", "[paste]\nwriting_system = \"merge\"\n"},
		{"bad color", "[theme]\nstatus_bg = \"blue\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}

			cfg, err := LoadFile(path)
			var le *ConfigLoadError
			if !errors.As(err, &le) {
				t.Fatalf("LoadFile() error = %v, want *ConfigLoadError", err)
			}
			if le.FilePath != path {
				t.Errorf("ConfigLoadError.FilePath = %q, want %q", le.FilePath, path)
			}
			if cfg.Editor.MaxUndo != 100 {
				t.Errorf("LoadFile() on error MaxUndo = %d, want defaults", cfg.Editor.MaxUndo)
			}
		})
	}
}

func TestSaveFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := DefaultConfig()
	cfg.Paste.Hook = "/scripts/paste.lua"
	cfg.AddRecentFile("/docs/a.txt")

	if err := cfg.SaveFile(path); err != nil {
		t.Fatalf("SaveFile() error: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if got.Paste.Hook != "/scripts/paste.lua" {
		t.Errorf("Paste.Hook = %q, want '/scripts/paste.lua'", got.Paste.Hook)
	}
	if len(got.RecentFiles) != 1 {
		t.Errorf("RecentFiles = %v, want one entry", got.RecentFiles)
	}
}
