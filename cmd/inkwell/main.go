package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/cornish/inkwell/clipboard"
	"github.com/cornish/inkwell/config"
	"github.com/cornish/inkwell/document"
	"github.com/cornish/inkwell/editor"
	"github.com/cornish/inkwell/encoding"
	"github.com/cornish/inkwell/pastehook"
	"github.com/cornish/inkwell/style"
	"github.com/cornish/inkwell/ui"
)

const version = "0.1.0"

var (
	configPath     string
	stylesheetPath string
	logPath        string

	rootCmd = &cobra.Command{
		Use:     "inkwell [file]",
		Short:   "Inkwell - a rich text editor for the terminal",
		Version: version,
		Long: `Inkwell edits styled, multi-script text in the terminal.

Keyboard shortcuts:
  Ctrl+Q         Quit
  Ctrl+Z         Undo
  Ctrl+Y         Redo
  Ctrl+X         Cut
  Ctrl+C         Copy
  Ctrl+V         Paste
  Ctrl+A         Select all
  Shift+Arrows   Select text
  Alt+0          Default paragraph style
  Alt+1 / Alt+2  Heading 1 / Quote
  Alt+e / Alt+s  Emphasis / Strong
  Alt+r / Alt+R  Remove character formatting (keep / drop named style)`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
)

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "configuration file (default is the user config directory)")
	rootCmd.Flags().StringVar(&stylesheetPath, "stylesheet", "", "stylesheet file (TOML or YAML); reloaded when it changes")
	rootCmd.Flags().StringVar(&logPath, "log", "", "write a debug log to this file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := openLog(logPath)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	cfgFile := configPath
	if cfgFile == "" {
		if cfgFile, err = config.ConfigPath(); err != nil {
			return err
		}
	}
	cfg, cfgErr := config.LoadFile(cfgFile)
	if cfgErr != nil {
		logger.Warn("using default configuration", slog.String("error", cfgErr.Error()))
	}

	if stylesheetPath == "" {
		stylesheetPath = cfg.Styles.Stylesheet
	}
	sheet, err := loadStylesheet(stylesheetPath)
	if err != nil {
		return err
	}
	resolver := style.NewResolver(sheet,
		style.WithLogger(logger),
		style.WithDefaultParagraphStyle(cfg.Styles.DefaultParagraphStyle))

	var filename string
	if len(args) > 0 {
		filename = args[0]
	}
	text, encName, err := openText(filename, resolver.DefaultParagraph())
	if err != nil {
		return err
	}
	if filename != "" && cfgErr == nil {
		rememberFile(cfg, cfgFile, filename, logger)
	}

	doc := document.New([]*document.Text{text},
		document.WithLogger(logger),
		document.WithMaxUndo(cfg.Editor.MaxUndo))

	policy, err := editor.ParsePastePolicy(cfg.Paste.WritingSystem)
	if err != nil {
		return err
	}
	edOpts := []editor.Option{
		editor.WithClipboard(clipboard.New(os.Stdout)),
		editor.WithPolicyChooser(editor.StaticPolicy(policy, cfg.Paste.DestWritingSystem)),
		editor.WithFocus(&editor.Focus{}),
	}
	if cfg.Paste.Hook != "" {
		hook, err := pastehook.Load(cfg.Paste.Hook, pastehook.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("paste hook: %w", err)
		}
		defer hook.Close()
		edOpts = append(edOpts, editor.WithPasteHook(hook))
	}

	m := ui.New(doc, resolver,
		ui.WithLogger(logger),
		ui.WithStyles(ui.NewStyles(cfg.Theme)),
		ui.WithWordWrap(cfg.Editor.WordWrap),
		ui.WithEditorOptions(edOpts...))
	m.StatusBar().SetFilename(filename)
	m.StatusBar().SetEncoding(encName)
	var loadErr *config.ConfigLoadError
	if errors.As(cfgErr, &loadErr) {
		m.Warn("Config error in " + filepath.Base(loadErr.FilePath))
	}

	p := tea.NewProgram(m, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if stylesheetPath != "" {
		if err := watchStylesheet(ctx, stylesheetPath, p.Send, logger); err != nil {
			logger.Warn("stylesheet will not reload", slog.String("error", err.Error()))
		}
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running editor: %w", err)
	}
	return nil
}

func openLog(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { f.Close() }, nil
}

func loadStylesheet(path string) (*style.Stylesheet, error) {
	if path == "" {
		return style.DefaultStylesheet(), nil
	}
	return style.LoadStylesheet(path)
}

// openText imports filename, or starts an empty text when it does not exist
// yet. It also returns the name of the detected encoding.
func openText(filename, paraStyle string) (*document.Text, string, error) {
	if filename == "" {
		return document.FromLines([]string{""}, paraStyle), "UTF-8", nil
	}
	text, det, err := encoding.ImportFile(filename, paraStyle)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return document.FromLines([]string{""}, paraStyle), "UTF-8", nil
	case err != nil:
		return nil, "", fmt.Errorf("loading %s: %w", filename, err)
	}
	return text, det.Encoding.Name, nil
}

func rememberFile(cfg *config.Config, cfgFile, filename string, logger *slog.Logger) {
	cfg.AddRecentFile(filename)
	if err := cfg.SaveFile(cfgFile); err != nil {
		logger.Warn("could not save recent files", slog.String("error", err.Error()))
	}
}
