package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/grovetools/rnsgit/config"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var (
	loggers       = make(map[string]*logrus.Entry)
	loggersMu     sync.Mutex
	levelOverride *logrus.Level
	active        *Config
	logFiles      = make(map[string]*os.File)
)

// SetLevel changes the level of every component logger, including the
// ones created later.
func SetLevel(level logrus.Level) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	levelOverride = &level
	for _, entry := range loggers {
		entry.Logger.SetLevel(level)
	}
}

// NewLogger creates and returns a pre-configured logger for a specific component.
// It uses a singleton pattern per component to avoid re-initializing.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	if active == nil {
		// Until Configure runs, rnsgit.yml is looked up from the working directory
		var logCfg Config
		if cfg, err := config.LoadDefault(); err == nil {
			if err := cfg.UnmarshalExtension("logging", &logCfg); err != nil {
				logrus.Warnf("Failed to parse 'logging' config: %v", err)
			}
		}
		active = &logCfg
	}

	logger := logrus.New()
	apply(logger, *active)

	entry := logger.WithField("component", component)
	loggers[component] = entry
	return entry
}

// Configure applies the logging section of cfg to every component logger,
// including those created before the project config was loaded.
func Configure(cfg *config.Config) {
	var logCfg Config
	if cfg != nil {
		if err := cfg.UnmarshalExtension("logging", &logCfg); err != nil {
			logrus.Warnf("Failed to parse 'logging' config: %v", err)
		}
	}

	loggersMu.Lock()
	defer loggersMu.Unlock()

	active = &logCfg
	for _, entry := range loggers {
		apply(entry.Logger, logCfg)
	}
}

// apply sets level, caller reporting, formatter and outputs from logCfg.
// Callers hold loggersMu.
func apply(logger *logrus.Logger, logCfg Config) {
	levelStr := "info"
	if os.Getenv("RNSGIT_LOG_LEVEL") != "" {
		levelStr = os.Getenv("RNSGIT_LOG_LEVEL")
	} else if logCfg.Level != "" {
		levelStr = logCfg.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	if levelOverride != nil {
		level = *levelOverride
	}
	logger.SetLevel(level)

	logger.SetReportCaller(os.Getenv("RNSGIT_LOG_CALLER") == "true" || logCfg.ReportCaller)

	interactive := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())

	// Configure Formatter
	switch logCfg.Format.Preset {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "simple":
		logger.SetFormatter(&TextFormatter{Config: FormatConfig{
			DisableTimestamp: true,
			DisableComponent: true,
		}})
	default:
		format := logCfg.Format
		// Timestamps are noise in an interactive session
		if interactive {
			format.DisableTimestamp = true
		}
		logger.SetFormatter(&TextFormatter{Config: format})
	}

	var writers []io.Writer

	if logCfg.File.Enabled && logCfg.File.Path != "" {
		if file, err := openLogFile(expandPath(logCfg.File.Path)); err == nil {
			writers = append(writers, file)
		} else {
			logger.Warnf("Failed to open log file %s: %v", logCfg.File.Path, err)
		}
	}

	// Unlike a TUI, tool diagnostics are part of normal output, so "auto"
	// keeps stderr unless a file sink already captures everything.
	switch logCfg.Format.StructuredToStderr {
	case "always":
		writers = append(writers, GetGlobalOutput())
	case "never":
	default:
		if len(writers) == 0 || interactive {
			writers = append(writers, GetGlobalOutput())
		}
	}

	switch len(writers) {
	case 0:
		logger.SetOutput(io.Discard)
	case 1:
		logger.SetOutput(writers[0])
	default:
		logger.SetOutput(io.MultiWriter(writers...))
	}
}

// openLogFile opens path for appending once per process; every logger
// writing to the same path shares the handle.
func openLogFile(path string) (*os.File, error) {
	if file, ok := logFiles[path]; ok {
		return file, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, err
	}
	logFiles[path] = file
	return file, nil
}

// expandPath expands tilde in file paths
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
