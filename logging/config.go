package logging

// Config is the `logging` extension of rnsgit.yml. RNSGIT_LOG_LEVEL and
// RNSGIT_LOG_CALLER=true take precedence over Level and ReportCaller.
type Config struct {
	Level        string         `yaml:"level"`
	ReportCaller bool           `yaml:"report_caller"`
	File         FileSinkConfig `yaml:"file"`
	Format       FormatConfig   `yaml:"format"`
}

// FileSinkConfig adds an append-only log file next to stderr.
type FileSinkConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // "~/" is expanded
}

// FormatConfig selects the log line layout.
type FormatConfig struct {
	// Preset is "default", "simple" or "json".
	Preset           string `yaml:"preset"`
	DisableTimestamp bool   `yaml:"disable_timestamp"`
	DisableComponent bool   `yaml:"disable_component"`

	// StructuredToStderr is "auto" (stderr, unless a file sink is set and
	// stderr is not a terminal), "always" or "never".
	StructuredToStderr string `yaml:"structured_to_stderr"`
}
