package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/grovetools/rnsgit/errors"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// configNames are searched in the base directory, first match wins.
var configNames = []string{
	"rnsgit.yml",
	"rnsgit.yaml",
	"rnsgit.toml",
}

// Load reads and parses one configuration file and applies defaults.
func Load(path string) (*Config, error) {
	cfg, err := loadRaw(path)
	if err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads the configuration for the current working directory.
func LoadDefault() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to get current directory")
	}

	return LoadFrom(cwd)
}

// LoadFrom loads configuration with hierarchical merging for baseDir:
// 1. Global config ($XDG_CONFIG_HOME/rnsgit/rnsgit.yml) - base layer
// 2. Project config (rnsgit.yml in baseDir) - overrides global
// Both layers are optional.
func LoadFrom(baseDir string) (*Config, error) {
	return LoadFromWithLogger(baseDir, logrus.New())
}

// LoadFromWithLogger is LoadFrom with a caller-supplied logger.
func LoadFromWithLogger(baseDir string, logger *logrus.Logger) (*Config, error) {
	finalConfig := &Config{}

	if globalPath := findIn(getXDGConfigDir()); globalPath != "" {
		logger.WithField("path", globalPath).Debug("Loading global configuration")
		globalConfig, err := loadRaw(globalPath)
		if err != nil {
			logger.WithError(err).Warn("Failed to load global configuration, continuing without it")
		} else {
			finalConfig = globalConfig
		}
	}

	if projectPath := findIn(baseDir); projectPath != "" {
		logger.WithField("path", projectPath).Debug("Loading project configuration")
		projectConfig, err := loadRaw(projectPath)
		if err != nil {
			return nil, err
		}
		finalConfig = mergeConfigs(finalConfig, projectConfig)
	}

	finalConfig.SetDefaults()

	if err := finalConfig.Validate(); err != nil {
		return nil, err
	}

	if logger.IsLevelEnabled(logrus.DebugLevel) {
		if configData, err := yaml.Marshal(finalConfig); err == nil {
			logger.Debugf("Merged configuration:\n%s", string(configData))
		}
	}

	return finalConfig, nil
}

// LoadFromBytes parses configuration in the given format ("yaml" or "toml").
func LoadFromBytes(data []byte, format string) (*Config, error) {
	cfg, err := parse(data, format)
	if err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfigFile returns the project config file in baseDir.
func FindConfigFile(baseDir string) (string, error) {
	if path := findIn(baseDir); path != "" {
		return path, nil
	}
	return "", errors.New(errors.ErrCodeConfigNotFound, "no rnsgit config file found").
		WithDetail("searchPath", baseDir)
}

func findIn(dir string) string {
	if dir == "" {
		return ""
	}
	for _, name := range configNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

func loadRaw(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeConfigNotFound, "configuration file not found").
				WithDetail("path", path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}

	format := "yaml"
	if strings.HasSuffix(path, ".toml") {
		format = "toml"
	}
	cfg, err := parse(data, format)
	if err != nil {
		if rnsErr, ok := errors.As(err); ok {
			rnsErr.WithDetail("path", path)
		}
		return nil, err
	}
	return cfg, nil
}

func parse(data []byte, format string) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var cfg Config
	switch format {
	case "toml":
		// go-toml has no inline remainder, so decode generically and split
		// known keys from extensions.
		var raw map[string]interface{}
		if err := toml.Unmarshal([]byte(expanded), &raw); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse TOML configuration")
		}
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &cfg,
			TagName:          "yaml",
			WeaklyTypedInput: true,
		})
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create decoder")
		}
		known := make(map[string]interface{})
		for k, v := range raw {
			if knownKeys[k] {
				known[k] = v
				continue
			}
			if cfg.Extensions == nil {
				cfg.Extensions = make(map[string]interface{})
			}
			cfg.Extensions[k] = v
		}
		if err := decoder.Decode(known); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to decode TOML configuration")
		}
	default:
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse YAML configuration")
		}
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR} with environment variable values
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := envVarRegex.FindStringSubmatch(match)[1]

		// Handle default values: ${VAR:-default}
		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]
		defaultValue := ""
		if len(parts) > 1 {
			defaultValue = parts[1]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}

// getXDGConfigDir returns the global rnsgit config directory
func getXDGConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "rnsgit")
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config", "rnsgit")
	}

	return ""
}
