package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/grovetools/rnsgit/errors"
	"gopkg.in/yaml.v3"
)

// PinFileName is the Pinned Project Reference kept in the base directory.
const PinFileName = ".rnsgit"

const (
	pinKey       = "xrns"
	legacyPinKey = ":xrns"
)

// PinPath returns the pin file location for baseDir.
func PinPath(baseDir string) string {
	return filepath.Join(baseDir, PinFileName)
}

// ReadPinned returns the archive name recorded in baseDir's pin file.
// Both `xrns:` and the older `:xrns:` spelling are accepted.
func ReadPinned(baseDir string) (string, error) {
	path := PinPath(baseDir)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.New(errors.ErrCodeConfigNotFound, "no pinned archive").
				WithDetail("path", path)
		}
		return "", errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read pin file").
			WithDetail("path", path)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse pin file").
			WithDetail("path", path)
	}

	for _, key := range []string{pinKey, legacyPinKey} {
		if value, ok := raw[key]; ok {
			name, ok := value.(string)
			if !ok || name == "" {
				return "", errors.ConfigInvalid(fmt.Sprintf("%s must be a non-empty string", key)).
					WithDetail("path", path)
			}
			return name, nil
		}
	}

	return "", errors.ConfigInvalid(fmt.Sprintf("pin file has no %s entry", pinKey)).
		WithDetail("path", path)
}

// WritePinned records archive as the default for baseDir, replacing any
// previous pin. The value is written double-quoted.
func WritePinned(baseDir, archive string) error {
	doc := &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: pinKey},
			{Kind: yaml.ScalarNode, Value: archive, Style: yaml.DoubleQuotedStyle},
		},
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to encode pin file")
	}

	path := PinPath(baseDir)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to write pin file").
			WithDetail("path", path)
	}
	return nil
}
