package config

import (
	"fmt"

	"github.com/grovetools/rnsgit/errors"
	"github.com/moby/patternmatcher"
)

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	switch c.Archiver.Kind {
	case ArchiverAuto, ArchiverSevenZip, ArchiverZip:
	default:
		return errors.ConfigInvalid(fmt.Sprintf("archiver.kind must be one of auto, 7z, zip (got %q)", c.Archiver.Kind)).
			WithDetail("field", "archiver.kind")
	}

	if _, err := c.TimeoutDuration(); err != nil {
		return errors.ConfigInvalid(err.Error()).WithDetail("field", "timeout")
	}

	if len(c.Pack.Exclude) > 0 {
		if _, err := patternmatcher.New(c.Pack.Exclude); err != nil {
			return errors.ConfigInvalid(fmt.Sprintf("pack.exclude: %v", err)).WithDetail("field", "pack.exclude")
		}
	}

	return nil
}
