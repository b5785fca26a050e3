package config

// mergeConfigs merges override configuration into base
func mergeConfigs(base, override *Config) *Config {
	result := *base

	if override.Git.Binary != "" {
		result.Git.Binary = override.Git.Binary
	}
	if override.Archiver.Kind != "" {
		result.Archiver.Kind = override.Archiver.Kind
	}
	if override.Archiver.Binary != "" {
		result.Archiver.Binary = override.Archiver.Binary
	}
	if override.Timeout != "" {
		result.Timeout = override.Timeout
	}
	if override.Commit.InitialMessage != "" {
		result.Commit.InitialMessage = override.Commit.InitialMessage
	}

	// Exclusions accumulate across layers
	if len(override.Pack.Exclude) > 0 {
		result.Pack.Exclude = append(append([]string{}, base.Pack.Exclude...), override.Pack.Exclude...)
	}

	if len(override.Extensions) > 0 {
		result.Extensions = make(map[string]interface{}, len(base.Extensions)+len(override.Extensions))
		for k, v := range base.Extensions {
			result.Extensions[k] = v
		}
		for k, v := range override.Extensions {
			result.Extensions[k] = v
		}
	}

	return &result
}
