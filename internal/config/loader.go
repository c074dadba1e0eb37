package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Environment overrides, applied after the file.
const (
	EnvConfig        = "SCRIBA_CONFIG"
	EnvLogLevel      = "SCRIBA_LOG_LEVEL"
	EnvRules         = "SCRIBA_RULES"
	EnvCheckEndpoint = "SCRIBA_CHECK_ENDPOINT"
	EnvRewriteKey    = "SCRIBA_REWRITE_KEY"
)

// ParseError wraps a malformed config file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing config file %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads the config file at path, falling back to defaults when the
// file does not exist. Environment overrides are applied last. A malformed
// file is an error; the caller decides whether to degrade to defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Missing file is fine, defaults apply.
		case err != nil:
			return cfg, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return Default(), &ParseError{Path: path, Err: err}
			}
		}
	}

	applyEnv(cfg)
	normalize(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvRules); v != "" {
		cfg.Replace.RulesPath = v
	}
	if v := os.Getenv(EnvCheckEndpoint); v != "" {
		cfg.Check.Endpoint = v
	}
}

// APIKey resolves the rewrite API key. SCRIBA_REWRITE_KEY takes precedence
// over the variable named by rewrite.apiKeyEnv.
func (c *Config) APIKey() string {
	if v := os.Getenv(EnvRewriteKey); v != "" {
		return v
	}
	if c.Rewrite.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.Rewrite.APIKeyEnv)
}

// normalize pulls out-of-range values back to their defaults.
func normalize(cfg *Config) {
	def := Default()
	if cfg.Files.AutosaveInterval < 0 {
		cfg.Files.AutosaveInterval = def.Files.AutosaveInterval
	}
	if cfg.Replace.CacheSize <= 0 {
		cfg.Replace.CacheSize = def.Replace.CacheSize
	}
	if cfg.Check.Interval <= 0 {
		cfg.Check.Interval = def.Check.Interval
	}
	if cfg.Check.MaxCheckSize <= 0 {
		cfg.Check.MaxCheckSize = def.Check.MaxCheckSize
	}
	if cfg.Check.Language == "" {
		cfg.Check.Language = def.Check.Language
	}
}
