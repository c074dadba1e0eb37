package config

// Config holds all editor settings.
type Config struct {
	UI      UIConfig      `toml:"ui"`
	Files   FilesConfig   `toml:"files"`
	Replace ReplaceConfig `toml:"replace"`
	Check   CheckConfig   `toml:"check"`
	Rewrite RewriteConfig `toml:"rewrite"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	FontFamily  string `toml:"fontFamily"`
	FontSize    int    `toml:"fontSize"`
	CursorColor string `toml:"cursorColor"`
}

// FilesConfig holds file-handling settings.
type FilesConfig struct {
	DefaultDir string `toml:"defaultDir"`
	// AutosaveInterval is in seconds. Zero disables autosave.
	AutosaveInterval int `toml:"autosaveInterval"`
}

// ReplaceConfig holds autocorrect settings.
type ReplaceConfig struct {
	RulesPath string `toml:"rulesPath"`
	CacheSize int    `toml:"cacheSize"`
}

// CheckConfig holds grammar-check settings.
type CheckConfig struct {
	Endpoint string `toml:"endpoint"`
	Language string `toml:"language"`
	// Interval is in seconds.
	Interval     int `toml:"interval"`
	MaxCheckSize int `toml:"maxCheckSize"`
}

// RewriteConfig holds remote-rewrite settings.
type RewriteConfig struct {
	Endpoint string `toml:"endpoint"`
	Model    string `toml:"model"`
	// APIKeyEnv names the environment variable holding the API key. The
	// key itself never appears in the config file.
	APIKeyEnv string `toml:"apiKeyEnv"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		UI: UIConfig{
			FontFamily:  "monospace",
			FontSize:    12,
			CursorColor: "white",
		},
		Files: FilesConfig{
			AutosaveInterval: 60,
		},
		Replace: ReplaceConfig{
			CacheSize: 1000,
		},
		Check: CheckConfig{
			Language:     "auto",
			Interval:     3,
			MaxCheckSize: 20000,
		},
		Rewrite: RewriteConfig{
			APIKeyEnv: "SCRIBA_REWRITE_API_KEY",
		},
	}
}
