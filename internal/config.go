package internal

import (
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// dataDir holds gistnote's own files inside the vault. Hidden directories
// are skipped when the vault is listed or watched.
const dataDir = ".gistnote"

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Vault     VaultConfig       `yaml:"vault"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	Auth      AuthConfig        `yaml:"auth"`
	GitHub    GitHubConfig      `yaml:"github"`
	Settings  SettingsConfig    `yaml:"settings"`
	Clipboard ClipboardConfig   `yaml:"clipboard"`
	Sync      SyncConfig        `yaml:"sync"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.GitHub.Validate(); err != nil {
		return err
	}
	return c.Sync.Validate()
}

// LedgerPath returns the SQLite ledger location, defaulting to a file in
// the vault's data directory.
func (c *Config) LedgerPath() string {
	if c.SQLite.Path != "" {
		return c.SQLite.Path
	}
	return filepath.Join(c.Vault.Path, dataDir, "ledger.db")
}

// SettingsPath returns the settings file location, defaulting to
// data.json in the vault's data directory.
func (c *Config) SettingsPath() string {
	if c.Settings.Path != "" {
		return c.Settings.Path
	}
	return filepath.Join(c.Vault.Path, dataDir, "data.json")
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// VaultConfig holds the path to the Markdown vault directory.
type VaultConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds the publish ledger location. Empty means
// <vault>/.gistnote/ledger.db.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds HTTP API authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// GitHubConfig points the gist client at an API endpoint.
// An empty APIURL means api.github.com.
type GitHubConfig struct {
	APIURL  string        `yaml:"api_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Validate validates the GitHub configuration.
func (c *GitHubConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.APIURL, validation.By(func(any) error {
			if c.APIURL == "" {
				return nil
			}
			u, err := url.Parse(c.APIURL)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("must be an absolute URL")
			}
			return nil
		})),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

// SettingsConfig holds the settings file location. Empty means
// <vault>/.gistnote/data.json.
type SettingsConfig struct {
	Path string `yaml:"path"`
}

// ClipboardConfig controls copying published URLs to the system clipboard.
type ClipboardConfig struct {
	Enabled bool `yaml:"enabled"`
}

// SyncConfig controls republishing tracked notes on edit in serve mode.
type SyncConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the sync configuration.
func (c *SyncConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Vault: VaultConfig{
			Path: ".",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		GitHub: GitHubConfig{
			Timeout: 30 * time.Second,
		},
		Clipboard: ClipboardConfig{
			Enabled: true,
		},
		Sync: SyncConfig{
			Enabled:  true,
			Debounce: 500 * time.Millisecond,
		},
	}
}
