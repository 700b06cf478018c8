package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Log formats.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// MCP modes.
const (
	MCPModeDisabled = "disabled"
	MCPModeStdio    = "stdio"
	MCPModeHTTP     = "http"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Editor EditorConfig      `yaml:"editor"`
	Blobs  BlobsConfig       `yaml:"blobs"`
	SSE    SSEConfig         `yaml:"sse"`
	Inbox  InboxConfig       `yaml:"inbox"`
	MCP    MCPConfig         `yaml:"mcp"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Editor.Validate(); err != nil {
		return err
	}
	if err := c.Blobs.Validate(); err != nil {
		return err
	}
	if err := c.SSE.Validate(); err != nil {
		return err
	}
	if err := c.MCP.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
	HTTP      HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.LogFormat == "" {
		c.LogFormat = LogFormatJSON
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(LogFormatJSON, LogFormatText)),
	); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// EditorConfig holds input and preview pane settings.
type EditorConfig struct {
	// Debounce is the quiet period before the preview re-renders. Zero
	// renders on every change.
	Debounce       time.Duration `yaml:"debounce"`
	Placeholder    string        `yaml:"placeholder"`
	HighlightStyle string        `yaml:"highlight_style"`
	HardWraps      bool          `yaml:"hard_wraps"`
	// Frontmatter renders a leading YAML block as a table.
	Frontmatter bool `yaml:"frontmatter"`
}

// Validate validates the editor configuration.
func (c *EditorConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0)), validation.Max(10*time.Second)),
	)
}

// BlobsConfig bounds the in-memory store for dropped images.
type BlobsConfig struct {
	MaxBytes        int64         `yaml:"max_bytes"`
	MaxRequestBytes int64         `yaml:"max_request_bytes"`
	Grace           time.Duration `yaml:"grace"`
	SweepInterval   time.Duration `yaml:"sweep_interval"`
}

// Validate validates the blob configuration.
func (c *BlobsConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.MaxBytes, validation.Required, validation.Min(int64(1))),
		validation.Field(&c.MaxRequestBytes, validation.Required, validation.Min(int64(1))),
		validation.Field(&c.Grace, validation.Min(time.Duration(0))),
		validation.Field(&c.SweepInterval, validation.Min(time.Duration(0))),
	); err != nil {
		return err
	}
	if c.MaxRequestBytes < c.MaxBytes {
		return fmt.Errorf("blobs: max_request_bytes (%d) is below max_bytes (%d)", c.MaxRequestBytes, c.MaxBytes)
	}
	return nil
}

// SSEConfig holds event stream settings.
type SSEConfig struct {
	StatsInterval time.Duration `yaml:"stats_interval"`
	Heartbeat     time.Duration `yaml:"heartbeat"`
}

// Validate validates the SSE configuration.
func (c *SSEConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.StatsInterval, validation.Min(time.Duration(0))),
		validation.Field(&c.Heartbeat, validation.Min(time.Duration(0))),
	)
}

// InboxConfig names a directory whose new PNG files are dropped at the
// cursor. An empty path disables it.
type InboxConfig struct {
	Path   string        `yaml:"path"`
	Settle time.Duration `yaml:"settle"`
}

// Enabled reports whether the inbox watcher runs.
func (c *InboxConfig) Enabled() bool {
	return c.Path != ""
}

// MCPConfig selects how the MCP server is exposed.
//
// Mode is one of:
//   - "disabled" (default): no MCP server.
//   - "stdio": serve on stdin/stdout alongside the HTTP server.
//   - "http": mount the streamable HTTP transport at /mcp.
type MCPConfig struct {
	Mode string `yaml:"mode"`
}

// Validate validates the MCP configuration.
func (c *MCPConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = MCPModeDisabled
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(MCPModeDisabled, MCPModeStdio, MCPModeHTTP)),
	)
}

// AuthConfig holds authentication configuration.
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

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatJSON,
			HTTP: HTTPConfig{
				Host: "127.0.0.1",
				Port: 8080,
			},
		},
		Editor: EditorConfig{
			Debounce:       300 * time.Millisecond,
			HighlightStyle: "github",
			HardWraps:      true,
		},
		Blobs: BlobsConfig{
			MaxBytes:        10 << 20,
			MaxRequestBytes: 50 << 20,
			Grace:           10 * time.Minute,
			SweepInterval:   time.Minute,
		},
		SSE: SSEConfig{
			StatsInterval: 2 * time.Second,
			Heartbeat:     15 * time.Second,
		},
		Inbox: InboxConfig{
			Settle: 200 * time.Millisecond,
		},
		MCP: MCPConfig{
			Mode: MCPModeDisabled,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
