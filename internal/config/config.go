package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vango-dev/navroute/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "navroute.json"

	// DefaultPort is the default server port.
	DefaultPort = 3000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultRoot is the default directory of static files.
	DefaultRoot = "public"

	// DefaultIndex is the page served for client-side routes.
	DefaultIndex = "index.html"

	// DefaultEventsPath is the default websocket publish endpoint.
	DefaultEventsPath = "/_navroute/events"

	// DefaultMetricsPath is the default Prometheus endpoint.
	DefaultMetricsPath = "/metrics"
)

// Config represents navroute.json.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Manifest is the route manifest, a path relative to the config file
	// or an s3://bucket/key URL.
	Manifest string `json:"manifest,omitempty"`

	// Serve contains development server configuration.
	Serve ServeConfig `json:"serve,omitempty"`

	// S3 configures access to s3:// manifests.
	S3 S3Config `json:"s3,omitempty"`

	// Events configures the websocket publish endpoint.
	Events EventsConfig `json:"events,omitempty"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServeConfig contains development server settings.
type ServeConfig struct {
	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Root is the directory of static files.
	Root string `json:"root,omitempty"`

	// Index is the page served for any path that is not a file, so
	// client-side routes survive a reload.
	Index string `json:"index,omitempty"`

	// Reload injects the live-reload client into served pages and
	// reloads them when files under Root or the manifest change.
	Reload bool `json:"reload"`
}

// S3Config configures the S3 client used for s3:// manifests.
type S3Config struct {
	Region       string `json:"region,omitempty"`
	Endpoint     string `json:"endpoint,omitempty"`
	UsePathStyle bool   `json:"usePathStyle,omitempty"`
}

// EventsConfig configures the publish endpoint.
type EventsConfig struct {
	// Enabled turns the endpoint on.
	Enabled bool `json:"enabled"`

	// Path is the URL path of the endpoint.
	Path string `json:"path,omitempty"`

	// AllowedOrigins lists origins allowed to connect. Empty means same
	// origin only.
	AllowedOrigins []string `json:"allowedOrigins,omitempty"`
}

// MetricsConfig configures the metrics endpoint.
type MetricsConfig struct {
	// Enabled turns the endpoint on.
	Enabled bool `json:"enabled"`

	// Path is the URL path of the endpoint.
	Path string `json:"path,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Manifest: "routes.yaml",
		Serve: ServeConfig{
			Port:   DefaultPort,
			Host:   DefaultHost,
			Root:   DefaultRoot,
			Index:  DefaultIndex,
			Reload: true,
		},
		Events: EventsConfig{
			Enabled: true,
			Path:    DefaultEventsPath,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    DefaultMetricsPath,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for navroute.json in the directory.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("R031").
				WithDetail("No navroute.json found in " + filepath.Dir(path)).
				WithSuggestion("Run 'navroute init' to create one")
		}
		return nil, errors.New("R030").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("R030").
			WithDetail("Failed to parse navroute.json: " + err.Error()).
			WithSuggestion("Check that navroute.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("R030").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("R030").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Serve.Port == 0 {
		c.Serve.Port = DefaultPort
	}
	if c.Serve.Host == "" {
		c.Serve.Host = DefaultHost
	}
	if c.Serve.Root == "" {
		c.Serve.Root = DefaultRoot
	}
	if c.Serve.Index == "" {
		c.Serve.Index = DefaultIndex
	}
	if c.Events.Path == "" {
		c.Events.Path = DefaultEventsPath
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return errors.New("R030").
			WithDetail("Port must be between 0 and 65535")
	}
	if strings.ContainsAny(c.Serve.Index, `/\`) {
		return errors.New("R030").
			WithDetailf("serve.index %q must be a file name inside serve.root", c.Serve.Index)
	}
	for name, path := range map[string]string{"events.path": c.Events.Path, "metrics.path": c.Metrics.Path} {
		if !strings.HasPrefix(path, "/") {
			return errors.New("R030").
				WithDetailf("%s %q must start with /", name, path)
		}
	}
	if c.Events.Enabled && c.Metrics.Enabled && c.Events.Path == c.Metrics.Path {
		return errors.New("R030").
			WithDetail("events.path and metrics.path must differ")
	}
	if strings.HasPrefix(c.Manifest, "s3://") && c.S3.Region == "" {
		return errors.New("R030").
			WithDetail("An s3:// manifest needs s3.region").
			WithSuggestion(`Add "s3": {"region": "us-east-1"} to navroute.json`)
	}
	return nil
}

// Address returns the listen address of the server.
func (c *Config) Address() string {
	return c.Serve.Host + ":" + strconv.Itoa(c.Serve.Port)
}

// URL returns the base URL of the server.
func (c *Config) URL() string {
	return "http://" + c.Address()
}

// RootPath returns the absolute path to the static files directory.
func (c *Config) RootPath() string {
	return c.resolve(c.Serve.Root)
}

// ManifestSource returns the manifest location, with file paths resolved
// against the config directory and s3:// URLs unchanged.
func (c *Config) ManifestSource() string {
	if c.Manifest == "" || strings.HasPrefix(c.Manifest, "s3://") {
		return c.Manifest
	}
	return c.resolve(c.Manifest)
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing navroute.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("R031").
				WithDetail("No navroute.json found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'navroute init' to create one")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
