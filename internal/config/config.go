package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/urlgen-dev/urlgen/internal/errors"
	"github.com/urlgen-dev/urlgen/pkg/placeholders"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "urlgen.json"

	// DefaultPort is the default development server port.
	DefaultPort = 7600

	// DefaultHost is the default development server host.
	DefaultHost = "localhost"

	// DefaultManifest is the default route manifest path.
	DefaultManifest = "routes.json"
)

// Config represents the complete urlgen.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Manifest is the path to the route table manifest.
	Manifest string `json:"manifest,omitempty"`

	// Artifacts are the JavaScript files to generate.
	Artifacts []ArtifactConfig `json:"artifacts"`

	// Placeholders declares sample values for URL parameters.
	Placeholders PlaceholdersConfig `json:"placeholders,omitempty"`

	// Build contains post-generation settings.
	Build BuildConfig `json:"build,omitempty"`

	// Upload contains bucket upload settings.
	Upload UploadConfig `json:"upload,omitempty"`

	// Dev contains development server configuration.
	Dev DevConfig `json:"dev,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ArtifactConfig describes one generated JavaScript file.
type ArtifactConfig struct {
	// Output is the file to write, relative to the project root.
	Output string `json:"output"`

	// Writer selects the output shape: "simple" or "class".
	Writer string `json:"writer,omitempty"`

	// ClassName names the emitted class for the class writer.
	ClassName string `json:"className,omitempty"`

	// VarName names the emitted object for the simple writer.
	VarName string `json:"varName,omitempty"`

	// ES5 restricts the output to ES5 syntax.
	ES5 bool `json:"es5,omitempty"`

	// Export adds an export declaration for module consumers.
	Export bool `json:"export,omitempty"`

	// Throw makes simple-writer functions throw a TypeError when no
	// argument guard matches instead of returning undefined.
	Throw bool `json:"throw,omitempty"`

	// Include and Exclude filter routes by qualified name.
	Include []string `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`

	// Indent is the indent unit of the generated source.
	Indent string `json:"indent,omitempty"`

	// Depth is the starting indent level.
	Depth int `json:"depth,omitempty"`

	// RaiseOnNotFound fails generation when a route cannot be confirmed.
	RaiseOnNotFound bool `json:"raiseOnNotFound,omitempty"`

	// ReversalLimit caps placeholder combinations tried per route.
	ReversalLimit int `json:"reversalLimit,omitempty"`
}

// PlaceholdersConfig declares sample values in the config file, mirroring
// the registration methods of placeholders.Registry.
type PlaceholdersConfig struct {
	// Variables maps parameter names to candidate samples.
	Variables map[string][]any `json:"variables,omitempty"`

	// Apps maps app names to app-scoped parameter samples.
	Apps map[string]map[string][]any `json:"apps,omitempty"`

	// Converters maps converter names to candidate samples.
	Converters map[string][]any `json:"converters,omitempty"`

	// Unnamed maps url names to sample tuples for positional parameters.
	Unnamed map[string][][]any `json:"unnamed,omitempty"`
}

// BuildConfig contains post-generation settings.
type BuildConfig struct {
	// Minify runs the generated output through the minifier.
	Minify bool `json:"minify,omitempty"`

	// SourceComment prepends a generated-file comment to the output.
	SourceComment bool `json:"sourceComment,omitempty"`
}

// UploadConfig contains bucket upload settings.
type UploadConfig struct {
	// Bucket is the S3 bucket to upload artifacts to.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is the key prefix inside the bucket.
	Prefix string `json:"prefix,omitempty"`

	// Region overrides the ambient AWS region.
	Region string `json:"region,omitempty"`
}

// DevConfig contains development server settings.
type DevConfig struct {
	// Port is the port to run the dev server on.
	Port int `json:"port,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Watch contains paths to watch for changes. The manifest and config
	// file are always watched.
	Watch []string `json:"watch,omitempty"`

	// OpenBrowser opens the browser automatically on start.
	OpenBrowser bool `json:"openBrowser,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Manifest: DefaultManifest,
		Artifacts: []ArtifactConfig{
			{Output: "static/urls.js", Writer: "class"},
		},
		Build: BuildConfig{
			SourceComment: true,
		},
		Dev: DevConfig{
			Port: DefaultPort,
			Host: DefaultHost,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for urlgen.json in the directory.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E060").
				WithDetail("No urlgen.json found in " + filepath.Dir(path)).
				WithSuggestion("Run 'urlgen init' or create urlgen.json manually")
		}
		return nil, errors.New("E061").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E061").
			WithDetail("Failed to parse urlgen.json: " + err.Error()).
			WithSuggestion("Check that urlgen.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
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
		return errors.New("E061").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E061").Wrap(err)
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
	if c.Manifest == "" {
		c.Manifest = DefaultManifest
	}
	if len(c.Artifacts) == 0 {
		c.Artifacts = []ArtifactConfig{
			{Output: "static/urls.js", Writer: "class"},
		}
	}
	for i := range c.Artifacts {
		if c.Artifacts[i].Writer == "" {
			c.Artifacts[i].Writer = "class"
		}
	}
	if c.Dev.Port == 0 {
		c.Dev.Port = DefaultPort
	}
	if c.Dev.Host == "" {
		c.Dev.Host = DefaultHost
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		return errors.New("E061").
			WithDetail("Port must be between 0 and 65535")
	}
	for _, a := range c.Artifacts {
		if a.Output == "" {
			return errors.New("E062").
				WithDetail("An artifact is missing its output path")
		}
		if filepath.IsAbs(a.Output) || strings.HasPrefix(a.Output, "..") {
			return errors.New("E062").
				WithDetail("Artifact output " + a.Output + " must stay inside the project")
		}
		ext := filepath.Ext(a.Output)
		if ext != ".js" && ext != ".mjs" {
			return errors.New("E062").
				WithDetail("Artifact output " + a.Output + " must end in .js or .mjs")
		}
		switch a.Writer {
		case "simple", "class":
		default:
			return errors.New("E061").
				WithDetail("Unknown writer " + a.Writer).
				WithSuggestion(`Use "simple" or "class"`)
		}
	}
	return nil
}

// Registry builds a placeholder registry from the declared samples.
func (c *Config) Registry() *placeholders.Registry {
	reg := placeholders.NewRegistry()
	for name, values := range c.Placeholders.Variables {
		reg.RegisterVariable(name, values...)
	}
	for app, vars := range c.Placeholders.Apps {
		for name, values := range vars {
			reg.RegisterAppVariable(app, name, values...)
		}
	}
	for conv, values := range c.Placeholders.Converters {
		reg.RegisterConverter(conv, values...)
	}
	for urlName, tuples := range c.Placeholders.Unnamed {
		for _, tuple := range tuples {
			reg.RegisterUnnamed(urlName, tuple...)
		}
	}
	return reg
}

// ManifestPath returns the absolute path to the route manifest.
func (c *Config) ManifestPath() string {
	if filepath.IsAbs(c.Manifest) {
		return c.Manifest
	}
	return filepath.Join(c.Dir(), c.Manifest)
}

// ArtifactPath returns the absolute path of an artifact's output file.
func (c *Config) ArtifactPath(a ArtifactConfig) string {
	if filepath.IsAbs(a.Output) {
		return a.Output
	}
	return filepath.Join(c.Dir(), a.Output)
}

// WatchPaths returns the absolute paths the dev server watches: the
// manifest, the config file, and any configured extras.
func (c *Config) WatchPaths() []string {
	paths := []string{c.ManifestPath()}
	if c.configPath != "" {
		paths = append(paths, c.configPath)
	}
	for _, w := range c.Dev.Watch {
		if !filepath.IsAbs(w) {
			w = filepath.Join(c.Dir(), w)
		}
		paths = append(paths, w)
	}
	return paths
}

// DevAddress returns the address string for the dev server.
func (c *Config) DevAddress() string {
	return c.Dev.Host + ":" + itoa(c.Dev.Port)
}

// DevURL returns the full URL for the dev server.
func (c *Config) DevURL() string {
	return "http://" + c.DevAddress()
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing urlgen.json, or an error if not found.
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
			return "", errors.New("E060").
				WithDetail("No urlgen.json found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'urlgen init' to create one")
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

// itoa converts int to string without importing strconv.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	if n < 0 {
		return "-" + itoa(-n)
	}
	digits := make([]byte, 0, 10)
	for n > 0 {
		digits = append(digits, byte('0'+n%10))
		n /= 10
	}
	// Reverse
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits)
}
