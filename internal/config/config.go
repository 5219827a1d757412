package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalidRegion is returned for a region outside Regions
var ErrInvalidRegion = errors.New("invalid region")

// Config holds all configuration for the reporter
type Config struct {
	// Report settings
	Name        string
	BrowserName string
	Build       string
	Tags        []string
	Region      string

	// Output settings
	OutputFile string
	Upload     bool

	// Credentials and environment, see FromEnv
	Username       string
	AccessKey      string
	ManagedVM      bool
	VideoStartTime time.Time
	HistoryDSN     string

	// Version of the reporter, sent in the User-Agent
	Version string

	// Command flags
	Flags Flags
}

// Flags holds command-line flags
type Flags struct {
	ConfigFile  string
	EnvFile     string
	Name        string
	BrowserName string
	Build       string
	Tags        []string
	Region      string
	OutputFile  string
	NoUpload    bool
	HistoryDSN  string
	Debug       bool
}

// fileOptions mirrors the runner's format options; JSON is valid YAML so both load.
type fileOptions struct {
	Name        string   `yaml:"name"`
	SuiteName   string   `yaml:"suiteName"`
	BrowserName string   `yaml:"browserName"`
	Build       string   `yaml:"build"`
	Tags        []string `yaml:"tags"`
	Region      string   `yaml:"region"`
	OutputFile  string   `yaml:"outputFile"`
	Upload      *bool    `yaml:"upload"`
}

// New creates a new Config with defaults
func New() *Config {
	return &Config{
		BrowserName: DefaultBrowserName,
		Region:      DefaultRegion,
		OutputFile:  DefaultOutputFile,
		Upload:      true,
		Tags:        []string{},
		Version:     "dev",
	}
}

// Load creates a config from defaults, the optional options file and the flags, in that order
func Load(flags Flags) (*Config, error) {
	cfg := New()
	if err := cfg.Apply(flags); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Apply merges the options file named in flags and then the flags themselves into c
func (c *Config) Apply(flags Flags) error {
	c.Flags = flags
	if flags.ConfigFile != "" {
		if err := c.LoadFile(flags.ConfigFile); err != nil {
			return err
		}
	}
	c.applyFlags(flags)
	return c.Validate()
}

// LoadFile merges reporter options from a YAML or JSON file
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var opts fileOptions
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if opts.SuiteName != "" {
		c.Name = opts.SuiteName
	}
	if opts.Name != "" {
		c.Name = opts.Name
	}
	if opts.BrowserName != "" {
		c.BrowserName = opts.BrowserName
	}
	if opts.Build != "" {
		c.Build = opts.Build
	}
	if opts.Tags != nil {
		c.Tags = opts.Tags
	}
	if opts.Region != "" {
		c.Region = opts.Region
	}
	if opts.OutputFile != "" {
		c.OutputFile = opts.OutputFile
	}
	if opts.Upload != nil {
		c.Upload = *opts.Upload
	}
	return nil
}

func (c *Config) applyFlags(flags Flags) {
	if flags.Name != "" {
		c.Name = flags.Name
	}
	if flags.BrowserName != "" {
		c.BrowserName = flags.BrowserName
	}
	if flags.Build != "" {
		c.Build = flags.Build
	}
	if len(flags.Tags) > 0 {
		c.Tags = flags.Tags
	}
	if flags.Region != "" {
		c.Region = flags.Region
	}
	if flags.OutputFile != "" {
		c.OutputFile = flags.OutputFile
	}
	if flags.NoUpload {
		c.Upload = false
	}
	if flags.HistoryDSN != "" {
		c.HistoryDSN = flags.HistoryDSN
	}
}

// Validate checks option values
func (c *Config) Validate() error {
	if !slices.Contains(Regions, c.Region) {
		return fmt.Errorf("%w %q, expected one of %s", ErrInvalidRegion, c.Region, strings.Join(Regions, ", "))
	}
	return nil
}

// LoadDotEnv loads a .env file into the process environment. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// FromEnv fills credentials and environment overrides using getenv (usually os.Getenv)
func (c *Config) FromEnv(getenv func(string) string) error {
	c.Username = getenv(EnvUsername)
	c.AccessKey = getenv(EnvAccessKey)
	c.ManagedVM = getenv(EnvManagedVM) != ""
	if c.HistoryDSN == "" {
		c.HistoryDSN = getenv(EnvHistoryDSN)
	}

	if raw := getenv(EnvVideoStartTime); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvVideoStartTime, err)
		}
		c.VideoStartTime = t
	}
	return nil
}

// HasCredentials reports whether both Sauce Labs secrets are set
func (c *Config) HasCredentials() bool {
	return c.Username != "" && c.AccessKey != ""
}

// TLD returns the top-level domain of the configured region
func (c *Config) TLD() string {
	if c.Region == RegionStaging {
		return "net"
	}
	return "com"
}

// GetAPIURL returns the base URL of the Sauce Labs REST API
func (c *Config) GetAPIURL() string {
	return fmt.Sprintf("https://api.%s.saucelabs.%s", c.Region, c.TLD())
}

// GetJobURL returns the web app link for a reported job
func (c *Config) GetJobURL(jobID string) string {
	if c.Region == RegionUSWest1 {
		return fmt.Sprintf("https://app.saucelabs.com/tests/%s", jobID)
	}
	return fmt.Sprintf("https://app.%s.saucelabs.%s/tests/%s", c.Region, c.TLD(), jobID)
}

// GetReportAssetName is the file name the serialized report is uploaded under
func (c *Config) GetReportAssetName() string {
	return filepath.Base(c.OutputFile)
}

// GetOutputPath returns the output file as an absolute path when it can be resolved
func (c *Config) GetOutputPath() string {
	if abs, err := filepath.Abs(c.OutputFile); err == nil {
		return abs
	}
	return c.OutputFile
}
