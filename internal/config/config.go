package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL    = "http://xkcd.com"
	DefaultExplainURL = "https://www.explainxkcd.com/wiki/index.php"
)

type Config struct {
	BaseURL    string `yaml:"base_url"`
	ExplainURL string `yaml:"explain_url"`
	// Timeout is in seconds.
	Timeout          int    `yaml:"timeout"`
	UserAgent        string `yaml:"user_agent"`
	CloudflareBypass bool   `yaml:"cloudflare_bypass"`
	Debug            bool   `yaml:"debug"`

	Output            string  `yaml:"output"`
	ImageWorkers      int     `yaml:"image_workers"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	SkipBroken        bool    `yaml:"skip_broken"`
	CBZ               bool    `yaml:"cbz"`
}

// Options are the CLI flag values. Zero values leave the config untouched.
type Options struct {
	IgnoreConfig      bool
	Debug             bool
	BaseURL           string
	ExplainURL        string
	Timeout           int
	UserAgent         string
	CloudflareBypass  bool
	Output            string
	ImageWorkers      int
	RequestsPerSecond float64
	SkipBroken        bool
	CBZ               bool
}

// envOverrides sit between the config file and the CLI flags.
type envOverrides struct {
	BaseURL    string `env:"XKCD_BASE_URL"`
	ExplainURL string `env:"XKCD_EXPLAIN_URL"`
	UserAgent  string `env:"XKCD_USER_AGENT"`
	Debug      bool   `env:"XKCD_DEBUG"`
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:           DefaultBaseURL,
		ExplainURL:        DefaultExplainURL,
		Timeout:           30,
		UserAgent:         "",
		CloudflareBypass:  false,
		Debug:             false,
		Output:            ".",
		ImageWorkers:      4,
		RequestsPerSecond: 4,
		SkipBroken:        false,
		CBZ:               false,
	}
}

// TimeoutDuration is the HTTP client timeout.
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// unset keys keep their defaults
	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadMerged resolves the effective config: defaults, then the active
// profile, then XKCD_* environment variables, then CLI flags. The second
// return value describes where the file part came from.
func LoadMerged(opts Options) (*Config, string, error) {
	cfg, used, err := loadBase(opts)
	if err != nil {
		return nil, "", err
	}

	if err := applyEnv(cfg); err != nil {
		return nil, "", err
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, used, nil
}

func loadBase(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		return DefaultConfig(), "(ignored config)", nil
	}

	activePath, err := ActiveConfigPath()
	if err == ErrNoConfig || activePath == "" {
		return DefaultConfig(), "(default config in memory)\nRun `xkcd config init` to create an actual config\n", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	return cfg, activePath, nil
}

func applyEnv(c *Config) error {
	var ov envOverrides
	if err := env.Parse(&ov); err != nil {
		return fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if ov.BaseURL != "" {
		c.BaseURL = ov.BaseURL
	}
	if ov.ExplainURL != "" {
		c.ExplainURL = ov.ExplainURL
	}
	if ov.UserAgent != "" {
		c.UserAgent = ov.UserAgent
	}
	if ov.Debug {
		c.Debug = true
	}

	return nil
}

func mergeConfig(c *Config, o Options) {
	if o.Debug {
		c.Debug = true
	}
	if o.BaseURL != "" {
		c.BaseURL = o.BaseURL
	}
	if o.ExplainURL != "" {
		c.ExplainURL = o.ExplainURL
	}
	if o.Timeout != 0 {
		c.Timeout = o.Timeout
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.CloudflareBypass {
		c.CloudflareBypass = true
	}
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.ImageWorkers != 0 {
		c.ImageWorkers = o.ImageWorkers
	}
	if o.RequestsPerSecond != 0 {
		c.RequestsPerSecond = o.RequestsPerSecond
	}
	if o.SkipBroken {
		c.SkipBroken = true
	}
	if o.CBZ {
		c.CBZ = true
	}
}

func normalizeDefaults(c *Config) {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.ExplainURL = strings.TrimRight(strings.TrimSpace(c.ExplainURL), "/")
	if c.ExplainURL == "" {
		c.ExplainURL = DefaultExplainURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 30
	}
	if c.Output == "" {
		c.Output = "."
	}
	if c.ImageWorkers <= 0 {
		c.ImageWorkers = 4
	}
}

func (c *Config) Print(w io.Writer) {
	_, _ = fmt.Fprintf(w, " -base_url: %s\n", c.BaseURL)
	_, _ = fmt.Fprintf(w, " -explain_url: %s\n", c.ExplainURL)
	_, _ = fmt.Fprintf(w, " -timeout: %ds\n", c.Timeout)
	if c.UserAgent != "" {
		_, _ = fmt.Fprintf(w, " -user_agent: %s\n", c.UserAgent)
	}
	if c.CloudflareBypass {
		_, _ = fmt.Fprintf(w, " -cloudflare_bypass: %t\n", c.CloudflareBypass)
	}
	if c.Debug {
		_, _ = fmt.Fprintf(w, " -debug: %t\n", c.Debug)
	}
	_, _ = fmt.Fprintf(w, " -output: %s\n", c.Output)
	_, _ = fmt.Fprintf(w, " -image_workers: %d\n", c.ImageWorkers)
	if c.RequestsPerSecond > 0 {
		_, _ = fmt.Fprintf(w, " -requests_per_second: %g\n", c.RequestsPerSecond)
	}
	if c.SkipBroken {
		_, _ = fmt.Fprintf(w, " -skip_broken: %t\n", c.SkipBroken)
	}
	if c.CBZ {
		_, _ = fmt.Fprintf(w, " -cbz: %t\n", c.CBZ)
	}
}
