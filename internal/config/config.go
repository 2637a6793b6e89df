// Package config provides Viper-based configuration management for shopctl
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete shopctl configuration
type Config struct {
	Project   ProjectConfig   `mapstructure:"project"`
	Cluster   ClusterConfig   `mapstructure:"cluster"`
	Registry  RegistryConfig  `mapstructure:"registry"`
	Image     ImageConfig     `mapstructure:"image"`
	Ingress   IngressConfig   `mapstructure:"ingress"`
	Kube      KubeConfig      `mapstructure:"kube"`
	Manifests ManifestsConfig `mapstructure:"manifests"`
	Defaults  DefaultsConfig  `mapstructure:"defaults"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Output    OutputConfig    `mapstructure:"output"`
}

// ProjectConfig contains project-level settings
type ProjectConfig struct {
	Root string `mapstructure:"root"`
}

// ClusterConfig contains k3d cluster settings
type ClusterConfig struct {
	Name      string `mapstructure:"name"`
	Agents    int    `mapstructure:"agents"`
	HTTPPort  int    `mapstructure:"http_port"`
	HTTPSPort int    `mapstructure:"https_port"`
}

// RegistryConfig contains the local image registry settings
type RegistryConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// ImageConfig contains application image settings
type ImageConfig struct {
	Name string `mapstructure:"name"`
	Tag  string `mapstructure:"tag"`
}

// IngressConfig contains ingress access settings
type IngressConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// KubeConfig contains kubectl targeting settings
type KubeConfig struct {
	Namespace string `mapstructure:"namespace"`
	Context   string `mapstructure:"context"`
}

// ManifestsConfig contains manifest location settings
type ManifestsConfig struct {
	Dir string `mapstructure:"dir"`
}

// DefaultsConfig contains default behavior settings
type DefaultsConfig struct {
	Resources     []string      `mapstructure:"resources"`
	DeployTimeout time.Duration `mapstructure:"deploy_timeout"`
	ProbeInterval time.Duration `mapstructure:"probe_interval"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OutputConfig contains output formatting settings
type OutputConfig struct {
	Colors   bool `mapstructure:"colors"`
	Progress bool `mapstructure:"progress"`
}

// Load reads configuration from file and environment variables
func Load(cfgFile, projectDir string) (*Config, error) {
	v := viper.New()

	// Set config file if specified
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		// Search paths for .shopctl.yaml
		v.SetConfigName(".shopctl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/shopctl")

		// Also search in project directory if specified
		if projectDir != "" {
			v.AddConfigPath(projectDir)
		}
	}

	// Environment variables
	v.SetEnvPrefix("SHOPCTL")
	v.AutomaticEnv()

	// Set defaults
	setDefaults(v)

	// Override project root if specified via flag
	if projectDir != "" {
		v.Set("project.root", projectDir)
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	// Auto-detect project root if not set
	if v.GetString("project.root") == "" {
		root := detectProjectRoot()
		v.Set("project.root", root)
	}

	// Unmarshal into struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values
func setDefaults(v *viper.Viper) {
	// Cluster defaults
	v.SetDefault("cluster.name", "shopcarts")
	v.SetDefault("cluster.agents", 2)
	v.SetDefault("cluster.http_port", 8081)
	v.SetDefault("cluster.https_port", 8443)

	// Registry defaults
	v.SetDefault("registry.host", "shopcarts-registry")
	v.SetDefault("registry.port", 5000)

	// Image defaults
	v.SetDefault("image.name", "shopcarts")
	v.SetDefault("image.tag", "latest")

	// Ingress defaults
	v.SetDefault("ingress.base_url", "http://localhost:8081")

	// Kube defaults
	v.SetDefault("kube.namespace", "shopcarts")
	v.SetDefault("kube.context", "k3d-shopcarts")

	// Manifests directory, relative to project root
	v.SetDefault("manifests.dir", "k8s")

	// Default resources to deploy
	v.SetDefault("defaults.resources", []string{
		"namespace", "app-config", "postgres",
		"shopcarts", "shopcarts-service", "shopcarts-ingress",
	})
	v.SetDefault("defaults.deploy_timeout", 10*time.Minute)
	v.SetDefault("defaults.probe_interval", 2*time.Second)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// Output defaults
	v.SetDefault("output.colors", true)
	v.SetDefault("output.progress", true)
}

// detectProjectRoot attempts to find the shopcarts project root directory
func detectProjectRoot() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}

	// Walk up the directory tree looking for project markers
	dir := cwd
	for {
		// Check for the k8s manifest directory
		if _, err := os.Stat(filepath.Join(dir, "k8s")); err == nil {
			return dir
		}
		// Check for .shopctl.yaml
		if _, err := os.Stat(filepath.Join(dir, ".shopctl.yaml")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return cwd
		}
		dir = parent
	}
}

// validate checks the configuration for errors
func validate(cfg *Config) error {
	// Validate project root exists
	if cfg.Project.Root != "" {
		if _, err := os.Stat(cfg.Project.Root); os.IsNotExist(err) {
			return fmt.Errorf("project root does not exist: %s", cfg.Project.Root)
		}
	}

	if cfg.Cluster.Name == "" {
		return fmt.Errorf("cluster name must not be empty")
	}

	if cfg.Registry.Port <= 0 || cfg.Registry.Port > 65535 {
		return fmt.Errorf("invalid registry port: %d", cfg.Registry.Port)
	}

	// Validate logging level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s (must be text or json)", cfg.Logging.Format)
	}

	return nil
}

// ManifestDir returns the absolute manifest directory
func (c *Config) ManifestDir() string {
	if filepath.IsAbs(c.Manifests.Dir) {
		return c.Manifests.Dir
	}
	return filepath.Join(c.Project.Root, c.Manifests.Dir)
}

// ReleaseDir returns the directory where deploy records are kept
func (c *Config) ReleaseDir() string {
	return filepath.Join(c.Project.Root, ".shopctl", "releases")
}

// RegistryAddr returns the host:port of the local image registry
func (c *Config) RegistryAddr() string {
	return fmt.Sprintf("%s:%d", c.Registry.Host, c.Registry.Port)
}

// ImageRef returns the fully qualified image reference for the app image
func (c *Config) ImageRef() string {
	return fmt.Sprintf("%s/%s:%s", c.RegistryAddr(), c.Image.Name, c.Image.Tag)
}

// KubeContext returns the kubectl context for the configured cluster
func (c *Config) KubeContext() string {
	if c.Kube.Context != "" {
		return c.Kube.Context
	}
	return "k3d-" + c.Cluster.Name
}
