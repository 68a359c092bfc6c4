package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/conduit-lang/esgraph/internal/compiler"
	strutil "github.com/conduit-lang/esgraph/internal/util/strings"
)

// Name is the configuration file name without extension
const Name = "esgraph"

// FileName is the file written by init
const FileName = Name + ".yml"

// EnvPrefix prefixes environment overrides, e.g. ESGRAPH_OUTPUT_PREFIX
const EnvPrefix = "ESGRAPH"

// Source formats
const (
	FormatGo  = "go"
	FormatHCL = "hcl"
)

// Config represents the esgraph configuration
type Config struct {
	Source SourceConfig `mapstructure:"source"`
	Output OutputConfig `mapstructure:"output"`
	Policy PolicyConfig `mapstructure:"policy"`
}

// SourceConfig tells where declarations are read from
type SourceConfig struct {
	Format   string   `mapstructure:"format"`
	Dir      string   `mapstructure:"dir"`
	Patterns []string `mapstructure:"patterns"`
}

// OutputConfig controls generated names and the graph file
type OutputConfig struct {
	Prefix  string `mapstructure:"prefix"`
	Package string `mapstructure:"package"`
	File    string `mapstructure:"file"`
}

// PolicyConfig holds the compilation rules
type PolicyConfig struct {
	IncludeUnexported bool   `mapstructure:"include_unexported"`
	Overrides         string `mapstructure:"overrides"`
	Duplicates        string `mapstructure:"duplicates"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		Source: SourceConfig{Format: FormatGo, Dir: ".", Patterns: []string{"./..."}},
		Output: OutputConfig{Prefix: compiler.DefaultPrefix},
		Policy: PolicyConfig{
			Overrides:  compiler.OverrideFallback.String(),
			Duplicates: compiler.FirstWins.String(),
		},
	}
}

func newViper() *viper.Viper {
	v := viper.New()

	d := Default()
	v.SetDefault("source.format", d.Source.Format)
	v.SetDefault("source.dir", d.Source.Dir)
	v.SetDefault("source.patterns", d.Source.Patterns)
	v.SetDefault("output.prefix", d.Output.Prefix)
	v.SetDefault("output.package", d.Output.Package)
	v.SetDefault("output.file", d.Output.File)
	v.SetDefault("policy.include_unexported", d.Policy.IncludeUnexported)
	v.SetDefault("policy.overrides", d.Policy.Overrides)
	v.SetDefault("policy.duplicates", d.Policy.Duplicates)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load loads the configuration from esgraph.yml or esgraph.yaml in the
// current directory.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom loads the configuration file of dir, falling back to defaults
// when there is none. A relative source.dir is resolved against dir.
func LoadFrom(dir string) (*Config, error) {
	v := newViper()
	v.SetConfigName(Name)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	if !filepath.IsAbs(cfg.Source.Dir) {
		cfg.Source.Dir = filepath.Join(dir, cfg.Source.Dir)
	}
	return &cfg, nil
}

// Write saves cfg as YAML at path
func Write(path string, cfg *Config) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	v := viper.New()
	v.Set("source.format", cfg.Source.Format)
	v.Set("source.dir", cfg.Source.Dir)
	v.Set("source.patterns", cfg.Source.Patterns)
	v.Set("output.prefix", cfg.Output.Prefix)
	v.Set("output.package", cfg.Output.Package)
	v.Set("output.file", cfg.Output.File)
	v.Set("policy.include_unexported", cfg.Policy.IncludeUnexported)
	v.Set("policy.overrides", cfg.Policy.Overrides)
	v.Set("policy.duplicates", cfg.Policy.Duplicates)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// CompilerOptions converts the configuration into compiler options
func (c *Config) CompilerOptions(log *zap.Logger) (compiler.Options, error) {
	overrides, err := compiler.ParseOverridePolicy(c.Policy.Overrides)
	if err != nil {
		return compiler.Options{}, err
	}
	duplicates, err := compiler.ParseDuplicatePolicy(c.Policy.Duplicates)
	if err != nil {
		return compiler.Options{}, err
	}
	return compiler.Options{
		Prefix:  c.Output.Prefix,
		Package: c.Output.Package,
		Policy: compiler.Policy{
			IncludeUnexported: c.Policy.IncludeUnexported,
			Overrides:         overrides,
			Duplicates:        duplicates,
		},
		Logger: log,
	}, nil
}

// WatchExtensions returns the file extensions that affect a build
func (c *Config) WatchExtensions() []string {
	if c.Source.Format == FormatHCL {
		return []string{".hcl"}
	}
	return []string{".go"}
}

// InProject checks if dir contains an esgraph configuration file
func InProject(dir string) bool {
	_, err := configFile(dir)
	return err == nil
}

// GetProjectRoot walks up from the working directory to the first directory
// with a configuration file.
func GetProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if InProject(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in an esgraph project (no %s found)", FileName)
		}
		dir = parent
	}
}

func configFile(dir string) (string, error) {
	for _, ext := range []string{".yml", ".yaml"} {
		path := filepath.Join(dir, Name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", os.ErrNotExist
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	switch cfg.Source.Format {
	case FormatGo, FormatHCL:
	default:
		return fmt.Errorf("source.format must be %q or %q, got: %q", FormatGo, FormatHCL, cfg.Source.Format)
	}

	// The prefix is glued to a type name, so it only needs to start one
	if cfg.Output.Prefix != "" && !strutil.IsIdentifier(cfg.Output.Prefix+"X") {
		return fmt.Errorf("output.prefix must be usable as an identifier prefix, got: %q", cfg.Output.Prefix)
	}
	if cfg.Output.Package != "" && !strutil.IsIdentifier(cfg.Output.Package) {
		return fmt.Errorf("output.package must be a valid identifier, got: %q", cfg.Output.Package)
	}

	if _, err := compiler.ParseOverridePolicy(cfg.Policy.Overrides); err != nil {
		return fmt.Errorf("policy.overrides: %w", err)
	}
	if _, err := compiler.ParseDuplicatePolicy(cfg.Policy.Duplicates); err != nil {
		return fmt.Errorf("policy.duplicates: %w", err)
	}
	return nil
}
