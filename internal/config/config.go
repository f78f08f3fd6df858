// Package config holds periscope's run configuration.
//
// Values come from, in increasing precedence: built-in defaults, an optional
// YAML file (.periscope.yaml in the working directory, or --config), the
// PERISCOPE_* environment, and command-line flags.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"periscope/internal/source"
)

// Config is the resolved configuration for one run.
type Config struct {
	// Dir is the top-level directory. Include paths resolve against it.
	Dir string `mapstructure:"dir"`
	// PlatformsDir is scanned for description files, relative to Dir.
	PlatformsDir string `mapstructure:"platforms_dir"`
	// Pattern selects description files by base name (filepath.Match).
	Pattern string `mapstructure:"pattern"`
	// Deny lists rules for files that must not be scanned. See IsDenied.
	Deny []string `mapstructure:"deny"`

	// SourcesDir is searched for peripheral implementations, relative to Dir.
	SourcesDir string `mapstructure:"sources_dir"`
	SourceExt  string `mapstructure:"source_ext"`
	SourceURI  string `mapstructure:"source_uri"`

	// CategoriesFile optionally extends the built-in category table.
	CategoriesFile string `mapstructure:"categories_file"`

	Verbose bool `mapstructure:"verbose"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Dir:          ".",
		PlatformsDir: "platforms",
		Pattern:      "*.repl",
		Deny:         []string{"fomu_led"},
		SourcesDir:   filepath.Join("src", "Infrastructure"),
		SourceExt:    ".cs",
		SourceURI:    source.DefaultBaseURI,
	}
}

// SetDefaults registers Defaults on v.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("dir", d.Dir)
	v.SetDefault("platforms_dir", d.PlatformsDir)
	v.SetDefault("pattern", d.Pattern)
	v.SetDefault("deny", d.Deny)
	v.SetDefault("sources_dir", d.SourcesDir)
	v.SetDefault("source_ext", d.SourceExt)
	v.SetDefault("source_uri", d.SourceURI)
	v.SetDefault("categories_file", "")
	v.SetDefault("verbose", false)
}

// Load reads the config file (explicit path, or .periscope.yaml in the
// working directory when present) into v and returns the merged Config. A
// missing default config file is not an error.
func Load(v *viper.Viper, file string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix("PERISCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(".periscope")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || file != "" {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}

// PlatformsRoot is the directory walked for description files.
func (c Config) PlatformsRoot() string { return filepath.Join(c.Dir, c.PlatformsDir) }

// SourcesRoot is the directory searched for implementation files.
func (c Config) SourcesRoot() string { return filepath.Join(c.Dir, c.SourcesDir) }

// ---------------------------------------------------------------------------
// Deny rules
// ---------------------------------------------------------------------------

// IsDenied reports whether relPath (forward-slash, relative to the platforms
// root) matches any deny rule. A rule containing a glob character or a slash
// is a path pattern; any other rule matches when the file's base name
// contains it.
func (c Config) IsDenied(relPath string) bool {
	for _, rule := range c.Deny {
		if matchDenyRule(parseDenyRule(rule), relPath) {
			return true
		}
	}
	return false
}

// parseDenyRule strips a leading "./" from a rule.
//
//	"./boards/**" → "boards/**"
//	"fomu_led"    → "fomu_led"
func parseDenyRule(rule string) string {
	return strings.TrimPrefix(strings.TrimSpace(rule), "./")
}

// matchDenyRule reports whether path matches a deny rule.
//
// "prefix/**" matches the prefix directory itself and every path beneath it.
// Other patterns with glob characters or slashes use filepath.Match semantics
// (single * does not cross /). Plain words are base-name substrings.
func matchDenyRule(rule, path string) bool {
	if rule == "" {
		return false
	}
	if strings.HasSuffix(rule, "/**") {
		prefix := strings.TrimSuffix(rule, "/**")
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	if strings.ContainsAny(rule, "*?[/") {
		matched, _ := filepath.Match(rule, path)
		return matched
	}
	return strings.Contains(pathBase(path), rule)
}

func pathBase(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}
