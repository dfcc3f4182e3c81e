// Package config holds the settings of the reqdoc CLI and server. Values come
// from defaults, an optional YAML config file and REQDOC_* environment
// variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"
	"github.com/spf13/viper"

	"github.com/goliatone/go-reqdoc/internal/logging"
	"github.com/goliatone/go-reqdoc/pkg/model"
	"github.com/goliatone/go-reqdoc/pkg/render"
	"github.com/goliatone/go-reqdoc/pkg/view"
)

// EnvPrefix prefixes every environment override, e.g. REQDOC_SERVER_ADDR.
const EnvPrefix = "REQDOC"

// Config is the complete reqdoc configuration.
type Config struct {
	Project ProjectConfig `mapstructure:"project"`
	Server  ServerConfig  `mapstructure:"server"`
	Render  RenderConfig  `mapstructure:"render"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Theme   ThemeConfig   `mapstructure:"theme"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ProjectConfig locates the requirements project.
type ProjectConfig struct {
	// Dir is the folder holding reqdoc.yaml.
	Dir string `mapstructure:"dir"`
	// Watch reloads the project when its files change.
	Watch bool `mapstructure:"watch"`
	// Persist writes edits made through the server back to the document files.
	Persist bool `mapstructure:"persist"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	LinkBase        string        `mapstructure:"link_base"`
	StaticPrefix    string        `mapstructure:"static_prefix"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// RenderConfig holds presentation defaults applied to every request.
type RenderConfig struct {
	// RequirementStyle overrides the per-document style when set.
	RequirementStyle string `mapstructure:"requirement_style"`
	Deeptrace        bool   `mapstructure:"deeptrace"`
	ShowFragments    bool   `mapstructure:"show_fragments"`
	// TemplatesDir holds template overrides searched before the built-in set.
	TemplatesDir string `mapstructure:"templates_dir"`
	// Fields limits the fields shown per element tag.
	Fields map[string][]string `mapstructure:"fields"`
}

// CacheConfig selects the rendered-page cache.
type CacheConfig struct {
	// Backend is one of "none", "memory" or "redis".
	Backend       string        `mapstructure:"backend"`
	TTL           time.Duration `mapstructure:"ttl"`
	MaxEntries    int           `mapstructure:"max_entries"`
	Prefix        string        `mapstructure:"prefix"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
}

// ThemeConfig describes a theme manifest inline. An empty Name keeps the
// built-in look.
type ThemeConfig struct {
	Name        string                  `mapstructure:"name"`
	Variant     string                  `mapstructure:"variant"`
	Tokens      map[string]string       `mapstructure:"tokens"`
	Templates   map[string]string       `mapstructure:"templates"`
	AssetPrefix string                  `mapstructure:"asset_prefix"`
	Assets      map[string]string       `mapstructure:"assets"`
	Variants    map[string]ThemeVariant `mapstructure:"variants"`
}

// ThemeVariant overrides parts of the theme for one variant.
type ThemeVariant struct {
	Tokens      map[string]string `mapstructure:"tokens"`
	Templates   map[string]string `mapstructure:"templates"`
	AssetPrefix string            `mapstructure:"asset_prefix"`
	Assets      map[string]string `mapstructure:"assets"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Project: ProjectConfig{
			Dir: ".",
		},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8001",
			LinkBase:        "/",
			StaticPrefix:    "/_static",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Cache: CacheConfig{
			Backend:    CacheMemory,
			TTL:        10 * time.Minute,
			MaxEntries: 512,
			Prefix:     "reqdoc:page:",
			RedisAddr:  "127.0.0.1:6379",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// SetDefaults registers every default on v so that config files and the
// environment only need to name the keys they change.
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("project.dir", defaults.Project.Dir)
	v.SetDefault("project.watch", defaults.Project.Watch)
	v.SetDefault("project.persist", defaults.Project.Persist)

	v.SetDefault("server.addr", defaults.Server.Addr)
	v.SetDefault("server.link_base", defaults.Server.LinkBase)
	v.SetDefault("server.static_prefix", defaults.Server.StaticPrefix)
	v.SetDefault("server.read_timeout", defaults.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", defaults.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", defaults.Server.ShutdownTimeout)

	v.SetDefault("render.requirement_style", defaults.Render.RequirementStyle)
	v.SetDefault("render.deeptrace", defaults.Render.Deeptrace)
	v.SetDefault("render.show_fragments", defaults.Render.ShowFragments)
	v.SetDefault("render.templates_dir", defaults.Render.TemplatesDir)

	v.SetDefault("cache.backend", defaults.Cache.Backend)
	v.SetDefault("cache.ttl", defaults.Cache.TTL)
	v.SetDefault("cache.max_entries", defaults.Cache.MaxEntries)
	v.SetDefault("cache.prefix", defaults.Cache.Prefix)
	v.SetDefault("cache.redis_addr", defaults.Cache.RedisAddr)
	v.SetDefault("cache.redis_password", defaults.Cache.RedisPassword)
	v.SetDefault("cache.redis_db", defaults.Cache.RedisDB)

	v.SetDefault("theme.name", defaults.Theme.Name)
	v.SetDefault("theme.variant", defaults.Theme.Variant)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)

	v.SetDefault("metrics.enabled", defaults.Metrics.Enabled)
	v.SetDefault("metrics.path", defaults.Metrics.Path)
}

// NewViper returns a viper instance with defaults and environment overrides
// applied. When cfgFile is empty the config file is searched as
// reqdoc-server.yaml in the working directory and the user config folder; a
// missing file is not an error.
func NewViper(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("reqdoc-server")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(Dir())
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}
	return v, nil
}

// Load unmarshals v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late, at first request.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Project.Dir) == "" {
		errs = append(errs, errors.New("project.dir is required"))
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	switch c.Cache.Backend {
	case CacheNone, CacheMemory, CacheRedis:
	default:
		errs = append(errs, fmt.Errorf("cache.backend %q must be one of none, memory, redis", c.Cache.Backend))
	}
	if c.Cache.Backend == CacheRedis && strings.TrimSpace(c.Cache.RedisAddr) == "" {
		errs = append(errs, errors.New("cache.redis_addr is required for the redis backend"))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, errors.New("cache.ttl must not be negative"))
	}
	switch strings.ToLower(c.Render.RequirementStyle) {
	case "", model.StyleInline, model.StyleNarrative, model.StylePlain, model.StyleTable, model.StyleZebra:
	default:
		errs = append(errs, fmt.Errorf("render.requirement_style %q is not a known style", c.Render.RequirementStyle))
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Theme.Variant != "" && c.Theme.Name != "" {
		if _, ok := c.Theme.Variants[c.Theme.Variant]; !ok {
			errs = append(errs, fmt.Errorf("theme.variant %q is not defined under theme.variants", c.Theme.Variant))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: invalid: %w", errors.Join(errs...))
	}
	return nil
}

// Manifest converts the inline theme into a go-theme manifest, or nil when
// no theme is configured.
func (t ThemeConfig) Manifest() *theme.Manifest {
	if strings.TrimSpace(t.Name) == "" {
		return nil
	}
	manifest := &theme.Manifest{
		Name:      t.Name,
		Tokens:    t.Tokens,
		Templates: t.Templates,
		Assets:    theme.Assets{Prefix: t.AssetPrefix, Files: t.Assets},
	}
	if len(t.Variants) > 0 {
		manifest.Variants = make(map[string]theme.Variant, len(t.Variants))
		for name, v := range t.Variants {
			manifest.Variants[name] = theme.Variant{
				Tokens:    v.Tokens,
				Templates: v.Templates,
				Assets:    theme.Assets{Prefix: v.AssetPrefix, Files: v.Assets},
			}
		}
	}
	return manifest
}

// Resolve projects the configured theme for the renderers. It returns nil
// without error when no theme is configured.
func (t ThemeConfig) Resolve() (*render.ThemeConfig, error) {
	manifest := t.Manifest()
	if manifest == nil {
		return nil, nil
	}
	selector := render.NewManifestSelector(manifest.Name, t.Variant, manifest)
	return render.ResolveTheme(selector, "", "", nil)
}

// RenderOptions returns the per-request options derived from the config.
func (c *Config) RenderOptions() (render.RenderOptions, error) {
	resolved, err := c.Theme.Resolve()
	if err != nil {
		return render.RenderOptions{}, fmt.Errorf("config: theme: %w", err)
	}
	return render.RenderOptions{
		Theme:            resolved,
		RequirementStyle: strings.ToLower(c.Render.RequirementStyle),
	}, nil
}

// ViewOptions returns the view options shared by every request.
func (c *Config) ViewOptions(version string) []view.Option {
	opts := []view.Option{
		view.WithLinkBase(c.Server.LinkBase),
		view.WithDeeptrace(c.Render.Deeptrace),
		view.WithFragments(c.Render.ShowFragments),
		view.WithVersion(version),
	}
	if c.Server.StaticPrefix != "" {
		opts = append(opts, view.WithStaticPrefix(c.Server.StaticPrefix))
	}
	if len(c.Render.Fields) > 0 {
		filter := make(view.FieldFilter, len(c.Render.Fields))
		for tag, fields := range c.Render.Fields {
			filter[strings.ToUpper(tag)] = fields
		}
		opts = append(opts, view.WithFieldFilter(filter))
	}
	return opts
}

// Dir returns the user config folder for reqdoc.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "reqdoc")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".reqdoc"
	}
	return filepath.Join(home, ".config", "reqdoc")
}
