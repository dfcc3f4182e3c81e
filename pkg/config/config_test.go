package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-reqdoc/pkg/testsupport"
	"github.com/goliatone/go-reqdoc/pkg/trace"
	"github.com/goliatone/go-reqdoc/pkg/view"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reqdoc-server.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	v, err := NewViper("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
project:
  dir: ./requirements
  watch: true
server:
  addr: ":9090"
  shutdown_timeout: 2s
render:
  requirement_style: Table
  fields:
    requirement: [UID, STATEMENT]
cache:
  backend: redis
  ttl: 1m
  redis_addr: "cache:6379"
theme:
  name: acme
  variant: dark
  tokens:
    brand: "#123456"
  variants:
    dark:
      tokens:
        brand: "#000000"
logging:
  level: debug
`)
	v, err := NewViper(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "./requirements", cfg.Project.Dir)
	assert.True(t, cfg.Project.Watch)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 2*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout, "unset keys keep their default")
	assert.Equal(t, CacheRedis, cfg.Cache.Backend)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "cache:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, []string{"UID", "STATEMENT"}, cfg.Render.Fields["requirement"])

	opts, err := cfg.RenderOptions()
	require.NoError(t, err)
	assert.Equal(t, "table", opts.RequirementStyle)
	require.NotNil(t, opts.Theme)
	assert.Equal(t, "acme", opts.Theme.Theme)
	assert.Equal(t, "dark", opts.Theme.Variant)
	assert.Equal(t, "#000000", opts.Theme.CSSVars["--brand"])
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("REQDOC_SERVER_ADDR", "0.0.0.0:7000")
	t.Setenv("REQDOC_CACHE_BACKEND", "none")

	v, err := NewViper("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:7000", cfg.Server.Addr)
	assert.Equal(t, CacheNone, cfg.Cache.Backend)
}

func TestNewViperMissingExplicitFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"empty addr":         func(c *Config) { c.Server.Addr = "" },
		"unknown backend":    func(c *Config) { c.Cache.Backend = "memcached" },
		"redis without addr": func(c *Config) { c.Cache.Backend = CacheRedis; c.Cache.RedisAddr = "" },
		"negative ttl":       func(c *Config) { c.Cache.TTL = -time.Second },
		"unknown style":      func(c *Config) { c.Render.RequirementStyle = "fancy" },
		"unknown level":      func(c *Config) { c.Logging.Level = "loud" },
		"undeclared variant": func(c *Config) { c.Theme = ThemeConfig{Name: "acme", Variant: "dark"} },
		"empty project dir":  func(c *Config) { c.Project.Dir = " " },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestThemeWithoutNameResolvesToNil(t *testing.T) {
	resolved, err := ThemeConfig{}.Resolve()
	require.NoError(t, err)
	assert.Nil(t, resolved)
	assert.Nil(t, ThemeConfig{}.Manifest())
}

func TestViewOptions(t *testing.T) {
	cfg := Default()
	cfg.Render.Fields = map[string][]string{"requirement": {"UID"}}
	cfg.Server.LinkBase = "/docs"

	project := testsupport.SampleProject(t)
	idx, err := trace.Build(project)
	require.NoError(t, err)
	obj, err := view.New(project, idx, cfg.ViewOptions("1.2.3")...)
	require.NoError(t, err)

	assert.Equal(t, "1.2.3", obj.Version())
	assert.True(t, obj.IncludesField("REQUIREMENT", "UID"))
	assert.False(t, obj.IncludesField("REQUIREMENT", "STATEMENT"))
	assert.Equal(t, "/_static/main.css", obj.RenderStaticURL("main.css"))
	assert.Equal(t, "/docs/?a=SYS-1", obj.RenderStableLink(project.Documents[0].Nodes[0].Children[1]))
}
