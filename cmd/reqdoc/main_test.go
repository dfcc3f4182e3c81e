package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-reqdoc/pkg/cache"
	"github.com/goliatone/go-reqdoc/pkg/config"
	"github.com/goliatone/go-reqdoc/pkg/loader"
	"github.com/goliatone/go-reqdoc/pkg/model"
	"github.com/goliatone/go-reqdoc/pkg/prompt"
)

const projectDir = "/proj"

// scriptedDriver answers every prompt with its default unless inputs names
// the message.
type scriptedDriver struct {
	inputs   map[string]string
	confirm  bool
	asked    []string
	confirms int
}

func (d *scriptedDriver) Input(_ context.Context, cfg prompt.InputConfig) (string, error) {
	d.asked = append(d.asked, cfg.Message)
	if v, ok := d.inputs[cfg.Message]; ok {
		return v, nil
	}
	return cfg.Default, nil
}

func (d *scriptedDriver) Confirm(context.Context, prompt.ConfirmConfig) (bool, error) {
	d.confirms++
	return d.confirm, nil
}

func (d *scriptedDriver) Select(_ context.Context, cfg prompt.SelectConfig) (int, error) {
	return cfg.DefaultIndex, nil
}

func (d *scriptedDriver) MultiSelect(_ context.Context, cfg prompt.SelectConfig) ([]int, error) {
	return cfg.Defaults, nil
}

func newTestApp(t *testing.T) *app {
	t.Helper()
	a := newApp()
	a.fs = afero.NewMemMapFs()
	a.prompt = &scriptedDriver{}
	return a
}

func executeCommand(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func initProject(t *testing.T, a *app) {
	t.Helper()
	_, err := executeCommand(t, a, "init", "--yes", "-p", projectDir)
	require.NoError(t, err)
}

func TestVersion(t *testing.T) {
	out, err := executeCommand(t, newTestApp(t), "version")
	require.NoError(t, err)
	assert.Equal(t, "reqdoc version dev\n", out)
}

func TestInitWithDefaults(t *testing.T) {
	a := newTestApp(t)
	out, err := executeCommand(t, a, "init", "--yes", "-p", projectDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Created reqdoc.yaml and docs/requirements.sdoc.yaml")

	project, err := loader.New(a.fs, projectDir).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "proj", project.Config.Title)
	assert.Equal(t, []string{model.FeatureMatrix}, project.Config.Features)
	require.Len(t, project.Documents, 1)
	assert.Equal(t, "Requirements", project.Documents[0].Title)
	assert.Equal(t, model.StyleTable, project.Documents[0].Config.RequirementStyle)

	_, err = executeCommand(t, a, "init", "--yes", "-p", projectDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = executeCommand(t, a, "init", "--yes", "--force", "--title", "Renamed", "-p", projectDir)
	require.NoError(t, err)
	project, err = loader.New(a.fs, projectDir).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Renamed", project.Config.Title)
}

func TestInitInteractive(t *testing.T) {
	a := newTestApp(t)
	driver := &scriptedDriver{inputs: map[string]string{
		"Project title":          "Flight Software",
		"Document file":          "reqs/flight.sdoc.yaml",
		"Requirement UID prefix": "FSW-",
	}}
	a.prompt = driver

	_, err := executeCommand(t, a, "init", "-p", projectDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"Project title", "First document title", "Document file", "Requirement UID prefix"}, driver.asked)

	project, err := loader.New(a.fs, projectDir).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Flight Software", project.Config.Title)
	require.Len(t, project.Documents, 1)
	assert.Equal(t, "reqs/flight.sdoc.yaml", project.Documents[0].Path)

	var uids []string
	project.Documents[0].Walk(func(n *model.Node) bool {
		if n.UID != "" {
			uids = append(uids, n.UID)
		}
		return true
	})
	assert.Equal(t, []string{"FSW-1"}, uids)
}

func TestInitDeclinedOverwrite(t *testing.T) {
	a := newTestApp(t)
	initProject(t, a)

	driver := &scriptedDriver{inputs: map[string]string{"Project title": "Other"}}
	a.prompt = driver
	out, err := executeCommand(t, a, "init", "-p", projectDir)
	require.NoError(t, err)
	assert.Equal(t, 1, driver.confirms)
	assert.Empty(t, driver.asked)
	assert.Contains(t, out, "Nothing changed.")

	project, err := loader.New(a.fs, projectDir).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "proj", project.Config.Title)
}

func TestExportHTML(t *testing.T) {
	a := newTestApp(t)
	initProject(t, a)

	out, err := executeCommand(t, a, "export", "-p", projectDir, "-o", "/site")
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 6 files to /site")

	for _, rel := range []string{
		"index.html",
		"project_tree.html",
		"docs/requirements.html",
		"traceability_matrix.html",
		"_static/reqdoc.css",
		"_static/reqdoc.js",
	} {
		ok, err := afero.Exists(a.fs, filepath.Join("/site", rel))
		require.NoError(t, err)
		assert.True(t, ok, "missing %s", rel)
	}
	page, err := afero.ReadFile(a.fs, "/site/docs/requirements.html")
	require.NoError(t, err)
	assert.Contains(t, string(page), "The system shall do something useful.")
}

func TestExportMarkdownWithPreset(t *testing.T) {
	a := newTestApp(t)
	initProject(t, a)
	require.NoError(t, afero.WriteFile(a.fs, "/presets/release.yaml", []byte("title: Release\nfeatures:\n  disable: [TRACEABILITY_MATRIX_SCREEN]\n"), 0o644))

	out, err := executeCommand(t, a, "export", "-p", projectDir, "-o", "/md", "--format", "markdown", "--preset", "/presets/release.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 files to /md")

	data, err := afero.ReadFile(a.fs, "/md/docs/requirements.md")
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Requirements\n")
	ok, _ := afero.Exists(a.fs, "/md/traceability_matrix.md")
	assert.False(t, ok)
}

func TestExportErrors(t *testing.T) {
	a := newTestApp(t)
	initProject(t, a)

	_, err := executeCommand(t, a, "export", "-p", projectDir, "--format", "pdf")
	assert.ErrorContains(t, err, "unknown format")

	_, err = executeCommand(t, a, "export", "-p", projectDir, "--preset", "/missing.yaml")
	assert.ErrorContains(t, err, "read preset")

	_, err = executeCommand(t, a, "export", "-p", "/nowhere")
	assert.Error(t, err)
}

func TestShow(t *testing.T) {
	a := newTestApp(t)
	initProject(t, a)

	raw, err := executeCommand(t, a, "show", "-p", projectDir, "--raw")
	require.NoError(t, err)
	assert.Contains(t, raw, "# Requirements\n")
	assert.Contains(t, raw, "First requirement")

	plain, err := executeCommand(t, a, "show", "docs/requirements.sdoc.yaml", "-p", projectDir, "--plain")
	require.NoError(t, err)
	assert.Contains(t, plain, "First requirement")

	node, err := executeCommand(t, a, "show", "-p", projectDir, "--node", "REQ-1", "--raw")
	require.NoError(t, err)
	assert.Contains(t, node, "The system shall do something useful.")
	assert.NotContains(t, node, "Describe the scope")

	_, err = executeCommand(t, a, "show", "-p", projectDir, "--node", "REQ-404")
	assert.ErrorContains(t, err, "not found")

	_, err = executeCommand(t, a, "show", "-p", projectDir, "--screen", "project_tree")
	assert.Error(t, err)
}

func TestConfigErrors(t *testing.T) {
	_, err := executeCommand(t, newTestApp(t), "version", "--config", "/does/not/exist.yaml")
	assert.Error(t, err)

	t.Setenv("REQDOC_CACHE_BACKEND", "disk")
	_, err = executeCommand(t, newTestApp(t), "version")
	assert.ErrorContains(t, err, "cache.backend")
}

func TestFlagsOverrideConfig(t *testing.T) {
	a := newTestApp(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("REQDOC_SERVER_ADDR", "127.0.0.1:9000")

	cmd := newRootCmd(a)
	serve, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)
	require.NoError(t, serve.ParseFlags([]string{"--addr", "127.0.0.1:9100", "--watch", "-p", projectDir}))
	require.NoError(t, a.configure(serve))

	assert.Equal(t, "127.0.0.1:9100", a.cfg.Server.Addr)
	assert.True(t, a.cfg.Project.Watch)
	assert.False(t, a.cfg.Project.Persist)
	assert.Equal(t, projectDir, a.cfg.Project.Dir)
}

func TestNewCache(t *testing.T) {
	ctx := context.Background()
	defaults := config.Default().Cache

	none := defaults
	none.Backend = config.CacheNone
	c, err := newCache(ctx, none)
	require.NoError(t, err)
	assert.IsType(t, cache.Nop{}, c)

	c, err = newCache(ctx, defaults)
	require.NoError(t, err)
	assert.IsType(t, &cache.Memory{}, c)

	mr := miniredis.RunT(t)
	redisCfg := defaults
	redisCfg.Backend = config.CacheRedis
	redisCfg.RedisAddr = mr.Addr()
	c, err = newCache(ctx, redisCfg)
	require.NoError(t, err)
	assert.IsType(t, &cache.Redis{}, c)
	require.NoError(t, c.Close())

	redisCfg.RedisAddr = "127.0.0.1:1"
	_, err = newCache(ctx, redisCfg)
	assert.Error(t, err)

	unknown := defaults
	unknown.Backend = "disk"
	_, err = newCache(ctx, unknown)
	assert.Error(t, err)
}

func TestFolderTitle(t *testing.T) {
	assert.Equal(t, "proj", folderTitle("/proj"))
	assert.Equal(t, "Requirements", folderTitle("/"))
	assert.True(t, strings.TrimSpace(folderTitle(".")) != "")
}
