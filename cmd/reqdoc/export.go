package main

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-reqdoc/pkg/loader"
	"github.com/goliatone/go-reqdoc/pkg/orchestrator"
	"github.com/goliatone/go-reqdoc/pkg/render"
	"github.com/goliatone/go-reqdoc/pkg/renderers/markdown"
	"github.com/goliatone/go-reqdoc/pkg/renderers/web"
)

type exportFlags struct {
	output   string
	format   string
	presets  []string
	baseline string
}

func newExportCmd(a *app) *cobra.Command {
	var flags exportFlags
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every screen of the project to a folder",
		Example: `  reqdoc export -o site
  reqdoc export --format markdown -o docs/md
  reqdoc export --preset release.yaml --baseline ../v1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.export(cmd, flags)
		},
	}
	cmd.Flags().StringVarP(&flags.output, "output", "o", "output", "output folder")
	cmd.Flags().StringVar(&flags.format, "format", "html", "output format: html or markdown")
	cmd.Flags().StringArrayVar(&flags.presets, "preset", nil, "preset file applied before rendering (repeatable)")
	cmd.Flags().StringVar(&flags.baseline, "baseline", "", "project folder the diff and changelog compare against")
	cmd.Flags().String("link-base", "", "prefix of document links (default from config)")
	cmd.Flags().String("style", "", "requirement style applied to every document")
	return cmd
}

func (a *app) export(cmd *cobra.Command, flags exportFlags) error {
	format := strings.ToLower(strings.TrimSpace(flags.format))
	if format != "html" && format != "markdown" {
		return fmt.Errorf("unknown format %q, want html or markdown", flags.format)
	}

	orch, err := a.orchestrator(flags.presets, flags.baseline, cmd)
	if err != nil {
		return err
	}
	renderOpts, err := a.cfg.RenderOptions()
	if err != nil {
		return err
	}

	written, err := orch.Export(cmd.Context(), orchestrator.ExportRequest{
		Renderer:      format,
		Fs:            a.fs,
		Dir:           flags.output,
		RenderOptions: renderOpts,
	})
	for _, rel := range written {
		a.logger.Debug("wrote page", "path", rel)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d files to %s\n", len(written), flags.output)
	return nil
}

// orchestrator builds the pipeline shared by export and show.
func (a *app) orchestrator(presets []string, baselineDir string, cmd *cobra.Command) (*orchestrator.Orchestrator, error) {
	var webOpts []web.Option
	if a.cfg.Render.TemplatesDir != "" {
		webOpts = append(webOpts, web.WithTemplatesDir(a.cfg.Render.TemplatesDir))
	}
	html, err := web.New(webOpts...)
	if err != nil {
		return nil, err
	}
	registry := render.NewRegistry()
	registry.MustRegister(html)
	registry.MustRegister(markdown.New())

	opts := []orchestrator.Option{
		orchestrator.WithLoader(a.loader()),
		orchestrator.WithRegistry(registry),
		orchestrator.WithViewOptions(a.cfg.ViewOptions(version)...),
	}
	for _, path := range presets {
		data, err := afero.ReadFile(a.fs, path)
		if err != nil {
			return nil, fmt.Errorf("read preset: %w", err)
		}
		preset, err := orchestrator.NewPresetTransformer(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		opts = append(opts, orchestrator.WithTransformers(preset))
	}
	if baselineDir != "" {
		baseline, err := loader.New(a.fs, baselineDir, loader.WithLogger(a.logger)).Load(cmd.Context())
		if err != nil {
			return nil, fmt.Errorf("load baseline: %w", err)
		}
		opts = append(opts, orchestrator.WithBaseline(baseline))
	}
	return orchestrator.New(opts...), nil
}
