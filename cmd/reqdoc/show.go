package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-reqdoc/pkg/model"
	"github.com/goliatone/go-reqdoc/pkg/orchestrator"
	"github.com/goliatone/go-reqdoc/pkg/render"
	"github.com/goliatone/go-reqdoc/pkg/renderers/markdown"
)

type showFlags struct {
	screen  string
	node    string
	width   int
	plain   bool
	raw     bool
	presets []string
}

func newShowCmd(a *app) *cobra.Command {
	var flags showFlags
	cmd := &cobra.Command{
		Use:   "show [document]",
		Short: "Print a screen of the project in the terminal",
		Long: `Show renders one screen as Markdown and styles it for the terminal. The
document is named by its path, page link or mid and defaults to the first
document of the project.`,
		Example: `  reqdoc show
  reqdoc show requirements/system.sdoc.yaml --screen toc
  reqdoc show --screen traceability_matrix --plain
  reqdoc show --node SYS-2`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var ref string
			if len(args) == 1 {
				ref = args[0]
			}
			return a.show(cmd, ref, flags)
		},
	}
	cmd.Flags().StringVar(&flags.screen, "screen", string(render.ScreenDocument), "document, toc, node, traceability_matrix, source_coverage or changelog")
	cmd.Flags().StringVar(&flags.node, "node", "", "UID or mid of the node to show; implies --screen node")
	cmd.Flags().IntVar(&flags.width, "width", markdown.DefaultWidth, "word-wrap column")
	cmd.Flags().BoolVar(&flags.plain, "plain", false, "no colours")
	cmd.Flags().BoolVar(&flags.raw, "raw", false, "print the Markdown source")
	cmd.Flags().StringArrayVar(&flags.presets, "preset", nil, "preset file applied before rendering (repeatable)")
	cmd.Flags().String("style", "", "requirement style applied to every document")
	return cmd
}

func (a *app) show(cmd *cobra.Command, ref string, flags showFlags) error {
	orch, err := a.orchestrator(flags.presets, "", cmd)
	if err != nil {
		return err
	}
	project, err := orch.Project(cmd.Context(), nil)
	if err != nil {
		return err
	}

	req := orchestrator.Request{
		Project:  project,
		Screen:   render.Screen(flags.screen),
		Renderer: "markdown",
	}
	if flags.node != "" {
		node, ok := findNode(project, flags.node)
		if !ok {
			return fmt.Errorf("node %q not found", flags.node)
		}
		req.Screen = render.ScreenNode
		req.Namespace = render.Namespace{"mid": node.MID}
	}
	if needsDocument(req.Screen) {
		switch {
		case ref != "":
			req.Document = ref
		case len(project.Documents) == 0:
			return errors.New("the project has no documents")
		default:
			req.Document = project.Documents[0].Path
		}
	}
	if req.RenderOptions, err = a.cfg.RenderOptions(); err != nil {
		return err
	}

	out, err := orch.Generate(cmd.Context(), req)
	if err != nil {
		return err
	}
	text := string(out)
	switch {
	case flags.raw:
	case flags.plain:
		text, err = markdown.Plain(text, flags.width)
	default:
		text, err = markdown.Terminal(text, flags.width)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), text)
	return err
}

func needsDocument(screen render.Screen) bool {
	switch screen {
	case render.ScreenDocument, render.ScreenDocumentContent, render.ScreenTOC:
		return true
	}
	return false
}

// findNode matches ref against node UIDs first and mids second.
func findNode(project *model.Project, ref string) (*model.Node, bool) {
	var found *model.Node
	for _, doc := range project.Documents {
		doc.Walk(func(n *model.Node) bool {
			if found == nil && n.UID == ref {
				found = n
			}
			return found == nil
		})
	}
	if found != nil {
		return found, true
	}
	return project.FindNode(ref)
}
