package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-reqdoc/pkg/loader"
	"github.com/goliatone/go-reqdoc/pkg/prompt"
)

type initFlags struct {
	yes   bool
	force bool
	title string
}

func newInitCmd(a *app) *cobra.Command {
	var flags initFlags
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a project file and a first document",
		Long: `Init asks for the project title, the first document and the features to
enable, then writes reqdoc.yaml and the document into the project folder.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.initProject(cmd, flags)
		},
	}
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "accept every default without asking")
	cmd.Flags().BoolVar(&flags.force, "force", false, "overwrite an existing project file")
	cmd.Flags().StringVar(&flags.title, "title", "", "project title (default is the folder name)")
	return cmd
}

func (a *app) initProject(cmd *cobra.Command, flags initFlags) error {
	ctx := cmd.Context()
	dir := a.cfg.Project.Dir
	out := cmd.OutOrStdout()

	if existing := projectFile(a.fs, dir); existing != "" && !flags.force {
		if flags.yes {
			return fmt.Errorf("%s already exists, use --force to overwrite it", existing)
		}
		overwrite, err := a.prompt.Confirm(ctx, prompt.ConfirmConfig{
			Message: fmt.Sprintf("%s already exists. Overwrite it?", existing),
		})
		if err != nil {
			return err
		}
		if !overwrite {
			fmt.Fprintln(out, "Nothing changed.")
			return nil
		}
	}

	title := flags.title
	if title == "" {
		title = folderTitle(dir)
	}
	answers := prompt.DefaultInitAnswers(title)
	if !flags.yes {
		var err error
		if answers, err = prompt.AskInit(ctx, a.prompt, answers); err != nil {
			if errors.Is(err, prompt.ErrAborted) {
				fmt.Fprintln(out, "Nothing changed.")
				return nil
			}
			return err
		}
	}
	if err := prompt.ValidateDocumentPath(answers.DocumentPath); err != nil {
		return err
	}

	projectCfg, doc := answers.Scaffold()
	l := a.loader()
	if err := l.SaveConfig(projectCfg); err != nil {
		return err
	}
	if err := l.Save(doc); err != nil {
		return err
	}
	a.logger.Info("project created", "dir", l.Root(), "document", doc.Path)
	fmt.Fprintf(out, "Created %s and %s in %s\n", projectFile(a.fs, dir), doc.Path, l.Root())
	return nil
}

func projectFile(fs afero.Fs, dir string) string {
	for _, name := range loader.ProjectFiles {
		if ok, _ := afero.Exists(fs, filepath.Join(dir, name)); ok {
			return name
		}
	}
	return ""
}

func folderTitle(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "Requirements"
	}
	base := filepath.Base(abs)
	if base == "/" || base == "." || base == "" {
		return "Requirements"
	}
	return base
}
