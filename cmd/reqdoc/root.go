package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/goliatone/go-reqdoc/internal/logging"
	"github.com/goliatone/go-reqdoc/pkg/config"
	"github.com/goliatone/go-reqdoc/pkg/loader"
	"github.com/goliatone/go-reqdoc/pkg/prompt"
)

// app carries what every subcommand shares. Tests swap fs and prompt.
type app struct {
	cfgFile string
	viper   *viper.Viper
	cfg     *config.Config
	logger  *slog.Logger
	prompt  prompt.Driver
	fs      afero.Fs
}

func newApp() *app {
	return &app{
		prompt: prompt.Survey(),
		fs:     afero.NewOsFs(),
		logger: logging.NewNop(),
	}
}

// flagKeys maps command flags onto config keys so that a flag set on the
// command line wins over the config file and the environment.
var flagKeys = map[string]string{
	"project":   "project.dir",
	"addr":      "server.addr",
	"watch":     "project.watch",
	"persist":   "project.persist",
	"link-base": "server.link_base",
	"style":     "render.requirement_style",
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "reqdoc",
		Short: "Browse and edit requirements documents",
		Long: `reqdoc renders requirements projects as linked HTML pages, serves them
with in-place editing and exports them as static sites or Markdown.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.configure(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default is reqdoc-server.yaml in . or "+config.Dir()+")")
	root.PersistentFlags().StringP("project", "p", ".", "folder holding reqdoc.yaml")

	root.AddCommand(
		newServeCmd(a),
		newExportCmd(a),
		newShowCmd(a),
		newInitCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) configure(cmd *cobra.Command) error {
	v, err := config.NewViper(a.cfgFile)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	a.viper = v
	a.cfg = cfg
	a.logger = logging.NewWithOptions(logging.Options{
		Level:  level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	})
	return nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

func (a *app) loader() *loader.Loader {
	return loader.New(a.fs, a.cfg.Project.Dir, loader.WithLogger(a.logger))
}
