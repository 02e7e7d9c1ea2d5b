package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/funcreg/pkg/funcreg/config"
)

// globalOptions holds the persistent flags.
type globalOptions struct {
	configPath string
	logFormat  string
	verbosity  int
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "funcreg",
		Short: "Serve and inspect named handler registries",
		Long: `funcreg loads the handler modules listed in its settings file, serves
request handlers over HTTP and records manifests of what is registered.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "settings file (.yaml, .json or .toml)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	root.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", "increase verbosity (-v INFO, -vv DEBUG)")

	root.AddCommand(
		newServeCmd(opts),
		newSettingsCmd(opts),
		newModulesCmd(),
		newManifestCmd(opts),
		newSnapshotCmd(opts),
		newCatalogCmd(),
	)
	return root
}

// newLogger builds the slog logger selected by the flags.
func newLogger(w io.Writer, format string, verbosity int) (*slog.Logger, error) {
	level := slog.LevelWarn
	switch {
	case verbosity >= 2:
		level = slog.LevelDebug
	case verbosity == 1:
		level = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	switch format {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// load reads settings and builds the logger for a command.
func (o *globalOptions) load(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	logger, err := newLogger(cmd.ErrOrStderr(), o.logFormat, o.verbosity)
	if err != nil {
		return config.Config{}, nil, err
	}
	settings, err := config.LoadSettings(o.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	return settings, logger, nil
}

func newSettingsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Print the effective settings as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, _, err := opts.load(cmd)
			if err != nil {
				return err
			}
			out, err := config.ToYAML(settings)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
