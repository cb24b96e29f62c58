package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/wudi/coursekit/config"
	"github.com/wudi/coursekit/observability"
)

type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger observability.Logger
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "coursekit",
		Short:         "Chunk course PDFs for retrieval",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (overrides config)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Log format: console or json (overrides config)")

	root.AddCommand(newIngestCmd(opts), newProbeCmd(opts), newVersionCmd())
	return root
}

// load reads .env, the config file and the environment, then builds the
// logger. Flags win over both.
func (o *globalOptions) load(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = o.logFormat
	}
	o.cfg = cfg
	o.logger = observability.NewConsoleLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	return nil
}
