// Command imdpsim decides simulation problems of interval Markov decision
// processes and serves the LP solver used to decide them.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"imdpsim/config"
)

type options struct {
	configPath string
	logLevel   string
	noColor    bool

	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "imdpsim",
		Short: "Decides simulation between states of interval Markov decision processes",
		Long: `imdpsim decides whether the uncertain distributions of one state can be
matched by combinations of the distributions of another state, the check at
the heart of lumping interval Markov decision processes.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setupLogging(cmd)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored logs")

	rootCmd.AddCommand(
		newCheckCmd(opts),
		newViolateCmd(opts),
		newServeCmd(opts),
	)
	return rootCmd
}

func (o *options) setupLogging(cmd *cobra.Command) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(o.logLevel))); err != nil {
		return fmt.Errorf("invalid log level %q", o.logLevel)
	}
	w := cmd.ErrOrStderr()
	noColor := o.noColor
	if f, ok := w.(*os.File); !ok || (!isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())) {
		noColor = true
	}
	o.logger = slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
		NoColor:    noColor,
	}))
	slog.SetDefault(o.logger)
	return nil
}

func (o *options) loadConfig() (*config.Config, error) {
	if o.configPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("loaded configuration", "path", o.configPath)
	return cfg, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
