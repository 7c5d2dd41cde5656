package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexroute/internal/config"
	logpkg "github.com/kailas-cloud/lexroute/internal/logger"
	"github.com/kailas-cloud/lexroute/internal/version"
)

// options are the persistent flags shared by every command.
type options struct {
	env        string
	configPath string
	rulesDir   string
	jsonOut    bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "lexctl",
		Short:         "Operate the lexroute retrieval and version-routing engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(), "config environment (config/<env>.yaml)")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "explicit config file, overrides --env")
	root.PersistentFlags().StringVar(&opts.rulesDir, "rules", "", "rules directory, overrides corpus.rules_dir")
	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "print JSON instead of text")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging on stderr")

	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect rule tables",
	}
	rulesCmd.AddCommand(newRulesValidateCmd(opts))

	root.AddCommand(
		newIntentCmd(opts),
		newMatchCmd(opts),
		newSearchCmd(opts),
		newAskCmd(opts),
		rulesCmd,
		&cobra.Command{
			Use:   "version",
			Short: "Print build information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintln(cmd.OutOrStdout(), "lexctl", version.String())
			},
		},
	)
	return root
}

func (o *options) loadConfig() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, err = config.Load(o.env)
	}
	if err != nil {
		return config.Config{}, err
	}
	if o.rulesDir != "" {
		cfg.Corpus.RulesDir = o.rulesDir
	}
	return cfg, nil
}

func (o *options) logger() (*zap.Logger, error) {
	level := ""
	if o.verbose {
		level = "debug"
	}
	return logpkg.NewLogger("cli", level)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
