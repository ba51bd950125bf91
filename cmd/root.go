// Copyright © 2018 The ELPS authors

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ceylon-spec",
	Short: "Ceylon type checker front end",
	Long: `ceylon-spec checks Ceylon source trees.  It binds every declaration,
resolves module imports and type references, and type checks expressions,
reporting what it finds with annotated source snippets.

Getting started:
  ceylon-spec check                  Check the source tree in the current directory
  ceylon-spec check --json src       Report diagnostics as JSON
  ceylon-spec symbols src            List the declarations of a tree
  ceylon-spec repl                   Show the type of expressions interactively
  ceylon-spec lsp                    Serve editors over the Language Server Protocol

Source trees:
  Each directory below a root is a package named by its relative path.  A
  directory holding a module.ceylon descriptor roots a module owning the
  packages below it.  The ceylon.language module is always available.

Configuration:
  Settings are read from $HOME/.ceylon-spec.yaml (or --config) and from
  environment variables prefixed CEYLONSPEC_, e.g. CEYLONSPEC_PARALLEL=4.
  Keys: color, verbose, parallel, trace, exclude, checks.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// ExitError carries the exit status of a command that reported problems
// or was invoked badly.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exit *ExitError
		if errors.As(err, &exit) {
			os.Exit(exit.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.ceylon-spec.yaml)")
	flags.String("color", "auto", `Control colored output: "auto", "always", or "never".`)
	flags.BoolP("verbose", "v", false, "Log the analysis phases of every unit.")
	flags.Int("parallel", 0, "Number of units parsed concurrently (0 means one per CPU).")
	flags.String("trace", "none", `Trace analysis phases: "none", "otel", or "opencensus".`)
	flags.StringArray("exclude", nil, "Glob pattern for source paths to skip (may be repeated).")
	for _, key := range []string{"color", "verbose", "parallel", "trace", "exclude"} {
		if err := viper.BindPFlag(key, flags.Lookup(key)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(
		CheckCommand(),
		SymbolsCommand(),
		LSPCommand(),
		ReplCommand(),
		versionCmd,
	)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}

		// Search config in home directory with name ".ceylon-spec" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".ceylon-spec")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("CEYLONSPEC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		newLogger(os.Stderr).WithField("file", viper.ConfigFileUsed()).Debug("Using config file")
	} else if cfgFile != "" {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
