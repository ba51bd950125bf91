// Copyright © 2024 The ELPS authors

package cmd

import (
	"context"
	"io"

	"github.com/emmanuelbernard/ceylon-spec/analysis"
	"github.com/emmanuelbernard/ceylon-spec/diagnostic"
	"github.com/emmanuelbernard/ceylon-spec/lint"
	"github.com/emmanuelbernard/ceylon-spec/profiler"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// Option configures an exported command factory (CheckCommand,
// SymbolsCommand, LSPCommand, ReplCommand).
type Option func(*cmdConfig)

type cmdConfig struct {
	fs       afero.Fs
	analysis []analysis.Option
}

// WithFs sets the file system source trees are read from.  It defaults to
// the operating system's.
func WithFs(fs afero.Fs) Option {
	return func(c *cmdConfig) { c.fs = fs }
}

// WithAnalysisOptions adds options to every analysis a command runs, after
// those derived from the configuration.
func WithAnalysisOptions(opts ...analysis.Option) Option {
	return func(c *cmdConfig) { c.analysis = append(c.analysis, opts...) }
}

func newCmdConfig(opts []Option) *cmdConfig {
	c := &cmdConfig{}
	for _, o := range opts {
		o(c)
	}
	if c.fs == nil {
		c.fs = afero.NewOsFs()
	}
	return c
}

// newLogger returns the logger analysis phases are logged to.  Only
// warnings are shown unless verbose is configured.
func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.WarnLevel)
	if viper.GetBool("verbose") {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// analysisOptions derives analysis options from the configuration.
func (c *cmdConfig) analysisOptions(log *logrus.Logger) ([]analysis.Option, error) {
	tracer, err := profiler.New(viper.GetString("trace"))
	if err != nil {
		return nil, err
	}
	opts := []analysis.Option{
		analysis.WithLogger(log),
		analysis.WithTracer(tracer),
		analysis.WithParallel(viper.GetInt("parallel")),
	}
	if ex := viper.GetStringSlice("exclude"); len(ex) > 0 {
		opts = append(opts, analysis.WithExclude(ex...))
	}
	return append(opts, c.analysis...), nil
}

// analyze loads and checks the source tree at root.  A load error is
// returned with the result of the units that did load.
func (c *cmdConfig) analyze(ctx context.Context, root string, log *logrus.Logger) (*analysis.Result, error) {
	opts, err := c.analysisOptions(log)
	if err != nil {
		return nil, err
	}
	actx, err := analysis.NewContext(opts...)
	if err != nil {
		return nil, err
	}
	loadErr := actx.LoadTree(ctx, c.fs, root)
	res, err := actx.Run(ctx)
	if err != nil {
		return nil, err
	}
	return res, loadErr
}

// linter returns a linter running the analyzers named in checks, or the
// configured checks when none are named.
func linter(checks []string) (*lint.Linter, error) {
	if len(checks) == 0 {
		checks = viper.GetStringSlice("checks")
	}
	analyzers, err := lint.Select(checks)
	if err != nil {
		return nil, err
	}
	return &lint.Linter{Analyzers: analyzers}, nil
}

func colorMode() diagnostic.ColorMode {
	mode, err := diagnostic.ParseColorMode(viper.GetString("color"))
	if err != nil {
		return diagnostic.ColorAuto
	}
	return mode
}
