package main

import (
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ava12/hilite/langdef"
	"github.com/ava12/hilite/languages"
	"github.com/ava12/hilite/registry"
)

// cacheSize lets the tokens command reuse the scan made while detecting language.
const cacheSize = 16

type app struct {
	grammars     []string
	verbose      bool
	noColor      bool
	matchTimeout time.Duration
	metricsFile  string

	log *zap.Logger
	reg *registry.Registry
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "hilite",
		Short:        "hilite - grammar-driven syntax classification tool",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.log != nil {
				_ = a.log.Sync()
			}
			if a.metricsFile != "" {
				return prometheus.WriteToTextfile(a.metricsFile, prometheus.DefaultGatherer)
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringArrayVarP(&a.grammars, "grammar", "g", nil, "extra grammar file (YAML), may be repeated")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")
	flags.DurationVar(&a.matchTimeout, "match-timeout", langdef.DefaultMatchTimeout, "time limit for a single pattern match")
	flags.StringVar(&a.metricsFile, "metrics", "", "write scan metrics to file in Prometheus text format")

	root.AddCommand(a.tokensCmd(), a.checkCmd(), a.languagesCmd(), a.rankCmd())
	return root
}

func (a *app) init() error {
	var e error
	if a.verbose {
		a.log, e = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		a.log, e = cfg.Build()
	}
	if e != nil {
		return e
	}
	if a.noColor {
		color.NoColor = true
	}

	a.reg = registry.New(&registry.Options{MatchTimeout: a.matchTimeout, Logger: a.log, CacheSize: cacheSize})
	if e = languages.Register(a.reg); e != nil {
		return e
	}
	for _, f := range a.grammars {
		if e = a.reg.RegisterFile(f); e != nil {
			return e
		}
	}
	return nil
}

// readInput reads a file or stdin if name is "-".
func readInput(cmd *cobra.Command, name string) (string, error) {
	var content []byte
	var e error
	if name == "-" {
		content, e = io.ReadAll(cmd.InOrStdin())
	} else {
		content, e = os.ReadFile(name)
	}
	return string(content), e
}
