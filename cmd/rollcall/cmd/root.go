// File: root.go
// Title: Root Command
// Description: Declares the rollcall root command, the persistent flags
//              shared by all subcommands and the helpers that assemble a
//              configured pipeline and optional report store for a run.

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/softusing/rollcall/internal/config"
	"github.com/softusing/rollcall/internal/pipeline"
	"github.com/softusing/rollcall/internal/report"
	"github.com/softusing/rollcall/pkg/log"
)

var (
	cfgFile  string
	verbose  bool
	reportDB string
	seedFlag int64
)

var rootCmd = &cobra.Command{
	Use:   "rollcall",
	Short: "rollcall - course rollcall scheduling toolkit",
	Long: `rollcall plans, checks and synthesizes viewing slots for course
rollcall record files.

Commands:
  schedule - assign viewing slots to the records of a CSV file
  validate - check a record file against the scheduling rules
  generate - synthesize record sets from the configured catalog`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./configs/rollcall.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&reportDB, "report-db", "", "SQLite file recording the run and its findings")
	rootCmd.PersistentFlags().Int64Var(&seedFlag, "seed", 0, "override the configured random seed")
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
}

// loadConfig resolves the configuration for the invocation, applying the
// command-line overrides on top of the file values.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = "./configs/rollcall.toml"
		if _, err := os.Stat(path); err != nil {
			cfg := config.Defaults()
			applyOverrides(&cfg)
			return &cfg, nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	applyOverrides(cfg)
	return cfg, nil
}

func applyOverrides(cfg *config.Config) {
	if seedFlag != 0 {
		cfg.Seed = seedFlag
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
}

func newLogger(cfg *config.Config) *log.Logger {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.LevelInfo
	}
	format, err := log.ParseFormat(cfg.LogFormat)
	if err != nil {
		format = log.FormatText
	}
	return log.NewWithConfig(log.Config{
		Level:  level,
		Format: format,
		Name:   "rollcall",
	})
}

// newPipeline builds the pipeline for one command invocation and, when
// --report-db is set, opens the store and begins the run. The returned
// finish func closes out the run and the store; it is safe to call when
// no store was opened.
func newPipeline(ctx context.Context, command string) (*pipeline.Pipeline, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(cfg)

	p, err := pipeline.New(cfg, nil, logger)
	if err != nil {
		return nil, nil, err
	}

	if reportDB != "" {
		store, err := report.Open(reportDB)
		if err != nil {
			return nil, nil, err
		}
		run, err := store.BeginRun(ctx, command, cfg.Seed)
		if err != nil {
			store.Close()
			return nil, nil, err
		}
		p.Store = store
		p.Run = run
	}

	finish := func() {
		if p.Store == nil {
			return
		}
		if err := p.Store.FinishRun(ctx, p.Run); err != nil {
			p.Log.WarnWithErr("cannot finish run report", err)
		}
		if err := p.Store.Close(); err != nil {
			p.Log.WarnWithErr("cannot close report store", err)
		}
	}
	return p, finish, nil
}
