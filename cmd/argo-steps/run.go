package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-steps/internal/datasource"
	"github.com/rxtech-lab/argo-steps/internal/engine"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run a strategy over a price series, one execution context per symbol",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "strategy",
				Aliases:  []string{"s"},
				Usage:    "Strategy name (file name without .yaml in the strategies directory)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Parquet or CSV price series; overrides the settings file",
			},
			&cli.StringFlag{
				Name:  "symbol",
				Usage: "Only run this symbol",
			},
			&cli.TimestampFlag{
				Name:  "start",
				Usage: "First bar time in `YYYY-MM-DD` format",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02", "2006-01-02T15:04:05Z07:00"},
				},
			},
			&cli.TimestampFlag{
				Name:  "end",
				Usage: "Last bar time in `YYYY-MM-DD` format",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02", "2006-01-02T15:04:05Z07:00"},
				},
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "Disable the progress bar",
			},
		},
		Action: runAction,
	}
}

func queryFromFlags(cmd *cli.Command) datasource.Query {
	query := datasource.Query{
		Symbol: optional.None[string](),
		Start:  optional.None[time.Time](),
		End:    optional.None[time.Time](),
	}

	if symbol := cmd.String("symbol"); symbol != "" {
		query.Symbol = optional.Some(symbol)
	}

	if cmd.IsSet("start") {
		query.Start = optional.Some(cmd.Timestamp("start"))
	}

	if cmd.IsSet("end") {
		query.End = optional.Some(cmd.Timestamp("end"))
	}

	return query
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	env, err := loadEnvironment(cmd, "stderr")
	if err != nil {
		return err
	}

	defer func() { _ = env.log.Sync() }()

	cfg, err := env.strategies.Get(cmd.String("strategy"))
	if err != nil {
		return err
	}

	dataPath := cmd.String("data")
	if dataPath == "" {
		dataPath = env.settings.Data
	}

	if dataPath == "" {
		return fmt.Errorf("no price series: set data in the settings file or pass --data")
	}

	series, err := datasource.NewDuckDB(dataPath, env.log)
	if err != nil {
		return err
	}
	defer series.Close()

	out, err := env.openSinks(uuid.New().String(), cfg.Name())
	if err != nil {
		return err
	}
	defer out.close()

	runner, err := engine.NewRunner(cfg, out.runnerOptions(env.log)...)
	if err != nil {
		return err
	}

	showProgress := !cmd.Bool("no-progress")

	var progress *progressbar.ProgressBar

	callbacks := engine.BatchCallbacks{
		OnSymbolStart: optional.Some[engine.OnSymbolStartCallback](func(runID, symbol string, total int) error {
			if out.history != nil {
				out.history.SetRunID(runID)
			}

			if showProgress {
				progress = progressbar.NewOptions(total,
					progressbar.OptionSetDescription(fmt.Sprintf("Running %s on %s", cfg.Name(), symbol)),
					progressbar.OptionShowCount(),
					progressbar.OptionSetWriter(os.Stderr),
				)
			}

			return nil
		}),
		OnBar: optional.Some[engine.OnBarCallback](func(_ string, _, _ int, _ engine.BarReport) error {
			if progress != nil {
				return progress.Add(1)
			}

			return nil
		}),
		OnSymbolEnd: optional.Some[engine.OnSymbolEndCallback](func(run engine.SymbolRun) {
			if progress != nil {
				_ = progress.Finish()
			}

			env.log.Info("Symbol finished",
				zap.String("symbol", run.Symbol),
				zap.String("run_id", run.RunID),
				zap.Int("bars", run.Bars),
				zap.Int("halts", run.Halts),
			)
		}),
	}

	runs, err := engine.NewBatch(runner, series, env.settings.WindowSize, env.log).Run(ctx, queryFromFlags(cmd), callbacks)
	if err != nil {
		return err
	}

	if err := out.flush(env.settings.Metrics.Textfile); err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.Root().Writer, renderRuns(cfg.Name(), runs))

	return err
}
