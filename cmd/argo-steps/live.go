package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rxtech-lab/argo-steps/internal/engine"
	"github.com/rxtech-lab/argo-steps/internal/types"
	"github.com/rxtech-lab/argo-steps/pkg/errors"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

type attemptLine struct {
	Step    string         `json:"step"`
	Depth   int            `json:"depth"`
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Outputs map[string]any `json:"outputs,omitempty"`
}

type reportLine struct {
	RunID    string        `json:"run_id"`
	Symbol   string        `json:"symbol"`
	Time     time.Time     `json:"time"`
	HaltedAt string        `json:"halted_at,omitempty"`
	Attempts []attemptLine `json:"attempts"`
}

func liveCommand() *cli.Command {
	return &cli.Command{
		Name:  "live",
		Usage: "Feed JSON bars from stdin, one per line, into a single execution context",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "strategy",
				Aliases:  []string{"s"},
				Usage:    "Strategy name",
				Required: true,
			},
		},
		Action: liveAction,
	}
}

func newReportLine(runID string, report engine.BarReport) reportLine {
	line := reportLine{
		RunID:    runID,
		Symbol:   report.Bar.Symbol,
		Time:     report.Bar.Time,
		HaltedAt: report.HaltedAt.TakeOr(""),
		Attempts: make([]attemptLine, 0, len(report.Attempts)),
	}

	for _, attempt := range report.Attempts {
		line.Attempts = append(line.Attempts, attemptLine{
			Step:    attempt.Step.ID(),
			Depth:   attempt.Depth,
			Success: attempt.Result.IsSuccess(),
			Message: attempt.Result.Message(),
			Outputs: attempt.Result.Outputs(),
		})
	}

	return line
}

// streamBars runs every JSON line of in through live and writes one report
// per bar to out. Bars rejected by the session are logged and skipped.
func streamBars(ctx context.Context, live *engine.Live, in io.Reader, out io.Writer, env *environment) error {
	scanner := bufio.NewScanner(in)
	encoder := json.NewEncoder(out)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		if len(scanner.Bytes()) == 0 {
			continue
		}

		var bar types.MarketData
		if err := json.Unmarshal(scanner.Bytes(), &bar); err != nil {
			return fmt.Errorf("failed to decode bar: %w", err)
		}

		report, err := live.OnBar(bar)
		if errors.HasCode(err, errors.ErrCodeInvalidParameter) {
			env.log.Warn("Bar rejected", zap.String("symbol", bar.Symbol), zap.Time("time", bar.Time), zap.Error(err))

			continue
		}

		if err != nil {
			return err
		}

		if err := encoder.Encode(newReportLine(live.RunID(), report)); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	return scanner.Err()
}

func liveAction(ctx context.Context, cmd *cli.Command) error {
	env, err := loadEnvironment(cmd, "stderr")
	if err != nil {
		return err
	}

	defer func() { _ = env.log.Sync() }()

	cfg, err := env.strategies.Get(cmd.String("strategy"))
	if err != nil {
		return err
	}

	// the run id is only known once the live session exists
	out, err := env.openSinks("", cfg.Name())
	if err != nil {
		return err
	}
	defer out.close()

	runner, err := engine.NewRunner(cfg, out.runnerOptions(env.log)...)
	if err != nil {
		return err
	}

	live := engine.NewLive(runner, env.settings.WindowSize)
	if out.history != nil {
		out.history.SetRunID(live.RunID())
	}

	env.log.Info("Live session started", zap.String("strategy", cfg.Name()), zap.String("run_id", live.RunID()))

	streamErr := streamBars(ctx, live, cmd.Root().Reader, cmd.Root().Writer, env)

	if err := out.flush(env.settings.Metrics.Textfile); err != nil {
		return err
	}

	return streamErr
}
