package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rxtech-lab/argo-steps/internal/builtin"
	"github.com/rxtech-lab/argo-steps/internal/config"
	"github.com/rxtech-lab/argo-steps/internal/engine"
	"github.com/rxtech-lab/argo-steps/internal/logger"
	"github.com/rxtech-lab/argo-steps/internal/metrics"
	"github.com/rxtech-lab/argo-steps/internal/step"
	"github.com/rxtech-lab/argo-steps/internal/strategy"
	"github.com/rxtech-lab/argo-steps/internal/version"
	"github.com/rxtech-lab/argo-steps/internal/writers"
	"github.com/urfave/cli/v3"
)

// environment holds everything a command needs, built from the settings file.
type environment struct {
	settings   *config.Config
	log        *logger.Logger
	functions  *step.FunctionCatalog
	registry   *step.Registry
	strategies *strategy.Catalog
}

// loadEnvironment loads the settings, the step catalog and the strategy
// directory. logOutput is passed to the zap logger.
func loadEnvironment(cmd *cli.Command, logOutput string) (*environment, error) {
	settings, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	log, err := logger.NewLoggerWithOutput(settings.Log.Level, logOutput)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	functions, err := builtin.NewCatalog()
	if err != nil {
		return nil, err
	}

	registry, err := step.LoadCatalog(settings.StepsFile, functions, version.GetVersion())
	if err != nil {
		return nil, err
	}

	return &environment{
		settings:   settings,
		log:        log,
		functions:  functions,
		registry:   registry,
		strategies: strategy.NewCatalog(settings.StrategiesDir, registry),
	}, nil
}

// sinks are the optional history writer and metrics observer of a run.
type sinks struct {
	history  *writers.HistoryWriter
	observer *metrics.Observer
}

func (e *environment) openSinks(runID, strategyName string) (*sinks, error) {
	s := &sinks{history: nil, observer: nil}

	if e.settings.History.Output != "" {
		s.history = writers.NewHistoryWriter(e.settings.History.Output, runID, strategyName)
		if err := s.history.Initialize(); err != nil {
			return nil, fmt.Errorf("failed to initialize history writer: %w", err)
		}
	}

	if e.settings.Metrics.Enabled {
		s.observer = metrics.NewObserver()
	}

	return s, nil
}

func (s *sinks) runnerOptions(log *logger.Logger) []engine.RunnerOption {
	opts := []engine.RunnerOption{engine.WithLogger(log)}

	if s.history != nil {
		opts = append(opts, engine.WithHistorySink(s.history))
	}

	if s.observer != nil {
		opts = append(opts, engine.WithObserver(s.observer))
	}

	return opts
}

// flush writes the history file and the metrics textfile.
func (s *sinks) flush(metricsPath string) error {
	if s.history != nil {
		if err := s.history.Flush(); err != nil {
			return fmt.Errorf("failed to write history: %w", err)
		}
	}

	if s.observer != nil {
		if err := os.MkdirAll(filepath.Dir(metricsPath), 0755); err != nil {
			return fmt.Errorf("failed to create metrics directory: %w", err)
		}

		if err := s.observer.WriteTextfile(metricsPath); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	return nil
}

func (s *sinks) close() error {
	if s.history != nil {
		return s.history.Close()
	}

	return nil
}
