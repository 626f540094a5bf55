package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rxtech-lab/argo-steps/internal/config"
	"github.com/rxtech-lab/argo-steps/internal/datasource"
	"github.com/rxtech-lab/argo-steps/internal/step"
	"github.com/rxtech-lab/argo-steps/internal/strategy"
	"github.com/rxtech-lab/argo-steps/pkg/schema"
	"github.com/urfave/cli/v3"
)

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Load the step catalog and hydrate strategies, reporting the first error",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "strategy",
				Aliases: []string{"s"},
				Usage:   "Only validate this strategy",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			env, err := loadEnvironment(cmd, "stderr")
			if err != nil {
				return err
			}

			var configs []*strategy.StrategyConfig

			if name := cmd.String("strategy"); name != "" {
				cfg, err := env.strategies.Get(name)
				if err != nil {
					return err
				}

				configs = append(configs, cfg)
			} else {
				configs, err = env.strategies.GetAll()
				if err != nil {
					return err
				}
			}

			w := cmd.Root().Writer
			fmt.Fprintf(w, "%s %d step definitions\n", TitleStyle.Render("ok"), len(env.registry.GetAll()))

			for _, cfg := range configs {
				fmt.Fprintln(w, renderStrategy(cfg))
			}

			return nil
		},
	}
}

func stepsCommand() *cli.Command {
	return &cli.Command{
		Name:  "steps",
		Usage: "List the step definitions and the functions they may reference",
		Action: func(_ context.Context, cmd *cli.Command) error {
			env, err := loadEnvironment(cmd, "stderr")
			if err != nil {
				return err
			}

			w := cmd.Root().Writer
			fmt.Fprintln(w, renderSteps(env.registry.GetAll()))
			fmt.Fprintln(w, HelpStyle.Render("functions: "+strings.Join(env.functions.List(), ", ")))

			return nil
		},
	}
}

// schemaFiles maps the schema file names to the documents they describe.
func schemaFiles() map[string]func() (string, error) {
	return map[string]func() (string, error){
		"argo.schema.json":     func() (string, error) { return schema.ToJSONSchema(config.Config{}) },
		"steps.schema.json":    func() (string, error) { return schema.ToJSONSchema(step.RawCatalog{}) },
		"strategy.schema.json": func() (string, error) { return schema.ToJSONSchema(strategy.RawStrategyConfig{}) },
	}
}

func writeSchemas(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	var written []string

	for name, generate := range schemaFiles() {
		content, err := generate()
		if err != nil {
			return nil, fmt.Errorf("failed to generate %s: %w", name, err)
		}

		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}

		written = append(written, path)
	}

	return written, nil
}

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Write JSON schemas for the settings, step catalog and strategy files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory the schemas are written to",
				Value:   "configs",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			written, err := writeSchemas(cmd.String("output"))
			if err != nil {
				return err
			}

			for _, path := range written {
				fmt.Fprintln(cmd.Root().Writer, path)
			}

			return nil
		},
	}
}

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Write a synthetic price series to a parquet or CSV file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "Output file; .csv writes CSV, anything else parquet",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:  "symbol",
				Usage: "Symbols to generate",
				Value: []string{"TEST"},
			},
			&cli.IntFlag{
				Name:  "bars",
				Usage: "Bars per symbol",
				Value: 390,
			},
			&cli.IntFlag{
				Name:  "seed",
				Usage: "Random seed",
				Value: 42,
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			settings := datasource.DefaultGeneratorConfig()
			settings.Count = int(cmd.Int("bars"))

			bars := datasource.NewGenerator(int64(cmd.Int("seed"))).GenerateSymbols(cmd.StringSlice("symbol"), settings)
			if err := datasource.WriteSeries(cmd.String("output"), bars); err != nil {
				return err
			}

			fmt.Fprintf(cmd.Root().Writer, "wrote %d bars to %s\n", len(bars), cmd.String("output"))

			return nil
		},
	}
}
