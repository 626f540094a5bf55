package main

import (
	"context"
	"log"
	"os"

	"github.com/rxtech-lab/argo-steps/internal/version"
	"github.com/urfave/cli/v3"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "argo-steps",
		Usage:   "Run step based strategies over price series",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the settings file",
				Value:   "configs/argo.yaml",
				Sources: cli.EnvVars("ARGO_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			liveCommand(),
			validateCommand(),
			stepsCommand(),
			schemaCommand(),
			generateCommand(),
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
