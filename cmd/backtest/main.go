package main

import (
	"context"
	"log"
	"os"

	"github.com/rxtech-lab/argo-backtest/internal/version"
	"github.com/urfave/cli/v3"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "backtest",
		Usage:   "Backtest EMA and RSI signal strategies on historical bars",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			runCommand(),
			schemaCommand(),
			providersCommand(),
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
