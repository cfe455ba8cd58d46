package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rxtech-lab/argo-backtest/internal/backtest"
	"github.com/rxtech-lab/argo-backtest/internal/datasource"
	"github.com/urfave/cli/v3"
)

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the JSON schema of the run config",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the schema to this file instead of stdout",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			config := backtest.RunConfig{}

			schema, err := config.GenerateSchemaJSON()
			if err != nil {
				return fmt.Errorf("failed to generate schema: %w", err)
			}

			if path := cmd.String("output"); path != "" {
				return os.WriteFile(path, []byte(schema), 0644)
			}

			_, err = fmt.Fprintln(cmd.Root().Writer, schema)

			return err
		},
	}
}

func providersCommand() *cli.Command {
	return &cli.Command{
		Name:  "providers",
		Usage: "List the supported bar sources",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			for _, name := range datasource.SupportedProviders() {
				info, err := datasource.GetProviderInfo(name)
				if err != nil {
					return err
				}

				_, err = fmt.Fprintln(cmd.Root().Writer, renderProvider(info))
				if err != nil {
					return err
				}
			}

			return nil
		},
	}
}
