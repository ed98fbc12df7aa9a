package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/warehouse-recon/internal/config"
	"github.com/andresuchdata/warehouse-recon/internal/source"
	"github.com/andresuchdata/warehouse-recon/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "recon",
		Usage: "Reconcile warehouse exports and rebuild billing and inventory reports",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: setupLogging,
		Commands: []*cli.Command{
			runCommand(),
			fetchCommand(),
			classifyCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("recon failed")
	}
}

func setupLogging(c *cli.Context) error {
	cfg := config.Load()
	level := cfg.App.LogLevel
	if c.IsSet("log-level") {
		level = c.String("log-level")
	}
	logger.Configure(level, cfg.App.LogFormat)
	return nil
}

func warehouseSources(cfg *config.Config) []source.WarehouseSource {
	out := make([]source.WarehouseSource, len(cfg.Sources))
	for i, s := range cfg.Sources {
		out[i] = source.WarehouseSource{Name: s.Name, Dir: s.Dir, Suffix: s.Suffix}
	}
	return out
}
