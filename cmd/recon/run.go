package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/warehouse-recon/internal/cache"
	"github.com/andresuchdata/warehouse-recon/internal/config"
	"github.com/andresuchdata/warehouse-recon/internal/export"
	"github.com/andresuchdata/warehouse-recon/internal/metrics"
	"github.com/andresuchdata/warehouse-recon/internal/pipeline"
	"github.com/andresuchdata/warehouse-recon/internal/reference"
	"github.com/andresuchdata/warehouse-recon/internal/repository/postgres"
	"github.com/andresuchdata/warehouse-recon/internal/source"
	"github.com/andresuchdata/warehouse-recon/internal/storage"
	"github.com/andresuchdata/warehouse-recon/pkg/logger"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the full pipeline and write the reports",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "start", Usage: "Report window start (dd-mm-yyyy)", EnvVars: []string{"PIPELINE_START_DATE"}},
			&cli.StringFlag{Name: "end", Usage: "Report window end (dd-mm-yyyy)", EnvVars: []string{"PIPELINE_END_DATE"}},
			&cli.StringSliceFlag{Name: "client", Usage: "Restrict reports to a client id (repeatable)"},
			&cli.StringSliceFlag{Name: "warehouse", Usage: "Restrict reports to a warehouse (repeatable)"},
			&cli.Float64Flag{Name: "initial-inventory", Usage: "Opening CBM level of each selected client"},
			&cli.StringFlag{Name: "output", Usage: "Report directory (defaults to OUTPUT_DIR)"},
			&cli.BoolFlag{Name: "no-cache", Usage: "Ignore cached reports"},
		},
		Action: runPipeline,
	}
}

func runPipeline(c *cli.Context) error {
	ctx := c.Context
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	params, err := buildParams(c, cfg)
	if err != nil {
		return err
	}

	outDir := cfg.App.OutputDir
	if c.IsSet("output") {
		outDir = c.String("output")
	}

	sources := warehouseSources(cfg)
	refPaths := reference.Paths{
		Classification: cfg.Reference.Classification,
		PalletMode:     cfg.Reference.PalletMode,
		Override:       cfg.Reference.PalletOverride,
	}
	fingerprint, err := cache.Fingerprint(inputFiles(sources, refPaths)...)
	if err != nil {
		return err
	}

	results, err := cache.NewResultCache(cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	key := cache.Key(params, fingerprint)
	if !c.Bool("no-cache") {
		tables, ok, err := results.Get(ctx, key)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("cache lookup failed, running pipeline")
		} else if ok {
			logger.Log.Info().Str("key", key).Msg("reports served from cache")
			_, err := export.NewWriter(outDir, nil).Write(ctx, tables)
			return err
		}
	}

	ref, err := reference.Load(refPaths)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrMissingReference, err)
	}

	rec := metrics.NewRecorder()
	opts := []pipeline.Option{
		pipeline.WithMetrics(rec),
		pipeline.WithWorkers(cfg.Pipeline.Workers),
		pipeline.WithFingerprint(fingerprint),
	}
	if cfg.Database.Enabled {
		db, err := openTracking(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		opts = append(opts, pipeline.WithTracker(pipeline.NewRepository(db.DB)))
	}

	res, err := pipeline.NewOrchestrator(sources, ref, opts...).Run(ctx, params)
	if err != nil {
		return err
	}

	var flush export.FlushFunc
	if cfg.Storage.Enabled {
		store, err := storage.NewMinioClient(storage.MinioConfig{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			return err
		}
		flush = storage.Uploader(store, storage.ResolveObjectKey(cfg.Storage.Prefix, "runs/"+res.RunID.String()))
	}

	tables := export.Reports(res)
	if _, err := export.NewWriter(outDir, flush).Write(ctx, tables); err != nil {
		return err
	}
	if err := results.Set(ctx, key, tables); err != nil {
		logger.Log.Warn().Err(err).Msg("failed to cache reports")
	}
	if err := rec.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
		logger.Log.Warn().Err(err).Msg("failed to write metrics")
	}

	logger.Log.Info().
		Str("run_id", res.RunID.String()).
		Int("kpi_months", len(res.KPI)).
		Str("output", outDir).
		Msg("run completed")
	return nil
}

func buildParams(c *cli.Context, cfg *config.Config) (pipeline.Params, error) {
	start, end := cfg.Pipeline.StartDate, cfg.Pipeline.EndDate
	if c.IsSet("start") {
		start = c.String("start")
	}
	if c.IsSet("end") {
		end = c.String("end")
	}
	clients := cfg.Pipeline.Clients
	if c.IsSet("client") {
		clients = c.StringSlice("client")
	}
	warehouses := cfg.Pipeline.Warehouses
	if c.IsSet("warehouse") {
		warehouses = c.StringSlice("warehouse")
	}
	initial := cfg.Pipeline.InitialInventory
	if c.IsSet("initial-inventory") {
		initial = c.Float64("initial-inventory")
	}
	return pipeline.NewParams(start, end, clients, warehouses, initial)
}

func inputFiles(sources []source.WarehouseSource, ref reference.Paths) []string {
	var paths []string
	for _, s := range sources {
		for _, role := range source.Roles {
			paths = append(paths, filepath.Join(s.Dir, s.FileName(role)))
		}
	}
	paths = append(paths, ref.Classification, ref.PalletMode)
	if ref.Override != "" {
		paths = append(paths, ref.Override)
	}
	return paths
}

func openTracking(ctx context.Context, cfg *config.Config) (*postgres.DB, error) {
	db, err := postgres.NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, pipeline.Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare run tracking: %w", err)
	}
	return db, nil
}
