package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/warehouse-recon/internal/config"
	"github.com/andresuchdata/warehouse-recon/internal/drive"
	"github.com/andresuchdata/warehouse-recon/internal/storage"
	"github.com/andresuchdata/warehouse-recon/pkg/logger"
)

func fetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Download warehouse exports into the source directories",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "from",
				Value: "drive",
				Usage: "Where to fetch from (drive, storage)",
			},
		},
		Action: func(c *cli.Context) error {
			cfg := config.Load()
			if err := cfg.EnsureDirs(); err != nil {
				return err
			}
			switch c.String("from") {
			case "drive":
				return fetchDrive(c, cfg)
			case "storage":
				return fetchStorage(c, cfg)
			default:
				return fmt.Errorf("unknown fetch origin %q", c.String("from"))
			}
		},
	}
}

// fetchDrive pairs DRIVE_FOLDER_IDS with SOURCE_DIRS by position.
func fetchDrive(c *cli.Context, cfg *config.Config) error {
	if cfg.Drive.CredentialsFile == "" {
		return fmt.Errorf("GOOGLE_CREDENTIALS_FILE is not set")
	}
	if len(cfg.Drive.FolderIDs) != len(cfg.Sources) {
		return fmt.Errorf("expected %d drive folders, got %d", len(cfg.Sources), len(cfg.Drive.FolderIDs))
	}

	svc, err := drive.NewServiceFromFile(c.Context, cfg.Drive.CredentialsFile)
	if err != nil {
		return err
	}
	dl := drive.NewDownloader(svc)
	for i, src := range warehouseSources(cfg) {
		paths, err := dl.DownloadWarehouse(c.Context, cfg.Drive.FolderIDs[i], src)
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", src.Name, err)
		}
		logger.Log.Info().Str("source", src.Name).Int("files", len(paths)).Msg("fetched from drive")
	}
	return nil
}

func fetchStorage(c *cli.Context, cfg *config.Config) error {
	if !cfg.Storage.Enabled {
		return fmt.Errorf("STORAGE_ENABLED is not set")
	}
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
	for _, src := range warehouseSources(cfg) {
		prefix := storage.ResolveObjectKey(cfg.Storage.Prefix, "sources/"+src.Name) + "/"
		paths, err := storage.DownloadPrefix(c.Context, store, prefix, src.Dir, ".csv")
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", src.Name, err)
		}
		logger.Log.Info().Str("source", src.Name).Int("files", len(paths)).Msg("fetched from storage")
	}
	return nil
}
