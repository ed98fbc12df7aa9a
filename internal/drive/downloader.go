package drive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/warehouse-recon/internal/source"
)

// Downloader pulls warehouse exports from a Drive folder.
type Downloader struct {
	files FileSource
}

// NewDownloader creates a new Downloader.
func NewDownloader(files FileSource) *Downloader {
	return &Downloader{files: files}
}

// DownloadWarehouse copies the export files of one warehouse from folderID
// into src.Dir and returns the local CSV paths. Only files named after an
// export role with the warehouse suffix are taken.
//
//   - CSV files are downloaded directly.
//   - XLSX files are downloaded to a temporary .xlsx, then the first sheet is converted
//     to CSV in src.Dir and the temporary .xlsx is removed.
func (d *Downloader) DownloadWarehouse(ctx context.Context, folderID string, src source.WarehouseSource) ([]string, error) {
	if src.Dir == "" {
		return nil, fmt.Errorf("download dir is required")
	}
	if err := os.MkdirAll(src.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	wanted := make(map[string]bool, len(source.Roles))
	for _, role := range source.Roles {
		wanted[strings.TrimSuffix(src.FileName(role), ".csv")] = true
	}

	files, err := d.files.ListFiles(ctx, folderID)
	if err != nil {
		return nil, err
	}

	var localPaths []string
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ext := strings.ToLower(filepath.Ext(f.Name))
		stem := strings.ToLower(strings.TrimSuffix(f.Name, filepath.Ext(f.Name)))
		if (ext != ".csv" && ext != ".xlsx") || !wanted[stem] {
			continue
		}

		csvPath := filepath.Join(src.Dir, stem+".csv")
		if ext == ".csv" {
			if err := d.download(ctx, f, csvPath); err != nil {
				return nil, err
			}
			localPaths = append(localPaths, csvPath)
			continue
		}

		// XLSX: download then convert first sheet to CSV
		tmpXLSXPath := filepath.Join(src.Dir, stem+".xlsx")
		if err := d.download(ctx, f, tmpXLSXPath); err != nil {
			return nil, err
		}
		if err := convertXLSXToCSV(tmpXLSXPath, csvPath); err != nil {
			return nil, fmt.Errorf("failed to convert %s to csv: %w", f.Name, err)
		}
		_ = os.Remove(tmpXLSXPath)
		localPaths = append(localPaths, csvPath)
	}

	log.Info().
		Str("warehouse", src.Name).
		Int("files", len(localPaths)).
		Msg("drive: exports downloaded")
	return localPaths, nil
}

func (d *Downloader) download(ctx context.Context, f *File, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create local file %s: %w", path, err)
	}
	if err := d.files.DownloadFile(ctx, f.ID, out); err != nil {
		out.Close()
		return fmt.Errorf("failed to download %s: %w", f.Name, err)
	}
	return out.Close()
}
