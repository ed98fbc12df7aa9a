package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// WarehouseSource locates one warehouse export set. Files are named
// <role><suffix>.csv inside Dir. The primary warehouse has an empty suffix.
type WarehouseSource struct {
	Name   string
	Dir    string
	Suffix string
}

// WarehouseSet is the loaded table per role for one warehouse.
type WarehouseSet struct {
	Source WarehouseSource
	Tables map[Role]*Table
}

// FileName returns the export file name for role.
func (s WarehouseSource) FileName(role Role) string {
	return string(role) + s.Suffix + ".csv"
}

// LoadWarehouse reads every role file of one warehouse. A missing file
// yields an empty table.
func LoadWarehouse(ctx context.Context, src WarehouseSource) (*WarehouseSet, error) {
	set := &WarehouseSet{Source: src, Tables: make(map[Role]*Table, len(Roles))}
	for _, role := range Roles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(src.Dir, src.FileName(role))
		t, err := ReadCSV(string(role)+src.Suffix, path)
		if errors.Is(err, os.ErrNotExist) {
			log.Warn().Str("warehouse", src.Name).Str("file", path).Msg("source: export missing, using empty table")
			t = NewTable(string(role)+src.Suffix, nil)
		} else if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		set.Tables[role] = t
	}
	return set, nil
}

// LoadAll loads warehouses concurrently. The result keeps the input order.
func LoadAll(ctx context.Context, sources []WarehouseSource) ([]*WarehouseSet, error) {
	sets := make([]*WarehouseSet, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			set, err := LoadWarehouse(ctx, src)
			if err != nil {
				return err
			}
			sets[i] = set
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sets, nil
}
