package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abgdnv/prodboard/internal/catalog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	loadSnapshotSQL = `SELECT data FROM catalog_snapshots WHERE key = $1`
	saveSnapshotSQL = `INSERT INTO catalog_snapshots (key, data, updated_at)
	                   VALUES ($1, $2, now())
	                   ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`
)

// Pg persists the snapshot in a single jsonb row keyed like the logical
// key-value entry it replaces. The schema lives in deploy/migrations and is
// applied with RunMigrations before the backend is used.
type Pg struct {
	db *pgxpool.Pool
}

// NewPgStore returns a snapshot store backed by the given connection pool.
func NewPgStore(db *pgxpool.Pool) *Pg {
	return &Pg{db: db}
}

// Load fetches and decodes the snapshot row. No row means an empty catalog.
func (s *Pg) Load(ctx context.Context) ([]catalog.Product, error) {
	var data []byte
	err := s.db.QueryRow(ctx, loadSnapshotSQL, snapshotKey).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return []catalog.Product{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog snapshot: %w", err)
	}

	var products []catalog.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to decode catalog snapshot: %w", err)
	}
	if products == nil {
		products = []catalog.Product{}
	}
	return products, nil
}

// Save upserts the snapshot row with the serialized list.
func (s *Pg) Save(ctx context.Context, products []catalog.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to encode catalog snapshot: %w", err)
	}
	if _, err := s.db.Exec(ctx, saveSnapshotSQL, snapshotKey, data); err != nil {
		return fmt.Errorf("failed to save catalog snapshot: %w", err)
	}
	return nil
}
