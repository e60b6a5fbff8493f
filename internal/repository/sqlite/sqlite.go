package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ppiviz/internal/domain"

	_ "modernc.org/sqlite"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new SQLite repository. Use ":memory:" for an ephemeral database.
func New(dbPath string) (*Repository, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		dsn = "file:" + dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps :memory: databases shared and serializes writers
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db, now: time.Now}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS interaction_cache (
		query_key TEXT NOT NULL,
		species INTEGER NOT NULL,
		body BLOB NOT NULL,
		fetched_at INTEGER NOT NULL,
		PRIMARY KEY (query_key, species)
	);

	CREATE TABLE IF NOT EXISTS layouts (
		fingerprint TEXT NOT NULL,
		algorithm TEXT NOT NULL,
		node_id TEXT NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		pinned INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (fingerprint, algorithm, node_id)
	);

	CREATE INDEX IF NOT EXISTS idx_interaction_cache_fetched ON interaction_cache(fetched_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

// GetInteractions returns a cached response body younger than maxAge.
// maxAge <= 0 accepts any age.
func (r *Repository) GetInteractions(ctx context.Context, queryKey string, species int, maxAge time.Duration) ([]byte, bool, error) {
	var (
		body      []byte
		fetchedAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT body, fetched_at FROM interaction_cache
		WHERE query_key = ? AND species = ?
	`, queryKey, species).Scan(&body, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query interaction cache: %w", err)
	}
	if maxAge > 0 && r.now().Sub(unixToTime(fetchedAt)) > maxAge {
		return nil, false, nil
	}
	return body, true, nil
}

// PutInteractions stores a response body, replacing any previous entry
func (r *Repository) PutInteractions(ctx context.Context, queryKey string, species int, body []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO interaction_cache (query_key, species, body, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(query_key, species) DO UPDATE SET
			body = excluded.body,
			fetched_at = excluded.fetched_at
	`, queryKey, species, body, r.now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to store interactions for %s: %w", queryKey, err)
	}
	return nil
}

// PurgeInteractions removes cache entries fetched before olderThan
func (r *Repository) PurgeInteractions(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM interaction_cache WHERE fetched_at < ?`, olderThan.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to purge interaction cache: %w", err)
	}
	return res.RowsAffected()
}

// GetLayout loads stored positions. It returns nil when nothing is stored.
func (r *Repository) GetLayout(ctx context.Context, fingerprint string, algorithm domain.LayoutAlgorithm) (*domain.Layout, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+positionColumns+` FROM layouts
		WHERE fingerprint = ? AND algorithm = ?
	`, fingerprint, string(algorithm))
	if err != nil {
		return nil, fmt.Errorf("failed to query layout: %w", err)
	}
	defer rows.Close()

	layout := domain.NewLayout(algorithm)
	for rows.Next() {
		var row positionRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		layout.Positions[row.NodeID] = row.toDomain()
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}
	if len(layout.Positions) == 0 {
		return nil, nil
	}
	return layout, nil
}

// SaveLayout replaces all stored positions for the fingerprint and algorithm
func (r *Repository) SaveLayout(ctx context.Context, fingerprint string, layout *domain.Layout) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM layouts WHERE fingerprint = ? AND algorithm = ?`,
		fingerprint, string(layout.Algorithm)); err != nil {
		return fmt.Errorf("failed to clear layout: %w", err)
	}
	positions := make([]domain.NodePosition, 0, len(layout.Positions))
	for _, p := range layout.Positions {
		positions = append(positions, *p)
	}
	if err := upsertPositions(ctx, tx, fingerprint, layout.Algorithm, positions, r.now()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SavePositions upserts individual node positions, e.g. after a drag
func (r *Repository) SavePositions(ctx context.Context, fingerprint string, algorithm domain.LayoutAlgorithm, positions []domain.NodePosition) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := upsertPositions(ctx, tx, fingerprint, algorithm, positions, r.now()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func upsertPositions(ctx context.Context, tx *sql.Tx, fingerprint string, algorithm domain.LayoutAlgorithm, positions []domain.NodePosition, now time.Time) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO layouts (fingerprint, algorithm, node_id, x, y, pinned, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint, algorithm, node_id) DO UPDATE SET
			x = excluded.x,
			y = excluded.y,
			pinned = excluded.pinned,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range positions {
		if _, err := stmt.ExecContext(ctx, fingerprint, string(algorithm), p.NodeID, p.X, p.Y, boolToInt(p.Pinned), now.UnixNano()); err != nil {
			return fmt.Errorf("failed to update position for %s: %w", p.NodeID, err)
		}
	}
	return nil
}

// DeleteLayout removes stored positions for the fingerprint and algorithm
func (r *Repository) DeleteLayout(ctx context.Context, fingerprint string, algorithm domain.LayoutAlgorithm) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM layouts WHERE fingerprint = ? AND algorithm = ?`,
		fingerprint, string(algorithm))
	if err != nil {
		return fmt.Errorf("failed to delete layout: %w", err)
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
