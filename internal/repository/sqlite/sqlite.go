package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"nodereg/internal/domain"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by GetNode for an unknown id
var ErrNotFound = errors.New("node not found")

// ErrDatabaseMissing is returned by Open when the database file must exist but does not
var ErrDatabaseMissing = errors.New("database file does not exist")

const memoryPath = ":memory:"

// Repository implements repository.NodeRepository using SQLite
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new SQLite repository, creating the file if needed
func New(dbPath string) (*Repository, error) {
	return Open(context.Background(), dbPath, false)
}

// Open opens the database at dbPath, pings it and migrates the schema.
// With mustExist set a missing file is an error instead of being created.
func Open(ctx context.Context, dbPath string, mustExist bool) (*Repository, error) {
	if dbPath != memoryPath {
		if _, err := os.Stat(dbPath); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to stat database: %w", err)
			}
			if mustExist {
				return nil, fmt.Errorf("%w: %s", ErrDatabaseMissing, dbPath)
			}
			if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == memoryPath {
		// Each connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := NewWithDB(db)
	if err := repo.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

// NewWithDB wraps an open database without migrating it
func NewWithDB(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

func (r *Repository) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS nodes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_nodes_active ON nodes(active);
	`

	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// ListNodes returns every node ordered by id
func (r *Repository) ListNodes(ctx context.Context) ([]domain.Node, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+nodeColumns+` FROM nodes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	nodes := []domain.Node{}
	for rows.Next() {
		var row nodeRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		nodes = append(nodes, row.toDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nodes: %w", err)
	}
	return nodes, nil
}

// GetNode returns a node by id
func (r *Repository) GetNode(ctx context.Context, id int64) (*domain.Node, error) {
	var row nodeRow
	err := r.db.QueryRowContext(ctx, `SELECT `+nodeColumns+` FROM nodes WHERE id = ?`, id).Scan(row.scanArgs()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get node %d: %w", id, err)
	}
	node := row.toDomain()
	return &node, nil
}

// CountNodes returns the number of stored nodes
func (r *Repository) CountNodes(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count nodes: %w", err)
	}
	return n, nil
}

// CreateNode inserts a node and assigns its id and timestamps
func (r *Repository) CreateNode(ctx context.Context, node *domain.Node) error {
	now := r.now().UTC().Truncate(time.Millisecond)
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO nodes (title, active, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, node.Title, boolToInt(node.Active), timeToMillis(now), timeToMillis(now))
	if err != nil {
		return fmt.Errorf("failed to create node: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read node id: %w", err)
	}
	node.ID = id
	node.CreatedAt = now
	node.UpdatedAt = now
	return nil
}

// UpdateNodeStatus sets the active flag of a node. Unknown ids are a no-op.
func (r *Repository) UpdateNodeStatus(ctx context.Context, id int64, active bool) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE nodes SET active = ?, updated_at = MAX(created_at, ?)
		WHERE id = ?
	`, boolToInt(active), timeToMillis(r.now()), id)
	if err != nil {
		return fmt.Errorf("failed to update node %d: %w", id, err)
	}
	return nil
}

// DeleteNode removes a node. Unknown ids are a no-op.
func (r *Repository) DeleteNode(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete node %d: %w", id, err)
	}
	return nil
}

// SeedIfEmpty inserts nodes in one transaction when the table is empty.
// It returns the number of nodes inserted.
func (r *Repository) SeedIfEmpty(ctx context.Context, nodes []*domain.Node) (int, error) {
	if len(nodes) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count nodes: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO nodes (title, active, created_at, updated_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare seed: %w", err)
	}
	defer stmt.Close()

	now := r.now().UTC().Truncate(time.Millisecond)
	for _, node := range nodes {
		res, err := stmt.ExecContext(ctx, node.Title, boolToInt(node.Active), timeToMillis(now), timeToMillis(now))
		if err != nil {
			return 0, fmt.Errorf("failed to seed node %q: %w", node.Title, err)
		}
		if id, err := res.LastInsertId(); err == nil {
			node.ID = id
		}
		node.CreatedAt = now
		node.UpdatedAt = now
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit seed: %w", err)
	}
	return len(nodes), nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
