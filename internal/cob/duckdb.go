package cob

import (
	"database/sql"
	"fmt"
	"strconv"

	_ "github.com/marcboeker/go-duckdb"
)

// DuckDBLoader provides access to a co-expression network stored in a
// DuckDB database.
type DuckDBLoader struct {
	db   *sql.DB
	path string
}

// NewDuckDBLoader opens (or creates) a DuckDB-backed network store.
func NewDuckDBLoader(path string) (*DuckDBLoader, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	return &DuckDBLoader{db: db, path: path}, nil
}

// Close closes the database connection.
func (l *DuckDBLoader) Close() error {
	return l.db.Close()
}

// CreateSchema creates the network schema.
func (l *DuckDBLoader) CreateSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS genes (
			id VARCHAR PRIMARY KEY,
			chrom VARCHAR,
			start BIGINT,
			end_ BIGINT
		);

		CREATE TABLE IF NOT EXISTS edges (
			gene_a VARCHAR,
			gene_b VARCHAR,
			score DOUBLE,
			PRIMARY KEY (gene_a, gene_b)
		);

		CREATE TABLE IF NOT EXISTS metadata (
			key VARCHAR PRIMARY KEY,
			value VARCHAR
		);

		CREATE INDEX IF NOT EXISTS idx_genes_pos ON genes(chrom, start);
	`
	_, err := l.db.Exec(schema)
	return err
}

// InsertGene inserts one gene.
func (l *DuckDBLoader) InsertGene(g Gene) error {
	_, err := l.db.Exec(`
		INSERT INTO genes (id, chrom, start, end_) VALUES (?, ?, ?, ?)
	`, g.ID, g.Chrom, g.Start, g.End)
	if err != nil {
		return fmt.Errorf("insert gene: %w", err)
	}
	return nil
}

// InsertEdge inserts one scored edge.
func (l *DuckDBLoader) InsertEdge(a, b string, score float64) error {
	_, err := l.db.Exec(`
		INSERT INTO edges (gene_a, gene_b, score) VALUES (?, ?, ?)
	`, a, b, score)
	if err != nil {
		return fmt.Errorf("insert edge: %w", err)
	}
	return nil
}

// SetMetadata stores a metadata key/value pair.
func (l *DuckDBLoader) SetMetadata(key, value string) error {
	_, err := l.db.Exec(`
		INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)
	`, key, value)
	if err != nil {
		return fmt.Errorf("set metadata: %w", err)
	}
	return nil
}

// GetMetadata returns a metadata value, or "" when the key is absent.
func (l *DuckDBLoader) GetMetadata(key string) (string, error) {
	var value string
	err := l.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get metadata: %w", err)
	}
	return value, nil
}

// Load builds the in-memory network from the database. The network name and
// significant-edge threshold come from metadata when present.
func (l *DuckDBLoader) Load() (*COB, error) {
	name, err := l.GetMetadata("name")
	if err != nil {
		return nil, err
	}
	c := New(name)

	if raw, err := l.GetMetadata("sig_edge_zscore"); err != nil {
		return nil, err
	} else if raw != "" {
		z, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("parse sig_edge_zscore metadata: %w", err)
		}
		c.SetSigEdgeZScore(z)
	}

	rows, err := l.db.Query(`SELECT id, chrom, start, end_ FROM genes ORDER BY chrom, start`)
	if err != nil {
		return nil, fmt.Errorf("query genes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var g Gene
		if err := rows.Scan(&g.ID, &g.Chrom, &g.Start, &g.End); err != nil {
			return nil, fmt.Errorf("scan gene: %w", err)
		}
		c.AddGene(g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	edges, err := l.db.Query(`SELECT gene_a, gene_b, score FROM edges`)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer edges.Close()
	for edges.Next() {
		var a, b string
		var score float64
		if err := edges.Scan(&a, &b, &score); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		if err := c.AddEdge(a, b, score); err != nil {
			return nil, err
		}
	}
	return c, edges.Err()
}

// GeneCount returns the number of genes in the database.
func (l *DuckDBLoader) GeneCount() (int, error) {
	var count int
	err := l.db.QueryRow("SELECT COUNT(*) FROM genes").Scan(&count)
	return count, err
}

// EdgeCount returns the number of edges in the database.
func (l *DuckDBLoader) EdgeCount() (int, error) {
	var count int
	err := l.db.QueryRow("SELECT COUNT(*) FROM edges").Scan(&count)
	return count, err
}
