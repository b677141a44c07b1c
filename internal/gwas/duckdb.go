package gwas

import (
	"database/sql"
	"fmt"

	_ "github.com/marcboeker/go-duckdb"
)

// DuckDBLoader provides access to a GWAS ontology stored in a DuckDB
// database.
type DuckDBLoader struct {
	db   *sql.DB
	path string
}

// NewDuckDBLoader opens (or creates) a DuckDB-backed GWAS store.
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

// CreateSchema creates the ontology schema.
func (l *DuckDBLoader) CreateSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS metadata (
			key VARCHAR PRIMARY KEY,
			value VARCHAR
		);

		CREATE TABLE IF NOT EXISTS terms (
			id VARCHAR PRIMARY KEY,
			description VARCHAR
		);

		CREATE TABLE IF NOT EXISTS snps (
			term_id VARCHAR,
			snp_idx INTEGER,
			chrom VARCHAR,
			pos BIGINT,
			PRIMARY KEY (term_id, snp_idx)
		);

		CREATE TABLE IF NOT EXISTS snp_attrs (
			term_id VARCHAR,
			snp_idx INTEGER,
			name VARCHAR,
			value DOUBLE,
			PRIMARY KEY (term_id, snp_idx, name)
		);
	`
	_, err := l.db.Exec(schema)
	return err
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

// InsertTerm inserts a term and all of its SNPs with their attributes.
func (l *DuckDBLoader) InsertTerm(t *Term) error {
	_, err := l.db.Exec(`
		INSERT INTO terms (id, description) VALUES (?, ?)
	`, t.ID, t.Desc)
	if err != nil {
		return fmt.Errorf("insert term: %w", err)
	}

	for i, s := range t.SNPs {
		_, err := l.db.Exec(`
			INSERT INTO snps (term_id, snp_idx, chrom, pos) VALUES (?, ?, ?, ?)
		`, t.ID, i, s.Chrom, s.Pos)
		if err != nil {
			return fmt.Errorf("insert snp: %w", err)
		}
		for name, value := range s.Attrs {
			_, err := l.db.Exec(`
				INSERT INTO snp_attrs (term_id, snp_idx, name, value) VALUES (?, ?, ?, ?)
			`, t.ID, i, name, value)
			if err != nil {
				return fmt.Errorf("insert snp attr: %w", err)
			}
		}
	}
	return nil
}

// Load builds the in-memory ontology from the database.
func (l *DuckDBLoader) Load() (*GWAS, error) {
	name, err := l.metadata("name")
	if err != nil {
		return nil, err
	}
	g := NewGWAS(name)

	rows, err := l.db.Query(`SELECT id, description FROM terms ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query terms: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		t := &Term{}
		if err := rows.Scan(&t.ID, &t.Desc); err != nil {
			return nil, fmt.Errorf("scan term: %w", err)
		}
		g.AddTerm(t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, t := range g.Terms() {
		if err := l.loadSNPs(t); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// loadSNPs loads a term's SNPs and their attributes.
func (l *DuckDBLoader) loadSNPs(t *Term) error {
	rows, err := l.db.Query(`
		SELECT snp_idx, chrom, pos FROM snps WHERE term_id = ? ORDER BY snp_idx
	`, t.ID)
	if err != nil {
		return fmt.Errorf("query snps: %w", err)
	}
	defer rows.Close()

	var idx []int
	for rows.Next() {
		var i int
		var s SNP
		if err := rows.Scan(&i, &s.Chrom, &s.Pos); err != nil {
			return fmt.Errorf("scan snp: %w", err)
		}
		s.Attrs = make(map[string]float64)
		t.SNPs = append(t.SNPs, s)
		idx = append(idx, i)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for n, i := range idx {
		attrs, err := l.db.Query(`
			SELECT name, value FROM snp_attrs WHERE term_id = ? AND snp_idx = ?
		`, t.ID, i)
		if err != nil {
			return fmt.Errorf("query snp attrs: %w", err)
		}
		for attrs.Next() {
			var name string
			var value float64
			if err := attrs.Scan(&name, &value); err != nil {
				attrs.Close()
				return fmt.Errorf("scan snp attr: %w", err)
			}
			t.SNPs[n].Attrs[name] = value
		}
		if err := attrs.Err(); err != nil {
			attrs.Close()
			return err
		}
		attrs.Close()
	}
	return nil
}

// TermCount returns the number of terms in the database.
func (l *DuckDBLoader) TermCount() (int, error) {
	var count int
	err := l.db.QueryRow("SELECT COUNT(*) FROM terms").Scan(&count)
	return count, err
}

// metadata returns a metadata value, or "" when the key is absent.
func (l *DuckDBLoader) metadata(key string) (string, error) {
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
