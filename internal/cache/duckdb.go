package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
)

// DuckDBLoader stores and loads transcript models in a DuckDB database.
type DuckDBLoader struct {
	db   *sql.DB
	path string
}

// NewDuckDBLoader opens a DuckDB-backed transcript database.
// The path can be a local file path or an S3 URL (s3://bucket/path.duckdb).
func NewDuckDBLoader(path string) (*DuckDBLoader, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	if strings.HasPrefix(path, "s3://") {
		if _, err := db.Exec("INSTALL httpfs; LOAD httpfs;"); err != nil {
			db.Close()
			return nil, fmt.Errorf("load httpfs extension: %w", err)
		}
	}

	return &DuckDBLoader{db: db, path: path}, nil
}

// Close closes the database connection.
func (l *DuckDBLoader) Close() error {
	return l.db.Close()
}

// CreateSchema creates the transcripts table.
func (l *DuckDBLoader) CreateSchema() error {
	_, err := l.db.Exec(`
		CREATE TABLE IF NOT EXISTS transcripts (
			id VARCHAR PRIMARY KEY,
			gene_symbol VARCHAR,
			gene_id INTEGER,
			chrom VARCHAR,
			strand TINYINT,
			tx_start BIGINT,
			tx_end BIGINT,
			cds_start BIGINT,
			cds_end BIGINT,
			exon_starts VARCHAR,
			exon_ends VARCHAR,
			sequence VARCHAR
		);
		CREATE INDEX IF NOT EXISTS idx_transcripts_pos ON transcripts(chrom, tx_start, tx_end);
		CREATE INDEX IF NOT EXISTS idx_transcripts_gene ON transcripts(gene_symbol);
	`)
	if err != nil {
		return fmt.Errorf("create transcript schema: %w", err)
	}
	return nil
}

// InsertTranscript inserts one transcript.
func (l *DuckDBLoader) InsertTranscript(t *Transcript) error {
	_, err := l.db.Exec(`
		INSERT INTO transcripts (id, gene_symbol, gene_id, chrom, strand, tx_start, tx_end,
		                         cds_start, cds_end, exon_starts, exon_ends, sequence)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.GeneSymbol, t.GeneID, t.Chrom, t.Strand, t.TxStart, t.TxEnd,
		t.CDSStart, t.CDSEnd, joinIntList(t.ExonStarts), joinIntList(t.ExonEnds),
		nullString(t.Sequence))
	if err != nil {
		return fmt.Errorf("insert transcript %s: %w", t.ID, err)
	}
	return nil
}

// InsertCache inserts every transcript in the cache inside one transaction.
func (l *DuckDBLoader) InsertCache(c *Cache) (err error) {
	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare(`
		INSERT INTO transcripts (id, gene_symbol, gene_id, chrom, strand, tx_start, tx_end,
		                         cds_start, cds_end, exon_starts, exon_ends, sequence)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, chrom := range c.Chromosomes() {
		for _, t := range c.FindTranscriptsByChrom(chrom) {
			if _, err = stmt.Exec(t.ID, t.GeneSymbol, t.GeneID, t.Chrom, t.Strand, t.TxStart, t.TxEnd,
				t.CDSStart, t.CDSEnd, joinIntList(t.ExonStarts), joinIntList(t.ExonEnds),
				nullString(t.Sequence)); err != nil {
				return fmt.Errorf("insert transcript %s: %w", t.ID, err)
			}
		}
	}
	return tx.Commit()
}

const selectTranscripts = `
	SELECT id, gene_symbol, gene_id, chrom, strand, tx_start, tx_end,
	       cds_start, cds_end, exon_starts, exon_ends, sequence
	FROM transcripts`

// LoadAll loads all transcripts into the cache.
func (l *DuckDBLoader) LoadAll(c *Cache) error {
	return l.load(c, selectTranscripts+" ORDER BY chrom, tx_start, id")
}

// LoadChromosome loads the transcripts of one chromosome into the cache.
func (l *DuckDBLoader) LoadChromosome(c *Cache, chrom string) error {
	return l.load(c, selectTranscripts+" WHERE chrom = ? ORDER BY tx_start, id", NormalizeChrom(chrom))
}

func (l *DuckDBLoader) load(c *Cache, query string, args ...any) error {
	rows, err := l.db.Query(query, args...)
	if err != nil {
		return fmt.Errorf("query transcripts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTranscript(rows)
		if err != nil {
			return err
		}
		c.AddTranscript(t)
	}
	return rows.Err()
}

// GetTranscript returns a specific transcript by ID, or nil if absent.
func (l *DuckDBLoader) GetTranscript(id string) (*Transcript, error) {
	rows, err := l.db.Query(selectTranscripts+" WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("query transcript: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanTranscript(rows)
}

func scanTranscript(rows *sql.Rows) (*Transcript, error) {
	t := &Transcript{}
	var starts, ends string
	var seq sql.NullString
	err := rows.Scan(&t.ID, &t.GeneSymbol, &t.GeneID, &t.Chrom, &t.Strand, &t.TxStart, &t.TxEnd,
		&t.CDSStart, &t.CDSEnd, &starts, &ends, &seq)
	if err != nil {
		return nil, fmt.Errorf("scan transcript: %w", err)
	}
	if t.ExonStarts, err = parseIntList(starts); err != nil {
		return nil, fmt.Errorf("transcript %s exon starts: %w", t.ID, err)
	}
	if t.ExonEnds, err = parseIntList(ends); err != nil {
		return nil, fmt.Errorf("transcript %s exon ends: %w", t.ID, err)
	}
	t.Sequence = seq.String
	if err := t.Init(); err != nil {
		return nil, err
	}
	return t, nil
}

// TranscriptCount returns the total number of transcripts in the database.
func (l *DuckDBLoader) TranscriptCount() (int, error) {
	var count int
	err := l.db.QueryRow("SELECT COUNT(*) FROM transcripts").Scan(&count)
	return count, err
}

// Chromosomes returns a sorted list of chromosomes in the database.
func (l *DuckDBLoader) Chromosomes() ([]string, error) {
	rows, err := l.db.Query("SELECT DISTINCT chrom FROM transcripts ORDER BY chrom")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chroms []string
	for rows.Next() {
		var chrom string
		if err := rows.Scan(&chrom); err != nil {
			return nil, err
		}
		chroms = append(chroms, chrom)
	}
	return chroms, rows.Err()
}

// ErrNoTranscripts is returned when a database holds no transcript rows.
var ErrNoTranscripts = errors.New("transcript database is empty")

// LoadNonEmpty loads all transcripts and fails when none were found.
func (l *DuckDBLoader) LoadNonEmpty(c *Cache) error {
	if err := l.LoadAll(c); err != nil {
		return err
	}
	if c.TranscriptCount() == 0 {
		return ErrNoTranscripts
	}
	return nil
}

func joinIntList(xs []int64) string {
	var b strings.Builder
	for _, x := range xs {
		b.WriteString(strconv.FormatInt(x, 10))
		b.WriteByte(',')
	}
	return b.String()
}

// nullString returns nil if s is empty, otherwise s.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// IsDuckDB checks if a path is a DuckDB database file.
func IsDuckDB(path string) bool {
	return strings.HasSuffix(path, ".duckdb") ||
		strings.HasSuffix(path, ".db") ||
		strings.HasPrefix(path, "s3://")
}
