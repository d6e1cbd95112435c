// Package database persists ground atoms in SQLite, partitioned the way an
// inference run consumes them: observed evidence, inference targets, and
// held-out truth labels for evaluation and weight learning.
package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"softlogic/internal/model"
)

// Reserved partition names.
const (
	PartitionObservations = "observations"
	PartitionTargets      = "targets"
	PartitionTruth        = "truth"
)

// Default atom values applied when a data file carries no explicit value.
const (
	defaultObservedValue = 1.0
	defaultTargetValue   = 0.5
)

// Store is a SQLite-backed atom store. The zero value is not usable; open
// one with Open.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// Open initializes the SQLite database at the given path, creating parent
// directories as needed. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS atoms (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		partition TEXT NOT NULL,
		predicate TEXT NOT NULL,
		args TEXT NOT NULL,
		value REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(partition, predicate, args)
	);
	CREATE INDEX IF NOT EXISTS idx_atoms_partition ON atoms(partition);
	CREATE INDEX IF NOT EXISTS idx_atoms_predicate ON atoms(predicate);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create atom table: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string { return s.dbPath }

// InsertAtoms stores a batch of atoms into a partition, replacing earlier
// rows for the same atom.
func (s *Store) InsertAtoms(partition string, atoms []model.Atom) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	stmt, err := tx.Prepare(
		`INSERT INTO atoms (partition, predicate, args, value) VALUES (?, ?, ?, ?)
		 ON CONFLICT(partition, predicate, args) DO UPDATE SET value = excluded.value`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range atoms {
		argsJSON, _ := json.Marshal(a.Args)
		if _, err := stmt.Exec(partition, a.Predicate, string(argsJSON), a.Value); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert atom %s: %w", a.Key(), err)
		}
	}
	return tx.Commit()
}

// Atoms retrieves all atoms for a predicate in a partition.
func (s *Store) Atoms(partition, predicate string) ([]model.Atom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		"SELECT predicate, args, value FROM atoms WHERE partition = ? AND predicate = ? ORDER BY id",
		partition, predicate,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAtoms(rows, partition)
}

// AtomsInPartition retrieves every atom in a partition.
func (s *Store) AtomsInPartition(partition string) ([]model.Atom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		"SELECT predicate, args, value FROM atoms WHERE partition = ? ORDER BY id",
		partition,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAtoms(rows, partition)
}

func scanAtoms(rows *sql.Rows, partition string) ([]model.Atom, error) {
	var atoms []model.Atom
	for rows.Next() {
		var a model.Atom
		var argsJSON string
		if err := rows.Scan(&a.Predicate, &argsJSON, &a.Value); err != nil {
			return nil, fmt.Errorf("scan atom: %w", err)
		}
		if err := json.Unmarshal([]byte(argsJSON), &a.Args); err != nil {
			return nil, fmt.Errorf("decode atom args: %w", err)
		}
		a.Observed = partition == PartitionObservations
		atoms = append(atoms, a)
	}
	return atoms, rows.Err()
}

// Predicates lists the distinct predicate names present in a partition.
func (s *Store) Predicates(partition string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		"SELECT DISTINCT predicate FROM atoms WHERE partition = ? ORDER BY predicate", partition)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// WriteInferred writes converged target values back into the targets
// partition so later runs and reporting read the inferred state.
func (s *Store) WriteInferred(atoms []model.Atom) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin write-back: %w", err)
	}
	stmt, err := tx.Prepare(
		"UPDATE atoms SET value = ? WHERE partition = ? AND predicate = ? AND args = ?")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare write-back: %w", err)
	}
	defer stmt.Close()

	for _, a := range atoms {
		argsJSON, _ := json.Marshal(a.Args)
		if _, err := stmt.Exec(a.Value, PartitionTargets, a.Predicate, string(argsJSON)); err != nil {
			tx.Rollback()
			return fmt.Errorf("write back %s: %w", a.Key(), err)
		}
	}
	return tx.Commit()
}

// Stats returns atom counts per partition.
func (s *Store) Stats() (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT partition, COUNT(*) FROM atoms GROUP BY partition")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make(map[string]int64)
	for rows.Next() {
		var partition string
		var count int64
		if err := rows.Scan(&partition, &count); err != nil {
			return nil, err
		}
		stats[partition] = count
	}
	return stats, rows.Err()
}
