// Package store caches compiled Programs in a SQLite database, keyed by
// a content hash of the source text that produced them, so re-compiling
// unchanged source is a cache hit instead of a fresh compile.
//
// funxy's go.mod carries modernc.org/sqlite as a dependency but no file
// in the retrieved pack exercises it directly (it backs a builtin module
// funxy's script layer can import, not internal compiler plumbing), so
// this package's use of database/sql is plain standard-library idiom
// rather than a pattern lifted from a specific teacher file — see
// DESIGN.md.
package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/lacewing-lang/lacewing/internal/bytecode"
	"github.com/lacewing-lang/lacewing/internal/compiler"
)

// Store is a SQLite-backed cache mapping a source hash to its last
// compiled Program, encoded via internal/bytecode.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// ensures its schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", path, err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS programs (
			source_hash TEXT PRIMARY KEY,
			bytecode    BLOB NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Hash returns the cache key for a given source text.
func Hash(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Lookup returns the cached Program for source's hash, and whether one
// was found.
func (s *Store) Lookup(source string) (*compiler.Program, bool, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT bytecode FROM programs WHERE source_hash = ?`, Hash(source)).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: lookup: %w", err)
	}
	program, err := bytecode.Decode(data)
	if err != nil {
		return nil, false, fmt.Errorf("store: decoding cached entry: %w", err)
	}
	return program, true, nil
}

// Put stores program under source's hash, replacing any prior entry.
func (s *Store) Put(source string, program *compiler.Program) error {
	data, err := bytecode.Encode(program)
	if err != nil {
		return fmt.Errorf("store: encoding program: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO programs (source_hash, bytecode) VALUES (?, ?)
		 ON CONFLICT(source_hash) DO UPDATE SET bytecode = excluded.bytecode`,
		Hash(source), data)
	if err != nil {
		return fmt.Errorf("store: put: %w", err)
	}
	return nil
}

// CompileCached returns source's cached Program if present, otherwise
// compiles it with compile, stores the result, and returns that.
func (s *Store) CompileCached(source string, compile func(string) (*compiler.Program, error)) (*compiler.Program, error) {
	if cached, ok, err := s.Lookup(source); err != nil {
		return nil, err
	} else if ok {
		return cached, nil
	}
	program, err := compile(source)
	if err != nil {
		return nil, err
	}
	if err := s.Put(source, program); err != nil {
		return nil, err
	}
	return program, nil
}
