package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/jolsten/takeskip/compiler"
)

// ErrProgramNotFound indicates the requested command has no stored tree.
var ErrProgramNotFound = errors.New("program not found")

var log = commonlog.GetLogger("takeskip.cache")

// Store persists parsed programs in SQLite, keyed by normalized command
// string, so repeated processes can skip re-parsing hot commands. Values
// are canonical CBOR; anything that fails to decode or validate on the
// way out is treated as absent.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// OpenStore opens (creating if needed) a store at the given path.
func OpenStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS programs (
		command TEXT PRIMARY KEY,
		tree BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get loads the stored program for a normalized command string. Returns
// ErrProgramNotFound when the command has never been stored.
func (s *Store) Get(command string) (compiler.Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var blob []byte
	err := s.db.QueryRow("SELECT tree FROM programs WHERE command = ?", command).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProgramNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading program: %w", err)
	}

	prog, err := UnmarshalProgram(blob)
	if err != nil {
		log.Errorf("dropping undecodable program for %q: %s", command, err.Error())
		return nil, ErrProgramNotFound
	}
	return prog, nil
}

// Put stores the program for a normalized command string, replacing any
// previous tree.
func (s *Store) Put(command string, prog compiler.Program) error {
	blob, err := MarshalProgram(prog)
	if err != nil {
		return fmt.Errorf("encoding program: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(
		"INSERT OR REPLACE INTO programs (command, tree) VALUES (?, ?)",
		command, blob,
	); err != nil {
		return fmt.Errorf("storing program: %w", err)
	}
	return nil
}
