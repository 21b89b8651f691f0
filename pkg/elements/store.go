package elements

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ErrNotFound is returned when no element matches a lookup.
var ErrNotFound = errors.New("element not found")

const elementColumns = `element_number, symbol, name, mass, period, element_group, element_type,
    occurrence, phase, block, color, valence, electroneg, config, melting, boiling`

// SetupSchema creates the element table. It is idempotent.
func SetupSchema(db *sql.DB) error {
	const schemaElements = `
CREATE TABLE IF NOT EXISTS chem_elements (
    element_number INTEGER PRIMARY KEY,
    symbol         TEXT NOT NULL UNIQUE COLLATE NOCASE,
    name           TEXT NOT NULL,
    mass           REAL NOT NULL,
    period         INTEGER NOT NULL,
    element_group  TEXT NOT NULL,
    element_type   TEXT NOT NULL,
    occurrence     TEXT NOT NULL,
    phase          TEXT NOT NULL,
    block          TEXT NOT NULL,
    color          TEXT NOT NULL,
    valence        INTEGER NOT NULL,
    electroneg     REAL NOT NULL DEFAULT 0,
    config         TEXT NOT NULL,
    melting        REAL NOT NULL DEFAULT 0,
    boiling        REAL NOT NULL DEFAULT 0
);
`
	if _, err := db.Exec(schemaElements); err != nil {
		return fmt.Errorf("could not create element schema: %w", err)
	}
	return nil
}

// Store serves elements from a database using prepared statements.
type Store struct {
	db         *sql.DB
	stmtGet    *sql.Stmt
	stmtList   *sql.Stmt
	stmtInsert *sql.Stmt
	stmtUpdate *sql.Stmt
	stmtCount  *sql.Stmt
	logger     *slog.Logger
}

// NewStore prepares the statements used by the Store. SetupSchema must have
// been called on db first.
func NewStore(db *sql.DB) (*Store, error) {
	stmtGet, err := db.Prepare(`SELECT ` + elementColumns + ` FROM chem_elements WHERE symbol = ?;`)
	if err != nil {
		return nil, err
	}

	stmtList, err := db.Prepare(`SELECT ` + elementColumns + ` FROM chem_elements ORDER BY element_number;`)
	if err != nil {
		return nil, err
	}

	stmtInsert, err := db.Prepare(`INSERT OR IGNORE INTO chem_elements (` + elementColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return nil, err
	}

	stmtUpdate, err := db.Prepare(`UPDATE chem_elements SET
    symbol = ?, name = ?, mass = ?, period = ?, element_group = ?, element_type = ?, occurrence = ?,
    phase = ?, block = ?, color = ?, valence = ?, electroneg = ?, config = ?, melting = ?, boiling = ?
WHERE element_number = ?;`)
	if err != nil {
		return nil, err
	}

	stmtCount, err := db.Prepare(`SELECT COUNT(*) FROM chem_elements;`)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:         db,
		stmtGet:    stmtGet,
		stmtList:   stmtList,
		stmtInsert: stmtInsert,
		stmtUpdate: stmtUpdate,
		stmtCount:  stmtCount,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// Close releases the prepared statements.
func (s *Store) Close() {
	_ = s.stmtGet.Close()
	_ = s.stmtList.Close()
	_ = s.stmtInsert.Close()
	_ = s.stmtUpdate.Close()
	_ = s.stmtCount.Close()
}

// SetLogger sets the logger for the Store. By default, all logs are discarded.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanElement(row scanner) (Element, error) {
	var e Element
	err := row.Scan(&e.Number, &e.Symbol, &e.Name, &e.Mass, &e.Period, &e.Group, &e.Type,
		&e.Occurrence, &e.Phase, &e.Block, &e.Color, &e.Valence, &e.Electroneg, &e.Config,
		&e.Melting, &e.Boiling)
	return e, err
}

// Seed inserts every element that is not already stored, in a single
// transaction, and returns how many rows were added. Existing rows are left
// as they are.
func (s *Store) Seed(ctx context.Context, els []Element) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	insert := tx.StmtContext(ctx, s.stmtInsert)
	added := 0
	for _, e := range els {
		if err := e.Validate(); err != nil {
			return 0, err
		}
		res, err := insert.ExecContext(ctx, e.Number, e.Symbol, e.Name, e.Mass, e.Period, e.Group, e.Type,
			e.Occurrence, e.Phase, e.Block, e.Color, e.Valence, e.Electroneg, e.Config, e.Melting, e.Boiling)
		if err != nil {
			return 0, fmt.Errorf("could not insert %s: %w", e.Symbol, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("could not commit transaction: %w", err)
	}
	s.logger.Debug("Seeded element store", "offered", len(els), "added", added)
	return added, nil
}

// Get returns the element with the given symbol, ignoring case.
func (s *Store) Get(ctx context.Context, symbol string) (Element, error) {
	e, err := scanElement(s.stmtGet.QueryRowContext(ctx, strings.TrimSpace(symbol)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Element{}, fmt.Errorf("%w: %q", ErrNotFound, symbol)
		}
		return Element{}, err
	}
	return e, nil
}

// List returns every stored element in atomic number order.
func (s *Store) List(ctx context.Context) ([]Element, error) {
	rows, err := s.stmtList.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var els []Element
	for rows.Next() {
		e, err := scanElement(rows)
		if err != nil {
			return nil, err
		}
		els = append(els, e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return els, nil
}

// Count returns the number of stored elements.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.stmtCount.QueryRowContext(ctx).Scan(&n)
	return n, err
}

// Update replaces the stored record with the same atomic number as e.
func (s *Store) Update(ctx context.Context, e Element) error {
	if err := e.Validate(); err != nil {
		return err
	}
	res, err := s.stmtUpdate.ExecContext(ctx, e.Symbol, e.Name, e.Mass, e.Period, e.Group, e.Type,
		e.Occurrence, e.Phase, e.Block, e.Color, e.Valence, e.Electroneg, e.Config, e.Melting, e.Boiling,
		e.Number)
	if err != nil {
		return fmt.Errorf("could not update %s: %w", e.Symbol, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: number %d", ErrNotFound, e.Number)
	}
	s.logger.Info("Updated element", "symbol", e.Symbol, "number", e.Number)
	return nil
}

// Dataset returns a snapshot of the store for the renderers.
func (s *Store) Dataset(ctx context.Context) (*Dataset, error) {
	els, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return NewDataset(els)
}
