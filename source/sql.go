package source

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // registers the sqlite3 dialect
	_ "modernc.org/sqlite"                             // registers the "sqlite" driver

	"github.com/arloliu/grouper/types"
)

// DefaultTable is the roster table read by the SQL provider.
const DefaultTable = "Users"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQL implements a roster provider backed by a SQL table with name, job and
// department columns. Extra columns are ignored.
//
// Rows are returned in the order the database yields them; no ORDER BY is
// applied.
type SQL struct {
	db    *goqu.Database
	table string
}

var _ types.RosterProvider = (*SQL)(nil)

// SQLOption configures a SQL provider.
type SQLOption func(*SQL)

// WithTable sets the roster table name. Empty names are ignored.
func WithTable(table string) SQLOption {
	return func(s *SQL) {
		if table != "" {
			s.table = table
		}
	}
}

// NewSQL creates a SQL provider over an open SQLite database.
//
// Parameters:
//   - db: Open database handle (see OpenSQLite)
//   - opts: Optional configuration
//
// Returns:
//   - *SQL: Initialized SQL provider
//   - error: Invalid table name
//
// Example:
//
//	db, _ := source.OpenSQLite(ctx, "roster.db")
//	src, err := source.NewSQL(db, source.WithTable("Users"))
func NewSQL(db *sql.DB, opts ...SQLOption) (*SQL, error) {
	s := &SQL{
		db:    goqu.New("sqlite3", db),
		table: DefaultTable,
	}
	for _, opt := range opts {
		opt(s)
	}

	if !tableNamePattern.MatchString(s.table) {
		return nil, fmt.Errorf("%w: invalid table name %q", types.ErrInvalidConfig, s.table)
	}

	return s, nil
}

// OpenSQLite opens a SQLite database file using the pure-Go driver.
//
// The pool is limited to one connection so ":memory:" databases behave as a
// single database.
//
// Parameters:
//   - ctx: Context for the initial ping
//   - path: Database file path or ":memory:"
//
// Returns:
//   - *sql.DB: Open database handle; the caller closes it
//   - error: Open or ping error
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database %s: %w", path, err)
	}

	return db, nil
}

// EnsureSchema creates the roster table when it does not exist.
func (s *SQL) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		job TEXT NOT NULL DEFAULT '',
		department TEXT NOT NULL DEFAULT ''
	)`, s.table)

	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create table %s: %w", s.table, err)
	}

	return nil
}

// ListPeople selects every row of the roster table.
//
// Returns:
//   - []types.Person: Roster rows (empty for an empty table)
//   - error: Query error or a row without a name
func (s *SQL) ListPeople(ctx context.Context) ([]types.Person, error) {
	people := []types.Person{}

	err := s.db.From(s.table).
		Select("name", "job", "department").
		ScanStructsContext(ctx, &people)
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", s.table, err)
	}

	for i := range people {
		if err := people[i].Validate(); err != nil {
			return nil, fmt.Errorf("table %s row %d: %w", s.table, i+1, err)
		}
	}

	return people, nil
}

// Import inserts people into the roster table in a single transaction.
//
// Parameters:
//   - ctx: Context for the transaction
//   - people: People to insert, in order
//   - replace: When true, existing rows are deleted first
//
// Returns:
//   - error: Validation or database error; nothing is written on error
func (s *SQL) Import(ctx context.Context, people []types.Person, replace bool) error {
	for _, p := range people {
		if err := p.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	return tx.Wrap(func() error {
		if replace {
			if _, err := tx.Delete(s.table).Executor().ExecContext(ctx); err != nil {
				return fmt.Errorf("failed to clear table %s: %w", s.table, err)
			}
		}

		if len(people) == 0 {
			return nil
		}

		if _, err := tx.Insert(s.table).Rows(people).Executor().ExecContext(ctx); err != nil {
			return fmt.Errorf("failed to insert into table %s: %w", s.table, err)
		}

		return nil
	})
}
