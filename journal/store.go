package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/tradejournal/pkg/id"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Store is the durable ledger. It is safe for concurrent use; callers
// serialize ingestion per account.
type Store struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

// Open connects to driver/dsn and applies Schema.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite:
		if !strings.Contains(dsn, "?") {
			dsn += "?_busy_timeout=5000&_fk=1"
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// One writer at a time; every query inside a transaction uses the tx.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, driver: driver, now: time.Now}, nil
}

// NewSQLite opens a SQLite ledger at path.
func NewSQLite(path string) (*Store, error) {
	return Open(DriverSQLite, path)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// q rewrites ? placeholders into $n for Postgres.
func (s *Store) q(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) stamp() int64 {
	return s.now().UTC().UnixNano()
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

// CreateAccount inserts a, assigning an id when empty.
func (s *Store) CreateAccount(ctx context.Context, a Account) (Account, error) {
	if a.ID == "" {
		a.ID = id.New()
	}
	if a.Currency == "" {
		a.Currency = "TWD"
	}
	now := s.stamp()
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO accounts (id, code, currency, nickname, created_at)
		VALUES (?, ?, ?, ?, ?)`),
		a.ID, a.Code, a.Currency, a.Nickname, now,
	)
	if err != nil {
		return Account{}, fmt.Errorf("insert account: %w", err)
	}
	a.CreatedAt = fromNanos(now)
	return a, nil
}

// GetAccount returns ErrNotFound when accountID is unknown.
func (s *Store) GetAccount(ctx context.Context, accountID string) (Account, error) {
	var (
		a       Account
		created int64
	)
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT id, code, currency, nickname, created_at
		FROM accounts
		WHERE id = ?`), accountID).Scan(&a.ID, &a.Code, &a.Currency, &a.Nickname, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, fmt.Errorf("account %q: %w", accountID, ErrNotFound)
		}
		return Account{}, err
	}
	a.CreatedAt = fromNanos(created)
	return a, nil
}

// ListAccounts returns all accounts ordered by id.
func (s *Store) ListAccounts(ctx context.Context) ([]Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, currency, nickname, created_at
		FROM accounts
		ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		var (
			a       Account
			created int64
		)
		if err := rows.Scan(&a.ID, &a.Code, &a.Currency, &a.Nickname, &created); err != nil {
			return nil, err
		}
		a.CreatedAt = fromNanos(created)
		out = append(out, a)
	}
	return out, rows.Err()
}

// CreateStrategy inserts st, assigning an id when empty.
func (s *Store) CreateStrategy(ctx context.Context, st Strategy) (Strategy, error) {
	if st.ID == "" {
		st.ID = id.New()
	}
	now := s.stamp()
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO strategies (id, name, created_at)
		VALUES (?, ?, ?)`),
		st.ID, st.Name, now,
	)
	if err != nil {
		return Strategy{}, fmt.Errorf("insert strategy: %w", err)
	}
	st.CreatedAt = fromNanos(now)
	return st, nil
}

// GetStrategy returns ErrNotFound when strategyID is unknown.
func (s *Store) GetStrategy(ctx context.Context, strategyID string) (Strategy, error) {
	var (
		st      Strategy
		created int64
	)
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT id, name, created_at
		FROM strategies
		WHERE id = ?`), strategyID).Scan(&st.ID, &st.Name, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Strategy{}, fmt.Errorf("strategy %q: %w", strategyID, ErrNotFound)
		}
		return Strategy{}, err
	}
	st.CreatedAt = fromNanos(created)
	return st, nil
}
