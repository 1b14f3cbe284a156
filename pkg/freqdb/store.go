package freqdb

import (
	"context"
	"database/sql"
	"iter"
	"math"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/kerem-kaynak/authorname/internal/phonetic"
	"github.com/kerem-kaynak/authorname/pkg/authorname"
)

// ErrCountTooLarge is returned when a count does not fit a SQLite integer.
var ErrCountTooLarge = errors.New("count exceeds sqlite integer range")

// Triggers on name keep the one-row totals table in step with every upsert.
const upsertSQL = `
INSERT INTO name (name, occ_given, occ_family, soundex, metaphone) VALUES (?, ?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
    occ_given = occ_given + excluded.occ_given,
    occ_family = occ_family + excluded.occ_family,
    soundex = excluded.soundex,
    metaphone = excluded.metaphone`

// Store is an authorname.Store backed by the SQLite table
// name(id, name, occ_given, occ_family, soundex, metaphone) and its
// trigger-maintained totals row.
type Store struct {
	db     *sql.DB
	logger *zap.SugaredLogger

	mu  sync.Mutex
	err error
}

var _ authorname.Store = (*Store)(nil)

// OpenStore opens the database at path and applies migrations.
func OpenStore(path string, logger *zap.SugaredLogger) (*Store, error) {
	db, err := Open(path, logger)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db, logger); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, logger: logger}, nil
}

// NewStore wraps an already migrated database.
func NewStore(db *sql.DB, logger *zap.SugaredLogger) *Store {
	return &Store{db: db, logger: logger}
}

// DB returns the underlying database.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Train increments the count of token in role.
func (s *Store) Train(token string, role authorname.Role) error {
	key := authorname.NormalizeKey(token)
	if key == "" {
		return authorname.ErrEmptyToken
	}
	var given, family int64
	switch role {
	case authorname.RoleGiven:
		given = 1
	case authorname.RoleFamily:
		family = 1
	default:
		return errors.Wrapf(authorname.ErrInvalidRole, "train %q as %s", token, role)
	}

	soundex, metaphone := phonetic.Keys(key)
	_, err := s.db.Exec(upsertSQL, key, given, family, soundex, metaphone)
	return errors.Wrapf(err, "train %q", key)
}

// Lookup returns the counts of token and the table totals, read in one
// transaction.
func (s *Store) Lookup(ctx context.Context, token string) (authorname.Counts, error) {
	var c authorname.Counts
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return c, errors.Wrap(err, "begin lookup")
	}
	defer tx.Rollback()

	var totalGiven, totalFamily int64
	err = tx.QueryRowContext(ctx,
		"SELECT occ_given, occ_family FROM totals WHERE id = 1",
	).Scan(&totalGiven, &totalFamily)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return c, errors.Wrap(err, "query totals")
	}
	c.TotalGiven, c.TotalFamily = uint64(totalGiven), uint64(totalFamily)

	key := authorname.NormalizeKey(token)
	if key == "" {
		return c, nil
	}
	var given, family int64
	err = tx.QueryRowContext(ctx,
		"SELECT occ_given, occ_family FROM name WHERE name = ?", key,
	).Scan(&given, &family)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return c, nil
	case err != nil:
		return c, errors.Wrapf(err, "query %q", key)
	}
	c.Given, c.Family = uint64(given), uint64(family)
	return c, nil
}

// Query returns the counts of token. Database errors are logged and
// reported as an unknown token.
func (s *Store) Query(token string) authorname.Counts {
	c, err := s.Lookup(context.Background(), token)
	if err != nil {
		s.fail(err)
		if s.logger != nil {
			s.logger.Warnw("Frequency lookup failed", "token", token, "error", err)
		}
		return authorname.Counts{}
	}
	return c
}

// Load adds rows in a single transaction.
func (s *Store) Load(rows iter.Seq[authorname.Record]) error {
	return s.LoadContext(context.Background(), rows)
}

// LoadContext adds rows in a single transaction; counts of existing tokens
// are summed.
func (s *Store) LoadContext(ctx context.Context, rows iter.Seq[authorname.Record]) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin load")
	}
	stmt, err := tx.PrepareContext(ctx, upsertSQL)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "prepare upsert")
	}
	defer stmt.Close()

	n := 0
	for row := range rows {
		key := authorname.NormalizeKey(row.Token)
		if key == "" || row.Total() == 0 {
			continue
		}
		if row.Given > math.MaxInt64 || row.Family > math.MaxInt64 {
			tx.Rollback()
			return errors.Wrapf(ErrCountTooLarge, "token %q", key)
		}
		soundex, metaphone := phonetic.Keys(key)
		if _, err := stmt.ExecContext(ctx, key, int64(row.Given), int64(row.Family), soundex, metaphone); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "upsert %q", key)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit load")
	}

	if s.logger != nil {
		s.logger.Debugw("Loaded frequency rows", "rows", n)
	}
	return nil
}

// Merge writes a worker's partial counts.
func (s *Store) Merge(ctx context.Context, t *authorname.Tally) error {
	return s.LoadContext(ctx, t.Rows())
}

// Export yields every row ordered by token. An error that stops iteration
// early is available from Err.
func (s *Store) Export() iter.Seq[authorname.Record] {
	return func(yield func(authorname.Record) bool) {
		rows, err := s.db.Query("SELECT name, occ_given, occ_family FROM name ORDER BY name")
		if err != nil {
			s.fail(errors.Wrap(err, "query export"))
			return
		}
		defer rows.Close()

		for rows.Next() {
			rec, err := scanRecord(rows)
			if err != nil {
				s.fail(err)
				return
			}
			if !yield(rec) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			s.fail(errors.Wrap(err, "iterate export"))
		}
	}
}

// Match is a row returned by Similar.
type Match struct {
	authorname.Record
	Soundex   string `json:"soundex"`
	Metaphone string `json:"metaphone"`
}

// Similar returns the rows sharing the Soundex or Metaphone code of token,
// most observed first.
func (s *Store) Similar(ctx context.Context, token string, limit int) ([]Match, error) {
	soundex, metaphone := phonetic.Keys(authorname.NormalizeKey(token))
	if soundex == "" {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, occ_given, occ_family, soundex, metaphone FROM name
		 WHERE soundex = ? OR (metaphone <> '' AND metaphone = ?)
		 ORDER BY occ_given + occ_family DESC, name LIMIT ?`, soundex, metaphone, limit)
	if err != nil {
		return nil, errors.Wrapf(err, "query phonetic keys %s/%s", soundex, metaphone)
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		var m Match
		var given, family int64
		if err := rows.Scan(&m.Token, &given, &family, &m.Soundex, &m.Metaphone); err != nil {
			return nil, errors.Wrap(err, "scan match")
		}
		m.Given, m.Family = uint64(given), uint64(family)
		out = append(out, m)
	}
	return out, errors.Wrap(rows.Err(), "iterate phonetic matches")
}

// Totals returns the role totals kept by the totals table.
func (s *Store) Totals(ctx context.Context) (given, family uint64, err error) {
	var g, f int64
	err = s.db.QueryRowContext(ctx, "SELECT occ_given, occ_family FROM totals WHERE id = 1").Scan(&g, &f)
	if err != nil {
		return 0, 0, errors.Wrap(err, "query totals")
	}
	return uint64(g), uint64(f), nil
}

// Len returns the number of distinct tokens.
func (s *Store) Len() int {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM name").Scan(&n); err != nil {
		s.fail(errors.Wrap(err, "count rows"))
		return 0
	}
	return n
}

// Err returns the last error swallowed by Query, Export or Len, and clears it.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.err
	s.err = nil
	return err
}

func (s *Store) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func scanRecord(rows *sql.Rows) (authorname.Record, error) {
	var rec authorname.Record
	var given, family int64
	if err := rows.Scan(&rec.Token, &given, &family); err != nil {
		return rec, errors.Wrap(err, "scan row")
	}
	rec.Given, rec.Family = uint64(given), uint64(family)
	return rec, nil
}
