package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/usersearch/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/usersearch/internal/core/domain"
	"github.com/custodia-labs/usersearch/internal/core/ports/driven"
	"github.com/custodia-labs/usersearch/internal/logger"
)

// PageSize bounds the number of users one live query returns.
const PageSize = 100

// Store is a SQLite-based known-users store. Live queries opened with
// Watch are re-run every time Upsert or Remove changes the table.
type Store struct {
	db   *sql.DB
	path string

	mu       sync.Mutex
	watchers map[uint64]chan struct{}
	nextID   uint64
}

// Ensure Store implements the interface.
var _ driven.KnownUserRepository = (*Store)(nil)

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.usersearch/data/users.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".usersearch", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "users.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:       db,
		path:     dbPath,
		watchers: make(map[uint64]chan struct{}),
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	pending, err := migrations.After(fsys, currentVersion)
	if err != nil {
		return err
	}

	for _, m := range pending {
		if _, err := s.db.Exec(m.SQL); err != nil {
			return fmt.Errorf("executing migration %s: %w", m.Name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
			return fmt.Errorf("recording migration %s: %w", m.Name, err)
		}
		logger.Debug("applied migration %s", m.Name)
	}

	return nil
}

// ==================== Known Users ====================

// Upsert stores users, replacing existing profiles with the same id.
func (s *Store) Upsert(ctx context.Context, users ...domain.UserProfile) error {
	if len(users) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().Unix()
	for _, u := range users {
		if u.ID == "" {
			return fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO known_users (id, display_name, avatar_url, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				display_name = excluded.display_name,
				avatar_url = excluded.avatar_url,
				updated_at = excluded.updated_at
		`, u.ID, u.DisplayName, u.AvatarURL, now)
		if err != nil {
			return fmt.Errorf("saving user %s: %w", u.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing users: %w", err)
	}

	s.notify()
	return nil
}

// Remove deletes a user.
func (s *Store) Remove(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM known_users WHERE id = ?", userID)
	if err != nil {
		return fmt.Errorf("removing user: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.notify()
	}
	return nil
}

// List returns every known user ordered by display name.
func (s *Store) List(ctx context.Context) ([]domain.UserProfile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, display_name, avatar_url
		FROM known_users
		ORDER BY CASE WHEN display_name = '' THEN id ELSE display_name END COLLATE NOCASE, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

// Watch opens a live query. The first page is sent immediately and a new
// one after every change to the table, until ctx is done.
func (s *Store) Watch(ctx context.Context, term string, exclude domain.ExclusionSet) (<-chan driven.KnownUsersUpdate, error) {
	changed := make(chan struct{}, 1)
	id := s.subscribe(changed)

	first, err := s.query(ctx, term, exclude)
	if err != nil {
		s.unsubscribe(id)
		return nil, err
	}

	out := make(chan driven.KnownUsersUpdate, 1)
	go func() {
		defer close(out)
		defer s.unsubscribe(id)

		users := first
		for {
			select {
			case out <- driven.KnownUsersUpdate{Users: users}:
			case <-ctx.Done():
				return
			}

			select {
			case <-changed:
			case <-ctx.Done():
				return
			}

			users, err = s.query(ctx, term, exclude)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				select {
				case out <- driven.KnownUsersUpdate{Err: err}:
				case <-ctx.Done():
				}
				return
			}
		}
	}()

	return out, nil
}

// query returns the first page of users whose id or display name contains
// term, case-insensitively.
func (s *Store) query(ctx context.Context, term string, exclude domain.ExclusionSet) ([]domain.UserProfile, error) {
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(term))) + "%"

	query := `
		SELECT id, display_name, avatar_url
		FROM known_users
		WHERE (lower(id) LIKE ? ESCAPE '\' OR lower(display_name) LIKE ? ESCAPE '\')`
	args := []any{pattern, pattern}

	if excluded := exclude.IDs(); len(excluded) > 0 {
		query += " AND id NOT IN (" + strings.TrimSuffix(strings.Repeat("?,", len(excluded)), ",") + ")"
		for _, id := range excluded {
			args = append(args, id)
		}
	}

	query += `
		ORDER BY CASE WHEN display_name = '' THEN id ELSE display_name END COLLATE NOCASE, id
		LIMIT ?`
	args = append(args, PageSize)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying known users: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

func (s *Store) subscribe(ch chan struct{}) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = ch
	return id
}

func (s *Store) unsubscribe(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.watchers, id)
}

// notify wakes every live query. Wake-ups coalesce.
func (s *Store) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// ==================== Helper Functions ====================

func scanUsers(rows *sql.Rows) ([]domain.UserProfile, error) {
	users := []domain.UserProfile{}
	for rows.Next() {
		var u domain.UserProfile
		if err := rows.Scan(&u.ID, &u.DisplayName, &u.AvatarURL); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return users, nil
}

// escapeLike escapes the LIKE wildcards in s.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
