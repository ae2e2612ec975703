package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/todolist/internal/cache"
	"github.com/Joseda-hg/todolist/internal/model"
)

const (
	todoTable = "todo"

	// How long a table-existence probe stays valid before the schema is
	// inspected again.
	existsTTL = 5 * time.Minute

	dateLayout = "2006-01-02"
)

// ErrEmptyTitle rejects any write that would persist a blank title.
var ErrEmptyTitle = errors.New("title must not be empty")

type Store struct {
	DB     *sql.DB
	driver string
	exists *cache.Memory
}

type TodoInput struct {
	Title       string
	Description string
	DueAt       *time.Time
}

func NewStore(db *sql.DB, driver string) *Store {
	return &Store{DB: db, driver: driver, exists: cache.NewMemory(existsTTL)}
}

// TableExists inspects schema metadata for the todo table. Results are
// cached for a short TTL so the check does not hit the schema on every
// render; CreateTable refreshes the cache.
func (s *Store) TableExists(ctx context.Context) (bool, error) {
	if val, ok := s.exists.Get(todoTable); ok {
		return val, nil
	}

	var name string
	err := s.DB.QueryRowContext(ctx, s.existsQuery(), todoTable).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		s.exists.Set(todoTable, false)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check %s table: %w", todoTable, err)
	}

	s.exists.Set(todoTable, true)
	return true, nil
}

func (s *Store) existsQuery() string {
	if s.driver == DriverMySQL {
		return "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?"
	}
	return "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?"
}

// CreateTable provisions the todo table. Safe to call when the table already
// exists.
func (s *Store) CreateTable(ctx context.Context) error {
	ddl, err := schemaSQL(s.driver)
	if err != nil {
		return err
	}
	if _, err := s.DB.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create %s table: %w", todoTable, err)
	}
	s.exists.Set(todoTable, true)
	return nil
}

// LoadAll selects every row ordered by id ascending, keyed by id.
func (s *Store) LoadAll(ctx context.Context) (map[int64]model.Todo, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT id, title, description, created_at, due_at, done FROM todo ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos := make(map[int64]model.Todo)
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos[todo.ID] = todo
	}
	return todos, rows.Err()
}

// LoadOne selects a single row by id, returning nil when no such row exists.
func (s *Store) LoadOne(ctx context.Context, id int64) (*model.Todo, error) {
	row := s.DB.QueryRowContext(ctx, "SELECT id, title, description, created_at, due_at, done FROM todo WHERE id = ?", id)
	todo, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

// Insert creates a row with created_at set to the current date and done
// false. A blank title is rejected with ErrEmptyTitle and nothing is written.
func (s *Store) Insert(ctx context.Context, input TodoInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return ErrEmptyTitle
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO todo (title, description, created_at, due_at, done) VALUES (?, ?, ?, ?, ?)",
			input.Title, nullableText(input.Description), time.Now().Format(dateLayout), nullableDate(input.DueAt), false)
		return err
	})
}

// Update rewrites title, description and due date. id, created_at and done
// are never touched. A blank title is rejected with ErrEmptyTitle and the
// stored row is left unchanged.
func (s *Store) Update(ctx context.Context, id int64, input TodoInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return ErrEmptyTitle
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"UPDATE todo SET title = ?, description = ?, due_at = ? WHERE id = ?",
			input.Title, nullableText(input.Description), nullableDate(input.DueAt), id)
		return err
	})
}

// Delete removes a row. Deleting an id that no longer exists is a no-op.
func (s *Store) Delete(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM todo WHERE id = ?", id)
		return err
	})
}

// SetDone writes the done flag for a row.
func (s *Store) SetDone(ctx context.Context, id int64, done bool) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "UPDATE todo SET done = ? WHERE id = ?", done, id)
		return err
	})
}

// withTx runs fn inside a transaction committed only after fn succeeds, so
// no partial write is ever observable.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(row scanner) (model.Todo, error) {
	var (
		todo        model.Todo
		description sql.NullString
		createdAt   string
		dueAt       sql.NullString
	)
	if err := row.Scan(&todo.ID, &todo.Title, &description, &createdAt, &dueAt, &todo.Done); err != nil {
		return model.Todo{}, err
	}

	todo.Description = description.String

	created, err := parseDate(createdAt)
	if err != nil {
		return model.Todo{}, err
	}
	todo.CreatedAt = created

	if dueAt.Valid && dueAt.String != "" {
		due, err := parseDate(dueAt.String)
		if err != nil {
			return model.Todo{}, err
		}
		todo.DueAt = &due
	}

	return todo, nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range []string{dateLayout, time.RFC3339, "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q", value)
}

func nullableDate(value *time.Time) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: value.Format(dateLayout), Valid: true}
}

func nullableText(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
