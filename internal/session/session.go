package session

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Joseda-hg/todolist/internal/db"
	"github.com/Joseda-hg/todolist/internal/i18n"
	"github.com/Joseda-hg/todolist/internal/model"
)

// Draft keeps the raw form values a user typed, so a rejected submit can
// re-render the form without losing input.
type Draft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueAt       string `json:"due_at"`
}

// Input converts the raw form values into a gateway input. The due date
// must be empty or YYYY-MM-DD.
func (d Draft) Input() (db.TodoInput, error) {
	input := db.TodoInput{Title: d.Title, Description: d.Description}

	trimmed := strings.TrimSpace(d.DueAt)
	if trimmed != "" {
		parsed, err := time.Parse("2006-01-02", trimmed)
		if err != nil {
			return db.TodoInput{}, ErrInvalidDueDate
		}
		input.DueAt = &parsed
	}
	return input, nil
}

// ErrInvalidDueDate rejects a due date that is neither empty nor YYYY-MM-DD.
var ErrInvalidDueDate = errors.New("invalid due date")

// DraftFromTodo pre-fills an edit form with a todo's stored values.
func DraftFromTodo(todo model.Todo) Draft {
	draft := Draft{Title: todo.Title, Description: todo.Description}
	if todo.DueAt != nil {
		draft.DueAt = todo.DueAt.Format("2006-01-02")
	}
	return draft
}

// State is one user session's view of the world: a cache of the todo table
// keyed by id, the per-todo editing flag, and the selected language. It is
// the single source of truth for rendering; every mutation resyncs it from
// storage before control returns to the renderer.
type State struct {
	mu sync.Mutex

	Todos      map[int64]model.Todo `json:"todos_data"`
	Editing    map[int64]bool       `json:"currently_editing"`
	Language   string               `json:"lang_selector"`
	Notice     string               `json:"notice,omitempty"`
	AddDraft   Draft                `json:"new_todo_form"`
	EditDrafts map[int64]Draft      `json:"edit_todo_forms,omitempty"`

	loaded bool
}

func New() *State {
	return &State{
		Editing:    make(map[int64]bool),
		EditDrafts: make(map[int64]Draft),
		Language:   i18n.English,
	}
}

// Lock serializes access for surfaces that share a State across goroutines.
// A web handler holds it for its whole mutate-resync-render cycle, so two
// requests on the same session never interleave.
func (st *State) Lock() { st.mu.Lock() }

func (st *State) Unlock() { st.mu.Unlock() }

// T resolves a translation key against the session language.
func (st *State) T(key string) string {
	return i18n.Resolve(st.Language, key)
}

func (st *State) SetLanguage(lang string) {
	if i18n.Known(lang) {
		st.Language = lang
	}
}

// Loaded reports whether the todo cache has been populated at least once.
func (st *State) Loaded() bool {
	return st.loaded
}

// RefreshAll reloads the entire todo map from storage. Editing flags for ids
// that no longer exist are dropped with their rows.
func (st *State) RefreshAll(ctx context.Context, store *db.Store) error {
	todos, err := store.LoadAll(ctx)
	if err != nil {
		return err
	}
	st.Todos = todos
	st.loaded = true

	for id := range st.Editing {
		if _, ok := todos[id]; !ok {
			delete(st.Editing, id)
			delete(st.EditDrafts, id)
		}
	}
	return nil
}

// RefreshOne reloads a single row from storage. A row deleted underneath us
// simply disappears from the cache.
func (st *State) RefreshOne(ctx context.Context, store *db.Store, id int64) error {
	todo, err := store.LoadOne(ctx, id)
	if err != nil {
		return err
	}
	if todo == nil {
		delete(st.Todos, id)
		delete(st.Editing, id)
		delete(st.EditDrafts, id)
		return nil
	}
	if st.Todos == nil {
		st.Todos = make(map[int64]model.Todo)
	}
	st.Todos[id] = *todo
	return nil
}

// ToggleDone negates the done flag as cached in this session (not a fresh
// read), writes it, then reloads the row.
func (st *State) ToggleDone(ctx context.Context, store *db.Store, id int64) error {
	todo, ok := st.Todos[id]
	if !ok {
		return nil
	}
	if err := store.SetDone(ctx, id, !todo.Done); err != nil {
		return err
	}
	return st.RefreshOne(ctx, store, id)
}

func (st *State) StartEditing(id int64) {
	if _, ok := st.Todos[id]; ok {
		st.Editing[id] = true
	}
}

func (st *State) StopEditing(id int64) {
	delete(st.Editing, id)
	delete(st.EditDrafts, id)
}

func (st *State) IsEditing(id int64) bool {
	return st.Editing[id]
}

// SetEditDraft retains a rejected edit submission for re-rendering.
func (st *State) SetEditDraft(id int64, draft Draft) {
	if st.EditDrafts == nil {
		st.EditDrafts = make(map[int64]Draft)
	}
	st.EditDrafts[id] = draft
}

// EditDraft returns the retained draft for a row, falling back to the
// stored values.
func (st *State) EditDraft(id int64) Draft {
	if draft, ok := st.EditDrafts[id]; ok {
		return draft
	}
	return DraftFromTodo(st.Todos[id])
}

// Ordered returns the cached todos in id order, the order they render in.
func (st *State) Ordered() []model.Todo {
	ids := make([]int64, 0, len(st.Todos))
	for id := range st.Todos {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	todos := make([]model.Todo, 0, len(ids))
	for _, id := range ids {
		todos = append(todos, st.Todos[id])
	}
	return todos
}

// TakeNotice returns the pending transient notice and clears it.
func (st *State) TakeNotice() string {
	notice := st.Notice
	st.Notice = ""
	return notice
}
