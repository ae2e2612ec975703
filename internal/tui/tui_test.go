package tui

import (
	"context"
	"strings"
	"testing"

	"github.com/Joseda-hg/todolist/internal/db"
	"github.com/Joseda-hg/todolist/internal/i18n"
	"github.com/Joseda-hg/todolist/internal/session"
)

func TestRefreshGatesOnMissingTable(t *testing.T) {
	store, cleanup := newTestStore(t, false)
	defer cleanup()

	ui := newTestUI(store)
	if err := ui.refresh(); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if ui.tableExists {
		t.Fatalf("expected missing table to be detected")
	}
	if len(ui.todos) != 0 {
		t.Fatalf("expected no todos without a table, got %d", len(ui.todos))
	}

	if err := ui.createTable(nil, nil); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if !ui.tableExists {
		t.Fatalf("expected table after createTable")
	}
}

func TestSubmitFormCreatesTodo(t *testing.T) {
	store, cleanup := newTestStore(t, true)
	defer cleanup()

	ui := newTestUI(store)
	if err := ui.refresh(); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if err := ui.addTodo(nil, nil); err != nil {
		t.Fatalf("add todo: %v", err)
	}
	if ui.form == nil {
		t.Fatalf("expected form to open")
	}
	ui.form.fields[fieldTitle].Value = "Buy milk"
	ui.form.fields[fieldDue].Value = "2024-01-10"

	if err := ui.submitForm(nil, nil); err != nil {
		t.Fatalf("submit form: %v", err)
	}
	if ui.form != nil {
		t.Fatalf("expected form to close after successful submit")
	}
	if len(ui.todos) != 1 {
		t.Fatalf("expected 1 todo, got %d", len(ui.todos))
	}
	if ui.todos[0].Title != "Buy milk" {
		t.Fatalf("expected title 'Buy milk', got %q", ui.todos[0].Title)
	}
}

func TestSubmitFormKeepsFormOpenOnEmptyTitle(t *testing.T) {
	store, cleanup := newTestStore(t, true)
	defer cleanup()

	ui := newTestUI(store)
	if err := ui.refresh(); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if err := ui.addTodo(nil, nil); err != nil {
		t.Fatalf("add todo: %v", err)
	}
	ui.form.fields[fieldDescription].Value = "typed but untitled"

	if err := ui.submitForm(nil, nil); err != nil {
		t.Fatalf("submit form: %v", err)
	}
	if ui.form == nil {
		t.Fatalf("expected form to stay open after rejected submit")
	}
	if ui.status != "Title empty, not adding todo" {
		t.Fatalf("unexpected status %q", ui.status)
	}
	if len(ui.state.Todos) != 0 {
		t.Fatalf("expected no rows after rejected submit")
	}
}

func TestSubmitFormRejectsMalformedDueDate(t *testing.T) {
	store, cleanup := newTestStore(t, true)
	defer cleanup()

	ui := newTestUI(store)
	if err := ui.refresh(); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if err := ui.addTodo(nil, nil); err != nil {
		t.Fatalf("add todo: %v", err)
	}
	ui.form.fields[fieldTitle].Value = "dated"
	ui.form.fields[fieldDue].Value = "tomorrow"

	if err := ui.submitForm(nil, nil); err != nil {
		t.Fatalf("submit form: %v", err)
	}
	if ui.form == nil {
		t.Fatalf("expected form to stay open after rejected submit")
	}
	if ui.status != "Invalid due date, use YYYY-MM-DD" {
		t.Fatalf("unexpected status %q", ui.status)
	}
	if len(ui.state.Todos) != 0 {
		t.Fatalf("expected no rows after rejected submit")
	}
}

func TestDetailLinesAreLocalized(t *testing.T) {
	store, cleanup := newTestStore(t, true)
	defer cleanup()

	if err := store.Insert(context.Background(), db.TodoInput{Title: "перевод"}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	ui := newTestUI(store)
	ui.state.SetLanguage(i18n.Russian)
	if err := ui.refresh(); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	detail := strings.Join(ui.detailLines(ui.todos[0]), "\n")
	if !strings.Contains(detail, "Создано:") {
		t.Fatalf("expected localized created label in %q", detail)
	}
	if strings.Contains(detail, "Created") {
		t.Fatalf("expected no english label in %q", detail)
	}
}

func TestEditIsDisabledForDoneTodos(t *testing.T) {
	store, cleanup := newTestStore(t, true)
	defer cleanup()

	if err := store.Insert(context.Background(), db.TodoInput{Title: "finished"}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	ui := newTestUI(store)
	if err := ui.refresh(); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if err := ui.toggleDone(nil, nil); err != nil {
		t.Fatalf("toggle done: %v", err)
	}
	if !ui.todos[0].Done {
		t.Fatalf("expected todo to be done")
	}

	if err := ui.editTodo(nil, nil); err != nil {
		t.Fatalf("edit todo: %v", err)
	}
	if ui.form != nil {
		t.Fatalf("expected edit to be disabled for a done todo")
	}
}

func TestToggleDoneTwiceRestoresState(t *testing.T) {
	store, cleanup := newTestStore(t, true)
	defer cleanup()

	if err := store.Insert(context.Background(), db.TodoInput{Title: "flip"}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	ui := newTestUI(store)
	if err := ui.refresh(); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if err := ui.toggleDone(nil, nil); err != nil {
		t.Fatalf("toggle done: %v", err)
	}
	if !ui.todos[0].Done {
		t.Fatalf("expected done after first toggle")
	}
	if err := ui.toggleDone(nil, nil); err != nil {
		t.Fatalf("toggle done again: %v", err)
	}
	if ui.todos[0].Done {
		t.Fatalf("expected not done after second toggle")
	}
}

func TestDeleteTodoClearsEditingFlag(t *testing.T) {
	store, cleanup := newTestStore(t, true)
	defer cleanup()

	if err := store.Insert(context.Background(), db.TodoInput{Title: "short lived"}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	ui := newTestUI(store)
	if err := ui.refresh(); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	id := ui.todos[0].ID
	ui.state.StartEditing(id)

	if err := ui.deleteTodo(nil, nil); err != nil {
		t.Fatalf("delete todo: %v", err)
	}
	if len(ui.todos) != 0 {
		t.Fatalf("expected empty list after delete, got %d", len(ui.todos))
	}
	if ui.state.IsEditing(id) {
		t.Fatalf("expected editing flag to be cleared by delete")
	}
}

func newTestUI(store *db.Store) *UI {
	ui := &UI{store: store, state: session.New()}
	ui.formEditor = &formEditor{ui: ui}
	return ui
}

func newTestStore(t *testing.T, createTable bool) (*db.Store, func()) {
	t.Helper()
	conn, err := db.Open(db.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	store := db.NewStore(conn, db.DriverSQLite)
	if createTable {
		if err := store.CreateTable(context.Background()); err != nil {
			_ = conn.Close()
			t.Fatalf("create table: %v", err)
		}
	}
	return store, func() {
		_ = conn.Close()
	}
}
