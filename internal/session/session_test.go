package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joseda-hg/todolist/internal/db"
	"github.com/Joseda-hg/todolist/internal/i18n"
)

func newTestStore(t *testing.T) *db.Store {
	t.Helper()
	conn, err := db.Open(db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	store := db.NewStore(conn, db.DriverSQLite)
	require.NoError(t, store.CreateTable(context.Background()))
	return store
}

func TestRefreshAllPopulatesCache(t *testing.T) {
	store := newTestStore(t)
	st := New()

	require.NoError(t, store.Insert(context.Background(), db.TodoInput{Title: "one"}))
	require.NoError(t, store.Insert(context.Background(), db.TodoInput{Title: "two"}))

	assert.False(t, st.Loaded())
	require.NoError(t, st.RefreshAll(context.Background(), store))
	assert.True(t, st.Loaded())
	assert.Len(t, st.Todos, 2)

	ordered := st.Ordered()
	require.Len(t, ordered, 2)
	assert.Equal(t, "one", ordered[0].Title)
	assert.Equal(t, "two", ordered[1].Title)
	assert.Less(t, ordered[0].ID, ordered[1].ID)
}

func TestRefreshAllDropsStaleEditingFlags(t *testing.T) {
	store := newTestStore(t)
	st := New()

	require.NoError(t, store.Insert(context.Background(), db.TodoInput{Title: "ephemeral"}))
	require.NoError(t, st.RefreshAll(context.Background(), store))
	id := st.Ordered()[0].ID

	st.StartEditing(id)
	require.True(t, st.IsEditing(id))

	require.NoError(t, store.Delete(context.Background(), id))
	require.NoError(t, st.RefreshAll(context.Background(), store))

	assert.False(t, st.IsEditing(id))
	assert.Empty(t, st.Todos)
}

func TestRefreshOneDropsDeletedRow(t *testing.T) {
	store := newTestStore(t)
	st := New()

	require.NoError(t, store.Insert(context.Background(), db.TodoInput{Title: "going away"}))
	require.NoError(t, st.RefreshAll(context.Background(), store))
	id := st.Ordered()[0].ID

	require.NoError(t, store.Delete(context.Background(), id))
	require.NoError(t, st.RefreshOne(context.Background(), store, id))

	_, ok := st.Todos[id]
	assert.False(t, ok)
}

func TestToggleDoneIsAnInvolution(t *testing.T) {
	store := newTestStore(t)
	st := New()

	require.NoError(t, store.Insert(context.Background(), db.TodoInput{Title: "flip me"}))
	require.NoError(t, st.RefreshAll(context.Background(), store))
	id := st.Ordered()[0].ID
	require.False(t, st.Todos[id].Done)

	require.NoError(t, st.ToggleDone(context.Background(), store, id))
	assert.True(t, st.Todos[id].Done)

	require.NoError(t, st.ToggleDone(context.Background(), store, id))
	assert.False(t, st.Todos[id].Done)
}

func TestDraftInputParsesDueDate(t *testing.T) {
	input, err := Draft{Title: "dated", DueAt: "2024-01-10"}.Input()
	require.NoError(t, err)
	require.NotNil(t, input.DueAt)
	assert.Equal(t, "2024-01-10", input.DueAt.Format("2006-01-02"))

	input, err = Draft{Title: "open ended"}.Input()
	require.NoError(t, err)
	assert.Nil(t, input.DueAt)

	_, err = Draft{Title: "dated", DueAt: "tomorrow"}.Input()
	assert.ErrorIs(t, err, ErrInvalidDueDate)
}

func TestStartEditingUnknownIDIsIgnored(t *testing.T) {
	st := New()
	st.StartEditing(42)
	assert.False(t, st.IsEditing(42))
}

func TestLanguage(t *testing.T) {
	st := New()
	assert.Equal(t, i18n.English, st.Language)
	assert.Equal(t, "Save", st.T("save"))

	st.SetLanguage(i18n.Russian)
	assert.Equal(t, "Сохранить", st.T("save"))

	st.SetLanguage("Klingon")
	assert.Equal(t, i18n.Russian, st.Language)
}

func TestTakeNoticeClears(t *testing.T) {
	st := New()
	st.Notice = "Title cannot be empty"
	assert.Equal(t, "Title cannot be empty", st.TakeNotice())
	assert.Empty(t, st.TakeNotice())
}
