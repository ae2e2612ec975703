package web

import (
	"crypto/rand"
	"embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/Joseda-hg/todolist/internal/db"
	"github.com/Joseda-hg/todolist/internal/export"
	"github.com/Joseda-hg/todolist/internal/i18n"
	"github.com/Joseda-hg/todolist/internal/model"
	"github.com/Joseda-hg/todolist/internal/session"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.tmpl"))

const sessionCookie = "todolist_session"

// Server renders the single-page todo UI. Every action mutates storage,
// resyncs the caller's session state, and redirects back to a full re-render
// of the page.
type Server struct {
	store       *db.Store
	exporter    *export.Exporter
	defaultLang string

	mu       sync.Mutex
	sessions map[string]*session.State
}

func NewServer(store *db.Store, defaultLang string) *Server {
	return &Server{
		store:       store,
		exporter:    export.NewExporter(store),
		defaultLang: defaultLang,
		sessions:    make(map[string]*session.State),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.indexHandler)
	mux.HandleFunc("/todos/create", s.createHandler)
	mux.HandleFunc("/todos/", s.todoActionHandler)
	mux.HandleFunc("/language", s.languageHandler)
	mux.HandleFunc("/admin/create-table", s.createTableHandler)
	mux.HandleFunc("/export", s.exportHandler)
	return mux
}

type todoCard struct {
	Todo    model.Todo
	Editing bool
	Draft   session.Draft
	DueISO  string
}

type indexData struct {
	State        *session.State
	TableMissing bool
	Notice       string
	Cards        []todoCard
	Languages    []string
	AddDraft     session.Draft
	DebugJSON    string
}

// T resolves a label in the session's language; templates call it for every
// visible string.
func (d indexData) T(key string) string {
	return d.State.T(key)
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	st := s.session(w, r)
	st.Lock()
	defer st.Unlock()

	exists, err := s.store.TableExists(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if exists && !st.Loaded() {
		if err := st.RefreshAll(r.Context(), s.store); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}

	data := indexData{
		State:        st,
		TableMissing: !exists,
		Notice:       st.TakeNotice(),
		Languages:    languages(),
		AddDraft:     st.AddDraft,
	}

	if exists {
		for _, todo := range st.Ordered() {
			card := todoCard{Todo: todo, Editing: st.IsEditing(todo.ID)}
			if todo.DueAt != nil {
				card.DueISO = todo.DueAt.Format("2006-01-02")
			}
			if card.Editing {
				card.Draft = st.EditDraft(todo.ID)
			}
			data.Cards = append(data.Cards, card)
		}
	}

	if dump, err := json.MarshalIndent(st, "", "  "); err == nil {
		data.DebugJSON = string(dump)
	}

	if err := indexTemplate.Execute(w, data); err != nil {
		writeError(w, http.StatusInternalServerError, err)
	}
}

func (s *Server) createHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	st := s.session(w, r)
	st.Lock()
	defer st.Unlock()

	draft := draftFromForm(r)
	input, err := draft.Input()
	if err != nil {
		st.Notice = st.T("invalid_due_date")
		st.AddDraft = draft
		redirectHome(w, r)
		return
	}

	if err := s.store.Insert(r.Context(), input); err != nil {
		if errors.Is(err, db.ErrEmptyTitle) {
			st.Notice = st.T("title_empty_create")
			st.AddDraft = draft
			redirectHome(w, r)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	st.AddDraft = session.Draft{}
	if err := st.RefreshAll(r.Context(), s.store); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	redirectHome(w, r)
}

func (s *Server) todoActionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id, action, err := parseAction(r.URL.Path)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	st := s.session(w, r)
	st.Lock()
	defer st.Unlock()
	ctx := r.Context()

	switch action {
	case "toggle":
		err = st.ToggleDone(ctx, s.store, id)
	case "edit":
		if todo, ok := st.Todos[id]; ok && !todo.Done {
			st.StartEditing(id)
		}
	case "cancel":
		st.StopEditing(id)
	case "save":
		s.saveHandler(w, r, st, id)
		return
	case "delete":
		if err = s.store.Delete(ctx, id); err == nil {
			st.StopEditing(id)
			err = st.RefreshAll(ctx, s.store)
		}
	default:
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown action %q", action))
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	redirectHome(w, r)
}

func (s *Server) saveHandler(w http.ResponseWriter, r *http.Request, st *session.State, id int64) {
	draft := draftFromForm(r)
	input, err := draft.Input()
	if err != nil {
		st.Notice = st.T("invalid_due_date")
		st.SetEditDraft(id, draft)
		st.StartEditing(id)
		redirectHome(w, r)
		return
	}

	if err := s.store.Update(r.Context(), id, input); err != nil {
		if errors.Is(err, db.ErrEmptyTitle) {
			st.Notice = st.T("title_empty_update")
			st.SetEditDraft(id, draft)
			st.StartEditing(id)
			redirectHome(w, r)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	st.StopEditing(id)
	if err := st.RefreshOne(r.Context(), s.store, id); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	redirectHome(w, r)
}

func (s *Server) languageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	st := s.session(w, r)
	st.Lock()
	defer st.Unlock()
	st.SetLanguage(r.FormValue("lang"))
	redirectHome(w, r)
}

func (s *Server) createTableHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	st := s.session(w, r)
	st.Lock()
	defer st.Unlock()

	if err := s.store.CreateTable(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if err := st.RefreshAll(r.Context(), s.store); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	st.Notice = st.T("table_created")
	redirectHome(w, r)
}

func (s *Server) exportHandler(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	data, err := s.exporter.Export(r.Context(), format)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType(format))
	_, _ = w.Write(data)
}

// session returns the caller's state, creating it (and the cookie) on first
// contact. Each browser session gets its own isolated store.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *session.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if st, ok := s.sessions[cookie.Value]; ok {
			return st
		}
	}

	id := newSessionID()
	st := session.New()
	if s.defaultLang != "" {
		st.SetLanguage(s.defaultLang)
	}
	s.sessions[id] = st
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: id, Path: "/", HttpOnly: true})
	return st
}

func newSessionID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func draftFromForm(r *http.Request) session.Draft {
	return session.Draft{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		DueAt:       strings.TrimSpace(r.FormValue("due_date")),
	}
}

func parseAction(path string) (int64, string, error) {
	rest := strings.TrimPrefix(path, "/todos/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 {
		return 0, "", fmt.Errorf("invalid path")
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid id %q", parts[0])
	}
	return id, parts[1], nil
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.WriteHeader(status)
	_, _ = w.Write([]byte(err.Error()))
}

func languages() []string {
	return i18n.Languages()
}
