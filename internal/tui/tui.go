package tui

import (
	"context"
	"fmt"
	"strings"

	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"

	"github.com/Joseda-hg/todolist/internal/db"
	"github.com/Joseda-hg/todolist/internal/i18n"
	"github.com/Joseda-hg/todolist/internal/model"
	"github.com/Joseda-hg/todolist/internal/session"
)

const (
	viewHeader  = "header"
	viewFooter  = "footer"
	viewList    = "todos"
	viewDetail  = "detail"
	viewWarning = "warning"
	viewForm    = "form"
)

type UI struct {
	store *db.Store
	gui   *gocui.Gui
	state *session.State

	tableExists bool
	todos       []model.Todo
	selected    int

	form       *formState
	formEditor *formEditor
	status     string
}

type formState struct {
	todoID int64
	fields []formField
	index  int
}

type formEditor struct {
	ui *UI
}

func Run(store *db.Store, state *session.State) error {
	gui, err := gocui.NewGui(gocui.NewGuiOpts{OutputMode: gocui.OutputNormal})
	if err != nil {
		return err
	}
	defer gui.Close()

	ui := &UI{store: store, gui: gui, state: state}
	ui.formEditor = &formEditor{ui: ui}

	gui.SetManagerFunc(ui.layout)
	if err := ui.bindKeys(gui); err != nil {
		return err
	}
	if err := ui.refresh(); err != nil {
		return err
	}

	if err := gui.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}

	return nil
}

func (u *UI) bindKeys(gui *gocui.Gui) error {
	if err := gui.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, u.quit); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'q', gocui.ModNone, u.quit); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'r', gocui.ModNone, u.reload); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'l', gocui.ModNone, u.cycleLanguage); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'c', gocui.ModNone, u.createTable); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'a', gocui.ModNone, u.addTodo); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'e', gocui.ModNone, u.editTodo); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'd', gocui.ModNone, u.deleteTodo); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'x', gocui.ModNone, u.toggleDone); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewList, gocui.KeyArrowDown, gocui.ModNone, u.moveDown); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewList, 'j', gocui.ModNone, u.moveDown); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewList, gocui.KeyArrowUp, gocui.ModNone, u.moveUp); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewList, 'k', gocui.ModNone, u.moveUp); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyEnter, gocui.ModNone, u.submitForm); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyTab, gocui.ModNone, u.nextFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyBacktab, gocui.ModNone, u.prevFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyArrowDown, gocui.ModNone, u.nextFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyArrowUp, gocui.ModNone, u.prevFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyEsc, gocui.ModNone, u.cancelForm); err != nil {
		return err
	}
	return nil
}

func (u *UI) layout(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	if maxX <= 0 || maxY <= 0 {
		return nil
	}

	headerView, err := gui.SetView(viewHeader, 0, 0, maxX-1, 0, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	headerView.Frame = false
	headerView.Wrap = true
	u.renderHeader(headerView)

	footerY0 := maxY - 3
	if footerY0 < 1 {
		footerY0 = 1
	}
	footerView, err := gui.SetView(viewFooter, 0, footerY0, maxX-1, maxY-1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	footerView.Frame = false
	footerView.Wrap = true
	footerView.FgColor = gocui.ColorDefault | gocui.AttrDim
	u.renderFooter(footerView)

	bodyTop := 1
	bodyBottom := footerY0 - 1
	if bodyBottom < bodyTop {
		return nil
	}

	if !u.tableExists {
		warningView, err := gui.SetView(viewWarning, 0, bodyTop, maxX-1, bodyBottom, 0)
		if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		warningView.Frame = true
		warningView.FrameColor = gocui.ColorRed
		warningView.Wrap = true
		warningView.Clear()
		fmt.Fprint(warningView, u.state.T("table_warning"))
		_, _ = gui.SetCurrentView(viewWarning)
		return nil
	}
	_ = gui.DeleteView(viewWarning)

	listWidth := maxX / 2
	if listWidth < 30 {
		listWidth = min(30, maxX-2)
	}

	listView, err := gui.SetView(viewList, 0, bodyTop, listWidth-1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	listView.Title = u.state.T("title")
	applyViewStyle(listView, u.form == nil)
	u.renderList(listView)

	detailView, err := gui.SetView(viewDetail, listWidth, bodyTop, maxX-1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	detailView.Title = u.state.T("description")
	applyViewStyle(detailView, false)
	u.renderDetail(detailView)

	if u.form != nil {
		if err := u.showForm(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewForm)
		if gui.CurrentView() == nil || gui.CurrentView().Name() == viewForm {
			_, _ = gui.SetCurrentView(viewList)
		}
	}

	if gui.CurrentView() == nil {
		_, _ = gui.SetCurrentView(viewList)
	}

	gui.Cursor = u.form != nil

	return nil
}

// refresh re-checks the table gate and resynchronizes the session store,
// then rebuilds the ordered render snapshot.
func (u *UI) refresh() error {
	exists, err := u.store.TableExists(context.Background())
	if err != nil {
		return err
	}
	u.tableExists = exists
	if !exists {
		u.todos = nil
		return nil
	}

	if err := u.state.RefreshAll(context.Background(), u.store); err != nil {
		return err
	}
	u.todos = u.state.Ordered()
	if u.selected >= len(u.todos) {
		u.selected = max(len(u.todos)-1, 0)
	}
	return nil
}

func (u *UI) renderHeader(view *gocui.View) {
	view.Clear()
	fmt.Fprintf(view, "%s | %s: %s", u.state.T("title"), u.state.T("language_label"), u.state.Language)
}

func (u *UI) renderFooter(view *gocui.View) {
	view.Clear()
	if u.tableExists {
		fmt.Fprintln(view, "a add | e edit | d delete | x done | l language | r reload | q quit")
	} else {
		fmt.Fprintln(view, "c create table | l language | q quit")
	}
	if u.status != "" {
		fmt.Fprint(view, u.status)
	}
}

func (u *UI) renderList(view *gocui.View) {
	view.Clear()
	for i, todo := range u.todos {
		prefix := " "
		if i == u.selected {
			prefix = ">"
		}
		fmt.Fprintf(view, "%s %s\n", prefix, u.formatTodoSummary(todo))
	}
	if len(u.todos) > 0 {
		view.SetCursor(0, min(u.selected, len(u.todos)-1))
	}
}

func (u *UI) formatTodoSummary(todo model.Todo) string {
	mark := "[ ]"
	if todo.Done {
		mark = "[x]"
	}
	summary := fmt.Sprintf("%s %s", mark, todo.Title)
	if todo.DueAt != nil {
		summary += fmt.Sprintf(" | %s %s", u.state.T("due_prefix"), todo.DueAt.Format("2006-01-02"))
	}
	return summary
}

func (u *UI) renderDetail(view *gocui.View) {
	view.Clear()
	todo := u.selectedTodo()
	if todo == nil {
		return
	}
	fmt.Fprint(view, strings.Join(u.detailLines(*todo), "\n"))
}

func (u *UI) detailLines(todo model.Todo) []string {
	description := todo.Description
	if description == "" {
		description = u.state.T("no_description")
	}

	doneLabel := u.state.T("done")
	if todo.Done {
		doneLabel = u.state.T("redo")
	}

	due := "-"
	if todo.DueAt != nil {
		due = todo.DueAt.Format("2006-01-02")
	}

	return []string{
		todo.Title,
		"",
		description,
		"",
		fmt.Sprintf("%s: %s", u.state.T("due_date"), due),
		fmt.Sprintf("%s: %s", u.state.T("created"), todo.CreatedAt.Format("2006-01-02")),
		fmt.Sprintf("x: %s", doneLabel),
	}
}

func (u *UI) selectedTodo() *model.Todo {
	if u.selected >= 0 && u.selected < len(u.todos) {
		return &u.todos[u.selected]
	}
	return nil
}

func (u *UI) moveDown(gui *gocui.Gui, _ *gocui.View) error {
	if u.form != nil {
		return nil
	}
	if u.selected < len(u.todos)-1 {
		u.selected++
	}
	return nil
}

func (u *UI) moveUp(gui *gocui.Gui, _ *gocui.View) error {
	if u.form != nil {
		return nil
	}
	if u.selected > 0 {
		u.selected--
	}
	return nil
}

func (u *UI) reload(gui *gocui.Gui, _ *gocui.View) error {
	if u.form != nil {
		return nil
	}
	u.status = ""
	return u.refresh()
}

func (u *UI) cycleLanguage(gui *gocui.Gui, _ *gocui.View) error {
	if u.form != nil {
		return nil
	}
	langs := i18n.Languages()
	for i, lang := range langs {
		if lang == u.state.Language {
			u.state.SetLanguage(langs[(i+1)%len(langs)])
			return nil
		}
	}
	u.state.SetLanguage(langs[0])
	return nil
}

func (u *UI) createTable(gui *gocui.Gui, _ *gocui.View) error {
	if u.form != nil || u.tableExists {
		return nil
	}
	if err := u.store.CreateTable(context.Background()); err != nil {
		u.status = err.Error()
		return nil
	}
	u.status = u.state.T("table_created")
	return u.refresh()
}

func (u *UI) addTodo(gui *gocui.Gui, _ *gocui.View) error {
	if u.form != nil || !u.tableExists {
		return nil
	}
	u.form = &formState{fields: u.buildFormFields(nil)}
	return nil
}

func (u *UI) editTodo(gui *gocui.Gui, _ *gocui.View) error {
	if u.form != nil || !u.tableExists {
		return nil
	}
	selected := u.selectedTodo()
	if selected == nil || selected.Done {
		return nil
	}
	u.state.StartEditing(selected.ID)
	u.form = &formState{todoID: selected.ID, fields: u.buildFormFields(selected)}
	return nil
}

func (u *UI) deleteTodo(gui *gocui.Gui, _ *gocui.View) error {
	if u.form != nil || !u.tableExists {
		return nil
	}
	selected := u.selectedTodo()
	if selected == nil {
		return nil
	}
	if err := u.store.Delete(context.Background(), selected.ID); err != nil {
		u.status = err.Error()
		return nil
	}
	u.state.StopEditing(selected.ID)
	u.status = ""
	return u.refresh()
}

func (u *UI) toggleDone(gui *gocui.Gui, _ *gocui.View) error {
	if u.form != nil || !u.tableExists {
		return nil
	}
	selected := u.selectedTodo()
	if selected == nil {
		return nil
	}
	if err := u.state.ToggleDone(context.Background(), u.store, selected.ID); err != nil {
		u.status = err.Error()
		return nil
	}
	u.todos = u.state.Ordered()
	return nil
}

func (u *UI) showForm(gui *gocui.Gui) error {
	if u.form == nil {
		return nil
	}

	maxX, maxY := gui.Size()
	width := max(50, maxX/2)
	height := len(u.form.fields) + 1
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2
	x1 := x0 + width
	y1 := y0 + height

	view, err := gui.SetView(viewForm, x0, y0, x1, y1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if u.form.todoID != 0 {
		view.Title = u.state.T("edit")
	} else {
		view.Title = u.state.T("new_todo")
	}
	view.Wrap = true
	view.Editable = true
	view.KeybindOnEdit = true
	view.Editor = u.formEditor
	u.renderForm(view)
	_, _ = gui.SetCurrentView(viewForm)
	return nil
}

// submitForm persists the form. A rejected title keeps the form open so the
// user can correct and resubmit.
func (u *UI) submitForm(gui *gocui.Gui, _ *gocui.View) error {
	if u.form == nil {
		return nil
	}

	draft := draftFromFields(u.form.fields)
	input, err := draft.Input()
	if err != nil {
		u.status = u.state.T("invalid_due_date")
		return nil
	}

	ctx := context.Background()
	if u.form.todoID == 0 {
		if err := u.store.Insert(ctx, input); err != nil {
			u.status = rejectionStatus(u.state, err, "title_empty_create")
			return nil
		}
		if err := u.state.RefreshAll(ctx, u.store); err != nil {
			return err
		}
	} else {
		if err := u.store.Update(ctx, u.form.todoID, input); err != nil {
			u.status = rejectionStatus(u.state, err, "title_empty_update")
			return nil
		}
		u.state.StopEditing(u.form.todoID)
		if err := u.state.RefreshOne(ctx, u.store, u.form.todoID); err != nil {
			return err
		}
	}

	u.todos = u.state.Ordered()
	u.status = ""
	u.closeForm(gui)
	return nil
}

func (u *UI) cancelForm(gui *gocui.Gui, _ *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.todoID != 0 {
		u.state.StopEditing(u.form.todoID)
	}
	u.closeForm(gui)
	return nil
}

func (u *UI) closeForm(gui *gocui.Gui) {
	u.form = nil
	if gui != nil {
		_ = gui.DeleteView(viewForm)
		_, _ = gui.SetCurrentView(viewList)
	}
}

func (u *UI) nextFormField(gui *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index < len(u.form.fields)-1 {
		u.form.index++
	}
	u.renderForm(view)
	return nil
}

func (u *UI) prevFormField(gui *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index > 0 {
		u.form.index--
	}
	u.renderForm(view)
	return nil
}

func (u *UI) renderForm(view *gocui.View) {
	if u.form == nil || view == nil {
		return
	}
	view.Clear()
	for index, field := range u.form.fields {
		prefix := "  "
		if index == u.form.index {
			prefix = "> "
		}
		fmt.Fprintf(view, "%s%s: %s\n", prefix, field.Label, field.Value)
	}
	label := u.form.fields[u.form.index].Label + ": "
	cursorX := len([]rune(label)) + len([]rune(u.form.fields[u.form.index].Value)) + 2
	view.SetCursor(cursorX, u.form.index)
}

func (e *formEditor) Edit(view *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) bool {
	ui := e.ui
	if ui == nil || ui.form == nil || view == nil {
		return false
	}
	field := &ui.form.fields[ui.form.index]

	switch key {
	case gocui.KeyBackspace, gocui.KeyBackspace2:
		runes := []rune(field.Value)
		if len(runes) > 0 {
			field.Value = string(runes[:len(runes)-1])
		}
	case gocui.KeySpace:
		field.Value += " "
	case gocui.KeyCtrlU:
		field.Value = ""
	}

	if ch != 0 && ch != '\n' && ch != '\r' && mod == 0 {
		field.Value += string(ch)
	}

	ui.renderForm(view)
	return true
}

func rejectionStatus(state *session.State, err error, key string) string {
	if goerrors.Is(err, db.ErrEmptyTitle) {
		return state.T(key)
	}
	return err.Error()
}

func (u *UI) quit(_ *gocui.Gui, _ *gocui.View) error {
	return gocui.ErrQuit
}

func applyViewStyle(view *gocui.View, focused bool) {
	view.Frame = true
	view.Highlight = focused
	view.SelBgColor = gocui.ColorBlue
	view.SelFgColor = gocui.ColorBlack
	if focused {
		view.FrameColor = gocui.ColorCyan
		view.TitleColor = gocui.ColorCyan
	} else {
		view.FrameColor = gocui.ColorDefault
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
