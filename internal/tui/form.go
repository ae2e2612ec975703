package tui

import (
	"github.com/Joseda-hg/todolist/internal/model"
	"github.com/Joseda-hg/todolist/internal/session"
)

type formField struct {
	Label string
	Value string
}

const (
	fieldTitle = iota
	fieldDescription
	fieldDue
)

func (u *UI) buildFormFields(todo *model.Todo) []formField {
	fields := []formField{
		{Label: u.state.T("title_label")},
		{Label: u.state.T("description")},
		{Label: u.state.T("due_date") + " (YYYY-MM-DD)"},
	}

	if todo == nil {
		return fields
	}

	draft := session.DraftFromTodo(*todo)
	fields[fieldTitle].Value = draft.Title
	fields[fieldDescription].Value = draft.Description
	fields[fieldDue].Value = draft.DueAt

	return fields
}

func draftFromFields(fields []formField) session.Draft {
	return session.Draft{
		Title:       fields[fieldTitle].Value,
		Description: fields[fieldDescription].Value,
		DueAt:       fields[fieldDue].Value,
	}
}
