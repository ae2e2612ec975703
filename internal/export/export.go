package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/Joseda-hg/todolist/internal/db"
	"github.com/Joseda-hg/todolist/internal/model"
)

type Exporter struct{ store *db.Store }

func NewExporter(store *db.Store) *Exporter { return &Exporter{store: store} }

// Export dumps the whole table in id order as json, csv or pdf.
func (e *Exporter) Export(ctx context.Context, format string) ([]byte, error) {
	todos, err := e.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	ordered := orderByID(todos)

	switch strings.ToLower(format) {
	case "json":
		return json.MarshalIndent(ordered, "", "  ")
	case "csv":
		var b strings.Builder
		w := csv.NewWriter(&b)
		_ = w.Write([]string{"id", "title", "description", "created_at", "due_at", "done"})
		for _, todo := range ordered {
			_ = w.Write([]string{
				fmt.Sprint(todo.ID),
				todo.Title,
				todo.Description,
				todo.CreatedAt.Format("2006-01-02"),
				formatDue(todo),
				fmt.Sprint(todo.Done),
			})
		}
		w.Flush()
		return []byte(b.String()), nil
	case "pdf":
		pdf := gofpdf.New("P", "mm", "A4", "")
		pdf.AddPage()
		pdf.SetFont("Arial", "B", 14)
		pdf.Cell(40, 10, "To-Do List")
		pdf.Ln(12)
		pdf.SetFont("Arial", "", 10)
		for _, todo := range ordered {
			mark := "[ ]"
			if todo.Done {
				mark = "[x]"
			}
			line := fmt.Sprintf("%s #%d %s (created %s, due %s)", mark, todo.ID, todo.Title, todo.CreatedAt.Format("2006-01-02"), formatDue(todo))
			pdf.MultiCell(0, 6, line, "0", "L", false)
			if todo.Description != "" {
				pdf.MultiCell(0, 6, "    "+todo.Description, "0", "L", false)
			}
		}
		var buf bytes.Buffer
		if err := pdf.Output(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown format %s", format)
	}
}

// ContentType returns the response content type for a format, defaulting to
// json.
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case "csv":
		return "text/csv"
	case "pdf":
		return "application/pdf"
	default:
		return "application/json"
	}
}

func orderByID(todos map[int64]model.Todo) []model.Todo {
	ids := make([]int64, 0, len(todos))
	for id := range todos {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	ordered := make([]model.Todo, 0, len(ids))
	for _, id := range ids {
		ordered = append(ordered, todos[id])
	}
	return ordered
}

func formatDue(todo model.Todo) string {
	if todo.DueAt == nil {
		return ""
	}
	return todo.DueAt.Format("2006-01-02")
}
