package circles

import "github.com/idilsaglam/circles/internal/model"

// Column is one field shown by both the table and the detail view.
type Column struct {
	Title string
	Tip   string
	Width int
	Value func(model.Circle) string
}

// Columns is the shared column set.
var Columns = []Column{
	{Title: "Name", Tip: "circle names are unique", Width: 24, Value: func(c model.Circle) string { return c.Name }},
	{Title: "Description", Width: 40, Value: func(c model.Circle) string { return c.Desc }},
	{Title: "Avatar", Width: 28, Value: func(c model.Circle) string { return c.Avatar }},
}

// Field is one label/value pair of the detail view.
type Field struct {
	Label string
	Value string
}

// Detail projects a record onto the column set. It only reads c.
func Detail(c model.Circle) []Field {
	out := make([]Field, 0, len(Columns))
	for _, col := range Columns {
		out = append(out, Field{Label: col.Title, Value: col.Value(c)})
	}
	return out
}

// Cells renders a record as table cells in column order.
func Cells(c model.Circle) []string {
	out := make([]string, 0, len(Columns))
	for _, col := range Columns {
		out = append(out, col.Value(c))
	}
	return out
}
