package output

import (
	"encoding/json"
	"os"

	"github.com/crucial707/social-auth/internal/models"
	"github.com/jedib0t/go-pretty/v6/table"
)

// RenderTable prints a pretty table to stdout
func RenderTable(headers []string, rows [][]interface{}) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)

	headerRow := table.Row{}
	for _, h := range headers {
		headerRow = append(headerRow, h)
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		t.AppendRow(table.Row(row))
	}

	t.Render()
}

// RenderProfile prints p as a two-column field/value table.
func RenderProfile(p models.PublicProfile) {
	RenderTable([]string{"Field", "Value"}, [][]interface{}{
		{"ID", p.ID},
		{"Username", p.Username},
		{"Full name", p.Fullname},
		{"Email", p.Email},
		{"Followers", len(p.Followers)},
		{"Following", len(p.Following)},
		{"Profile image", p.ProfileImg},
		{"Cover image", p.CoverImg},
	})
}

// RenderJSON prints v as indented JSON.
func RenderJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

