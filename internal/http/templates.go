package http

import (
	"embed"
	"html/template"
	"time"

	"todo_webapp/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

const timeLayout = "02 Jan 2006 15:04"

var templateFuncs = template.FuncMap{
	"fmtTime": func(t time.Time) string {
		return t.Local().Format(timeLayout)
	},
	"fmtDeadline": func(t *time.Time) string {
		if t == nil {
			return "—"
		}
		return t.Local().Format(timeLayout)
	},
	// value for <input type="datetime-local">
	"deadlineInput": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Local().Format("2006-01-02T15:04")
	},
	"isDue": func(t *domain.Task) bool {
		return t.IsDue(time.Now())
	},
}

// Templates parses the embedded page templates
func Templates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
}
