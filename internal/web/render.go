package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/crucial707/reminders/internal/models"
)

//go:embed templates
var templatesFS embed.FS

var pages = []string{"index.html", "create.html", "reminder.html", "login.html", "error.html"}

// viewData is passed to every page. Pages read only the fields they need.
type viewData struct {
	User      *models.User
	Reminders []models.Reminder
	Reminder  models.Reminder
	Form      models.ReminderInput
	Errors    map[string]string
	Error     string
	Next      string
	Status    int
	Message   string
}

// Renderer holds one parsed template set per page, each layered on the shared layout.
type Renderer struct {
	pages map[string]*template.Template
	log   *zap.Logger
}

func NewRenderer(log *zap.Logger) (*Renderer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	funcs := template.FuncMap{
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Local().Format("2006-01-02 15:04")
		},
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(pages)), log: log}
	for _, name := range pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes page into a buffer first so a template error still yields a clean 500.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data viewData) {
	t, ok := r.pages[name]
	if !ok {
		r.log.Error("unknown template", zap.String("template", name))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.log.Error("template execute", zap.String("template", name), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
