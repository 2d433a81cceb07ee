package output

import (
	"bytes"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"
)

// DefaultTemplate prints one path per line.
const DefaultTemplate = `{{range .Entries}}{{.Path}}
{{end}}`

// TemplateFormatter renders a text/template against the Result. Besides
// the builtins it provides date, ago and join.
type TemplateFormatter struct {
	mu   sync.Mutex
	text string
	tmpl *template.Template
}

// NewTemplateFormatter creates a formatter for text.
func NewTemplateFormatter(text string) *TemplateFormatter {
	return &TemplateFormatter{text: text}
}

// SetTemplate replaces the template text.
func (f *TemplateFormatter) SetTemplate(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text = text
	f.tmpl = nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		// {{date .Timestamp "2006-01-02"}}
		"date": func(t time.Time, layout string) string {
			if t.IsZero() {
				return ""
			}
			return t.Local().Format(layout)
		},
		// {{ago .Timestamp}}
		"ago": func(t time.Time) string {
			return humanize.Time(t)
		},
		// {{join .Command " "}}
		"join": strings.Join,
	}
}

// Format writes the formatted output to the buffer.
func (f *TemplateFormatter) Format(w *bytes.Buffer, r *Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.tmpl == nil {
		tmpl, err := template.New("history").Funcs(templateFuncs()).Parse(f.text)
		if err != nil {
			return err
		}
		f.tmpl = tmpl
	}
	return f.tmpl.Execute(w, r)
}

func init() {
	Register("template", func() Formatter { return NewTemplateFormatter(DefaultTemplate) })
}

var _ Formatter = (*TemplateFormatter)(nil)
