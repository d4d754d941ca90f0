package templates

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// Template names. Each has <name>.subject.tmpl and <name>.text.tmpl.
const (
	Welcome        = "welcome"
	ProfileUpdated = "profile_updated"
)

// NoticeData is the data every notice template receives.
type NoticeData struct {
	AppName string
	Name    string
	Email   string
	Time    time.Time
}

// defaultFn supports pipe usage: {{ .Name | default "there" }}
func defaultFn(fallback string, value string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

var funcMap = texttpl.FuncMap{
	"formatTime": func(t time.Time, layout string) string { return t.UTC().Format(layout) },
	"default":    defaultFn,
}

var parsed = texttpl.Must(texttpl.New("notices").Funcs(funcMap).ParseFS(FS, "*.tmpl"))

func renderFile(filename string, data any) (string, error) {
	tpl := parsed.Lookup(filename)
	if tpl == nil {
		return "", fmt.Errorf("template %q not found", filename)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", filename, err)
	}
	return buf.String(), nil
}

// Render renders the subject and plain text body for the given template name.
func Render(name string, data NoticeData) (subject, text string, err error) {
	subject, err = renderFile(name+".subject.tmpl", data)
	if err != nil {
		return "", "", err
	}
	text, err = renderFile(name+".text.tmpl", data)
	if err != nil {
		return "", "", err
	}
	return strings.TrimSpace(subject), text, nil
}
