package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	"io"
	"strings"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// Template names.
const (
	Welcome         = "welcome"
	PasswordChanged = "password_changed"
)

// EmailData defines the fields the account templates read.
type EmailData struct {
	Name       string `json:"Name"`
	UserName   string `json:"UserName"`
	Email      string `json:"Email"`
	AppName    string `json:"AppName"`
	SupportURL string `json:"SupportURL"`
	Time       string `json:"Time"`
}

// ToMap converts EmailData into the map carried by an EmailJob.
func (d EmailData) ToMap() map[string]any {
	return map[string]any{
		"Name":       d.Name,
		"UserName":   d.UserName,
		"Email":      d.Email,
		"AppName":    d.AppName,
		"SupportURL": d.SupportURL,
		"Time":       d.Time,
	}
}

// Stamp formats t the way templates print event times.
func Stamp(t time.Time) string {
	return t.UTC().Format("02 January 2006, 15:04 MST")
}

// orDefault backs the "default" pipe: {{ .AppName | default "VidTube" }}.
func orDefault(fallback, value any) any {
	if s, ok := value.(string); value == nil || (ok && strings.TrimSpace(s) == "") {
		return fallback
	}
	return value
}

var funcs = map[string]any{
	"upper":   strings.ToUpper,
	"default": orDefault,
}

type executor interface {
	Execute(w io.Writer, data any) error
}

func parseText(file string) (executor, error) {
	return texttpl.New(file).Funcs(texttpl.FuncMap(funcs)).ParseFS(FS, file)
}

func parseHTML(file string) (executor, error) {
	return htmpl.New(file).Funcs(htmpl.FuncMap(funcs)).ParseFS(FS, file)
}

func execute(file string, parse func(string) (executor, error), data any) (string, error) {
	t, err := parse(file)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", file, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", file, err)
	}
	return buf.String(), nil
}

// Render executes <name>.subject.tmpl, <name>.text.tmpl and <name>.html.tmpl.
// Only the HTML part is auto-escaped.
func Render(name string, data any) (subject, text, html string, err error) {
	if subject, err = execute(name+".subject.tmpl", parseText, data); err != nil {
		return "", "", "", err
	}
	if text, err = execute(name+".text.tmpl", parseText, data); err != nil {
		return "", "", "", err
	}
	if html, err = execute(name+".html.tmpl", parseHTML, data); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
