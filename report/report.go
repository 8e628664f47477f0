// Package report turns a Markdown fact-check report into HTML.
package report

import (
	"bytes"
	"errors"
	"html/template"
	"os"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

var docTmpl = template.Must(template.New("doc").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { max-width: 48rem; margin: 2rem auto; padding: 0 1rem; font-family: system-ui, sans-serif; line-height: 1.6; color: #0f172a; }
table { border-collapse: collapse; }
td, th { border: 1px solid #cbd5e1; padding: 0.25rem 0.5rem; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// ToHTML converts markdown to an HTML fragment.
func ToHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Document renders markdown as a standalone HTML page.
func Document(title, markdown string) (string, error) {
	if markdown == "" {
		return "", errors.New("report is empty")
	}
	body, err := ToHTML(markdown)
	if err != nil {
		return "", err
	}
	if title == "" {
		title = "Fact-Check Report"
	}
	var buf bytes.Buffer
	err = docTmpl.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{Title: title, Body: template.HTML(body)})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteFile writes the rendered document to path.
func WriteFile(path, title, markdown string) error {
	doc, err := Document(title, markdown)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(doc), 0o644)
}
