package main

import (
	"bytes"
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

var pageTemplates = template.Must(template.ParseFS(embeddedTemplates, "templates/*.tmpl"))

// pageData feeds the book list page.
type pageData struct {
	State State
	Books []Book
}

// confirmData feeds the delete confirmation page.
type confirmData struct {
	State  State
	Prompt string
	Book   Book
}

// dialogData feeds the edit dialog overlay.
type dialogData struct {
	State State
	Book  Book
	Draft Draft
}

// render executes the named template into a buffer before writing it out.
func render(w io.Writer, name string, data interface{}) error {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
