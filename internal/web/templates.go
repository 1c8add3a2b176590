package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses the page templates. Each page defines its own name
// (e.g. "login.html") and shares the "header" and "footer" blocks.
func Templates() (*template.Template, error) {
	return template.New("").ParseFS(files, "templates/*.html")
}
