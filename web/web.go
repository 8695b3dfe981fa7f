// Package web holds the server-rendered pages of the directory.
package web

import (
	"embed"
	"html/template"

	"github.com/oksasatya/doctor-directory/internal/domain/entity"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// LoadTemplates parses every page template. Pages are addressed by file name, e.g. "doctors.tmpl".
func LoadTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"slug": entity.Slug,
	}
	return template.New("pages").Funcs(funcs).ParseFS(templatesFS, "templates/*.tmpl")
}
