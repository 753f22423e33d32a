// Package templates holds the HTML pages of the polls app.
package templates

import (
	"embed"
	"html/template"

	"polls-backend/urls"

	"github.com/dustin/go-humanize"
)

//go:embed html/*.html
var files embed.FS

// Page names.
const (
	IndexPage   = "index.html"
	DetailPage  = "detail.html"
	ResultsPage = "results.html"
	ErrorPage   = "error.html"
)

// FuncMap 模板函数
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"url":          urls.Reverse,
		"pluralize":    Pluralize,
		"humanizeTime": humanize.Time,
	}
}

// New parses every embedded page.
func New() (*template.Template, error) {
	return template.New("").Funcs(FuncMap()).ParseFS(files, "html/*.html")
}

// Must is New that panics on a parse error.
func Must() *template.Template {
	return template.Must(New())
}

// Pluralize returns "s" unless n is exactly one.
func Pluralize(n int64) string {
	if n == 1 {
		return ""
	}
	return "s"
}
