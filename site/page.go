package site

import (
	"html/template"

	"github.com/pagewright/pagewright/templatex"
)

type page struct {
	Source     string
	Route      string
	OutputPath string
	Title      string
	HTML       template.HTML
	Sections   []templatex.TOCEntry
	Summary    string
	PlainText  string
}
