package web

import (
	"embed"
)

// TemplateFS holds the embedded HTML templates.
//
//go:embed templates
var TemplateFS embed.FS
