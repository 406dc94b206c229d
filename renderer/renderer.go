// Package renderer turns balance reports into markdown. Each report type has
// a plain data struct built from engine output and a template that formats
// it, so formatting changes never touch the engine.
package renderer

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var templates embed.FS

// renderTemplate renders one of the embedded templates with the given data.
// Template errors are rendered into the output rather than returned: a
// broken report is more useful on screen than a bare error.
func renderTemplate(name string, data any) string {
	file := "templates/" + name + ".md"
	content, err := templates.ReadFile(file)
	if err != nil {
		return fmt.Sprintf("error reading template %q: %v", file, err)
	}
	tmpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return fmt.Sprintf("error parsing template %q: %v", file, err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", file, err)
	}
	return b.String()
}
