package template

import (
	"io"
)

// TemplateRenderer renders a named template with view data. The rendered text
// is returned and also written to every out writer.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
}
