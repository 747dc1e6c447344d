package report

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-xlsform/pkg/render/template"
	"github.com/goliatone/go-xlsform/pkg/render/template/pongo"
	"github.com/goliatone/go-xlsform/pkg/rules"
)

//go:embed templates/*.tpl
var templatesFS embed.FS

const (
	textTemplate = "report"
	badgeWidth   = 10
)

// TextRenderer renders reports through a text template.
type TextRenderer struct {
	renderer template.TemplateRenderer
	name     string
	dir      string
	color    bool
}

// TextOption configures a TextRenderer.
type TextOption func(*TextRenderer)

// WithColor styles severity badges when the destination is a terminal.
func WithColor(enabled bool) TextOption {
	return func(t *TextRenderer) {
		t.color = enabled
	}
}

// WithTemplateDir searches dir for report.tpl before the embedded template.
func WithTemplateDir(dir string) TextOption {
	return func(t *TextRenderer) {
		t.dir = strings.TrimSpace(dir)
	}
}

// WithTemplateRenderer replaces the embedded template set. name selects the
// template to render.
func WithTemplateRenderer(renderer template.TemplateRenderer, name string) TextOption {
	return func(t *TextRenderer) {
		if renderer == nil {
			return
		}
		t.renderer = renderer
		if name = strings.TrimSpace(name); name != "" {
			t.name = name
		}
	}
}

// NewTextRenderer builds a renderer backed by the embedded report template.
func NewTextRenderer(opts ...TextOption) (*TextRenderer, error) {
	t := &TextRenderer{name: textTemplate}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	if t.renderer == nil {
		sub, err := fs.Sub(templatesFS, "templates")
		if err != nil {
			return nil, fmt.Errorf("report: templates: %w", err)
		}
		engine, err := pongo.New(pongo.WithBaseDir(t.dir), pongo.WithFS(sub))
		if err != nil {
			return nil, fmt.Errorf("report: template engine: %w", err)
		}
		t.renderer = engine
	}
	return t, nil
}

// Text renders the report with renderer, or the default text renderer when
// renderer is nil.
func (r *Report) Text(w io.Writer, renderer *TextRenderer) error {
	if renderer == nil {
		var err error
		if renderer, err = NewTextRenderer(); err != nil {
			return err
		}
	}
	return renderer.Render(w, r)
}

// Render writes r to w.
func (t *TextRenderer) Render(w io.Writer, r *Report) error {
	view := t.view(w, r)
	if _, err := t.renderer.RenderTemplate(t.name, view, w); err != nil {
		return fmt.Errorf("report: render text: %w", err)
	}
	return nil
}

type textView struct {
	File        string        `json:"file"`
	Status      string        `json:"status"`
	Fatal       string        `json:"fatal,omitempty"`
	Errors      int           `json:"errors"`
	Warnings    int           `json:"warnings"`
	Suggestions int           `json:"suggestions"`
	Findings    []findingView `json:"findings"`
	Codes       []codeView    `json:"codes"`
	CodeWidth   int           `json:"code_width"`
	External    *externalView `json:"external,omitempty"`
}

type codeView struct {
	Code  string `json:"code"`
	Count int    `json:"count"`
}

type findingView struct {
	Badge    string `json:"badge"`
	Code     string `json:"code"`
	Location string `json:"location"`
	Message  string `json:"message"`
}

type externalView struct {
	Status   string   `json:"status"`
	HasExit  bool     `json:"has_exit"`
	ExitCode int      `json:"exit_code"`
	Output   []string `json:"output"`
}

func (t *TextRenderer) view(w io.Writer, r *Report) textView {
	status := "VALID"
	if !r.Valid {
		status = "INVALID"
	}
	view := textView{
		File:        r.File,
		Status:      status,
		Fatal:       r.Fatal,
		Errors:      r.Summary.Errors,
		Warnings:    r.Summary.Warnings,
		Suggestions: r.Summary.Suggestions,
		Findings:    make([]findingView, 0, len(r.Findings)),
	}

	badges := newBadges(w, t.color)
	counts := make(map[string]int)
	for _, finding := range r.Findings {
		counts[finding.Code]++
		view.Findings = append(view.Findings, findingView{
			Badge:    badges.render(finding.Severity),
			Code:     finding.Code,
			Location: finding.Location.String(),
			Message:  finding.Message,
		})
	}

	view.Codes, view.CodeWidth = tally(counts)

	if ext := r.External; ext != nil && ext.Enabled {
		ev := &externalView{Status: string(ext.Status)}
		if ext.ExitCode != nil {
			ev.HasExit = true
			ev.ExitCode = *ext.ExitCode
		}
		if ext.Output != "" {
			ev.Output = strings.Split(ext.Output, "\n")
		}
		view.External = ev
	}
	return view
}

// tally orders per-code counts by code and returns the widest code.
func tally(counts map[string]int) ([]codeView, int) {
	out := make([]codeView, 0, len(counts))
	width := 0
	for code, n := range counts {
		out = append(out, codeView{Code: code, Count: n})
		width = max(width, len(code))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, width
}

type badges struct {
	styles map[rules.Severity]lipgloss.Style
}

// newBadges prepares severity styles. Colour is only emitted when enabled and
// w is a terminal; lipgloss degrades to plain text otherwise.
func newBadges(w io.Writer, color bool) badges {
	b := badges{styles: make(map[rules.Severity]lipgloss.Style)}
	if !color {
		return b
	}
	renderer := lipgloss.NewRenderer(w)
	b.styles[rules.SeverityError] = renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	b.styles[rules.SeverityWarning] = renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	b.styles[rules.SeveritySuggestion] = renderer.NewStyle().Foreground(lipgloss.Color("12"))
	return b
}

func (b badges) render(severity rules.Severity) string {
	label := fmt.Sprintf("%-*s", badgeWidth, strings.ToUpper(string(severity)))
	if style, ok := b.styles[severity]; ok {
		return style.Render(label)
	}
	return label
}
