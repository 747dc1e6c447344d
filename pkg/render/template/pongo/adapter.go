// Package pongo renders named templates through a pongo2 template set. A
// directory on disk, when configured, is searched before the fs.FS so single
// templates can be overridden without copying the whole set.
package pongo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-xlsform/pkg/render/template"
)

const defaultExtension = ".tpl"

var (
	errNoTemplates = errors.New("pongo: need a template dir or fs.FS")
	errNilEngine   = errors.New("pongo: engine is nil")

	filtersOnce sync.Once
)

// Option configures the template sources.
type Option func(*options)

type options struct {
	dir   string
	files fs.FS
}

// WithBaseDir adds a directory on disk as the first template source.
func WithBaseDir(dir string) Option {
	return func(o *options) {
		o.dir = strings.TrimSpace(dir)
	}
}

// WithFS adds an fs.FS as a template source, searched after the base dir.
func WithFS(files fs.FS) Option {
	return func(o *options) {
		o.files = files
	}
}

// Engine renders templates from a pongo2 set. Parsed templates are cached by
// file name.
type Engine struct {
	set *pongo2.TemplateSet

	mu    sync.Mutex
	cache map[string]*pongo2.Template
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New builds an Engine. At least one of WithBaseDir or WithFS is required; a
// base dir that does not exist is an error.
func New(opts ...Option) (*Engine, error) {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	var loaders []pongo2.TemplateLoader
	if o.dir != "" {
		local, err := pongo2.NewLocalFileSystemLoader(o.dir)
		if err != nil {
			return nil, fmt.Errorf("pongo: template dir: %w", err)
		}
		loaders = append(loaders, local)
	}
	if o.files != nil {
		loaders = append(loaders, pongo2.NewFSLoader(o.files))
	}
	if len(loaders) == 0 {
		return nil, errNoTemplates
	}

	filtersOnce.Do(registerFilters)
	return &Engine{
		set:   pongo2.NewSet("xlsform", loaders...),
		cache: make(map[string]*pongo2.Template),
	}, nil
}

// RenderTemplate renders name, adding the .tpl extension when name has none.
// Struct data is exposed to the template under its JSON field names.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errNilEngine
	}
	tmpl, err := e.lookup(name)
	if err != nil {
		return "", err
	}
	ctx, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("pongo: convert data: %w", err)
	}
	rendered, err := tmpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("pongo: execute template %q: %w", name, err)
	}
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

func (e *Engine) lookup(name string) (*pongo2.Template, error) {
	file := name
	if path.Ext(file) == "" {
		file += defaultExtension
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.cache[file]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(file)
	if err != nil {
		return nil, fmt.Errorf("pongo: load template %q: %w", file, err)
	}
	e.cache[file] = tmpl
	return tmpl, nil
}

// toContext passes maps through and decodes anything else via its JSON form.
// Integers stay integers; pongo2 prints float64 counts as "3.000000".
func toContext(data any) (pongo2.Context, error) {
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return v, nil
	case map[string]any:
		return pongo2.Context(v), nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var view map[string]any
	if err := dec.Decode(&view); err != nil {
		return nil, fmt.Errorf("view must encode to an object: %w", err)
	}
	for key, value := range view {
		view[key] = integers(value)
	}
	return pongo2.Context(view), nil
}

func integers(v any) any {
	switch value := v.(type) {
	case json.Number:
		if n, err := value.Int64(); err == nil {
			return int(n)
		}
		f, _ := value.Float64()
		return f
	case map[string]any:
		for key, item := range value {
			value[key] = integers(item)
		}
	case []any:
		for i, item := range value {
			value[i] = integers(item)
		}
	}
	return v
}

func registerFilters() {
	if !pongo2.FilterExists("rpad") {
		_ = pongo2.RegisterFilter("rpad", filterRightPad)
	}
}

// filterRightPad pads the input with spaces to the rune width given as the
// parameter: {{ code|rpad:width }}.
func filterRightPad(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	text := in.String()
	if pad := param.Integer() - utf8.RuneCountInString(text); pad > 0 {
		text += strings.Repeat(" ", pad)
	}
	return pongo2.AsValue(text), nil
}
