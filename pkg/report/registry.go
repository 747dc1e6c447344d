package report

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

// Format names of the built-in encoders.
const (
	FormatText       = "text"
	FormatJSON       = "json"
	FormatYAML       = "yaml"
	FormatStructured = "structured"
)

// Encoder writes a report in one format.
type Encoder interface {
	Name() string
	Encode(w io.Writer, r *Report) error
}

// EncoderFunc adapts a function into an Encoder.
type EncoderFunc struct {
	Format string
	Fn     func(w io.Writer, r *Report) error
}

var _ Encoder = EncoderFunc{}

func (e EncoderFunc) Name() string {
	return e.Format
}

func (e EncoderFunc) Encode(w io.Writer, r *Report) error {
	return e.Fn(w, r)
}

// Name implements Encoder.
func (t *TextRenderer) Name() string {
	return FormatText
}

// Encode implements Encoder.
func (t *TextRenderer) Encode(w io.Writer, r *Report) error {
	return t.Render(w, r)
}

// Registry stores encoders by name, providing discovery and duplication
// safeguards.
type Registry struct {
	mu       sync.RWMutex
	encoders map[string]Encoder
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		encoders: make(map[string]Encoder),
	}
}

// DefaultRegistry returns a registry holding the text, json, yaml and
// structured encoders. textOpts configure the text renderer.
func DefaultRegistry(textOpts ...TextOption) (*Registry, error) {
	text, err := NewTextRenderer(textOpts...)
	if err != nil {
		return nil, err
	}
	r := NewRegistry()
	r.MustRegister(text)
	r.MustRegister(EncoderFunc{Format: FormatJSON, Fn: func(w io.Writer, rep *Report) error { return rep.JSON(w) }})
	r.MustRegister(EncoderFunc{Format: FormatYAML, Fn: func(w io.Writer, rep *Report) error { return rep.YAML(w) }})
	r.MustRegister(EncoderFunc{Format: FormatStructured, Fn: func(w io.Writer, rep *Report) error { return rep.Structured(w) }})
	return r, nil
}

// Register adds an encoder by its Name(). Duplicate names return an error.
func (r *Registry) Register(encoder Encoder) error {
	if encoder == nil {
		return fmt.Errorf("report: encoder is required")
	}
	name := encoder.Name()
	if name == "" {
		return fmt.Errorf("report: encoder name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.encoders[name]; exists {
		return fmt.Errorf("report: encoder %q already registered", name)
	}
	r.encoders[name] = encoder
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(encoder Encoder) {
	if err := r.Register(encoder); err != nil {
		panic(err)
	}
}

// Get retrieves an encoder by name.
func (r *Registry) Get(name string) (Encoder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	encoder, ok := r.encoders[name]
	if !ok {
		return nil, fmt.Errorf("report: encoder %q not found (available: %v)", name, r.listLocked())
	}
	return encoder, nil
}

// Encode writes rep with the named encoder.
func (r *Registry) Encode(w io.Writer, name string, rep *Report) error {
	encoder, err := r.Get(name)
	if err != nil {
		return err
	}
	return encoder.Encode(w, rep)
}

// List returns a sorted list of encoder names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listLocked()
}

func (r *Registry) listLocked() []string {
	names := make([]string, 0, len(r.encoders))
	for name := range r.encoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether an encoder is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.encoders[name]
	return ok
}
