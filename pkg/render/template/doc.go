// Package template defines the renderer-agnostic template contract used by the
// text report. The pongo subpackage provides the pongo2-backed implementation.
package template
