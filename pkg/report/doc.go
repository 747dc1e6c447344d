// Package report assembles rule findings and the optional external validator
// result into one Report and renders it as JSON, YAML, text, or the
// line-oriented structured layout. Reports carry no timestamps, so the same
// inputs always render to the same bytes.
package report
