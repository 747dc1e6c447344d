// Package resolve cross-links a loaded form: select questions to their choice
// lists, begin/end rows into a nesting stack, and ${field} references into a
// dependency graph that is checked for cycles.
//
// Resolve never fails. Everything it finds (unresolved lists, nesting errors,
// cycles, unknown references) is recorded on the Resolution so the rule
// engine can report the complete defect set in one pass.
package resolve
