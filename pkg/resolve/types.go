package resolve

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-xlsform/pkg/form"
)

// Reference points from a survey row (by slice index) to a list name.
type Reference struct {
	Index  int
	Row    int
	Source string
	List   string
}

// Frame is an open begin group/repeat on the nesting stack.
type Frame struct {
	Index     int
	Row       int
	Source    string
	Name      string
	Structure form.Structure
}

// NestingError records the first close that does not match the innermost
// open block. Want is StructureNone when nothing was open.
type NestingError struct {
	Row      int
	Source   string
	Got      form.Structure
	Want     form.Structure
	OpenedAt int
}

func (e *NestingError) Error() string {
	if e == nil {
		return ""
	}
	if e.Want == form.StructureNone {
		return fmt.Sprintf("end %s at row %d has no matching begin %s", e.Got, e.Row, e.Got)
	}
	return fmt.Sprintf("end %s at row %d closes begin %s opened at row %d", e.Got, e.Row, e.Want, e.OpenedAt)
}

// Cycle is a closed path in the dependency graph; the first name is repeated
// at the end.
type Cycle struct {
	Path []string
}

// CircularDependencyError names a cycle in ${field} references.
type CircularDependencyError struct {
	Path []string
}

func (e *CircularDependencyError) Error() string {
	if e == nil {
		return ""
	}
	return "resolve: circular dependency: " + strings.Join(e.Path, " -> ")
}

// UnknownRef is a ${name} token that does not match any survey row name.
type UnknownRef struct {
	Index  int
	Row    int
	Source string
	Column string
	Name   string
}

// FormulaIssue describes a malformed ${...} usage.
type FormulaIssue struct {
	Index  int
	Row    int
	Source string
	Column string
	Expr   string
	Reason string
}

// Resolution is the cross-linked view of a form.
type Resolution struct {
	// Lists indexes defined choice lists by name; ListOrder keeps their
	// first-appearance order.
	Lists     map[string]*form.ChoiceList
	ListOrder []string

	// Selects maps survey row indexes to the list they resolve to.
	Selects map[int]*form.ChoiceList

	// Referenced maps list names to the survey row indexes using them.
	Referenced map[string][]int

	// Unresolved lists select rows whose list is missing; a blank List means
	// the type cell carried no list name at all.
	Unresolved []Reference

	Nesting  *NestingError
	Unclosed []Frame

	// Names maps each survey name to the index of its first occurrence.
	Names map[string]int

	// Graph maps a field name to the names its relevant, constraint, or
	// calculation expressions depend on, in survey order.
	Graph map[string][]string

	UnknownRefs []UnknownRef
	Malformed   []FormulaIssue
	Cycles      []Cycle
}

// CycleErrors converts detected cycles into typed errors.
func (r *Resolution) CycleErrors() []*CircularDependencyError {
	if r == nil || len(r.Cycles) == 0 {
		return nil
	}
	out := make([]*CircularDependencyError, 0, len(r.Cycles))
	for _, cycle := range r.Cycles {
		out = append(out, &CircularDependencyError{Path: append([]string(nil), cycle.Path...)})
	}
	return out
}
