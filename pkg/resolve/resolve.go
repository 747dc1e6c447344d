package resolve

import (
	"sort"

	"github.com/goliatone/go-xlsform/pkg/form"
)

// graphColumns are the expression columns whose references form dependency
// edges. Other expression columns are still checked for unknown names.
var graphColumns = map[string]struct{}{
	form.ColumnRelevant:    {},
	form.ColumnConstraint:  {},
	form.ColumnCalculation: {},
}

// Resolve builds the Resolution for f. A nil form yields an empty resolution.
func Resolve(f *form.Form) *Resolution {
	res := &Resolution{
		Lists:      make(map[string]*form.ChoiceList),
		Selects:    make(map[int]*form.ChoiceList),
		Referenced: make(map[string][]int),
		Names:      make(map[string]int),
		Graph:      make(map[string][]string),
	}
	if f == nil {
		return res
	}

	for _, list := range f.Lists() {
		res.Lists[list.Name] = list
		res.ListOrder = append(res.ListOrder, list.Name)
	}

	for idx, row := range f.Survey {
		if row.Name == "" {
			continue
		}
		if _, exists := res.Names[row.Name]; !exists {
			res.Names[row.Name] = idx
		}
	}

	res.linkSelects(f)
	res.walkNesting(f)
	res.buildGraph(f)
	res.Cycles = findCycles(f, res)
	return res
}

func (r *Resolution) linkSelects(f *form.Form) {
	for idx, row := range f.Survey {
		if !row.Type.IsSelect() {
			continue
		}
		ref := Reference{Index: idx, Row: row.Row, Source: row.Source, List: row.Type.ListName}
		if ref.List == "" {
			r.Unresolved = append(r.Unresolved, ref)
			continue
		}
		r.Referenced[ref.List] = append(r.Referenced[ref.List], idx)
		if list, ok := r.Lists[ref.List]; ok {
			r.Selects[idx] = list
			continue
		}
		r.Unresolved = append(r.Unresolved, ref)
	}
}

// walkNesting pushes on begin rows and pops on end rows. The first close that
// does not match stops the walk.
func (r *Resolution) walkNesting(f *form.Form) {
	var stack []Frame
	for idx, row := range f.Survey {
		switch {
		case row.Type.IsBegin():
			stack = append(stack, Frame{
				Index:     idx,
				Row:       row.Row,
				Source:    row.Source,
				Name:      row.Name,
				Structure: row.Type.Structure(),
			})
		case row.Type.IsEnd():
			got := row.Type.Structure()
			if len(stack) == 0 {
				r.Nesting = &NestingError{Row: row.Row, Source: row.Source, Got: got, Want: form.StructureNone}
				return
			}
			top := stack[len(stack)-1]
			if top.Structure != got {
				r.Nesting = &NestingError{
					Row:      row.Row,
					Source:   row.Source,
					Got:      got,
					Want:     top.Structure,
					OpenedAt: top.Row,
				}
				return
			}
			stack = stack[:len(stack)-1]
		}
	}
	r.Unclosed = stack
}

func (r *Resolution) buildGraph(f *form.Form) {
	for idx, row := range f.Survey {
		var deps []string
		seen := make(map[string]struct{})
		for _, formula := range row.Formulas() {
			tokens, issues := Scan(formula.Expr)
			for _, reason := range issues {
				r.Malformed = append(r.Malformed, FormulaIssue{
					Index:  idx,
					Row:    row.Row,
					Source: row.Source,
					Column: formula.Column,
					Expr:   formula.Expr,
					Reason: reason,
				})
			}
			for _, token := range tokens {
				if _, ok := r.Names[token.Name]; !ok {
					r.UnknownRefs = append(r.UnknownRefs, UnknownRef{
						Index:  idx,
						Row:    row.Row,
						Source: row.Source,
						Column: formula.Column,
						Name:   token.Name,
					})
					continue
				}
				if _, ok := graphColumns[formula.Column]; !ok || row.Name == "" {
					continue
				}
				if token.Name == row.Name && formula.Column == form.ColumnConstraint {
					continue
				}
				if _, dup := seen[token.Name]; dup {
					continue
				}
				seen[token.Name] = struct{}{}
				deps = append(deps, token.Name)
			}
		}
		if len(deps) == 0 || row.Name == "" {
			continue
		}
		sort.SliceStable(deps, func(i, j int) bool {
			return r.Names[deps[i]] < r.Names[deps[j]]
		})
		r.Graph[row.Name] = append(r.Graph[row.Name], deps...)
	}
}
