package resolve

import "github.com/goliatone/go-xlsform/pkg/form"

type color uint8

const (
	white color = iota
	gray
	black
)

// findCycles runs a depth-first traversal over the dependency graph in survey
// order. Every back edge to a gray node closes one cycle.
func findCycles(f *form.Form, res *Resolution) []Cycle {
	if len(res.Graph) == 0 {
		return nil
	}

	colors := make(map[string]color, len(res.Names))
	var (
		stack  []string
		cycles []Cycle
		visit  func(name string)
	)

	visit = func(name string) {
		colors[name] = gray
		stack = append(stack, name)
		for _, dep := range res.Graph[name] {
			switch colors[dep] {
			case white:
				visit(dep)
			case gray:
				cycles = append(cycles, Cycle{Path: closePath(stack, dep)})
			}
		}
		stack = stack[:len(stack)-1]
		colors[name] = black
	}

	for _, row := range f.Survey {
		if row.Name == "" || colors[row.Name] != white {
			continue
		}
		if _, ok := res.Graph[row.Name]; !ok {
			continue
		}
		visit(row.Name)
	}
	return cycles
}

// closePath returns the stack suffix starting at target followed by target.
func closePath(stack []string, target string) []string {
	start := len(stack) - 1
	for start >= 0 && stack[start] != target {
		start--
	}
	if start < 0 {
		return []string{target, target}
	}
	path := make([]string, 0, len(stack)-start+1)
	path = append(path, stack[start:]...)
	return append(path, target)
}
