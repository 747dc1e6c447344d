// Package chunk validates a form in pieces. Each chunk is checked against its
// own model on its own goroutine; rules that compare rows across the whole
// form (duplicate names, list references) run again on the merged form.
package chunk
