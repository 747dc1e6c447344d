// Package rules checks a loaded form against the XLSForm validity rules.
//
// Each Rule inspects a Model (the form plus its resolved cross references) and
// returns Findings. Rules never mutate the model, so an Engine may run them in
// any order and repeat runs yield the same sorted findings.
package rules
