// Package external runs the optional ODK Validate jar against a form. An
// .xlsx input is first converted to an XForm with pyxform's xls2xform; the
// validator output is returned verbatim alongside a line classification.
package external
