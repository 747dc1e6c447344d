// Package workbook defines the spreadsheet contracts the validator consumes: a
// Source identifying where a workbook lives, an in-memory Workbook made of
// ordered sheets with row-major cell access, and the Loader interface that
// reads one. Concrete readers live under internal/workbook and are constructed
// through the top-level xlsform package.
package workbook
