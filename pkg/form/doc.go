// Package form turns a workbook into the XLSForm model: ordered survey rows,
// choice rows grouped into lists, and the settings record. Headers are mapped
// positionally per sheet, so column order in the spreadsheet does not matter.
//
// Load is read-only and fails fast with a *MalformedWorkbookError when the
// survey sheet or a required column is missing; every other defect is left for
// the rules package to report.
package form
