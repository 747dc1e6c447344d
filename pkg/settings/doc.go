// Package settings inspects and edits the XLSForm settings sheet: it reports
// which required keys are missing, suggests a title and id from the file
// name, writes values back with excelize, and can ask for missing values
// interactively.
package settings
