package form

import "strings"

// Canonical base type names for structural rows and select questions.
const (
	TypeBeginGroup             = "begin_group"
	TypeEndGroup               = "end_group"
	TypeBeginRepeat            = "begin_repeat"
	TypeEndRepeat              = "end_repeat"
	TypeSelectOne              = "select_one"
	TypeSelectMultiple         = "select_multiple"
	TypeSelectOneFromFile      = "select_one_from_file"
	TypeSelectMultipleFromFile = "select_multiple_from_file"
	TypeRank                   = "rank"
	TypeCalculate              = "calculate"
	TypeNote                   = "note"
)

// Structure classifies begin/end rows.
type Structure int

const (
	StructureNone Structure = iota
	StructureGroup
	StructureRepeat
)

func (s Structure) String() string {
	switch s {
	case StructureGroup:
		return "group"
	case StructureRepeat:
		return "repeat"
	default:
		return ""
	}
}

// QuestionType is the parsed survey "type" cell: a base type plus, for select
// questions, the referenced list (or file) name.
type QuestionType struct {
	Raw      string
	Base     string
	ListName string
	Extra    []string
}

// ParseType parses a type cell. Whitespace is collapsed and the base is
// lower-cased; "begin group" and "begin_group" spellings are equivalent.
func ParseType(raw string) QuestionType {
	fields := strings.Fields(raw)
	qt := QuestionType{Raw: strings.Join(fields, " ")}
	if len(fields) == 0 {
		return qt
	}

	first := strings.ToLower(fields[0])
	rest := fields[1:]

	switch {
	case (first == "begin" || first == "end") && len(rest) > 0:
		second := strings.ToLower(rest[0])
		if second == "group" || second == "repeat" {
			first = first + "_" + second
			rest = rest[1:]
		}
	case first == "select" && len(rest) > 0:
		second := strings.ToLower(rest[0])
		if second == "one" || second == "multiple" {
			first = first + "_" + second
			rest = rest[1:]
		}
	}

	qt.Base = first
	if qt.takesList() && len(rest) > 0 {
		qt.ListName = rest[0]
		rest = rest[1:]
	}
	if len(rest) > 0 {
		qt.Extra = append([]string(nil), rest...)
	}
	return qt
}

func (t QuestionType) takesList() bool {
	switch t.Base {
	case TypeSelectOne, TypeSelectMultiple, TypeRank, TypeSelectOneFromFile, TypeSelectMultipleFromFile:
		return true
	}
	return false
}

// IsEmpty reports whether the type cell was blank.
func (t QuestionType) IsEmpty() bool {
	return t.Base == ""
}

// IsSelect reports whether the type references a list in the choices sheet.
func (t QuestionType) IsSelect() bool {
	switch t.Base {
	case TypeSelectOne, TypeSelectMultiple, TypeRank:
		return true
	}
	return false
}

// IsSelectMultiple reports whether the question stores space-separated
// choice names.
func (t QuestionType) IsSelectMultiple() bool {
	return t.Base == TypeSelectMultiple
}

// IsFromFile reports whether choices come from an external file.
func (t QuestionType) IsFromFile() bool {
	return t.Base == TypeSelectOneFromFile || t.Base == TypeSelectMultipleFromFile
}

// IsBegin reports whether the row opens a group or repeat.
func (t QuestionType) IsBegin() bool {
	return t.Base == TypeBeginGroup || t.Base == TypeBeginRepeat
}

// IsEnd reports whether the row closes a group or repeat.
func (t QuestionType) IsEnd() bool {
	return t.Base == TypeEndGroup || t.Base == TypeEndRepeat
}

// Structure reports which block kind a begin/end row affects.
func (t QuestionType) Structure() Structure {
	switch t.Base {
	case TypeBeginGroup, TypeEndGroup:
		return StructureGroup
	case TypeBeginRepeat, TypeEndRepeat:
		return StructureRepeat
	default:
		return StructureNone
	}
}

// IsKnown reports whether the base type is part of the XLSForm catalogue.
func (t QuestionType) IsKnown() bool {
	_, ok := knownTypes[t.Base]
	return ok
}

// NeedsLabel reports whether a question of this type is shown to the
// enumerator and therefore expected to carry a label.
func (t QuestionType) NeedsLabel() bool {
	if t.IsEmpty() || t.IsBegin() || t.IsEnd() {
		return false
	}
	_, silent := unlabelledTypes[t.Base]
	return !silent
}

var knownTypes = map[string]struct{}{
	"text": {}, "integer": {}, "decimal": {}, "range": {},
	TypeSelectOne: {}, TypeSelectMultiple: {}, TypeSelectOneFromFile: {}, TypeSelectMultipleFromFile: {},
	TypeRank: {}, TypeNote: {}, "geopoint": {}, "geotrace": {}, "geoshape": {},
	"date": {}, "time": {}, "datetime": {}, "image": {}, "audio": {}, "background-audio": {},
	"video": {}, "file": {}, "barcode": {}, TypeCalculate: {}, "acknowledge": {}, "trigger": {},
	"hidden": {}, "xml-external": {}, "csv-external": {},
	TypeBeginGroup: {}, TypeEndGroup: {}, TypeBeginRepeat: {}, TypeEndRepeat: {},
	"start": {}, "end": {}, "today": {}, "deviceid": {}, "phonenumber": {}, "username": {},
	"email": {}, "audit": {}, "simserial": {}, "subscriberid": {}, "start-geopoint": {},
}

var unlabelledTypes = map[string]struct{}{
	TypeCalculate: {}, "hidden": {}, "xml-external": {}, "csv-external": {},
	"start": {}, "end": {}, "today": {}, "deviceid": {}, "phonenumber": {}, "username": {},
	"email": {}, "audit": {}, "simserial": {}, "subscriberid": {}, "start-geopoint": {},
	"background-audio": {},
}
