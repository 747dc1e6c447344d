package rules

import "github.com/goliatone/go-xlsform/pkg/workbook"

// Built-in rule codes.
const (
	CodeDuplicateName       = "duplicate-name"
	CodeDuplicateChoiceName = "duplicate-choice-name"
	CodeMissingName         = "missing-name"
	CodeInvalidName         = "invalid-name"
	CodeNamingConvention    = "naming-convention"
	CodeUnresolvedList      = "unresolved-list"
	CodeOrphanedList        = "orphaned-list"
	CodeChoiceSpace         = "select-multiple-choice-space"
	CodeMissingChoicesSheet = "missing-choices-sheet"
	CodeUnknownType         = "unknown-type"
	CodeMissingLabel        = "missing-label"
	CodeNesting             = "nesting"
	CodeCircularDependency  = "circular-dependency"
	CodeUnknownReference    = "unknown-reference"
	CodeFormulaSyntax       = "formula-syntax"
	CodeSettingsMissingKey  = "settings-missing-key"
	CodeSettingsVersion     = "settings-version"
	CodeBlankBlock          = "blank-block"
	CodeDuplicateColumn     = "duplicate-column"
	CodeLabelMarkup         = "label-markup"
)

// CrossChunkCodes are the rules whose outcome depends on the whole form and
// must be re-run after chunks are merged.
var CrossChunkCodes = []string{
	CodeDuplicateName,
	CodeDuplicateChoiceName,
	CodeUnresolvedList,
	CodeOrphanedList,
}

// FormCodes are rules that need the complete form without comparing rows
// across chunks. Nesting stops at the first bad close, so it only makes sense
// over the whole survey.
var FormCodes = []string{
	CodeNesting,
	CodeChoiceSpace,
	CodeUnknownReference,
	CodeCircularDependency,
	CodeSettingsMissingKey,
	CodeSettingsVersion,
	CodeMissingChoicesSheet,
}

const (
	sheetSurvey   = workbook.SheetSurvey
	sheetChoices  = workbook.SheetChoices
	sheetSettings = workbook.SheetSettings
)

// Settings keys checked by the settings rules.
const (
	SettingFormTitle = "form_title"
	SettingFormID    = "form_id"
	SettingVersion   = "version"
)

// RequiredSettings lists the keys a settings sheet should define.
var RequiredSettings = []string{SettingFormTitle, SettingFormID}
