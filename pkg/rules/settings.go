package rules

import "fmt"

// VersionFormula is the recommended version cell: a timestamp recomputed each
// time the workbook is saved.
const VersionFormula = `=TEXT(NOW(), "yyyymmddhhmmss")`

func checkSettingsKeys(m *Model) []Finding {
	if !m.Form.HasSettings {
		return []Finding{{
			Severity: SeverityWarning,
			Code:     CodeSettingsMissingKey,
			Message:  "workbook has no settings sheet; form_title and form_id will be derived from the file name",
			Location: m.workbookLocation(),
		}}
	}
	var out []Finding
	for _, key := range RequiredSettings {
		if m.Form.Settings.Has(key) {
			continue
		}
		out = append(out, Finding{
			Severity: SeverityWarning,
			Code:     CodeSettingsMissingKey,
			Message:  fmt.Sprintf("settings sheet does not define %s", key),
			Location: m.settingsLocation(key),
		})
	}
	return out
}

func checkSettingsVersion(m *Model) []Finding {
	if !m.Form.HasSettings {
		return nil
	}
	settings := m.Form.Settings
	switch {
	case !settings.Has(SettingVersion):
		return []Finding{{
			Severity: SeveritySuggestion,
			Code:     CodeSettingsVersion,
			Message:  fmt.Sprintf("add a version column with %s so each saved revision gets a new version", VersionFormula),
			Location: m.settingsLocation(SettingVersion),
		}}
	case !settings.IsFormula(SettingVersion):
		return []Finding{{
			Severity: SeverityWarning,
			Code:     CodeSettingsVersion,
			Message:  fmt.Sprintf("version %q is a literal value; use %s so it changes on every save", settings.Get(SettingVersion), VersionFormula),
			Location: m.settingsLocation(SettingVersion),
		}}
	}
	return nil
}
