package workbook

import (
	"path/filepath"
	"strings"
)

// Source identifies where a workbook originated so loaders can read files on
// disk or entries inside an fs.FS without leaking implementation details.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile   SourceKind = "file"
	SourceKindFS     SourceKind = "fs"
	SourceKindMemory SourceKind = "memory"
)

// fileSource identifies on-disk workbooks.
type fileSource struct {
	path string
}

func (s fileSource) Location() string {
	return s.path
}

func (s fileSource) Kind() SourceKind {
	return SourceKindFile
}

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

// fsSource references a path within an fs.FS.
type fsSource struct {
	name string
}

func (s fsSource) Location() string {
	return s.name
}

func (s fsSource) Kind() SourceKind {
	return SourceKindFS
}

// SourceFromFS returns a Source identifying a resource inside an fs.FS.
func SourceFromFS(name string) Source {
	return fsSource{name: name}
}

// memorySource labels workbooks assembled in memory (chunks, tests).
type memorySource struct {
	name string
}

func (s memorySource) Location() string {
	return s.name
}

func (s memorySource) Kind() SourceKind {
	return SourceKindMemory
}

// SourceFromMemory returns a Source for a workbook built in memory. The name is
// used as the report location.
func SourceFromMemory(name string) Source {
	return memorySource{name: strings.TrimSpace(name)}
}

// Stem returns the file name of the source without directory or extension.
func Stem(src Source) string {
	if src == nil {
		return ""
	}
	base := filepath.Base(src.Location())
	return strings.TrimSuffix(base, filepath.Ext(base))
}
