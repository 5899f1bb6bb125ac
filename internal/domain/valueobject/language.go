package valueobject

import (
	"path/filepath"
	"strings"
)

// Language tags shown to users. The tag is derived from the file extension only.
const (
	LanguagePython     = "Python"
	LanguageJava       = "Java"
	LanguageJavaScript = "JavaScript"
	LanguageTypeScript = "TypeScript"
	LanguageUnknown    = "Unknown"
)

// Language is the advisory language tag of a source file.
type Language struct {
	name      string
	extension string
}

//nolint:gochecknoglobals // fixed extension table
var extensionLanguages = map[string]string{
	".py":   LanguagePython,
	".java": LanguageJava,
	".js":   LanguageJavaScript,
	".ts":   LanguageTypeScript,
}

// SupportedExtensions returns the extensions offered by the file picker, in display order.
func SupportedExtensions() []string {
	return []string{".py", ".java", ".js", ".ts"}
}

// LanguageFromPath derives the language tag from the file name's extension.
// The comparison is case-insensitive and the file content is never read.
func LanguageFromPath(path string) Language {
	ext := strings.ToLower(filepath.Ext(path))
	if name, ok := extensionLanguages[ext]; ok {
		return Language{name: name, extension: ext}
	}
	return Language{name: LanguageUnknown, extension: ext}
}

// Name returns the display tag, e.g. "Java".
func (l Language) Name() string {
	if l.name == "" {
		return LanguageUnknown
	}
	return l.name
}

// String implements fmt.Stringer.
func (l Language) String() string { return l.Name() }

// Extension returns the lower-cased extension including the dot.
func (l Language) Extension() string { return l.extension }

// IsKnown reports whether the extension maps to a supported language.
func (l Language) IsKnown() bool { return l.Name() != LanguageUnknown }

// ID returns the lower-case identifier used in extracted metadata ("python", "java", ...).
func (l Language) ID() string {
	return strings.ToLower(l.Name())
}

// TestFileExtension returns the extension, without dot, of generated test files.
func (l Language) TestFileExtension() string {
	return strings.TrimPrefix(l.extension, ".")
}

// TestFramework names the framework generated tests should target.
func (l Language) TestFramework() string {
	switch l.Name() {
	case LanguagePython:
		return "pytest"
	case LanguageJava:
		return "JUnit 5"
	case LanguageJavaScript, LanguageTypeScript:
		return "Jest"
	default:
		return ""
	}
}
