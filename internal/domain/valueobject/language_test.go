package valueobject

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanguageFromPath(t *testing.T) {
	tests := []struct {
		path      string
		wantName  string
		wantID    string
		wantExt   string
		wantKnown bool
	}{
		{path: "/src/calc.py", wantName: LanguagePython, wantID: "python", wantExt: "py", wantKnown: true},
		{path: "Foo.java", wantName: LanguageJava, wantID: "java", wantExt: "java", wantKnown: true},
		{path: "app/index.js", wantName: LanguageJavaScript, wantID: "javascript", wantExt: "js", wantKnown: true},
		{path: "app/main.ts", wantName: LanguageTypeScript, wantID: "typescript", wantExt: "ts", wantKnown: true},
		{path: "Foo.JAVA", wantName: LanguageJava, wantID: "java", wantExt: "java", wantKnown: true},
		{path: "Foo.xyz", wantName: LanguageUnknown, wantID: "unknown", wantExt: "xyz"},
		{path: "Makefile", wantName: LanguageUnknown, wantID: "unknown", wantExt: ""},
		{path: "archive.tar.py.bak", wantName: LanguageUnknown, wantID: "unknown", wantExt: "bak"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			lang := LanguageFromPath(tt.path)
			assert.Equal(t, tt.wantName, lang.Name())
			assert.Equal(t, tt.wantName, lang.String())
			assert.Equal(t, tt.wantID, lang.ID())
			assert.Equal(t, tt.wantExt, lang.TestFileExtension())
			assert.Equal(t, tt.wantKnown, lang.IsKnown())
		})
	}
}

func TestLanguageFromPath_IgnoresContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Foo.xyz")
	require.NoError(t, os.WriteFile(path, []byte("public class Foo { }"), 0o600))

	assert.Equal(t, LanguageUnknown, LanguageFromPath(path).Name())
	assert.Equal(t, LanguageJava, LanguageFromPath(filepath.Join(dir, "Missing.java")).Name())
}

func TestLanguage_ZeroValueIsUnknown(t *testing.T) {
	var lang Language
	assert.Equal(t, LanguageUnknown, lang.Name())
	assert.False(t, lang.IsKnown())
	assert.Empty(t, lang.TestFramework())
}

func TestSupportedExtensions(t *testing.T) {
	for _, ext := range SupportedExtensions() {
		assert.True(t, LanguageFromPath("file"+ext).IsKnown(), ext)
	}
}
