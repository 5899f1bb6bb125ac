package notify

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withoutColor(t *testing.T) {
	t.Helper()
	previous := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = previous })
}

func TestConsole_Levels(t *testing.T) {
	withoutColor(t)

	var buf bytes.Buffer
	console := NewConsole(&buf)

	console.Progress("Generating tests for Foo.java (Java)...")
	console.Success("Tests generated for Foo.java (Java)")
	console.Warning("No files selected.")
	console.Error("Failed to generate tests for bar.py (Python): exit status 1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "… Generating tests for Foo.java (Java)...", lines[0])
	assert.Equal(t, "✔ Tests generated for Foo.java (Java)", lines[1])
	assert.Equal(t, "! No files selected.", lines[2])
	assert.Equal(t, "✖ Failed to generate tests for bar.py (Python): exit status 1", lines[3])
}

func TestConsole_ConcurrentWritesStayWhole(t *testing.T) {
	withoutColor(t)

	var buf bytes.Buffer
	console := NewConsole(&buf)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			console.Success(fmt.Sprintf("file-%02d done", i))
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 50)
	for _, line := range lines {
		assert.Regexp(t, `^✔ file-\d\d done$`, line)
	}
}
