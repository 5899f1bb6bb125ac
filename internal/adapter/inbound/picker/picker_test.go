package picker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"vertextester/internal/domain/valueobject"

	"github.com/manifoldco/promptui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSelector answers prompts from a fixed list of indexes.
type scriptedSelector struct {
	answers []int
	err     error
	seen    [][]string
	cursors []int
}

func (s *scriptedSelector) Select(_ string, items []string, cursor int) (int, error) {
	s.seen = append(s.seen, append([]string(nil), items...))
	s.cursors = append(s.cursors, cursor)
	if len(s.answers) == 0 {
		if s.err != nil {
			return -1, s.err
		}
		return 0, nil
	}
	next := s.answers[0]
	s.answers = s.answers[1:]
	return next, nil
}

func makeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, rel := range []string{
		"a.py",
		"B.java",
		"notes.txt",
		"UPPER.PY",
		filepath.Join("sub", "d.ts"),
		filepath.Join("sub", "e.js"),
		filepath.Join(".git", "hook.py"),
		filepath.Join("node_modules", "lib", "x.js"),
	} {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	}
	return root
}

func TestDiscover(t *testing.T) {
	root := makeTree(t)

	files, err := Discover(root, valueobject.SupportedExtensions())
	require.NoError(t, err)

	var rel []string
	for _, f := range files {
		assert.True(t, filepath.IsAbs(f))
		rel = append(rel, relative(root, f))
	}
	assert.Equal(t, []string{
		"B.java",
		"UPPER.PY",
		"a.py",
		filepath.Join("sub", "d.ts"),
		filepath.Join("sub", "e.js"),
	}, rel)
}

func TestPicker_TogglesUntilDone(t *testing.T) {
	root := makeTree(t)
	// select a.py (3), B.java (1), unselect a.py (3), select sub/d.ts (4), done.
	selector := &scriptedSelector{answers: []int{3, 1, 3, 4, 0}}

	files, err := NewWithSelector(selector).Pick(context.Background(), root, valueobject.SupportedExtensions())
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "B.java"),
		filepath.Join(root, "sub", "d.ts"),
	}, files)

	require.Len(t, selector.seen, 5)
	assert.Equal(t, "Done (0 selected)", selector.seen[0][0])
	assert.Equal(t, "[ ] a.py", selector.seen[0][3])
	assert.Equal(t, "[x] a.py", selector.seen[1][3])
	assert.Equal(t, "Done (2 selected)", selector.seen[4][0])
	assert.Equal(t, []int{0, 3, 1, 3, 4}, selector.cursors)
}

func TestPicker_DoneImmediatelyIsEmpty(t *testing.T) {
	files, err := NewWithSelector(&scriptedSelector{answers: []int{0}}).
		Pick(context.Background(), makeTree(t), valueobject.SupportedExtensions())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestPicker_InterruptIsEmptySelection(t *testing.T) {
	selector := &scriptedSelector{answers: []int{1}, err: promptui.ErrInterrupt}
	files, err := NewWithSelector(selector).Pick(context.Background(), makeTree(t), valueobject.SupportedExtensions())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestPicker_SelectorFailure(t *testing.T) {
	_, err := NewWithSelector(failingSelector{}).Pick(context.Background(), makeTree(t), valueobject.SupportedExtensions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "terminal gone")
}

func TestPicker_NoCandidates(t *testing.T) {
	selector := &scriptedSelector{}
	files, err := NewWithSelector(selector).Pick(context.Background(), t.TempDir(), valueobject.SupportedExtensions())
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Empty(t, selector.seen)
}

func TestPicker_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewWithSelector(&scriptedSelector{}).Pick(ctx, makeTree(t), valueobject.SupportedExtensions())
	assert.ErrorIs(t, err, context.Canceled)
}

type failingSelector struct{}

func (failingSelector) Select(string, []string, int) (int, error) {
	return -1, errors.New("terminal gone")
}
