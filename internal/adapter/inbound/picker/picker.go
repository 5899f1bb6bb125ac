// Package picker implements the interactive multi-file selection with promptui.
package picker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"vertextester/internal/application/common/slogger"

	"github.com/manifoldco/promptui"
)

const doneLabel = "Done"

//nolint:gochecknoglobals // directories never offered for selection
var skippedDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	"venv":         true,
	"target":       true,
	"build":        true,
	"dist":         true,
}

// Selector shows a single-choice list and returns the chosen index.
type Selector interface {
	Select(label string, items []string, cursor int) (int, error)
}

// PromptSelector renders lists on the terminal with promptui.
type PromptSelector struct {
	Size int
}

// Select implements Selector.
func (s PromptSelector) Select(label string, items []string, cursor int) (int, error) {
	size := s.Size
	if size <= 0 {
		size = 15
	}
	prompt := promptui.Select{
		Label:        label,
		Items:        items,
		Size:         size,
		CursorPos:    cursor,
		HideSelected: true,
		Searcher: func(input string, index int) bool {
			return strings.Contains(strings.ToLower(items[index]), strings.ToLower(input))
		},
	}
	idx, _, err := prompt.Run()
	return idx, err
}

// Picker implements inbound.FilePicker by toggling files in a repeated
// single-choice prompt until the user picks "Done".
type Picker struct {
	selector Selector
}

// New returns a picker backed by the terminal showing size rows at a time.
func New(size int) *Picker {
	return &Picker{selector: PromptSelector{Size: size}}
}

// NewWithSelector returns a picker driven by selector.
func NewWithSelector(selector Selector) *Picker {
	return &Picker{selector: selector}
}

// Pick lists files under root with one of extensions and returns the absolute
// paths the user marked, in listing order. Interrupting the prompt yields an
// empty selection.
func (p *Picker) Pick(ctx context.Context, root string, extensions []string) ([]string, error) {
	candidates, err := Discover(root, extensions)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		slogger.Warn(ctx, "No source files found", slogger.Fields{"root": root, "extensions": extensions})
		return nil, nil
	}

	selected := make([]bool, len(candidates))
	cursor := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		items := make([]string, 0, len(candidates)+1)
		items = append(items, fmt.Sprintf("%s (%d selected)", doneLabel, count(selected)))
		for i, c := range candidates {
			mark := "[ ]"
			if selected[i] {
				mark = "[x]"
			}
			items = append(items, mark+" "+relative(root, c))
		}

		idx, err := p.selector.Select("Select files to generate tests for", items, cursor)
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrAbort) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("file selection failed: %w", err)
		}
		if idx < 0 || idx >= len(items) {
			return nil, fmt.Errorf("file selection returned index %d of %d", idx, len(items))
		}

		if idx == 0 {
			var chosen []string
			for i, c := range candidates {
				if selected[i] {
					chosen = append(chosen, c)
				}
			}
			return chosen, nil
		}
		selected[idx-1] = !selected[idx-1]
		cursor = idx
	}
}

// Discover returns absolute paths of files under root whose extension is in
// extensions (case-insensitive), skipping hidden and dependency directories.
func Discover(root string, extensions []string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		wanted[strings.ToLower(ext)] = true
	}

	var files []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			name := d.Name()
			if path != absRoot && (strings.HasPrefix(name, ".") || skippedDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if wanted[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files under %s: %w", root, err)
	}

	slices.Sort(files)
	return files, nil
}

func relative(root, path string) string {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(absRoot, path); err == nil {
		return rel
	}
	return path
}

func count(selected []bool) int {
	n := 0
	for _, s := range selected {
		if s {
			n++
		}
	}
	return n
}
