// Package tokenutil counts prompt tokens with tiktoken's cl100k_base encoding.
// The encoding is loaded lazily; when it cannot be loaded (for example without
// network access for the BPE ranks) counting falls back to whitespace-separated words.
package tokenutil

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const encodingName = "cl100k_base"

var (
	once     sync.Once //nolint:gochecknoglobals // lazily-initialized encoder
	encoding *tiktoken.Tiktoken
)

func initEncoding() {
	once.Do(func() {
		enc, err := tiktoken.GetEncoding(encodingName)
		if err == nil {
			encoding = enc
		}
	})
}

// CountTokens returns the number of tokens in text.
func CountTokens(text string) int {
	initEncoding()
	if encoding != nil {
		return len(encoding.Encode(text, nil, nil))
	}
	return CountWords(text)
}

// CountWords is the fallback estimate: whitespace-separated words, never below 1.
func CountWords(text string) int {
	n := len(strings.Fields(text))
	if n < 1 {
		return 1
	}
	return n
}
