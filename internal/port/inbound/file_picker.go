package inbound

import "context"

// FilePicker lets the user choose the files of a batch. An empty result with a
// nil error means the user chose nothing.
type FilePicker interface {
	Pick(ctx context.Context, root string, extensions []string) ([]string, error)
}
