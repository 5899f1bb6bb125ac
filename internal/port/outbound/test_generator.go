package outbound

import (
	"context"
	"io"

	"vertextester/internal/domain/entity"
	"vertextester/internal/domain/valueobject"
)

// GenerationRequest is one batch of blocks sent to the model.
type GenerationRequest struct {
	Language   valueobject.Language
	Blocks     []entity.CodeBlock
	BatchIndex int
	BatchCount int
}

// TestGenerator streams generated test source for a batch into w.
type TestGenerator interface {
	Generate(ctx context.Context, req GenerationRequest, w io.Writer) error
}
