package outbound

import (
	"context"

	"vertextester/internal/domain/entity"
	"vertextester/internal/domain/valueobject"
)

// CodeExtractor turns source text into function/method metadata.
type CodeExtractor interface {
	Extract(
		ctx context.Context,
		language valueobject.Language,
		filePath string,
		source []byte,
	) ([]entity.CodeBlock, error)
}
