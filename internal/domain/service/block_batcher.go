package service

import (
	"encoding/json"
	"errors"

	"vertextester/internal/domain/entity"
)

// DefaultMaxTokensPerBatch keeps one request comfortably under the model's input window.
const DefaultMaxTokensPerBatch = 195000

// TokenCounter returns the token count of a serialized block.
type TokenCounter func(text string) int

// BlockBatcher groups extracted blocks into request-sized batches.
type BlockBatcher struct {
	maxTokens int
	count     TokenCounter
}

// NewBlockBatcher creates a batcher with the given per-batch budget.
func NewBlockBatcher(maxTokens int, count TokenCounter) (*BlockBatcher, error) {
	if maxTokens <= 0 {
		return nil, errors.New("max tokens per batch must be positive")
	}
	if count == nil {
		return nil, errors.New("token counter cannot be nil")
	}
	return &BlockBatcher{maxTokens: maxTokens, count: count}, nil
}

// Batch splits blocks in order. Blocks are never reordered or split; a block
// that alone exceeds the budget is emitted as a batch of its own.
func (b *BlockBatcher) Batch(blocks []entity.CodeBlock) ([][]entity.CodeBlock, error) {
	var (
		batches [][]entity.CodeBlock
		current []entity.CodeBlock
		tokens  int
	)

	flush := func() {
		if len(current) > 0 {
			batches = append(batches, current)
			current = nil
			tokens = 0
		}
	}

	for _, block := range blocks {
		encoded, err := json.Marshal(block)
		if err != nil {
			return nil, err
		}
		t := b.count(string(encoded))

		if t > b.maxTokens {
			flush()
			batches = append(batches, []entity.CodeBlock{block})
			continue
		}
		if len(current) > 0 && tokens+t > b.maxTokens {
			flush()
		}
		current = append(current, block)
		tokens += t
	}
	flush()

	return batches, nil
}
