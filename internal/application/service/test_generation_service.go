package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vertextester/internal/application/common/logging"
	"vertextester/internal/application/common/slogger"
	"vertextester/internal/domain/entity"
	"vertextester/internal/domain/errors/domain"
	domainservice "vertextester/internal/domain/service"
	"vertextester/internal/domain/valueobject"
	"vertextester/internal/port/outbound"
)

// TestGenerationService turns one source file into one generated test file.
// It is the work done by a single dispatched invocation.
type TestGenerationService struct {
	extractor outbound.CodeExtractor
	generator outbound.TestGenerator
	batcher   *domainservice.BlockBatcher
	out       io.Writer
	logger    logging.ApplicationLogger
}

// NewTestGenerationService wires the pipeline. out receives the human-readable
// progress lines; nil discards them.
func NewTestGenerationService(
	extractor outbound.CodeExtractor,
	generator outbound.TestGenerator,
	batcher *domainservice.BlockBatcher,
	out io.Writer,
) (*TestGenerationService, error) {
	if extractor == nil {
		return nil, errors.New("code extractor cannot be nil")
	}
	if generator == nil {
		return nil, errors.New("test generator cannot be nil")
	}
	if batcher == nil {
		return nil, errors.New("block batcher cannot be nil")
	}
	if out == nil {
		out = io.Discard
	}
	return &TestGenerationService{
		extractor: extractor,
		generator: generator,
		batcher:   batcher,
		out:       out,
		logger:    slogger.WithComponent("test-generation"),
	}, nil
}

// Run extracts the file's functions, writes summary_<stem>.json and streams
// the generated tests into outputDir. It returns the test file path.
func (s *TestGenerationService) Run(ctx context.Context, filePath, outputDir string) (string, error) {
	lang := valueobject.LanguageFromPath(filePath)
	if !lang.IsKnown() {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedLanguage, lang.Extension())
	}

	source, err := os.ReadFile(filePath) //nolint:gosec // the file was selected by the user
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	fmt.Fprintf(s.out, "Detected language: %s\n", lang.ID())

	blocks, err := s.extractor.Extract(ctx, lang, filePath, source)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrOutputDirectory, err)
	}
	if err := writeSummary(outputDir, filePath, blocks); err != nil {
		return "", err
	}
	fmt.Fprintf(s.out, "Found %d functions/methods to test\n", len(blocks))
	if len(blocks) == 0 {
		return "", fmt.Errorf("%w in %s", domain.ErrNoCodeBlocks, filePath)
	}

	batches, err := s.batcher.Batch(blocks)
	if err != nil {
		return "", fmt.Errorf("failed to batch code blocks: %w", err)
	}
	fmt.Fprintf(s.out, "Processing %d batch(es)...\n", len(batches))

	testPath := filepath.Join(outputDir, TestFileName(lang, filePath, blocks))
	start := time.Now()
	for i, batch := range batches {
		req := outbound.GenerationRequest{
			Language:   lang,
			Blocks:     batch,
			BatchIndex: i,
			BatchCount: len(batches),
		}
		if err := s.generateBatch(ctx, testPath, req); err != nil {
			removeIfEmpty(testPath)
			return "", err
		}
	}

	s.logger.LogPerformance(ctx, "generate_test_file", time.Since(start), logging.Fields{
		"file":      filePath,
		"test_file": testPath,
		"blocks":    len(blocks),
		"batches":   len(batches),
	})
	fmt.Fprintf(s.out, "\nAll AI tests generated successfully: %s\n", testPath)
	return testPath, nil
}

// generateBatch truncates the test file for the first batch and appends,
// separated by a blank line, for later ones.
func (s *TestGenerationService) generateBatch(ctx context.Context, testPath string, req outbound.GenerationRequest) error {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if req.BatchIndex > 0 {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}

	f, err := os.OpenFile(testPath, flags, 0o600) //nolint:gosec // path is built from the output directory
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", testPath, err)
	}
	defer f.Close()

	if req.BatchIndex > 0 {
		if _, err := io.WriteString(f, "\n\n"); err != nil {
			return fmt.Errorf("failed to write %s: %w", testPath, err)
		}
	}

	fmt.Fprintf(s.out, "\nProcessing batch %d/%d: | ", req.BatchIndex+1, req.BatchCount)
	if err := s.generator.Generate(ctx, req, &progressWriter{w: f, progress: s.out}); err != nil {
		fmt.Fprintln(s.out)
		return fmt.Errorf("batch %d/%d: %w", req.BatchIndex+1, req.BatchCount, err)
	}
	fmt.Fprintln(s.out, " done!")

	return f.Close()
}

// removeIfEmpty drops a test file that a failed first batch left without
// content. Partial output from earlier batches is kept.
func removeIfEmpty(path string) {
	if info, err := os.Stat(path); err == nil && info.Size() == 0 {
		_ = os.Remove(path)
	}
}

// TestFileName is test_<first class>.<ext> when any block has a class,
// otherwise test_<source stem>.<ext>.
func TestFileName(lang valueobject.Language, filePath string, blocks []entity.CodeBlock) string {
	for _, b := range blocks {
		if class := b.ClassName(); class != "" {
			return fmt.Sprintf("test_%s.%s", class, lang.TestFileExtension())
		}
	}
	return fmt.Sprintf("test_%s.%s", sourceStem(filePath), lang.TestFileExtension())
}

// SummaryFileName is the per-source metadata file written next to the tests.
func SummaryFileName(filePath string) string {
	return fmt.Sprintf("summary_%s.json", sourceStem(filePath))
}

func sourceStem(filePath string) string {
	base := filepath.Base(filePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func writeSummary(outputDir, filePath string, blocks []entity.CodeBlock) error {
	if blocks == nil {
		blocks = []entity.CodeBlock{}
	}
	data, err := json.MarshalIndent(blocks, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	path := filepath.Join(outputDir, SummaryFileName(filePath))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// progressWriter forwards to w and prints one '#' per chunk to progress.
type progressWriter struct {
	w        io.Writer
	progress io.Writer
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	if n > 0 {
		fmt.Fprint(p.progress, "#")
	}
	return n, err
}
