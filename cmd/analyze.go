package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"vertextester/internal/adapter/outbound/gemini"
	"vertextester/internal/adapter/outbound/treesitter"
	"vertextester/internal/application/common/retry"
	"vertextester/internal/application/common/tokenutil"
	"vertextester/internal/application/service"
	"vertextester/internal/domain/errors/domain"
	domainservice "vertextester/internal/domain/service"
	"vertextester/internal/domain/valueobject"

	"github.com/spf13/cobra"
)

// newAnalyzeCmd implements: vertextester analyze <file_path> <output_dir> <api_key>.
// It is the default collaborator launched by generate, one process per file.
func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <file_path> <output_dir> <api_key>",
		Short: "Extract a file's functions and stream a generated test file",
		Long: `Parse one source file with tree-sitter, write summary_<name>.json with the
extracted functions and methods, and stream a unit test file generated by
Gemini into the output directory.

Exits non-zero on any failure.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(3)(cmd, args); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "ERROR: %v\nUsage: %s\n", err, cmd.UseLine())
				return err
			}
			return nil
		},
		// Failures are reported once, as an ERROR line.
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			testPath, err := runAnalyze(ctx, cmd.OutOrStdout(), args[0], args[1], args[2])
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "ERROR: %v\n", err)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "SUCCESS: Test file created: %s\n", testPath)
			return nil
		},
	}
}

func runAnalyze(ctx context.Context, out io.Writer, filePath, outputDir, apiKey string) (string, error) {
	extractor := treesitter.NewExtractor()
	lang := valueobject.LanguageFromPath(filePath)
	if !extractor.Supports(lang) {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedLanguage, filepath.Ext(filePath))
	}

	absFile, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("invalid file path %s: %w", filePath, err)
	}
	absOut, err := filepath.Abs(outputDir)
	if err != nil {
		return "", fmt.Errorf("invalid output directory %s: %w", outputDir, err)
	}

	g := cfg.Gemini
	generator, err := gemini.NewGenerator(ctx, gemini.Config{
		APIKey:          apiKey,
		Backend:         g.Backend,
		BaseURL:         g.BaseURL,
		Model:           g.Model,
		Temperature:     g.Temperature,
		TopP:            g.TopP,
		MaxOutputTokens: g.MaxOutputTokens,
		ThinkingBudget:  g.ThinkingBudget,
		Timeout:         g.Timeout,
		Retry: &retry.Config{
			MaxRetries:    g.MaxRetries,
			InitialDelay:  g.InitialBackoff,
			MaxDelay:      g.MaxBackoff,
			BackoffFactor: 2.0,
			Jitter:        true,
		},
	})
	if err != nil {
		return "", err
	}

	batcher, err := domainservice.NewBlockBatcher(cfg.Analyzer.MaxTokensPerBatch, tokenutil.CountTokens)
	if err != nil {
		return "", err
	}

	svc, err := service.NewTestGenerationService(extractor, generator, batcher, out)
	if err != nil {
		return "", err
	}
	return svc.Run(ctx, absFile, absOut)
}
