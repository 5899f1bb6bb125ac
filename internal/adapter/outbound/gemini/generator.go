// Package gemini streams generated unit tests from Gemini models through the
// google.golang.org/genai SDK.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
	"time"

	"vertextester/internal/application/common/logging"
	"vertextester/internal/application/common/retry"
	"vertextester/internal/application/common/slogger"
	"vertextester/internal/port/outbound"

	"google.golang.org/genai"
)

const (
	// DefaultModel is the model used for test generation.
	DefaultModel = "gemini-2.5-flash"

	// BackendVertex selects Vertex AI; BackendGemini selects the Gemini Developer API.
	BackendVertex = "vertex"
	BackendGemini = "gemini"

	defaultMaxOutputTokens = 65535
	defaultTimeout         = 10 * time.Minute
)

// Config holds generation settings.
type Config struct {
	APIKey  string
	Backend string
	// BaseURL overrides the backend endpoint when set.
	BaseURL         string
	Model           string
	Temperature     float32
	TopP            float32
	MaxOutputTokens int32
	// ThinkingBudget of -1 lets the model decide.
	ThinkingBudget int32
	// Timeout bounds one batch, retries included.
	Timeout time.Duration
	Retry   *retry.Config
}

// DefaultConfig returns the generation defaults.
func DefaultConfig() Config {
	return Config{
		Backend:         BackendVertex,
		Model:           DefaultModel,
		Temperature:     1,
		TopP:            1,
		MaxOutputTokens: defaultMaxOutputTokens,
		ThinkingBudget:  -1,
		Timeout:         defaultTimeout,
		Retry:           retry.DefaultConfig(),
	}
}

// Validate checks required settings.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.New("API key cannot be empty")
	}
	if c.Backend != BackendVertex && c.Backend != BackendGemini {
		return fmt.Errorf("unsupported backend %q (expected %q or %q)", c.Backend, BackendVertex, BackendGemini)
	}
	if strings.TrimSpace(c.Model) == "" {
		return errors.New("model cannot be empty")
	}
	if c.MaxOutputTokens <= 0 {
		return errors.New("max output tokens must be positive")
	}
	return nil
}

type streamFunc func(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) iter.Seq2[*genai.GenerateContentResponse, error]

// Generator implements outbound.TestGenerator.
type Generator struct {
	config Config
	stream streamFunc
	logger logging.ApplicationLogger
}

// NewGenerator creates a genai client for config.
func NewGenerator(ctx context.Context, config Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid gemini configuration: %w", err)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(config.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if config.Backend == BackendVertex {
		// An API key without project or location selects Vertex AI express mode.
		clientConfig.Backend = genai.BackendVertexAI
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return newGenerator(config, client.Models.GenerateContentStream), nil
}

func newGenerator(config Config, stream streamFunc) *Generator {
	if config.Retry == nil {
		config.Retry = retry.DefaultConfig()
	}
	return &Generator{
		config: config,
		stream: stream,
		logger: slogger.WithComponent("gemini-generator"),
	}
}

// Generate streams the tests for one batch into w. A failed attempt is retried
// only when it is retryable and nothing was written yet, so w never receives
// duplicated output.
func (g *Generator) Generate(ctx context.Context, req outbound.GenerationRequest, w io.Writer) error {
	payload, err := json.MarshalIndent(req.Blocks, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode code blocks: %w", err)
	}

	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	contents := []*genai.Content{genai.NewContentFromText(string(payload), genai.RoleUser)}
	contentConfig := g.contentConfig(req)
	out := &countingWriter{w: w}

	executor := retry.NewExecutor(g.config.Retry, retry.CheckerFunc(func(err error) bool {
		return out.n == 0 && IsRetryable(err)
	}))

	start := time.Now()
	err = executor.Execute(ctx, func(ctx context.Context) error {
		return g.streamOnce(ctx, contents, contentConfig, out)
	})

	fields := logging.Fields{
		"model":       g.config.Model,
		"language":    req.Language.Name(),
		"blocks":      len(req.Blocks),
		"batch":       req.BatchIndex + 1,
		"batch_count": req.BatchCount,
		"bytes":       out.n,
	}
	if err != nil {
		g.logger.ErrorWithError(ctx, err, "Test generation failed", fields)
		return err
	}
	g.logger.LogPerformance(ctx, "gemini_generate_batch", time.Since(start), fields)
	return nil
}

func (g *Generator) streamOnce(
	ctx context.Context,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
	w io.Writer,
) error {
	for resp, err := range g.stream(ctx, g.config.Model, contents, config) {
		if err != nil {
			return classifyError(err)
		}
		if resp == nil {
			continue
		}
		if text := resp.Text(); text != "" {
			if _, err := io.WriteString(w, text); err != nil {
				return fmt.Errorf("failed to write generated tests: %w", err)
			}
		}
	}
	return nil
}

func (g *Generator) contentConfig(req outbound.GenerationRequest) *genai.GenerateContentConfig {
	safety := make([]*genai.SafetySetting, 0, 4)
	for _, category := range []genai.HarmCategory{
		genai.HarmCategoryHateSpeech,
		genai.HarmCategoryDangerousContent,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryHarassment,
	} {
		safety = append(safety, &genai.SafetySetting{Category: category, Threshold: genai.HarmBlockThresholdOff})
	}

	return &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(g.config.Temperature),
		TopP:              genai.Ptr(g.config.TopP),
		MaxOutputTokens:   g.config.MaxOutputTokens,
		SafetySettings:    safety,
		SystemInstruction: genai.NewContentFromText(SystemInstruction(req.Language), genai.RoleUser),
		ThinkingConfig: &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(g.config.ThinkingBudget),
		},
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
