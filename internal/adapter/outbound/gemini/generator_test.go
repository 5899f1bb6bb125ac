package gemini

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vertextester/internal/application/common/retry"
	"vertextester/internal/domain/entity"
	"vertextester/internal/domain/valueobject"
	"vertextester/internal/port/outbound"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

// scriptedStream replays one attempt per call: chunks followed by an optional error.
type scriptedStream struct {
	attempts []attempt
	calls    int
	contents []*genai.Content
	config   *genai.GenerateContentConfig
	model    string
}

type attempt struct {
	chunks []string
	err    error
}

func (s *scriptedStream) stream(
	_ context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) iter.Seq2[*genai.GenerateContentResponse, error] {
	a := s.attempts[min(s.calls, len(s.attempts)-1)]
	s.calls++
	s.model, s.contents, s.config = model, contents, config

	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for _, chunk := range a.chunks {
			if !yield(textResponse(chunk), nil) {
				return
			}
		}
		if a.err != nil {
			yield(nil, a.err)
		}
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.APIKey = "test-key"
	cfg.Retry = &retry.Config{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 1}
	return cfg
}

func pythonRequest() outbound.GenerationRequest {
	return outbound.GenerationRequest{
		Language: valueobject.LanguageFromPath("calc.py"),
		Blocks: []entity.CodeBlock{{
			BlockID:      "calc.py_0",
			FunctionName: "add",
			Signature:    "def add(a, b):",
			Code:         "def add(a, b):\n    return a + b",
			Language:     "python",
		}},
		BatchCount: 1,
	}
}

func TestGenerator_StreamsChunksInOrder(t *testing.T) {
	s := &scriptedStream{attempts: []attempt{{chunks: []string{"import pytest\n", "", "def test_add():\n", "    assert add(1, 2) == 3\n"}}}}
	g := newGenerator(testConfig(), s.stream)

	var out bytes.Buffer
	require.NoError(t, g.Generate(context.Background(), pythonRequest(), &out))

	assert.Equal(t, "import pytest\ndef test_add():\n    assert add(1, 2) == 3\n", out.String())
	assert.Equal(t, 1, s.calls)
	assert.Equal(t, DefaultModel, s.model)

	require.Len(t, s.contents, 1)
	assert.Equal(t, genai.RoleUser, s.contents[0].Role)
	require.Len(t, s.contents[0].Parts, 1)
	assert.Contains(t, s.contents[0].Parts[0].Text, `"block_id": "calc.py_0"`)
	assert.Contains(t, s.contents[0].Parts[0].Text, `"class_context": null`)
}

func TestGenerator_ContentConfig(t *testing.T) {
	s := &scriptedStream{attempts: []attempt{{}}}
	g := newGenerator(testConfig(), s.stream)
	require.NoError(t, g.Generate(context.Background(), pythonRequest(), &bytes.Buffer{}))

	cfg := s.config
	require.NotNil(t, cfg)
	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 1.0, *cfg.Temperature, 1e-9)
	require.NotNil(t, cfg.TopP)
	assert.InDelta(t, 1.0, *cfg.TopP, 1e-9)
	assert.EqualValues(t, 65535, cfg.MaxOutputTokens)
	require.NotNil(t, cfg.ThinkingConfig)
	require.NotNil(t, cfg.ThinkingConfig.ThinkingBudget)
	assert.EqualValues(t, -1, *cfg.ThinkingConfig.ThinkingBudget)

	require.Len(t, cfg.SafetySettings, 4)
	for _, setting := range cfg.SafetySettings {
		assert.Equal(t, genai.HarmBlockThresholdOff, setting.Threshold)
	}

	require.NotNil(t, cfg.SystemInstruction)
	require.NotEmpty(t, cfg.SystemInstruction.Parts)
	assert.Contains(t, cfg.SystemInstruction.Parts[0].Text, "Python")
	assert.Contains(t, cfg.SystemInstruction.Parts[0].Text, "pytest")
}

func TestGenerator_RetriesOnlyBeforeOutput(t *testing.T) {
	unavailable := genai.APIError{Code: 503, Message: "model overloaded"}

	tests := []struct {
		name      string
		attempts  []attempt
		wantCalls int
		wantOut   string
		wantErr   bool
	}{
		{
			name:      "retryable failure before output is retried",
			attempts:  []attempt{{err: unavailable}, {chunks: []string{"ok"}}},
			wantCalls: 2,
			wantOut:   "ok",
		},
		{
			name:      "failure after partial output is not retried",
			attempts:  []attempt{{chunks: []string{"partial"}, err: unavailable}, {chunks: []string{"ok"}}},
			wantCalls: 1,
			wantOut:   "partial",
			wantErr:   true,
		},
		{
			name:      "non retryable failure stops immediately",
			attempts:  []attempt{{err: genai.APIError{Code: 400, Message: "bad request"}}},
			wantCalls: 1,
			wantErr:   true,
		},
		{
			name:      "retries are bounded",
			attempts:  []attempt{{err: genai.APIError{Code: 429, Message: "quota"}}},
			wantCalls: 3,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &scriptedStream{attempts: tt.attempts}
			g := newGenerator(testConfig(), s.stream)

			var out bytes.Buffer
			err := g.Generate(context.Background(), pythonRequest(), &out)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, s.calls)
			assert.Equal(t, tt.wantOut, out.String())
		})
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantStatus    int
		wantRetryable bool
	}{
		{name: "rate limited", err: genai.APIError{Code: 429, Message: "quota"}, wantStatus: 429, wantRetryable: true},
		{name: "server error", err: genai.APIError{Code: 500, Message: "internal"}, wantStatus: 500, wantRetryable: true},
		{name: "unauthorized", err: genai.APIError{Code: 401, Message: "bad key"}, wantStatus: 401},
		{name: "network reset", err: errors.New("read tcp: connection reset by peer"), wantRetryable: true},
		{name: "cancelled", err: context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError(tt.err)
			assert.Equal(t, tt.wantStatus, got.StatusCode)
			assert.Equal(t, tt.wantRetryable, got.Retryable)
			assert.Equal(t, tt.err, got.Err)
			assert.Equal(t, tt.wantRetryable, IsRetryable(tt.err))
		})
	}

	assert.False(t, IsRetryable(nil))
}

func TestConfig_Validate(t *testing.T) {
	valid := testConfig()
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "missing key", mutate: func(c *Config) { c.APIKey = " " }},
		{name: "unknown backend", mutate: func(c *Config) { c.Backend = "openai" }},
		{name: "missing model", mutate: func(c *Config) { c.Model = "" }},
		{name: "no output budget", mutate: func(c *Config) { c.MaxOutputTokens = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNewGenerator_RejectsInvalidConfig(t *testing.T) {
	_, err := NewGenerator(context.Background(), Config{})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "invalid gemini configuration"))
}

func TestNewGenerator_RequestPath(t *testing.T) {
	for _, env := range []string{"GOOGLE_API_KEY", "GEMINI_API_KEY", "GOOGLE_CLOUD_PROJECT", "GOOGLE_CLOUD_LOCATION", "GOOGLE_CLOUD_REGION"} {
		t.Setenv(env, "")
	}

	tests := []struct {
		name     string
		backend  string
		wantPath string
	}{
		{
			name:     "vertex express mode",
			backend:  BackendVertex,
			wantPath: "/v1beta1/publishers/google/models/gemini-2.5-flash:streamGenerateContent",
		},
		{
			name:     "gemini developer api",
			backend:  BackendGemini,
			wantPath: "/v1beta/models/gemini-2.5-flash:streamGenerateContent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath, gotKey string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotKey = r.Header.Get("x-goog-api-key")
				w.Header().Set("Content-Type", "text/event-stream")
				fmt.Fprint(w, `data: {"candidates":[{"content":{"role":"model","parts":[{"text":"def test_add():\n    pass\n"}]}}]}`+"\n\n")
			}))
			defer server.Close()

			cfg := testConfig()
			cfg.Backend = tt.backend
			cfg.BaseURL = server.URL
			g, err := NewGenerator(context.Background(), cfg)
			require.NoError(t, err)

			var out bytes.Buffer
			require.NoError(t, g.Generate(context.Background(), pythonRequest(), &out))

			assert.Equal(t, tt.wantPath, gotPath)
			assert.NotContains(t, gotPath, "projects/")
			assert.Equal(t, "test-key", gotKey)
			assert.Equal(t, "def test_add():\n    pass\n", out.String())
		})
	}
}

func TestSystemInstruction(t *testing.T) {
	java := SystemInstruction(valueobject.LanguageFromPath("Foo.java"))
	assert.Contains(t, java, "Java unit test files")
	assert.Contains(t, java, "JUnit 5")
	assert.NotContains(t, java, "{language}")
	assert.NotContains(t, java, "{framework}")

	ts := SystemInstruction(valueobject.LanguageFromPath("app.ts"))
	assert.Contains(t, ts, "TypeScript")
	assert.Contains(t, ts, "Jest")
}
