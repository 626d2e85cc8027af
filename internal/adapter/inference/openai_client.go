package inference

import (
	"context"
	"net/http"
	"strings"
	"wikiquiz/internal/config"
	"wikiquiz/internal/domain"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// systemPrompt is prepended to every call. The model is instructed, but
// not guaranteed, to answer with bare JSON; the service layer still runs
// the extracted output through strict parsing.
const systemPrompt = "Return ONLY valid JSON."

// temperature is fixed low to bias toward deterministic,
// schema-conformant output.
const temperature = 0.3

// OpenAIClient implements domain.InferenceClient against any
// OpenAI-compatible chat completion endpoint, by default the
// HuggingFace inference router.
type OpenAIClient struct {
	llm *openai.LLM
}

// NewOpenAIClient builds the langchaingo client from config. The injected
// http.Client carries the transport timeout; the pipeline itself does not
// impose one.
func NewOpenAIClient(cfg config.LLMConfig) (*OpenAIClient, error) {
	if cfg.Token == "" {
		return nil, domain.NewInternalError("HF_TOKEN environment variable not set", nil)
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	llm, err := openai.New(
		openai.WithToken(cfg.Token),
		openai.WithModel(cfg.Model),
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, domain.NewInternalError("Failed to create LLM client", err)
	}

	return &OpenAIClient{llm: llm}, nil
}

// Complete implements domain.InferenceClient.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	resp, err := c.llm.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
			llms.TextParts(llms.ChatMessageTypeHuman, prompt),
		},
		llms.WithTemperature(temperature),
		llms.WithMaxTokens(maxTokens),
	)
	if err != nil {
		return "", domain.NewInferenceError(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", domain.NewError(domain.CodeInferenceFailed, "Empty LLM response", nil)
	}

	return strings.TrimSpace(resp.Choices[0].Content), nil
}

var _ domain.InferenceClient = (*OpenAIClient)(nil)
