package llm

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/pagedesk/pagedesk-api/internal/observability"
)

const providerNameOpenAI = "openai"

// OpenAIProvider implements the Provider interface using OpenAI's Chat Completions API
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{client: &client}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return providerNameOpenAI
}

// Generate implements single-shot completion using OpenAI's Chat Completions API
func (p *OpenAIProvider) Generate(ctx context.Context, request *Request) (*Response, error) {
	startTime := time.Now()

	// Start Sentry transaction
	transaction := sentry.StartTransaction(ctx, "openai.generate")
	defer transaction.Finish()
	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameOpenAI)

	trace := observability.GetClient().StartTrace(ctx, "openai.generate", map[string]interface{}{
		"model": request.Model,
	})
	defer trace.Finish()
	generation := trace.Generation("completion", nil)

	// Call OpenAI API with Sentry span
	span := transaction.StartChild("openai.api_call")
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(request.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(request.SystemPrompt),
			openai.UserMessage(request.UserPrompt),
		},
	})
	span.Finish()
	apiDuration := time.Since(startTime)

	if err != nil {
		log.Printf("❌ OPENAI REQUEST FAILED after %v: %v", apiDuration, err)
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		generation.SetLevel("ERROR")
		generation.Finish()
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		transaction.SetTag("success", "false")
		generation.SetLevel("ERROR")
		generation.Finish()
		return nil, fmt.Errorf("openai returned empty choices")
	}

	log.Printf("⏱️  OPENAI API CALL COMPLETED in %v (model: %s)", apiDuration, request.Model)
	transaction.SetTag("success", "true")

	out := &Response{
		Text: resp.Choices[0].Message.Content,
		Usage: Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:  int(resp.Usage.TotalTokens),
		},
	}

	generation.LogCompletion(
		request.Model, request.SystemPrompt, request.UserPrompt, out.Text,
		out.Usage.InputTokens, out.Usage.OutputTokens, out.Usage.TotalTokens,
	)
	generation.Finish()

	return out, nil
}
