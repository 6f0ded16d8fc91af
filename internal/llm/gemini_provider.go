package llm

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/pagedesk/pagedesk-api/internal/observability"
	"google.golang.org/genai"
)

const providerNameGemini = "gemini"

// GeminiProvider implements the Provider interface using Google's Gemini API
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{client: client}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return providerNameGemini
}

// Generate implements single-shot completion using Gemini's API
func (p *GeminiProvider) Generate(ctx context.Context, request *Request) (*Response, error) {
	startTime := time.Now()

	// Start Sentry transaction
	transaction := sentry.StartTransaction(ctx, "gemini.generate")
	defer transaction.Finish()
	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameGemini)

	trace := observability.GetClient().StartTrace(ctx, "gemini.generate", map[string]interface{}{
		"model": request.Model,
	})
	defer trace.Finish()
	generation := trace.Generation("completion", nil)

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: request.SystemPrompt}},
		},
	}

	// Call Gemini API
	span := transaction.StartChild("gemini.api_call")
	result, err := p.client.Models.GenerateContent(ctx, request.Model, genai.Text(request.UserPrompt), config)
	span.Finish()
	apiDuration := time.Since(startTime)

	if err != nil {
		log.Printf("❌ GEMINI REQUEST FAILED after %v: %v", apiDuration, err)
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		generation.SetLevel("ERROR")
		generation.Finish()
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		transaction.SetTag("success", "false")
		generation.SetLevel("ERROR")
		generation.Finish()
		return nil, fmt.Errorf("gemini returned empty response")
	}

	log.Printf("⏱️  GEMINI API CALL COMPLETED in %v (model: %s)", apiDuration, request.Model)
	transaction.SetTag("success", "true")

	out := &Response{Text: text}
	if result.UsageMetadata != nil {
		out.Usage = Usage{
			InputTokens:  int(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(result.UsageMetadata.TotalTokenCount),
		}
	}

	generation.LogCompletion(
		request.Model, request.SystemPrompt, request.UserPrompt, out.Text,
		out.Usage.InputTokens, out.Usage.OutputTokens, out.Usage.TotalTokens,
	)
	generation.Finish()

	return out, nil
}
