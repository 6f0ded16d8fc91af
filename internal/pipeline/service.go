package pipeline

import (
	"context"
	"math/rand"
	"time"

	"github.com/pagedesk/pagedesk-api/internal/llm"
	"github.com/pagedesk/pagedesk-api/internal/logger"
)

// ProviderResolver yields a text-generation provider for a model and a set
// of per-account credential overrides.
type ProviderResolver interface {
	Resolve(ctx context.Context, model string, creds llm.Credentials) (llm.Provider, error)
}

// Service runs the full generation pipeline for one request: prompts,
// provider call, parsing, composition, safety filtering and the
// anti-duplication loop. Provider calls are sequential, never concurrent.
type Service struct {
	settings     SettingsStore
	guard        *Guard
	providers    ProviderResolver
	filter       *Filter
	defaultModel string
	newRand      func() *rand.Rand
}

// ServiceOptions configures a Service
type ServiceOptions struct {
	FilterMode   string
	DefaultModel string
	// Rand supplies the random source for icon selection; tests inject a
	// seeded source to assert exact output
	Rand func() *rand.Rand
}

func NewService(settings SettingsStore, corpus CorpusStore, providers ProviderResolver, opts ServiceOptions) *Service {
	newRand := opts.Rand
	if newRand == nil {
		newRand = func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		}
	}
	model := opts.DefaultModel
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &Service{
		settings:     settings,
		guard:        NewGuard(corpus),
		providers:    providers,
		filter:       NewFilter(opts.FilterMode),
		defaultModel: model,
		newRand:      newRand,
	}
}

// GeneratePostText runs the pipeline and returns the final post text.
// Failures are one of ErrMissingCredentials, ErrMissingKeywordOrLink,
// ErrPolicyViolation or a *GenerationError.
func (s *Service) GeneratePostText(ctx context.Context, req *Request) (*Result, error) {
	settings := s.loadSettings(ctx, req.AccountID)
	applySettings(req, settings)

	if req.Keyword == "" && req.Link == "" {
		return nil, ErrMissingKeywordOrLink
	}

	model := req.Model
	if model == "" {
		model = s.defaultModel
	}

	creds := llm.Credentials{}
	if settings != nil {
		creds.OpenAIKey = settings.OpenAIKey
		creds.GeminiKey = settings.GeminiKey
	}
	provider, err := s.providers.Resolve(ctx, model, creds)
	if err != nil {
		logger.Warn("No generation credentials resolved", logger.Fields{
			"account_id": req.AccountID,
			"model":      model,
		})
		return nil, ErrMissingCredentials
	}

	systemPrompt, userPrompt := BuildPrompts(req)

	var final string
	var usage llm.Usage
	attempts := 0
	prompt := userPrompt

	for attempts < maxGenerationAttempts {
		attempts++

		resp, genErr := provider.Generate(ctx, &llm.Request{
			Model:        model,
			SystemPrompt: systemPrompt,
			UserPrompt:   prompt,
		})
		if genErr != nil {
			if final == "" {
				return nil, &GenerationError{Provider: provider.Name(), Model: model, Err: genErr}
			}
			// a failed regeneration ends the loop; the last candidate stands
			logger.Warn("Regeneration failed, keeping previous candidate", logger.Fields{
				"account_id": req.AccountID,
				"attempt":    attempts,
				"error":      genErr.Error(),
			})
			break
		}

		usage.InputTokens += resp.Usage.InputTokens
		usage.OutputTokens += resp.Usage.OutputTokens
		usage.TotalTokens += resp.Usage.TotalTokens

		payload := Parse(resp.Text)
		text := NewComposer(s.newRand()).Compose(payload.Body, payload.Bullets, req)
		text = s.filter.Sanitize(text)
		final = text

		similar, simErr := s.guard.IsTooSimilar(ctx, req.AccountID, text)
		if simErr != nil {
			logger.Warn("Corpus lookup failed, skipping similarity check", logger.Fields{
				"account_id": req.AccountID,
				"error":      simErr.Error(),
			})
		}
		if rememberErr := s.guard.Remember(ctx, req.AccountID, text); rememberErr != nil {
			logger.Warn("Failed to remember generated text", logger.Fields{
				"account_id": req.AccountID,
				"error":      rememberErr.Error(),
			})
		}

		if !similar {
			break
		}

		// similarity stays best-effort: after the last attempt the candidate
		// is accepted as-is
		logger.Info("Candidate too similar to corpus, regenerating", logger.Fields{
			"account_id": req.AccountID,
			"attempt":    attempts,
		})
		prompt = userPrompt + "\n\n" + DiversifyDirective
	}

	if s.filter.DetectViolation(final, req.Keyword) {
		logger.Warn("Hard filter rejected generated text", logger.Fields{
			"account_id": req.AccountID,
			"model":      model,
		})
		return nil, ErrPolicyViolation
	}

	return &Result{
		Text:       final,
		FilterMode: s.filter.Mode(),
		Attempts:   attempts,
		Model:      model,
		Usage:      usage,
	}, nil
}

// loadSettings degrades to "no defaults available" on store failure
func (s *Service) loadSettings(ctx context.Context, accountID string) *AccountSettings {
	if s.settings == nil || accountID == "" {
		return nil
	}
	settings, err := s.settings.Get(ctx, accountID)
	if err != nil {
		logger.Warn("Settings lookup failed, continuing without defaults", logger.Fields{
			"account_id": accountID,
			"error":      err.Error(),
		})
		return nil
	}
	return settings
}

// applySettings fills empty request fields from the account snapshot
func applySettings(req *Request, settings *AccountSettings) {
	if settings == nil {
		return
	}
	if req.Keyword == "" {
		req.Keyword = settings.Keyword
	}
	if req.Link == "" {
		req.Link = settings.SourceLink
	}
	if req.ContactPhone == "" {
		req.ContactPhone = settings.ContactPhone
	}
	if req.ContactChannel == "" {
		req.ContactChannel = settings.ContactChannel
	}
	if req.MethodLink == "" {
		req.MethodLink = settings.MethodLink
	}
}
