package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/teilomillet/gollm"
)

// GollmBackend implements Backend on top of a gollm.LLM instance.
type GollmBackend struct {
	provider string
	model    string
	llm      gollm.LLM
	policy   RetryPolicy
}

// GollmOption configures a GollmBackend.
type GollmOption func(*gollmConfig)

type gollmConfig struct {
	apiKey    string
	model     string
	maxTokens int
	policy    RetryPolicy
	extraOpts []gollm.ConfigOption
}

// WithAPIKey sets the API key. When empty, gollm reads it from the provider's
// environment variable.
func WithAPIKey(key string) GollmOption {
	return func(c *gollmConfig) { c.apiKey = key }
}

// WithModel sets the model identifier.
func WithModel(model string) GollmOption {
	return func(c *gollmConfig) { c.model = model }
}

// WithMaxTokens sets the default completion budget.
func WithMaxTokens(n int) GollmOption {
	return func(c *gollmConfig) { c.maxTokens = n }
}

// WithRetryPolicy overrides the adapter retry policy.
func WithRetryPolicy(p RetryPolicy) GollmOption {
	return func(c *gollmConfig) { c.policy = p }
}

// WithGollmOptions appends extra gollm configuration options.
func WithGollmOptions(opts ...gollm.ConfigOption) GollmOption {
	return func(c *gollmConfig) { c.extraOpts = append(c.extraOpts, opts...) }
}

// NewGollmBackend creates a backend for the given provider ("openai",
// "anthropic", ...).
func NewGollmBackend(provider string, opts ...GollmOption) (*GollmBackend, error) {
	cfg := &gollmConfig{
		maxTokens: 2048,
		policy:    DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	model := cfg.model
	if model == "" {
		switch provider {
		case "anthropic":
			model = "claude-sonnet-4-5"
		default:
			model = "gpt-4o-mini"
		}
	}

	gollmOpts := []gollm.ConfigOption{
		gollm.SetProvider(provider),
		gollm.SetModel(model),
		gollm.SetMaxTokens(cfg.maxTokens),
		gollm.SetMaxRetries(0), // retry is handled by the adapter policy
		gollm.SetLogLevel(gollm.LogLevelWarn),
	}
	if cfg.apiKey != "" {
		gollmOpts = append(gollmOpts, gollm.SetAPIKey(cfg.apiKey))
	}
	gollmOpts = append(gollmOpts, cfg.extraOpts...)

	inst, err := gollm.NewLLM(gollmOpts...)
	if err != nil {
		return nil, fmt.Errorf("create gollm LLM for provider %s: %w", provider, err)
	}

	return &GollmBackend{
		provider: provider,
		model:    model,
		llm:      inst,
		policy:   cfg.policy,
	}, nil
}

// NewGollmBackendFromLLM wraps an existing gollm.LLM instance.
func NewGollmBackendFromLLM(provider string, inst gollm.LLM) *GollmBackend {
	return &GollmBackend{
		provider: provider,
		llm:      inst,
		policy:   DefaultRetryPolicy(),
	}
}

// Provider returns the provider identifier.
func (b *GollmBackend) Provider() string { return b.provider }

// Complete sends a blocking completion request. Retryable provider failures
// are retried under the adapter policy before an error is returned.
func (b *GollmBackend) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	prompt := b.translateRequest(req)
	b.applyRequestOptions(req)

	text, err := retry(ctx, b.policy, func(ctx context.Context) (string, error) {
		out, genErr := b.llm.Generate(ctx, prompt)
		if genErr != nil {
			return "", b.translateError(genErr)
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	completion := &Completion{
		Text:  text,
		Usage: estimateUsage(req, text),
	}

	if req.ForceStructured {
		sel, ok := ParseSelection(text)
		if !ok {
			return nil, &ExtractionError{BackendError: BackendError{
				Message:  "structured response did not contain a {name, arguments} object",
				Provider: b.provider,
			}}
		}
		completion.Selection = sel
	}

	return completion, nil
}

// translateRequest flattens the conversation into a gollm prompt.
func (b *GollmBackend) translateRequest(req CompletionRequest) *gollm.Prompt {
	var parts []string
	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleUser:
			parts = append(parts, msg.Content)
		case RoleAssistant:
			if msg.Content != "" {
				parts = append(parts, "[Assistant]: "+msg.Content)
			}
		case RoleSystem:
			// System content travels via WithSystemPrompt below.
		}
	}

	promptText := strings.Join(parts, "\n")
	if promptText == "" {
		promptText = "Continue."
	}

	var promptOpts []gollm.PromptOption
	system := req.SystemPrompt
	for _, msg := range req.Messages {
		if msg.Role == RoleSystem {
			system += "\n" + msg.Content
		}
	}
	system = strings.TrimSpace(system)
	if system != "" {
		promptOpts = append(promptOpts, gollm.WithSystemPrompt(system, gollm.CacheTypeEphemeral))
	}
	if req.MaxTokens > 0 {
		promptOpts = append(promptOpts, gollm.WithMaxLength(req.MaxTokens))
	}

	return gollm.NewPrompt(promptText, promptOpts...)
}

// applyRequestOptions applies request-level parameters to the gollm LLM.
func (b *GollmBackend) applyRequestOptions(req CompletionRequest) {
	b.llm.SetOption("temperature", req.Temperature)
	if req.MaxTokens > 0 {
		b.llm.SetOption("max_tokens", req.MaxTokens)
	}
}

// translateError classifies a gollm error into the backend taxonomy by
// message content, since gollm does not expose structured error codes.
func (b *GollmBackend) translateError(err error) error {
	msg := err.Error()
	lower := strings.ToLower(msg)
	base := BackendError{Message: msg, Provider: b.provider, Cause: err}

	switch {
	case strings.Contains(lower, "401") || strings.Contains(lower, "unauthorized") || strings.Contains(lower, "invalid api key"):
		return &AuthenticationError{BackendError: base}
	case strings.Contains(lower, "429") || strings.Contains(lower, "rate limit"):
		base.Retryable = true
		return &RateLimitError{BackendError: base}
	case strings.Contains(lower, "context length") || strings.Contains(lower, "too many tokens"):
		return &ContextLengthError{BackendError: base}
	case strings.Contains(lower, "500") || strings.Contains(lower, "502") || strings.Contains(lower, "503") || strings.Contains(lower, "internal server"):
		base.Retryable = true
		return &ServerError{BackendError: base}
	default:
		base.Retryable = true
		return &base
	}
}

// estimateUsage approximates token counts from text length; gollm does not
// surface provider usage metadata.
func estimateUsage(req CompletionRequest, output string) Usage {
	input := len(req.SystemPrompt) / 4
	for _, msg := range req.Messages {
		input += len(msg.Content) / 4
	}
	out := len(output) / 4
	return Usage{
		InputTokens:  input,
		OutputTokens: out,
		TotalTokens:  input + out,
	}
}
