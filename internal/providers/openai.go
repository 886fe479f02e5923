package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const (
	OpenAIName         = "openai"
	OpenAIDefaultModel = openai.ChatModelGPT4oMini

	OpenRouterName         = "openrouter"
	OpenRouterBaseURL      = "https://openrouter.ai/api/v1"
	OpenRouterDefaultModel = "openai/gpt-4o-mini"
	openRouterDefaultSite  = "http://localhost:3000"
	openRouterDefaultTitle = "Draftly"
)

// OpenAIConfig holds configuration for an OpenAI-compatible chat client.
type OpenAIConfig struct {
	Name         string // Client identifier (default "openai")
	APIKey       string
	BaseURL      string // Optional; OpenRouter or tests
	DefaultModel string
	Headers      map[string]string // Extra headers sent with every request
	RateLimit    int               // Requests per minute (0 = unlimited)
	MaxRetries   int               // SDK retry attempts (0 = default, <0 = none)
	Timeout      time.Duration     // HTTP timeout
	HTTPClient   *http.Client      // Optional (tests)
}

// OpenAIClient implements LLMClient using the official OpenAI SDK. It also
// serves OpenRouter, which exposes the same chat completions API.
type OpenAIClient struct {
	name         string
	apiKey       string
	baseURL      string
	defaultModel string
	rateLimit    int
	maxRetries   int
	limiter      *RateLimiter
	client       openai.Client
}

// NewOpenAIClient creates a new OpenAI chat client.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.Name == "" {
		cfg.Name = OpenAIName
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = OpenAIDefaultModel
	}
	switch {
	case cfg.MaxRetries < 0:
		cfg.MaxRetries = 0
	case cfg.MaxRetries == 0:
		cfg.MaxRetries = 2
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	for k, v := range cfg.Headers {
		opts = append(opts, option.WithHeader(k, v))
	}

	c := &OpenAIClient{
		name:         cfg.Name,
		apiKey:       cfg.APIKey,
		baseURL:      cfg.BaseURL,
		defaultModel: cfg.DefaultModel,
		rateLimit:    cfg.RateLimit,
		maxRetries:   cfg.MaxRetries,
		client:       openai.NewClient(opts...),
	}
	if cfg.RateLimit > 0 {
		c.limiter = NewRateLimiter(cfg.RateLimit)
	}
	return c
}

// OpenRouterConfig holds the OpenRouter specific settings.
type OpenRouterConfig struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	SiteURL      string // Sent as HTTP-Referer
	Title        string // Sent as X-Title
	RateLimit    int
	Timeout      time.Duration
	HTTPClient   *http.Client
}

// NewOpenRouterClient creates an OpenAIClient pointed at OpenRouter with its attribution headers.
func NewOpenRouterClient(cfg OpenRouterConfig) *OpenAIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = OpenRouterBaseURL
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = OpenRouterDefaultModel
	}
	if cfg.SiteURL == "" {
		cfg.SiteURL = openRouterDefaultSite
	}
	if cfg.Title == "" {
		cfg.Title = openRouterDefaultTitle
	}
	return NewOpenAIClient(OpenAIConfig{
		Name:         OpenRouterName,
		APIKey:       cfg.APIKey,
		BaseURL:      cfg.BaseURL,
		DefaultModel: cfg.DefaultModel,
		Headers: map[string]string{
			"HTTP-Referer": cfg.SiteURL,
			"X-Title":      cfg.Title,
		},
		RateLimit:  cfg.RateLimit,
		Timeout:    cfg.Timeout,
		HTTPClient: cfg.HTTPClient,
	})
}

// Name returns the client identifier.
func (c *OpenAIClient) Name() string {
	return c.name
}

// Model returns the configured default model.
func (c *OpenAIClient) Model() string {
	return c.defaultModel
}

// BaseURL returns the configured endpoint, empty for the SDK default.
func (c *OpenAIClient) BaseURL() string {
	return c.baseURL
}

// RequestsPerMinute returns the configured rate limit.
func (c *OpenAIClient) RequestsPerMinute() int {
	return c.rateLimit
}

// MaxRetries returns the SDK retry attempts.
func (c *OpenAIClient) MaxRetries() int {
	return c.maxRetries
}

// RateLimiterStatus reports the limiter state, or nil when unlimited.
func (c *OpenAIClient) RateLimiterStatus() *RateLimiterStatus {
	if c.limiter == nil {
		return nil
	}
	s := c.limiter.Status()
	return &s
}

// Chat sends a chat completion request.
func (c *OpenAIClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()

	result := &ChatResult{
		RequestID: req.RequestID,
		Provider:  c.name,
		Attempts:  1,
	}
	if result.RequestID == "" {
		result.RequestID = uuid.New().String()
	}

	fail := func(errType string, err error) (*ChatResult, error) {
		result.Success = false
		result.ErrorType = errType
		result.ErrorMessage = err.Error()
		result.TotalTime = time.Since(start)
		return result, err
	}

	if len(req.Messages) == 0 {
		return fail("invalid_request", fmt.Errorf("at least one message is required"))
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fail("context_cancelled", err)
		}
	}
	result.QueueTime = time.Since(start)

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	params := c.buildParams(req)
	execStart := time.Now()
	completion, err := c.client.Chat.Completions.New(ctx, params)
	result.ExecutionTime = time.Since(execStart)
	if err != nil {
		err = mapOpenAIError(c.name, err)
		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			result.RetryAfter = rlErr.RetryAfter
			if c.limiter != nil {
				c.limiter.Record429(rlErr.RetryAfter)
			}
			return fail("rate_limit", err)
		}
		return fail("http_error", err)
	}

	if len(completion.Choices) == 0 {
		return fail("empty_response", fmt.Errorf("%s returned no choices", c.name))
	}

	result.Success = true
	result.Content = completion.Choices[0].Message.Content
	result.ModelUsed = completion.Model
	result.PromptTokens = int(completion.Usage.PromptTokens)
	result.CompletionTokens = int(completion.Usage.CompletionTokens)
	result.TotalTokens = int(completion.Usage.TotalTokens)
	result.TotalTime = time.Since(start)

	if req.ResponseFormat != nil {
		if parsed, err := ParseStructuredJSON(result.Content); err == nil {
			result.ParsedJSON = parsed
		}
	}
	return result, nil
}

func (c *OpenAIClient) buildParams(req *ChatRequest) openai.ChatCompletionNewParams {
	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(m.Content))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       model,
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if rf := req.ResponseFormat; rf != nil && rf.Type == ResponseFormatJSONObject {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	return params
}

func mapOpenAIError(provider string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests {
			retryAfter := time.Duration(0)
			if apiErr.Response != nil {
				retryAfter = parseRetryAfter(apiErr.Response.Header.Get("Retry-After"))
			}
			return &RateLimitError{
				Message:    fmt.Sprintf("%s rate limited: %s", provider, apiErr.Message),
				RetryAfter: retryAfter,
				StatusCode: apiErr.StatusCode,
			}
		}
		if msg := strings.TrimSpace(apiErr.Message); msg != "" {
			return fmt.Errorf("%s error (status %d): %s", provider, apiErr.StatusCode, msg)
		}
		return fmt.Errorf("%s error (status %d)", provider, apiErr.StatusCode)
	}
	return err
}

var _ LLMClient = (*OpenAIClient)(nil)
