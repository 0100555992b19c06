// Package deepseek is the translation provider client. It fronts the
// DeepSeek chat-completions endpoint with a cache-first lookup, a shared
// sliding-window rate limiter, bounded retries with exponential backoff and
// an append-only audit trail of every attempt.
package deepseek

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"translator/internal/domain"
	"translator/internal/memory"
)

const (
	defaultEndpoint    = "https://api.deepseek.com/v1/chat/completions"
	defaultModel       = "deepseek-chat"
	defaultTimeout     = 30 * time.Second
	defaultMaxAttempts = 3
	defaultRateLimit   = 60
	defaultTemperature = 0.1
	defaultMaxTokens   = 4000

	// Provider list prices per thousand tokens. Cost is only computed from
	// provider-reported usage, never estimated.
	inputPricePerK  = 0.00014
	outputPricePerK = 0.00028

	backoffBase = 2 * time.Second
	backoffCap  = 10 * time.Second
)

// APIError is a transient provider failure: a non-2xx response or a network
// error. It unwraps to domain.ErrProviderFailure.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("deepseek: api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("deepseek: %s", e.Message)
}

func (e *APIError) Unwrap() error { return domain.ErrProviderFailure }

// TranslationCache is the two-tier memory consulted before any remote call.
type TranslationCache interface {
	Lookup(ctx context.Context, text, sourceLang, targetLang string) (*memory.CachedResult, bool)
	Store(ctx context.Context, text, sourceLang, targetLang, translatedText string, confidence float64)
}

// TokenUsage mirrors the provider's reported usage block.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Result is the outcome of one Translate call.
type Result struct {
	TranslatedText string
	Confidence     float64
	FromCache      bool
	Usage          *TokenUsage
	Cost           *float64
	ResponseTime   time.Duration
}

// Options configures the provider client.
type Options struct {
	APIKey            string
	Endpoint          string
	Model             string
	Temperature       float64
	MaxTokens         int
	MaxAttempts       int
	RequestsPerMinute int
	HTTPClient        *http.Client
	Cache             TranslationCache
	Logs              domain.APILogRepository
	Logger            zerolog.Logger
}

// Client performs translation calls. All callers share its rate-limit
// window, so one Client per provider quota.
type Client struct {
	apiKey      string
	endpoint    string
	model       string
	temperature float64
	maxTokens   int
	maxAttempts int
	httpClient  *http.Client
	cache       TranslationCache
	logs        domain.APILogRepository
	limiter     *slidingWindow
	logger      zerolog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// NewClient constructs a client with sane defaults. A missing API key is not
// fatal here: Translate surfaces it as a validation error per call.
func NewClient(opts Options) *Client {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	rateLimit := opts.RequestsPerMinute
	if rateLimit <= 0 {
		rateLimit = defaultRateLimit
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	c := &Client{
		apiKey:      strings.TrimSpace(opts.APIKey),
		endpoint:    endpoint,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		maxAttempts: maxAttempts,
		httpClient:  httpClient,
		cache:       opts.Cache,
		logs:        opts.Logs,
		limiter:     newSlidingWindow(rateLimit),
		logger:      opts.Logger,
		now:         time.Now,
		sleep:       sleepContext,
	}
	if c.apiKey == "" {
		c.logger.Warn().Msg("deepseek: no api key configured")
	}
	return c
}

// Translate returns the translation of text from sourceLang to targetLang.
// Validation failures (empty text, missing credentials) surface immediately;
// transient provider failures are retried with exponential backoff up to the
// attempt ceiling, then returned to the caller.
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang string) (*Result, error) {
	start := c.now()

	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("deepseek: empty text: %w", domain.ErrValidation)
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("deepseek: %w", domain.ErrMissingAPIKey)
	}

	if c.cache != nil {
		if cached, ok := c.cache.Lookup(ctx, text, sourceLang, targetLang); ok {
			c.logger.Debug().Str("tier", cached.Tier).Str("pair", sourceLang+"->"+targetLang).Msg("deepseek: cache hit")
			return &Result{
				TranslatedText: cached.TranslatedText,
				Confidence:     cached.Confidence,
				FromCache:      true,
				ResponseTime:   c.now().Sub(start),
			}, nil
		}
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx, retryBackoff(attempt)); err != nil {
				return nil, err
			}
		}
		result, err := c.callOnce(ctx, text, sourceLang, targetLang)
		if err == nil {
			result.ResponseTime = c.now().Sub(start)
			return result, nil
		}
		lastErr = err
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			return nil, err
		}
		c.logger.Warn().Err(err).Int("attempt", attempt).Msg("deepseek: attempt failed")
	}
	return nil, lastErr
}

// retryBackoff returns the pause before the given attempt: 2s doubled per
// retry, capped at 10s.
func retryBackoff(attempt int) time.Duration {
	d := backoffBase << (attempt - 2)
	if d > backoffCap {
		d = backoffCap
	}
	return d
}

func (c *Client) callOnce(ctx context.Context, text, sourceLang, targetLang string) (*Result, error) {
	// Cache hits never reach this point, so every slot maps to a real call.
	if err := c.limiter.Acquire(ctx); err != nil {
		return nil, err
	}

	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(text, sourceLang, targetLang)},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Stream:      false,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("deepseek: encode request: %w", err)
	}

	attemptStart := c.now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("deepseek: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		latency := c.now().Sub(attemptStart)
		c.logAttempt(ctx, text, sourceLang, targetLang, false, latency, nil, err.Error(), nil)
		return nil, &APIError{Message: fmt.Sprintf("network error: %v", err)}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	latency := c.now().Sub(attemptStart)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := readSnippet(resp.Body)
		status := resp.StatusCode
		c.logAttempt(ctx, text, sourceLang, targetLang, false, latency, &status, snippet, nil)
		return nil, &APIError{StatusCode: status, Message: snippet}
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		status := resp.StatusCode
		c.logAttempt(ctx, text, sourceLang, targetLang, false, latency, &status, "decode response: "+err.Error(), nil)
		return nil, &APIError{StatusCode: status, Message: "malformed response body"}
	}
	if len(out.Choices) == 0 {
		status := resp.StatusCode
		c.logAttempt(ctx, text, sourceLang, targetLang, false, latency, &status, "no choices in response", nil)
		return nil, &APIError{StatusCode: status, Message: "no choices in response"}
	}

	translated := cleanTranslation(out.Choices[0].Message.Content, text)
	confidence := ConfidenceScore(text, translated)

	var usage *TokenUsage
	var cost *float64
	if out.Usage.PromptTokens > 0 || out.Usage.CompletionTokens > 0 || out.Usage.TotalTokens > 0 {
		usage = &TokenUsage{
			PromptTokens:     out.Usage.PromptTokens,
			CompletionTokens: out.Usage.CompletionTokens,
			TotalTokens:      out.Usage.TotalTokens,
		}
		computed := callCost(usage.PromptTokens, usage.CompletionTokens)
		cost = &computed
	}

	if c.cache != nil {
		c.cache.Store(ctx, text, sourceLang, targetLang, translated, confidence)
	}

	status := resp.StatusCode
	c.logAttempt(ctx, text, sourceLang, targetLang, true, latency, &status, "", cost)
	c.logger.Info().
		Str("pair", sourceLang+"->"+targetLang).
		Dur("latency", latency).
		Msg("deepseek: translated")

	return &Result{
		TranslatedText: translated,
		Confidence:     confidence,
		Usage:          usage,
		Cost:           cost,
	}, nil
}

// callCost prices provider-reported token usage.
func callCost(inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)/1000)*inputPricePerK + (float64(outputTokens)/1000)*outputPricePerK
}

// logAttempt appends an audit record. Audit failures are logged, never
// propagated: the log must not block translation. Error messages are
// truncated and carry no credentials.
func (c *Client) logAttempt(ctx context.Context, text, sourceLang, targetLang string, success bool, latency time.Duration, statusCode *int, errMsg string, cost *float64) {
	if c.logs == nil {
		return
	}
	if len(errMsg) > 500 {
		errMsg = errMsg[:500]
	}
	entry := &domain.APILogEntry{
		Endpoint:       "translate",
		SourceLanguage: sourceLang,
		TargetLanguage: targetLang,
		CharacterCount: utf8.RuneCountInString(text),
		Success:        success,
		ResponseTime:   latency.Seconds(),
		StatusCode:     statusCode,
		ErrorMessage:   errMsg,
		Cost:           cost,
	}
	if err := c.logs.Insert(ctx, entry); err != nil {
		c.logger.Error().Err(err).Msg("deepseek: audit log write failed")
	}
}

func readSnippet(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil {
		return "unreadable response body"
	}
	return strings.TrimSpace(string(data))
}

// echoPrefixes are literal markers providers sometimes prepend despite the
// prompt asking for the translation only.
var echoPrefixes = []string{
	"translation:",
	"traduction :",
	"traduction:",
	"traducción:",
	"übersetzung:",
	"traduzione:",
}

// cleanTranslation strips provider echo artifacts: code fences, leading
// "Translation:"-style markers and bare language-name prefix lines. An
// answer that cleans down to nothing falls back to the original text.
func cleanTranslation(raw, original string) string {
	text := trimCodeFence(strings.TrimSpace(raw))

	lines := strings.Split(text, "\n")
	for len(lines) > 0 {
		first := strings.TrimSpace(lines[0])
		if first == "" || isEchoLine(first) {
			lines = lines[1:]
			continue
		}
		lines[0] = stripEchoPrefix(first)
		break
	}

	cleaned := strings.TrimSpace(strings.Join(lines, "\n"))
	if cleaned == "" {
		return original
	}
	return cleaned
}

// isEchoLine matches lines that are only a marker, like "Translation:" or
// "French:".
func isEchoLine(line string) bool {
	lower := strings.ToLower(line)
	for _, p := range echoPrefixes {
		if lower == p {
			return true
		}
	}
	if !strings.HasSuffix(line, ":") {
		return false
	}
	name := strings.TrimSuffix(line, ":")
	for _, code := range supportedPromptLanguages {
		if strings.EqualFold(name, languageName(code)) {
			return true
		}
	}
	return false
}

func stripEchoPrefix(line string) string {
	lower := strings.ToLower(line)
	for _, p := range echoPrefixes {
		if strings.HasPrefix(lower, p) {
			return strings.TrimSpace(line[len(p):])
		}
	}
	return line
}

var supportedPromptLanguages = []string{"fr", "en", "ar", "es", "de", "it", "pt", "ru", "zh", "tr", "nl"}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```text")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
