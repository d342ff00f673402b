// Package gemini provides a similarity oracle backed by Gemini text embeddings.
package gemini

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/hire-ranker/internal/logger"
	"github.com/spigell/hire-ranker/internal/utils"
)

const (
	defaultModel        = "text-embedding-004"
	defaultMaxLogLength = 200
	retryBaseDelay      = 500 * time.Millisecond

	// Quota errors asking to wait longer than this are returned immediately.
	maxRetryDelay = 10 * time.Second
)

var (
	wait            = utils.WaitFor
	retryAfterRegex = regexp.MustCompile(`(?i)retry (?:after|in) (\d+(?:\.\d+)?) ?s`)
)

type embedService interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Embedder turns texts into embedding vectors and keeps them for the process lifetime.
type Embedder struct {
	models     embedService
	model      string
	maxRetries int
	maxLogLen  int
	logger     *zap.Logger

	cacheMu sync.RWMutex
	cache   map[string][]float32
}

// NewEmbedder creates an Embedder configured for the Gemini API backend.
func NewEmbedder(ctx context.Context, apiKey, model string, maxRetries, maxLogLength int, log *zap.Logger) (*Embedder, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newEmbedder(client.Models, model, maxRetries, maxLogLength, log), nil
}

func newEmbedder(models embedService, model string, maxRetries, maxLogLength int, log *zap.Logger) *Embedder {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if maxRetries <= 0 {
		maxRetries = 1
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Embedder{
		models:     models,
		model:      model,
		maxRetries: maxRetries,
		maxLogLen:  maxLogLength,
		logger:     logger.WithFields(log, zap.String("ai_model", model)),
		cache:      make(map[string][]float32),
	}
}

// Embed returns the embedding of the text, calling the API at most once per distinct text
// unless the call fails.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e == nil || e.models == nil {
		return nil, errors.New("gemini embedder is not initialized")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("text must not be empty")
	}

	key := cacheKey(text)

	e.cacheMu.RLock()
	if cached, ok := e.cache[key]; ok {
		e.cacheMu.RUnlock()
		return cached, nil
	}
	e.cacheMu.RUnlock()

	values, err := e.embedWithRetry(ctx, text)
	if err != nil {
		return nil, err
	}

	e.cacheMu.Lock()
	e.cache[key] = values
	e.cacheMu.Unlock()

	return values, nil
}

func (e *Embedder) embedWithRetry(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	for attempt := 0; attempt < e.maxRetries; attempt++ {
		if attempt > 0 {
			delay := utils.Backoff(retryBaseDelay, attempt-1)
			e.logger.Debug("retrying gemini embed request",
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			if err := wait(ctx, delay); err != nil {
				return nil, err
			}
		}

		e.logger.Debug("gemini embed request",
			zap.Int("text_length", utf8.RuneCountInString(text)),
			zap.String("text_preview", utils.TruncateForLog(text, e.maxLogLen)),
		)

		resp, err := e.models.EmbedContent(ctx, e.model, genai.Text(text), nil)
		if err == nil {
			return firstEmbedding(resp)
		}

		lastErr = fmt.Errorf("embed content: %w", err)
		if !isRetryable(err) {
			return nil, lastErr
		}
	}

	return nil, lastErr
}

// Model returns the embedding model name.
func (e *Embedder) Model() string {
	if e == nil {
		return ""
	}
	return e.model
}

func firstEmbedding(resp *genai.EmbedContentResponse) ([]float32, error) {
	if resp == nil {
		return nil, errors.New("gemini api returned empty response")
	}
	for _, embedding := range resp.Embeddings {
		if embedding != nil && len(embedding.Values) > 0 {
			return embedding.Values, nil
		}
	}
	return nil, errors.New("gemini api returned no embedding values")
}

func isRetryable(err error) bool {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		var apiErrPtr *genai.APIError
		if !errors.As(err, &apiErrPtr) || apiErrPtr == nil {
			return false
		}
		apiErr = *apiErrPtr
	}

	switch apiErr.Code {
	case http.StatusTooManyRequests:
		return retryDelay(apiErr.Message) <= maxRetryDelay
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// retryDelay extracts the server-suggested delay from an error message; zero when absent.
func retryDelay(message string) time.Duration {
	match := retryAfterRegex.FindStringSubmatch(message)
	if len(match) != 2 {
		return 0
	}
	seconds, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%x", sum[:])
}
