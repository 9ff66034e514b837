// internal/services/llm_service.go
package services

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Corphon/LitLensMCP/internal/config"
	"github.com/Corphon/LitLensMCP/internal/llm"
	"github.com/Corphon/LitLensMCP/internal/utils"
)

var ErrLLMNotReady = errors.New("llm service not ready")

var providerDefaultModels = map[string]string{
	"anthropic": "claude-sonnet-4-5-20250929",
	"openai":    "gpt-4o-mini",
}

const llmRequestTimeout = 60 * time.Second

// LLMService is the single gateway to LLM providers. Heuristic analysis
// never goes through here; only the optional AI-assisted answers do.
type LLMService struct {
	providerMutex      sync.RWMutex
	provider           llm.Provider
	providerName       string
	activeDefaultModel string
	isReady            bool
	readyState         string

	cache     *llmCache
	semaphore chan struct{}
}

type llmCache struct {
	mutex      sync.RWMutex
	entries    map[string]*llmCacheEntry
	expiration time.Duration
}

type llmCacheEntry struct {
	response  *llm.CompletionResponse
	createdAt time.Time
}

// NewLLMService creates the service from the current configuration. A
// missing or invalid API key yields a not-ready service, not an error.
func NewLLMService() (*LLMService, error) {
	service := createBaseLLMService()

	cfg := config.GetCurrentConfig()
	if cfg == nil {
		service.readyState = "Failed to retrieve configuration"
		return service, nil
	}

	if cfg.LLMProvider == "" || cfg.LLMConfig == nil || cfg.LLMConfig["api_key"] == "" {
		service.readyState = "API key not configured"
		return service, nil
	}

	provider, err := llm.GetProvider(cfg.LLMProvider, cfg.LLMConfig)
	if err != nil {
		service.readyState = fmt.Sprintf("Initialization failed: %v", err)
		return service, nil
	}

	service.provider = provider
	service.providerName = cfg.LLMProvider
	service.activeDefaultModel = extractDefaultModel(cfg.LLMProvider, cfg.LLMConfig)
	service.isReady = true
	service.readyState = "Ready"

	return service, nil
}

// NewEmptyLLMService creates a standby service with no provider.
func NewEmptyLLMService() *LLMService {
	service := createBaseLLMService()
	service.providerName = "empty"
	service.readyState = "Standby mode, configure an API key in settings"
	return service
}

func createBaseLLMService() *LLMService {
	return &LLMService{
		readyState: "Uninitialized",
		cache: &llmCache{
			entries:    make(map[string]*llmCacheEntry),
			expiration: 30 * time.Minute,
		},
		semaphore: make(chan struct{}, 3),
	}
}

func extractDefaultModel(providerName string, llmConfig map[string]string) string {
	if llmConfig != nil && llmConfig["default_model"] != "" {
		return llmConfig["default_model"]
	}
	return providerDefaultModels[providerName]
}

// IsReady reports whether a provider is configured and usable.
func (s *LLMService) IsReady() bool {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()
	return s.provider != nil && s.isReady
}

// GetReadyState returns a human-readable status line.
func (s *LLMService) GetReadyState() string {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()
	return s.readyState
}

// GetProviderStatus returns readiness along with the status line.
func (s *LLMService) GetProviderStatus() (bool, string) {
	if s == nil {
		return false, "LLM service not initialized"
	}
	if s.IsReady() {
		return true, "Ready"
	}
	return false, s.GetReadyState()
}

// GetProviderName returns the active provider name.
func (s *LLMService) GetProviderName() string {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()
	return s.providerName
}

// UpdateProvider switches the active provider. The response cache is
// dropped because answers are provider-specific.
func (s *LLMService) UpdateProvider(providerName string, providerConfig map[string]string) error {
	provider, err := llm.GetProvider(providerName, providerConfig)
	if err != nil {
		s.providerMutex.Lock()
		s.isReady = false
		s.readyState = fmt.Sprintf("Configuration failed: %v", err)
		s.providerMutex.Unlock()
		return err
	}

	s.providerMutex.Lock()
	defer s.providerMutex.Unlock()

	s.provider = provider
	s.providerName = providerName
	s.activeDefaultModel = extractDefaultModel(providerName, providerConfig)
	s.isReady = true
	s.readyState = "Ready"

	s.cache = &llmCache{
		entries:    make(map[string]*llmCacheEntry),
		expiration: 30 * time.Minute,
	}

	return nil
}

func (s *LLMService) cacheKey(prompt, systemPrompt, model string) string {
	s.providerMutex.RLock()
	providerName := s.providerName
	s.providerMutex.RUnlock()

	hashInput := fmt.Sprintf("%s:::%s:::%s:::%s", prompt, systemPrompt, model, providerName)
	return fmt.Sprintf("%x", md5.Sum([]byte(hashInput)))
}

func (c *llmCache) get(key string) (*llm.CompletionResponse, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.entries[key]
	if !exists || time.Since(entry.createdAt) > c.expiration {
		return nil, false
	}
	return entry.response, true
}

func (c *llmCache) put(key string, response *llm.CompletionResponse) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[key] = &llmCacheEntry{response: response, createdAt: time.Now()}
	if len(c.entries) > 1000 {
		c.evictOldest(100)
	}
}

// evictOldest removes count oldest entries. Caller holds the mutex.
func (c *llmCache) evictOldest(count int) {
	type keyAge struct {
		key string
		age time.Time
	}
	entries := make([]keyAge, 0, len(c.entries))
	for k, v := range c.entries {
		entries = append(entries, keyAge{k, v.createdAt})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].age.Before(entries[j].age)
	})
	for i := 0; i < count && i < len(entries); i++ {
		delete(c.entries, entries[i].key)
	}
}

// CompleteText sends a completion request through the active provider.
// Identical requests within the cache window are served from cache, and
// at most three requests run concurrently.
func (s *LLMService) CompleteText(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	s.providerMutex.RLock()
	provider := s.provider
	ready := s.isReady
	defaultModel := s.activeDefaultModel
	s.providerMutex.RUnlock()

	if provider == nil || !ready {
		return nil, ErrLLMNotReady
	}

	if req.Model == "" {
		req.Model = defaultModel
	}

	key := s.cacheKey(req.Prompt, req.SystemPrompt, req.Model)
	if cached, ok := s.cache.get(key); ok {
		return cached, nil
	}

	select {
	case s.semaphore <- struct{}{}:
		defer func() { <-s.semaphore }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	reqCtx, cancel := context.WithTimeout(ctx, llmRequestTimeout)
	defer cancel()

	response, err := provider.CompleteText(reqCtx, req)
	if err != nil {
		utils.GetLogger().Error("LLM completion failed", map[string]interface{}{
			"provider": s.GetProviderName(),
			"model":    req.Model,
			"error":    err.Error(),
		})
		return nil, err
	}

	s.cache.put(key, response)
	return response, nil
}

// AnswerQuestion asks the provider a question about a passage and
// returns a plain-text answer.
func (s *LLMService) AnswerQuestion(ctx context.Context, passage, question string) (string, error) {
	prompt := fmt.Sprintf("Passage:\n%s\n\nQuestion: %s", truncateForPrompt(passage, 8000), question)

	response, err := s.CompleteText(ctx, llm.CompletionRequest{
		Prompt: prompt,
		SystemPrompt: "You are a literature tutor. Answer the question about the passage " +
			"concisely, grounding every claim in the passage itself.",
		MaxTokens:   600,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Text), nil
}

func truncateForPrompt(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen] + "\n...(truncated)"
}
