// internal/llm/providers/anthropic/anthropic.go
package anthropic

import (
	"context"
	"encoding/json"
	"errors"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/Corphon/LitLensMCP/internal/llm"
)

func init() {
	llm.Register("anthropic", func() llm.Provider {
		return &Provider{
			recommendedModels: []string{
				"claude-sonnet-4-5-20250929",
				"claude-3-5-haiku-20241022",
			},
		}
	})
}

// Provider talks to the Anthropic Messages API through the official SDK.
type Provider struct {
	client            sdk.Client
	defaultModel      string
	recommendedModels []string
	availableModels   []string
}

func (p *Provider) Initialize(config map[string]string) error {
	apiKey, exists := config["api_key"]
	if !exists || apiKey == "" {
		return errors.New("anthropic api key not provided")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL, exists := config["base_url"]; exists && baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	p.client = sdk.NewClient(opts...)

	if model, exists := config["default_model"]; exists && model != "" {
		p.defaultModel = model
	} else {
		p.defaultModel = "claude-sonnet-4-5-20250929"
	}

	if customModels, exists := config["custom_models"]; exists && customModels != "" {
		var models []string
		if err := json.Unmarshal([]byte(customModels), &models); err == nil && len(models) > 0 {
			p.availableModels = models
		}
	}

	return nil
}

func (p *Provider) GetName() string {
	return "Anthropic Claude"
}

func (p *Provider) GetSupportedModels() []string {
	if len(p.availableModels) > 0 {
		return p.availableModels
	}
	return p.recommendedModels
}

// FetchAvailableModels refreshes the model list from the account.
func (p *Provider) FetchAvailableModels(ctx context.Context) error {
	page, err := p.client.Models.List(ctx, sdk.ModelListParams{})
	if err != nil {
		return err
	}

	models := make([]string, 0, len(page.Data))
	for _, model := range page.Data {
		models = append(models, string(model.ID))
	}
	if len(models) > 0 {
		p.availableModels = models
	}
	return nil
}

func (p *Provider) SetCustomModels(models []string) {
	if len(models) > 0 {
		p.availableModels = models
	}
}

func (p *Provider) buildParams(req llm.CompletionRequest) sdk.MessageNewParams {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt)),
		},
	}

	if req.SystemPrompt != "" {
		params.System = []sdk.TextBlockParam{{Text: req.SystemPrompt}}
	}
	if req.Temperature > 0 {
		params.Temperature = sdk.Float(float64(req.Temperature))
	}
	if req.TopP > 0 {
		params.TopP = sdk.Float(float64(req.TopP))
	}
	if len(req.StopWords) > 0 {
		params.StopSequences = req.StopWords
	}

	return params
}

func (p *Provider) CompleteText(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	message, err := p.client.Messages.New(ctx, p.buildParams(req))
	if err != nil {
		return nil, err
	}

	var textContent string
	for _, block := range message.Content {
		if block.Type == "text" {
			textContent = block.Text
			break
		}
	}
	if textContent == "" {
		return nil, errors.New("anthropic returned no text content")
	}

	return &llm.CompletionResponse{
		Text:         textContent,
		FinishReason: string(message.StopReason),
		TokensUsed:   int(message.Usage.InputTokens + message.Usage.OutputTokens),
		PromptTokens: int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
		ModelName:    model,
		ProviderName: p.GetName(),
	}, nil
}

func (p *Provider) StreamCompletion(ctx context.Context, req llm.CompletionRequest) (<-chan llm.StreamResponse, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	stream := p.client.Messages.NewStreaming(ctx, p.buildParams(req))
	respChan := make(chan llm.StreamResponse)

	go func() {
		defer stream.Close()
		defer close(respChan)

		accumulated := sdk.Message{}
		for stream.Next() {
			event := stream.Current()
			accumulated.Accumulate(event)

			switch eventVariant := event.AsAny().(type) {
			case sdk.ContentBlockDeltaEvent:
				if deltaVariant, ok := eventVariant.Delta.AsAny().(sdk.TextDelta); ok && deltaVariant.Text != "" {
					select {
					case respChan <- llm.StreamResponse{Text: deltaVariant.Text, ModelName: model}:
					case <-ctx.Done():
						return
					}
				}
			}
		}

		finishReason := string(accumulated.StopReason)
		if stream.Err() != nil && finishReason == "" {
			finishReason = "error"
		}
		respChan <- llm.StreamResponse{
			FinishReason: finishReason,
			ModelName:    model,
			Done:         true,
		}
	}()

	return respChan, nil
}
