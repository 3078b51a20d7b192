package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/khoahotran/skillpath/internal/application/service"
	"github.com/khoahotran/skillpath/internal/config"
	"github.com/khoahotran/skillpath/pkg/logger"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

type openAIAdapter struct {
	client *openai.Client
	model  string
	log    logger.Logger
}

// NewOpenAIAdapter talks to OpenAI or any compatible endpoint (Ollama,
// OpenRouter) selected by base_url.
func NewOpenAIAdapter(cfg config.Config, log logger.Logger) (service.LLMService, error) {
	if cfg.LLM.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("%w: openai api_key is empty", ErrNotConfigured)
	}

	clientCfg := openai.DefaultConfig(cfg.LLM.OpenAI.APIKey)
	if cfg.LLM.OpenAI.BaseURL != "" {
		clientCfg.BaseURL = cfg.LLM.OpenAI.BaseURL
	}

	log.Info("OpenAI LLM adapter initialized",
		zap.String("model", cfg.LLM.OpenAI.Model),
		zap.String("base_url", clientCfg.BaseURL),
	)
	return &openAIAdapter{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.LLM.OpenAI.Model,
		log:    log,
	}, nil
}

func (a *openAIAdapter) ModelID() string { return a.model }

func (a *openAIAdapter) GenerateJSON(ctx context.Context, req service.LLMRequest) (json.RawMessage, error) {
	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
	if req.Schema != nil {
		schemaBytes, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return nil, fmt.Errorf("marshal schema: %w", err)
		}
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        req.Schema.Name,
				Description: req.Schema.Description,
				Schema:      json.RawMessage(schemaBytes),
			},
		}
	}

	resp, err := a.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &ErrInvalidResponse{Err: errors.New("no choices in chat completion")}
	}

	content := extractJSON(resp.Choices[0].Message.Content)
	if err := validateResponse(req.Schema, content); err != nil {
		return nil, err
	}

	a.log.Debug("chat completion done",
		zap.String("model", resp.Model),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return content, nil
}

func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ErrProviderUnavailable{StatusCode: apiErr.HTTPStatusCode, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &ErrProviderUnavailable{StatusCode: reqErr.HTTPStatusCode, Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}
