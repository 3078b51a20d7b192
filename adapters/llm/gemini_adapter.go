package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/khoahotran/skillpath/internal/application/service"
	"github.com/khoahotran/skillpath/internal/config"
	"github.com/khoahotran/skillpath/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

type geminiAdapter struct {
	client *genai.Client
	model  string
	log    logger.Logger
}

func NewGeminiAdapter(ctx context.Context, cfg config.Config, log logger.Logger) (service.LLMService, error) {
	if cfg.LLM.Gemini.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini api_key is empty", ErrNotConfigured)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.LLM.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	log.Info("Gemini LLM adapter initialized", zap.String("model", cfg.LLM.Gemini.Model))
	return &geminiAdapter{client: client, model: cfg.LLM.Gemini.Model, log: log}, nil
}

func (a *geminiAdapter) ModelID() string { return a.model }

func (a *geminiAdapter) GenerateJSON(ctx context.Context, req service.LLMRequest) (json.RawMessage, error) {
	genCfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	if req.Temperature > 0 {
		temp := float32(req.Temperature)
		genCfg.Temperature = &temp
	}
	if req.System != "" {
		genCfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if req.Schema != nil {
		genCfg.ResponseSchema = buildGeminiSchema(req.Schema.Definition)
	}

	contents := []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: req.Prompt}}}}
	result, err := a.client.Models.GenerateContent(ctx, a.model, contents, genCfg)
	if err != nil {
		var apiErr *genai.APIError
		if errors.As(err, &apiErr) {
			return nil, &ErrProviderUnavailable{StatusCode: apiErr.Code, Err: err}
		}
		return nil, &ErrProviderUnavailable{Err: err}
	}

	content := extractJSON(result.Text())
	if err := validateResponse(req.Schema, content); err != nil {
		return nil, err
	}
	return content, nil
}

// buildGeminiSchema converts a JSON Schema map into the SDK's schema type.
func buildGeminiSchema(def map[string]any) *genai.Schema {
	schema := &genai.Schema{}
	if t, ok := def["type"].(string); ok {
		schema.Type = geminiType(t)
	}
	if desc, ok := def["description"].(string); ok {
		schema.Description = desc
	}
	if props, ok := def["properties"].(map[string]any); ok {
		schema.Properties = make(map[string]*genai.Schema, len(props))
		for k, v := range props {
			if propDef, ok := v.(map[string]any); ok {
				schema.Properties[k] = buildGeminiSchema(propDef)
			}
		}
	}
	schema.Required = stringList(def["required"])
	schema.Enum = stringList(def["enum"])
	if items, ok := def["items"].(map[string]any); ok {
		schema.Items = buildGeminiSchema(items)
	}
	return schema
}

func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func geminiType(t string) genai.Type {
	switch t {
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}
