package service

import (
	"context"
	"encoding/json"
)

// Schema is the JSON Schema a structured response must satisfy.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

type LLMRequest struct {
	System      string
	Prompt      string
	Schema      *Schema
	Temperature float64
}

// LLMService returns JSON already validated against req.Schema.
type LLMService interface {
	GenerateJSON(ctx context.Context, req LLMRequest) (json.RawMessage, error)
	ModelID() string
}
