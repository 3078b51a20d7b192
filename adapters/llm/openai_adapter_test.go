package llm

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/khoahotran/skillpath/internal/application/service"
	"github.com/khoahotran/skillpath/internal/config"
	"github.com/khoahotran/skillpath/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAIAdapter(t *testing.T, handler http.HandlerFunc) service.LLMService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	var cfg config.Config
	cfg.LLM.OpenAI.APIKey = "test-key"
	cfg.LLM.OpenAI.BaseURL = server.URL + "/v1"
	cfg.LLM.OpenAI.Model = "gpt-4o-mini"

	a, err := NewOpenAIAdapter(cfg, logger.NewNop())
	require.NoError(t, err)
	return a
}

func chatCompletion(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	}
}

func TestOpenAIAdapter_ReturnsValidatedJSON(t *testing.T) {
	var gotFormat string
	a := newTestOpenAIAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if rf, ok := body["response_format"].(map[string]any); ok {
			gotFormat, _ = rf["type"].(string)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatCompletion("```json\n{\"name\":\"Alice\",\"age\":30}\n```"))
	})

	out, err := a.GenerateJSON(t.Context(), service.LLMRequest{Prompt: "who", Schema: testSchema()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Alice","age":30}`, string(out))
	assert.Equal(t, "json_schema", gotFormat)
}

func TestOpenAIAdapter_SchemaViolation(t *testing.T) {
	a := newTestOpenAIAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatCompletion(`{"name":"Alice"}`))
	})

	_, err := a.GenerateJSON(t.Context(), service.LLMRequest{Prompt: "who", Schema: testSchema()})
	var invErr *ErrInvalidResponse
	assert.ErrorAs(t, err, &invErr)
}

func TestOpenAIAdapter_ServerError(t *testing.T) {
	a := newTestOpenAIAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "boom", "type": "server_error"},
		})
	})

	_, err := a.GenerateJSON(t.Context(), service.LLMRequest{Prompt: "who"})
	var unavailable *ErrProviderUnavailable
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, http.StatusInternalServerError, unavailable.StatusCode)
}

func TestNewOpenAIAdapter_RequiresKey(t *testing.T) {
	_, err := NewOpenAIAdapter(config.Config{}, logger.NewNop())
	assert.ErrorIs(t, err, ErrNotConfigured)
}
