package llm

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/khoahotran/skillpath/internal/application/service"
)

type MockResponse struct {
	Content json.RawMessage
	Err     error
}

// MockLLM replays canned responses in FIFO order and records requests.
// Responses go through the same schema validation as real providers.
type MockLLM struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []service.LLMRequest
}

func NewMockLLM(responses ...MockResponse) *MockLLM {
	return &MockLLM{responses: responses}
}

func (m *MockLLM) GenerateJSON(ctx context.Context, req service.LLMRequest) (json.RawMessage, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	if len(m.responses) == 0 {
		m.mu.Unlock()
		return nil, &ErrProviderUnavailable{}
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, &ErrProviderUnavailable{Err: err}
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	content := extractJSON(string(resp.Content))
	if err := validateResponse(req.Schema, content); err != nil {
		return nil, err
	}
	return content, nil
}

func (m *MockLLM) ModelID() string { return "mock" }

func (m *MockLLM) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
