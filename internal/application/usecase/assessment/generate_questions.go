package assessment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/khoahotran/skillpath/internal/application/service"
	"github.com/khoahotran/skillpath/internal/domain/assessment"
	"github.com/khoahotran/skillpath/internal/domain/profile"
	"github.com/khoahotran/skillpath/pkg/logger"
	"github.com/khoahotran/skillpath/pkg/metrics"
	"go.uber.org/zap"
)

const questionsSystemPrompt = "You are an expert career coach. Based on the user's profile, generate 5-8 assessment " +
	"questions to evaluate their skills and find gaps. Use type \"rating\" for 1-5 self ratings, \"single\" or " +
	"\"multiple\" with 2 or more options for choices, and \"text\" for open answers. Question ids must be unique. " +
	"Return JSON: {\"questions\": [{\"id\": number, \"text\": string, \"type\": string, \"options\": [string]}]}"

var questionsSchema = &service.Schema{
	Name:        "assessment-questions",
	Description: "Skill assessment questions for a career profile",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":   map[string]any{"type": "integer"},
						"text": map[string]any{"type": "string", "minLength": 1},
						"type": map[string]any{
							"type": "string",
							"enum": []string{"rating", "single", "multiple", "text"},
						},
						"options": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
					},
					"required": []string{"id", "text", "type"},
				},
			},
		},
		"required": []string{"questions"},
	},
}

type GenerateQuestionsUseCase struct {
	llm    service.LLMService
	logger logger.Logger
}

// NewGenerateQuestionsUseCase accepts a nil llm, in which case every call
// returns the fallback set.
func NewGenerateQuestionsUseCase(llm service.LLMService, log logger.Logger) *GenerateQuestionsUseCase {
	return &GenerateQuestionsUseCase{llm: llm, logger: log}
}

type GenerateQuestionsInput struct {
	Profile profile.Profile
}

type GenerateQuestionsOutput struct {
	Questions []assessment.Question
	Fallback  bool
}

// Execute never fails because of the provider: any provider or validation
// error is logged and replaced by the fallback set.
func (uc *GenerateQuestionsUseCase) Execute(ctx context.Context, input GenerateQuestionsInput) (*GenerateQuestionsOutput, error) {
	p := input.Profile
	if uc.llm == nil || strings.TrimSpace(p.JobTitle) == "" {
		return uc.fallback(p, nil), nil
	}

	questions, err := uc.generate(ctx, p)
	if err != nil {
		return uc.fallback(p, err), nil
	}
	return &GenerateQuestionsOutput{Questions: questions}, nil
}

func (uc *GenerateQuestionsUseCase) generate(ctx context.Context, p profile.Profile) ([]assessment.Question, error) {
	prompt, err := json.Marshal(p.Background())
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}

	raw, err := uc.llm.GenerateJSON(ctx, service.LLMRequest{
		System:      questionsSystemPrompt,
		Prompt:      string(prompt),
		Schema:      questionsSchema,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Questions []assessment.Question `json:"questions"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}

	questions := payload.Questions
	for i := range questions {
		if !questions[i].Type.HasOptions() {
			questions[i].Options = nil
		}
	}
	if err := assessment.ValidateQuestions(questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (uc *GenerateQuestionsUseCase) fallback(p profile.Profile, cause error) *GenerateQuestionsOutput {
	metrics.Fallback(metrics.ComponentQuestions)
	if cause != nil {
		uc.logger.Warn("Question generation failed, using fallback set",
			zap.Error(cause),
			zap.String("job_title", p.JobTitle),
		)
	} else {
		uc.logger.Debug("Skipping question generation, using fallback set",
			zap.Bool("llm_configured", uc.llm != nil))
	}
	return &GenerateQuestionsOutput{
		Questions: assessment.FallbackQuestions(p.Title()),
		Fallback:  true,
	}
}
