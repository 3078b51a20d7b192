package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/khoahotran/skillpath/internal/application/service"
	"github.com/khoahotran/skillpath/internal/domain/assessment"
	"github.com/khoahotran/skillpath/internal/domain/profile"
	"github.com/khoahotran/skillpath/pkg/logger"
	"github.com/khoahotran/skillpath/pkg/metrics"
	"go.uber.org/zap"
)

const analysisSystemPrompt = `You are an expert career analyst specializing in the Malaysian job market. Analyze the user's profile, including their self-reported skills and assessment answers.

Return a JSON object with current_skills, skill_gaps, recommendations, study_plan, recommended_courses, salary_projection and persona_profile_data.

Rules:
1. Salary: use the profile currency. Cite a reputable source (JobStreet, Hays, Michael Page) in "reference" and explain the cause of the change in "reason".
2. Courses: give real URLs when known, otherwise leave "url" empty.
3. Use "current_responsibilities" to tailor advice.
4. Set "relevant": false for declared skills that do not help the job title.
5. Keep insights specific to the user's country and city.
6. Use the user's name and job title in the summary and recommendations.`

var analysisSchema = &service.Schema{
	Name:        "skill-analysis",
	Description: "Skill gap analysis, study plan, salary projection and persona",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"current_skills": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name":     map[string]any{"type": "string"},
						"level":    map[string]any{"type": "string", "enum": []string{"Beginner", "Intermediate", "Advanced", "Expert"}},
						"relevant": map[string]any{"type": "boolean"},
					},
					"required": []string{"name", "level", "relevant"},
				},
			},
			"skill_gaps": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name":     map[string]any{"type": "string"},
						"priority": map[string]any{"type": "string", "enum": []string{"Low", "Medium", "High"}},
						"impact":   map[string]any{"type": "string"},
					},
					"required": []string{"name", "priority", "impact"},
				},
			},
			"recommendations": map[string]any{"type": "string"},
			"study_plan": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"phase": map[string]any{"type": "string"},
						"goal":  map[string]any{"type": "string"},
						"steps": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					},
					"required": []string{"phase", "goal", "steps"},
				},
			},
			"recommended_courses": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title":    map[string]any{"type": "string"},
						"platform": map[string]any{"type": "string"},
						"rating":   map[string]any{"type": "number"},
						"duration": map[string]any{"type": "string"},
						"type":     map[string]any{"type": "string"},
						"url":      map[string]any{"type": "string"},
					},
					"required": []string{"title", "platform"},
				},
			},
			"salary_projection": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"current":   map[string]any{"type": "number"},
					"projected": map[string]any{"type": "number"},
					"reason":    map[string]any{"type": "string"},
					"reference": map[string]any{"type": "string"},
				},
				"required": []string{"current", "projected", "reason"},
			},
			"persona_profile_data": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":   map[string]any{"type": "string"},
					"traits":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"summary": map[string]any{"type": "string"},
				},
				"required": []string{"title", "traits", "summary"},
			},
		},
		"required": []string{
			"current_skills", "skill_gaps", "recommendations", "study_plan",
			"recommended_courses", "salary_projection", "persona_profile_data",
		},
	},
}

type AnalyzeSkillsUseCase struct {
	llm    service.LLMService
	logger logger.Logger
}

func NewAnalyzeSkillsUseCase(llm service.LLMService, log logger.Logger) *AnalyzeSkillsUseCase {
	return &AnalyzeSkillsUseCase{llm: llm, logger: log}
}

type AnalyzeSkillsInput struct {
	Profile profile.Profile
	Answers []assessment.Answer
}

type AnalyzeSkillsOutput struct {
	Analysis profile.Analysis
	Fallback bool
}

// Execute always produces a complete bundle. Provider failures of any kind
// are logged and replaced by the synthetic bundle.
func (uc *AnalyzeSkillsUseCase) Execute(ctx context.Context, input AnalyzeSkillsInput) (*AnalyzeSkillsOutput, error) {
	if uc.llm == nil {
		metrics.Fallback(metrics.ComponentAnalysis)
		uc.logger.Debug("No LLM configured, using synthetic analysis")
		return &AnalyzeSkillsOutput{Analysis: SyntheticAnalysis(input.Profile), Fallback: true}, nil
	}

	a, err := uc.analyze(ctx, input)
	if err != nil {
		metrics.Fallback(metrics.ComponentAnalysis)
		uc.logger.Warn("Skill analysis failed, using synthetic analysis",
			zap.Error(err),
			zap.String("job_title", input.Profile.JobTitle),
		)
		return &AnalyzeSkillsOutput{Analysis: SyntheticAnalysis(input.Profile), Fallback: true}, nil
	}
	return &AnalyzeSkillsOutput{Analysis: a}, nil
}

func (uc *AnalyzeSkillsUseCase) analyze(ctx context.Context, input AnalyzeSkillsInput) (profile.Analysis, error) {
	answers := input.Answers
	if answers == nil {
		answers = []assessment.Answer{}
	}
	prompt, err := json.Marshal(map[string]any{
		"profile":   input.Profile.Background(),
		"questions": input.Profile.AssessmentQuestions,
		"answers":   answers,
	})
	if err != nil {
		return profile.Analysis{}, fmt.Errorf("marshal prompt: %w", err)
	}

	raw, err := uc.llm.GenerateJSON(ctx, service.LLMRequest{
		System:      analysisSystemPrompt,
		Prompt:      string(prompt),
		Schema:      analysisSchema,
		Temperature: 0.4,
	})
	if err != nil {
		return profile.Analysis{}, err
	}

	var a profile.Analysis
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return profile.Analysis{}, fmt.Errorf("decode analysis: %w", err)
	}
	if a.SalaryProjection == nil || a.PersonaProfileData == nil {
		return profile.Analysis{}, fmt.Errorf("analysis is missing salary or persona")
	}
	return a.Normalize(), nil
}
