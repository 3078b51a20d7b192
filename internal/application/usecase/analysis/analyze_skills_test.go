package analysis

import (
	"encoding/json"
	"errors"
	"testing"

	llmadapter "github.com/khoahotran/skillpath/adapters/llm"
	"github.com/khoahotran/skillpath/internal/domain/assessment"
	"github.com/khoahotran/skillpath/internal/domain/profile"
	"github.com/khoahotran/skillpath/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validAnalysis = `{
	"current_skills": [{"name":"SQL","level":"Advanced","relevant":true},{"name":"Knitting","level":"Expert","relevant":false}],
	"skill_gaps": [{"name":"dbt","priority":"High","impact":"+10% salary"}],
	"recommendations": "Own the data platform.",
	"study_plan": [{"phase":"Month 1","goal":"Modeling","steps":["Build a dbt project"]}],
	"recommended_courses": [
		{"title":"Analytics Engineering","platform":"Coursera","rating":4.6,"duration":"6 weeks","type":"Course","url":""},
		{"title":"dbt Fundamentals","platform":"dbt Learn","rating":4.9,"duration":"5 hours","type":"Course","url":"https://learn.getdbt.com/courses/dbt-fundamentals"}
	],
	"salary_projection": {"current":7000,"projected":8400,"reason":"Modeling skills are scarce.","reference":"Hays Asia 2024"},
	"persona_profile_data": {"title":"The Data Craftsperson","traits":["Precise"],"summary":"Aisha turns data into decisions."}
}`

func analyst() profile.Profile {
	p := profile.Defaults()
	p.FullName = "Aisha"
	p.JobTitle = "Data Analyst"
	p.CurrentSalary = 7000
	p.CurrentSkills = profile.ParseSkillList("SQL, Knitting")
	return p
}

func TestAnalyzeSkills_UsesProviderResult(t *testing.T) {
	mock := llmadapter.NewMockLLM(llmadapter.MockResponse{Content: json.RawMessage(validAnalysis)})
	uc := NewAnalyzeSkillsUseCase(mock, logger.NewNop())

	out, err := uc.Execute(t.Context(), AnalyzeSkillsInput{
		Profile: analyst(),
		Answers: []assessment.Answer{{QuestionID: 1, Value: assessment.RatingAnswer(4)}},
	})
	require.NoError(t, err)
	assert.False(t, out.Fallback)

	a := out.Analysis
	require.Len(t, a.CurrentSkills, 2)
	assert.False(t, a.CurrentSkills[1].Relevant)
	assert.Equal(t, "https://www.coursera.org/search?query=Analytics%20Engineering", a.RecommendedCourses[0].URL)
	assert.Equal(t, "https://learn.getdbt.com/courses/dbt-fundamentals", a.RecommendedCourses[1].URL)
	assert.Equal(t, 8400.0, a.SalaryProjection.Projected)

	assert.Contains(t, mock.Calls[0].Prompt, `"answers":[{"questionId":1,"answer":4}]`)
}

func TestAnalyzeSkills_FallsBackOnBadOutput(t *testing.T) {
	tests := []struct {
		name string
		resp llmadapter.MockResponse
	}{
		{"network", llmadapter.MockResponse{Err: errors.New("timeout")}},
		{"not json", llmadapter.MockResponse{Content: json.RawMessage(`Sure! Here is your analysis`)}},
		{"missing keys", llmadapter.MockResponse{Content: json.RawMessage(`{"skill_gaps":[]}`)}},
		{"unknown field", llmadapter.MockResponse{Content: json.RawMessage(validAnalysis[:len(validAnalysis)-1] + `,"bonus":1}`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := NewAnalyzeSkillsUseCase(llmadapter.NewMockLLM(tt.resp), logger.NewNop())

			out, err := uc.Execute(t.Context(), AnalyzeSkillsInput{Profile: analyst()})
			require.NoError(t, err)
			assert.True(t, out.Fallback)
			assert.Equal(t, SyntheticAnalysis(analyst()), out.Analysis)
		})
	}
}

func TestSyntheticAnalysis_Defaults(t *testing.T) {
	p := profile.Defaults()
	p.JobTitle = "Data Analyst"

	a := SyntheticAnalysis(p)
	require.NotNil(t, a.SalaryProjection)
	assert.Equal(t, 5000.0, a.SalaryProjection.Current)
	assert.Equal(t, 6250.0, a.SalaryProjection.Projected)
	assert.Equal(t, "JobStreet Malaysia Salary Report 2024", a.SalaryProjection.Reference)

	require.Len(t, a.SkillGaps, 3)
	assert.Equal(t, "Advanced Data Analyst Patterns", a.SkillGaps[0].Name)
	assert.Equal(t, profile.PriorityHigh, a.SkillGaps[0].Priority)
	assert.Equal(t, []profile.Skill{profile.RatedSkill("Core Skills", profile.LevelIntermediate, true)}, []profile.Skill(a.CurrentSkills))

	require.Len(t, a.RecommendedCourses, 3)
	assert.Equal(t, "https://www.udemy.com/courses/search/?q=Advanced%20Data%20Analyst%20Masterclass", a.RecommendedCourses[0].URL)
	assert.Equal(t, "The Strategic Data Analyst", a.PersonaProfileData.Title)
	assert.Contains(t, a.Recommendations, "deepening your expertise in Core Skills")
	assert.Len(t, a.StudyPlan, 3)
}

func TestSyntheticAnalysis_NoTitle(t *testing.T) {
	p := profile.Defaults()
	p.CurrentSalary = 8000
	p.CurrentSkills = profile.ParseSkillList("Go")

	a := SyntheticAnalysis(p)
	assert.Equal(t, "The Strategic Professional", a.PersonaProfileData.Title)
	assert.Equal(t, 10000.0, a.SalaryProjection.Projected)
	assert.Equal(t, "Master advanced patterns in Go", a.StudyPlan[0].Steps[0])
}
