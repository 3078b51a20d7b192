package profile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	p := Defaults()
	assert.Equal(t, 25, p.Age)
	assert.Equal(t, "Small", p.CompanySize)
	assert.Equal(t, "MYR", p.Currency)
	assert.Equal(t, "Malaysia", p.Country)
	assert.Equal(t, "Kuala Lumpur", p.CityState)
	assert.Equal(t, StepBackground, p.CurrentStep)
	assert.Empty(t, p.ShareID)
	assert.True(t, p.NeedsAnalysis())
}

func TestApply_SequentialPatchesKeepEarlierKeys(t *testing.T) {
	p := Defaults()

	p, err := p.Apply(Patch{"full_name": "Aisha"})
	require.NoError(t, err)
	p, err = p.Apply(Patch{"job_title": "Data Analyst"})
	require.NoError(t, err)

	assert.Equal(t, "Aisha", p.FullName)
	assert.Equal(t, "Data Analyst", p.JobTitle)
	assert.Equal(t, 25, p.Age)
	assert.Equal(t, "Kuala Lumpur", p.CityState)
}

func TestApply_UnknownKeysRoundTrip(t *testing.T) {
	p, err := Defaults().Apply(Patch{"favorite_color": "blue", "linkedin": map[string]any{"handle": "aisha"}})
	require.NoError(t, err)
	require.Contains(t, p.Extra, "favorite_color")

	p, err = p.Apply(Patch{"age": 30})
	require.NoError(t, err)
	assert.Equal(t, 30, p.Age)

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "blue", doc["favorite_color"])
	assert.Equal(t, map[string]any{"handle": "aisha"}, doc["linkedin"])
}

func TestApply_RejectsMismatchedType(t *testing.T) {
	p := Defaults()
	p.FullName = "Aisha"

	out, err := p.Apply(Patch{"age": "thirty", "full_name": "Changed"})
	assert.ErrorIs(t, err, ErrInvalidPatch)
	assert.Equal(t, "Aisha", out.FullName)
	assert.Equal(t, 25, out.Age)
}

func TestApply_NullClearsPointerFields(t *testing.T) {
	p := Defaults()
	p.SalaryProjection = &SalaryProjection{Current: 1, Projected: 2}

	p, err := p.Apply(Patch{"salary_projection": nil})
	require.NoError(t, err)
	assert.Nil(t, p.SalaryProjection)
}

func TestClearDerived(t *testing.T) {
	p := Defaults()
	p.CurrentSkills = Skills{RatedSkill("Go", LevelExpert, true)}
	p.SkillGaps = []SkillGap{{Name: "K8s", Priority: PriorityHigh}}
	p.Recommendations = "learn"
	p.StudyPlan = []StudyPhase{{Phase: "Month 1"}}
	p.RecommendedCourses = []Course{{Title: "x"}}
	p.SalaryProjection = &SalaryProjection{Current: 1}
	p.PersonaProfileData = &Persona{Title: "x"}
	p.FullName = "kept"

	p, err := p.Apply(ClearDerived())
	require.NoError(t, err)

	assert.Empty(t, p.CurrentSkills)
	assert.Empty(t, p.SkillGaps)
	assert.Empty(t, p.Recommendations)
	assert.Empty(t, p.StudyPlan)
	assert.Empty(t, p.RecommendedCourses)
	assert.Nil(t, p.SalaryProjection)
	assert.Nil(t, p.PersonaProfileData)
	assert.Equal(t, "kept", p.FullName)
	assert.True(t, p.NeedsAnalysis())
}

func TestClampStep(t *testing.T) {
	assert.Equal(t, 1, ClampStep(0))
	assert.Equal(t, 1, ClampStep(-4))
	assert.Equal(t, 4, ClampStep(4))
	assert.Equal(t, TotalSteps, ClampStep(99))
	assert.False(t, ValidStep(0))
	assert.True(t, ValidStep(TotalSteps))
	assert.False(t, ValidStep(TotalSteps+1))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Professional", Profile{JobTitle: "  "}.Title())
	assert.Equal(t, "Designer", Profile{JobTitle: "Designer"}.Title())
}

func TestAnalysis_NormalizeAndPatch(t *testing.T) {
	a := Analysis{
		CurrentSkills: Skills{NamedSkill("Go"), RatedSkill("SQL", "", false)},
		RecommendedCourses: []Course{
			{Title: "Go Basics", Platform: "Udemy", URL: "not a url"},
			{Title: "Keep", Platform: "Udemy", URL: "https://example.com/keep"},
		},
	}.Normalize()

	require.Len(t, a.CurrentSkills, 2)
	assert.Equal(t, RatedSkill("Go", LevelIntermediate, true), a.CurrentSkills[0])
	assert.Equal(t, RatedSkill("SQL", LevelIntermediate, false), a.CurrentSkills[1])
	assert.Equal(t, "https://www.udemy.com/courses/search/?q=Go%20Basics", a.RecommendedCourses[0].URL)
	assert.Equal(t, "https://example.com/keep", a.RecommendedCourses[1].URL)

	p, err := Defaults().Apply(a.Patch())
	require.NoError(t, err)
	assert.Len(t, p.RecommendedCourses, 2)
	assert.NotNil(t, p.SkillGaps)
}

func TestDemoSnapshot(t *testing.T) {
	assert.True(t, IsDemoShareID("mock-123"))
	assert.False(t, IsDemoShareID("abc"))

	s := DemoSnapshot("mock-123")
	assert.Equal(t, "mock-123", s.ShareID)
	assert.Equal(t, "John Doe", s.Profile.FullName)
	assert.Equal(t, "USD", s.Profile.Currency)
	require.NotNil(t, s.Profile.SalaryProjection)
	assert.Equal(t, 162000.0, s.Profile.SalaryProjection.Projected)
}
