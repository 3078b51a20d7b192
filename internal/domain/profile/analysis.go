package profile

import (
	"github.com/khoahotran/skillpath/internal/domain/course"
)

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

type SkillGap struct {
	Name     string   `json:"name"`
	Priority Priority `json:"priority"`
	Impact   string   `json:"impact"`
}

type StudyPhase struct {
	Phase string   `json:"phase"`
	Goal  string   `json:"goal"`
	Steps []string `json:"steps"`
}

type Course struct {
	Title    string  `json:"title"`
	Platform string  `json:"platform"`
	Rating   float64 `json:"rating"`
	Duration string  `json:"duration"`
	Type     string  `json:"type"`
	URL      string  `json:"url,omitempty"`
}

type SalaryProjection struct {
	Current   float64 `json:"current"`
	Projected float64 `json:"projected"`
	Reason    string  `json:"reason"`
	Reference string  `json:"reference,omitempty"`
}

type Persona struct {
	Title   string   `json:"title"`
	Traits  []string `json:"traits"`
	Summary string   `json:"summary"`
}

// Analysis is the derived bundle produced by skill analysis.
type Analysis struct {
	CurrentSkills      Skills            `json:"current_skills"`
	SkillGaps          []SkillGap        `json:"skill_gaps"`
	Recommendations    string            `json:"recommendations"`
	StudyPlan          []StudyPhase      `json:"study_plan"`
	RecommendedCourses []Course          `json:"recommended_courses"`
	SalaryProjection   *SalaryProjection `json:"salary_projection"`
	PersonaProfileData *Persona          `json:"persona_profile_data"`
}

// Normalize rewrites skills into the rated form and gives every course a
// usable link.
func (a Analysis) Normalize() Analysis {
	a.CurrentSkills = NormalizeSkills(a.CurrentSkills)
	courses := make([]Course, len(a.RecommendedCourses))
	for i, c := range a.RecommendedCourses {
		c.URL = course.ResolveURL(c.URL, c.Platform, c.Title)
		courses[i] = c
	}
	a.RecommendedCourses = courses
	return a
}

// Patch turns the bundle into a single merge so all derived fields land together.
func (a Analysis) Patch() Patch {
	return Patch{
		"current_skills":       a.CurrentSkills,
		"skill_gaps":           nonNil(a.SkillGaps),
		"recommendations":      a.Recommendations,
		"study_plan":           nonNil(a.StudyPlan),
		"recommended_courses":  nonNil(a.RecommendedCourses),
		"salary_projection":    a.SalaryProjection,
		"persona_profile_data": a.PersonaProfileData,
	}
}

// ClearDerived empties every analysis-derived field.
func ClearDerived() Patch {
	return Patch{
		"current_skills":       []Skill{},
		"skill_gaps":           []SkillGap{},
		"recommendations":      "",
		"study_plan":           []StudyPhase{},
		"recommended_courses":  []Course{},
		"salary_projection":    nil,
		"persona_profile_data": nil,
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// DefaultPersona fills the report when analysis produced no persona.
func DefaultPersona(p Profile) Persona {
	return Persona{
		Title:   "The Modern Architect",
		Traits:  []string{"Data-driven", "Innovative", "Systemic Thinker"},
		Summary: "A " + p.Title() + " building toward broader technical ownership.",
	}
}
