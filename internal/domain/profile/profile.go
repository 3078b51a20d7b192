package profile

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/khoahotran/skillpath/internal/domain/assessment"
)

// Wizard steps, 1-based.
const (
	StepBackground = iota + 1
	StepAssessment
	StepGapAnalysis
	StepLearning
	StepStudyPlan
	StepSalary
	StepPersona

	TotalSteps = StepPersona
)

var StepNames = map[int]string{
	StepBackground:  "Background",
	StepAssessment:  "Assessment",
	StepGapAnalysis: "Gap Analysis",
	StepLearning:    "Learning",
	StepStudyPlan:   "Study Plan",
	StepSalary:      "Salary",
	StepPersona:     "Persona",
}

var (
	ErrInvalidStep     = errors.New("step out of range")
	ErrInvalidPatch    = errors.New("patch does not fit the profile")
	ErrSessionNotFound = errors.New("session not found")
)

func ValidStep(step int) bool {
	return step >= 1 && step <= TotalSteps
}

// ClampStep forces step into [1, TotalSteps].
func ClampStep(step int) int {
	if step < 1 {
		return 1
	}
	if step > TotalSteps {
		return TotalSteps
	}
	return step
}

type Profile struct {
	FullName                string  `json:"full_name"`
	Age                     int     `json:"age"`
	JobTitle                string  `json:"job_title"`
	PositionDepartment      string  `json:"position_department"`
	CurrentResponsibilities string  `json:"current_responsibilities"`
	IndustryType            string  `json:"industry_type"`
	CompanySize             string  `json:"company_size"`
	YearsOfExperience       float64 `json:"years_of_experience"`
	CurrentSalary           float64 `json:"current_salary"`
	Currency                string  `json:"currency"`
	Country                 string  `json:"country"`
	CityState               string  `json:"city_state"`
	CareerAspirations       string  `json:"career_aspirations"`
	SkillsToDevelop         string  `json:"skills_to_develop"`

	CertificateURLs []string `json:"certificate_urls"`
	ResumeURL       string   `json:"resume_url"`

	AssessmentQuestions []assessment.Question `json:"assessment_questions"`
	AssessmentAnswers   []assessment.Answer   `json:"assessment_answers"`
	CurrentStep         int                   `json:"current_step"`

	CurrentSkills      Skills            `json:"current_skills"`
	SkillGaps          []SkillGap        `json:"skill_gaps"`
	Recommendations    string            `json:"recommendations"`
	StudyPlan          []StudyPhase      `json:"study_plan"`
	RecommendedCourses []Course          `json:"recommended_courses"`
	SalaryProjection   *SalaryProjection `json:"salary_projection"`
	PersonaProfileData *Persona          `json:"persona_profile_data"`

	ShareID         string                `json:"share_id,omitempty"`
	AssessmentDraft *assessment.Collector `json:"assessment_draft,omitempty"`
	Revision        int                   `json:"revision"`
	CompletedAt     *time.Time            `json:"completed_at,omitempty"`

	// Extra keeps keys the profile does not model so they survive a round trip.
	Extra map[string]json.RawMessage `json:"-"`
}

func Defaults() Profile {
	return Profile{
		Age:         25,
		CompanySize: "Small",
		Currency:    "MYR",
		Country:     "Malaysia",
		CityState:   "Kuala Lumpur",
		CurrentStep: StepBackground,
	}
}

// Title is the job title used in generated text.
func (p Profile) Title() string {
	if t := strings.TrimSpace(p.JobTitle); t != "" {
		return t
	}
	return "Professional"
}

// NeedsAnalysis reports whether step 3 should trigger skill analysis.
func (p Profile) NeedsAnalysis() bool {
	return len(p.SkillGaps) == 0
}

type profileFields Profile

var knownKeys = func() map[string]bool {
	keys := make(map[string]bool)
	t := reflect.TypeOf(Profile{})
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			keys[name] = true
		}
	}
	return keys
}()

func (p Profile) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(profileFields(p))
	if err != nil || len(p.Extra) == 0 {
		return base, err
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(base, &doc); err != nil {
		return nil, err
	}
	for k, v := range p.Extra {
		if !knownKeys[k] {
			doc[k] = v
		}
	}
	return json.Marshal(doc)
}

func (p *Profile) UnmarshalJSON(data []byte) error {
	var fields profileFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*p = Profile(fields)
	for k, v := range doc {
		if knownKeys[k] {
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]json.RawMessage)
		}
		p.Extra[k] = v
	}
	return nil
}
