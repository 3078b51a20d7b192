package profile

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Background is the step 1 form. CurrentSkills is the comma-separated list
// the user typed.
type Background struct {
	FullName                string  `json:"full_name" validate:"min=2"`
	Age                     int     `json:"age" validate:"gte=18,lte=100"`
	JobTitle                string  `json:"job_title" validate:"min=2"`
	PositionDepartment      string  `json:"position_department" validate:"min=2"`
	CurrentResponsibilities string  `json:"current_responsibilities" validate:"min=10"`
	IndustryType            string  `json:"industry_type" validate:"min=2"`
	CompanySize             string  `json:"company_size"`
	YearsOfExperience       float64 `json:"years_of_experience" validate:"gte=0"`
	CurrentSalary           float64 `json:"current_salary" validate:"gte=0"`
	Currency                string  `json:"currency" validate:"min=1"`
	Country                 string  `json:"country" validate:"min=2"`
	CityState               string  `json:"city_state" validate:"min=2"`
	CareerAspirations       string  `json:"career_aspirations"`
	SkillsToDevelop         string  `json:"skills_to_develop"`
	CurrentSkills           string  `json:"current_skills" validate:"min=2"`
}

// FieldErrors maps JSON field names to a readable message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for k, v := range e {
		parts = append(parts, k+": "+v)
	}
	return "invalid background: " + strings.Join(parts, "; ")
}

var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

func (b Background) trimmed() Background {
	rv := reflect.ValueOf(&b).Elem()
	for i := 0; i < rv.NumField(); i++ {
		if f := rv.Field(i); f.Kind() == reflect.String {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
	return b
}

// Validate trims every text field and returns FieldErrors when any rule fails.
func (b Background) Validate() (Background, error) {
	b = b.trimmed()
	err := validate.Struct(b)
	if err == nil {
		return b, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return b, err
	}
	fields := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = message(fe)
	}
	return b, fields
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	}
	return "is invalid"
}

// Patch turns a validated form into a profile patch. Skills are stored as
// bare names.
func (b Background) Patch() Patch {
	return Patch{
		"full_name":                b.FullName,
		"age":                      b.Age,
		"job_title":                b.JobTitle,
		"position_department":      b.PositionDepartment,
		"current_responsibilities": b.CurrentResponsibilities,
		"industry_type":            b.IndustryType,
		"company_size":             b.CompanySize,
		"years_of_experience":      b.YearsOfExperience,
		"current_salary":           b.CurrentSalary,
		"currency":                 b.Currency,
		"country":                  b.Country,
		"city_state":               b.CityState,
		"career_aspirations":       b.CareerAspirations,
		"skills_to_develop":        b.SkillsToDevelop,
		"current_skills":           ParseSkillList(b.CurrentSkills),
	}
}

// Background is the view of p sent to text generation.
func (p Profile) Background() Background {
	return Background{
		FullName:                p.FullName,
		Age:                     p.Age,
		JobTitle:                p.JobTitle,
		PositionDepartment:      p.PositionDepartment,
		CurrentResponsibilities: p.CurrentResponsibilities,
		IndustryType:            p.IndustryType,
		CompanySize:             p.CompanySize,
		YearsOfExperience:       p.YearsOfExperience,
		CurrentSalary:           p.CurrentSalary,
		Currency:                p.Currency,
		Country:                 p.Country,
		CityState:               p.CityState,
		CareerAspirations:       p.CareerAspirations,
		SkillsToDevelop:         p.SkillsToDevelop,
		CurrentSkills:           strings.Join(p.CurrentSkills.Names(), ", "),
	}
}
