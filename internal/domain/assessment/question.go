package assessment

import (
	"errors"
	"fmt"
)

type QuestionType string

const (
	TypeRating   QuestionType = "rating"
	TypeSingle   QuestionType = "single"
	TypeMultiple QuestionType = "multiple"
	TypeText     QuestionType = "text"
)

const (
	RatingMin = 1
	RatingMax = 5

	// MaxSelections caps how many options a multiple-choice answer may hold.
	MaxSelections = 3
)

var (
	ErrNoQuestions       = errors.New("question set is empty")
	ErrDuplicateQuestion = errors.New("duplicate question id")
	ErrInvalidQuestion   = errors.New("invalid question")
)

type Question struct {
	ID      int          `json:"id"`
	Text    string       `json:"text"`
	Type    QuestionType `json:"type"`
	Options []string     `json:"options,omitempty"`
}

func (t QuestionType) Valid() bool {
	switch t {
	case TypeRating, TypeSingle, TypeMultiple, TypeText:
		return true
	}
	return false
}

func (t QuestionType) HasOptions() bool {
	return t == TypeSingle || t == TypeMultiple
}

func (q Question) Validate() error {
	if q.Text == "" {
		return fmt.Errorf("%w: question %d has no text", ErrInvalidQuestion, q.ID)
	}
	if !q.Type.Valid() {
		return fmt.Errorf("%w: question %d has unknown type %q", ErrInvalidQuestion, q.ID, q.Type)
	}
	if q.Type.HasOptions() && len(q.Options) < 2 {
		return fmt.Errorf("%w: question %d needs at least 2 options", ErrInvalidQuestion, q.ID)
	}
	return nil
}

func (q Question) hasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}

// ValidateQuestions checks a generated question set: non-empty, every
// question well formed and ids unique within the set.
func ValidateQuestions(qs []Question) error {
	if len(qs) == 0 {
		return ErrNoQuestions
	}
	seen := make(map[int]struct{}, len(qs))
	for _, q := range qs {
		if err := q.Validate(); err != nil {
			return err
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicateQuestion, q.ID)
		}
		seen[q.ID] = struct{}{}
	}
	return nil
}

// FallbackQuestions is the built-in set used whenever generation is not
// available. It depends on the job title only.
func FallbackQuestions(jobTitle string) []Question {
	return []Question{
		{
			ID:   1,
			Text: fmt.Sprintf("Based on your role as %s, how would you rate your proficiency in core technical skills?", jobTitle),
			Type: TypeRating,
		},
		{
			ID:      2,
			Text:    "Which of these advanced tools have you used in the past year?",
			Type:    TypeMultiple,
			Options: []string{"Cloud Services", "Data Visualization", "DevOps Pipelines", "AI/ML Libraries"},
		},
		{
			ID:   3,
			Text: "Describe a complex project you led recently.",
			Type: TypeText,
		},
	}
}
