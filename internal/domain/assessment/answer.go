package assessment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// AnswerValue holds one answer. Its JSON form depends on the question type:
// a number for rating, a string for single and text, a list for multiple.
type AnswerValue struct {
	kind    QuestionType
	rating  int
	text    string
	choices []string
}

type Answer struct {
	QuestionID int         `json:"questionId"`
	Value      AnswerValue `json:"answer"`
}

func RatingAnswer(n int) AnswerValue { return AnswerValue{kind: TypeRating, rating: n} }

func TextAnswer(s string) AnswerValue { return AnswerValue{kind: TypeText, text: s} }

func SingleAnswer(option string) AnswerValue { return AnswerValue{kind: TypeSingle, text: option} }

func MultipleAnswer(options ...string) AnswerValue {
	return AnswerValue{kind: TypeMultiple, choices: slices.Clone(options)}
}

func (v AnswerValue) Kind() QuestionType { return v.kind }

func (v AnswerValue) Rating() (int, bool) {
	return v.rating, v.kind == TypeRating
}

// Text returns the string for single and text answers.
func (v AnswerValue) Text() (string, bool) {
	return v.text, v.kind == TypeText || v.kind == TypeSingle
}

func (v AnswerValue) Choices() ([]string, bool) {
	return slices.Clone(v.choices), v.kind == TypeMultiple
}

// IsEmpty reports whether the value would fail the submit guard.
func (v AnswerValue) IsEmpty() bool {
	switch v.kind {
	case TypeRating:
		return v.rating < RatingMin || v.rating > RatingMax
	case TypeSingle, TypeText:
		return strings.TrimSpace(v.text) == ""
	case TypeMultiple:
		return len(v.choices) == 0
	}
	return true
}

func (v AnswerValue) String() string {
	switch v.kind {
	case TypeRating:
		return fmt.Sprintf("%d", v.rating)
	case TypeSingle, TypeText:
		return v.text
	case TypeMultiple:
		return strings.Join(v.choices, ", ")
	}
	return ""
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case TypeRating:
		return json.Marshal(v.rating)
	case TypeSingle, TypeText:
		return json.Marshal(v.text)
	case TypeMultiple:
		if v.choices == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.choices)
	}
	return []byte("null"), nil
}

// UnmarshalJSON infers the kind from the JSON shape. Strings decode as text
// since single and text answers share a representation.
func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = AnswerValue{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = TextAnswer(s)
	case '[':
		var choices []string
		if err := json.Unmarshal(data, &choices); err != nil {
			return err
		}
		*v = MultipleAnswer(choices...)
	default:
		var n int
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("answer must be a number, string or list of strings: %w", err)
		}
		*v = RatingAnswer(n)
	}
	return nil
}
