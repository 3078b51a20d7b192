package assessment

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrCompleted     = errors.New("assessment already completed")
	ErrEmptyAnswer   = errors.New("current answer is empty")
	ErrWrongType     = errors.New("action does not match question type")
	ErrUnknownOption = errors.New("option is not offered by the question")
	ErrInvalidRating = errors.New("rating out of range")
)

// Collector walks a question set one answer at a time. It is in state
// AwaitingAnswer(Index) until every question has an answer, then Completed.
// Current is the answer being edited for the question at Index.
type Collector struct {
	Questions []Question  `json:"questions"`
	Answers   []Answer    `json:"answers"`
	Index     int         `json:"index"`
	Current   AnswerValue `json:"current"`
}

func NewCollector(questions []Question) (*Collector, error) {
	if err := ValidateQuestions(questions); err != nil {
		return nil, err
	}
	return &Collector{
		Questions: slices.Clone(questions),
		Answers:   make([]Answer, 0, len(questions)),
	}, nil
}

func (c *Collector) Completed() bool {
	return c.Index >= len(c.Questions)
}

func (c *Collector) CurrentQuestion() (Question, bool) {
	if c.Completed() {
		return Question{}, false
	}
	return c.Questions[c.Index], true
}

func (c *Collector) current(want ...QuestionType) (Question, error) {
	q, ok := c.CurrentQuestion()
	if !ok {
		return Question{}, ErrCompleted
	}
	if !slices.Contains(want, q.Type) {
		return Question{}, fmt.Errorf("%w: question %d is %s", ErrWrongType, q.ID, q.Type)
	}
	return q, nil
}

// Select picks an option. For single questions it replaces the selection.
// For multiple questions it toggles the option; selecting beyond
// MaxSelections leaves the selection unchanged.
func (c *Collector) Select(option string) error {
	q, err := c.current(TypeSingle, TypeMultiple)
	if err != nil {
		return err
	}
	if !q.hasOption(option) {
		return fmt.Errorf("%w: %q", ErrUnknownOption, option)
	}

	if q.Type == TypeSingle {
		c.Current = SingleAnswer(option)
		return nil
	}

	selected, _ := c.Current.Choices()
	if i := slices.Index(selected, option); i >= 0 {
		c.Current = MultipleAnswer(slices.Delete(selected, i, i+1)...)
		return nil
	}
	if len(selected) >= MaxSelections {
		return nil
	}
	c.Current = MultipleAnswer(append(selected, option)...)
	return nil
}

func (c *Collector) SetRating(n int) error {
	if _, err := c.current(TypeRating); err != nil {
		return err
	}
	if n < RatingMin || n > RatingMax {
		return fmt.Errorf("%w: %d", ErrInvalidRating, n)
	}
	c.Current = RatingAnswer(n)
	return nil
}

func (c *Collector) SetText(s string) error {
	if _, err := c.current(TypeText); err != nil {
		return err
	}
	c.Current = TextAnswer(s)
	return nil
}

// CanSubmit is the transition guard for Submit.
func (c *Collector) CanSubmit() bool {
	q, ok := c.CurrentQuestion()
	if !ok {
		return false
	}
	if c.Current.IsEmpty() {
		return false
	}
	switch q.Type {
	case TypeSingle, TypeText:
		_, ok := c.Current.Text()
		return ok
	default:
		return c.Current.Kind() == q.Type
	}
}

// Submit records the current answer and moves to the next question. It
// reports whether the collector reached Completed.
func (c *Collector) Submit() (bool, error) {
	q, ok := c.CurrentQuestion()
	if !ok {
		return true, ErrCompleted
	}
	if !c.CanSubmit() {
		return false, ErrEmptyAnswer
	}

	c.Answers = append(c.Answers, Answer{QuestionID: q.ID, Value: c.Current})
	c.Current = AnswerValue{}
	c.Index++
	return c.Completed(), nil
}
