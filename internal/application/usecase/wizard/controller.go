package wizard

import (
	"context"
	"errors"
	"fmt"

	"github.com/khoahotran/skillpath/internal/application/usecase/analysis"
	assessmentuc "github.com/khoahotran/skillpath/internal/application/usecase/assessment"
	"github.com/khoahotran/skillpath/internal/application/usecase/media"
	"github.com/khoahotran/skillpath/internal/application/usecase/share"
	"github.com/khoahotran/skillpath/internal/domain/assessment"
	"github.com/khoahotran/skillpath/internal/domain/profile"
	"github.com/khoahotran/skillpath/pkg/apperror"
	"github.com/khoahotran/skillpath/pkg/idgen"
	"github.com/khoahotran/skillpath/pkg/logger"
	"go.uber.org/zap"
)

// Keys a client may not set through a raw patch.
var protectedKeys = []string{"share_id", "revision", "assessment_draft", "completed_at"}

// Controller runs the wizard. Every operation loads the session, mutates it
// through Session and saves it back under the session's lock.
type Controller struct {
	sessions  profile.SessionRepository
	questions *assessmentuc.GenerateQuestionsUseCase
	analyzer  *analysis.AnalyzeSkillsUseCase
	gateway   *share.Gateway
	uploads   *media.UploadDocumentsUseCase
	logger    logger.Logger
	locks     *sessionLocks
	newID     func() string
}

func NewController(
	sessions profile.SessionRepository,
	questions *assessmentuc.GenerateQuestionsUseCase,
	analyzer *analysis.AnalyzeSkillsUseCase,
	gateway *share.Gateway,
	uploads *media.UploadDocumentsUseCase,
	log logger.Logger,
) *Controller {
	return &Controller{
		sessions:  sessions,
		questions: questions,
		analyzer:  analyzer,
		gateway:   gateway,
		uploads:   uploads,
		logger:    log,
		locks:     newSessionLocks(),
		newID:     idgen.New,
	}
}

// AssessmentState is the collector as seen by the client.
type AssessmentState struct {
	Questions []assessment.Question  `json:"questions"`
	Index     int                    `json:"index"`
	Current   assessment.AnswerValue `json:"current"`
	Answers   []assessment.Answer    `json:"answers"`
	CanSubmit bool                   `json:"can_submit"`
	Completed bool                   `json:"completed"`
	Fallback  bool                   `json:"fallback,omitempty"`
}

func stateOf(c *assessment.Collector) *AssessmentState {
	return &AssessmentState{
		Questions: c.Questions,
		Index:     c.Index,
		Current:   c.Current,
		Answers:   c.Answers,
		CanSubmit: c.CanSubmit(),
		Completed: c.Completed(),
	}
}

// completedState describes an assessment that already merged into the profile.
func completedState(p profile.Profile) *AssessmentState {
	return &AssessmentState{
		Questions: p.AssessmentQuestions,
		Index:     len(p.AssessmentQuestions),
		Answers:   p.AssessmentAnswers,
		Completed: true,
	}
}

func (c *Controller) load(ctx context.Context, id string) (*Session, error) {
	p, err := c.sessions.Load(ctx, id)
	if errors.Is(err, profile.ErrSessionNotFound) {
		return nil, apperror.NewNotFound("session", id)
	}
	if err != nil {
		return nil, apperror.NewInternal("failed to load session", err)
	}
	return RestoreSession(id, *p), nil
}

func (c *Controller) save(ctx context.Context, s *Session) error {
	p := s.Get()
	if err := c.sessions.Save(ctx, s.ID, &p); err != nil {
		return apperror.NewInternal("failed to save session", err)
	}
	return nil
}

// mutate runs fn on the locked session and saves the result when fn succeeds.
func (c *Controller) mutate(ctx context.Context, id string, fn func(s *Session) error) (profile.Profile, error) {
	unlock := c.locks.lock(id)
	defer unlock()

	s, err := c.load(ctx, id)
	if err != nil {
		return profile.Profile{}, err
	}
	if err := fn(s); err != nil {
		return profile.Profile{}, err
	}
	if err := c.save(ctx, s); err != nil {
		return profile.Profile{}, err
	}
	return s.Get(), nil
}

func patchError(err error) error {
	if errors.Is(err, profile.ErrInvalidPatch) {
		return apperror.NewInvalidInput(err.Error(), err)
	}
	return apperror.NewInternal("failed to apply patch", err)
}

// Start creates a session holding the default profile.
func (c *Controller) Start(ctx context.Context) (string, profile.Profile, error) {
	s := NewSession(c.newID())
	if err := c.save(ctx, s); err != nil {
		return "", profile.Profile{}, err
	}
	c.logger.Info("Session started", zap.String("session_id", s.ID))
	return s.ID, s.Get(), nil
}

func (c *Controller) Get(ctx context.Context, id string) (profile.Profile, error) {
	s, err := c.load(ctx, id)
	if err != nil {
		return profile.Profile{}, err
	}
	return s.Get(), nil
}

// Patch merges a client patch. Bookkeeping keys are ignored.
func (c *Controller) Patch(ctx context.Context, id string, patch profile.Patch) (profile.Profile, error) {
	return c.mutate(ctx, id, func(s *Session) error {
		if err := s.Patch(patch.Without(protectedKeys...)); err != nil {
			return patchError(err)
		}
		return nil
	})
}

func (c *Controller) Advance(ctx context.Context, id string) (profile.Profile, error) {
	return c.mutate(ctx, id, func(s *Session) error {
		if err := draftBlocks(s.Get(), s.Get().CurrentStep+1); err != nil {
			return err
		}
		s.Advance()
		return nil
	})
}

// draftBlocks keeps a session with an unfinished assessment out of the steps
// that read analysis results; they would still show the previous run.
func draftBlocks(p profile.Profile, target int) error {
	if p.AssessmentDraft == nil || target <= profile.StepAssessment {
		return nil
	}
	return apperror.NewAppError(apperror.ErrConflict, "Assessment in progress",
		"finish the assessment before leaving the assessment step", nil)
}

func (c *Controller) Retreat(ctx context.Context, id string) (profile.Profile, error) {
	return c.mutate(ctx, id, func(s *Session) error {
		s.Retreat()
		return nil
	})
}

func (c *Controller) GoTo(ctx context.Context, id string, step int) (profile.Profile, error) {
	return c.mutate(ctx, id, func(s *Session) error {
		if step < 1 || step > profile.TotalSteps {
			return apperror.NewInvalidInput(fmt.Sprintf("step must be between 1 and %d", profile.TotalSteps), profile.ErrInvalidStep)
		}
		if err := draftBlocks(s.Get(), step); err != nil {
			return err
		}
		if err := s.GoTo(step); err != nil {
			return apperror.NewInvalidInput(fmt.Sprintf("step must be between 1 and %d", profile.TotalSteps), err)
		}
		return nil
	})
}

func (c *Controller) Reset(ctx context.Context, id string) (profile.Profile, error) {
	return c.mutate(ctx, id, func(s *Session) error {
		s.Reset()
		return nil
	})
}

// SubmitBackground validates the step 1 form, stores it and moves to the
// assessment.
func (c *Controller) SubmitBackground(ctx context.Context, id string, form profile.Background) (profile.Profile, error) {
	form, err := form.Validate()
	if err != nil {
		var fields profile.FieldErrors
		if errors.As(err, &fields) {
			return profile.Profile{}, apperror.NewValidation(fields)
		}
		return profile.Profile{}, apperror.NewInternal("failed to validate background", err)
	}

	return c.mutate(ctx, id, func(s *Session) error {
		if err := s.Patch(form.Patch()); err != nil {
			return patchError(err)
		}
		return s.GoTo(profile.StepAssessment)
	})
}

// Questions returns the assessment in progress, generating one when none is.
// Generation runs outside the lock; its result is dropped if the session was
// reset or completed an assessment meanwhile.
func (c *Controller) Questions(ctx context.Context, id string) (*AssessmentState, error) {
	s, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	p := s.Get()
	if p.AssessmentDraft != nil {
		return stateOf(p.AssessmentDraft), nil
	}

	out, err := c.questions.Execute(ctx, assessmentuc.GenerateQuestionsInput{Profile: p})
	if err != nil {
		return nil, err
	}
	collector, err := assessment.NewCollector(out.Questions)
	if err != nil {
		return nil, apperror.NewInternal("generated questions are invalid", err)
	}

	var state *AssessmentState
	_, err = c.mutate(ctx, id, func(s *Session) error {
		cur := s.Get()
		switch {
		case cur.Revision != p.Revision:
			c.logger.Info("Discarding stale questions",
				zap.String("session_id", id),
				zap.Int("started_revision", p.Revision),
				zap.Int("revision", cur.Revision),
			)
			if cur.AssessmentDraft != nil {
				state = stateOf(cur.AssessmentDraft)
			} else if len(cur.AssessmentAnswers) > 0 {
				state = completedState(cur)
			}
			return nil
		case cur.AssessmentDraft != nil:
			state = stateOf(cur.AssessmentDraft)
			return nil
		}
		if err := s.Patch(profile.Patch{"assessment_draft": collector}); err != nil {
			return patchError(err)
		}
		state = stateOf(collector)
		state.Fallback = out.Fallback
		return nil
	})
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, apperror.NewConflict("assessment", "revision", fmt.Sprint(p.Revision))
	}
	return state, nil
}

func collectorError(err error) error {
	switch {
	case errors.Is(err, assessment.ErrCompleted),
		errors.Is(err, assessment.ErrEmptyAnswer),
		errors.Is(err, assessment.ErrWrongType),
		errors.Is(err, assessment.ErrUnknownOption),
		errors.Is(err, assessment.ErrInvalidRating):
		return apperror.NewInvalidInput(err.Error(), err)
	}
	return apperror.NewInternal("assessment update failed", err)
}

// edit applies fn to the draft collector and stores it.
func (c *Controller) edit(ctx context.Context, id string, fn func(col *assessment.Collector) error) (*AssessmentState, error) {
	var state *AssessmentState
	_, err := c.mutate(ctx, id, func(s *Session) error {
		draft := s.Get().AssessmentDraft
		if draft == nil {
			return apperror.NewInvalidInput("no assessment in progress", nil)
		}
		if err := fn(draft); err != nil {
			return collectorError(err)
		}
		if err := s.Patch(profile.Patch{"assessment_draft": draft}); err != nil {
			return patchError(err)
		}
		state = stateOf(draft)
		return nil
	})
	return state, err
}

func (c *Controller) Select(ctx context.Context, id, option string) (*AssessmentState, error) {
	return c.edit(ctx, id, func(col *assessment.Collector) error { return col.Select(option) })
}

func (c *Controller) SetRating(ctx context.Context, id string, n int) (*AssessmentState, error) {
	return c.edit(ctx, id, func(col *assessment.Collector) error { return col.SetRating(n) })
}

func (c *Controller) SetText(ctx context.Context, id, text string) (*AssessmentState, error) {
	return c.edit(ctx, id, func(col *assessment.Collector) error { return col.SetText(text) })
}

// SubmitAnswer records the current answer. The last answer merges the
// assessment into the profile, clears everything derived from the previous
// one and moves to step 3.
func (c *Controller) SubmitAnswer(ctx context.Context, id string) (*AssessmentState, error) {
	var state *AssessmentState
	_, err := c.mutate(ctx, id, func(s *Session) error {
		p := s.Get()
		draft := p.AssessmentDraft
		if draft == nil {
			return apperror.NewInvalidInput("no assessment in progress", nil)
		}
		done, err := draft.Submit()
		if err != nil {
			return collectorError(err)
		}
		state = stateOf(draft)
		if !done {
			if err := s.Patch(profile.Patch{"assessment_draft": draft}); err != nil {
				return patchError(err)
			}
			return nil
		}

		patch := profile.ClearDerived().Merge(profile.Patch{
			"assessment_questions": draft.Questions,
			"assessment_answers":   draft.Answers,
			"assessment_draft":     nil,
			"revision":             p.Revision + 1,
			"current_step":         profile.StepGapAnalysis,
		})
		if err := s.Patch(patch); err != nil {
			return patchError(err)
		}
		c.logger.Info("Assessment completed",
			zap.String("session_id", id),
			zap.Int("answers", len(draft.Answers)),
		)
		return nil
	})
	return state, err
}

// AnalysisOutput is the profile after step 3 entry.
type AnalysisOutput struct {
	Profile  profile.Profile
	Fallback bool
	// Stale is set when a newer revision made the result obsolete.
	Stale bool
}

// Analysis derives the skill analysis unless the profile already has one.
func (c *Controller) Analysis(ctx context.Context, id string) (*AnalysisOutput, error) {
	s, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	p := s.Get()
	if !p.NeedsAnalysis() {
		return &AnalysisOutput{Profile: p}, nil
	}

	out, err := c.analyzer.Execute(ctx, analysis.AnalyzeSkillsInput{Profile: p, Answers: p.AssessmentAnswers})
	if err != nil {
		return nil, err
	}

	result := &AnalysisOutput{Fallback: out.Fallback}
	result.Profile, err = c.mutate(ctx, id, func(s *Session) error {
		cur := s.Get()
		if cur.Revision != p.Revision || !cur.NeedsAnalysis() {
			c.logger.Info("Discarding stale analysis",
				zap.String("session_id", id),
				zap.Int("started_revision", p.Revision),
				zap.Int("revision", cur.Revision),
			)
			result.Stale = true
			return nil
		}
		if err := s.Patch(out.Analysis.Patch()); err != nil {
			return patchError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type PublishOutput struct {
	ShareID string
	Profile profile.Profile
	Local   bool
}

// Publish stores a snapshot of the profile and records the share ID on the
// session. Republishing reuses the same ID.
func (c *Controller) Publish(ctx context.Context, id string) (*PublishOutput, error) {
	result := &PublishOutput{}
	p, err := c.mutate(ctx, id, func(s *Session) error {
		cur := s.Get()
		if cur.PersonaProfileData == nil {
			if err := s.Patch(profile.Patch{"persona_profile_data": profile.DefaultPersona(cur)}); err != nil {
				return patchError(err)
			}
		}

		out, err := c.gateway.Publish(ctx, share.PublishInput{Profile: s.Get()})
		if err != nil {
			return err
		}
		if err := s.Patch(profile.Patch{"share_id": out.ShareID, "completed_at": out.CompletedAt}); err != nil {
			return patchError(err)
		}
		result.ShareID = out.ShareID
		result.Local = out.Local
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Profile = p
	return result, nil
}

// Upload stores documents and links them on the profile. A resume replaces
// the previous one; certificates are appended.
func (c *Controller) Upload(ctx context.Context, id string, category media.Category, files []media.File) (profile.Profile, []string, error) {
	if _, err := c.load(ctx, id); err != nil {
		return profile.Profile{}, nil, err
	}
	out, err := c.uploads.Execute(ctx, media.UploadDocumentsInput{Category: category, Files: files})
	if err != nil {
		return profile.Profile{}, nil, err
	}

	p, err := c.mutate(ctx, id, func(s *Session) error {
		var patch profile.Patch
		if category == media.CategoryResumes {
			patch = profile.Patch{"resume_url": out.URLs[0]}
		} else {
			patch = profile.Patch{"certificate_urls": append(s.Get().CertificateURLs, out.URLs...)}
		}
		if err := s.Patch(patch); err != nil {
			return patchError(err)
		}
		return nil
	})
	if err != nil {
		return profile.Profile{}, nil, err
	}
	return p, out.URLs, nil
}
