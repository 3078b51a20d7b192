package wizard

import (
	"fmt"

	"github.com/khoahotran/skillpath/internal/domain/profile"
)

// Session owns one profile and every mutation of it. It does no I/O; the
// Controller loads and saves it around each operation.
type Session struct {
	ID      string
	profile profile.Profile
}

func NewSession(id string) *Session {
	return &Session{ID: id, profile: profile.Defaults()}
}

func RestoreSession(id string, p profile.Profile) *Session {
	p.CurrentStep = profile.ClampStep(p.CurrentStep)
	return &Session{ID: id, profile: p}
}

func (s *Session) Get() profile.Profile {
	return s.profile
}

// Patch overwrites the named keys. The step is clamped into range and an
// existing share_id is never replaced.
func (s *Session) Patch(patch profile.Patch) error {
	next, err := s.profile.Apply(patch)
	if err != nil {
		return err
	}
	next.CurrentStep = profile.ClampStep(next.CurrentStep)
	if s.profile.ShareID != "" {
		next.ShareID = s.profile.ShareID
	}
	s.profile = next
	return nil
}

func (s *Session) Advance() {
	s.profile.CurrentStep = profile.ClampStep(s.profile.CurrentStep + 1)
}

func (s *Session) Retreat() {
	s.profile.CurrentStep = profile.ClampStep(s.profile.CurrentStep - 1)
}

func (s *Session) GoTo(step int) error {
	if !profile.ValidStep(step) {
		return fmt.Errorf("%w: %d", profile.ErrInvalidStep, step)
	}
	s.profile.CurrentStep = step
	return nil
}

// Reset restores defaults. The revision keeps counting so results started
// before the reset are recognised as stale.
func (s *Session) Reset() {
	rev := s.profile.Revision
	s.profile = profile.Defaults()
	s.profile.Revision = rev + 1
}
