package wizard

import (
	"testing"

	"github.com/khoahotran/skillpath/internal/domain/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Navigation(t *testing.T) {
	s := NewSession("s1")

	s.Retreat()
	assert.Equal(t, profile.StepBackground, s.Get().CurrentStep)

	for range 10 {
		s.Advance()
	}
	assert.Equal(t, profile.TotalSteps, s.Get().CurrentStep)

	require.NoError(t, s.GoTo(profile.StepSalary))
	assert.Equal(t, profile.StepSalary, s.Get().CurrentStep)

	err := s.GoTo(0)
	assert.ErrorIs(t, err, profile.ErrInvalidStep)
	err = s.GoTo(profile.TotalSteps + 1)
	assert.ErrorIs(t, err, profile.ErrInvalidStep)
	assert.Equal(t, profile.StepSalary, s.Get().CurrentStep)
}

func TestSession_PatchClampsStep(t *testing.T) {
	s := NewSession("s1")
	require.NoError(t, s.Patch(profile.Patch{"current_step": 42, "full_name": "Aisha"}))
	assert.Equal(t, profile.TotalSteps, s.Get().CurrentStep)
	assert.Equal(t, "Aisha", s.Get().FullName)

	require.NoError(t, s.Patch(profile.Patch{"current_step": -3}))
	assert.Equal(t, profile.StepBackground, s.Get().CurrentStep)
}

func TestSession_ShareIDIsStable(t *testing.T) {
	s := NewSession("s1")
	require.NoError(t, s.Patch(profile.Patch{"share_id": "first"}))
	require.NoError(t, s.Patch(profile.Patch{"share_id": "second"}))
	assert.Equal(t, "first", s.Get().ShareID)
}

func TestSession_InvalidPatchLeavesProfile(t *testing.T) {
	s := NewSession("s1")
	require.NoError(t, s.Patch(profile.Patch{"full_name": "Aisha"}))

	err := s.Patch(profile.Patch{"age": "old", "full_name": "Other"})
	assert.ErrorIs(t, err, profile.ErrInvalidPatch)
	assert.Equal(t, "Aisha", s.Get().FullName)
}

func TestSession_ResetBumpsRevision(t *testing.T) {
	s := NewSession("s1")
	require.NoError(t, s.Patch(profile.Patch{"full_name": "Aisha", "revision": 4, "current_step": 5}))

	s.Reset()
	p := s.Get()
	assert.Empty(t, p.FullName)
	assert.Equal(t, profile.StepBackground, p.CurrentStep)
	assert.Equal(t, 5, p.Revision)
	assert.Equal(t, "Kuala Lumpur", p.CityState)
}

func TestRestoreSession_ClampsStoredStep(t *testing.T) {
	p := profile.Defaults()
	p.CurrentStep = 0
	assert.Equal(t, profile.StepBackground, RestoreSession("s1", p).Get().CurrentStep)
}

func TestSessionLocks_ReleasesEntries(t *testing.T) {
	l := newSessionLocks()
	unlock := l.lock("a")
	assert.Len(t, l.locks, 1)
	unlock()
	assert.Empty(t, l.locks)
}
