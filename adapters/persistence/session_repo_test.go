package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/skillpath/internal/domain/profile"
)

func TestMemorySessionRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepo()

	_, err := repo.Load(ctx, "s1")
	assert.ErrorIs(t, err, profile.ErrSessionNotFound)

	p := profile.Defaults()
	p.FullName = "Aisha"
	require.NoError(t, repo.Save(ctx, "s1", &p))

	// Mutating the caller's copy must not leak into the store.
	p.FullName = "Changed"

	got, err := repo.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Aisha", got.FullName)

	require.NoError(t, repo.Delete(ctx, "s1"))
	_, err = repo.Load(ctx, "s1")
	assert.ErrorIs(t, err, profile.ErrSessionNotFound)
}
