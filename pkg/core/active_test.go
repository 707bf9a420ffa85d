package core_test

import (
	"context"
	"testing"

	"github.com/personakit/personakit/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeNames(refs []core.ActiveProfileRef) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		out = append(out, ref.Name)
	}
	return out
}

func TestSetActiveProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("Legacy Slot Only When List Empty", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, _ = svc.CreateProfile(ctx, "A", "", "")

		ok, err := svc.SetActiveProfile(ctx, "A")
		require.NoError(t, err)
		assert.True(t, ok)

		p, found := svc.ActiveProfile()
		require.True(t, found)
		assert.Equal(t, "A", p.Name)
		assert.Empty(t, svc.ActiveProfiles())
	})

	t.Run("Resets Non Empty List", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, _ = svc.CreateProfile(ctx, "A", "", "")
		_, _ = svc.CreateProfile(ctx, "B", "", "")
		_, _ = svc.AddActiveProfile(ctx, "A", 1)

		_, err := svc.SetActiveProfile(ctx, "B")
		require.NoError(t, err)

		refs := svc.ActiveProfiles()
		require.Len(t, refs, 1)
		assert.Equal(t, "B", refs[0].Name)
		assert.Equal(t, 1, refs[0].Priority)
		assert.Equal(t, "B", *svc.Snapshot().ActiveProfile)
	})

	t.Run("Unknown Profile Is Soft Failure", func(t *testing.T) {
		svc, repo := newTestService(t)
		ok, err := svc.SetActiveProfile(ctx, "ghost")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, repo.saves)
	})
}

func TestAddActiveProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("Orders By Priority And Mirrors Head", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, _ = svc.CreateProfile(ctx, "A", "", "")
		_, _ = svc.CreateProfile(ctx, "B", "", "")

		_, err := svc.AddActiveProfile(ctx, "B", 2)
		require.NoError(t, err)
		_, err = svc.AddActiveProfile(ctx, "A", 1)
		require.NoError(t, err)

		assert.Equal(t, []string{"A", "B"}, activeNames(svc.ActiveProfiles()))
		assert.Equal(t, "A", *svc.Snapshot().ActiveProfile)
	})

	t.Run("Re Add Updates Priority In Place", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, _ = svc.CreateProfile(ctx, "A", "", "")
		_, _ = svc.CreateProfile(ctx, "B", "", "")
		_, _ = svc.AddActiveProfile(ctx, "A", 1)
		_, _ = svc.AddActiveProfile(ctx, "B", 2)

		first := svc.ActiveProfiles()[0].ActivatedAt

		_, err := svc.AddActiveProfile(ctx, "A", 5)
		require.NoError(t, err)

		refs := svc.ActiveProfiles()
		require.Len(t, refs, 2)
		assert.Equal(t, []string{"B", "A"}, activeNames(refs))
		assert.Equal(t, 5, refs[1].Priority)
		assert.Equal(t, first, refs[1].ActivatedAt)
		assert.Equal(t, "B", *svc.Snapshot().ActiveProfile)
	})

	t.Run("Equal Priorities Keep Insertion Order", func(t *testing.T) {
		svc, _ := newTestService(t)
		for _, n := range []string{"C", "A", "B"} {
			_, _ = svc.CreateProfile(ctx, n, "", "")
			_, _ = svc.AddActiveProfile(ctx, n, 1)
		}
		assert.Equal(t, []string{"C", "A", "B"}, activeNames(svc.ActiveProfiles()))
		assert.Equal(t, "C", *svc.Snapshot().ActiveProfile)
	})

	t.Run("Unknown Profile Is Soft Failure", func(t *testing.T) {
		svc, _ := newTestService(t)
		ok, err := svc.AddActiveProfile(ctx, "ghost", 1)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, svc.ActiveProfiles())
	})
}

func TestRemoveActiveProfile(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	_, _ = svc.CreateProfile(ctx, "A", "", "")
	_, _ = svc.CreateProfile(ctx, "B", "", "")
	_, _ = svc.AddActiveProfile(ctx, "A", 1)
	_, _ = svc.AddActiveProfile(ctx, "B", 2)

	ok, err := svc.RemoveActiveProfile(ctx, "A")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"B"}, activeNames(svc.ActiveProfiles()))
	assert.Equal(t, "B", *svc.Snapshot().ActiveProfile)

	_, found := svc.Profile("A")
	assert.True(t, found, "removal from the active set keeps the profile")

	ok, _ = svc.RemoveActiveProfile(ctx, "A")
	assert.False(t, ok)

	_, _ = svc.RemoveActiveProfile(ctx, "B")
	assert.Empty(t, svc.ActiveProfiles())
	assert.Nil(t, svc.Snapshot().ActiveProfile)
}

func TestSetProfilePriority(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	_, _ = svc.CreateProfile(ctx, "A", "", "")
	_, _ = svc.CreateProfile(ctx, "B", "", "")
	_, _ = svc.AddActiveProfile(ctx, "A", 1)
	_, _ = svc.AddActiveProfile(ctx, "B", 2)

	ok, err := svc.SetProfilePriority(ctx, "B", 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"B", "A"}, activeNames(svc.ActiveProfiles()))
	assert.Equal(t, "B", *svc.Snapshot().ActiveProfile)

	ok, err = svc.SetProfilePriority(ctx, "ghost", 3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClearActiveProfiles(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	_, _ = svc.CreateProfile(ctx, "A", "", "")
	_, _ = svc.AddActiveProfile(ctx, "A", 1)

	ok, err := svc.ClearActiveProfiles(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, svc.ActiveProfiles())
	_, found := svc.ActiveProfile()
	assert.False(t, found)
	assert.Empty(t, svc.Stats().ActiveProfile)
}
