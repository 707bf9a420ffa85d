package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/personakit/personakit/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateVersion(t *testing.T) {
	ctx := context.Background()

	t.Run("Copies Active Version Deeply", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, _ = svc.CreateProfile(ctx, "A", "", "")
		_, _ = svc.UpdateVersionContent(ctx, "A", 1, map[string]any{
			"system_prompt": "be helpful",
			"instructions":  []string{"greet"},
		})
		_, _ = svc.AddKnowledge(ctx, "A", 1, "hours", "9-6")

		n, err := svc.CreateVersion(ctx, "A", 0)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		_, _ = svc.UpdateVersionContent(ctx, "A", 2, map[string]any{"instructions": []string{"greet", "upsell"}})
		_, _ = svc.AddKnowledge(ctx, "A", 2, "hours", "10-7")

		v1, _ := svc.Version("A", 1)
		v2, _ := svc.Version("A", 2)
		assert.Equal(t, "be helpful", v2.SystemPrompt)
		assert.Equal(t, []string{"greet"}, v1.Instructions)
		assert.Equal(t, "9-6", v1.KnowledgeBase["hours"].Value)
		assert.Equal(t, "10-7", v2.KnowledgeBase["hours"].Value)
		assert.Equal(t, 2, v2.Version)
	})

	t.Run("Copies Named Base", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, _ = svc.CreateProfile(ctx, "A", "", "")
		_, _ = svc.CreateVersion(ctx, "A", 0)
		_, _ = svc.UpdateVersionContent(ctx, "A", 2, map[string]any{"context": "from two"})

		n, err := svc.CreateVersion(ctx, "A", 2)
		require.NoError(t, err)
		v, _ := svc.Version("A", n)
		assert.Equal(t, "from two", v.Context)
	})

	t.Run("Invalid Base Falls Back To Active", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, _ = svc.CreateProfile(ctx, "A", "", "")
		_, _ = svc.UpdateVersionContent(ctx, "A", 1, map[string]any{"context": "active"})

		n, err := svc.CreateVersion(ctx, "A", 42)
		require.NoError(t, err)
		v, _ := svc.Version("A", n)
		assert.Equal(t, "active", v.Context)
	})

	t.Run("Never Reuses Numbers", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, _ = svc.CreateProfile(ctx, "A", "", "")
		_, _ = svc.CreateVersion(ctx, "A", 0) // 2
		_, _ = svc.CreateVersion(ctx, "A", 0) // 3

		ok, err := svc.DeleteVersion(ctx, "A", 2)
		require.NoError(t, err)
		require.True(t, ok)

		n, err := svc.CreateVersion(ctx, "A", 0)
		require.NoError(t, err)
		assert.Equal(t, 4, n)

		p, _ := svc.Profile("A")
		assert.Equal(t, []int{1, 3, 4}, p.VersionNumbers())
	})

	t.Run("Missing Profile", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.CreateVersion(ctx, "ghost", 0)
		assert.True(t, errors.Is(err, core.ErrProfileNotFound))
	})
}

func TestActivateVersion(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	_, _ = svc.CreateProfile(ctx, "A", "", "")
	_, _ = svc.CreateVersion(ctx, "A", 0)

	ok, err := svc.ActivateVersion(ctx, "A", 2)
	require.NoError(t, err)
	assert.True(t, ok)
	p, _ := svc.Profile("A")
	assert.Equal(t, 2, p.ActiveVersion)

	ok, err = svc.ActivateVersion(ctx, "A", 9)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.ActivateVersion(ctx, "ghost", 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteVersion(t *testing.T) {
	ctx := context.Background()

	t.Run("Refuses Only Version", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, _ = svc.CreateProfile(ctx, "A", "", "")
		// Version 1 is both active and the only one; either rule refuses it.
		_, err := svc.DeleteVersion(ctx, "A", 1)
		assert.True(t, errors.Is(err, core.ErrInvalidOperation))
	})

	t.Run("Refuses Active Version", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, _ = svc.CreateProfile(ctx, "A", "", "")
		_, _ = svc.CreateVersion(ctx, "A", 0)
		_, _ = svc.ActivateVersion(ctx, "A", 2)

		_, err := svc.DeleteVersion(ctx, "A", 2)
		assert.True(t, errors.Is(err, core.ErrInvalidOperation))

		p, _ := svc.Profile("A")
		assert.Len(t, p.Versions, 2)
	})

	t.Run("Removes Exactly One Key", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, _ = svc.CreateProfile(ctx, "A", "", "")
		_, _ = svc.CreateVersion(ctx, "A", 0)
		_, _ = svc.CreateVersion(ctx, "A", 0)

		ok, err := svc.DeleteVersion(ctx, "A", 3)
		require.NoError(t, err)
		assert.True(t, ok)

		p, _ := svc.Profile("A")
		assert.Equal(t, []int{1, 2}, p.VersionNumbers())
	})

	t.Run("Unknown Version Is Soft Failure", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, _ = svc.CreateProfile(ctx, "A", "", "")
		_, _ = svc.CreateVersion(ctx, "A", 0)

		ok, err := svc.DeleteVersion(ctx, "A", 7)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestUpdateVersionContent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	_, _ = svc.CreateProfile(ctx, "A", "", "")

	ok, err := svc.UpdateVersionContent(ctx, "A", 1, map[string]any{
		"system_prompt": "You sell shoes.",
		"tone":          core.ToneFriendly,
		"examples":      []string{"Hi!"},
		"unknown_field": "ignored",
		"version":       99,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	v, _ := svc.Version("A", 1)
	assert.Equal(t, "You sell shoes.", v.SystemPrompt)
	assert.Equal(t, core.ToneFriendly, v.Tone)
	assert.Equal(t, []string{"Hi!"}, v.Examples)
	assert.Equal(t, 1, v.Version)

	_, err = svc.UpdateVersionContent(ctx, "A", 1, map[string]any{"instructions": 12})
	assert.Error(t, err)

	ok, err = svc.UpdateVersionContent(ctx, "A", 5, map[string]any{"context": "x"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDocuments(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	_, _ = svc.CreateProfile(ctx, "A", "", "")

	ok, err := svc.AddDocument(ctx, "A", 1, "FAQ", "Ask about returns", "")
	require.NoError(t, err)
	require.True(t, ok)
	_, _ = svc.AddDocument(ctx, "A", 1, "Policy", "30 days", "policy")

	v, _ := svc.Version("A", 1)
	require.Len(t, v.Documents, 2)
	assert.Equal(t, core.DefaultDocType, v.Documents[0].Type)
	assert.False(t, v.Documents[0].AddedAt.IsZero())

	ok, err = svc.RemoveDocument(ctx, "A", 1, 5)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.RemoveDocument(ctx, "A", 1, 0)
	require.NoError(t, err)
	assert.True(t, ok)

	v, _ = svc.Version("A", 1)
	require.Len(t, v.Documents, 1)
	assert.Equal(t, "Policy", v.Documents[0].Name)
}

func TestKnowledgeBase(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	_, _ = svc.CreateProfile(ctx, "A", "", "")

	_, _ = svc.AddKnowledge(ctx, "A", 1, "hours", "9-6")
	first, _ := svc.Version("A", 1)

	_, _ = svc.AddKnowledge(ctx, "A", 1, "hours", "10-7")
	second, _ := svc.Version("A", 1)

	require.Len(t, second.KnowledgeBase, 1)
	assert.Equal(t, "10-7", second.KnowledgeBase["hours"].Value)
	assert.False(t, second.KnowledgeBase["hours"].AddedAt.Before(first.KnowledgeBase["hours"].AddedAt.Time))

	ok, err := svc.RemoveKnowledge(ctx, "A", 1, "hours")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = svc.RemoveKnowledge(ctx, "A", 1, "hours")
	assert.False(t, ok)

	ok, _ = svc.AddKnowledge(ctx, "A", 3, "k", "v")
	assert.False(t, ok)
}
