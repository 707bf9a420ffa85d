package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Lock(t *testing.T) {
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, nil)

	unlock, err := client.Lock(context.Background())
	require.NoError(t, err)

	lockPath := filepath.Join(tmpDir, LockFile)
	_, err = os.Stat(lockPath)
	assert.NoError(t, err, "lock file not created")

	t.Run("Times Out While Held", func(t *testing.T) {
		other := NewClient(tmpDir, nil)
		other.LockTimeout = 30 * time.Millisecond

		_, err := other.Lock(context.Background())
		assert.True(t, errors.Is(err, ErrLockTimeout))
	})

	t.Run("Honors Cancellation", func(t *testing.T) {
		other := NewClient(tmpDir, nil)
		other.LockTimeout = 0

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()
		_, err := other.Lock(ctx)
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})

	unlock()

	_, err = os.Stat(lockPath)
	assert.True(t, os.IsNotExist(err), "lock file not removed after unlock")
}

func TestClient_InitAndCommit(t *testing.T) {
	if !IsInstalled() {
		t.Skip("git not installed")
	}

	tmpDir := t.TempDir()
	client := NewClient(tmpDir, nil)

	require.NoError(t, client.Init())
	assert.True(t, client.IsRepo())
	_, err := os.Stat(filepath.Join(tmpDir, ".git"))
	require.NoError(t, err)

	file := filepath.Join(tmpDir, "profiles.json")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0644))

	changed, err := client.HasChanges("profiles.json")
	require.NoError(t, err)
	assert.True(t, changed)

	require.NoError(t, client.Add("profiles.json"))
	require.NoError(t, client.Commit("feat(profiles): seed"))

	changed, err = client.HasChanges("profiles.json")
	require.NoError(t, err)
	assert.False(t, changed)

	subjects, err := client.Log(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"feat(profiles): seed"}, subjects)
}

func TestClient_IsRepoOutsideWorkTree(t *testing.T) {
	if !IsInstalled() {
		t.Skip("git not installed")
	}
	client := NewClient(t.TempDir(), nil)
	assert.False(t, client.IsRepo())
}
