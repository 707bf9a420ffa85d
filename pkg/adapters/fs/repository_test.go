package fs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/personakit/personakit/pkg/adapters/fs"
	"github.com/personakit/personakit/pkg/core"
	"github.com/personakit/personakit/pkg/git"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRepo creates a gitless repository whose document lives in a fresh
// temp directory. It returns the repository and the document path.
func setupRepo(t *testing.T, name string, opts ...func(*fs.Config)) (*fs.Repository, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "store", name)
	cfg := fs.Config{
		Path:     path,
		AutoInit: true,
		Gitless:  true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	repo := fs.NewRepository(cfg)
	require.NoError(t, repo.Initialize(context.Background()))
	return repo, path
}

func seedService(t *testing.T, repo core.Repository) *core.Service {
	t.Helper()
	ctx := context.Background()

	svc := core.NewService(repo, nil)
	svc.Reload(ctx)

	_, err := svc.CreateProfile(ctx, "Sales", "shoe store", core.TypeSales)
	require.NoError(t, err)
	_, err = svc.UpdateVersionContent(ctx, "Sales", 1, map[string]any{
		"system_prompt": `Answer "politely" <always>`,
		"instructions":  []string{"Greet"},
	})
	require.NoError(t, err)
	_, err = svc.AddKnowledge(ctx, "Sales", 1, "hours", "9-6")
	require.NoError(t, err)
	_, err = svc.CreateVersion(ctx, "Sales", 0)
	require.NoError(t, err)
	_, err = svc.AddActiveProfile(ctx, "Sales", 1)
	require.NoError(t, err)
	return svc
}

func TestInitialize(t *testing.T) {
	t.Run("Creates Directory if Missing", func(t *testing.T) {
		_, path := setupRepo(t, "profiles.json")
		info, err := os.Stat(filepath.Dir(path))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("Inits Git Repo if AutoInit=true", func(t *testing.T) {
		if !git.IsInstalled() {
			t.Skip("git not installed")
		}
		_, path := setupRepo(t, "profiles.json", func(c *fs.Config) { c.Gitless = false })

		_, err := os.Stat(filepath.Join(filepath.Dir(path), ".git"))
		assert.NoError(t, err)

		ignore, err := os.ReadFile(filepath.Join(filepath.Dir(path), ".gitignore"))
		require.NoError(t, err)
		assert.Contains(t, string(ignore), git.LockFile)
	})

	t.Run("Fails Without AutoInit Outside Git", func(t *testing.T) {
		if !git.IsInstalled() {
			t.Skip("git not installed")
		}
		repo := fs.NewRepository(fs.Config{
			Path:    filepath.Join(t.TempDir(), "profiles.json"),
			Gitless: false,
		})
		assert.Error(t, repo.Initialize(context.Background()))
	})
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing File Yields Nil", func(t *testing.T) {
		repo, _ := setupRepo(t, "profiles.json")
		doc, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Nil(t, doc)
	})

	t.Run("Empty File Yields Nil", func(t *testing.T) {
		repo, path := setupRepo(t, "profiles.json")
		require.NoError(t, os.WriteFile(path, []byte("  \n"), 0644))
		doc, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Nil(t, doc)
	})

	t.Run("Corrupt File Errors And Service Starts Empty", func(t *testing.T) {
		repo, path := setupRepo(t, "profiles.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

		_, err := repo.Load(ctx)
		assert.Error(t, err)

		svc := core.NewService(repo, nil)
		svc.Reload(ctx)
		assert.Empty(t, svc.Profiles())
	})
}

func TestLoadZonelessTimestamps(t *testing.T) {
	ctx := context.Background()
	repo, path := setupRepo(t, "bot_profiles.json")

	data, err := os.ReadFile(filepath.Join("testdata", "legacy_profiles.json"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	svc := core.NewService(repo, nil)
	svc.Reload(ctx)

	p, ok := svc.Profile("Ventas")
	require.True(t, ok)
	assert.Equal(t, 2, p.ActiveVersion)
	assert.Equal(t, "9-18", p.Versions[2].KnowledgeBase["horario"].Value)
	assert.True(t, time.Date(2024, 5, 1, 10, 20, 30, 123456000, time.Local).Equal(p.CreatedAt.Time))
	active, ok := svc.ActiveProfile()
	require.True(t, ok)
	assert.Equal(t, "Ventas", active.Name)

	t.Run("Mutation Keeps Existing Profiles", func(t *testing.T) {
		_, err := svc.CreateProfile(ctx, "X", "", core.TypeGeneral)
		require.NoError(t, err)

		reloaded := core.NewService(fs.NewRepository(fs.Config{Path: path, Gitless: true}), nil)
		reloaded.Reload(ctx)

		got, ok := reloaded.Profile("Ventas")
		require.True(t, ok)
		assert.Equal(t, []int{1, 2}, got.VersionNumbers())
		assert.True(t, p.CreatedAt.Equal(got.CreatedAt.Time))
		assert.Equal(t, 2, reloaded.Stats().TotalProfiles)
	})
}

func TestSaveRoundTrip(t *testing.T) {
	ctx := context.Background()

	for _, name := range []string{"profiles.json", "profiles.yaml"} {
		t.Run(name, func(t *testing.T) {
			repo, path := setupRepo(t, name)
			svc := seedService(t, repo)

			reloaded := core.NewService(fs.NewRepository(fs.Config{Path: path, Gitless: true}), nil)
			reloaded.Reload(ctx)

			p, ok := reloaded.Profile("Sales")
			require.True(t, ok)
			assert.Equal(t, []int{1, 2}, p.VersionNumbers())
			assert.Equal(t, `Answer "politely" <always>`, p.Versions[2].SystemPrompt)
			assert.Equal(t, "9-6", p.Versions[2].KnowledgeBase["hours"].Value)
			assert.Equal(t, []string{"Sales"}, activeNames(reloaded.ActiveProfiles()))
			assert.Equal(t, svc.RenderMultiContext(), reloaded.RenderMultiContext())

			original, _ := svc.Profile("Sales")
			assert.True(t, original.CreatedAt.Equal(p.CreatedAt.Time))
			assert.Equal(t, original.ID, p.ID)
		})
	}
}

func TestSaveWritesStringVersionKeys(t *testing.T) {
	repo, path := setupRepo(t, "profiles.json")
	seedService(t, repo)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"1": {`)
	assert.Contains(t, string(raw), `"total_profiles": 1`)
	assert.Contains(t, string(raw), `<always>`)
}

func TestReadOnly(t *testing.T) {
	repo, path := setupRepo(t, "profiles.json", func(c *fs.Config) { c.ReadOnly = true })

	err := repo.Save(context.Background(), core.NewDocument(time.Now()))
	assert.True(t, errors.Is(err, core.ErrReadOnly))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestVersionedSaveCommits(t *testing.T) {
	if !git.IsInstalled() {
		t.Skip("git not installed")
	}
	ctx := context.Background()
	repo, _ := setupRepo(t, "profiles.json", func(c *fs.Config) { c.Gitless = false })

	svc := core.NewService(repo, nil)
	svc.Reload(ctx)

	_, err := svc.CreateProfile(ctx, "Sales", "", "")
	require.NoError(t, err)
	reasoned := context.WithValue(ctx, core.ChangeReasonKey, "docs: hours for the shop")
	_, err = svc.AddKnowledge(reasoned, "Sales", 1, "hours", "9-6")
	require.NoError(t, err)

	history, err := repo.History(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"docs: hours for the shop", "feat(profiles): create Sales"}, history)
}

func TestState(t *testing.T) {
	repo, path := setupRepo(t, "profiles.yml")
	seedService(t, repo)

	state, ok := repo.State().(fs.RepositoryState)
	require.True(t, ok)
	assert.Equal(t, path, state.Path)
	assert.Equal(t, "yaml", state.Format)
	assert.True(t, state.Gitless)
	assert.Equal(t, 5, state.Saves)
	assert.NotNil(t, state.LastSave)
	assert.Equal(t, "fs-repository", repo.ComponentType())
}

func activeNames(refs []core.ActiveProfileRef) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.Name)
	}
	return out
}
