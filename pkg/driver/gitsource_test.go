package driver_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"grizzly/interpreter-go/pkg/driver"
)

type gitFixture struct {
	dir      string
	repo     *git.Repository
	worktree *git.Worktree
}

func newGitFixture(t *testing.T) *gitFixture {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	worktree, err := repo.Worktree()
	require.NoError(t, err)
	return &gitFixture{dir: dir, repo: repo, worktree: worktree}
}

func (f *gitFixture) commit(t *testing.T, rel, contents, message string) string {
	t.Helper()
	writeFile(t, filepath.Join(f.dir, rel), contents)
	_, err := f.worktree.Add(filepath.ToSlash(rel))
	require.NoError(t, err)
	hash, err := f.worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Grizzly Tests",
			Email: "tests@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)
	return hash.String()
}

func TestLoadGitSourceResolvesRevisions(t *testing.T) {
	fx := newGitFixture(t)
	first := fx.commit(t, "scripts/clean.grz", "def transform(INPUT):\n    return {\"v\": 1}", "v1")
	_, err := fx.repo.CreateTag("v1.0.0", plumbing.NewHash(first), nil)
	require.NoError(t, err)
	second := fx.commit(t, "scripts/clean.grz", "def transform(INPUT):\n    return {\"v\": 2}", "v2")

	ctx := context.Background()
	head, err := driver.LoadGitSource(ctx, driver.GitSource{Repo: fx.dir, Path: "scripts/clean.grz"})
	require.NoError(t, err)
	require.Equal(t, second, head.Commit)
	require.Contains(t, head.Source, `{"v": 2}`)

	for _, rev := range []string{first, "v1.0.0", "HEAD~1"} {
		old, err := driver.LoadGitSource(ctx, driver.GitSource{Repo: fx.dir, Revision: rev, Path: "./scripts/clean.grz"})
		require.NoError(t, err, rev)
		require.Equal(t, first, old.Commit, rev)
		require.Contains(t, old.Source, `{"v": 1}`)
	}
}

func TestLoadGitSourceErrors(t *testing.T) {
	fx := newGitFixture(t)
	fx.commit(t, "a.grz", "def transform(INPUT):\n    return INPUT", "init")
	ctx := context.Background()

	cases := map[string]struct {
		src  driver.GitSource
		want string
	}{
		"no repo":      {driver.GitSource{Path: "a.grz"}, "repository must be provided"},
		"no path":      {driver.GitSource{Repo: fx.dir}, "script path must be provided"},
		"escapes repo": {driver.GitSource{Repo: fx.dir, Path: "../a.grz"}, "must stay inside the repository"},
		"bad revision": {driver.GitSource{Repo: fx.dir, Revision: "nope", Path: "a.grz"}, "resolve revision nope"},
		"missing file": {driver.GitSource{Repo: fx.dir, Path: "b.grz"}, "b.grz at"},
		"not a repo":   {driver.GitSource{Repo: t.TempDir(), Path: "a.grz"}, "git: open"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := driver.LoadGitSource(ctx, tc.src)
			require.ErrorContains(t, err, tc.want)
		})
	}
}

func TestConfigLoadScriptSource(t *testing.T) {
	project := t.TempDir()
	fx := newGitFixture(t)
	fx.commit(t, "shared/enrich.grz", "def enrich(INPUT):\n    return INPUT", "init")

	writeFile(t, filepath.Join(project, "local.grz"), "def transform(INPUT):\n    return {}")
	rel, err := filepath.Rel(project, fx.dir)
	require.NoError(t, err)
	cfgPath := writeFile(t, filepath.Join(project, driver.ConfigFileName), `
scripts:
  local: local.grz
  enrich:
    git: `+filepath.ToSlash(rel)+`
    path: shared/enrich.grz
`)
	cfg, err := driver.LoadConfig(cfgPath)
	require.NoError(t, err)

	local, _ := cfg.Script("local")
	src, err := cfg.LoadScriptSource(context.Background(), local)
	require.NoError(t, err)
	require.Contains(t, src, "def transform")

	enrich, _ := cfg.Script("enrich")
	src, err = cfg.LoadScriptSource(context.Background(), enrich)
	require.NoError(t, err)
	require.Contains(t, src, "def enrich")

	require.NoError(t, os.Remove(filepath.Join(project, "local.grz")))
	_, err = cfg.LoadScriptSource(context.Background(), local)
	require.ErrorIs(t, err, os.ErrNotExist)
}
