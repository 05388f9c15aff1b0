package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
)

// GitSource names a script stored in a git repository. Repo is a local
// working copy or a clone URL; Revision is anything git rev-parse accepts,
// and defaults to HEAD.
type GitSource struct {
	Repo     string
	Revision string
	Path     string
}

func (s GitSource) String() string {
	rev := s.Revision
	if rev == "" {
		rev = "HEAD"
	}
	return fmt.Sprintf("%s@%s:%s", s.Repo, rev, s.Path)
}

// GitScript is a script read out of a repository, pinned to the commit it
// was read from.
type GitScript struct {
	Source string
	Commit string
}

// LoadGitSource reads Path at Revision. Local repositories are opened in
// place; anything else is cloned into memory.
func LoadGitSource(ctx context.Context, src GitSource) (*GitScript, error) {
	if strings.TrimSpace(src.Repo) == "" {
		return nil, errors.New("git: repository must be provided")
	}
	rel, err := cleanRepoPath(src.Path)
	if err != nil {
		return nil, err
	}
	repo, err := openRepository(ctx, src.Repo)
	if err != nil {
		return nil, err
	}
	revision := gitRevision(src.Revision)
	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		return nil, fmt.Errorf("git: resolve revision %s: %w", revision, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("git: commit %s: %w", hash, err)
	}
	file, err := commit.File(rel)
	if err != nil {
		return nil, fmt.Errorf("git: %s at %s: %w", rel, hash.String()[:12], err)
	}
	contents, err := file.Contents()
	if err != nil {
		return nil, fmt.Errorf("git: read %s: %w", rel, err)
	}
	return &GitScript{Source: contents, Commit: hash.String()}, nil
}

// LoadScriptSource reads a configured script, from git when the script
// names a repository and from disk otherwise. Relative repositories and
// paths resolve against the config directory.
func (c *Config) LoadScriptSource(ctx context.Context, spec *ScriptSpec) (string, error) {
	if spec.Git == "" {
		data, err := os.ReadFile(c.Resolve(spec.Path))
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	repo := spec.Git
	if isLocalRepo(c.Resolve(repo)) {
		repo = c.Resolve(repo)
	}
	script, err := LoadGitSource(ctx, GitSource{Repo: repo, Revision: spec.Rev, Path: spec.Path})
	if err != nil {
		return "", fmt.Errorf("scripts.%s: %w", spec.Name, err)
	}
	return script.Source, nil
}

func openRepository(ctx context.Context, repo string) (*git.Repository, error) {
	if isLocalRepo(repo) {
		r, err := git.PlainOpenWithOptions(repo, &git.PlainOpenOptions{DetectDotGit: true})
		if err != nil {
			return nil, fmt.Errorf("git: open %s: %w", repo, err)
		}
		return r, nil
	}
	r, err := git.CloneContext(ctx, memory.NewStorage(), nil, &git.CloneOptions{
		URL:  repo,
		Tags: git.AllTags,
	})
	if err != nil {
		return nil, fmt.Errorf("git: clone %s: %w", repo, err)
	}
	return r, nil
}

func isLocalRepo(repo string) bool {
	if strings.Contains(repo, "://") || strings.HasPrefix(repo, "git@") {
		return false
	}
	info, err := os.Stat(repo)
	return err == nil && info.IsDir()
}

func gitRevision(rev string) plumbing.Revision {
	rev = strings.TrimSpace(rev)
	if rev == "" {
		return plumbing.Revision(plumbing.HEAD)
	}
	return plumbing.Revision(rev)
}

// cleanRepoPath normalises a script path to the slash-separated form git
// trees use and rejects paths that leave the repository.
func cleanRepoPath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", errors.New("git: script path must be provided")
	}
	clean := path.Clean(filepath.ToSlash(p))
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("git: script path %q must stay inside the repository", p)
	}
	return clean, nil
}
