package export

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/crest-build/crest/internal/msg"
	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
)

var sourceShortcuts = map[string]string{
	"gh:": "https://github.com/",
	"gl:": "https://gitlab.com/",
	"bb:": "https://bitbucket.org/",
	"sr:": "https://sr.ht/",
	"cb:": "https://codeberg.org/",
}

const gitPrefix = "git:"

var errIllegalSource = errors.New("empty or illegal descriptor source")

// Fetch resolves a descriptor source and loads the descriptor it points
// at. A source is a local file or directory, a `git:` URL, or a hosting
// shortcut (e.g. gh:someone/libfoo). Remote sources are cloned into
// cacheDir and reused on later fetches.
func Fetch(source, cacheDir string) (*Descriptor, error) {
	if source == "" {
		return nil, errIllegalSource
	}

	// e.g. git:https://example.com/libfoo.git@main#v2.0.0
	if strings.HasPrefix(source, gitPrefix) {
		return fetchGit(source[len(gitPrefix):], cacheDir)
	}

	// e.g. gh:someone/libfoo
	for shortcut, base := range sourceShortcuts {
		if strings.HasPrefix(source, shortcut) {
			return fetchGit(base+source[len(shortcut):], cacheDir)
		}
	}

	if isURL(source) {
		return nil, fmt.Errorf("source %q: only git and local sources are supported", source)
	}

	return Load(source)
}

func isURL(maybeURL string) bool {
	u, err := url.Parse(maybeURL)
	return err == nil && u.Scheme != "" && u.Host != ""
}

type gitSource struct {
	cleanURL    string
	branch      string
	commitOrTag string
}

// someone/libfoo@main#v2.0.0
// someone/libfoo@feature-branch#12345abc
// someone/libfoo#12345abc
func parseGitSource(rawURL string) (res gitSource) {
	parts := strings.SplitN(rawURL, "#", 2)
	baseURL := parts[0]
	if len(parts) == 2 {
		res.commitOrTag = parts[1]
	}

	parts = strings.SplitN(baseURL, "@", 2)
	res.cleanURL = parts[0]
	if len(parts) == 2 {
		res.branch = parts[1]
	}

	if !strings.HasSuffix(res.cleanURL, ".git") {
		res.cleanURL += ".git"
	}

	return
}

// cloneDir derives a stable cache path for a source spec.
func cloneDir(cacheDir, rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	base := strings.TrimSuffix(filepath.Base(parseGitSource(rawURL).cleanURL), ".git")
	return filepath.Join(cacheDir, base+"-"+hex.EncodeToString(sum[:6]))
}

func fetchGit(rawURL, cacheDir string) (*Descriptor, error) {
	dir := cloneDir(cacheDir, rawURL)
	if stat, err := os.Stat(dir); err == nil && stat.IsDir() {
		return Load(dir)
	}
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return nil, err
	}
	if err := cloneGitRepo(rawURL, dir); err != nil {
		return nil, fmt.Errorf("failed to fetch descriptor from %q: %w", rawURL, err)
	}
	return Load(dir)
}

// cloneGitRepo clones a git remote into the specified directory.
func cloneGitRepo(rawURL, toWhere string) error {
	src := parseGitSource(rawURL)

	cloneOptions := &git.CloneOptions{
		URL:      src.cleanURL,
		Progress: &msg.IndentWriter{Indent: "    ", W: os.Stdout},
	}

	if src.commitOrTag == "" {
		cloneOptions.Depth = 1 // shallow clone of the latest commit is enough
	}
	if src.branch != "" {
		cloneOptions.ReferenceName = plumbing.NewBranchReferenceName(src.branch)
		cloneOptions.SingleBranch = true
	}

	repo, err := git.PlainClone(toWhere, cloneOptions)
	if err != nil {
		return err
	}

	if src.commitOrTag != "" {
		w, err := repo.Worktree()
		if err != nil {
			return fmt.Errorf("could not get worktree: %w", err)
		}

		hash, err := repo.ResolveRevision(plumbing.Revision(src.commitOrTag))
		if err != nil {
			return fmt.Errorf("could not resolve revision `%s`: %w", src.commitOrTag, err)
		}

		if err := w.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
			return fmt.Errorf("failed to checkout `%s`: %w", src.commitOrTag, err)
		}
	}

	return nil
}
