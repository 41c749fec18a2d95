package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// isGitURL checks if the input string looks like a Git repository URL.
// Prioritizes .git suffix or git@ prefix.
func isGitURL(input string) bool {
	return strings.HasSuffix(input, ".git") ||
		strings.HasPrefix(input, "git@")
}

// cloneGitRepo clones a Git repository URL into a temporary directory.
// It returns the path to the temporary directory or an error.
func cloneGitRepo(url string) (string, error) {
	tempDir, err := os.MkdirTemp("", "fastats-git-")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary directory: %w", err)
	}

	_, err = git.PlainClone(tempDir, false, &git.CloneOptions{
		URL:           url,
		ReferenceName: plumbing.HEAD,
		SingleBranch:  true,
		Depth:         1,
	})
	if err != nil {
		_ = os.RemoveAll(tempDir)
		return "", fmt.Errorf("failed to clone repository '%s': %w", url, err)
	}
	return tempDir, nil
}

// gitSources clones url and expands it like a local directory. Rows are
// named after the URL and the file's path inside the repository.
func (a *app) gitSources(url string) []Source {
	a.log.Info("cloning git repository", "url", url)
	dir, err := cloneGitRepo(url)
	if err != nil {
		return []Source{{Name: url, Err: err}}
	}
	a.tempDirs = append(a.tempDirs, dir)
	a.log.Debug("cloned git repository", "url", url, "path", dir)

	files, err := walkDirectory(dir, a.opts, a.formats, a.log)
	if err != nil {
		return []Source{{Name: url, Err: err}}
	}
	if len(files) == 0 {
		a.log.Warn("no sequence files found in repository", "url", url)
	}
	sources := make([]Source, 0, len(files))
	for _, f := range files {
		sources = append(sources, fileSource(repoFileName(url, dir, f), f))
	}
	return sources
}

// repoFileName names a file inside a clone as <url>/<path in repository>.
func repoFileName(url, cloneDir, path string) string {
	rel, err := filepath.Rel(cloneDir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return strings.TrimSuffix(url, "/") + "/" + filepath.ToSlash(rel)
}
