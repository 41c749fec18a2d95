package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/monochromegane/go-gitignore"

	"github.com/jadenpxrk/fastats/internal/fasta"
)

const stdinName = "stdin"

// resolveSources turns command-line inputs into sources, in argument order.
// No inputs means standard input.
func (a *app) resolveSources(inputs []string) []Source {
	if len(inputs) == 0 {
		return []Source{a.stdinSource()}
	}

	var sources []Source
	for _, input := range inputs {
		switch {
		case input == "-":
			sources = append(sources, a.stdinSource())
		case isGitURL(input):
			sources = append(sources, a.gitSources(input)...)
		case isWebURL(input):
			sources = append(sources, a.webSource(input))
		default:
			sources = append(sources, a.localSources(input)...)
		}
	}
	return sources
}

func (a *app) stdinSource() Source {
	return Source{
		Name: stdinName,
		Open: func() (io.ReadCloser, error) {
			return fasta.Decompress(a.stdin)
		},
	}
}

func fileSource(name, path string) Source {
	return Source{
		Name: name,
		Open: func() (io.ReadCloser, error) {
			return fasta.Open(path)
		},
	}
}

// localSources handles a single local path. A file is always a source,
// whatever its name; a directory expands to the sequence files inside it.
// Paths that cannot be stat'ed are left for Open to report.
func (a *app) localSources(path string) []Source {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return []Source{fileSource(path, path)}
	}

	a.log.Debug("searching directory", "path", path)
	files, err := walkDirectory(path, a.opts, a.formats, a.log)
	if err != nil {
		return []Source{{Name: path, Err: err}}
	}
	if len(files) == 0 {
		a.log.Warn("no sequence files found in directory", "path", path)
	}
	sources := make([]Source, 0, len(files))
	for _, f := range files {
		sources = append(sources, fileSource(f, f))
	}
	return sources
}

// parsePatterns splits a comma-separated string of patterns into a slice.
func parsePatterns(patterns string) []string {
	if patterns == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(patterns, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// matchesAnyPattern checks if the given name matches any of the provided glob patterns.
func matchesAnyPattern(name string, patterns []string) (bool, error) {
	for _, pattern := range patterns {
		matched, err := filepath.Match(pattern, name)
		if err != nil {
			return false, fmt.Errorf("invalid glob pattern '%s': %w", pattern, err)
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

// walkDirectory lists the sequence files under root in lexical order,
// respecting the hidden, .gitignore, depth and include/exclude filters.
// A file is kept when it matches an include pattern or, with no include
// patterns, when its name is a known sequence format.
func walkDirectory(root string, opts Options, formats *FormatData, log *reporter) ([]string, error) {
	var files []string
	var ignoreMatcher gitignore.IgnoreMatcher

	if !opts.NoIgnore {
		gitIgnorePath := filepath.Join(root, ".gitignore")
		if _, err := os.Stat(gitIgnorePath); err == nil {
			matcher, err := gitignore.NewGitIgnore(gitIgnorePath)
			if err != nil {
				log.Warn("could not parse .gitignore", "path", gitIgnorePath, "err", err)
			} else {
				ignoreMatcher = matcher
			}
		}
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.Warn("error accessing path", "path", path, "err", err)
			return nil
		}
		if path == root {
			return nil
		}

		baseName := d.Name()
		isDir := d.IsDir()

		if !opts.ShowHidden && isHidden(baseName) {
			if isDir {
				return fs.SkipDir
			}
			return nil
		}

		// the matcher resolves paths against the .gitignore's directory itself
		if ignoreMatcher != nil && ignoreMatcher.Match(path, isDir) {
			log.Debug("ignored by .gitignore", "path", path)
			if isDir {
				return fs.SkipDir
			}
			return nil
		}

		excluded, err := matchesAnyPattern(baseName, opts.Exclude)
		if err != nil {
			return err
		}

		if isDir {
			relPath, _ := filepath.Rel(root, path)
			if excluded {
				return fs.SkipDir
			}
			if opts.MaxDepth > 0 && countPathSeparators(relPath)+1 >= opts.MaxDepth {
				return fs.SkipDir
			}
			return nil
		}
		if excluded || (!d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0) {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(path)
			if err != nil || !target.Mode().IsRegular() {
				log.Debug("skipping symlink to non-regular file", "path", path)
				return nil
			}
		}

		keep := false
		if len(opts.Include) > 0 {
			keep, err = matchesAnyPattern(baseName, opts.Include)
			if err != nil {
				return err
			}
		} else {
			_, keep = formats.FormatForFile(path)
		}
		if keep {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory %s: %w", root, err)
	}
	return files, nil
}

// isHidden checks if a file name is hidden (starts with '.').
func isHidden(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	baseName := filepath.Base(name)
	return len(baseName) > 0 && baseName[0] == '.'
}

// countPathSeparators counts the number of path separators in a relative path.
func countPathSeparators(path string) int {
	path = filepath.ToSlash(path)
	if path == "." || path == "" {
		return 0
	}
	return strings.Count(strings.Trim(path, "/"), "/")
}
