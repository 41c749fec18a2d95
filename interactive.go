package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"

	"github.com/jadenpxrk/fastats/internal/fasta"
)

// runInteractiveFinder lists the sequence files and directories under root
// and lets the user pick inputs with a fuzzy finder. A nil slice with a nil
// error means the user aborted.
func runInteractiveFinder(root string, opts Options, formats *FormatData) ([]string, error) {
	candidates, err := interactiveCandidates(root, opts, formats)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no sequence files or directories found under %s", root)
	}

	idx, err := fuzzyfinder.FindMulti(
		candidates,
		func(i int) string {
			return candidates[i]
		},
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return "Select FASTA files or directories. Press Tab to multi-select, Enter to confirm."
			}
			return previewCandidate(candidates[i], opts.MinLen)
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, nil
		}
		return nil, fmt.Errorf("fuzzy finder error: %w", err)
	}

	selected := make([]string, len(idx))
	for i, index := range idx {
		selected[i] = candidates[index]
	}
	return selected, nil
}

// interactiveCandidates collects directories and recognized sequence files,
// skipping hidden entries unless requested.
func interactiveCandidates(root string, opts Options, formats *FormatData) ([]string, error) {
	var candidates []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || path == root {
			return nil
		}
		if !opts.ShowHidden && isHidden(d.Name()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			candidates = append(candidates, path)
			return nil
		}
		if _, ok := formats.FormatForFile(path); ok {
			candidates = append(candidates, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning for files/directories: %w", err)
	}
	return candidates, nil
}

// previewCandidate describes a file by its first record, or a directory by
// its type.
func previewCandidate(path string, minLen int) string {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Sprintf("Path: %s\nError getting info: %v", path, err)
	}
	if info.IsDir() {
		return fmt.Sprintf("Path: %s\nType: Directory", path)
	}

	rc, err := fasta.Open(path)
	if err != nil {
		return fmt.Sprintf("Path: %s\nError opening file: %v", path, err)
	}
	defer rc.Close()
	rec, err := fasta.NewReader(rc).Read()
	if err != nil {
		return fmt.Sprintf("Path: %s\nSize: %d bytes\nFirst record: %v", path, info.Size(), err)
	}
	return fmt.Sprintf("Path: %s\nSize: %d bytes\nFirst record: %s\nLength: %d (minimum %d)",
		path, info.Size(), rec.Header, rec.Length, minLen)
}
