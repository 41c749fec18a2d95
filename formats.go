package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// FormatInfo describes how files of one sequence format are recognized.
type FormatInfo struct {
	Extensions []string `yaml:"extensions"`
	Filenames  []string `yaml:"filenames"`
}

// FormatMap maps format names (e.g., "fasta") to their details.
type FormatMap map[string]FormatInfo

// FormatData holds the parsed format map and provides lookups.
type FormatData struct {
	Formats      FormatMap
	extensionMap map[string]string // ".fa" -> "fasta"
	filenameMap  map[string]string
}

// compressedSuffixes are stripped before the extension lookup.
var compressedSuffixes = []string{".gz", ".bgz"}

const defaultFormatsYAML = `
fasta:
  extensions: [.fa, .fasta, .fas, .fna, .mpfa]
fasta-protein:
  extensions: [.faa]
fasta-cds:
  extensions: [.ffn, .frn]
`

func defaultFormatData() *FormatData {
	data, err := parseFormatData([]byte(defaultFormatsYAML))
	if err != nil {
		panic(fmt.Sprintf("built-in format definitions: %v", err))
	}
	return data
}

// loadFormatData reads format definitions from path. With no path it looks
// for formats.yml in the config directories and falls back to the
// built-in definitions.
func loadFormatData(path string) (*FormatData, error) {
	if path == "" {
		var searchPaths []string
		if home, err := os.UserHomeDir(); err == nil {
			searchPaths = append(searchPaths, filepath.Join(home, ".config", "fastats"))
		}
		searchPaths = append(searchPaths, ".")
		for _, p := range searchPaths {
			candidate := filepath.Join(p, "formats.yml")
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	if path == "" {
		return defaultFormatData(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading format file %s: %w", path, err)
	}
	data, err := parseFormatData(raw)
	if err != nil {
		return nil, fmt.Errorf("error parsing format file %s: %w", path, err)
	}
	return data, nil
}

func parseFormatData(raw []byte) (*FormatData, error) {
	var formats FormatMap
	if err := yaml.Unmarshal(raw, &formats); err != nil {
		return nil, err
	}
	if len(formats) == 0 {
		return nil, fmt.Errorf("no formats defined")
	}

	data := &FormatData{
		Formats:      formats,
		extensionMap: make(map[string]string),
		filenameMap:  make(map[string]string),
	}
	// the alphabetically first format claims a shared extension or filename
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		info := formats[name]
		for _, ext := range info.Extensions {
			ext = strings.ToLower(ext)
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			if data.extensionMap[ext] == "" {
				data.extensionMap[ext] = name
			}
		}
		for _, fname := range info.Filenames {
			if data.filenameMap[fname] == "" {
				data.filenameMap[fname] = name
			}
		}
	}
	return data, nil
}

// FormatForFile reports the sequence format of filePath, looking through
// a trailing compression suffix.
func (fd *FormatData) FormatForFile(filePath string) (string, bool) {
	if fd == nil {
		return "", false
	}

	baseName := filepath.Base(filePath)
	if name, ok := fd.filenameMap[baseName]; ok {
		return name, true
	}

	lower := strings.ToLower(baseName)
	for _, suffix := range compressedSuffixes {
		if strings.HasSuffix(lower, suffix) {
			lower = strings.TrimSuffix(lower, suffix)
			break
		}
	}
	ext := filepath.Ext(lower)
	if ext == "" {
		return "", false
	}
	name, ok := fd.extensionMap[ext]
	return name, ok
}
