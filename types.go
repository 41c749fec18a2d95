package main

import (
	"fmt"
	"io"
)

// Options is the run configuration, resolved once from flags, environment
// and config file before any input is read.
type Options struct {
	MinLen      int
	Verbose     bool
	LogFile     string
	PDFFile     string
	Clipboard   bool
	Interactive bool
	FormatsFile string

	// Directory expansion filters
	Include    []string
	Exclude    []string
	ShowHidden bool
	NoIgnore   bool
	MaxDepth   int
}

// Source is one row of output: a name and a way to open its FASTA stream.
// Err is set when the source failed before it could be opened, e.g. a
// repository that could not be cloned.
type Source struct {
	Name string
	Open func() (io.ReadCloser, error)
	Err  error
}

// usageError marks bad command-line input. It exits with status 2.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...interface{}) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// sourceFailures reports that some sources could not be summarized. It
// exits with status 1.
type sourceFailures struct {
	failed int
	total  int
}

func (e *sourceFailures) Error() string {
	return fmt.Sprintf("%d of %d input(s) could not be read", e.failed, e.total)
}
