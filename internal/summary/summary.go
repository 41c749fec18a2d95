// Package summary folds FASTA sequence lengths into per-source statistics.
package summary

import (
	"io"
	"strconv"

	"github.com/jadenpxrk/fastats/internal/fasta"
)

// Placeholder is rendered in place of MIN, AVG and MAX when no sequence
// qualified.
const Placeholder = "-"

// Header holds the output column names, in output order.
var Header = []string{"FILENAME", "NUMSEQ", "TOTAL", "MIN", "AVG", "MAX"}

// Extent is the shortest and longest qualifying sequence length.
type Extent struct {
	Min int
	Max int
}

// Summary is the finalized statistics for one input source.
// Extent is nil if and only if NumSeq is zero.
type Summary struct {
	Source string
	NumSeq int
	Total  int64
	Extent *Extent
}

// Average returns Total / NumSeq using floor division. ok is false when
// no sequence qualified.
func (s Summary) Average() (avg int64, ok bool) {
	if s.NumSeq == 0 {
		return 0, false
	}
	return s.Total / int64(s.NumSeq), true
}

// Fields renders the summary as output columns matching Header.
func (s Summary) Fields() []string {
	fields := []string{s.Source, strconv.Itoa(s.NumSeq), strconv.FormatInt(s.Total, 10)}
	if s.Extent == nil {
		return append(fields, Placeholder, Placeholder, Placeholder)
	}
	avg, _ := s.Average()
	return append(fields,
		strconv.Itoa(s.Extent.Min),
		strconv.FormatInt(avg, 10),
		strconv.Itoa(s.Extent.Max),
	)
}

// Accumulator collects lengths of sequences at least MinLen long.
// The zero value accepts every sequence.
type Accumulator struct {
	MinLen int

	numSeq int
	total  int64
	extent *Extent
}

// Add folds length into the running statistics and reports whether it
// passed the minimum-length filter.
func (a *Accumulator) Add(length int) bool {
	if length < a.MinLen {
		return false
	}
	a.numSeq++
	a.total += int64(length)
	if a.extent == nil {
		a.extent = &Extent{Min: length, Max: length}
		return true
	}
	if length < a.extent.Min {
		a.extent.Min = length
	}
	if length > a.extent.Max {
		a.extent.Max = length
	}
	return true
}

// Summary finalizes the accumulator for the named source.
func (a *Accumulator) Summary(source string) Summary {
	s := Summary{Source: source, NumSeq: a.numSeq, Total: a.total}
	if a.extent != nil {
		e := *a.extent
		s.Extent = &e
	}
	return s
}

// Summarize reads every record from r and returns the statistics of those
// at least minLen long. On any read or parse error no summary is returned.
func Summarize(source string, r io.Reader, minLen int) (Summary, error) {
	acc := Accumulator{MinLen: minLen}
	fr := fasta.NewReader(r)
	for {
		rec, err := fr.Read()
		if err == io.EOF {
			return acc.Summary(source), nil
		}
		if err != nil {
			return Summary{}, err
		}
		acc.Add(rec.Length)
	}
}
