// Package fasta reads FASTA formatted streams one record at a time.
//
// Only record boundaries and residue counts are tracked; sequence data is
// never buffered, so memory use does not grow with sequence length.
package fasta

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// ErrMalformed is returned when the stream contains sequence data before
// the first header line.
var ErrMalformed = errors.New("malformed FASTA: sequence data before first header")

// Record is a single FASTA entry. Length counts residue characters only,
// excluding the header line, line breaks and other whitespace.
type Record struct {
	Header string
	Length int
}

// Reader yields records from a FASTA stream.
type Reader struct {
	br     *bufio.Reader
	lineNo int
	cur    Record
	open   bool
	err    error
}

// NewReader returns a Reader consuming r.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

// Read returns the next record, or io.EOF once the stream is exhausted.
// A record is only complete when the next header or the end of the stream
// is reached, so Read may consume one line past the returned record.
func (r *Reader) Read() (Record, error) {
	if r.err != nil {
		return Record{}, r.err
	}
	for {
		line, isPrefix, err := r.br.ReadLine()
		if err != nil {
			r.err = err
			if err == io.EOF && r.open {
				r.open = false
				return r.cur, nil
			}
			return Record{}, err
		}
		r.lineNo++

		if len(line) > 0 && line[0] == '>' {
			header, err := r.header(line[1:], isPrefix)
			if err != nil {
				r.err = err
				return Record{}, err
			}
			prev, had := r.cur, r.open
			r.cur = Record{Header: header}
			r.open = true
			if had {
				return prev, nil
			}
			continue
		}

		n, err := r.residues(line, isPrefix)
		if err != nil {
			r.err = err
			return Record{}, err
		}
		if n == 0 {
			continue
		}
		if !r.open {
			r.err = fmt.Errorf("line %d: %w", r.lineNo, ErrMalformed)
			return Record{}, r.err
		}
		r.cur.Length += n
	}
}

// header collects the remainder of a header line that may span several
// buffer fragments.
func (r *Reader) header(first []byte, isPrefix bool) (string, error) {
	var buf bytes.Buffer
	buf.Write(first)
	for isPrefix {
		var frag []byte
		var err error
		frag, isPrefix, err = r.br.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		buf.Write(frag)
	}
	return string(bytes.TrimSpace(buf.Bytes())), nil
}

// residues counts the non-whitespace bytes of a sequence line.
func (r *Reader) residues(first []byte, isPrefix bool) (int, error) {
	n := countResidues(first)
	for isPrefix {
		var frag []byte
		var err error
		frag, isPrefix, err = r.br.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
		n += countResidues(frag)
	}
	return n, nil
}

func countResidues(b []byte) int {
	n := 0
	for _, c := range b {
		switch c {
		case ' ', '\t', '\r', '\v', '\f':
		default:
			n++
		}
	}
	return n
}

var gzipMagic = []byte{0x1f, 0x8b}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *readCloser) Close() error {
	var err error
	for _, c := range m.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Decompress returns r unchanged unless it starts with the gzip magic
// number, in which case it returns a decompressing reader. Closing the
// result does not close r.
func Decompress(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	sig, _ := br.Peek(len(gzipMagic))
	if !bytes.Equal(sig, gzipMagic) {
		return io.NopCloser(br), nil
	}
	gr, err := gzip.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	return gr, nil
}

// Open opens the file at path for reading, decompressing it if it is
// gzip-compressed.
func Open(path string) (io.ReadCloser, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rc, err := Decompress(fh)
	if err != nil {
		fh.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &readCloser{Reader: rc, closers: []io.Closer{rc, fh}}, nil
}
