package interval

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/grailbio/hts/bgzf"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

const maxLineSize = 16 * 1024 * 1024

// Iterator is the iteration contract for interval datasets: Scan advances to
// the next record, Interval returns it, Err reports the terminal error (nil
// on clean EOF), and Close releases the underlying source. Scan returning
// false with a non-nil Err means iteration failed, not that the data ended.
type Iterator interface {
	Scan() bool
	Interval() Interval
	Err() error
	Close() error
}

// ScanOpts controls record iteration.
type ScanOpts struct {
	// DropInvalid silently skips records that are malformed or have
	// negative coordinates or non-positive length. Without it such records
	// surface as errors from Err.
	DropInvalid bool
}

// Scanner iterates over the records of line-oriented interval data,
// skipping track/browser/comment/blank lines. Gzip-compressed input is
// decompressed transparently.
type Scanner struct {
	opts   ScanOpts
	s      *bufio.Scanner
	src    io.Reader
	zr     *gzip.Reader
	cur    Interval
	line   string
	err    error
	closed bool
}

// NewScanner returns a Scanner over r. If r is an io.Closer, Close closes
// it.
func NewScanner(r io.Reader, opts ScanOpts) (*Scanner, error) {
	br := bufio.NewReader(r)
	var in io.Reader = br
	var zr *gzip.Reader
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err = gzip.NewReader(br)
		if err != nil {
			return nil, errors.Wrap(err, "opening gzip input")
		}
		in = zr
	}
	s := bufio.NewScanner(in)
	s.Buffer(nil, maxLineSize)
	return &Scanner{opts: opts, s: s, src: r, zr: zr}, nil
}

// Scan advances to the next record.
func (sc *Scanner) Scan() bool {
	if sc.err != nil || sc.closed {
		return false
	}
	for sc.s.Scan() {
		line := sc.s.Text()
		if skippableLine(line) {
			continue
		}
		iv, err := Parse(line)
		if err != nil || !iv.Valid() {
			if sc.opts.DropInvalid {
				continue
			}
			if err == nil {
				err = &MalformedError{Line: line, Reason: "non-positive length or negative coordinate"}
			}
			sc.err = err
			return false
		}
		sc.cur, sc.line = iv, line
		return true
	}
	sc.err = sc.s.Err()
	return false
}

// Interval returns the record read by the last successful Scan.
func (sc *Scanner) Interval() Interval { return sc.cur }

// Text returns the raw line of the last record.
func (sc *Scanner) Text() string { return sc.line }

// Err returns the first error encountered, nil on clean EOF.
func (sc *Scanner) Err() error { return sc.err }

// Close releases the input. Always call it: interval pipelines chain many
// scanners and an unreleased descriptor per step adds up.
func (sc *Scanner) Close() error {
	if sc.closed {
		return nil
	}
	sc.closed = true
	var err error
	if sc.zr != nil {
		err = sc.zr.Close()
	}
	if c, ok := sc.src.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func skippableLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" ||
		strings.HasPrefix(line, "#") ||
		strings.HasPrefix(line, "track") ||
		strings.HasPrefix(line, "browser")
}

// SliceIterator iterates over an in-memory record slice. It satisfies
// Iterator so generator-style data can back a collection.
type SliceIterator struct {
	ivs []Interval
	idx int
}

// NewSliceIterator returns an Iterator over ivs.
func NewSliceIterator(ivs []Interval) *SliceIterator {
	return &SliceIterator{ivs: ivs, idx: -1}
}

func (it *SliceIterator) Scan() bool {
	if it.idx+1 >= len(it.ivs) {
		return false
	}
	it.idx++
	return true
}

func (it *SliceIterator) Interval() Interval { return it.ivs[it.idx] }
func (it *SliceIterator) Err() error         { return nil }
func (it *SliceIterator) Close() error       { return nil }

var bamMagic = []byte("BAM\x01")

// ProbeFile inspects a file and classifies its format. BAM is recognized by
// the BGZF wrapping plus the "BAM\1" magic; gzipped text is decompressed
// far enough to classify the first data line.
func ProbeFile(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, errors.Wrap(err, path)
	}
	defer f.Close() // nolint: errcheck

	info, err := f.Stat()
	if err != nil {
		return FormatUnknown, errors.Wrap(err, path)
	}
	if info.Size() == 0 {
		return FormatEmpty, nil
	}

	if format, ok := probeBAM(f); ok {
		return format, nil
	}
	if _, err = f.Seek(0, io.SeekStart); err != nil {
		return FormatUnknown, errors.Wrap(err, path)
	}
	sc, err := NewScanner(f, ScanOpts{DropInvalid: true})
	if err != nil {
		return FormatUnknown, err
	}
	// Scanner.Close would close f, which the deferred Close also does;
	// harmless, since double-closing an *os.File just returns an error we
	// ignore.
	if !sc.Scan() {
		return FormatEmpty, sc.Err()
	}
	return sc.Interval().Format, nil
}

// probeBAM reports whether f holds BGZF data starting with the BAM magic.
func probeBAM(f *os.File) (Format, bool) {
	zr, err := bgzf.NewReader(f, 1)
	if err != nil {
		return FormatUnknown, false
	}
	defer zr.Close() // nolint: errcheck
	head := make([]byte, 4)
	if _, err := io.ReadFull(zr, head); err != nil {
		return FormatUnknown, false
	}
	if bytes.Equal(head, bamMagic) {
		return FormatBAM, true
	}
	return FormatUnknown, false
}
