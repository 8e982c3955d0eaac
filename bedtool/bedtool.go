package bedtool

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"
	"sync/atomic"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/bedtool/interval"
)

// UsageError reports a violation of the API contract by the caller (as
// opposed to a failure of an external tool). It is always raised
// synchronously from the offending call.
type UsageError string

func (e UsageError) Error() string { return string(e) }

type backingKind int

const (
	backingFile backingKind = iota
	backingStream
	backingIter
)

// BedTool is a handle to an interval dataset. The backing is fixed at
// construction: a named file, a live stream (typically a subprocess stdout
// pipe), or an in-memory iterator. File backings can be read any number of
// times; stream and iterator backings are single-pass, and consuming one
// (printing it, iterating it, feeding it to an operation) exhausts it.
//
// Transformations never mutate a BedTool; each returns a new one.
type BedTool struct {
	sess *Session
	kind backingKind

	path   string
	stream io.ReadCloser
	iter   interval.Iterator

	isBAM    bool
	format   interval.Format
	tag      string
	hist     *History
	consumed bool

	// SeqPath points at the FASTA produced by Sequence, when set.
	SeqPath string
}

var tagCounter uint64

func newTag() string {
	return fmt.Sprintf("bt%06x", atomic.AddUint64(&tagCounter, 1))
}

// New returns a BedTool backed by an existing file. The file's format
// (including BAM) is probed up front; the file itself is never modified or
// deleted by the wrapper unless it matches the session temp pattern and is
// explicitly cleaned up.
func New(sess *Session, path string) (*BedTool, error) {
	format, err := interval.ProbeFile(path)
	if err != nil {
		return nil, err
	}
	return &BedTool{
		sess:   sess,
		kind:   backingFile,
		path:   path,
		format: format,
		isBAM:  format == interval.FormatBAM,
		tag:    newTag(),
		hist:   &History{},
	}, nil
}

// NewFromString materializes literal interval text to a session temp file
// and returns a BedTool for it. Runs of spaces are normalized to tabs and
// blank lines dropped, so test data can be written legibly inline.
func NewFromString(sess *Session, text string) (*BedTool, error) {
	path, err := sess.TempFile()
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		b.WriteString(strings.Join(fields, "\t"))
		b.WriteByte('\n')
	}
	if err := ioutil.WriteFile(path, []byte(b.String()), 0666); err != nil {
		return nil, errors.E(err, "writing", path)
	}
	return New(sess, path)
}

// NewFromReader returns a stream-backed BedTool. The reader is owned by the
// BedTool from here on and is closed when consumed.
func NewFromReader(sess *Session, r io.ReadCloser) *BedTool {
	return &BedTool{sess: sess, kind: backingStream, stream: r, tag: newTag(), hist: &History{}}
}

// NewFromIterator returns an iterator-backed BedTool: records are rendered
// to text lazily, only when an operation consumes them.
func NewFromIterator(sess *Session, it interval.Iterator) *BedTool {
	return &BedTool{sess: sess, kind: backingIter, iter: it, tag: newTag(), hist: &History{}}
}

// NewFromIntervals is NewFromIterator over an in-memory slice.
func NewFromIntervals(sess *Session, ivs []interval.Interval) *BedTool {
	return NewFromIterator(sess, interval.NewSliceIterator(ivs))
}

// Session returns the owning session.
func (bt *BedTool) Session() *Session { return bt.sess }

// Path returns the backing filename, or "" for stream/iterator backings.
func (bt *BedTool) Path() string { return bt.path }

// IsBAM reports whether the dataset is in the binary alignment format.
func (bt *BedTool) IsBAM() bool { return bt.isBAM }

// Tag returns the opaque identity tag used in lineage records.
func (bt *BedTool) Tag() string { return bt.tag }

// IsFile reports whether the collection is materialized on disk.
func (bt *BedTool) IsFile() bool { return bt.kind == backingFile }

// reader hands out the raw byte stream of the dataset. Stream and iterator
// backings are marked consumed.
func (bt *BedTool) reader() (io.ReadCloser, error) {
	switch bt.kind {
	case backingFile:
		f, err := os.Open(bt.path)
		if err != nil {
			return nil, errors.E(err, "opening", bt.path)
		}
		return f, nil
	case backingStream:
		if bt.consumed {
			return nil, UsageError("stream-backed collection was already consumed; use SaveAs to materialize it first")
		}
		bt.consumed = true
		return bt.stream, nil
	default:
		if bt.consumed {
			return nil, UsageError("iterator-backed collection was already consumed; use SaveAs to materialize it first")
		}
		bt.consumed = true
		return iterReader(bt.iter), nil
	}
}

// Iterate returns an Iterator over the records. For stream and iterator
// backings this consumes the collection. Callers must Close the iterator.
func (bt *BedTool) Iterate() (interval.Iterator, error) {
	if bt.kind == backingIter {
		if bt.consumed {
			return nil, UsageError("iterator-backed collection was already consumed; use SaveAs to materialize it first")
		}
		bt.consumed = true
		return bt.iter, nil
	}
	r, err := bt.reader()
	if err != nil {
		return nil, err
	}
	return interval.NewScanner(r, interval.ScanOpts{})
}

// IterateValid is Iterate with malformed and degenerate records dropped
// instead of surfacing as errors.
func (bt *BedTool) IterateValid() (interval.Iterator, error) {
	if bt.kind == backingIter {
		return bt.Iterate()
	}
	r, err := bt.reader()
	if err != nil {
		return nil, err
	}
	return interval.NewScanner(r, interval.ScanOpts{DropInvalid: true})
}

// Contents returns the entire dataset as a string. Consumes stream and
// iterator backings.
func (bt *BedTool) Contents() (string, error) {
	r, err := bt.reader()
	if err != nil {
		return "", err
	}
	data, err := ioutil.ReadAll(r)
	if cerr := r.Close(); err == nil {
		err = cerr
	}
	return string(data), err
}

// Head writes the first n records to w.
func (bt *BedTool) Head(w io.Writer, n int) error {
	it, err := bt.Iterate()
	if err != nil {
		return err
	}
	defer it.Close() // nolint: errcheck
	for i := 0; i < n && it.Scan(); i++ {
		if _, err := fmt.Fprintln(w, it.Interval().String()); err != nil {
			return err
		}
	}
	return it.Err()
}

// Count returns the number of records. It requires a file backing: counting
// a stream would silently exhaust it, which has historically hidden bugs.
// The open handle is closed before returning no matter what, so counting in
// a loop does not accumulate descriptors.
func (bt *BedTool) Count() (int, error) {
	if bt.kind != backingFile {
		return 0, UsageError("Count requires a materialized collection; use SaveAs first")
	}
	it, err := bt.Iterate()
	if err != nil {
		return 0, err
	}
	n := 0
	for it.Scan() {
		n++
	}
	err = it.Err()
	if cerr := it.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// At returns the i'th record (0-based). Requires a file backing: random
// access into a single-pass stream is a contract violation.
func (bt *BedTool) At(i int) (interval.Interval, error) {
	if bt.kind != backingFile {
		return interval.Interval{}, UsageError("At requires a materialized collection; use SaveAs first")
	}
	if i < 0 {
		return interval.Interval{}, UsageError("negative index")
	}
	it, err := bt.Iterate()
	if err != nil {
		return interval.Interval{}, err
	}
	defer it.Close() // nolint: errcheck
	for n := 0; it.Scan(); n++ {
		if n == i {
			return it.Interval(), nil
		}
	}
	if err := it.Err(); err != nil {
		return interval.Interval{}, err
	}
	return interval.Interval{}, UsageError(fmt.Sprintf("index %d out of range", i))
}

// SaveAs writes the dataset to path (materializing stream backings) and
// returns a BedTool for the new file. A non-empty trackline is prepended.
// The destination is the caller's file: it is not registered for cleanup.
func (bt *BedTool) SaveAs(path, trackline string) (*BedTool, error) {
	r, err := bt.reader()
	if err != nil {
		return nil, err
	}
	out, err := os.Create(path)
	if err != nil {
		_ = r.Close()
		return nil, errors.E(err, "creating", path)
	}
	if trackline != "" {
		if _, err = io.WriteString(out, strings.TrimSpace(trackline)+"\n"); err != nil {
			_ = r.Close()
			_ = out.Close()
			return nil, err
		}
	}
	_, err = io.Copy(out, r)
	if cerr := r.Close(); err == nil {
		err = cerr
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}
	result, err := New(bt.sess, path)
	if err != nil {
		return nil, err
	}
	result.isBAM = bt.isBAM
	result.hist = newHistory(Step{
		Op:         "saveas",
		ParentPath: bt.describeBacking(),
		ParentTag:  bt.tag,
		ResultPath: path,
		ResultTag:  result.tag,
	}, bt.hist)
	return result, nil
}

// Materialize returns a file-backed equivalent of the collection: the
// receiver itself when already a file, otherwise the stream drained to a
// session temp file.
func (bt *BedTool) Materialize() (*BedTool, error) {
	if bt.kind == backingFile {
		return bt, nil
	}
	path, err := bt.sess.TempFile()
	if err != nil {
		return nil, err
	}
	return bt.SaveAs(path, "")
}

// MoveTo renames a file-backed collection to path and returns a BedTool for
// the new location. Stream backings are materialized straight to path.
func (bt *BedTool) MoveTo(path string) (*BedTool, error) {
	if bt.kind != backingFile {
		return bt.SaveAs(path, "")
	}
	if err := os.Rename(bt.path, path); err != nil {
		return nil, errors.E(err, "moving", bt.path, "to", path)
	}
	result, err := New(bt.sess, path)
	if err != nil {
		return nil, err
	}
	result.isBAM = bt.isBAM
	result.hist = bt.hist
	return result, nil
}

// Close releases a stream or iterator backing without consuming it. It is a
// no-op for file backings.
func (bt *BedTool) Close() error {
	switch bt.kind {
	case backingStream:
		if !bt.consumed {
			bt.consumed = true
			return bt.stream.Close()
		}
	case backingIter:
		if !bt.consumed {
			bt.consumed = true
			return bt.iter.Close()
		}
	}
	return nil
}

// Equal compares the fully serialized contents of two collections. At least
// one operand must be materialized: comparing two unmaterialized streams
// would consume both for a result that cannot be rechecked.
func (bt *BedTool) Equal(other *BedTool) (bool, error) {
	if bt.kind != backingFile && other.kind != backingFile {
		return false, UsageError("cannot compare two unmaterialized streaming collections; SaveAs one of them first")
	}
	a, err := bt.Contents()
	if err != nil {
		return false, err
	}
	b, err := other.Contents()
	if err != nil {
		return false, err
	}
	return a == b, nil
}

func (bt *BedTool) describeBacking() string {
	if bt.kind == backingFile {
		return bt.path
	}
	return "<stream>"
}

// iterReader renders an iterator's records as a line stream through a pipe,
// one goroutine ahead of the consumer.
func iterReader(it interval.Iterator) io.ReadCloser {
	pr, pw := io.Pipe()
	go func() {
		for it.Scan() {
			if _, err := io.WriteString(pw, it.Interval().String()+"\n"); err != nil {
				_ = it.Close()
				pw.CloseWithError(err)
				return
			}
		}
		err := it.Err()
		if cerr := it.Close(); err == nil {
			err = cerr
		}
		pw.CloseWithError(err)
	}()
	return pr
}
