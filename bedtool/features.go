package bedtool

import (
	"bufio"
	"math/rand"
	"os"
	"strconv"

	"github.com/grailbio/bedtool/interval"
	"github.com/grailbio/bedtool/invoke"
	"github.com/pkg/errors"
)

// This file holds the transforms computed locally, without launching an
// external program. They follow the same materialize-to-temp contract as the
// wrapped operations so results compose with them freely.

// transform writes the output of fn over bt's intervals to a fresh temp file
// and wraps it, recording op in the lineage.
func (bt *BedTool) transform(op string, fn func(interval.Interval, func(interval.Interval) error) error) (*BedTool, error) {
	it, err := bt.IterateValid()
	if err != nil {
		return nil, err
	}
	defer it.Close() // nolint: errcheck
	path, err := bt.sess.TempFile()
	if err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := bufio.NewWriter(f)
	emit := func(iv interval.Interval) error {
		if _, err := w.WriteString(iv.String()); err != nil {
			return err
		}
		return w.WriteByte('\n')
	}
	for it.Scan() {
		if err := fn(it.Interval(), emit); err != nil {
			f.Close() // nolint: errcheck
			return nil, err
		}
	}
	if err := it.Err(); err != nil {
		f.Close() // nolint: errcheck
		return nil, err
	}
	if err := w.Flush(); err != nil {
		f.Close() // nolint: errcheck
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	result := &BedTool{
		sess:   bt.sess,
		kind:   backingFile,
		path:   path,
		format: bt.format,
		tag:    newTag(),
	}
	result.hist = newHistory(Step{
		Op:         op,
		ParentPath: bt.describeBacking(),
		ParentTag:  bt.tag,
		ResultPath: path,
		ResultTag:  result.tag,
	}, bt.hist)
	return result, nil
}

// SizeFilter keeps intervals whose length lies in [min, max].
func (bt *BedTool) SizeFilter(min, max int64) (*BedTool, error) {
	if min < 0 || max < min {
		return nil, UsageError("size filter needs 0 <= min <= max")
	}
	return bt.transform("size_filter", func(iv interval.Interval, emit func(interval.Interval) error) error {
		if n := iv.Len(); n >= min && n <= max {
			return emit(iv)
		}
		return nil
	})
}

// FeatureCenters replaces each interval with a window of the given width
// centered on its midpoint. Widths wider than the interval keep the original
// bounds.
func (bt *BedTool) FeatureCenters(width int64) (*BedTool, error) {
	if width < 0 {
		return nil, UsageError("center width must be non-negative")
	}
	return bt.transform("centers", func(iv interval.Interval, emit func(interval.Interval) error) error {
		if iv.Len() <= width {
			return emit(iv)
		}
		mid := (iv.Start + iv.End) / 2
		out := iv
		out.Start = mid - width/2
		out.End = out.Start + width
		if out.Start < iv.Start {
			out.Start = iv.Start
		}
		if out.End > iv.End {
			out.End = iv.End
		}
		syncFields(&out)
		return emit(out)
	})
}

// RenameFeatures sets every interval's name column to the given value,
// extending short records to four columns.
func (bt *BedTool) RenameFeatures(name string) (*BedTool, error) {
	return bt.transform("rename", func(iv interval.Interval, emit func(interval.Interval) error) error {
		out := iv
		out.Fields = append([]string(nil), iv.Fields...)
		for len(out.Fields) < 4 {
			out.Fields = append(out.Fields, ".")
		}
		out.Fields[3] = name
		return emit(out)
	})
}

// syncFields pushes mutated coordinates back into the raw column slice so
// String renders the new values.
func syncFields(iv *interval.Interval) {
	if iv.Format != interval.FormatBED || len(iv.Fields) < 3 {
		return
	}
	iv.Fields = append([]string(nil), iv.Fields...)
	iv.Fields[1] = strconv.FormatInt(iv.Start, 10)
	iv.Fields[2] = strconv.FormatInt(iv.End, 10)
}

// RandomSubset picks n intervals uniformly at random without replacement.
// The same seed always selects the same subset.
func (bt *BedTool) RandomSubset(n int, seed int64) (*BedTool, error) {
	if n < 0 {
		return nil, UsageError("subset size must be non-negative")
	}
	src, err := bt.Materialize()
	if err != nil {
		return nil, err
	}
	total, err := src.Count()
	if err != nil {
		return nil, err
	}
	if n > total {
		return nil, errors.Errorf("cannot sample %d of %d intervals", n, total)
	}
	keep := make(map[int]bool, n)
	for _, i := range rand.New(rand.NewSource(seed)).Perm(total)[:n] {
		keep[i] = true
	}
	i := -1
	return src.transform("random_subset", func(iv interval.Interval, emit func(interval.Interval) error) error {
		i++
		if keep[i] {
			return emit(iv)
		}
		return nil
	})
}

// Lengths returns the length of every interval, in file order.
func (bt *BedTool) Lengths() ([]int64, error) {
	it, err := bt.IterateValid()
	if err != nil {
		return nil, err
	}
	defer it.Close() // nolint: errcheck
	var out []int64
	for it.Scan() {
		out = append(out, it.Interval().Len())
	}
	return out, it.Err()
}

// TotalCoverage sums the lengths of all intervals. Overlapping intervals are
// counted once each; Merge first for a base-pair union.
func (bt *BedTool) TotalCoverage() (int64, error) {
	it, err := bt.IterateValid()
	if err != nil {
		return 0, err
	}
	defer it.Close() // nolint: errcheck
	var total int64
	for it.Scan() {
		total += it.Interval().Len()
	}
	return total, it.Err()
}

// Index loads the collection into an in-memory overlap index, for repeated
// hit-testing without spawning the external suite. Consumes stream and
// iterator backings.
func (bt *BedTool) Index() (*interval.Union, error) {
	it, err := bt.IterateValid()
	if err != nil {
		return nil, err
	}
	u, err := interval.NewUnion(it)
	if cerr := it.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// MergedCoverage returns the number of distinct bases covered by the
// collection, with overlaps collapsed. Unlike TotalCoverage it needs no
// prior Merge; the collapsing happens in-process.
func (bt *BedTool) MergedCoverage() (int64, error) {
	u, err := bt.Index()
	if err != nil {
		return 0, err
	}
	return u.TotalBases(), nil
}

// CountOverlapping reports how many of bt's intervals overlap at least one
// interval of other, computed in-process against an in-memory index of
// other.
func (bt *BedTool) CountOverlapping(other *BedTool) (int, error) {
	u, err := other.Index()
	if err != nil {
		return 0, err
	}
	it, err := bt.IterateValid()
	if err != nil {
		return 0, err
	}
	defer it.Close() // nolint: errcheck
	n := 0
	for it.Scan() {
		iv := it.Interval()
		if u.Overlaps(iv.Chrom, iv.Start, iv.End) {
			n++
		}
	}
	return n, it.Err()
}

// Cat concatenates bt with the given collections. Unless postmerge is
// disabled via an explicit invoke.Flag("nomerge") the result is sorted and
// merged so overlapping features collapse; raw concatenation otherwise.
func (bt *BedTool) Cat(others []*BedTool, opts ...invoke.Option) (*BedTool, error) {
	path, err := bt.sess.TempFile()
	if err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := bufio.NewWriter(f)
	parents := []*History{bt.hist}
	appendAll := func(src *BedTool) error {
		it, err := src.IterateValid()
		if err != nil {
			return err
		}
		defer it.Close() // nolint: errcheck
		for it.Scan() {
			iv := it.Interval()
			// Heterogeneous inputs are reduced to the three coordinate
			// columns so the merged output is well formed.
			line := iv.Chrom + "\t" + strconv.FormatInt(iv.Start, 10) + "\t" + strconv.FormatInt(iv.End, 10)
			if _, err := w.WriteString(line); err != nil {
				return err
			}
			if err := w.WriteByte('\n'); err != nil {
				return err
			}
		}
		return it.Err()
	}
	if err := appendAll(bt); err != nil {
		f.Close() // nolint: errcheck
		return nil, err
	}
	for _, other := range others {
		if err := appendAll(other); err != nil {
			f.Close() // nolint: errcheck
			return nil, err
		}
		parents = append(parents, other.hist)
	}
	if err := w.Flush(); err != nil {
		f.Close() // nolint: errcheck
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	combined := &BedTool{
		sess:   bt.sess,
		kind:   backingFile,
		path:   path,
		format: interval.FormatBED,
		tag:    newTag(),
	}
	combined.hist = newHistory(Step{
		Op:         "cat",
		ParentPath: bt.describeBacking(),
		ParentTag:  bt.tag,
		ResultPath: path,
		ResultTag:  combined.tag,
	}, parents...)

	merge := true
	var rest invoke.Options
	for _, o := range opts {
		if o.Name == "nomerge" {
			merge = false
			continue
		}
		rest = append(rest, o)
	}
	if !merge {
		return combined, nil
	}
	sorted, err := combined.Sort()
	if err != nil {
		return nil, err
	}
	return sorted.Merge(rest...)
}
