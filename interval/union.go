package interval

import (
	"sort"
)

// Union is an immutable union of intervals supporting overlap queries
// without an external process. Internally each chromosome maps to a sorted
// slice of region endpoints: even indices are starts, odd indices are ends,
// so membership of a position reduces to the parity of a binary-search
// index.
type Union struct {
	endpoints map[string][]int64
}

// NewUnion drains it and returns the union of its intervals. Invalid records
// surface as errors from the iterator, so feed it a validity-filtered source
// when the input is untrusted.
func NewUnion(it Iterator) (*Union, error) {
	byChrom := make(map[string][]Interval)
	for it.Scan() {
		iv := it.Interval()
		byChrom[iv.Chrom] = append(byChrom[iv.Chrom], iv)
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	u := &Union{endpoints: make(map[string][]int64, len(byChrom))}
	for chrom, ivs := range byChrom {
		sort.Slice(ivs, func(i, j int) bool {
			if ivs[i].Start != ivs[j].Start {
				return ivs[i].Start < ivs[j].Start
			}
			return ivs[i].End < ivs[j].End
		})
		var ends []int64
		for _, iv := range ivs {
			n := len(ends)
			if n > 0 && iv.Start <= ends[n-1] {
				// Overlapping or book-ended with the region being built;
				// extend it instead of opening a new one.
				if iv.End > ends[n-1] {
					ends[n-1] = iv.End
				}
				continue
			}
			ends = append(ends, iv.Start, iv.End)
		}
		u.endpoints[chrom] = ends
	}
	return u, nil
}

// NewUnionFromIntervals is NewUnion over an in-memory slice.
func NewUnionFromIntervals(ivs []Interval) *Union {
	u, _ := NewUnion(NewSliceIterator(ivs)) // slice iterators cannot fail
	return u
}

// Contains reports whether the position is inside the union.
func (u *Union) Contains(chrom string, pos int64) bool {
	ends := u.endpoints[chrom]
	idx := searchInt64s(ends, pos+1)
	return idx&1 == 1
}

// Overlaps reports whether [start, end) intersects the union.
func (u *Union) Overlaps(chrom string, start, end int64) bool {
	ends := u.endpoints[chrom]
	idx := searchInt64s(ends, start+1)
	if idx&1 == 1 {
		return true
	}
	return idx < len(ends) && ends[idx] < end
}

// OverlapBases returns the number of bases of [start, end) inside the union.
func (u *Union) OverlapBases(chrom string, start, end int64) int64 {
	ends := u.endpoints[chrom]
	var total int64
	idx := searchInt64s(ends, start+1)
	if idx&1 == 1 {
		// start falls inside a region; count its tail first.
		regionEnd := ends[idx]
		if regionEnd > end {
			regionEnd = end
		}
		total += regionEnd - start
		idx++
	}
	for ; idx+1 < len(ends) && ends[idx] < end; idx += 2 {
		regionEnd := ends[idx+1]
		if regionEnd > end {
			regionEnd = end
		}
		total += regionEnd - ends[idx]
	}
	return total
}

// TotalBases returns the number of bases covered by the union.
func (u *Union) TotalBases() int64 {
	var total int64
	for _, ends := range u.endpoints {
		for i := 0; i+1 < len(ends); i += 2 {
			total += ends[i+1] - ends[i]
		}
	}
	return total
}

// Regions returns the union's merged regions for one chromosome, in order.
func (u *Union) Regions(chrom string) []Interval {
	ends := u.endpoints[chrom]
	out := make([]Interval, 0, len(ends)/2)
	for i := 0; i+1 < len(ends); i += 2 {
		out = append(out, FromCoords(chrom, ends[i], ends[i+1]))
	}
	return out
}

// Chroms returns the chromosomes present in the union, sorted.
func (u *Union) Chroms() []string {
	out := make([]string, 0, len(u.endpoints))
	for chrom := range u.endpoints {
		out = append(out, chrom)
	}
	sort.Strings(out)
	return out
}

// searchInt64s is sort.SearchInts for int64 slices.
func searchInt64s(a []int64, x int64) int {
	return sort.Search(len(a), func(i int) bool { return a[i] >= x })
}
