package bedtool

import "github.com/grailbio/bedtool/invoke"

// Add returns the features of bt that overlap at least one feature of other,
// each reported once. It is the set-intersection analogue of intersect -u.
//
// If either collection is empty the result is empty: nothing can overlap
// nothing, and launching the external program on a degenerate input only
// produces a confusing usage error from it.
func (bt *BedTool) Add(other *BedTool) (*BedTool, error) {
	self, err := bt.Materialize()
	if err != nil {
		return nil, err
	}
	om, err := other.Materialize()
	if err != nil {
		return nil, err
	}
	for _, in := range []*BedTool{self, om} {
		n, err := in.Count()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return NewFromString(bt.sess, "")
		}
	}
	return self.Intersect(om, invoke.Flag("u"))
}

// Sub returns the features of bt with no overlap in other, via intersect -v.
//
// An empty bt yields an empty result. An empty other leaves bt unchanged and
// is answered with a copy, again without launching the program.
func (bt *BedTool) Sub(other *BedTool) (*BedTool, error) {
	self, err := bt.Materialize()
	if err != nil {
		return nil, err
	}
	n, err := self.Count()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return NewFromString(bt.sess, "")
	}
	om, err := other.Materialize()
	if err != nil {
		return nil, err
	}
	on, err := om.Count()
	if err != nil {
		return nil, err
	}
	if on == 0 {
		contents, err := self.Contents()
		if err != nil {
			return nil, err
		}
		return NewFromString(bt.sess, contents)
	}
	return self.Intersect(om, invoke.Flag("v"))
}
