package bedtool_test

import (
	"testing"

	"github.com/grailbio/bedtool/bedtool"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestSizeFilter(t *testing.T) {
	sess, cleanup := newSession(t)
	defer cleanup()
	bt, err := bedtool.NewFromString(sess, `
		chr1 0   10
		chr1 0   100
		chr1 0   1000
	`)
	assert.NoError(t, err)

	mid, err := bt.SizeFilter(50, 500)
	assert.NoError(t, err)
	contents, err := mid.Contents()
	assert.NoError(t, err)
	expect.EQ(t, contents, "chr1\t0\t100\n")

	_, err = bt.SizeFilter(10, 5)
	_, ok := err.(bedtool.UsageError)
	assert.True(t, ok)
}

func TestFeatureCenters(t *testing.T) {
	sess, cleanup := newSession(t)
	defer cleanup()
	bt, err := bedtool.NewFromString(sess, `
		chr1 100 200
		chr1 500 504
	`)
	assert.NoError(t, err)

	centered, err := bt.FeatureCenters(10)
	assert.NoError(t, err)
	contents, err := centered.Contents()
	assert.NoError(t, err)
	// Wide features shrink to the window; narrow ones keep their bounds.
	expect.EQ(t, contents, "chr1\t145\t155\nchr1\t500\t504\n")
}

func TestRenameFeatures(t *testing.T) {
	sess, cleanup := newSession(t)
	defer cleanup()
	bt, err := bedtool.NewFromString(sess, `
		chr1 100 200 old1
		chr1 300 400
	`)
	assert.NoError(t, err)
	renamed, err := bt.RenameFeatures("exon")
	assert.NoError(t, err)
	contents, err := renamed.Contents()
	assert.NoError(t, err)
	expect.EQ(t, contents, "chr1\t100\t200\texon\nchr1\t300\t400\texon\n")
}

func TestRandomSubsetDeterministic(t *testing.T) {
	sess, cleanup := newSession(t)
	defer cleanup()
	bt, err := bedtool.NewFromString(sess, `
		chr1 0 10
		chr1 10 20
		chr1 20 30
		chr1 30 40
		chr1 40 50
	`)
	assert.NoError(t, err)

	first, err := bt.RandomSubset(2, 42)
	assert.NoError(t, err)
	second, err := bt.RandomSubset(2, 42)
	assert.NoError(t, err)
	eq, err := first.Equal(second)
	assert.NoError(t, err)
	expect.True(t, eq)

	n, err := first.Count()
	assert.NoError(t, err)
	expect.EQ(t, n, 2)

	_, err = bt.RandomSubset(6, 42)
	assert.NotNil(t, err)
}

func TestLengthsAndTotalCoverage(t *testing.T) {
	sess, cleanup := newSession(t)
	defer cleanup()
	bt, err := bedtool.NewFromString(sess, `
		chr1 0  10
		chr1 50 75
	`)
	assert.NoError(t, err)
	lens, err := bt.Lengths()
	assert.NoError(t, err)
	expect.EQ(t, lens, []int64{10, 25})

	total, err := bt.TotalCoverage()
	assert.NoError(t, err)
	expect.EQ(t, total, int64(35))
}

func TestMergedCoverage(t *testing.T) {
	sess, cleanup := newSession(t)
	defer cleanup()
	bt, err := bedtool.NewFromString(sess, `
		chr1 100 200
		chr1 150 250
		chr2 0   10
	`)
	assert.NoError(t, err)

	total, err := bt.TotalCoverage()
	assert.NoError(t, err)
	expect.EQ(t, total, int64(210))

	merged, err := bt.MergedCoverage()
	assert.NoError(t, err)
	expect.EQ(t, merged, int64(160))
}

func TestCountOverlapping(t *testing.T) {
	sess, cleanup := newSession(t)
	defer cleanup()
	a, err := bedtool.NewFromString(sess, `
		chr1 100 200
		chr1 300 400
		chr2 0   10
	`)
	assert.NoError(t, err)
	b, err := bedtool.NewFromString(sess, `
		chr1 150 160
		chr1 390 500
	`)
	assert.NoError(t, err)

	n, err := a.CountOverlapping(b)
	assert.NoError(t, err)
	expect.EQ(t, n, 2)
}

func TestHistoryRecordsLocalTransforms(t *testing.T) {
	sess, cleanup := newSession(t)
	defer cleanup()
	bt, err := bedtool.NewFromString(sess, "chr1 0 100")
	assert.NoError(t, err)
	filtered, err := bt.SizeFilter(0, 1000)
	assert.NoError(t, err)
	steps := filtered.History().Steps()
	assert.EQ(t, len(steps), 1)
	expect.EQ(t, steps[0].Op, "size_filter")
	expect.EQ(t, steps[0].ResultPath, filtered.Path())
}
