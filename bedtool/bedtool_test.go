package bedtool_test

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/bedtool/bedtool"
	"github.com/grailbio/bedtool/interval"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func newSession(t *testing.T) (*bedtool.Session, func()) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	sess := bedtool.NewSession(bedtool.Config{TempDir: tempDir})
	return sess, cleanup
}

const threeFeatures = `
	chr1 100 200 featA
	chr1 300 400 featB
	chr2 50  60  featC
`

func TestNewFromString(t *testing.T) {
	sess, cleanup := newSession(t)
	defer cleanup()

	bt, err := bedtool.NewFromString(sess, threeFeatures)
	assert.NoError(t, err)
	expect.True(t, bt.IsFile())
	expect.False(t, bt.IsBAM())

	n, err := bt.Count()
	assert.NoError(t, err)
	expect.EQ(t, n, 3)

	contents, err := bt.Contents()
	assert.NoError(t, err)
	expect.EQ(t, contents, "chr1\t100\t200\tfeatA\nchr1\t300\t400\tfeatB\nchr2\t50\t60\tfeatC\n")

	iv, err := bt.At(1)
	assert.NoError(t, err)
	expect.EQ(t, iv.Name(), "featB")
	expect.EQ(t, iv.Start, int64(300))

	_, err = bt.At(3)
	assert.NotNil(t, err)
	_, ok := err.(bedtool.UsageError)
	assert.True(t, ok)
}

func TestFileBackingIsRereadable(t *testing.T) {
	sess, cleanup := newSession(t)
	defer cleanup()
	bt, err := bedtool.NewFromString(sess, threeFeatures)
	assert.NoError(t, err)
	for i := 0; i < 3; i++ {
		n, err := bt.Count()
		assert.NoError(t, err)
		expect.EQ(t, n, 3)
	}
}

func TestStreamBackingIsSinglePass(t *testing.T) {
	sess, cleanup := newSession(t)
	defer cleanup()
	bt := bedtool.NewFromReader(sess, ioutil.NopCloser(strings.NewReader("chr1\t1\t2\n")))

	contents, err := bt.Contents()
	assert.NoError(t, err)
	expect.EQ(t, contents, "chr1\t1\t2\n")

	_, err = bt.Contents()
	assert.NotNil(t, err)
	_, ok := err.(bedtool.UsageError)
	assert.True(t, ok)
}

func TestStreamBackingRejectsCountAndAt(t *testing.T) {
	sess, cleanup := newSession(t)
	defer cleanup()
	bt := bedtool.NewFromReader(sess, ioutil.NopCloser(strings.NewReader("chr1\t1\t2\n")))

	_, err := bt.Count()
	_, ok := err.(bedtool.UsageError)
	assert.True(t, ok)
	_, err = bt.At(0)
	_, ok = err.(bedtool.UsageError)
	assert.True(t, ok)

	// The stream is still unconsumed and can be materialized.
	m, err := bt.Materialize()
	assert.NoError(t, err)
	n, err := m.Count()
	assert.NoError(t, err)
	expect.EQ(t, n, 1)
}

func TestIteratorBacking(t *testing.T) {
	sess, cleanup := newSession(t)
	defer cleanup()
	bt := bedtool.NewFromIntervals(sess, []interval.Interval{
		interval.FromCoords("chr1", 10, 20, "x"),
		interval.FromCoords("chr2", 30, 40, "y"),
	})
	m, err := bt.Materialize()
	assert.NoError(t, err)
	contents, err := m.Contents()
	assert.NoError(t, err)
	expect.EQ(t, contents, "chr1\t10\t20\tx\nchr2\t30\t40\ty\n")

	// The iterator side is now consumed.
	_, err = bt.Contents()
	assert.NotNil(t, err)
}

func TestSaveAsTrackline(t *testing.T) {
	sess, cleanup := newSession(t)
	defer cleanup()
	bt, err := bedtool.NewFromString(sess, "chr1 1 2")
	assert.NoError(t, err)

	dest := filepath.Join(sess.TempDir(), "saved.bed")
	saved, err := bt.SaveAs(dest, `track name="mine"`)
	assert.NoError(t, err)
	expect.EQ(t, saved.Path(), dest)

	data, err := ioutil.ReadFile(dest)
	assert.NoError(t, err)
	expect.EQ(t, string(data), "track name=\"mine\"\nchr1\t1\t2\n")

	// The trackline is not a record.
	n, err := saved.Count()
	assert.NoError(t, err)
	expect.EQ(t, n, 1)
}

func TestEqual(t *testing.T) {
	sess, cleanup := newSession(t)
	defer cleanup()
	a, err := bedtool.NewFromString(sess, "chr1 1 2")
	assert.NoError(t, err)
	b, err := bedtool.NewFromString(sess, "chr1 1 2")
	assert.NoError(t, err)
	c, err := bedtool.NewFromString(sess, "chr1 1 3")
	assert.NoError(t, err)

	eq, err := a.Equal(b)
	assert.NoError(t, err)
	expect.True(t, eq)
	eq, err = a.Equal(c)
	assert.NoError(t, err)
	expect.False(t, eq)

	s1 := bedtool.NewFromReader(sess, ioutil.NopCloser(strings.NewReader("x")))
	s2 := bedtool.NewFromReader(sess, ioutil.NopCloser(strings.NewReader("x")))
	_, err = s1.Equal(s2)
	_, ok := err.(bedtool.UsageError)
	assert.True(t, ok)
}

func TestHead(t *testing.T) {
	sess, cleanup := newSession(t)
	defer cleanup()
	bt, err := bedtool.NewFromString(sess, threeFeatures)
	assert.NoError(t, err)
	buf := bytes.Buffer{}
	assert.NoError(t, bt.Head(&buf, 2))
	expect.EQ(t, buf.String(), "chr1\t100\t200\tfeatA\nchr1\t300\t400\tfeatB\n")
}

func TestMoveTo(t *testing.T) {
	sess, cleanup := newSession(t)
	defer cleanup()
	bt, err := bedtool.NewFromString(sess, "chr1 1 2")
	assert.NoError(t, err)
	old := bt.Path()

	dest := filepath.Join(sess.TempDir(), "moved.bed")
	moved, err := bt.MoveTo(dest)
	assert.NoError(t, err)
	expect.EQ(t, moved.Path(), dest)
	_, err = os.Stat(old)
	expect.True(t, os.IsNotExist(err))
}

func TestSessionCleanup(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	sess := bedtool.NewSession(bedtool.Config{TempDir: tempDir})

	bt, err := bedtool.NewFromString(sess, "chr1 1 2")
	assert.NoError(t, err)
	path := bt.Path()
	_, err = os.Stat(path)
	assert.NoError(t, err)

	assert.NoError(t, sess.Cleanup())
	_, err = os.Stat(path)
	expect.True(t, os.IsNotExist(err))
	expect.EQ(t, len(sess.TempFiles()), 0)

	// Cleanup after cleanup is a no-op.
	assert.NoError(t, sess.Cleanup())
}

func TestSessionKeepTempFiles(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	sess := bedtool.NewSession(bedtool.Config{TempDir: tempDir, KeepTempFiles: true})

	bt, err := bedtool.NewFromString(sess, "chr1 1 2")
	assert.NoError(t, err)
	assert.NoError(t, sess.Cleanup())
	_, err = os.Stat(bt.Path())
	assert.NoError(t, err)
}

func TestCleanupAllSweepsStraysOnly(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	sess := bedtool.NewSession(bedtool.Config{TempDir: tempDir})

	// A stray from a hypothetical earlier session, and a user file that
	// must survive the sweep.
	stray := filepath.Join(tempDir, "bedtool.stray123.tmp")
	assert.NoError(t, ioutil.WriteFile(stray, nil, 0600))
	userFile := filepath.Join(tempDir, "precious.bed")
	assert.NoError(t, ioutil.WriteFile(userFile, []byte("chr1\t1\t2\n"), 0600))

	assert.NoError(t, sess.CleanupAll())
	_, err := os.Stat(stray)
	expect.True(t, os.IsNotExist(err))
	_, err = os.Stat(userFile)
	assert.NoError(t, err)
}

func TestSessionsAreIndependent(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	s1 := bedtool.NewSession(bedtool.Config{TempDir: tempDir, TempPrefix: "one."})
	s2 := bedtool.NewSession(bedtool.Config{TempDir: tempDir, TempPrefix: "two."})

	a, err := bedtool.NewFromString(s1, "chr1 1 2")
	assert.NoError(t, err)
	b, err := bedtool.NewFromString(s2, "chr1 1 2")
	assert.NoError(t, err)

	assert.NoError(t, s1.CleanupAll())
	_, err = os.Stat(a.Path())
	expect.True(t, os.IsNotExist(err))
	_, err = os.Stat(b.Path())
	assert.NoError(t, err)
}
