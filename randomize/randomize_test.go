package randomize_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/bedtool/bedtool"
	"github.com/grailbio/bedtool/genome"
	"github.com/grailbio/bedtool/invoke"
	"github.com/grailbio/bedtool/randomize"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

// The fake shuffle translates every interval by the seed, so the overlap
// count of each trial is fully determined by the trial index.
const fakeBedtools = `#!/bin/sh
sub="$1"; shift
a=""; b=""; i=""; seed=0
while [ $# -gt 0 ]; do
  case "$1" in
    -a) a="$2"; shift 2 ;;
    -b) b="$2"; shift 2 ;;
    -i) i="$2"; shift 2 ;;
    -seed) seed="$2"; shift 2 ;;
    -g|-f) shift 2 ;;
    *) shift ;;
  esac
done
case "$sub" in
  intersect) grep -xF -f "$b" "$a" || : ;;
  shuffle) awk -v s="$seed" 'BEGIN{OFS="\t"}{print $1, $2+s, $3+s}' "$i" ;;
  *) echo "unsupported subcommand: $sub" >&2; exit 1 ;;
esac
`

func setup(t *testing.T) (string, bedtool.Config, func()) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	binDir := filepath.Join(tempDir, "bin")
	assert.NoError(t, os.Mkdir(binDir, 0700))
	assert.NoError(t, ioutil.WriteFile(filepath.Join(binDir, "bedtools"), []byte(fakeBedtools), 0700))
	scratch := filepath.Join(tempDir, "scratch")
	assert.NoError(t, os.Mkdir(scratch, 0700))
	cfg := bedtool.Config{
		TempDir: scratch,
		Tools:   invoke.Config{BedtoolsPath: binDir},
	}
	return tempDir, cfg, cleanup
}

func TestRunDebugSeedsAreReproducible(t *testing.T) {
	tempDir, cfg, cleanup := setup(t)
	defer cleanup()

	aPath := filepath.Join(tempDir, "a.bed")
	assert.NoError(t, ioutil.WriteFile(aPath, []byte("chr1\t100\t200\n"), 0600))
	// Trials 0 and 2 translate a onto lines present in b; trial 1 does not.
	bPath := filepath.Join(tempDir, "b.bed")
	assert.NoError(t, ioutil.WriteFile(bPath, []byte("chr1\t100\t200\nchr1\t102\t202\n"), 0600))

	g := genome.FromSizes(genome.Sizes{{Chrom: "chr1", End: 100000}})
	opts := randomize.Opts{
		Trials:      3,
		Parallelism: 2,
		Debug:       true,
		Session:     cfg,
	}
	res, err := randomize.Run(aPath, bPath, g, opts)
	require.NoError(t, err)
	expect.EQ(t, res.Actual, 1)
	expect.EQ(t, res.Distribution, []int{1, 0, 1})

	again, err := randomize.Run(aPath, bPath, g, opts)
	require.NoError(t, err)
	expect.EQ(t, again.Distribution, res.Distribution)
}

func TestRunCleansWorkerTempFiles(t *testing.T) {
	tempDir, cfg, cleanup := setup(t)
	defer cleanup()

	aPath := filepath.Join(tempDir, "a.bed")
	assert.NoError(t, ioutil.WriteFile(aPath, []byte("chr1\t100\t200\n"), 0600))
	bPath := filepath.Join(tempDir, "b.bed")
	assert.NoError(t, ioutil.WriteFile(bPath, []byte("chr1\t100\t200\n"), 0600))

	g := genome.FromSizes(genome.Sizes{{Chrom: "chr1", End: 100000}})
	_, err := randomize.Run(aPath, bPath, g, randomize.Opts{
		Trials:      4,
		Parallelism: 2,
		Debug:       true,
		Session:     cfg,
	})
	assert.NoError(t, err)

	strays, err := filepath.Glob(filepath.Join(cfg.TempDir, "bedtool.*.tmp"))
	assert.NoError(t, err)
	expect.EQ(t, len(strays), 0)
	// The inputs are untouched.
	_, err = os.Stat(aPath)
	assert.NoError(t, err)
	_, err = os.Stat(bPath)
	assert.NoError(t, err)
}

func TestRunRejectsBadTrialCount(t *testing.T) {
	_, cfg, cleanup := setup(t)
	defer cleanup()
	_, err := randomize.Run("a.bed", "b.bed", genome.Assembly("dm3"), randomize.Opts{Session: cfg})
	assert.NotNil(t, err)
}
