// Package randomize estimates the significance of an observed overlap
// between two interval collections by comparing it against overlaps obtained
// after randomly relocating one of them many times.
package randomize

import (
	"runtime"
	"sort"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/bedtool/bedtool"
	"github.com/grailbio/bedtool/genome"
	"github.com/grailbio/bedtool/invoke"
	"github.com/pkg/errors"
)

// Opts configures one randomization run.
type Opts struct {
	// Trials is the number of shuffled replicates. Must be positive.
	Trials int
	// Parallelism bounds the number of concurrent workers; 0 means
	// runtime.NumCPU.
	Parallelism int
	// Debug seeds trial i's shuffle with i, making runs reproducible at the
	// cost of independence between repeated invocations.
	Debug bool
	// ShuffleOpts are passed to every shuffle call (e.g. chrom, excl).
	ShuffleOpts invoke.Options
	// IntersectOpts are passed to every overlap count in addition to -u.
	IntersectOpts invoke.Options
	// Session configures the per-worker sessions. Tool paths and temp
	// directory are taken from it; each worker manages its own temp files.
	Session bedtool.Config
}

// Result holds the observed overlap count and the shuffled distribution.
type Result struct {
	// Actual is the overlap count of the unshuffled input.
	Actual int
	// Distribution holds one overlap count per trial, in trial order.
	Distribution []int
}

// Run shuffles the collection at aPath across the genome Opts.Trials times,
// counting after each shuffle how many of its features overlap the
// collection at bPath. Both inputs must be files: every worker reads them
// independently.
func Run(aPath, bPath string, g genome.Spec, opts Opts) (*Result, error) {
	if opts.Trials <= 0 {
		return nil, errors.Errorf("trials must be positive, got %d", opts.Trials)
	}
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	if parallelism > opts.Trials {
		parallelism = opts.Trials
	}

	actual, err := countOverlap(aPath, bPath, opts)
	if err != nil {
		return nil, err
	}

	dist := make([]int, opts.Trials)
	err = traverse.Each(parallelism, func(jobIdx int) error {
		startIdx := (jobIdx * opts.Trials) / parallelism
		endIdx := ((jobIdx + 1) * opts.Trials) / parallelism

		sess := bedtool.NewSession(opts.Session)
		defer func() {
			if err := sess.Cleanup(); err != nil {
				log.Printf("randomize: worker %d cleanup: %v", jobIdx, err)
			}
		}()
		for trial := startIdx; trial < endIdx; trial++ {
			shuffleOpts := opts.ShuffleOpts
			if opts.Debug {
				shuffleOpts = shuffleOpts.With(invoke.Int("seed", trial))
			}
			a, err := bedtool.New(sess, aPath)
			if err != nil {
				return err
			}
			shuffled, err := a.Shuffle(g, shuffleOpts...)
			if err != nil {
				return errors.Wrapf(err, "trial %d: shuffle", trial)
			}
			b, err := bedtool.New(sess, bPath)
			if err != nil {
				return err
			}
			hits, err := shuffled.Intersect(b, append(invoke.Options{invoke.Flag("u")}, opts.IntersectOpts...)...)
			if err != nil {
				return errors.Wrapf(err, "trial %d: intersect", trial)
			}
			n, err := hits.Count()
			if err != nil {
				return err
			}
			dist[trial] = n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Result{Actual: actual, Distribution: dist}, nil
}

// countOverlap reports the unshuffled overlap count, using a private session
// so its temp files never mix with a worker's.
func countOverlap(aPath, bPath string, opts Opts) (int, error) {
	sess := bedtool.NewSession(opts.Session)
	defer func() {
		if err := sess.Cleanup(); err != nil {
			log.Printf("randomize: cleanup: %v", err)
		}
	}()
	a, err := bedtool.New(sess, aPath)
	if err != nil {
		return 0, err
	}
	b, err := bedtool.New(sess, bPath)
	if err != nil {
		return 0, err
	}
	hits, err := a.Intersect(b, append(invoke.Options{invoke.Flag("u")}, opts.IntersectOpts...)...)
	if err != nil {
		return 0, err
	}
	return hits.Count()
}

// sortedCopy returns the distribution in ascending order.
func sortedCopy(dist []int) []int {
	out := append([]int(nil), dist...)
	sort.Ints(out)
	return out
}
