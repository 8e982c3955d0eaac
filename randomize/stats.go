package randomize

import (
	"fmt"
	"io"
	"math"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
)

// Summary compares the observed overlap count with the shuffled
// distribution.
type Summary struct {
	Trials int
	Actual int

	// Distribution statistics.
	Median float64
	Mean   float64
	Stdev  float64

	// FracAbove and FracBelow are the fraction of trials whose count was
	// at or above / at or below the observed count, so a trial that ties
	// the observation counts toward both. FracAbove is the empirical
	// one-sided p-value for enrichment.
	FracAbove float64
	FracBelow float64

	// Percentile is the observed count's position in the shuffled
	// distribution, in [0, 100].
	Percentile float64

	// Enrichment is actual / median of the distribution. Infinite when the
	// median is zero and the actual count is not.
	Enrichment float64
}

// Summarize reduces a randomization result to its summary statistics.
func Summarize(res *Result) (*Summary, error) {
	if len(res.Distribution) == 0 {
		return nil, errors.New("empty distribution")
	}
	data := stats.LoadRawData(res.Distribution)
	median, err := data.Median()
	if err != nil {
		return nil, err
	}
	mean, err := data.Mean()
	if err != nil {
		return nil, err
	}
	stdev := 0.0
	if len(res.Distribution) > 1 {
		if stdev, err = data.StandardDeviationSample(); err != nil {
			return nil, err
		}
	}

	above, below := 0, 0
	for _, n := range res.Distribution {
		if n >= res.Actual {
			above++
		}
		if n <= res.Actual {
			below++
		}
	}
	trials := len(res.Distribution)

	enrichment := 0.0
	switch {
	case median != 0:
		enrichment = float64(res.Actual) / median
	case res.Actual != 0:
		enrichment = math.Inf(1)
	}

	return &Summary{
		Trials:     trials,
		Actual:     res.Actual,
		Median:     median,
		Mean:       mean,
		Stdev:      stdev,
		FracAbove:  float64(above) / float64(trials),
		FracBelow:  float64(below) / float64(trials),
		Percentile: percentileOf(res.Distribution, res.Actual),
		Enrichment: enrichment,
	}, nil
}

// percentileOf reports the percentage of trials at or below the observed
// count.
func percentileOf(dist []int, actual int) float64 {
	atOrBelow := 0
	for _, n := range sortedCopy(dist) {
		if n > actual {
			break
		}
		atOrBelow++
	}
	return 100 * float64(atOrBelow) / float64(len(dist))
}

// WriteReport renders the summary as aligned key-value lines.
func (s *Summary) WriteReport(w io.Writer) error {
	_, err := fmt.Fprintf(w,
		"trials:      %d\n"+
			"actual:      %d\n"+
			"median:      %.2f\n"+
			"mean:        %.2f\n"+
			"stdev:       %.2f\n"+
			"frac above:  %.4f\n"+
			"frac below:  %.4f\n"+
			"percentile:  %.1f\n"+
			"enrichment:  %.3f\n",
		s.Trials, s.Actual, s.Median, s.Mean, s.Stdev,
		s.FracAbove, s.FracBelow, s.Percentile, s.Enrichment)
	return err
}
