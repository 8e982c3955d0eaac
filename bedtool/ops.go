package bedtool

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/bedtool/genome"
	"github.com/grailbio/bedtool/invoke"
	"github.com/pkg/errors"
)

// genomeMode states a program's relationship to chromosome-size context.
type genomeMode int

const (
	genomeNone     genomeMode = iota // -g is not an option
	genomeOptional                   // -g accepted but not required
	genomeRequired                   // refuses to run without -g
)

// opSpec describes how one wrapped program binds its inputs. The table below
// replaces a per-method copy of the same routing logic; Do interprets it.
type opSpec struct {
	prog          string     // legacy program name, keys invoke's tables
	implicitArg   string     // option receiving this collection's path (or "stdin")
	otherArg      string     // option receiving the secondary input, "" if unary
	bamArg        string     // option used instead of implicitArg for BAM input, "" if unsupported
	genome        genomeMode // chromosome-size context requirement
	requiresOther bool       // refuses to run without a secondary input
	requiresBAM   bool       // input must be BAM (e.g. bamToBed)
	forceText     bool       // output is never BAM regardless of input
	forceBAM      bool       // output is always BAM
}

func (s opSpec) genomeArg() string { return "g" }

var opTable = map[string]opSpec{
	"intersectBed":      {prog: "intersectBed", implicitArg: "a", otherArg: "b", bamArg: "abam", requiresOther: true},
	"subtractBed":       {prog: "subtractBed", implicitArg: "a", otherArg: "b", requiresOther: true, forceText: true},
	"windowBed":         {prog: "windowBed", implicitArg: "a", otherArg: "b", bamArg: "abam", requiresOther: true},
	"closestBed":        {prog: "closestBed", implicitArg: "a", otherArg: "b", requiresOther: true, forceText: true},
	"coverageBed":       {prog: "coverageBed", implicitArg: "a", otherArg: "b", bamArg: "abam", requiresOther: true, forceText: true},
	"mapBed":            {prog: "mapBed", implicitArg: "a", otherArg: "b", requiresOther: true, genome: genomeOptional, forceText: true},
	"mergeBed":          {prog: "mergeBed", implicitArg: "i", forceText: true},
	"clusterBed":        {prog: "clusterBed", implicitArg: "i", forceText: true},
	"sortBed":           {prog: "sortBed", implicitArg: "i", genome: genomeOptional, forceText: true},
	"shuffleBed":        {prog: "shuffleBed", implicitArg: "i", genome: genomeRequired, forceText: true},
	"slopBed":           {prog: "slopBed", implicitArg: "i", genome: genomeRequired, forceText: true},
	"flankBed":          {prog: "flankBed", implicitArg: "i", genome: genomeRequired, forceText: true},
	"complementBed":     {prog: "complementBed", implicitArg: "i", genome: genomeRequired, forceText: true},
	"genomeCoverageBed": {prog: "genomeCoverageBed", implicitArg: "i", bamArg: "ibam", genome: genomeRequired, forceText: true},
	"annotateBed":       {prog: "annotateBed", implicitArg: "i", forceText: true},
	"groupBy":           {prog: "groupBy", implicitArg: "i", forceText: true},
	"expandCols":        {prog: "expandCols", implicitArg: "i", forceText: true},
	"windowMaker":       {prog: "windowMaker", implicitArg: "b", genome: genomeOptional, forceText: true},
	"randomBed":         {prog: "randomBed", implicitArg: "", genome: genomeRequired, forceText: true},
	"bamToBed":          {prog: "bamToBed", implicitArg: "i", bamArg: "i", requiresBAM: true, forceText: true},
	"bedToBam":          {prog: "bedToBam", implicitArg: "i", genome: genomeRequired, forceBAM: true},
	"bed12ToBed6":       {prog: "bed12ToBed6", implicitArg: "i", forceText: true},
	"nucBed":            {prog: "nucBed", implicitArg: "bed", forceText: true},
	"tagBam":            {prog: "tagBam", implicitArg: "i", bamArg: "i", requiresBAM: true, forceBAM: true},
	"jaccard":           {prog: "jaccard", implicitArg: "a", otherArg: "b", requiresOther: true, forceText: true},
	"reldist":           {prog: "reldist", implicitArg: "a", otherArg: "b", requiresOther: true, forceText: true},
	"fisher":            {prog: "fisher", implicitArg: "a", otherArg: "b", requiresOther: true, genome: genomeRequired, forceText: true},
	"getOverlap":        {prog: "getOverlap", implicitArg: "i", forceText: true},
	"linksBed":          {prog: "linksBed", implicitArg: "i", forceText: true},
	"bedToIgv":          {prog: "bedToIgv", implicitArg: "i", forceText: true},
	"sample":            {prog: "sample", implicitArg: "i", bamArg: "i", forceText: true},
	"pairToBed":         {prog: "pairToBed", implicitArg: "a", otherArg: "b", bamArg: "abam", requiresOther: true},
	"pairToPair":        {prog: "pairToPair", implicitArg: "a", otherArg: "b", requiresOther: true, forceText: true},
}

func lookupOp(op string) (opSpec, error) {
	legacy, ok := invoke.LegacyName(op)
	if !ok {
		return opSpec{}, UsageError(op + " is not a recognized operation")
	}
	spec, ok := opTable[legacy]
	if !ok {
		return opSpec{}, UsageError(op + " has no dispatch entry; use Session.Runner directly")
	}
	return spec, nil
}

// Intersect reports features in bt overlapping b. With invoke.Flag("u") it
// reports each feature of bt at most once; with invoke.Flag("v") it inverts
// the match.
func (bt *BedTool) Intersect(b *BedTool, opts ...invoke.Option) (*BedTool, error) {
	return bt.Do(Call{Op: "intersectBed", B: b, Options: opts})
}

// Subtract removes from bt the portions covered by b.
func (bt *BedTool) Subtract(b *BedTool, opts ...invoke.Option) (*BedTool, error) {
	return bt.Do(Call{Op: "subtractBed", B: b, Options: opts})
}

// Merge combines overlapping or book-ended features. The input must be
// position-sorted.
func (bt *BedTool) Merge(opts ...invoke.Option) (*BedTool, error) {
	return bt.Do(Call{Op: "mergeBed", Options: opts})
}

// Sort orders features by chromosome then start position.
func (bt *BedTool) Sort(opts ...invoke.Option) (*BedTool, error) {
	return bt.Do(Call{Op: "sortBed", Options: opts})
}

// Shuffle relocates each feature to a random position in the genome,
// preserving its length.
func (bt *BedTool) Shuffle(g genome.Spec, opts ...invoke.Option) (*BedTool, error) {
	return bt.Do(Call{Op: "shuffleBed", Genome: g, Options: opts})
}

// Slop widens each feature by the requested number of bases, clamped to
// chromosome bounds.
func (bt *BedTool) Slop(g genome.Spec, opts ...invoke.Option) (*BedTool, error) {
	return bt.Do(Call{Op: "slopBed", Genome: g, Options: opts})
}

// Flank creates flanking intervals on either side of each feature.
func (bt *BedTool) Flank(g genome.Spec, opts ...invoke.Option) (*BedTool, error) {
	return bt.Do(Call{Op: "flankBed", Genome: g, Options: opts})
}

// Closest reports, for each feature in bt, the nearest feature in b.
func (bt *BedTool) Closest(b *BedTool, opts ...invoke.Option) (*BedTool, error) {
	return bt.Do(Call{Op: "closestBed", B: b, Options: opts})
}

// Window reports overlaps between bt and b within a fixed window around each
// feature.
func (bt *BedTool) Window(b *BedTool, opts ...invoke.Option) (*BedTool, error) {
	return bt.Do(Call{Op: "windowBed", B: b, Options: opts})
}

// Complement reports the genomic intervals not covered by any feature.
func (bt *BedTool) Complement(g genome.Spec, opts ...invoke.Option) (*BedTool, error) {
	return bt.Do(Call{Op: "complementBed", Genome: g, Options: opts})
}

// Coverage computes the depth and breadth of coverage of b on bt.
func (bt *BedTool) Coverage(b *BedTool, opts ...invoke.Option) (*BedTool, error) {
	return bt.Do(Call{Op: "coverageBed", B: b, Options: opts})
}

// GenomeCoverage computes a histogram or per-base report of coverage across
// the whole genome.
func (bt *BedTool) GenomeCoverage(g genome.Spec, opts ...invoke.Option) (*BedTool, error) {
	return bt.Do(Call{Op: "genomeCoverageBed", Genome: g, Options: opts})
}

// Map applies a column summary (sum, mean, collapse, ...) over features of b
// overlapping each feature of bt.
func (bt *BedTool) Map(b *BedTool, opts ...invoke.Option) (*BedTool, error) {
	return bt.Do(Call{Op: "mapBed", B: b, Options: opts})
}

// Cluster assigns an id to each cluster of overlapping features.
func (bt *BedTool) Cluster(opts ...invoke.Option) (*BedTool, error) {
	return bt.Do(Call{Op: "clusterBed", Options: opts})
}

// GroupBy aggregates rows sharing key columns, like a SQL GROUP BY over a
// sorted file.
func (bt *BedTool) GroupBy(opts ...invoke.Option) (*BedTool, error) {
	return bt.Do(Call{Op: "groupBy", Options: opts})
}

// Annotate reports the coverage of each of a set of annotation files on bt.
func (bt *BedTool) Annotate(files []string, opts ...invoke.Option) (*BedTool, error) {
	all := invoke.Options{invoke.Strings("files", files...)}
	all = append(all, opts...)
	return bt.Do(Call{Op: "annotateBed", Options: all})
}

// BamToBed converts BAM alignments to BED intervals.
func (bt *BedTool) BamToBed(opts ...invoke.Option) (*BedTool, error) {
	return bt.Do(Call{Op: "bamToBed", Options: opts})
}

// BedToBam converts BED intervals to unaligned-quality BAM records.
func (bt *BedTool) BedToBam(g genome.Spec, opts ...invoke.Option) (*BedTool, error) {
	return bt.Do(Call{Op: "bedToBam", Genome: g, Options: opts})
}

// MakeWindows tiles each feature (or the whole genome when bt is nil-like)
// with fixed-size windows.
func (bt *BedTool) MakeWindows(opts ...invoke.Option) (*BedTool, error) {
	return bt.Do(Call{Op: "windowMaker", Options: opts})
}

// JaccardResult is the parsed single-row output of the jaccard statistic.
type JaccardResult struct {
	Intersection   int64
	Union          int64
	Jaccard        float64
	NIntersections int64
}

// Jaccard computes the Jaccard similarity of bt and b. Both inputs must be
// position-sorted.
func (bt *BedTool) Jaccard(b *BedTool, opts ...invoke.Option) (JaccardResult, error) {
	res, err := bt.Do(Call{Op: "jaccard", B: b, Stream: true, Options: opts})
	if err != nil {
		return JaccardResult{}, err
	}
	defer res.Close() // nolint: errcheck
	r, err := res.reader()
	if err != nil {
		return JaccardResult{}, err
	}
	return parseJaccard(r)
}

func parseJaccard(r io.Reader) (JaccardResult, error) {
	scanner := bufio.NewScanner(r)
	var cols []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "intersection") {
			continue
		}
		cols = strings.Split(line, "\t")
		break
	}
	if err := scanner.Err(); err != nil {
		return JaccardResult{}, err
	}
	if len(cols) < 4 {
		return JaccardResult{}, errors.New("jaccard: malformed output")
	}
	var out JaccardResult
	var err error
	if out.Intersection, err = strconv.ParseInt(cols[0], 10, 64); err != nil {
		return JaccardResult{}, errors.Wrap(err, "jaccard: intersection")
	}
	if out.Union, err = strconv.ParseInt(cols[1], 10, 64); err != nil {
		return JaccardResult{}, errors.Wrap(err, "jaccard: union")
	}
	if out.Jaccard, err = strconv.ParseFloat(cols[2], 64); err != nil {
		return JaccardResult{}, errors.Wrap(err, "jaccard: ratio")
	}
	if out.NIntersections, err = strconv.ParseInt(cols[3], 10, 64); err != nil {
		return JaccardResult{}, errors.Wrap(err, "jaccard: count")
	}
	return out, nil
}

// Random generates n random intervals of length l in the genome.
func (s *Session) Random(g genome.Spec, opts ...invoke.Option) (*BedTool, error) {
	seed, err := NewFromString(s, "")
	if err != nil {
		return nil, err
	}
	// randomBed takes no input collection; route through an empty one so the
	// dispatch and history machinery still apply.
	return seed.Do(Call{Op: "randomBed", Genome: g, Options: opts})
}

// Tabix block-compresses the collection with bgzip and indexes it with tabix,
// returning the path of the compressed file. The input must be sorted.
func (bt *BedTool) Tabix(opts ...invoke.Option) (string, error) {
	src, err := bt.Materialize()
	if err != nil {
		return "", err
	}
	bgzip, err := bt.sess.runner.LookAux("bgzip")
	if err != nil {
		return "", err
	}
	tabix, err := bt.sess.runner.LookAux("tabix")
	if err != nil {
		return "", err
	}
	gzPath := src.path + ".gz"
	bt.sess.Register(gzPath)
	bt.sess.Register(gzPath + ".tbi")
	if _, err := bt.sess.runner.Run(invoke.Request{
		Argv:       []string{bgzip, "-c", src.path},
		OutputPath: gzPath,
	}); err != nil {
		return "", err
	}
	argv := []string{tabix, "-p", "bed"}
	for _, o := range opts {
		argv = append(argv, "-"+o.Name)
		if s, ok := o.Value.(string); ok && s != "" {
			argv = append(argv, s)
		}
	}
	argv = append(argv, gzPath)
	res, err := bt.sess.runner.Run(invoke.Request{Argv: argv})
	if err != nil {
		return "", err
	}
	if err := res.Output.Close(); err != nil {
		return "", err
	}
	return gzPath, nil
}
