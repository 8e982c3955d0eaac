package invoke

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/grailbio/base/errors"
	"v.io/x/lib/envvar"
	"v.io/x/lib/lookpath"
)

// Config carries the process-external tool locations for one Runner. Empty
// paths mean "search $PATH". Paths name the installation directory, not the
// binary itself.
type Config struct {
	BedtoolsPath string
	SamtoolsPath string
	TabixPath    string
	BgzipPath    string

	// BenignStderr lists stderr prefixes that are informational rather than
	// fatal (e.g. the index-creation notice emitted by getfasta). Checked in
	// addition to any per-request classifier.
	BenignStderr []string
}

// Runner invokes external interval-processing programs. It caches the result
// of the naming-convention probe: BEDTools >= 2.15 ships a single "bedtools"
// binary with subcommands, older installations one binary per operation
// ("intersectBed"). The probe runs once per Runner.
type Runner struct {
	cfg Config

	mu      sync.Mutex
	probed  bool
	unified bool
}

// NewRunner returns a Runner using the given tool locations.
func NewRunner(cfg Config) *Runner {
	return &Runner{cfg: cfg}
}

// progNames maps the legacy per-operation binary names to the unified
// subcommand names. Command rejects anything not listed here, so arbitrary
// binaries cannot be launched through the dispatch path.
var progNames = map[string]string{
	// genome arithmetic
	"intersectBed":      "intersect",
	"windowBed":         "window",
	"closestBed":        "closest",
	"coverageBed":       "coverage",
	"mapBed":            "map",
	"genomeCoverageBed": "genomecov",
	"mergeBed":          "merge",
	"clusterBed":        "cluster",
	"complementBed":     "complement",
	"subtractBed":       "subtract",
	"slopBed":           "slop",
	"flankBed":          "flank",
	"sortBed":           "sort",
	"randomBed":         "random",
	"shuffleBed":        "shuffle",
	"annotateBed":       "annotate",

	// multi-way
	"multiIntersectBed": "multiinter",
	"unionBedGraphs":    "unionbedg",

	// paired-end
	"pairToBed":  "pairtobed",
	"pairToPair": "pairtopair",

	// format conversion
	"bamToBed":    "bamtobed",
	"bedToBam":    "bedtobam",
	"bedpeToBam":  "bedpetobam",
	"bed12ToBed6": "bed12tobed6",
	"bamToFastq":  "bamtofastq",

	// fasta
	"fastaFromBed":     "getfasta",
	"maskFastaFromBed": "maskfasta",
	"nucBed":           "nuc",

	// bam-centric
	"multiBamCov": "multicov",
	"tagBam":      "tag",

	// statistics
	"jaccard": "jaccard",
	"reldist": "reldist",
	"fisher":  "fisher",

	// misc
	"getOverlap":  "overlap",
	"bedToIgv":    "igv",
	"linksBed":    "links",
	"windowMaker": "makewindows",
	"groupBy":     "groupby",
	"expandCols":  "expand",
	"sample":      "sample",
}

var legacyNames = func() map[string]string {
	m := make(map[string]string, len(progNames))
	for legacy, sub := range progNames {
		m[sub] = legacy
	}
	return m
}()

// LegacyName translates either naming convention to the legacy program name,
// which the operation table and the list-delimiter table key on.
func LegacyName(prog string) (string, bool) {
	if _, ok := progNames[prog]; ok {
		return prog, true
	}
	if legacy, ok := legacyNames[prog]; ok {
		return legacy, true
	}
	return "", false
}

// Command returns the argv prefix for the given program (legacy or
// subcommand spelling accepted): either ["/path/bedtools", "intersect"] or
// ["/path/intersectBed"], depending on what is installed.
func (r *Runner) Command(prog string) ([]string, error) {
	legacy, ok := LegacyName(prog)
	if !ok {
		return nil, errors.New(prog + " is not a recognized BEDTools program")
	}
	unified, err := r.detect(legacy)
	if err != nil {
		return nil, err
	}
	if unified {
		path, err := r.look("bedtools", r.cfg.BedtoolsPath)
		if err != nil {
			return nil, err
		}
		return []string{path, progNames[legacy]}, nil
	}
	path, err := r.look(legacy, r.cfg.BedtoolsPath)
	if err != nil {
		return nil, err
	}
	return []string{path}, nil
}

// LookAux locates an auxiliary tool (samtools, tabix, bgzip) honoring the
// configured directories.
func (r *Runner) LookAux(tool string) (string, error) {
	dir := ""
	switch tool {
	case "samtools":
		dir = r.cfg.SamtoolsPath
	case "tabix":
		dir = r.cfg.TabixPath
	case "bgzip":
		dir = r.cfg.BgzipPath
	}
	return r.look(tool, dir)
}

func (r *Runner) detect(legacy string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.probed {
		return r.unified, nil
	}
	if _, err := r.look("bedtools", r.cfg.BedtoolsPath); err == nil {
		r.probed, r.unified = true, true
		return true, nil
	}
	if _, err := r.look(legacy, r.cfg.BedtoolsPath); err == nil {
		r.probed, r.unified = true, false
		return false, nil
	}
	return false, &NotFoundError{Tool: "bedtools", Path: r.cfg.BedtoolsPath}
}

func (r *Runner) look(name, dir string) (string, error) {
	if dir != "" {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return "", &NotFoundError{Tool: name, Path: dir}
		}
		return path, nil
	}
	path, err := lookpath.Look(envvar.SliceToMap(os.Environ()), name)
	if err != nil {
		return "", &NotFoundError{Tool: name}
	}
	return path, nil
}
