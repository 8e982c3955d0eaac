package main

/*
bed-randstats estimates the significance of the overlap between two interval
files by shuffling the first across the genome many times and comparing the
observed overlap count with the shuffled distribution.
*/

import (
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/bedtool/bedtool"
	"github.com/grailbio/bedtool/genome"
	"github.com/grailbio/bedtool/invoke"
	"github.com/grailbio/bedtool/randomize"
)

var (
	assembly     = flag.String("genome", "", "Assembly name (dm3, mm9, hg18, hg19); this xor -genome-file required")
	genomeFile   = flag.String("genome-file", "", "Chromosome-sizes file; this xor -genome required")
	trials       = flag.Int("trials", 1000, "Number of shuffled replicates")
	parallelism  = flag.Int("parallelism", 0, "Maximum number of simultaneous shuffle jobs; 0 = runtime.NumCPU()")
	debugSeeds   = flag.Bool("debug", false, "Seed trial i's shuffle with i for reproducible runs")
	chrom        = flag.Bool("chrom", false, "Keep each feature on its original chromosome when shuffling")
	bedtoolsPath = flag.String("bedtools-path", "", "Directory holding the bedtools binary (default $PATH)")
	tempDir      = flag.String("temp-dir", "", "Directory to write temporary files to (default os.TempDir())")
	keepTemp     = flag.Bool("keep-temp", false, "Leave temporary files behind for inspection")
)

func randstatsUsage() {
	fmt.Printf("Usage: %s [OPTIONS] query.bed reference.bed\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = randstatsUsage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() != 2 {
		log.Fatalf("Exactly two positional arguments expected (query.bed and reference.bed), got %d", flag.NArg())
	}
	aPath, bPath := flag.Arg(0), flag.Arg(1)

	var g genome.Spec
	switch {
	case *assembly != "" && *genomeFile != "":
		log.Fatalf("-genome and -genome-file are mutually exclusive")
	case *assembly != "":
		g = genome.Assembly(*assembly)
	case *genomeFile != "":
		g = genome.File(*genomeFile)
	default:
		log.Fatalf("One of -genome or -genome-file is required")
	}

	opts := randomize.Opts{
		Trials:      *trials,
		Parallelism: *parallelism,
		Debug:       *debugSeeds,
		Session: bedtool.Config{
			TempDir:       *tempDir,
			KeepTempFiles: *keepTemp,
			Tools:         invoke.Config{BedtoolsPath: *bedtoolsPath},
		},
	}
	if *chrom {
		opts.ShuffleOpts = invoke.Options{invoke.Flag("chrom")}
	}

	res, err := randomize.Run(aPath, bPath, g, opts)
	if err != nil {
		log.Fatalf("%v", err)
	}
	summary, err := randomize.Summarize(res)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if err := summary.WriteReport(os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}
	log.Debug.Printf("exiting")
}
