package bedtool

import (
	"io"
	"io/ioutil"
	"strings"

	"github.com/grailbio/bedtool/genome"
	"github.com/grailbio/bedtool/invoke"
)

// Call describes one wrapped-program invocation. The convenience methods
// (Intersect, Merge, ...) are thin shims over Do; Call is the full surface,
// including operations without a dedicated method.
type Call struct {
	// Op is the operation name, either spelling ("intersect" or
	// "intersectBed").
	Op string
	// B is the secondary input for two-input operations. It may be omitted
	// when the caller binds the option (e.g. "b") to a filename directly.
	B *BedTool
	// Genome supplies chromosome-size context for operations that need it.
	Genome genome.Spec
	// Stream leaves the result as a live pipe instead of materializing it
	// to a temp file. Streamed results are single-pass.
	Stream bool
	// Options are the remaining program options, encoded in order.
	Options invoke.Options
	// StderrOK optionally whitelists stderr text for this call.
	StderrOK func(string) bool
}

// Do runs one wrapped operation: binds this collection (and the secondary
// input) to the program's argument conventions, resolves genome context,
// encodes the options, invokes the program, and wraps the result in a new
// BedTool carrying an extended history.
func (bt *BedTool) Do(call Call) (*BedTool, error) {
	spec, err := lookupOp(call.Op)
	if err != nil {
		return nil, err
	}

	opts := make(invoke.Options, 0, len(call.Options)+3)
	var stdin io.Reader
	// Once the backing stream has been claimed as stdin, every failure exit
	// must release it or the producer pipe leaks a descriptor.
	abort := func(err error) (*BedTool, error) {
		if c, ok := stdin.(io.Closer); ok {
			_ = c.Close()
		}
		return nil, err
	}

	// Bind this collection to the program's implicit argument. A few
	// programs take no input collection at all (randomBed) and skip this.
	switch {
	case spec.implicitArg == "" && spec.bamArg == "":
	case bt.kind == backingFile && bt.isBAM:
		if spec.bamArg == "" {
			return nil, UsageError(spec.prog + " cannot operate on BAM input; convert with BamToBed first")
		}
		opts = append(opts, invoke.String(spec.bamArg, bt.path))
	case bt.kind == backingFile:
		if spec.requiresBAM {
			return nil, UsageError(spec.prog + " requires BAM input")
		}
		opts = append(opts, invoke.String(spec.implicitArg, bt.path))
	default:
		arg := spec.implicitArg
		if bt.isBAM {
			if spec.bamArg == "" {
				return nil, UsageError(spec.prog + " cannot operate on BAM input; convert with BamToBed first")
			}
			arg = spec.bamArg
		} else if spec.requiresBAM {
			return nil, UsageError(spec.prog + " requires BAM input")
		}
		opts = append(opts, invoke.String(arg, "stdin"))
		if stdin, err = bt.reader(); err != nil {
			return nil, err
		}
	}

	// Bind the secondary input. It is always passed by filename; a non-file
	// secondary is materialized first, since only the primary input can
	// ride the pipe.
	var parents []*History
	parents = append(parents, bt.hist)
	if call.B != nil {
		if spec.otherArg == "" {
			return abort(UsageError(spec.prog + " takes no secondary input"))
		}
		other, err := call.B.Materialize()
		if err != nil {
			return abort(err)
		}
		opts = append(opts, invoke.String(spec.otherArg, other.path))
		parents = append(parents, other.hist)
	} else if spec.requiresOther && !call.Options.Has(spec.otherArg) {
		return abort(UsageError(spec.prog + " requires a secondary input (-" + spec.otherArg + ")"))
	}

	// Genome context.
	if !call.Genome.IsZero() {
		if spec.genome == genomeNone {
			return abort(UsageError(spec.prog + " takes no genome context"))
		}
		if call.Options.Has(spec.genomeArg()) {
			return abort(UsageError("both a genome spec and an explicit -" + spec.genomeArg() + " were supplied; pick one"))
		}
		resolver := &genome.Resolver{TempFile: bt.sess.TempFile}
		path, err := resolver.Resolve(call.Genome)
		if err != nil {
			return abort(err)
		}
		opts = append(opts, invoke.String(spec.genomeArg(), path))
	} else if spec.genome == genomeRequired && !call.Options.Has(spec.genomeArg()) {
		return abort(UsageError(spec.prog + " needs chromosome-size context; pass a genome.Spec or a -" + spec.genomeArg() + " option"))
	}

	opts = append(opts, call.Options...)

	prefix, err := bt.sess.runner.Command(spec.prog)
	if err != nil {
		return abort(err)
	}
	encoded, err := invoke.Encode(spec.prog, opts)
	if err != nil {
		return abort(err)
	}
	argv := append(prefix, encoded...)

	outPath := ""
	if !call.Stream {
		if outPath, err = bt.sess.TempFile(); err != nil {
			return abort(err)
		}
	}
	res, err := bt.sess.runner.Run(invoke.Request{
		Argv:       argv,
		OutputPath: outPath,
		Stdin:      stdin,
		StderrOK:   call.StderrOK,
	})
	if err != nil {
		// Run has already closed stdin on its own failure paths; Close on
		// a spent stream is idempotent.
		return abort(err)
	}

	result := &BedTool{
		sess:  bt.sess,
		isBAM: deriveBAM(bt, spec, call.Options),
		tag:   newTag(),
	}
	if call.Stream {
		result.kind = backingStream
		result.stream = res.Output
	} else {
		result.kind = backingFile
		result.path = res.Path
	}
	result.hist = newHistory(Step{
		Op:         spec.prog,
		Argv:       argv,
		ParentPath: bt.describeBacking(),
		ParentTag:  bt.tag,
		ResultPath: result.path,
		ResultTag:  result.tag,
	}, parents...)
	return result, nil
}

// deriveBAM decides the result's format flag: inherited from the input by
// default, forced off for operations that always emit text intervals (or
// when -bed asks for text), forced on for operations that always emit BAM.
func deriveBAM(in *BedTool, spec opSpec, userOpts invoke.Options) bool {
	if spec.forceBAM {
		return true
	}
	if spec.forceText || userOpts.Has("bed") {
		return false
	}
	return in.isBAM
}

// Sequence wraps fastaFromBed: it extracts the sequence of every interval
// from the given FASTA and returns a BedTool identical to the receiver but
// with SeqPath pointing at the result. The tool's index-creation notice on
// first use of a FASTA is informational, not an error.
func (bt *BedTool) Sequence(fastaPath string, opts ...invoke.Option) (*BedTool, error) {
	src, err := bt.Materialize()
	if err != nil {
		return nil, err
	}
	outPath, err := bt.sess.TempFile()
	if err != nil {
		return nil, err
	}
	all := invoke.Options{
		invoke.String("bed", src.path),
		invoke.String("fi", fastaPath),
		invoke.String("fo", outPath),
	}
	all = append(all, opts...)
	prefix, err := bt.sess.runner.Command("fastaFromBed")
	if err != nil {
		return nil, err
	}
	encoded, err := invoke.Encode("fastaFromBed", all)
	if err != nil {
		return nil, err
	}
	argv := append(prefix, encoded...)
	// The tool writes the result through -fo itself; its stdout stays empty.
	res, err := bt.sess.runner.Run(invoke.Request{
		Argv:     argv,
		StderrOK: sequenceStderrOK,
	})
	if err != nil {
		return nil, err
	}
	if err = res.Output.Close(); err != nil {
		return nil, err
	}
	result := &BedTool{
		sess:    bt.sess,
		kind:    backingFile,
		path:    src.path,
		format:  src.format,
		tag:     newTag(),
		SeqPath: outPath,
	}
	result.hist = newHistory(Step{
		Op:         "fastaFromBed",
		Argv:       argv,
		ParentPath: src.path,
		ParentTag:  src.tag,
		ResultPath: outPath,
		ResultTag:  result.tag,
	}, src.hist)
	return result, nil
}

// sequenceStderrOK accepts the notices fastaFromBed emits when it has to
// build a .fai index for a FASTA it has not seen before.
func sequenceStderrOK(text string) bool {
	return strings.HasPrefix(text, "index file") || strings.HasPrefix(text, "WARNING")
}

// SaveSeqs copies the FASTA produced by Sequence to path.
func (bt *BedTool) SaveSeqs(path string) error {
	if bt.SeqPath == "" {
		return UsageError("no sequences attached; call Sequence first")
	}
	data, err := ioutil.ReadFile(bt.SeqPath)
	if err != nil {
		return err
	}
	return ioutil.WriteFile(path, data, 0666)
}
