// Package invoke spawns external interval-processing programs, marshalling
// options into argv and wiring stdin/stdout according to whether each side of
// the call is a file or a stream.
package invoke

import (
	"bytes"
	"io"
	"io/ioutil"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/grailbio/base/log"
	"golang.org/x/sync/errgroup"
)

// Request describes one program invocation.
type Request struct {
	// Argv is the full command line, program path included (see
	// Runner.Command for the prefix).
	Argv []string
	// OutputPath receives the child's stdout when non-empty; when empty the
	// output is returned as a live stream instead.
	OutputPath string
	// Stdin, when non-nil, is piped to the child. When nil the child's input
	// comes from the filename arguments in Argv.
	Stdin io.Reader
	// StderrOK optionally classifies stderr text as benign for this call
	// only. The Runner-wide allow-list applies regardless.
	StderrOK func(string) bool
}

// Result is the outcome of a successful invocation. Exactly one of Path and
// Output is set.
type Result struct {
	Path   string
	Output io.ReadCloser
}

// Run executes the request. In the two materializing modes (OutputPath set)
// it blocks until the child exits and the stderr verdict is known. In the
// two streaming modes it returns as soon as the child is started; the
// returned stream's Close reaps the child and reports any fatal stderr, so
// callers must always Close it.
func (r *Runner) Run(req Request) (*Result, error) {
	log.Debug.Printf("invoke: %s", strings.Join(req.Argv, " "))
	cmd := exec.Command(req.Argv[0], req.Argv[1:]...)
	stderr := new(bytes.Buffer)
	cmd.Stderr = stderr

	if req.OutputPath != "" {
		out, err := os.Create(req.OutputPath)
		if err != nil {
			return nil, spawnError(err, req.Argv, req.OutputPath)
		}
		cmd.Stdout = out
		cmd.Stdin = req.Stdin
		runErr := cmd.Run()
		inErr := closeInput(req.Stdin)
		if cerr := out.Close(); cerr != nil && runErr == nil {
			runErr = cerr
		}
		if runErr != nil {
			if _, ok := runErr.(*exec.ExitError); !ok {
				return nil, spawnError(runErr, req.Argv, req.OutputPath)
			}
		}
		// An upstream failure is the root cause: without it the child's
		// input would not have been truncated.
		if inErr != nil {
			return nil, inErr
		}
		if err := r.verdict(req, stderr.String(), runErr); err != nil {
			return nil, err
		}
		return &Result{Path: req.OutputPath}, nil
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, spawnError(err, req.Argv, "")
	}
	var writer *errgroup.Group
	var stdin io.WriteCloser
	if req.Stdin != nil {
		if stdin, err = cmd.StdinPipe(); err != nil {
			return nil, spawnError(err, req.Argv, "")
		}
	}
	if err = cmd.Start(); err != nil {
		return nil, spawnError(err, req.Argv, "")
	}
	if req.Stdin != nil {
		writer = new(errgroup.Group)
		src := req.Stdin
		writer.Go(func() error {
			_, werr := io.Copy(stdin, src)
			// The explicit close is what unblocks the child's final read;
			// without it both sides deadlock.
			cerr := stdin.Close()
			// Closing a streamed source reaps its producer, so this is
			// where an upstream failure announces itself. Report it ahead
			// of copy errors: a truncated copy is its symptom.
			if serr := closeInput(src); serr != nil {
				return serr
			}
			if werr != nil {
				return werr
			}
			return cerr
		})
	}
	return &Result{Output: &procStream{
		runner: r,
		req:    req,
		cmd:    cmd,
		out:    stdout,
		stderr: stderr,
		writer: writer,
	}}, nil
}

// closeInput releases the caller's input source once fully written. Pipes
// chained across many operations leak a descriptor each unless closed here.
// For a streamed source the Close carries the producer's verdict.
func closeInput(r io.Reader) error {
	if c, ok := r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// verdict decides whether the child's stderr (and exit status) amount to a
// failure. Benign stderr is logged and forgotten.
func (r *Runner) verdict(req Request, stderrText string, waitErr error) error {
	trimmed := strings.TrimSpace(stderrText)
	if trimmed != "" {
		if r.stderrOK(req, trimmed) {
			log.Printf("%s: %s", req.Argv[0], trimmed)
		} else {
			return &ToolError{Cmd: strings.Join(req.Argv, " "), Stderr: stderrText}
		}
	}
	if waitErr != nil {
		return &ToolError{Cmd: strings.Join(req.Argv, " "), Stderr: waitErr.Error()}
	}
	return nil
}

func (r *Runner) stderrOK(req Request, text string) bool {
	if req.StderrOK != nil && req.StderrOK(text) {
		return true
	}
	for _, prefix := range r.cfg.BenignStderr {
		if strings.HasPrefix(text, prefix) {
			return true
		}
	}
	return false
}

// procStream is a child's stdout pipe plus the bookkeeping needed to reap
// the child. Close is idempotent; the first call drains any unread output so
// the child can finish, waits for it, and converts fatal stderr into the
// returned error.
type procStream struct {
	runner *Runner
	req    Request
	cmd    *exec.Cmd
	out    io.ReadCloser
	stderr *bytes.Buffer
	writer *errgroup.Group

	once sync.Once
	err  error
}

func (p *procStream) Read(b []byte) (int, error) {
	return p.out.Read(b)
}

func (p *procStream) Close() error {
	p.once.Do(func() {
		_, _ = io.Copy(ioutil.Discard, p.out)
		_ = p.out.Close()
		var writeErr error
		if p.writer != nil {
			writeErr = p.writer.Wait()
		}
		waitErr := p.cmd.Wait()
		p.err = p.runner.verdict(p.req, p.stderr.String(), waitErr)
		if p.err == nil && writeErr != nil {
			p.err = writeErr
		}
	})
	return p.err
}
