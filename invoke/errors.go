package invoke

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

// ToolError reports that a wrapped program produced stderr output judged
// fatal (or exited nonzero with no stderr at all). The full command line is
// embedded so the failure can be reproduced outside the wrapper.
type ToolError struct {
	Cmd    string
	Stderr string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("external tool failed\n\nCommand was:\n\n\t%s\n\nError message was:\n%s",
		e.Cmd, e.Stderr)
}

// NotFoundError reports that a required external program could not be
// located.
type NotFoundError struct {
	Tool string
	// Path is the configured installation directory, if any.
	Path string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s not found", e.Tool)
	if e.Path != "" {
		msg += fmt.Sprintf(" (tried path %q)", e.Path)
	}
	switch e.Tool {
	case "bedtools":
		msg += "; please make sure BEDTools (https://github.com/arq5x/bedtools2) is installed and on the path"
	case "samtools":
		msg += "; samtools (http://www.htslib.org/) must be installed for BAM support"
	case "tabix", "bgzip":
		msg += "; tabix/bgzip (http://www.htslib.org/) must be installed for indexing support"
	default:
		msg += "; please install it or point the session config at its location"
	}
	return msg
}

// spawnError rewrites OS-level launch failures with actionable diagnostics.
// The hints mirror the common failure modes: binary missing from the path,
// no permission on the output file, and descriptor exhaustion from leaked
// handles in long chains.
func spawnError(err error, argv []string, outputPath string) error {
	cmdline := strings.Join(argv, " ")
	if ee, ok := err.(*exec.Error); ok && ee.Err == exec.ErrNotFound {
		return &NotFoundError{Tool: argv[0]}
	}
	if os.IsPermission(err) {
		return fmt.Errorf("permission denied running %q; do you have permission to write to %q?",
			cmdline, outputPath)
	}
	if isEMFILE(err) {
		return fmt.Errorf("too many open files while running %q; close or clean up intermediate results (a leaked descriptor per chained call adds up)",
			cmdline)
	}
	return fmt.Errorf("running %q: %v", cmdline, err)
}

func isEMFILE(err error) bool {
	for err != nil {
		if errno, ok := err.(syscall.Errno); ok {
			return errno == syscall.EMFILE || errno == syscall.ENFILE
		}
		switch e := err.(type) {
		case *os.PathError:
			err = e.Err
		case *os.SyscallError:
			err = e.Err
		case *exec.Error:
			err = e.Err
		default:
			return false
		}
	}
	return false
}
