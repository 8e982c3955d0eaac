// Package bedtool wraps the BEDTools suite of genome-arithmetic programs in
// a chained-method interface. A BedTool is a handle to an interval dataset
// (a file, a live subprocess stream, or an in-memory iterator); every
// wrapped operation spawns the external program and returns a new BedTool
// for its output, recording the step in a lineage history.
package bedtool

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/bedtool/invoke"
)

const tempSuffix = ".tmp"

// Config configures a Session.
type Config struct {
	// TempDir is where intermediate results are written. Defaults to the
	// platform temp dir. Override on clusters with a /scratch partition.
	TempDir string
	// TempPrefix names intermediate files "<TempPrefix><random>.tmp".
	// CleanupAll relies on this pattern to scope its deletion, so the
	// prefix should be distinctive. Defaults to "bedtool.".
	TempPrefix string
	// KeepTempFiles suppresses all cleanup; useful when debugging a chain.
	KeepTempFiles bool
	// Tools locates the external programs.
	Tools invoke.Config
	// Confirm, when set, gates DeleteTemporaryHistory: it receives the list
	// of files about to be removed and returns whether to proceed.
	Confirm func(paths []string) bool
}

// Session owns the per-session state the wrapper needs: the tool runner and
// the registry of temp files created so far. State is injected rather than
// process-global so independent sessions (and tests) cannot interfere with
// one another. Sessions are safe for concurrent use, but note that the
// registry does not cross process boundaries: worker processes must clean
// up their own files.
type Session struct {
	cfg    Config
	runner *invoke.Runner

	mu        sync.Mutex
	tempFiles []string
}

// NewSession returns a Session with the given configuration.
func NewSession(cfg Config) *Session {
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	if cfg.TempPrefix == "" {
		cfg.TempPrefix = "bedtool."
	}
	return &Session{cfg: cfg, runner: invoke.NewRunner(cfg.Tools)}
}

// Runner returns the session's tool runner.
func (s *Session) Runner() *invoke.Runner { return s.runner }

// TempDir returns the session's temp directory.
func (s *Session) TempDir() string { return s.cfg.TempDir }

// TempFile creates an empty registered temp file and returns its path. All
// intermediate files go through here so Cleanup can find every one of them.
func (s *Session) TempFile() (string, error) {
	f, err := ioutil.TempFile(s.cfg.TempDir, s.cfg.TempPrefix+"*"+tempSuffix)
	if err != nil {
		return "", errors.E(err, "creating temp file in", s.cfg.TempDir)
	}
	path := f.Name()
	if err = f.Close(); err != nil {
		return "", err
	}
	s.Register(path)
	return path, nil
}

// Register adds an externally created file to the cleanup registry.
func (s *Session) Register(path string) {
	s.mu.Lock()
	s.tempFiles = append(s.tempFiles, path)
	s.mu.Unlock()
}

// TempFiles returns a snapshot of the registry.
func (s *Session) TempFiles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.tempFiles...)
}

// Cleanup deletes every registered temp file still on disk and clears the
// registry. It is a no-op when KeepTempFiles is set.
func (s *Session) Cleanup() error {
	if s.cfg.KeepTempFiles {
		return nil
	}
	s.mu.Lock()
	files := s.tempFiles
	s.tempFiles = nil
	s.mu.Unlock()
	var firstErr error
	for _, fn := range files {
		log.Debug.Printf("cleanup: removing %s", fn)
		if err := os.Remove(fn); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// CleanupAll is Cleanup plus a sweep of every file in the temp directory
// matching the session naming pattern, including strays from prior
// sessions. Files outside the pattern are never touched.
func (s *Session) CleanupAll() error {
	if s.cfg.KeepTempFiles {
		return nil
	}
	err := s.Cleanup()
	strays, globErr := filepath.Glob(filepath.Join(s.cfg.TempDir, s.cfg.TempPrefix+"*"+tempSuffix))
	if globErr != nil && err == nil {
		err = globErr
	}
	for _, fn := range strays {
		log.Debug.Printf("cleanup: removing stray %s", fn)
		if rmErr := os.Remove(fn); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
			err = rmErr
		}
	}
	return err
}

// isManagedTemp reports whether path lives in the session temp directory
// and follows the session naming convention. History cleanup refuses to
// delete anything else, so a user's own files can never be removed by the
// wrapper even if they appear in a lineage.
func (s *Session) isManagedTemp(path string) bool {
	if filepath.Dir(path) != filepath.Clean(s.cfg.TempDir) {
		return false
	}
	base := filepath.Base(path)
	return strings.HasPrefix(base, s.cfg.TempPrefix) && strings.HasSuffix(base, tempSuffix)
}
