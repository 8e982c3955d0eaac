// Package genome provides chromosome-size context: the mapping from
// chromosome name to its valid coordinate range, needed by operations that
// must respect sequence boundaries (shuffling, slop, complement).
package genome

import (
	"bufio"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/tsv"
)

// Entry is one chromosome and its coordinate bounds. Bounds are (start, end)
// rather than a bare length so a table can describe a restricted region
// (e.g. the extent of a tiling array) instead of whole chromosomes.
type Entry struct {
	Chrom string
	Start int64
	End   int64
}

// Sizes is an ordered chromosome-size table.
type Sizes []Entry

// Bounds returns the bounds for chrom.
func (s Sizes) Bounds(chrom string) (Entry, bool) {
	for _, e := range s {
		if e.Chrom == chrom {
			return e, true
		}
	}
	return Entry{}, false
}

// WriteTo writes the table in the two-column "chrom<TAB>size" format the
// external tools consume.
func (s Sizes) WriteTo(w io.Writer) error {
	out := tsv.NewWriter(bufio.NewWriter(w))
	for _, e := range s {
		out.WriteString(e.Chrom)
		out.WriteString(strconv.FormatInt(e.End, 10))
		if err := out.EndLine(); err != nil {
			return err
		}
	}
	return out.Flush()
}

// WriteFile writes the table to path.
func (s Sizes) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = s.WriteTo(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Read parses a two-column chrom-sizes table.
func Read(r io.Reader) (Sizes, error) {
	var sizes Sizes
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, errors.New("chrom sizes: line needs two columns: " + line)
		}
		size, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, errors.E(err, "chrom sizes: bad size for", fields[0])
		}
		sizes = append(sizes, Entry{Chrom: fields[0], End: size})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return sizes, nil
}

// ReadFile reads a chrom-sizes table from path.
func ReadFile(path string) (Sizes, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.E(err, "reading chrom sizes:", path)
	}
	defer f.Close() // nolint: errcheck
	return Read(f)
}

// Lookup returns the registered size table for a UCSC assembly name. The
// registry holds the canonical chromosomes of the assemblies bundled with
// the original tool; downloading unknown assemblies is a collaborator's job,
// see Resolver.Fetch.
func Lookup(assembly string) (Sizes, bool) {
	s, ok := registry[assembly]
	return s, ok
}

// Assemblies lists the registered assembly names.
func Assemblies() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
