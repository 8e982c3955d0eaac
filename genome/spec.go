package genome

import (
	"github.com/grailbio/base/errors"
)

// Spec names a genome in one of three mutually exclusive ways: a registered
// assembly, an explicit size table, or a pre-existing sizes file. The zero
// Spec means "no genome supplied".
type Spec struct {
	assembly string
	sizes    Sizes
	path     string
}

// Assembly specifies a genome by UCSC assembly name ("dm3", "hg19", ...).
func Assembly(name string) Spec { return Spec{assembly: name} }

// FromSizes specifies a genome by explicit chromosome bounds.
func FromSizes(s Sizes) Spec { return Spec{sizes: s} }

// File specifies a genome by an existing chrom-sizes file.
func File(path string) Spec { return Spec{path: path} }

// IsZero reports whether no genome was supplied.
func (s Spec) IsZero() bool {
	return s.assembly == "" && s.sizes == nil && s.path == ""
}

// Resolver turns a Spec into a sizes file on disk. TempFile supplies the
// scratch file for materialized tables (wired to the session temp factory so
// cleanup finds it). Fetch, when set, is consulted for assemblies missing
// from the registry; downloading is deliberately left to collaborators.
type Resolver struct {
	TempFile func() (string, error)
	Fetch    func(assembly string) (Sizes, error)
}

// Resolve returns the path of a chrom-sizes file for spec.
func (r *Resolver) Resolve(spec Spec) (string, error) {
	switch {
	case spec.path != "":
		return spec.path, nil
	case spec.sizes != nil:
		return r.materialize(spec.sizes)
	case spec.assembly != "":
		sizes, ok := Lookup(spec.assembly)
		if !ok {
			if r.Fetch == nil {
				return "", errors.New("assembly " + spec.assembly +
					" is not in the bundled registry and no fetcher is configured; " +
					"supply a chrom-sizes file or an explicit size table instead")
			}
			var err error
			if sizes, err = r.Fetch(spec.assembly); err != nil {
				return "", errors.E(err, "fetching chrom sizes for", spec.assembly)
			}
		}
		return r.materialize(sizes)
	}
	return "", errors.New("empty genome spec")
}

func (r *Resolver) materialize(sizes Sizes) (string, error) {
	path, err := r.TempFile()
	if err != nil {
		return "", err
	}
	if err := sizes.WriteFile(path); err != nil {
		return "", err
	}
	return path, nil
}
