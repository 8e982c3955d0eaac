package invoke_test

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/grailbio/bedtool/invoke"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestLegacyName(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"intersectBed", "intersectBed", true},
		{"intersect", "intersectBed", true},
		{"fastaFromBed", "fastaFromBed", true},
		{"getfasta", "fastaFromBed", true},
		{"jaccard", "jaccard", true},
		{"frobnicate", "", false},
	}
	for _, test := range tests {
		got, ok := invoke.LegacyName(test.in)
		expect.EQ(t, ok, test.ok, test.in)
		expect.EQ(t, got, test.want, test.in)
	}
}

func TestCommandUnified(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	bin := filepath.Join(tempDir, "bedtools")
	assert.NoError(t, ioutil.WriteFile(bin, []byte("#!/bin/sh\n"), 0700))

	r := invoke.NewRunner(invoke.Config{BedtoolsPath: tempDir})
	argv, err := r.Command("intersectBed")
	assert.NoError(t, err)
	expect.EQ(t, argv, []string{bin, "intersect"})

	// Either spelling resolves to the same command.
	argv2, err := r.Command("intersect")
	assert.NoError(t, err)
	expect.EQ(t, argv2, argv)
}

func TestCommandLegacy(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	bin := filepath.Join(tempDir, "mergeBed")
	assert.NoError(t, ioutil.WriteFile(bin, []byte("#!/bin/sh\n"), 0700))

	r := invoke.NewRunner(invoke.Config{BedtoolsPath: tempDir})
	argv, err := r.Command("mergeBed")
	assert.NoError(t, err)
	expect.EQ(t, argv, []string{bin})
}

func TestCommandUnknownProgram(t *testing.T) {
	r := invoke.NewRunner(invoke.Config{})
	_, err := r.Command("rm")
	assert.NotNil(t, err)
}

func TestCommandNothingInstalled(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	r := invoke.NewRunner(invoke.Config{BedtoolsPath: tempDir})
	_, err := r.Command("intersectBed")
	assert.NotNil(t, err)
	nf, ok := err.(*invoke.NotFoundError)
	assert.True(t, ok)
	expect.HasSubstr(t, nf.Error(), "BEDTools")
}

func TestLookAux(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	bin := filepath.Join(tempDir, "tabix")
	assert.NoError(t, ioutil.WriteFile(bin, []byte("#!/bin/sh\n"), 0700))

	r := invoke.NewRunner(invoke.Config{TabixPath: tempDir})
	path, err := r.LookAux("tabix")
	assert.NoError(t, err)
	expect.EQ(t, path, bin)

	_, err = r.LookAux("samtools")
	if err == nil {
		// Fine when samtools happens to be installed on the host.
		t.Log("samtools found on $PATH")
	}
}
