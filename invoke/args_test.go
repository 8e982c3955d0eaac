package invoke_test

import (
	"testing"

	"github.com/grailbio/bedtool/invoke"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		prog string
		opts invoke.Options
		want []string
	}{
		{
			"empty",
			"intersectBed",
			nil,
			[]string{},
		},
		{
			"scalars",
			"intersectBed",
			invoke.Options{
				invoke.String("a", "in.bed"),
				invoke.Int("w", 100),
				invoke.Float("f", 0.5),
			},
			[]string{"-a", "in.bed", "-w", "100", "-f", "0.5"},
		},
		{
			"flag true emits bare token",
			"intersectBed",
			invoke.Options{invoke.Flag("u")},
			[]string{"-u"},
		},
		{
			"flag false vanishes",
			"intersectBed",
			invoke.Options{{Name: "u", Value: false}, invoke.String("a", "x")},
			[]string{"-a", "x"},
		},
		{
			"list as separate tokens",
			"intersectBed",
			invoke.Options{invoke.Strings("b", "x.bed", "y.bed")},
			[]string{"-b", "x.bed", "y.bed"},
		},
		{
			"list comma-joined for mergeBed",
			"mergeBed",
			invoke.Options{
				invoke.Ints("c", 4, 6),
				invoke.Strings("o", "mean", "count"),
			},
			[]string{"-c", "4,6", "-o", "mean,count"},
		},
		{
			"file list as separate tokens for annotateBed",
			"annotateBed",
			invoke.Options{invoke.Strings("files", "x.bed", "y.bed")},
			[]string{"-files", "x.bed", "y.bed"},
		},
		{
			"file list as separate tokens for multiIntersectBed",
			"multiIntersectBed",
			invoke.Options{invoke.Strings("i", "x.bed", "y.bed", "z.bed")},
			[]string{"-i", "x.bed", "y.bed", "z.bed"},
		},
		{
			"list comma-joined for groupBy",
			"groupBy",
			invoke.Options{invoke.Ints("g", 1, 2, 3)},
			[]string{"-g", "1,2,3"},
		},
		{
			"raw tokens pass through",
			"intersectBed",
			invoke.Options{
				invoke.String("a", "in.bed"),
				invoke.Raw("-sorted -g genome.txt"),
			},
			[]string{"-a", "in.bed", "-sorted", "-g", "genome.txt"},
		},
	}
	for _, test := range tests {
		got, err := invoke.Encode(test.prog, test.opts)
		assert.NoError(t, err, test.name)
		expect.EQ(t, got, test.want, test.name)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	opts := invoke.Options{
		invoke.String("a", "in.bed"),
		invoke.Flag("u"),
		invoke.Ints("c", 1, 2),
	}
	first, err := invoke.Encode("mergeBed", opts)
	assert.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := invoke.Encode("mergeBed", opts)
		assert.NoError(t, err)
		expect.EQ(t, again, first)
	}
}

func TestEncodeRejectsUnsupportedValue(t *testing.T) {
	_, err := invoke.Encode("intersectBed", invoke.Options{{Name: "x", Value: struct{}{}}})
	expect.HasSubstr(t, err.Error(), "x")
}

func TestOptionsWithDoesNotAlias(t *testing.T) {
	base := invoke.Options{invoke.String("a", "in.bed")}
	with1 := base.With(invoke.Flag("u"))
	with2 := base.With(invoke.Flag("v"))
	expect.True(t, with1.Has("u"))
	expect.False(t, with1.Has("v"))
	expect.True(t, with2.Has("v"))
	expect.False(t, base.Has("u"))
}
