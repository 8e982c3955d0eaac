// Package interval provides a lightweight genomic interval record: one line
// of a BED/GFF/VCF/SAM dataset parsed into typed fields, plus streaming
// readers for line-oriented interval data.
package interval

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Format tags the detected file format of a record or dataset.
type Format int

const (
	FormatUnknown Format = iota
	FormatBED
	FormatGFF
	FormatVCF
	FormatSAM
	FormatBAM
	FormatEmpty
)

func (f Format) String() string {
	switch f {
	case FormatBED:
		return "bed"
	case FormatGFF:
		return "gff"
	case FormatVCF:
		return "vcf"
	case FormatSAM:
		return "sam"
	case FormatBAM:
		return "bam"
	case FormatEmpty:
		return "empty"
	}
	return "unknown"
}

// MalformedError reports a line that does not parse as an interval record.
type MalformedError struct {
	Line   string
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed record (%s): %q", e.Reason, e.Line)
}

// Interval is one interval record. Start and End are always zero-based
// half-open regardless of the source format; Fields preserves the original
// columns verbatim.
type Interval struct {
	Format Format
	Chrom  string
	Start  int64
	End    int64
	Fields []string
}

// Len returns the interval length in bases.
func (iv Interval) Len() int64 { return iv.End - iv.Start }

// Field returns the i'th original column, or "" when absent.
func (iv Interval) Field(i int) string {
	if i < 0 || i >= len(iv.Fields) {
		return ""
	}
	return iv.Fields[i]
}

// Name returns the record's name field: BED column 4, the ID/Name attribute
// for GFF, the ID column for VCF, the read name for SAM. "." when absent.
func (iv Interval) Name() string {
	switch iv.Format {
	case FormatGFF:
		return gffAttribute(iv.Field(8), "ID", "Name", "gene_id")
	case FormatVCF:
		return orDot(iv.Field(2))
	case FormatSAM:
		return orDot(iv.Field(0))
	default:
		return orDot(iv.Field(3))
	}
}

// Score returns the score column as text ("." when absent).
func (iv Interval) Score() string {
	switch iv.Format {
	case FormatGFF:
		return orDot(iv.Field(5))
	case FormatVCF:
		return orDot(iv.Field(5))
	case FormatSAM:
		return orDot(iv.Field(4))
	default:
		return orDot(iv.Field(4))
	}
}

// Strand returns "+", "-", or ".".
func (iv Interval) Strand() string {
	switch iv.Format {
	case FormatGFF:
		s := iv.Field(6)
		if s == "+" || s == "-" {
			return s
		}
	case FormatSAM:
		if flag, err := strconv.Atoi(iv.Field(1)); err == nil && flag&0x10 != 0 {
			return "-"
		}
		return "+"
	default:
		s := iv.Field(5)
		if s == "+" || s == "-" {
			return s
		}
	}
	return "."
}

// String renders the record in its original column layout, tab-separated,
// without a trailing newline.
func (iv Interval) String() string { return strings.Join(iv.Fields, "\t") }

func orDot(s string) string {
	if s == "" {
		return "."
	}
	return s
}

func gffAttribute(attrs string, keys ...string) string {
	for _, key := range keys {
		for _, part := range strings.Split(attrs, ";") {
			part = strings.TrimSpace(part)
			if strings.HasPrefix(part, key+"=") {
				return strings.Trim(part[len(key)+1:], `"`)
			}
			if strings.HasPrefix(part, key+" ") {
				return strings.Trim(part[len(key)+1:], `"`)
			}
		}
	}
	return "."
}

// DetectFormat classifies a single data line. It is a heuristic over column
// counts and coordinate columns, good enough to choose accessor conventions;
// it never inspects more than the one line given.
func DetectFormat(line string) Format {
	fields := splitColumns(line)
	if len(fields) == 0 {
		return FormatEmpty
	}
	if strings.HasPrefix(fields[0], "@") && len(fields) >= 3 {
		return FormatSAM
	}
	if len(fields) >= 11 && isInt(fields[1]) && isInt(fields[3]) && isInt(fields[4]) && !isInt(fields[0]) && !isInt(fields[2]) {
		return FormatSAM
	}
	if len(fields) >= 8 && isInt(fields[1]) && !isInt(fields[2]) && isACGTN(fields[3]) {
		return FormatVCF
	}
	if len(fields) >= 9 && isInt(fields[3]) && isInt(fields[4]) && !isInt(fields[1]) && !isInt(fields[2]) {
		return FormatGFF
	}
	if len(fields) >= 3 && isInt(fields[1]) && isInt(fields[2]) {
		return FormatBED
	}
	return FormatUnknown
}

// Parse converts one data line into an Interval, detecting its format.
func Parse(line string) (Interval, error) {
	fields := splitColumns(line)
	format := DetectFormat(line)
	iv := Interval{Format: format, Fields: fields}
	var err error
	switch format {
	case FormatBED:
		iv.Chrom = fields[0]
		if iv.Start, err = strconv.ParseInt(fields[1], 10, 64); err != nil {
			return iv, &MalformedError{Line: line, Reason: "bad start coordinate"}
		}
		if iv.End, err = strconv.ParseInt(fields[2], 10, 64); err != nil {
			return iv, &MalformedError{Line: line, Reason: "bad end coordinate"}
		}
	case FormatGFF:
		iv.Chrom = fields[0]
		start, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil {
			return iv, &MalformedError{Line: line, Reason: "bad start coordinate"}
		}
		iv.Start = start - 1 // GFF is one-based inclusive
		if iv.End, err = strconv.ParseInt(fields[4], 10, 64); err != nil {
			return iv, &MalformedError{Line: line, Reason: "bad end coordinate"}
		}
	case FormatVCF:
		iv.Chrom = fields[0]
		pos, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return iv, &MalformedError{Line: line, Reason: "bad position"}
		}
		iv.Start = pos - 1
		iv.End = iv.Start + int64(len(fields[3]))
	case FormatSAM:
		if strings.HasPrefix(fields[0], "@") {
			return iv, &MalformedError{Line: line, Reason: "SAM header line is not a record"}
		}
		iv.Chrom = fields[2]
		pos, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil {
			return iv, &MalformedError{Line: line, Reason: "bad position"}
		}
		iv.Start = pos - 1
		iv.End = iv.Start + int64(len(fields[9]))
	default:
		return iv, &MalformedError{Line: line, Reason: "unrecognized record layout"}
	}
	return iv, nil
}

// Valid reports whether the record has usable coordinates: non-negative
// start and strictly positive length.
func (iv Interval) Valid() bool {
	return iv.Start >= 0 && iv.End > iv.Start
}

// FromCoords builds a BED-format interval from explicit coordinates.
func FromCoords(chrom string, start, end int64, extra ...string) Interval {
	fields := append([]string{chrom, strconv.FormatInt(start, 10), strconv.FormatInt(end, 10)}, extra...)
	return Interval{Format: FormatBED, Chrom: chrom, Start: start, End: end, Fields: fields}
}

// ParseLocus converts "chrom:start-end" or "chrom:start-end[strand]" to an
// interval, assuming zero-based coordinates.
func ParseLocus(s string) (Interval, error) {
	colon := strings.LastIndex(s, ":")
	if colon < 0 {
		return Interval{}, errors.Errorf("locus %q: missing ':'", s)
	}
	rest := s[colon+1:]
	strand := ""
	if n := len(rest); n >= 3 && rest[n-3] == '[' && rest[n-1] == ']' {
		strand = rest[n-2 : n-1]
		rest = rest[:n-3]
	}
	dash := strings.Index(rest, "-")
	if dash < 0 {
		return Interval{}, errors.Errorf("locus %q: missing '-'", s)
	}
	start, err := strconv.ParseInt(rest[:dash], 10, 64)
	if err != nil {
		return Interval{}, errors.Wrapf(err, "locus %q", s)
	}
	end, err := strconv.ParseInt(rest[dash+1:], 10, 64)
	if err != nil {
		return Interval{}, errors.Wrapf(err, "locus %q", s)
	}
	if strand != "" {
		return FromCoords(s[:colon], start, end, ".", "0", strand), nil
	}
	return FromCoords(s[:colon], start, end), nil
}

func splitColumns(line string) []string {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return nil
	}
	if strings.ContainsRune(line, '\t') {
		return strings.Split(line, "\t")
	}
	return strings.Fields(line)
}

func isInt(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func isACGTN(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'A', 'C', 'G', 'T', 'N', 'a', 'c', 'g', 't', 'n':
		default:
			return false
		}
	}
	return true
}
