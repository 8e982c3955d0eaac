package invoke

import (
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
)

// Option is a single command-line option destined for a wrapped program.
// Options are kept in a slice rather than a map so that the encoded argv is
// reproducible: encoding the same Options twice yields the same tokens in the
// same order.
type Option struct {
	Name  string
	Value interface{}
}

// Options is an ordered list of options.
type Options []Option

// With returns a copy of o with an extra option appended.
func (o Options) With(opt Option) Options {
	out := make(Options, 0, len(o)+1)
	out = append(out, o...)
	return append(out, opt)
}

// Has reports whether an option with the given name is present.
func (o Options) Has(name string) bool {
	for _, opt := range o {
		if opt.Name == name {
			return true
		}
	}
	return false
}

// rawString marks a value that bypasses encoding and is split into argv
// tokens verbatim.
type rawString string

// RawArgsName is the pseudo-option under which Raw arguments are carried.
const RawArgsName = "additional_args"

// Flag returns a boolean option; it encodes to a bare "-name" token.
func Flag(name string) Option { return Option{Name: name, Value: true} }

// String returns a string-valued option.
func String(name, value string) Option { return Option{Name: name, Value: value} }

// Int returns an integer-valued option.
func Int(name string, value int) Option { return Option{Name: name, Value: value} }

// Float returns a float-valued option.
func Float(name string, value float64) Option { return Option{Name: name, Value: value} }

// Strings returns a list-valued option. How the list is rendered depends on
// the program being invoked; see Encode.
func Strings(name string, values ...string) Option { return Option{Name: name, Value: values} }

// Ints returns an integer-list option.
func Ints(name string, values ...int) Option { return Option{Name: name, Value: values} }

// Raw returns an escape-hatch option: args is split on whitespace and the
// resulting tokens are appended to the argv as-is. Use it for options not
// otherwise modeled.
func Raw(args string) Option { return Option{Name: RawArgsName, Value: rawString(args)} }

// commaListPrograms lists the programs whose list-valued options must be
// rendered as a single comma-joined token (e.g. "mergeBed -c 4,6 -o
// mean,count"). Every other program takes list elements as separate argv
// tokens; in particular annotateBed -files, multiIntersectBed -i, and
// unionBedGraphs -i want one filename per token. Keyed by the legacy
// program name, which is what the operation table uses internally.
var commaListPrograms = map[string]bool{
	"mergeBed":   true,
	"mapBed":     true,
	"groupBy":    true,
	"expandCols": true,
}

// Encode converts an ordered option list into the argv fragment for prog.
// It is a pure function: the same (prog, opts) input always produces the same
// token sequence.
//
// Rules: a true bool becomes a lone "-name" flag and a false bool vanishes;
// scalars become "-name" followed by their string form; lists are either
// comma-joined into one token or emitted as separate tokens depending on
// prog; Raw options append their tokens with no "-name" prefix.
func Encode(prog string, opts Options) ([]string, error) {
	argv := make([]string, 0, 2*len(opts))
	for _, opt := range opts {
		switch v := opt.Value.(type) {
		case rawString:
			argv = append(argv, strings.Fields(string(v))...)
		case bool:
			if v {
				argv = append(argv, "-"+opt.Name)
			}
		case []string:
			argv = appendList(argv, prog, opt.Name, v)
		case []int:
			ss := make([]string, len(v))
			for i, n := range v {
				ss[i] = strconv.Itoa(n)
			}
			argv = appendList(argv, prog, opt.Name, ss)
		case []float64:
			ss := make([]string, len(v))
			for i, f := range v {
				ss[i] = strconv.FormatFloat(f, 'g', -1, 64)
			}
			argv = appendList(argv, prog, opt.Name, ss)
		default:
			s, err := scalar(opt.Value)
			if err != nil {
				return nil, errors.E(err, "encoding option:", opt.Name)
			}
			argv = append(argv, "-"+opt.Name, s)
		}
	}
	return argv, nil
}

func appendList(argv []string, prog, name string, values []string) []string {
	argv = append(argv, "-"+name)
	if commaListPrograms[prog] {
		return append(argv, strings.Join(values, ","))
	}
	return append(argv, values...)
}

func scalar(v interface{}) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	default:
		return "", errors.New("unsupported option value type")
	}
}
