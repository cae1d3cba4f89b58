package yaml

import (
	"reflect"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/inercia/go-yaml-tree/pkg/node"
	"github.com/inercia/go-yaml-tree/pkg/printer"
)

// EqualYAMLs compares two YAML documents by parsing them and comparing the
// resulting trees. Note well that this function does not take into account
// spaces, comments, quoting or key order: it only compares the contents.
// Empty documents are equal to each other and to {}.
func EqualYAMLs(a []byte, b []byte) (bool, error) {
	an, err := readOptional(a)
	if err != nil {
		return false, err
	}
	bn, err := readOptional(b)
	if err != nil {
		return false, err
	}
	return node.Equal(normalizeRoot(an), normalizeRoot(bn)), nil
}

func normalizeRoot(n node.Node) node.Node {
	if node.IsNil(n) || (n.IsEmpty() && n.Kind() != node.SequenceKind) {
		return node.EmptyMapping()
	}
	return n
}

/////////////////////////////////////////////////////////////////////////////////////

var spewConfig = spew.ConfigState{
	Indent:                  " ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
	DisableMethods:          true,
	MaxDepth:                10,
}

var spewConfigStringerEnabled = spew.ConfigState{
	Indent:                  " ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
	MaxDepth:                10,
}

func typeAndKind(v interface{}) (reflect.Type, reflect.Kind) {
	t := reflect.TypeOf(v)
	k := t.Kind()

	if k == reflect.Ptr {
		t = t.Elem()
		k = t.Kind()
	}
	return t, k
}

// DiffYAML compares two YAML documents by parsing them and printing the
// resulting trees back, so that formatting differences go away.
// The difference is returned as a string, empty when the documents are equal
// or one of them cannot be parsed.
func DiffYAML(a []byte, b []byte) string {
	an, err := readOptional(a)
	if err != nil {
		return ""
	}
	bn, err := readOptional(b)
	if err != nil {
		return ""
	}
	return DiffNodes(an, bn)
}

// DiffNodes returns the unified diff between the printed forms of two trees.
func DiffNodes(previous, actual node.Node) string {
	p, err := writeOptional(previous)
	if err != nil {
		return ""
	}
	a, err := writeOptional(actual)
	if err != nil {
		return ""
	}
	return Diff(string(p), string(a))
}

func Diff(previous interface{}, actual interface{}) string {
	return DiffWithDescription(previous, "Previous", actual, "Actual")

}

// DiffWithDescription returns a unified diff between two values of the same
// type. Strings are compared line by line, trees through their printed form
// and anything else through a spew dump.
func DiffWithDescription(previous interface{}, previousStr string, actual interface{}, actualStr string) string {
	if previous == nil || actual == nil {
		return ""
	}

	if pn, ok := previous.(node.Node); ok {
		if an, ok := actual.(node.Node); ok {
			pb, perr := printer.Print(pn)
			ab, aerr := printer.Print(an)
			if perr != nil || aerr != nil {
				return ""
			}
			return DiffWithDescription(string(pb), previousStr, string(ab), actualStr)
		}
	}

	et, ek := typeAndKind(previous)
	at, _ := typeAndKind(actual)

	if et != at {
		return ""
	}

	if ek != reflect.Struct && ek != reflect.Map && ek != reflect.Slice && ek != reflect.Array && ek != reflect.String {
		return ""
	}

	var e, a string

	switch et {
	case reflect.TypeOf(""):
		e = reflect.ValueOf(previous).String()
		a = reflect.ValueOf(actual).String()
	case reflect.TypeOf(time.Time{}):
		e = spewConfigStringerEnabled.Sdump(previous)
		a = spewConfigStringerEnabled.Sdump(actual)
	default:
		e = spewConfig.Sdump(previous)
		a = spewConfig.Sdump(actual)
	}

	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(e),
		B:        difflib.SplitLines(a),
		FromFile: previousStr,
		FromDate: "",
		ToFile:   actualStr,
		ToDate:   "",
		Context:  1,
	})

	return diff
}
