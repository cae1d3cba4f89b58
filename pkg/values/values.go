package values

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"dario.cat/mergo"
	syaml "sigs.k8s.io/yaml"

	"github.com/inercia/go-yaml-tree/pkg/node"
	"github.com/inercia/go-yaml-tree/pkg/printer"
	"github.com/inercia/go-yaml-tree/pkg/yaml"
)

///////////////////////////////////////////////////////////////////////////////
// Type conversion helpers
///////////////////////////////////////////////////////////////////////////////

// toInt converts various numeric types to int
func toInt(v interface{}) (int, error) {
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		return int(val), nil
	case json.Number:
		i, err := val.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidType, err)
		}
		return int(i), nil
	case string:
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidType, err)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%w: cannot convert %T to int", ErrInvalidType, v)
	}
}

// toString converts various types to string
func toString(v interface{}) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case json.Number:
		return val.String(), nil
	case bool:
		return strconv.FormatBool(val), nil
	default:
		return "", fmt.Errorf("%w: cannot convert %T to string", ErrInvalidType, v)
	}
}

// toValues converts map[string]interface{} to Values
func toValues(v interface{}) (Values, error) {
	switch val := v.(type) {
	case Values:
		return val, nil
	case map[string]interface{}:
		return Values(val), nil
	default:
		return nil, fmt.Errorf("%w: cannot convert %T to Values", ErrInvalidType, v)
	}
}

///////////////////////////////////////////////////////////////////////////////

// ValuesPath is a path to a value in the Values map.
// It is a string of keys separated by the SplitToken.
// For example, "httpProxy.annotations.trans.id" is a valid ValuesPath.
type ValuesPath string

///////////////////////////////////////////////////////////////////////////////

// Values is the plain Go data view of a YAML document with a mapping root,
// as produced by a YAML decoder: maps, []interface{}, strings, float64,
// bool and nil.
type Values map[string]interface{}

// NewValues creates a new Values instance.
func NewValues() *Values {
	return &Values{}
}

// NewValuesFromYAML creates a new Values instance from a YAML document.
func NewValuesFromYAML(b []byte) (*Values, error) {
	v := Values{}
	if err := syaml.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// NewValuesFromJSON creates a new Values instance from a JSON document.
func NewValuesFromJSON(b []byte) (*Values, error) {
	v := Values{}
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// NewValuesFromFileInFS creates a new Values instance from a file in a file system.
func NewValuesFromFileInFS(f fs.FS, filename string) (*Values, error) {
	file, err := f.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return NewValuesFromYAML(data)
}

// NewValuesFromFile creates a new Values instance from a file.
func NewValuesFromFile(filename string) (*Values, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return NewValuesFromYAML(data)
}

func NewValuesFromFS(f fs.FS) (*Values, error) {
	return NewValuesFromFileInFS(f, DefaultFileName)
}

// FromNode converts a tree with a mapping root into Values. Null and empty
// roots give empty Values.
//
// Tree scalars carry no type, so they are resolved the way YAML resolves
// plain scalars: "8080" becomes a number even if it was quoted in the
// document the tree was parsed from.
func FromNode(n node.Node) (*Values, error) {
	if node.IsNil(n) || n.IsEmpty() && n.Kind() != node.SequenceKind {
		return NewValues(), nil
	}
	if n.Kind() != node.MappingKind {
		return nil, errInvalidType(n, "Values")
	}
	p, err := plain(n)
	if err != nil {
		return nil, err
	}
	v, err := toValues(p)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ToNode converts the Values into a tree.
func (v Values) ToNode() (node.Node, error) {
	return FromObject(map[string]interface{}(v))
}

func (v Values) Empty() bool {
	return len(v) == 0
}

// EqualYAML returns true if the two values are equal.
// The comparison is performed by converting both values
// to YAML and then comparing the YAML documents.
func (v Values) EqualYAML(other Values) bool {
	thisYaml, err := v.ToYAML()
	if err != nil {
		return false
	}

	otherYaml, err := other.ToYAML()
	if err != nil {
		return false
	}

	equal, err := yaml.EqualYAMLs(thisYaml, otherYaml)
	if err != nil {
		return false
	}

	return equal
}

// ToYAML renders the Values as a YAML document. Strings that would read
// back as another type are quoted.
func (c Values) ToYAML() ([]byte, error) {
	asJSON, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}

	asYAML, err := syaml.JSONToYAML(asJSON)
	if err != nil {
		return nil, err
	}

	return asYAML, nil
}

func (c Values) MustToYAML() []byte {
	asYAML, err := c.ToYAML()
	if err != nil {
		panic(err)
	}
	return asYAML
}

// ToJSON returns the JSON representation of the Values.
func (v Values) ToJSON() ([]byte, error) {
	return json.Marshal(v)
}

// ToJSONIndented returns the JSON representation of the Values with indentation.
func (v Values) ToJSONIndented() ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// DeepCopyInto copies the Values into another Values.
func (v *Values) DeepCopyInto(other *Values) {
	res := (&Values{}).Merge(v)
	*other = *res
}

// DeepCopy returns a deep copy of the Values.
func (v *Values) DeepCopy() *Values {
	if v == nil {
		return nil
	}
	other := Values{}
	v.DeepCopyInto(&other)
	return &other
}

// Rebase rebases the Values on top a given base.
// The new base can be specified as a string of keys separated by the SplitToken.
// For example, if the Values is {"foo": {"bar": "baz"}} and
// - the base is "new", then the result is { "new": {"foo": {"bar": "baz"}}}.
// - the base is "new.base", then the result is {"new": { "base": {"foo": {"bar": "baz"}}}}.
func (v Values) Rebase(base string) *Values {
	comps := strings.Split(base, SplitToken)
	if len(comps) == 0 {
		return &v
	}

	this := comps[0]
	rest := strings.Join(comps[1:], SplitToken)

	if len(comps) == 1 {
		return &Values{this: v}
	}

	return &Values{this: *v.Rebase(rest)}
}

////////////////////////////////////////////////////////////////////////////
// lookups
////////////////////////////////////////////////////////////////////////////

// Lookup returns the value associated with the given key.
// The key syntax is the one of the package function Lookup:
// - "foo.bar" returns the value associated with the "bar" key in the "foo" map.
// - "foo[0].bar" returns the value associated with the "bar" key in the first element of the "foo" array.
func (v Values) Lookup(key string) (any, error) {
	steps, err := parsePath(key)
	if err != nil {
		return nil, err
	}

	var cur any = v
	for _, s := range steps {
		if s.key != "" {
			m, err := toValues(cur)
			if err != nil {
				return nil, fmt.Errorf("%w: cannot lookup %s in %T", ErrKeyNotFound, s.key, cur)
			}
			val, exists := m[s.key]
			if !exists {
				return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, s.key)
			}
			cur = val
		}
		if s.index >= 0 {
			if cur, err = getIndexedValue(cur, s.index); err != nil {
				return nil, err
			}
		}
	}
	return cur, nil
}

// getIndexedValue retrieves a value from an array/slice at the given index
func getIndexedValue(value interface{}, index int) (interface{}, error) {
	var l []interface{}
	switch v := value.(type) {
	case []interface{}:
		l = v
	case []Values:
		l = make([]interface{}, len(v))
		for i := range v {
			l[i] = v[i]
		}
	default:
		return nil, fmt.Errorf("%w: cannot index into %T", ErrInvalidType, value)
	}
	if index >= len(l) {
		return nil, fmt.Errorf("%w: %d (length %d)", ErrIndexOutOfBounds, index, len(l))
	}
	return l[index], nil
}

// LookupFirst is the same as Lookup() but tries several possible keys until one of them is found.
// It returns the value, the key where it was found and an error if none was found.
func (v Values) LookupFirst(keys []string) (any, string, error) {
	for _, key := range keys {
		val, err := v.Lookup(key)
		if err == nil {
			return val, key, nil
		}
	}
	return "", "", fmt.Errorf("%w: one of %+v", ErrKeyNotFound, keys)
}

func (v Values) LookupString(key string) (string, error) {
	valAny, err := v.Lookup(key)
	if err != nil {
		return "", err
	}
	return toString(valAny)
}

func (v Values) LookupValues(key string) (Values, error) {
	valAny, err := v.Lookup(key)
	if err != nil {
		return nil, err
	}
	return toValues(valAny)
}

// LookupFirstString is the same as LookupString() but tries several possible keys
// until one of them is found.
func (v Values) LookupFirstString(keys []string) (string, string, error) {
	valAny, foundAt, err := v.LookupFirst(keys)
	if err != nil {
		return "", "", err
	}

	valStr, err := toString(valAny)
	if err != nil {
		return "", "", fmt.Errorf("key %s: %w", foundAt, err)
	}
	return valStr, foundAt, nil
}

func (v Values) LookupInt(key string) (int, error) {
	valAny, err := v.Lookup(key)
	if err != nil {
		return 0, err
	}
	return toInt(valAny)
}

// LookupFirstInt is the same as LookupInt() but tries several possible keys
// until one of them is found.
func (v Values) LookupFirstInt(keys []string) (int, string, error) {
	valAny, foundAt, err := v.LookupFirst(keys)
	if err != nil {
		return 0, "", err
	}

	valInt, err := toInt(valAny)
	if err != nil {
		return 0, "", fmt.Errorf("key %s: %w", foundAt, err)
	}
	return valInt, foundAt, nil
}

// Set sets the value at the given key path, creating intermediate maps and
// lists as needed. Values in the way that are not maps or lists are
// replaced.
func (v Values) Set(key string, value interface{}) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidIndexUsage)
	}
	steps, err := parsePath(key)
	if err != nil {
		return err
	}
	if steps[0].key == "" {
		return fmt.Errorf("%w: %s: Values are not a list", ErrInvalidIndexUsage, key)
	}
	setIn(map[string]interface{}(v), steps, value)
	return nil
}

// setIn returns cur with value stored at steps. Maps are updated in place.
func setIn(cur interface{}, steps []step, value interface{}) interface{} {
	if len(steps) == 0 {
		return value
	}
	s := steps[0]
	if s.key == "" {
		return setIndexed(cur, s.index, steps[1:], value)
	}

	m, err := toValues(cur)
	if err != nil || m == nil {
		m = make(Values)
	}
	m[s.key] = setIndexed(m[s.key], s.index, steps[1:], value)
	return m
}

func setIndexed(cur interface{}, index int, rest []step, value interface{}) interface{} {
	if index < 0 {
		return setIn(cur, rest, value)
	}
	arr, _ := cur.([]interface{})
	for len(arr) <= index {
		arr = append(arr, nil)
	}
	arr[index] = setIn(arr[index], rest, value)
	return arr
}

////////////////////////////////////////////////////////////////////////////
// merges
////////////////////////////////////////////////////////////////////////////

// mergeConfig is a configuration for the Merge() function.
// +k8s:deepcopy-gen=false
type mergeConfig struct {
	deepMergeSlice          bool
	overwriteWithEmptyValue bool
}

func newMergeConfig(opts ...MergeOption) *mergeConfig {
	c := &mergeConfig{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (m mergeConfig) toMergoOptions() []func(*mergo.Config) {
	opts := []func(*mergo.Config){mergo.WithOverride}
	if m.deepMergeSlice {
		opts = append(opts, mergo.WithAppendSlice)
	}
	if m.overwriteWithEmptyValue {
		opts = append(opts, mergo.WithOverwriteWithEmptyValue)
	}
	return opts
}

// +k8s:deepcopy-gen=false
type MergeOption func(*mergeConfig)

// WithMergeSlices is a merge option that tells the Merge() function to merge slices.
// By default, slices are just overwritten. So [1, 2] merged with [3, 4] gives [3, 4].
// With this option, [1, 2] merged with [3, 4] gives [1, 2, 3, 4].
func WithMergeSlices(c *mergeConfig) {
	c.deepMergeSlice = true
}

// WithOverwriteWithEmptyValue is a merge option that tells the Merge() function to overwrite values with empty values.
// By default, empty values are not merged. So {"foo": "bar"} merged with {"foo": ""} gives {"foo": "bar"}.
// With this option, {"foo": "bar"} merged with {"foo": ""} gives {"foo": ""}.
func WithOverwriteWithEmptyValue(c *mergeConfig) {
	c.overwriteWithEmptyValue = true
}

// Merge merges the given values into the current values, returning the new
// merged values. Neither side is modified.
//
// This is a plain data merge: trees are merged with their comments by
// pkg/merge, as MergeFiles does.
func (v Values) Merge(other *Values, opts ...MergeOption) *Values {
	cfg := newMergeConfig(opts...)

	if other == nil || other.Empty() {
		res := normalizeValues(v)
		return &res
	}
	if v.Empty() {
		res := normalizeValues(*other)
		return &res
	}

	thisNormalized := normalizeValues(v)
	otherNormalized := normalizeValues(*other)

	if err := mergo.Merge(&thisNormalized, &otherNormalized, cfg.toMergoOptions()...); err != nil {
		return v.mergeViaYAML(other, cfg)
	}
	return &thisNormalized
}

// normalizeValues recursively copies v, turning every map[string]interface{}
// into Values.
func normalizeValues(v Values) Values {
	result := make(Values, len(v))
	for key, value := range v {
		result[key] = normalizeValue(value)
	}
	return result
}

func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return normalizeValues(val)
	case Values:
		return normalizeValues(val)
	case []interface{}:
		result := make([]interface{}, len(val))
		for i, item := range val {
			result[i] = normalizeValue(item)
		}
		return result
	default:
		return v
	}
}

// mergeViaYAML is the fallback merge method, for values holding types mergo
// cannot merge. Both sides are brought back to decoded YAML first.
func (v Values) mergeViaYAML(other *Values, cfg *mergeConfig) *Values {
	thisYaml, err := v.ToYAML()
	if err != nil {
		return nil
	}
	otherYaml, err := other.ToYAML()
	if err != nil {
		return nil
	}

	thisValues, err := NewValuesFromYAML(thisYaml)
	if err != nil {
		return nil
	}
	otherValues, err := NewValuesFromYAML(otherYaml)
	if err != nil {
		return nil
	}

	if err := mergo.Merge(thisValues, otherValues, cfg.toMergoOptions()...); err != nil {
		return nil
	}
	return thisValues
}

// plain converts a tree into plain Go data, resolving scalars the way YAML
// does.
func plain(n node.Node) (any, error) {
	b, err := printer.Print(n)
	if err != nil {
		return nil, err
	}
	var res any
	if err := syaml.Unmarshal(b, &res); err != nil {
		return nil, err
	}
	return res, nil
}
