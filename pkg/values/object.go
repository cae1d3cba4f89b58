package values

import (
	"encoding/json"
	"fmt"
	"strconv"

	syaml "sigs.k8s.io/yaml"

	"github.com/inercia/go-yaml-tree/pkg/node"
)

// FromObject dumps any Go value into a tree. The value goes through its JSON
// form first, so json struct tags and json.Marshaler implementations are
// honored. Numbers keep their exact decimal text.
func FromObject(v any) (node.Node, error) {
	b, err := syaml.Marshal(v)
	if err != nil {
		return nil, err
	}

	var data any
	if err := syaml.Unmarshal(b, &data, useNumber); err != nil {
		return nil, err
	}
	return fromData(data)
}

func useNumber(d *json.Decoder) *json.Decoder {
	d.UseNumber()
	return d
}

// fromData builds a tree from decoded JSON data.
func fromData(data any) (node.Node, error) {
	switch v := data.(type) {
	case nil:
		return node.NewNull(), nil
	case string:
		return node.NewScalar(v), nil
	case bool:
		return node.NewScalar(strconv.FormatBool(v)), nil
	case json.Number:
		return node.NewScalar(v.String()), nil
	case float64:
		return node.NewScalar(strconv.FormatFloat(v, 'f', -1, 64)), nil
	case []any:
		b := node.NewSequenceBuilder()
		for i, it := range v {
			n, err := fromData(it)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			b = b.Add(n)
		}
		return b.Build(), nil
	case map[string]any:
		b := node.NewMappingBuilder()
		for k, it := range v {
			n, err := fromData(it)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			b = b.Add(node.NewScalar(k), n)
		}
		return b.Build()
	}
	return nil, fmt.Errorf("%w: cannot convert %T to a node", ErrInvalidType, data)
}
