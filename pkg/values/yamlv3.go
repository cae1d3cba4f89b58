package values

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/inercia/go-yaml-tree/pkg/node"
)

// ToYAMLNode converts a tree into a gopkg.in/yaml.v3 document node. Node
// comments become head comments; the root comment is the head comment of
// the document.
func ToYAMLNode(n node.Node) (*yaml.Node, error) {
	if node.IsNil(n) {
		return nil, fmt.Errorf("%w: nil tree", node.ErrInvalidNode)
	}
	content, err := toYAMLNode(node.WithComment(n, nil))
	if err != nil {
		return nil, err
	}
	return &yaml.Node{
		Kind:        yaml.DocumentNode,
		HeadComment: headComment(n.Comment()),
		Content:     []*yaml.Node{content},
	}, nil
}

func toYAMLNode(n node.Node) (*yaml.Node, error) {
	switch v := n.(type) {
	case *node.Scalar:
		if v.IsNull() {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "~"}, nil
		}
		res := &yaml.Node{Kind: yaml.ScalarNode, Value: v.Value()}
		if v.Value() == "" || v.Value() == "~" {
			// keep them strings instead of nulls
			res.Tag = "!!str"
		}
		return res, nil

	case *node.Sequence:
		res := &yaml.Node{Kind: yaml.SequenceNode}
		if v.IsEmpty() {
			res.Style = yaml.FlowStyle
		}
		for _, it := range v.Values() {
			y, err := toYAMLNode(it)
			if err != nil {
				return nil, err
			}
			y.HeadComment = headComment(it.Comment())
			res.Content = append(res.Content, y)
		}
		return res, nil

	case *node.Mapping:
		res := &yaml.Node{Kind: yaml.MappingNode}
		if v.IsEmpty() {
			res.Style = yaml.FlowStyle
		}
		for _, e := range v.Entries() {
			k, err := toYAMLNode(node.WithComment(e.Key, nil))
			if err != nil {
				return nil, err
			}
			if k.Kind != yaml.ScalarNode || k.Tag == "!!null" {
				return nil, fmt.Errorf("%w: mapping key %s", ErrInvalidType, e.Key)
			}
			k.HeadComment = headComment(e.Value.Comment())
			val, err := toYAMLNode(e.Value)
			if err != nil {
				return nil, err
			}
			res.Content = append(res.Content, k, val)
		}
		return res, nil
	}
	return nil, fmt.Errorf("%w: %T", node.ErrInvalidNode, n)
}

// FromYAMLNode converts a gopkg.in/yaml.v3 node into a tree. Head comments
// become node comments; line and foot comments are dropped. Aliases are
// expanded and tags are ignored, except for nulls.
func FromYAMLNode(y *yaml.Node) (node.Node, error) {
	if y == nil {
		return nil, fmt.Errorf("%w: nil yaml node", node.ErrInvalidNode)
	}
	if y.Kind == yaml.DocumentNode {
		if len(y.Content) == 0 {
			return nil, fmt.Errorf("%w: empty yaml document", node.ErrInvalidNode)
		}
		n, err := fromYAMLNode(y.Content[0])
		if err != nil {
			return nil, err
		}
		c := commentLines(y.HeadComment)
		if c.IsEmpty() {
			c = commentLines(y.Content[0].HeadComment)
		}
		return node.WithComment(n, c), nil
	}
	return fromYAMLNode(y)
}

func fromYAMLNode(y *yaml.Node) (node.Node, error) {
	switch y.Kind {
	case yaml.ScalarNode:
		if y.ShortTag() == "!!null" {
			return node.NewNull(), nil
		}
		return node.NewScalar(y.Value), nil

	case yaml.SequenceNode:
		b := node.NewSequenceBuilder()
		for _, it := range y.Content {
			n, err := fromYAMLNode(it)
			if err != nil {
				return nil, err
			}
			b = b.Add(node.WithComment(n, commentLines(it.HeadComment)))
		}
		return b.Build(), nil

	case yaml.MappingNode:
		if len(y.Content)%2 != 0 {
			return nil, fmt.Errorf("%w: odd mapping content at line %d", node.ErrInvalidNode, y.Line)
		}
		var entries []node.Entry
		for i := 0; i < len(y.Content); i += 2 {
			ky, vy := y.Content[i], y.Content[i+1]
			k, err := fromYAMLNode(ky)
			if err != nil {
				return nil, err
			}
			v, err := fromYAMLNode(vy)
			if err != nil {
				return nil, err
			}
			c := commentLines(ky.HeadComment)
			if c.IsEmpty() {
				c = commentLines(vy.HeadComment)
			}
			entries = append(entries, node.Entry{Key: node.WithComment(k, nil), Value: node.WithComment(v, c)})
		}
		return node.NewMapping(entries)

	case yaml.AliasNode:
		if y.Alias == nil {
			return nil, fmt.Errorf("%w: dangling alias at line %d", node.ErrInvalidNode, y.Line)
		}
		return fromYAMLNode(y.Alias)

	case yaml.DocumentNode:
		return FromYAMLNode(y)
	}
	return nil, fmt.Errorf("%w: yaml node kind %d", node.ErrInvalidNode, y.Kind)
}

// headComment renders comment lines the way yaml.v3 stores them.
func headComment(c node.Comment) string {
	if c.IsEmpty() {
		return ""
	}
	lines := make([]string, len(c))
	for i, l := range c {
		if l == "" {
			lines[i] = "#"
			continue
		}
		lines[i] = "# " + l
	}
	return strings.Join(lines, "\n")
}

// commentLines parses a yaml.v3 comment back into comment lines.
func commentLines(s string) node.Comment {
	if s == "" {
		return nil
	}
	var c node.Comment
	for _, l := range strings.Split(s, "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		l = strings.TrimPrefix(l, "#")
		l = strings.TrimPrefix(l, " ")
		c = append(c, l)
	}
	return c
}
