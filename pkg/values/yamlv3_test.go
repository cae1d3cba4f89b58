package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/inercia/go-yaml-tree/pkg/node"
	"github.com/inercia/go-yaml-tree/pkg/parser"
	"github.com/inercia/go-yaml-tree/pkg/printer"
)

var plainDocuments = map[string]string{
	"mappings": `
a: 1
b:
  c: true
  d: ~
  e:
l:
- x
- y: 2
  z: 3
`,
	"sequences of sequences": `
- 1
- - 2
  - 3
- []
`,
	"quoted": `
name: 'it''s'
path: "C:\\dir"
tab: "a\tb"
colon: "a: b"
`,
	"block scalars": `
text: |-
  line one
  line two
fold: >-
  a
  b
`,
	"empty collections": `
empty: {}
list: []
`,
	"comments": `
# about a
a: 1
b: 2 # inline
`,
}

// Our parser and yaml.v3 must read the same tree out of plain documents.
func TestYAMLv3_Agreement(t *testing.T) {
	t.Parallel()

	for name, doc := range plainDocuments {
		t.Run(name, func(t *testing.T) {
			ours, err := parser.ParseString(doc)
			require.NoError(t, err)

			var y yaml.Node
			require.NoError(t, yaml.Unmarshal([]byte(doc), &y))
			theirs, err := FromYAMLNode(&y)
			require.NoError(t, err)

			assert.True(t, node.Equal(ours, theirs), "ours %s\ntheirs %s", ours, theirs)
		})
	}
}

func TestYAMLv3_RoundTrip(t *testing.T) {
	t.Parallel()

	for name, doc := range plainDocuments {
		t.Run(name, func(t *testing.T) {
			n, err := parser.ParseString(doc)
			require.NoError(t, err)

			y, err := ToYAMLNode(n)
			require.NoError(t, err)
			out, err := yaml.Marshal(y)
			require.NoError(t, err)

			back, err := parser.ParseBytes(out)
			require.NoError(t, err, "yaml.v3 output:\n%s", out)
			assert.True(t, node.Equal(n, back), "yaml.v3 output:\n%s", out)

			var again yaml.Node
			require.NoError(t, yaml.Unmarshal(out, &again))
			fromV3, err := FromYAMLNode(&again)
			require.NoError(t, err)
			assert.True(t, node.Equal(n, fromV3))
		})
	}
}

func TestYAMLv3_Comments(t *testing.T) {
	t.Parallel()

	n := mustParse(t, "# top\n\na: 1\n# about b\nb:\n  # about c\n  c: 2\n")

	y, err := ToYAMLNode(n)
	require.NoError(t, err)
	assert.Equal(t, yaml.DocumentNode, y.Kind)
	assert.Equal(t, "# top", y.HeadComment)

	out, err := yaml.Marshal(y)
	require.NoError(t, err)

	var decoded yaml.Node
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	back, err := FromYAMLNode(&decoded)
	require.NoError(t, err)

	b, err := Lookup(back, "b")
	require.NoError(t, err)
	assert.Equal(t, node.Comment{"about b"}, b.Comment())

	c, err := Lookup(back, "b.c")
	require.NoError(t, err)
	assert.Equal(t, node.Comment{"about c"}, c.Comment())
}

func TestYAMLv3_Aliases(t *testing.T) {
	t.Parallel()

	var y yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte("base: &b\n  x: 1\nother: *b\n"), &y))
	n, err := FromYAMLNode(&y)
	require.NoError(t, err)

	base, err := Lookup(n, "base")
	require.NoError(t, err)
	other, err := Lookup(n, "other")
	require.NoError(t, err)
	assert.True(t, node.Equal(base, other))
}

func TestYAMLv3_Scalars(t *testing.T) {
	t.Parallel()

	m := node.NewMappingBuilder().
		AddScalar("empty", "").
		AddScalar("tilde", "~").
		Add(node.NewScalar("nothing"), node.NewNull()).
		AddScalar("multi", "a\nb").
		MustBuild()

	y, err := ToYAMLNode(m)
	require.NoError(t, err)
	out, err := yaml.Marshal(y)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, map[string]any{"empty": "", "tilde": "~", "nothing": nil, "multi": "a\nb"}, decoded)

	// and our printer agrees on the same tree
	ours, err := printer.Print(m)
	require.NoError(t, err)
	var fromOurs map[string]any
	require.NoError(t, yaml.Unmarshal(ours, &fromOurs))
	assert.Equal(t, decoded, fromOurs)
}

func TestYAMLv3_Errors(t *testing.T) {
	t.Parallel()

	_, err := ToYAMLNode(nil)
	assert.ErrorIs(t, err, node.ErrInvalidNode)

	_, err = FromYAMLNode(nil)
	assert.ErrorIs(t, err, node.ErrInvalidNode)

	_, err = FromYAMLNode(&yaml.Node{Kind: yaml.DocumentNode})
	assert.ErrorIs(t, err, node.ErrInvalidNode)

	_, err = FromYAMLNode(&yaml.Node{Kind: yaml.AliasNode})
	assert.ErrorIs(t, err, node.ErrInvalidNode)
}
