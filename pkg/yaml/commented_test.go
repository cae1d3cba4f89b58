package yaml

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	syaml "sigs.k8s.io/yaml"

	"github.com/inercia/go-yaml-tree/pkg/node"
)

func TestCommentedOut(t *testing.T) {
	cases := []struct {
		name   string
		full   string
		masked string
		expect string
	}{
		{
			name:   "nothing_masked",
			full:   "a: 1\nb:\n  c: 2\n",
			masked: "a: 1\nb:\n  c: 2\n",
			expect: "a: 1\nb:\n  c: 2\n",
		},
		{
			name:   "nested_key_removed",
			full:   "a: 1\nb:\n  c: 2\n  d: 3\n",
			masked: "a: 1\nb:\n  c: 2\n",
			expect: "a: 1\nb:\n  c: 2\n  # d: 3\n",
		},
		{
			name:   "null_whole_branch",
			full:   "a:\n  x: 1\n  y: 2\nb: 2\n",
			masked: "a: ~\nb: 2\n",
			expect: "# a:\n#   x: 1\n#   y: 2\nb: 2\n",
		},
		{
			name:   "list_removed_commented_whole_key",
			full:   "l:\n- 1\n- 2\nk: v\n",
			masked: "k: v\n",
			expect: "k: v\n# l:\n#   - 1\n#   - 2\n",
		},
		{
			name:   "deep_maps_selective",
			full:   "root:\n  cfg:\n    env: prod\n    debug: false\n  svc:\n    image: a:v1\n",
			masked: "root:\n  cfg:\n    env: prod\n",
			expect: "root:\n  cfg:\n    # debug: false\n    env: prod\n  # svc:\n  #   image: a:v1\n",
		},
		{
			name:   "empty_maps_and_lists",
			full:   "a: {}\nb: []\nc: x\n",
			masked: "a: {}\nb: []\n",
			expect: "a: {}\nb: []\n# c: x\n",
		},
		{
			name:   "entry_comments_kept",
			full:   "a: 1\n# about b\nb:\n  c: 2\n",
			masked: "a: 1\n",
			expect: "a: 1\n# about b\n# b:\n#   c: 2\n",
		},
		{
			name:   "root_comment_kept",
			full:   "# top\n\na: 1\nb: 2\n",
			masked: "a: 1\n",
			expect: "# top\n\na: 1\n# b: 2\n",
		},
		{
			name:   "nonmap_root_entire_doc_commented",
			full:   "- a\n- b\n",
			masked: "",
			expect: "# - a\n# - b\n",
		},
		{
			name:   "nonmap_root_kept",
			full:   "- a\n- b\n",
			masked: "- a\n",
			expect: "- a\n- b\n",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			full := mustRead(t, tc.full)
			masked := mustRead(t, tc.masked)

			got, err := CommentedOut(full, masked)
			require.NoError(t, err)
			if string(got) != tc.expect {
				t.Fatalf("output mismatch for %s\n---- got ----\n%s\n---- expect ----\n%s", tc.name, got, tc.expect)
			}
		})
	}
}

func TestCommentedOut_ProducesValidYAMLWhenUncommentedOnly(t *testing.T) {
	full := node.NewMappingBuilder().
		AddScalar("a", "1").
		AddScalar("b", "2").
		Add(node.NewScalar("c"), node.NewMappingBuilder().AddScalar("d", "3").AddScalar("e", "4").MustBuild()).
		MustBuild()
	masked := node.NewMappingBuilder().
		AddScalar("a", "1").
		Add(node.NewScalar("c"), node.NewMappingBuilder().AddScalar("e", "4").MustBuild()).
		MustBuild()

	got, err := CommentedOut(full, masked)
	require.NoError(t, err)

	// what is left once the commented lines are removed must read back as the
	// masked structure
	filtered := filterUncommented(got)
	remaining, err := Read(filtered)
	require.NoError(t, err, "filtered YAML invalid:\n%s", filtered)
	assert.True(t, node.Equal(masked, remaining), DiffNodes(masked, remaining))

	var m any
	require.NoError(t, syaml.Unmarshal(filtered, &m))
	assert.Equal(t, map[string]any{"a": float64(1), "c": map[string]any{"e": float64(4)}}, m)
}

func mustRead(t *testing.T, s string) node.Node {
	t.Helper()
	n, err := readOptional([]byte(s))
	if err != nil {
		t.Fatalf("read %q: %v", s, err)
	}
	return n
}

func filterUncommented(in []byte) []byte {
	out := make([]byte, 0, len(in))
	for _, ln := range bytes.Split(in, []byte("\n")) {
		if len(ln) == 0 {
			out = append(out, '\n')
			continue
		}
		trim := bytes.TrimSpace(ln)
		if bytes.HasPrefix(trim, []byte("#")) {
			continue
		}
		out = append(out, ln...)
		out = append(out, '\n')
	}
	return out
}
