package values

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/psanford/memfs"
	syaml "sigs.k8s.io/yaml"

	"github.com/inercia/go-yaml-tree/pkg/node"
	"github.com/inercia/go-yaml-tree/pkg/parser"
	yamllib "github.com/inercia/go-yaml-tree/pkg/yaml"
)

func mustWriteFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir for write: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
}

func mustReadFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	return data
}

func mustParse(t *testing.T, s string) node.Node {
	t.Helper()
	n, err := parser.ParseString(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return n
}

// assertYAMLEqual compares YAML by unmarshaling and deep comparing.
func assertYAMLEqual(t *testing.T, expect, got []byte) {
	t.Helper()
	var ev any
	var gv any
	if err := syaml.Unmarshal(expect, &ev); err != nil {
		t.Fatalf("unmarshal expect: %v", err)
	}
	if err := syaml.Unmarshal(got, &gv); err != nil {
		t.Fatalf("unmarshal got: %v", err)
	}
	if !reflect.DeepEqual(ev, gv) {
		t.Fatalf("YAML not equal\nexpect:\n%s\ngot:\n%s", expect, got)
	}
}

// validateMergeProperty verifies that merging the updated file over the
// common one, with the updated file winning, gives the original back.
func validateMergeProperty(t *testing.T, original, common, updated []byte) {
	t.Helper()
	reconstructed, err := yamllib.MergeYAMLOverride(common, updated)
	if err != nil {
		t.Fatalf("merge back failed: %v", err)
	}
	assertYAMLEqual(t, original, reconstructed)
}

func writeMemFile(t *testing.T, mfs *memfs.FS, path string, data []byte) {
	t.Helper()
	if err := mfs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := mfs.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
}

// setupValuesFiles creates values.yaml files under root in the given
// directories with the provided content.
func setupValuesFiles(t *testing.T, root string, files map[string]string) map[string]string {
	t.Helper()
	paths := make(map[string]string, len(files))
	for dir, content := range files {
		path := filepath.Join(root, dir, DefaultFileName)
		mustWriteFile(t, path, []byte(content))
		paths[dir] = path
	}
	return paths
}

func assertFileDoesNotExist(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Fatalf("unexpected file exists: %s", path)
	}
}
