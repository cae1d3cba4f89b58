package values

import (
	"bytes"
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/psanford/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inercia/go-yaml-tree/pkg/merge"
	"github.com/inercia/go-yaml-tree/pkg/node"
	"github.com/inercia/go-yaml-tree/pkg/parser"
	"github.com/inercia/go-yaml-tree/pkg/printer"
	yamllib "github.com/inercia/go-yaml-tree/pkg/yaml"
)

func newLayeredFS(t *testing.T) *memfs.FS {
	t.Helper()
	mfs := memfs.New()
	writeMemFile(t, mfs, "base/values.yaml", []byte(`
# shared settings
image:
  repository: app
  tag: v1
replicas: 1
ports:
  - 80
`))
	writeMemFile(t, mfs, "envs/prod/values.yaml", []byte(`
image:
  tag: v2
replicas: 3
ports:
  - 443
`))
	writeMemFile(t, mfs, "envs/dev/values.yaml", []byte(`
debug: true
`))
	writeMemFile(t, mfs, "envs/empty/values.yaml", []byte("# nothing yet\n"))
	writeMemFile(t, mfs, "envs/prod/notes.txt", []byte("not yaml: [\n"))
	return mfs
}

func printed(t *testing.T, n node.Node) []byte {
	t.Helper()
	b, err := printer.Print(n)
	require.NoError(t, err)
	return b
}

func TestLoadFile(t *testing.T) {
	t.Parallel()
	mfs := newLayeredFS(t)

	n, err := LoadFile(mfs, "base/values.yaml")
	require.NoError(t, err)
	assert.Equal(t, node.Comment{"shared settings"}, n.Comment())
	tag, err := LookupString(n, "image.tag")
	require.NoError(t, err)
	assert.Equal(t, "v1", tag)

	empty, err := LoadFile(mfs, "envs/empty/values.yaml")
	require.NoError(t, err)
	assert.True(t, node.Equal(node.EmptyMapping(), empty))

	_, err = LoadFile(mfs, "missing.yaml")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	writeMemFile(t, mfs, "bad/values.yaml", []byte("  a: 1\nb: 2\n"))
	_, err = LoadFile(mfs, "bad/values.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, parser.ErrParse)
	assert.Contains(t, err.Error(), "bad/values.yaml")
}

func TestMergeFiles(t *testing.T) {
	t.Parallel()
	mfs := newLayeredFS(t)
	ctx := context.Background()

	t.Run("later files win", func(t *testing.T) {
		got, err := MergeFiles(ctx, mfs, []string{"base/values.yaml", "envs/empty/values.yaml", "envs/prod/values.yaml"})
		require.NoError(t, err)
		assertYAMLEqual(t, []byte(`
image:
  repository: app
  tag: v2
replicas: 3
ports:
  - 443
`), printed(t, got))
		assert.Equal(t, node.Comment{"shared settings"}, got.Comment())
	})

	t.Run("first file wins without override", func(t *testing.T) {
		got, err := MergeFiles(ctx, mfs, []string{"base/values.yaml", "envs/prod/values.yaml", "envs/dev/values.yaml"}, WithOverride(false))
		require.NoError(t, err)
		assertYAMLEqual(t, []byte(`
image:
  repository: app
  tag: v1
replicas: 1
ports:
  - 80
debug: true
`), printed(t, got))
	})

	t.Run("only empty files", func(t *testing.T) {
		got, err := MergeFiles(ctx, mfs, []string{"envs/empty/values.yaml"})
		require.NoError(t, err)
		assert.True(t, node.Equal(node.EmptyMapping(), got))
	})

	t.Run("errors", func(t *testing.T) {
		_, err := MergeFiles(ctx, mfs, nil)
		assert.ErrorIs(t, err, ErrNoFiles)

		_, err = MergeFiles(ctx, mfs, []string{"base/values.yaml", "missing.yaml"})
		assert.ErrorIs(t, err, fs.ErrNotExist)

		writeMemFile(t, mfs, "list/values.yaml", []byte("- a\n"))
		_, err = MergeFiles(ctx, mfs, []string{"base/values.yaml", "list/values.yaml"})
		assert.ErrorIs(t, err, merge.ErrTypeMismatch)

		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, err = MergeFiles(canceled, mfs, []string{"base/values.yaml"})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("logs", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		_, err := MergeFiles(ctx, mfs, []string{"base/values.yaml", "envs/empty/values.yaml", "envs/dev/values.yaml"}, WithLogger(logger))
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "skipping empty values file")
		assert.Contains(t, buf.String(), "file=envs/dev/values.yaml")
	})
}

func TestMergeGlob(t *testing.T) {
	t.Parallel()
	mfs := newLayeredFS(t)

	// dev, empty and prod, in this order
	got, err := MergeGlob(context.Background(), mfs, "envs/**/values.yaml")
	require.NoError(t, err)
	assertYAMLEqual(t, []byte(`
debug: true
image:
  tag: v2
replicas: 3
ports:
  - 443
`), printed(t, got))

	_, err = MergeGlob(context.Background(), mfs, "nowhere/**/values.yaml")
	assert.ErrorIs(t, err, ErrNoFiles)

	_, err = MergeGlob(context.Background(), mfs, "envs/[")
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "out.yaml")

	n := mustParse(t, "# generated\n\nb: 2\na: 1\n")
	require.NoError(t, WriteFile(path, n, WithFileMode(0o600)))
	assert.Equal(t, "# generated\n\na: 1\nb: 2\n", string(mustReadFile(t, path)))

	if runtime.GOOS != "windows" {
		st, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, fs.FileMode(0o600), st.Mode().Perm())
	}

	// no temporary files are left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	assert.Error(t, WriteFile(filepath.Join(dir, "missing", "out.yaml"), n))
	assert.Error(t, WriteFile(path, nil))
}

func TestExtractCommon(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	dev := "image: nginx\nservice:\n  port: 80\n  type: ClusterIP\n# dev sizing\nreplicas: 1\n"
	prod := "image: nginx\nservice:\n  port: 80\n  type: LoadBalancer\nreplicas: 3\n"
	paths := setupValuesFiles(t, root, map[string]string{"app/dev": dev, "app/prod": prod})

	commonPath, err := ExtractCommon(paths["app/dev"], paths["app/prod"])
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "app", DefaultFileName), commonPath)

	common := mustReadFile(t, commonPath)
	updatedDev := mustReadFile(t, paths["app/dev"])
	updatedProd := mustReadFile(t, paths["app/prod"])

	assertYAMLEqual(t, []byte("image: nginx\nservice:\n  port: 80\n"), common)
	assertYAMLEqual(t, []byte("service:\n  type: ClusterIP\nreplicas: 1\n"), updatedDev)
	assertYAMLEqual(t, []byte("service:\n  type: LoadBalancer\nreplicas: 3\n"), updatedProd)
	assert.Contains(t, string(updatedDev), "# dev sizing")

	validateMergeProperty(t, []byte(dev), common, updatedDev)
	validateMergeProperty(t, []byte(prod), common, updatedProd)
}

func TestExtractCommon_NoCommon(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	a := "a: 1\n"
	b := "b: 2\n"
	paths := setupValuesFiles(t, root, map[string]string{"x/one": a, "x/two": b})

	_, err := ExtractCommon(paths["x/one"], paths["x/two"])
	assert.ErrorIs(t, err, ErrNoCommon)

	assertFileDoesNotExist(t, filepath.Join(root, "x", DefaultFileName))
	assert.Equal(t, a, string(mustReadFile(t, paths["x/one"])))
	assert.Equal(t, b, string(mustReadFile(t, paths["x/two"])))
}

func TestExtractCommon_Validation(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	paths := setupValuesFiles(t, root, map[string]string{
		"a/one":   "k: v\n",
		"a/two":   "k: v\n",
		"b/three": "k: v\n",
	})
	other := filepath.Join(root, "a", "two", "other.yaml")
	mustWriteFile(t, other, []byte("k: v\n"))

	_, err := ExtractCommon(paths["a/one"], other)
	assert.ErrorContains(t, err, "must be named values.yaml")

	_, err = ExtractCommon(paths["a/one"], paths["b/three"])
	assert.ErrorContains(t, err, "same parent directory")

	_, err = ExtractCommon(paths["a/one"], filepath.Join(root, "a", "missing", DefaultFileName))
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = ExtractCommonN([]string{paths["a/one"]})
	assert.ErrorIs(t, err, yamllib.ErrNotEnoughDocuments)

	// another file name
	one := filepath.Join(root, "c", "one", "config.yaml")
	two := filepath.Join(root, "c", "two", "config.yaml")
	mustWriteFile(t, one, []byte("k: v\nx: 1\n"))
	mustWriteFile(t, two, []byte("k: v\nx: 2\n"))
	commonPath, err := ExtractCommon(one, two, WithFileName("config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "c", "config.yaml"), commonPath)
	assertYAMLEqual(t, []byte("k: v\n"), mustReadFile(t, commonPath))
}

func TestExtractCommonN(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	files := map[string]string{
		"svc/a": "team: core\nlabels:\n  tier: web\n  zone: a\nlist:\n  - 1\n  - 2\n",
		"svc/b": "team: core\nlabels:\n  tier: web\n  zone: b\nlist:\n  - 1\n  - 2\n",
		"svc/c": "team: core\nlabels:\n  tier: web\nlist:\n  - 1\n  - 2\n",
	}
	paths := setupValuesFiles(t, root, files)
	order := []string{"svc/a", "svc/b", "svc/c"}

	list := make([]string, len(order))
	for i, k := range order {
		list[i] = paths[k]
	}
	commonPath, err := ExtractCommonN(list, WithIncludeEqualListsInCommon(false))
	require.NoError(t, err)

	common := mustReadFile(t, commonPath)
	assertYAMLEqual(t, []byte("team: core\nlabels:\n  tier: web\n"), common)
	assertYAMLEqual(t, []byte("labels:\n  zone: a\nlist:\n  - 1\n  - 2\n"), mustReadFile(t, paths["svc/a"]))
	assertYAMLEqual(t, []byte("list:\n  - 1\n  - 2\n"), mustReadFile(t, paths["svc/c"]))

	for _, k := range order {
		validateMergeProperty(t, []byte(files[k]), common, mustReadFile(t, paths[k]))
	}
}

func TestExtractCommonRecursive(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	files := map[string]string{
		"apps/web/dev":  "team: core\napp: web\nenv: dev\n",
		"apps/web/prod": "team: core\napp: web\nenv: prod\n",
		"apps/api/dev":  "team: core\napp: api\nenv: dev\n",
		"apps/api/prod": "team: core\napp: api\nenv: prod\n",
	}
	paths := setupValuesFiles(t, root, files)

	created, err := ExtractCommonRecursive(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "apps", "api", DefaultFileName),
		filepath.Join(root, "apps", DefaultFileName),
		filepath.Join(root, "apps", "web", DefaultFileName),
	}, created)

	assertYAMLEqual(t, []byte("team: core\n"), mustReadFile(t, filepath.Join(root, "apps", DefaultFileName)))
	assertYAMLEqual(t, []byte("app: web\n"), mustReadFile(t, filepath.Join(root, "apps", "web", DefaultFileName)))
	assertYAMLEqual(t, []byte("env: dev\n"), mustReadFile(t, paths["apps/web/dev"]))
	assertFileDoesNotExist(t, filepath.Join(root, DefaultFileName))

	// layering the files back gives the originals
	for dir, original := range files {
		app := filepath.Dir(dir)
		got, err := MergeFiles(context.Background(), os.DirFS(root), []string{
			filepath.ToSlash(filepath.Join("apps", DefaultFileName)),
			filepath.ToSlash(filepath.Join(app, DefaultFileName)),
			filepath.ToSlash(filepath.Join(dir, DefaultFileName)),
		})
		require.NoError(t, err)
		assertYAMLEqual(t, []byte(original), printed(t, got))
	}

	_, err = ExtractCommonRecursive(paths["apps/web/dev"])
	assert.ErrorContains(t, err, "not a directory")
}

func TestNewOptions(t *testing.T) {
	t.Parallel()

	options, err := newOptions()
	require.NoError(t, err)
	assert.True(t, options.Override)
	assert.True(t, options.IncludeEqualListsInCommon)
	assert.Same(t, slog.Default(), options.Logger)
	assert.Equal(t, fs.FileMode(0o644), options.FileMode)
	assert.Equal(t, DefaultFileName, options.FileName)

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	options, err = newOptions(
		WithOverride(false),
		WithLogger(logger),
		WithFileMode(0o600),
		WithFileName("config.yaml"),
	)
	require.NoError(t, err)
	assert.False(t, options.Override)
	assert.Same(t, logger, options.Logger)
	assert.Equal(t, fs.FileMode(0o600), options.FileMode)
	assert.Equal(t, "config.yaml", options.FileName)

	// explicit zero values fall back to the defaults
	options, err = newOptions(WithFileName(""), WithLogger(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultFileName, options.FileName)
	assert.NotNil(t, options.Logger)
}
