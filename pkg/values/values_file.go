package values

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"dario.cat/mergo"
	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/inercia/go-yaml-tree/pkg/merge"
	"github.com/inercia/go-yaml-tree/pkg/node"
	"github.com/inercia/go-yaml-tree/pkg/parser"
	"github.com/inercia/go-yaml-tree/pkg/printer"
	yamllib "github.com/inercia/go-yaml-tree/pkg/yaml"
)

// DefaultFileName is the name of the values files handled by ExtractCommon.
const DefaultFileName = "values.yaml"

var (
	// ErrNoCommon is returned when values files have no common structure.
	ErrNoCommon = errors.New("no common values found")
	// ErrNoFiles is returned when there is nothing to merge.
	ErrNoFiles = errors.New("no values files")
)

// Options controls how values files are loaded, merged and split.
type Options struct {
	// Override makes later files win conflicts in MergeFiles. Default true.
	Override bool
	// IncludeEqualListsInCommon controls whether lists that are equal across
	// all values files should be extracted into the common file. Default true.
	IncludeEqualListsInCommon bool
	// Logger receives debug logs about files read and written. Default
	// slog.Default().
	Logger *slog.Logger
	// FileMode is used for written files. Default 0o644.
	FileMode fs.FileMode
	// FileName is the name values files must have for ExtractCommon.
	// Default DefaultFileName.
	FileName string
}

// Option is a functional option for the file functions.
type Option func(*Options)

// WithOverride sets whether later files win conflicts when merging.
func WithOverride(override bool) Option {
	return func(o *Options) { o.Override = override }
}

// WithIncludeEqualListsInCommon forwards the option to the underlying YAML extractor.
func WithIncludeEqualListsInCommon(include bool) Option {
	return func(o *Options) { o.IncludeEqualListsInCommon = include }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithFileMode sets the permissions of written files.
func WithFileMode(mode fs.FileMode) Option {
	return func(o *Options) { o.FileMode = mode }
}

// WithFileName sets the name values files must have.
func WithFileName(name string) Option {
	return func(o *Options) { o.FileName = name }
}

func newOptions(opts ...Option) (Options, error) {
	options := Options{Override: true, IncludeEqualListsInCommon: true}
	for _, opt := range opts {
		opt(&options)
	}
	// booleans are set above: mergo only fills the fields still unset
	if err := mergo.Merge(&options, Options{
		Logger:   slog.Default(),
		FileMode: 0o644,
		FileName: DefaultFileName,
	}, mergo.WithoutDereference); err != nil {
		return Options{}, fmt.Errorf("options: %w", err)
	}
	return options, nil
}

///////////////////////////////////////////////////////////////////////////////
// loading and merging
///////////////////////////////////////////////////////////////////////////////

// LoadFile parses a values file. A file without content gives an empty
// mapping.
func LoadFile(fsys fs.FS, name string) (node.Node, error) {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	n, err := parser.ParseBytes(b)
	if errors.Is(err, parser.ErrEmptyDocument) {
		return node.EmptyMapping(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}

// MergeFiles loads the named files concurrently and merges them in the
// given order: each file is merged into the result of the previous ones.
// Files without content are skipped.
func MergeFiles(ctx context.Context, fsys fs.FS, names []string, opts ...Option) (node.Node, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, ErrNoFiles
	}

	docs := make([]node.Node, len(names))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			n, err := LoadFile(fsys, name)
			if err != nil {
				return err
			}
			docs[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var res node.Node
	for i, doc := range docs {
		if doc.IsEmpty() {
			options.Logger.Debug("skipping empty values file", "file", names[i])
			continue
		}
		if res == nil {
			res = doc
			continue
		}
		merged, err := merge.Merge(res, doc, merge.WithOverride(options.Override))
		if err != nil {
			return nil, fmt.Errorf("merging %s: %w", names[i], err)
		}
		res = merged
		options.Logger.Debug("merged values file", "file", names[i])
	}
	if res == nil {
		return node.EmptyMapping(), nil
	}
	return res, nil
}

// MergeGlob is MergeFiles for the files matching a doublestar pattern
// (like "envs/**/values.yaml"), merged in lexical order.
func MergeGlob(ctx context.Context, fsys fs.FS, pattern string, opts ...Option) (node.Node, error) {
	names, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: nothing matches %q", ErrNoFiles, pattern)
	}
	slices.Sort(names)
	return MergeFiles(ctx, fsys, names, opts...)
}

// WriteFile prints the tree into path, atomically.
func WriteFile(path string, n node.Node, opts ...Option) error {
	options, err := newOptions(opts...)
	if err != nil {
		return err
	}
	b, err := printer.Print(n)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(path, b, options.FileMode); err != nil {
		return err
	}
	options.Logger.Debug("values file written", "file", path, "bytes", len(b))
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// common structure extraction
///////////////////////////////////////////////////////////////////////////////

// ExtractCommon reads two values.yaml files and extracts their common structure into
// a new values.yaml placed one directory above both files. The original files are
// rewritten to only contain their respective remainders (i.e., without the common part).
//
// Requirements and behavior:
// - Both input paths must be named "values.yaml" (see WithFileName) and exist.
// - Both must share the same parent directory one level up (i.e., siblings).
// - The common file is written at the shared parent directory.
// - If no common structure exists, this function returns ErrNoCommon and leaves files unchanged.
// - The merge property holds: merge(updated, common) reconstructs each original.
// - Comments are kept with the entries they belong to.
func ExtractCommon(path1, path2 string, opts ...Option) (commonPath string, err error) {
	return ExtractCommonN([]string{path1, path2}, opts...)
}

// ExtractCommonN performs the same operation as ExtractCommon but for N sibling
// values.yaml files. It writes the common structure to the shared parent directory
// and updates each provided file with its remainder.
// Returns the path to the common file or ErrNoCommon if there is no common content.
func ExtractCommonN(paths []string, opts ...Option) (commonPath string, err error) {
	options, err := newOptions(opts...)
	if err != nil {
		return "", err
	}
	if len(paths) < 2 {
		return "", fmt.Errorf("%w: need at least 2 files, got %d", yamllib.ErrNotEnoughDocuments, len(paths))
	}

	parents := make(map[string]struct{})
	for _, p := range paths {
		if filepath.Base(p) != options.FileName {
			return "", fmt.Errorf("file must be named %s: %s", options.FileName, p)
		}
		if err := assertFileExists(p); err != nil {
			return "", err
		}
		parents[filepath.Dir(filepath.Dir(p))] = struct{}{}
	}
	if len(parents) != 1 {
		return "", fmt.Errorf("all files must share the same parent directory one level up")
	}
	var parent string
	for k := range parents {
		parent = k
	}

	docs := make([]node.Node, len(paths))
	for i, p := range paths {
		n, err := LoadFile(os.DirFS(filepath.Dir(p)), filepath.Base(p))
		if err != nil {
			return "", fmt.Errorf("%s: %w", p, err)
		}
		docs[i] = n
	}

	common, remainders := yamllib.ExtractCommonNodesN(docs, yamllib.WithIncludeEqualListsInCommon(options.IncludeEqualListsInCommon))
	if node.IsNil(common) || common.IsEmpty() {
		return "", ErrNoCommon
	}

	commonPath = filepath.Join(parent, options.FileName)
	if err := WriteFile(commonPath, common, opts...); err != nil {
		return "", err
	}
	for i, p := range paths {
		r := remainders[i]
		if node.IsNil(r) {
			r = node.EmptyMapping()
		}
		if err := WriteFile(p, r, opts...); err != nil {
			return "", err
		}
	}
	options.Logger.Debug("extracted common values", "common", commonPath, "files", len(paths))
	return commonPath, nil
}

// ExtractCommonRecursive scans the directory tree rooted at root and progressively
// extracts common structures bottom-up.
//
// Algorithm:
// - Walk the tree to list all directories and their immediate child directories.
// - Repeat in passes from deepest parents to shallowest:
//   - For each parent directory, collect its direct child directories that currently
//     contain a values file (including ones created in prior passes).
//   - If two or more child values files exist, run ExtractCommonN on them to
//     produce/overwrite the parent values file and update children with remainders.
//   - Newly created parent values files make that parent eligible in the next pass
//     to be grouped with its own siblings at a higher level.
//
// - Stops when a full pass creates no new parent values files.
//
// Returns the sorted list of parent values file paths that were created during the run.
func ExtractCommonRecursive(root string, opts ...Option) ([]string, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	st, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	// parent -> children relationships
	parentToChildren := make(map[string][]string)
	hasValues := make(map[string]bool)
	if err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() {
			return nil
		}
		if fi, err := os.Stat(filepath.Join(path, options.FileName)); err == nil && !fi.IsDir() {
			hasValues[path] = true
		}
		if path != root {
			parent := filepath.Dir(path)
			parentToChildren[parent] = append(parentToChildren[parent], path)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	// deepest parents first
	parents := make([]string, 0, len(parentToChildren))
	for p := range parentToChildren {
		parents = append(parents, p)
	}
	sort.Slice(parents, func(i, j int) bool {
		di, dj := pathDepth(parents[i]), pathDepth(parents[j])
		if di != dj {
			return di > dj
		}
		return parents[i] < parents[j]
	})

	createdSet := make(map[string]struct{})
	for {
		createdInPass := 0
		for _, parent := range parents {
			var paths []string
			for _, child := range parentToChildren[parent] {
				if hasValues[child] {
					paths = append(paths, filepath.Join(child, options.FileName))
				}
			}
			if len(paths) < 2 {
				continue
			}
			commonPath, err := ExtractCommonN(paths, opts...)
			if errors.Is(err, ErrNoCommon) {
				options.Logger.Debug("nothing in common", "dir", parent, "files", len(paths))
				continue
			}
			if err != nil {
				return nil, err
			}
			if !hasValues[parent] {
				hasValues[parent] = true
				createdInPass++
			}
			createdSet[commonPath] = struct{}{}
		}
		if createdInPass == 0 {
			break
		}
	}

	created := make([]string, 0, len(createdSet))
	for p := range createdSet {
		created = append(created, p)
	}
	sort.Strings(created)
	return created, nil
}

// pathDepth returns the number of ancestors between p and the filesystem root.
func pathDepth(p string) int {
	depth := 0
	for {
		parent := filepath.Dir(p)
		if parent == p {
			break
		}
		depth++
		p = parent
	}
	return depth
}

func assertFileExists(path string) error {
	st, err := os.Stat(path)
	if err != nil {
		return err
	}
	if st.IsDir() {
		return fmt.Errorf("path is a directory, expected file: %s", path)
	}
	return nil
}

// writeFileAtomic writes data to a temp file in the same directory and renames it in place.
func writeFileAtomic(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".values-*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(name)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(name, path)
}
