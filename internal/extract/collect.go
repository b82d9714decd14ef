package extract

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Collect returns the documents to index. Each argument is a file, taken
// as given, or a directory, walked for files with one of the extensions.
// Walked files honour the ignore patterns plus any IgnoreFile at the
// directory root. The result keeps argument order; files found in a
// directory are sorted by path.
func Collect(ctx context.Context, args []string, extensions []string, ignore *Ignore) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			out = append(out, path)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(filepath.Clean(arg))
			continue
		}
		found, err := walk(ctx, arg, extensions, ignore)
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			add(p)
		}
	}
	return out, nil
}

func walk(ctx context.Context, root string, extensions []string, base *Ignore) ([]string, error) {
	ignore := &Ignore{}
	if base != nil {
		ignore.rules = slices.Clone(base.rules)
	}
	if err := ignore.AddFile(filepath.Join(root, IgnoreFile)); err != nil {
		return nil, err
	}

	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." {
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") || ignore.Match(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !hasExtension(path, extensions) || ignore.Match(rel, false) {
			return nil
		}
		found = append(found, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(found)
	return found, nil
}

func hasExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}
