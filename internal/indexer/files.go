package indexer

import (
	"errors"
	"os"
	"path/filepath"
)

// File extensions of an index named <name> in a directory.
const (
	ExtGrid  = ".grid"  // page stream written by extraction
	ExtWords = ".words" // dictionary, one word per line
	ExtConw  = ".conw"  // page counts, paths and dictionary
	ExtCong  = ".cong"  // encoded pages, removed after the build
	ExtConi  = ".coni"  // postings per dictionary word
	ExtIndex = ".index" // legible index
)

// Companion files kept next to an index.
const (
	ExtLock    = ".lock"
	ExtHistory = ".history.db"
)

// Files names the files of one index.
type Files struct {
	Dir  string
	Name string
}

// FilesFor returns the file set for the index name in dir.
func FilesFor(dir, name string) Files { return Files{Dir: dir, Name: name} }

// Path returns the path of the file with extension ext.
func (f Files) Path(ext string) string { return filepath.Join(f.Dir, f.Name+ext) }

func (f Files) Grid() string    { return f.Path(ExtGrid) }
func (f Files) Words() string   { return f.Path(ExtWords) }
func (f Files) Conw() string    { return f.Path(ExtConw) }
func (f Files) Cong() string    { return f.Path(ExtCong) }
func (f Files) Coni() string    { return f.Path(ExtConi) }
func (f Files) Index() string   { return f.Path(ExtIndex) }
func (f Files) History() string { return f.Path(ExtHistory) }

// Outputs lists the files a build creates.
func (f Files) Outputs() []string {
	return []string{f.Conw(), f.Words(), f.Cong(), f.Coni(), f.Index()}
}

// Exists reports whether the files a reader needs are present.
func (f Files) Exists() bool {
	for _, p := range []string{f.Conw(), f.Coni()} {
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}

// removeOutputs deletes every build output, ignoring missing files.
func (f Files) removeOutputs() error {
	var errs []error
	for _, p := range f.Outputs() {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
