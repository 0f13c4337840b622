package filetask

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Returns every regular file under root whose extension is in extensions.
//
// A symbolic link counts as a file when it points to a regular file; links to
// directories are not followed and dangling links are skipped.
//
// Extensions are given without the leading dot and compared
// case-sensitively, so "cpp" matches a.cpp but not a.CPP. A file without an
// extension never matches. The order of the result is not significant.
func Discover(root string, extensions []string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !matches(d.Name(), extensions) {
			return nil
		}
		ok, err := regular(path, d)
		if err != nil {
			return err
		}
		if ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// Returns true if the entry at path is a regular file or a symbolic link to
// one.
func regular(path string, d fs.DirEntry) (bool, error) {
	if d.Type().IsRegular() {
		return true, nil
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false, nil
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// Returns true if the extension of name is in extensions.
func matches(name string, extensions []string) bool {
	ext := filepath.Ext(name)
	if ext == "" {
		return false
	}
	return slices.Contains(extensions, strings.TrimPrefix(ext, "."))
}
