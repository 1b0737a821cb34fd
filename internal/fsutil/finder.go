// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindFilesByExtension recursively searches the given root path for all files ending
// with the specified extension. It returns a slice of their full paths.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(d.Name()), extension) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}

// CollectFiles expands every path into the files it denotes: a file is kept
// when its extension is accepted, a directory is searched recursively for
// all accepted extensions. Paths that do not exist are skipped and reported
// back so the caller can decide how loud to be about them. The result is
// de-duplicated and sorted lexically, which gives callers a stable merge order.
func CollectFiles(paths []string, extensions ...string) (files []string, missing []string, err error) {
	accept := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		accept[strings.ToLower(ext)] = struct{}{}
	}
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		files = append(files, p)
	}

	for _, path := range paths {
		info, statErr := os.Stat(path)
		if statErr != nil {
			if os.IsNotExist(statErr) {
				missing = append(missing, path)
				continue
			}
			return nil, nil, fmt.Errorf("error accessing path %s: %w", path, statErr)
		}

		if !info.IsDir() {
			if _, ok := accept[strings.ToLower(filepath.Ext(path))]; ok {
				add(path)
			}
			continue
		}

		for ext := range accept {
			found, findErr := FindFilesByExtension(path, ext)
			if findErr != nil {
				return nil, nil, fmt.Errorf("failed to search %s: %w", path, findErr)
			}
			for _, f := range found {
				add(f)
			}
		}
	}

	sort.Strings(files)
	return files, missing, nil
}
