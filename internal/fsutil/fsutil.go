// Package fsutil holds the read-only filesystem helpers shared by the flow
// parsers and the watcher. Every helper swallows per-file failures: a missing or
// unreadable path behaves like an empty one.
package fsutil

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/samber/lo"
)

// excludedDirs are never descended into when walking or globbing
var excludedDirs = []string{
	".git",
	"node_modules",
	"vendor",
	"__pycache__",
	".venv",
	"venv",
	"target",
	"dist",
}

// IsExcludedDir checks if a directory name should be skipped
func IsExcludedDir(name string) bool {
	return lo.Contains(excludedDirs, name)
}

// Exists reports whether path exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir reports whether path exists and is a directory
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// IsFile reports whether path exists and is a regular file
func IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// ReadFile returns the file content, or false if it cannot be read
func ReadFile(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// ListDirs returns the names of the immediate subdirectories of dir, sorted
// lexicographically. Hidden directories are skipped.
func ListDirs(dir string) []string {
	return listEntries(dir, func(e os.DirEntry) bool {
		return e.IsDir() && !strings.HasPrefix(e.Name(), ".")
	})
}

// ListFiles returns the names of the regular files in dir, sorted
// lexicographically. When ext is non-empty only files with that extension are
// returned.
func ListFiles(dir, ext string) []string {
	return listEntries(dir, func(e os.DirEntry) bool {
		if e.IsDir() {
			return false
		}
		return ext == "" || strings.EqualFold(filepath.Ext(e.Name()), ext)
	})
}

func listEntries(dir string, keep func(os.DirEntry) bool) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return []string{}
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if keep(e) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// Glob resolves a doublestar pattern relative to root and returns the matching
// files as sorted paths relative to root. Directories and paths under excluded
// directories are dropped.
func Glob(root, pattern string) []string {
	matches, err := doublestar.Glob(os.DirFS(root), filepath.ToSlash(pattern))
	if err != nil {
		return []string{}
	}

	result := lo.Filter(matches, func(rel string, _ int) bool {
		parts := strings.Split(rel, "/")
		if lo.SomeBy(parts[:len(parts)-1], IsExcludedDir) {
			return false
		}
		return IsFile(filepath.Join(root, filepath.FromSlash(rel)))
	})
	sort.Strings(result)
	return result
}

// MatchAny reports whether any of names matches the doublestar pattern
func MatchAny(pattern string, names []string) bool {
	return lo.SomeBy(names, func(name string) bool {
		ok, err := doublestar.Match(pattern, name)
		return err == nil && ok
	})
}

// WalkDirs returns root and every directory below it, skipping excluded and
// hidden directories. Unreadable subtrees are skipped.
func WalkDirs(root string) []string {
	var dirs []string
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (IsExcludedDir(d.Name()) || strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	return dirs
}
