package git

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Bucket classifies a changed file
type Bucket string

const (
	BucketStaged     Bucket = "staged"
	BucketUnstaged   Bucket = "unstaged"
	BucketUntracked  Bucket = "untracked"
	BucketConflicted Bucket = "conflicted"
)

// Buckets returns every bucket in display order
func Buckets() []Bucket {
	return []Bucket{BucketStaged, BucketUnstaged, BucketUntracked, BucketConflicted}
}

// FileChange is one entry of porcelain status output
type FileChange struct {
	RelativePath string
	AbsolutePath string
	Code         string
}

// Counts tallies entries per bucket. Total counts distinct entries, so a file
// that is both staged and unstaged is counted once.
type Counts struct {
	Staged     int
	Unstaged   int
	Untracked  int
	Conflicted int
	Total      int
}

// ChangeSet is the working-tree state of the repository containing a path
type ChangeSet struct {
	Available bool
	Clean     bool
	Root      string
	Branch    string
	Upstream  string
	Ahead     int
	Behind    int
	Counts    Counts

	Staged     []FileChange
	Unstaged   []FileChange
	Untracked  []FileChange
	Conflicted []FileChange

	// Error holds the reason a repository could not be read
	Error string
}

// Files returns the entries of a bucket
func (cs ChangeSet) Files(b Bucket) []FileChange {
	switch b {
	case BucketStaged:
		return cs.Staged
	case BucketUnstaged:
		return cs.Unstaged
	case BucketUntracked:
		return cs.Untracked
	case BucketConflicted:
		return cs.Conflicted
	default:
		return nil
	}
}

// unavailable is the change set reported outside a repository
func unavailable(reason string) ChangeSet {
	return ChangeSet{Available: false, Clean: true, Error: reason}
}

// Collect reads the change set for the repository containing path. Outside a
// repository, or when git is missing, it returns Available=false with zero
// counts; it never fails.
func Collect(ctx context.Context, path string) ChangeSet {
	if !Available() {
		return unavailable("git executable not found")
	}
	root, err := TopLevel(ctx, path)
	if err != nil {
		return unavailable(err.Error())
	}

	out, err := run(ctx, root, nil, "status", "--porcelain", "--branch", "--untracked-files=all")
	if err != nil {
		cs := unavailable(err.Error())
		cs.Root = root
		return cs
	}
	return ParseStatus(root, out)
}

// ParseStatus parses `git status --porcelain --branch` output for the
// repository at root
func ParseStatus(root, output string) ChangeSet {
	cs := ChangeSet{Available: true, Root: root}

	for _, line := range strings.Split(strings.ReplaceAll(output, "\r\n", "\n"), "\n") {
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "## ") {
			parseBranchLine(&cs, strings.TrimPrefix(line, "## "))
			continue
		}
		if len(line) < 4 {
			continue
		}

		code := line[:2]
		if code == "!!" {
			continue
		}
		rel := unquote(line[3:])
		if i := strings.Index(rel, " -> "); i >= 0 {
			rel = unquote(rel[i+4:])
		}
		change := FileChange{
			RelativePath: rel,
			AbsolutePath: filepath.Join(root, filepath.FromSlash(rel)),
			Code:         code,
		}

		cs.Counts.Total++
		x, y := code[0], code[1]
		switch {
		case code == "??":
			cs.Untracked = append(cs.Untracked, change)
		case x == 'U' || y == 'U' || code == "AA" || code == "DD":
			cs.Conflicted = append(cs.Conflicted, change)
		default:
			if x != ' ' {
				cs.Staged = append(cs.Staged, change)
			}
			if y != ' ' {
				cs.Unstaged = append(cs.Unstaged, change)
			}
		}
	}

	cs.Counts.Staged = len(cs.Staged)
	cs.Counts.Unstaged = len(cs.Unstaged)
	cs.Counts.Untracked = len(cs.Untracked)
	cs.Counts.Conflicted = len(cs.Conflicted)
	cs.Clean = cs.Counts.Total == 0
	return cs
}

// parseBranchLine handles the forms
//
//	main
//	main...origin/main [ahead 1, behind 2]
//	No commits yet on main
//	HEAD (no branch)
func parseBranchLine(cs *ChangeSet, header string) {
	for _, prefix := range []string{"No commits yet on ", "Initial commit on "} {
		if strings.HasPrefix(header, prefix) {
			cs.Branch = strings.TrimPrefix(header, prefix)
			return
		}
	}

	head, tracking, _ := strings.Cut(header, " [")
	branch, upstream, _ := strings.Cut(head, "...")
	cs.Branch = strings.TrimSpace(branch)
	cs.Upstream = strings.TrimSpace(upstream)

	tracking = strings.TrimSuffix(tracking, "]")
	for _, part := range strings.Split(tracking, ",") {
		fields := strings.Fields(part)
		if len(fields) != 2 {
			continue
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		switch fields[0] {
		case "ahead":
			cs.Ahead = n
		case "behind":
			cs.Behind = n
		}
	}
}

func unquote(path string) string {
	path = strings.TrimSpace(path)
	if strings.HasPrefix(path, `"`) {
		if s, err := strconv.Unquote(path); err == nil {
			return s
		}
	}
	return path
}

// Diff returns the diff preview for change as it appears in bucket. Untracked
// files are diffed against /dev/null; staged files against the index.
func Diff(ctx context.Context, cs ChangeSet, change FileChange, bucket Bucket) (string, error) {
	if !cs.Available {
		return "", fmt.Errorf("not a git repository")
	}

	switch bucket {
	case BucketUntracked:
		// --no-index exits 1 when the files differ
		return run(ctx, cs.Root, []int{1}, "diff", "--no-color", "--no-index", "--", "/dev/null", change.RelativePath)
	case BucketStaged:
		return run(ctx, cs.Root, nil, "diff", "--no-color", "--cached", "--", change.RelativePath)
	default:
		return run(ctx, cs.Root, nil, "diff", "--no-color", "--", change.RelativePath)
	}
}
