// Package project resolves a command line path, which may name a source
// file, a directory, a .csproj or a .sln, to the source files to arrange.
package project

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/dhamidi/arrange/condition"
	"github.com/dhamidi/arrange/config"
)

// ErrUnsupported is returned for a single file no handler accepts.
var ErrUnsupported = errors.New("unsupported file")

// IgnoredDirs are never descended into during a directory walk.
var IgnoredDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	".vs":          true,
	".idea":        true,
	".vscode":      true,
	"bin":          true,
	"obj":          true,
	"node_modules": true,
	"packages":     true,
}

type Options struct {
	// Exclude holds doublestar patterns matched against slash separated
	// paths relative to the discovery root.
	Exclude []string
}

// Discover returns the source files path stands for, sorted and without
// duplicates. Only files with a configured extension whose filter accepts
// them are returned.
func Discover(path string, handlers []config.Handler, opts Options) ([]string, error) {
	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("%w: invalid exclude pattern %q", condition.ErrInvalidArgument, pattern)
		}
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	d := &discovery{handlers: handlers, opts: opts, seen: map[string]bool{}}

	switch {
	case info.IsDir():
		d.root = path
		err = d.walk(path)
	case strings.EqualFold(filepath.Ext(path), ".csproj"):
		d.root = filepath.Dir(path)
		err = d.project(path)
	case strings.EqualFold(filepath.Ext(path), ".sln"):
		d.root = filepath.Dir(path)
		err = d.solution(path)
	default:
		ok, ferr := accepts(handlers, path)
		if ferr != nil {
			return nil, ferr
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
		}
		return []string{path}, nil
	}
	if err != nil {
		return nil, err
	}
	sort.Strings(d.files)
	return d.files, nil
}

type discovery struct {
	handlers []config.Handler
	opts     Options
	root     string
	files    []string
	seen     map[string]bool
}

// add records path when a handler accepts it and no exclusion matches.
func (d *discovery) add(path string) error {
	path = filepath.Clean(path)
	if d.seen[path] {
		return nil
	}
	d.seen[path] = true
	if d.excluded(path) {
		return nil
	}
	ok, err := accepts(d.handlers, path)
	if err != nil || !ok {
		return err
	}
	d.files = append(d.files, path)
	return nil
}

func (d *discovery) excluded(path string) bool {
	rel, err := filepath.Rel(d.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range d.opts.Exclude {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

func accepts(handlers []config.Handler, path string) (bool, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	for _, h := range handlers {
		for _, e := range h.Extensions {
			if !strings.EqualFold(e.Name, ext) {
				continue
			}
			if e.Filter == nil {
				return true, nil
			}
			ok, err := condition.Evaluate(e.Filter, &condition.FileSubject{Path: path})
			if err != nil {
				return false, fmt.Errorf("filter for .%s files: %w", e.Name, err)
			}
			return ok, nil
		}
	}
	return false, nil
}

// walk collects files under dir, honoring dir/.gitignore and IgnoredDirs.
func (d *discovery) walk(dir string) error {
	var gitignore *ignore.GitIgnore
	if _, err := os.Stat(filepath.Join(dir, ".gitignore")); err == nil {
		gitignore, err = ignore.CompileIgnoreFile(filepath.Join(dir, ".gitignore"))
		if err != nil {
			return fmt.Errorf("read .gitignore: %w", err)
		}
	}

	return filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == dir {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if IgnoredDirs[entry.Name()] || (gitignore != nil && (gitignore.MatchesPath(rel) || gitignore.MatchesPath(rel+"/"))) {
				return filepath.SkipDir
			}
			return nil
		}
		if gitignore != nil && gitignore.MatchesPath(rel) {
			return nil
		}
		return d.add(path)
	})
}

type msbuildProject struct {
	Sdk        string `xml:"Sdk,attr"`
	ItemGroups []struct {
		Compile []struct {
			Include string `xml:"Include,attr"`
			Remove  string `xml:"Remove,attr"`
		} `xml:"Compile"`
	} `xml:"ItemGroup"`
}

// project collects the compile items of a .csproj. Projects without
// explicit items that use an SDK compile every source file below them,
// except for build output.
func (d *discovery) project(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read project: %w", err)
	}
	var proj msbuildProject
	if err := xml.Unmarshal(data, &proj); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	fsys := os.DirFS(dir)
	var include, remove []string
	for _, g := range proj.ItemGroups {
		for _, c := range g.Compile {
			if c.Include != "" {
				include = append(include, splitItems(c.Include)...)
			}
			if c.Remove != "" {
				remove = append(remove, splitItems(c.Remove)...)
			}
		}
	}
	if len(include) == 0 {
		if proj.Sdk == "" {
			return nil
		}
		include = []string{"**/*"}
		remove = append(remove, "bin/**", "obj/**")
	}

	for _, pattern := range include {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return fmt.Errorf("%s: compile item %q: %w", path, pattern, err)
		}
		for _, m := range matches {
			if matchesAny(remove, m) {
				continue
			}
			if err := d.add(filepath.Join(dir, filepath.FromSlash(m))); err != nil {
				return err
			}
		}
	}
	return nil
}

// splitItems splits an MSBuild item list and converts its separators.
func splitItems(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ";") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, strings.ReplaceAll(item, `\`, "/"))
		}
	}
	return items
}

func matchesAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if matched, _ := doublestar.Match(p, path); matched {
			return true
		}
	}
	return false
}

var solutionProject = regexp.MustCompile(`(?m)^Project\("\{[^}]*\}"\)\s*=\s*"[^"]*"\s*,\s*"([^"]+\.csproj)"`)

// solution collects the files of every C# project listed in a .sln.
func (d *discovery) solution(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read solution: %w", err)
	}
	dir := filepath.Dir(path)
	for _, m := range solutionProject.FindAllStringSubmatch(string(data), -1) {
		proj := filepath.Join(dir, filepath.FromSlash(strings.ReplaceAll(m[1], `\`, "/")))
		if err := d.project(proj); err != nil {
			return err
		}
	}
	return nil
}
