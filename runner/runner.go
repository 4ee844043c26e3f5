// Package runner drives the arrangement of whole trees of source files:
// discovery, backup, the per file pipeline, verification and writing.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/cespare/xxhash/v2"
	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/arrange/arrange"
	"github.com/dhamidi/arrange/backup"
	"github.com/dhamidi/arrange/config"
	"github.com/dhamidi/arrange/lang"
	"github.com/dhamidi/arrange/project"
	"github.com/dhamidi/arrange/verify"
)

var log = commonlog.GetLogger("arrange.runner")

type Options struct {
	// Path is a source file, directory, .csproj or .sln.
	Path string
	// Config defaults to config.Default().
	Config  *config.Configuration
	Exclude []string
	// BackupDir enables a backup of every discovered file before any of
	// them is rewritten.
	BackupDir string
	// DryRun leaves files untouched. When Path names a single file its
	// arranged text goes to Stdout.
	DryRun bool
	Stdout io.Writer
	// Jobs bounds the number of files processed at once; zero means one
	// per CPU.
	Jobs int
	// Verify checks arranged C# with an independent parser before writing.
	Verify bool
}

// Result describes what happened to one file.
type Result struct {
	Path    string
	Changed bool
	Skipped bool
	Err     error
}

type Report struct {
	Files  []Result
	Backup string
}

// Changed counts the files whose arranged text differs from the original.
func (r *Report) Changed() int {
	n := 0
	for _, f := range r.Files {
		if f.Changed && f.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the results that carry an error.
func (r *Report) Failed() []Result {
	var failed []Result
	for _, f := range r.Files {
		if f.Err != nil {
			failed = append(failed, f)
		}
	}
	return failed
}

// Err joins the per file errors.
func (r *Report) Err() error {
	var errs []error
	for _, f := range r.Failed() {
		errs = append(errs, f.Err)
	}
	return errors.Join(errs...)
}

// Run arranges every file opts.Path stands for. A file that fails does not
// stop the others; its error is recorded in the report. The returned error
// is for failures that prevent the run as a whole: discovery, backup or
// cancellation.
func Run(ctx context.Context, opts Options) (*Report, error) {
	cfg := opts.configuration()
	a, err := arrange.New(cfg)
	if err != nil {
		return nil, err
	}
	files, err := project.Discover(opts.Path, cfg.Handlers, project.Options{Exclude: opts.Exclude})
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}
	log.Infof("arranging %d files under %s", len(files), opts.Path)

	report := &Report{Files: make([]Result, len(files))}
	if opts.BackupDir != "" && !opts.DryRun && len(files) > 0 {
		report.Backup, err = backup.Create(opts.BackupDir, opts.root(), files)
		if err != nil {
			return nil, fmt.Errorf("failed to back up files: %w", err)
		}
		log.Noticef("backed up %d files to %s", len(files), report.Backup)
	}

	single := len(files) == 1 && files[0] == opts.Path
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs())
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, out := process(a, cfg, &opts, file)
			report.Files[i] = res
			if single && opts.DryRun && opts.Stdout != nil && res.Err == nil && !res.Skipped {
				if _, err := opts.Stdout.Write(out); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	log.Infof("%d files changed, %d failed", report.Changed(), len(report.Failed()))
	return report, nil
}

// process runs the pipeline for one file and returns the arranged text.
func process(a *arrange.Arranger, cfg *config.Configuration, opts *Options, path string) (Result, []byte) {
	res := Result{Path: path}
	l, err := lang.ForFile(cfg, path)
	if errors.Is(err, lang.ErrSkipped) {
		res.Skipped = true
		return res, nil
	}
	if err != nil {
		res.Err = err
		return res, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		res.Err = err
		return res, nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		res.Err = err
		return res, nil
	}
	out, err := l.Arrange(a, cfg.Formatting, path, src)
	if err != nil {
		log.Errorf("%s: %s", path, err)
		res.Err = err
		return res, nil
	}
	if opts.Verify && l.Name == "CSharp" {
		if err := verify.CSharp(out); err != nil {
			res.Err = fmt.Errorf("%s: arranged output does not parse: %w", path, err)
			log.Errorf("%s", res.Err)
			return res, out
		}
	}

	res.Changed = xxhash.Sum64(out) != xxhash.Sum64(src)
	if !res.Changed {
		log.Debugf("%s: unchanged", path)
		return res, out
	}
	if opts.DryRun {
		log.Infof("%s: would change", path)
		return res, out
	}
	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		res.Err = fmt.Errorf("failed to write %s: %w", path, err)
		return res, out
	}
	log.Infof("%s: arranged", path)
	return res, out
}

func (o *Options) configuration() *config.Configuration {
	if o.Config != nil {
		return o.Config
	}
	return config.Default()
}

func (o *Options) jobs() int {
	if o.Jobs > 0 {
		return o.Jobs
	}
	return runtime.NumCPU()
}

// root is the directory backups are keyed on.
func (o *Options) root() string {
	if info, err := os.Stat(o.Path); err == nil && info.IsDir() {
		return o.Path
	}
	return filepath.Dir(o.Path)
}

// Restore puts back the files of the latest backup for opts.Path.
func Restore(opts Options) ([]string, error) {
	if opts.BackupDir == "" {
		return nil, errors.New("no backup directory given")
	}
	files, err := backup.Restore(opts.BackupDir, opts.root())
	if err != nil {
		return files, err
	}
	log.Noticef("restored %d files", len(files))
	return files, nil
}
